// Package remote is the sink client for the hosted multi-device store. The
// service keeps one row per identity (user id, encoded snapshot, last-updated
// timestamp); writes are upserts keyed by identity. When no credentials are
// configured the client is simply never constructed and every sync/auth path
// degrades to a local-only no-op.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/andrewblevins/taskbed/internal/debug"
	"github.com/andrewblevins/taskbed/internal/storage"
)

// stateRow is the wire shape of one stored record.
type stateRow struct {
	UserID    string          `json:"user_id"`
	State     json.RawMessage `json:"state"`
	UpdatedAt string          `json:"updated_at"`
}

// Client talks to the remote state service.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client

	session *Session
}

var _ storage.Sink = (*Client)(nil)
var _ storage.Notifier = (*Client)(nil)

// New creates a remote client. Callers must only construct one when
// credentials are configured (config.RemoteConfigured).
func New(baseURL, anonKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// Name implements storage.Sink.
func (c *Client) Name() string { return "remote" }

// UseSession attaches a previously saved session (from disk) to the client.
func (c *Client) UseSession(s *Session) {
	c.session = s
}

// Identity returns the signed-in user id, or empty when anonymous.
func (c *Client) Identity() string {
	if c.session == nil {
		return ""
	}
	return c.session.UserID
}

func (c *Client) authHeaders(req *http.Request) {
	req.Header.Set("apikey", c.anonKey)
	token := c.anonKey
	if c.session != nil && c.session.AccessToken != "" {
		token = c.session.AccessToken
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

// Read fetches the snapshot row for the identity.
func (c *Client) Read(ctx context.Context, identity string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/taskbed_state?user_id=eq.%s&select=state",
		c.baseURL, url.QueryEscape(identity))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.authHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote store unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("remote store authorization failed: %s", resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote store read failed: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading remote response: %w", err)
	}

	var rows []stateRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("malformed remote response: %w", err)
	}
	if len(rows) == 0 || len(rows[0].State) == 0 {
		return nil, storage.ErrNotFound
	}
	return rows[0].State, nil
}

// Write upserts the snapshot row for the identity. One row per identity,
// never duplicates.
func (c *Client) Write(ctx context.Context, identity string, blob []byte) error {
	row, err := json.Marshal([]stateRow{{
		UserID:    identity,
		State:     blob,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}})
	if err != nil {
		return err
	}

	endpoint := c.baseURL + "/rest/v1/taskbed_state"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(row))
	if err != nil {
		return err
	}
	c.authHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "resolution=merge-duplicates")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote store unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("remote store authorization failed: %s", resp.Status)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("remote store write failed: %s", resp.Status)
	}
	return nil
}

// Subscribe opens the change feed for the identity: the service sends one
// message whenever another device upserts the identity's row.
func (c *Client) Subscribe(ctx context.Context, identity string) (<-chan struct{}, error) {
	feedURL, err := url.Parse(c.baseURL + "/realtime/v1/changes")
	if err != nil {
		return nil, err
	}
	switch feedURL.Scheme {
	case "https":
		feedURL.Scheme = "wss"
	default:
		feedURL.Scheme = "ws"
	}
	q := feedURL.Query()
	q.Set("user_id", identity)
	q.Set("apikey", c.anonKey)
	feedURL.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, feedURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("subscribing to remote changes: %w", err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	go func() {
		defer close(ch)
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				debug.Logf("remote change feed closed: %v", err)
				return
			}
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}()
	return ch, nil
}
