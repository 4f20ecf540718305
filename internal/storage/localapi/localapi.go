// Package localapi is the sink client for the taskbedd local-network state
// server: a two-endpoint contract (read full state, write full state) plus a
// websocket change feed. The server being down is an expected condition and
// surfaces as an ordinary read/write error the adapter logs and moves past.
package localapi

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

// document is the wire shape of the data file: the snapshot nests under a
// "state" key.
type document struct {
	State json.RawMessage `json:"state"`
}

// Client talks to a taskbedd instance.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ storage.Sink = (*Client)(nil)
var _ storage.Notifier = (*Client)(nil)

// New creates a client for the server at baseURL (e.g. http://localhost:3847).
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Name implements storage.Sink.
func (c *Client) Name() string { return "localapi" }

// Read fetches the full state document. A body of "null" (no file on the
// server yet) maps to storage.ErrNotFound.
func (c *Client) Read(ctx context.Context, identity string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/data", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("local API unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, storage.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("local API read failed: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading local API response: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 || string(bytes.TrimSpace(body)) == "null" {
		return nil, storage.ErrNotFound
	}

	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("malformed local API document: %w", err)
	}
	if len(doc.State) == 0 || string(doc.State) == "null" {
		return nil, storage.ErrNotFound
	}
	return doc.State, nil
}

// Write overwrites the server's full state document.
func (c *Client) Write(ctx context.Context, identity string, blob []byte) error {
	doc, err := json.Marshal(document{State: blob})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/data", bytes.NewReader(doc))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("local API unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("local API write failed: %s", resp.Status)
	}
	return nil
}

// Subscribe opens the websocket change feed. Every message on the feed
// produces one tick; the channel closes when the connection drops or ctx is
// cancelled.
func (c *Client) Subscribe(ctx context.Context, identity string) (<-chan struct{}, error) {
	wsURL, err := url.Parse(c.baseURL + "/ws")
	if err != nil {
		return nil, err
	}
	switch wsURL.Scheme {
	case "https":
		wsURL.Scheme = "wss"
	default:
		wsURL.Scheme = "ws"
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("subscribing to local API: %w", err)
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
				debug.Logf("local API change feed closed: %v", err)
				return
			}
			select {
			case ch <- struct{}{}:
			default:
				// A tick is already pending; coalesce.
			}
		}
	}()
	return ch, nil
}
