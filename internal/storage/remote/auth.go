package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// Session is a signed-in identity: the bearer token plus the user id that
// scopes all remote reads and writes.
type Session struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
	Email       string `json:"email,omitempty"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// SignIn exchanges email/password for a session and attaches it to the
// client. Subsequent reads and writes are scoped to the returned identity.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/auth/v1/token?grant_type=password"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth service unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading auth response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sign-in failed: %s", resp.Status)
	}

	var tok tokenResponse
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("malformed auth response: %w", err)
	}
	if tok.AccessToken == "" || tok.User.ID == "" {
		return nil, fmt.Errorf("auth response missing token or user id")
	}

	session := &Session{
		AccessToken: tok.AccessToken,
		UserID:      tok.User.ID,
		Email:       tok.User.Email,
	}
	c.session = session
	return session, nil
}

// SignOut discards the attached session. Remote operations fall back to the
// anonymous key, which the service rejects for state rows.
func (c *Client) SignOut() {
	c.session = nil
}

// SessionPath returns the session file location under the data directory.
func SessionPath(dataDir string) string {
	return filepath.Join(dataDir, "session.json")
}

// LoadSession reads a saved session. Missing or malformed files return nil
// without error; a stale session just means signing in again.
func LoadSession(path string) *Session {
	data, err := os.ReadFile(path) // #nosec G304 - path derived from data dir
	if err != nil {
		return nil
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil || s.UserID == "" {
		return nil
	}
	return &s
}

// SaveSession persists the session with user-only permissions.
func SaveSession(path string, s *Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// ClearSession removes the saved session file.
func ClearSession(path string) {
	_ = os.Remove(path)
}
