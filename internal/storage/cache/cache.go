// Package cache implements the fast local sink on an embedded SQLite
// database. It exists so the app can start instantly and work offline: every
// mutation lands here synchronously before the slower sinks are attempted.
//
// Alongside snapshots it also persists the undo/redo stacks, so manual undo
// survives process restarts.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/andrewblevins/taskbed/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	identity   TEXT PRIMARY KEY,
	state      BLOB NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS history (
	identity   TEXT PRIMARY KEY,
	past       BLOB,
	future     BLOB,
	updated_at TEXT NOT NULL
);
`

// Cache is the fast local sink.
type Cache struct {
	db   *sql.DB
	path string
}

var _ storage.Sink = (*Cache)(nil)

// Open creates or opens the cache database at path, creating parent
// directories as needed.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing cache schema: %w", err)
	}
	return &Cache{db: db, path: path}, nil
}

// Name implements storage.Sink.
func (c *Cache) Name() string { return "cache" }

// Read returns the cached snapshot blob for the identity.
func (c *Cache) Read(ctx context.Context, identity string) ([]byte, error) {
	var blob []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT state FROM snapshots WHERE identity = ?`, identity).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading cached snapshot: %w", err)
	}
	return blob, nil
}

// Write upserts the snapshot blob for the identity.
func (c *Cache) Write(ctx context.Context, identity string, blob []byte) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO snapshots (identity, state, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (identity) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at
	`, identity, blob, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("writing cached snapshot: %w", err)
	}
	return nil
}

// Delete removes the identity's snapshot and history rows (sign-out path:
// one identity's data must never leak into another's read).
func (c *Cache) Delete(ctx context.Context, identity string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM snapshots WHERE identity = ?`, identity); err != nil {
		return fmt.Errorf("deleting cached snapshot: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, `DELETE FROM history WHERE identity = ?`, identity); err != nil {
		return fmt.Errorf("deleting cached history: %w", err)
	}
	return nil
}

// ReadHistory returns the persisted undo (past) and redo (future) stacks.
// Absent rows return nil slices and no error.
func (c *Cache) ReadHistory(ctx context.Context, identity string) (past, future []byte, err error) {
	err = c.db.QueryRowContext(ctx,
		`SELECT past, future FROM history WHERE identity = ?`, identity).Scan(&past, &future)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading history stacks: %w", err)
	}
	return past, future, nil
}

// WriteHistory upserts the undo/redo stacks for the identity.
func (c *Cache) WriteHistory(ctx context.Context, identity string, past, future []byte) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO history (identity, past, future, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (identity) DO UPDATE SET past = excluded.past, future = excluded.future, updated_at = excluded.updated_at
	`, identity, past, future, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("writing history stacks: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
