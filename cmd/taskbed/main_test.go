package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewblevins/taskbed/internal/migrate"
	"github.com/andrewblevins/taskbed/internal/persist"
	"github.com/andrewblevins/taskbed/internal/storage/cache"
	"github.com/andrewblevins/taskbed/internal/types"
)

// emptyServer stands in for a taskbedd instance with no data file yet.
func emptyServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte("null"))
		default:
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		}
	}))
}

func seedCache(t *testing.T, dir string, snap *types.Snapshot) {
	t.Helper()
	c, err := cache.Open(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	blob, err := persist.Encode(snap)
	require.NoError(t, err)
	require.NoError(t, c.Write(context.Background(), "local", blob))
	require.NoError(t, c.Close())
}

func TestStartupRunsContentMigrations(t *testing.T) {
	srv := emptyServer()
	defer srv.Close()

	dir := t.TempDir()
	snap := types.DefaultSnapshot()
	snap.Tasks = append(snap.Tasks, types.Task{
		ID:        "t1",
		Title:     "Call dentist about the crown",
		Status:    types.TaskActive,
		CreatedAt: types.Now(),
	})
	seedCache(t, dir, snap)

	t.Setenv("TASKBED_DATA_DIR", dir)
	t.Setenv("TASKBED_SERVER_URL", srv.URL)

	require.NoError(t, setup())
	defer func() { require.NoError(t, teardown()) }()

	cur := store.Current()
	require.True(t, cur.HasContentMigration(migrate.DeriveContextTags),
		"first load after the tag feature must run the content migration")
	task := cur.TaskByID("t1")
	require.NotNil(t, task)
	assert.Contains(t, task.Tags, "@phone")

	// The migrated markers must be persisted, not just in memory, or the
	// migration would re-run and reclassify user-edited tags.
	blob, err := localCache.Read(context.Background(), "local")
	require.NoError(t, err)
	cached, err := persist.Decode(blob)
	require.NoError(t, err)
	assert.True(t, cached.HasContentMigration(migrate.DeriveContextTags))

	assert.False(t, undoEngine.CanUndo(), "migrating old data is not an undoable edit")
}

func TestColdStartLoadsFromServer(t *testing.T) {
	served := types.DefaultSnapshot()
	served.Tasks = append(served.Tasks, types.Task{
		ID:        "t-remote",
		Title:     "Pushed from another device",
		Status:    types.TaskActive,
		CreatedAt: types.Now(),
	})
	served.ContentMigrations = []string{migrate.DeriveContextTags}
	blob, err := persist.Encode(served)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"state":` + string(blob) + `}`))
		default:
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		}
	}))
	defer srv.Close()

	t.Setenv("TASKBED_DATA_DIR", t.TempDir())
	t.Setenv("TASKBED_SERVER_URL", srv.URL)

	require.NoError(t, setup())
	defer func() { require.NoError(t, teardown()) }()

	require.NotNil(t, store.Current().TaskByID("t-remote"),
		"a cache miss walks the read chain instead of starting empty")

	// The pulled snapshot seeds the cache so the next start is warm.
	cachedBlob, err := localCache.Read(context.Background(), "local")
	require.NoError(t, err)
	cached, err := persist.Decode(cachedBlob)
	require.NoError(t, err)
	assert.NotNil(t, cached.TaskByID("t-remote"))
}
