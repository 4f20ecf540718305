package sync

import (
	"context"
	"encoding/json"
	stdsync "sync"
	"testing"
	"time"

	"github.com/andrewblevins/taskbed/internal/persist"
	"github.com/andrewblevins/taskbed/internal/state"
	"github.com/andrewblevins/taskbed/internal/storage"
	"github.com/andrewblevins/taskbed/internal/types"
)

// memSink is an in-memory Sink recording writes per identity.
type memSink struct {
	name string

	mu     stdsync.Mutex
	blobs  map[string][]byte
	writes int
}

func newMemSink(name string) *memSink {
	return &memSink{name: name, blobs: make(map[string][]byte)}
}

func (m *memSink) Name() string { return m.name }

func (m *memSink) Read(ctx context.Context, identity string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.blobs[identity]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return blob, nil
}

func (m *memSink) Write(ctx context.Context, identity string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[identity] = blob
	m.writes++
	return nil
}

func (m *memSink) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *memSink) snapshot(t *testing.T, identity string) *types.Snapshot {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.blobs[identity]
	if !ok {
		t.Fatalf("%s: no blob for %s", m.name, identity)
	}
	var snap types.Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		t.Fatalf("%s: bad blob: %v", m.name, err)
	}
	return &snap
}

func addTask(st *state.Store, title string) {
	st.Apply("add-task", func(s *types.Snapshot) *types.Snapshot {
		next, _ := state.AddTask(s, state.TaskDraft{Title: title})
		return next
	})
}

func TestMutationWritesCacheImmediately(t *testing.T) {
	cache := newMemSink("cache")
	slow := newMemSink("slow")
	st := state.NewStore(types.DefaultSnapshot())
	NewCoordinator(st, persist.New(cache, slow, nil), "local", time.Hour, time.Second)

	addTask(st, "first")

	// Cache write is synchronous with the mutation.
	if cache.writeCount() != 1 {
		t.Fatalf("cache writes = %d, want 1", cache.writeCount())
	}
	// Slow write is debounced (an hour out here).
	if slow.writeCount() != 0 {
		t.Fatalf("slow writes = %d, want 0 before debounce fires", slow.writeCount())
	}
}

func TestDebouncedSlowPushCarriesLatest(t *testing.T) {
	cache := newMemSink("cache")
	slow := newMemSink("slow")
	st := state.NewStore(types.DefaultSnapshot())
	NewCoordinator(st, persist.New(cache, slow, nil), "local", 30*time.Millisecond, time.Second)

	addTask(st, "first")
	addTask(st, "second")
	addTask(st, "third")

	time.Sleep(200 * time.Millisecond)

	if got := slow.writeCount(); got != 1 {
		t.Fatalf("slow writes = %d, want 1 coalesced push", got)
	}
	snap := slow.snapshot(t, "local")
	if len(snap.Tasks) != 3 {
		t.Errorf("pushed snapshot has %d tasks, want the latest 3", len(snap.Tasks))
	}
}

func TestFlushOnlyWhenDirty(t *testing.T) {
	cache := newMemSink("cache")
	slow := newMemSink("slow")
	st := state.NewStore(types.DefaultSnapshot())
	c := NewCoordinator(st, persist.New(cache, slow, nil), "local", time.Hour, time.Second)

	// Nothing mutated: flush is a no-op.
	c.Flush(context.Background())
	if slow.writeCount() != 0 {
		t.Fatal("flush with no pending mutations must not write")
	}

	addTask(st, "first")
	c.Flush(context.Background())
	if slow.writeCount() != 1 {
		t.Fatalf("slow writes = %d, want 1 after dirty flush", slow.writeCount())
	}

	// Flushed: a second flush is again a no-op.
	c.Flush(context.Background())
	if slow.writeCount() != 1 {
		t.Fatal("second flush must not rewrite")
	}
}

func TestPullReplacesStateAndReseedsCache(t *testing.T) {
	cache := newMemSink("cache")
	slow := newMemSink("slow")

	remote := types.DefaultSnapshot()
	remote.Tasks = append(remote.Tasks, types.Task{
		ID: "t1", Title: "from another device", Status: types.TaskActive,
		Tags: []string{}, Attributes: map[string]string{},
	})
	blob, err := json.Marshal(remote)
	if err != nil {
		t.Fatal(err)
	}
	if err := slow.Write(context.Background(), "local", blob); err != nil {
		t.Fatal(err)
	}

	st := state.NewStore(types.DefaultSnapshot())
	mutations := 0
	st.OnMutation(func(op string, old, new *types.Snapshot) { mutations++ })

	c := NewCoordinator(st, persist.New(cache, slow, nil), "local", time.Hour, time.Second)

	source, err := c.Pull(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if source != "slow" {
		t.Errorf("source = %q, want slow", source)
	}
	if len(st.Current().Tasks) != 1 || st.Current().Tasks[0].Title != "from another device" {
		t.Error("pull did not replace in-memory state")
	}

	// The pulled snapshot is reseeded into the cache.
	cached := cache.snapshot(t, "local")
	if len(cached.Tasks) != 1 {
		t.Error("cache not reseeded after pull")
	}

	// Replacement is not a mutation: no undo entry, no re-push.
	if mutations != 0 {
		t.Errorf("pull fired %d mutation hooks, want 0", mutations)
	}
}

func TestSetIdentityRescopes(t *testing.T) {
	cache := newMemSink("cache")
	st := state.NewStore(types.DefaultSnapshot())
	c := NewCoordinator(st, persist.New(cache, nil, nil), "local", time.Hour, time.Second)

	addTask(st, "local task")

	if err := c.SetIdentity(context.Background(), "user-123"); err != nil {
		t.Fatal(err)
	}
	if c.Identity() != "user-123" {
		t.Errorf("identity = %q", c.Identity())
	}
	// New identity has no data: pull lands on the default snapshot.
	if len(st.Current().Tasks) != 0 {
		t.Error("new identity should not see the old identity's tasks")
	}

	// Writes now scope to the new identity.
	addTask(st, "user task")
	cached := cache.snapshot(t, "user-123")
	if len(cached.Tasks) != 1 {
		t.Error("mutation not scoped to the new identity")
	}
}
