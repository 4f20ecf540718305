// Package sync decides when persistence happens and reconciles multi-device
// state. Every mutation writes the cache immediately and schedules a
// debounced push of the latest snapshot to the slow sinks; pulls and remote
// change notifications replace the in-memory snapshot wholesale (last
// successful pull wins, no field-level merging).
package sync

import (
	"context"
	"fmt"
	"os"
	stdsync "sync"
	"time"

	"github.com/andrewblevins/taskbed/internal/debug"
	"github.com/andrewblevins/taskbed/internal/migrate"
	"github.com/andrewblevins/taskbed/internal/persist"
	"github.com/andrewblevins/taskbed/internal/state"
	"github.com/andrewblevins/taskbed/internal/storage"
	"github.com/andrewblevins/taskbed/internal/types"
)

// Coordinator owns the push/pull policy around a store and an adapter.
type Coordinator struct {
	store   *state.Store
	adapter *persist.Adapter

	mu       stdsync.Mutex
	identity string
	dirty    bool

	debouncer *Debouncer
	timeout   time.Duration
}

// NewCoordinator wires a coordinator to the store's mutation feed. window is
// the debounce quiet period for slow-sink pushes; timeout bounds each sink
// I/O operation.
func NewCoordinator(store *state.Store, adapter *persist.Adapter, identity string, window, timeout time.Duration) *Coordinator {
	c := &Coordinator{
		store:    store,
		adapter:  adapter,
		identity: identity,
		timeout:  timeout,
	}
	c.debouncer = NewDebouncer(window, c.flushSlow)
	store.OnMutation(func(op string, old, new *types.Snapshot) {
		c.push(new)
	})
	return c
}

// Identity returns the identity currently scoping persistence.
func (c *Coordinator) Identity() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// push is the per-mutation fast path: unconditional synchronous cache write
// plus a debounced slow-sink push. Cache failure is the one persistence
// error worth telling the user about, but it still never unwinds the
// mutation: in-memory state stays authoritative.
func (c *Coordinator) push(snap *types.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.adapter.WriteCache(ctx, c.Identity(), snap); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: local cache write failed: %v\n", err)
	}

	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
	c.debouncer.Trigger()
}

// flushSlow pushes the latest snapshot (not the one that triggered the
// debounce) to the slow sinks.
func (c *Coordinator) flushSlow() {
	c.mu.Lock()
	c.dirty = false
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	c.adapter.WriteSlow(ctx, c.Identity(), c.store.Current())
}

// Flush cancels any pending debounce and pushes the current snapshot to the
// slow sinks right now if there are unsynced mutations. Used on shutdown
// and by the explicit sync command.
func (c *Coordinator) Flush(ctx context.Context) {
	c.debouncer.Cancel()

	c.mu.Lock()
	wasDirty := c.dirty
	c.dirty = false
	c.mu.Unlock()
	if !wasDirty {
		return
	}
	c.adapter.WriteSlow(ctx, c.Identity(), c.store.Current())
}

// Push forces a slow-sink write of the current snapshot regardless of the
// dirty state (the explicit "sync now" command).
func (c *Coordinator) Push(ctx context.Context) {
	c.debouncer.Cancel()
	c.mu.Lock()
	c.dirty = false
	c.mu.Unlock()
	c.adapter.WriteSlow(ctx, c.Identity(), c.store.Current())
}

// Pull reads the best available snapshot and replaces the in-memory state
// wholesale. Local unsynced edits lose to the pulled snapshot; that is the
// documented tradeoff of snapshot-level sync. The cache is reseeded with
// whatever was pulled.
func (c *Coordinator) Pull(ctx context.Context) (string, error) {
	identity := c.Identity()
	snap, source, err := c.adapter.Load(ctx, identity)
	if err != nil {
		return "", err
	}

	// One-time content migrations run on the pulled snapshot, before
	// anything else observes it.
	snap, changed := migrate.ApplyContent(snap)

	c.store.Replace(snap)

	if err := c.adapter.WriteCache(ctx, identity, snap); err != nil {
		debug.Logf("cache reseed after pull failed: %v", err)
	}
	if changed {
		// Push migrated markers so other devices do not re-run the migration.
		c.adapter.WriteSlow(ctx, identity, snap)
	}
	return source, nil
}

// SetIdentity rescopes persistence to a new identity (sign-in/sign-out) and
// pulls that identity's state. All subsequent reads and writes use the new
// scope; nothing from the previous identity is carried over.
func (c *Coordinator) SetIdentity(ctx context.Context, identity string) error {
	c.debouncer.Cancel()
	c.mu.Lock()
	c.identity = identity
	c.dirty = false
	c.mu.Unlock()

	_, err := c.Pull(ctx)
	return err
}

// Watch subscribes to the change feeds of every slow sink that offers one
// and performs a pull whenever a change lands. Blocks until ctx is done.
func (c *Coordinator) Watch(ctx context.Context) error {
	var wg stdsync.WaitGroup
	subscribed := 0

	for _, sink := range c.adapter.SlowSinks() {
		notifier, ok := storage.AsNotifier(sink)
		if !ok {
			continue
		}
		ch, err := notifier.Subscribe(ctx, c.Identity())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %s change feed unavailable: %v\n", sink.Name(), err)
			continue
		}
		subscribed++

		wg.Add(1)
		go func(name string, ch <-chan struct{}) {
			defer wg.Done()
			for range ch {
				debug.Logf("change notification from %s", name)
				if _, err := c.Pull(ctx); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: pull after %s notification failed: %v\n", name, err)
				}
			}
		}(sink.Name(), ch)
	}

	if subscribed == 0 {
		return fmt.Errorf("no change feeds available to watch")
	}
	wg.Wait()
	return nil
}

// Shutdown performs the flush-on-exit guarantee: cancel the pending
// debounce and do one final synchronous push so no mutation is lost when
// the process exits inside the quiet window.
func (c *Coordinator) Shutdown(ctx context.Context) {
	c.Flush(ctx)
}
