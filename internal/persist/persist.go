// Package persist composes the storage sinks into the persistence adapter:
// one synchronous fast path (the SQLite cache) and two best-effort slow
// paths (the local-network server and the remote store). Slow-sink failures
// are logged and absorbed; the in-memory snapshot is always treated as valid
// even when the last durable write failed.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/andrewblevins/taskbed/internal/debug"
	"github.com/andrewblevins/taskbed/internal/migrate"
	"github.com/andrewblevins/taskbed/internal/storage"
	"github.com/andrewblevins/taskbed/internal/types"
)

// Adapter serializes snapshots and routes them through the sinks.
type Adapter struct {
	cache storage.Sink
	slow  []storage.Sink // localapi, then remote; either may be absent
}

// New builds an adapter. cache is required; localapi and remote may be nil
// (remote is nil whenever credentials are not configured).
func New(cache, localapi, remote storage.Sink) *Adapter {
	a := &Adapter{cache: cache}
	if localapi != nil {
		a.slow = append(a.slow, localapi)
	}
	if remote != nil {
		a.slow = append(a.slow, remote)
	}
	return a
}

// SlowSinks exposes the slow sinks (for the coordinator's change feeds).
func (a *Adapter) SlowSinks() []storage.Sink {
	return a.slow
}

// Encode marshals a snapshot to its persisted form.
func Encode(snap *types.Snapshot) ([]byte, error) {
	blob, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return blob, nil
}

// Decode migrates a persisted blob to the current schema and unmarshals it.
// Malformed blobs and unknown future versions return an error; the caller
// decides whether that is fatal (migration failure at load) or a fallthrough
// (corrupt cache entry).
func Decode(blob []byte) (*types.Snapshot, error) {
	migrated, err := migrate.Apply(blob)
	if err != nil {
		return nil, err
	}
	var snap types.Snapshot
	if err := json.Unmarshal(migrated, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	snap.SetDefaults()
	return &snap, nil
}

// WriteCache writes the snapshot synchronously to the fast local cache.
// This is the one write whose failure fails the overall write.
func (a *Adapter) WriteCache(ctx context.Context, identity string, snap *types.Snapshot) error {
	blob, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := a.cache.Write(ctx, identity, blob); err != nil {
		return fmt.Errorf("cache write: %w", err)
	}
	return nil
}

// WriteSlow pushes the snapshot to every slow sink. The writes run
// independently: one sink failing or hanging never blocks the other, and
// failures are logged rather than returned. The next debounced push retries
// implicitly.
func (a *Adapter) WriteSlow(ctx context.Context, identity string, snap *types.Snapshot) {
	blob, err := Encode(snap)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to encode snapshot for sync: %v\n", err)
		return
	}

	var wg sync.WaitGroup
	for _, sink := range a.slow {
		wg.Add(1)
		go func(sink storage.Sink) {
			defer wg.Done()
			if err := sink.Write(ctx, identity, blob); err != nil {
				debug.Logf("%s write failed: %v", sink.Name(), err)
			}
		}(sink)
	}
	wg.Wait()
}

// Load reads the best available snapshot for the identity: remote first
// (last slow sink), then the local server, then the cache, then the default
// snapshot. Malformed blobs are discarded with a warning and the chain
// continues; a blob with a schema version newer than this build fails
// loudly instead.
func (a *Adapter) Load(ctx context.Context, identity string) (*types.Snapshot, string, error) {
	// Preference order is the reverse of write fan-out: most authoritative
	// (remote) down to most local.
	chain := make([]storage.Sink, 0, len(a.slow)+1)
	for i := len(a.slow) - 1; i >= 0; i-- {
		chain = append(chain, a.slow[i])
	}
	chain = append(chain, a.cache)

	for _, sink := range chain {
		blob, err := sink.Read(ctx, identity)
		if storage.IsNotFound(err) {
			debug.Logf("%s: no snapshot for %s", sink.Name(), identity)
			continue
		}
		if err != nil {
			debug.Logf("%s read failed: %v", sink.Name(), err)
			continue
		}

		snap, err := Decode(blob)
		if err != nil {
			if errors.Is(err, migrate.ErrUnknownVersion) {
				return nil, "", fmt.Errorf("loading from %s: %w", sink.Name(), err)
			}
			fmt.Fprintf(os.Stderr, "Warning: discarding malformed snapshot from %s: %v\n", sink.Name(), err)
			continue
		}
		return snap, sink.Name(), nil
	}

	return types.DefaultSnapshot(), "default", nil
}
