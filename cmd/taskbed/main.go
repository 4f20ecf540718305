// Command taskbed is the CLI client for the taskbed GTD system.
//
// State is a single snapshot persisted through three sinks: a local SQLite
// cache (synchronous, always), a local-network state server, and an optional
// hosted remote (both best-effort, pushed on exit). Every invocation loads
// from the cache, applies transitions, and flushes before exiting.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/andrewblevins/taskbed/internal/config"
	"github.com/andrewblevins/taskbed/internal/debug"
	"github.com/andrewblevins/taskbed/internal/history"
	"github.com/andrewblevins/taskbed/internal/migrate"
	"github.com/andrewblevins/taskbed/internal/persist"
	"github.com/andrewblevins/taskbed/internal/state"
	"github.com/andrewblevins/taskbed/internal/storage"
	"github.com/andrewblevins/taskbed/internal/storage/cache"
	"github.com/andrewblevins/taskbed/internal/storage/localapi"
	"github.com/andrewblevins/taskbed/internal/storage/remote"
	"github.com/andrewblevins/taskbed/internal/sync"
	"github.com/andrewblevins/taskbed/internal/types"
)

// Wiring shared by every command. Populated in rootCmd's PersistentPreRunE,
// torn down in PersistentPostRunE.
var (
	store        *state.Store
	localCache   *cache.Cache
	adapter      *persist.Adapter
	coordinator  *sync.Coordinator
	undoEngine   *history.Engine
	remoteClient *remote.Client
	identity     string
)

var rootCmd = &cobra.Command{
	Use:   "taskbed",
	Short: "Getting-Things-Done task management from the command line",
	Long: `taskbed manages tasks, projects, areas and someday/maybe items with
full offline support. Edits land in a local cache immediately and sync to the
taskbedd server and (when signed in) the hosted store in the background.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
}

func setup() error {
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}

	dataDir := config.DataDir()
	timeout := config.GetDuration("sink-timeout")

	var err error
	localCache, err = cache.Open(filepath.Join(dataDir, "cache.db"))
	if err != nil {
		return err
	}

	var local, rem storage.Sink
	if serverURL := config.GetString("server-url"); serverURL != "" {
		local = localapi.New(serverURL, timeout)
	}

	identity = config.GetString("identity")
	if config.RemoteConfigured() {
		remoteClient = remote.New(config.GetString("remote-url"), config.GetString("remote-anon-key"), timeout)
		if session := remote.LoadSession(remote.SessionPath(dataDir)); session != nil {
			remoteClient.UseSession(session)
			identity = session.UserID
		}
		rem = remoteClient
	}

	adapter = persist.New(localCache, local, rem)

	ctx := context.Background()
	snap, err := loadStartup(ctx, identity)
	if err != nil {
		return err
	}
	store = state.NewStore(snap)

	coordinator = sync.NewCoordinator(store, adapter, identity,
		config.GetDuration("flush-debounce"), timeout)

	// One-time content migrations run before the history engine attaches, so
	// migrating old data is never an undoable edit. Applying through the
	// store lets the coordinator persist the migrated markers.
	if next, changed := migrate.ApplyContent(store.Current()); changed {
		store.Apply("content-migration", func(*types.Snapshot) *types.Snapshot {
			return next
		})
	}

	undoEngine = history.NewEngine(store, config.GetInt("undo-limit"))
	past, future, err := localCache.ReadHistory(ctx, identity)
	if err != nil {
		debug.Logf("history load failed: %v", err)
	} else {
		undoEngine.Load(past, future)
	}
	return nil
}

// loadStartup reads the snapshot the CLI starts from. A warm start decodes
// the cached copy and never touches the network; a cache miss (first run on
// this machine) or a discarded corrupt entry walks the full read chain so
// state another device already pushed shows up immediately. A cached blob
// with a schema newer than this build aborts startup instead of guessing.
func loadStartup(ctx context.Context, identity string) (*types.Snapshot, error) {
	blob, err := localCache.Read(ctx, identity)
	if err == nil {
		snap, derr := persist.Decode(blob)
		if derr == nil {
			return snap, nil
		}
		if errors.Is(derr, migrate.ErrUnknownVersion) {
			return nil, fmt.Errorf("cached snapshot: %w", derr)
		}
		fmt.Fprintf(os.Stderr, "Warning: discarding unreadable cached snapshot: %v\n", derr)
	} else if !storage.IsNotFound(err) {
		fmt.Fprintf(os.Stderr, "Warning: cache read failed: %v\n", err)
	}

	snap, source, err := adapter.Load(ctx, identity)
	if err != nil {
		return nil, err
	}
	debug.Logf("startup snapshot from %s", source)
	if source != localCache.Name() && source != "default" {
		// Seed the cache so the next invocation starts warm.
		if werr := adapter.WriteCache(ctx, identity, snap); werr != nil {
			debug.Logf("cache seed failed: %v", werr)
		}
	}
	return snap, nil
}

func teardown() error {
	ctx := context.Background()
	coordinator.Shutdown(ctx)

	past, future, err := undoEngine.Dump()
	if err != nil {
		debug.Logf("history dump failed: %v", err)
	} else if err := localCache.WriteHistory(ctx, identity, past, future); err != nil {
		debug.Logf("history save failed: %v", err)
	}

	return localCache.Close()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
