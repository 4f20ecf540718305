// Package state implements the Snapshot Store: the single source of truth
// for application state, exposed as pure transition functions over an
// explicit snapshot value plus a Store handle that applies them.
//
// Transitions never mutate the snapshot they receive. They clone, modify
// the clone, and return it; an operation on a non-existent id returns the
// input snapshot unchanged. That contract is what lets the history package
// keep pre/post snapshots without copying anything itself.
package state

import (
	"sync"

	"github.com/andrewblevins/taskbed/internal/types"
)

// Transition is a pure state-transition function. It must return either a
// fresh snapshot or its input unchanged (for no-ops).
type Transition func(*types.Snapshot) *types.Snapshot

// MutationHook observes applied mutations. old and new are distinct
// snapshot values; hooks must treat both as read-only.
type MutationHook func(op string, old, new *types.Snapshot)

// Store holds the current snapshot and serializes transitions against it.
// All mutation goes through Apply; everything else treats snapshots as
// read-only values.
type Store struct {
	mu      sync.Mutex
	current *types.Snapshot

	mutationHooks []MutationHook
	replaceHooks  []func(*types.Snapshot)
}

// NewStore creates a store seeded with the given snapshot.
func NewStore(snap *types.Snapshot) *Store {
	if snap == nil {
		snap = types.DefaultSnapshot()
	}
	return &Store{current: snap}
}

// Current returns the current snapshot. Callers must not mutate it.
func (st *Store) Current() *types.Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.current
}

// OnMutation registers a hook invoked after every effective mutation,
// in registration order. No-op transitions do not fire hooks.
func (st *Store) OnMutation(h MutationHook) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.mutationHooks = append(st.mutationHooks, h)
}

// OnReplace registers a hook invoked after a wholesale replacement
// (sync pull). Replacements bypass mutation hooks: a pulled snapshot is
// not an undoable edit and must not re-trigger a push.
func (st *Store) OnReplace(h func(*types.Snapshot)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.replaceHooks = append(st.replaceHooks, h)
}

// Apply runs a transition against the current snapshot. If the transition
// returns a new snapshot it becomes current and mutation hooks fire.
// Returns the (possibly unchanged) current snapshot.
func (st *Store) Apply(op string, fn Transition) *types.Snapshot {
	st.mu.Lock()
	old := st.current
	next := fn(old)
	if next == nil || next == old {
		st.mu.Unlock()
		return old
	}
	st.current = next
	hooks := st.mutationHooks
	st.mu.Unlock()

	for _, h := range hooks {
		h(op, old, next)
	}
	return next
}

// Replace swaps in a whole new snapshot, e.g. after a sync pull. The
// previous snapshot is discarded without touching undo history.
func (st *Store) Replace(snap *types.Snapshot) {
	if snap == nil {
		return
	}
	st.mu.Lock()
	st.current = snap
	hooks := st.replaceHooks
	st.mu.Unlock()

	for _, h := range hooks {
		h(snap)
	}
}
