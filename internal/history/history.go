// Package history implements bounded undo/redo over snapshot values.
//
// The engine records the pre-mutation snapshot of every effective mutation.
// View and session fields (grouping, tag filter, review progress, today
// focus) are stripped before recording and re-merged from live state on
// restore, so undoing an edit never also yanks the user's view around.
package history

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/andrewblevins/taskbed/internal/state"
	"github.com/andrewblevins/taskbed/internal/types"
)

// Ops the engine itself issues. Mutations carrying these names are restores,
// not edits, and must not be re-recorded.
const (
	OpUndo = "undo"
	OpRedo = "redo"
)

// Engine keeps the undo and redo stacks for one store.
type Engine struct {
	store *state.Store
	limit int

	mu     sync.Mutex
	past   []*types.Snapshot
	future []*types.Snapshot
}

// NewEngine creates an engine bounded to limit undo steps and attaches it to
// the store's mutation feed. A limit of zero or less disables recording.
func NewEngine(store *state.Store, limit int) *Engine {
	e := &Engine{store: store, limit: limit}
	store.OnMutation(e.record)
	store.OnReplace(func(*types.Snapshot) {
		// A pulled snapshot invalidates both stacks: the states they would
		// restore no longer descend from what is on screen.
		e.Clear()
	})
	return e
}

// record captures the pre-mutation snapshot. A fresh edit forks history, so
// the redo stack is discarded.
func (e *Engine) record(op string, old, new *types.Snapshot) {
	if op == OpUndo || op == OpRedo {
		return
	}
	if e.limit <= 0 {
		return
	}

	before := sanitize(old)
	if reflect.DeepEqual(before, sanitize(new)) {
		// View-only mutation: restoring it would change nothing, so it
		// neither takes a slot nor forks the redo stack.
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.past = append(e.past, before)
	if len(e.past) > e.limit {
		e.past = e.past[1:]
	}
	e.future = nil
}

// CanUndo reports whether an undo step is available.
func (e *Engine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.past) > 0
}

// CanRedo reports whether a redo step is available.
func (e *Engine) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.future) > 0
}

// Undo restores the most recent recorded state. The restored snapshot keeps
// the live view fields, and goes through the store as a mutation so
// persistence hooks still fire.
func (e *Engine) Undo() error {
	e.mu.Lock()
	if len(e.past) == 0 {
		e.mu.Unlock()
		return fmt.Errorf("nothing to undo")
	}
	target := e.past[len(e.past)-1]
	e.past = e.past[:len(e.past)-1]
	e.future = append(e.future, sanitize(e.store.Current()))
	e.mu.Unlock()

	e.store.Apply(OpUndo, func(cur *types.Snapshot) *types.Snapshot {
		return mergeView(target, cur)
	})
	return nil
}

// Redo reverses the most recent undo.
func (e *Engine) Redo() error {
	e.mu.Lock()
	if len(e.future) == 0 {
		e.mu.Unlock()
		return fmt.Errorf("nothing to redo")
	}
	target := e.future[len(e.future)-1]
	e.future = e.future[:len(e.future)-1]
	e.past = append(e.past, sanitize(e.store.Current()))
	e.mu.Unlock()

	e.store.Apply(OpRedo, func(cur *types.Snapshot) *types.Snapshot {
		return mergeView(target, cur)
	})
	return nil
}

// Clear drops both stacks.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.past = nil
	e.future = nil
}

// Depth returns the number of available undo and redo steps.
func (e *Engine) Depth() (undo, redo int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.past), len(e.future)
}

// sanitize strips view and session fields from a snapshot before it enters
// a stack.
func sanitize(s *types.Snapshot) *types.Snapshot {
	out := s.Clone()
	out.CurrentGrouping = types.ViewGrouping{}
	out.SelectedTagFilter = ""
	out.ReviewInProgress = false
	out.ReviewStep = 0
	out.TodayTaskIDs = nil
	return out
}

// mergeView returns the target snapshot carrying the live snapshot's view
// and session fields.
func mergeView(target, live *types.Snapshot) *types.Snapshot {
	out := target.Clone()
	out.CurrentGrouping = live.CurrentGrouping
	out.SelectedTagFilter = live.SelectedTagFilter
	out.ReviewInProgress = live.ReviewInProgress
	out.ReviewStep = live.ReviewStep
	out.TodayTaskIDs = append([]string(nil), live.TodayTaskIDs...)
	return out
}

// dump is the persisted shape of the two stacks.
type dump struct {
	Past   []*types.Snapshot `json:"past"`
	Future []*types.Snapshot `json:"future"`
}

// Dump serializes both stacks for persistence across CLI invocations.
func (e *Engine) Dump() ([]byte, []byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	past, err := json.Marshal(e.past)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding undo stack: %w", err)
	}
	future, err := json.Marshal(e.future)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding redo stack: %w", err)
	}
	return past, future, nil
}

// Load restores previously dumped stacks, trimming the undo stack to the
// engine's limit. Malformed blobs reset the corresponding stack rather than
// failing; undo state is convenience, not data.
func (e *Engine) Load(past, future []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.past = decodeStack(past)
	e.future = decodeStack(future)
	if e.limit > 0 && len(e.past) > e.limit {
		e.past = e.past[len(e.past)-e.limit:]
	}
}

func decodeStack(blob []byte) []*types.Snapshot {
	if len(blob) == 0 {
		return nil
	}
	var stack []*types.Snapshot
	if err := json.Unmarshal(blob, &stack); err != nil {
		return nil
	}
	for _, s := range stack {
		if s != nil {
			s.SetDefaults()
		}
	}
	return stack
}
