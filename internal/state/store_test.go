package state

import (
	"testing"

	"github.com/andrewblevins/taskbed/internal/types"
)

func TestStoreApplyFiresHooks(t *testing.T) {
	st := NewStore(types.DefaultSnapshot())

	var gotOp string
	var gotOld, gotNew *types.Snapshot
	st.OnMutation(func(op string, old, new *types.Snapshot) {
		gotOp, gotOld, gotNew = op, old, new
	})

	before := st.Current()
	after := st.Apply("add-task", func(s *types.Snapshot) *types.Snapshot {
		next, _ := AddTask(s, TaskDraft{Title: "x"})
		return next
	})

	if gotOp != "add-task" {
		t.Errorf("op = %q", gotOp)
	}
	if gotOld != before || gotNew != after {
		t.Error("hook should receive the pre and post snapshots")
	}
	if st.Current() != after {
		t.Error("store did not adopt the new snapshot")
	}
}

func TestStoreNoopSkipsHooks(t *testing.T) {
	st := NewStore(types.DefaultSnapshot())

	fired := false
	st.OnMutation(func(op string, old, new *types.Snapshot) { fired = true })

	// Unknown id: transition returns its input.
	st.Apply("delete-task", func(s *types.Snapshot) *types.Snapshot {
		return DeleteTask(s, "ghost")
	})
	if fired {
		t.Error("no-op transition must not fire mutation hooks")
	}

	st.Apply("nil", func(s *types.Snapshot) *types.Snapshot { return nil })
	if fired {
		t.Error("nil transition must not fire mutation hooks")
	}
}

func TestStoreReplaceBypassesMutationHooks(t *testing.T) {
	st := NewStore(types.DefaultSnapshot())

	mutations := 0
	replaces := 0
	st.OnMutation(func(op string, old, new *types.Snapshot) { mutations++ })
	st.OnReplace(func(*types.Snapshot) { replaces++ })

	pulled := types.DefaultSnapshot()
	st.Replace(pulled)

	if mutations != 0 {
		t.Error("replace must not fire mutation hooks")
	}
	if replaces != 1 {
		t.Errorf("replace hooks fired %d times, want 1", replaces)
	}
	if st.Current() != pulled {
		t.Error("store did not adopt the replacement snapshot")
	}
}
