package state

import (
	"testing"

	"github.com/andrewblevins/taskbed/internal/types"
)

func TestAddTask(t *testing.T) {
	s := types.DefaultSnapshot()

	next, task := AddTask(s, TaskDraft{Title: "Call dentist", Tags: []string{"phone"}})
	if task == nil {
		t.Fatal("expected a created task")
	}
	if next == s {
		t.Fatal("expected a new snapshot")
	}
	if len(s.Tasks) != 0 {
		t.Error("original snapshot was mutated")
	}
	if task.Status != types.TaskActive {
		t.Errorf("status = %q, want active", task.Status)
	}
	if len(task.Tags) != 1 || task.Tags[0] != "@phone" {
		t.Errorf("tags = %v, want [@phone]", task.Tags)
	}
}

func TestAddTaskEmptyTitleIsNoop(t *testing.T) {
	s := types.DefaultSnapshot()
	next, task := AddTask(s, TaskDraft{})
	if next != s || task != nil {
		t.Error("empty title should be a no-op")
	}
}

func TestAddTaskRegistersNewTags(t *testing.T) {
	s := types.DefaultSnapshot()
	next, _ := AddTask(s, TaskDraft{Title: "x", Tags: []string{"@gym"}})

	found := false
	for _, tag := range next.AvailableTags {
		if tag == "@gym" {
			found = true
		}
	}
	if !found {
		t.Error("new tag not auto-registered in available set")
	}
}

func TestAddTaskDropsDanglingRefs(t *testing.T) {
	s := types.DefaultSnapshot()
	next, task := AddTask(s, TaskDraft{Title: "x", ProjectID: "ghost", AreaID: "ghost"})
	if task.ProjectID != "" || task.AreaID != "" {
		t.Error("dangling project/area references should be dropped")
	}
	_ = next
}

func TestAddTaskWaitingRequiresWaitingFor(t *testing.T) {
	s := types.DefaultSnapshot()
	_, task := AddTask(s, TaskDraft{Title: "x", Status: types.TaskWaiting})
	if task.Status != types.TaskActive {
		t.Error("waiting without waitingFor should fall back to active")
	}

	_, task = AddTask(s, TaskDraft{Title: "y", Status: types.TaskWaiting, WaitingFor: "bob"})
	if task.Status != types.TaskWaiting || task.WaitingFor != "bob" || task.WaitingSince == 0 {
		t.Error("waiting task should carry waitingFor and waitingSince")
	}
}

func TestWaitingInvariant(t *testing.T) {
	s := types.DefaultSnapshot()
	s, task := AddTask(s, TaskDraft{Title: "x"})
	id := task.ID

	// Into waiting: stamps waitingSince.
	s = MoveToWaiting(s, id, "alice")
	got := s.TaskByID(id)
	if got.Status != types.TaskWaiting || got.WaitingFor != "alice" || got.WaitingSince == 0 {
		t.Fatalf("move to waiting: %+v", got)
	}

	// Out of waiting: clears both fields.
	s = ActivateTask(s, id)
	got = s.TaskByID(id)
	if got.Status != types.TaskActive || got.WaitingFor != "" || got.WaitingSince != 0 {
		t.Fatalf("activate: %+v", got)
	}

	// Empty waitingFor refused.
	before := s
	s = MoveToWaiting(s, id, "")
	if s != before {
		t.Error("empty waitingFor should be a no-op")
	}
}

func TestToggleTask(t *testing.T) {
	s := types.DefaultSnapshot()
	s, task := AddTask(s, TaskDraft{Title: "x"})
	id := task.ID

	s = ToggleTask(s, id)
	if got := s.TaskByID(id); !got.Completed || got.CompletedAt == 0 {
		t.Error("toggle should complete and stamp completedAt")
	}

	s = ToggleTask(s, id)
	if got := s.TaskByID(id); got.Completed || got.CompletedAt != 0 {
		t.Error("second toggle should clear completion and completedAt")
	}
}

func TestCompleteTaskIdempotent(t *testing.T) {
	s := types.DefaultSnapshot()
	s, task := AddTask(s, TaskDraft{Title: "x"})
	s = CompleteTask(s, task.ID)
	again := CompleteTask(s, task.ID)
	if again != s {
		t.Error("completing a completed task should be a no-op")
	}
}

func TestDeleteTaskUnknownIDIsNoop(t *testing.T) {
	s := types.DefaultSnapshot()
	if DeleteTask(s, "ghost") != s {
		t.Error("deleting unknown id should return input unchanged")
	}
}

func TestUpdateTaskAttributes(t *testing.T) {
	s := types.DefaultSnapshot()
	s, task := AddTask(s, TaskDraft{Title: "x"})
	id := task.ID

	high := "high"
	s = UpdateTask(s, id, TaskUpdate{Attributes: map[string]*string{"energy": &high}})
	if s.TaskByID(id).Attributes["energy"] != "high" {
		t.Error("attribute not set")
	}

	s = UpdateTask(s, id, TaskUpdate{Attributes: map[string]*string{"energy": nil}})
	if _, has := s.TaskByID(id).Attributes["energy"]; has {
		t.Error("nil value should delete the attribute key")
	}
}

func TestReorderTasks(t *testing.T) {
	s := types.DefaultSnapshot()
	var ids []string
	for _, title := range []string{"a", "b", "c", "d"} {
		var task *types.Task
		s, task = AddTask(s, TaskDraft{Title: title})
		ids = append(ids, task.ID)
	}

	// Listed ids first in given order; unlisted keep relative order after.
	s = ReorderTasks(s, []string{ids[2], ids[0], "ghost"})

	wantTitles := []string{"c", "a", "b", "d"}
	for i, want := range wantTitles {
		if s.Tasks[i].Title != want {
			t.Errorf("position %d = %q, want %q", i, s.Tasks[i].Title, want)
		}
		if s.Tasks[i].Order != i {
			t.Errorf("position %d order = %d, want %d", i, s.Tasks[i].Order, i)
		}
	}
}

func TestTagOperations(t *testing.T) {
	s := types.DefaultSnapshot()
	s, task := AddTask(s, TaskDraft{Title: "x"})
	id := task.ID

	s = AddTaskTag(s, id, "gym")
	if !s.TaskByID(id).HasTag("@gym") {
		t.Error("tag not added")
	}

	// Duplicate add is a no-op.
	if AddTaskTag(s, id, "@gym") != s {
		t.Error("duplicate tag add should be a no-op")
	}

	s = RemoveTaskTag(s, id, "@gym")
	if s.TaskByID(id).HasTag("@gym") {
		t.Error("tag not removed")
	}

	// Removal keeps the tag in the global set.
	found := false
	for _, tag := range s.AvailableTags {
		if tag == "@gym" {
			found = true
		}
	}
	if !found {
		t.Error("untagging a task should not unregister the tag globally")
	}
}
