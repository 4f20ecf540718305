package state

import (
	"testing"

	"github.com/andrewblevins/taskbed/internal/types"
)

func TestSetTaskAttributeValidatesOption(t *testing.T) {
	s := types.DefaultSnapshot()
	s, task := AddTask(s, TaskDraft{Title: "x"})

	// "energy" ships in the default snapshot with high/medium/low.
	next := SetTaskAttribute(s, task.ID, "energy", "high")
	if next == s {
		t.Fatal("expected a new snapshot")
	}
	if next.TaskByID(task.ID).Attributes["energy"] != "high" {
		t.Error("attribute value not set")
	}

	if SetTaskAttribute(next, task.ID, "energy", "bogus") != next {
		t.Error("unknown option id should be refused")
	}

	cleared := SetTaskAttribute(next, task.ID, "energy", "")
	if _, has := cleared.TaskByID(task.ID).Attributes["energy"]; has {
		t.Error("empty option id should clear the value")
	}
}

func TestDeleteAttributeOptionClearsTaskValues(t *testing.T) {
	s := types.DefaultSnapshot()
	s, task := AddTask(s, TaskDraft{Title: "x"})
	s = SetTaskAttribute(s, task.ID, "energy", "high")

	s = DeleteAttributeOption(s, "energy", "high")

	attr := s.AttributeByID("energy")
	for _, o := range attr.Options {
		if o.ID == "high" {
			t.Error("option not removed")
		}
	}
	if _, has := s.TaskByID(task.ID).Attributes["energy"]; has {
		t.Error("task value referencing a deleted option should be cleared")
	}
}

func TestDeleteAttributeStripsTaskKeys(t *testing.T) {
	s := types.DefaultSnapshot()
	s, task := AddTask(s, TaskDraft{Title: "x"})
	s = SetTaskAttribute(s, task.ID, "energy", "low")

	s = DeleteAttribute(s, "energy")

	if s.AttributeByID("energy") != nil {
		t.Error("attribute not deleted")
	}
	if _, has := s.TaskByID(task.ID).Attributes["energy"]; has {
		t.Error("task attribute key should be stripped")
	}
}

func TestSetGroupingValidation(t *testing.T) {
	s := types.DefaultSnapshot()

	next := SetGrouping(s, types.ViewGrouping{Type: types.GroupByProject})
	if next.CurrentGrouping.Type != types.GroupByProject {
		t.Error("grouping by project not applied")
	}

	if SetGrouping(s, types.ViewGrouping{AttributeID: "ghost"}) != s {
		t.Error("grouping by unknown attribute should be refused")
	}

	next = SetGrouping(s, types.ViewGrouping{AttributeID: "energy"})
	if next.CurrentGrouping.AttributeID != "energy" {
		t.Error("grouping by known attribute not applied")
	}
}

func TestReviewFlow(t *testing.T) {
	s := types.DefaultSnapshot()

	if AdvanceReview(s) != s {
		t.Error("advancing without a review in progress should be a no-op")
	}

	s = StartReview(s)
	if !s.ReviewInProgress || s.ReviewStep != 0 {
		t.Fatalf("start: inProgress=%v step=%d", s.ReviewInProgress, s.ReviewStep)
	}
	s = AdvanceReview(s)
	s = AdvanceReview(s)
	if s.ReviewStep != 2 {
		t.Errorf("step = %d, want 2", s.ReviewStep)
	}
	s = FinishReview(s)
	if s.ReviewInProgress || s.ReviewStep != 0 {
		t.Error("finish should reset review state")
	}
}

func TestSetTodayFocusDropsUnknownIDs(t *testing.T) {
	s := types.DefaultSnapshot()
	s, task := AddTask(s, TaskDraft{Title: "x"})

	s = SetTodayFocus(s, []string{task.ID, "ghost"})
	if len(s.TodayTaskIDs) != 1 || s.TodayTaskIDs[0] != task.ID {
		t.Errorf("today = %v", s.TodayTaskIDs)
	}
}
