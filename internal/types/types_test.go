package types

import (
	"testing"
	"time"
)

func TestNormalizeTag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"phone", "@phone"},
		{"@phone", "@phone"},
		{"  errands  ", "@errands"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := NormalizeTag(tt.in); got != tt.want {
			t.Errorf("NormalizeTag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEndOfDay(t *testing.T) {
	in := time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local)
	got := time.UnixMilli(EndOfDay(in))
	if got.Hour() != 23 || got.Minute() != 59 || got.Second() != 59 {
		t.Errorf("EndOfDay landed at %v, want end of day", got)
	}
	if got.Day() != 14 || got.Month() != 3 {
		t.Errorf("EndOfDay moved to a different day: %v", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := DefaultSnapshot()
	orig.Tasks = append(orig.Tasks, Task{
		ID:         "t1",
		Title:      "original",
		Tags:       []string{"@phone"},
		Attributes: map[string]string{"energy": "high"},
	})

	clone := orig.Clone()
	clone.Tasks[0].Title = "changed"
	clone.Tasks[0].Tags[0] = "@computer"
	clone.Tasks[0].Attributes["energy"] = "low"
	clone.AvailableTags[0] = "@mutated"
	clone.Attributes[0].Options[0].Label = "mutated"

	if orig.Tasks[0].Title != "original" {
		t.Error("clone shares task struct with original")
	}
	if orig.Tasks[0].Tags[0] != "@phone" {
		t.Error("clone shares tag slice with original")
	}
	if orig.Tasks[0].Attributes["energy"] != "high" {
		t.Error("clone shares attribute map with original")
	}
	if orig.AvailableTags[0] == "@mutated" {
		t.Error("clone shares available-tags slice with original")
	}
	if orig.Attributes[0].Options[0].Label == "mutated" {
		t.Error("clone shares attribute options with original")
	}
}

func TestProjectByRef(t *testing.T) {
	s := &Snapshot{
		Projects: []Project{
			{ID: "p1", Name: "Home Renovation"},
			{ID: "p2", Name: "Work"},
		},
	}

	if got := s.ProjectByRef("p2"); got == nil || got.ID != "p2" {
		t.Error("lookup by id failed")
	}
	if got := s.ProjectByRef("home renovation"); got == nil || got.ID != "p1" {
		t.Error("case-insensitive name lookup failed")
	}
	if got := s.ProjectByRef("nope"); got != nil {
		t.Error("unknown ref should return nil")
	}
}

func TestTaskOverdue(t *testing.T) {
	now := Now()
	tests := []struct {
		name string
		task Task
		want bool
	}{
		{"past due", Task{DueDate: now - 1000}, true},
		{"future due", Task{DueDate: now + 100000}, false},
		{"no due date", Task{}, false},
		{"completed past due", Task{DueDate: now - 1000, Completed: true}, false},
	}
	for _, tt := range tests {
		if got := tt.task.Overdue(now); got != tt.want {
			t.Errorf("%s: Overdue = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSetDefaults(t *testing.T) {
	s := &Snapshot{
		Tasks:    []Task{{ID: "t1", Title: "bare"}},
		Projects: []Project{{ID: "p1", Name: "bare"}},
	}
	s.SetDefaults()

	if s.Tasks[0].Status != TaskActive {
		t.Errorf("task status = %q, want active", s.Tasks[0].Status)
	}
	if s.Tasks[0].Tags == nil || s.Tasks[0].Attributes == nil {
		t.Error("task collections not initialized")
	}
	if s.Projects[0].Status != ProjectActive {
		t.Errorf("project status = %q, want active", s.Projects[0].Status)
	}
	if s.Areas == nil || s.SomedayItems == nil || s.AvailableTags == nil {
		t.Error("snapshot collections not initialized")
	}
}

func TestProjectStatusClosed(t *testing.T) {
	if !ProjectCompleted.Closed() || !ProjectCancelled.Closed() {
		t.Error("completed and cancelled should be closed")
	}
	if ProjectActive.Closed() || ProjectSomeday.Closed() {
		t.Error("active and someday should not be closed")
	}
}
