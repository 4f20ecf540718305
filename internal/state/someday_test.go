package state

import (
	"testing"

	"github.com/andrewblevins/taskbed/internal/types"
)

func TestPromoteSomedayToTask(t *testing.T) {
	s := types.DefaultSnapshot()
	s, item := AddSomeday(s, "Learn woodworking", "start with a bench")

	s, task := PromoteSomedayToTask(s, item.ID)
	if task == nil {
		t.Fatal("expected a created task")
	}
	if task.Title != "Learn woodworking" || task.Notes != "start with a bench" {
		t.Errorf("promoted task: %+v", task)
	}
	if task.Status != types.TaskActive || task.Processed {
		t.Error("promoted task should be active and unprocessed")
	}
	if s.SomedayByID(item.ID) != nil {
		t.Error("someday item should be removed after promotion")
	}
}

func TestPromoteSomedayToProjectNameCollision(t *testing.T) {
	s := types.DefaultSnapshot()
	s, _ = AddProject(s, "Garden", "", "")
	s, item := AddSomeday(s, "garden", "")

	next, project := PromoteSomedayToProject(s, item.ID)
	if project != nil || next != s {
		t.Error("promotion onto an existing project name should keep the someday item")
	}
	if next.SomedayByID(item.ID) == nil {
		t.Error("someday item should survive a refused promotion")
	}
}

func TestDeleteTagEverywhere(t *testing.T) {
	s := types.DefaultSnapshot()
	s, task := AddTask(s, TaskDraft{Title: "x", Tags: []string{"@phone"}})
	s = SetTagFilter(s, "@phone")

	s = DeleteTag(s, "@phone")

	for _, tag := range s.AvailableTags {
		if tag == "@phone" {
			t.Error("tag still registered")
		}
	}
	if s.TaskByID(task.ID).HasTag("@phone") {
		t.Error("tag still on task")
	}
	if s.SelectedTagFilter != "" {
		t.Error("filter pointing at deleted tag should be cleared")
	}
}
