package state

import (
	"strings"

	"github.com/google/uuid"

	"github.com/andrewblevins/taskbed/internal/types"
)

// AddSomeday captures an idea into the someday/maybe list.
func AddSomeday(s *types.Snapshot, title, notes string) (*types.Snapshot, *types.SomedayItem) {
	title = strings.TrimSpace(title)
	if title == "" {
		return s, nil
	}
	next := s.Clone()
	item := types.SomedayItem{
		ID:        uuid.NewString(),
		Title:     title,
		Notes:     notes,
		CreatedAt: types.Now(),
	}
	next.SomedayItems = append(next.SomedayItems, item)
	return next, &next.SomedayItems[len(next.SomedayItems)-1]
}

// UpdateSomeday edits a someday item's title and/or notes.
func UpdateSomeday(s *types.Snapshot, id string, title, notes *string) *types.Snapshot {
	if s.SomedayByID(id) == nil {
		return s
	}
	next := s.Clone()
	item := next.SomedayByID(id)
	if title != nil && *title != "" {
		item.Title = *title
	}
	if notes != nil {
		item.Notes = *notes
	}
	return next
}

// DeleteSomeday drops an idea from the someday list.
func DeleteSomeday(s *types.Snapshot, id string) *types.Snapshot {
	if s.SomedayByID(id) == nil {
		return s
	}
	next := s.Clone()
	items := next.SomedayItems[:0]
	for _, item := range next.SomedayItems {
		if item.ID != id {
			items = append(items, item)
		}
	}
	next.SomedayItems = items
	return next
}

// PromoteSomedayToTask converts a someday item into an active, unprocessed
// task and removes it from the someday list.
func PromoteSomedayToTask(s *types.Snapshot, id string) (*types.Snapshot, *types.Task) {
	item := s.SomedayByID(id)
	if item == nil {
		return s, nil
	}
	next := DeleteSomeday(s, id)
	return AddTask(next, TaskDraft{Title: item.Title, Notes: item.Notes})
}

// PromoteSomedayToProject converts a someday item into a project. If a
// project with the same name already exists the someday item is kept.
func PromoteSomedayToProject(s *types.Snapshot, id string) (*types.Snapshot, *types.Project) {
	item := s.SomedayByID(id)
	if item == nil {
		return s, nil
	}
	if s.ProjectByRef(item.Title) != nil {
		return s, nil
	}
	next := DeleteSomeday(s, id)
	return AddProject(next, item.Title, "", "")
}
