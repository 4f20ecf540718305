package state

import (
	"github.com/andrewblevins/taskbed/internal/types"
)

// View/session transitions. These mutate only ephemeral fields; the history
// package excludes them from undo tracking.

// SetGrouping selects the task-list grouping mode. Grouping by an unknown
// attribute id is a no-op.
func SetGrouping(s *types.Snapshot, grouping types.ViewGrouping) *types.Snapshot {
	switch grouping.Type {
	case types.GroupByProject, types.GroupByNone:
	default:
		if grouping.AttributeID == "" || s.AttributeByID(grouping.AttributeID) == nil {
			return s
		}
	}
	next := s.Clone()
	next.CurrentGrouping = grouping
	return next
}

// SetTagFilter sets (or clears, with "") the active context-tag filter.
func SetTagFilter(s *types.Snapshot, tag string) *types.Snapshot {
	tag = types.NormalizeTag(tag)
	if s.SelectedTagFilter == tag {
		return s
	}
	next := s.Clone()
	next.SelectedTagFilter = tag
	return next
}

// StartReview begins the review wizard at step zero.
func StartReview(s *types.Snapshot) *types.Snapshot {
	next := s.Clone()
	next.ReviewInProgress = true
	next.ReviewStep = 0
	return next
}

// AdvanceReview moves the review wizard forward one step.
func AdvanceReview(s *types.Snapshot) *types.Snapshot {
	if !s.ReviewInProgress {
		return s
	}
	next := s.Clone()
	next.ReviewStep++
	return next
}

// FinishReview ends the review wizard and resets its progress.
func FinishReview(s *types.Snapshot) *types.Snapshot {
	if !s.ReviewInProgress && s.ReviewStep == 0 {
		return s
	}
	next := s.Clone()
	next.ReviewInProgress = false
	next.ReviewStep = 0
	return next
}

// SetTodayFocus replaces the "today" focus selection. Ids that do not
// resolve to tasks are dropped.
func SetTodayFocus(s *types.Snapshot, ids []string) *types.Snapshot {
	next := s.Clone()
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if next.TaskByID(id) != nil {
			kept = append(kept, id)
		}
	}
	next.TodayTaskIDs = kept
	return next
}
