package state

import (
	"github.com/andrewblevins/taskbed/internal/types"
)

// RegisterTag adds a tag to the global available set without applying it to
// any task. Already-known tags are a no-op.
func RegisterTag(s *types.Snapshot, tag string) *types.Snapshot {
	tag = types.NormalizeTag(tag)
	if tag == "" {
		return s
	}
	for _, have := range s.AvailableTags {
		if have == tag {
			return s
		}
	}
	next := s.Clone()
	next.AvailableTags = append(next.AvailableTags, tag)
	return next
}

// DeleteTag removes a tag from the available set and strips it from every
// task. Clears the tag filter if it pointed at the deleted tag.
func DeleteTag(s *types.Snapshot, tag string) *types.Snapshot {
	tag = types.NormalizeTag(tag)
	known := false
	for _, have := range s.AvailableTags {
		if have == tag {
			known = true
			break
		}
	}
	if !known {
		return s
	}

	next := s.Clone()
	available := next.AvailableTags[:0]
	for _, have := range next.AvailableTags {
		if have != tag {
			available = append(available, have)
		}
	}
	next.AvailableTags = available

	for i := range next.Tasks {
		tags := next.Tasks[i].Tags[:0]
		for _, have := range next.Tasks[i].Tags {
			if have != tag {
				tags = append(tags, have)
			}
		}
		next.Tasks[i].Tags = tags
	}

	if next.SelectedTagFilter == tag {
		next.SelectedTagFilter = ""
	}
	return next
}
