package state

import (
	"strings"

	"github.com/google/uuid"

	"github.com/andrewblevins/taskbed/internal/types"
)

// AddArea creates an area. An empty name is a no-op and returns nil.
func AddArea(s *types.Snapshot, name string) (*types.Snapshot, *types.Area) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, nil
	}
	next := s.Clone()
	area := types.Area{
		ID:        uuid.NewString(),
		Name:      name,
		Order:     len(next.Areas),
		CreatedAt: types.Now(),
	}
	next.Areas = append(next.Areas, area)
	return next, &next.Areas[len(next.Areas)-1]
}

// RenameArea updates an area's name. Unknown ids and empty names are no-ops.
func RenameArea(s *types.Snapshot, id, name string) *types.Snapshot {
	name = strings.TrimSpace(name)
	if name == "" || s.AreaByID(id) == nil {
		return s
	}
	next := s.Clone()
	next.AreaByID(id).Name = name
	return next
}

// DeleteArea removes an area and nulls out areaId on every task and project
// that referenced it. Nothing inside the area is deleted.
func DeleteArea(s *types.Snapshot, id string) *types.Snapshot {
	if s.AreaByID(id) == nil {
		return s
	}
	next := s.Clone()
	areas := next.Areas[:0]
	for _, a := range next.Areas {
		if a.ID != id {
			areas = append(areas, a)
		}
	}
	next.Areas = areas
	for i := range next.Tasks {
		if next.Tasks[i].AreaID == id {
			next.Tasks[i].AreaID = ""
		}
	}
	for i := range next.Projects {
		if next.Projects[i].AreaID == id {
			next.Projects[i].AreaID = ""
		}
	}
	return next
}

// ReorderAreas reassigns area ordering; unlisted areas keep their relative
// order after the reordered set.
func ReorderAreas(s *types.Snapshot, ids []string) *types.Snapshot {
	next := s.Clone()

	byID := make(map[string]int, len(next.Areas))
	for i, a := range next.Areas {
		byID[a.ID] = i
	}
	listed := make(map[string]bool, len(ids))
	out := make([]types.Area, 0, len(next.Areas))
	for _, id := range ids {
		if i, ok := byID[id]; ok && !listed[id] {
			listed[id] = true
			out = append(out, next.Areas[i])
		}
	}
	for _, a := range next.Areas {
		if !listed[a.ID] {
			out = append(out, a)
		}
	}
	for i := range out {
		out[i].Order = i
	}
	next.Areas = out
	return next
}
