package state

import (
	"strings"

	"github.com/google/uuid"

	"github.com/andrewblevins/taskbed/internal/types"
)

// AddProject creates a project. Names are unique case-insensitively within
// the workspace; a duplicate or empty name is a no-op and returns nil.
func AddProject(s *types.Snapshot, name, color, areaID string) (*types.Snapshot, *types.Project) {
	name = strings.TrimSpace(name)
	if name == "" || s.ProjectByRef(name) != nil {
		return s, nil
	}

	next := s.Clone()
	project := types.Project{
		ID:        uuid.NewString(),
		Name:      name,
		Color:     color,
		Status:    types.ProjectActive,
		Order:     len(next.Projects),
		CreatedAt: types.Now(),
	}
	if areaID != "" && next.AreaByID(areaID) != nil {
		project.AreaID = areaID
	}
	next.Projects = append(next.Projects, project)
	return next, &next.Projects[len(next.Projects)-1]
}

// ProjectUpdate is a partial project update; nil fields are left untouched.
type ProjectUpdate struct {
	Name   *string
	Color  *string
	AreaID *string // empty string clears
}

// UpdateProject applies a partial update. Renaming onto another project's
// name (case-insensitive) is refused and leaves the snapshot unchanged.
func UpdateProject(s *types.Snapshot, id string, upd ProjectUpdate) *types.Snapshot {
	if s.ProjectByID(id) == nil {
		return s
	}
	if upd.Name != nil {
		if *upd.Name == "" {
			return s
		}
		if existing := s.ProjectByRef(*upd.Name); existing != nil && existing.ID != id {
			return s
		}
	}

	next := s.Clone()
	project := next.ProjectByID(id)
	if upd.Name != nil {
		project.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Color != nil {
		project.Color = *upd.Color
	}
	if upd.AreaID != nil {
		if *upd.AreaID == "" {
			project.AreaID = ""
		} else if next.AreaByID(*upd.AreaID) != nil {
			project.AreaID = *upd.AreaID
		}
	}
	return next
}

// CloseProject marks a project completed or cancelled and stamps
// completedAt. The project's tasks are not touched. Passing a non-closed
// status is a no-op.
func CloseProject(s *types.Snapshot, id string, status types.ProjectStatus) *types.Snapshot {
	if !status.Closed() {
		return s
	}
	project := s.ProjectByID(id)
	if project == nil || project.Status == status {
		return s
	}
	next := s.Clone()
	p := next.ProjectByID(id)
	p.Status = status
	p.CompletedAt = types.Now()
	return next
}

// ReactivateProject reverts a project to active and clears completedAt.
func ReactivateProject(s *types.Snapshot, id string) *types.Snapshot {
	project := s.ProjectByID(id)
	if project == nil || project.Status == types.ProjectActive {
		return s
	}
	next := s.Clone()
	p := next.ProjectByID(id)
	p.Status = types.ProjectActive
	p.CompletedAt = 0
	return next
}

// SetProjectStatus moves a project to any valid status, routing through the
// close/reactivate stamping rules.
func SetProjectStatus(s *types.Snapshot, id string, status types.ProjectStatus) *types.Snapshot {
	if !status.IsValid() {
		return s
	}
	if status.Closed() {
		return CloseProject(s, id, status)
	}
	project := s.ProjectByID(id)
	if project == nil || project.Status == status {
		return s
	}
	next := s.Clone()
	p := next.ProjectByID(id)
	p.Status = status
	p.CompletedAt = 0
	return next
}

// DeleteProject removes a project and nulls out projectId on every task
// that referenced it. Tasks are never cascade-deleted.
func DeleteProject(s *types.Snapshot, id string) *types.Snapshot {
	if s.ProjectByID(id) == nil {
		return s
	}
	next := s.Clone()
	projects := next.Projects[:0]
	for _, p := range next.Projects {
		if p.ID != id {
			projects = append(projects, p)
		}
	}
	next.Projects = projects
	for i := range next.Tasks {
		if next.Tasks[i].ProjectID == id {
			next.Tasks[i].ProjectID = ""
		}
	}
	return next
}

// ReorderProjects reassigns project ordering; unlisted projects keep their
// relative order after the reordered set.
func ReorderProjects(s *types.Snapshot, ids []string) *types.Snapshot {
	next := s.Clone()

	byID := make(map[string]int, len(next.Projects))
	for i, p := range next.Projects {
		byID[p.ID] = i
	}
	listed := make(map[string]bool, len(ids))
	out := make([]types.Project, 0, len(next.Projects))
	for _, id := range ids {
		if i, ok := byID[id]; ok && !listed[id] {
			listed[id] = true
			out = append(out, next.Projects[i])
		}
	}
	for _, p := range next.Projects {
		if !listed[p.ID] {
			out = append(out, p)
		}
	}
	for i := range out {
		out[i].Order = i
	}
	next.Projects = out
	return next
}
