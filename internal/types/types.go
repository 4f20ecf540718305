// Package types defines the core data structures for the taskbed GTD client.
package types

import (
	"strings"
	"time"
)

// SchemaVersion is the current persisted snapshot schema version.
// The migrate package upgrades older blobs to this version at load time.
const SchemaVersion = 3

// TaskStatus describes where a task sits in the GTD workflow.
type TaskStatus string

const (
	TaskActive  TaskStatus = "active"
	TaskWaiting TaskStatus = "waiting"
)

// IsValid returns true for known task statuses.
func (s TaskStatus) IsValid() bool {
	return s == TaskActive || s == TaskWaiting
}

// ProjectStatus describes a project's lifecycle state.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectSomeday   ProjectStatus = "someday"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

// IsValid returns true for known project statuses.
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectActive, ProjectSomeday, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

// Closed reports whether the status terminates a project.
func (s ProjectStatus) Closed() bool {
	return s == ProjectCompleted || s == ProjectCancelled
}

// Millis is a millisecond Unix epoch timestamp. The persisted JSON uses
// plain numbers for all timestamps, so we keep them as int64 on the wire
// rather than time.Time.
type Millis = int64

// Now returns the current time as epoch milliseconds.
func Now() Millis {
	return time.Now().UnixMilli()
}

// EndOfDay returns the last millisecond of the calendar day containing t,
// in local time. Due dates derived from a bare date land here.
func EndOfDay(t time.Time) Millis {
	y, m, d := t.Date()
	eod := time.Date(y, m, d, 23, 59, 59, 999000000, t.Location())
	return eod.UnixMilli()
}

// Task is a single unit of work.
type Task struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Notes string `json:"notes,omitempty"`

	// Completion
	Completed   bool   `json:"completed"`
	CompletedAt Millis `json:"completedAt,omitempty"`

	// Workflow
	Status       TaskStatus `json:"status"`
	WaitingFor   string     `json:"waitingFor,omitempty"`
	WaitingSince Millis     `json:"waitingSince,omitempty"`
	Processed    bool       `json:"processed,omitempty"`

	// Grouping
	ProjectID string `json:"projectId,omitempty"`
	AreaID    string `json:"areaId,omitempty"`

	// Contexts and facets
	Tags       []string          `json:"tags"`
	Attributes map[string]string `json:"attributes"`

	// Scheduling
	DueDate Millis `json:"dueDate,omitempty"`

	CreatedAt Millis `json:"createdAt"`
	Order     int    `json:"order,omitempty"`
}

// HasTag reports whether the task carries the given context tag.
func (t *Task) HasTag(tag string) bool {
	for _, have := range t.Tags {
		if have == tag {
			return true
		}
	}
	return false
}

// Overdue reports whether the task has a due date in the past and is not done.
func (t *Task) Overdue(now Millis) bool {
	return t.DueDate != 0 && t.DueDate < now && !t.Completed
}

// Project groups tasks toward an outcome.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Color       string        `json:"color,omitempty"`
	AreaID      string        `json:"areaId,omitempty"`
	Order       int           `json:"order,omitempty"`
	Status      ProjectStatus `json:"status"`
	CompletedAt Millis        `json:"completedAt,omitempty"`
	CreatedAt   Millis        `json:"createdAt"`
}

// Area is a sphere of responsibility ("Work", "Home") that contains projects.
type Area struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Order     int    `json:"order,omitempty"`
	CreatedAt Millis `json:"createdAt"`
}

// AttributeOption is one selectable value of a user-defined attribute.
type AttributeOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color,omitempty"`
}

// AttributeDefinition is a user-defined facet such as "Energy", with an
// ordered set of options.
type AttributeDefinition struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Options []AttributeOption `json:"options"`
}

// SomedayItem is an idea that has not been promoted to a task or project.
// Someday items live in their own collection, apart from tasks.
type SomedayItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt Millis `json:"createdAt"`
}

// Grouping mode constants for ViewGrouping.Type.
const (
	GroupByProject = "project"
	GroupByNone    = "none"
)

// ViewGrouping selects how the task list is grouped. Either Type is set
// ("project" or "none"), or Type is empty and AttributeID names the
// attribute to group by.
type ViewGrouping struct {
	AttributeID string `json:"attributeId,omitempty"`
	Type        string `json:"type,omitempty"`
}

// Snapshot is the full serializable application state. The Snapshot Store
// treats values of this type as immutable: transitions clone and replace,
// never mutate in place.
type Snapshot struct {
	SchemaVersion int `json:"schemaVersion"`

	Tasks        []Task                `json:"tasks"`
	Projects     []Project             `json:"projects"`
	Areas        []Area                `json:"areas"`
	SomedayItems []SomedayItem         `json:"somedayItems"`
	Attributes   []AttributeDefinition `json:"attributes"`

	AvailableTags []string `json:"availableTags"`

	// Session / view state. Excluded from undo history; see history package.
	CurrentGrouping   ViewGrouping `json:"currentGrouping"`
	SelectedTagFilter string       `json:"selectedTagFilter,omitempty"`
	ReviewInProgress  bool         `json:"reviewInProgress,omitempty"`
	ReviewStep        int          `json:"reviewStep,omitempty"`
	TodayTaskIDs      []string     `json:"todayTaskIds,omitempty"`

	// Names of one-time content migrations that have already run.
	ContentMigrations []string `json:"contentMigrations,omitempty"`
}

// DefaultSnapshot returns the state created at first launch: an Energy
// attribute with three options, the stock context tag set, and grouping by
// energy.
func DefaultSnapshot() *Snapshot {
	return &Snapshot{
		SchemaVersion: SchemaVersion,
		Tasks:         []Task{},
		Projects:      []Project{},
		Areas:         []Area{},
		SomedayItems:  []SomedayItem{},
		Attributes: []AttributeDefinition{
			{
				ID:   "energy",
				Name: "Energy",
				Options: []AttributeOption{
					{ID: "high", Label: "High", Color: "#ef4444"},
					{ID: "medium", Label: "Medium", Color: "#f59e0b"},
					{ID: "low", Label: "Low", Color: "#22c55e"},
				},
			},
		},
		AvailableTags:   DefaultTags(),
		CurrentGrouping: ViewGrouping{AttributeID: "energy"},
	}
}

// DefaultTags returns the stock context tag set.
func DefaultTags() []string {
	return []string{"@phone", "@computer", "@errands", "@home", "@office", "@anywhere"}
}

// NormalizeTag ensures a context tag carries the "@" prefix.
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	if !strings.HasPrefix(tag, "@") {
		return "@" + tag
	}
	return tag
}

// Clone returns a deep copy of the snapshot. Transition functions clone
// first so the previous snapshot value stays intact for history diffing.
func (s *Snapshot) Clone() *Snapshot {
	out := *s

	out.Tasks = make([]Task, len(s.Tasks))
	for i, t := range s.Tasks {
		out.Tasks[i] = t
		out.Tasks[i].Tags = append([]string(nil), t.Tags...)
		if t.Attributes != nil {
			attrs := make(map[string]string, len(t.Attributes))
			for k, v := range t.Attributes {
				attrs[k] = v
			}
			out.Tasks[i].Attributes = attrs
		}
	}

	out.Projects = append([]Project(nil), s.Projects...)
	out.Areas = append([]Area(nil), s.Areas...)
	out.SomedayItems = append([]SomedayItem(nil), s.SomedayItems...)

	out.Attributes = make([]AttributeDefinition, len(s.Attributes))
	for i, a := range s.Attributes {
		out.Attributes[i] = a
		out.Attributes[i].Options = append([]AttributeOption(nil), a.Options...)
	}

	out.AvailableTags = append([]string(nil), s.AvailableTags...)
	out.TodayTaskIDs = append([]string(nil), s.TodayTaskIDs...)
	out.ContentMigrations = append([]string(nil), s.ContentMigrations...)

	return &out
}

// TaskByID returns a pointer into the snapshot's task slice, or nil.
func (s *Snapshot) TaskByID(id string) *Task {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return &s.Tasks[i]
		}
	}
	return nil
}

// ProjectByID returns a pointer into the snapshot's project slice, or nil.
func (s *Snapshot) ProjectByID(id string) *Project {
	for i := range s.Projects {
		if s.Projects[i].ID == id {
			return &s.Projects[i]
		}
	}
	return nil
}

// ProjectByRef resolves a project by id or case-insensitive name.
func (s *Snapshot) ProjectByRef(ref string) *Project {
	lower := strings.ToLower(ref)
	for i := range s.Projects {
		if s.Projects[i].ID == ref || strings.ToLower(s.Projects[i].Name) == lower {
			return &s.Projects[i]
		}
	}
	return nil
}

// AreaByID returns a pointer into the snapshot's area slice, or nil.
func (s *Snapshot) AreaByID(id string) *Area {
	for i := range s.Areas {
		if s.Areas[i].ID == id {
			return &s.Areas[i]
		}
	}
	return nil
}

// AttributeByID returns a pointer into the snapshot's attribute slice, or nil.
func (s *Snapshot) AttributeByID(id string) *AttributeDefinition {
	for i := range s.Attributes {
		if s.Attributes[i].ID == id {
			return &s.Attributes[i]
		}
	}
	return nil
}

// SomedayByID returns a pointer into the snapshot's someday slice, or nil.
func (s *Snapshot) SomedayByID(id string) *SomedayItem {
	for i := range s.SomedayItems {
		if s.SomedayItems[i].ID == id {
			return &s.SomedayItems[i]
		}
	}
	return nil
}

// HasContentMigration reports whether a one-time content migration already ran.
func (s *Snapshot) HasContentMigration(name string) bool {
	for _, m := range s.ContentMigrations {
		if m == name {
			return true
		}
	}
	return false
}

// SetDefaults fills zero values that older persisted blobs may omit.
func (s *Snapshot) SetDefaults() {
	if s.Tasks == nil {
		s.Tasks = []Task{}
	}
	if s.Projects == nil {
		s.Projects = []Project{}
	}
	if s.Areas == nil {
		s.Areas = []Area{}
	}
	if s.SomedayItems == nil {
		s.SomedayItems = []SomedayItem{}
	}
	if s.Attributes == nil {
		s.Attributes = []AttributeDefinition{}
	}
	if s.AvailableTags == nil {
		s.AvailableTags = []string{}
	}
	for i := range s.Tasks {
		if s.Tasks[i].Status == "" {
			s.Tasks[i].Status = TaskActive
		}
		if s.Tasks[i].Tags == nil {
			s.Tasks[i].Tags = []string{}
		}
		if s.Tasks[i].Attributes == nil {
			s.Tasks[i].Attributes = map[string]string{}
		}
	}
	for i := range s.Projects {
		if s.Projects[i].Status == "" {
			s.Projects[i].Status = ProjectActive
		}
	}
}
