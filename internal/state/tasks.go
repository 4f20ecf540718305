package state

import (
	"github.com/google/uuid"

	"github.com/andrewblevins/taskbed/internal/types"
)

// TaskDraft carries the optional fields for a new task.
type TaskDraft struct {
	Title      string
	Notes      string
	ProjectID  string
	AreaID     string
	Tags       []string
	Attributes map[string]string
	Status     types.TaskStatus
	WaitingFor string
	DueDate    types.Millis
}

// AddTask appends a new task built from the draft and returns the new
// snapshot plus the created task. New tags are auto-registered in the
// available-tags set. A draft with an empty title is a no-op.
func AddTask(s *types.Snapshot, d TaskDraft) (*types.Snapshot, *types.Task) {
	if d.Title == "" {
		return s, nil
	}

	next := s.Clone()

	status := d.Status
	if !status.IsValid() {
		status = types.TaskActive
	}

	task := types.Task{
		ID:         uuid.NewString(),
		Title:      d.Title,
		Notes:      d.Notes,
		Status:     status,
		Tags:       normalizeTags(d.Tags),
		Attributes: map[string]string{},
		DueDate:    d.DueDate,
		CreatedAt:  types.Now(),
	}
	for k, v := range d.Attributes {
		task.Attributes[k] = v
	}

	// Dangling references are dropped rather than stored.
	if d.ProjectID != "" && next.ProjectByID(d.ProjectID) != nil {
		task.ProjectID = d.ProjectID
	}
	if d.AreaID != "" && next.AreaByID(d.AreaID) != nil {
		task.AreaID = d.AreaID
	}

	if status == types.TaskWaiting {
		if d.WaitingFor == "" {
			// Waiting without a waiter is not a valid state.
			task.Status = types.TaskActive
		} else {
			task.WaitingFor = d.WaitingFor
			task.WaitingSince = types.Now()
		}
	}

	next.Tasks = append(next.Tasks, task)
	next.AvailableTags = registerTags(next.AvailableTags, task.Tags)
	return next, &next.Tasks[len(next.Tasks)-1]
}

// TaskUpdate is a partial update; nil fields are left untouched.
type TaskUpdate struct {
	Title      *string
	Notes      *string
	ProjectID  *string // empty string clears
	AreaID     *string // empty string clears
	Tags       *[]string
	DueDate    *types.Millis // zero clears
	Status     *types.TaskStatus
	WaitingFor *string
	Processed  *bool
	Attributes map[string]*string // nil value deletes the key
}

// UpdateTask applies a partial update to a task. Unknown ids are a no-op.
// Status transitions keep the waiting fields consistent: any transition
// away from waiting clears waitingFor/waitingSince, and setting waitingFor
// on a non-waiting task moves it to waiting and stamps waitingSince.
func UpdateTask(s *types.Snapshot, id string, upd TaskUpdate) *types.Snapshot {
	if s.TaskByID(id) == nil {
		return s
	}

	next := s.Clone()
	task := next.TaskByID(id)

	if upd.Title != nil && *upd.Title != "" {
		task.Title = *upd.Title
	}
	if upd.Notes != nil {
		task.Notes = *upd.Notes
	}
	if upd.ProjectID != nil {
		if *upd.ProjectID == "" {
			task.ProjectID = ""
		} else if next.ProjectByID(*upd.ProjectID) != nil {
			task.ProjectID = *upd.ProjectID
		}
	}
	if upd.AreaID != nil {
		if *upd.AreaID == "" {
			task.AreaID = ""
		} else if next.AreaByID(*upd.AreaID) != nil {
			task.AreaID = *upd.AreaID
		}
	}
	if upd.Tags != nil {
		task.Tags = normalizeTags(*upd.Tags)
	}
	if upd.DueDate != nil {
		task.DueDate = *upd.DueDate
	}
	if upd.Processed != nil {
		task.Processed = *upd.Processed
	}
	for k, v := range upd.Attributes {
		if v == nil {
			delete(task.Attributes, k)
		} else {
			if task.Attributes == nil {
				task.Attributes = map[string]string{}
			}
			task.Attributes[k] = *v
		}
	}

	if upd.Status != nil && upd.Status.IsValid() {
		setTaskStatus(task, *upd.Status, upd.WaitingFor)
	} else if upd.WaitingFor != nil {
		if *upd.WaitingFor == "" {
			setTaskStatus(task, types.TaskActive, nil)
		} else {
			setTaskStatus(task, types.TaskWaiting, upd.WaitingFor)
		}
	}

	next.AvailableTags = registerTags(next.AvailableTags, task.Tags)
	return next
}

// setTaskStatus moves a task between workflow statuses, keeping the
// waiting-field invariant: status == waiting iff waitingFor is non-empty.
func setTaskStatus(task *types.Task, status types.TaskStatus, waitingFor *string) {
	if status == types.TaskWaiting {
		wf := task.WaitingFor
		if waitingFor != nil {
			wf = *waitingFor
		}
		if wf == "" {
			// moveToWaiting requires a non-empty waitingFor; refuse silently.
			return
		}
		if task.Status != types.TaskWaiting {
			task.WaitingSince = types.Now()
		}
		task.Status = types.TaskWaiting
		task.WaitingFor = wf
		return
	}

	task.Status = status
	task.WaitingFor = ""
	task.WaitingSince = 0
}

// MoveToWaiting transitions a task to waiting on the named person or event.
// A task id that does not exist, or an empty waitingFor, is a no-op.
func MoveToWaiting(s *types.Snapshot, id, waitingFor string) *types.Snapshot {
	if waitingFor == "" {
		return s
	}
	status := types.TaskWaiting
	return UpdateTask(s, id, TaskUpdate{Status: &status, WaitingFor: &waitingFor})
}

// ActivateTask transitions a task back to active, unconditionally clearing
// the waiting fields.
func ActivateTask(s *types.Snapshot, id string) *types.Snapshot {
	status := types.TaskActive
	return UpdateTask(s, id, TaskUpdate{Status: &status})
}

// ToggleTask flips completion, stamping completedAt on completion and
// clearing it on un-completion.
func ToggleTask(s *types.Snapshot, id string) *types.Snapshot {
	if s.TaskByID(id) == nil {
		return s
	}
	next := s.Clone()
	task := next.TaskByID(id)
	task.Completed = !task.Completed
	if task.Completed {
		task.CompletedAt = types.Now()
	} else {
		task.CompletedAt = 0
	}
	return next
}

// CompleteTask marks a task done. Already-completed tasks are a no-op.
func CompleteTask(s *types.Snapshot, id string) *types.Snapshot {
	task := s.TaskByID(id)
	if task == nil || task.Completed {
		return s
	}
	return ToggleTask(s, id)
}

// UncompleteTask clears completion. Not-completed tasks are a no-op.
func UncompleteTask(s *types.Snapshot, id string) *types.Snapshot {
	task := s.TaskByID(id)
	if task == nil || !task.Completed {
		return s
	}
	return ToggleTask(s, id)
}

// DeleteTask removes a task. Unknown ids are a no-op.
func DeleteTask(s *types.Snapshot, id string) *types.Snapshot {
	if s.TaskByID(id) == nil {
		return s
	}
	next := s.Clone()
	tasks := next.Tasks[:0]
	for _, t := range next.Tasks {
		if t.ID != id {
			tasks = append(tasks, t)
		}
	}
	next.Tasks = tasks
	return next
}

// AddTaskTag applies a context tag to a task, auto-registering it in the
// available set.
func AddTaskTag(s *types.Snapshot, id, tag string) *types.Snapshot {
	tag = types.NormalizeTag(tag)
	task := s.TaskByID(id)
	if task == nil || tag == "" || task.HasTag(tag) {
		return s
	}
	next := s.Clone()
	t := next.TaskByID(id)
	t.Tags = append(t.Tags, tag)
	next.AvailableTags = registerTags(next.AvailableTags, []string{tag})
	return next
}

// RemoveTaskTag removes a context tag from a task. The tag stays in the
// global available set.
func RemoveTaskTag(s *types.Snapshot, id, tag string) *types.Snapshot {
	tag = types.NormalizeTag(tag)
	task := s.TaskByID(id)
	if task == nil || !task.HasTag(tag) {
		return s
	}
	next := s.Clone()
	t := next.TaskByID(id)
	tags := t.Tags[:0]
	for _, have := range t.Tags {
		if have != tag {
			tags = append(tags, have)
		}
	}
	t.Tags = tags
	return next
}

// MarkProcessed flags a task as triaged out of the inbox (or back in).
func MarkProcessed(s *types.Snapshot, id string, processed bool) *types.Snapshot {
	return UpdateTask(s, id, TaskUpdate{Processed: &processed})
}

// ReorderTasks reassigns ordering indices so the listed ids come first, in
// the given order. Tasks not listed retain their relative order and are
// appended after the reordered set. Unknown ids in the list are skipped.
func ReorderTasks(s *types.Snapshot, ids []string) *types.Snapshot {
	next := s.Clone()
	next.Tasks = reorderTaskSlice(next.Tasks, ids)
	return next
}

func reorderTaskSlice(tasks []types.Task, ids []string) []types.Task {
	byID := make(map[string]int, len(tasks))
	for i, t := range tasks {
		byID[t.ID] = i
	}

	listed := make(map[string]bool, len(ids))
	out := make([]types.Task, 0, len(tasks))
	for _, id := range ids {
		if i, ok := byID[id]; ok && !listed[id] {
			listed[id] = true
			out = append(out, tasks[i])
		}
	}
	for _, t := range tasks {
		if !listed[t.ID] {
			out = append(out, t)
		}
	}
	for i := range out {
		out[i].Order = i
	}
	return out
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = types.NormalizeTag(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func registerTags(available, tags []string) []string {
	seen := make(map[string]bool, len(available))
	for _, t := range available {
		seen[t] = true
	}
	for _, t := range tags {
		if !seen[t] {
			seen[t] = true
			available = append(available, t)
		}
	}
	return available
}
