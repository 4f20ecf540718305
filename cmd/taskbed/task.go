package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrewblevins/taskbed/internal/state"
	"github.com/andrewblevins/taskbed/internal/types"
)

var addCmd = &cobra.Command{
	Use:     "add <title>",
	Aliases: []string{"a"},
	Short:   "Capture a new task",
	Long: `Capture a new task into the inbox.

Examples:
  taskbed add "Call dentist"
  taskbed add "Draft proposal" --project Work --tag @computer --due 2026-09-15
  taskbed add "Hear back from landlord" --waiting-for "landlord"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		notes, _ := cmd.Flags().GetString("notes")
		projectRef, _ := cmd.Flags().GetString("project")
		areaRef, _ := cmd.Flags().GetString("area")
		tags, _ := cmd.Flags().GetStringSlice("tag")
		due, _ := cmd.Flags().GetString("due")
		waitingFor, _ := cmd.Flags().GetString("waiting-for")

		draft := state.TaskDraft{
			Title: args[0],
			Notes: notes,
			Tags:  tags,
		}

		snap := store.Current()
		if projectRef != "" {
			project := snap.ProjectByRef(projectRef)
			if project == nil {
				return fmt.Errorf("no project matching %q", projectRef)
			}
			draft.ProjectID = project.ID
		}
		if areaRef != "" {
			area := findArea(snap, areaRef)
			if area == nil {
				return fmt.Errorf("no area matching %q", areaRef)
			}
			draft.AreaID = area.ID
		}
		if due != "" {
			millis, err := parseDueDate(due)
			if err != nil {
				return err
			}
			draft.DueDate = millis
		}
		if waitingFor != "" {
			draft.Status = types.TaskWaiting
			draft.WaitingFor = waitingFor
		}

		var created *types.Task
		store.Apply("add-task", func(s *types.Snapshot) *types.Snapshot {
			next, task := state.AddTask(s, draft)
			created = task
			return next
		})
		if created == nil {
			return fmt.Errorf("task not created")
		}
		fmt.Printf("Added %s: %s\n", shortID(created.ID), created.Title)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		projectRef, _ := cmd.Flags().GetString("project")
		tag, _ := cmd.Flags().GetString("tag")

		snap := store.Current()
		var projectID string
		if projectRef != "" {
			project := snap.ProjectByRef(projectRef)
			if project == nil {
				return fmt.Errorf("no project matching %q", projectRef)
			}
			projectID = project.ID
		}
		if tag != "" {
			tag = types.NormalizeTag(tag)
		}

		count := 0
		for _, t := range snap.Tasks {
			if t.Completed && !all {
				continue
			}
			if projectID != "" && t.ProjectID != projectID {
				continue
			}
			if tag != "" && !t.HasTag(tag) {
				continue
			}
			printTask(snap, &t)
			count++
		}
		if count == 0 {
			fmt.Println("No tasks.")
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <task>",
	Short: "Show a task's full details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := resolveTask(args[0])
		if err != nil {
			return err
		}
		snap := store.Current()

		fmt.Printf("%s  %s\n", task.ID, task.Title)
		if task.Notes != "" {
			fmt.Printf("  Notes:      %s\n", task.Notes)
		}
		if task.Completed {
			fmt.Printf("  Completed:  %s\n", time.UnixMilli(task.CompletedAt).Format("2006-01-02 15:04"))
		} else {
			fmt.Printf("  Status:     %s\n", task.Status)
		}
		if task.Status == types.TaskWaiting {
			fmt.Printf("  Waiting on: %s (since %s)\n", task.WaitingFor,
				time.UnixMilli(task.WaitingSince).Format("2006-01-02"))
		}
		if task.ProjectID != "" {
			if p := snap.ProjectByID(task.ProjectID); p != nil {
				fmt.Printf("  Project:    %s\n", p.Name)
			}
		}
		if task.AreaID != "" {
			if a := snap.AreaByID(task.AreaID); a != nil {
				fmt.Printf("  Area:       %s\n", a.Name)
			}
		}
		if len(task.Tags) > 0 {
			fmt.Printf("  Tags:       %s\n", strings.Join(task.Tags, " "))
		}
		for attrID, optID := range task.Attributes {
			attr := snap.AttributeByID(attrID)
			if attr == nil {
				continue
			}
			if opt := resolveOption(attr, optID); opt != nil {
				fmt.Printf("  %-11s %s\n", attr.Name+":", opt.Label)
			}
		}
		if task.DueDate != 0 {
			fmt.Printf("  Due:        %s\n", time.UnixMilli(task.DueDate).Format("2006-01-02"))
		}
		fmt.Printf("  Created:    %s\n", time.UnixMilli(task.CreatedAt).Format("2006-01-02 15:04"))
		return nil
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <task>",
	Short: "Mark a task completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := resolveTask(args[0])
		if err != nil {
			return err
		}
		store.Apply("complete-task", func(s *types.Snapshot) *types.Snapshot {
			return state.CompleteTask(s, task.ID)
		})
		fmt.Printf("Completed: %s\n", task.Title)
		return nil
	},
}

var undoneCmd = &cobra.Command{
	Use:   "undone <task>",
	Short: "Clear a task's completion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := resolveTask(args[0])
		if err != nil {
			return err
		}
		store.Apply("uncomplete-task", func(s *types.Snapshot) *types.Snapshot {
			return state.UncompleteTask(s, task.ID)
		})
		fmt.Printf("Reopened: %s\n", task.Title)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <task>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := resolveTask(args[0])
		if err != nil {
			return err
		}
		store.Apply("delete-task", func(s *types.Snapshot) *types.Snapshot {
			return state.DeleteTask(s, task.ID)
		})
		fmt.Printf("Deleted: %s\n", task.Title)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <task>",
	Short: "Edit a task's fields",
	Long: `Edit one or more fields of a task. Only flags you pass are changed.

Examples:
  taskbed edit 4f2a --title "Call dentist about crown"
  taskbed edit 4f2a --project Work --due 2026-09-15
  taskbed edit 4f2a --project "" --due ""   (clear fields)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := resolveTask(args[0])
		if err != nil {
			return err
		}

		var upd state.TaskUpdate
		snap := store.Current()

		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			if title == "" {
				return fmt.Errorf("title cannot be empty")
			}
			upd.Title = &title
		}
		if cmd.Flags().Changed("notes") {
			notes, _ := cmd.Flags().GetString("notes")
			upd.Notes = &notes
		}
		if cmd.Flags().Changed("project") {
			ref, _ := cmd.Flags().GetString("project")
			id := ""
			if ref != "" {
				project := snap.ProjectByRef(ref)
				if project == nil {
					return fmt.Errorf("no project matching %q", ref)
				}
				id = project.ID
			}
			upd.ProjectID = &id
		}
		if cmd.Flags().Changed("area") {
			ref, _ := cmd.Flags().GetString("area")
			id := ""
			if ref != "" {
				area := findArea(snap, ref)
				if area == nil {
					return fmt.Errorf("no area matching %q", ref)
				}
				id = area.ID
			}
			upd.AreaID = &id
		}
		if cmd.Flags().Changed("due") {
			due, _ := cmd.Flags().GetString("due")
			var millis types.Millis
			if due != "" {
				var err error
				millis, err = parseDueDate(due)
				if err != nil {
					return err
				}
			}
			upd.DueDate = &millis
		}

		store.Apply("update-task", func(s *types.Snapshot) *types.Snapshot {
			return state.UpdateTask(s, task.ID, upd)
		})
		fmt.Printf("Updated: %s\n", task.Title)
		return nil
	},
}

var waitCmd = &cobra.Command{
	Use:   "wait <task> <who-or-what>",
	Short: "Move a task to waiting-for",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := resolveTask(args[0])
		if err != nil {
			return err
		}
		if args[1] == "" {
			return fmt.Errorf("waiting-for target cannot be empty")
		}
		store.Apply("wait-task", func(s *types.Snapshot) *types.Snapshot {
			return state.MoveToWaiting(s, task.ID, args[1])
		})
		fmt.Printf("Waiting on %s: %s\n", args[1], task.Title)
		return nil
	},
}

var activateCmd = &cobra.Command{
	Use:   "activate <task>",
	Short: "Move a waiting task back to active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := resolveTask(args[0])
		if err != nil {
			return err
		}
		store.Apply("activate-task", func(s *types.Snapshot) *types.Snapshot {
			return state.ActivateTask(s, task.ID)
		})
		fmt.Printf("Active: %s\n", task.Title)
		return nil
	},
}

var tagCmd = &cobra.Command{
	Use:   "tag <task> <tag>",
	Short: "Add a context tag to a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := resolveTask(args[0])
		if err != nil {
			return err
		}
		tag := types.NormalizeTag(args[1])
		store.Apply("tag-task", func(s *types.Snapshot) *types.Snapshot {
			return state.AddTaskTag(s, task.ID, tag)
		})
		fmt.Printf("Tagged %s: %s\n", tag, task.Title)
		return nil
	},
}

var untagCmd = &cobra.Command{
	Use:   "untag <task> <tag>",
	Short: "Remove a context tag from a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := resolveTask(args[0])
		if err != nil {
			return err
		}
		tag := types.NormalizeTag(args[1])
		store.Apply("untag-task", func(s *types.Snapshot) *types.Snapshot {
			return state.RemoveTaskTag(s, task.ID, tag)
		})
		fmt.Printf("Untagged %s: %s\n", tag, task.Title)
		return nil
	},
}

var processCmd = &cobra.Command{
	Use:   "process <task>",
	Short: "Mark an inbox task as processed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := resolveTask(args[0])
		if err != nil {
			return err
		}
		store.Apply("process-task", func(s *types.Snapshot) *types.Snapshot {
			return state.MarkProcessed(s, task.ID, true)
		})
		fmt.Printf("Processed: %s\n", task.Title)
		return nil
	},
}

func init() {
	addCmd.Flags().String("notes", "", "Notes for the task")
	addCmd.Flags().String("project", "", "Project name or id")
	addCmd.Flags().String("area", "", "Area name or id")
	addCmd.Flags().StringSlice("tag", nil, "Context tag (repeatable)")
	addCmd.Flags().String("due", "", "Due date (YYYY-MM-DD or 'today'/'tomorrow')")
	addCmd.Flags().String("waiting-for", "", "Create in waiting state, blocked on this")

	listCmd.Flags().Bool("all", false, "Include completed tasks")
	listCmd.Flags().String("project", "", "Only tasks in this project")
	listCmd.Flags().String("tag", "", "Only tasks carrying this context tag")

	editCmd.Flags().String("title", "", "New title")
	editCmd.Flags().String("notes", "", "New notes")
	editCmd.Flags().String("project", "", "New project (empty clears)")
	editCmd.Flags().String("area", "", "New area (empty clears)")
	editCmd.Flags().String("due", "", "New due date (empty clears)")

	rootCmd.AddCommand(addCmd, showCmd, listCmd, doneCmd, undoneCmd, rmCmd,
		editCmd, waitCmd, activateCmd, tagCmd, untagCmd, processCmd)
}

// resolveTask finds a task by full id, unique id prefix, or exact
// (case-insensitive) title.
func resolveTask(ref string) (*types.Task, error) {
	snap := store.Current()
	if task := snap.TaskByID(ref); task != nil {
		return task, nil
	}

	var byPrefix []*types.Task
	lower := strings.ToLower(ref)
	for i := range snap.Tasks {
		t := &snap.Tasks[i]
		if strings.HasPrefix(t.ID, ref) {
			byPrefix = append(byPrefix, t)
		}
		if strings.ToLower(t.Title) == lower {
			return t, nil
		}
	}
	switch len(byPrefix) {
	case 1:
		return byPrefix[0], nil
	case 0:
		return nil, fmt.Errorf("no task matching %q", ref)
	default:
		return nil, fmt.Errorf("%q is ambiguous (%d tasks match)", ref, len(byPrefix))
	}
}

func findArea(snap *types.Snapshot, ref string) *types.Area {
	if area := snap.AreaByID(ref); area != nil {
		return area
	}
	lower := strings.ToLower(ref)
	for i := range snap.Areas {
		if strings.ToLower(snap.Areas[i].Name) == lower {
			return &snap.Areas[i]
		}
	}
	return nil
}

// parseDueDate accepts YYYY-MM-DD plus the "today"/"tomorrow" shorthands.
// Bare dates land at the end of the day.
func parseDueDate(s string) (types.Millis, error) {
	now := time.Now()
	switch strings.ToLower(s) {
	case "today":
		return types.EndOfDay(now), nil
	case "tomorrow":
		return types.EndOfDay(now.AddDate(0, 0, 1)), nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return 0, fmt.Errorf("invalid due date %q (want YYYY-MM-DD, today, or tomorrow)", s)
	}
	return types.EndOfDay(t), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printTask(snap *types.Snapshot, t *types.Task) {
	mark := "[ ]"
	if t.Completed {
		mark = "[x]"
	}

	var extras []string
	if t.Status == types.TaskWaiting {
		extras = append(extras, "waiting on "+t.WaitingFor)
	}
	if t.ProjectID != "" {
		if p := snap.ProjectByID(t.ProjectID); p != nil {
			extras = append(extras, p.Name)
		}
	}
	if len(t.Tags) > 0 {
		extras = append(extras, strings.Join(t.Tags, " "))
	}
	if t.DueDate != 0 {
		due := time.UnixMilli(t.DueDate).Format("2006-01-02")
		if t.Overdue(types.Now()) {
			due += " OVERDUE"
		}
		extras = append(extras, "due "+due)
	}

	line := fmt.Sprintf("%s %s  %s", mark, shortID(t.ID), t.Title)
	if len(extras) > 0 {
		line += "  (" + strings.Join(extras, ", ") + ")"
	}
	fmt.Println(line)
}
