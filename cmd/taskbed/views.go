package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrewblevins/taskbed/internal/state"
	"github.com/andrewblevins/taskbed/internal/types"
)

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "List unprocessed tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := store.Current()
		count := 0
		for _, t := range snap.Tasks {
			if t.Processed || t.Completed {
				continue
			}
			printTask(snap, &t)
			count++
		}
		if count == 0 {
			fmt.Println("Inbox zero.")
		}
		return nil
	},
}

var todayCmd = &cobra.Command{
	Use:   "today [task...]",
	Short: "Show the today focus list, or replace it with the given tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			ids := make([]string, 0, len(args))
			for _, ref := range args {
				task, err := resolveTask(ref)
				if err != nil {
					return err
				}
				ids = append(ids, task.ID)
			}
			store.Apply("set-today", func(s *types.Snapshot) *types.Snapshot {
				return state.SetTodayFocus(s, ids)
			})
			fmt.Printf("Today list set (%d tasks)\n", len(ids))
			return nil
		}

		snap := store.Current()
		if len(snap.TodayTaskIDs) == 0 {
			fmt.Println("No today focus set.")
			return nil
		}
		for _, id := range snap.TodayTaskIDs {
			if t := snap.TaskByID(id); t != nil {
				printTask(snap, t)
			}
		}
		return nil
	},
}

var overdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "List overdue tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := store.Current()
		now := types.Now()
		count := 0
		for _, t := range snap.Tasks {
			if !t.Overdue(now) {
				continue
			}
			printTask(snap, &t)
			count++
		}
		if count == 0 {
			fmt.Println("Nothing overdue.")
		}
		return nil
	},
}

var dueSoonCmd = &cobra.Command{
	Use:   "due-soon",
	Short: "List tasks due within the next N days (default 7)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		snap := store.Current()
		now := types.Now()
		cutoff := types.EndOfDay(time.Now().AddDate(0, 0, days))

		count := 0
		for _, t := range snap.Tasks {
			if t.Completed || t.DueDate == 0 {
				continue
			}
			if t.DueDate < now || t.DueDate > cutoff {
				continue
			}
			printTask(snap, &t)
			count++
		}
		if count == 0 {
			fmt.Printf("Nothing due in the next %d days.\n", days)
		}
		return nil
	},
}

var waitingCmd = &cobra.Command{
	Use:   "waiting",
	Short: "List waiting-for tasks with how long they have waited",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := store.Current()
		count := 0
		for _, t := range snap.Tasks {
			if t.Status != types.TaskWaiting || t.Completed {
				continue
			}
			waited := ""
			if t.WaitingSince != 0 {
				days := int(time.Since(time.UnixMilli(t.WaitingSince)).Hours() / 24)
				waited = fmt.Sprintf(", %dd", days)
			}
			fmt.Printf("%s  %s  (on %s%s)\n", shortID(t.ID), t.Title, t.WaitingFor, waited)
			count++
		}
		if count == 0 {
			fmt.Println("Not waiting on anything.")
		}
		return nil
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review [start|next|done]",
	Short: "Step through the weekly review",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		action := "start"
		if len(args) > 0 {
			action = args[0]
		}
		switch action {
		case "start":
			store.Apply("start-review", state.StartReview)
			fmt.Println("Review started at step 0.")
		case "next":
			snap := store.Apply("advance-review", state.AdvanceReview)
			if !snap.ReviewInProgress {
				return fmt.Errorf("no review in progress (run: taskbed review start)")
			}
			fmt.Printf("Review step %d.\n", snap.ReviewStep)
		case "done":
			store.Apply("finish-review", state.FinishReview)
			fmt.Println("Review finished.")
		default:
			return fmt.Errorf("unknown review action %q", action)
		}
		return nil
	},
}

var groupCmd = &cobra.Command{
	Use:   "group <project|none|attribute>",
	Short: "Set the task-list grouping mode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var grouping types.ViewGrouping
		switch args[0] {
		case types.GroupByProject, types.GroupByNone:
			grouping.Type = args[0]
		default:
			attr, err := resolveAttribute(args[0])
			if err != nil {
				return err
			}
			grouping.AttributeID = attr.ID
		}
		store.Apply("set-grouping", func(s *types.Snapshot) *types.Snapshot {
			return state.SetGrouping(s, grouping)
		})
		fmt.Printf("Grouping by %s\n", args[0])
		return nil
	},
}

var filterCmd = &cobra.Command{
	Use:   "filter [tag]",
	Short: "Set (or clear, with no argument) the context tag filter",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag := ""
		if len(args) > 0 {
			tag = args[0]
		}
		store.Apply("set-tag-filter", func(s *types.Snapshot) *types.Snapshot {
			return state.SetTagFilter(s, tag)
		})
		if tag == "" {
			fmt.Println("Tag filter cleared.")
		} else {
			fmt.Printf("Filtering by %s\n", types.NormalizeTag(tag))
		}
		return nil
	},
}

func init() {
	dueSoonCmd.Flags().Int("days", 7, "Horizon in days")

	rootCmd.AddCommand(inboxCmd, todayCmd, overdueCmd, dueSoonCmd, waitingCmd,
		reviewCmd, groupCmd, filterCmd)
}
