package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrewblevins/taskbed/internal/state"
	"github.com/andrewblevins/taskbed/internal/types"
)

var somedayCmd = &cobra.Command{
	Use:   "someday",
	Short: "Manage the someday/maybe list",
}

var somedayAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Capture an idea into someday/maybe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		notes, _ := cmd.Flags().GetString("notes")
		var created *types.SomedayItem
		store.Apply("add-someday", func(s *types.Snapshot) *types.Snapshot {
			next, item := state.AddSomeday(s, args[0], notes)
			created = item
			return next
		})
		if created == nil {
			return fmt.Errorf("title cannot be empty")
		}
		fmt.Printf("Someday %s: %s\n", shortID(created.ID), created.Title)
		return nil
	},
}

var somedayListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List someday/maybe items",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := store.Current()
		if len(snap.SomedayItems) == 0 {
			fmt.Println("No someday items.")
			return nil
		}
		for _, item := range snap.SomedayItems {
			fmt.Printf("%s  %s\n", shortID(item.ID), item.Title)
		}
		return nil
	},
}

var somedayRmCmd = &cobra.Command{
	Use:   "rm <item>",
	Short: "Drop an idea from someday/maybe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		item, err := resolveSomeday(args[0])
		if err != nil {
			return err
		}
		store.Apply("delete-someday", func(s *types.Snapshot) *types.Snapshot {
			return state.DeleteSomeday(s, item.ID)
		})
		fmt.Printf("Dropped: %s\n", item.Title)
		return nil
	},
}

var somedayPromoteCmd = &cobra.Command{
	Use:   "promote <item>",
	Short: "Promote a someday item to a task (or a project with --project)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		item, err := resolveSomeday(args[0])
		if err != nil {
			return err
		}
		asProject, _ := cmd.Flags().GetBool("project")

		if asProject {
			var created *types.Project
			store.Apply("promote-someday", func(s *types.Snapshot) *types.Snapshot {
				next, project := state.PromoteSomedayToProject(s, item.ID)
				created = project
				return next
			})
			if created == nil {
				return fmt.Errorf("a project named %q already exists", item.Title)
			}
			fmt.Printf("Promoted to project %s: %s\n", shortID(created.ID), created.Name)
			return nil
		}

		var created *types.Task
		store.Apply("promote-someday", func(s *types.Snapshot) *types.Snapshot {
			next, task := state.PromoteSomedayToTask(s, item.ID)
			created = task
			return next
		})
		if created == nil {
			return fmt.Errorf("promotion failed")
		}
		fmt.Printf("Promoted to task %s: %s\n", shortID(created.ID), created.Title)
		return nil
	},
}

func resolveSomeday(ref string) (*types.SomedayItem, error) {
	snap := store.Current()
	if item := snap.SomedayByID(ref); item != nil {
		return item, nil
	}
	lower := strings.ToLower(ref)
	var byPrefix []*types.SomedayItem
	for i := range snap.SomedayItems {
		item := &snap.SomedayItems[i]
		if strings.HasPrefix(item.ID, ref) {
			byPrefix = append(byPrefix, item)
		}
		if strings.ToLower(item.Title) == lower {
			return item, nil
		}
	}
	switch len(byPrefix) {
	case 1:
		return byPrefix[0], nil
	case 0:
		return nil, fmt.Errorf("no someday item matching %q", ref)
	default:
		return nil, fmt.Errorf("%q is ambiguous (%d items match)", ref, len(byPrefix))
	}
}

func init() {
	somedayAddCmd.Flags().String("notes", "", "Notes for the idea")
	somedayPromoteCmd.Flags().Bool("project", false, "Promote to a project instead of a task")

	somedayCmd.AddCommand(somedayAddCmd, somedayListCmd, somedayRmCmd, somedayPromoteCmd)
	rootCmd.AddCommand(somedayCmd)
}
