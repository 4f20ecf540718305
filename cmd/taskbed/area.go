package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrewblevins/taskbed/internal/state"
	"github.com/andrewblevins/taskbed/internal/types"
)

var areaCmd = &cobra.Command{
	Use:   "area",
	Short: "Manage areas of responsibility",
}

var areaAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create an area",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var created *types.Area
		store.Apply("add-area", func(s *types.Snapshot) *types.Snapshot {
			next, area := state.AddArea(s, args[0])
			created = area
			return next
		})
		if created == nil {
			return fmt.Errorf("area name cannot be empty")
		}
		fmt.Printf("Added area %s: %s\n", shortID(created.ID), created.Name)
		return nil
	},
}

var areaListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List areas",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := store.Current()
		if len(snap.Areas) == 0 {
			fmt.Println("No areas.")
			return nil
		}
		for _, a := range snap.Areas {
			projects := 0
			for _, p := range snap.Projects {
				if p.AreaID == a.ID {
					projects++
				}
			}
			fmt.Printf("%s  %-30s (%d projects)\n", shortID(a.ID), a.Name, projects)
		}
		return nil
	},
}

var areaRenameCmd = &cobra.Command{
	Use:   "rename <area> <new-name>",
	Short: "Rename an area",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		area := findArea(store.Current(), args[0])
		if area == nil {
			return fmt.Errorf("no area matching %q", args[0])
		}
		store.Apply("rename-area", func(s *types.Snapshot) *types.Snapshot {
			return state.RenameArea(s, area.ID, args[1])
		})
		fmt.Printf("Renamed area to %s\n", args[1])
		return nil
	},
}

var areaRmCmd = &cobra.Command{
	Use:   "rm <area>",
	Short: "Delete an area (its tasks and projects are kept, unassigned)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		area := findArea(store.Current(), args[0])
		if area == nil {
			return fmt.Errorf("no area matching %q", args[0])
		}
		store.Apply("delete-area", func(s *types.Snapshot) *types.Snapshot {
			return state.DeleteArea(s, area.ID)
		})
		fmt.Printf("Deleted area %s\n", area.Name)
		return nil
	},
}

func init() {
	areaCmd.AddCommand(areaAddCmd, areaListCmd, areaRenameCmd, areaRmCmd)
	rootCmd.AddCommand(areaCmd)
}
