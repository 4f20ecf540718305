package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrewblevins/taskbed/internal/state"
	"github.com/andrewblevins/taskbed/internal/types"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"proj"},
	Short:   "Manage projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, _ := cmd.Flags().GetString("color")
		areaRef, _ := cmd.Flags().GetString("area")

		areaID := ""
		if areaRef != "" {
			area := findArea(store.Current(), areaRef)
			if area == nil {
				return fmt.Errorf("no area matching %q", areaRef)
			}
			areaID = area.ID
		}

		var created *types.Project
		store.Apply("add-project", func(s *types.Snapshot) *types.Snapshot {
			next, project := state.AddProject(s, args[0], color, areaID)
			created = project
			return next
		})
		if created == nil {
			return fmt.Errorf("a project named %q already exists", args[0])
		}
		fmt.Printf("Added project %s: %s\n", shortID(created.ID), created.Name)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		snap := store.Current()

		count := 0
		for _, p := range snap.Projects {
			if p.Status.Closed() && !all {
				continue
			}
			open := 0
			for _, t := range snap.Tasks {
				if t.ProjectID == p.ID && !t.Completed {
					open++
				}
			}
			area := ""
			if p.AreaID != "" {
				if a := snap.AreaByID(p.AreaID); a != nil {
					area = "  [" + a.Name + "]"
				}
			}
			fmt.Printf("%s  %-30s %s (%d open)%s\n", shortID(p.ID), p.Name, p.Status, open, area)
			count++
		}
		if count == 0 {
			fmt.Println("No projects.")
		}
		return nil
	},
}

var projectEditCmd = &cobra.Command{
	Use:   "edit <project>",
	Short: "Edit a project's fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := store.Current()
		project := snap.ProjectByRef(args[0])
		if project == nil {
			return fmt.Errorf("no project matching %q", args[0])
		}

		var upd state.ProjectUpdate
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				return fmt.Errorf("project name cannot be empty")
			}
			upd.Name = &name
		}
		if cmd.Flags().Changed("color") {
			color, _ := cmd.Flags().GetString("color")
			upd.Color = &color
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

		before := store.Current()
		after := store.Apply("update-project", func(s *types.Snapshot) *types.Snapshot {
			return state.UpdateProject(s, project.ID, upd)
		})
		if upd.Name != nil && before == after {
			return fmt.Errorf("a project named %q already exists", *upd.Name)
		}
		fmt.Printf("Updated project %s\n", project.Name)
		return nil
	},
}

var projectCloseCmd = &cobra.Command{
	Use:   "close <project>",
	Short: "Complete a project (its tasks are left alone)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cancelled, _ := cmd.Flags().GetBool("cancelled")
		status := types.ProjectCompleted
		if cancelled {
			status = types.ProjectCancelled
		}
		return setProjectStatus(args[0], status)
	},
}

var projectReopenCmd = &cobra.Command{
	Use:   "reopen <project>",
	Short: "Reactivate a closed or someday project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project := store.Current().ProjectByRef(args[0])
		if project == nil {
			return fmt.Errorf("no project matching %q", args[0])
		}
		store.Apply("reactivate-project", func(s *types.Snapshot) *types.Snapshot {
			return state.ReactivateProject(s, project.ID)
		})
		fmt.Printf("Project %s is active\n", project.Name)
		return nil
	},
}

var projectSomedayCmd = &cobra.Command{
	Use:   "someday <project>",
	Short: "Shelve a project to someday/maybe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setProjectStatus(args[0], types.ProjectSomeday)
	},
}

var projectRmCmd = &cobra.Command{
	Use:   "rm <project>",
	Short: "Delete a project (its tasks are kept, unassigned)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project := store.Current().ProjectByRef(args[0])
		if project == nil {
			return fmt.Errorf("no project matching %q", args[0])
		}
		store.Apply("delete-project", func(s *types.Snapshot) *types.Snapshot {
			return state.DeleteProject(s, project.ID)
		})
		fmt.Printf("Deleted project %s\n", project.Name)
		return nil
	},
}

func setProjectStatus(ref string, status types.ProjectStatus) error {
	project := store.Current().ProjectByRef(ref)
	if project == nil {
		return fmt.Errorf("no project matching %q", ref)
	}
	store.Apply("set-project-status", func(s *types.Snapshot) *types.Snapshot {
		return state.SetProjectStatus(s, project.ID, status)
	})
	fmt.Printf("Project %s is %s\n", project.Name, status)
	return nil
}

func init() {
	projectAddCmd.Flags().String("color", "", "Display color (hex)")
	projectAddCmd.Flags().String("area", "", "Area name or id")
	projectListCmd.Flags().Bool("all", false, "Include completed and cancelled projects")
	projectEditCmd.Flags().String("name", "", "New name")
	projectEditCmd.Flags().String("color", "", "New color")
	projectEditCmd.Flags().String("area", "", "New area (empty clears)")
	projectCloseCmd.Flags().Bool("cancelled", false, "Close as cancelled instead of completed")

	projectCmd.AddCommand(projectAddCmd, projectListCmd, projectEditCmd,
		projectCloseCmd, projectReopenCmd, projectSomedayCmd, projectRmCmd)
	rootCmd.AddCommand(projectCmd)
}
