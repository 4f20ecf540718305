package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrewblevins/taskbed/internal/state"
	"github.com/andrewblevins/taskbed/internal/types"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Manage the context tag set",
}

var tagsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List available context tags with usage counts",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := store.Current()
		for _, tag := range snap.AvailableTags {
			count := 0
			for _, t := range snap.Tasks {
				if t.HasTag(tag) {
					count++
				}
			}
			fmt.Printf("%-20s %d\n", tag, count)
		}
		return nil
	},
}

var tagsAddCmd = &cobra.Command{
	Use:   "add <tag>",
	Short: "Register a context tag without applying it to a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag := types.NormalizeTag(args[0])
		if tag == "" {
			return fmt.Errorf("tag cannot be empty")
		}
		store.Apply("register-tag", func(s *types.Snapshot) *types.Snapshot {
			return state.RegisterTag(s, tag)
		})
		fmt.Printf("Registered %s\n", tag)
		return nil
	},
}

var tagsRmCmd = &cobra.Command{
	Use:   "rm <tag>",
	Short: "Delete a context tag everywhere",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag := types.NormalizeTag(args[0])
		store.Apply("delete-tag", func(s *types.Snapshot) *types.Snapshot {
			return state.DeleteTag(s, tag)
		})
		fmt.Printf("Deleted %s\n", tag)
		return nil
	},
}

func init() {
	tagsCmd.AddCommand(tagsListCmd, tagsAddCmd, tagsRmCmd)
	rootCmd.AddCommand(tagsCmd)
}
