package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrewblevins/taskbed/internal/state"
	"github.com/andrewblevins/taskbed/internal/types"
)

var attrCmd = &cobra.Command{
	Use:   "attr",
	Short: "Manage custom task attributes (energy, time, ...)",
}

var attrAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Define a new attribute",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var created *types.AttributeDefinition
		store.Apply("add-attribute", func(s *types.Snapshot) *types.Snapshot {
			next, attr := state.AddAttribute(s, args[0])
			created = attr
			return next
		})
		if created == nil {
			return fmt.Errorf("attribute name cannot be empty")
		}
		fmt.Printf("Added attribute %s: %s\n", shortID(created.ID), created.Name)
		return nil
	},
}

var attrListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List attributes and their options",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := store.Current()
		for _, attr := range snap.Attributes {
			fmt.Printf("%s  %s\n", shortID(attr.ID), attr.Name)
			for _, opt := range attr.Options {
				fmt.Printf("    %s  %s\n", shortID(opt.ID), opt.Label)
			}
		}
		return nil
	},
}

var attrRenameCmd = &cobra.Command{
	Use:   "rename <attr> <new-name>",
	Short: "Rename an attribute",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		attr, err := resolveAttribute(args[0])
		if err != nil {
			return err
		}
		store.Apply("rename-attribute", func(s *types.Snapshot) *types.Snapshot {
			return state.RenameAttribute(s, attr.ID, args[1])
		})
		fmt.Printf("Renamed attribute to %s\n", args[1])
		return nil
	},
}

var attrRmCmd = &cobra.Command{
	Use:   "rm <attr>",
	Short: "Delete an attribute and its values on all tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		attr, err := resolveAttribute(args[0])
		if err != nil {
			return err
		}
		store.Apply("delete-attribute", func(s *types.Snapshot) *types.Snapshot {
			return state.DeleteAttribute(s, attr.ID)
		})
		fmt.Printf("Deleted attribute %s\n", attr.Name)
		return nil
	},
}

var attrOptionAddCmd = &cobra.Command{
	Use:   "option-add <attr> <label>",
	Short: "Add an option to an attribute",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		attr, err := resolveAttribute(args[0])
		if err != nil {
			return err
		}
		color, _ := cmd.Flags().GetString("color")

		var created *types.AttributeOption
		store.Apply("add-attribute-option", func(s *types.Snapshot) *types.Snapshot {
			next, opt := state.AddAttributeOption(s, attr.ID, args[1], color)
			created = opt
			return next
		})
		if created == nil {
			return fmt.Errorf("option label cannot be empty")
		}
		fmt.Printf("Added option %s: %s\n", shortID(created.ID), created.Label)
		return nil
	},
}

var attrOptionRmCmd = &cobra.Command{
	Use:   "option-rm <attr> <option>",
	Short: "Delete an option (task values pointing at it are cleared)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		attr, err := resolveAttribute(args[0])
		if err != nil {
			return err
		}
		opt := resolveOption(attr, args[1])
		if opt == nil {
			return fmt.Errorf("no option matching %q on %s", args[1], attr.Name)
		}
		store.Apply("delete-attribute-option", func(s *types.Snapshot) *types.Snapshot {
			return state.DeleteAttributeOption(s, attr.ID, opt.ID)
		})
		fmt.Printf("Deleted option %s\n", opt.Label)
		return nil
	},
}

var attrSetCmd = &cobra.Command{
	Use:   "set <task> <attr> [option]",
	Short: "Set (or clear, with no option) an attribute value on a task",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := resolveTask(args[0])
		if err != nil {
			return err
		}
		attr, err := resolveAttribute(args[1])
		if err != nil {
			return err
		}

		optionID := ""
		if len(args) == 3 {
			opt := resolveOption(attr, args[2])
			if opt == nil {
				return fmt.Errorf("no option matching %q on %s", args[2], attr.Name)
			}
			optionID = opt.ID
		}

		store.Apply("set-task-attribute", func(s *types.Snapshot) *types.Snapshot {
			return state.SetTaskAttribute(s, task.ID, attr.ID, optionID)
		})
		if optionID == "" {
			fmt.Printf("Cleared %s on %s\n", attr.Name, task.Title)
		} else {
			fmt.Printf("Set %s on %s\n", attr.Name, task.Title)
		}
		return nil
	},
}

func resolveAttribute(ref string) (*types.AttributeDefinition, error) {
	snap := store.Current()
	if attr := snap.AttributeByID(ref); attr != nil {
		return attr, nil
	}
	lower := strings.ToLower(ref)
	for i := range snap.Attributes {
		if strings.ToLower(snap.Attributes[i].Name) == lower {
			return &snap.Attributes[i], nil
		}
	}
	return nil, fmt.Errorf("no attribute matching %q", ref)
}

func resolveOption(attr *types.AttributeDefinition, ref string) *types.AttributeOption {
	lower := strings.ToLower(ref)
	for i := range attr.Options {
		if attr.Options[i].ID == ref || strings.ToLower(attr.Options[i].Label) == lower {
			return &attr.Options[i]
		}
	}
	return nil
}

func init() {
	attrOptionAddCmd.Flags().String("color", "", "Display color (hex)")

	attrCmd.AddCommand(attrAddCmd, attrListCmd, attrRenameCmd, attrRmCmd,
		attrOptionAddCmd, attrOptionRmCmd, attrSetCmd)
	rootCmd.AddCommand(attrCmd)
}
