package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo the last edit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := undoEngine.Undo(); err != nil {
			return err
		}
		undos, redos := undoEngine.Depth()
		fmt.Printf("Undone (%d undo, %d redo remaining).\n", undos, redos)
		return nil
	},
}

var redoCmd = &cobra.Command{
	Use:   "redo",
	Short: "Redo the last undone edit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := undoEngine.Redo(); err != nil {
			return err
		}
		undos, redos := undoEngine.Depth()
		fmt.Printf("Redone (%d undo, %d redo remaining).\n", undos, redos)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(undoCmd, redoCmd)
}
