package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push the current state to all sinks now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		coordinator.Push(cmd.Context())
		fmt.Println("Pushed.")
		return nil
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull the latest state, replacing local state",
	Long: `Pull the best available snapshot (remote first, then the local server,
then the cache) and replace local state with it wholesale. Unsynced local
edits lose; run 'taskbed sync' first if in doubt.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := coordinator.Pull(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Pulled from %s.\n", source)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow remote changes until interrupted",
	Long: `Subscribe to the change feeds of the local server and (when signed in)
the remote store, pulling whenever another device writes. Runs until
interrupted with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if _, err := coordinator.Pull(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: initial pull failed: %v\n", err)
		}
		fmt.Println("Watching for changes (Ctrl-C to stop)...")
		return coordinator.Watch(ctx)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd, pullCmd, watchCmd)
}
