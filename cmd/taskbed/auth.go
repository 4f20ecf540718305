package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/andrewblevins/taskbed/internal/config"
	"github.com/andrewblevins/taskbed/internal/storage/remote"
)

var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Sign in to the hosted store",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if remoteClient == nil {
			return fmt.Errorf("no remote configured (set remote-url and remote-anon-key)")
		}

		email := ""
		if len(args) > 0 {
			email = args[0]
		} else {
			fmt.Print("Email: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return err
			}
			email = strings.TrimSpace(line)
		}
		if email == "" {
			return fmt.Errorf("email required")
		}

		fmt.Print("Password: ")
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}

		session, err := remoteClient.SignIn(cmd.Context(), email, string(password))
		if err != nil {
			return err
		}
		if err := remote.SaveSession(remote.SessionPath(config.DataDir()), session); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}

		// Rescope everything to the signed-in user and pull their state.
		if err := coordinator.SetIdentity(cmd.Context(), session.UserID); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: signed in but initial pull failed: %v\n", err)
		}
		identity = session.UserID
		fmt.Printf("Signed in as %s.\n", session.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and drop the signed-in user's local data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if remoteClient == nil || remoteClient.Identity() == "" {
			return fmt.Errorf("not signed in")
		}

		old := remoteClient.Identity()
		remoteClient.SignOut()
		remote.ClearSession(remote.SessionPath(config.DataDir()))

		// The signed-out identity's rows must not leak into the local scope.
		if err := localCache.Delete(cmd.Context(), old); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: clearing cached data failed: %v\n", err)
		}

		local := config.GetString("identity")
		if err := coordinator.SetIdentity(cmd.Context(), local); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: reloading local state failed: %v\n", err)
		}
		identity = local
		fmt.Println("Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current identity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if remoteClient != nil && remoteClient.Identity() != "" {
			fmt.Printf("Signed in: %s\n", identity)
			return nil
		}
		fmt.Printf("Local identity: %s\n", identity)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}
