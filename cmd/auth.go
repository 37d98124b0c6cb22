package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joescharf/todo/internal/models"
	"github.com/joescharf/todo/internal/output"
)

var (
	loginPassword string
	loginRemember bool
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in and optionally remember the session",
	Long: `Log in with a username and password. The password needs 8 or more
characters with an uppercase letter, a digit and a special character.

The password is read from --password, then TODO_PASSWORD.
With --remember the session survives restarts of the process.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return loginRun(cmd.Context(), args[0])
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and forget a remembered token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return logoutRun()
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return whoamiRun()
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password (default $TODO_PASSWORD)")
	loginCmd.Flags().BoolVar(&loginRemember, "remember", false, "Keep the session after exit")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

func loginRun(ctx context.Context, username string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	password := loginPassword
	if password == "" {
		password = os.Getenv("TODO_PASSWORD")
	}

	res := a.Auth.Login(ctx, models.Credentials{
		Username:   username,
		Password:   password,
		RememberMe: loginRemember,
	})
	if !res.Success {
		return fmt.Errorf("login failed: %s", res.ErrorMessage)
	}

	ui.Success("Logged in as %s", output.Cyan(res.Username))
	if loginRemember {
		ui.VerboseLog("Session remembered")
	}
	return nil
}

func logoutRun() error {
	a, err := getApp()
	if err != nil {
		return err
	}

	a.Auth.Logout(context.Background())
	ui.Success("Logged out")
	return nil
}

func whoamiRun() error {
	a, err := getApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if !a.Auth.IsAuthenticated(ctx) {
		ui.Info("Not logged in.")
		return nil
	}
	user, ok := a.Auth.CurrentUser(ctx)
	if !ok {
		ui.Info("Logged in (user unknown)")
		return nil
	}
	fmt.Fprintln(ui.Out, user)
	return nil
}
