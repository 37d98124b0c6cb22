package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joescharf/todo/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive dashboard",
	Long:  "Open a full-screen task dashboard. Press ? inside it for key bindings.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return tui.Run(ctx, a)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
