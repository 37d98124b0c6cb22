package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/todo/internal/theme"
)

var themeCmd = &cobra.Command{
	Use:   "theme [dark|light|toggle]",
	Short: "Show or change the color theme",
	Long:  "Show the current theme, set it to dark or light, or toggle between them.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arg := ""
		if len(args) == 1 {
			arg = args[0]
		}
		return themeRun(arg)
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
}

func themeRun(arg string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	switch arg {
	case "":
		fmt.Fprintln(ui.Out, a.Theme.Get(ctx))
		return nil
	case "toggle":
		if dryRun {
			ui.DryRunMsg("Would toggle the theme")
			return nil
		}
		ui.Success("Theme set to %s", a.Theme.Toggle(ctx))
		return nil
	}

	t, err := theme.Parse(arg)
	if err != nil {
		return err
	}
	if dryRun {
		ui.DryRunMsg("Would set the theme to %s", t)
		return nil
	}
	a.Theme.Set(ctx, t)
	ui.Success("Theme set to %s", t)
	return nil
}
