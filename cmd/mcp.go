package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joescharf/todo/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for assistant integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets an MCP client manage tasks directly. Configure it with:

  {
    "mcpServers": {
      "todo": { "command": "todo", "args": ["mcp"] }
    }
  }

Available tools: todo_list, todo_create, todo_update, todo_delete,
todo_undo, todo_reorder, todo_toggle, todo_statistics`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return mcp.NewServer(a, buildVersion).ServeStdio(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
