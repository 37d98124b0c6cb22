package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/todo/internal/models"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tasks as JSON, CSV, or Markdown",
	Long:  "Export every task in manual order. JSON output uses the persisted format and can be re-read by the store.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportRun()
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json, csv, markdown")
	rootCmd.AddCommand(exportCmd)
}

func exportRun() error {
	a, err := getApp()
	if err != nil {
		return err
	}
	return exportTodos(ui.Out, a.Todos.All(context.Background()), exportFormat)
}

func exportTodos(w io.Writer, items []models.TodoItem, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if items == nil {
			items = []models.TodoItem{}
		}
		return enc.Encode(items)
	case "csv":
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"ID", "Title", "Description", "Status", "Priority", "Due", "Order", "Created", "Updated"})
		for _, it := range items {
			due := ""
			if it.DueDate != nil {
				due = it.DueDate.Format(time.DateOnly)
			}
			_ = cw.Write([]string{
				it.ID, it.Title, it.Description, string(it.Status), string(it.Priority), due,
				strconv.Itoa(it.OrderIndex),
				it.CreatedAt.Format(time.RFC3339), it.UpdatedAt.Format(time.RFC3339),
			})
		}
		cw.Flush()
		return cw.Error()
	case "markdown":
		fmt.Fprintln(w, "# Tasks")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| Done | Title | Status | Priority | Due |")
		fmt.Fprintln(w, "|------|-------|--------|----------|-----|")
		for _, it := range items {
			check := "[ ]"
			if it.Status == models.StatusDone {
				check = "[x]"
			}
			due := ""
			if it.DueDate != nil {
				due = it.DueDate.Format(time.DateOnly)
			}
			title := strings.ReplaceAll(it.Title, "|", `\|`)
			fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n", check, title, it.Status.Label(), it.Priority.Label(), due)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s (use: json, csv, markdown)", format)
	}
}
