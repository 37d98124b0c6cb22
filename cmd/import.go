package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/todo/internal/app"
	"github.com/joescharf/todo/internal/llm"
	"github.com/joescharf/todo/internal/models"
	"github.com/joescharf/todo/internal/output"
)

var (
	importNoLLM  bool
	importDryRun bool
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import tasks from a markdown file",
	Long: `Import tasks from a markdown file using an LLM to extract structured data.

The file may contain free-form notes; numbered or bulleted items become
tasks. Checked items ("- [x] ...") are skipped. With --no-llm, or when no
API key is configured, list items are imported as-is with keyword-based
priorities and no due dates.

Uses ANTHROPIC_API_KEY environment variable or anthropic.api_key in config.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return importRun(cmd.Context(), args[0])
	},
}

func init() {
	importCmd.Flags().BoolVar(&importNoLLM, "no-llm", false, "Parse list items locally instead of calling the LLM")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Preview extracted tasks without creating them")
	rootCmd.AddCommand(importCmd)
}

func importRun(ctx context.Context, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	content := string(data)
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("file is empty: %s", file)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := getApp()
	if err != nil {
		return err
	}

	var extracted []llm.ExtractedTodo
	client := newLLMClient()
	switch {
	case importNoLLM:
		extracted = parseMarkdownTodos(content)
	case client == nil:
		ui.Warning("No Anthropic API key configured; importing list items without the LLM")
		extracted = parseMarkdownTodos(content)
	default:
		ui.Info("Extracting tasks with LLM (%s)...", client.Model())
		extracted, err = client.ExtractTodos(ctx, content, time.Now())
		if err != nil {
			return fmt.Errorf("extract tasks: %w", err)
		}
	}

	if len(extracted) == 0 {
		ui.Info("No tasks extracted from file.")
		return nil
	}

	now := time.Now()
	items := make([]models.TodoItem, 0, len(extracted))
	table := ui.Table([]string{"#", "Title", "Priority", "Due"})
	for i, e := range extracted {
		it := e.Item(now)
		items = append(items, it)
		_ = table.Append([]string{
			fmt.Sprintf("%d", i+1),
			it.Title,
			output.PriorityColor(string(it.Priority)),
			dueString(it, now),
		})
	}
	_ = table.Render()

	if importDryRun || dryRun {
		ui.Info("Dry run: would create %d tasks", len(items))
		return nil
	}

	return createImportedTodos(ctx, a, items)
}

// createImportedTodos adds the items through the repository, skipping
// untitled ones.
func createImportedTodos(ctx context.Context, a *app.App, items []models.TodoItem) error {
	created, skipped := 0, 0
	for _, it := range items {
		if it.Title == "" {
			skipped++
			continue
		}
		a.Todos.Add(ctx, it)
		created++
	}

	ui.Success("Created %d tasks", created)
	if skipped > 0 {
		ui.Warning("Skipped %d untitled items", skipped)
	}
	return nil
}

// parseMarkdownTodos extracts numbered and bulleted list items. Checked
// checkbox items are treated as done and skipped.
func parseMarkdownTodos(content string) []llm.ExtractedTodo {
	var todos []llm.ExtractedTodo

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		title := listItemText(line)
		if title == "" {
			continue
		}

		lower := strings.ToLower(title)
		if strings.HasPrefix(lower, "[x]") {
			continue
		}
		title = strings.TrimSpace(strings.TrimPrefix(title, "[ ]"))
		if title == "" {
			continue
		}

		todos = append(todos, llm.ExtractedTodo{
			Title:    title,
			Priority: classifyPriority(title),
		})
	}

	return todos
}

// listItemText returns the text of a "1. text", "1) text", "- text", "+ text" or
// "* text" line, or "" for anything else.
func listItemText(line string) string {
	if len(line) <= 2 {
		return ""
	}
	if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") || strings.HasPrefix(line, "+ ") {
		return strings.TrimSpace(line[2:])
	}
	for i, c := range line {
		if (c == '.' || c == ')') && i > 0 && i < 4 && i+1 < len(line) && line[i+1] == ' ' {
			return strings.TrimSpace(line[i+1:])
		}
		if c < '0' || c > '9' {
			break
		}
	}
	return ""
}
