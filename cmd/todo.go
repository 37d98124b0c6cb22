package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/todo/internal/app"
	"github.com/joescharf/todo/internal/dashboard"
	"github.com/joescharf/todo/internal/models"
	"github.com/joescharf/todo/internal/output"
)

var (
	todoTitle    string
	todoDesc     string
	todoStatus   string
	todoPriority string
	todoDue      string
	todoNoDue    bool
	todoSearch   string
	todoSort     string
	todoPage     int
	todoAll      bool
	todoEnrich   bool
	todoTop      bool
	todoBottom   bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks one page at a time",
	Long:    "List tasks with optional filters. Pages hold 10 tasks; use --page or --all.",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return todoListRun()
	},
}

var addCmd = &cobra.Command{
	Use:   "add <title...>",
	Short: "Add a new task",
	Long:  "Add a new task. Without --due the task is due in a week; --no-due leaves it open.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return todoAddRun(cmd.Context(), strings.Join(args, " "))
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return todoShowRun(args[0])
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a task",
	Long:  "Update the given fields of a task. Fields without a flag keep their value.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return todoUpdateRun(cmd, args[0])
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return todoDeleteRun(args[0])
	},
}

var reorderCmd = &cobra.Command{
	Use:   "reorder <id> [index]",
	Short: "Move a task in the manual order",
	Long:  "Move a task to a 0-based position in the manual order, or to the top or bottom with --top/--bottom.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return todoReorderRun(args)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <text...>",
	Short: "Find tasks by title or description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return todoSearchRun(strings.Join(args, " "))
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Advance a task: todo -> in progress -> done -> todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return todoToggleRun(args[0])
	},
}

var bulkDeleteCmd = &cobra.Command{
	Use:   "bulk-delete <id>...",
	Short: "Delete several tasks at once",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return todoBulkDeleteRun(args)
	},
}

var bulkPriorityCmd = &cobra.Command{
	Use:   "bulk-priority <priority> <id>...",
	Short: "Set the priority of several tasks at once",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return todoBulkPriorityRun(args[0], args[1:])
	},
}

func init() {
	listCmd.Flags().StringVar(&todoStatus, "status", "", "Filter by status: todo, in_progress, done")
	listCmd.Flags().StringVar(&todoPriority, "priority", "", "Filter by priority: low, medium, high")
	listCmd.Flags().StringVar(&todoSearch, "search", "", "Filter by text in title or description")
	listCmd.Flags().StringVar(&todoSort, "sort", "order", "Sort: order, priority, due, status, title")
	listCmd.Flags().IntVar(&todoPage, "page", 1, "Page to show")
	listCmd.Flags().BoolVar(&todoAll, "all", false, "Show every page")

	addCmd.Flags().StringVar(&todoDesc, "desc", "", "Task description")
	addCmd.Flags().StringVar(&todoPriority, "priority", "medium", "Priority: low, medium, high")
	addCmd.Flags().StringVar(&todoStatus, "status", "todo", "Status: todo, in_progress, done")
	addCmd.Flags().StringVar(&todoDue, "due", "", "Due date (YYYY-MM-DD)")
	addCmd.Flags().BoolVar(&todoNoDue, "no-due", false, "Create the task without a due date")
	addCmd.Flags().BoolVar(&todoEnrich, "enrich", false, "Ask the LLM for a description and priority")

	updateCmd.Flags().StringVar(&todoTitle, "title", "", "New title")
	updateCmd.Flags().StringVar(&todoDesc, "desc", "", "New description")
	updateCmd.Flags().StringVar(&todoStatus, "status", "", "New status")
	updateCmd.Flags().StringVar(&todoPriority, "priority", "", "New priority")
	updateCmd.Flags().StringVar(&todoDue, "due", "", "New due date (YYYY-MM-DD, empty clears)")

	reorderCmd.Flags().BoolVar(&todoTop, "top", false, "Move to the first position")
	reorderCmd.Flags().BoolVar(&todoBottom, "bottom", false, "Move to the last position")
	reorderCmd.MarkFlagsMutuallyExclusive("top", "bottom")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(reorderCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(bulkDeleteCmd)
	rootCmd.AddCommand(bulkPriorityCmd)
}

// listQuery builds the dashboard query from the list flags.
func listQuery() (dashboard.Query, error) {
	q := dashboard.Query{Search: todoSearch, Page: todoPage}
	if todoStatus != "" {
		st, err := models.ParseStatus(todoStatus)
		if err != nil {
			return q, err
		}
		q.Status = &st
	}
	if todoPriority != "" {
		p, err := models.ParsePriority(todoPriority)
		if err != nil {
			return q, err
		}
		q.Priority = &p
	}
	sort, err := dashboard.ParseSort(todoSort)
	if err != nil {
		return q, err
	}
	q.Sort = sort
	return q, nil
}

func todoListRun() error {
	a, err := getApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	q, err := listQuery()
	if err != nil {
		return err
	}
	items := a.Todos.All(ctx)
	page := dashboard.Apply(items, q)

	if page.Empty {
		ui.Info("No tasks found.")
		return nil
	}

	if todoAll {
		for p := 1; p <= page.TotalPages; p++ {
			q.Page = p
			renderTodoTable(dashboard.Apply(items, q).Items, time.Now())
		}
		return nil
	}

	renderTodoTable(page.Items, time.Now())
	if page.TotalPages > 1 {
		fmt.Fprintf(ui.Out, "\nPage %d/%d (%d tasks)\n", page.Page, page.TotalPages, page.TotalItems)
	}
	return nil
}

func renderTodoTable(items []models.TodoItem, now time.Time) {
	table := ui.Table([]string{"ID", "Title", "Status", "Priority", "Due"})
	for _, it := range items {
		_ = table.Append([]string{
			shortID(it.ID),
			it.Title,
			output.StatusColor(string(it.Status)),
			output.PriorityColor(string(it.Priority)),
			dueString(it, now),
		})
	}
	_ = table.Render()
}

func dueString(it models.TodoItem, now time.Time) string {
	if it.DueDate == nil {
		return ""
	}
	s := it.DueDate.Format(time.DateOnly)
	if it.IsOverdue(now) {
		return output.Red(s + " (overdue)")
	}
	return s
}

func todoAddRun(ctx context.Context, title string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	draft := dashboard.NewDraft(time.Now())
	draft.Title = title
	draft.Description = todoDesc
	// Flag variables are shared with list/update, so empty means the default.
	if todoStatus != "" {
		if draft.Status, err = models.ParseStatus(todoStatus); err != nil {
			return err
		}
	}
	if todoPriority != "" {
		if draft.Priority, err = models.ParsePriority(todoPriority); err != nil {
			return err
		}
	}
	switch {
	case todoNoDue:
		draft.DueDate = nil
	case todoDue != "":
		if draft.DueDate, err = models.ParseDueDate(todoDue); err != nil {
			return err
		}
	}

	if todoEnrich {
		enrichDraft(ctx, &draft)
	}

	if dryRun {
		ui.DryRunMsg("Would add task: %s [%s/%s]", strings.TrimSpace(draft.Title), draft.Status, draft.Priority)
		return nil
	}

	item, err := a.Dashboard.Create(ctx, draft)
	if err != nil {
		return err
	}
	flushNotices()
	ui.VerboseLog("Created %s: %s", output.Cyan(shortID(item.ID)), item.Title)
	return nil
}

// enrichDraft fills description and priority from the LLM. Failures only warn.
func enrichDraft(ctx context.Context, draft *dashboard.Draft) {
	client := newLLMClient()
	if client == nil {
		ui.Warning("--enrich needs ANTHROPIC_API_KEY or anthropic.api_key; adding the task as given")
		return
	}
	e, err := client.EnrichTodo(ctx, draft.Title, draft.Description)
	if err != nil {
		ui.Warning("Enrichment failed: %v", err)
		return
	}
	if e.Description != "" {
		draft.Description = e.Description
	}
	if p, err := models.ParsePriority(e.Priority); err == nil {
		draft.Priority = p
	}
}

func todoShowRun(ref string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	it, err := findTodo(ctx, a, ref)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "%s  %s\n", output.Cyan(shortID(it.ID)), it.Title)
	fmt.Fprintf(ui.Out, "  Status:     %s\n", output.StatusColor(string(it.Status)))
	fmt.Fprintf(ui.Out, "  Priority:   %s\n", output.PriorityColor(string(it.Priority)))
	if it.Description != "" {
		fmt.Fprintf(ui.Out, "  Desc:       %s\n", it.Description)
	}
	if it.DueDate != nil {
		fmt.Fprintf(ui.Out, "  Due:        %s\n", dueString(it, time.Now()))
	}
	fmt.Fprintf(ui.Out, "  Position:   %d\n", it.OrderIndex)
	fmt.Fprintf(ui.Out, "  Created:    %s\n", it.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(ui.Out, "  Updated:    %s\n", it.UpdatedAt.Format(time.RFC3339))
	fmt.Fprintf(ui.Out, "  Full ID:    %s\n", it.ID)
	return nil
}

func todoUpdateRun(cmd *cobra.Command, ref string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	it, err := findTodo(ctx, a, ref)
	if err != nil {
		return err
	}

	draft := dashboard.DraftOf(it)
	changed := false
	flags := cmd.Flags()
	if flags.Changed("title") {
		draft.Title = todoTitle
		changed = true
	}
	if flags.Changed("desc") {
		draft.Description = todoDesc
		changed = true
	}
	if flags.Changed("status") {
		if draft.Status, err = models.ParseStatus(todoStatus); err != nil {
			return err
		}
		changed = true
	}
	if flags.Changed("priority") {
		if draft.Priority, err = models.ParsePriority(todoPriority); err != nil {
			return err
		}
		changed = true
	}
	if flags.Changed("due") {
		if draft.DueDate, err = models.ParseDueDate(todoDue); err != nil {
			return err
		}
		changed = true
	}

	if !changed {
		return fmt.Errorf("no updates specified (use --title, --desc, --status, --priority or --due)")
	}

	if dryRun {
		ui.DryRunMsg("Would update task %s", shortID(it.ID))
		return nil
	}

	if _, err := a.Dashboard.Edit(ctx, it.ID, draft); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	flushNotices()
	return nil
}

func todoDeleteRun(ref string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	it, err := findTodo(ctx, a, ref)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would delete task %s: %s", shortID(it.ID), it.Title)
		return nil
	}

	a.Dashboard.Delete(ctx, it.ID)
	flushNotices()
	return nil
}

func todoReorderRun(args []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	it, err := findTodo(ctx, a, args[0])
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would move task %s", shortID(it.ID))
		return nil
	}

	switch {
	case todoTop:
		a.Dashboard.MoveToTop(ctx, it.ID)
	case todoBottom:
		a.Dashboard.MoveToBottom(ctx, it.ID)
	case len(args) == 2:
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid index %q: %w", args[1], err)
		}
		a.Todos.Reorder(ctx, it.ID, index)
	default:
		return fmt.Errorf("give a target index or use --top/--bottom")
	}

	moved, _ := a.Todos.Get(ctx, it.ID)
	ui.Success("Moved %s to position %d", output.Cyan(shortID(it.ID)), moved.OrderIndex)
	return nil
}

func todoSearchRun(text string) error {
	a, err := getApp()
	if err != nil {
		return err
	}

	items := a.Todos.Search(context.Background(), text)
	if len(items) == 0 {
		ui.Info("No tasks match %q.", text)
		return nil
	}
	renderTodoTable(items, time.Now())
	return nil
}

func todoToggleRun(ref string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	it, err := findTodo(ctx, a, ref)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would move task %s from %s to %s", shortID(it.ID), it.Status, it.Status.Next())
		return nil
	}

	updated, _ := a.Dashboard.ToggleStatus(ctx, it.ID)
	ui.Success("%s is now %s", updated.Title, output.StatusColor(string(updated.Status)))
	return nil
}

func todoBulkDeleteRun(refs []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	ids, err := resolveTodoIDs(ctx, a, refs)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would delete %d task(s)", len(ids))
		return nil
	}

	a.Dashboard.BulkDelete(ctx, ids)
	flushNotices()
	return nil
}

func todoBulkPriorityRun(priority string, refs []string) error {
	p, err := models.ParsePriority(priority)
	if err != nil {
		return err
	}
	a, err := getApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	ids, err := resolveTodoIDs(ctx, a, refs)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would set %d task(s) to %s priority", len(ids), p.Label())
		return nil
	}

	a.Dashboard.BulkSetPriority(ctx, ids, p)
	flushNotices()
	return nil
}

func resolveTodoIDs(ctx context.Context, a *app.App, refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		it, err := findTodo(ctx, a, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, it.ID)
	}
	return ids, nil
}

// errTodoNotFound is returned by findTodo when nothing matches.
var errTodoNotFound = errors.New("task not found")

// findTodo finds a task by full ID, or by a unique ID prefix or suffix.
func findTodo(ctx context.Context, a *app.App, ref string) (models.TodoItem, error) {
	if it, ok := a.Todos.Get(ctx, ref); ok {
		return it, nil
	}

	upper := strings.ToUpper(ref)
	var matches []models.TodoItem
	for _, it := range a.Todos.All(ctx) {
		id := strings.ToUpper(it.ID)
		if strings.HasPrefix(id, upper) || strings.HasSuffix(id, upper) {
			matches = append(matches, it)
		}
	}

	switch len(matches) {
	case 0:
		return models.TodoItem{}, fmt.Errorf("%w: %s", errTodoNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return models.TodoItem{}, fmt.Errorf("ambiguous task ID %s: matches %d tasks", ref, len(matches))
	}
}

// shortID returns the tail of an ID for display. ULIDs minted in the same
// millisecond share their head, so the tail is the distinctive part.
func shortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}
