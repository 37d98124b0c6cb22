package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/todo/internal/models"
)

// resetTodoFlags clears the package-level flag variables shared by the
// task commands.
func resetTodoFlags(t *testing.T) {
	t.Helper()
	todoTitle, todoDesc, todoStatus, todoPriority, todoDue = "", "", "", "", ""
	todoSearch, todoSort = "", ""
	todoNoDue, todoAll, todoEnrich, todoTop, todoBottom = false, false, false, false, false
	todoPage = 1
	dryRun = false
	t.Cleanup(func() {
		todoTitle, todoDesc, todoStatus, todoPriority, todoDue = "", "", "", "", ""
		todoSearch, todoSort = "", ""
		todoNoDue, todoAll, todoEnrich, todoTop, todoBottom = false, false, false, false, false
		todoPage = 1
		dryRun = false
	})
}

func todoByTitle(t *testing.T, title string) models.TodoItem {
	t.Helper()
	a, err := getApp()
	require.NoError(t, err)
	for _, it := range a.Todos.All(context.Background()) {
		if it.Title == title {
			return it
		}
	}
	t.Fatalf("no task titled %q", title)
	return models.TodoItem{}
}

func TestTodoListRun_Seeded(t *testing.T) {
	testEnv(t)
	resetTodoFlags(t)
	buf := captureOutput(t)

	require.NoError(t, todoListRun())
	out := buf.String()
	assert.Contains(t, out, "Set up project architecture")
	assert.Contains(t, out, "Code review session")
	assert.Contains(t, out, "(overdue)")
}

func TestTodoListRun_Filters(t *testing.T) {
	testEnv(t)
	resetTodoFlags(t)
	buf := captureOutput(t)

	todoStatus = "in_progress"
	require.NoError(t, todoListRun())
	out := buf.String()
	assert.Contains(t, out, "Implement authentication")
	assert.Contains(t, out, "Design dashboard layout")
	assert.NotContains(t, out, "Write unit tests")

	buf.Reset()
	todoStatus = ""
	todoSearch = "nothing like this"
	require.NoError(t, todoListRun())
	assert.Contains(t, buf.String(), "No tasks found.")
}

func TestTodoListRun_InvalidFlags(t *testing.T) {
	testEnv(t)
	resetTodoFlags(t)

	todoStatus = "blocked"
	assert.Error(t, todoListRun())

	todoStatus = ""
	todoSort = "sideways"
	assert.Error(t, todoListRun())
}

func TestTodoAddRun(t *testing.T) {
	testEnv(t)
	resetTodoFlags(t)
	buf := captureOutput(t)

	todoPriority = "high"
	todoDue = "2030-01-15"
	require.NoError(t, todoAddRun(context.Background(), "  Buy milk  "))
	assert.Contains(t, buf.String(), "Task created")

	it := todoByTitle(t, "Buy milk")
	assert.Equal(t, models.PriorityHigh, it.Priority)
	assert.Equal(t, models.StatusTodo, it.Status)
	require.NotNil(t, it.DueDate)
	assert.Equal(t, "2030-01-15", it.DueDate.Format("2006-01-02"))
}

func TestTodoAddRun_NoDueAndValidation(t *testing.T) {
	testEnv(t)
	resetTodoFlags(t)

	todoNoDue = true
	require.NoError(t, todoAddRun(context.Background(), "Someday task"))
	assert.Nil(t, todoByTitle(t, "Someday task").DueDate)

	err := todoAddRun(context.Background(), "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Title")
}

func TestTodoAddRun_DryRun(t *testing.T) {
	testEnv(t)
	resetTodoFlags(t)
	buf := captureOutput(t)

	dryRun = true
	ui.DryRun = true
	require.NoError(t, todoAddRun(context.Background(), "Not really"))
	assert.Contains(t, buf.String(), "Would add task: Not really")

	a, err := getApp()
	require.NoError(t, err)
	assert.Len(t, a.Todos.All(context.Background()), 7)
}

func updateTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{}
	c.Flags().StringVar(&todoTitle, "title", "", "")
	c.Flags().StringVar(&todoDesc, "desc", "", "")
	c.Flags().StringVar(&todoStatus, "status", "", "")
	c.Flags().StringVar(&todoPriority, "priority", "", "")
	c.Flags().StringVar(&todoDue, "due", "", "")
	require.NoError(t, c.Flags().Parse(args))
	return c
}

func TestTodoUpdateRun(t *testing.T) {
	testEnv(t)
	resetTodoFlags(t)

	it := todoByTitle(t, "Write unit tests")
	c := updateTestCmd(t, "--status", "done", "--priority", "high")
	require.NoError(t, todoUpdateRun(c, shortID(it.ID)))

	updated := todoByTitle(t, "Write unit tests")
	assert.Equal(t, models.StatusDone, updated.Status)
	assert.Equal(t, models.PriorityHigh, updated.Priority)
	assert.Equal(t, it.Description, updated.Description)
}

func TestTodoUpdateRun_NoChanges(t *testing.T) {
	testEnv(t)
	resetTodoFlags(t)

	it := todoByTitle(t, "Write unit tests")
	err := todoUpdateRun(updateTestCmd(t), it.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no updates specified")
}

func TestTodoDeleteRun(t *testing.T) {
	testEnv(t)
	resetTodoFlags(t)
	buf := captureOutput(t)

	it := todoByTitle(t, "Code review session")
	require.NoError(t, todoDeleteRun(it.ID))
	assert.Contains(t, buf.String(), "Code review session")

	a, err := getApp()
	require.NoError(t, err)
	_, ok := a.Todos.Get(context.Background(), it.ID)
	assert.False(t, ok)
	assert.Len(t, a.Todos.All(context.Background()), 6)
}

func TestTodoReorderRun(t *testing.T) {
	testEnv(t)
	resetTodoFlags(t)

	it := todoByTitle(t, "Code review session")
	todoTop = true
	require.NoError(t, todoReorderRun([]string{it.ID}))
	assert.Equal(t, 0, todoByTitle(t, "Code review session").OrderIndex)

	todoTop = false
	require.NoError(t, todoReorderRun([]string{it.ID, "3"}))
	assert.Equal(t, 3, todoByTitle(t, "Code review session").OrderIndex)

	assert.Error(t, todoReorderRun([]string{it.ID}))
	assert.Error(t, todoReorderRun([]string{it.ID, "three"}))
}

func TestTodoToggleRun(t *testing.T) {
	testEnv(t)
	resetTodoFlags(t)

	it := todoByTitle(t, "Write unit tests")
	require.NoError(t, todoToggleRun(it.ID))
	assert.Equal(t, models.StatusInProgress, todoByTitle(t, "Write unit tests").Status)
	require.NoError(t, todoToggleRun(it.ID))
	assert.Equal(t, models.StatusDone, todoByTitle(t, "Write unit tests").Status)
}

func TestTodoSearchRun(t *testing.T) {
	testEnv(t)
	resetTodoFlags(t)
	buf := captureOutput(t)

	require.NoError(t, todoSearchRun("REVIEW"))
	assert.Contains(t, buf.String(), "Code review session")
	assert.NotContains(t, buf.String(), "Write unit tests")

	buf.Reset()
	require.NoError(t, todoSearchRun("zebra"))
	assert.Contains(t, buf.String(), "No tasks match")
}

func TestTodoBulkRuns(t *testing.T) {
	testEnv(t)
	resetTodoFlags(t)

	a := todoByTitle(t, "Write unit tests")
	b := todoByTitle(t, "Add statistics charts")

	require.NoError(t, todoBulkPriorityRun("low", []string{a.ID, b.ID}))
	assert.Equal(t, models.PriorityLow, todoByTitle(t, "Add statistics charts").Priority)

	assert.Error(t, todoBulkPriorityRun("urgent", []string{a.ID}))

	require.NoError(t, todoBulkDeleteRun([]string{a.ID, b.ID}))
	app, err := getApp()
	require.NoError(t, err)
	assert.Len(t, app.Todos.All(context.Background()), 5)
}

func TestFindTodo(t *testing.T) {
	testEnv(t)
	a, err := getApp()
	require.NoError(t, err)
	ctx := context.Background()

	it := todoByTitle(t, "Deploy the API server")

	got, err := findTodo(ctx, a, it.ID)
	require.NoError(t, err)
	assert.Equal(t, it.ID, got.ID)

	got, err = findTodo(ctx, a, strings.ToLower(shortID(it.ID)))
	require.NoError(t, err)
	assert.Equal(t, it.ID, got.ID)

	_, err = findTodo(ctx, a, "no-such-id")
	assert.ErrorIs(t, err, errTodoNotFound)

	// Every seeded ID shares the same ULID time prefix.
	_, err = findTodo(ctx, a, it.ID[:4])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "23456789", shortID("0123456789"))
}
