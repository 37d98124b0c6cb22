package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/todo/internal/models"
)

func TestParseMarkdownTodos(t *testing.T) {
	t.Run("numbered and bulleted items", func(t *testing.T) {
		md := `# This week

1. Renew passport
2) Fix the leaking tap asap
- Buy groceries
* Read a book someday
+ Call the bank

Plain paragraph text is ignored.
`
		todos := parseMarkdownTodos(md)
		require.Len(t, todos, 5)

		assert.Equal(t, "Renew passport", todos[0].Title)
		assert.Equal(t, "medium", todos[0].Priority)
		assert.Equal(t, "Fix the leaking tap asap", todos[1].Title)
		assert.Equal(t, "high", todos[1].Priority)
		assert.Equal(t, "Buy groceries", todos[2].Title)
		assert.Equal(t, "low", todos[3].Priority)
		assert.Equal(t, "Call the bank", todos[4].Title)
	})

	t.Run("checkboxes", func(t *testing.T) {
		md := `- [ ] Open item
- [x] Finished item
- [X] Also finished
- [ ]
`
		todos := parseMarkdownTodos(md)
		require.Len(t, todos, 1)
		assert.Equal(t, "Open item", todos[0].Title)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, parseMarkdownTodos(""))
		assert.Empty(t, parseMarkdownTodos("just text\n\nmore text"))
	})
}

func TestListItemText(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"1. First", "First"},
		{"12) Twelfth", "Twelfth"},
		{"- dash", "dash"},
		{"* star", "star"},
		{"-", ""},
		{"1.5 kg of flour", ""},
		{"2026 plans", ""},
		{"no marker", ""},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, listItemText(tt.line))
		})
	}
}

func TestClassifyPriority(t *testing.T) {
	assert.Equal(t, "high", classifyPriority("URGENT: pay invoice"))
	assert.Equal(t, "high", classifyPriority("Finish report before deadline"))
	assert.Equal(t, "low", classifyPriority("Maybe learn the banjo"))
	assert.Equal(t, "low", classifyPriority("Optional cleanup"))
	assert.Equal(t, "medium", classifyPriority("Water the plants"))
	// high wins over low
	assert.Equal(t, "high", classifyPriority("maybe urgent"))
}

func writeImportFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportRun_NoLLM(t *testing.T) {
	dir := testEnv(t)
	resetTodoFlags(t)
	buf := captureOutput(t)

	importNoLLM = true
	t.Cleanup(func() { importNoLLM = false })

	path := writeImportFile(t, dir, "- Renew passport\n- [x] Done already\n- Fix roof asap\n")
	require.NoError(t, importRun(context.Background(), path))
	assert.Contains(t, buf.String(), "Created 2 tasks")

	it := todoByTitle(t, "Fix roof asap")
	assert.Equal(t, models.PriorityHigh, it.Priority)
	assert.Equal(t, models.StatusTodo, it.Status)
	assert.Nil(t, it.DueDate)

	a, err := getApp()
	require.NoError(t, err)
	assert.Len(t, a.Todos.All(context.Background()), 9)
}

func TestImportRun_DryRun(t *testing.T) {
	dir := testEnv(t)
	resetTodoFlags(t)
	buf := captureOutput(t)

	importNoLLM, importDryRun = true, true
	t.Cleanup(func() { importNoLLM, importDryRun = false, false })

	path := writeImportFile(t, dir, "1. One\n2. Two\n")
	require.NoError(t, importRun(context.Background(), path))
	assert.Contains(t, buf.String(), "would create 2 tasks")

	a, err := getApp()
	require.NoError(t, err)
	assert.Len(t, a.Todos.All(context.Background()), 7)
}

func TestImportRun_Errors(t *testing.T) {
	dir := testEnv(t)

	err := importRun(context.Background(), filepath.Join(dir, "missing.md"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read file")

	path := writeImportFile(t, dir, "  \n\n")
	err = importRun(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file is empty")
}

func TestImportRun_FallsBackWithoutKey(t *testing.T) {
	dir := testEnv(t)
	resetTodoFlags(t)
	buf := captureOutput(t)
	t.Setenv("ANTHROPIC_API_KEY", "")

	path := writeImportFile(t, dir, "- Only item\n")
	require.NoError(t, importRun(context.Background(), path))
	assert.Contains(t, buf.String(), "No Anthropic API key configured")
	assert.Contains(t, buf.String(), "Created 1 tasks")
}
