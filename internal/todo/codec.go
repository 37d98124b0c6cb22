package todo

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/joescharf/todo/internal/models"
)

// Encode serializes items as the JSON array stored under store.KeyTodoItems.
func Encode(items []models.TodoItem) (string, error) {
	if items == nil {
		items = []models.TodoItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("marshal todo items: %w", err)
	}
	return string(data), nil
}

// Decode parses a stored JSON array. Only a malformed payload is an error.
// Items without an id or repeating an earlier id are skipped, and unknown
// statuses or priorities fall back to todo and medium so one bad row never
// costs the rest of the list.
func Decode(raw string) ([]models.TodoItem, error) {
	var decoded []models.TodoItem
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("unmarshal todo items: %w", err)
	}

	items := make([]models.TodoItem, 0, len(decoded))
	seen := make(map[string]bool, len(decoded))
	for _, it := range decoded {
		if it.ID == "" || seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		items = append(items, normalize(it))
	}
	return items, nil
}

// normalize replaces empty or unknown enum values with the defaults used
// for new items.
func normalize(it models.TodoItem) models.TodoItem {
	if !slices.Contains(models.Statuses, it.Status) {
		it.Status = models.StatusTodo
	}
	if !slices.Contains(models.Priorities, it.Priority) {
		it.Priority = models.PriorityMedium
	}
	return it
}
