package models

import (
	"fmt"
	"strings"
	"time"
)

// TodoStatus represents the state of a todo item.
type TodoStatus string

const (
	StatusTodo       TodoStatus = "todo"
	StatusInProgress TodoStatus = "in_progress"
	StatusDone       TodoStatus = "done"
)

// Statuses lists every status in ordinal order.
var Statuses = []TodoStatus{StatusTodo, StatusInProgress, StatusDone}

// Rank returns the ordinal position used for sorting.
func (s TodoStatus) Rank() int {
	switch s {
	case StatusInProgress:
		return 1
	case StatusDone:
		return 2
	default:
		return 0
	}
}

// Next returns the status a toggle moves to: todo -> in_progress -> done -> todo.
func (s TodoStatus) Next() TodoStatus {
	switch s {
	case StatusTodo:
		return StatusInProgress
	case StatusInProgress:
		return StatusDone
	default:
		return StatusTodo
	}
}

// Label returns a human-readable status name.
func (s TodoStatus) Label() string {
	switch s {
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	default:
		return "Todo"
	}
}

// ParseStatus accepts the wire form plus a few common spellings.
func ParseStatus(s string) (TodoStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo", "open":
		return StatusTodo, nil
	case "in_progress", "inprogress", "in-progress", "doing":
		return StatusInProgress, nil
	case "done", "completed":
		return StatusDone, nil
	}
	return "", fmt.Errorf("invalid status %q (use: todo, in_progress, done)", s)
}

// TodoPriority represents the urgency of a todo item.
type TodoPriority string

const (
	PriorityLow    TodoPriority = "low"
	PriorityMedium TodoPriority = "medium"
	PriorityHigh   TodoPriority = "high"
)

// Priorities lists every priority in ordinal order.
var Priorities = []TodoPriority{PriorityLow, PriorityMedium, PriorityHigh}

// Rank returns the ordinal position used for sorting.
func (p TodoPriority) Rank() int {
	switch p {
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	default:
		return 0
	}
}

// Label returns a capitalized priority name.
func (p TodoPriority) Label() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	default:
		return "Low"
	}
}

// ParsePriority accepts the wire form case-insensitively.
func ParsePriority(s string) (TodoPriority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow, nil
	case "medium", "med":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("invalid priority %q (use: low, medium, high)", s)
}

// TodoItem is a single task. The JSON shape is the persisted format.
type TodoItem struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TodoStatus   `json:"status"`
	Priority    TodoPriority `json:"priority"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	OrderIndex  int          `json:"orderIndex"`
}

// IsOverdue reports whether the due date lies before now's UTC date and the item is not done.
func (t TodoItem) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == StatusDone {
		return false
	}
	return DateOf(*t.DueDate).Before(DateOf(now))
}

// Clone returns a deep copy.
func (t TodoItem) Clone() TodoItem {
	c := t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return c
}

// DateOf truncates t to midnight of its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DueOn returns a due-date pointer normalised to a UTC date.
func DueOn(t time.Time) *time.Time {
	d := DateOf(t)
	return &d
}

// ParseDueDate parses YYYY-MM-DD or an RFC 3339 timestamp. An empty string
// yields nil.
func ParseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		if full, ferr := time.Parse(time.RFC3339, s); ferr == nil {
			return DueOn(full), nil
		}
		return nil, fmt.Errorf("invalid due date %q (use YYYY-MM-DD): %w", s, err)
	}
	return DueOn(t), nil
}
