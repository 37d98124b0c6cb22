package todo

import (
	"time"

	"github.com/joescharf/todo/internal/models"
)

type seedItem struct {
	title, description string
	status             models.TodoStatus
	priority           models.TodoPriority
	dueInDays          int
}

var seedItems = []seedItem{
	{"Set up project architecture", "Create the module layout with store, todo, auth and stats packages.", models.StatusDone, models.PriorityHigh, -2},
	{"Implement authentication", "Build login/logout flow with session persistence and validation.", models.StatusInProgress, models.PriorityHigh, 1},
	{"Design dashboard layout", "Create the main task management view with filters and paging.", models.StatusInProgress, models.PriorityMedium, 3},
	{"Add statistics charts", "Render status, priority and weekly activity charts.", models.StatusTodo, models.PriorityMedium, 7},
	{"Write unit tests", "Cover the repository, auth gate and statistics with tests.", models.StatusTodo, models.PriorityLow, 14},
	{"Deploy the API server", "Configure the service and publish the first release.", models.StatusTodo, models.PriorityHigh, 5},
	{"Code review session", "Review the authentication changes with the team.", models.StatusTodo, models.PriorityLow, -1},
}

// Seed returns the example items used when the store holds no usable data.
// Due dates are relative to now.
func Seed(now time.Time, newID func() string) []models.TodoItem {
	items := make([]models.TodoItem, len(seedItems))
	for i, s := range seedItems {
		items[i] = models.TodoItem{
			ID:          newID(),
			Title:       s.title,
			Description: s.description,
			Status:      s.status,
			Priority:    s.priority,
			DueDate:     models.DueOn(now.AddDate(0, 0, s.dueInDays)),
			CreatedAt:   now,
			UpdatedAt:   now,
			OrderIndex:  i,
		}
	}
	return items
}
