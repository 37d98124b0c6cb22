package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/todo/internal/models"
)

var now = time.Date(2026, 3, 11, 15, 30, 0, 0, time.UTC) // a Wednesday

func item(status models.TodoStatus, priority models.TodoPriority, created, updated time.Time) models.TodoItem {
	return models.TodoItem{
		ID:        string(status) + created.String(),
		Status:    status,
		Priority:  priority,
		CreatedAt: created,
		UpdatedAt: updated,
	}
}

type sliceSource []models.TodoItem

func (s sliceSource) All(context.Context) []models.TodoItem { return s }

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil, now)
	assert.Equal(t, 0, s.TotalTasks)
	assert.Equal(t, 0.0, s.CompletionRate)
	assert.Equal(t, 0.0, s.AverageCompletionTimeHours)
	require.Len(t, s.WeeklyActivity, Days)
	for _, d := range s.WeeklyActivity {
		assert.Zero(t, d.Count)
	}
}

func TestCompute_CompletionRateRounds(t *testing.T) {
	items := []models.TodoItem{
		item(models.StatusDone, models.PriorityHigh, now, now),
		item(models.StatusInProgress, models.PriorityMedium, now, now),
		item(models.StatusTodo, models.PriorityLow, now, now),
	}
	s := Compute(items, now)
	assert.Equal(t, 3, s.TotalTasks)
	assert.Equal(t, 33.3, s.CompletionRate)
	assert.Equal(t, 1, s.CompletedTasks)
	assert.Equal(t, 1, s.InProgressTasks)
	assert.Equal(t, 1, s.TodoTasks)
	assert.Equal(t, 1, s.HighPriorityTasks)
	assert.Equal(t, 1, s.MediumPriorityTasks)
	assert.Equal(t, 1, s.LowPriorityTasks)
}

func TestCompute_CompletionRateTiesToEven(t *testing.T) {
	items := []models.TodoItem{item(models.StatusDone, models.PriorityHigh, now, now)}
	for i := 0; i < 15; i++ {
		items = append(items, item(models.StatusTodo, models.PriorityLow, now.Add(time.Duration(i)*time.Second), now))
	}
	s := Compute(items, now)
	assert.Equal(t, 16, s.TotalTasks)
	assert.Equal(t, 6.2, s.CompletionRate)
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 6.2, round1(6.25))
	assert.Equal(t, 0.2, round1(0.25))
	assert.Equal(t, 33.3, round1(100.0/3))
}

func TestCompute_PartitionsAddUp(t *testing.T) {
	items := []models.TodoItem{
		item(models.StatusDone, models.PriorityHigh, now, now),
		item(models.StatusDone, models.PriorityHigh, now, now),
		item(models.StatusTodo, models.PriorityLow, now, now),
		item(models.StatusInProgress, models.PriorityLow, now, now),
		item(models.StatusTodo, models.PriorityMedium, now, now),
	}
	s := Compute(items, now)
	assert.Equal(t, s.TotalTasks, s.CompletedTasks+s.InProgressTasks+s.TodoTasks)
	assert.Equal(t, s.TotalTasks, s.HighPriorityTasks+s.MediumPriorityTasks+s.LowPriorityTasks)
	assert.Equal(t, 40.0, s.CompletionRate)
}

func TestCompute_AverageCompletionTime(t *testing.T) {
	created := now.Add(-48 * time.Hour)
	items := []models.TodoItem{
		item(models.StatusDone, models.PriorityHigh, created, created.Add(10*time.Hour)),
		item(models.StatusDone, models.PriorityHigh, created, created.Add(5*time.Hour+30*time.Minute)),
		// Open items never count toward the average.
		item(models.StatusInProgress, models.PriorityHigh, created, created.Add(100*time.Hour)),
	}
	s := Compute(items, now)
	assert.Equal(t, 7.8, s.AverageCompletionTimeHours) // (10 + 5.5) / 2 = 7.75
}

func TestCompute_Overdue(t *testing.T) {
	yesterday := models.DueOn(now.AddDate(0, 0, -1))
	today := models.DueOn(now)

	overdue := item(models.StatusTodo, models.PriorityLow, now, now)
	overdue.DueDate = yesterday
	doneLate := item(models.StatusDone, models.PriorityLow, now, now)
	doneLate.DueDate = yesterday
	dueToday := item(models.StatusInProgress, models.PriorityLow, now, now)
	dueToday.DueDate = today
	noDue := item(models.StatusTodo, models.PriorityLow, now, now)

	s := Compute([]models.TodoItem{overdue, doneLate, dueToday, noDue}, now)
	assert.Equal(t, 1, s.OverdueTasks)
}

func TestCompute_WeeklyActivity(t *testing.T) {
	day := func(offset int) time.Time { return now.AddDate(0, 0, offset) }
	items := []models.TodoItem{
		item(models.StatusTodo, models.PriorityLow, day(0), day(0)),   // today, counted once
		item(models.StatusTodo, models.PriorityLow, day(-6), day(-1)), // two separate days
		item(models.StatusTodo, models.PriorityLow, day(-7), day(-7)), // outside the window
		item(models.StatusTodo, models.PriorityLow, day(-10), day(0)), // updated today
	}
	s := Compute(items, now)
	require.Len(t, s.WeeklyActivity, Days)

	first, last := s.WeeklyActivity[0], s.WeeklyActivity[Days-1]
	assert.Equal(t, "Thu", first.Day)
	assert.Equal(t, models.DateOf(day(-6)), first.Date)
	assert.Equal(t, "Wed", last.Day)
	assert.Equal(t, models.DateOf(now), last.Date)

	assert.Equal(t, 1, first.Count)
	assert.Equal(t, 2, last.Count)
	assert.Equal(t, 1, s.WeeklyActivity[5].Count)

	m := s.ActivityMap()
	assert.Len(t, m, Days)
	assert.Equal(t, 2, m["Wed"])
	assert.Equal(t, 0, m["Sat"])
}

func TestAggregator_ReadsSourceEachCall(t *testing.T) {
	src := sliceSource{item(models.StatusDone, models.PriorityHigh, now, now)}
	a := NewAggregator(src).WithClock(func() time.Time { return now })

	s := a.Statistics(context.Background())
	assert.Equal(t, 1, s.TotalTasks)
	assert.Equal(t, 100.0, s.CompletionRate)
}
