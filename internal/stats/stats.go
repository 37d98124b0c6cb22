// Package stats derives summary figures from the current todo snapshot.
package stats

import (
	"context"
	"math"
	"time"

	"github.com/joescharf/todo/internal/models"
)

// Days is the length of the weekly activity histogram.
const Days = 7

// Source supplies the full todo snapshot.
type Source interface {
	All(ctx context.Context) []models.TodoItem
}

// Aggregator recomputes statistics from its source on every call.
type Aggregator struct {
	src Source
	now func() time.Time
}

// NewAggregator returns an Aggregator over src.
func NewAggregator(src Source) *Aggregator {
	return &Aggregator{src: src, now: time.Now}
}

// WithClock overrides time.Now and returns the aggregator.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Statistics computes a fresh snapshot.
func (a *Aggregator) Statistics(ctx context.Context) models.Statistics {
	return Compute(a.src.All(ctx), a.now())
}

// Compute derives statistics for items as of now.
func Compute(items []models.TodoItem, now time.Time) models.Statistics {
	s := models.Statistics{TotalTasks: len(items)}

	var doneHours float64
	for _, it := range items {
		switch it.Status {
		case models.StatusDone:
			s.CompletedTasks++
			doneHours += it.UpdatedAt.Sub(it.CreatedAt).Hours()
		case models.StatusInProgress:
			s.InProgressTasks++
		default:
			s.TodoTasks++
		}

		switch it.Priority {
		case models.PriorityHigh:
			s.HighPriorityTasks++
		case models.PriorityMedium:
			s.MediumPriorityTasks++
		default:
			s.LowPriorityTasks++
		}

		if it.IsOverdue(now) {
			s.OverdueTasks++
		}
	}

	if s.TotalTasks > 0 {
		s.CompletionRate = round1(100 * float64(s.CompletedTasks) / float64(s.TotalTasks))
	}
	if s.CompletedTasks > 0 {
		s.AverageCompletionTimeHours = round1(doneHours / float64(s.CompletedTasks))
	}
	s.WeeklyActivity = weekly(items, now)
	return s
}

// weekly counts, for each of the last seven UTC days ending today, the
// items created or updated on that day. An item counts once per day.
func weekly(items []models.TodoItem, now time.Time) []models.DayActivity {
	today := models.DateOf(now)
	out := make([]models.DayActivity, Days)
	for i := range out {
		day := today.AddDate(0, 0, i-(Days-1))
		n := 0
		for _, it := range items {
			if models.DateOf(it.CreatedAt).Equal(day) || models.DateOf(it.UpdatedAt).Equal(day) {
				n++
			}
		}
		out[i] = models.DayActivity{Day: day.Format("Mon"), Date: day, Count: n}
	}
	return out
}

// round1 rounds to one decimal, ties to even.
func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}
