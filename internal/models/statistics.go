package models

import "time"

// DayActivity is one bucket of the weekly activity histogram.
type DayActivity struct {
	Day   string    `json:"day"` // 3-letter day name, e.g. "Mon"
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// Statistics is computed on demand from the current todo snapshot.
type Statistics struct {
	TotalTasks                 int           `json:"totalTasks"`
	CompletedTasks             int           `json:"completedTasks"`
	InProgressTasks            int           `json:"inProgressTasks"`
	TodoTasks                  int           `json:"todoTasks"`
	OverdueTasks               int           `json:"overdueTasks"`
	CompletionRate             float64       `json:"completionRate"`
	AverageCompletionTimeHours float64       `json:"averageCompletionTimeHours"`
	HighPriorityTasks          int           `json:"highPriorityTasks"`
	MediumPriorityTasks        int           `json:"mediumPriorityTasks"`
	LowPriorityTasks           int           `json:"lowPriorityTasks"`
	WeeklyActivity             []DayActivity `json:"weeklyActivity"` // oldest first, today last
}

// ActivityMap returns the weekly histogram keyed by day name.
func (s Statistics) ActivityMap() map[string]int {
	m := make(map[string]int, len(s.WeeklyActivity))
	for _, d := range s.WeeklyActivity {
		m[d.Day] = d.Count
	}
	return m
}
