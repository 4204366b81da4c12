package tasks

import (
	"time"

	domain "github.com/example/taskboard/domain/task"
)

// monthlyWindow is the number of calendar months covered by the
// monthly-completion series, ending with the current month.
const monthlyWindow = 6

// Summarize computes summary statistics over a task set at the given
// instant. It is a pure function of its inputs; callers pass the acting
// user's full visible set.
func Summarize(tasks []*domain.Task, now time.Time) StatsResponse {
	stats := StatsResponse{
		StatusDistribution:   make(map[string]int),
		PriorityDistribution: make(map[string]int),
		TotalTasks:           len(tasks),
	}

	for _, t := range tasks {
		stats.StatusDistribution[string(t.Status)]++
		stats.PriorityDistribution[string(t.Priority)]++
		if t.Status == domain.StatusCompleted {
			stats.CompletedTasks++
		}
		if t.IsOverdue(now) {
			stats.OverdueTasks++
		}
	}

	stats.MonthlyCompletion = monthlyCompletion(tasks, now)
	return stats
}

// monthlyCompletion counts completions per calendar month for the window
// ending with now's month, oldest month first. Month boundaries are real
// calendar boundaries: the window for March is [Mar 1, Apr 1), whatever the
// month's length. AddDate on the first of the month cannot overflow into a
// neighboring month, so each start is exact.
func monthlyCompletion(tasks []*domain.Task, now time.Time) []MonthlyCompletion {
	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	months := make([]MonthlyCompletion, 0, monthlyWindow)
	for i := monthlyWindow - 1; i >= 0; i-- {
		start := currentMonth.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)

		completed := 0
		for _, t := range tasks {
			if t.CompletedAt == nil {
				continue
			}
			if !t.CompletedAt.Before(start) && t.CompletedAt.Before(end) {
				completed++
			}
		}

		months = append(months, MonthlyCompletion{
			Month:     start.Format("Jan 2006"),
			Completed: completed,
		})
	}
	return months
}
