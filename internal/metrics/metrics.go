// Package metrics computes dashboard aggregates from flat entity collections.
//
// Every function is pure: results are recomputed from the inputs on each call
// and empty inputs produce zeros, never NaN.
package metrics

import (
	"math"
	"time"

	"github.com/yukikurage/project-dashboard-api/internal/models"
)

// Percent returns round(part/total*100), or 0 when total is 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// Ratio returns round(part/total), or 0 when total is 0.
func Ratio(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total)))
}

// RoundedMean returns the rounded arithmetic mean of values, or 0 when empty.
func RoundedMean(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return int(math.Round(float64(sum) / float64(len(values))))
}

// CompletionRate is the share of done tasks as a rounded percentage.
func CompletionRate(tasks []models.Task) int {
	return Percent(CountByStatus(tasks)[models.TaskStatusDone], len(tasks))
}

// AverageTaskProgress is the rounded mean task progress.
func AverageTaskProgress(tasks []models.Task) int {
	values := make([]int, len(tasks))
	for i, t := range tasks {
		values[i] = t.Progress
	}
	return RoundedMean(values)
}

// AverageProjectProgress is the rounded mean project progress.
func AverageProjectProgress(projects []models.Project) int {
	values := make([]int, len(projects))
	for i, p := range projects {
		values[i] = p.Progress
	}
	return RoundedMean(values)
}

// StatusCounts holds one entry per kanban column.
type StatusCounts map[models.TaskStatus]int

// CountByStatus counts tasks per status. Every known status is present.
func CountByStatus(tasks []models.Task) StatusCounts {
	counts := StatusCounts{}
	for _, s := range models.TaskStatuses {
		counts[s] = 0
	}
	for _, t := range tasks {
		counts[t.Status]++
	}
	return counts
}

// ProjectStatusCounts counts projects per status.
func ProjectStatusCounts(projects []models.Project) map[models.ProjectStatus]int {
	counts := map[models.ProjectStatus]int{
		models.ProjectStatusPlanning:   0,
		models.ProjectStatusInProgress: 0,
		models.ProjectStatusCompleted:  0,
	}
	for _, p := range projects {
		counts[p.Status]++
	}
	return counts
}

// Overdue reports whether a task is past its deadline and not done.
func Overdue(task models.Task, now time.Time) bool {
	return task.Deadline != nil && task.Deadline.Before(now) && task.Status != models.TaskStatusDone
}

// OverdueTasks returns the tasks for which Overdue holds at now.
func OverdueTasks(tasks []models.Task, now time.Time) []models.Task {
	out := []models.Task{}
	for _, t := range tasks {
		if Overdue(t, now) {
			out = append(out, t)
		}
	}
	return out
}

// PriorityCount is the task tally for one priority level.
type PriorityCount struct {
	Priority       models.Priority `json:"priority"`
	Total          int             `json:"total"`
	Completed      int             `json:"completed"`
	CompletionRate int             `json:"completion_rate"`
}

// PriorityBreakdown tallies tasks by priority, highest first.
func PriorityBreakdown(tasks []models.Task) []PriorityCount {
	order := []models.Priority{models.PriorityHigh, models.PriorityMedium, models.PriorityLow}
	index := make(map[models.Priority]int, len(order))
	out := make([]PriorityCount, len(order))
	for i, p := range order {
		index[p] = i
		out[i] = PriorityCount{Priority: p}
	}

	for _, t := range tasks {
		i, ok := index[t.Priority]
		if !ok {
			continue
		}
		out[i].Total++
		if t.Status == models.TaskStatusDone {
			out[i].Completed++
		}
	}
	for i := range out {
		out[i].CompletionRate = Percent(out[i].Completed, out[i].Total)
	}
	return out
}
