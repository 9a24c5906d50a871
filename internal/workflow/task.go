// Package workflow holds the status transition rules for tasks and projects.
//
// Tasks derive progress from status; projects derive status from progress.
package workflow

import (
	"errors"
	"time"

	"github.com/yukikurage/project-dashboard-api/internal/constants"
	"github.com/yukikurage/project-dashboard-api/internal/models"
)

var (
	ErrInvalidTaskStatus   = errors.New("invalid task status")
	ErrInvalidProgress     = errors.New("progress must be between 0 and 100")
	ErrTransitionForbidden = errors.New("task status transition is not allowed")
)

// TaskChange is the set of fields a status transition writes.
type TaskChange struct {
	Status      models.TaskStatus
	Progress    int
	CompletedAt *time.Time
}

// Fields returns the change as a partial-update map for the entity store.
func (c TaskChange) Fields() map[string]interface{} {
	return map[string]interface{}{
		"status":       c.Status,
		"progress":     c.Progress,
		"completed_at": c.CompletedAt,
	}
}

// TaskProgressFor maps a status onto the fixed three-point progress table.
func TaskProgressFor(status models.TaskStatus) int {
	switch status {
	case models.TaskStatusDone:
		return constants.ProgressDone
	case models.TaskStatusInProgress:
		return constants.ProgressInProgress
	default:
		return constants.ProgressTodo
	}
}

// TaskTransition computes the fields written when a task moves to status.
// Only done carries a completion timestamp; leaving done clears it.
func TaskTransition(status models.TaskStatus, now time.Time) (TaskChange, error) {
	if !status.Valid() {
		return TaskChange{}, ErrInvalidTaskStatus
	}

	change := TaskChange{
		Status:   status,
		Progress: TaskProgressFor(status),
	}
	if status == models.TaskStatusDone {
		completedAt := now
		change.CompletedAt = &completedAt
	}

	return change, nil
}

// WithProgress overrides the table progress with an explicit non-zero value.
// A nil or zero progress keeps the table value.
func (c TaskChange) WithProgress(progress *int) (TaskChange, error) {
	if progress == nil || *progress == 0 {
		return c, nil
	}
	if !ValidProgress(*progress) {
		return c, ErrInvalidProgress
	}
	c.Progress = *progress
	return c, nil
}

// ApplyTaskTransition writes a transition onto task in place.
func ApplyTaskTransition(task *models.Task, change TaskChange) {
	task.Status = change.Status
	task.Progress = change.Progress
	task.CompletedAt = change.CompletedAt
}

// TaskConsistent reports whether a task's progress matches its status in the
// three-point table. Generic updates can leave a task inconsistent.
func TaskConsistent(task models.Task) bool {
	return task.Progress == TaskProgressFor(task.Status)
}

// ValidProgress reports whether p is a percentage.
func ValidProgress(p int) bool {
	return p >= constants.ProgressMin && p <= constants.ProgressMax
}
