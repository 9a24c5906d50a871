package workflow

import "github.com/yukikurage/project-dashboard-api/internal/models"

// Lifecycle decides which task status changes are permitted.
type Lifecycle interface {
	Allows(from, to models.TaskStatus) bool
}

// Unconstrained permits every transition between valid statuses.
type Unconstrained struct{}

func (Unconstrained) Allows(from, to models.TaskStatus) bool {
	return from.Valid() && to.Valid()
}

// Table permits only the listed (from, to) pairs. Self-transitions are always allowed.
type Table map[models.TaskStatus][]models.TaskStatus

func (t Table) Allows(from, to models.TaskStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StrictTable moves work one column at a time; done can only be reopened to in_progress.
var StrictTable = Table{
	models.TaskStatusTodo:       {models.TaskStatusInProgress},
	models.TaskStatusInProgress: {models.TaskStatusTodo, models.TaskStatusDone},
	models.TaskStatusDone:       {models.TaskStatusInProgress},
}

// NewLifecycle returns StrictTable when strict is set, otherwise Unconstrained.
func NewLifecycle(strict bool) Lifecycle {
	if strict {
		return StrictTable
	}
	return Unconstrained{}
}
