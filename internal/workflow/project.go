package workflow

import (
	"github.com/yukikurage/project-dashboard-api/internal/constants"
	"github.com/yukikurage/project-dashboard-api/internal/models"
)

// ProjectStatusFor derives a project status from its progress.
func ProjectStatusFor(progress int) models.ProjectStatus {
	switch {
	case progress >= constants.ProgressMax:
		return models.ProjectStatusCompleted
	case progress > constants.ProgressMin:
		return models.ProjectStatusInProgress
	default:
		return models.ProjectStatusPlanning
	}
}

// ProjectChange is the set of fields a progress transition writes.
type ProjectChange struct {
	Progress int
	Status   models.ProjectStatus
}

// Fields returns the change as a partial-update map for the entity store.
func (c ProjectChange) Fields() map[string]interface{} {
	return map[string]interface{}{
		"progress": c.Progress,
		"status":   c.Status,
	}
}

// ProjectTransition validates progress and pairs it with its derived status.
func ProjectTransition(progress int) (ProjectChange, error) {
	if !ValidProgress(progress) {
		return ProjectChange{}, ErrInvalidProgress
	}
	return ProjectChange{Progress: progress, Status: ProjectStatusFor(progress)}, nil
}
