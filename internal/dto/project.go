package dto

import (
	"time"

	"github.com/yukikurage/project-dashboard-api/internal/models"
	"github.com/yukikurage/project-dashboard-api/internal/workflow"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Deadline    *time.Time           `json:"deadline"`
	Progress    int                  `json:"progress"`
	Status      models.ProjectStatus `json:"status"`
	TeamLeadID  *uint64              `json:"team_lead_id"`
	Priority    models.Priority      `json:"priority"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`

	// StatusConsistent is false when a generic update left status out of step with progress.
	StatusConsistent bool `json:"status_consistent"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:               project.ID,
		Name:             project.Name,
		Description:      project.Description,
		Deadline:         project.Deadline,
		Progress:         project.Progress,
		Status:           project.Status,
		TeamLeadID:       project.TeamLeadID,
		Priority:         project.Priority,
		CreatedAt:        project.CreatedAt,
		UpdatedAt:        project.UpdatedAt,
		StatusConsistent: workflow.ProjectStatusFor(project.Progress) == project.Status,
	}
}

// ToProjectDTOs converts a slice of projects
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	items := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		items[i] = ToProjectDTO(p)
	}
	return items
}
