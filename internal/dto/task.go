package dto

import (
	"time"

	"github.com/yukikurage/project-dashboard-api/internal/models"
	"github.com/yukikurage/project-dashboard-api/internal/services"
	"github.com/yukikurage/project-dashboard-api/internal/utils"
	"github.com/yukikurage/project-dashboard-api/internal/workflow"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	ProjectID   uint64            `json:"project_id"`
	AssignedTo  uint64            `json:"assigned_to"`
	AssignedBy  uint64            `json:"assigned_by"`
	Status      models.TaskStatus `json:"status"`
	Priority    models.Priority   `json:"priority"`
	Deadline    *time.Time        `json:"deadline"`
	Progress    int               `json:"progress"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	CompletedAt *time.Time        `json:"completed_at"`

	// ProgressConsistent is false when progress no longer matches the status table.
	ProgressConsistent bool `json:"progress_consistent"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// BoardColumnDTO is one kanban column in API responses
type BoardColumnDTO struct {
	Status models.TaskStatus `json:"status"`
	Count  int               `json:"count"`
	Tasks  []TaskDTO         `json:"tasks"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:                 task.ID,
		Title:              task.Title,
		Description:        task.Description,
		ProjectID:          task.ProjectID,
		AssignedTo:         task.AssignedTo,
		AssignedBy:         task.AssignedBy,
		Status:             task.Status,
		Priority:           task.Priority,
		Deadline:           task.Deadline,
		Progress:           task.Progress,
		CreatedAt:          task.CreatedAt,
		UpdatedAt:          task.UpdatedAt,
		CompletedAt:        task.CompletedAt,
		ProgressConsistent: workflow.TaskConsistent(task),
	}
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		items[i] = ToTaskDTO(t)
	}
	return items
}

// ToTaskListResponse converts a page of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, window utils.PageWindow, totalCount int64) TaskListResponse {
	return TaskListResponse{
		Tasks:      ToTaskDTOs(tasks),
		Page:       window.Page,
		PageSize:   window.Size,
		TotalCount: totalCount,
		TotalPages: window.TotalPages(totalCount),
	}
}

// ToBoardDTO converts kanban columns
func ToBoardDTO(columns []services.BoardColumn) []BoardColumnDTO {
	items := make([]BoardColumnDTO, len(columns))
	for i, col := range columns {
		items[i] = BoardColumnDTO{
			Status: col.Status,
			Count:  len(col.Tasks),
			Tasks:  ToTaskDTOs(col.Tasks),
		}
	}
	return items
}
