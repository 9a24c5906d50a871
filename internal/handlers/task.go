package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-dashboard-api/internal/dto"
	apierrors "github.com/yukikurage/project-dashboard-api/internal/errors"
	"github.com/yukikurage/project-dashboard-api/internal/logger"
	"github.com/yukikurage/project-dashboard-api/internal/models"
	"github.com/yukikurage/project-dashboard-api/internal/services"
	"github.com/yukikurage/project-dashboard-api/internal/utils"
	"github.com/yukikurage/project-dashboard-api/internal/workflow"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks visible to the current user.
// Can filter by project_id, assigned_to, status and q, paginated by page/limit.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}

	projectID, err := optionalUintQuery(c, "project_id")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	assignedTo, err := optionalUintQuery(c, "assigned_to")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	window := utils.PageWindowFromQuery(c)
	input := services.ListTasksInput{
		Search:     strings.TrimSpace(c.Query("q")),
		ProjectID:  projectID,
		AssignedTo: assignedTo,
		Page:       window.Page,
		PageSize:   window.Size,
	}
	if raw := c.Query("status"); raw != "" {
		status := models.TaskStatus(raw)
		input.Status = &status
	}

	tasks, total, err := h.taskService.ListTasks(viewer, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, window, total))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(viewer, id)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task in the todo column
func (h *TaskHandler) CreateTask(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Title       string          `json:"title" binding:"required"`
		Description string          `json:"description"`
		ProjectID   uint64          `json:"project_id" binding:"required"`
		AssignedTo  uint64          `json:"assigned_to" binding:"required"`
		Priority    models.Priority `json:"priority"`
		Deadline    string          `json:"deadline"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	deadline, err := utils.ParseDate(req.Deadline)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.CreateTask(viewer, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   req.ProjectID,
		AssignedTo:  req.AssignedTo,
		Priority:    req.Priority,
		Deadline:    deadline,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update. Only fields present in the body
// change; "deadline": null clears the deadline.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	// Parse raw JSON to detect which fields were sent
	var body patch
	if err := c.ShouldBindJSON(&body); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input, err := taskPatch(body)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.UpdateTask(viewer, id, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

func taskPatch(body patch) (services.UpdateTaskInput, error) {
	var (
		input services.UpdateTaskInput
		err   error
	)
	if input.Title, err = body.str("title"); err != nil {
		return input, err
	}
	if input.Description, err = body.str("description"); err != nil {
		return input, err
	}
	if input.Deadline, input.ClearDeadline, err = body.date("deadline"); err != nil {
		return input, err
	}
	if input.AssignedTo, err = body.id("assigned_to"); err != nil {
		return input, err
	}
	if input.Progress, err = body.num("progress"); err != nil {
		return input, err
	}

	priority, err := body.str("priority")
	if err != nil {
		return input, err
	}
	if priority != nil {
		p := models.Priority(*priority)
		input.Priority = &p
	}

	status, err := body.str("status")
	if err != nil {
		return input, err
	}
	if status != nil {
		s := models.TaskStatus(*status)
		input.Status = &s
	}
	return input, nil
}

// UpdateTaskStatus changes the status. Progress follows the status table unless
// a non-zero progress is supplied.
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	type UpdateStatusRequest struct {
		Status   models.TaskStatus `json:"status" binding:"required"`
		Progress *int              `json:"progress"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTaskStatus(viewer, id, req.Status, req.Progress)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// MoveTask handles a kanban drop from one column to another.
func (h *TaskHandler) MoveTask(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	type MoveTaskRequest struct {
		FromStatus models.TaskStatus `json:"from_status" binding:"required"`
		ToStatus   models.TaskStatus `json:"to_status" binding:"required"`
	}

	var req MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.MoveTask(viewer, id, req.FromStatus, req.ToStatus)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(viewer, id); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// Board returns the kanban columns, optionally for one project.
func (h *TaskHandler) Board(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}

	projectID, err := optionalUintQuery(c, "project_id")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	columns, err := h.taskService.Board(viewer, projectID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"columns": dto.ToBoardDTO(columns)})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTaskAccessDenied),
		errors.Is(err, services.ErrTaskPermissionDenied),
		errors.Is(err, services.ErrRoleForbidden):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, workflow.ErrTransitionForbidden):
		apierrors.InvalidTransition(c, err.Error())
	case errors.Is(err, services.ErrStaleMove):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrInvalidAssignee),
		errors.Is(err, services.ErrInvalidTaskProject),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrNoFieldsToUpdate),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, workflow.ErrInvalidTaskStatus),
		errors.Is(err, workflow.ErrInvalidProgress):
		apierrors.BadRequest(c, err.Error())
	default:
		logger.Error("task request failed: %v", err)
		apierrors.InternalError(c, "Internal server error")
	}
}
