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

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// ListProjects returns the projects visible to the current user.
// Supports ?q= (name/description search) and ?status=.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}

	input := services.ListProjectsInput{Search: strings.TrimSpace(c.Query("q"))}
	if raw := c.Query("status"); raw != "" {
		status := models.ProjectStatus(raw)
		input.Status = &status
	}

	projects, err := h.projectService.ListProjects(viewer, input)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": dto.ToProjectDTOs(projects)})
}

// GetProject returns a single project
func (h *ProjectHandler) GetProject(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(viewer, id)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// CreateProject creates a project in the planning state
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}

	type CreateProjectRequest struct {
		Name        string          `json:"name" binding:"required"`
		Description string          `json:"description"`
		Deadline    string          `json:"deadline"`
		Priority    models.Priority `json:"priority"`
		TeamLeadID  *uint64         `json:"team_lead_id"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	deadline, err := utils.ParseDate(req.Deadline)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.CreateProject(viewer, services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Deadline:    deadline,
		Priority:    req.Priority,
		TeamLeadID:  req.TeamLeadID,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// UpdateProject applies a partial update. Only fields present in the body
// change; "deadline": null clears the deadline.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var body patch
	if err := c.ShouldBindJSON(&body); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input, err := projectPatch(body)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.UpdateProject(viewer, id, input)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

func projectPatch(body patch) (services.UpdateProjectInput, error) {
	var (
		input services.UpdateProjectInput
		err   error
	)
	if input.Name, err = body.str("name"); err != nil {
		return input, err
	}
	if input.Description, err = body.str("description"); err != nil {
		return input, err
	}
	if input.Deadline, input.ClearDeadline, err = body.date("deadline"); err != nil {
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
		s := models.ProjectStatus(*status)
		input.Status = &s
	}
	return input, nil
}

// UpdateProgress sets progress and derives the project status from it.
func (h *ProjectHandler) UpdateProgress(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	type UpdateProgressRequest struct {
		Progress *int `json:"progress" binding:"required"`
	}

	var req UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.UpdateProgress(viewer, id, *req.Progress)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// AssignTeamLead sets the project's lead. A null team_lead_id clears it.
func (h *ProjectHandler) AssignTeamLead(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	type AssignLeadRequest struct {
		TeamLeadID *uint64 `json:"team_lead_id"`
	}

	var req AssignLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.AssignTeamLead(viewer, id, req.TeamLeadID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrProjectAccessDenied),
		errors.Is(err, services.ErrRoleForbidden):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidProjectStatus),
		errors.Is(err, services.ErrInvalidTeamLead),
		errors.Is(err, services.ErrNoFieldsToUpdate),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, workflow.ErrInvalidProgress):
		apierrors.BadRequest(c, err.Error())
	default:
		logger.Error("project request failed: %v", err)
		apierrors.InternalError(c, "Internal server error")
	}
}
