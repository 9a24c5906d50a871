package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/project-dashboard-api/internal/errors"
	"github.com/yukikurage/project-dashboard-api/internal/logger"
	"github.com/yukikurage/project-dashboard-api/internal/services"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// Overview returns the dashboard for the current user's role.
func (h *DashboardHandler) Overview(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.Overview(viewer)
	if err != nil {
		respondDashboardError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// TeamLeadReport returns one rollup per team lead. Admin only.
func (h *DashboardHandler) TeamLeadReport(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}

	rollups, err := h.dashboardService.TeamLeadReport(viewer)
	if err != nil {
		respondDashboardError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"team_leads": rollups})
}

// TeamReport returns the current lead's team performance.
func (h *DashboardHandler) TeamReport(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}

	report, err := h.dashboardService.TeamReport(viewer)
	if err != nil {
		respondDashboardError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// MyReport returns the current user's personal report.
func (h *DashboardHandler) MyReport(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}
	h.memberReport(c, viewer, viewer.ID)
}

// MemberReport returns the report for :id, which must be visible to the caller.
func (h *DashboardHandler) MemberReport(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	h.memberReport(c, viewer, id)
}

func (h *DashboardHandler) memberReport(c *gin.Context, viewer services.Viewer, memberID uint64) {
	report, err := h.dashboardService.MemberReport(viewer, memberID)
	if err != nil {
		respondDashboardError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func respondDashboardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrRoleForbidden),
		errors.Is(err, services.ErrMemberNotVisible):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidRole):
		apierrors.BadRequest(c, err.Error())
	default:
		logger.Error("dashboard request failed: %v", err)
		apierrors.InternalError(c, "Internal server error")
	}
}
