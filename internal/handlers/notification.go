package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-dashboard-api/internal/dto"
	apierrors "github.com/yukikurage/project-dashboard-api/internal/errors"
	"github.com/yukikurage/project-dashboard-api/internal/logger"
	"github.com/yukikurage/project-dashboard-api/internal/services"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// ListNotifications returns the current user's notifications, newest first.
// ?unread=true limits the list to unread ones.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}

	notifications, err := h.notificationService.List(viewer, c.Query("unread") == "true")
	if err != nil {
		respondNotificationError(c, err)
		return
	}

	unread := 0
	for _, n := range notifications {
		if !n.Read {
			unread++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": dto.ToNotificationDTOs(notifications),
		"unread_count":  unread,
	})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(viewer, id); err != nil {
		respondNotificationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}

	n, err := h.notificationService.MarkAllRead(viewer)
	if err != nil {
		respondNotificationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func respondNotificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotificationNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		logger.Error("notification request failed: %v", err)
		apierrors.InternalError(c, "Internal server error")
	}
}
