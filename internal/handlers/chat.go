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

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// Contacts lists the users suggested for the current user's role.
func (h *ChatHandler) Contacts(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}

	contacts, err := h.chatService.Contacts(viewer)
	if err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contacts": dto.ToUserDTOs(contacts)})
}

// Conversations lists one summary per contact with the last message and unread count.
func (h *ChatHandler) Conversations(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}

	conversations, err := h.chatService.Conversations(viewer)
	if err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": dto.ToConversationDTOs(conversations)})
}

// ListMessages returns the thread with :peer_id, oldest first.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}
	peer, ok := idParam(c, "peer_id")
	if !ok {
		return
	}

	messages, err := h.chatService.ListMessages(viewer, peer)
	if err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": dto.ToMessageDTOs(messages)})
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}

	type SendMessageRequest struct {
		ToUserID uint64 `json:"to_user_id" binding:"required"`
		Message  string `json:"message"`
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	message, err := h.chatService.SendMessage(viewer, services.SendMessageInput{
		ToUserID: req.ToUserID,
		Body:     req.Message,
	})
	if err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMessageDTO(*message))
}

// MarkThreadRead marks every message from :peer_id to the current user as read.
func (h *ChatHandler) MarkThreadRead(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}
	peer, ok := idParam(c, "peer_id")
	if !ok {
		return
	}

	n, err := h.chatService.MarkThreadRead(viewer, peer)
	if err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": n})
}

// MarkRead marks a single received message as read.
func (h *ChatHandler) MarkRead(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.chatService.MarkRead(viewer, id); err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message marked as read"})
}

func respondChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, services.ErrMessageToSelf):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrRecipientNotFound),
		errors.Is(err, services.ErrMessageNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotMessageReceiver):
		apierrors.Forbidden(c, err.Error())
	default:
		logger.Error("chat request failed: %v", err)
		apierrors.InternalError(c, "Internal server error")
	}
}
