package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-dashboard-api/internal/dto"
	"github.com/yukikurage/project-dashboard-api/internal/models"
)

func setupChatHandlers(t *testing.T) (*ChatHandler, *NotificationHandler) {
	t.Helper()
	db := openSeededDB(t)
	t.Cleanup(func() { closeDB(t, db) })
	env := newHandlerTestEnv(db, false)
	return NewChatHandler(env.chat), NewNotificationHandler(env.notifications)
}

func TestChatHandler_SendMessage(t *testing.T) {
	handler, _ := setupChatHandlers(t)

	body, _ := json.Marshal(map[string]interface{}{"to_user_id": 2, "message": "  Login screen is merged  "})
	c, w := createAuthContext("POST", "/api/chat/messages", body, 4, models.RoleTeamMember)

	handler.SendMessage(c)

	require.Equal(t, http.StatusCreated, w.Code)
	var msg dto.MessageDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
	assert.Equal(t, "Login screen is merged", msg.Message)
	assert.Equal(t, uint64(4), msg.FromUserID)
	assert.False(t, msg.Read)
}

func TestChatHandler_SendMessage_Errors(t *testing.T) {
	handler, _ := setupChatHandlers(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"empty text", `{"to_user_id":2,"message":"   "}`, http.StatusBadRequest},
		{"to self", `{"to_user_id":4,"message":"hi me"}`, http.StatusBadRequest},
		{"unknown recipient", `{"to_user_id":99,"message":"hello?"}`, http.StatusNotFound},
		{"missing recipient", `{"message":"hello"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := createAuthContext("POST", "/api/chat/messages", []byte(tt.body), 4, models.RoleTeamMember)

			handler.SendMessage(c)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestChatHandler_ListMessages(t *testing.T) {
	handler, _ := setupChatHandlers(t)

	c, w := createAuthContext("GET", "/api/chat/messages/4", nil, 2, models.RoleTeamLead)
	withParam(c, "peer_id", "4")

	handler.ListMessages(c)

	require.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Messages []dto.MessageDTO `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Messages, 2)
	assert.Equal(t, uint64(1), response.Messages[0].ID)
	assert.Equal(t, uint64(2), response.Messages[1].ID)
}

func TestChatHandler_MarkThreadRead(t *testing.T) {
	handler, _ := setupChatHandlers(t)

	c, w := createAuthContext("POST", "/api/chat/messages/3/read", nil, 6, models.RoleTeamMember)
	withParam(c, "peer_id", "3")

	handler.MarkThreadRead(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"updated":1}`, w.Body.String())
}

func TestChatHandler_MarkRead_NotReceiver(t *testing.T) {
	handler, _ := setupChatHandlers(t)

	c, w := createAuthContext("PUT", "/api/messages/3/read", nil, 3, models.RoleTeamLead)
	withParam(c, "id", "3")

	handler.MarkRead(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestChatHandler_Conversations(t *testing.T) {
	handler, _ := setupChatHandlers(t)

	c, w := createAuthContext("GET", "/api/chat/conversations", nil, 6, models.RoleTeamMember)

	handler.Conversations(c)

	require.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Conversations []dto.ConversationDTO `json:"conversations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	var withLead *dto.ConversationDTO
	for i := range response.Conversations {
		if response.Conversations[i].Contact.ID == 3 {
			withLead = &response.Conversations[i]
		}
	}
	require.NotNil(t, withLead)
	assert.Equal(t, 1, withLead.UnreadCount)
	require.NotNil(t, withLead.LastMessage)
	assert.Equal(t, uint64(3), withLead.LastMessage.ID)
}

func TestNotificationHandler_ListAndMarkAllRead(t *testing.T) {
	_, handler := setupChatHandlers(t)

	c, w := createAuthContext("GET", "/api/notifications", nil, 1, models.RoleAdmin)
	handler.ListNotifications(c)

	require.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Notifications []dto.NotificationDTO `json:"notifications"`
		UnreadCount   int                   `json:"unread_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Notifications, 1)
	assert.Equal(t, 1, response.UnreadCount)

	c, w = createAuthContext("POST", "/api/notifications/read-all", nil, 1, models.RoleAdmin)
	handler.MarkAllRead(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"updated":1}`, w.Body.String())

	c, w = createAuthContext("GET", "/api/notifications?unread=true", nil, 1, models.RoleAdmin)
	handler.ListNotifications(c)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Empty(t, response.Notifications)
}

func TestNotificationHandler_MarkRead_OtherUsersNotification(t *testing.T) {
	_, handler := setupChatHandlers(t)

	// Notification 3 belongs to user 3.
	c, w := createAuthContext("PUT", "/api/notifications/3/read", nil, 1, models.RoleAdmin)
	withParam(c, "id", "3")

	handler.MarkRead(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
