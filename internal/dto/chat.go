package dto

import (
	"time"

	"github.com/yukikurage/project-dashboard-api/internal/membership"
	"github.com/yukikurage/project-dashboard-api/internal/models"
)

// MessageDTO represents a direct message in API responses
type MessageDTO struct {
	ID         uint64    `json:"id"`
	FromUserID uint64    `json:"from_user_id"`
	ToUserID   uint64    `json:"to_user_id"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

// ConversationDTO summarizes the thread with one contact
type ConversationDTO struct {
	Contact     UserDTO     `json:"contact"`
	LastMessage *MessageDTO `json:"last_message"`
	UnreadCount int         `json:"unread_count"`
}

// NotificationDTO represents a notification in API responses
type NotificationDTO struct {
	ID        uint64                  `json:"id"`
	Type      models.NotificationType `json:"type"`
	Message   string                  `json:"message"`
	Timestamp time.Time               `json:"timestamp"`
	Read      bool                    `json:"read"`
}

// ToMessageDTO converts a Message model to MessageDTO
func ToMessageDTO(m models.Message) MessageDTO {
	return MessageDTO{
		ID:         m.ID,
		FromUserID: m.FromUserID,
		ToUserID:   m.ToUserID,
		Message:    m.Body,
		Timestamp:  m.Timestamp,
		Read:       m.Read,
	}
}

// ToMessageDTOs converts a slice of messages
func ToMessageDTOs(messages []models.Message) []MessageDTO {
	items := make([]MessageDTO, len(messages))
	for i, m := range messages {
		items[i] = ToMessageDTO(m)
	}
	return items
}

// ToConversationDTOs converts conversation summaries. Full threads are
// fetched separately, so only the last message is included.
func ToConversationDTOs(conversations []membership.Conversation) []ConversationDTO {
	items := make([]ConversationDTO, len(conversations))
	for i, conv := range conversations {
		items[i] = ConversationDTO{
			Contact:     ToUserDTO(conv.Contact),
			UnreadCount: conv.UnreadCount,
		}
		if conv.LastMessage != nil {
			last := ToMessageDTO(*conv.LastMessage)
			items[i].LastMessage = &last
		}
	}
	return items
}

// ToNotificationDTOs converts a slice of notifications
func ToNotificationDTOs(notifications []models.Notification) []NotificationDTO {
	items := make([]NotificationDTO, len(notifications))
	for i, n := range notifications {
		items[i] = NotificationDTO{
			ID:        n.ID,
			Type:      n.Type,
			Message:   n.Body,
			Timestamp: n.Timestamp,
			Read:      n.Read,
		}
	}
	return items
}
