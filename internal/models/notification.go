package models

import "time"

type NotificationType string

const (
	NotificationProjectUpdate    NotificationType = "project_update"
	NotificationTaskCompleted    NotificationType = "task_completed"
	NotificationTaskAssigned     NotificationType = "task_assigned"
	NotificationDeadlineReminder NotificationType = "deadline_reminder"
)

type Notification struct {
	ID     uint64           `gorm:"primarykey" json:"id"`
	UserID uint64           `gorm:"not null;index" json:"user_id"`
	Type   NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Body   string           `gorm:"column:message;type:text;not null" json:"message"`
	// RefKey deduplicates generated notifications, e.g. "deadline:project:3".
	RefKey    string    `gorm:"type:varchar(100);index" json:"-"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
}
