package repository

import "gorm.io/gorm"

// NewRepositories wires every GORM repository to db.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(db),
		Projects:      NewProjectRepository(db),
		Tasks:         NewTaskRepository(db),
		Messages:      NewMessageRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}
