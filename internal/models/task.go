package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// TaskStatuses lists the kanban columns in board order.
var TaskStatuses = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}

// Task references its project and users by id only.
type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	ProjectID   uint64         `gorm:"not null;index" json:"project_id"`
	AssignedTo  uint64         `gorm:"not null;index" json:"assigned_to"`
	AssignedBy  uint64         `gorm:"not null" json:"assigned_by"`
	Status      TaskStatus     `gorm:"type:varchar(20);not null;default:'todo';index" json:"status"`
	Priority    Priority       `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	Deadline    *time.Time     `json:"deadline"`
	Progress    int            `gorm:"not null;default:0" json:"progress"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	CompletedAt *time.Time     `json:"completed_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
