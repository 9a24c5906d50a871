package models

import "time"

type ProjectStatus string

const (
	ProjectStatusPlanning   ProjectStatus = "planning"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusInProgress, ProjectStatusCompleted:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Project.TeamLeadID is a weak reference; the lead may not exist.
type Project struct {
	ID          uint64        `gorm:"primarykey" json:"id"`
	Name        string        `gorm:"type:varchar(255);not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	Deadline    *time.Time    `json:"deadline"`
	Progress    int           `gorm:"not null;default:0" json:"progress"`
	Status      ProjectStatus `gorm:"type:varchar(20);not null;default:'planning'" json:"status"`
	TeamLeadID  *uint64       `gorm:"index" json:"team_lead_id"`
	Priority    Priority      `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// LedBy reports whether userID is the project's team lead.
func (p Project) LedBy(userID uint64) bool {
	return p.TeamLeadID != nil && *p.TeamLeadID == userID
}
