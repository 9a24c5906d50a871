package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/project-dashboard-api/internal/models"
	"github.com/yukikurage/project-dashboard-api/internal/repository"
)

var (
	ErrRoleForbidden = errors.New("this action is not available for your role")
	ErrInvalidRole   = errors.New("invalid role")
)

// Viewer is the authenticated caller a request acts on behalf of.
type Viewer struct {
	ID   uint64
	Role models.Role
}

// User returns the viewer as the minimal user record the membership resolver needs.
func (v Viewer) User() models.User {
	return models.User{ID: v.ID, Role: v.Role}
}

func (v Viewer) IsAdmin() bool    { return v.Role == models.RoleAdmin }
func (v Viewer) IsTeamLead() bool { return v.Role == models.RoleTeamLead }
func (v Viewer) IsMember() bool   { return v.Role == models.RoleTeamMember }

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

// snapshot is a full read of the collections the resolver joins over.
type snapshot struct {
	users    []models.User
	projects []models.Project
	tasks    []models.Task
}

func loadSnapshot(users repository.UserRepository, projects repository.ProjectRepository, tasks repository.TaskRepository) (*snapshot, error) {
	snap := &snapshot{}
	var err error

	if users != nil {
		if snap.users, err = users.List(nil); err != nil {
			return nil, fmt.Errorf("failed to load users: %w", err)
		}
	}
	if snap.projects, err = projects.List(repository.ProjectFilter{}); err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	if snap.tasks, _, err = tasks.List(repository.TaskFilter{}); err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	return snap, nil
}
