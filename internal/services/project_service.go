package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-dashboard-api/internal/logger"
	"github.com/yukikurage/project-dashboard-api/internal/membership"
	"github.com/yukikurage/project-dashboard-api/internal/models"
	"github.com/yukikurage/project-dashboard-api/internal/repository"
	"github.com/yukikurage/project-dashboard-api/internal/workflow"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectAccessDenied  = errors.New("you do not have access to this project")
	ErrNameRequired         = errors.New("name is required")
	ErrInvalidPriority      = errors.New("invalid priority")
	ErrInvalidProjectStatus = errors.New("invalid project status")
	ErrInvalidTeamLead      = errors.New("team lead must be an existing team_lead user")
	ErrNoFieldsToUpdate     = errors.New("no fields to update")
)

// ProjectService handles project business logic
type ProjectService struct {
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
	userRepo    repository.UserRepository
	notifier    Notifier
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, taskRepo repository.TaskRepository, userRepo repository.UserRepository, notifier Notifier) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

// ListProjectsInput represents filters for listing projects
type ListProjectsInput struct {
	Search string
	Status *models.ProjectStatus
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Name        string
	Description string
	Deadline    *time.Time
	Priority    models.Priority
	TeamLeadID  *uint64
}

// UpdateProjectInput is a generic partial update. Nil fields are left alone.
type UpdateProjectInput struct {
	Name          *string
	Description   *string
	Deadline      *time.Time
	ClearDeadline bool
	Priority      *models.Priority
	Progress      *int
	Status        *models.ProjectStatus
}

// ListProjects returns the projects visible to the viewer.
func (s *ProjectService) ListProjects(viewer Viewer, input ListProjectsInput) ([]models.Project, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidProjectStatus
	}

	filter := repository.ProjectFilter{Search: input.Search, Status: input.Status}
	if !viewer.IsAdmin() {
		ids, err := s.visibleProjectIDs(viewer)
		if err != nil {
			return nil, err
		}
		filter.IDs = ids
	}

	projects, err := s.projectRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectService) visibleProjectIDs(viewer Viewer) ([]uint64, error) {
	snap, err := loadSnapshot(nil, s.projectRepo, s.taskRepo)
	if err != nil {
		return nil, err
	}

	ids := []uint64{}
	for _, p := range membership.VisibleProjects(viewer.User(), snap.projects, snap.tasks) {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// GetProject returns a project the viewer can see.
func (s *ProjectService) GetProject(viewer Viewer, id uint64) (*models.Project, error) {
	project, err := s.findProject(id)
	if err != nil {
		return nil, err
	}

	if !viewer.IsAdmin() {
		ids, err := s.visibleProjectIDs(viewer)
		if err != nil {
			return nil, err
		}
		if !containsID(ids, id) {
			return nil, ErrProjectAccessDenied
		}
	}

	return project, nil
}

func (s *ProjectService) findProject(id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// CreateProject adds a project in the planning state with zero progress.
func (s *ProjectService) CreateProject(viewer Viewer, input CreateProjectInput) (*models.Project, error) {
	if !viewer.IsAdmin() {
		return nil, ErrRoleForbidden
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}

	var lead *models.User
	if input.TeamLeadID != nil {
		var err error
		if lead, err = s.findTeamLead(*input.TeamLeadID); err != nil {
			return nil, err
		}
	}

	project := &models.Project{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Deadline:    input.Deadline,
		Progress:    0,
		Status:      models.ProjectStatusPlanning,
		TeamLeadID:  input.TeamLeadID,
		Priority:    priority,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	if lead != nil {
		notify(s.notifier, lead.ID, models.NotificationProjectUpdate,
			fmt.Sprintf("You are now leading %s", project.Name))
	}

	return project, nil
}

func (s *ProjectService) findTeamLead(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidTeamLead
		}
		return nil, fmt.Errorf("failed to find team lead: %w", err)
	}
	if user.Role != models.RoleTeamLead {
		return nil, ErrInvalidTeamLead
	}
	return user, nil
}

// canManage reports whether the viewer may mutate the project.
func canManage(viewer Viewer, project *models.Project) bool {
	return viewer.IsAdmin() || (viewer.IsTeamLead() && project.LedBy(viewer.ID))
}

// UpdateProject merges the provided fields. Setting progress without status
// leaves status as it was; the mismatch is logged.
func (s *ProjectService) UpdateProject(viewer Viewer, id uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.findProject(id)
	if err != nil {
		return nil, err
	}
	if !canManage(viewer, project) {
		return nil, ErrProjectAccessDenied
	}

	fields := map[string]interface{}{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		fields["name"] = name
	}
	if input.Description != nil {
		fields["description"] = strings.TrimSpace(*input.Description)
	}
	if input.ClearDeadline {
		fields["deadline"] = nil
	} else if input.Deadline != nil {
		fields["deadline"] = input.Deadline
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		fields["priority"] = *input.Priority
	}
	if input.Progress != nil {
		if !workflow.ValidProgress(*input.Progress) {
			return nil, workflow.ErrInvalidProgress
		}
		fields["progress"] = *input.Progress
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidProjectStatus
		}
		fields["status"] = *input.Status
	}
	if len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	updated, err := s.apply(id, fields)
	if err != nil {
		return nil, err
	}

	if updated.Status != workflow.ProjectStatusFor(updated.Progress) {
		logger.Warn("project %d status %s does not match progress %d after generic update",
			updated.ID, updated.Status, updated.Progress)
	}
	return updated, nil
}

// UpdateProgress sets progress and derives status from it. Admins are notified.
func (s *ProjectService) UpdateProgress(viewer Viewer, id uint64, progress int) (*models.Project, error) {
	change, err := workflow.ProjectTransition(progress)
	if err != nil {
		return nil, err
	}

	project, err := s.findProject(id)
	if err != nil {
		return nil, err
	}
	if !canManage(viewer, project) {
		return nil, ErrProjectAccessDenied
	}

	updated, err := s.apply(id, change.Fields())
	if err != nil {
		return nil, err
	}

	notifyRole(s.notifier, models.RoleAdmin, models.NotificationProjectUpdate,
		fmt.Sprintf("%s project is %d%% complete", updated.Name, updated.Progress), viewer.ID)

	return updated, nil
}

// AssignTeamLead sets or clears (nil) a project's team lead.
func (s *ProjectService) AssignTeamLead(viewer Viewer, id uint64, leadID *uint64) (*models.Project, error) {
	if !viewer.IsAdmin() {
		return nil, ErrRoleForbidden
	}

	var lead *models.User
	if leadID != nil {
		var err error
		if lead, err = s.findTeamLead(*leadID); err != nil {
			return nil, err
		}
	}

	updated, err := s.apply(id, map[string]interface{}{"team_lead_id": leadID})
	if err != nil {
		return nil, err
	}

	if lead != nil {
		notify(s.notifier, lead.ID, models.NotificationProjectUpdate,
			fmt.Sprintf("You are now leading %s", updated.Name))
	}
	return updated, nil
}

// apply writes fields and reloads the project. A store miss becomes ErrProjectNotFound.
func (s *ProjectService) apply(id uint64, fields map[string]interface{}) (*models.Project, error) {
	found, err := s.projectRepo.Update(id, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	if !found {
		return nil, ErrProjectNotFound
	}
	return s.findProject(id)
}

func containsID(ids []uint64, id uint64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
