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
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskPermissionDenied = errors.New("user does not have permission to modify this task")
	ErrTaskAccessDenied     = errors.New("you do not have access to this task")
	ErrTitleRequired        = errors.New("title is required")
	ErrInvalidAssignee      = errors.New("assignee must be an existing user")
	ErrInvalidTaskProject   = errors.New("task project does not exist")
	ErrStaleMove            = errors.New("task is no longer in the source column")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	lifecycle   workflow.Lifecycle
	notifier    Notifier
	now         Clock
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository, lifecycle workflow.Lifecycle, notifier Notifier) *TaskService {
	if lifecycle == nil {
		lifecycle = workflow.Unconstrained{}
	}
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		lifecycle:   lifecycle,
		notifier:    notifier,
		now:         time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (s *TaskService) WithClock(now Clock) *TaskService {
	s.now = now
	return s
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Search     string
	ProjectID  *uint64
	AssignedTo *uint64
	Status     *models.TaskStatus
	Page       int
	PageSize   int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	ProjectID   uint64
	AssignedTo  uint64
	Priority    models.Priority
	Deadline    *time.Time
}

// UpdateTaskInput is a generic partial update. Nil fields are left alone.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Priority      *models.Priority
	Deadline      *time.Time
	ClearDeadline bool
	AssignedTo    *uint64
	Progress      *int
	Status        *models.TaskStatus
}

// BoardColumn is one kanban column.
type BoardColumn struct {
	Status models.TaskStatus `json:"status"`
	Tasks  []models.Task     `json:"tasks"`
}

// ListTasks returns the tasks visible to the viewer matching the filters.
func (s *TaskService) ListTasks(viewer Viewer, input ListTasksInput) ([]models.Task, int64, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, 0, workflow.ErrInvalidTaskStatus
	}

	filter := repository.TaskFilter{
		ProjectID:  input.ProjectID,
		AssignedTo: input.AssignedTo,
		Status:     input.Status,
		Search:     input.Search,
		Page:       input.Page,
		PageSize:   input.PageSize,
	}

	switch viewer.Role {
	case models.RoleAdmin:
	case models.RoleTeamLead:
		projects, err := s.projectRepo.List(repository.ProjectFilter{})
		if err != nil {
			return nil, 0, fmt.Errorf("failed to load projects: %w", err)
		}
		filter.ProjectIDs = []uint64{}
		for _, p := range membership.LeadProjects(viewer.ID, projects) {
			filter.ProjectIDs = append(filter.ProjectIDs, p.ID)
		}
	case models.RoleTeamMember:
		if input.AssignedTo != nil && *input.AssignedTo != viewer.ID {
			return []models.Task{}, 0, nil
		}
		filter.AssignedTo = &viewer.ID
	default:
		return nil, 0, ErrInvalidRole
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task the viewer can see.
func (s *TaskService) GetTask(viewer Viewer, id uint64) (*models.Task, error) {
	task, err := s.findTask(id)
	if err != nil {
		return nil, err
	}

	projects, err := s.projectRepo.List(repository.ProjectFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	if !membership.CanSeeTask(viewer.User(), *task, projects) {
		return nil, ErrTaskAccessDenied
	}

	return task, nil
}

func (s *TaskService) findTask(id uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// findProjectOf loads the task's project. A dangling reference yields nil.
func (s *TaskService) findProjectOf(task *models.Task) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(task.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// canManageTask: admins, and the lead of the task's project.
func (s *TaskService) canManageTask(viewer Viewer, task *models.Task) (bool, error) {
	if viewer.IsAdmin() {
		return true, nil
	}
	if !viewer.IsTeamLead() {
		return false, nil
	}
	project, err := s.findProjectOf(task)
	if err != nil {
		return false, err
	}
	return project != nil && project.LedBy(viewer.ID), nil
}

// canWorkOn additionally lets the assignee change their own task.
func (s *TaskService) canWorkOn(viewer Viewer, task *models.Task) (bool, error) {
	if task.AssignedTo == viewer.ID {
		return true, nil
	}
	return s.canManageTask(viewer, task)
}

// CreateTask adds a todo task with zero progress and notifies the assignee.
func (s *TaskService) CreateTask(viewer Viewer, input CreateTaskInput) (*models.Task, error) {
	if viewer.IsMember() {
		return nil, ErrRoleForbidden
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}

	project, err := s.projectRepo.FindByID(input.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidTaskProject
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if viewer.IsTeamLead() && !project.LedBy(viewer.ID) {
		return nil, ErrTaskPermissionDenied
	}

	if _, err := s.findAssignee(input.AssignedTo); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		ProjectID:   project.ID,
		AssignedTo:  input.AssignedTo,
		AssignedBy:  viewer.ID,
		Status:      models.TaskStatusTodo,
		Priority:    priority,
		Deadline:    input.Deadline,
		Progress:    workflow.TaskProgressFor(models.TaskStatusTodo),
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if task.AssignedTo != viewer.ID {
		notify(s.notifier, task.AssignedTo, models.NotificationTaskAssigned,
			fmt.Sprintf("You were assigned %q in %s", task.Title, project.Name))
	}

	return task, nil
}

func (s *TaskService) findAssignee(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidAssignee
		}
		return nil, fmt.Errorf("failed to find assignee: %w", err)
	}
	return user, nil
}

// UpdateTask merges the provided fields without applying the status table, so
// progress and status may disagree afterwards. Status changes still go through
// the lifecycle policy.
func (s *TaskService) UpdateTask(viewer Viewer, id uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findTask(id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.canWorkOn(viewer, task)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrTaskPermissionDenied
	}

	fields := map[string]interface{}{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		fields["title"] = title
	}
	if input.Description != nil {
		fields["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		fields["priority"] = *input.Priority
	}
	if input.ClearDeadline {
		fields["deadline"] = nil
	} else if input.Deadline != nil {
		fields["deadline"] = input.Deadline
	}
	if input.AssignedTo != nil {
		if _, err := s.findAssignee(*input.AssignedTo); err != nil {
			return nil, err
		}
		fields["assigned_to"] = *input.AssignedTo
	}
	if input.Progress != nil {
		if !workflow.ValidProgress(*input.Progress) {
			return nil, workflow.ErrInvalidProgress
		}
		fields["progress"] = *input.Progress
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, workflow.ErrInvalidTaskStatus
		}
		if !s.lifecycle.Allows(task.Status, *input.Status) {
			return nil, workflow.ErrTransitionForbidden
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

	if !workflow.TaskConsistent(*updated) {
		logger.Warn("task %d progress %d does not match status %s after generic update",
			updated.ID, updated.Progress, updated.Status)
	}
	return updated, nil
}

// UpdateTaskStatus moves a task to status and applies the progress table.
func (s *TaskService) UpdateTaskStatus(viewer Viewer, id uint64, status models.TaskStatus, progress *int) (*models.Task, error) {
	if !status.Valid() {
		return nil, workflow.ErrInvalidTaskStatus
	}
	if progress != nil && !workflow.ValidProgress(*progress) {
		return nil, workflow.ErrInvalidProgress
	}

	task, err := s.findTask(id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.canWorkOn(viewer, task)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrTaskPermissionDenied
	}

	return s.transition(viewer, task, status, progress)
}

func (s *TaskService) transition(viewer Viewer, task *models.Task, status models.TaskStatus, progress *int) (*models.Task, error) {
	if !s.lifecycle.Allows(task.Status, status) {
		return nil, workflow.ErrTransitionForbidden
	}

	change, err := workflow.TaskTransition(status, s.now())
	if err != nil {
		return nil, err
	}
	if change, err = change.WithProgress(progress); err != nil {
		return nil, err
	}

	updated, err := s.apply(task.ID, change.Fields())
	if err != nil {
		return nil, err
	}

	if status == models.TaskStatusDone && task.Status != models.TaskStatusDone && updated.AssignedBy != viewer.ID {
		s.notifyCompleted(updated)
	}
	return updated, nil
}

func (s *TaskService) notifyCompleted(task *models.Task) {
	name := fmt.Sprintf("User %d", task.AssignedTo)
	if assignee, err := s.userRepo.FindByID(task.AssignedTo); err == nil {
		name = assignee.Name
	}
	notify(s.notifier, task.AssignedBy, models.NotificationTaskCompleted,
		fmt.Sprintf("%s completed %q", name, task.Title))
}

// MoveTask is the kanban drop. Dropping into the source column changes
// nothing; otherwise the task transitions to the target column's status.
func (s *TaskService) MoveTask(viewer Viewer, id uint64, from, to models.TaskStatus) (*models.Task, error) {
	if !from.Valid() || !to.Valid() {
		return nil, workflow.ErrInvalidTaskStatus
	}

	task, err := s.findTask(id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.canWorkOn(viewer, task)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrTaskPermissionDenied
	}

	if from == to {
		return task, nil
	}
	if task.Status != from {
		return nil, ErrStaleMove
	}

	return s.transition(viewer, task, to, nil)
}

// DeleteTask removes a task. References to it elsewhere are left in place.
func (s *TaskService) DeleteTask(viewer Viewer, id uint64) error {
	task, err := s.findTask(id)
	if err != nil {
		return err
	}

	allowed, err := s.canManageTask(viewer, task)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrTaskPermissionDenied
	}

	found, err := s.taskRepo.Delete(id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if !found {
		return ErrTaskNotFound
	}
	return nil
}

// Board groups the viewer's visible tasks into kanban columns, optionally for one project.
func (s *TaskService) Board(viewer Viewer, projectID *uint64) ([]BoardColumn, error) {
	tasks, _, err := s.ListTasks(viewer, ListTasksInput{ProjectID: projectID})
	if err != nil {
		return nil, err
	}

	columns := make([]BoardColumn, len(models.TaskStatuses))
	index := map[models.TaskStatus]int{}
	for i, status := range models.TaskStatuses {
		columns[i] = BoardColumn{Status: status, Tasks: []models.Task{}}
		index[status] = i
	}
	for _, t := range tasks {
		if i, ok := index[t.Status]; ok {
			columns[i].Tasks = append(columns[i].Tasks, t)
		}
	}
	return columns, nil
}

func (s *TaskService) apply(id uint64, fields map[string]interface{}) (*models.Task, error) {
	found, err := s.taskRepo.Update(id, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if !found {
		return nil, ErrTaskNotFound
	}
	return s.findTask(id)
}
