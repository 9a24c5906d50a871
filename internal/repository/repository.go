package repository

import (
	"github.com/yukikurage/project-dashboard-api/internal/models"
)

// Update and Delete follow a lenient miss policy: an unknown id is reported
// through the found flag with a nil error, never as a failure.

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// List returns users ordered by id, optionally restricted to one role
	List(role *models.Role) ([]models.User, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID
	FindByID(id uint64) (*models.Project, error)

	// List retrieves projects ordered by id
	List(filter ProjectFilter) ([]models.Project, error)

	// Update merges fields into the project with the given id
	Update(id uint64, fields map[string]interface{}) (bool, error)
}

// ProjectFilter holds filtering options for listing projects
type ProjectFilter struct {
	IDs    []uint64
	Status *models.ProjectStatus
	Search string
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID
	FindByID(id uint64) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update merges fields into the task with the given id
	Update(id uint64, fields map[string]interface{}) (bool, error)

	// Delete soft deletes a task
	Delete(id uint64) (bool, error)
}

// TaskFilter holds filtering options for listing tasks. A nil ProjectIDs
// means every project; an empty non-nil slice matches nothing.
type TaskFilter struct {
	ProjectIDs []uint64
	ProjectID  *uint64
	AssignedTo *uint64
	Status     *models.TaskStatus
	Search     string
	Page       int
	PageSize   int
}

// MessageRepository defines the interface for direct message data access
type MessageRepository interface {
	// Create stores a new message
	Create(message *models.Message) error

	// FindByID finds a message by ID
	FindByID(id uint64) (*models.Message, error)

	// ListForUser returns every message sent or received by userID, oldest first
	ListForUser(userID uint64) ([]models.Message, error)

	// Thread returns the messages between two users, oldest first
	Thread(a, b uint64) ([]models.Message, error)

	// MarkRead sets the read flag on one message
	MarkRead(id uint64) (bool, error)

	// MarkThreadRead marks every message from peer to userID as read
	MarkThreadRead(userID, peer uint64) (int64, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// Create stores a new notification
	Create(n *models.Notification) error

	// CreateOnce stores n unless one with the same user and ref key exists
	CreateOnce(n *models.Notification) (bool, error)

	// ListForUser returns a user's notifications, newest first
	ListForUser(userID uint64, unreadOnly bool) ([]models.Notification, error)

	// MarkRead marks one of the user's notifications as read
	MarkRead(id, userID uint64) (bool, error)

	// MarkAllRead marks every notification of the user as read
	MarkAllRead(userID uint64) (int64, error)
}

// Repositories bundles every repository over one store handle.
type Repositories struct {
	Users         UserRepository
	Projects      ProjectRepository
	Tasks         TaskRepository
	Messages      MessageRepository
	Notifications NotificationRepository
}
