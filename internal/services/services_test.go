package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-dashboard-api/internal/database"
	"github.com/yukikurage/project-dashboard-api/internal/models"
	"github.com/yukikurage/project-dashboard-api/internal/repository"
	"github.com/yukikurage/project-dashboard-api/internal/workflow"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2025, 7, 20, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

var (
	adminViewer   = Viewer{ID: 1, Role: models.RoleAdmin}
	lead1Viewer   = Viewer{ID: 2, Role: models.RoleTeamLead}
	lead2Viewer   = Viewer{ID: 3, Role: models.RoleTeamLead}
	member1Viewer = Viewer{ID: 4, Role: models.RoleTeamMember}
	member2Viewer = Viewer{ID: 5, Role: models.RoleTeamMember}
	member3Viewer = Viewer{ID: 6, Role: models.RoleTeamMember}
)

type serviceTestEnv struct {
	db            *gorm.DB
	repos         *repository.Repositories
	auth          *AuthService
	projects      *ProjectService
	tasks         *TaskService
	chat          *ChatService
	notifications *NotificationService
	dashboard     *DashboardService
}

// setupServiceTestEnv returns services over a freshly seeded in-memory store.
func setupServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.Models()...))
	require.NoError(t, database.AddIndexes(db))
	require.NoError(t, database.Seed(db, bcrypt.MinCost))

	repos := repository.NewRepositories(db)
	notifications := NewNotificationService(repos.Notifications, repos.Users).WithClock(fixedClock)

	return &serviceTestEnv{
		db:            db,
		repos:         repos,
		auth:          NewAuthService(repos.Users, bcrypt.MinCost),
		projects:      NewProjectService(repos.Projects, repos.Tasks, repos.Users, notifications),
		tasks:         NewTaskService(repos.Tasks, repos.Projects, repos.Users, workflow.NewLifecycle(false), notifications).WithClock(fixedClock),
		chat:          NewChatService(repos.Messages, repos.Users, repos.Projects, repos.Tasks).WithClock(fixedClock),
		notifications: notifications,
		dashboard:     NewDashboardService(repos.Users, repos.Projects, repos.Tasks).WithClock(fixedClock),
	}
}

func (env *serviceTestEnv) notificationsFor(t *testing.T, userID uint64) []models.Notification {
	t.Helper()
	list, err := env.repos.Notifications.ListForUser(userID, false)
	require.NoError(t, err)
	return list
}

func ids[T models.Project | models.Task | models.User](items []T) []uint64 {
	out := []uint64{}
	for _, item := range items {
		switch v := any(item).(type) {
		case models.Project:
			out = append(out, v.ID)
		case models.Task:
			out = append(out, v.ID)
		case models.User:
			out = append(out, v.ID)
		}
	}
	return out
}

func ptr[T any](v T) *T { return &v }
