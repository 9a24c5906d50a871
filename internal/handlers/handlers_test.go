package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-dashboard-api/internal/constants"
	"github.com/yukikurage/project-dashboard-api/internal/database"
	"github.com/yukikurage/project-dashboard-api/internal/models"
	"github.com/yukikurage/project-dashboard-api/internal/repository"
	"github.com/yukikurage/project-dashboard-api/internal/services"
	"github.com/yukikurage/project-dashboard-api/internal/workflow"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2025, 7, 20, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type handlerTestEnv struct {
	db            *gorm.DB
	repos         *repository.Repositories
	auth          *services.AuthService
	projects      *services.ProjectService
	tasks         *services.TaskService
	chat          *services.ChatService
	notifications *services.NotificationService
	dashboard     *services.DashboardService
}

// openSeededDB returns a fresh in-memory store loaded with the demo fixtures.
func openSeededDB(t *testing.T) *gorm.DB {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(db, bcrypt.MinCost))
	return db
}

func newHandlerTestEnv(db *gorm.DB, strict bool) *handlerTestEnv {
	repos := repository.NewRepositories(db)
	notifications := services.NewNotificationService(repos.Notifications, repos.Users).WithClock(fixedClock)

	return &handlerTestEnv{
		db:            db,
		repos:         repos,
		auth:          services.NewAuthService(repos.Users, bcrypt.MinCost),
		projects:      services.NewProjectService(repos.Projects, repos.Tasks, repos.Users, notifications),
		tasks:         services.NewTaskService(repos.Tasks, repos.Projects, repos.Users, workflow.NewLifecycle(strict), notifications).WithClock(fixedClock),
		chat:          services.NewChatService(repos.Messages, repos.Users, repos.Projects, repos.Tasks).WithClock(fixedClock),
		notifications: notifications,
		dashboard:     services.NewDashboardService(repos.Users, repos.Projects, repos.Tasks).WithClock(fixedClock),
	}
}

func closeDB(t *testing.T, db *gorm.DB) {
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.Close()
}

// createAuthContext builds a test context as RequireAuth would leave it.
func createAuthContext(method, url string, body []byte, userID uint64, role models.Role) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if userID != 0 {
		c.Set(constants.ContextKeyUserID, userID)
		c.Set(constants.ContextKeyUserRole, role)
	}

	return c, w
}

func withParam(c *gin.Context, key, value string) {
	c.Params = append(c.Params, gin.Param{Key: key, Value: value})
}
