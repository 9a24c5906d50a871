package router

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-dashboard-api/internal/config"
	"github.com/yukikurage/project-dashboard-api/internal/constants"
	"github.com/yukikurage/project-dashboard-api/internal/handlers"
	"github.com/yukikurage/project-dashboard-api/internal/middleware"
	"github.com/yukikurage/project-dashboard-api/internal/models"
	"github.com/yukikurage/project-dashboard-api/internal/services"
	"gorm.io/gorm"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth          *services.AuthService
	Projects      *services.ProjectService
	Tasks         *services.TaskService
	Chat          *services.ChatService
	Notifications *services.NotificationService
	Dashboard     *services.DashboardService
}

// NewSessionStore builds the cookie or Redis session store, per session.store.
func NewSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch cfg.Session.Store {
	case "redis":
		rs, err := redisStore.NewStore(
			cfg.Redis.PoolSize,
			"tcp",
			cfg.RedisAddr(),
			"",
			cfg.Redis.Password,
			[]byte(cfg.Session.Secret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		store = rs
	default:
		store = cookie.NewStore([]byte(cfg.Session.Secret))
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

// Setup wires middleware and routes.
func Setup(db *gorm.DB, svc Services, store sessions.Store) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger())
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	authHandler := handlers.NewAuthHandler(svc.Auth)
	projectHandler := handlers.NewProjectHandler(svc.Projects)
	taskHandler := handlers.NewTaskHandler(svc.Tasks)
	chatHandler := handlers.NewChatHandler(svc.Chat)
	notificationHandler := handlers.NewNotificationHandler(svc.Notifications)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)
	healthHandler := handlers.NewHealthHandler(db)

	adminOnly := middleware.RequireRole(models.RoleAdmin)
	leadsOnly := middleware.RequireRole(models.RoleTeamLead)
	managers := middleware.RequireRole(models.RoleAdmin, models.RoleTeamLead)

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		protected := api.Group("")
		protected.Use(middleware.RequireAuth())

		protected.GET("/users", authHandler.ListUsers)

		projects := protected.Group("/projects")
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", adminOnly, projectHandler.CreateProject)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PATCH("/:id", managers, projectHandler.UpdateProject)
			projects.PUT("/:id/progress", managers, projectHandler.UpdateProgress)
			projects.PUT("/:id/lead", adminOnly, projectHandler.AssignTeamLead)
		}

		tasks := protected.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", managers, taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.PUT("/:id/status", taskHandler.UpdateTaskStatus)
			tasks.POST("/:id/move", taskHandler.MoveTask)
			tasks.DELETE("/:id", managers, taskHandler.DeleteTask)
		}
		protected.GET("/board", taskHandler.Board)

		chat := protected.Group("/chat")
		{
			chat.GET("/contacts", chatHandler.Contacts)
			chat.GET("/conversations", chatHandler.Conversations)
			chat.GET("/messages/:peer_id", chatHandler.ListMessages)
			chat.POST("/messages", chatHandler.SendMessage)
			chat.POST("/messages/:peer_id/read", chatHandler.MarkThreadRead)
		}
		protected.PUT("/messages/:id/read", chatHandler.MarkRead)

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
			notifications.POST("/read-all", notificationHandler.MarkAllRead)
		}

		protected.GET("/dashboard", dashboardHandler.Overview)
		reports := protected.Group("/reports")
		{
			reports.GET("/team-leads", adminOnly, dashboardHandler.TeamLeadReport)
			reports.GET("/team", leadsOnly, dashboardHandler.TeamReport)
			reports.GET("/me", middleware.RequireRole(models.RoleTeamMember), dashboardHandler.MyReport)
			reports.GET("/members/:id", dashboardHandler.MemberReport)
		}
	}

	return r
}
