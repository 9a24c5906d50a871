package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-dashboard-api/internal/config"
	"github.com/yukikurage/project-dashboard-api/internal/database"
	"github.com/yukikurage/project-dashboard-api/internal/logger"
	"github.com/yukikurage/project-dashboard-api/internal/repository"
	"github.com/yukikurage/project-dashboard-api/internal/router"
	"github.com/yukikurage/project-dashboard-api/internal/scheduler"
	"github.com/yukikurage/project-dashboard-api/internal/services"
	"github.com/yukikurage/project-dashboard-api/internal/workflow"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	if err := logger.Setup(cfg.Log.Level, cfg.Log.Output, cfg.Log.File); err != nil {
		logger.Fatal("Failed to set up logger: %v", err)
	}
	defer logger.Sync()

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Open the in-memory store, migrate and seed
	db, err := database.Open(cfg.Store, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("Failed to open store: %v", err)
	}

	repos := repository.NewRepositories(db)
	notifications := services.NewNotificationService(repos.Notifications, repos.Users)
	svc := router.Services{
		Auth:          services.NewAuthService(repos.Users, cfg.Auth.BcryptCost),
		Projects:      services.NewProjectService(repos.Projects, repos.Tasks, repos.Users, notifications),
		Tasks:         services.NewTaskService(repos.Tasks, repos.Projects, repos.Users, workflow.NewLifecycle(cfg.Workflow.StrictLifecycle), notifications),
		Chat:          services.NewChatService(repos.Messages, repos.Users, repos.Projects, repos.Tasks),
		Notifications: notifications,
		Dashboard:     services.NewDashboardService(repos.Users, repos.Projects, repos.Tasks),
	}

	store, err := router.NewSessionStore(cfg)
	if err != nil {
		logger.Fatal("Failed to create session store: %v", err)
	}
	r := router.Setup(db, svc, store)

	// Start scheduled jobs
	var jobs *scheduler.Manager
	if cfg.Scheduler.Enabled {
		jobs, err = scheduler.NewManager()
		if err != nil {
			logger.Fatal("Failed to create scheduler: %v", err)
		}
		reminders := scheduler.NewDeadlineReminderJob(repos.Projects, repos.Tasks, notifications,
			cfg.Scheduler.ReminderInterval, cfg.Scheduler.ReminderWindow, cfg.Scheduler.PoolSize)
		if err := jobs.Register(reminders); err != nil {
			logger.Fatal("Failed to register jobs: %v", err)
		}
		jobs.Start()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("Shutting down")
	if jobs != nil {
		jobs.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown: %v", err)
	}
}
