package scheduler

import (
	"fmt"

	"github.com/go-co-op/gocron/v2"
	"github.com/yukikurage/project-dashboard-api/internal/logger"
)

// Job is a named unit of periodic work.
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// Manager owns the gocron scheduler and its registered jobs.
type Manager struct {
	scheduler gocron.Scheduler
}

// NewManager creates a stopped manager.
func NewManager() (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Manager{scheduler: s}, nil
}

// Register adds a job. A run that overlaps the previous one is rescheduled
// instead of running concurrently.
func (m *Manager) Register(job Job) error {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to register job %s: %w", job.GetName(), err)
	}
	logger.Info("registered job %s", job.GetName())
	return nil
}

// Jobs returns the names of the registered jobs.
func (m *Manager) Jobs() []string {
	names := []string{}
	for _, j := range m.scheduler.Jobs() {
		names = append(names, j.Name())
	}
	return names
}

func (m *Manager) Start() {
	m.scheduler.Start()
	logger.Info("scheduler started")
}

func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("failed to shutdown scheduler: %v", err)
		return
	}
	logger.Info("scheduler stopped")
}
