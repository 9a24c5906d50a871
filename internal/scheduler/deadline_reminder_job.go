package scheduler

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-co-op/gocron/v2"
	"github.com/panjf2000/ants/v2"
	"github.com/yukikurage/project-dashboard-api/internal/constants"
	"github.com/yukikurage/project-dashboard-api/internal/logger"
	"github.com/yukikurage/project-dashboard-api/internal/models"
	"github.com/yukikurage/project-dashboard-api/internal/repository"
	"github.com/yukikurage/project-dashboard-api/internal/services"
)

// DeadlineReminderJob notifies team leads about upcoming project deadlines
// and assignees about upcoming task deadlines. Each (user, item, deadline)
// is reminded at most once.
type DeadlineReminderJob struct {
	projects repository.ProjectRepository
	tasks    repository.TaskRepository
	notifier services.Notifier
	interval time.Duration
	window   time.Duration
	poolSize int
	now      services.Clock
}

type reminder struct {
	userID uint64
	body   string
	refKey string
}

// NewDeadlineReminderJob creates the job. Items are due when their deadline
// falls between the start of today and now+window.
func NewDeadlineReminderJob(projects repository.ProjectRepository, tasks repository.TaskRepository, notifier services.Notifier, interval, window time.Duration, poolSize int) *DeadlineReminderJob {
	if poolSize <= 0 {
		poolSize = 1
	}
	return &DeadlineReminderJob{
		projects: projects,
		tasks:    tasks,
		notifier: notifier,
		interval: interval,
		window:   window,
		poolSize: poolSize,
		now:      time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (j *DeadlineReminderJob) WithClock(now services.Clock) *DeadlineReminderJob {
	j.now = now
	return j
}

func (j *DeadlineReminderJob) GetName() string {
	return "deadline_reminder"
}

func (j *DeadlineReminderJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

func (j *DeadlineReminderJob) Execute() {
	sent, err := j.Run()
	if err != nil {
		logger.Error("deadline reminder run failed: %v", err)
		return
	}
	if sent > 0 {
		logger.Info("deadline reminder sent %d notifications", sent)
	}
}

// Run scans for due items and returns how many new reminders were stored.
func (j *DeadlineReminderJob) Run() (int, error) {
	now := j.now()
	reminders, err := j.collect(now)
	if err != nil {
		return 0, err
	}
	if len(reminders) == 0 {
		return 0, nil
	}

	pool, err := ants.NewPool(j.poolSize)
	if err != nil {
		return 0, fmt.Errorf("failed to create reminder pool: %w", err)
	}
	defer pool.Release()

	var (
		wg   sync.WaitGroup
		sent atomic.Int64
	)
	for _, r := range reminders {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			created, err := j.notifier.NotifyOnce(r.userID, models.NotificationDeadlineReminder, r.body, r.refKey)
			if err != nil {
				logger.Error("failed to store reminder %s for user %d: %v", r.refKey, r.userID, err)
				return
			}
			if created {
				sent.Add(1)
			}
		})
		if err != nil {
			wg.Done()
			logger.Error("failed to submit reminder %s: %v", r.refKey, err)
		}
	}
	wg.Wait()

	return int(sent.Load()), nil
}

func (j *DeadlineReminderJob) collect(now time.Time) ([]reminder, error) {
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	until := now.Add(j.window)
	due := func(deadline *time.Time) bool {
		return deadline != nil && !deadline.Before(from) && !deadline.After(until)
	}

	projects, err := j.projects.List(repository.ProjectFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	tasks, _, err := j.tasks.List(repository.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	out := []reminder{}
	for _, p := range projects {
		if p.Status == models.ProjectStatusCompleted || p.TeamLeadID == nil || !due(p.Deadline) {
			continue
		}
		out = append(out, reminder{
			userID: *p.TeamLeadID,
			body:   fmt.Sprintf("%s deadline is %s", p.Name, humanize.RelTime(*p.Deadline, now, "ago", "from now")),
			refKey: fmt.Sprintf("deadline:project:%d:%s", p.ID, p.Deadline.Format(constants.DateLayout)),
		})
	}
	for _, t := range tasks {
		if t.Status == models.TaskStatusDone || !due(t.Deadline) {
			continue
		}
		out = append(out, reminder{
			userID: t.AssignedTo,
			body:   fmt.Sprintf("%q is due %s", t.Title, humanize.RelTime(*t.Deadline, now, "ago", "from now")),
			refKey: fmt.Sprintf("deadline:task:%d:%s", t.ID, t.Deadline.Format(constants.DateLayout)),
		})
	}
	return out, nil
}
