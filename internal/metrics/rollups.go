package metrics

import (
	"time"

	"github.com/yukikurage/project-dashboard-api/internal/constants"
	"github.com/yukikurage/project-dashboard-api/internal/models"
)

// LeadRollup aggregates a team lead's projects and the tasks inside them.
type LeadRollup struct {
	UserID         uint64 `json:"user_id"`
	Name           string `json:"name"`
	ProjectCount   int    `json:"project_count"`
	TaskCount      int    `json:"task_count"`
	CompletedTasks int    `json:"completed_tasks"`
	AvgProgress    int    `json:"avg_progress"`
	TeamSize       int    `json:"team_size"`
	CompletionRate int    `json:"completion_rate"`
}

// MemberRollup aggregates the tasks assigned to one member.
type MemberRollup struct {
	UserID          uint64 `json:"user_id"`
	Name            string `json:"name"`
	TaskCount       int    `json:"task_count"`
	Completed       int    `json:"completed"`
	InProgress      int    `json:"in_progress"`
	Todo            int    `json:"todo"`
	CompletionRate  int    `json:"completion_rate"`
	AvgTaskProgress int    `json:"avg_task_progress"`
	ProjectCount    int    `json:"project_count"`
	RecentActivity  int    `json:"recent_activity"`
	Overdue         int    `json:"overdue"`
}

// ProjectBreakdown summarizes the tasks of one project.
type ProjectBreakdown struct {
	ProjectID      uint64               `json:"project_id"`
	Name           string               `json:"name"`
	Status         models.ProjectStatus `json:"status"`
	Progress       int                  `json:"progress"`
	TotalTasks     int                  `json:"total_tasks"`
	Completed      int                  `json:"completed"`
	InProgress     int                  `json:"in_progress"`
	Todo           int                  `json:"todo"`
	CompletionRate int                  `json:"completion_rate"`
}

// LeadRollups groups projects by team lead and tasks by project.
// Results follow the order of leads.
func LeadRollups(leads []models.User, projects []models.Project, tasks []models.Task) []LeadRollup {
	out := make([]LeadRollup, 0, len(leads))
	for _, lead := range leads {
		var led []models.Project
		projectIDs := map[uint64]bool{}
		for _, p := range projects {
			if p.LedBy(lead.ID) {
				led = append(led, p)
				projectIDs[p.ID] = true
			}
		}

		var leadTasks []models.Task
		team := map[uint64]bool{}
		for _, t := range tasks {
			if projectIDs[t.ProjectID] {
				leadTasks = append(leadTasks, t)
				team[t.AssignedTo] = true
			}
		}

		completed := CountByStatus(leadTasks)[models.TaskStatusDone]
		out = append(out, LeadRollup{
			UserID:         lead.ID,
			Name:           lead.Name,
			ProjectCount:   len(led),
			TaskCount:      len(leadTasks),
			CompletedTasks: completed,
			AvgProgress:    AverageProjectProgress(led),
			TeamSize:       len(team),
			CompletionRate: Percent(completed, len(leadTasks)),
		})
	}
	return out
}

// MemberRollups groups tasks by assignee. Tasks created within the last seven
// days of now count as recent activity.
func MemberRollups(members []models.User, tasks []models.Task, now time.Time) []MemberRollup {
	since := now.Add(-constants.RecentActivityWindow)

	out := make([]MemberRollup, 0, len(members))
	for _, m := range members {
		var own []models.Task
		projects := map[uint64]bool{}
		recent := 0
		for _, t := range tasks {
			if t.AssignedTo != m.ID {
				continue
			}
			own = append(own, t)
			projects[t.ProjectID] = true
			if t.CreatedAt.After(since) {
				recent++
			}
		}

		counts := CountByStatus(own)
		out = append(out, MemberRollup{
			UserID:          m.ID,
			Name:            m.Name,
			TaskCount:       len(own),
			Completed:       counts[models.TaskStatusDone],
			InProgress:      counts[models.TaskStatusInProgress],
			Todo:            counts[models.TaskStatusTodo],
			CompletionRate:  Percent(counts[models.TaskStatusDone], len(own)),
			AvgTaskProgress: AverageTaskProgress(own),
			ProjectCount:    len(projects),
			RecentActivity:  recent,
			Overdue:         len(OverdueTasks(own, now)),
		})
	}
	return out
}

// ProjectBreakdowns summarizes each project's tasks, in project order.
func ProjectBreakdowns(projects []models.Project, tasks []models.Task) []ProjectBreakdown {
	byProject := map[uint64][]models.Task{}
	for _, t := range tasks {
		byProject[t.ProjectID] = append(byProject[t.ProjectID], t)
	}

	out := make([]ProjectBreakdown, 0, len(projects))
	for _, p := range projects {
		own := byProject[p.ID]
		counts := CountByStatus(own)
		out = append(out, ProjectBreakdown{
			ProjectID:      p.ID,
			Name:           p.Name,
			Status:         p.Status,
			Progress:       p.Progress,
			TotalTasks:     len(own),
			Completed:      counts[models.TaskStatusDone],
			InProgress:     counts[models.TaskStatusInProgress],
			Todo:           counts[models.TaskStatusTodo],
			CompletionRate: Percent(counts[models.TaskStatusDone], len(own)),
		})
	}
	return out
}

// TeamCompletionRate averages the members' completion rates.
func TeamCompletionRate(rollups []MemberRollup) int {
	values := make([]int, len(rollups))
	for i, r := range rollups {
		values[i] = r.CompletionRate
	}
	return RoundedMean(values)
}
