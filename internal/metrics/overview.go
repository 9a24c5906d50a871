package metrics

import (
	"time"

	"github.com/yukikurage/project-dashboard-api/internal/models"
)

// AdminOverview is the organization-wide dashboard.
type AdminOverview struct {
	TotalProjects      int                          `json:"total_projects"`
	TotalTasks         int                          `json:"total_tasks"`
	TotalUsers         int                          `json:"total_users"`
	TeamLeads          int                          `json:"team_leads"`
	TeamMembers        int                          `json:"team_members"`
	ProjectsByStatus   map[models.ProjectStatus]int `json:"projects_by_status"`
	TasksByStatus      StatusCounts                 `json:"tasks_by_status"`
	CompletionRate     int                          `json:"completion_rate"`
	AvgProjectProgress int                          `json:"avg_project_progress"`
	CompletedPerMember int                          `json:"completed_per_member"`
	OverdueTasks       int                          `json:"overdue_tasks"`
	Priorities         []PriorityCount              `json:"priorities"`
	Leads              []LeadRollup                 `json:"leads"`
	Projects           []ProjectBreakdown           `json:"projects"`
}

// LeadOverview is the dashboard for one team lead's projects.
type LeadOverview struct {
	ProjectCount       int                `json:"project_count"`
	TaskCount          int                `json:"task_count"`
	TeamSize           int                `json:"team_size"`
	TasksByStatus      StatusCounts       `json:"tasks_by_status"`
	CompletionRate     int                `json:"completion_rate"`
	AvgProjectProgress int                `json:"avg_project_progress"`
	TeamCompletionRate int                `json:"team_completion_rate"`
	OverdueTasks       int                `json:"overdue_tasks"`
	Priorities         []PriorityCount    `json:"priorities"`
	Members            []MemberRollup     `json:"members"`
	Projects           []ProjectBreakdown `json:"projects"`
}

// MemberReport is the dashboard for one member's own work.
type MemberReport struct {
	Summary       MemberRollup       `json:"summary"`
	TasksByStatus StatusCounts       `json:"tasks_by_status"`
	Priorities    []PriorityCount    `json:"priorities"`
	Projects      []ProjectBreakdown `json:"projects"`
	Overdue       []models.Task      `json:"overdue"`
}

func filterRole(users []models.User, role models.Role) []models.User {
	out := []models.User{}
	for _, u := range users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out
}

// BuildAdminOverview aggregates every collection.
func BuildAdminOverview(users []models.User, projects []models.Project, tasks []models.Task, now time.Time) AdminOverview {
	leads := filterRole(users, models.RoleTeamLead)
	members := filterRole(users, models.RoleTeamMember)
	byStatus := CountByStatus(tasks)

	return AdminOverview{
		TotalProjects:      len(projects),
		TotalTasks:         len(tasks),
		TotalUsers:         len(users),
		TeamLeads:          len(leads),
		TeamMembers:        len(members),
		ProjectsByStatus:   ProjectStatusCounts(projects),
		TasksByStatus:      byStatus,
		CompletionRate:     CompletionRate(tasks),
		AvgProjectProgress: AverageProjectProgress(projects),
		CompletedPerMember: Ratio(byStatus[models.TaskStatusDone], len(members)),
		OverdueTasks:       len(OverdueTasks(tasks, now)),
		Priorities:         PriorityBreakdown(tasks),
		Leads:              LeadRollups(leads, projects, tasks),
		Projects:           ProjectBreakdowns(projects, tasks),
	}
}

// BuildLeadOverview aggregates the projects, tasks and members visible to a
// lead. Callers pass collections already narrowed by the membership resolver.
func BuildLeadOverview(projects []models.Project, tasks []models.Task, team []models.User, now time.Time) LeadOverview {
	members := MemberRollups(team, tasks, now)

	return LeadOverview{
		ProjectCount:       len(projects),
		TaskCount:          len(tasks),
		TeamSize:           len(team),
		TasksByStatus:      CountByStatus(tasks),
		CompletionRate:     CompletionRate(tasks),
		AvgProjectProgress: AverageProjectProgress(projects),
		TeamCompletionRate: TeamCompletionRate(members),
		OverdueTasks:       len(OverdueTasks(tasks, now)),
		Priorities:         PriorityBreakdown(tasks),
		Members:            members,
		Projects:           ProjectBreakdowns(projects, tasks),
	}
}

// BuildMemberReport aggregates one member's tasks and the projects they touch.
func BuildMemberReport(member models.User, projects []models.Project, tasks []models.Task, now time.Time) MemberReport {
	own := []models.Task{}
	for _, t := range tasks {
		if t.AssignedTo == member.ID {
			own = append(own, t)
		}
	}

	return MemberReport{
		Summary:       MemberRollups([]models.User{member}, own, now)[0],
		TasksByStatus: CountByStatus(own),
		Priorities:    PriorityBreakdown(own),
		Projects:      ProjectBreakdowns(projects, own),
		Overdue:       OverdueTasks(own, now),
	}
}
