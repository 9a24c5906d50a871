// Package membership resolves which projects, tasks and users a viewer can see.
//
// All functions are pure joins over the flat collections. They never mutate
// their inputs and return empty, non-nil slices when nothing matches.
package membership

import (
	"github.com/yukikurage/project-dashboard-api/internal/models"
)

// LeadProjects returns the projects led by leadID.
func LeadProjects(leadID uint64, projects []models.Project) []models.Project {
	out := []models.Project{}
	for _, p := range projects {
		if p.LedBy(leadID) {
			out = append(out, p)
		}
	}
	return out
}

// ProjectTasks returns the tasks belonging to any of the given projects.
func ProjectTasks(projects []models.Project, tasks []models.Task) []models.Task {
	ids := projectIDs(projects)
	out := []models.Task{}
	for _, t := range tasks {
		if ids[t.ProjectID] {
			out = append(out, t)
		}
	}
	return out
}

// AssignedTasks returns the tasks assigned to userID.
func AssignedTasks(userID uint64, tasks []models.Task) []models.Task {
	out := []models.Task{}
	for _, t := range tasks {
		if t.AssignedTo == userID {
			out = append(out, t)
		}
	}
	return out
}

// LeadTeamMembers returns the distinct team members assigned to tasks in the
// lead's projects, in user order. Dangling assignee ids are skipped.
func LeadTeamMembers(leadID uint64, users []models.User, projects []models.Project, tasks []models.Task) []models.User {
	assignees := map[uint64]bool{}
	for _, t := range ProjectTasks(LeadProjects(leadID, projects), tasks) {
		assignees[t.AssignedTo] = true
	}

	out := []models.User{}
	for _, u := range users {
		if assignees[u.ID] && u.Role == models.RoleTeamMember {
			out = append(out, u)
		}
	}
	return out
}

// MemberProjects returns the projects referenced by the member's own tasks.
func MemberProjects(memberID uint64, projects []models.Project, tasks []models.Task) []models.Project {
	ids := map[uint64]bool{}
	for _, t := range AssignedTasks(memberID, tasks) {
		ids[t.ProjectID] = true
	}

	out := []models.Project{}
	for _, p := range projects {
		if ids[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

// VisibleProjects is the project slice a viewer's dashboard shows.
func VisibleProjects(viewer models.User, projects []models.Project, tasks []models.Task) []models.Project {
	switch viewer.Role {
	case models.RoleAdmin:
		return append([]models.Project{}, projects...)
	case models.RoleTeamLead:
		return LeadProjects(viewer.ID, projects)
	case models.RoleTeamMember:
		return MemberProjects(viewer.ID, projects, tasks)
	}
	return []models.Project{}
}

// VisibleTasks is the task slice a viewer's dashboard shows.
func VisibleTasks(viewer models.User, projects []models.Project, tasks []models.Task) []models.Task {
	switch viewer.Role {
	case models.RoleAdmin:
		return append([]models.Task{}, tasks...)
	case models.RoleTeamLead:
		return ProjectTasks(LeadProjects(viewer.ID, projects), tasks)
	case models.RoleTeamMember:
		return AssignedTasks(viewer.ID, tasks)
	}
	return []models.Task{}
}

// CanSeeProject reports whether projectID is in the viewer's visible set.
func CanSeeProject(viewer models.User, projectID uint64, projects []models.Project, tasks []models.Task) bool {
	for _, p := range VisibleProjects(viewer, projects, tasks) {
		if p.ID == projectID {
			return true
		}
	}
	return false
}

// CanSeeTask reports whether task is in the viewer's visible set.
func CanSeeTask(viewer models.User, task models.Task, projects []models.Project) bool {
	switch viewer.Role {
	case models.RoleAdmin:
		return true
	case models.RoleTeamLead:
		return projectIDs(LeadProjects(viewer.ID, projects))[task.ProjectID]
	case models.RoleTeamMember:
		return task.AssignedTo == viewer.ID
	}
	return false
}

func projectIDs(projects []models.Project) map[uint64]bool {
	ids := make(map[uint64]bool, len(projects))
	for _, p := range projects {
		ids[p.ID] = true
	}
	return ids
}
