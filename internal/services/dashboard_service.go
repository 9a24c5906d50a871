package services

import (
	"errors"
	"time"

	"github.com/yukikurage/project-dashboard-api/internal/membership"
	"github.com/yukikurage/project-dashboard-api/internal/metrics"
	"github.com/yukikurage/project-dashboard-api/internal/models"
	"github.com/yukikurage/project-dashboard-api/internal/repository"
)

var ErrMemberNotVisible = errors.New("member is not on your team")

// DashboardService assembles role dashboards from the metrics calculator.
// Nothing is cached; every call reads the full collections.
type DashboardService struct {
	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
	now         Clock
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(userRepo repository.UserRepository, projectRepo repository.ProjectRepository, taskRepo repository.TaskRepository) *DashboardService {
	return &DashboardService{
		userRepo:    userRepo,
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
		now:         time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (s *DashboardService) WithClock(now Clock) *DashboardService {
	s.now = now
	return s
}

// Dashboard is the viewer's home view; exactly one section is set.
type Dashboard struct {
	Role   models.Role            `json:"role"`
	Admin  *metrics.AdminOverview `json:"admin,omitempty"`
	Lead   *metrics.LeadOverview  `json:"lead,omitempty"`
	Member *metrics.MemberReport  `json:"member,omitempty"`
}

// Overview builds the dashboard for the viewer's role.
func (s *DashboardService) Overview(viewer Viewer) (*Dashboard, error) {
	snap, err := loadSnapshot(s.userRepo, s.projectRepo, s.taskRepo)
	if err != nil {
		return nil, err
	}
	now := s.now()

	dash := &Dashboard{Role: viewer.Role}
	switch viewer.Role {
	case models.RoleAdmin:
		overview := metrics.BuildAdminOverview(snap.users, snap.projects, snap.tasks, now)
		dash.Admin = &overview
	case models.RoleTeamLead:
		overview := s.leadOverview(viewer.ID, snap, now)
		dash.Lead = &overview
	case models.RoleTeamMember:
		member, ok := findUser(snap.users, viewer.ID)
		if !ok {
			return nil, ErrUserNotFound
		}
		report := metrics.BuildMemberReport(member, membership.MemberProjects(viewer.ID, snap.projects, snap.tasks), snap.tasks, now)
		dash.Member = &report
	default:
		return nil, ErrInvalidRole
	}
	return dash, nil
}

func (s *DashboardService) leadOverview(leadID uint64, snap *snapshot, now time.Time) metrics.LeadOverview {
	projects := membership.LeadProjects(leadID, snap.projects)
	tasks := membership.ProjectTasks(projects, snap.tasks)
	team := membership.LeadTeamMembers(leadID, snap.users, snap.projects, snap.tasks)
	return metrics.BuildLeadOverview(projects, tasks, team, now)
}

// TeamLeadReport rolls up every team lead. Admin only.
func (s *DashboardService) TeamLeadReport(viewer Viewer) ([]metrics.LeadRollup, error) {
	if !viewer.IsAdmin() {
		return nil, ErrRoleForbidden
	}

	snap, err := loadSnapshot(s.userRepo, s.projectRepo, s.taskRepo)
	if err != nil {
		return nil, err
	}

	var leads []models.User
	for _, u := range snap.users {
		if u.Role == models.RoleTeamLead {
			leads = append(leads, u)
		}
	}
	return metrics.LeadRollups(leads, snap.projects, snap.tasks), nil
}

// TeamReport is the lead's view of their own team. Team leads only.
func (s *DashboardService) TeamReport(viewer Viewer) (*metrics.LeadOverview, error) {
	if !viewer.IsTeamLead() {
		return nil, ErrRoleForbidden
	}

	snap, err := loadSnapshot(s.userRepo, s.projectRepo, s.taskRepo)
	if err != nil {
		return nil, err
	}

	overview := s.leadOverview(viewer.ID, snap, s.now())
	return &overview, nil
}

// MemberReport reports on one team member. Members may only see themselves,
// leads see their team, admins see anyone.
func (s *DashboardService) MemberReport(viewer Viewer, memberID uint64) (*metrics.MemberReport, error) {
	snap, err := loadSnapshot(s.userRepo, s.projectRepo, s.taskRepo)
	if err != nil {
		return nil, err
	}

	member, ok := findUser(snap.users, memberID)
	if !ok || member.Role != models.RoleTeamMember {
		return nil, ErrUserNotFound
	}

	switch viewer.Role {
	case models.RoleAdmin:
	case models.RoleTeamLead:
		if _, ok := findUser(membership.LeadTeamMembers(viewer.ID, snap.users, snap.projects, snap.tasks), memberID); !ok {
			return nil, ErrMemberNotVisible
		}
	default:
		if viewer.ID != memberID {
			return nil, ErrMemberNotVisible
		}
	}

	report := metrics.BuildMemberReport(member, membership.MemberProjects(memberID, snap.projects, snap.tasks), snap.tasks, s.now())
	return &report, nil
}

func findUser(users []models.User, id uint64) (models.User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}
