package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-dashboard-api/internal/metrics"
	"github.com/yukikurage/project-dashboard-api/internal/models"
	"github.com/yukikurage/project-dashboard-api/internal/services"
)

func setupDashboardHandler(t *testing.T) *DashboardHandler {
	t.Helper()
	db := openSeededDB(t)
	t.Cleanup(func() { closeDB(t, db) })
	return NewDashboardHandler(newHandlerTestEnv(db, false).dashboard)
}

func TestDashboardHandler_Overview_Admin(t *testing.T) {
	handler := setupDashboardHandler(t)

	c, w := createAuthContext("GET", "/api/dashboard", nil, 1, models.RoleAdmin)
	handler.Overview(c)

	require.Equal(t, http.StatusOK, w.Code)
	var dashboard services.Dashboard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dashboard))
	require.NotNil(t, dashboard.Admin)
	assert.Nil(t, dashboard.Lead)
	assert.Nil(t, dashboard.Member)
	assert.Equal(t, 4, dashboard.Admin.TotalProjects)
	assert.Equal(t, 6, dashboard.Admin.TotalTasks)
	assert.Equal(t, 33, dashboard.Admin.CompletionRate)
}

func TestDashboardHandler_Overview_Lead(t *testing.T) {
	handler := setupDashboardHandler(t)

	c, w := createAuthContext("GET", "/api/dashboard", nil, 2, models.RoleTeamLead)
	handler.Overview(c)

	require.Equal(t, http.StatusOK, w.Code)
	var dashboard services.Dashboard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dashboard))
	require.NotNil(t, dashboard.Lead)
	assert.Equal(t, 2, dashboard.Lead.ProjectCount)
	assert.Equal(t, 5, dashboard.Lead.TaskCount)
	assert.Equal(t, 2, dashboard.Lead.TeamSize)
}

func TestDashboardHandler_Reports_RoleChecks(t *testing.T) {
	handler := setupDashboardHandler(t)

	c, w := createAuthContext("GET", "/api/reports/team-leads", nil, 2, models.RoleTeamLead)
	handler.TeamLeadReport(c)
	assert.Equal(t, http.StatusForbidden, w.Code)

	c, w = createAuthContext("GET", "/api/reports/team", nil, 1, models.RoleAdmin)
	handler.TeamReport(c)
	assert.Equal(t, http.StatusForbidden, w.Code)

	c, w = createAuthContext("GET", "/api/reports/team-leads", nil, 1, models.RoleAdmin)
	handler.TeamLeadReport(c)
	require.Equal(t, http.StatusOK, w.Code)
	var response struct {
		TeamLeads []metrics.LeadRollup `json:"team_leads"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.TeamLeads, 2)
}

func TestDashboardHandler_MyReport(t *testing.T) {
	handler := setupDashboardHandler(t)

	c, w := createAuthContext("GET", "/api/reports/me", nil, 4, models.RoleTeamMember)
	handler.MyReport(c)

	require.Equal(t, http.StatusOK, w.Code)
	var report metrics.MemberReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 3, report.Summary.TaskCount)
	assert.Equal(t, 2, report.Summary.Completed)
	assert.Equal(t, 67, report.Summary.CompletionRate)
}

func TestDashboardHandler_MemberReport_Visibility(t *testing.T) {
	handler := setupDashboardHandler(t)

	// Member 6 only works on project 2, which lead 2 does not lead.
	c, w := createAuthContext("GET", "/api/reports/members/6", nil, 2, models.RoleTeamLead)
	withParam(c, "id", "6")
	handler.MemberReport(c)
	assert.Equal(t, http.StatusForbidden, w.Code)

	c, w = createAuthContext("GET", "/api/reports/members/5", nil, 2, models.RoleTeamLead)
	withParam(c, "id", "5")
	handler.MemberReport(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = createAuthContext("GET", "/api/reports/members/2", nil, 1, models.RoleAdmin)
	withParam(c, "id", "2")
	handler.MemberReport(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
