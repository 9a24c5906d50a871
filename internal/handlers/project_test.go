package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-dashboard-api/internal/dto"
	"github.com/yukikurage/project-dashboard-api/internal/models"
)

func setupProjectHandler(t *testing.T) (*ProjectHandler, *handlerTestEnv) {
	t.Helper()
	db := openSeededDB(t)
	t.Cleanup(func() { closeDB(t, db) })
	env := newHandlerTestEnv(db, false)
	return NewProjectHandler(env.projects), env
}

func decodeProject(t *testing.T, body []byte) dto.ProjectDTO {
	t.Helper()
	var p dto.ProjectDTO
	require.NoError(t, json.Unmarshal(body, &p))
	return p
}

func TestProjectHandler_ListProjects_ByRole(t *testing.T) {
	handler, _ := setupProjectHandler(t)

	tests := []struct {
		name    string
		userID  uint64
		role    models.Role
		query   string
		wantIDs []uint64
	}{
		{"admin sees all", 1, models.RoleAdmin, "", []uint64{1, 2, 3, 4}},
		{"lead sees led projects", 2, models.RoleTeamLead, "", []uint64{1, 3}},
		{"member sees projects with assignments", 6, models.RoleTeamMember, "", []uint64{2}},
		{"search", 1, models.RoleAdmin, "?q=security", []uint64{3}},
		{"status filter", 1, models.RoleAdmin, "?status=planning", []uint64{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := createAuthContext("GET", "/api/projects"+tt.query, nil, tt.userID, tt.role)

			handler.ListProjects(c)

			require.Equal(t, http.StatusOK, w.Code)
			var response struct {
				Projects []dto.ProjectDTO `json:"projects"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

			got := []uint64{}
			for _, p := range response.Projects {
				got = append(got, p.ID)
			}
			assert.ElementsMatch(t, tt.wantIDs, got)
		})
	}
}

func TestProjectHandler_GetProject_AccessDenied(t *testing.T) {
	handler, _ := setupProjectHandler(t)

	c, w := createAuthContext("GET", "/api/projects/2", nil, 2, models.RoleTeamLead)
	withParam(c, "id", "2")

	handler.GetProject(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProjectHandler_GetProject_InvalidID(t *testing.T) {
	handler, _ := setupProjectHandler(t)

	c, w := createAuthContext("GET", "/api/projects/abc", nil, 1, models.RoleAdmin)
	withParam(c, "id", "abc")

	handler.GetProject(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectHandler_CreateProject(t *testing.T) {
	handler, env := setupProjectHandler(t)

	body, _ := json.Marshal(map[string]interface{}{
		"name":         "Onboarding Revamp",
		"description":  "New hire onboarding flow",
		"deadline":     "2025-10-01",
		"priority":     "high",
		"team_lead_id": 3,
	})
	c, w := createAuthContext("POST", "/api/projects", body, 1, models.RoleAdmin)

	handler.CreateProject(c)

	require.Equal(t, http.StatusCreated, w.Code)
	p := decodeProject(t, w.Body.Bytes())
	assert.Equal(t, "Onboarding Revamp", p.Name)
	assert.Equal(t, 0, p.Progress)
	assert.Equal(t, models.ProjectStatusPlanning, p.Status)
	assert.True(t, p.StatusConsistent)

	notifications, err := env.repos.Notifications.ListForUser(3, true)
	require.NoError(t, err)
	assert.Contains(t, notifications[0].Body, "Onboarding Revamp")
}

func TestProjectHandler_CreateProject_Errors(t *testing.T) {
	handler, _ := setupProjectHandler(t)

	tests := []struct {
		name       string
		userID     uint64
		role       models.Role
		payload    map[string]interface{}
		wantStatus int
	}{
		{"lead forbidden", 2, models.RoleTeamLead, map[string]interface{}{"name": "X"}, http.StatusForbidden},
		{"missing name", 1, models.RoleAdmin, map[string]interface{}{"description": "no name"}, http.StatusBadRequest},
		{"bad deadline", 1, models.RoleAdmin, map[string]interface{}{"name": "X", "deadline": "next week"}, http.StatusBadRequest},
		{"lead is a member", 1, models.RoleAdmin, map[string]interface{}{"name": "X", "team_lead_id": 4}, http.StatusBadRequest},
		{"bad priority", 1, models.RoleAdmin, map[string]interface{}{"name": "X", "priority": "urgent"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.payload)
			c, w := createAuthContext("POST", "/api/projects", body, tt.userID, tt.role)

			handler.CreateProject(c)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestProjectHandler_UpdateProgress(t *testing.T) {
	handler, env := setupProjectHandler(t)

	body, _ := json.Marshal(map[string]int{"progress": 100})
	c, w := createAuthContext("PUT", "/api/projects/1/progress", body, 2, models.RoleTeamLead)
	withParam(c, "id", "1")

	handler.UpdateProgress(c)

	require.Equal(t, http.StatusOK, w.Code)
	p := decodeProject(t, w.Body.Bytes())
	assert.Equal(t, 100, p.Progress)
	assert.Equal(t, models.ProjectStatusCompleted, p.Status)

	notifications, err := env.repos.Notifications.ListForUser(1, true)
	require.NoError(t, err)
	assert.Equal(t, "Mobile App Redesign project is 100% complete", notifications[0].Body)
}

func TestProjectHandler_UpdateProgress_Errors(t *testing.T) {
	handler, _ := setupProjectHandler(t)

	tests := []struct {
		name       string
		id         string
		body       string
		wantStatus int
	}{
		{"out of range", "1", `{"progress":150}`, http.StatusBadRequest},
		{"missing progress", "1", `{}`, http.StatusBadRequest},
		{"unknown project", "99", `{"progress":10}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := createAuthContext("PUT", "/api/projects/"+tt.id+"/progress", []byte(tt.body), 1, models.RoleAdmin)
			withParam(c, "id", tt.id)

			handler.UpdateProgress(c)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestProjectHandler_UpdateProject_Generic(t *testing.T) {
	handler, _ := setupProjectHandler(t)

	body, _ := json.Marshal(map[string]interface{}{"progress": 90, "deadline": nil})
	c, w := createAuthContext("PATCH", "/api/projects/2", body, 3, models.RoleTeamLead)
	withParam(c, "id", "2")

	handler.UpdateProject(c)

	require.Equal(t, http.StatusOK, w.Code)
	p := decodeProject(t, w.Body.Bytes())
	assert.Equal(t, 90, p.Progress)
	assert.Equal(t, models.ProjectStatusInProgress, p.Status)
	assert.Nil(t, p.Deadline)
}

func TestProjectHandler_UpdateProject_StaleStatus(t *testing.T) {
	handler, _ := setupProjectHandler(t)

	body, _ := json.Marshal(map[string]interface{}{"status": "completed"})
	c, w := createAuthContext("PATCH", "/api/projects/2", body, 1, models.RoleAdmin)
	withParam(c, "id", "2")

	handler.UpdateProject(c)

	require.Equal(t, http.StatusOK, w.Code)
	p := decodeProject(t, w.Body.Bytes())
	assert.Equal(t, models.ProjectStatusCompleted, p.Status)
	assert.False(t, p.StatusConsistent)
}

func TestProjectHandler_UpdateProject_EmptyBody(t *testing.T) {
	handler, _ := setupProjectHandler(t)

	c, w := createAuthContext("PATCH", "/api/projects/2", []byte(`{}`), 1, models.RoleAdmin)
	withParam(c, "id", "2")

	handler.UpdateProject(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectHandler_AssignTeamLead(t *testing.T) {
	handler, _ := setupProjectHandler(t)

	body, _ := json.Marshal(map[string]interface{}{"team_lead_id": 3})
	c, w := createAuthContext("PUT", "/api/projects/1/lead", body, 1, models.RoleAdmin)
	withParam(c, "id", "1")

	handler.AssignTeamLead(c)

	require.Equal(t, http.StatusOK, w.Code)
	p := decodeProject(t, w.Body.Bytes())
	require.NotNil(t, p.TeamLeadID)
	assert.Equal(t, uint64(3), *p.TeamLeadID)

	c, w = createAuthContext("PUT", "/api/projects/1/lead", []byte(`{"team_lead_id":null}`), 1, models.RoleAdmin)
	withParam(c, "id", "1")

	handler.AssignTeamLead(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decodeProject(t, w.Body.Bytes()).TeamLeadID)
}
