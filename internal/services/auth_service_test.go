package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-dashboard-api/internal/models"
)

func TestAuthService_Login(t *testing.T) {
	env := setupServiceTestEnv(t)

	user, err := env.auth.Login(LoginInput{Username: "admin", Password: "admin123", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), user.ID)
	assert.Equal(t, "Sarah Johnson", user.Name)

	tests := []struct {
		name  string
		input LoginInput
	}{
		{"wrong password", LoginInput{Username: "admin", Password: "wrong", Role: models.RoleAdmin}},
		{"role mismatch", LoginInput{Username: "admin", Password: "admin123", Role: models.RoleTeamLead}},
		{"unknown user", LoginInput{Username: "nobody", Password: "admin123", Role: models.RoleAdmin}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Login(tt.input)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestAuthService_Register(t *testing.T) {
	env := setupServiceTestEnv(t)

	user, err := env.auth.Register(RegisterInput{
		Name:     "  Priya Shah ",
		Email:    "priya@company.com",
		Username: "member4",
		Password: "member123",
		Role:     models.RoleTeamMember,
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "Priya Shah", user.Name)
	assert.Equal(t, "https://i.pravatar.cc/150?u=member4", user.Avatar)

	loggedIn, err := env.auth.Login(LoginInput{Username: "member4", Password: "member123", Role: models.RoleTeamMember})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	env := setupServiceTestEnv(t)

	valid := RegisterInput{Name: "N", Email: "n@company.com", Username: "fresh", Password: "secret1", Role: models.RoleTeamMember}

	dup := valid
	dup.Username = "member1"
	_, err := env.auth.Register(dup)
	assert.ErrorIs(t, err, ErrUsernameTaken)

	missing := valid
	missing.Email = " "
	_, err = env.auth.Register(missing)
	assert.ErrorIs(t, err, ErrMissingFields)

	short := valid
	short.Password = "abc"
	_, err = env.auth.Register(short)
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	badRole := valid
	badRole.Role = "owner"
	_, err = env.auth.Register(badRole)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestAuthService_GetAndListUsers(t *testing.T) {
	env := setupServiceTestEnv(t)

	user, err := env.auth.GetUser(4)
	require.NoError(t, err)
	assert.Equal(t, "member1", user.Username)

	_, err = env.auth.GetUser(99)
	assert.ErrorIs(t, err, ErrUserNotFound)

	leads, err := env.auth.ListUsers(ptr(models.RoleTeamLead))
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 3}, ids(leads))

	_, err = env.auth.ListUsers(ptr(models.Role("owner")))
	assert.ErrorIs(t, err, ErrInvalidRole)
}
