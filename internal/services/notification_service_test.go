package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-dashboard-api/internal/models"
)

func TestNotificationService_ListAndMark(t *testing.T) {
	env := setupServiceTestEnv(t)

	list, err := env.notifications.List(adminViewer, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Mobile App Redesign project is 65% complete", list[0].Body)
	assert.False(t, list[0].Read)

	assert.ErrorIs(t, env.notifications.MarkRead(lead1Viewer, list[0].ID), ErrNotificationNotFound)
	require.NoError(t, env.notifications.MarkRead(adminViewer, list[0].ID))

	unread, err := env.notifications.List(adminViewer, true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	env := setupServiceTestEnv(t)

	require.NoError(t, env.notifications.Notify(3, models.NotificationTaskAssigned, "one"))
	require.NoError(t, env.notifications.Notify(3, models.NotificationTaskAssigned, "two"))

	n, err := env.notifications.MarkAllRead(lead2Viewer)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = env.notifications.MarkAllRead(lead2Viewer)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNotificationService_NotifyOnceAndRole(t *testing.T) {
	env := setupServiceTestEnv(t)

	created, err := env.notifications.NotifyOnce(4, models.NotificationDeadlineReminder, "due soon", "deadline:task:3:2025-08-05")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = env.notifications.NotifyOnce(4, models.NotificationDeadlineReminder, "due soon", "deadline:task:3:2025-08-05")
	require.NoError(t, err)
	assert.False(t, created)

	require.NoError(t, env.notifications.NotifyRole(models.RoleTeamLead, models.NotificationProjectUpdate, "all hands", 3))
	assert.Equal(t, "all hands", env.notificationsFor(t, 2)[0].Body)
	for _, n := range env.notificationsFor(t, 3) {
		assert.NotEqual(t, "all hands", n.Body)
	}
}
