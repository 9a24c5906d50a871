package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-dashboard-api/internal/models"
	"github.com/yukikurage/project-dashboard-api/internal/workflow"
)

func TestTaskService_ListByRole(t *testing.T) {
	env := setupServiceTestEnv(t)

	tests := []struct {
		name   string
		viewer Viewer
		input  ListTasksInput
		want   []uint64
	}{
		{"admin sees all", adminViewer, ListTasksInput{}, []uint64{1, 2, 3, 4, 5, 6}},
		{"lead sees own projects", lead1Viewer, ListTasksInput{}, []uint64{1, 2, 3, 5, 6}},
		{"lead filtered by project", lead1Viewer, ListTasksInput{ProjectID: ptr(uint64(3))}, []uint64{5, 6}},
		{"lead cannot reach other projects", lead1Viewer, ListTasksInput{ProjectID: ptr(uint64(2))}, []uint64{}},
		{"member sees own tasks", member1Viewer, ListTasksInput{}, []uint64{1, 3, 5}},
		{"member asking for someone else", member1Viewer, ListTasksInput{AssignedTo: ptr(uint64(5))}, []uint64{}},
		{"status filter", adminViewer, ListTasksInput{Status: ptr(models.TaskStatusDone)}, []uint64{1, 5}},
		{"search", adminViewer, ListTasksInput{Search: "dashboard"}, []uint64{2, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, total, err := env.tasks.ListTasks(tt.viewer, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(tasks))
			assert.Equal(t, int64(len(tt.want)), total)
		})
	}
}

func TestTaskService_ListPagination(t *testing.T) {
	env := setupServiceTestEnv(t)

	tasks, total, err := env.tasks.ListTasks(adminViewer, ListTasksInput{Page: 2, PageSize: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	assert.Equal(t, []uint64{5, 6}, ids(tasks))
}

func TestTaskService_Get(t *testing.T) {
	env := setupServiceTestEnv(t)

	task, err := env.tasks.GetTask(member1Viewer, 3)
	require.NoError(t, err)
	assert.Equal(t, "API Integration Testing", task.Title)

	_, err = env.tasks.GetTask(member1Viewer, 2)
	assert.ErrorIs(t, err, ErrTaskAccessDenied)

	_, err = env.tasks.GetTask(lead2Viewer, 1)
	assert.ErrorIs(t, err, ErrTaskAccessDenied)

	_, err = env.tasks.GetTask(adminViewer, 99)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskService_UpdateStatus_TodoToDone(t *testing.T) {
	env := setupServiceTestEnv(t)

	task, err := env.tasks.UpdateTaskStatus(member1Viewer, 3, models.TaskStatusDone, nil)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusDone, task.Status)
	assert.Equal(t, 100, task.Progress)
	require.NotNil(t, task.CompletedAt)
	assert.True(t, fixedNow.Equal(*task.CompletedAt))

	notes := env.notificationsFor(t, 2)
	require.NotEmpty(t, notes)
	assert.Equal(t, models.NotificationTaskCompleted, notes[0].Type)
	assert.Equal(t, `Alex Thompson completed "API Integration Testing"`, notes[0].Body)
}

func TestTaskService_UpdateStatus_Table(t *testing.T) {
	env := setupServiceTestEnv(t)

	task, err := env.tasks.UpdateTaskStatus(lead1Viewer, 1, models.TaskStatusInProgress, nil)
	require.NoError(t, err)
	assert.Equal(t, 50, task.Progress)
	assert.Nil(t, task.CompletedAt, "reopening clears the completion time")

	task, err = env.tasks.UpdateTaskStatus(adminViewer, 1, models.TaskStatusTodo, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, task.Progress)

	_, err = env.tasks.UpdateTaskStatus(member2Viewer, 3, models.TaskStatusDone, nil)
	assert.ErrorIs(t, err, ErrTaskPermissionDenied)

	_, err = env.tasks.UpdateTaskStatus(adminViewer, 3, "blocked", nil)
	assert.ErrorIs(t, err, workflow.ErrInvalidTaskStatus)

	_, err = env.tasks.UpdateTaskStatus(adminViewer, 99, models.TaskStatusDone, nil)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskService_UpdateStatus_ExplicitProgress(t *testing.T) {
	env := setupServiceTestEnv(t)

	progress := 70
	task, err := env.tasks.UpdateTaskStatus(adminViewer, 3, models.TaskStatusInProgress, &progress)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, task.Status)
	assert.Equal(t, 70, task.Progress)

	zero := 0
	task, err = env.tasks.UpdateTaskStatus(adminViewer, 3, models.TaskStatusInProgress, &zero)
	require.NoError(t, err)
	assert.Equal(t, 50, task.Progress, "zero progress falls back to the table")

	tooHigh := 120
	_, err = env.tasks.UpdateTaskStatus(adminViewer, 3, models.TaskStatusDone, &tooHigh)
	assert.ErrorIs(t, err, workflow.ErrInvalidProgress)
}

func TestTaskService_StrictLifecycle(t *testing.T) {
	env := setupServiceTestEnv(t)
	strict := NewTaskService(env.repos.Tasks, env.repos.Projects, env.repos.Users, workflow.NewLifecycle(true), nil).WithClock(fixedClock)

	_, err := strict.UpdateTaskStatus(member1Viewer, 3, models.TaskStatusDone, nil)
	assert.ErrorIs(t, err, workflow.ErrTransitionForbidden)

	task, err := strict.UpdateTaskStatus(member1Viewer, 3, models.TaskStatusInProgress, nil)
	require.NoError(t, err)
	assert.Equal(t, 50, task.Progress)

	_, err = strict.UpdateTaskStatus(member1Viewer, 1, models.TaskStatusTodo, nil)
	assert.ErrorIs(t, err, workflow.ErrTransitionForbidden)
}

func TestTaskService_Move(t *testing.T) {
	env := setupServiceTestEnv(t)

	task, err := env.tasks.MoveTask(member2Viewer, 2, models.TaskStatusInProgress, models.TaskStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, 70, task.Progress, "same column keeps the custom progress")

	task, err = env.tasks.MoveTask(member2Viewer, 2, models.TaskStatusInProgress, models.TaskStatusDone)
	require.NoError(t, err)
	assert.Equal(t, 100, task.Progress)
	assert.NotNil(t, task.CompletedAt)

	_, err = env.tasks.MoveTask(member2Viewer, 2, models.TaskStatusTodo, models.TaskStatusInProgress)
	assert.ErrorIs(t, err, ErrStaleMove)
}

func TestTaskService_Create(t *testing.T) {
	env := setupServiceTestEnv(t)

	task, err := env.tasks.CreateTask(lead1Viewer, CreateTaskInput{
		Title:      "Write release notes",
		ProjectID:  1,
		AssignedTo: 5,
		Priority:   models.PriorityLow,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusTodo, task.Status)
	assert.Equal(t, 0, task.Progress)
	assert.Equal(t, uint64(2), task.AssignedBy)
	assert.Nil(t, task.CompletedAt)

	notes := env.notificationsFor(t, 5)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationTaskAssigned, notes[0].Type)
	assert.Contains(t, notes[0].Body, "Write release notes")

	_, err = env.tasks.CreateTask(lead1Viewer, CreateTaskInput{Title: "x", ProjectID: 2, AssignedTo: 6})
	assert.ErrorIs(t, err, ErrTaskPermissionDenied)

	_, err = env.tasks.CreateTask(member1Viewer, CreateTaskInput{Title: "x", ProjectID: 1, AssignedTo: 4})
	assert.ErrorIs(t, err, ErrRoleForbidden)

	_, err = env.tasks.CreateTask(adminViewer, CreateTaskInput{Title: "x", ProjectID: 99, AssignedTo: 4})
	assert.ErrorIs(t, err, ErrInvalidTaskProject)

	_, err = env.tasks.CreateTask(adminViewer, CreateTaskInput{Title: "x", ProjectID: 1, AssignedTo: 99})
	assert.ErrorIs(t, err, ErrInvalidAssignee)

	_, err = env.tasks.CreateTask(adminViewer, CreateTaskInput{Title: "  ", ProjectID: 1, AssignedTo: 4})
	assert.ErrorIs(t, err, ErrTitleRequired)
}

func TestTaskService_GenericUpdateMayBreakTable(t *testing.T) {
	env := setupServiceTestEnv(t)

	task, err := env.tasks.UpdateTask(member1Viewer, 3, UpdateTaskInput{Progress: ptr(30)})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusTodo, task.Status)
	assert.Equal(t, 30, task.Progress)
	assert.False(t, workflow.TaskConsistent(*task))

	task, err = env.tasks.UpdateTask(lead1Viewer, 3, UpdateTaskInput{Title: ptr("API contract tests"), AssignedTo: ptr(uint64(5))})
	require.NoError(t, err)
	assert.Equal(t, "API contract tests", task.Title)
	assert.Equal(t, uint64(5), task.AssignedTo)

	_, err = env.tasks.UpdateTask(member1Viewer, 3, UpdateTaskInput{Title: ptr("mine now?")})
	assert.ErrorIs(t, err, ErrTaskPermissionDenied)

	_, err = env.tasks.UpdateTask(adminViewer, 3, UpdateTaskInput{Progress: ptr(150)})
	assert.ErrorIs(t, err, workflow.ErrInvalidProgress)

	_, err = env.tasks.UpdateTask(adminViewer, 3, UpdateTaskInput{})
	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)
}

func TestTaskService_Delete(t *testing.T) {
	env := setupServiceTestEnv(t)

	assert.ErrorIs(t, env.tasks.DeleteTask(member1Viewer, 1), ErrTaskPermissionDenied)
	assert.ErrorIs(t, env.tasks.DeleteTask(lead2Viewer, 1), ErrTaskPermissionDenied)

	require.NoError(t, env.tasks.DeleteTask(lead1Viewer, 1))
	assert.ErrorIs(t, env.tasks.DeleteTask(lead1Viewer, 1), ErrTaskNotFound)

	// the project keeps its stored progress; nothing cascades
	project, err := env.projects.GetProject(adminViewer, 1)
	require.NoError(t, err)
	assert.Equal(t, 65, project.Progress)
}

func TestTaskService_Board(t *testing.T) {
	env := setupServiceTestEnv(t)

	columns, err := env.tasks.Board(lead1Viewer, nil)
	require.NoError(t, err)
	require.Len(t, columns, 3)
	assert.Equal(t, models.TaskStatusTodo, columns[0].Status)
	assert.Equal(t, []uint64{3}, ids(columns[0].Tasks))
	assert.Equal(t, []uint64{2, 6}, ids(columns[1].Tasks))
	assert.Equal(t, []uint64{1, 5}, ids(columns[2].Tasks))

	columns, err = env.tasks.Board(member3Viewer, ptr(uint64(1)))
	require.NoError(t, err)
	for _, col := range columns {
		assert.NotNil(t, col.Tasks)
		assert.Empty(t, col.Tasks)
	}
}
