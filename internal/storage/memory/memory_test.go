package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdeenkov/go-task-manager/internal/models"
	"github.com/avdeenkov/go-task-manager/internal/storage"
)

func TestSaveUserRejectsDuplicateEmail(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.SaveUser(ctx, &models.User{ID: "u1", Email: "a@example.com"})
	require.NoError(t, err)

	err = s.SaveUser(ctx, &models.User{ID: "u2", Email: "a@example.com"})
	assert.ErrorIs(t, err, storage.ErrDuplicateEmail)
}

func TestUserByEmail(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.SaveUser(ctx, &models.User{ID: "u1", Email: "a@example.com", Name: "A"}))

	user, err := s.UserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = s.UserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTasksByUserIDFiltersAndSorts(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveTask(ctx, &models.Task{ID: "t1", UserID: "alice", CreatedAt: base}))
	require.NoError(t, s.SaveTask(ctx, &models.Task{ID: "t2", UserID: "alice", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, s.SaveTask(ctx, &models.Task{ID: "t3", UserID: "bob", CreatedAt: base.Add(2 * time.Hour)}))

	tasks, err := s.TasksByUserID(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "t2", tasks[0].ID)
	assert.Equal(t, "t1", tasks[1].ID)
}

func TestUpdateTaskOwnershipConflation(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.SaveTask(ctx, &models.Task{ID: "t1", UserID: "alice", Title: "hers"}))

	title := "changed"
	_, err := s.UpdateTask(ctx, "t1", "bob", storage.TaskUpdate{Title: &title})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.UpdateTask(ctx, "missing", "alice", storage.TaskUpdate{Title: &title})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	updated, err := s.UpdateTask(ctx, "t1", "alice", storage.TaskUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Title)
}

func TestUpdateTaskLeavesNilFieldsAlone(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.SaveTask(ctx, &models.Task{
		ID:          "t1",
		UserID:      "alice",
		Title:       "title",
		Description: "desc",
		Category:    models.CategoryWork,
	}))

	completed := true
	updated, err := s.UpdateTask(ctx, "t1", "alice", storage.TaskUpdate{Completed: &completed})
	require.NoError(t, err)
	assert.Equal(t, "title", updated.Title)
	assert.Equal(t, "desc", updated.Description)
	assert.Equal(t, models.CategoryWork, updated.Category)
	assert.True(t, updated.Completed)
}

func TestDeleteTaskOwnershipConflation(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.SaveTask(ctx, &models.Task{ID: "t1", UserID: "alice"}))

	assert.ErrorIs(t, s.DeleteTask(ctx, "t1", "bob"), storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteTask(ctx, "missing", "alice"), storage.ErrNotFound)

	require.NoError(t, s.DeleteTask(ctx, "t1", "alice"))
	assert.ErrorIs(t, s.DeleteTask(ctx, "t1", "alice"), storage.ErrNotFound)
}

func TestStoredCopiesAreIsolated(t *testing.T) {
	s := New()
	ctx := context.Background()

	task := &models.Task{ID: "t1", UserID: "alice", Title: "original"}
	require.NoError(t, s.SaveTask(ctx, task))

	// Mutating the caller's struct must not leak into storage.
	task.Title = "mutated"

	tasks, err := s.TasksByUserID(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "original", tasks[0].Title)
}
