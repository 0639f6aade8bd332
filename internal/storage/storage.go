package storage

import (
	"context"
	"errors"

	"github.com/avdeenkov/go-task-manager/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// TaskUpdate carries a partial task mutation. Nil fields are left unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	Category    *string
	Completed   *bool
}

type UserStorage interface {
	// SaveUser persists a new user. It returns ErrDuplicateEmail
	// if another user already has the same email.
	SaveUser(ctx context.Context, user *models.User) error

	// UserByEmail returns the user with the given email
	// or ErrNotFound if no such user exists.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
}

type TaskStorage interface {
	// SaveTask persists a new task.
	SaveTask(ctx context.Context, task *models.Task) error

	// TasksByUserID returns every task owned by the given user,
	// newest first. An owner without tasks yields an empty slice.
	TasksByUserID(ctx context.Context, userID string) ([]*models.Task, error)

	// UpdateTask applies the non-nil fields of upd to the task with the
	// given id, but only when it is owned by userID. It returns
	// ErrNotFound when no task matches both the id and the owner, which
	// deliberately hides whether the task exists at all.
	UpdateTask(ctx context.Context, taskID, userID string, upd TaskUpdate) (*models.Task, error)

	// DeleteTask removes the task with the given id when it is owned by
	// userID. Like UpdateTask it returns ErrNotFound for both a missing
	// task and a task owned by somebody else.
	DeleteTask(ctx context.Context, taskID, userID string) error
}
