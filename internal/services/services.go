package services

import (
	"context"
	"errors"

	"github.com/avdeenkov/go-task-manager/internal/models"
)

var (
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingOwner       = errors.New("user id is required")
	ErrEmptyTitle         = errors.New("title must not be empty")
	ErrInvalidCategory    = errors.New("unknown task category")
	ErrInvalidStatus      = errors.New("unknown task status")
	ErrTaskNotFound       = errors.New("task not found or unauthorized")
)

type AuthService interface {
	// Signup hashes the password, generates a unique ID and
	// persists a new user.
	//
	// It returns ErrEmailTaken if a user with the given
	// email already exists.
	Signup(ctx context.Context, params SignupParams) (*AuthResult, error)

	// Login authenticates the user by email and password.
	//
	// An unknown email and a wrong password both return
	// ErrInvalidCredentials so a caller cannot tell which
	// of the two was wrong.
	Login(ctx context.Context, params LoginParams) (*AuthResult, error)

	// ParseToken validates a signed auth token and
	// returns the user ID it was issued for.
	ParseToken(token string) (string, error)
}

type TaskService interface {
	// Create persists a new task owned by the given user.
	//
	// It returns ErrMissingOwner if the owner is empty, ErrEmptyTitle if
	// the title trims to nothing and ErrInvalidCategory outside the
	// closed category set.
	Create(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// ListByUser returns every task owned by the user, newest first.
	// A user without tasks gets an empty slice, not an error.
	ListByUser(ctx context.Context, userID string) ([]*models.Task, error)

	// Update applies the non-nil fields of the given params to the task.
	//
	// It returns ErrTaskNotFound both when the task doesn't exist and
	// when it is owned by another user, so the caller learns nothing
	// about other users' tasks.
	Update(ctx context.Context, params UpdateTaskParams) (*models.Task, error)

	// Delete removes the task permanently. The ownership check and the
	// conflated ErrTaskNotFound are the same as for Update.
	Delete(ctx context.Context, taskID, userID string) error
}

type SignupParams struct {
	Name     string
	Email    string
	Password string
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	UserID string
	Token  string
}

type CreateTaskParams struct {
	UserID      string
	Title       string
	Description string
	Category    string
	Completed   bool
}

type UpdateTaskParams struct {
	ID          string
	UserID      string
	Title       *string
	Description *string
	Category    *string
	Completed   *bool
}
