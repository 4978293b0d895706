package storage

import (
	"context"
	"errors"

	"github.com/avdeyev/taskboard/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")
	ErrTaskNotFound  = errors.New("task not found")
)

type UserStore interface {
	// CreateUser inserts the user and fills in its ID. It returns
	// ErrUsernameTaken or ErrEmailTaken on a uniqueness violation.
	CreateUser(ctx context.Context, user *models.User) error

	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type TaskStore interface {
	// CreateTask inserts the task at position max+1 within the owner's
	// set, filling in the task's ID and Position. Concurrent creates by
	// the same user must never assign the same position twice.
	CreateTask(ctx context.Context, task *models.Task) error

	// GetTask returns the task only if it exists and is owned by userID;
	// any other case is ErrTaskNotFound.
	GetTask(ctx context.Context, id, userID int64) (*models.Task, error)

	// ListTasks returns the user's tasks ordered by (position, id).
	ListTasks(ctx context.Context, userID int64) ([]*models.Task, error)

	UpdateTask(ctx context.Context, task *models.Task) error

	// SetTaskPosition updates the position of the task only if it is
	// owned by userID; otherwise it is a no-op.
	SetTaskPosition(ctx context.Context, id, userID int64, position int) error

	// DeleteTask removes the task, returning ErrTaskNotFound if it does
	// not exist or is owned by someone else.
	DeleteTask(ctx context.Context, id, userID int64) error
}
