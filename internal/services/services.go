package services

import (
	"context"
	"errors"
	"time"

	"github.com/avdeyev/taskboard/internal/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUsernameTaken        = errors.New("username already exists")
	ErrEmailTaken           = errors.New("email already exists")
	ErrUserPasswordMismatch = errors.New("user password mismatch")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTaskNotFound         = errors.New("task not found")
)

type AuthService interface {
	// Register creates the user with a hashed password and sends a
	// best-effort welcome email (a delivery failure never fails the
	// registration).
	//
	// It returns ErrUsernameTaken or ErrEmailTaken when the respective
	// field is already in use; both are checked independently.
	Register(ctx context.Context, params RegisterParams) (*models.User, error)

	// Authenticate verifies the credentials and issues a signed token.
	//
	// It returns ErrUserNotFound if the username is unknown or
	// ErrUserPasswordMismatch if the password doesn't verify.
	Authenticate(ctx context.Context, username, password string) (*AuthResult, error)

	// Verify resolves a bearer token to the user it encodes. The user
	// must still exist; any parse, signature, expiry or lookup failure
	// is ErrInvalidToken.
	Verify(ctx context.Context, token string) (*models.User, error)
}

type RegisterParams struct {
	Username string
	Email    string
	Password string
}

type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

type TaskService interface {
	// Create appends the task at the end of the user's ordering
	// (position max+1, or 1 for the first task).
	Create(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// List returns the user's tasks ordered by position; ties break
	// by insertion order.
	List(ctx context.Context, userID int64) ([]*models.Task, error)

	// Update applies the set fields to the task. A task that doesn't
	// exist or belongs to another user is ErrTaskNotFound.
	Update(ctx context.Context, params UpdateTaskParams) (*models.Task, error)

	// Delete removes the task and synchronously repacks the remaining
	// positions to a dense 1..N.
	Delete(ctx context.Context, id, userID int64) error

	// Reorder assigns positions 1..K to the supplied ids in order,
	// silently skipping ids that don't exist or aren't owned by the
	// user. Omitted tasks keep their prior positions; no repack.
	Reorder(ctx context.Context, userID int64, orderedIDs []int64) error
}

type CreateTaskParams struct {
	UserID      int64
	Title       string
	Description string
	Important   bool
	DueDate     *time.Time
}

// UpdateTaskParams carries partial updates: nil pointers mean "leave
// unchanged". DueDate is only applied when DueDateSet is true, so an
// explicit null (clear) is distinguishable from an absent field.
type UpdateTaskParams struct {
	ID          int64
	UserID      int64
	Title       *string
	Description *string
	Completed   *bool
	Important   *bool
	Position    *int
	DueDate     *time.Time
	DueDateSet  bool
}

type MailService interface {
	// SendWelcomeEmail delivers the post-registration greeting.
	SendWelcomeEmail(username, email string) error
}
