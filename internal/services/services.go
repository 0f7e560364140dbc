package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/adanyl0v/project-tracker/internal/models"
	"github.com/adanyl0v/project-tracker/internal/storage"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrProjectNotFound    = errors.New("project not found")
	ErrTaskNotFound       = errors.New("task not found")
)

// ValidationError reports missing or malformed input.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Message string
}

func newValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type TokenService interface {
	// Issue signs a token identifying the given user. The token
	// expires after the configured TTL.
	Issue(userID string) (token string, expiresAt time.Time, err error)

	// Verify checks the signature, issuer and expiry of the given
	// token and returns its payload.
	//
	// It accepts arbitrary input and returns ErrInvalidToken for
	// every failure, whatever its cause.
	Verify(token string) (*TokenPayload, error)
}

type SessionResolver interface {
	// Resolve returns the user the request is authenticated as.
	//
	// The bearer token of the Authorization header takes priority over
	// the token cookie. It returns a nil user without an error if there
	// is no token, the token is invalid, or its user no longer exists.
	// An error is returned only if the user could not be loaded.
	Resolve(ctx context.Context, r *http.Request) (*models.User, error)
}

type AuthService interface {
	// Register creates a user with the given email and password and
	// issues a token for it.
	//
	// It returns ErrUserAlreadyExists if the email is already taken.
	Register(ctx context.Context, params CredentialsParams) (*AuthResult, error)

	// Login authenticates the user by email and password.
	//
	// It returns ErrInvalidCredentials both for an unknown email and
	// for a password mismatch.
	Login(ctx context.Context, params CredentialsParams) (*AuthResult, error)
}

type ProjectService interface {
	ListProjects(ctx context.Context, userID string) ([]*models.Project, error)
	GetProject(ctx context.Context, userID, projectID string) (*models.Project, error)
	CreateProject(ctx context.Context, params CreateProjectParams) (*models.Project, error)
	UpdateProject(ctx context.Context, params UpdateProjectParams) (*models.Project, error)

	// DeleteProject deletes the project together with all of its tasks.
	DeleteProject(ctx context.Context, userID, projectID string) error
}

type TaskService interface {
	ListTasks(ctx context.Context, params ListTasksParams) ([]*models.Task, error)
	GetTask(ctx context.Context, userID, taskID string) (*models.Task, error)

	// CreateTask returns ErrProjectNotFound if the project does
	// not exist or belongs to another user.
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// UpdateTask replaces the mutable fields of the task. A nil status
	// keeps the current one.
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)
	DeleteTask(ctx context.Context, userID, taskID string) error
}

type TokenPayload struct {
	UserID    string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type CredentialsParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	User           *models.User
	Token          string
	TokenExpiresAt time.Time
}

type CreateProjectParams struct {
	UserID      string
	Title       string
	Description string
}

type UpdateProjectParams struct {
	ID          string
	UserID      string
	Title       string
	Description string
}

type ListTasksParams struct {
	UserID    string
	ProjectID string
	Status    models.TaskStatus
	SortBy    string
	// SortOrder is either "asc" or "desc". Empty means "desc".
	SortOrder string
}

type CreateTaskParams struct {
	UserID      string
	ProjectID   string
	Title       string
	Description string
	// Status defaults to models.StatusTodo when empty.
	Status  models.TaskStatus
	DueDate time.Time
}

type UpdateTaskParams struct {
	ID          string
	UserID      string
	ProjectID   string
	Title       string
	Description string
	Status      *models.TaskStatus
	DueDate     time.Time
}

func (p ListTasksParams) sort() storage.TaskSort {
	return storage.NormalizeTaskSort(storage.TaskSort{
		Field:      p.SortBy,
		Descending: p.SortOrder == "" || p.SortOrder == "desc",
	})
}
