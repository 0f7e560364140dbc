package storage

import (
	"context"
	"errors"

	"github.com/adanyl0v/project-tracker/internal/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Sortable task fields.
const (
	SortByCreatedAt = "createdAt"
	SortByUpdatedAt = "updatedAt"
	SortByDueDate   = "dueDate"
	SortByTitle     = "title"
	SortByStatus    = "status"
)

type TaskFilter struct {
	ProjectID string
	Status    models.TaskStatus
}

type TaskSort struct {
	Field      string
	Descending bool
}

// Store is the persistence contract for users, projects and tasks.
//
// Every project and task operation is scoped to the owning user: a
// record owned by someone else is reported as ErrNotFound exactly like
// a record that does not exist.
type Store interface {
	// Connect establishes the underlying connection if it is not
	// established yet. Calling it on a connected store is a no-op.
	Connect(ctx context.Context) error
	Ping(ctx context.Context) error
	// Migrate creates the tables, collections or indexes the store needs.
	Migrate(ctx context.Context) error
	Close(ctx context.Context) error

	// CreateUser assigns user.ID and returns ErrAlreadyExists
	// if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByID never populates the password hash.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// GetUserByEmail populates the password hash.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	ListProjects(ctx context.Context, userID string) ([]*models.Project, error)
	GetProject(ctx context.Context, userID, id string) (*models.Project, error)
	CreateProject(ctx context.Context, project *models.Project) error
	// UpdateProject replaces title and description of the project
	// matching project.ID and project.UserID and fills the remaining
	// fields from the stored record.
	UpdateProject(ctx context.Context, project *models.Project) error
	// DeleteProject removes the project and every task referencing it.
	DeleteProject(ctx context.Context, userID, id string) error

	// ListTasks and GetTask return tasks with an expanded project
	// reference when the referenced project exists.
	ListTasks(ctx context.Context, userID string, filter TaskFilter, sort TaskSort) ([]*models.Task, error)
	GetTask(ctx context.Context, userID, id string) (*models.Task, error)
	// CreateTask returns ErrNotFound when the referenced project does
	// not exist or belongs to another user.
	CreateTask(ctx context.Context, task *models.Task) error
	// UpdateTask replaces the mutable fields of the task matching
	// task.ID and task.UserID and fills CreatedAt from the stored record.
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, userID, id string) error
}

// NormalizeTaskSort maps unknown sort fields to SortByCreatedAt.
func NormalizeTaskSort(sort TaskSort) TaskSort {
	switch sort.Field {
	case SortByCreatedAt, SortByUpdatedAt, SortByDueDate, SortByTitle, SortByStatus:
	default:
		sort.Field = SortByCreatedAt
	}
	return sort
}
