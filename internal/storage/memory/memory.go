// Package memory implements storage.Store in process memory. It backs
// the local environment and the test suites of the packages above it.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adanyl0v/project-tracker/internal/models"
	"github.com/adanyl0v/project-tracker/internal/storage"
)

type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	users    map[string]models.User
	projects map[string]models.Project
	tasks    map[string]taskRecord
}

type taskRecord struct {
	models.Task
	projectID string
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		now:      time.Now,
		users:    make(map[string]models.User),
		projects: make(map[string]models.Project),
		tasks:    make(map[string]taskRecord),
	}
}

// WithClock replaces the time source used for record timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Connect(context.Context) error { return nil }
func (s *Store) Ping(context.Context) error    { return nil }
func (s *Store) Migrate(context.Context) error { return nil }
func (s *Store) Close(context.Context) error   { return nil }

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return storage.ErrAlreadyExists
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	user.ID = id.String()
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	u.Password = ""
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

// DeleteUser removes the user record only. It exists so that tests can
// simulate accounts disappearing behind a still valid token.
func (s *Store) DeleteUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

func (s *Store) ListProjects(_ context.Context, userID string) ([]*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects := make([]*models.Project, 0)
	for _, p := range s.projects {
		if p.UserID == userID {
			p := p
			projects = append(projects, &p)
		}
	}
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].ID > projects[j].ID
		}
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

func (s *Store) GetProject(_ context.Context, userID, id string) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok || p.UserID != userID {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}

func (s *Store) CreateProject(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	now := s.now()
	project.ID = id.String()
	project.CreatedAt = now
	project.UpdatedAt = now
	s.projects[project.ID] = *project
	return nil
}

func (s *Store) UpdateProject(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.projects[project.ID]
	if !ok || stored.UserID != project.UserID {
		return storage.ErrNotFound
	}
	stored.Title = project.Title
	stored.Description = project.Description
	stored.UpdatedAt = s.now()
	s.projects[stored.ID] = stored
	*project = stored
	return nil
}

func (s *Store) DeleteProject(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok || p.UserID != userID {
		return storage.ErrNotFound
	}
	for taskID, t := range s.tasks {
		if t.projectID == id {
			delete(s.tasks, taskID)
		}
	}
	delete(s.projects, id)
	return nil
}

func (s *Store) ListTasks(_ context.Context, userID string, filter storage.TaskFilter, taskSort storage.TaskSort) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*models.Task, 0)
	for _, t := range s.tasks {
		if t.UserID != userID {
			continue
		}
		if filter.ProjectID != "" && t.projectID != filter.ProjectID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		tasks = append(tasks, s.expand(t))
	}

	taskSort = storage.NormalizeTaskSort(taskSort)
	sort.Slice(tasks, func(i, j int) bool {
		c := compareTasks(tasks[i], tasks[j], taskSort.Field)
		if c == 0 {
			c = strings.Compare(tasks[i].ID, tasks[j].ID)
		}
		if taskSort.Descending {
			return c > 0
		}
		return c < 0
	})
	return tasks, nil
}

func (s *Store) GetTask(_ context.Context, userID, id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, storage.ErrNotFound
	}
	return s.expand(t), nil
}

func (s *Store) CreateTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	projectID := task.ProjectID()
	p, ok := s.projects[projectID]
	if !ok || p.UserID != task.UserID {
		return storage.ErrNotFound
	}

	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	now := s.now()
	task.ID = id.String()
	task.CreatedAt = now
	task.UpdatedAt = now
	task.Project = p.Summary()
	s.tasks[task.ID] = taskRecord{Task: *task, projectID: projectID}
	return nil
}

func (s *Store) UpdateTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tasks[task.ID]
	if !ok || stored.UserID != task.UserID {
		return storage.ErrNotFound
	}
	stored.Title = task.Title
	stored.Description = task.Description
	stored.Status = task.Status
	stored.DueDate = task.DueDate
	stored.UpdatedAt = s.now()
	stored.projectID = task.ProjectID()
	s.tasks[stored.ID] = stored

	*task = *s.expand(stored)
	return nil
}

func (s *Store) DeleteTask(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return storage.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

// expand must be called with s.mu held.
func (s *Store) expand(t taskRecord) *models.Task {
	task := t.Task
	if p, ok := s.projects[t.projectID]; ok && p.UserID == t.UserID {
		task.Project = p.Summary()
	} else {
		task.Project = models.ProjectID(t.projectID)
	}
	return &task
}

func compareTasks(a, b *models.Task, field string) int {
	switch field {
	case storage.SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case storage.SortByDueDate:
		return a.DueDate.Compare(b.DueDate)
	case storage.SortByTitle:
		return strings.Compare(a.Title, b.Title)
	case storage.SortByStatus:
		return strings.Compare(string(a.Status), string(b.Status))
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}
