package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adanyl0v/project-tracker/internal/models"
	"github.com/adanyl0v/project-tracker/internal/storage"
	"github.com/adanyl0v/project-tracker/internal/storage/storagetest"
)

// steppingClock returns a clock that advances by a second on every call.
func steppingClock() func() time.Time {
	current := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func newProject(t *testing.T, s *Store, userID, title string) *models.Project {
	t.Helper()

	project := &models.Project{UserID: userID, Title: title, Description: title + " description"}
	if err := s.CreateProject(context.Background(), project); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	return project
}

func newTask(t *testing.T, s *Store, userID, projectID, title string, status models.TaskStatus) *models.Task {
	t.Helper()

	task := &models.Task{
		UserID:      userID,
		Project:     models.ProjectID(projectID),
		Title:       title,
		Description: title + " description",
		Status:      status,
		DueDate:     time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := s.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	return task
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.CreateUser(ctx, &models.User{Email: "a@x.io", Password: "hash"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	err := s.CreateUser(ctx, &models.User{Email: "A@x.io", Password: "hash"})
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetUserByIDOmitsPassword(t *testing.T) {
	ctx := context.Background()
	s := New()

	user := &models.User{Email: "a@x.io", Password: "hash"}
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := s.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if got.Password != "" {
		t.Errorf("Expected empty password, got %q", got.Password)
	}

	got, err = s.GetUserByEmail(ctx, "a@x.io")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got.Password != "hash" {
		t.Errorf("Expected password hash, got %q", got.Password)
	}
}

func TestListProjectsNewestFirst(t *testing.T) {
	s := New().WithClock(steppingClock())

	first := newProject(t, s, "u1", "first")
	second := newProject(t, s, "u1", "second")
	newProject(t, s, "u2", "foreign")

	projects, err := s.ListProjects(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("Expected 2 projects, got %d", len(projects))
	}
	if projects[0].ID != second.ID || projects[1].ID != first.ID {
		t.Errorf("Expected newest project first, got %q then %q", projects[0].Title, projects[1].Title)
	}
}

func TestProjectOwnerScoping(t *testing.T) {
	ctx := context.Background()
	s := New()
	project := newProject(t, s, "u1", "mine")

	if _, err := s.GetProject(ctx, "u2", project.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetProject: expected ErrNotFound, got %v", err)
	}

	update := &models.Project{ID: project.ID, UserID: "u2", Title: "x", Description: "y"}
	if err := s.UpdateProject(ctx, update); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateProject: expected ErrNotFound, got %v", err)
	}

	if err := s.DeleteProject(ctx, "u2", project.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeleteProject: expected ErrNotFound, got %v", err)
	}

	got, err := s.GetProject(ctx, "u1", project.ID)
	if err != nil {
		t.Fatalf("GetProject failed: %v", err)
	}
	if got.Title != "mine" {
		t.Errorf("Expected title to be untouched, got %q", got.Title)
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	ctx := context.Background()
	s := New()
	project := newProject(t, s, "u1", "doomed")
	other := newProject(t, s, "u1", "kept")
	newTask(t, s, "u1", project.ID, "a", models.StatusTodo)
	newTask(t, s, "u1", project.ID, "b", models.StatusDone)
	kept := newTask(t, s, "u1", other.ID, "c", models.StatusTodo)

	if err := s.DeleteProject(ctx, "u1", project.ID); err != nil {
		t.Fatalf("DeleteProject failed: %v", err)
	}

	tasks, err := s.ListTasks(ctx, "u1", storage.TaskFilter{}, storage.TaskSort{})
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != kept.ID {
		t.Errorf("Expected only task %q to survive, got %d tasks", kept.ID, len(tasks))
	}

	if err := s.DeleteProject(ctx, "u1", project.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCreateTaskRequiresOwnedProject(t *testing.T) {
	ctx := context.Background()
	s := New()
	project := newProject(t, s, "u1", "mine")

	task := &models.Task{UserID: "u2", Project: models.ProjectID(project.ID), Title: "x", Status: models.StatusTodo}
	if err := s.CreateTask(ctx, task); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	tasks, err := s.ListTasks(ctx, "u2", storage.TaskFilter{}, storage.TaskSort{})
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("Expected no tasks to be persisted, got %d", len(tasks))
	}
}

func TestCreateTaskExpandsProject(t *testing.T) {
	s := New()
	project := newProject(t, s, "u1", "Launch")
	task := newTask(t, s, "u1", project.ID, "Q1", models.StatusTodo)

	summary, ok := task.Project.(models.ProjectSummary)
	if !ok {
		t.Fatalf("Expected expanded project, got %T", task.Project)
	}
	if summary.ID != project.ID || summary.Title != "Launch" {
		t.Errorf("Unexpected project summary: %+v", summary)
	}
}

func TestListTasksFilters(t *testing.T) {
	ctx := context.Background()
	s := New()
	p1 := newProject(t, s, "u1", "p1")
	p2 := newProject(t, s, "u1", "p2")
	newTask(t, s, "u1", p1.ID, "a", models.StatusTodo)
	newTask(t, s, "u1", p1.ID, "b", models.StatusDone)
	newTask(t, s, "u1", p2.ID, "c", models.StatusDone)

	tests := []struct {
		name   string
		filter storage.TaskFilter
		want   int
	}{
		{name: "no filter", filter: storage.TaskFilter{}, want: 3},
		{name: "by project", filter: storage.TaskFilter{ProjectID: p1.ID}, want: 2},
		{name: "by status", filter: storage.TaskFilter{Status: models.StatusDone}, want: 2},
		{name: "by project and status", filter: storage.TaskFilter{ProjectID: p1.ID, Status: models.StatusDone}, want: 1},
		{name: "unknown status", filter: storage.TaskFilter{Status: "archived"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := s.ListTasks(ctx, "u1", tt.filter, storage.TaskSort{})
			if err != nil {
				t.Fatalf("ListTasks failed: %v", err)
			}
			if len(tasks) != tt.want {
				t.Errorf("Expected %d tasks, got %d", tt.want, len(tasks))
			}
		})
	}
}

func TestListTasksSortDirectionsAreReverses(t *testing.T) {
	ctx := context.Background()
	s := New().WithClock(func() time.Time {
		return time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	})
	project := newProject(t, s, "u1", "p")
	newTask(t, s, "u1", project.ID, "same", models.StatusTodo)
	newTask(t, s, "u1", project.ID, "same", models.StatusTodo)
	newTask(t, s, "u1", project.ID, "other", models.StatusDone)

	for _, field := range []string{storage.SortByCreatedAt, storage.SortByTitle, storage.SortByStatus, "bogus"} {
		t.Run(field, func(t *testing.T) {
			asc, err := s.ListTasks(ctx, "u1", storage.TaskFilter{}, storage.TaskSort{Field: field})
			if err != nil {
				t.Fatalf("ListTasks failed: %v", err)
			}
			desc, err := s.ListTasks(ctx, "u1", storage.TaskFilter{}, storage.TaskSort{Field: field, Descending: true})
			if err != nil {
				t.Fatalf("ListTasks failed: %v", err)
			}

			if len(asc) != len(desc) {
				t.Fatalf("Expected equal lengths, got %d and %d", len(asc), len(desc))
			}
			for i := range asc {
				if asc[i].ID != desc[len(desc)-1-i].ID {
					t.Errorf("Position %d: ascending %q does not mirror descending %q", i, asc[i].ID, desc[len(desc)-1-i].ID)
				}
			}
		})
	}
}

func TestGetTaskFallsBackToBareProjectID(t *testing.T) {
	ctx := context.Background()
	s := New()
	project := newProject(t, s, "u1", "p")
	task := newTask(t, s, "u1", project.ID, "t", models.StatusTodo)

	// Simulate a dangling reference left behind by an interrupted delete.
	s.mu.Lock()
	delete(s.projects, project.ID)
	s.mu.Unlock()

	got, err := s.GetTask(ctx, "u1", task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if ref, ok := got.Project.(models.ProjectID); !ok || string(ref) != project.ID {
		t.Errorf("Expected bare project id %q, got %#v", project.ID, got.Project)
	}
}

func TestUpdateTaskKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := New().WithClock(steppingClock())
	project := newProject(t, s, "u1", "p")
	task := newTask(t, s, "u1", project.ID, "t", models.StatusTodo)

	update := &models.Task{
		ID:          task.ID,
		UserID:      "u1",
		Project:     models.ProjectID(project.ID),
		Title:       "renamed",
		Description: "d",
		Status:      models.StatusDone,
		DueDate:     task.DueDate,
	}
	if err := s.UpdateTask(ctx, update); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	if !update.CreatedAt.Equal(task.CreatedAt) {
		t.Errorf("Expected CreatedAt %v, got %v", task.CreatedAt, update.CreatedAt)
	}
	if !update.UpdatedAt.After(task.UpdatedAt) {
		t.Errorf("Expected UpdatedAt to move forward")
	}
	if update.Title != "renamed" || update.Status != models.StatusDone {
		t.Errorf("Unexpected updated task: %+v", update)
	}
}

func TestDeleteTaskOwnerScoped(t *testing.T) {
	ctx := context.Background()
	s := New()
	project := newProject(t, s, "u1", "p")
	task := newTask(t, s, "u1", project.ID, "t", models.StatusTodo)

	if err := s.DeleteTask(ctx, "u2", task.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for foreign delete, got %v", err)
	}
	if err := s.DeleteTask(ctx, "u1", task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if _, err := s.GetTask(ctx, "u1", task.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, New())
}
