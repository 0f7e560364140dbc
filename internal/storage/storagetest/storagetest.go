// Package storagetest holds the behavioural suite every storage.Store
// implementation must pass.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/adanyl0v/project-tracker/internal/models"
	"github.com/adanyl0v/project-tracker/internal/storage"
)

// Run exercises the store against the storage.Store contract. Records
// are created under fresh users, so the suite can run against a shared
// database.
func Run(t *testing.T, store storage.Store) {
	t.Helper()

	ctx := context.Background()
	if err := store.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if err := store.Connect(ctx); err != nil {
		t.Fatalf("Second Connect failed: %v", err)
	}
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	t.Run("Users", func(t *testing.T) { testUsers(t, store) })
	t.Run("Projects", func(t *testing.T) { testProjects(t, store) })
	t.Run("CascadeDelete", func(t *testing.T) { testCascadeDelete(t, store) })
	t.Run("CreateTask", func(t *testing.T) { testCreateTask(t, store) })
	t.Run("ListTasks", func(t *testing.T) { testListTasks(t, store) })
	t.Run("UpdateAndDeleteTask", func(t *testing.T) { testUpdateAndDeleteTask(t, store) })
}

func newUser(t *testing.T, store storage.Store) *models.User {
	t.Helper()

	user := &models.User{
		Email:    uuid.NewString() + "@storagetest.io",
		Password: "hash",
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func newProject(t *testing.T, store storage.Store, userID, title string) *models.Project {
	t.Helper()

	project := &models.Project{
		UserID:      userID,
		Title:       title,
		Description: title + " description",
	}
	if err := store.CreateProject(context.Background(), project); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	return project
}

func newTask(t *testing.T, store storage.Store, userID, projectID, title string, status models.TaskStatus) *models.Task {
	t.Helper()

	task := &models.Task{
		UserID:      userID,
		Project:     models.ProjectID(projectID),
		Title:       title,
		Description: title + " description",
		Status:      status,
		DueDate:     time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
	}
	if err := store.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	return task
}

func listTasks(t *testing.T, store storage.Store, userID string, filter storage.TaskFilter, sort storage.TaskSort) []*models.Task {
	t.Helper()

	tasks, err := store.ListTasks(context.Background(), userID, filter, sort)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	return tasks
}

func testUsers(t *testing.T, store storage.Store) {
	ctx := context.Background()
	user := newUser(t, store)
	if user.ID == "" {
		t.Fatal("Expected CreateUser to assign an id")
	}

	duplicate := &models.User{Email: user.Email, Password: "other"}
	if err := store.CreateUser(ctx, duplicate); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists, got %v", err)
	}

	byID, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Email != user.Email || byID.Password != "" {
		t.Errorf("Unexpected user by id: %+v", byID)
	}

	byEmail, err := store.GetUserByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID || byEmail.Password != "hash" {
		t.Errorf("Unexpected user by email: %+v", byEmail)
	}

	if _, err := store.GetUserByID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetUserByEmail(ctx, "missing@storagetest.io"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func testProjects(t *testing.T, store storage.Store) {
	ctx := context.Background()
	owner := newUser(t, store)
	stranger := newUser(t, store)

	first := newProject(t, store, owner.ID, "first")
	second := newProject(t, store, owner.ID, "second")

	projects, err := store.ListProjects(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(projects) != 2 || projects[0].ID != second.ID || projects[1].ID != first.ID {
		t.Errorf("Expected [second, first], got %d projects", len(projects))
	}

	projects, err = store.ListProjects(ctx, stranger.ID)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(projects) != 0 {
		t.Errorf("Expected stranger to see no projects, got %d", len(projects))
	}

	if _, err := store.GetProject(ctx, stranger.ID, first.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for foreign get, got %v", err)
	}
	if _, err := store.GetProject(ctx, owner.ID, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing id, got %v", err)
	}

	foreignUpdate := &models.Project{ID: first.ID, UserID: stranger.ID, Title: "x", Description: "y"}
	if err := store.UpdateProject(ctx, foreignUpdate); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for foreign update, got %v", err)
	}

	update := &models.Project{ID: first.ID, UserID: owner.ID, Title: "renamed", Description: "new"}
	if err := store.UpdateProject(ctx, update); err != nil {
		t.Fatalf("UpdateProject failed: %v", err)
	}
	if update.Title != "renamed" || update.CreatedAt.IsZero() {
		t.Errorf("Unexpected updated project: %+v", update)
	}

	got, err := store.GetProject(ctx, owner.ID, first.ID)
	if err != nil {
		t.Fatalf("GetProject failed: %v", err)
	}
	if got.Title != "renamed" || got.Description != "new" {
		t.Errorf("Expected stored update, got %+v", got)
	}
}

func testCascadeDelete(t *testing.T, store storage.Store) {
	ctx := context.Background()
	owner := newUser(t, store)
	stranger := newUser(t, store)

	doomed := newProject(t, store, owner.ID, "doomed")
	kept := newProject(t, store, owner.ID, "kept")
	newTask(t, store, owner.ID, doomed.ID, "a", models.StatusTodo)
	newTask(t, store, owner.ID, doomed.ID, "b", models.StatusDone)
	survivor := newTask(t, store, owner.ID, kept.ID, "c", models.StatusTodo)

	if err := store.DeleteProject(ctx, stranger.ID, doomed.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for foreign delete, got %v", err)
	}
	if err := store.DeleteProject(ctx, owner.ID, doomed.ID); err != nil {
		t.Fatalf("DeleteProject failed: %v", err)
	}

	tasks := listTasks(t, store, owner.ID, storage.TaskFilter{}, storage.TaskSort{})
	if len(tasks) != 1 || tasks[0].ID != survivor.ID {
		t.Errorf("Expected only %q to remain, got %d tasks", survivor.ID, len(tasks))
	}
	if orphans := listTasks(t, store, owner.ID, storage.TaskFilter{ProjectID: doomed.ID}, storage.TaskSort{}); len(orphans) != 0 {
		t.Errorf("Expected no orphaned tasks, got %d", len(orphans))
	}

	if err := store.DeleteProject(ctx, owner.ID, doomed.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func testCreateTask(t *testing.T, store storage.Store) {
	ctx := context.Background()
	owner := newUser(t, store)
	stranger := newUser(t, store)
	project := newProject(t, store, owner.ID, "Launch")

	task := newTask(t, store, owner.ID, project.ID, "Q1", models.StatusTodo)
	summary, ok := task.Project.(models.ProjectSummary)
	if !ok || summary.ID != project.ID || summary.Title != "Launch" {
		t.Errorf("Expected expanded project, got %#v", task.Project)
	}
	if task.ID == "" || task.CreatedAt.IsZero() {
		t.Error("Expected id and timestamps to be assigned")
	}

	got, err := store.GetTask(ctx, owner.ID, task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Title != "Q1" || got.Status != models.StatusTodo || got.ProjectID() != project.ID {
		t.Errorf("Unexpected stored task: %+v", got)
	}
	if !got.DueDate.Equal(task.DueDate) {
		t.Errorf("Expected due date %v, got %v", task.DueDate, got.DueDate)
	}

	foreign := &models.Task{
		UserID:      stranger.ID,
		Project:     models.ProjectID(project.ID),
		Title:       "intruder",
		Description: "d",
		Status:      models.StatusTodo,
		DueDate:     task.DueDate,
	}
	if err := store.CreateTask(ctx, foreign); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for foreign project, got %v", err)
	}
	if tasks := listTasks(t, store, stranger.ID, storage.TaskFilter{}, storage.TaskSort{}); len(tasks) != 0 {
		t.Errorf("Expected nothing persisted for stranger, got %d tasks", len(tasks))
	}

	if _, err := store.GetTask(ctx, stranger.ID, task.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for foreign get, got %v", err)
	}
}

func testListTasks(t *testing.T, store storage.Store) {
	owner := newUser(t, store)
	p1 := newProject(t, store, owner.ID, "p1")
	p2 := newProject(t, store, owner.ID, "p2")
	newTask(t, store, owner.ID, p1.ID, "b", models.StatusTodo)
	newTask(t, store, owner.ID, p1.ID, "a", models.StatusDone)
	newTask(t, store, owner.ID, p2.ID, "a", models.StatusInProgress)
	newTask(t, store, owner.ID, p2.ID, "c", models.StatusDone)

	filters := []struct {
		name   string
		filter storage.TaskFilter
		want   int
	}{
		{name: "all", filter: storage.TaskFilter{}, want: 4},
		{name: "project", filter: storage.TaskFilter{ProjectID: p1.ID}, want: 2},
		{name: "status", filter: storage.TaskFilter{Status: models.StatusDone}, want: 2},
		{name: "project and status", filter: storage.TaskFilter{ProjectID: p2.ID, Status: models.StatusDone}, want: 1},
		{name: "unknown status", filter: storage.TaskFilter{Status: "archived"}, want: 0},
	}
	for _, tt := range filters {
		t.Run("filter "+tt.name, func(t *testing.T) {
			if got := listTasks(t, store, owner.ID, tt.filter, storage.TaskSort{}); len(got) != tt.want {
				t.Errorf("Expected %d tasks, got %d", tt.want, len(got))
			}
		})
	}

	fields := []string{
		storage.SortByCreatedAt,
		storage.SortByUpdatedAt,
		storage.SortByDueDate,
		storage.SortByTitle,
		storage.SortByStatus,
	}
	for _, field := range fields {
		t.Run("sort "+field, func(t *testing.T) {
			asc := listTasks(t, store, owner.ID, storage.TaskFilter{}, storage.TaskSort{Field: field})
			desc := listTasks(t, store, owner.ID, storage.TaskFilter{}, storage.TaskSort{Field: field, Descending: true})
			if len(asc) != 4 || len(desc) != 4 {
				t.Fatalf("Expected 4 tasks in both directions, got %d and %d", len(asc), len(desc))
			}
			for i := range asc {
				if asc[i].ID != desc[len(desc)-1-i].ID {
					t.Errorf("Position %d: ascending order does not mirror descending order", i)
				}
			}
		})
	}

	byTitle := listTasks(t, store, owner.ID, storage.TaskFilter{}, storage.TaskSort{Field: storage.SortByTitle})
	if byTitle[0].Title != "a" || byTitle[3].Title != "c" {
		t.Errorf("Expected titles sorted ascending, got %q..%q", byTitle[0].Title, byTitle[3].Title)
	}
	for _, task := range byTitle {
		if _, ok := task.Project.(models.ProjectSummary); !ok {
			t.Errorf("Expected expanded project on task %q, got %T", task.ID, task.Project)
		}
	}
}

func testUpdateAndDeleteTask(t *testing.T, store storage.Store) {
	ctx := context.Background()
	owner := newUser(t, store)
	stranger := newUser(t, store)
	from := newProject(t, store, owner.ID, "from")
	to := newProject(t, store, owner.ID, "to")
	task := newTask(t, store, owner.ID, from.ID, "t", models.StatusTodo)

	update := &models.Task{
		ID:          task.ID,
		UserID:      owner.ID,
		Project:     models.ProjectID(to.ID),
		Title:       "renamed",
		Description: "new",
		Status:      models.StatusDone,
		DueDate:     time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC),
	}
	if err := store.UpdateTask(ctx, update); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	summary, ok := update.Project.(models.ProjectSummary)
	if !ok || summary.ID != to.ID || summary.Title != "to" {
		t.Errorf("Expected task moved to %q, got %#v", to.ID, update.Project)
	}
	if update.Status != models.StatusDone || update.CreatedAt.IsZero() {
		t.Errorf("Unexpected updated task: %+v", update)
	}

	foreign := *update
	foreign.UserID = stranger.ID
	if err := store.UpdateTask(ctx, &foreign); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for foreign update, got %v", err)
	}

	if err := store.DeleteTask(ctx, stranger.ID, task.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for foreign delete, got %v", err)
	}
	if err := store.DeleteTask(ctx, owner.ID, task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if err := store.DeleteTask(ctx, owner.ID, task.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := store.GetProject(ctx, owner.ID, to.ID); err != nil {
		t.Errorf("Expected project to survive task deletion, got %v", err)
	}
}
