package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/project-tracker/internal/models"
	"github.com/adanyl0v/project-tracker/internal/storage/memory"
)

const (
	testIssuer     = "project-tracker-test"
	testSigningKey = "0123456789abcdef0123456789abcdef"
	testTokenTTL   = time.Hour
)

var testDueDate = time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)

type testEnv struct {
	store    *memory.Store
	tokens   TokenService
	resolver SessionResolver
	auth     AuthService
	projects ProjectService
	tasks    TaskService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zerolog.Nop()
	current := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	store := memory.New().WithClock(func() time.Time {
		current = current.Add(time.Second)
		return current
	})
	tokens := NewTokenService(logger, testIssuer, []byte(testSigningKey), testTokenTTL)

	return &testEnv{
		store:    store,
		tokens:   tokens,
		resolver: NewSessionResolver(logger, tokens, store),
		auth:     NewAuthService(logger, store, tokens),
		projects: NewProjectService(logger, store),
		tasks:    NewTaskService(logger, store),
	}
}

func (e *testEnv) createProject(t *testing.T, userID, title string) *models.Project {
	t.Helper()

	project, err := e.projects.CreateProject(context.Background(), CreateProjectParams{
		UserID:      userID,
		Title:       title,
		Description: title + " description",
	})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	return project
}

func (e *testEnv) createTask(t *testing.T, userID, projectID, title string, status models.TaskStatus) *models.Task {
	t.Helper()

	task, err := e.tasks.CreateTask(context.Background(), CreateTaskParams{
		UserID:      userID,
		ProjectID:   projectID,
		Title:       title,
		Description: title + " description",
		Status:      status,
		DueDate:     testDueDate,
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	return task
}
