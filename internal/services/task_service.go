package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/project-tracker/internal/models"
	"github.com/adanyl0v/project-tracker/internal/storage"
)

const requiredTaskFieldsMessage = "Title, description, due date, and project ID are required"

type taskServiceImpl struct {
	logger zerolog.Logger
	store  storage.Store
}

func NewTaskService(
	logger zerolog.Logger,
	store storage.Store,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		store:  store,
	}
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, params ListTasksParams) ([]*models.Task, error) {
	filter := storage.TaskFilter{
		ProjectID: params.ProjectID,
		Status:    params.Status,
	}
	sort := params.sort()

	tasks, err := s.store.ListTasks(ctx, params.UserID, filter, sort)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", params.UserID).
			Msg("failed to select tasks")
		return nil, err
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Str("user_id", params.UserID).
		Str("sort_by", sort.Field).
		Bool("descending", sort.Descending).
		Msg("tasks found")
	return tasks, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	task, err := s.store.GetTask(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("task_id", taskID).
				Str("user_id", userID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select task")
		return nil, err
	}
	return task, nil
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	task := &models.Task{
		UserID:      params.UserID,
		Project:     models.ProjectID(strings.TrimSpace(params.ProjectID)),
		Title:       strings.TrimSpace(params.Title),
		Description: strings.TrimSpace(params.Description),
		Status:      params.Status,
		DueDate:     params.DueDate,
	}
	err := validateTask(task)
	if err != nil {
		return nil, err
	}

	if task.Status == "" {
		task.Status = models.StatusTodo
	} else if !task.Status.Valid() {
		return nil, newValidationError("Invalid task status")
	}

	err = s.ensureProject(ctx, task.UserID, task.ProjectID())
	if err != nil {
		return nil, err
	}

	err = s.store.CreateTask(ctx, task)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("project_id", task.ProjectID()).
				Msg("project disappeared before task insert")
			return nil, ErrProjectNotFound
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("project_id", task.ProjectID()).
		Str("user_id", task.UserID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	task := &models.Task{
		ID:          params.ID,
		UserID:      params.UserID,
		Project:     models.ProjectID(strings.TrimSpace(params.ProjectID)),
		Title:       strings.TrimSpace(params.Title),
		Description: strings.TrimSpace(params.Description),
		DueDate:     params.DueDate,
	}
	err := validateTask(task)
	if err != nil {
		return nil, err
	}
	if params.Status != nil && !params.Status.Valid() {
		return nil, newValidationError("Invalid task status")
	}

	err = s.ensureProject(ctx, task.UserID, task.ProjectID())
	if err != nil {
		return nil, err
	}

	current, err := s.GetTask(ctx, task.UserID, task.ID)
	if err != nil {
		return nil, err
	}
	task.Status = current.Status
	if params.Status != nil {
		task.Status = *params.Status
	}

	err = s.store.UpdateTask(ctx, task)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("task_id", task.ID).
				Str("user_id", task.UserID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to update task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, userID, taskID string) error {
	err := s.store.DeleteTask(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("task_id", taskID).
				Str("user_id", userID).
				Msg("task not found")
			return ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		return err
	}

	s.logger.Info().
		Str("task_id", taskID).
		Str("user_id", userID).
		Msg("deleted task")
	return nil
}

// ensureProject reports ErrProjectNotFound unless the project
// exists and is owned by the user.
func (s *taskServiceImpl) ensureProject(ctx context.Context, userID, projectID string) error {
	_, err := s.store.GetProject(ctx, userID, projectID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("project_id", projectID).
				Str("user_id", userID).
				Msg("project not found")
			return ErrProjectNotFound
		}

		s.logger.Error().
			Err(err).
			Str("project_id", projectID).
			Msg("failed to select project")
		return err
	}
	return nil
}

func validateTask(task *models.Task) error {
	if task.Title == "" || task.Description == "" || task.DueDate.IsZero() || task.ProjectID() == "" {
		return newValidationError(requiredTaskFieldsMessage)
	}
	return nil
}
