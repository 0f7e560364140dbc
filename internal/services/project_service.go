package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/project-tracker/internal/models"
	"github.com/adanyl0v/project-tracker/internal/storage"
)

type projectServiceImpl struct {
	logger zerolog.Logger
	store  storage.Store
}

func NewProjectService(
	logger zerolog.Logger,
	store storage.Store,
) ProjectService {
	return &projectServiceImpl{
		logger: logger,
		store:  store,
	}
}

func (s *projectServiceImpl) ListProjects(ctx context.Context, userID string) ([]*models.Project, error) {
	projects, err := s.store.ListProjects(ctx, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select projects by user id")
		return nil, err
	}

	s.logger.Debug().
		Int("count", len(projects)).
		Str("user_id", userID).
		Msg("projects found")
	return projects, nil
}

func (s *projectServiceImpl) GetProject(ctx context.Context, userID, projectID string) (*models.Project, error) {
	project, err := s.store.GetProject(ctx, userID, projectID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("project_id", projectID).
				Str("user_id", userID).
				Msg("project not found")
			return nil, ErrProjectNotFound
		}

		s.logger.Error().
			Err(err).
			Str("project_id", projectID).
			Msg("failed to select project")
		return nil, err
	}
	return project, nil
}

func (s *projectServiceImpl) CreateProject(ctx context.Context, params CreateProjectParams) (*models.Project, error) {
	project := &models.Project{
		UserID:      params.UserID,
		Title:       strings.TrimSpace(params.Title),
		Description: strings.TrimSpace(params.Description),
	}
	if project.Title == "" || project.Description == "" {
		return nil, newValidationError("Title and description are required")
	}

	err := s.store.CreateProject(ctx, project)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert project")
		return nil, err
	}

	s.logger.Info().
		Str("project_id", project.ID).
		Str("user_id", project.UserID).
		Msg("created project")
	return project, nil
}

func (s *projectServiceImpl) UpdateProject(ctx context.Context, params UpdateProjectParams) (*models.Project, error) {
	project := &models.Project{
		ID:          params.ID,
		UserID:      params.UserID,
		Title:       strings.TrimSpace(params.Title),
		Description: strings.TrimSpace(params.Description),
	}
	if project.Title == "" || project.Description == "" {
		return nil, newValidationError("Title and description are required")
	}

	err := s.store.UpdateProject(ctx, project)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("project_id", project.ID).
				Str("user_id", project.UserID).
				Msg("project not found")
			return nil, ErrProjectNotFound
		}

		s.logger.Error().
			Err(err).
			Str("project_id", project.ID).
			Msg("failed to update project")
		return nil, err
	}

	s.logger.Info().
		Str("project_id", project.ID).
		Str("user_id", project.UserID).
		Msg("updated project")
	return project, nil
}

func (s *projectServiceImpl) DeleteProject(ctx context.Context, userID, projectID string) error {
	err := s.store.DeleteProject(ctx, userID, projectID)
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
			Msg("failed to delete project")
		return err
	}

	s.logger.Info().
		Str("project_id", projectID).
		Str("user_id", userID).
		Msg("deleted project with its tasks")
	return nil
}
