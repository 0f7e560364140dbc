package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/adanyl0v/project-tracker/internal/models"
	"github.com/adanyl0v/project-tracker/internal/storage"
)

func (s *Store) ListProjects(ctx context.Context, userID string) ([]*models.Project, error) {
	pool, err := s.pool()
	if err != nil {
		return nil, err
	}

	const selectProjectsByUserIDQuery = `
SELECT id,
       title,
       description,
       created_at,
       updated_at
FROM projects
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
`
	rows, err := pool.Query(
		ctx,
		selectProjectsByUserIDQuery,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to select projects by user id: %w", err)
	}
	defer rows.Close()

	projects := make([]*models.Project, 0)
	for rows.Next() {
		project := &models.Project{UserID: userID}
		err = rows.Scan(
			&project.ID,
			&project.Title,
			&project.Description,
			&project.CreatedAt,
			&project.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}

	s.logger.Debug().
		Int("count", len(projects)).
		Str("user_id", userID).
		Msg("selected projects by user id")
	return projects, nil
}

func (s *Store) GetProject(ctx context.Context, userID, id string) (*models.Project, error) {
	pool, err := s.pool()
	if err != nil {
		return nil, err
	}

	project := &models.Project{
		ID:     id,
		UserID: userID,
	}

	const selectProjectQuery = `
SELECT title,
       description,
       created_at,
       updated_at
FROM projects
WHERE id = $1 AND user_id = $2
`
	err = pool.QueryRow(
		ctx,
		selectProjectQuery,
		project.ID,
		project.UserID,
	).Scan(
		&project.Title,
		&project.Description,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select project: %w", err)
	}
	return project, nil
}

func (s *Store) CreateProject(ctx context.Context, project *models.Project) error {
	pool, err := s.pool()
	if err != nil {
		return err
	}

	projectUUID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate project uuid: %w", err)
	}

	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	const insertProjectQuery = `
INSERT INTO projects (id,
                      user_id,
                      title,
                      description,
                      created_at,
                      updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err = pool.Exec(
		ctx,
		insertProjectQuery,
		projectUUID.String(),
		project.UserID,
		project.Title,
		project.Description,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}

	project.ID = projectUUID.String()
	s.logger.Debug().
		Str("project_id", project.ID).
		Msg("inserted project")
	return nil
}

func (s *Store) UpdateProject(ctx context.Context, project *models.Project) error {
	pool, err := s.pool()
	if err != nil {
		return err
	}

	project.UpdatedAt = time.Now()

	const updateProjectQuery = `
UPDATE projects
SET title = $1,
    description = $2,
    updated_at = $3
WHERE id = $4 AND user_id = $5
RETURNING created_at
`
	err = pool.QueryRow(
		ctx,
		updateProjectQuery,
		project.Title,
		project.Description,
		project.UpdatedAt,
		project.ID,
		project.UserID,
	).Scan(&project.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("failed to update project: %w", err)
	}

	s.logger.Debug().
		Str("project_id", project.ID).
		Msg("updated project")
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, userID, id string) error {
	pool, err := s.pool()
	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the project row first so that a concurrent task insert
	// waits for the cascade to finish and then finds no project.
	const lockProjectQuery = `
SELECT 1
FROM projects
WHERE id = $1 AND user_id = $2
FOR UPDATE
`
	var one int
	err = tx.QueryRow(
		ctx,
		lockProjectQuery,
		id,
		userID,
	).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("failed to lock project: %w", err)
	}

	const deleteTasksByProjectIDQuery = `
DELETE FROM tasks
WHERE project_id = $1
`
	tag, err := tx.Exec(
		ctx,
		deleteTasksByProjectIDQuery,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete tasks by project id: %w", err)
	}
	s.logger.Debug().
		Str("project_id", id).
		Int64("affected", tag.RowsAffected()).
		Msg("deleted tasks by project id")

	const deleteProjectQuery = `
DELETE FROM projects
WHERE id = $1 AND user_id = $2
`
	_, err = tx.Exec(
		ctx,
		deleteProjectQuery,
		id,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	err = tx.Commit(ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug().
		Str("project_id", id).
		Msg("deleted project")
	return nil
}
