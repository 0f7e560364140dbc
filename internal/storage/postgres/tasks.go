package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/adanyl0v/project-tracker/internal/models"
	"github.com/adanyl0v/project-tracker/internal/storage"
)

var taskSortColumns = map[string]string{
	storage.SortByCreatedAt: "t.created_at",
	storage.SortByUpdatedAt: "t.updated_at",
	storage.SortByDueDate:   "t.due_date",
	storage.SortByTitle:     "t.title",
	storage.SortByStatus:    "t.status",
}

const selectTaskColumns = `
SELECT t.id,
       t.project_id,
       t.title,
       t.description,
       t.status,
       t.due_date,
       t.created_at,
       t.updated_at,
       p.title
FROM tasks t
LEFT JOIN projects p ON p.id = t.project_id AND p.user_id = t.user_id
`

func (s *Store) ListTasks(ctx context.Context, userID string, filter storage.TaskFilter, sort storage.TaskSort) ([]*models.Task, error) {
	pool, err := s.pool()
	if err != nil {
		return nil, err
	}

	var query strings.Builder
	query.WriteString(selectTaskColumns)
	query.WriteString("WHERE t.user_id = $1")
	args := []any{userID}

	if filter.ProjectID != "" {
		args = append(args, filter.ProjectID)
		query.WriteString(" AND t.project_id = $" + strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query.WriteString(" AND t.status = $" + strconv.Itoa(len(args)))
	}

	sort = storage.NormalizeTaskSort(sort)
	direction := "ASC"
	if sort.Descending {
		direction = "DESC"
	}
	fmt.Fprintf(&query, "\nORDER BY %s %s, t.id %s", taskSortColumns[sort.Field], direction, direction)

	rows, err := pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task := &models.Task{UserID: userID}
		err = scanTask(rows, task)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Str("user_id", userID).
		Msg("selected tasks")
	return tasks, nil
}

func (s *Store) GetTask(ctx context.Context, userID, id string) (*models.Task, error) {
	pool, err := s.pool()
	if err != nil {
		return nil, err
	}

	task := &models.Task{UserID: userID}
	err = scanTask(pool.QueryRow(
		ctx,
		selectTaskColumns+"WHERE t.id = $1 AND t.user_id = $2",
		id,
		userID,
	), task)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select task: %w", err)
	}
	return task, nil
}

func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	pool, err := s.pool()
	if err != nil {
		return err
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate task uuid: %w", err)
	}

	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	// The row lock on the project serializes the insert
	// with a concurrent cascade delete of that project.
	const insertTaskQuery = `
WITH project AS (SELECT id,
                        user_id,
                        title
                 FROM projects
                 WHERE id = $3 AND user_id = $2
                 FOR SHARE)
INSERT INTO tasks (id,
                   user_id,
                   project_id,
                   title,
                   description,
                   status,
                   due_date,
                   created_at,
                   updated_at)
SELECT $1::text,
       project.user_id,
       project.id,
       $4::text,
       $5::text,
       $6::text,
       $7::timestamptz,
       $8::timestamptz,
       $9::timestamptz
FROM project
RETURNING (SELECT title FROM project)
`
	var projectTitle string
	err = pool.QueryRow(
		ctx,
		insertTaskQuery,
		taskUUID.String(),
		task.UserID,
		task.ProjectID(),
		task.Title,
		task.Description,
		string(task.Status),
		task.DueDate,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&projectTitle)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("failed to insert task: %w", err)
	}

	task.ID = taskUUID.String()
	task.Project = models.ProjectSummary{
		ID:    task.ProjectID(),
		Title: projectTitle,
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("inserted task")
	return nil
}

func (s *Store) UpdateTask(ctx context.Context, task *models.Task) error {
	pool, err := s.pool()
	if err != nil {
		return err
	}

	task.UpdatedAt = time.Now()

	const updateTaskQuery = `
UPDATE tasks
SET title = $1,
    description = $2,
    status = $3,
    due_date = $4,
    project_id = $5,
    updated_at = $6
WHERE id = $7 AND user_id = $8
`
	tag, err := pool.Exec(
		ctx,
		updateTaskQuery,
		task.Title,
		task.Description,
		string(task.Status),
		task.DueDate,
		task.ProjectID(),
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("updated task")

	updated, err := s.GetTask(ctx, task.UserID, task.ID)
	if err != nil {
		return err
	}
	*task = *updated
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, userID, id string) error {
	pool, err := s.pool()
	if err != nil {
		return err
	}

	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1 AND user_id = $2
`
	tag, err := pool.Exec(
		ctx,
		deleteTaskQuery,
		id,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	s.logger.Debug().
		Str("task_id", id).
		Msg("deleted task")
	return nil
}

func scanTask(row pgx.Row, task *models.Task) error {
	var (
		projectID    string
		status       string
		projectTitle *string
	)
	err := row.Scan(
		&task.ID,
		&projectID,
		&task.Title,
		&task.Description,
		&status,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
		&projectTitle,
	)
	if err != nil {
		return err
	}

	task.Status = models.TaskStatus(status)
	if projectTitle != nil {
		task.Project = models.ProjectSummary{
			ID:    projectID,
			Title: *projectTitle,
		}
	} else {
		task.Project = models.ProjectID(projectID)
	}
	return nil
}
