package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/avdeyev/taskboard/internal/models"
	"github.com/avdeyev/taskboard/internal/storage"
)

type TaskStore struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewTaskStore(logger zerolog.Logger, pgPool *pgxpool.Pool) *TaskStore {
	return &TaskStore{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *TaskStore) CreateTask(ctx context.Context, task *models.Task) error {
	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Locking the owner row serializes same-user appends, so two
	// concurrent creates can't both read the same MAX(position).
	const lockUserQuery = `
SELECT id
FROM users
WHERE id = $1
FOR UPDATE
`
	var lockedID int64
	err = tx.QueryRow(ctx, lockUserQuery, task.UserID).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Msg("failed to lock user row")
		return err
	}

	const insertTaskQuery = `
INSERT INTO tasks (user_id,
                   title,
                   description,
                   completed,
                   important,
                   "position",
                   due_date,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5,
        COALESCE((SELECT MAX("position") FROM tasks WHERE user_id = $1), 0) + 1,
        $6, $7, $8)
RETURNING id, "position"
`
	err = tx.QueryRow(
		ctx,
		insertTaskQuery,
		task.UserID,
		task.Title,
		task.Description,
		task.Completed,
		task.Important,
		task.DueDate,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(
		&task.ID,
		&task.Position,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return err
	}
	s.logger.Debug().
		Int64("task_id", task.ID).
		Int("position", task.Position).
		Msg("inserted task")

	return nil
}

func (s *TaskStore) GetTask(ctx context.Context, id, userID int64) (*models.Task, error) {
	const selectTaskQuery = `
SELECT id,
       user_id,
       title,
       description,
       completed,
       important,
       "position",
       due_date,
       created_at,
       updated_at
FROM tasks
WHERE id = $1 AND user_id = $2
`
	task := new(models.Task)
	err := s.pgPool.QueryRow(
		ctx,
		selectTaskQuery,
		id,
		userID,
	).Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Completed,
		&task.Important,
		&task.Position,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Msg("failed to select task")
		return nil, err
	}
	return task, nil
}

func (s *TaskStore) ListTasks(ctx context.Context, userID int64) ([]*models.Task, error) {
	// The secondary key on id breaks position ties deterministically
	// in insertion order.
	const selectTasksQuery = `
SELECT id,
       user_id,
       title,
       description,
       completed,
       important,
       "position",
       due_date,
       created_at,
       updated_at
FROM tasks
WHERE user_id = $1
ORDER BY "position" ASC, id ASC
`
	rows, err := s.pgPool.Query(ctx, selectTasksQuery, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task := new(models.Task)
		err = rows.Scan(
			&task.ID,
			&task.UserID,
			&task.Title,
			&task.Description,
			&task.Completed,
			&task.Important,
			&task.Position,
			&task.DueDate,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	return tasks, nil
}

func (s *TaskStore) UpdateTask(ctx context.Context, task *models.Task) error {
	const updateTaskQuery = `
UPDATE tasks
SET title = $1,
    description = $2,
    completed = $3,
    important = $4,
    "position" = $5,
    due_date = $6,
    updated_at = $7
WHERE id = $8 AND user_id = $9
`
	tag, err := s.pgPool.Exec(
		ctx,
		updateTaskQuery,
		task.Title,
		task.Description,
		task.Completed,
		task.Important,
		task.Position,
		task.DueDate,
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to update task")
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrTaskNotFound
	}
	return nil
}

func (s *TaskStore) SetTaskPosition(ctx context.Context, id, userID int64, position int) error {
	// Zero rows affected is not an error: ids not owned by the user
	// are skipped silently.
	const setPositionQuery = `
UPDATE tasks
SET "position" = $1,
    updated_at = now()
WHERE id = $2 AND user_id = $3
`
	_, err := s.pgPool.Exec(
		ctx,
		setPositionQuery,
		position,
		id,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to set task position")
		return err
	}
	return nil
}

func (s *TaskStore) DeleteTask(ctx context.Context, id, userID int64) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1 AND user_id = $2
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteTaskQuery,
		id,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrTaskNotFound
	}
	s.logger.Debug().
		Int64("task_id", id).
		Msg("deleted task")

	return nil
}
