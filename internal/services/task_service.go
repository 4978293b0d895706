package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/avdeyev/taskboard/internal/models"
	"github.com/avdeyev/taskboard/internal/storage"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	tasks  storage.TaskStore
}

func NewTaskService(logger zerolog.Logger, tasks storage.TaskStore) TaskService {
	return &taskServiceImpl{
		logger: logger,
		tasks:  tasks,
	}
}

func (s *taskServiceImpl) Create(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	now := time.Now()
	task := &models.Task{
		UserID:      params.UserID,
		Title:       params.Title,
		Description: params.Description,
		Important:   params.Important,
		DueDate:     params.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.tasks.CreateTask(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("user_id", params.UserID).
			Msg("failed to create task")
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Int("position", task.Position).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) List(ctx context.Context, userID int64) ([]*models.Task, error) {
	tasks, err := s.tasks.ListTasks(ctx, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("user_id", userID).
			Msg("failed to list tasks")
		return nil, err
	}
	return tasks, nil
}

func (s *taskServiceImpl) Update(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	// Fetching by (id, owner) is the ownership check: a task that
	// exists but belongs to someone else is reported as not found.
	task, err := s.tasks.GetTask(ctx, params.ID, params.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if params.Title != nil && *params.Title != "" {
		task.Title = *params.Title
	}
	if params.Description != nil {
		task.Description = *params.Description
	}
	if params.Completed != nil {
		task.Completed = *params.Completed
	}
	if params.Important != nil {
		task.Important = *params.Important
	}
	if params.Position != nil {
		task.Position = *params.Position
	}
	if params.DueDateSet {
		task.DueDate = params.DueDate
	}
	task.UpdatedAt = time.Now()

	err = s.tasks.UpdateTask(ctx, task)
	if err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		s.logger.Error().
			Err(err).
			Int64("task_id", task.ID).
			Msg("failed to update task")
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) Delete(ctx context.Context, id, userID int64) error {
	err := s.tasks.DeleteTask(ctx, id, userID)
	if err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		s.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to delete task")
		return err
	}

	// Every delete repacks so the remaining positions form a dense
	// 1..N immediately.
	err = s.repack(ctx, userID)
	if err != nil {
		return err
	}

	s.logger.Info().
		Int64("task_id", id).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) Reorder(ctx context.Context, userID int64, orderedIDs []int64) error {
	for i, id := range orderedIDs {
		// Ids not owned by the user (or not existing at all) are
		// skipped without error. Tasks omitted from the list keep
		// their prior positions, which may duplicate the reassigned
		// 1..K range until the next repack.
		err := s.tasks.SetTaskPosition(ctx, id, userID, i+1)
		if err != nil {
			s.logger.Error().
				Err(err).
				Int64("task_id", id).
				Msg("failed to set task position")
			return err
		}
	}

	s.logger.Info().
		Int64("user_id", userID).
		Int("count", len(orderedIDs)).
		Msg("reordered tasks")
	return nil
}

// repack reloads the user's tasks ordered by (position, id) and
// reassigns positions 1..N in that order.
func (s *taskServiceImpl) repack(ctx context.Context, userID int64) error {
	tasks, err := s.tasks.ListTasks(ctx, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("user_id", userID).
			Msg("failed to list tasks for repack")
		return err
	}

	for i, task := range tasks {
		if task.Position == i+1 {
			continue
		}
		err = s.tasks.SetTaskPosition(ctx, task.ID, userID, i+1)
		if err != nil {
			s.logger.Error().
				Err(err).
				Int64("task_id", task.ID).
				Msg("failed to repack task position")
			return err
		}
	}
	return nil
}
