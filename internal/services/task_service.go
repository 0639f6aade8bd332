package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/avdeenkov/go-task-manager/internal/cache"
	"github.com/avdeenkov/go-task-manager/internal/models"
	"github.com/avdeenkov/go-task-manager/internal/storage"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	tasks  storage.TaskStorage
	// Optional task-list cache. A nil cache sends every read to storage.
	cache *cache.TaskCache
}

func NewTaskService(
	logger zerolog.Logger,
	tasks storage.TaskStorage,
	taskCache *cache.TaskCache,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		tasks:  tasks,
		cache:  taskCache,
	}
}

func (s *taskServiceImpl) Create(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	if params.UserID == "" {
		s.logger.Error().Msg("create task without owner")
		return nil, ErrMissingOwner
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		s.logger.Error().
			Str("user_id", params.UserID).
			Msg("create task with empty title")
		return nil, ErrEmptyTitle
	}

	category := params.Category
	if category == "" {
		category = models.CategoryPersonal
	}
	if !models.ValidCategory(category) {
		s.logger.Error().
			Str("category", category).
			Msg("create task with unknown category")
		return nil, ErrInvalidCategory
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}

	now := time.Now()
	task := &models.Task{
		ID:          taskUUID.String(),
		UserID:      params.UserID,
		Title:       title,
		Description: params.Description,
		Category:    category,
		Completed:   params.Completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.tasks.SaveTask(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to save task")
		return nil, err
	}
	s.invalidateCache(ctx, task.UserID)

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) ListByUser(ctx context.Context, userID string) ([]*models.Task, error) {
	if userID == "" {
		s.logger.Error().Msg("list tasks without owner")
		return nil, ErrMissingOwner
	}

	if s.cache != nil {
		if tasks, ok := s.cache.Get(ctx, userID); ok {
			return tasks, nil
		}
	}

	tasks, err := s.tasks.TasksByUserID(ctx, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select tasks by user id")
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, userID, tasks)
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Str("user_id", userID).
		Msg("listed tasks")
	return tasks, nil
}

func (s *taskServiceImpl) Update(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if title == "" {
			return nil, ErrEmptyTitle
		}
		params.Title = &title
	}
	if params.Category != nil && !models.ValidCategory(*params.Category) {
		return nil, ErrInvalidCategory
	}

	task, err := s.tasks.UpdateTask(ctx, params.ID, params.UserID, storage.TaskUpdate{
		Title:       params.Title,
		Description: params.Description,
		Category:    params.Category,
		Completed:   params.Completed,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().
				Str("task_id", params.ID).
				Str("user_id", params.UserID).
				Msg("task not found or unauthorized")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", params.ID).
			Msg("failed to update task")
		return nil, err
	}
	s.invalidateCache(ctx, params.UserID)

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) Delete(ctx context.Context, taskID, userID string) error {
	err := s.tasks.DeleteTask(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().
				Str("task_id", taskID).
				Str("user_id", userID).
				Msg("task not found or unauthorized")
			return ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		return err
	}
	s.invalidateCache(ctx, userID)

	s.logger.Info().
		Str("task_id", taskID).
		Str("user_id", userID).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) invalidateCache(ctx context.Context, userID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
}
