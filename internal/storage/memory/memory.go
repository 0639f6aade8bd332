// Package memory is an in-memory storage backend. It backs tests and
// single-process runs where Postgres would be overkill.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/avdeenkov/go-task-manager/internal/models"
	"github.com/avdeenkov/go-task-manager/internal/storage"
)

type Storage struct {
	mu           sync.RWMutex
	usersByID    map[string]*models.User
	usersByEmail map[string]*models.User
	tasks        map[string]*models.Task
	taskSeq      map[string]uint64
	nextSeq      uint64
}

func New() *Storage {
	return &Storage{
		usersByID:    make(map[string]*models.User),
		usersByEmail: make(map[string]*models.User),
		tasks:        make(map[string]*models.Task),
		taskSeq:      make(map[string]uint64),
	}
}

func (s *Storage) SaveUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[user.Email]; exists {
		return storage.ErrDuplicateEmail
	}

	stored := *user
	s.usersByID[stored.ID] = &stored
	s.usersByEmail[stored.Email] = &stored
	return nil
}

func (s *Storage) UserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.usersByEmail[email]
	if !exists {
		return nil, storage.ErrNotFound
	}

	found := *user
	return &found, nil
}

func (s *Storage) SaveTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *task
	s.tasks[stored.ID] = &stored
	s.nextSeq++
	s.taskSeq[stored.ID] = s.nextSeq
	return nil
}

func (s *Storage) TasksByUserID(_ context.Context, userID string) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*models.Task, 0)
	for _, task := range s.tasks {
		if task.UserID != userID {
			continue
		}
		found := *task
		tasks = append(tasks, &found)
	}

	// Newest first, insertion order breaking timestamp ties.
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return s.taskSeq[tasks[i].ID] > s.taskSeq[tasks[j].ID]
	})
	return tasks, nil
}

func (s *Storage) UpdateTask(_ context.Context, taskID, userID string, upd storage.TaskUpdate) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[taskID]
	if !exists || task.UserID != userID {
		return nil, storage.ErrNotFound
	}

	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
	}
	if upd.Category != nil {
		task.Category = *upd.Category
	}
	if upd.Completed != nil {
		task.Completed = *upd.Completed
	}
	task.UpdatedAt = time.Now()

	updated := *task
	return &updated, nil
}

func (s *Storage) DeleteTask(_ context.Context, taskID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[taskID]
	if !exists || task.UserID != userID {
		return storage.ErrNotFound
	}

	delete(s.tasks, taskID)
	delete(s.taskSeq, taskID)
	return nil
}
