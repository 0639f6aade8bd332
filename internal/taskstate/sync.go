package taskstate

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/avdeenkov/go-task-manager/internal/models"
)

// SyncStore pairs a Store with the REST client: every mutation is applied
// locally first and then pushed to the server in the background, so reads
// of the view never wait on the network.
//
// A failed push flags the task as unsynced and reports the error through
// the OnError callback. There is no automatic retry; the caller decides
// whether to resubmit.
type SyncStore struct {
	logger zerolog.Logger
	store  *Store
	client *Client

	// OnError receives sync failures. Nil means failures are only logged.
	OnError func(op string, taskID string, err error)

	mu       sync.Mutex
	unsynced map[string]struct{}

	wg sync.WaitGroup
}

func NewSyncStore(logger zerolog.Logger, store *Store, client *Client) *SyncStore {
	return &SyncStore{
		logger:   logger,
		store:    store,
		client:   client,
		unsynced: make(map[string]struct{}),
	}
}

// Store exposes the underlying local state for reads
// (FilteredView, Snapshot, SetFilter and friends).
func (s *SyncStore) Store() *Store {
	return s.store
}

// Load replaces the local collection with the server's task list.
func (s *SyncStore) Load(ctx context.Context) error {
	tasks, err := s.client.Tasks(ctx)
	if err != nil {
		return err
	}

	s.store.Replace(tasks)
	s.logger.Debug().
		Int("count", len(tasks)).
		Msg("loaded tasks from server")
	return nil
}

// Add creates the task locally under a provisional id and pushes it to the
// server in the background. On success the provisional id is swapped for
// the server-assigned one, in place.
func (s *SyncStore) Add(ctx context.Context, in AddInput) (models.Task, error) {
	task, err := s.store.Add(in)
	if err != nil {
		return models.Task{}, err
	}

	localID := task.ID
	s.push("create", localID, func() error {
		created, err := s.client.CreateTask(ctx, task)
		if err != nil {
			return err
		}

		if !s.store.adopt(localID, created) {
			// Deleted locally before the server answered. Keep the
			// server copy out of the collection and drop it remotely.
			s.logger.Debug().
				Str("task_id", created.ID).
				Msg("task removed before create sync finished")
			return s.client.DeleteTask(ctx, created.ID)
		}
		s.clearUnsynced(localID)
		return nil
	})
	return task, nil
}

// ToggleCompletion flips the flag locally and pushes the task's new state.
func (s *SyncStore) ToggleCompletion(ctx context.Context, id string) bool {
	if !s.store.ToggleCompletion(id) {
		return false
	}
	s.pushTaskState(ctx, "toggle", id)
	return true
}

// Update patches the task locally and pushes the result. A missing id is
// a no-op, matching the local store.
func (s *SyncStore) Update(ctx context.Context, id string, patch TaskPatch) bool {
	if !s.store.Update(id, patch) {
		return false
	}
	s.pushTaskState(ctx, "update", id)
	return true
}

// Remove deletes locally and on the server. Idempotent on the local side.
func (s *SyncStore) Remove(ctx context.Context, id string) bool {
	if !s.store.Remove(id) {
		return false
	}

	s.push("delete", id, func() error {
		err := s.client.DeleteTask(ctx, id)
		if err != nil {
			return err
		}
		s.clearUnsynced(id)
		return nil
	})
	return true
}

// Unsynced reports whether the task has a pending failed sync.
func (s *SyncStore) Unsynced(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.unsynced[id]
	return ok
}

// UnsyncedIDs returns the ids of all tasks whose last sync failed.
func (s *SyncStore) UnsyncedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.unsynced))
	for id := range s.unsynced {
		ids = append(ids, id)
	}
	return ids
}

// Wait blocks until all background pushes have finished.
func (s *SyncStore) Wait() {
	s.wg.Wait()
}

func (s *SyncStore) pushTaskState(ctx context.Context, op, id string) {
	task, ok := s.store.Task(id)
	if !ok {
		return
	}

	s.push(op, id, func() error {
		err := s.client.UpdateTask(ctx, task)
		if err != nil {
			return err
		}
		s.clearUnsynced(id)
		return nil
	})
}

func (s *SyncStore) push(op, taskID string, fn func() error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		err := fn()
		if err == nil {
			return
		}

		s.markUnsynced(taskID)
		s.logger.Error().
			Err(err).
			Str("op", op).
			Str("task_id", taskID).
			Msg("failed to sync task with server")
		if s.OnError != nil {
			s.OnError(op, taskID, err)
		}
	}()
}

func (s *SyncStore) markUnsynced(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsynced[id] = struct{}{}
}

func (s *SyncStore) clearUnsynced(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.unsynced, id)
}
