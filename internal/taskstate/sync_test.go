package taskstate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdeenkov/go-task-manager/internal/models"
)

// fakeServer is a minimal stand-in for the task manager REST API that can
// be switched into a failing mode.
type fakeServer struct {
	mu      sync.Mutex
	nextID  int
	fail    bool
	deleted []string
	updated []string
}

func (f *fakeServer) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "login successful",
			"userId":  "user-1",
			"token":   "token-1",
		})
	})

	mux.HandleFunc("POST /tasks", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.fail {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "boom"})
			return
		}

		var req struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Category    string `json:"category"`
			Status      string `json:"status"`
			UserID      string `json:"userId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		f.nextID++
		writeJSON(w, http.StatusCreated, map[string]any{
			"message": "task created successfully",
			"task": map[string]any{
				"id":          fmt.Sprintf("srv-%d", f.nextID),
				"userId":      req.UserID,
				"title":       req.Title,
				"description": req.Description,
				"category":    req.Category,
				"status":      req.Status,
				"createdAt":   time.Now().UTC().Format(time.RFC3339Nano),
			},
		})
	})

	mux.HandleFunc("GET /tasks/{userId}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"tasks": []map[string]any{
				{
					"id":        "srv-10",
					"userId":    r.PathValue("userId"),
					"title":     "from server",
					"category":  "Work",
					"status":    "pending",
					"createdAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
			},
		})
	})

	mux.HandleFunc("PUT /tasks/{taskId}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.fail {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "boom"})
			return
		}
		f.updated = append(f.updated, r.PathValue("taskId"))
		writeJSON(w, http.StatusOK, map[string]any{"message": "task updated successfully"})
	})

	mux.HandleFunc("DELETE /tasks/{taskId}/{userId}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.deleted = append(f.deleted, r.PathValue("taskId"))
		writeJSON(w, http.StatusOK, map[string]any{"message": "task deleted successfully"})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newTestSyncStore(t *testing.T) (*SyncStore, *fakeServer) {
	t.Helper()

	fake := &fakeServer{}
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	client := NewClient(server.URL)
	client.SetAuth("user-1", "token-1")

	return NewSyncStore(zerolog.Nop(), newTestStore(), client), fake
}

func TestSyncAddIsOptimistic(t *testing.T) {
	s, _ := newTestSyncStore(t)

	_, err := s.Add(context.Background(), AddInput{
		Title:    "new task",
		Category: models.CategoryWork,
	})
	require.NoError(t, err)

	// Visible locally without waiting for the server round trip. The id
	// may or may not already be the server's, so only the content is
	// asserted here.
	view := s.Store().FilteredView()
	require.Len(t, view, 1)
	assert.Equal(t, "new task", view[0].Title)
}

func TestSyncAddAdoptsServerID(t *testing.T) {
	s, _ := newTestSyncStore(t)

	task, err := s.Add(context.Background(), AddInput{
		Title:    "new task",
		Category: models.CategoryWork,
	})
	require.NoError(t, err)
	s.Wait()

	snapshot := s.Store().Snapshot()
	require.Len(t, snapshot, 1)
	assert.True(t, strings.HasPrefix(snapshot[0].ID, "srv-"))
	assert.NotEqual(t, task.ID, snapshot[0].ID)
	assert.False(t, s.Unsynced(task.ID))
}

func TestSyncAddFailureFlagsTaskUnsynced(t *testing.T) {
	s, fake := newTestSyncStore(t)
	fake.setFail(true)

	var (
		mu       sync.Mutex
		failedOp string
	)
	s.OnError = func(op, taskID string, err error) {
		mu.Lock()
		defer mu.Unlock()
		failedOp = op
	}

	task, err := s.Add(context.Background(), AddInput{
		Title:    "doomed",
		Category: models.CategoryUrgent,
	})
	require.NoError(t, err)
	s.Wait()

	// The local mutation survives, it is just flagged.
	assert.Equal(t, 1, s.Store().Len())
	assert.True(t, s.Unsynced(task.ID))
	assert.Contains(t, s.UnsyncedIDs(), task.ID)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "create", failedOp)
}

func TestSyncToggleAndUpdatePushState(t *testing.T) {
	s, fake := newTestSyncStore(t)

	_, err := s.Add(context.Background(), AddInput{
		Title:    "task",
		Category: models.CategoryPersonal,
	})
	require.NoError(t, err)
	s.Wait()

	serverID := s.Store().Snapshot()[0].ID

	require.True(t, s.ToggleCompletion(context.Background(), serverID))
	title := "renamed"
	require.True(t, s.Update(context.Background(), serverID, TaskPatch{Title: &title}))
	s.Wait()

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, []string{serverID, serverID}, fake.updated)
}

func TestSyncRemoveDeletesOnServer(t *testing.T) {
	s, _ := newTestSyncStore(t)

	_, err := s.Add(context.Background(), AddInput{
		Title:    "task",
		Category: models.CategoryPersonal,
	})
	require.NoError(t, err)
	s.Wait()

	serverID := s.Store().Snapshot()[0].ID
	require.True(t, s.Remove(context.Background(), serverID))
	s.Wait()

	assert.Zero(t, s.Store().Len())
	assert.False(t, s.Remove(context.Background(), serverID))
}

func TestSyncUpdateOnMissingIDIsNoOp(t *testing.T) {
	s, fake := newTestSyncStore(t)

	title := "ghost"
	assert.False(t, s.Update(context.Background(), "missing", TaskPatch{Title: &title}))
	s.Wait()

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Empty(t, fake.updated)
}

func TestLoadReplacesLocalState(t *testing.T) {
	s, _ := newTestSyncStore(t)

	_, err := s.Add(context.Background(), AddInput{
		Title:    "local",
		Category: models.CategoryWork,
	})
	require.NoError(t, err)
	s.Wait()

	require.NoError(t, s.Load(context.Background()))

	snapshot := s.Store().Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "srv-10", snapshot[0].ID)
	assert.Equal(t, "from server", snapshot[0].Title)
}

func TestClientLoginCachesIdentity(t *testing.T) {
	fake := &fakeServer{}
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	client := NewClient(server.URL)
	require.NoError(t, client.Login(context.Background(), "alice@example.com", "password1"))
	assert.Equal(t, "user-1", client.UserID())
}
