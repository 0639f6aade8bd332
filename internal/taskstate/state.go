// Package taskstate holds the signed-in user's working set of tasks on the
// client side. The Store owns the full collection and the transient filter;
// every view is recomputed from those on demand, so a read right after a
// mutation always reflects it.
package taskstate

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jaevor/go-nanoid"

	"github.com/avdeenkov/go-task-manager/internal/models"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterPending   Filter = "pending"
)

var (
	ErrEmptyTitle      = errors.New("title must not be empty")
	ErrInvalidCategory = errors.New("unknown task category")
)

const localIDLength = 21

type Store struct {
	mu     sync.RWMutex
	tasks  []models.Task
	filter Filter
	newID  func() string
	now    func() time.Time
}

func NewStore() *Store {
	gen, err := nanoid.Standard(localIDLength)
	if err != nil {
		// Only reachable with an out-of-range id length.
		panic(err)
	}

	return &Store{
		filter: FilterAll,
		newID:  gen,
		now:    time.Now,
	}
}

type AddInput struct {
	Title       string
	Description string
	Category    string
}

// Add creates a task with a locally generated id and the current timestamp
// and prepends it to the collection.
func (s *Store) Add(in AddInput) (models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Task{}, ErrEmptyTitle
	}
	if !models.ValidCategory(in.Category) {
		return models.Task{}, ErrInvalidCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task := models.Task{
		ID:          s.newID(),
		Title:       title,
		Description: in.Description,
		Category:    in.Category,
		CreatedAt:   s.now(),
	}
	s.tasks = append([]models.Task{task}, s.tasks...)
	return task, nil
}

// ToggleCompletion flips the completed flag of the task with the given id.
// It reports whether the task was found.
func (s *Store) ToggleCompletion(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	return true
}

type TaskPatch struct {
	Title       *string
	Description *string
	Category    *string
}

// Update replaces the supplied fields of the task with the given id,
// leaving the rest unchanged. A missing id is a silent no-op; the
// return value reports whether anything was updated.
func (s *Store) Update(id string, patch TaskPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}

	if patch.Title != nil {
		s.tasks[i].Title = *patch.Title
	}
	if patch.Description != nil {
		s.tasks[i].Description = *patch.Description
	}
	if patch.Category != nil {
		s.tasks[i].Category = *patch.Category
	}
	return true
}

// Remove deletes the task with the given id. Removing an absent id is a
// no-op, so the operation is idempotent.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return true
}

// SetFilter switches the transient view selector. The underlying
// collection is untouched.
func (s *Store) SetFilter(f Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}

func (s *Store) Filter() Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// FilteredView projects the collection through the current filter and
// sorts the result by creation time, newest first. The returned slice is
// a fresh copy recomputed on every call.
func (s *Store) FilteredView() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filteredViewLocked()
}

func (s *Store) filteredViewLocked() []models.Task {
	view := make([]models.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		if s.filter.matches(task) {
			view = append(view, task)
		}
	}

	sort.SliceStable(view, func(i, j int) bool {
		return view[i].CreatedAt.After(view[j].CreatedAt)
	})
	return view
}

func (f Filter) matches(task models.Task) bool {
	switch f {
	case FilterCompleted:
		return task.Completed
	case FilterPending:
		return !task.Completed
	default:
		return true
	}
}

// Reorder moves the task at fromViewIndex in the currently filtered,
// currently sorted view to toViewIndex, then writes the view's new order
// back into the full collection: each visible task's slot keeps its
// position relative to the filtered-out tasks, only the visible tasks are
// permuted among those slots.
//
// Indices outside the view are clamped to its bounds. A view of length
// one or less, or indices that clamp to the same position, leave the
// collection unchanged.
func (s *Store) Reorder(fromViewIndex, toViewIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := s.filteredViewLocked()
	if len(view) <= 1 {
		return
	}

	from := clamp(fromViewIndex, 0, len(view)-1)
	to := clamp(toViewIndex, 0, len(view)-1)
	if from == to {
		return
	}

	reordered := make([]models.Task, 0, len(view))
	reordered = append(reordered, view[:from]...)
	reordered = append(reordered, view[from+1:]...)
	reordered = append(reordered[:to], append([]models.Task{view[from]}, reordered[to:]...)...)

	// Slots are resolved before any write: once slots start changing
	// hands, searching by id would find the wrong occupant.
	slots := make([]int, len(view))
	for i, task := range view {
		slots[i] = s.indexOf(task.ID)
	}
	for i, slot := range slots {
		if slot >= 0 {
			s.tasks[slot] = reordered[i]
		}
	}
}

// Replace swaps the whole collection, typically with the server's task
// list right after sign-in. The filter is left as is.
func (s *Store) Replace(tasks []models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append([]models.Task(nil), tasks...)
}

// Snapshot returns a copy of the full collection in its underlying order.
func (s *Store) Snapshot() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Task(nil), s.tasks...)
}

// Task returns the task with the given id.
func (s *Store) Task(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Task{}, false
	}
	return s.tasks[i], true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// adopt replaces a locally generated id with the server-assigned task,
// keeping the slot's position in the collection.
func (s *Store) adopt(localID string, server models.Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(localID)
	if i < 0 {
		return false
	}
	s.tasks[i] = server
	return true
}

func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
