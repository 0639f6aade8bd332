package models

import "time"

const (
	CategoryWork     = "Work"
	CategoryPersonal = "Personal"
	CategoryUrgent   = "Urgent"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

type Task struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Category    string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidCategory reports whether c belongs to the closed category set.
func ValidCategory(c string) bool {
	return c == CategoryWork || c == CategoryPersonal || c == CategoryUrgent
}

// TaskStatus maps the completion flag to its wire representation.
func TaskStatus(completed bool) string {
	if completed {
		return StatusCompleted
	}
	return StatusPending
}

// CompletedFromStatus parses a wire status. The second return value
// reports whether the status is known.
func CompletedFromStatus(status string) (bool, bool) {
	switch status {
	case StatusCompleted:
		return true, true
	case StatusPending:
		return false, true
	default:
		return false, false
	}
}
