package models

import "time"

// Task positions order tasks within a single user's set only.
// They are dense (1..N) after a repack; a partial reorder may
// leave duplicates until the next delete repacks them.
type Task struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	Completed   bool
	Important   bool
	Position    int
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
