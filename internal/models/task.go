package models

import (
	"github.com/google/uuid"
)

// Task status values. A task is always in exactly one of these states.
const (
	StatusPending = "pending"
	StatusDone    = "done"
)

// Storage layouts for dates and timestamps. Everything is kept as ISO-8601
// text so that lexicographic order equals chronological order.
const (
	DateLayout      = "2006-01-02"
	TimeLayout      = "15:04"
	TimestampLayout = "2006-01-02 15:04:05"
)

// TaskDB represents a task record in the database.
//
// Description, TaskTime and PendingFrom are nullable: absence is modelled as
// nil, never as a sentinel empty string. PendingFrom is set whenever the task
// enters the pending state (including creation) and cleared while it is done.
type TaskDB struct {
	TaskID          uuid.UUID `json:"task_id" db:"task_id"`                     // Primary key
	UserID          uuid.UUID `json:"user_id" db:"user_id"`                     // Owning user
	Title           string    `json:"title" db:"title"`                         // Non-empty title
	Description     *string   `json:"description,omitempty" db:"description"`   // Optional free text
	CreatedAt       string    `json:"created_at" db:"created_at"`               // Creation timestamp
	TaskDate        string    `json:"task_date" db:"task_date"`                 // Calendar date the task belongs to, YYYY-MM-DD
	TaskTime        *string   `json:"task_time,omitempty" db:"task_time"`       // Optional time-of-day hint, HH:MM
	Status          string    `json:"status" db:"status"`                       // pending / done
	StatusChangedAt string    `json:"status_changed_at" db:"status_changed_at"` // Timestamp of the last status transition
	PendingFrom     *string   `json:"pending_from,omitempty" db:"pending_from"` // When the task last became pending
	Seq             int64     `json:"-" db:"seq"`                               // Insertion order within the table
}

// DaySummary is one row of the day-wise history report.
type DaySummary struct {
	TaskDate   string `json:"task_date"`
	TotalTasks int    `json:"total_tasks"`
	Done       int    `json:"done"`
	Pending    int    `json:"pending"`
}
