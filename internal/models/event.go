package models

// Task lifecycle event types published to the event stream.
const (
	EventTaskCreated   = "task_created"
	EventStatusChanged = "status_changed"
)

// TaskEvent represents a task lifecycle event published to Kafka.
type TaskEvent struct {
	EventID    string `json:"event_id"`    // EventID is a unique identifier for the event.
	Event      string `json:"event"`       // Event is the lifecycle event type, e.g. "task_created" or "status_changed".
	TaskID     string `json:"task_id"`     // TaskID is the identifier of the task the event refers to.
	UserID     string `json:"user_id"`     // UserID is the identifier of the task owner.
	Status     string `json:"status"`      // Status is the task status after the event.
	OccurredAt string `json:"occurred_at"` // OccurredAt is the event timestamp, YYYY-MM-DD HH:MM:SS.
}
