package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-task-tracker/internal/logger"
	"github.com/sbilibin2017/gw-task-tracker/internal/models"
	"github.com/segmentio/kafka-go"
)

// Error variables
var (
	ErrEmptyTitle    = errors.New("task title must not be empty")
	ErrInvalidDate   = errors.New("task date must be YYYY-MM-DD")
	ErrInvalidTime   = errors.New("task time must be HH:MM")
	ErrInvalidStatus = errors.New("status must be pending or done")
	ErrTaskNotFound  = errors.New("task not found")

	// ErrTaskNotOwned is returned when the authenticated user tries to
	// change a task that belongs to someone else.
	ErrTaskNotOwned = errors.New("task belongs to another user")
)

// TaskWriter defines write operations for tasks.
type TaskWriter interface {
	Save(ctx context.Context, task *models.TaskDB) error                                                        // Inserts a new task row
	UpdateStatus(ctx context.Context, taskID uuid.UUID, status, statusChangedAt string, pendingFrom *string) error // Transitions a task's status
}

// TaskReader defines read operations for tasks.
type TaskReader interface {
	GetByID(ctx context.Context, taskID uuid.UUID) (*models.TaskDB, error)                                // Fetches one task, nil when absent
	GetByDate(ctx context.Context, userID uuid.UUID, taskDate string) ([]models.TaskDB, error)            // Tasks for one date, insertion order
	GetPending(ctx context.Context, userID uuid.UUID) ([]models.TaskDB, error)                            // Pending tasks across dates
	GetHistory(ctx context.Context, userID uuid.UUID, startDate, endDate *string) ([]models.TaskDB, error) // Inclusive date-range history
}

// SummaryCache caches day-wise summaries.
type SummaryCache interface {
	Get(ctx context.Context, userID uuid.UUID, startDate, endDate *string) ([]models.DaySummary, error)
	Set(ctx context.Context, userID uuid.UUID, startDate, endDate *string, summary []models.DaySummary) error
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// PendingTask is a pending-bucket entry: the task plus a rendered
// "how long has this been pending" duration.
type PendingTask struct {
	models.TaskDB
	PendingSince string `json:"pending_since"`
}

// TaskService governs the task lifecycle: creation, status transitions with
// their pending_from bookkeeping, the pending bucket, history and day-wise
// reporting. Every operation is scoped by the owning user identity.
type TaskService struct {
	writeRepo   TaskWriter
	readRepo    TaskReader
	cacheRepo   SummaryCache
	kafkaWriter KafkaWriter
}

// NewTaskService creates a new TaskService.
func NewTaskService(writeRepo TaskWriter, readRepo TaskReader, cacheRepo SummaryCache, kafkaWriter KafkaWriter) *TaskService {
	return &TaskService{
		writeRepo:   writeRepo,
		readRepo:    readRepo,
		cacheRepo:   cacheRepo,
		kafkaWriter: kafkaWriter,
	}
}

// Create validates the input and persists a new task in the pending state.
// created_at, status_changed_at and pending_from all start at "now": creation
// counts as the task's first transition into pending.
func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, title string, description *string, taskDate string, taskTime *string) (uuid.UUID, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return uuid.Nil, ErrEmptyTitle
	}
	if _, err := time.Parse(models.DateLayout, taskDate); err != nil {
		return uuid.Nil, ErrInvalidDate
	}
	if taskTime != nil {
		if _, err := time.Parse(models.TimeLayout, *taskTime); err != nil {
			return uuid.Nil, ErrInvalidTime
		}
	}

	now := time.Now().Format(models.TimestampLayout)
	task := &models.TaskDB{
		TaskID:          uuid.New(),
		UserID:          userID,
		Title:           title,
		Description:     description,
		CreatedAt:       now,
		TaskDate:        taskDate,
		TaskTime:        taskTime,
		Status:          models.StatusPending,
		StatusChangedAt: now,
		PendingFrom:     &now,
	}

	if err := s.writeRepo.Save(ctx, task); err != nil {
		logger.Log.Errorw("failed to save task", "err", err)
		return uuid.Nil, err
	}

	s.publishEvent(ctx, models.EventTaskCreated, task.TaskID, userID, task.Status, now)

	return task.TaskID, nil
}

// SetStatus transitions a task between pending and done. The transition always
// refreshes status_changed_at, sets pending_from on a transition into pending
// and clears it on a transition into done, even when the status is unchanged.
// The task must belong to userID.
func (s *TaskService) SetStatus(ctx context.Context, userID, taskID uuid.UUID, status string) error {
	if status != models.StatusPending && status != models.StatusDone {
		return ErrInvalidStatus
	}

	task, err := s.readRepo.GetByID(ctx, taskID)
	if err != nil {
		logger.Log.Errorw("failed to get task", "task_id", taskID, "err", err)
		return err
	}
	if task == nil {
		return ErrTaskNotFound
	}
	if task.UserID != userID {
		logger.Log.Warnw("status change denied", "task_id", taskID, "owner", task.UserID, "caller", userID)
		return ErrTaskNotOwned
	}

	now := time.Now().Format(models.TimestampLayout)
	var pendingFrom *string
	if status == models.StatusPending {
		pendingFrom = &now
	}

	if err := s.writeRepo.UpdateStatus(ctx, taskID, status, now, pendingFrom); err != nil {
		logger.Log.Errorw("failed to update task status", "task_id", taskID, "err", err)
		return err
	}

	s.publishEvent(ctx, models.EventStatusChanged, taskID, userID, status, now)

	return nil
}

// ListByDate returns the user's tasks for one calendar date in insertion order.
func (s *TaskService) ListByDate(ctx context.Context, userID uuid.UUID, taskDate string) ([]models.TaskDB, error) {
	if _, err := time.Parse(models.DateLayout, taskDate); err != nil {
		return nil, ErrInvalidDate
	}
	return s.readRepo.GetByDate(ctx, userID, taskDate)
}

// ListPending returns the pending bucket: every pending task across all dates,
// each annotated with how long it has been pending.
func (s *TaskService) ListPending(ctx context.Context, userID uuid.UUID) ([]PendingTask, error) {
	tasks, err := s.readRepo.GetPending(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	pending := make([]PendingTask, 0, len(tasks))
	for _, t := range tasks {
		anchor := t.CreatedAt
		if t.PendingFrom != nil {
			anchor = *t.PendingFrom
		}
		pending = append(pending, PendingTask{
			TaskDB:       t,
			PendingSince: pendingSince(anchor, now),
		})
	}
	return pending, nil
}

// pendingSince renders the elapsed time since anchor as "Nd Nh Nm ago".
// A stored value that does not parse, or that lies in the future, is shown
// as-is rather than failing the request.
func pendingSince(anchor string, now time.Time) string {
	ts, err := time.ParseInLocation(models.TimestampLayout, anchor, now.Location())
	if err != nil {
		return anchor
	}
	d := now.Sub(ts)
	if d < 0 {
		return anchor
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60
	return fmt.Sprintf("%dd %dh %dm ago", days, hours, mins)
}

// History returns the user's tasks with task_date inside the inclusive
// [startDate, endDate] range; either bound may be nil.
func (s *TaskService) History(ctx context.Context, userID uuid.UUID, startDate, endDate *string) ([]models.TaskDB, error) {
	if err := validateBounds(startDate, endDate); err != nil {
		return nil, err
	}
	return s.readRepo.GetHistory(ctx, userID, startDate, endDate)
}

// Summarize aggregates a history range into one row per distinct task_date
// with total/done/pending counts, dates ascending. Results are served from
// the cache when a fresh enough entry exists.
func (s *TaskService) Summarize(ctx context.Context, userID uuid.UUID, startDate, endDate *string) ([]models.DaySummary, error) {
	if err := validateBounds(startDate, endDate); err != nil {
		return nil, err
	}

	if s.cacheRepo != nil {
		if cached, err := s.cacheRepo.Get(ctx, userID, startDate, endDate); err == nil {
			return cached, nil
		}
	}

	tasks, err := s.readRepo.GetHistory(ctx, userID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*models.DaySummary)
	for _, t := range tasks {
		row, ok := byDate[t.TaskDate]
		if !ok {
			row = &models.DaySummary{TaskDate: t.TaskDate}
			byDate[t.TaskDate] = row
		}
		row.TotalTasks++
		if t.Status == models.StatusDone {
			row.Done++
		} else {
			row.Pending++
		}
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	summary := make([]models.DaySummary, 0, len(dates))
	for _, d := range dates {
		summary = append(summary, *byDate[d])
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.Set(ctx, userID, startDate, endDate, summary); err != nil {
			logger.Log.Warnw("failed to cache day summary", "user_id", userID, "err", err)
		}
	}

	return summary, nil
}

func validateBounds(startDate, endDate *string) error {
	if startDate != nil {
		if _, err := time.Parse(models.DateLayout, *startDate); err != nil {
			return ErrInvalidDate
		}
	}
	if endDate != nil {
		if _, err := time.Parse(models.DateLayout, *endDate); err != nil {
			return ErrInvalidDate
		}
	}
	return nil
}

// publishEvent publishes a task lifecycle event to Kafka.
func (s *TaskService) publishEvent(ctx context.Context, event string, taskID, userID uuid.UUID, status, occurredAt string) {
	if s.kafkaWriter == nil {
		logger.Log.Warnw("Kafka writer not configured, skipping publishing", "event", event, "task_id", taskID)
		return
	}

	evt := models.TaskEvent{
		EventID:    uuid.New().String(),
		Event:      event,
		TaskID:     taskID.String(),
		UserID:     userID.String(),
		Status:     status,
		OccurredAt: occurredAt,
	}

	data, err := json.Marshal(evt)
	if err != nil {
		logger.Log.Errorw("Failed to marshal task event for Kafka", "event_id", evt.EventID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(evt.TaskID),
		Value: data,
	}
	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish task event to Kafka", "event_id", evt.EventID, "error", err)
		return
	}

	logger.Log.Infow("Task event published to Kafka", "event_id", evt.EventID, "event", event, "task_id", evt.TaskID)
}
