package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-task-tracker/internal/logger"
	"github.com/sbilibin2017/gw-task-tracker/internal/models"
)

// taskColumns is the column list shared by every task query.
const taskColumns = `task_id, user_id, title, description, created_at, task_date, task_time, status, status_changed_at, pending_from, seq`

// TaskWriteRepository handles task write operations
type TaskWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewTaskWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *TaskWriteRepository {
	return &TaskWriteRepository{db: db, txGetter: txGetter}
}

func (r *TaskWriteRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// Save inserts a new task row. The caller fills in all timestamps.
func (r *TaskWriteRepository) Save(ctx context.Context, task *models.TaskDB) error {
	query := `
		INSERT INTO tasks (task_id, user_id, title, description, created_at, task_date, task_time, status, status_changed_at, pending_from)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	args := []any{
		task.TaskID, task.UserID, task.Title, task.Description,
		task.CreatedAt, task.TaskDate, task.TaskTime,
		task.Status, task.StatusChangedAt, task.PendingFrom,
	}

	res, err := r.executor(ctx).ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", rowsAffected,
		"error", err,
	)

	return err
}

// UpdateStatus transitions a task to the given status, refreshing
// status_changed_at and pending_from unconditionally. Returns sql.ErrNoRows
// when no task with the given id exists.
func (r *TaskWriteRepository) UpdateStatus(ctx context.Context, taskID uuid.UUID, status, statusChangedAt string, pendingFrom *string) error {
	query := `
		UPDATE tasks
		SET status = $2, status_changed_at = $3, pending_from = $4
		WHERE task_id = $1
		RETURNING task_id
	`
	args := []any{taskID, status, statusChangedAt, pendingFrom}

	var updated uuid.UUID
	err := sqlx.GetContext(ctx, r.executor(ctx), &updated, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", updated,
		"error", err,
	)

	return err
}

// TaskReadRepository handles task read operations
type TaskReadRepository struct {
	db *sqlx.DB
}

func NewTaskReadRepository(db *sqlx.DB) *TaskReadRepository {
	return &TaskReadRepository{db: db}
}

// GetByID fetches a single task. Returns (nil, nil) when no such task exists.
func (r *TaskReadRepository) GetByID(ctx context.Context, taskID uuid.UUID) (*models.TaskDB, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE task_id = $1
		LIMIT 1
	`

	var task models.TaskDB
	err := r.db.GetContext(ctx, &task, query, taskID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{taskID},
		"result", task,
		"error", err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &task, nil
}

// GetByDate returns all of a user's tasks for one calendar date,
// in insertion order.
func (r *TaskReadRepository) GetByDate(ctx context.Context, userID uuid.UUID, taskDate string) ([]models.TaskDB, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1 AND task_date = $2
		ORDER BY seq
	`

	var tasks []models.TaskDB
	err := r.db.SelectContext(ctx, &tasks, query, userID, taskDate)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID, taskDate},
		"result", len(tasks),
		"error", err,
	)

	return tasks, err
}

// GetPending returns all of a user's pending tasks across dates, ordered by
// task_date then task_time. A missing time sorts before any set time.
func (r *TaskReadRepository) GetPending(ctx context.Context, userID uuid.UUID) ([]models.TaskDB, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1 AND status = 'pending'
		ORDER BY task_date, COALESCE(task_time, '')
	`

	var tasks []models.TaskDB
	err := r.db.SelectContext(ctx, &tasks, query, userID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID},
		"result", len(tasks),
		"error", err,
	)

	return tasks, err
}

// GetHistory returns a user's tasks whose task_date falls inside the inclusive
// [startDate, endDate] range. Either bound may be nil, leaving that side open.
// Rows come back newest date first, time ascending within a date.
func (r *TaskReadRepository) GetHistory(ctx context.Context, userID uuid.UUID, startDate, endDate *string) ([]models.TaskDB, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1
		  AND ($2::TEXT IS NULL OR task_date >= $2)
		  AND ($3::TEXT IS NULL OR task_date <= $3)
		ORDER BY task_date DESC, COALESCE(task_time, '')
	`

	var tasks []models.TaskDB
	err := r.db.SelectContext(ctx, &tasks, query, userID, startDate, endDate)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID, startDate, endDate},
		"result", len(tasks),
		"error", err,
	)

	return tasks, err
}
