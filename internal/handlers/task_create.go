package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-task-tracker/internal/logger"
	"github.com/sbilibin2017/gw-task-tracker/internal/middlewares"
	"github.com/sbilibin2017/gw-task-tracker/internal/services"
)

// TaskCreator defines the interface that the service must implement.
type TaskCreator interface {
	Create(ctx context.Context, userID uuid.UUID, title string, description *string, taskDate string, taskTime *string) (uuid.UUID, error)
}

// CreateTaskRequest represents the JSON body for creating a task
// swagger:model CreateTaskRequest
type CreateTaskRequest struct {
	// Task title
	// required: true
	// default: Write report
	Title string `json:"title"`

	// Optional description
	Description *string `json:"description,omitempty"`

	// Calendar date the task is for, YYYY-MM-DD
	// required: true
	// default: 2024-06-01
	TaskDate string `json:"task_date"`

	// Optional time-of-day hint, HH:MM
	TaskTime *string `json:"task_time,omitempty"`
}

// CreateTaskResponse represents a successful task creation response
// swagger:model CreateTaskResponse
type CreateTaskResponse struct {
	// New task identity
	TaskID uuid.UUID `json:"task_id"`

	// Success message
	// default: Task added
	Message string `json:"message"`
}

// CreateTaskErrorResponse represents an error response for task creation
// swagger:model CreateTaskErrorResponse
type CreateTaskErrorResponse struct {
	// Error message
	// default: Task title must not be empty
	Error string `json:"error"`
}

// NewCreateTaskHandler returns an HTTP handler for adding a task.
// @Summary Add a task
// @Description Creates a task for the authenticated user on the given date. New tasks start in the pending state.
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body handlers.CreateTaskRequest true "Create Task Request"
// @Success 201 {object} handlers.CreateTaskResponse "Task created"
// @Failure 400 {object} handlers.CreateTaskErrorResponse "Invalid title, date or time"
// @Failure 401 {object} handlers.CreateTaskErrorResponse "Unauthorized"
// @Router /tasks [post]
// @Security BearerAuth
func NewCreateTaskHandler(svc TaskCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, ok := middlewares.UserIDFromContext(ctx)
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(CreateTaskErrorResponse{Error: "Unauthorized"})
			return
		}

		var req CreateTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode create task request", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(CreateTaskErrorResponse{Error: "Invalid request body"})
			return
		}

		taskID, err := svc.Create(ctx, userID, req.Title, req.Description, req.TaskDate, req.TaskTime)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrEmptyTitle),
				errors.Is(err, services.ErrInvalidDate),
				errors.Is(err, services.ErrInvalidTime):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(CreateTaskErrorResponse{Error: err.Error()})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(CreateTaskErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(CreateTaskResponse{
			TaskID:  taskID,
			Message: "Task added",
		})
	}
}
