package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-task-tracker/internal/logger"
	"github.com/sbilibin2017/gw-task-tracker/internal/middlewares"
	"github.com/sbilibin2017/gw-task-tracker/internal/models"
	"github.com/sbilibin2017/gw-task-tracker/internal/services"
)

// TasksByDateLister defines the interface that the service must implement.
type TasksByDateLister interface {
	ListByDate(ctx context.Context, userID uuid.UUID, taskDate string) ([]models.TaskDB, error)
}

// TaskListResponse represents the tasks for one calendar date
// swagger:model TaskListResponse
type TaskListResponse struct {
	// Date the tasks belong to, YYYY-MM-DD
	TaskDate string `json:"task_date"`

	// Tasks in insertion order
	Tasks []models.TaskDB `json:"tasks"`
}

// TaskListErrorResponse represents an error response for the task list
// swagger:model TaskListErrorResponse
type TaskListErrorResponse struct {
	// Error message
	// default: Invalid date
	Error string `json:"error"`
}

// NewListTasksByDateHandler returns an HTTP handler for listing the
// authenticated user's tasks for one calendar date.
// @Summary List tasks for a date
// @Description Returns all tasks for the given date in insertion order. Defaults to today when no date is given.
// @Tags tasks
// @Produce json
// @Param date query string false "Calendar date, YYYY-MM-DD (defaults to today)"
// @Success 200 {object} handlers.TaskListResponse "Tasks for the date"
// @Failure 400 {object} handlers.TaskListErrorResponse "Invalid date"
// @Failure 401 {object} handlers.TaskListErrorResponse "Unauthorized"
// @Router /tasks [get]
// @Security BearerAuth
func NewListTasksByDateHandler(svc TasksByDateLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, ok := middlewares.UserIDFromContext(ctx)
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(TaskListErrorResponse{Error: "Unauthorized"})
			return
		}

		taskDate := r.URL.Query().Get("date")
		if taskDate == "" {
			taskDate = time.Now().Format(models.DateLayout)
		}

		tasks, err := svc.ListByDate(ctx, userID, taskDate)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidDate):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(TaskListErrorResponse{Error: err.Error()})
			default:
				logger.Log.Errorw("failed to list tasks", "user_id", userID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(TaskListErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(TaskListResponse{
			TaskDate: taskDate,
			Tasks:    tasks,
		})
	}
}
