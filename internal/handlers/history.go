package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-task-tracker/internal/logger"
	"github.com/sbilibin2017/gw-task-tracker/internal/middlewares"
	"github.com/sbilibin2017/gw-task-tracker/internal/models"
	"github.com/sbilibin2017/gw-task-tracker/internal/services"
)

// HistoryLister defines the interface that the service must implement.
type HistoryLister interface {
	History(ctx context.Context, userID uuid.UUID, startDate, endDate *string) ([]models.TaskDB, error)
}

// HistoryResponse represents a history query result
// swagger:model HistoryResponse
type HistoryResponse struct {
	// Tasks in the range, newest date first
	Tasks []models.TaskDB `json:"tasks"`
}

// HistoryErrorResponse represents an error response for history queries
// swagger:model HistoryErrorResponse
type HistoryErrorResponse struct {
	// Error message
	// default: Invalid date
	Error string `json:"error"`
}

// rangeBounds reads the optional start/end query parameters. An absent or
// empty parameter leaves that bound open.
func rangeBounds(r *http.Request) (startDate, endDate *string) {
	if v := r.URL.Query().Get("start"); v != "" {
		startDate = &v
	}
	if v := r.URL.Query().Get("end"); v != "" {
		endDate = &v
	}
	return startDate, endDate
}

// NewHistoryHandler returns an HTTP handler for browsing task history.
// @Summary Task history
// @Description Returns the authenticated user's tasks with task_date inside the inclusive [start, end] range. Both bounds are optional.
// @Tags history
// @Produce json
// @Param start query string false "Start date, YYYY-MM-DD"
// @Param end query string false "End date, YYYY-MM-DD"
// @Success 200 {object} handlers.HistoryResponse "Tasks in the range"
// @Failure 400 {object} handlers.HistoryErrorResponse "Invalid date"
// @Failure 401 {object} handlers.HistoryErrorResponse "Unauthorized"
// @Router /history [get]
// @Security BearerAuth
func NewHistoryHandler(svc HistoryLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, ok := middlewares.UserIDFromContext(ctx)
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(HistoryErrorResponse{Error: "Unauthorized"})
			return
		}

		startDate, endDate := rangeBounds(r)

		tasks, err := svc.History(ctx, userID, startDate, endDate)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidDate):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(HistoryErrorResponse{Error: err.Error()})
			default:
				logger.Log.Errorw("failed to get history", "user_id", userID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(HistoryErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(HistoryResponse{Tasks: tasks})
	}
}
