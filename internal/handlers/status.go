package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-task-tracker/internal/logger"
	"github.com/sbilibin2017/gw-task-tracker/internal/middlewares"
	"github.com/sbilibin2017/gw-task-tracker/internal/services"
)

// StatusSetter defines the interface that the service must implement.
type StatusSetter interface {
	SetStatus(ctx context.Context, userID, taskID uuid.UUID, status string) error
}

// SetStatusRequest represents the JSON body for a status transition
// swagger:model SetStatusRequest
type SetStatusRequest struct {
	// New status, pending or done
	// required: true
	// default: done
	Status string `json:"status"`
}

// SetStatusResponse represents a successful status transition
// swagger:model SetStatusResponse
type SetStatusResponse struct {
	// Success message
	// default: Task status updated
	Message string `json:"message"`
}

// SetStatusErrorResponse represents an error response for a status transition
// swagger:model SetStatusErrorResponse
type SetStatusErrorResponse struct {
	// Error message
	// default: Task not found
	Error string `json:"error"`
}

// NewSetStatusHandler returns an HTTP handler for task status transitions.
// @Summary Change task status
// @Description Marks a task done or pending. Repeating the current status still refreshes the transition timestamps. Only the task owner may change it.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body handlers.SetStatusRequest true "Status Request"
// @Success 200 {object} handlers.SetStatusResponse "Status updated"
// @Failure 400 {object} handlers.SetStatusErrorResponse "Invalid task id or status"
// @Failure 401 {object} handlers.SetStatusErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.SetStatusErrorResponse "Task belongs to another user"
// @Failure 404 {object} handlers.SetStatusErrorResponse "Task not found"
// @Router /tasks/{id}/status [put]
// @Security BearerAuth
func NewSetStatusHandler(svc StatusSetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, ok := middlewares.UserIDFromContext(ctx)
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(SetStatusErrorResponse{Error: "Unauthorized"})
			return
		}

		taskID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(SetStatusErrorResponse{Error: "Invalid task id"})
			return
		}

		var req SetStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode status request", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(SetStatusErrorResponse{Error: "Invalid request body"})
			return
		}

		if err := svc.SetStatus(ctx, userID, taskID, req.Status); err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidStatus):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(SetStatusErrorResponse{Error: err.Error()})
			case errors.Is(err, services.ErrTaskNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(SetStatusErrorResponse{Error: "Task not found"})
			case errors.Is(err, services.ErrTaskNotOwned):
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(SetStatusErrorResponse{Error: "Task belongs to another user"})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(SetStatusErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(SetStatusResponse{Message: "Task status updated"})
	}
}
