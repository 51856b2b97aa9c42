package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-task-tracker/internal/logger"
	"github.com/sbilibin2017/gw-task-tracker/internal/middlewares"
	"github.com/sbilibin2017/gw-task-tracker/internal/services"
)

// PendingLister defines the interface that the service must implement.
type PendingLister interface {
	ListPending(ctx context.Context, userID uuid.UUID) ([]services.PendingTask, error)
}

// PendingResponse represents the pending bucket
// swagger:model PendingResponse
type PendingResponse struct {
	// Pending tasks across all dates, each with its pending duration
	Tasks []services.PendingTask `json:"tasks"`
}

// PendingErrorResponse represents an error response for the pending bucket
// swagger:model PendingErrorResponse
type PendingErrorResponse struct {
	// Error message
	// default: Unauthorized
	Error string `json:"error"`
}

// NewPendingHandler returns an HTTP handler for the pending bucket.
// @Summary Pending bucket
// @Description Returns every pending task of the authenticated user across all dates, ordered by date then time, with the elapsed pending duration.
// @Tags tasks
// @Produce json
// @Success 200 {object} handlers.PendingResponse "Pending tasks"
// @Failure 401 {object} handlers.PendingErrorResponse "Unauthorized"
// @Router /tasks/pending [get]
// @Security BearerAuth
func NewPendingHandler(svc PendingLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, ok := middlewares.UserIDFromContext(ctx)
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(PendingErrorResponse{Error: "Unauthorized"})
			return
		}

		tasks, err := svc.ListPending(ctx, userID)
		if err != nil {
			logger.Log.Errorw("failed to list pending tasks", "user_id", userID, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(PendingErrorResponse{Error: "Internal server error"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(PendingResponse{Tasks: tasks})
	}
}
