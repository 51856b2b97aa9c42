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

// Summarizer defines the interface that the service must implement.
type Summarizer interface {
	Summarize(ctx context.Context, userID uuid.UUID, startDate, endDate *string) ([]models.DaySummary, error)
}

// SummaryResponse represents a day-wise history summary
// swagger:model SummaryResponse
type SummaryResponse struct {
	// One row per distinct date in the range, dates ascending
	Summary []models.DaySummary `json:"summary"`
}

// SummaryErrorResponse represents an error response for the summary
// swagger:model SummaryErrorResponse
type SummaryErrorResponse struct {
	// Error message
	// default: Invalid date
	Error string `json:"error"`
}

// NewSummaryHandler returns an HTTP handler for the day-wise summary.
// @Summary Day-wise summary
// @Description Aggregates the history range into one row per date with total, done and pending counts.
// @Tags history
// @Produce json
// @Param start query string false "Start date, YYYY-MM-DD"
// @Param end query string false "End date, YYYY-MM-DD"
// @Success 200 {object} handlers.SummaryResponse "Day-wise summary"
// @Failure 400 {object} handlers.SummaryErrorResponse "Invalid date"
// @Failure 401 {object} handlers.SummaryErrorResponse "Unauthorized"
// @Router /history/summary [get]
// @Security BearerAuth
func NewSummaryHandler(svc Summarizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, ok := middlewares.UserIDFromContext(ctx)
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(SummaryErrorResponse{Error: "Unauthorized"})
			return
		}

		startDate, endDate := rangeBounds(r)

		summary, err := svc.Summarize(ctx, userID, startDate, endDate)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidDate):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(SummaryErrorResponse{Error: err.Error()})
			default:
				logger.Log.Errorw("failed to summarize history", "user_id", userID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(SummaryErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(SummaryResponse{Summary: summary})
	}
}
