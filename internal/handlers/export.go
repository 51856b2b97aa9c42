package handlers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-task-tracker/internal/logger"
	"github.com/sbilibin2017/gw-task-tracker/internal/middlewares"
	"github.com/sbilibin2017/gw-task-tracker/internal/models"
	"github.com/sbilibin2017/gw-task-tracker/internal/services"
)

// HistoryExporter defines the interface that the service must implement.
type HistoryExporter interface {
	History(ctx context.Context, userID uuid.UUID, startDate, endDate *string) ([]models.TaskDB, error)
}

// ExportErrorResponse represents an error response for the CSV export
// swagger:model ExportErrorResponse
type ExportErrorResponse struct {
	// Error message
	// default: Invalid date
	Error string `json:"error"`
}

// csvHeader is the fixed export column order.
var csvHeader = []string{"task_date", "task_time", "title", "description", "status", "status_changed_at"}

// NewExportHandler returns an HTTP handler that streams a history range
// as CSV.
// @Summary Export history as CSV
// @Description Serializes the history range as CSV with columns task_date, task_time, title, description, status, status_changed_at.
// @Tags history
// @Produce text/csv
// @Param start query string false "Start date, YYYY-MM-DD"
// @Param end query string false "End date, YYYY-MM-DD"
// @Success 200 {string} string "CSV payload"
// @Failure 400 {object} handlers.ExportErrorResponse "Invalid date"
// @Failure 401 {object} handlers.ExportErrorResponse "Unauthorized"
// @Router /history/export [get]
// @Security BearerAuth
func NewExportHandler(svc HistoryExporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, ok := middlewares.UserIDFromContext(ctx)
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(ExportErrorResponse{Error: "Unauthorized"})
			return
		}

		startDate, endDate := rangeBounds(r)

		tasks, err := svc.History(ctx, userID, startDate, endDate)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidDate):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ExportErrorResponse{Error: err.Error()})
			default:
				logger.Log.Errorw("failed to export history", "user_id", userID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ExportErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", exportFilename(startDate, endDate)))
		w.WriteHeader(http.StatusOK)

		cw := csv.NewWriter(w)
		cw.Write(csvHeader)
		for _, t := range tasks {
			cw.Write([]string{
				t.TaskDate,
				deref(t.TaskTime),
				t.Title,
				deref(t.Description),
				t.Status,
				t.StatusChangedAt,
			})
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			logger.Log.Errorw("failed to write CSV", "user_id", userID, "error", err)
		}
	}
}

func exportFilename(startDate, endDate *string) string {
	start, end := "all", "all"
	if startDate != nil {
		start = *startDate
	}
	if endDate != nil {
		end = *endDate
	}
	return fmt.Sprintf("history_%s_%s.csv", start, end)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
