package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-task-tracker/internal/models"
	"github.com/sbilibin2017/gw-task-tracker/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestPendingHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		pending := []services.PendingTask{
			{
				TaskDB:       models.TaskDB{TaskID: uuid.New(), UserID: userID, Title: "old one", Status: models.StatusPending},
				PendingSince: "2d 3h 15m ago",
			},
			{
				TaskDB:       models.TaskDB{TaskID: uuid.New(), UserID: userID, Title: "fresh one", Status: models.StatusPending},
				PendingSince: "0d 0h 5m ago",
			},
		}

		mockSvc := NewMockPendingLister(ctrl)
		mockSvc.EXPECT().
			ListPending(gomock.Any(), userID).
			Return(pending, nil)

		handler := NewPendingHandler(mockSvc)

		req := authRequest(http.MethodGet, "/tasks/pending", "", userID)
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp PendingResponse
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Len(t, resp.Tasks, 2)
		assert.Equal(t, "old one", resp.Tasks[0].Title)
		assert.Equal(t, "2d 3h 15m ago", resp.Tasks[0].PendingSince)
	})

	t.Run("empty bucket", func(t *testing.T) {
		mockSvc := NewMockPendingLister(ctrl)
		mockSvc.EXPECT().
			ListPending(gomock.Any(), userID).
			Return([]services.PendingTask{}, nil)

		handler := NewPendingHandler(mockSvc)

		req := authRequest(http.MethodGet, "/tasks/pending", "", userID)
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp PendingResponse
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Len(t, resp.Tasks, 0)
	})

	t.Run("internal server error", func(t *testing.T) {
		mockSvc := NewMockPendingLister(ctrl)
		mockSvc.EXPECT().
			ListPending(gomock.Any(), userID).
			Return(nil, errors.New("database failure"))

		handler := NewPendingHandler(mockSvc)

		req := authRequest(http.MethodGet, "/tasks/pending", "", userID)
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		handler := NewPendingHandler(NewMockPendingLister(ctrl))

		req := httptest.NewRequest(http.MethodGet, "/tasks/pending", nil)
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
