package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-task-tracker/internal/models"
	"github.com/sbilibin2017/gw-task-tracker/internal/services"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestTaskService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWriter := services.NewMockTaskWriter(ctrl)
	mockReader := services.NewMockTaskReader(ctrl)

	svc := services.NewTaskService(mockWriter, mockReader, nil, nil)

	userID := uuid.New()

	tests := []struct {
		name      string
		title     string
		taskDate  string
		taskTime  *string
		saveErr   error
		expectSave bool
		wantErr   error
	}{
		{
			name:       "successful creation",
			title:      "buy milk",
			taskDate:   "2025-06-01",
			expectSave: true,
		},
		{
			name:       "creation with time",
			title:      "standup",
			taskDate:   "2025-06-01",
			taskTime:   strPtr("09:30"),
			expectSave: true,
		},
		{
			name:     "empty title",
			title:    "",
			taskDate: "2025-06-01",
			wantErr:  services.ErrEmptyTitle,
		},
		{
			name:     "whitespace title",
			title:    "   ",
			taskDate: "2025-06-01",
			wantErr:  services.ErrEmptyTitle,
		},
		{
			name:     "bad date",
			title:    "buy milk",
			taskDate: "01-06-2025",
			wantErr:  services.ErrInvalidDate,
		},
		{
			name:     "bad time",
			title:    "buy milk",
			taskDate: "2025-06-01",
			taskTime: strPtr("9am"),
			wantErr:  services.ErrInvalidTime,
		},
		{
			name:       "save error",
			title:      "buy milk",
			taskDate:   "2025-06-01",
			saveErr:    errors.New("db error"),
			expectSave: true,
			wantErr:    errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.expectSave {
				mockWriter.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					Return(tt.saveErr)
			}

			taskID, err := svc.Create(context.Background(), userID, tt.title, nil, tt.taskDate, tt.taskTime)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				assert.Equal(t, uuid.Nil, taskID)
			} else {
				assert.NoError(t, err)
				assert.NotEqual(t, uuid.Nil, taskID)
			}
		})
	}
}

// Creation counts as the first transition into pending: created_at,
// status_changed_at and pending_from must all carry the same timestamp.
func TestTaskService_Create_Fields(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWriter := services.NewMockTaskWriter(ctrl)
	mockReader := services.NewMockTaskReader(ctrl)

	svc := services.NewTaskService(mockWriter, mockReader, nil, nil)

	userID := uuid.New()
	desc := "with notes"

	var saved *models.TaskDB
	mockWriter.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, task *models.TaskDB) error {
			saved = task
			return nil
		})

	taskID, err := svc.Create(context.Background(), userID, "  trim me  ", &desc, "2025-06-01", strPtr("14:00"))
	assert.NoError(t, err)
	assert.NotNil(t, saved)

	assert.Equal(t, taskID, saved.TaskID)
	assert.Equal(t, userID, saved.UserID)
	assert.Equal(t, "trim me", saved.Title)
	assert.Equal(t, &desc, saved.Description)
	assert.Equal(t, "2025-06-01", saved.TaskDate)
	assert.Equal(t, "14:00", *saved.TaskTime)
	assert.Equal(t, models.StatusPending, saved.Status)
	assert.Equal(t, saved.CreatedAt, saved.StatusChangedAt)
	if assert.NotNil(t, saved.PendingFrom) {
		assert.Equal(t, saved.CreatedAt, *saved.PendingFrom)
	}

	_, parseErr := time.Parse(models.TimestampLayout, saved.CreatedAt)
	assert.NoError(t, parseErr)
}

func TestTaskService_SetStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWriter := services.NewMockTaskWriter(ctrl)
	mockReader := services.NewMockTaskReader(ctrl)

	svc := services.NewTaskService(mockWriter, mockReader, nil, nil)

	userID := uuid.New()
	taskID := uuid.New()

	tests := []struct {
		name      string
		status    string
		task      *models.TaskDB
		getErr    error
		updateErr error
		wantErr   error
	}{
		{
			name:   "mark done",
			status: models.StatusDone,
			task:   &models.TaskDB{TaskID: taskID, UserID: userID, Status: models.StatusPending},
		},
		{
			name:   "reopen as pending",
			status: models.StatusPending,
			task:   &models.TaskDB{TaskID: taskID, UserID: userID, Status: models.StatusDone},
		},
		{
			name:   "same status still refreshes",
			status: models.StatusPending,
			task:   &models.TaskDB{TaskID: taskID, UserID: userID, Status: models.StatusPending},
		},
		{
			name:    "invalid status",
			status:  "archived",
			wantErr: services.ErrInvalidStatus,
		},
		{
			name:    "task not found",
			status:  models.StatusDone,
			task:    nil,
			wantErr: services.ErrTaskNotFound,
		},
		{
			name:    "task owned by another user",
			status:  models.StatusDone,
			task:    &models.TaskDB{TaskID: taskID, UserID: uuid.New(), Status: models.StatusPending},
			wantErr: services.ErrTaskNotOwned,
		},
		{
			name:    "read error",
			status:  models.StatusDone,
			getErr:  errors.New("db error"),
			wantErr: errors.New("db error"),
		},
		{
			name:      "update error",
			status:    models.StatusDone,
			task:      &models.TaskDB{TaskID: taskID, UserID: userID, Status: models.StatusPending},
			updateErr: errors.New("update failed"),
			wantErr:   errors.New("update failed"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.status == models.StatusPending || tt.status == models.StatusDone {
				mockReader.EXPECT().
					GetByID(gomock.Any(), taskID).
					Return(tt.task, tt.getErr)
			}

			if tt.task != nil && tt.task.UserID == userID && tt.getErr == nil {
				mockWriter.EXPECT().
					UpdateStatus(gomock.Any(), taskID, tt.status, gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ uuid.UUID, status, statusChangedAt string, pendingFrom *string) error {
						if tt.updateErr != nil {
							return tt.updateErr
						}
						_, parseErr := time.Parse(models.TimestampLayout, statusChangedAt)
						assert.NoError(t, parseErr)
						if status == models.StatusPending {
							if assert.NotNil(t, pendingFrom) {
								assert.Equal(t, statusChangedAt, *pendingFrom)
							}
						} else {
							assert.Nil(t, pendingFrom)
						}
						return nil
					})
			}

			err := svc.SetStatus(context.Background(), userID, taskID, tt.status)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTaskService_ListByDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWriter := services.NewMockTaskWriter(ctrl)
	mockReader := services.NewMockTaskReader(ctrl)

	svc := services.NewTaskService(mockWriter, mockReader, nil, nil)

	userID := uuid.New()
	want := []models.TaskDB{
		{TaskID: uuid.New(), UserID: userID, Title: "first", TaskDate: "2025-06-01"},
		{TaskID: uuid.New(), UserID: userID, Title: "second", TaskDate: "2025-06-01"},
	}

	t.Run("successful list", func(t *testing.T) {
		mockReader.EXPECT().
			GetByDate(gomock.Any(), userID, "2025-06-01").
			Return(want, nil)

		got, err := svc.ListByDate(context.Background(), userID, "2025-06-01")
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("invalid date", func(t *testing.T) {
		got, err := svc.ListByDate(context.Background(), userID, "June 1st")
		assert.ErrorIs(t, err, services.ErrInvalidDate)
		assert.Nil(t, got)
	})

	t.Run("repository error", func(t *testing.T) {
		mockReader.EXPECT().
			GetByDate(gomock.Any(), userID, "2025-06-01").
			Return(nil, errors.New("db error"))

		got, err := svc.ListByDate(context.Background(), userID, "2025-06-01")
		assert.Error(t, err)
		assert.Nil(t, got)
	})
}

func TestTaskService_ListPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWriter := services.NewMockTaskWriter(ctrl)
	mockReader := services.NewMockTaskReader(ctrl)

	svc := services.NewTaskService(mockWriter, mockReader, nil, nil)

	userID := uuid.New()
	now := time.Now()

	twoHoursAgo := now.Add(-2*time.Hour - 15*time.Minute).Format(models.TimestampLayout)
	threeDaysAgo := now.Add(-73 * time.Hour).Format(models.TimestampLayout)

	tasks := []models.TaskDB{
		{
			TaskID:      uuid.New(),
			UserID:      userID,
			Title:       "with pending_from",
			Status:      models.StatusPending,
			CreatedAt:   threeDaysAgo,
			PendingFrom: &twoHoursAgo,
		},
		{
			TaskID:    uuid.New(),
			UserID:    userID,
			Title:     "falls back to created_at",
			Status:    models.StatusPending,
			CreatedAt: threeDaysAgo,
		},
		{
			TaskID:      uuid.New(),
			UserID:      userID,
			Title:       "unparseable timestamp",
			Status:      models.StatusPending,
			CreatedAt:   threeDaysAgo,
			PendingFrom: strPtr("not-a-timestamp"),
		},
	}

	mockReader.EXPECT().
		GetPending(gomock.Any(), userID).
		Return(tasks, nil)

	got, err := svc.ListPending(context.Background(), userID)
	assert.NoError(t, err)
	assert.Len(t, got, 3)

	// pending_from wins over created_at
	assert.Equal(t, "0d 2h 15m ago", got[0].PendingSince)
	// created_at anchor: 73h = 3 days and 1 hour
	assert.Equal(t, "3d 1h 0m ago", got[1].PendingSince)
	// a value that does not parse is shown as-is
	assert.Equal(t, "not-a-timestamp", got[2].PendingSince)
}

func TestTaskService_ListPending_FutureAnchor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWriter := services.NewMockTaskWriter(ctrl)
	mockReader := services.NewMockTaskReader(ctrl)

	svc := services.NewTaskService(mockWriter, mockReader, nil, nil)

	userID := uuid.New()
	future := time.Now().Add(time.Hour).Format(models.TimestampLayout)

	mockReader.EXPECT().
		GetPending(gomock.Any(), userID).
		Return([]models.TaskDB{
			{TaskID: uuid.New(), UserID: userID, Status: models.StatusPending, CreatedAt: future},
		}, nil)

	got, err := svc.ListPending(context.Background(), userID)
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, future, got[0].PendingSince)
}

func TestTaskService_ListPending_RepositoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWriter := services.NewMockTaskWriter(ctrl)
	mockReader := services.NewMockTaskReader(ctrl)

	svc := services.NewTaskService(mockWriter, mockReader, nil, nil)

	userID := uuid.New()
	mockReader.EXPECT().
		GetPending(gomock.Any(), userID).
		Return(nil, errors.New("db error"))

	got, err := svc.ListPending(context.Background(), userID)
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestTaskService_History(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWriter := services.NewMockTaskWriter(ctrl)
	mockReader := services.NewMockTaskReader(ctrl)

	svc := services.NewTaskService(mockWriter, mockReader, nil, nil)

	userID := uuid.New()
	start := "2025-06-01"
	end := "2025-06-30"
	want := []models.TaskDB{{TaskID: uuid.New(), UserID: userID, TaskDate: "2025-06-15"}}

	t.Run("bounded range", func(t *testing.T) {
		mockReader.EXPECT().
			GetHistory(gomock.Any(), userID, &start, &end).
			Return(want, nil)

		got, err := svc.History(context.Background(), userID, &start, &end)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("open range", func(t *testing.T) {
		mockReader.EXPECT().
			GetHistory(gomock.Any(), userID, nil, nil).
			Return(want, nil)

		got, err := svc.History(context.Background(), userID, nil, nil)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("invalid start date", func(t *testing.T) {
		bad := "yesterday"
		got, err := svc.History(context.Background(), userID, &bad, nil)
		assert.ErrorIs(t, err, services.ErrInvalidDate)
		assert.Nil(t, got)
	})

	t.Run("invalid end date", func(t *testing.T) {
		bad := "2025-13-40"
		got, err := svc.History(context.Background(), userID, nil, &bad)
		assert.ErrorIs(t, err, services.ErrInvalidDate)
		assert.Nil(t, got)
	})
}

func TestTaskService_Summarize(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWriter := services.NewMockTaskWriter(ctrl)
	mockReader := services.NewMockTaskReader(ctrl)
	mockCache := services.NewMockSummaryCache(ctrl)

	svc := services.NewTaskService(mockWriter, mockReader, mockCache, nil)

	userID := uuid.New()

	// GetHistory returns dates descending; the summary must come back ascending.
	tasks := []models.TaskDB{
		{TaskID: uuid.New(), UserID: userID, TaskDate: "2025-06-02", Status: models.StatusDone},
		{TaskID: uuid.New(), UserID: userID, TaskDate: "2025-06-02", Status: models.StatusPending},
		{TaskID: uuid.New(), UserID: userID, TaskDate: "2025-06-02", Status: models.StatusDone},
		{TaskID: uuid.New(), UserID: userID, TaskDate: "2025-06-01", Status: models.StatusPending},
	}

	want := []models.DaySummary{
		{TaskDate: "2025-06-01", TotalTasks: 1, Done: 0, Pending: 1},
		{TaskDate: "2025-06-02", TotalTasks: 3, Done: 2, Pending: 1},
	}

	t.Run("cache miss aggregates and caches", func(t *testing.T) {
		mockCache.EXPECT().
			Get(gomock.Any(), userID, nil, nil).
			Return(nil, errors.New("cache miss"))
		mockReader.EXPECT().
			GetHistory(gomock.Any(), userID, nil, nil).
			Return(tasks, nil)
		mockCache.EXPECT().
			Set(gomock.Any(), userID, nil, nil, want).
			Return(nil)

		got, err := svc.Summarize(context.Background(), userID, nil, nil)
		assert.NoError(t, err)
		assert.Equal(t, want, got)

		for _, row := range got {
			assert.Equal(t, row.TotalTasks, row.Done+row.Pending)
		}
	})

	t.Run("cache hit skips repository", func(t *testing.T) {
		mockCache.EXPECT().
			Get(gomock.Any(), userID, nil, nil).
			Return(want, nil)

		got, err := svc.Summarize(context.Background(), userID, nil, nil)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("cache set failure is non-fatal", func(t *testing.T) {
		mockCache.EXPECT().
			Get(gomock.Any(), userID, nil, nil).
			Return(nil, errors.New("cache miss"))
		mockReader.EXPECT().
			GetHistory(gomock.Any(), userID, nil, nil).
			Return(tasks, nil)
		mockCache.EXPECT().
			Set(gomock.Any(), userID, nil, nil, want).
			Return(errors.New("redis down"))

		got, err := svc.Summarize(context.Background(), userID, nil, nil)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("repository error", func(t *testing.T) {
		mockCache.EXPECT().
			Get(gomock.Any(), userID, nil, nil).
			Return(nil, errors.New("cache miss"))
		mockReader.EXPECT().
			GetHistory(gomock.Any(), userID, nil, nil).
			Return(nil, errors.New("db error"))

		got, err := svc.Summarize(context.Background(), userID, nil, nil)
		assert.Error(t, err)
		assert.Nil(t, got)
	})

	t.Run("invalid bounds", func(t *testing.T) {
		bad := "soon"
		got, err := svc.Summarize(context.Background(), userID, &bad, nil)
		assert.ErrorIs(t, err, services.ErrInvalidDate)
		assert.Nil(t, got)
	})
}

func TestTaskService_PublishesEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWriter := services.NewMockTaskWriter(ctrl)
	mockReader := services.NewMockTaskReader(ctrl)
	mockKafka := services.NewMockKafkaWriter(ctrl)

	svc := services.NewTaskService(mockWriter, mockReader, nil, mockKafka)

	userID := uuid.New()

	t.Run("create publishes task_created", func(t *testing.T) {
		mockWriter.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
		mockKafka.EXPECT().
			WriteMessages(gomock.Any(), gomock.Any()).
			Return(nil)

		_, err := svc.Create(context.Background(), userID, "task", nil, "2025-06-01", nil)
		assert.NoError(t, err)
	})

	t.Run("set status publishes status_changed", func(t *testing.T) {
		taskID := uuid.New()
		mockReader.EXPECT().
			GetByID(gomock.Any(), taskID).
			Return(&models.TaskDB{TaskID: taskID, UserID: userID, Status: models.StatusPending}, nil)
		mockWriter.EXPECT().
			UpdateStatus(gomock.Any(), taskID, models.StatusDone, gomock.Any(), gomock.Any()).
			Return(nil)
		mockKafka.EXPECT().
			WriteMessages(gomock.Any(), gomock.Any()).
			Return(nil)

		err := svc.SetStatus(context.Background(), userID, taskID, models.StatusDone)
		assert.NoError(t, err)
	})

	t.Run("publish failure does not fail the operation", func(t *testing.T) {
		mockWriter.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
		mockKafka.EXPECT().
			WriteMessages(gomock.Any(), gomock.Any()).
			Return(fmt.Errorf("broker unavailable"))

		taskID, err := svc.Create(context.Background(), userID, "task", nil, "2025-06-01", nil)
		assert.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, taskID)
	})
}

// Titles keep their inner whitespace after trimming the edges.
func TestTaskService_Create_TitleTrimming(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWriter := services.NewMockTaskWriter(ctrl)
	mockReader := services.NewMockTaskReader(ctrl)

	svc := services.NewTaskService(mockWriter, mockReader, nil, nil)

	var saved *models.TaskDB
	mockWriter.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, task *models.TaskDB) error {
			saved = task
			return nil
		})

	_, err := svc.Create(context.Background(), uuid.New(), "\t  buy  milk  \n", nil, "2025-06-01", nil)
	assert.NoError(t, err)
	assert.Equal(t, "buy  milk", saved.Title)
	assert.False(t, strings.HasPrefix(saved.Title, " "))
}
