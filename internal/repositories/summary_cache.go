package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-task-tracker/internal/logger"
	"github.com/sbilibin2017/gw-task-tracker/internal/models"
)

// SummaryCacheRepository provides cached day-wise summaries using Redis
type SummaryCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for cached summaries
}

// NewSummaryCacheRepository creates a new repository instance with the given TTL
func NewSummaryCacheRepository(client *redis.Client, expiration time.Duration) *SummaryCacheRepository {
	return &SummaryCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func summaryKey(userID uuid.UUID, startDate, endDate *string) string {
	start, end := "open", "open"
	if startDate != nil {
		start = *startDate
	}
	if endDate != nil {
		end = *endDate
	}
	return fmt.Sprintf("day_summary:%s:%s:%s", userID, start, end)
}

// Get fetches a cached summary for a user and date range
func (r *SummaryCacheRepository) Get(ctx context.Context, userID uuid.UUID, startDate, endDate *string) ([]models.DaySummary, error) {
	key := summaryKey(userID, startDate, endDate)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		logger.Log.Infow(
			"key", key,
			"result", val,
			"error", err,
		)
		if err == redis.Nil {
			return nil, fmt.Errorf("day summary not found in cache for %s", key)
		}
		return nil, err
	}

	var summary []models.DaySummary
	if err := json.Unmarshal([]byte(val), &summary); err != nil {
		logger.Log.Infow(
			"key", key,
			"value", val,
			"error", err,
		)
		return nil, err
	}

	logger.Log.Infow(
		"key", key,
		"result", len(summary),
		"error", nil,
	)

	return summary, nil
}

// Set caches a summary for a user and date range with expiration
func (r *SummaryCacheRepository) Set(ctx context.Context, userID uuid.UUID, startDate, endDate *string, summary []models.DaySummary) error {
	key := summaryKey(userID, startDate, endDate)

	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	err = r.client.Set(ctx, key, data, r.exp).Err()

	logger.Log.Infow(
		"key", key,
		"rows", len(summary),
		"result", "ok",
		"error", err,
	)

	return err
}
