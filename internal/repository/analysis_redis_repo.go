package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/viva-go-api/internal/models"
)

const analysisKeyPrefix = "analysis:"

// redisAnalysisRepository keeps the result cache in Redis. Entries never
// expire; the cache has no eviction policy by design.
type redisAnalysisRepository struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisAnalysisRepository returns the Redis driver for the result cache.
func NewRedisAnalysisRepository(client *redis.Client, logger zerolog.Logger) AnalysisRepository {
	return &redisAnalysisRepository{
		client: client,
		logger: logger.With().Str("component", "analysis_redis_repo").Logger(),
	}
}

func (r *redisAnalysisRepository) Get(ctx context.Context, interviewID string) (models.AnalysisResult, bool, error) {
	raw, err := r.client.Get(ctx, analysisKeyPrefix+interviewID).Result()
	if errors.Is(err, redis.Nil) {
		return models.AnalysisResult{}, false, nil
	}
	if err != nil {
		return models.AnalysisResult{}, false, fmt.Errorf("read analysis cache: %w", err)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		r.logger.Warn().Err(err).Str("interview_id", interviewID).Msg("corrupt analysis entry, treating as miss")
		return models.AnalysisResult{}, false, nil
	}

	return result, true, nil
}

func (r *redisAnalysisRepository) Put(ctx context.Context, result models.AnalysisResult) error {
	if result.InterviewID == "" {
		return fmt.Errorf("analysis result missing interview id")
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode analysis result: %w", err)
	}

	if err := r.client.Set(ctx, analysisKeyPrefix+result.InterviewID, payload, 0).Err(); err != nil {
		return fmt.Errorf("write analysis cache: %w", err)
	}

	return nil
}
