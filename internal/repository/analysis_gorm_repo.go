package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/viva-go-api/internal/models"
)

// AnalysisRecord is the persisted row backing the postgres cache driver. The
// verdict itself is stored as an opaque JSON payload so the row schema never
// chases the result shape.
type AnalysisRecord struct {
	InterviewID string         `gorm:"primaryKey;size:128"`
	Payload     datatypes.JSON `gorm:"not null"`
	AnalyzedAt  time.Time      `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName keeps the table name stable across gorm naming strategies.
func (AnalysisRecord) TableName() string { return "analysis_results" }

type gormAnalysisRepository struct {
	db *gorm.DB
}

// NewGormAnalysisRepository returns the database driver for the result cache.
// The caller is responsible for running AutoMigrate(&AnalysisRecord{}).
func NewGormAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &gormAnalysisRepository{db: db}
}

func (r *gormAnalysisRepository) Get(ctx context.Context, interviewID string) (models.AnalysisResult, bool, error) {
	var record AnalysisRecord
	err := r.db.WithContext(ctx).First(&record, "interview_id = ?", interviewID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.AnalysisResult{}, false, nil
	}
	if err != nil {
		return models.AnalysisResult{}, false, fmt.Errorf("read analysis record: %w", err)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(record.Payload, &result); err != nil {
		return models.AnalysisResult{}, false, fmt.Errorf("decode analysis record: %w", err)
	}

	return result, true, nil
}

func (r *gormAnalysisRepository) Put(ctx context.Context, result models.AnalysisResult) error {
	if result.InterviewID == "" {
		return fmt.Errorf("analysis result missing interview id")
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode analysis result: %w", err)
	}

	record := AnalysisRecord{
		InterviewID: result.InterviewID,
		Payload:     datatypes.JSON(payload),
		AnalyzedAt:  result.AnalyzedAt,
	}

	err = r.db.WithContext(ctx).
		Where("interview_id = ?", result.InterviewID).
		Assign(map[string]interface{}{
			"payload":     record.Payload,
			"analyzed_at": record.AnalyzedAt,
		}).
		FirstOrCreate(&record).Error
	if err != nil {
		return fmt.Errorf("write analysis record: %w", err)
	}

	return nil
}
