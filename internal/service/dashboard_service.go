package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/viva-go-api/internal/dto"
	"github.com/noah-isme/viva-go-api/internal/models"
	"github.com/noah-isme/viva-go-api/internal/repository"
	"github.com/noah-isme/viva-go-api/pkg/ribbon"
)

const defaultDashboardLimit = 20

// DashboardService aggregates completed interviews and their verdicts for
// the teacher view.
type DashboardService interface {
	GetDashboard(ctx context.Context, query dto.DashboardQuery) (dto.DashboardResponse, error)
}

type dashboardService struct {
	platform   InterviewPlatform
	judge      AnalysisService
	analyses   repository.AnalysisRepository
	sessions   repository.SessionRepository
	events     EventService
	cache      *redis.Client
	cacheTTL   time.Duration
	sanitizer  *bluemonday.Policy
	validator  *validator.Validate
	thresholds models.Thresholds
	logger     zerolog.Logger
	now        func() time.Time
}

// NewDashboardService constructs the teacher dashboard aggregator. The Redis
// client is optional; without it every request recomputes the page.
func NewDashboardService(
	platform InterviewPlatform,
	judge AnalysisService,
	analyses repository.AnalysisRepository,
	sessions repository.SessionRepository,
	events EventService,
	cache *redis.Client,
	cacheTTL time.Duration,
	validate *validator.Validate,
	thresholds models.Thresholds,
	logger zerolog.Logger,
) DashboardService {
	return &dashboardService{
		platform:   platform,
		judge:      judge,
		analyses:   analyses,
		sessions:   sessions,
		events:     events,
		cache:      cache,
		cacheTTL:   cacheTTL,
		sanitizer:  bluemonday.StrictPolicy(),
		validator:  validate,
		thresholds: thresholds,
		logger:     logger.With().Str("component", "dashboard_service").Logger(),
		now:        time.Now,
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context, query dto.DashboardQuery) (dto.DashboardResponse, error) {
	if query.Limit == 0 {
		query.Limit = defaultDashboardLimit
	}
	if query.Sort == "" {
		query.Sort = dto.DashboardSortCompletedAt
	}
	if err := s.validator.Struct(query); err != nil {
		return dto.DashboardResponse{}, err
	}

	cacheKey := fmt.Sprintf("dashboard:teacher:%d:%d:%s", query.Limit, query.Offset, query.Sort)
	if cached, ok := s.readCache(ctx, cacheKey); ok {
		return cached, nil
	}

	interviews, err := s.platform.ListInterviews(ctx)
	if err != nil {
		return dto.DashboardResponse{}, classifyUpstreamError(err)
	}

	entries := make([]dashboardRow, 0, len(interviews))
	for _, interview := range interviews {
		if interview.Status != models.InterviewStatusCompleted {
			continue
		}
		result, err := s.verdictFor(ctx, interview)
		if err != nil {
			return dto.DashboardResponse{}, err
		}
		entries = append(entries, dashboardRow{interview: interview, result: result})
	}

	sortRows(entries, query.Sort)

	response := dto.DashboardResponse{
		Total:   len(entries),
		Limit:   query.Limit,
		Offset:  query.Offset,
		Entries: make([]dto.DashboardEntry, 0, query.Limit),
	}

	for i := query.Offset; i < len(entries) && i < query.Offset+query.Limit; i++ {
		response.Entries = append(response.Entries, s.toEntry(entries[i]))
	}

	s.writeCache(ctx, cacheKey, response)
	return response, nil
}

type dashboardRow struct {
	interview ribbon.Interview
	result    models.AnalysisResult
}

// verdictFor reuses any cached verdict, quota placeholders included. On a
// miss it judges the transcript; a quota failure is converted into a cached
// placeholder so one exhausted key cannot wedge the whole dashboard.
func (s *dashboardService) verdictFor(ctx context.Context, interview ribbon.Interview) (models.AnalysisResult, error) {
	cached, found, err := s.analyses.Get(ctx, interview.ID)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	if found {
		return cached, nil
	}

	session, hasSession := s.sessions.Get(interview.ID)

	result, err := s.judge.Judge(ctx, interview.Transcript, session.Code)
	if err != nil {
		if !errors.Is(err, ErrQuotaExceeded) {
			return models.AnalysisResult{}, err
		}
		s.logger.Warn().Str("interview_id", interview.ID).Msg("quota exhausted, caching placeholder verdict")
		placeholder := models.QuotaPlaceholder(interview.ID, session.Snapshot(), s.now().UTC())
		if err := s.analyses.Put(ctx, placeholder); err != nil {
			return models.AnalysisResult{}, err
		}
		return placeholder, nil
	}

	result.InterviewID = interview.ID
	if hasSession {
		result.Submission = session.Snapshot()
	}

	if interview.Transcript == "" {
		return result, nil
	}

	if err := s.analyses.Put(ctx, result); err != nil {
		return models.AnalysisResult{}, err
	}

	if s.events != nil {
		s.events.PublishAnalysis(ctx, dto.AnalysisEvent{
			InterviewID:   result.InterviewID,
			Score:         result.Score,
			SimpleVerdict: result.SimpleVerdict(s.thresholds),
			Structured:    result.Structured,
			AnalyzedAt:    result.AnalyzedAt,
		})
	}

	return result, nil
}

func (s *dashboardService) toEntry(row dashboardRow) dto.DashboardEntry {
	return dto.DashboardEntry{
		InterviewID:   row.interview.ID,
		StudentName:   s.sanitizer.Sanitize(row.result.Submission.Name),
		Language:      row.result.Submission.Language,
		CompletedAt:   row.interview.CompletedAt,
		Score:         row.result.Score,
		Confidence:    row.result.Confidence,
		AILikelihood:  row.result.Likelihood(s.thresholds),
		SimpleVerdict: row.result.SimpleVerdict(s.thresholds),
		Reasoning:     s.sanitizer.Sanitize(row.result.Reasoning),
		Indecisive:    row.result.Indecisive,
		QuotaExceeded: row.result.QuotaExceeded,
	}
}

// sortRows orders newest-completed first, or lowest score first so the most
// suspicious submissions lead the page.
func sortRows(rows []dashboardRow, sortBy string) {
	switch sortBy {
	case dto.DashboardSortScore:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].result.Score < rows[j].result.Score
		})
	default:
		sort.SliceStable(rows, func(i, j int) bool {
			left, right := rows[i].interview.CompletedAt, rows[j].interview.CompletedAt
			if left == nil {
				return false
			}
			if right == nil {
				return true
			}
			return left.After(*right)
		})
	}
}

func (s *dashboardService) readCache(ctx context.Context, key string) (dto.DashboardResponse, bool) {
	if s.cache == nil {
		return dto.DashboardResponse{}, false
	}

	raw, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("dashboard cache read failed")
		}
		return dto.DashboardResponse{}, false
	}

	var response dto.DashboardResponse
	if err := json.Unmarshal([]byte(raw), &response); err != nil {
		s.logger.Warn().Err(err).Msg("dashboard cache entry corrupt")
		return dto.DashboardResponse{}, false
	}
	return response, true
}

func (s *dashboardService) writeCache(ctx context.Context, key string, response dto.DashboardResponse) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("dashboard cache write failed")
	}
}
