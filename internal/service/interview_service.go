package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/viva-go-api/internal/dto"
	"github.com/noah-isme/viva-go-api/internal/models"
	"github.com/noah-isme/viva-go-api/internal/observability"
	"github.com/noah-isme/viva-go-api/internal/repository"
	"github.com/noah-isme/viva-go-api/pkg/ribbon"
)

// InterviewPlatform is the seam to the voice-interview platform.
// *ribbon.Client satisfies it.
type InterviewPlatform interface {
	CreateFlow(ctx context.Context, input ribbon.CreateFlowInput) (string, error)
	CreateInterview(ctx context.Context, flowID, name, email string) (ribbon.Interview, error)
	ListInterviews(ctx context.Context) ([]ribbon.Interview, error)
	FindInterview(ctx context.Context, interviewID string) (ribbon.Interview, error)
}

// InterviewService drives the submit and poll-status workflows.
type InterviewService interface {
	Submit(ctx context.Context, payload dto.SubmissionRequest) (dto.SubmissionResponse, error)
	Status(ctx context.Context, interviewID string) (dto.InterviewStatusResponse, error)
}

type interviewService struct {
	platform   InterviewPlatform
	questions  QuestionService
	judge      AnalysisService
	analyses   repository.AnalysisRepository
	sessions   repository.SessionRepository
	events     EventService
	validator  *validator.Validate
	thresholds models.Thresholds
	logger     zerolog.Logger
	now        func() time.Time
}

// NewInterviewService constructs the interview orchestrator.
func NewInterviewService(
	platform InterviewPlatform,
	questions QuestionService,
	judge AnalysisService,
	analyses repository.AnalysisRepository,
	sessions repository.SessionRepository,
	events EventService,
	validate *validator.Validate,
	thresholds models.Thresholds,
	logger zerolog.Logger,
) InterviewService {
	return &interviewService{
		platform:   platform,
		questions:  questions,
		judge:      judge,
		analyses:   analyses,
		sessions:   sessions,
		events:     events,
		validator:  validate,
		thresholds: thresholds,
		logger:     logger.With().Str("component", "interview_service").Logger(),
		now:        time.Now,
	}
}

func (s *interviewService) Submit(ctx context.Context, payload dto.SubmissionRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	questions, err := s.questions.Synthesize(ctx, payload.Code, payload.Language)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	flowID, err := s.platform.CreateFlow(ctx, ribbon.CreateFlowInput{
		Title:     fmt.Sprintf("Code authorship interview: %s", payload.Name),
		Questions: questions,
	})
	if err != nil {
		return dto.SubmissionResponse{}, classifyUpstreamError(err)
	}

	interview, err := s.platform.CreateInterview(ctx, flowID, payload.Name, payload.Email)
	if err != nil {
		return dto.SubmissionResponse{}, classifyUpstreamError(err)
	}

	s.sessions.Put(models.CodeSubmission{
		InterviewID: interview.ID,
		FlowID:      flowID,
		Name:        payload.Name,
		Email:       payload.Email,
		Language:    payload.Language,
		Code:        payload.Code,
		Questions:   questions,
		CreatedAt:   s.now().UTC(),
	})

	observability.InterviewsCreated().Inc()
	s.logger.Info().Str("interview_id", interview.ID).Str("flow_id", flowID).Msg("interview provisioned")

	return dto.SubmissionResponse{
		InterviewID: interview.ID,
		FlowID:      flowID,
		JoinLink:    interview.JoinLink,
		Questions:   questions,
	}, nil
}

func (s *interviewService) Status(ctx context.Context, interviewID string) (dto.InterviewStatusResponse, error) {
	interview, err := s.platform.FindInterview(ctx, interviewID)
	if err != nil {
		if errors.Is(err, ribbon.ErrNotFound) {
			return dto.InterviewStatusResponse{}, ErrInterviewNotFound
		}
		return dto.InterviewStatusResponse{}, classifyUpstreamError(err)
	}

	response := dto.InterviewStatusResponse{
		InterviewID: interview.ID,
		Status:      interview.Status,
		CompletedAt: interview.CompletedAt,
	}

	if interview.Status != models.InterviewStatusCompleted {
		return response, nil
	}

	session, hasSession := s.sessions.Get(interviewID)
	response.SessionLost = !hasSession

	result, err := s.resolveAnalysis(ctx, interview, session, hasSession)
	if err != nil {
		return dto.InterviewStatusResponse{}, err
	}

	analysis := dto.NewAnalysisResponse(result, s.thresholds)
	response.Analysis = &analysis

	return response, nil
}

// resolveAnalysis returns the cached verdict when present, otherwise invokes
// the judge once and writes the result through. Cached quota placeholders are
// treated as misses here: this path is user-initiated, so a retry replaces
// the placeholder on success instead of freezing a transient failure forever.
func (s *interviewService) resolveAnalysis(ctx context.Context, interview ribbon.Interview, session models.CodeSubmission, hasSession bool) (models.AnalysisResult, error) {
	cached, found, err := s.analyses.Get(ctx, interview.ID)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	if found && !cached.QuotaExceeded {
		return cached, nil
	}
	if found {
		s.logger.Info().Str("interview_id", interview.ID).Msg("retrying quota placeholder")
	}

	result, err := s.judge.Judge(ctx, interview.Transcript, session.Code)
	if err != nil {
		return models.AnalysisResult{}, err
	}

	result.InterviewID = interview.ID
	if hasSession {
		result.Submission = session.Snapshot()
	}

	// A completed interview can briefly report no transcript. The minimal
	// no-data verdict is not cached so a later poll still gets judged.
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

	s.logger.Info().Str("interview_id", interview.ID).Int("score", result.Score).Bool("structured", result.Structured).Msg("interview judged")
	return result, nil
}
