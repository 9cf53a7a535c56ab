package dto

import (
	"time"

	"github.com/noah-isme/viva-go-api/internal/models"
)

// SuspiciousPhraseResponse mirrors a flagged quote for API consumers.
type SuspiciousPhraseResponse struct {
	Text   string `json:"text"`
	Origin string `json:"origin"`
	Reason string `json:"reason"`
}

// SubmissionSnapshotResponse is the audit snapshot embedded in a verdict.
type SubmissionSnapshotResponse struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Language string `json:"language"`
	Code     string `json:"code,omitempty"`
}

// AnalysisResponse is the full authenticity verdict. Both likelihood labels
// are derived at response-build time, never read from storage.
type AnalysisResponse struct {
	InterviewID       string                     `json:"interview_id"`
	Score             int                        `json:"score"`
	Confidence        string                     `json:"confidence"`
	AILikelihood      string                     `json:"ai_likelihood"`
	SimpleVerdict     string                     `json:"simple_verdict"`
	Reasoning         string                     `json:"reasoning"`
	RedFlags          []string                   `json:"red_flags"`
	HumanIndicators   []string                   `json:"human_indicators"`
	KeyObservations   []string                   `json:"key_observations"`
	SuspiciousPhrases []SuspiciousPhraseResponse `json:"suspicious_phrases"`
	Indecisive        bool                       `json:"indecisive"`
	Structured        bool                       `json:"structured"`
	QuotaExceeded     bool                       `json:"quota_exceeded,omitempty"`
	AnalyzedAt        time.Time                  `json:"analyzed_at"`
	Submission        SubmissionSnapshotResponse `json:"submission"`
}

// InterviewStatusResponse reports interview progress and, once completed,
// the cached or freshly computed verdict.
type InterviewStatusResponse struct {
	InterviewID string            `json:"interview_id"`
	Status      string            `json:"status"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	SessionLost bool              `json:"session_lost,omitempty"`
	Analysis    *AnalysisResponse `json:"analysis,omitempty"`
}

// NewAnalysisResponse converts a stored verdict into its API shape, deriving
// the likelihood labels from the score, confidence and indecisive flag.
func NewAnalysisResponse(result models.AnalysisResult, thresholds models.Thresholds) AnalysisResponse {
	phrases := make([]SuspiciousPhraseResponse, 0, len(result.SuspiciousPhrases))
	for _, phrase := range result.SuspiciousPhrases {
		phrases = append(phrases, SuspiciousPhraseResponse{
			Text:   phrase.Text,
			Origin: phrase.Origin,
			Reason: phrase.Reason,
		})
	}

	return AnalysisResponse{
		InterviewID:       result.InterviewID,
		Score:             result.Score,
		Confidence:        result.Confidence,
		AILikelihood:      result.Likelihood(thresholds),
		SimpleVerdict:     result.SimpleVerdict(thresholds),
		Reasoning:         result.Reasoning,
		RedFlags:          result.RedFlags,
		HumanIndicators:   result.HumanIndicators,
		KeyObservations:   result.KeyObservations,
		SuspiciousPhrases: phrases,
		Indecisive:        result.Indecisive,
		Structured:        result.Structured,
		QuotaExceeded:     result.QuotaExceeded,
		AnalyzedAt:        result.AnalyzedAt,
		Submission: SubmissionSnapshotResponse{
			Name:     result.Submission.Name,
			Email:    result.Submission.Email,
			Language: result.Submission.Language,
			Code:     result.Submission.Code,
		},
	}
}
