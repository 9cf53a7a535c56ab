package models

import "time"

// Confidence tiers reported by the authenticity judge.
const (
	ConfidenceLow        = "low"
	ConfidenceMedium     = "medium"
	ConfidenceHigh       = "high"
	ConfidenceIndecisive = "indecisive"
	ConfidenceUnknown    = "unknown"
)

// AI likelihood labels derived from score, confidence and the indecisive flag.
const (
	LikelihoodLikelyAI      = "likely AI-generated"
	LikelihoodPossiblyAI    = "possibly AI-generated"
	LikelihoodPossiblyHuman = "possibly human-written"
	LikelihoodLikelyHuman   = "likely human-written"
	LikelihoodIndecisive    = "indecisive"
	LikelihoodUnknown       = "unknown"
	LikelihoodQuotaExceeded = "Analysis unavailable (quota exceeded)"
)

// Origin tags for suspicious phrases.
const (
	PhraseOriginCode       = "code"
	PhraseOriginTranscript = "transcript"
)

// DefaultScore is used when the model returns no usable score.
const DefaultScore = 50

// Thresholds holds the inclusive lower bounds used to map a score onto a
// likelihood label. Hand-tuned, exposed as configuration rather than baked in.
type Thresholds struct {
	LikelyHuman   int
	PossiblyHuman int
	PossiblyAI    int
}

// DefaultThresholds returns the standard 30/50/70 score bands.
func DefaultThresholds() Thresholds {
	return Thresholds{LikelyHuman: 70, PossiblyHuman: 50, PossiblyAI: 30}
}

// SuspiciousPhrase is a verbatim quote the judge flagged, with where it came
// from and why it stood out.
type SuspiciousPhrase struct {
	Text   string `json:"text"`
	Origin string `json:"origin"`
	Reason string `json:"reason"`
}

// SubmissionSnapshot captures the submitter identity and code at analysis
// time. The live session may be gone by the time anyone audits the verdict.
type SubmissionSnapshot struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Language string `json:"language"`
	Code     string `json:"code"`
}

// AnalysisResult is the normalized authorship verdict for one interview.
// Likelihood labels are never stored; they are derived on read so technical
// and simplified consumers always agree with the underlying score.
type AnalysisResult struct {
	InterviewID       string             `json:"interview_id"`
	Score             int                `json:"score"`
	Confidence        string             `json:"confidence"`
	Reasoning         string             `json:"reasoning"`
	RedFlags          []string           `json:"red_flags"`
	HumanIndicators   []string           `json:"human_indicators"`
	KeyObservations   []string           `json:"key_observations"`
	SuspiciousPhrases []SuspiciousPhrase `json:"suspicious_phrases"`
	Indecisive        bool               `json:"indecisive"`
	Structured        bool               `json:"structured"`
	QuotaExceeded     bool               `json:"quota_exceeded,omitempty"`
	AnalyzedAt        time.Time          `json:"analyzed_at"`
	Submission        SubmissionSnapshot `json:"submission"`
}

// ClampScore forces a raw model score into [0,100]. A nil score means the
// model did not provide one and falls back to the midpoint.
func ClampScore(raw *float64) int {
	if raw == nil {
		return DefaultScore
	}
	score := int(*raw)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// DeriveLikelihood maps (score, confidence, indecisive) onto the four-tier
// likelihood scale. Bounds are inclusive and checked in descending order, so
// a score of exactly LikelyHuman lands in the likely-human band.
func DeriveLikelihood(score int, confidence string, indecisive bool, t Thresholds) string {
	if confidence == ConfidenceUnknown {
		return LikelihoodUnknown
	}
	if indecisive || confidence == ConfidenceIndecisive {
		return LikelihoodIndecisive
	}

	switch {
	case score >= t.LikelyHuman:
		return LikelihoodLikelyHuman
	case score >= t.PossiblyHuman:
		return LikelihoodPossiblyHuman
	case score >= t.PossiblyAI:
		return LikelihoodPossiblyAI
	default:
		return LikelihoodLikelyAI
	}
}

// DeriveSimpleVerdict collapses the four-tier scale into a coarse label for
// non-technical consumers.
func DeriveSimpleVerdict(score int, confidence string, indecisive bool, t Thresholds) string {
	if confidence == ConfidenceUnknown {
		return LikelihoodUnknown
	}
	if indecisive || confidence == ConfidenceIndecisive {
		return LikelihoodIndecisive
	}
	if score >= t.PossiblyHuman {
		return LikelihoodLikelyHuman
	}
	return LikelihoodLikelyAI
}

// Likelihood derives the technical four-tier label for this result.
func (r AnalysisResult) Likelihood(t Thresholds) string {
	if r.QuotaExceeded {
		return LikelihoodQuotaExceeded
	}
	return DeriveLikelihood(r.Score, r.Confidence, r.Indecisive, t)
}

// SimpleVerdict derives the coarse label for this result.
func (r AnalysisResult) SimpleVerdict(t Thresholds) string {
	if r.QuotaExceeded {
		return LikelihoodQuotaExceeded
	}
	return DeriveSimpleVerdict(r.Score, r.Confidence, r.Indecisive, t)
}

// QuotaPlaceholder builds the cached stand-in written when a dashboard
// refresh hits the generative service quota. It is not terminal: the detail
// path treats it as a cache miss and replaces it on a successful retry.
func QuotaPlaceholder(interviewID string, snapshot SubmissionSnapshot, at time.Time) AnalysisResult {
	return AnalysisResult{
		InterviewID:       interviewID,
		Score:             0,
		Confidence:        ConfidenceUnknown,
		Reasoning:         "Analysis skipped because the generative service quota was exceeded.",
		RedFlags:          []string{},
		HumanIndicators:   []string{},
		KeyObservations:   []string{},
		SuspiciousPhrases: []SuspiciousPhrase{},
		QuotaExceeded:     true,
		AnalyzedAt:        at,
		Submission:        snapshot,
	}
}
