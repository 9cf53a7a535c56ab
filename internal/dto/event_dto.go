package dto

import "time"

// AnalysisEvent announces a freshly computed verdict to dashboard clients.
// Cache hits do not produce events.
type AnalysisEvent struct {
	InterviewID   string    `json:"interview_id"`
	Score         int       `json:"score"`
	SimpleVerdict string    `json:"simple_verdict"`
	Structured    bool      `json:"structured"`
	AnalyzedAt    time.Time `json:"analyzed_at"`
}
