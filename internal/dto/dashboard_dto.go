package dto

import "time"

// Dashboard sort orders.
const (
	DashboardSortCompletedAt = "completed_at"
	DashboardSortScore       = "score"
)

// DashboardQuery carries pagination and sorting for the teacher dashboard.
type DashboardQuery struct {
	Limit  int    `validate:"gte=1,lte=100"`
	Offset int    `validate:"gte=0"`
	Sort   string `validate:"omitempty,oneof=completed_at score"`
}

// DashboardEntry is one completed interview row with its coarse verdict.
type DashboardEntry struct {
	InterviewID   string     `json:"interview_id"`
	StudentName   string     `json:"student_name,omitempty"`
	Language      string     `json:"language,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	Score         int        `json:"score"`
	Confidence    string     `json:"confidence"`
	AILikelihood  string     `json:"ai_likelihood"`
	SimpleVerdict string     `json:"simple_verdict"`
	Reasoning     string     `json:"reasoning"`
	Indecisive    bool       `json:"indecisive"`
	QuotaExceeded bool       `json:"quota_exceeded,omitempty"`
}

// DashboardResponse is the aggregate teacher view.
type DashboardResponse struct {
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
	Entries []DashboardEntry `json:"entries"`
}
