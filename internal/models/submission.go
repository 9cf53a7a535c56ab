package models

import "time"

// CodeSubmission is the transient session record created when a student
// submits code. It lives in memory only; a process restart loses it, which
// the status path reports as a lost session rather than an error.
type CodeSubmission struct {
	InterviewID string    `json:"interview_id"`
	FlowID      string    `json:"flow_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Language    string    `json:"language"`
	Code        string    `json:"code"`
	Questions   []string  `json:"questions"`
	CreatedAt   time.Time `json:"created_at"`
}

// Snapshot freezes the submitter identity and code for the audit trail
// embedded in an AnalysisResult.
func (s CodeSubmission) Snapshot() SubmissionSnapshot {
	return SubmissionSnapshot{
		Name:     s.Name,
		Email:    s.Email,
		Language: s.Language,
		Code:     s.Code,
	}
}
