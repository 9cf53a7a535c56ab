package models

// Interview lifecycle states as reported by the interview platform. The
// platform's raw payloads are normalized into ribbon.Interview at the client
// boundary; only the status vocabulary is shared across layers.
const (
	InterviewStatusPending   = "pending"
	InterviewStatusCompleted = "completed"
)
