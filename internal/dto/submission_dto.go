package dto

// SubmissionRequest is the payload a student sends to start the workflow.
// Code may arrive inline or as an uploaded source file; the handler folds an
// upload into Code before validation.
type SubmissionRequest struct {
	Code     string `json:"code" validate:"required,min=1,max=100000"`
	Language string `json:"language" validate:"required,max=64"`
	Name     string `json:"name" validate:"required,max=128"`
	Email    string `json:"email" validate:"required,email"`
}

// SubmissionResponse returns the provisioned interview to the student.
type SubmissionResponse struct {
	InterviewID string   `json:"interview_id"`
	FlowID      string   `json:"flow_id"`
	JoinLink    string   `json:"join_link"`
	Questions   []string `json:"questions"`
}
