package repository

import (
	"sync"

	"github.com/noah-isme/viva-go-api/internal/models"
)

// SessionRepository holds the in-memory submission sessions keyed by
// interview identifier. Sessions do not survive a restart; the status path
// reports that as a lost session and judges without code context.
type SessionRepository interface {
	Get(interviewID string) (models.CodeSubmission, bool)
	Put(submission models.CodeSubmission)
}

type sessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]models.CodeSubmission
}

// NewSessionRepository builds an empty in-memory session store.
func NewSessionRepository() SessionRepository {
	return &sessionRepository{sessions: make(map[string]models.CodeSubmission)}
}

func (r *sessionRepository) Get(interviewID string) (models.CodeSubmission, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	submission, ok := r.sessions[interviewID]
	return submission, ok
}

func (r *sessionRepository) Put(submission models.CodeSubmission) {
	if submission.InterviewID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[submission.InterviewID] = submission
}
