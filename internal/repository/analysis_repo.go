package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/viva-go-api/internal/models"
)

// AnalysisRepository is the write-through result cache fronting the
// authenticity judge. Once an interview has an entry, the judge is never
// billed for it again, across restarts included.
type AnalysisRepository interface {
	Get(ctx context.Context, interviewID string) (models.AnalysisResult, bool, error)
	Put(ctx context.Context, result models.AnalysisResult) error
}

type cacheEntry struct {
	InterviewID string                `json:"interview_id"`
	Result      models.AnalysisResult `json:"result"`
}

type cacheDocument struct {
	Analyses []cacheEntry `json:"analyses"`
}

// fileAnalysisRepository persists the cache as one JSON document. Every put
// rewrites the whole file; writes happen at most once per interview, so the
// O(total entries) cost never matters in practice.
type fileAnalysisRepository struct {
	path    string
	logger  zerolog.Logger
	mu      sync.RWMutex
	order   []string
	results map[string]models.AnalysisResult
}

// NewFileAnalysisRepository loads the backing document and returns the file
// driver. A missing or corrupt file starts an empty cache; corruption is
// logged, never fatal.
func NewFileAnalysisRepository(path string, logger zerolog.Logger) AnalysisRepository {
	repo := &fileAnalysisRepository{
		path:    path,
		logger:  logger.With().Str("component", "analysis_file_repo").Logger(),
		results: make(map[string]models.AnalysisResult),
	}
	repo.load()
	return repo
}

func (r *fileAnalysisRepository) load() {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warn().Err(err).Str("path", r.path).Msg("analysis cache unreadable, starting empty")
		}
		return
	}

	var document cacheDocument
	if err := json.Unmarshal(raw, &document); err != nil {
		r.logger.Warn().Err(err).Str("path", r.path).Msg("analysis cache corrupt, starting empty")
		return
	}

	for _, entry := range document.Analyses {
		if entry.InterviewID == "" {
			continue
		}
		if _, exists := r.results[entry.InterviewID]; !exists {
			r.order = append(r.order, entry.InterviewID)
		}
		r.results[entry.InterviewID] = entry.Result
	}

	r.logger.Info().Int("entries", len(r.results)).Msg("analysis cache loaded")
}

func (r *fileAnalysisRepository) Get(_ context.Context, interviewID string) (models.AnalysisResult, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, ok := r.results[interviewID]
	return result, ok, nil
}

func (r *fileAnalysisRepository) Put(_ context.Context, result models.AnalysisResult) error {
	if result.InterviewID == "" {
		return fmt.Errorf("analysis result missing interview id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.results[result.InterviewID]; !exists {
		r.order = append(r.order, result.InterviewID)
	}
	r.results[result.InterviewID] = result

	return r.flushLocked()
}

func (r *fileAnalysisRepository) flushLocked() error {
	document := cacheDocument{Analyses: make([]cacheEntry, 0, len(r.order))}
	for _, interviewID := range r.order {
		document.Analyses = append(document.Analyses, cacheEntry{
			InterviewID: interviewID,
			Result:      r.results[interviewID],
		})
	}

	payload, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("encode analysis cache: %w", err)
	}

	if err := os.WriteFile(r.path, payload, 0600); err != nil {
		return fmt.Errorf("write analysis cache: %w", err)
	}

	return nil
}
