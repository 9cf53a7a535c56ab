package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/viva-go-api/internal/models"
)

type stubGenerator struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func newJudge(t *testing.T, generator *stubGenerator) AnalysisService {
	t.Helper()

	svc, err := NewAnalysisService(generator, zerolog.Nop())
	require.NoError(t, err)
	return svc
}

func TestJudgeAbsentTranscriptShortCircuits(t *testing.T) {
	generator := &stubGenerator{err: errors.New("must not be called")}
	svc := newJudge(t, generator)

	result, err := svc.Judge(context.Background(), "", "def f(): return 1")
	require.NoError(t, err)
	require.Zero(t, generator.calls)
	require.Zero(t, result.Score)
	require.Equal(t, models.ConfidenceUnknown, result.Confidence)
	require.Equal(t, "No interview data available", result.Reasoning)
	require.Equal(t, models.LikelihoodUnknown, result.Likelihood(models.DefaultThresholds()))
}

func TestJudgeStructuredPath(t *testing.T) {
	generator := &stubGenerator{response: `Here is my assessment:
{"score": 78, "confidence": "high", "reasoning": "Explained the recursion and a bug they fixed.",
 "redFlags": [], "humanIndicators": ["recalled an off-by-one fix"], "keyObservations": ["consistent vocabulary"],
 "indecisive": false, "suspiciousPhrases": [{"text": "as a large language model", "origin": "transcript", "reason": "assistant phrasing"}]}
Hope that helps.`}
	svc := newJudge(t, generator)

	result, err := svc.Judge(context.Background(), "transcript text", "code")
	require.NoError(t, err)
	require.True(t, result.Structured)
	require.Equal(t, 78, result.Score)
	require.Equal(t, models.ConfidenceHigh, result.Confidence)
	require.Equal(t, "Explained the recursion and a bug they fixed.", result.Reasoning)
	require.Equal(t, []string{"recalled an off-by-one fix"}, result.HumanIndicators)
	require.Len(t, result.SuspiciousPhrases, 1)
	require.Equal(t, models.PhraseOriginTranscript, result.SuspiciousPhrases[0].Origin)
	require.Equal(t, models.LikelihoodLikelyHuman, result.Likelihood(models.DefaultThresholds()))
}

func TestJudgeStructuredPathFillsDefaults(t *testing.T) {
	generator := &stubGenerator{response: `{"reasoning": ""}`}
	svc := newJudge(t, generator)

	result, err := svc.Judge(context.Background(), "transcript", "")
	require.NoError(t, err)
	require.True(t, result.Structured)
	require.Equal(t, models.DefaultScore, result.Score)
	require.Equal(t, models.ConfidenceMedium, result.Confidence)
	require.Equal(t, "Analysis completed", result.Reasoning)
	require.NotNil(t, result.RedFlags)
	require.Empty(t, result.RedFlags)
}

func TestJudgeClampsOutOfRangeScore(t *testing.T) {
	generator := &stubGenerator{response: `{"score": 150, "confidence": "high"}`}
	svc := newJudge(t, generator)

	result, err := svc.Judge(context.Background(), "transcript", "")
	require.NoError(t, err)
	require.Equal(t, 100, result.Score)
}

func TestJudgeHeuristicPathWhenNoObject(t *testing.T) {
	raw := "No JSON here. score: 35 with low confidence."
	generator := &stubGenerator{response: raw}
	svc := newJudge(t, generator)

	result, err := svc.Judge(context.Background(), "transcript", "")
	require.NoError(t, err)
	require.False(t, result.Structured)
	require.Equal(t, 35, result.Score)
	require.Equal(t, models.ConfidenceLow, result.Confidence)
	require.Equal(t, raw, result.Reasoning)
}

func TestJudgeHeuristicPathWhenMalformedObject(t *testing.T) {
	generator := &stubGenerator{response: `{"score": 60, "confidence": oops}`}
	svc := newJudge(t, generator)

	result, err := svc.Judge(context.Background(), "transcript", "")
	require.NoError(t, err)
	require.False(t, result.Structured)
	require.Equal(t, 60, result.Score)
}

func TestJudgeHeuristicPathWhenSchemaRejects(t *testing.T) {
	// Well-formed JSON, but score is a non-numeric string: the schema gate
	// rejects it and the heuristics recover the digits from the raw text.
	generator := &stubGenerator{response: `{"score": "eighty", "confidence": "high"} I'd call it 75%`}
	svc := newJudge(t, generator)

	result, err := svc.Judge(context.Background(), "transcript", "")
	require.NoError(t, err)
	require.False(t, result.Structured)
	require.Equal(t, 75, result.Score)
}

func TestJudgeGreedyObjectExtraction(t *testing.T) {
	// Two objects in the response: the greedy first-{ to last-} span covers
	// both and fails to parse, so the heuristics take over.
	generator := &stubGenerator{response: `{"score": 10} trailing {"score": 90}`}
	svc := newJudge(t, generator)

	result, err := svc.Judge(context.Background(), "transcript", "")
	require.NoError(t, err)
	require.False(t, result.Structured)
	require.Equal(t, 10, result.Score)
}

func TestJudgePropagatesUpstreamFailure(t *testing.T) {
	generator := &stubGenerator{err: errors.New("connection refused")}
	svc := newJudge(t, generator)

	_, err := svc.Judge(context.Background(), "transcript", "")
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestJudgeClassifiesQuotaFailure(t *testing.T) {
	generator := &stubGenerator{err: errors.New("429: insufficient_quota for this billing period")}
	svc := newJudge(t, generator)

	_, err := svc.Judge(context.Background(), "transcript", "")
	require.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestJudgePromptEmbedsTranscriptAndCode(t *testing.T) {
	generator := &stubGenerator{response: `{"score": 50}`}
	svc := newJudge(t, generator)

	_, err := svc.Judge(context.Background(), "the transcript body", "the original code")
	require.NoError(t, err)
	require.Len(t, generator.prompts, 1)
	require.Contains(t, generator.prompts[0], "the transcript body")
	require.Contains(t, generator.prompts[0], "the original code")
}
