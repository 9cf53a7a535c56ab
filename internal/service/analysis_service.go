package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/viva-go-api/internal/models"
	"github.com/noah-isme/viva-go-api/internal/observability"
	"github.com/noah-isme/viva-go-api/pkg/ai"
)

// judgeResponseSchema gates the structured parse path. It checks field types
// only; missing fields are filled with defaults during normalization, so
// nothing is required here.
const judgeResponseSchema = `{
	"type": "object",
	"properties": {
		"score": {"type": ["number", "null"]},
		"confidence": {"type": ["string", "null"]},
		"reasoning": {"type": ["string", "null"]},
		"redFlags": {"type": ["array", "null"], "items": {"type": "string"}},
		"humanIndicators": {"type": ["array", "null"], "items": {"type": "string"}},
		"keyObservations": {"type": ["array", "null"], "items": {"type": "string"}},
		"indecisive": {"type": ["boolean", "null"]},
		"suspiciousPhrases": {
			"type": ["array", "null"],
			"items": {
				"type": "object",
				"properties": {
					"text": {"type": "string"},
					"origin": {"type": "string"},
					"reason": {"type": "string"}
				}
			}
		}
	}
}`

// AnalysisService judges whether a transcript is consistent with the
// interviewee having authored the code.
type AnalysisService interface {
	Judge(ctx context.Context, transcript, originalCode string) (models.AnalysisResult, error)
}

type analysisService struct {
	generator ai.Generator
	schema    *jsonschema.Schema
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewAnalysisService builds the authenticity judge.
func NewAnalysisService(generator ai.Generator, logger zerolog.Logger) (AnalysisService, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("judge_response.schema.json", strings.NewReader(judgeResponseSchema)); err != nil {
		return nil, fmt.Errorf("register judge schema: %w", err)
	}
	schema, err := compiler.Compile("judge_response.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile judge schema: %w", err)
	}

	return &analysisService{
		generator: generator,
		schema:    schema,
		logger:    logger.With().Str("component", "analysis_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/viva-go-api/internal/service/analysis"),
		now:       time.Now,
	}, nil
}

func (s *analysisService) Judge(ctx context.Context, transcript, originalCode string) (models.AnalysisResult, error) {
	// The only branch that bypasses the model entirely.
	if strings.TrimSpace(transcript) == "" {
		return models.AnalysisResult{
			Score:             0,
			Confidence:        models.ConfidenceUnknown,
			Reasoning:         "No interview data available",
			RedFlags:          []string{},
			HumanIndicators:   []string{},
			KeyObservations:   []string{},
			SuspiciousPhrases: []models.SuspiciousPhrase{},
			AnalyzedAt:        s.now().UTC(),
		}, nil
	}

	spanCtx, span := s.tracer.Start(ctx, "analysis.judge", trace.WithAttributes(
		attribute.Bool("has_code", originalCode != ""),
	))
	defer span.End()

	raw, err := s.generator.Generate(spanCtx, buildJudgePrompt(transcript, originalCode))
	if err != nil {
		span.RecordError(err)
		return models.AnalysisResult{}, classifyUpstreamError(err)
	}

	payload, structured := s.parseJudgment(raw)
	mode := "heuristic"
	if structured {
		mode = "structured"
	}
	observability.Analyses().WithLabelValues(mode).Inc()
	span.SetAttributes(attribute.Bool("structured", structured))

	return s.normalize(payload, structured), nil
}

// parseJudgment applies the exact parsing policy: the substring from the
// first '{' to the LAST '}' (greedy across the whole response) is parsed and
// schema-checked; anything else falls back to the text heuristics.
func (s *analysisService) parseJudgment(raw string) (judgePayload, bool) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		s.logger.Debug().Msg("no object found in judge response, using heuristics")
		return extractHeuristicJudgment(raw), false
	}

	candidate := []byte(raw[start : end+1])

	var document interface{}
	if err := json.Unmarshal(candidate, &document); err != nil {
		s.logger.Debug().Err(err).Msg("judge response object malformed, using heuristics")
		return extractHeuristicJudgment(raw), false
	}

	if err := s.schema.Validate(document); err != nil {
		s.logger.Debug().Err(err).Msg("judge response failed schema check, using heuristics")
		return extractHeuristicJudgment(raw), false
	}

	var payload judgePayload
	if err := json.Unmarshal(candidate, &payload); err != nil {
		return extractHeuristicJudgment(raw), false
	}

	return payload, true
}

// normalize applies the uniform post-processing both parse paths share.
func (s *analysisService) normalize(payload judgePayload, structured bool) models.AnalysisResult {
	confidence := strings.ToLower(strings.TrimSpace(payload.Confidence))
	switch confidence {
	case models.ConfidenceLow, models.ConfidenceMedium, models.ConfidenceHigh, models.ConfidenceIndecisive:
	default:
		confidence = models.ConfidenceMedium
	}

	reasoning := strings.TrimSpace(payload.Reasoning)
	if reasoning == "" {
		reasoning = "Analysis completed"
	}

	phrases := make([]models.SuspiciousPhrase, 0, len(payload.SuspiciousPhrases))
	for _, phrase := range payload.SuspiciousPhrases {
		origin := strings.ToLower(strings.TrimSpace(phrase.Origin))
		if origin != models.PhraseOriginCode {
			origin = models.PhraseOriginTranscript
		}
		phrases = append(phrases, models.SuspiciousPhrase{
			Text:   phrase.Text,
			Origin: origin,
			Reason: phrase.Reason,
		})
	}

	return models.AnalysisResult{
		Score:             models.ClampScore(payload.Score),
		Confidence:        confidence,
		Reasoning:         reasoning,
		RedFlags:          emptyIfNil(payload.RedFlags),
		HumanIndicators:   emptyIfNil(payload.HumanIndicators),
		KeyObservations:   emptyIfNil(payload.KeyObservations),
		SuspiciousPhrases: phrases,
		Indecisive:        payload.Indecisive,
		Structured:        structured,
		AnalyzedAt:        s.now().UTC(),
	}
}

func buildJudgePrompt(transcript, originalCode string) string {
	builder := strings.Builder{}
	builder.WriteString("You are reviewing a voice interview in which a student defended code they claim to have written. ")
	builder.WriteString("Judge whether the transcript is consistent with the student having authored the code themselves, ")
	builder.WriteString("as opposed to submitting AI-generated code.\n\n")
	builder.WriteString("Consider:\n")
	builder.WriteString("- Code-style tells: boilerplate comments, generic naming, textbook structure unusual for a student.\n")
	builder.WriteString("- Interview-response tells: can they explain intent, trade-offs and specific lines, or only restate what the code does.\n")
	builder.WriteString("- Red flags: vague or deflecting answers, terminology mismatched with the code, inability to recall writing it.\n")
	builder.WriteString("- Human indicators: recalled mistakes and fixes, personal naming rationale, awareness of the code's limitations.\n")
	builder.WriteString("- If the code is trivially simple or the evidence is too thin either way, mark the verdict indecisive.\n\n")
	builder.WriteString("## Transcript\n")
	builder.WriteString(transcript)
	if originalCode != "" {
		builder.WriteString("\n\n## Original Code\n")
		builder.WriteString(originalCode)
	}
	builder.WriteString("\n\nRespond with a JSON object of this exact shape:\n")
	builder.WriteString(`{"score": 0-100, "confidence": "low|medium|high|indecisive", "reasoning": "...", `)
	builder.WriteString(`"redFlags": [], "humanIndicators": [], "keyObservations": [], "indecisive": false, `)
	builder.WriteString(`"suspiciousPhrases": [{"text": "...", "origin": "code|transcript", "reason": "..."}]}`)
	builder.WriteString("\nScore 0 means confidently AI-authored, 100 means confidently human-authored.")
	return builder.String()
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
