package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/viva-go-api/pkg/ai"
)

// ErrGenerationFailed indicates the model returned no parseable question
// list. There is deliberately no fallback question set: generic questions
// cannot probe whether the respondent understands this specific code.
var ErrGenerationFailed = errors.New("question generation failed")

const questionCount = 6

// QuestionService synthesizes interview questions tailored to submitted code.
type QuestionService interface {
	Synthesize(ctx context.Context, code, language string) ([]string, error)
}

type questionService struct {
	generator ai.Generator
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewQuestionService builds the question synthesizer.
func NewQuestionService(generator ai.Generator, logger zerolog.Logger) QuestionService {
	return &questionService{
		generator: generator,
		logger:    logger.With().Str("component", "question_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/viva-go-api/internal/service/question"),
	}
}

func (s *questionService) Synthesize(ctx context.Context, code, language string) ([]string, error) {
	spanCtx, span := s.tracer.Start(ctx, "questions.synthesize", trace.WithAttributes(
		attribute.String("language", language),
	))
	defer span.End()

	raw, err := s.generator.Generate(spanCtx, buildQuestionPrompt(code, language))
	if err != nil {
		span.RecordError(err)
		return nil, classifyUpstreamError(err)
	}

	questions, err := extractQuestionList(raw)
	if err != nil {
		span.RecordError(err)
		s.logger.Warn().Err(err).Msg("model response contained no question list")
		return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, err)
	}

	if len(questions) > questionCount {
		questions = questions[:questionCount]
	}

	s.logger.Info().Int("questions", len(questions)).Str("language", language).Msg("interview questions synthesized")
	return questions, nil
}

func buildQuestionPrompt(code, language string) string {
	builder := strings.Builder{}
	builder.WriteString("You are preparing a short voice interview that verifies whether a student wrote the code below themselves.\n\n")
	builder.WriteString("Generate exactly ")
	builder.WriteString(fmt.Sprintf("%d", questionCount))
	builder.WriteString(" interview questions about this specific code.\n")
	builder.WriteString("Requirements:\n")
	builder.WriteString("1. The first question must ask what the code does overall.\n")
	builder.WriteString("2. The second question must ask how and why they implemented it this way.\n")
	builder.WriteString("3. The remaining questions must reference concrete identifiers, structures or decisions visible in the code.\n")
	builder.WriteString("4. Questions must be answerable out loud in under a minute each.\n\n")
	builder.WriteString("## Language\n")
	builder.WriteString(language)
	builder.WriteString("\n\n## Code\n")
	builder.WriteString(code)
	builder.WriteString("\n\nRespond with a JSON array of question strings and nothing else.")
	return builder.String()
}

// extractQuestionList scans for the first '[' and its matching ']' and parses
// that substring as a JSON string array.
func extractQuestionList(raw string) ([]string, error) {
	start := strings.IndexByte(raw, '[')
	if start < 0 {
		return nil, fmt.Errorf("no array found in response")
	}

	end := matchingBracket(raw, start)
	if end < 0 {
		return nil, fmt.Errorf("unterminated array in response")
	}

	var questions []string
	if err := json.Unmarshal([]byte(raw[start:end+1]), &questions); err != nil {
		return nil, fmt.Errorf("parse question array: %w", err)
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("question array is empty")
	}

	return questions, nil
}

// matchingBracket finds the index of the ']' closing the '[' at start,
// ignoring brackets inside JSON string literals.
func matchingBracket(raw string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}
