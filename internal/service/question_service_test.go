package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeParsesQuestionArray(t *testing.T) {
	generator := &stubGenerator{response: `Here are the questions:
["What does this program do?", "Why did you structure it this way?", "What does parseInput return?"]`}

	svc := NewQuestionService(generator, zerolog.Nop())

	questions, err := svc.Synthesize(context.Background(), "package main", "go")
	require.NoError(t, err)
	require.Len(t, questions, 3)
	require.Equal(t, "What does this program do?", questions[0])
}

func TestSynthesizeTruncatesToSixQuestions(t *testing.T) {
	generator := &stubGenerator{response: `["q1","q2","q3","q4","q5","q6","q7","q8"]`}

	svc := NewQuestionService(generator, zerolog.Nop())

	questions, err := svc.Synthesize(context.Background(), "code", "python")
	require.NoError(t, err)
	require.Len(t, questions, 6)
	require.Equal(t, "q6", questions[5])
}

func TestSynthesizeHandlesBracketsInsideQuestions(t *testing.T) {
	generator := &stubGenerator{response: `["What does items[0] hold?", "Why a slice and not a map?"]`}

	svc := NewQuestionService(generator, zerolog.Nop())

	questions, err := svc.Synthesize(context.Background(), "code", "go")
	require.NoError(t, err)
	require.Len(t, questions, 2)
	require.Equal(t, "What does items[0] hold?", questions[0])
}

func TestSynthesizeFailsWithoutArray(t *testing.T) {
	generator := &stubGenerator{response: "I cannot produce questions for this input."}

	svc := NewQuestionService(generator, zerolog.Nop())

	_, err := svc.Synthesize(context.Background(), "code", "go")
	require.ErrorIs(t, err, ErrGenerationFailed)
}

func TestSynthesizeFailsOnEmptyArray(t *testing.T) {
	generator := &stubGenerator{response: `[]`}

	svc := NewQuestionService(generator, zerolog.Nop())

	_, err := svc.Synthesize(context.Background(), "code", "go")
	require.ErrorIs(t, err, ErrGenerationFailed)
}

func TestSynthesizeFailsOnUnterminatedArray(t *testing.T) {
	generator := &stubGenerator{response: `["one", "two"`}

	svc := NewQuestionService(generator, zerolog.Nop())

	_, err := svc.Synthesize(context.Background(), "code", "go")
	require.ErrorIs(t, err, ErrGenerationFailed)
}

func TestSynthesizeClassifiesGeneratorFailure(t *testing.T) {
	generator := &stubGenerator{err: errors.New("connection reset")}

	svc := NewQuestionService(generator, zerolog.Nop())

	_, err := svc.Synthesize(context.Background(), "code", "go")
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestSynthesizePromptEmbedsCodeAndLanguage(t *testing.T) {
	generator := &stubGenerator{response: `["q1"]`}

	svc := NewQuestionService(generator, zerolog.Nop())

	_, err := svc.Synthesize(context.Background(), "func fib(n int) int { return n }", "go")
	require.NoError(t, err)
	require.Len(t, generator.prompts, 1)
	require.Contains(t, generator.prompts[0], "func fib(n int) int")
	require.Contains(t, generator.prompts[0], "## Language\ngo")
	require.Contains(t, generator.prompts[0], "what the code does overall")
}
