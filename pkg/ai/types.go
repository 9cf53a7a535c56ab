package ai

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Generator describes a generative-text model that turns one prompt into
// free text. No guarantee is made that the output is well-formed JSON; every
// consumer owns its extract-then-fallback parsing.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var quotaMarkers = []string{
	"quota",
	"rate limit",
	"rate_limit",
	"insufficient_quota",
	"too many requests",
}

// IsQuotaError reports whether an upstream failure looks like a quota or
// rate-limit rejection, by status code when available and by error text
// otherwise.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 {
			return true
		}
		if code, ok := apiErr.Code.(string); ok && strings.Contains(strings.ToLower(code), "quota") {
			return true
		}
	}

	message := strings.ToLower(err.Error())
	for _, marker := range quotaMarkers {
		if strings.Contains(message, marker) {
			return true
		}
	}

	return false
}
