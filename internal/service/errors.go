package service

import (
	"errors"
	"fmt"

	"github.com/noah-isme/viva-go-api/pkg/ai"
	"github.com/noah-isme/viva-go-api/pkg/ribbon"
)

// ErrUpstreamUnavailable indicates an outbound call to the interview platform
// or the generative-text service failed outright.
var ErrUpstreamUnavailable = errors.New("upstream service unavailable")

// ErrQuotaExceeded is the rate-limit/quota sub-case of an upstream failure.
// Callers decide whether to cache a placeholder for it.
var ErrQuotaExceeded = errors.New("generative service quota exceeded")

// ErrInterviewNotFound indicates the platform has no record for the
// requested interview identifier.
var ErrInterviewNotFound = errors.New("interview not found")

// classifyUpstreamError wraps an outbound failure with the matching sentinel
// while keeping the upstream detail attached. Quota rejections are a sub-case
// of upstream unavailability, so both sentinels match errors.Is.
func classifyUpstreamError(err error) error {
	if ai.IsQuotaError(err) || ribbon.IsQuota(err) {
		return fmt.Errorf("%w: %w: %s", ErrQuotaExceeded, ErrUpstreamUnavailable, err)
	}
	return fmt.Errorf("%w: %s", ErrUpstreamUnavailable, err)
}
