package service

import (
	"regexp"
	"strconv"
	"strings"
)

// judgePayload is the intermediate judgment shape produced by either parse
// path before normalization.
type judgePayload struct {
	Score             *float64                  `json:"score"`
	Confidence        string                    `json:"confidence"`
	Reasoning         string                    `json:"reasoning"`
	RedFlags          []string                  `json:"redFlags"`
	HumanIndicators   []string                  `json:"humanIndicators"`
	KeyObservations   []string                  `json:"keyObservations"`
	Indecisive        bool                      `json:"indecisive"`
	SuspiciousPhrases []suspiciousPhrasePayload `json:"suspiciousPhrases"`
}

type suspiciousPhrasePayload struct {
	Text   string `json:"text"`
	Origin string `json:"origin"`
	Reason string `json:"reason"`
}

var (
	// Tolerates quotes, colons, equals and whitespace around the score token.
	heuristicScorePattern   = regexp.MustCompile(`(?i)["']?score["']?\s*[:=]?\s*["']?(\d+)`)
	heuristicPercentPattern = regexp.MustCompile(`(\d+)\s*%`)
)

// extractHeuristicJudgment recovers a judgment from free text when the model
// ignored the mandated JSON shape. It is deliberately a separate code path
// from the structured parser so the contract stays auditable.
func extractHeuristicJudgment(raw string) judgePayload {
	payload := judgePayload{
		Reasoning: raw,
	}

	if match := heuristicScorePattern.FindStringSubmatch(raw); match != nil {
		if score, err := strconv.ParseFloat(match[1], 64); err == nil {
			payload.Score = &score
		}
	}
	if payload.Score == nil {
		if match := heuristicPercentPattern.FindStringSubmatch(raw); match != nil {
			if score, err := strconv.ParseFloat(match[1], 64); err == nil {
				payload.Score = &score
			}
		}
	}

	payload.Confidence = heuristicConfidence(raw)

	return payload
}

func heuristicConfidence(raw string) string {
	text := strings.ToLower(raw)
	switch {
	case strings.Contains(text, "high confidence"), strings.Contains(text, "very confident"):
		return "high"
	case strings.Contains(text, "low confidence"), strings.Contains(text, "uncertain"):
		return "low"
	default:
		return "medium"
	}
}
