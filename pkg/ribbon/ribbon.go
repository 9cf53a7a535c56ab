package ribbon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL points at the hosted Ribbon API.
const DefaultBaseURL = "https://app.ribbon.ai/be-api/v1"

// ErrNotFound indicates the requested interview does not exist on the platform.
var ErrNotFound = errors.New("interview not found")

// APIError describes a non-2xx response from the platform.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ribbon: unexpected status %d: %s", e.StatusCode, e.Body)
}

// IsQuota reports whether the error is a rate-limit or quota rejection.
func IsQuota(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode == http.StatusTooManyRequests {
		return true
	}
	body := strings.ToLower(apiErr.Body)
	return strings.Contains(body, "quota") || strings.Contains(body, "rate limit")
}

// Config contains credentials required to talk to the interview platform.
type Config struct {
	APIKey     string
	BaseURL    string
	OrgName    string
	HTTPClient *http.Client
}

// Client is a thin HTTP client for the interview platform. There is no Go SDK
// for this API, so requests are issued directly.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	orgName    string
	logger     zerolog.Logger
}

// New constructs a platform client instance.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ribbon api key must be provided")
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		httpClient: httpClient,
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		orgName:    cfg.OrgName,
		logger:     logger.With().Str("component", "ribbon").Logger(),
	}, nil
}

// Interview is the canonical record normalized from the platform's payloads.
type Interview struct {
	ID          string
	FlowID      string
	Status      string
	Transcript  string
	JoinLink    string
	CompletedAt *time.Time
}

// CreateFlowInput describes a reusable interview template.
type CreateFlowInput struct {
	Title        string
	Questions    []string
	FlowType     string
	VideoEnabled bool
}

// CreateFlow registers a question flow and returns its identifier.
func (c *Client) CreateFlow(ctx context.Context, input CreateFlowInput) (string, error) {
	flowType := input.FlowType
	if flowType == "" {
		flowType = "general"
	}

	payload := map[string]interface{}{
		"org_name":         c.orgName,
		"title":            input.Title,
		"questions":        input.Questions,
		"interview_type":   flowType,
		"is_video_enabled": input.VideoEnabled,
	}

	var response struct {
		FlowID string `json:"interview_flow_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/interview-flows", payload, &response); err != nil {
		return "", err
	}
	if response.FlowID == "" {
		return "", fmt.Errorf("ribbon: create flow returned no flow id")
	}

	c.logger.Info().Str("flow_id", response.FlowID).Int("questions", len(input.Questions)).Msg("interview flow created")
	return response.FlowID, nil
}

// CreateInterview instantiates a flow for one interviewee and returns the
// interview identifier plus a joinable link. The interviewee name is split
// into first and last name on the first space, as the platform requires.
func (c *Client) CreateInterview(ctx context.Context, flowID, name, email string) (Interview, error) {
	firstName, lastName := splitName(name)

	payload := map[string]interface{}{
		"interview_flow_id":         flowID,
		"interviewee_first_name":    firstName,
		"interviewee_last_name":     lastName,
		"interviewee_email_address": email,
	}

	var response struct {
		InterviewID string `json:"interview_id"`
		Link        string `json:"interview_link"`
	}
	if err := c.do(ctx, http.MethodPost, "/interviews", payload, &response); err != nil {
		return Interview{}, err
	}
	if response.InterviewID == "" {
		return Interview{}, fmt.Errorf("ribbon: create interview returned no interview id")
	}

	c.logger.Info().Str("interview_id", response.InterviewID).Str("flow_id", flowID).Msg("interview created")
	return Interview{
		ID:       response.InterviewID,
		FlowID:   flowID,
		Status:   "pending",
		JoinLink: response.Link,
	}, nil
}

// ListInterviews fetches every interview visible to the organisation and
// normalizes the mixed payload shapes into canonical records.
func (c *Client) ListInterviews(ctx context.Context) ([]Interview, error) {
	var response struct {
		Interviews []json.RawMessage `json:"interviews"`
	}
	if err := c.do(ctx, http.MethodGet, "/interviews", nil, &response); err != nil {
		return nil, err
	}

	interviews := make([]Interview, 0, len(response.Interviews))
	for _, raw := range response.Interviews {
		interview, err := normalizeInterview(raw)
		if err != nil {
			c.logger.Warn().Err(err).Msg("skipping unparseable interview entry")
			continue
		}
		interviews = append(interviews, interview)
	}

	return interviews, nil
}

// FindInterview scans the list endpoint for a matching identifier. The
// platform exposes no per-interview fetch, so cost is linear in the total
// number of interviews.
func (c *Client) FindInterview(ctx context.Context, interviewID string) (Interview, error) {
	interviews, err := c.ListInterviews(ctx)
	if err != nil {
		return Interview{}, err
	}

	for _, interview := range interviews {
		if interview.ID == interviewID {
			return interview, nil
		}
	}

	return Interview{}, ErrNotFound
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("ribbon: encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("ribbon: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ribbon: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ribbon: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("ribbon: decode response: %w", err)
	}

	return nil
}

// rawInterview covers both payload shapes the platform is known to return:
// flattened fields at the top level, or the interesting fields nested under
// interview_data. Transcripts arrive either as a single string or as a list
// of speaker turns.
type rawInterview struct {
	InterviewID   string          `json:"interview_id"`
	FlowID        string          `json:"interview_flow_id"`
	Status        string          `json:"status"`
	Transcript    json.RawMessage `json:"transcript"`
	JoinLink      string          `json:"interview_link"`
	CompletedAt   *time.Time      `json:"completed_at"`
	InterviewData *struct {
		Status      string          `json:"status"`
		Transcript  json.RawMessage `json:"transcript"`
		CompletedAt *time.Time      `json:"completed_at"`
	} `json:"interview_data"`
}

func normalizeInterview(raw json.RawMessage) (Interview, error) {
	var entry rawInterview
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Interview{}, err
	}
	if entry.InterviewID == "" {
		return Interview{}, fmt.Errorf("interview entry missing identifier")
	}

	interview := Interview{
		ID:          entry.InterviewID,
		FlowID:      entry.FlowID,
		Status:      entry.Status,
		JoinLink:    entry.JoinLink,
		CompletedAt: entry.CompletedAt,
		Transcript:  decodeTranscript(entry.Transcript),
	}

	if entry.InterviewData != nil {
		if interview.Status == "" {
			interview.Status = entry.InterviewData.Status
		}
		if interview.Transcript == "" {
			interview.Transcript = decodeTranscript(entry.InterviewData.Transcript)
		}
		if interview.CompletedAt == nil {
			interview.CompletedAt = entry.InterviewData.CompletedAt
		}
	}

	if interview.Status == "" {
		interview.Status = "pending"
	}

	return interview, nil
}

func decodeTranscript(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	var turns []struct {
		Speaker string `json:"speaker"`
		Text    string `json:"text"`
	}
	if err := json.Unmarshal(raw, &turns); err == nil {
		lines := make([]string, 0, len(turns))
		for _, turn := range turns {
			if turn.Text == "" {
				continue
			}
			if turn.Speaker != "" {
				lines = append(lines, turn.Speaker+": "+turn.Text)
			} else {
				lines = append(lines, turn.Text)
			}
		}
		return strings.Join(lines, "\n")
	}

	return ""
}

func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	parts := strings.SplitN(name, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}
