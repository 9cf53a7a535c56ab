package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/viva-go-api/internal/dto"
	"github.com/noah-isme/viva-go-api/internal/service"
	"github.com/noah-isme/viva-go-api/internal/utils"
)

type stubInterviewService struct {
	submitResponse dto.SubmissionResponse
	statusResponse dto.InterviewStatusResponse
	submitErr      error
	statusErr      error
	lastSubmission dto.SubmissionRequest
}

func (s *stubInterviewService) Submit(_ context.Context, payload dto.SubmissionRequest) (dto.SubmissionResponse, error) {
	s.lastSubmission = payload
	if s.submitErr != nil {
		return dto.SubmissionResponse{}, s.submitErr
	}
	return s.submitResponse, nil
}

func (s *stubInterviewService) Status(_ context.Context, _ string) (dto.InterviewStatusResponse, error) {
	if s.statusErr != nil {
		return dto.InterviewStatusResponse{}, s.statusErr
	}
	return s.statusResponse, nil
}

func newInterviewApp(svc service.InterviewService) *fiber.App {
	app := fiber.New()
	handler := NewInterviewHandler(svc, zerolog.Nop())
	handler.Register(app.Group("/api/v1/interviews"), nil)
	return app
}

func decodeEnvelope(t *testing.T, resp *http.Response) utils.APIResponse {
	t.Helper()
	defer resp.Body.Close()

	var envelope utils.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope
}

func TestSubmitAcceptsJSONBody(t *testing.T) {
	svc := &stubInterviewService{submitResponse: dto.SubmissionResponse{
		InterviewID: "int-1",
		FlowID:      "flow-1",
		JoinLink:    "https://app.example/i/int-1",
		Questions:   []string{"q1"},
	}}
	app := newInterviewApp(svc)

	body := `{"code":"package main","language":"go","name":"Ada Lovelace","email":"ada@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/interviews", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	require.True(t, envelope.Success)
	require.Equal(t, "package main", svc.lastSubmission.Code)
}

func TestSubmitAcceptsTextFileUpload(t *testing.T) {
	svc := &stubInterviewService{submitResponse: dto.SubmissionResponse{InterviewID: "int-1"}}
	app := newInterviewApp(svc)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("name", "Ada Lovelace"))
	require.NoError(t, writer.WriteField("email", "ada@example.com"))
	require.NoError(t, writer.WriteField("language", "go"))
	part, err := writer.CreateFormFile("file", "main.go")
	require.NoError(t, err)
	_, err = part.Write([]byte("package main\n\nfunc main() {}\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/interviews", &buf)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Contains(t, svc.lastSubmission.Code, "func main()")
}

func TestSubmitRejectsBinaryUpload(t *testing.T) {
	svc := &stubInterviewService{}
	app := newInterviewApp(svc)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("name", "Ada Lovelace"))
	require.NoError(t, writer.WriteField("email", "ada@example.com"))
	require.NoError(t, writer.WriteField("language", "go"))
	part, err := writer.CreateFormFile("file", "binary.bin")
	require.NoError(t, err)
	_, err = part.Write([]byte{0x7f, 0x45, 0x4c, 0x46, 0x02, 0x01, 0x01, 0x00, 0x00, 0x00})
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/interviews", &buf)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSubmitMapsGenerationFailure(t *testing.T) {
	svc := &stubInterviewService{submitErr: service.ErrGenerationFailed}
	app := newInterviewApp(svc)

	body := `{"code":"x","language":"go","name":"Ada","email":"ada@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/interviews", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestStatusReturnsInterviewState(t *testing.T) {
	svc := &stubInterviewService{statusResponse: dto.InterviewStatusResponse{
		InterviewID: "int-1",
		Status:      "pending",
	}}
	app := newInterviewApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/interviews/int-1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	require.True(t, envelope.Success)
}

func TestStatusMapsNotFound(t *testing.T) {
	svc := &stubInterviewService{statusErr: service.ErrInterviewNotFound}
	app := newInterviewApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/interviews/missing", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestStatusMapsQuotaExceeded(t *testing.T) {
	svc := &stubInterviewService{statusErr: service.ErrQuotaExceeded}
	app := newInterviewApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/interviews/int-1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
