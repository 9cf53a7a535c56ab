package handler

import (
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/viva-go-api/internal/dto"
	"github.com/noah-isme/viva-go-api/internal/service"
	"github.com/noah-isme/viva-go-api/internal/utils"
)

const maxUploadBytes = 100_000

// InterviewHandler exposes the student-facing submit and status endpoints.
type InterviewHandler struct {
	service service.InterviewService
	logger  zerolog.Logger
}

// NewInterviewHandler constructs an interview handler.
func NewInterviewHandler(service service.InterviewService, logger zerolog.Logger) *InterviewHandler {
	return &InterviewHandler{
		service: service,
		logger:  logger.With().Str("component", "interview_handler").Logger(),
	}
}

// Register wires interview routes.
func (h *InterviewHandler) Register(router fiber.Router, submitLimiter fiber.Handler) {
	if submitLimiter != nil {
		router.Post("", submitLimiter, h.submit)
	} else {
		router.Post("", h.submit)
	}
	router.Get("/:id", h.status)
}

func (h *InterviewHandler) submit(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	payload, err := h.parseSubmission(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Submit(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, logger, err)
	}

	logger.Info().Str("interview_id", response.InterviewID).Msg("submission accepted")
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "interview created", response)
}

func (h *InterviewHandler) status(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	interviewID := strings.TrimSpace(c.Params("id"))
	if interviewID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "interview id required")
	}

	response, err := h.service.Status(c.UserContext(), interviewID)
	if err != nil {
		return sendServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "interview status", response)
}

// parseSubmission accepts either a JSON body or a multipart form with the
// source attached as a file. Uploads are sniffed and must be text.
func (h *InterviewHandler) parseSubmission(c *fiber.Ctx) (dto.SubmissionRequest, error) {
	contentType := c.Get(fiber.HeaderContentType)
	if !strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		var payload dto.SubmissionRequest
		if err := c.BodyParser(&payload); err != nil {
			return dto.SubmissionRequest{}, fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		return payload, nil
	}

	payload := dto.SubmissionRequest{
		Name:     strings.TrimSpace(c.FormValue("name")),
		Email:    strings.TrimSpace(c.FormValue("email")),
		Language: strings.TrimSpace(c.FormValue("language")),
		Code:     c.FormValue("code"),
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if payload.Code == "" {
			return dto.SubmissionRequest{}, fiber.NewError(fiber.StatusBadRequest, "code or file required")
		}
		return payload, nil
	}

	if fileHeader.Size > maxUploadBytes {
		return dto.SubmissionRequest{}, fiber.NewError(fiber.StatusBadRequest, "uploaded file too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return dto.SubmissionRequest{}, fiber.NewError(fiber.StatusBadRequest, "unreadable upload")
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return dto.SubmissionRequest{}, fiber.NewError(fiber.StatusBadRequest, "unreadable upload")
	}
	if len(content) > maxUploadBytes {
		return dto.SubmissionRequest{}, fiber.NewError(fiber.StatusBadRequest, "uploaded file too large")
	}

	if !isTextUpload(content) {
		return dto.SubmissionRequest{}, fiber.NewError(fiber.StatusBadRequest, "uploaded file must be plain-text source code")
	}

	payload.Code = string(content)
	return payload, nil
}

func isTextUpload(content []byte) bool {
	for mtype := mimetype.Detect(content); mtype != nil; mtype = mtype.Parent() {
		if strings.HasPrefix(mtype.String(), "text/") {
			return true
		}
	}
	return false
}
