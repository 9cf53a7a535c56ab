package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/viva-go-api/internal/middleware"
	"github.com/noah-isme/viva-go-api/internal/service"
	"github.com/noah-isme/viva-go-api/internal/utils"
)

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// sendServiceError maps service sentinels onto HTTP statuses; everything
// unrecognised is a 500 with the detail kept in the log, not the response.
func sendServiceError(c *fiber.Ctx, logger *zerolog.Logger, err error) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInterviewNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "interview not found")
	case errors.Is(err, service.ErrGenerationFailed):
		return utils.SendError(c, fiber.StatusBadGateway, "question generation failed")
	case errors.Is(err, service.ErrQuotaExceeded):
		return utils.SendError(c, fiber.StatusTooManyRequests, "analysis quota exceeded, try again later")
	case errors.Is(err, service.ErrUpstreamUnavailable):
		return utils.SendError(c, fiber.StatusBadGateway, "upstream service unavailable")
	default:
		logger.Error().Err(err).Msg("unhandled service error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
