package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/viva-go-api/internal/dto"
	"github.com/noah-isme/viva-go-api/internal/handler"
	"github.com/noah-isme/viva-go-api/internal/models"
)

type stubDashboardService struct {
	response dto.DashboardResponse
}

func (s stubDashboardService) GetDashboard(context.Context, dto.DashboardQuery) (dto.DashboardResponse, error) {
	return s.response, nil
}

func TestTeacherDashboardContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "teacher_dashboard.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	now := time.Now().UTC()
	response := dto.DashboardResponse{
		Total:  2,
		Limit:  20,
		Offset: 0,
		Entries: []dto.DashboardEntry{
			{
				InterviewID:   "interview-1",
				StudentName:   "Ada Lovelace",
				Language:      "go",
				CompletedAt:   &now,
				Score:         82,
				Confidence:    models.ConfidenceHigh,
				AILikelihood:  models.LikelihoodLikelyHuman,
				SimpleVerdict: models.LikelihoodLikelyHuman,
				Reasoning:     "Specific, consistent explanations of the implementation.",
				Indecisive:    false,
			},
			{
				InterviewID:   "interview-2",
				Score:         50,
				Confidence:    models.ConfidenceUnknown,
				AILikelihood:  models.LikelihoodQuotaExceeded,
				SimpleVerdict: models.LikelihoodQuotaExceeded,
				Reasoning:     "Analysis could not be completed because the AI provider quota was exhausted.",
				Indecisive:    false,
				QuotaExceeded: true,
			},
		},
	}

	svc := stubDashboardService{response: response}
	dashboardHandler := handler.NewDashboardHandler(svc, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api/v1/teacher/dashboard", func(c *fiber.Ctx) error {
		c.Locals("user_id", "teacher-1")
		c.Locals("user_role", "teacher")
		return c.Next()
	})
	dashboardHandler.Register(group)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/teacher/dashboard", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}
