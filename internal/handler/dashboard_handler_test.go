package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/viva-go-api/internal/dto"
)

type stubDashboardService struct {
	response  dto.DashboardResponse
	err       error
	lastQuery dto.DashboardQuery
}

func (s *stubDashboardService) GetDashboard(_ context.Context, query dto.DashboardQuery) (dto.DashboardResponse, error) {
	s.lastQuery = query
	if s.err != nil {
		return dto.DashboardResponse{}, s.err
	}
	return s.response, nil
}

func TestDashboardParsesQuery(t *testing.T) {
	svc := &stubDashboardService{response: dto.DashboardResponse{
		Total:   1,
		Limit:   10,
		Offset:  5,
		Entries: []dto.DashboardEntry{{InterviewID: "int-1", Score: 40}},
	}}

	app := fiber.New()
	NewDashboardHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1/teacher/dashboard"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/teacher/dashboard?limit=10&offset=5&sort=score", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Equal(t, 10, svc.lastQuery.Limit)
	require.Equal(t, 5, svc.lastQuery.Offset)
	require.Equal(t, dto.DashboardSortScore, svc.lastQuery.Sort)

	defer resp.Body.Close()
	var envelope struct {
		Success bool                  `json:"success"`
		Data    dto.DashboardResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success)
	require.Len(t, envelope.Data.Entries, 1)
	require.Equal(t, "int-1", envelope.Data.Entries[0].InterviewID)
}

func TestDashboardRejectsBadLimit(t *testing.T) {
	svc := &stubDashboardService{}

	app := fiber.New()
	NewDashboardHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1/teacher/dashboard"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/teacher/dashboard?limit=abc", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
