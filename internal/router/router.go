package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/viva-go-api/internal/config"
	"github.com/noah-isme/viva-go-api/internal/handler"
	"github.com/noah-isme/viva-go-api/internal/middleware"
	"github.com/noah-isme/viva-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	InterviewHandler *handler.InterviewHandler
	DashboardHandler *handler.DashboardHandler
	EventsHandler    *handler.EventsHandler
	JWTMiddleware    fiber.Handler
	SubmitLimiter    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Student-facing submit & status endpoints; submissions are rate limited.
	if deps.InterviewHandler != nil {
		interviews := api.Group("/interviews")
		deps.InterviewHandler.Register(interviews, deps.SubmitLimiter)
	}

	// Teacher dashboard requires an authenticated teacher.
	if deps.DashboardHandler != nil {
		teacher := api.Group("/teacher", jwtMiddleware, middleware.RequireRole("teacher", "admin"))
		deps.DashboardHandler.Register(teacher.Group("/dashboard"))
	}

	// Live verdict stream for the dashboard.
	if deps.EventsHandler != nil {
		events := api.Group("/events", jwtMiddleware, middleware.RequireRole("teacher", "admin"))
		deps.EventsHandler.Register(events)
	}
}
