package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/viva-go-api/internal/config"
	"github.com/noah-isme/viva-go-api/internal/database"
	"github.com/noah-isme/viva-go-api/internal/handler"
	"github.com/noah-isme/viva-go-api/internal/middleware"
	"github.com/noah-isme/viva-go-api/internal/repository"
	"github.com/noah-isme/viva-go-api/internal/router"
	"github.com/noah-isme/viva-go-api/internal/service"
	"github.com/noah-isme/viva-go-api/pkg/ai"
	"github.com/noah-isme/viva-go-api/pkg/ribbon"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	analyses, err := buildAnalysisRepository(cfg, redisClient, logger)
	if err != nil {
		log.Fatalf("failed to initialise analysis store: %v", err)
	}

	generator, err := buildGenerator(cfg, logger)
	if err != nil {
		log.Fatalf("failed to initialise ai generator: %v", err)
	}

	platform, err := ribbon.New(ribbon.Config{
		APIKey:  cfg.RibbonAPIKey,
		BaseURL: cfg.RibbonBaseURL,
		OrgName: cfg.RibbonOrgName,
	}, logger)
	if err != nil {
		log.Fatalf("failed to initialise interview platform client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	sessions := repository.NewSessionRepository()

	questionService := service.NewQuestionService(generator, logger)
	analysisService, err := service.NewAnalysisService(generator, logger)
	if err != nil {
		log.Fatalf("failed to initialise analysis service: %v", err)
	}

	eventService := service.NewEventService(redisClient, natsConn, cfg.EventChannelBase, logger)

	interviewService := service.NewInterviewService(platform, questionService, analysisService, analyses, sessions, eventService, validate, cfg.Thresholds, logger)
	dashboardService := service.NewDashboardService(platform, analysisService, analyses, sessions, eventService, redisClient, cfg.DashboardCacheTTL, validate, cfg.Thresholds, logger)

	interviewHandler := handler.NewInterviewHandler(interviewService, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)
	eventsHandler := handler.NewEventsHandler(eventService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		InterviewHandler: interviewHandler,
		DashboardHandler: dashboardHandler,
		EventsHandler:    eventsHandler,
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
		SubmitLimiter:    middleware.RateLimit("submit", cfg.SubmitRateLimit, cfg.SubmitRateWindow),
	})

	runCtx, stopConsumers := context.WithCancel(context.Background())
	defer stopConsumers()
	eventService.Start(runCtx)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func buildAnalysisRepository(cfg config.Config, redisClient *redis.Client, logger zerolog.Logger) (repository.AnalysisRepository, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverRedis:
		return repository.NewRedisAnalysisRepository(redisClient, logger), nil
	case config.StoreDriverPostgres:
		db, err := database.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrate(&repository.AnalysisRecord{}); err != nil {
			return nil, err
		}
		return repository.NewGormAnalysisRepository(db), nil
	default:
		return repository.NewFileAnalysisRepository(cfg.AnalysisCachePath, logger), nil
	}
}

func buildGenerator(cfg config.Config, logger zerolog.Logger) (ai.Generator, error) {
	switch cfg.AIProvider {
	case "anthropic":
		return ai.NewAnthropicGenerator(ai.AnthropicConfig{APIKey: cfg.AnthropicAPIKey})
	default:
		return ai.NewOpenAIGenerator(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			Logger: logger,
		})
	}
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
