package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/noah-isme/viva-go-api/internal/models"
)

// Store drivers accepted for the analysis result cache.
const (
	StoreDriverFile     = "file"
	StoreDriverRedis    = "redis"
	StoreDriverPostgres = "postgres"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	NATSURL           string
	JWTSecret         string
	StoreDriver       string
	AnalysisCachePath string
	DashboardCacheTTL time.Duration
	EventChannelBase  string
	AIProvider        string
	OpenAIAPIKey      string
	OpenAIModel       string
	AnthropicAPIKey   string
	RibbonAPIKey      string
	RibbonBaseURL     string
	RibbonOrgName     string
	SubmitRateLimit   int
	SubmitRateWindow  time.Duration
	Thresholds        models.Thresholds
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("VIVA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "VIVA API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("store.driver", StoreDriverFile)
	v.SetDefault("analysis.cache_path", "analysis_cache.json")
	v.SetDefault("dashboard.cache_ttl", "2m")
	v.SetDefault("events.channel", "viva:events")
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("ribbon.base_url", "https://app.ribbon.ai/be-api/v1")
	v.SetDefault("submit.rate_limit", 5)
	v.SetDefault("submit.rate_window", "1m")
	v.SetDefault("score.likely_human", 70)
	v.SetDefault("score.possibly_human", 50)
	v.SetDefault("score.possibly_ai", 30)

	ttl, err := time.ParseDuration(v.GetString("dashboard.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	rateWindow, err := time.ParseDuration(v.GetString("submit.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid submit rate window: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		NATSURL:           v.GetString("nats.url"),
		JWTSecret:         v.GetString("jwt.secret"),
		StoreDriver:       strings.ToLower(v.GetString("store.driver")),
		AnalysisCachePath: v.GetString("analysis.cache_path"),
		DashboardCacheTTL: ttl,
		EventChannelBase:  v.GetString("events.channel"),
		AIProvider:        strings.ToLower(v.GetString("ai.provider")),
		OpenAIAPIKey:      v.GetString("openai.api_key"),
		OpenAIModel:       v.GetString("openai.model"),
		AnthropicAPIKey:   v.GetString("anthropic.api_key"),
		RibbonAPIKey:      v.GetString("ribbon.api_key"),
		RibbonBaseURL:     v.GetString("ribbon.base_url"),
		RibbonOrgName:     v.GetString("ribbon.org_name"),
		SubmitRateLimit:   v.GetInt("submit.rate_limit"),
		SubmitRateWindow:  rateWindow,
		Thresholds: models.Thresholds{
			LikelyHuman:   v.GetInt("score.likely_human"),
			PossiblyHuman: v.GetInt("score.possibly_human"),
			PossiblyAI:    v.GetInt("score.possibly_ai"),
		},
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.StoreDriver {
	case StoreDriverFile, StoreDriverRedis, StoreDriverPostgres:
	default:
		return Config{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	if cfg.StoreDriver == StoreDriverPostgres && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url required for postgres store driver")
	}

	if cfg.StoreDriver == StoreDriverRedis && cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("redis url required for redis store driver")
	}

	if cfg.SubmitRateLimit <= 0 {
		cfg.SubmitRateLimit = 5
	}

	return cfg, nil
}
