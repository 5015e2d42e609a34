package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName              string
	AppEnv               string
	AppPort              string
	AllowOrigins         []string
	DatabaseURL          string
	DatabaseMaxOpenConns int
	DatabaseMaxIdleConns int
	RedisURL             string
	NATSURL              string
	EventsChannel        string
	JWTSecret            string
	RankingCacheTTL      time.Duration
	SubmissionRateLimit  int
	SubmissionRateWindow time.Duration
	TracingEndpoint      string
	TracingServiceName   string
	LogLevel             string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EVALSTAR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "EvalStar API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.allow_origins", "*")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("events.channel", "evalstar")
	v.SetDefault("ranking.cache_ttl", "2m")
	v.SetDefault("submission.rate_limit", 10)
	v.SetDefault("submission.rate_window", "1m")
	v.SetDefault("tracing.service_name", "evalstar-api")
	v.SetDefault("log.level", "info")

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	rankingTTL, err := parseDuration(v, "ranking.cache_ttl")
	if err != nil {
		return Config{}, err
	}

	rateWindow, err := parseDuration(v, "submission.rate_window")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:              v.GetString("app.name"),
		AppEnv:               v.GetString("app.env"),
		AppPort:              v.GetString("app.port"),
		AllowOrigins:         splitList(v.GetString("app.allow_origins")),
		DatabaseURL:          v.GetString("database.url"),
		DatabaseMaxOpenConns: v.GetInt("database.max_open_conns"),
		DatabaseMaxIdleConns: v.GetInt("database.max_idle_conns"),
		RedisURL:             v.GetString("redis.url"),
		NATSURL:              v.GetString("nats.url"),
		EventsChannel:        v.GetString("events.channel"),
		JWTSecret:            v.GetString("jwt.secret"),
		RankingCacheTTL:      rankingTTL,
		SubmissionRateLimit:  v.GetInt("submission.rate_limit"),
		SubmissionRateWindow: rateWindow,
		TracingEndpoint:      v.GetString("tracing.endpoint"),
		TracingServiceName:   v.GetString("tracing.service_name"),
		LogLevel:             strings.ToLower(v.GetString("log.level")),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.SubmissionRateLimit <= 0 {
		cfg.SubmissionRateLimit = 10
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(input string) []string {
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
