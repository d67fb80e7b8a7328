package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Port        int

	// DatabaseURL is a postgres DSN. When empty the server falls back to the
	// embedded sqlite file at SQLitePath, which replaces the legacy JSON file
	// store for single-machine deployments.
	DatabaseURL string
	SQLitePath  string

	// RegistrationSecret gates account creation; registration is closed when
	// the provided secret does not match.
	RegistrationSecret string
	SessionTTL         time.Duration

	AllowedOrigins   []string
	APIRateLimitRPM  int
	AuthRateLimitRPM int

	LogLevel string

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsEnabled        bool
	OTELTracesEnabled         bool
	OTELLogsEnabled           bool
	OTELMetricsExportInterval time.Duration
}

// Load reads configuration from the environment, with an optional .env file
// for local development. Values already present in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment:        strings.ToLower(getEnv("ENV", "development")),
		SQLitePath:         getEnv("SQLITE_PATH", "rolo.db"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RegistrationSecret: getEnv("REGISTRATION_SECRET", ""),
		AllowedOrigins:     splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		OTELServiceName:    getEnv("OTEL_SERVICE_NAME", "rolo"),
		OTELEnvironment:    getEnv("OTEL_ENVIRONMENT", getEnv("ENV", "development")),
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getEnvDuration("SESSION_TTL", 30*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.APIRateLimitRPM, err = getEnvInt("API_RATE_LIMIT_RPM", 240); err != nil {
		return nil, err
	}
	if cfg.AuthRateLimitRPM, err = getEnvInt("AUTH_RATE_LIMIT_RPM", 20); err != nil {
		return nil, err
	}
	cfg.OTELExporterOTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	if cfg.OTELExporterOTLPInsecure, err = getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true); err != nil {
		return nil, err
	}
	if cfg.OTELMetricsEnabled, err = getEnvBool("OTEL_METRICS_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.OTELTracesEnabled, err = getEnvBool("OTEL_TRACES_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.OTELLogsEnabled, err = getEnvBool("OTEL_LOGS_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.OTELMetricsExportInterval, err = getEnvDuration("OTEL_METRICS_EXPORT_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		recordConfigValidationEvent(context.Background(), cfg.Environment, "invalid", classifyConfigLoadError(err))
		return nil, err
	}
	recordConfigValidationEvent(context.Background(), cfg.Environment, "valid", "none")
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("validate config: PORT %d out of range", c.Port)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("validate config: SESSION_TTL must be positive")
	}
	if c.DatabaseURL == "" && c.SQLitePath == "" {
		return fmt.Errorf("validate config: one of DATABASE_URL or SQLITE_PATH is required")
	}
	if c.Environment == "production" && c.RegistrationSecret == "" {
		return fmt.Errorf("validate config: REGISTRATION_SECRET is required in production")
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.Environment == "production" }

func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
