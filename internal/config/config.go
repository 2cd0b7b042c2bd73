// Package config provides application configuration management.
// It loads settings from environment variables (optionally seeded from a
// .env file) and applies defaults for the server, catalog, LLM and
// observability integrations.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Catalog backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// LLM providers accepted by GAOKAO_LLM_PROVIDER.
var validProviders = []string{"gemini", "groq", "cerebras", "openai"}

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	Catalog     CatalogConfig
	LLM         LLMConfig
	RateLimit   RateLimitConfig
	Sentry      SentryConfig
	BetterStack BetterStackConfig
	Metrics     MetricsConfig
}

// CatalogConfig selects where admission records are served from.
type CatalogConfig struct {
	Backend         string // "memory" or "sqlite"
	SQLitePath      string // ":memory:" keeps the SQLite copy in process
	ProbabilitySeed int64  // seeds derived admission probabilities
}

// LLMConfig configures the single recommendation provider.
type LLMConfig struct {
	Enabled        bool
	Provider       string // gemini, groq, cerebras or openai
	Model          string // empty = provider default
	BaseURL        string // empty = provider default; OpenAI-compatible providers only
	GeminiAPIKey   string
	GroqAPIKey     string
	CerebrasAPIKey string
	OpenAIAPIKey   string
	Timeout        time.Duration // whole flow, tool rounds included
	Temperature    float64
	MaxToolRounds  int
	MaxConcurrent  int
}

// RateLimitConfig is the per-client token bucket for recommendation requests.
type RateLimitConfig struct {
	Burst   float64
	PerHour float64
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	Enabled          bool
	DSN              string
	Environment      string
	Release          string
	SampleRate       float64
	TracesSampleRate float64
}

// BetterStackConfig configures remote log shipping.
type BetterStackConfig struct {
	Enabled bool
	Token   string
}

// MetricsConfig protects /metrics with Basic Auth when enabled.
type MetricsConfig struct {
	AuthEnabled bool
	Username    string
	Password    string
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),

		Catalog: CatalogConfig{
			Backend:         strings.ToLower(getEnv(EnvCatalogBackend, BackendMemory)),
			SQLitePath:      getEnv(EnvSQLitePath, ":memory:"),
			ProbabilitySeed: int64(getIntEnv(EnvProbabilitySeed, 2025)),
		},

		LLM: LLMConfig{
			Enabled:        getBoolEnv(EnvLLMEnabled, true),
			Provider:       strings.ToLower(getEnv(EnvLLMProvider, "gemini")),
			Model:          getEnv(EnvLLMModel, ""),
			BaseURL:        getEnv(EnvLLMBaseURL, ""),
			GeminiAPIKey:   getEnv(EnvGeminiAPIKey, ""),
			GroqAPIKey:     getEnv(EnvGroqAPIKey, ""),
			CerebrasAPIKey: getEnv(EnvCerebrasAPIKey, ""),
			OpenAIAPIKey:   getEnv(EnvOpenAIAPIKey, ""),
			Timeout:        getDurationEnv(EnvLLMTimeout, DefaultLLMTimeout),
			Temperature:    getFloatEnv(EnvLLMTemperature, 0.2),
			MaxToolRounds:  getIntEnv(EnvLLMMaxToolRounds, 4),
			MaxConcurrent:  getIntEnv(EnvLLMMaxConcurrent, 4),
		},

		RateLimit: RateLimitConfig{
			Burst:   getFloatEnv(EnvRecommendRateBurst, 10),
			PerHour: getFloatEnv(EnvRecommendRatePerHour, 30),
		},

		Sentry: SentryConfig{
			Enabled:          getBoolEnv(EnvSentryEnabled, false),
			DSN:              getEnv(EnvSentryDSN, ""),
			Environment:      getEnv(EnvSentryEnvironment, "production"),
			Release:          getEnv(EnvSentryRelease, ""),
			SampleRate:       getFloatEnv(EnvSentrySampleRate, 1.0),
			TracesSampleRate: getFloatEnv(EnvSentryTracesSampleRate, 0),
		},

		BetterStack: BetterStackConfig{
			Enabled: getBoolEnv(EnvBetterStackEnabled, false),
			Token:   getEnv(EnvBetterStackToken, ""),
		},

		Metrics: MetricsConfig{
			AuthEnabled: getBoolEnv(EnvMetricsAuthEnabled, false),
			Username:    getEnv(EnvMetricsUsername, "prometheus"),
			Password:    getEnv(EnvMetricsPassword, ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are usable
func (c *Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("%s must be a port number, got %q", EnvPort, c.Port))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvShutdownTimeout, c.ShutdownTimeout))
	}

	switch c.Catalog.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Catalog.SQLitePath == "" {
			errs = append(errs, fmt.Errorf("%s is required for the sqlite backend", EnvSQLitePath))
		}
	default:
		errs = append(errs, fmt.Errorf("%s must be %q or %q, got %q", EnvCatalogBackend, BackendMemory, BackendSQLite, c.Catalog.Backend))
	}

	if c.LLM.Enabled {
		if !slices.Contains(validProviders, c.LLM.Provider) {
			errs = append(errs, fmt.Errorf("%s must be one of %s, got %q", EnvLLMProvider, strings.Join(validProviders, ", "), c.LLM.Provider))
		}
		if c.LLM.Timeout <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvLLMTimeout, c.LLM.Timeout))
		}
		if c.LLM.MaxToolRounds < 1 {
			errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", EnvLLMMaxToolRounds, c.LLM.MaxToolRounds))
		}
		if c.LLM.MaxConcurrent < 1 {
			errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", EnvLLMMaxConcurrent, c.LLM.MaxConcurrent))
		}
		if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
			errs = append(errs, fmt.Errorf("%s must be within [0, 2], got %v", EnvLLMTemperature, c.LLM.Temperature))
		}
	}

	if c.RateLimit.Burst < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1, got %v", EnvRecommendRateBurst, c.RateLimit.Burst))
	}
	if c.RateLimit.PerHour <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvRecommendRatePerHour, c.RateLimit.PerHour))
	}

	if c.Sentry.Enabled {
		if c.Sentry.DSN == "" {
			errs = append(errs, fmt.Errorf("%s is required when Sentry is enabled", EnvSentryDSN))
		}
		if c.Sentry.SampleRate < 0 || c.Sentry.SampleRate > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %v", EnvSentrySampleRate, c.Sentry.SampleRate))
		}
		if c.Sentry.TracesSampleRate < 0 || c.Sentry.TracesSampleRate > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %v", EnvSentryTracesSampleRate, c.Sentry.TracesSampleRate))
		}
	}
	if c.BetterStack.Enabled && c.BetterStack.Token == "" {
		errs = append(errs, fmt.Errorf("%s is required when Better Stack is enabled", EnvBetterStackToken))
	}
	if c.Metrics.AuthEnabled && c.Metrics.Password == "" {
		errs = append(errs, fmt.Errorf("%s is required when metrics auth is enabled", EnvMetricsPassword))
	}

	return errors.Join(errs...)
}

// APIKey returns the key for the configured provider, or "".
func (c LLMConfig) APIKey() string {
	switch c.Provider {
	case "gemini":
		return c.GeminiAPIKey
	case "groq":
		return c.GroqAPIKey
	case "cerebras":
		return c.CerebrasAPIKey
	case "openai":
		return c.OpenAIAPIKey
	default:
		return ""
	}
}

// HasLLMProvider reports whether recommendations can reach a model.
// Without one the service answers from the catalog alone.
func (c *Config) HasLLMProvider() bool {
	return c.LLM.Enabled && c.LLM.APIKey() != ""
}

// RatePerSecond converts the hourly refill rate for the token bucket.
func (c RateLimitConfig) RatePerSecond() float64 {
	return c.PerHour / 3600
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := getEnv(key, ""); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolEnv accepts the forms strconv.ParseBool does.
func getBoolEnv(key string, defaultValue bool) bool {
	if value := getEnv(key, ""); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := getEnv(key, ""); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := getEnv(key, ""); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
