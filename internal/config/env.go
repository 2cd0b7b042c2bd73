// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort            = "GAOKAO_PORT"
	EnvLogLevel        = "GAOKAO_LOG_LEVEL"
	EnvShutdownTimeout = "GAOKAO_SHUTDOWN_TIMEOUT"

	// Catalog
	EnvCatalogBackend  = "GAOKAO_CATALOG_BACKEND"
	EnvSQLitePath      = "GAOKAO_SQLITE_PATH"
	EnvProbabilitySeed = "GAOKAO_PROBABILITY_SEED"

	// Rate Limits
	EnvRecommendRateBurst   = "GAOKAO_RECOMMEND_RATE_BURST"
	EnvRecommendRatePerHour = "GAOKAO_RECOMMEND_RATE_PER_HOUR"

	// LLM Feature
	EnvLLMEnabled       = "GAOKAO_LLM_ENABLED"
	EnvLLMProvider      = "GAOKAO_LLM_PROVIDER"
	EnvLLMModel         = "GAOKAO_LLM_MODEL"
	EnvLLMBaseURL       = "GAOKAO_LLM_BASE_URL"
	EnvLLMTimeout       = "GAOKAO_LLM_TIMEOUT"
	EnvLLMTemperature   = "GAOKAO_LLM_TEMPERATURE"
	EnvLLMMaxToolRounds = "GAOKAO_LLM_MAX_TOOL_ROUNDS"
	EnvLLMMaxConcurrent = "GAOKAO_LLM_MAX_CONCURRENT"
	EnvGeminiAPIKey     = "GAOKAO_GEMINI_API_KEY"
	EnvGroqAPIKey       = "GAOKAO_GROQ_API_KEY"
	EnvCerebrasAPIKey   = "GAOKAO_CEREBRAS_API_KEY"
	EnvOpenAIAPIKey     = "GAOKAO_OPENAI_API_KEY"

	// Sentry Feature
	EnvSentryEnabled          = "GAOKAO_SENTRY_ENABLED"
	EnvSentryDSN              = "GAOKAO_SENTRY_DSN"
	EnvSentryEnvironment      = "GAOKAO_SENTRY_ENVIRONMENT"
	EnvSentryRelease          = "GAOKAO_SENTRY_RELEASE"
	EnvSentrySampleRate       = "GAOKAO_SENTRY_SAMPLE_RATE"
	EnvSentryTracesSampleRate = "GAOKAO_SENTRY_TRACES_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackEnabled = "GAOKAO_BETTERSTACK_ENABLED"
	EnvBetterStackToken   = "GAOKAO_BETTERSTACK_TOKEN"

	// Metrics Auth Feature
	EnvMetricsAuthEnabled = "GAOKAO_METRICS_AUTH_ENABLED"
	EnvMetricsUsername    = "GAOKAO_METRICS_USERNAME"
	EnvMetricsPassword    = "GAOKAO_METRICS_PASSWORD"
)
