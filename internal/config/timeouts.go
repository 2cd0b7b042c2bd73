// Package config provides centralized timeout constants for the application.
//
// HTTP write timeout must exceed the default LLM flow timeout so a slow
// recommendation can still be written back to the client.
package config

import "time"

// HTTP server timeouts
const (
	// HTTPReadHeader bounds how long a client may take to send headers.
	HTTPReadHeader = 5 * time.Second

	// HTTPRead bounds reading a request; request bodies here are small JSON.
	HTTPRead = 10 * time.Second

	// HTTPWrite covers DefaultLLMTimeout plus response serialization.
	HTTPWrite = 75 * time.Second

	// HTTPIdle is the keep-alive idle timeout.
	HTTPIdle = 120 * time.Second
)

// LLM timeouts
const (
	// DefaultLLMTimeout bounds one whole recommendation flow, tool rounds included.
	DefaultLLMTimeout = 60 * time.Second

	// LLMClientInit bounds provider client construction at startup.
	LLMClientInit = 10 * time.Second
)

// Database timeouts
const (
	// DatabaseBusyTimeout is SQLite busy_timeout pragma value.
	DatabaseBusyTimeout = 5 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of database connections.
	DatabaseConnMaxLifetime = time.Hour
)

// Background job intervals
const (
	// RateLimiterCleanupInterval is how often idle per-client limiters are removed.
	RateLimiterCleanupInterval = 5 * time.Minute

	// MetricsUpdateInterval is how often catalog gauges are refreshed.
	MetricsUpdateInterval = 5 * time.Minute
)

// Health checks
const (
	// ReadinessCheck bounds the storage ping behind /readyz.
	ReadinessCheck = 2 * time.Second
)

// Graceful shutdown
const (
	// GracefulShutdown is the default timeout for graceful server shutdown.
	GracefulShutdown = 30 * time.Second

	// LogFlush bounds draining the remote log queue on exit.
	LogFlush = 5 * time.Second
)
