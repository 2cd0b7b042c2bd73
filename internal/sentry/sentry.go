// Package sentry wraps the Sentry Go SDK: initialization from config and
// capture helpers that tag events with the request id and error kind.
package sentry

import (
	"context"
	"errors"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/zjgaokao/major-advisor/internal/ctxutil"
	apperrors "github.com/zjgaokao/major-advisor/internal/errors"
)

// Config holds Sentry client settings.
type Config struct {
	// DSN is the project DSN. Empty disables reporting.
	DSN string

	// Environment identifies the deployment environment (e.g., "production", "staging").
	Environment string

	// Release identifies the application release version.
	Release string

	// SampleRate controls error sampling (0.0-1.0, default 1.0 = 100%).
	SampleRate float64

	// TracesSampleRate controls performance tracing; 0 disables it.
	TracesSampleRate float64

	// Debug enables Sentry SDK debug logging.
	Debug bool
}

// Initialize sets up the Sentry SDK.
// If DSN is empty, Sentry is disabled and nil is returned.
func Initialize(cfg Config) error {
	if cfg.DSN == "" {
		return nil
	}
	if cfg.SampleRate < 0 || cfg.SampleRate > 1 {
		return errors.New("sentry sample rate must be within [0, 1]")
	}

	sampleRate := cfg.SampleRate
	if sampleRate == 0 {
		sampleRate = 1.0
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       sampleRate,
		EnableTracing:    cfg.TracesSampleRate > 0,
		TracesSampleRate: cfg.TracesSampleRate,
		Debug:            cfg.Debug,
		AttachStacktrace: true,
	})
}

// Flush waits for buffered events to be sent to the server.
// Returns true if all events were sent within the timeout.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// IsEnabled returns true if Sentry is initialized and active.
func IsEnabled() bool {
	return sentry.CurrentHub().Client() != nil
}

// Reportable reports whether err should reach Sentry. Client mistakes,
// missing records and rate limiting are expected traffic.
func Reportable(err error) bool {
	switch apperrors.Kind(err) {
	case "ok", "validation_error", "not_found", "rate_limited":
		return false
	default:
		return !errors.Is(err, context.Canceled)
	}
}

// CaptureExceptionWithContext captures err on the request hub (set by the gin
// middleware) tagged with request id, client ip, provider and error kind.
// Errors that are not Reportable are ignored.
func CaptureExceptionWithContext(ctx context.Context, err error) {
	if err == nil || !Reportable(err) || !IsEnabled() {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("error_kind", apperrors.Kind(err))
		if id, ok := ctxutil.GetRequestID(ctx); ok {
			scope.SetTag("request_id", id)
		}
		if p := ctxutil.GetProvider(ctx); p != "" {
			scope.SetTag("llm_provider", p)
		}
		if ip := ctxutil.GetClientIP(ctx); ip != "" {
			scope.SetUser(sentry.User{IPAddress: ip})
		}
		hub.CaptureException(err)
	})
}
