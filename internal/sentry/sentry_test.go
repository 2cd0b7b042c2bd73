package sentry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "github.com/zjgaokao/major-advisor/internal/errors"
)

func TestInitialize_EmptyDSN(t *testing.T) {
	if err := Initialize(Config{}); err != nil {
		t.Errorf("Expected nil error for empty DSN, got %v", err)
	}
}

func TestInitialize_InvalidSampleRate(t *testing.T) {
	err := Initialize(Config{DSN: "https://key@o0.ingest.sentry.io/1", SampleRate: 1.5})
	if err == nil {
		t.Error("Expected error for sample rate above 1")
	}
}

func TestInitialize_InvalidDSN(t *testing.T) {
	if err := Initialize(Config{DSN: "not a dsn"}); err == nil {
		t.Error("Expected error for malformed DSN")
	}
}

func TestInitialize_ValidConfig(t *testing.T) {
	// Cannot use t.Parallel() as Sentry uses global state

	err := Initialize(Config{
		DSN:         "https://public@o0.ingest.sentry.io/1",
		Environment: "test",
		SampleRate:  1.0,
	})
	if err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}
	if !IsEnabled() {
		t.Error("Expected IsEnabled() to return true after initialization")
	}

	// Must not panic with or without a request hub.
	CaptureExceptionWithContext(context.Background(), errors.New("boom"))
	Flush(100 * time.Millisecond)
}

func TestReportable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"validation", apperrors.NewValidationError("score", "bad"), false},
		{"not found", apperrors.NewNotFoundError("浙江大学", "080901"), false},
		{"rate limited", fmt.Errorf("client: %w", apperrors.ErrRateLimitExceeded), false},
		{"canceled", context.Canceled, false},
		{"schema", apperrors.NewSchemaViolation("missing reasoning", nil), true},
		{"upstream", apperrors.NewUpstreamError("gemini", "m", errors.New("503")), true},
		{"internal", errors.New("disk on fire"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reportable(tt.err); got != tt.want {
				t.Errorf("Reportable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
