package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/genai"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{name: "nil error", err: nil, expected: ClassUnknown},
		{name: "context canceled", err: context.Canceled, expected: ClassCanceled},
		{name: "wrapped deadline", err: fmt.Errorf("generate: %w", context.DeadlineExceeded), expected: ClassTimeout},
		{name: "gemini 429", err: genai.APIError{Code: http.StatusTooManyRequests, Message: "slow down"}, expected: ClassRateLimited},
		{name: "gemini 429 quota", err: genai.APIError{Code: http.StatusTooManyRequests, Message: "Quota exceeded for metric"}, expected: ClassQuota},
		{name: "gemini 401", err: genai.APIError{Code: http.StatusUnauthorized}, expected: ClassAuth},
		{name: "gemini 403", err: genai.APIError{Code: http.StatusForbidden}, expected: ClassAuth},
		{name: "gemini 400", err: genai.APIError{Code: http.StatusBadRequest}, expected: ClassBadRequest},
		{name: "gemini 503", err: genai.APIError{Code: http.StatusServiceUnavailable}, expected: ClassServer},
		{name: "gemini 504", err: genai.APIError{Code: http.StatusGatewayTimeout}, expected: ClassTimeout},
		{name: "wrapped gemini error", err: fmt.Errorf("call: %w", genai.APIError{Code: http.StatusInternalServerError}), expected: ClassServer},
		{name: "quota message", err: errors.New("monthly limit reached"), expected: ClassQuota},
		{name: "rate limit message", err: errors.New("Rate limit reached for model"), expected: ClassRateLimited},
		{name: "auth message", err: errors.New("invalid api key provided"), expected: ClassAuth},
		{name: "overloaded message", err: errors.New("model is overloaded"), expected: ClassServer},
		{name: "network message", err: errors.New("dial tcp: connection refused"), expected: ClassNetwork},
		{name: "unknown", err: errors.New("something odd"), expected: ClassUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ClassifyError(tt.err); got != tt.expected {
				t.Errorf("ClassifyError(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}

func TestStatusCode(t *testing.T) {
	t.Parallel()
	if got := StatusCode(errors.New("plain")); got != 0 {
		t.Errorf("StatusCode(plain) = %d, want 0", got)
	}
	if got := StatusCode(fmt.Errorf("x: %w", genai.APIError{Code: 418})); got != 418 {
		t.Errorf("StatusCode(wrapped APIError) = %d, want 418", got)
	}
}
