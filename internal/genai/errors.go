package genai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"
)

// ErrorClass buckets provider failures for metrics and logs. The flow never
// retries, so the class is informational only.
type ErrorClass string

const (
	ClassCanceled    ErrorClass = "canceled"
	ClassTimeout     ErrorClass = "timeout"
	ClassRateLimited ErrorClass = "rate_limited"
	ClassQuota       ErrorClass = "quota"
	ClassAuth        ErrorClass = "auth"
	ClassBadRequest  ErrorClass = "bad_request"
	ClassServer      ErrorClass = "server_error"
	ClassNetwork     ErrorClass = "network"
	ClassUnknown     ErrorClass = "unknown"
)

// ClassifyError determines the class of a failed provider call.
// HTTP status codes from either SDK win over message matching.
func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ClassUnknown
	}
	if errors.Is(err, context.Canceled) {
		return ClassCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}

	if code := StatusCode(err); code != 0 {
		if class := classifyStatusCode(code); class != ClassUnknown {
			if class == ClassRateLimited && isQuotaMessage(strings.ToLower(err.Error())) {
				return ClassQuota
			}
			return class
		}
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case isQuotaMessage(errStr):
		return ClassQuota
	case containsAny(errStr, "rate limit", "too many requests", "resource_exhausted"):
		return ClassRateLimited
	case containsAny(errStr, "unauthorized", "unauthenticated", "invalid api key", "permission denied"):
		return ClassAuth
	case containsAny(errStr, "unavailable", "internal server error", "bad gateway", "overloaded"):
		return ClassServer
	case containsAny(errStr, "timeout", "deadline"):
		return ClassTimeout
	case containsAny(errStr, "connection refused", "connection reset", "no such host", "eof"):
		return ClassNetwork
	}
	return ClassUnknown
}

// StatusCode extracts the HTTP status of a provider error, or 0.
func StatusCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var oaErr *openai.Error
	if errors.As(err, &oaErr) {
		return oaErr.StatusCode
	}
	return 0
}

func classifyStatusCode(statusCode int) ErrorClass {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return ClassRateLimited
	case statusCode == http.StatusRequestTimeout, statusCode == http.StatusGatewayTimeout:
		return ClassTimeout
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return ClassAuth
	case statusCode >= 500 && statusCode < 600:
		return ClassServer
	case statusCode >= 400 && statusCode < 500:
		return ClassBadRequest
	default:
		return ClassUnknown
	}
}

func isQuotaMessage(s string) bool {
	return containsAny(s, "quota", "daily limit", "monthly limit", "billing")
}

// containsAny checks if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
