// Package ctxutil carries per-request tracing values through context.
// Uses private key types to prevent collisions.
package ctxutil

import (
	"context"
)

type contextKey string

const (
	requestIDKey contextKey = "ctxutil.requestID"
	clientIPKey  contextKey = "ctxutil.clientIP"
	providerKey  contextKey = "ctxutil.llmProvider"
)

// WithRequestID adds a request ID to the context for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	return requestID, ok && requestID != ""
}

// WithClientIP records the caller address. It keys the recommendation rate
// limiter and appears in logs.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// GetClientIP returns the caller address, or "" when unset.
func GetClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}

// WithProvider records which LLM provider serves the current request.
func WithProvider(ctx context.Context, provider string) context.Context {
	return context.WithValue(ctx, providerKey, provider)
}

// GetProvider returns the LLM provider for the request, or "".
func GetProvider(ctx context.Context) string {
	p, _ := ctx.Value(providerKey).(string)
	return p
}

// PreserveTracing creates a detached context that keeps tracing values but
// not the parent's cancellation, for work that must outlive a request.
func PreserveTracing(ctx context.Context) context.Context {
	newCtx := context.Background()
	if requestID, ok := GetRequestID(ctx); ok {
		newCtx = WithRequestID(newCtx, requestID)
	}
	if ip := GetClientIP(ctx); ip != "" {
		newCtx = WithClientIP(newCtx, ip)
	}
	if p := GetProvider(ctx); p != "" {
		newCtx = WithProvider(newCtx, p)
	}
	return newCtx
}
