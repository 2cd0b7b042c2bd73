package ctxutil

import (
	"context"
	"testing"
	"time"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	if _, ok := GetRequestID(context.Background()); ok {
		t.Error("empty context should have no request ID")
	}
	if _, ok := GetRequestID(WithRequestID(context.Background(), "")); ok {
		t.Error("blank request ID should report false")
	}

	ctx := WithRequestID(context.Background(), "req-1")
	if id, ok := GetRequestID(ctx); !ok || id != "req-1" {
		t.Errorf("GetRequestID() = %q, %v; want req-1, true", id, ok)
	}
}

func TestClientIPAndProvider(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if GetClientIP(ctx) != "" || GetProvider(ctx) != "" {
		t.Error("empty context should have no values")
	}

	ctx = WithProvider(WithClientIP(ctx, "203.0.113.7"), "gemini")
	if got := GetClientIP(ctx); got != "203.0.113.7" {
		t.Errorf("GetClientIP() = %q", got)
	}
	if got := GetProvider(ctx); got != "gemini" {
		t.Errorf("GetProvider() = %q", got)
	}
}

func TestPreserveTracing(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	parent = WithRequestID(WithClientIP(parent, "198.51.100.1"), "req-9")
	cancel()

	detached := PreserveTracing(parent)
	if detached.Err() != nil {
		t.Error("detached context should not inherit cancellation")
	}
	if id, _ := GetRequestID(detached); id != "req-9" {
		t.Errorf("request ID = %q, want req-9", id)
	}
	if ip := GetClientIP(detached); ip != "198.51.100.1" {
		t.Errorf("client IP = %q", ip)
	}
}
