package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/zjgaokao/major-advisor/internal/ctxutil"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)

	log.Warn("catalog loaded", "majors", 80)

	entry := decodeLine(t, &buf)
	for _, key := range []string{"timestamp", "level", "message"} {
		if _, ok := entry[key]; !ok {
			t.Errorf("missing %q in %v", key, entry)
		}
	}
	if entry["level"] != "warning" {
		t.Errorf("level = %v, want warning", entry["level"])
	}
	if entry["message"] != "catalog loaded" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["majors"] != float64(80) {
		t.Errorf("majors = %v, want 80", entry["majors"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("warn", &buf)

	log.Info("hidden")
	log.Debug("hidden too")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}

	log.Error("shown")
	if !bytes.Contains(buf.Bytes(), []byte("shown")) {
		t.Errorf("error record missing: %q", buf.String())
	}
}

func TestLogger_WithHelpers(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf).
		WithModule("recommend").
		WithRequestID("req-1").
		WithError(errors.New("boom")).
		WithFields(map[string]any{"total": 3})

	log.Infof("filtered %d majors", 3)

	entry := decodeLine(t, &buf)
	want := map[string]any{
		"module":     "recommend",
		"request_id": "req-1",
		"error":      "boom",
		"total":      float64(3),
		"message":    "filtered 3 majors",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %v", k, entry[k], v)
		}
	}
}

func TestLogger_ContextEnrichment(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	ctx := ctxutil.WithRequestID(context.Background(), "req-ctx")
	ctx = ctxutil.WithClientIP(ctx, "10.0.0.7")
	log.InfoContext(ctx, "request handled")

	entry := decodeLine(t, &buf)
	if entry["request_id"] != "req-ctx" {
		t.Errorf("request_id = %v", entry["request_id"])
	}
	if entry["client_ip"] != "10.0.0.7" {
		t.Errorf("client_ip = %v", entry["client_ip"])
	}
	if _, ok := entry["llm_provider"]; ok {
		t.Errorf("llm_provider should be absent: %v", entry)
	}
}

func TestLogger_ShutdownWithoutShipper(t *testing.T) {
	log := NewWithWriter("info", &bytes.Buffer{})
	if err := log.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() = %v, want nil", err)
	}

	var nilLogger *Logger
	if err := nilLogger.Shutdown(context.Background()); err != nil {
		t.Errorf("nil Shutdown() = %v, want nil", err)
	}
}
