// Package logger provides structured logging for the advisor. It wraps
// log/slog with JSON output, context enrichment (request id, client ip) and
// optional shipping to Better Stack.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogbetterstack "github.com/samber/slog-betterstack"
)

// Logger is the application logger.
type Logger struct {
	*slog.Logger
	shipper *AsyncHandler
}

// Options configures optional log sinks.
type Options struct {
	// BetterStackToken enables remote shipping when non-empty.
	BetterStackToken string
	// Async tunes the remote shipping queue.
	Async AsyncOptions
}

// New creates a logger writing JSON to stdout.
func New(level string) *Logger {
	return NewWithWriter(level, os.Stdout)
}

// NewWithWriter creates a logger writing JSON to w.
func NewWithWriter(level string, w io.Writer) *Logger {
	return NewWithOptions(level, w, Options{})
}

// NewWithOptions creates a logger writing JSON to w and, when configured,
// shipping the same records to Better Stack without blocking the caller.
func NewWithOptions(level string, w io.Writer, opts Options) *Logger {
	lvl := ParseLevel(level)
	var handler slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: renameAttrs,
	})

	var shipper *AsyncHandler
	if opts.BetterStackToken != "" {
		remote := slogbetterstack.Option{
			Level: lvl,
			Token: opts.BetterStackToken,
		}.NewBetterstackHandler()
		shipper = NewAsyncHandler(remote, opts.Async)
		handler = NewFanoutHandler(handler, shipper)
	}

	return &Logger{
		Logger:  slog.New(NewContextHandler(handler)),
		shipper: shipper,
	}
}

// ParseLevel maps a config string to a slog level; unknown values mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// renameAttrs emits timestamp/level/message keys with lower-case levels.
func renameAttrs(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "timestamp"
	case slog.LevelKey:
		a.Key = "level"
		level := strings.ToLower(a.Value.String())
		if level == "warn" {
			level = "warning"
		}
		a.Value = slog.StringValue(level)
	case slog.MessageKey:
		a.Key = "message"
	}
	return a
}

func (l *Logger) derive(inner *slog.Logger) *Logger {
	return &Logger{Logger: inner, shipper: l.shipper}
}

// WithModule creates a new entry with module field
func (l *Logger) WithModule(module string) *Logger {
	return l.derive(l.With("module", module))
}

// WithRequestID creates a new entry with request ID field
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.derive(l.With("request_id", requestID))
}

// WithError creates a new entry with error field
func (l *Logger) WithError(err error) *Logger {
	return l.derive(l.With("error", err))
}

// WithField creates a new entry with a single field
func (l *Logger) WithField(key string, value any) *Logger {
	return l.derive(l.With(key, value))
}

// WithFields creates a new entry with multiple fields
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return l.derive(l.With(args...))
}

// Infof logs a formatted message at info level.
func (l *Logger) Infof(format string, args ...any) {
	l.Info(fmt.Sprintf(format, args...))
}

// Warnf logs a formatted message at warn level.
func (l *Logger) Warnf(format string, args ...any) {
	l.Warn(fmt.Sprintf(format, args...))
}

// Errorf logs a formatted message at error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
}

// Debugf logs a formatted message at debug level.
func (l *Logger) Debugf(format string, args ...any) {
	l.Debug(fmt.Sprintf(format, args...))
}

// Shutdown drains the remote shipping queue. It is a no-op without one.
func (l *Logger) Shutdown(ctx context.Context) error {
	if l == nil || l.shipper == nil {
		return nil
	}
	return l.shipper.Shutdown(ctx)
}
