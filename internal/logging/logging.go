// Package logging wraps log/slog with the attribute names used across rscan.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger wraps slog.Logger with operation-scoped helpers.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing to w (stderr when nil). format is "text" or "json".
func New(level slog.Level, format string, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &Logger{Logger: slog.New(handler)}
}

// FromConfig builds a Logger from the textual level and format settings.
func FromConfig(level, format string, w io.Writer) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return New(lvl, format, w), nil
}

// Noop returns a Logger that discards everything.
func Noop() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))}
}

// ParseLevel accepts debug, info, warn/warning and error (case-insensitive).
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// WithOperation tags the logger with an operation id and kind.
func (l *Logger) WithOperation(id uint64, kind string) *Logger {
	return &Logger{Logger: l.Logger.With("op", id, "kind", kind)}
}

// WithComponent tags the logger with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{Logger: l.Logger.With("component", name)}
}

// LogStart logs the start of an operation.
func (l *Logger) LogStart(ctx context.Context, root string) {
	l.DebugContext(ctx, "operation started", "root", root)
}

// LogFinish logs how an operation ended. Failures are logged at error level.
func (l *Logger) LogFinish(ctx context.Context, outcome string, scanned int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "operation failed",
			"scanned", scanned,
			"elapsed", elapsed,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "operation finished",
		"outcome", outcome,
		"scanned", scanned,
		"elapsed", elapsed,
	)
}
