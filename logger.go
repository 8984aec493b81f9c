package streamscope

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with streamscope-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithUser adds a user field to the logger.
func (l *Logger) WithUser(userID int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("user", userID),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogFetch logs a stream fetch operation.
func (l *Logger) LogFetch(ctx context.Context, userID int64, requested, returned, passes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "fetch failed",
			"user", userID,
			"requested", requested,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "fetch completed",
			"user", userID,
			"requested", requested,
			"returned", returned,
			"passes", passes,
		)
	}
}

// LogPost logs an activity post operation.
func (l *Logger) LogPost(ctx context.Context, activityID int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "post failed",
			"activity", activityID,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "post completed",
			"activity", activityID,
		)
	}
}

// LogSnapshot logs a snapshot save or load.
func (l *Logger) LogSnapshot(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"name", name,
		)
	}
}
