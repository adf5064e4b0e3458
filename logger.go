package rowmap

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with rowmap-specific context.
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
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithKey adds a record key field to the logger.
func (l *Logger) WithKey(key string) *Logger {
	return &Logger{
		Logger: l.Logger.With("key", key),
	}
}

// WithPath adds a file path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// LogPut logs a put operation.
func (l *Logger) LogPut(ctx context.Context, key string, columns int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "put failed",
			"key", key,
			"columns", columns,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "put completed",
			"key", key,
			"columns", columns,
		)
	}
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(ctx context.Context, key string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"key", key,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "delete completed",
			"key", key,
		)
	}
}

// LogExport logs a finished export run.
func (l *Logger) LogExport(ctx context.Context, path string, rows int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "export failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "export completed",
			"path", path,
			"rows", rows,
		)
	}
}

// LogRecovery logs a row log replay on open.
func (l *Logger) LogRecovery(ctx context.Context, dir string, rows uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "log recovery failed",
			"dir", dir,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "log recovery completed",
			"dir", dir,
			"rows", rows,
		)
	}
}
