package pairwise

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with engine-specific helpers.
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
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithFormula adds a formula field to the logger.
func (l *Logger) WithFormula(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("formula", name),
	}
}

// LogBind logs a bind or replace operation.
func (l *Logger) LogBind(ctx context.Context, op string, numLHS, numRHS int, self bool, err error) {
	if err != nil {
		l.WarnContext(ctx, op+" rejected",
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, op+" completed",
		"num_lhs", numLHS,
		"num_rhs", numRHS,
		"self", self,
	)
}

// LogCacheBuild logs a triangular cache build.
func (l *Logger) LogCacheBuild(ctx context.Context, n int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "precompute failed",
			"num", n,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "precomputed distance triangle",
		"num", n,
		"slots", n*(n+1)/2,
		"duration", duration,
	)
}

// LogAssemble logs a matrix assembly.
func (l *Logger) LogAssemble(ctx context.Context, rows, cols int, symmetric bool, workers int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "assembly failed",
			"rows", rows,
			"cols", cols,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "assembled matrix",
		"rows", rows,
		"cols", cols,
		"symmetric", symmetric,
		"workers", workers,
		"duration", duration,
	)
}
