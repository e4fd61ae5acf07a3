package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// GenerateTraceID returns a fresh UUID v4 trace ID. Requests arriving
// over HTTP reuse chi's request ID instead; this path covers CLI runs
// and background work that has no inbound request.
func GenerateTraceID() string {
	return uuid.New().String()
}

// ContextWithTraceID returns a child context carrying a new trace ID.
func ContextWithTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, GenerateTraceID())
}

// EnsureTraceID returns ctx unchanged when it already carries a trace
// ID, otherwise a child context with a generated one. Batch workers
// call this once per workbook so every parse run is correlatable.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) == "" {
		return ContextWithTraceID(ctx)
	}
	return ctx
}

// LoggerWithContext returns the global logger bound to the context's
// trace ID when one is present.
func LoggerWithContext(ctx context.Context) *slog.Logger {
	logger := GetLogger()
	if traceID := GetTraceID(ctx); traceID != "" {
		logger = logger.With("trace_id", traceID)
	}
	return logger
}

// WithComponent binds a component name to the logger. Services bind
// their name once at construction so every line they emit is
// attributable without repeating the attribute at each call site.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}

// WithWorkbook binds the workbook base name a pipeline run is
// operating on.
func WithWorkbook(logger *slog.Logger, file string) *slog.Logger {
	return logger.With("workbook", file)
}

// WithError binds an error's message to the logger; nil passes the
// logger through untouched.
func WithError(logger *slog.Logger, err error) *slog.Logger {
	if err == nil {
		return logger
	}
	return logger.With("error", err.Error())
}
