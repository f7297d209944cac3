package logging

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

var defaultLogger = slog.Default()

// SetDefault replaces the process logger, including slog's default.
func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
	slog.SetDefault(logger)
}

// FromContext returns the request-scoped logger, or the process logger.
func FromContext(ctx context.Context) *slog.Logger {
	return FromContextOr(ctx, defaultLogger)
}

// FromContextOr is FromContext with a caller-chosen fallback. Background
// work such as ticks and file reloads passes its component logger here.
func FromContextOr(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}

	if fallback != nil {
		return fallback
	}

	return defaultLogger
}

// WithContext returns a copy of ctx carrying logger.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// With derives the context logger with extra attributes.
func With(ctx context.Context, args ...any) context.Context {
	if len(args) == 0 {
		return ctx
	}

	return WithContext(ctx, FromContext(ctx).With(args...))
}

// WithRequestID tags the context logger with request_id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return With(ctx, slog.String("request_id", id))
}

// WithCorrelationID tags the context logger with correlation_id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return With(ctx, slog.String("correlation_id", id))
}

// WithTraceID tags the context logger with trace_id.
func WithTraceID(ctx context.Context, id string) context.Context {
	return With(ctx, slog.String("trace_id", id))
}
