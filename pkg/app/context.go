package app

import (
	"context"
	"log/slog"
)

// ctxKeyLogger is a context key pointing to a logger
type ctxKeyLogger struct{}

// Attaches a logger to the given context
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKeyLogger{}, logger)
}

// Retrieves a logger from the given context
func Logger(ctx context.Context) *slog.Logger {
	return ctx.Value(ctxKeyLogger{}).(*slog.Logger)
}
