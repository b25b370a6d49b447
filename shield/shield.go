// Package shield provides the HTTP middleware stack for the edit service:
// security headers, request body limits, and per-request trace IDs with a
// structured logger in the context.
//
// Usage:
//
//	r := chi.NewRouter()
//	for _, mw := range shield.Stack(1 << 20) {
//	    r.Use(mw)
//	}
package shield

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey string

// LoggerKey is the context key for the per-request structured logger.
const LoggerKey contextKey = "shield_logger"

// GetLogger retrieves the per-request logger from the context.
// Returns slog.Default() if no logger was set.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(LoggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// Stack returns the standard middleware stack for the edit API, ordered
// SecurityHeaders → MaxBody → TraceID.
func Stack(maxBody int64) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders(DefaultHeaders()),
		MaxBody(maxBody),
		TraceID,
	}
}
