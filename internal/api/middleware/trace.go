package middleware

import (
	"log/slog"
	"net/http"

	"github.com/jwhitt/flashstack/internal/api/shared"
	"github.com/jwhitt/flashstack/internal/platform/logger"
)

// NewTraceMiddleware returns middleware that adds a trace ID to the
// request context and attaches a trace-scoped logger so downstream
// layers log with the same ID. Apply it early in the chain.
func NewTraceMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			traceID := shared.GetTraceID(ctx)

			traceLog := log.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, traceLog)

			traceLog.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
