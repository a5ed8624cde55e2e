// Package logger configures structured logging with log/slog and
// carries request-scoped loggers through context so every layer logs
// with the request's trace ID.
package logger
