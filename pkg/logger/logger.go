package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	AdminIDKey   contextKey = "admin_id"
	ServiceKey   contextKey = "service"
	FlowIDKey    contextKey = "flow_id"
)

var defaultLogger *slog.Logger

func init() {
	Configure(os.Stdout, os.Getenv("LOG_LEVEL"))
}

// Configure replaces the package logger. The CLI points it at stderr so the
// JSON lines do not interleave with the prompts on stdout.
func Configure(w io.Writer, level string) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	switch level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	handler := slog.NewJSONHandler(w, opts)
	defaultLogger = slog.New(handler)
}

func Default() *slog.Logger {
	return defaultLogger
}

func WithContext(ctx context.Context) *slog.Logger {
	logger := defaultLogger

	if requestID := ctx.Value(RequestIDKey); requestID != nil {
		logger = logger.With("request_id", requestID)
	}

	if adminID := ctx.Value(AdminIDKey); adminID != nil {
		logger = logger.With("admin_id", adminID)
	}

	if service := ctx.Value(ServiceKey); service != nil {
		logger = logger.With("service", service)
	}

	if flowID := ctx.Value(FlowIDKey); flowID != nil {
		logger = logger.With("flow_id", flowID)
	}

	return logger
}

func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

func InfoContext(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Info(msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Error(msg, args...)
}

func DebugContext(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Debug(msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Warn(msg, args...)
}
