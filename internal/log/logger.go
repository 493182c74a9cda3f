package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

var CorrelatedIDKey contextKey = "correlation_id"

const LoggerKeyForContext contextKey = "logger"

type Logger struct {
	*slog.Logger
}

// NewLoggerWithJSONOutput writes JSON lines to stdout at the level named by LOG_LEVEL (default info).
func NewLoggerWithJSONOutput() *Logger {
	return NewLoggerWithWriter(os.Stdout, levelFromEnv())
}

func NewLoggerWithWriter(w io.Writer, level slog.Leveler) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})),
	}
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) WithCorrelationID(ctx context.Context) *Logger {
	id := GetOrGenerateCorrelationID(ctx)

	return &Logger{
		Logger: l.Logger.With(string(CorrelatedIDKey), id),
	}
}

// With returns a child logger carrying the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

func GetOrGenerateCorrelationID(ctx context.Context) string {
	if id := ctx.Value(CorrelatedIDKey); id != nil {
		if s, ok := id.(string); ok {
			return s
		}
	}

	return GenerateCorrelationID()
}

func GenerateCorrelationID() string {
	return uuid.New().String()
}

func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelatedIDKey, id)
}

func ContextWithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerKeyForContext, logger)
}

func GetLoggerInstanceFromContext(ctx context.Context, fallbackLogger *Logger) *Logger {
	if ctx != nil {
		if logger := ctx.Value(LoggerKeyForContext); logger != nil {
			if l, ok := logger.(*Logger); ok {
				return l
			}
		}

		if fallbackLogger != nil {
			return fallbackLogger.WithCorrelationID(ctx)
		}
		return NewLoggerWithJSONOutput().WithCorrelationID(ctx)
	}

	if fallbackLogger != nil {
		return fallbackLogger
	}

	return NewLoggerWithJSONOutput()
}
