package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type implLogger struct {
	logger *slog.Logger
	level  string
}

// New creates a Logger writing text records to stdout.
func New(level string) Logger {
	return NewWithFormat(level, "text", os.Stdout)
}

// NewWithFormat creates a Logger writing to w. format is "text" or "json".
func NewWithFormat(level, format string, w io.Writer) Logger {
	level = strings.ToLower(level)
	opts := &slog.HandlerOptions{Level: slogLevel(level)}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &implLogger{
		logger: slog.New(handler),
		level:  level,
	}
}

// NewNop returns a Logger that discards everything.
func NewNop() Logger {
	return NewWithFormat("error", "text", io.Discard)
}

func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *implLogger) shouldLog(level string) bool {
	levels := map[string]int{
		"debug": 0,
		"info":  1,
		"warn":  2,
		"error": 3,
	}

	currentLevel, ok := levels[l.level]
	if !ok {
		currentLevel = 1 // default to info
	}

	targetLevel, ok := levels[level]
	if !ok {
		return true
	}

	return targetLevel >= currentLevel
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("debug") {
		l.logger.DebugContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("info") {
		l.logger.InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("warn") {
		l.logger.WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("error") {
		l.logger.ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}
