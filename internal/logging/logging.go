package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/rmitchellscott/mediamaster/internal/config"
)

var logger = newLogger()

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(config.Get("LOG_LEVEL", "info")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	})
	return slog.New(handler)
}

// Debug logs a debug message with optional key/value pairs
func Debug(msg string, args ...any) {
	logger.Debug(msg, args...)
}

// Info logs an informational message with optional key/value pairs
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// Warn logs a warning message with optional key/value pairs
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// Error logs an error message with optional key/value pairs
func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}

// DebugWithComponent logs a debug message tagged with a component name
func DebugWithComponent(component, msg string, args ...any) {
	logger.With("component", component).Debug(msg, args...)
}

// InfoWithComponent logs an informational message tagged with a component name
func InfoWithComponent(component, msg string, args ...any) {
	logger.With("component", component).Info(msg, args...)
}

// WarnWithComponent logs a warning message tagged with a component name
func WarnWithComponent(component, msg string, args ...any) {
	logger.With("component", component).Warn(msg, args...)
}

// ErrorWithComponent logs an error message tagged with a component name
func ErrorWithComponent(component, msg string, args ...any) {
	logger.With("component", component).Error(msg, args...)
}
