package domain

import "log/slog"

// LogLevel is the severity of a stage log line.
type LogLevel = slog.Level

// Severities used by the pipeline.
const (
	LogLevelDebug = slog.LevelDebug
	LogLevelInfo  = slog.LevelInfo
	LogLevelWarn  = slog.LevelWarn
	LogLevelError = slog.LevelError
)
