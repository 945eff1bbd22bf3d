package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var (
	logLevel  = LogLevelInfo
	levelVar  = new(slog.LevelVar)
	logFormat = "text"
	logger    = newSlogLogger(os.Stderr, logFormat)
)

func newSlogLogger(w io.Writer, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelVar}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ConfigureLogging applies the log section of the configuration. Output is
// always stderr so stdout stays clean for command results.
func ConfigureLogging(cfg LogConfig) {
	ConfigureLoggingTo(os.Stderr, cfg)
}

// ConfigureLoggingTo is ConfigureLogging with an explicit writer.
func ConfigureLoggingTo(w io.Writer, cfg LogConfig) {
	logFormat = cfg.Format
	logger = newSlogLogger(w, logFormat)
	SetLogLevel(ParseLogLevel(cfg.Level))
}

// ParseLogLevel maps debug, info, warn and error (case-insensitive) to a
// LogLevel; anything else is info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	logLevel = level
	switch level {
	case LogLevelError:
		levelVar.Set(slog.LevelError)
	case LogLevelWarn:
		levelVar.Set(slog.LevelWarn)
	case LogLevelDebug:
		levelVar.Set(slog.LevelDebug)
	default:
		levelVar.Set(slog.LevelInfo)
	}
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelInfo)
	}
}

// Logger returns the structured logger behind the Log* helpers.
func Logger() *slog.Logger {
	return logger
}

func logAt(level slog.Level, format string, args ...interface{}) {
	ctx := context.Background()
	if !logger.Enabled(ctx, level) {
		return
	}
	logger.Log(ctx, level, fmt.Sprintf(format, args...))
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	logAt(slog.LevelError, format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	logAt(slog.LevelWarn, format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	logAt(slog.LevelInfo, format, args...)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) {
	logAt(slog.LevelDebug, format, args...)
}
