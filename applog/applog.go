// Package applog provides general-purpose application logging.
//
// Logs are written to ~/.paidata/logs/app.log as zerolog JSON lines.
// Covers: app start/stop, config changes, dataset loads, and general events.
package applog

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu      sync.Mutex
	opened  bool
	logFile *os.File
	logger  = zerolog.Nop()
	level   = zerolog.InfoLevel
)

// OpenFile opens (or creates) ~/.paidata/logs/<name> for appending.
func OpenFile(name string) (*os.File, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	logDir := filepath.Join(homeDir, ".paidata", "logs")
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(logDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
}

// ParseLevel maps a config string onto a zerolog level, defaulting to info.
func ParseLevel(raw string) zerolog.Level {
	if raw == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// SetLevel changes the minimum level of the application log.
func SetLevel(raw string) {
	mu.Lock()
	defer mu.Unlock()
	level = ParseLevel(raw)
	logger = logger.Level(level)
}

// SetOutput redirects the application log, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	opened = true
	logger = zerolog.New(w).With().Timestamp().Logger().Level(level)
}

// Logger returns the application logger, opening the log file on first use.
func Logger() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !opened {
		opened = true
		f, err := OpenFile("app.log")
		if err == nil {
			logFile = f
			logger = zerolog.New(f).With().Timestamp().Logger().Level(level)
		}
	}
	return logger
}

// Info logs a general info message.
func Info(format string, args ...interface{}) {
	l := Logger()
	l.Info().Msgf(format, args...)
}

// Warn logs a recoverable problem.
func Warn(format string, args ...interface{}) {
	l := Logger()
	l.Warn().Msgf(format, args...)
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	l := Logger()
	l.Error().Msgf(format, args...)
}

// Event logs a structured event with a category.
func Event(category string, format string, args ...interface{}) {
	l := Logger()
	l.Info().Str("category", category).Msgf(format, args...)
}

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	logger = zerolog.Nop()
	opened = false
}
