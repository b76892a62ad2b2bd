// Package logger provides structured logging for the regionsync server.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger provides leveled, structured logging backed by zerolog.
type Logger struct {
	zl      zerolog.Logger
	logFile *os.File
}

// New creates a new Logger instance writing to stderr.
func New(debug bool) *Logger {
	return newLogger(debug, os.Stderr, nil)
}

// NewWithFile creates a new Logger instance that writes to both stderr and a file.
func NewWithFile(debug bool, logFilePath string) (*Logger, error) {
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	return newLogger(debug, io.MultiWriter(os.Stderr, logFile), logFile), nil
}

func newLogger(debug bool, w io.Writer, logFile *os.File) *Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return &Logger{
		zl:      zerolog.New(console).Level(level).With().Timestamp().Logger(),
		logFile: logFile,
	}
}

// Close closes the log file if one is open.
func (l *Logger) Close() error {
	if l.logFile != nil {
		return l.logFile.Close()
	}
	return nil
}

// With returns a logger carrying an extra key/value field on every message.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{
		zl:      l.zl.With().Str(key, value).Logger(),
		logFile: l.logFile,
	}
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.zl.Info().Msg(msg)
}

// Infof logs a formatted informational message.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

// Warning logs a warning message.
func (l *Logger) Warning(msg string) {
	l.zl.Warn().Msg(msg)
}

// Warningf logs a formatted warning message.
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string) {
	l.zl.Error().Msg(msg)
}

// Errorf logs a formatted error message.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// Debug logs a debug message (only if debug mode is enabled).
func (l *Logger) Debug(msg string) {
	l.zl.Debug().Msg(msg)
}

// Debugf logs a formatted debug message (only if debug mode is enabled).
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}

// GetTimestamp returns a timestamp string in the format YYYYMMDD-HHMMSS.
func GetTimestamp() string {
	return time.Now().Format("20060102-150405")
}
