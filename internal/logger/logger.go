package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"camshare/internal/config"
)

// FileName is the log file written inside the configured log directory.
const FileName = "camshare.log"

// Logger provides leveled printf-style logging as JSON lines to stdout and a log file.
type Logger struct {
	zl     zerolog.Logger
	file   *os.File
	logDir string
}

// NewLogger creates a Logger and ensures the log directory exists.
func NewLogger(cfg *config.Config) (*Logger, error) {
	if err := os.MkdirAll(cfg.LogDirectory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(cfg.LogDirectory, FileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339
	zl := zerolog.New(io.MultiWriter(os.Stdout, file)).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{zl: zl, file: file, logDir: cfg.LogDirectory}, nil
}

// New wraps an arbitrary writer; used by tests that want to inspect output.
func New(w io.Writer) *Logger {
	return &Logger{zl: zerolog.New(w).With().Timestamp().Logger()}
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// With returns a child logger carrying an extra field on every entry.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, value).Logger(), file: l.file, logDir: l.logDir}
}

func (l *Logger) Debug(format string, v ...interface{}) {
	l.zl.Debug().Msgf(format, v...)
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.zl.Info().Msgf(format, v...)
}

func (l *Logger) Warning(format string, v ...interface{}) {
	l.zl.Warn().Msgf(format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.zl.Error().Msgf(format, v...)
}

// Path returns the log file path, or "" for loggers without a file.
func (l *Logger) Path() string {
	if l.logDir == "" {
		return ""
	}
	return filepath.Join(l.logDir, FileName)
}

// CleanLogs truncates the log file.
func (l *Logger) CleanLogs() error {
	if l.file == nil {
		return nil
	}
	if err := l.file.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate log file: %w", err)
	}
	l.Info("Log file has been cleared")
	return nil
}

// Close releases the log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
