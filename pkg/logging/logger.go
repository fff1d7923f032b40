/*
File: logger.go
Description: Logging system for aflmon. Wraps logrus with timestamped log
files, multiple output formats, and count-based retention. Console output goes
to stderr so it never interleaves with the terminal report on stdout.
*/

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warn"
	LogLevelError   LogLevel = "error"
)

// LogFormat represents the logging format.
type LogFormat string

const (
	LogFormatJSON   LogFormat = "json"
	LogFormatText   LogFormat = "text"
	LogFormatCustom LogFormat = "custom"
)

// LoggerConfig holds the configuration for the logger.
type LoggerConfig struct {
	Level     LogLevel  `json:"level"`
	Format    LogFormat `json:"format"`
	OutputDir string    `json:"output_dir"` // Empty disables file output
	MaxFiles  int       `json:"max_files"`
	Timestamp bool      `json:"timestamp"`
	Colors    bool      `json:"colors"`
}

// Validate checks the LoggerConfig for invalid values.
func (c *LoggerConfig) Validate() error {
	if c.OutputDir != "" && c.MaxFiles <= 0 {
		return fmt.Errorf("max_files must be positive when file output is enabled")
	}
	switch c.Format {
	case LogFormatJSON, LogFormatText, LogFormatCustom:
	default:
		return fmt.Errorf("unsupported log format: %s", c.Format)
	}
	switch c.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
	default:
		return fmt.Errorf("unsupported log level: %s", c.Level)
	}
	return nil
}

// DefaultConfig returns console-only logging at info level.
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:     LogLevelInfo,
		Format:    LogFormatCustom,
		Timestamp: true,
		Colors:    true,
		MaxFiles:  10,
	}
}

// Logger wraps logrus with aflmon's file and format handling.
type Logger struct {
	config     *LoggerConfig
	logger     *logrus.Logger
	fileHandle *os.File
	startTime  time.Time
}

// NewLogger creates a configured logger instance.
func NewLogger(config *LoggerConfig) (*Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	l := &Logger{
		config:    config,
		logger:    logrus.New(),
		startTime: time.Now(),
	}
	if err := l.setup(); err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	return l, nil
}

// Logrus exposes the underlying logrus logger for packages that take one.
func (l *Logger) Logrus() *logrus.Logger {
	return l.logger
}

func (l *Logger) setup() error {
	level, err := logrus.ParseLevel(string(l.config.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.logger.SetLevel(level)

	switch l.config.Format {
	case LogFormatJSON:
		l.logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	case LogFormatText:
		l.logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   l.config.Timestamp,
			TimestampFormat: time.RFC3339,
			ForceColors:     l.config.Colors,
			DisableColors:   !l.config.Colors,
		})
	case LogFormatCustom:
		l.logger.SetFormatter(&CustomFormatter{
			Timestamp: l.config.Timestamp,
			Colors:    l.config.Colors,
		})
	}

	l.logger.SetOutput(os.Stderr)
	if l.config.OutputDir != "" {
		if err := l.setupFileOutput(); err != nil {
			return err
		}
		if err := l.cleanup(); err != nil {
			l.logger.WithError(err).Warn("Log retention cleanup failed")
		}
	}
	return nil
}

// setupFileOutput opens a timestamped log file and tees output to it.
func (l *Logger) setupFileOutput() error {
	if err := os.MkdirAll(l.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	name := filepath.Join(l.config.OutputDir, fmt.Sprintf("aflmon_%s.log", timestamp))

	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	l.fileHandle = file
	l.logger.SetOutput(io.MultiWriter(os.Stderr, file))

	l.logger.WithFields(logrus.Fields{
		"start_time": l.startTime.Format(time.RFC3339),
		"log_file":   name,
		"level":      l.config.Level,
	}).Debug("Logging initialized")
	return nil
}

// cleanup enforces MaxFiles retention on the log directory, oldest first.
func (l *Logger) cleanup() error {
	files, err := filepath.Glob(filepath.Join(l.config.OutputDir, "aflmon_*.log"))
	if err != nil {
		return err
	}
	if len(files) <= l.config.MaxFiles {
		return nil
	}

	sort.Slice(files, func(i, j int) bool {
		statI, _ := os.Stat(files[i])
		statJ, _ := os.Stat(files[j])
		if statI == nil || statJ == nil {
			return files[i] < files[j]
		}
		return statI.ModTime().Before(statJ.ModTime())
	})

	for _, f := range files[:len(files)-l.config.MaxFiles] {
		os.Remove(f)
	}
	return nil
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l.fileHandle == nil {
		return nil
	}
	err := l.fileHandle.Close()
	l.fileHandle = nil
	return err
}

// Debug logs a debug message with optional structured fields.
func (l *Logger) Debug(msg string, fields logrus.Fields) { l.logger.WithFields(fields).Debug(msg) }

// Info logs an info message with optional structured fields.
func (l *Logger) Info(msg string, fields logrus.Fields) { l.logger.WithFields(fields).Info(msg) }

// Warn logs a warning with optional structured fields.
func (l *Logger) Warn(msg string, fields logrus.Fields) { l.logger.WithFields(fields).Warn(msg) }

// Error logs an error with optional structured fields.
func (l *Logger) Error(msg string, fields logrus.Fields) { l.logger.WithFields(fields).Error(msg) }
