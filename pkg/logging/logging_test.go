/*
File: logging_test.go
Description: Tests for logger configuration validation, file output, retention
cleanup, and the custom formatter.
*/

package logging_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aflmon/aflmon/pkg/logging"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	valid := logging.DefaultConfig()
	assert.NoError(t, valid.Validate())

	badLevel := logging.DefaultConfig()
	badLevel.Level = "loud"
	assert.Error(t, badLevel.Validate())

	badFormat := logging.DefaultConfig()
	badFormat.Format = "xml"
	assert.Error(t, badFormat.Validate())

	badRetention := logging.DefaultConfig()
	badRetention.OutputDir = t.TempDir()
	badRetention.MaxFiles = 0
	assert.Error(t, badRetention.Validate())
}

func TestNewLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	cfg := logging.DefaultConfig()
	cfg.OutputDir = dir
	cfg.Colors = false

	logger, err := logging.NewLogger(cfg)
	require.NoError(t, err)
	defer logger.Close()

	logger.Info("campaign refresh", logrus.Fields{"fuzzers": 3})

	files, err := filepath.Glob(filepath.Join(dir, "aflmon_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "campaign refresh")
	assert.Contains(t, string(data), "fuzzers=3")
}

func TestNewLoggerConsoleOnly(t *testing.T) {
	logger, err := logging.NewLogger(nil)
	require.NoError(t, err)
	defer logger.Close()
	logger.Debug("not persisted", nil)
}

func TestCustomFormatter(t *testing.T) {
	f := &logging.CustomFormatter{Timestamp: true, Colors: false}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "slow instance",
		Data:    logrus.Fields{"name": "main01", "execs_per_sec": 12.5},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	line := string(out)
	assert.Contains(t, line, "2026-01-02 03:04:05.000")
	assert.Contains(t, line, "WARN")
	assert.Contains(t, line, "slow instance")
	// Fields render sorted by key.
	assert.Contains(t, line, "execs_per_sec=12.5 name=main01")
	assert.NotContains(t, line, "\033[")
}

func TestCustomFormatterColors(t *testing.T) {
	f := &logging.CustomFormatter{Colors: true}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Now(),
		Level:   logrus.ErrorLevel,
		Message: "boom",
	}
	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Contains(t, string(out), "\033[31m")
}
