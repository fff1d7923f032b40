/*
File: utils.go
Description: Shared utilities for the aflmon commands. Provides common
configuration loading and logging setup used across all command
implementations.
*/

package commands

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/aflmon/aflmon/pkg/logging"
)

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	// Set config file if specified
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("AFLMON")
	viper.AutomaticEnv()

	return nil
}

// ResolveDir picks the directory for a command: the positional argument when
// given, otherwise the bound flag value.
func ResolveDir(args []string, flagValue string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return flagValue
}

// SetupLogging configures the logging system and returns the shared logger
func SetupLogging() (*logrus.Logger, error) {
	config := logging.DefaultConfig()
	config.Level = logging.LogLevel(viper.GetString("log_level"))
	config.Format = logging.LogFormat(viper.GetString("log_format"))
	config.OutputDir = viper.GetString("log_dir")
	if maxFiles := viper.GetInt("log_max_files"); maxFiles > 0 {
		config.MaxFiles = maxFiles
	}

	logger, err := logging.NewLogger(config)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger.Logrus(), nil
}
