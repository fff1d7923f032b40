/*
File: mock.go
Description: Mock command implementation. Generates a fake campaign directory
for demos and for exercising the monitor without running afl-fuzz.
*/

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aflmon/aflmon/pkg/mock"
)

// RunMock executes the mock command
func RunMock(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := SetupLogging()
	if err != nil {
		return err
	}

	config := mock.Config{
		OutputDir: ResolveDir(args, viper.GetString("mock_output")),
		Fuzzers:   viper.GetInt("mock_fuzzers"),
		Crashes:   viper.GetInt("mock_crashes"),
		DeadRatio: viper.GetFloat64("mock_dead_ratio"),
		Seed:      viper.GetInt64("mock_seed"),
	}

	if err := mock.Generate(config, log); err != nil {
		return fmt.Errorf("failed to generate mock campaign: %w", err)
	}

	fmt.Printf("Mock campaign written to %s (%d fuzzers)\n", config.OutputDir, config.Fuzzers)
	fmt.Printf("Try: aflmon monitor -d %s\n", config.OutputDir)
	return nil
}
