/*
File: main.go
Description: Command-line interface for aflmon. Wires up the monitor, serve,
and mock commands with configuration management via viper and persistent
logging flags shared by every command.
*/

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aflmon/aflmon/cmd/aflmon/commands"
	"github.com/aflmon/aflmon/pkg/monitor"
)

var (
	// Configuration
	configFile string
	logLevel   string

	// Campaign location
	findingsDir string
	serveDir    string

	// Monitor output
	jsonFile  string
	htmlDir   string
	htmlTitle string
	minimal   bool
	verbose   bool
	noColor   bool
	showDead  bool

	// Watch mode
	watch    bool
	interval time.Duration

	// State and notification
	stateFile string
	execute   string

	// Dashboard server
	serveAddr     string
	serveInterval time.Duration

	// Mock campaign generation
	mockOutput  string
	mockFuzzers int
	mockCrashes int
	mockDead    float64
	mockSeed    int64

	// Logging configuration
	logDir      string
	logFormat   string
	logMaxFiles int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "aflmon",
		Short: "aflmon - AFL/AFL++ campaign monitor",
		Long: `aflmon watches AFL and AFL++ fuzzing campaigns. It parses each instance's
fuzzer_stats file, checks whether the fuzzer processes are still running,
aggregates campaign-wide totals, and renders the result to the terminal, to
JSON, to an HTML report, or to a live web dashboard.`,
		Version: monitor.Version,
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Log output directory (empty = stderr only)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "custom", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().IntVar(&logMaxFiles, "log-max-files", 10, "Maximum number of log files to keep")

	// Bind flags to viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log_max_files", rootCmd.PersistentFlags().Lookup("log-max-files"))

	// Add monitor command
	monitorCmd := &cobra.Command{
		Use:   "monitor [findings_dir]",
		Args:  cobra.MaximumNArgs(1),
		Short: "Show campaign status once or continuously",
		Long: `Collect statistics from every fuzzer instance under the findings directory
and print a campaign summary. With --watch the display refreshes on an
interval and whenever a fuzzer_stats file changes.`,
		RunE: commands.RunMonitor,
	}

	monitorCmd.Flags().StringVarP(&findingsDir, "dir", "d", "", "AFL findings/sync directory (or pass it as the argument)")
	monitorCmd.Flags().StringVar(&jsonFile, "json", "", "Write a JSON report to this file")
	monitorCmd.Flags().StringVar(&htmlDir, "html", "", "Write an HTML report into this directory")
	monitorCmd.Flags().StringVar(&htmlTitle, "title", "AFL Campaign Report", "HTML report title")
	monitorCmd.Flags().BoolVar(&minimal, "minimal", false, "One-line summary output")
	monitorCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show per-instance health warnings")
	monitorCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	monitorCmd.Flags().BoolVar(&showDead, "show-dead", false, "Include dead instances in the table")
	monitorCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Refresh continuously")
	monitorCmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "Refresh interval in watch mode")
	monitorCmd.Flags().StringVar(&stateFile, "state-file", "", "State file for crash deltas (default ~/"+monitor.DefaultStateFileName+")")
	monitorCmd.Flags().StringVar(&execute, "execute", "", "Shell command to run when new crashes appear; summary on stdin")

	viper.BindPFlag("findings_dir", monitorCmd.Flags().Lookup("dir"))
	viper.BindPFlag("json_file", monitorCmd.Flags().Lookup("json"))
	viper.BindPFlag("html_dir", monitorCmd.Flags().Lookup("html"))
	viper.BindPFlag("html_title", monitorCmd.Flags().Lookup("title"))
	viper.BindPFlag("minimal", monitorCmd.Flags().Lookup("minimal"))
	viper.BindPFlag("verbose", monitorCmd.Flags().Lookup("verbose"))
	viper.BindPFlag("no_color", monitorCmd.Flags().Lookup("no-color"))
	viper.BindPFlag("show_dead", monitorCmd.Flags().Lookup("show-dead"))
	viper.BindPFlag("watch", monitorCmd.Flags().Lookup("watch"))
	viper.BindPFlag("interval", monitorCmd.Flags().Lookup("interval"))
	viper.BindPFlag("state_file", monitorCmd.Flags().Lookup("state-file"))
	viper.BindPFlag("execute", monitorCmd.Flags().Lookup("execute"))

	rootCmd.AddCommand(monitorCmd)

	// Add serve command
	serveCmd := &cobra.Command{
		Use:   "serve [findings_dir]",
		Args:  cobra.MaximumNArgs(1),
		Short: "Serve a live web dashboard",
		Long: `Serve an HTML dashboard with a JSON stats API and a websocket feed. The
campaign is re-collected on an interval and every refresh is pushed to
connected browsers.`,
		RunE: commands.RunServe,
	}

	serveCmd.Flags().StringVarP(&serveDir, "dir", "d", "", "AFL findings/sync directory (or pass it as the argument)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8090", "Listen address")
	serveCmd.Flags().DurationVar(&serveInterval, "interval", 5*time.Second, "Collection interval")

	viper.BindPFlag("serve_dir", serveCmd.Flags().Lookup("dir"))
	viper.BindPFlag("serve_addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("serve_interval", serveCmd.Flags().Lookup("interval"))

	rootCmd.AddCommand(serveCmd)

	// Add mock command
	mockCmd := &cobra.Command{
		Use:   "mock [output_dir]",
		Args:  cobra.MaximumNArgs(1),
		Short: "Generate a mock campaign for testing and demos",
		Long: `Generate a fake AFL sync directory with realistic fuzzer_stats, plot_data,
queue entries, and crash files. Useful for trying out the monitor and the
dashboard without a running campaign.`,
		RunE: commands.RunMock,
	}

	mockCmd.Flags().StringVarP(&mockOutput, "output", "o", "./mock_campaign", "Directory to generate into")
	mockCmd.Flags().IntVar(&mockFuzzers, "fuzzers", 4, "Number of instances to generate")
	mockCmd.Flags().IntVar(&mockCrashes, "crashes", 5, "Maximum crashes per instance")
	mockCmd.Flags().Float64Var(&mockDead, "dead-ratio", 0, "Fraction of instances generated dead")
	mockCmd.Flags().Int64Var(&mockSeed, "seed", 0, "Random seed (0 = from clock)")

	viper.BindPFlag("mock_output", mockCmd.Flags().Lookup("output"))
	viper.BindPFlag("mock_fuzzers", mockCmd.Flags().Lookup("fuzzers"))
	viper.BindPFlag("mock_crashes", mockCmd.Flags().Lookup("crashes"))
	viper.BindPFlag("mock_dead_ratio", mockCmd.Flags().Lookup("dead-ratio"))
	viper.BindPFlag("mock_seed", mockCmd.Flags().Lookup("seed"))

	rootCmd.AddCommand(mockCmd)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
