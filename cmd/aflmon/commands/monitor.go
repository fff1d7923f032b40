/*
File: monitor.go
Description: Monitor command implementation. Collects campaign statistics once
or continuously in watch mode, renders them to the terminal, and optionally
emits JSON and HTML reports and fires the crash notification hook.
*/

package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aflmon/aflmon/pkg/monitor"
	"github.com/aflmon/aflmon/pkg/output"
	"github.com/aflmon/aflmon/pkg/utils"
)

// RunMonitor executes the monitor command
func RunMonitor(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := SetupLogging()
	if err != nil {
		return err
	}

	findingsDir := ResolveDir(args, viper.GetString("findings_dir"))
	if findingsDir == "" {
		return fmt.Errorf("findings directory required: pass it as an argument or with --dir")
	}
	if info, err := os.Stat(findingsDir); err != nil || !info.IsDir() {
		return fmt.Errorf("findings directory not accessible: %s", findingsDir)
	}

	stateFile := viper.GetString("state_file")
	if stateFile == "" {
		stateFile = monitor.DefaultStateFile()
	}

	m := monitor.New(monitor.Config{
		FindingsDir: findingsDir,
		ShowDead:    viper.GetBool("show_dead"),
		StateFile:   stateFile,
	}, log)
	m.LoadPreviousState()

	term := output.NewTerminal(os.Stdout, output.TerminalConfig{
		NoColor: viper.GetBool("no_color"),
		Verbose: viper.GetBool("verbose"),
		Minimal: viper.GetBool("minimal"),
	})

	var htmlGen *output.HTMLGenerator
	if htmlDir := viper.GetString("html_dir"); htmlDir != "" {
		htmlGen, err = output.NewHTMLGenerator(htmlDir, viper.GetString("html_title"), log)
		if err != nil {
			return fmt.Errorf("failed to prepare HTML output: %w", err)
		}
	}

	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if viper.GetBool("watch") {
		err := m.Watch(ctx, viper.GetDuration("interval"), func(snap *monitor.Snapshot) {
			term.Render(snap, utils.Timestamp())
			emitReports(log, htmlGen, snap, findingsDir)
			notifyNewCrashes(ctx, m, log, snap)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	snap, err := m.Collect(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect campaign statistics: %w", err)
	}

	term.Render(snap, "")
	emitReports(log, htmlGen, snap, findingsDir)
	notifyNewCrashes(ctx, m, log, snap)

	if err := m.SaveState(snap.Summary); err != nil {
		log.WithError(err).Warn("Failed to save state")
	}
	return nil
}

// emitReports writes the optional JSON and HTML outputs for one snapshot.
func emitReports(log *logrus.Logger, htmlGen *output.HTMLGenerator, snap *monitor.Snapshot, findingsDir string) {
	if jsonFile := viper.GetString("json_file"); jsonFile != "" {
		if err := output.WriteJSONFile(jsonFile, snap, findingsDir); err != nil {
			log.WithError(err).Error("Failed to write JSON report")
		}
	}
	if htmlGen != nil {
		if path, err := htmlGen.Write(snap, findingsDir); err != nil {
			log.WithError(err).Error("Failed to write HTML report")
		} else {
			log.WithField("path", path).Debug("Wrote HTML report")
		}
	}
}

// notifyNewCrashes runs the --execute hook when the snapshot shows crashes
// that were not present in the previous run.
func notifyNewCrashes(ctx context.Context, m *monitor.Monitor, log *logrus.Logger, snap *monitor.Snapshot) {
	command := viper.GetString("execute")
	if command == "" || snap.Summary.NewCrashes <= 0 {
		return
	}
	if err := m.Notify(ctx, command, snap.Summary); err != nil {
		log.WithError(err).Error("Crash notification command failed")
	} else {
		log.WithField("new_crashes", snap.Summary.NewCrashes).Info("Crash notification sent")
	}
}
