/*
File: serve.go
Description: Serve command implementation. Hosts the live web dashboard over
the campaign directory until interrupted.
*/

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aflmon/aflmon/pkg/monitor"
	"github.com/aflmon/aflmon/pkg/server"
)

// RunServe executes the serve command
func RunServe(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := SetupLogging()
	if err != nil {
		return err
	}

	findingsDir := ResolveDir(args, viper.GetString("serve_dir"))
	if findingsDir == "" {
		return fmt.Errorf("findings directory required: pass it as an argument or with --dir")
	}
	if info, err := os.Stat(findingsDir); err != nil || !info.IsDir() {
		return fmt.Errorf("findings directory not accessible: %s", findingsDir)
	}

	m := monitor.New(monitor.Config{FindingsDir: findingsDir}, log)

	srv := server.New(server.Config{
		Addr:            viper.GetString("serve_addr"),
		FindingsDir:     findingsDir,
		RefreshInterval: viper.GetDuration("serve_interval"),
	}, m, log)

	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("Dashboard running on %s (Ctrl-C to stop)\n", viper.GetString("serve_addr"))
	return srv.Run(ctx)
}
