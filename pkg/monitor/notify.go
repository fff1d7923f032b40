/*
File: notify.go
Description: Crash notification hook. When a refresh reports new crashes, runs
a user-supplied shell command with a plaintext summary on stdin, bounded by a
timeout so a stuck notifier cannot stall the monitor.
*/

package monitor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/aflmon/aflmon/pkg/stats"
	"github.com/aflmon/aflmon/pkg/utils"
)

// notifyTimeout bounds one notification command run.
const notifyTimeout = 30 * time.Second

// NotifySummary renders the plaintext payload piped to the notification
// command.
func NotifySummary(summary *stats.CampaignSummary) string {
	var b strings.Builder
	b.WriteString("aflmon - New Crash Detected!\n\n")
	fmt.Fprintf(&b, "Timestamp: %s\n", utils.Timestamp())
	fmt.Fprintf(&b, "Total Crashes: %d\n", summary.TotalCrashes)
	fmt.Fprintf(&b, "New Crashes: %d\n", summary.NewCrashes)
	fmt.Fprintf(&b, "Active Fuzzers: %d/%d\n", summary.AliveFuzzers, summary.TotalFuzzers)
	fmt.Fprintf(&b, "Coverage: %s\n", utils.FormatPercent(summary.MaxCoverage, 2))
	return b.String()
}

// Notify runs command through the shell with the crash summary on stdin.
// Returns the command's combined output on failure for diagnostics.
func (m *Monitor) Notify(ctx context.Context, command string, summary *stats.CampaignSummary) error {
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdin = strings.NewReader(NotifySummary(summary))

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("notification command failed: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}
	m.log.WithField("command", command).Info("Notification command executed")
	return nil
}
