/*
File: terminal.go
Description: Terminal renderer for campaign snapshots. Prints a summary block
and a per-instance table, colorized by status. Color auto-disables when the
writer is not a terminal. Verbose mode appends per-instance health warnings;
minimal mode collapses everything to one line.
*/

package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"

	"github.com/aflmon/aflmon/pkg/monitor"
	"github.com/aflmon/aflmon/pkg/process"
	"github.com/aflmon/aflmon/pkg/stats"
	"github.com/aflmon/aflmon/pkg/utils"
)

// TerminalConfig controls the terminal renderer.
type TerminalConfig struct {
	NoColor bool // Force-disable color even on a TTY
	Verbose bool // Append per-instance warnings
	Minimal bool // One summary line only
}

// Terminal renders snapshots as text.
type Terminal struct {
	w      io.Writer
	config TerminalConfig
	colors bool

	green  *color.Color
	yellow *color.Color
	red    *color.Color
	cyan   *color.Color
	bold   *color.Color
}

// NewTerminal creates a renderer writing to w. Color is enabled only when w is
// a terminal and NoColor is unset.
func NewTerminal(w io.Writer, config TerminalConfig) *Terminal {
	colors := !config.NoColor
	if f, ok := w.(*os.File); ok {
		if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
			colors = false
		}
	} else {
		colors = false
	}

	t := &Terminal{
		w:      w,
		config: config,
		colors: colors,
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
		cyan:   color.New(color.FgCyan),
		bold:   color.New(color.Bold),
	}
	if !colors {
		for _, c := range []*color.Color{t.green, t.yellow, t.red, t.cyan, t.bold} {
			c.DisableColor()
		}
	}
	return t
}

// PrintBanner prints the one-shot report header.
func (t *Terminal) PrintBanner() {
	fmt.Fprintln(t.w, t.bold.Sprint("aflmon - AFL campaign monitor"))
	fmt.Fprintln(t.w, "=============================")
	fmt.Fprintln(t.w)
}

// PrintWatchHeader clears the screen and prints the refresh stamp for watch
// mode.
func (t *Terminal) PrintWatchHeader(timestamp string) {
	if t.colors {
		fmt.Fprint(t.w, "\033[2J\033[H")
	}
	fmt.Fprintf(t.w, "%s  %s\n\n", t.bold.Sprint("aflmon"), t.cyan.Sprint(timestamp))
}

// PrintSummary prints the campaign-wide aggregate block, or a single line in
// minimal mode.
func (t *Terminal) PrintSummary(snap *monitor.Snapshot) {
	s := snap.Summary

	if t.config.Minimal {
		fmt.Fprintf(t.w, "fuzzers %d/%d alive, %s execs, %s, %d crashes (%+d), coverage %s\n",
			s.AliveFuzzers, s.TotalFuzzers,
			utils.FormatExecs(s.TotalExecs),
			utils.FormatSpeed(s.TotalSpeed),
			s.TotalCrashes, s.NewCrashes,
			utils.FormatPercent(s.MaxCoverage, 2))
		return
	}

	fmt.Fprintf(t.w, "Fuzzers      : %s alive, %s dead, %d starting (of %d)\n",
		t.green.Sprintf("%d", s.AliveFuzzers),
		t.statusCount(s.DeadFuzzers),
		s.StartingFuzzers, s.TotalFuzzers)
	fmt.Fprintf(t.w, "Total execs  : %s (%s)\n",
		utils.FormatExecs(s.TotalExecs), utils.FormatSpeed(s.TotalSpeed))
	fmt.Fprintf(t.w, "Corpus       : %s test cases, %s pending (%s favored)\n",
		utils.FormatNumber(s.TotalCorpus),
		utils.FormatNumber(s.TotalPending),
		utils.FormatNumber(s.TotalPendingFavs))
	fmt.Fprintf(t.w, "Coverage     : %s max, stability %s avg (min %s)\n",
		utils.FormatPercent(s.MaxCoverage, 2),
		utils.FormatPercent(s.AvgStability, 2),
		utils.FormatPercent(s.MinStability, 2))

	crashes := fmt.Sprintf("Crashes      : %s", utils.FormatNumber(s.TotalCrashes))
	if s.NewCrashes > 0 {
		crashes += t.red.Sprintf(" (+%d new)", s.NewCrashes)
	}
	fmt.Fprintln(t.w, crashes)
	fmt.Fprintf(t.w, "Hangs        : %s\n", utils.FormatNumber(s.TotalHangs))
	fmt.Fprintf(t.w, "Last find    : %s\n", utils.FormatTimeAgo(s.LastFindTime))
	fmt.Fprintf(t.w, "Last crash   : %s\n", utils.FormatTimeAgo(s.LastCrashTime))
	fmt.Fprintf(t.w, "Cycles       : max %d, without finds %s\n", s.MaxCycle, s.CyclesWoFinds)

	if snap.System != nil && snap.System.CPUCount > 0 {
		fmt.Fprintf(t.w, "Host         : %d cores at %s, memory %s\n",
			snap.System.CPUCount,
			utils.FormatPercent(snap.System.CPUPercent, 1),
			utils.FormatPercent(snap.System.MemoryPercent, 1))
	}
	fmt.Fprintln(t.w)
}

// statusCount renders a dead-fuzzer count, red when nonzero.
func (t *Terminal) statusCount(dead int) string {
	if dead > 0 {
		return t.red.Sprintf("%d", dead)
	}
	return fmt.Sprintf("%d", dead)
}

// PrintFuzzers prints the per-instance table. In verbose mode each unhealthy
// instance's warnings follow the table.
func (t *Terminal) PrintFuzzers(fuzzers []*stats.FuzzerStats) {
	if t.config.Minimal || len(fuzzers) == 0 {
		return
	}

	table := tablewriter.NewWriter(t.w)
	table.SetHeader([]string{"Fuzzer", "Status", "Execs", "Speed", "Corpus", "Pending", "Coverage", "Crashes", "Hangs", "Last Find"})
	table.SetBorder(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	for _, f := range fuzzers {
		table.Append([]string{
			f.Name,
			t.statusLabel(f.Status),
			utils.FormatNumber(f.ExecsDone),
			fmt.Sprintf("%.1f/s", f.ExecsPerSec),
			utils.FormatNumber(f.CorpusCount),
			utils.FormatNumber(f.PendingTotal),
			utils.FormatPercent(f.BitmapCoverage, 2),
			utils.FormatNumber(f.SavedCrashes),
			utils.FormatNumber(f.SavedHangs),
			utils.FormatTimeAgo(f.LastFind),
		})
	}
	table.Render()

	if t.config.Verbose {
		for _, f := range fuzzers {
			warnings := process.Warnings(f)
			if len(warnings) == 0 {
				continue
			}
			fmt.Fprintf(t.w, "\n%s:\n", t.bold.Sprint(f.Name))
			for _, w := range warnings {
				fmt.Fprintf(t.w, "  %s %s\n", t.yellow.Sprint("!"), w)
			}
		}
	}
	fmt.Fprintln(t.w)
}

// statusLabel colorizes an instance status.
func (t *Terminal) statusLabel(status stats.FuzzerStatus) string {
	switch status {
	case stats.StatusAlive:
		return t.green.Sprint(string(status))
	case stats.StatusDead:
		return t.red.Sprint(string(status))
	case stats.StatusStarting:
		return t.yellow.Sprint(string(status))
	default:
		return string(status)
	}
}

// Render prints a full snapshot: banner or watch header, summary, table.
func (t *Terminal) Render(snap *monitor.Snapshot, watchStamp string) {
	if watchStamp != "" {
		t.PrintWatchHeader(watchStamp)
	} else if !t.config.Minimal {
		t.PrintBanner()
	}
	t.PrintSummary(snap)
	t.PrintFuzzers(snap.Fuzzers)
}
