/*
File: monitor.go
Description: Core campaign monitoring. Discovers fuzzer instances under a sync
directory, parses each one's stats in a bounded worker pool, fills in process
status, and aggregates a campaign-wide summary with deltas against the
previous run.
*/

package monitor

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aflmon/aflmon/pkg/process"
	"github.com/aflmon/aflmon/pkg/stats"
)

// Version is reported in JSON metadata and the CLI --version output.
const Version = "2.0.0"

// maxCollectWorkers bounds the parallel stats collection pool.
const maxCollectWorkers = 10

// maxPlotPoints bounds the plot history returned for charting.
const maxPlotPoints = 1000

// Config controls a Monitor.
type Config struct {
	FindingsDir string // AFL sync directory containing instance subdirectories
	ShowDead    bool   // Include instances whose process is gone
	StateFile   string // Path for cross-invocation state; empty disables deltas
}

// Snapshot is one complete observation of a campaign.
type Snapshot struct {
	Timestamp int64                  `json:"timestamp"`
	Fuzzers   []*stats.FuzzerStats   `json:"fuzzers"`
	Summary   *stats.CampaignSummary `json:"summary"`
	System    *process.SystemInfo    `json:"system"`
}

// Monitor collects and aggregates campaign statistics.
type Monitor struct {
	config   Config
	log      *logrus.Logger
	previous *stats.CampaignSummary
}

// New creates a Monitor for one findings directory.
func New(config Config, log *logrus.Logger) *Monitor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Monitor{config: config, log: log}
}

// Collect gathers stats from every instance and produces a snapshot. Instances
// that fail to parse are logged and skipped; an empty campaign yields an empty
// summary, not an error.
func (m *Monitor) Collect(ctx context.Context) (*Snapshot, error) {
	dirs, err := stats.DiscoverFuzzers(m.config.FindingsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to discover fuzzers: %w", err)
	}
	if len(dirs) == 0 {
		m.log.WithField("dir", m.config.FindingsDir).Warn("No fuzzers found")
		return &Snapshot{
			Timestamp: time.Now().Unix(),
			Summary:   stats.NewCampaignSummary(),
			System:    process.GetSystemInfo(),
		}, nil
	}

	collected := m.collectAll(ctx, dirs)

	var kept []*stats.FuzzerStats
	for _, s := range collected {
		if s.IsAlive() || s.Status == stats.StatusStarting || m.config.ShowDead {
			kept = append(kept, s)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Name < kept[j].Name })

	summary := m.summarize(kept)
	return &Snapshot{
		Timestamp: summary.Timestamp,
		Fuzzers:   kept,
		Summary:   summary,
		System:    process.GetSystemInfo(),
	}, nil
}

// collectAll parses instance directories with a bounded worker pool.
func (m *Monitor) collectAll(ctx context.Context, dirs []string) []*stats.FuzzerStats {
	workers := len(dirs)
	if workers > maxCollectWorkers {
		workers = maxCollectWorkers
	}

	jobs := make(chan string)
	results := make(chan *stats.FuzzerStats, len(dirs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for dir := range jobs {
				if s := m.collectOne(dir); s != nil {
					results <- s
				}
			}
		}()
	}

	for _, dir := range dirs {
		select {
		case jobs <- dir:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			close(results)
			return drain(results)
		}
	}
	close(jobs)
	wg.Wait()
	close(results)
	return drain(results)
}

func drain(results chan *stats.FuzzerStats) []*stats.FuzzerStats {
	var all []*stats.FuzzerStats
	for s := range results {
		all = append(all, s)
	}
	return all
}

// collectOne parses a single instance and fills in its process status.
func (m *Monitor) collectOne(dir string) *stats.FuzzerStats {
	name := filepath.Base(dir)
	s, err := stats.ParseStatsFile(filepath.Join(dir, stats.StatsFileName), name)
	if err != nil {
		m.log.WithError(err).WithField("fuzzer", name).Error("Failed to parse stats")
		return nil
	}

	status, cpuPct, memPct := process.CheckStatus(s.PID, dir)
	s.Status = status
	s.CPUUsage = cpuPct
	s.MemoryUsage = memPct
	return s
}

// PlotData returns an instance's plot_data history, downsampled to a bounded
// point count. name must be a bare instance directory name; anything that
// resolves outside the findings directory is rejected.
func (m *Monitor) PlotData(name string) ([]stats.PlotPoint, error) {
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid fuzzer name: %q", name)
	}
	return stats.ParsePlotFile(filepath.Join(m.config.FindingsDir, name, "plot_data"), maxPlotPoints)
}

// summarize aggregates per-instance stats into a campaign summary, computing
// new-crash and new-hang deltas against the previously persisted summary.
func (m *Monitor) summarize(all []*stats.FuzzerStats) *stats.CampaignSummary {
	summary := stats.NewCampaignSummary()
	if len(all) == 0 {
		return summary
	}

	summary.TotalFuzzers = len(all)

	var stabilities []float64
	var cycles []int64
	var cwof []string

	for _, s := range all {
		switch s.Status {
		case stats.StatusAlive:
			summary.AliveFuzzers++
			summary.TotalSpeed += s.ExecsPerSec
			summary.CurrentAvgSpeed += s.ExecsPerSecCur
		case stats.StatusDead:
			summary.DeadFuzzers++
		case stats.StatusStarting:
			summary.StartingFuzzers++
		}

		summary.TotalExecs += s.ExecsDone
		summary.TotalCorpus += s.CorpusCount
		summary.TotalPending += s.PendingTotal
		summary.TotalPendingFavs += s.PendingFavs
		summary.TotalCrashes += s.SavedCrashes
		summary.TotalHangs += s.SavedHangs
		summary.TotalRuntime += s.RunTime
		summary.TotalEdgesFound += s.EdgesFound

		if s.BitmapCoverage > summary.MaxCoverage {
			summary.MaxCoverage = s.BitmapCoverage
		}
		if s.TotalEdges > summary.MaxTotalEdges {
			summary.MaxTotalEdges = s.TotalEdges
		}
		if s.LastFind > summary.LastFindTime {
			summary.LastFindTime = s.LastFind
		}
		if s.LastCrash > summary.LastCrashTime {
			summary.LastCrashTime = s.LastCrash
		}
		if s.LastHang > summary.LastHangTime {
			summary.LastHangTime = s.LastHang
		}

		if s.Stability > 0 {
			stabilities = append(stabilities, s.Stability)
		}
		if s.CyclesDone > 0 {
			cycles = append(cycles, s.CyclesDone)
		}
		if s.CyclesWoFinds >= 0 {
			cwof = append(cwof, fmt.Sprintf("%d", s.CyclesWoFinds))
		}
		if s.CPUUsage >= 0 {
			summary.TotalCPUUsage += s.CPUUsage
		}
		if s.MemoryUsage >= 0 {
			summary.TotalMemoryUsage += s.MemoryUsage
		}
	}

	if summary.AliveFuzzers > 0 {
		summary.AvgSpeedPerCore = summary.TotalSpeed / float64(summary.AliveFuzzers)
	}

	if len(stabilities) > 0 {
		min, max, sum := stabilities[0], stabilities[0], 0.0
		for _, v := range stabilities {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
			sum += v
		}
		summary.MinStability = min
		summary.MaxStability = max
		summary.AvgStability = sum / float64(len(stabilities))
	}

	if len(cycles) > 0 {
		var max, sum int64
		for _, c := range cycles {
			if c > max {
				max = c
			}
			sum += c
		}
		summary.MaxCycle = max
		summary.AvgCycle = float64(sum) / float64(len(cycles))
	}

	if len(cwof) > 0 {
		summary.CyclesWoFinds = strings.Join(cwof, "/")
	} else {
		summary.CyclesWoFinds = "N/A"
	}

	if m.previous != nil {
		summary.NewCrashes = summary.TotalCrashes - m.previous.TotalCrashes
		summary.NewHangs = summary.TotalHangs - m.previous.TotalHangs
	}

	return summary
}
