/*
File: types.go
Description: Core data model for AFL campaign monitoring. Defines the per-instance
statistics parsed from fuzzer_stats files, the process status enum filled in by
the process checker, and the campaign-wide summary aggregated across instances.
*/

package stats

import "time"

// FuzzerStatus represents the liveness of a fuzzer instance.
type FuzzerStatus string

const (
	StatusAlive    FuzzerStatus = "alive"
	StatusDead     FuzzerStatus = "dead"
	StatusStarting FuzzerStatus = "starting"
	StatusUnknown  FuzzerStatus = "unknown"
)

// FuzzerStats holds the contents of a single instance's fuzzer_stats file plus
// the runtime fields filled in by the process checker. Field names follow the
// AFL++ stats keys they are parsed from.
type FuzzerStats struct {
	Name    string `json:"name"`     // Instance directory name
	Banner  string `json:"banner"`   // afl_banner value
	Version string `json:"version"`  // afl_version value
	PID     int    `json:"pid"`      // fuzzer_pid
	Command string `json:"command"`  // command_line value

	StartTime  int64 `json:"start_time"`  // Unix timestamp the instance started
	LastUpdate int64 `json:"last_update"` // Unix timestamp of the last stats write
	RunTime    int64 `json:"run_time"`    // Seconds the instance has been running

	CyclesDone    int64 `json:"cycles_done"`     // Queue cycles completed
	CyclesWoFinds int64 `json:"cycles_wo_finds"` // Cycles without new finds

	ExecsDone      int64   `json:"execs_done"`        // Total executions
	ExecsPerSec    float64 `json:"execs_per_sec"`     // Overall execution speed
	ExecsPerSecCur float64 `json:"execs_ps_last_min"` // Speed over the last minute

	CorpusCount   int64 `json:"corpus_count"`   // Test cases in the corpus
	CorpusFavored int64 `json:"corpus_favored"` // Favored test cases
	CorpusFound   int64 `json:"corpus_found"`   // Test cases found by this instance
	MaxDepth      int64 `json:"max_depth"`      // Deepest mutation chain
	PendingTotal  int64 `json:"pending_total"`  // Inputs not fuzzed yet
	PendingFavs   int64 `json:"pending_favs"`   // Favored inputs not fuzzed yet

	BitmapCoverage float64 `json:"bitmap_cvg"`  // Edge coverage percentage
	EdgesFound     int64   `json:"edges_found"` // Edges discovered
	TotalEdges     int64   `json:"total_edges"` // Edges in the target map
	Stability      float64 `json:"stability"`   // Corpus stability percentage

	SavedCrashes int64 `json:"saved_crashes"` // Unique crashes saved
	SavedHangs   int64 `json:"saved_hangs"`   // Unique hangs saved
	LastFind     int64 `json:"last_find"`     // Unix timestamp of last new path
	LastCrash    int64 `json:"last_crash"`    // Unix timestamp of last crash
	LastHang     int64 `json:"last_hang"`     // Unix timestamp of last hang

	ExecTimeout   int64 `json:"exec_timeout"`    // Per-exec timeout in ms
	TotalTimeouts int64 `json:"total_tmout"`     // Executions that timed out
	SlowestExecMS int64 `json:"slowest_exec_ms"` // Slowest observed execution
	PeakRSSMB     int64 `json:"peak_rss_mb"`     // Peak resident set size

	// Filled in by the process checker, not parsed from the stats file.
	Status      FuzzerStatus `json:"status"`
	CPUUsage    float64      `json:"cpu_usage"`    // Percent; -1 when inaccessible
	MemoryUsage float64      `json:"memory_usage"` // Percent; -1 when inaccessible
}

// IsAlive reports whether the instance's process was found running.
func (s *FuzzerStats) IsAlive() bool {
	return s.Status == StatusAlive
}

// CampaignSummary aggregates statistics across every instance of a campaign.
type CampaignSummary struct {
	Timestamp int64 `json:"timestamp"` // When this summary was produced

	TotalFuzzers    int `json:"total_fuzzers"`
	AliveFuzzers    int `json:"alive_fuzzers"`
	DeadFuzzers     int `json:"dead_fuzzers"`
	StartingFuzzers int `json:"starting_fuzzers"`

	TotalExecs      int64   `json:"total_execs"`
	TotalSpeed      float64 `json:"total_speed"`       // Sum of per-instance speed
	CurrentAvgSpeed float64 `json:"current_avg_speed"` // Sum of last-minute speeds
	AvgSpeedPerCore float64 `json:"avg_speed_per_core"`

	TotalCorpus      int64 `json:"total_corpus"`
	TotalPending     int64 `json:"total_pending"`
	TotalPendingFavs int64 `json:"total_pending_favs"`

	MaxCoverage  float64 `json:"max_coverage"`
	AvgStability float64 `json:"avg_stability"`
	MinStability float64 `json:"min_stability"`
	MaxStability float64 `json:"max_stability"`

	TotalCrashes int64 `json:"total_crashes"`
	TotalHangs   int64 `json:"total_hangs"`
	NewCrashes   int64 `json:"new_crashes"` // Delta against the previous run
	NewHangs     int64 `json:"new_hangs"`   // Delta against the previous run

	TotalRuntime  int64 `json:"total_runtime"`
	LastFindTime  int64 `json:"last_find_time"`
	LastCrashTime int64 `json:"last_crash_time"`
	LastHangTime  int64 `json:"last_hang_time"`

	MaxCycle      int64   `json:"max_cycle"`
	AvgCycle      float64 `json:"avg_cycle"`
	CyclesWoFinds string  `json:"cycles_wo_finds"` // Per-instance values joined with "/"

	TotalEdgesFound int64 `json:"total_edges_found"`
	MaxTotalEdges   int64 `json:"max_total_edges"`

	TotalCPUUsage    float64 `json:"total_cpu_usage"`
	TotalMemoryUsage float64 `json:"total_memory_usage"`
}

// NewCampaignSummary returns an empty summary stamped with the current time.
func NewCampaignSummary() *CampaignSummary {
	return &CampaignSummary{Timestamp: time.Now().Unix()}
}

// PlotPoint is one sample from an instance's plot_data history file.
type PlotPoint struct {
	RelativeTime int64   `json:"relative_time"` // Seconds since campaign start
	CyclesDone   int64   `json:"cycles_done"`
	CorpusCount  int64   `json:"corpus_count"`
	PendingTotal int64   `json:"pending_total"`
	SavedCrashes int64   `json:"saved_crashes"`
	SavedHangs   int64   `json:"saved_hangs"`
	ExecsPerSec  float64 `json:"execs_per_sec"`
	TotalExecs   int64   `json:"total_execs"`
	EdgesFound   int64   `json:"edges_found"`
}
