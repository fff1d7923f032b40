/*
File: parser.go
Description: Parser for AFL/AFL++ fuzzer_stats files and campaign directory
discovery. The stats format is "key : value" with one pair per line; the parser
tolerates unknown keys, percent suffixes, and malformed lines so that it keeps
working across AFL versions.
*/

package stats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// StatsFileName is the per-instance statistics file AFL maintains.
const StatsFileName = "fuzzer_stats"

// ParseStatsFile reads and parses an instance's fuzzer_stats file.
func ParseStatsFile(path string, name string) (*FuzzerStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stats file: %w", err)
	}
	defer f.Close()
	return ParseStats(f, name)
}

// ParseStats parses the fuzzer_stats format from r. Unknown keys are ignored;
// lines without a separator are skipped. Status starts as unknown until the
// process checker fills it in.
func ParseStats(r io.Reader, name string) (*FuzzerStats, error) {
	s := &FuzzerStats{
		Name:   name,
		Status: StatusUnknown,
	}

	scanner := bufio.NewScanner(r)
	parsed := 0
	for scanner.Scan() {
		line := scanner.Text()
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}
		if applyField(s, key, value) {
			parsed++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}
	if parsed == 0 {
		return nil, fmt.Errorf("no recognizable stats fields in %s", name)
	}
	return s, nil
}

// applyField assigns one key/value pair to its struct field. Returns false for
// keys this monitor does not track.
func applyField(s *FuzzerStats, key, value string) bool {
	switch key {
	case "start_time":
		s.StartTime = parseInt(value)
	case "last_update":
		s.LastUpdate = parseInt(value)
	case "run_time":
		s.RunTime = parseInt(value)
	case "fuzzer_pid":
		s.PID = int(parseInt(value))
	case "cycles_done":
		s.CyclesDone = parseInt(value)
	case "cycles_wo_finds":
		s.CyclesWoFinds = parseInt(value)
	case "execs_done":
		s.ExecsDone = parseInt(value)
	case "execs_per_sec":
		s.ExecsPerSec = parseFloat(value)
	case "execs_ps_last_min":
		s.ExecsPerSecCur = parseFloat(value)
	case "corpus_count", "paths_total": // paths_total is the pre-4.x key
		s.CorpusCount = parseInt(value)
	case "corpus_favored", "paths_favored":
		s.CorpusFavored = parseInt(value)
	case "corpus_found", "paths_found":
		s.CorpusFound = parseInt(value)
	case "max_depth":
		s.MaxDepth = parseInt(value)
	case "pending_total":
		s.PendingTotal = parseInt(value)
	case "pending_favs":
		s.PendingFavs = parseInt(value)
	case "bitmap_cvg":
		s.BitmapCoverage = parseFloat(value)
	case "edges_found":
		s.EdgesFound = parseInt(value)
	case "total_edges":
		s.TotalEdges = parseInt(value)
	case "stability":
		s.Stability = parseFloat(value)
	case "saved_crashes", "unique_crashes":
		s.SavedCrashes = parseInt(value)
	case "saved_hangs", "unique_hangs":
		s.SavedHangs = parseInt(value)
	case "last_find", "last_path":
		s.LastFind = parseInt(value)
	case "last_crash":
		s.LastCrash = parseInt(value)
	case "last_hang":
		s.LastHang = parseInt(value)
	case "exec_timeout":
		s.ExecTimeout = parseInt(value)
	case "total_tmout":
		s.TotalTimeouts = parseInt(value)
	case "slowest_exec_ms":
		s.SlowestExecMS = parseInt(value)
	case "peak_rss_mb":
		s.PeakRSSMB = parseInt(value)
	case "afl_banner":
		s.Banner = value
	case "afl_version":
		s.Version = value
	case "command_line":
		s.Command = value
	default:
		return false
	}
	return true
}

// parseInt parses an integer stat value, tolerating percent suffixes and
// fractional notation. Malformed values become 0.
func parseInt(value string) int64 {
	value = strings.TrimSuffix(value, "%")
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return int64(f)
	}
	return 0
}

// parseFloat parses a float stat value, tolerating percent suffixes.
// Malformed values become 0.
func parseFloat(value string) float64 {
	value = strings.TrimSuffix(value, "%")
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}

// DiscoverFuzzers returns the instance directories under an AFL sync
// directory, identified by the presence of a fuzzer_stats file. Results are
// sorted by name for stable output.
func DiscoverFuzzers(findingsDir string) ([]string, error) {
	entries, err := os.ReadDir(findingsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read findings directory: %w", err)
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(findingsDir, entry.Name())
		if _, err := os.Stat(filepath.Join(candidate, StatsFileName)); err == nil {
			dirs = append(dirs, candidate)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}
