/*
File: parser_test.go
Description: Tests for fuzzer_stats parsing, plot_data parsing, and campaign
directory discovery, including version-skew and malformed-input cases.
*/

package stats_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aflmon/aflmon/pkg/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStats = `start_time        : 1700000000
last_update       : 1700003600
run_time          : 3600
fuzzer_pid        : 12345
cycles_done       : 7
cycles_wo_finds   : 2
execs_done        : 1234567
execs_per_sec     : 842.33
execs_ps_last_min : 901.10
corpus_count      : 321
corpus_favored    : 88
corpus_found      : 310
max_depth         : 6
pending_favs      : 4
pending_total     : 19
bitmap_cvg        : 23.45%
saved_crashes     : 3
saved_hangs       : 1
last_find         : 1700003500
last_crash        : 1700002000
last_hang         : 0
exec_timeout      : 1000
afl_banner        : main01
afl_version       : 4.09c
command_line      : afl-fuzz -i input -o sync -M main01 -- ./target
slowest_exec_ms   : 120
peak_rss_mb       : 180
edges_found       : 2100
total_edges       : 8000
stability         : 97.80%
total_tmout       : 12
`

func TestParseStats(t *testing.T) {
	s, err := stats.ParseStats(strings.NewReader(sampleStats), "main01")
	require.NoError(t, err)

	assert.Equal(t, "main01", s.Name)
	assert.Equal(t, "main01", s.Banner)
	assert.Equal(t, "4.09c", s.Version)
	assert.Equal(t, 12345, s.PID)
	assert.Equal(t, int64(1234567), s.ExecsDone)
	assert.InDelta(t, 842.33, s.ExecsPerSec, 0.001)
	assert.InDelta(t, 901.10, s.ExecsPerSecCur, 0.001)
	assert.Equal(t, int64(321), s.CorpusCount)
	assert.InDelta(t, 23.45, s.BitmapCoverage, 0.001)
	assert.InDelta(t, 97.80, s.Stability, 0.001)
	assert.Equal(t, int64(3), s.SavedCrashes)
	assert.Equal(t, int64(1), s.SavedHangs)
	assert.Equal(t, int64(2100), s.EdgesFound)
	assert.Equal(t, stats.StatusUnknown, s.Status)
}

func TestParseStatsLegacyKeys(t *testing.T) {
	legacy := `fuzzer_pid     : 99
paths_total    : 150
paths_favored  : 40
unique_crashes : 5
unique_hangs   : 2
last_path      : 1700001234
`
	s, err := stats.ParseStats(strings.NewReader(legacy), "old")
	require.NoError(t, err)
	assert.Equal(t, int64(150), s.CorpusCount)
	assert.Equal(t, int64(40), s.CorpusFavored)
	assert.Equal(t, int64(5), s.SavedCrashes)
	assert.Equal(t, int64(2), s.SavedHangs)
	assert.Equal(t, int64(1700001234), s.LastFind)
}

func TestParseStatsTolerance(t *testing.T) {
	messy := `garbage line without separator
unknown_key       : 42
execs_done        : not-a-number
fuzzer_pid        : 77
command_line      : afl-fuzz -M a:b -- ./t
`
	s, err := stats.ParseStats(strings.NewReader(messy), "messy")
	require.NoError(t, err)
	assert.Equal(t, 77, s.PID)
	assert.Equal(t, int64(0), s.ExecsDone)
	// command_line values contain colons; only the first one splits.
	assert.Equal(t, "afl-fuzz -M a:b -- ./t", s.Command)
}

func TestParseStatsEmpty(t *testing.T) {
	_, err := stats.ParseStats(strings.NewReader("no fields here\n"), "empty")
	assert.Error(t, err)
}

func TestDiscoverFuzzers(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"main01", "slave02"} {
		sub := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(sub, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(sub, stats.StatsFileName), []byte(sampleStats), 0o644))
	}
	// Directory without a stats file must not be discovered.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "notafuzzer"), 0o755))
	// Stray file at the top level must not be discovered either.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("x"), 0o644))

	dirs, err := stats.DiscoverFuzzers(dir)
	require.NoError(t, err)
	require.Len(t, dirs, 2)
	assert.Equal(t, filepath.Join(dir, "main01"), dirs[0])
	assert.Equal(t, filepath.Join(dir, "slave02"), dirs[1])
}

func TestDiscoverFuzzersMissingDir(t *testing.T) {
	_, err := stats.DiscoverFuzzers(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestParsePlotFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plot_data")

	content := `# relative_time, cycles_done, cur_item, corpus_count, pending_total, pending_favs, total_edges, saved_crashes, saved_hangs, max_depth, execs_per_sec, total_execs, edges_found
0, 0, 0, 10, 10, 5, 8000, 0, 0, 1, 500.00, 1000, 100
60, 0, 4, 25, 18, 6, 8000, 1, 0, 2, 750.50, 46000, 480
120, 1, 9, 40, 12, 3, 8000, 2, 1, 3, 810.00, 95000, 900
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	points, err := stats.ParsePlotFile(path, 1000)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, int64(60), points[1].RelativeTime)
	assert.Equal(t, int64(25), points[1].CorpusCount)
	assert.Equal(t, int64(1), points[1].SavedCrashes)
	assert.InDelta(t, 750.50, points[1].ExecsPerSec, 0.001)
	assert.Equal(t, int64(95000), points[2].TotalExecs)
	assert.Equal(t, int64(900), points[2].EdgesFound)
}

func TestParsePlotFileDownsamples(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plot_data")

	var b strings.Builder
	for i := 0; i < 500; i++ {
		b.WriteString(strings.Repeat("1, ", 8))
		b.WriteString("1\n")
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	points, err := stats.ParsePlotFile(path, 100)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(points), 101)
	assert.GreaterOrEqual(t, len(points), 50)
}

func TestParsePlotFileMissing(t *testing.T) {
	points, err := stats.ParsePlotFile(filepath.Join(t.TempDir(), "plot_data"), 100)
	require.NoError(t, err)
	assert.Empty(t, points)
}
