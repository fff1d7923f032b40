/*
File: monitor_test.go
Description: Tests for campaign collection, summary aggregation, dead-instance
filtering, state persistence and deltas, watch mode, and crash notification.
*/

package monitor_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aflmon/aflmon/pkg/monitor"
	"github.com/aflmon/aflmon/pkg/stats"
)

// writeInstance creates a fuzzer instance directory with a stats file. A live
// instance gets the test process's own PID so the process checker sees it as
// alive.
func writeInstance(t *testing.T, dir, name string, pid int, crashes int64) string {
	t.Helper()
	sub := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(sub, 0o755))

	content := fmt.Sprintf(`start_time        : 1700000000
last_update       : 1700003600
run_time          : 3600
fuzzer_pid        : %d
cycles_done       : 4
cycles_wo_finds   : 1
execs_done        : 100000
execs_per_sec     : 500.00
execs_ps_last_min : 480.00
corpus_count      : 50
pending_total     : 10
pending_favs      : 2
bitmap_cvg        : 12.50%%
saved_crashes     : %d
saved_hangs       : 0
last_find         : 1700003000
stability         : 95.00%%
edges_found       : 900
total_edges       : 8000
afl_banner        : %s
afl_version       : 4.09c
`, pid, crashes, name)
	require.NoError(t, os.WriteFile(filepath.Join(sub, stats.StatsFileName), []byte(content), 0o644))
	return sub
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestPlotData(t *testing.T) {
	dir := t.TempDir()
	sub := writeInstance(t, dir, "main01", os.Getpid(), 0)

	plot := `# relative_time, cycles_done, cur_item, corpus_count, pending_total, pending_favs, total_edges, saved_crashes, saved_hangs, max_depth, execs_per_sec, total_execs, edges_found
10, 0, 1, 5, 2, 1, 8000, 0, 0, 2, 450.00, 4500, 120
20, 0, 2, 9, 3, 1, 8000, 1, 0, 2, 480.00, 9600, 200
`
	require.NoError(t, os.WriteFile(filepath.Join(sub, "plot_data"), []byte(plot), 0o644))

	m := monitor.New(monitor.Config{FindingsDir: dir}, quietLogger())

	points, err := m.PlotData("main01")
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, int64(9600), points[1].TotalExecs)
	assert.Equal(t, int64(1), points[1].SavedCrashes)

	// Missing plot_data is not an error, just empty history.
	writeInstance(t, dir, "slave02", os.Getpid(), 0)
	points, err = m.PlotData("slave02")
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestPlotDataRejectsPathEscapes(t *testing.T) {
	m := monitor.New(monitor.Config{FindingsDir: t.TempDir()}, quietLogger())

	for _, name := range []string{"", ".", "..", "../other", "a/b"} {
		_, err := m.PlotData(name)
		assert.Error(t, err, "name %q must be rejected", name)
	}
}

func TestCollectAggregates(t *testing.T) {
	dir := t.TempDir()
	writeInstance(t, dir, "main01", os.Getpid(), 2)
	writeInstance(t, dir, "slave02", os.Getpid(), 3)

	m := monitor.New(monitor.Config{FindingsDir: dir}, quietLogger())
	snap, err := m.Collect(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Fuzzers, 2)
	assert.Equal(t, "main01", snap.Fuzzers[0].Name)
	assert.Equal(t, "slave02", snap.Fuzzers[1].Name)

	sum := snap.Summary
	assert.Equal(t, 2, sum.TotalFuzzers)
	assert.Equal(t, 2, sum.AliveFuzzers)
	assert.Equal(t, int64(200000), sum.TotalExecs)
	assert.InDelta(t, 1000.0, sum.TotalSpeed, 0.001)
	assert.InDelta(t, 500.0, sum.AvgSpeedPerCore, 0.001)
	assert.Equal(t, int64(5), sum.TotalCrashes)
	assert.Equal(t, int64(100), sum.TotalCorpus)
	assert.InDelta(t, 12.5, sum.MaxCoverage, 0.001)
	assert.InDelta(t, 95.0, sum.AvgStability, 0.001)
	assert.Equal(t, "1/1", sum.CyclesWoFinds)
	assert.NotNil(t, snap.System)
}

func TestCollectFiltersDead(t *testing.T) {
	dir := t.TempDir()
	writeInstance(t, dir, "alive01", os.Getpid(), 0)
	// An implausibly large PID that cannot exist.
	writeInstance(t, dir, "dead01", 1<<22-7, 0)

	m := monitor.New(monitor.Config{FindingsDir: dir}, quietLogger())
	snap, err := m.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Fuzzers, 1)
	assert.Equal(t, "alive01", snap.Fuzzers[0].Name)

	withDead := monitor.New(monitor.Config{FindingsDir: dir, ShowDead: true}, quietLogger())
	snap, err = withDead.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Fuzzers, 2)
	assert.Equal(t, 1, snap.Summary.DeadFuzzers)
}

func TestCollectEmptyCampaign(t *testing.T) {
	m := monitor.New(monitor.Config{FindingsDir: t.TempDir()}, quietLogger())
	snap, err := m.Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Fuzzers)
	assert.Equal(t, 0, snap.Summary.TotalFuzzers)
}

func TestCollectMissingDirectory(t *testing.T) {
	m := monitor.New(monitor.Config{FindingsDir: filepath.Join(t.TempDir(), "gone")}, quietLogger())
	_, err := m.Collect(context.Background())
	assert.Error(t, err)
}

func TestStateDeltas(t *testing.T) {
	dir := t.TempDir()
	stateFile := filepath.Join(t.TempDir(), "state.json")
	writeInstance(t, dir, "main01", os.Getpid(), 2)

	cfg := monitor.Config{FindingsDir: dir, StateFile: stateFile}

	// First run: no previous state, no deltas.
	m := monitor.New(cfg, quietLogger())
	m.LoadPreviousState()
	snap, err := m.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.Summary.NewCrashes)
	require.NoError(t, m.SaveState(snap.Summary))

	// Crashes go up, fresh monitor loads persisted state and reports delta.
	writeInstance(t, dir, "main01", os.Getpid(), 5)
	m2 := monitor.New(cfg, quietLogger())
	m2.LoadPreviousState()
	snap2, err := m2.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), snap2.Summary.NewCrashes)
}

func TestLoadPreviousStateCorrupt(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(stateFile, []byte("{not json"), 0o644))

	dir := t.TempDir()
	writeInstance(t, dir, "main01", os.Getpid(), 1)

	m := monitor.New(monitor.Config{FindingsDir: dir, StateFile: stateFile}, quietLogger())
	m.LoadPreviousState()
	snap, err := m.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.Summary.NewCrashes)
}

func TestDeltaTracker(t *testing.T) {
	d := monitor.NewDeltaTracker()
	assert.Equal(t, 0.0, d.Delta("execs", 100))
	assert.Equal(t, 50.0, d.Delta("execs", 150))
	assert.Equal(t, -25.0, d.Delta("execs", 125))
	// Independent keys do not interfere.
	assert.Equal(t, 0.0, d.Delta("crashes", 3))
}

func TestFormatDelta(t *testing.T) {
	assert.Equal(t, "", monitor.FormatDelta(0))
	assert.Equal(t, "", monitor.FormatDelta(0.005))
	assert.Equal(t, " (+42.00)", monitor.FormatDelta(42))
	assert.Equal(t, " (-3.50)", monitor.FormatDelta(-3.5))
}

func TestWatchRefreshes(t *testing.T) {
	dir := t.TempDir()
	writeInstance(t, dir, "main01", os.Getpid(), 0)

	m := monitor.New(monitor.Config{FindingsDir: dir}, quietLogger())

	refreshes := make(chan *monitor.Snapshot, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- m.Watch(ctx, 50*time.Millisecond, func(s *monitor.Snapshot) {
			refreshes <- s
		})
	}()

	// Initial refresh plus at least one interval tick.
	for i := 0; i < 2; i++ {
		select {
		case snap := <-refreshes:
			assert.Equal(t, 1, snap.Summary.TotalFuzzers)
		case <-time.After(5 * time.Second):
			t.Fatal("watch mode produced no refresh")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watch mode did not stop on cancellation")
	}
}

func TestNotifySummaryPayload(t *testing.T) {
	payload := monitor.NotifySummary(&stats.CampaignSummary{
		TotalCrashes: 7,
		NewCrashes:   2,
		AliveFuzzers: 3,
		TotalFuzzers: 4,
		MaxCoverage:  33.25,
	})
	assert.Contains(t, payload, "New Crash Detected")
	assert.Contains(t, payload, "Total Crashes: 7")
	assert.Contains(t, payload, "New Crashes: 2")
	assert.Contains(t, payload, "Active Fuzzers: 3/4")
	assert.Contains(t, payload, "33.25%")
}

func TestNotifyRunsCommand(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "payload.txt")
	m := monitor.New(monitor.Config{}, quietLogger())
	summary := &stats.CampaignSummary{TotalCrashes: 1, NewCrashes: 1}

	err := m.Notify(context.Background(), "cat > "+outFile, summary)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Total Crashes: 1")
}

func TestNotifyCommandFailure(t *testing.T) {
	m := monitor.New(monitor.Config{}, quietLogger())
	err := m.Notify(context.Background(), "echo nope >&2; exit 3", &stats.CampaignSummary{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}
