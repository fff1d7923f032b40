/*
File: watcher.go
Description: Watch mode. Re-collects the campaign on a fixed interval, with
fsnotify wakeups when an instance rewrites its fuzzer_stats file so the display
refreshes as soon as new data lands instead of waiting out the interval.
Filesystem events are debounced because AFL writes stats in bursts.
*/

package monitor

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aflmon/aflmon/pkg/stats"
)

// debounceDelay coalesces bursts of stats-file writes into one refresh.
const debounceDelay = 500 * time.Millisecond

// Watch runs the collect/refresh loop until ctx is cancelled. refresh is
// called with each new snapshot; collection errors are logged and the loop
// keeps going. The interval is the upper bound between refreshes; stats-file
// writes trigger earlier ones.
func (m *Monitor) Watch(ctx context.Context, interval time.Duration, refresh func(*Snapshot)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		m.log.WithError(err).Warn("Filesystem watcher unavailable, falling back to interval-only refresh")
		watcher = nil
	} else {
		defer watcher.Close()
		m.addWatches(watcher)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Debounce timer for filesystem events; starts disarmed.
	debounce := time.NewTimer(time.Hour)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	m.runOnce(ctx, refresh)

	var events <-chan fsnotify.Event
	var errs <-chan error
	if watcher != nil {
		events = watcher.Events
		errs = watcher.Errors
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			m.runOnce(ctx, refresh)

		case ev := <-events:
			if isStatsWrite(ev) {
				debounce.Reset(debounceDelay)
			}

		case <-debounce.C:
			m.runOnce(ctx, refresh)
			ticker.Reset(interval)

		case err := <-errs:
			m.log.WithError(err).Debug("Watcher error")
		}
	}
}

// runOnce performs one collect-and-refresh cycle, persisting state so deltas
// accumulate across refreshes.
func (m *Monitor) runOnce(ctx context.Context, refresh func(*Snapshot)) {
	snapshot, err := m.Collect(ctx)
	if err != nil {
		m.log.WithError(err).Error("Collection failed")
		return
	}
	refresh(snapshot)
	if err := m.SaveState(snapshot.Summary); err != nil {
		m.log.WithError(err).Debug("Could not persist state")
	}
}

// addWatches registers the findings directory and every instance directory.
// New instances appearing later are picked up because creating their
// directory fires an event on the parent watch.
func (m *Monitor) addWatches(watcher *fsnotify.Watcher) {
	if err := watcher.Add(m.config.FindingsDir); err != nil {
		m.log.WithError(err).Debug("Could not watch findings directory")
	}
	dirs, err := stats.DiscoverFuzzers(m.config.FindingsDir)
	if err != nil {
		return
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			m.log.WithError(err).WithField("dir", dir).Debug("Could not watch instance directory")
		}
	}
}

// isStatsWrite reports whether an event is a write or create touching a
// fuzzer_stats file, or a new instance directory appearing.
func isStatsWrite(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
		return false
	}
	return filepath.Base(ev.Name) == stats.StatsFileName || ev.Op.Has(fsnotify.Create)
}
