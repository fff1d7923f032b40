/*
File: state.go
Description: Cross-invocation state persistence and per-interval delta
tracking. A small JSON state file under the user's home directory carries the
previous campaign summary so one-shot runs can report new crashes and hangs.
*/

package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aflmon/aflmon/pkg/stats"
)

// DefaultStateFileName is the state file created under the home directory.
const DefaultStateFileName = ".aflmon-state.json"

// persistedState is the on-disk layout of the state file.
type persistedState struct {
	Timestamp int64                  `json:"timestamp"`
	Summary   *stats.CampaignSummary `json:"summary"`
}

// DefaultStateFile returns the state file path under the user's home
// directory, or empty when no home is resolvable.
func DefaultStateFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DefaultStateFileName)
}

// LoadPreviousState primes the monitor with the last persisted summary so the
// next Collect reports deltas. Missing or corrupt state is not an error; it
// just means no deltas this run.
func (m *Monitor) LoadPreviousState() {
	if m.config.StateFile == "" {
		return
	}
	data, err := os.ReadFile(m.config.StateFile)
	if err != nil {
		m.log.WithError(err).Debug("No previous state")
		return
	}
	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		m.log.WithError(err).Debug("Could not decode previous state")
		m.previous = nil
		return
	}
	m.previous = state.Summary
}

// SaveState persists the summary for the next invocation's delta computation.
func (m *Monitor) SaveState(summary *stats.CampaignSummary) error {
	if m.config.StateFile == "" {
		return nil
	}
	data, err := json.MarshalIndent(persistedState{
		Timestamp: time.Now().Unix(),
		Summary:   summary,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := os.WriteFile(m.config.StateFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	m.previous = summary
	return nil
}

// DeltaTracker tracks value changes between refresh intervals, keyed by
// metric name. Used by watch mode to annotate the summary with per-interval
// movement.
type DeltaTracker struct {
	previous map[string]float64
}

// NewDeltaTracker returns an empty tracker.
func NewDeltaTracker() *DeltaTracker {
	return &DeltaTracker{previous: make(map[string]float64)}
}

// Delta returns the change since the last observation of key and records the
// current value. The first observation of a key yields 0.
func (d *DeltaTracker) Delta(key string, current float64) float64 {
	prev, seen := d.previous[key]
	d.previous[key] = current
	if !seen {
		return 0
	}
	return current - prev
}

// FormatDelta renders a delta as a signed suffix like " (+42.00)", or an
// empty string for negligible movement.
func FormatDelta(delta float64) string {
	if delta > -0.01 && delta < 0.01 {
		return ""
	}
	return fmt.Sprintf(" (%+.2f)", delta)
}
