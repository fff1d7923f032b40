/*
File: json.go
Description: JSON report writer for automation pipelines. Emits metadata,
campaign summary, per-instance stats, and a host snapshot as an indented
document; a compact variant exists for the web API.
*/

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aflmon/aflmon/pkg/monitor"
	"github.com/aflmon/aflmon/pkg/process"
	"github.com/aflmon/aflmon/pkg/stats"
	"github.com/aflmon/aflmon/pkg/utils"
)

// Metadata identifies one JSON report.
type Metadata struct {
	Timestamp    int64  `json:"timestamp"`
	TimestampStr string `json:"timestamp_str"`
	Version      string `json:"monitor_version"`
	FindingsDir  string `json:"findings_directory"`
}

// JSONReport is the full document written by the JSON output.
type JSONReport struct {
	Metadata Metadata               `json:"metadata"`
	Summary  *stats.CampaignSummary `json:"summary"`
	Fuzzers  []*stats.FuzzerStats   `json:"fuzzers"`
	System   *process.SystemInfo    `json:"system"`
}

// BuildJSONReport assembles the report document from a snapshot.
func BuildJSONReport(snap *monitor.Snapshot, findingsDir string) *JSONReport {
	fuzzers := snap.Fuzzers
	if fuzzers == nil {
		fuzzers = []*stats.FuzzerStats{}
	}
	return &JSONReport{
		Metadata: Metadata{
			Timestamp:    time.Now().Unix(),
			TimestampStr: utils.Timestamp(),
			Version:      monitor.Version,
			FindingsDir:  findingsDir,
		},
		Summary: snap.Summary,
		Fuzzers: fuzzers,
		System:  snap.System,
	}
}

// WriteJSONFile writes an indented report to path.
func WriteJSONFile(path string, snap *monitor.Snapshot, findingsDir string) error {
	data, err := json.MarshalIndent(BuildJSONReport(snap, findingsDir), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}
	return nil
}

// WriteCompactJSON streams v as compact JSON, for the web API and piping.
func WriteCompactJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	return enc.Encode(v)
}
