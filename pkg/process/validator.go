/*
File: validator.go
Description: Per-instance health checks. Each check inspects one aspect of a
fuzzer's statistics and returns a warning string when it looks unhealthy; the
thresholds follow afl-whatsup conventions.
*/

package process

import (
	"fmt"

	"github.com/aflmon/aflmon/pkg/stats"
)

// CheckTimeoutRatio warns when 10% or more of executions time out.
func CheckTimeoutRatio(s *stats.FuzzerStats) string {
	if s.ExecsDone == 0 {
		return ""
	}
	ratio := float64(s.TotalTimeouts) / float64(s.ExecsDone) * 100
	if ratio >= 10 {
		return fmt.Sprintf("High timeout ratio: %.1f%%", ratio)
	}
	return ""
}

// CheckExecutionSpeed warns on suspiciously slow targets.
func CheckExecutionSpeed(s *stats.FuzzerStats) string {
	if s.ExecsPerSec == 0 && s.ExecsDone > 0 {
		return "No execution data yet"
	}
	if s.ExecsPerSec > 0 && s.ExecsPerSec < 100 {
		return fmt.Sprintf("Slow execution: %.1f execs/sec", s.ExecsPerSec)
	}
	return ""
}

// CheckCyclesWithoutFinds warns when the instance has stopped finding paths.
func CheckCyclesWithoutFinds(s *stats.FuzzerStats) string {
	if s.CyclesWoFinds > 50 {
		return fmt.Sprintf("Many cycles without finds: %d", s.CyclesWoFinds)
	}
	if s.CyclesWoFinds > 10 {
		return fmt.Sprintf("Cycles without finds: %d", s.CyclesWoFinds)
	}
	return ""
}

// CheckStability warns on low corpus stability.
func CheckStability(s *stats.FuzzerStats) string {
	if s.Stability > 0 && s.Stability < 80 {
		return fmt.Sprintf("Low stability: %.1f%%", s.Stability)
	}
	return ""
}

// Warnings runs every health check against one instance.
func Warnings(s *stats.FuzzerStats) []string {
	var warnings []string
	for _, check := range []func(*stats.FuzzerStats) string{
		CheckTimeoutRatio,
		CheckExecutionSpeed,
		CheckCyclesWithoutFinds,
		CheckStability,
	} {
		if w := check(s); w != "" {
			warnings = append(warnings, w)
		}
	}
	return warnings
}
