/*
File: process_test.go
Description: Tests for process liveness detection and the per-instance health
checks.
*/

package process_test

import (
	"os"
	"testing"

	"github.com/aflmon/aflmon/pkg/process"
	"github.com/aflmon/aflmon/pkg/stats"
	"github.com/stretchr/testify/assert"
)

func TestIsAlive(t *testing.T) {
	assert.True(t, process.IsAlive(os.Getpid()))
	// PID 0 is never a valid fuzzer PID; pick an implausibly large one for
	// the dead case.
	assert.False(t, process.IsAlive(1<<22-7))
}

func TestCheckStatusInvalidPID(t *testing.T) {
	status, cpuPct, memPct := process.CheckStatus(0, t.TempDir())
	assert.Equal(t, stats.StatusUnknown, status)
	assert.Zero(t, cpuPct)
	assert.Zero(t, memPct)
}

func TestCheckStatusDead(t *testing.T) {
	status, _, _ := process.CheckStatus(1<<22-7, t.TempDir())
	assert.Equal(t, stats.StatusDead, status)
}

func TestCheckStatusAlive(t *testing.T) {
	status, _, _ := process.CheckStatus(os.Getpid(), t.TempDir())
	assert.Equal(t, stats.StatusAlive, status)
}

func TestCheckTimeoutRatio(t *testing.T) {
	assert.Empty(t, process.CheckTimeoutRatio(&stats.FuzzerStats{}))
	assert.Empty(t, process.CheckTimeoutRatio(&stats.FuzzerStats{ExecsDone: 1000, TotalTimeouts: 5}))
	assert.Contains(t,
		process.CheckTimeoutRatio(&stats.FuzzerStats{ExecsDone: 1000, TotalTimeouts: 150}),
		"High timeout ratio")
}

func TestCheckExecutionSpeed(t *testing.T) {
	assert.Empty(t, process.CheckExecutionSpeed(&stats.FuzzerStats{ExecsPerSec: 500}))
	assert.Equal(t, "No execution data yet",
		process.CheckExecutionSpeed(&stats.FuzzerStats{ExecsDone: 10}))
	assert.Contains(t,
		process.CheckExecutionSpeed(&stats.FuzzerStats{ExecsPerSec: 12.5, ExecsDone: 100}),
		"Slow execution")
}

func TestCheckCyclesWithoutFinds(t *testing.T) {
	assert.Empty(t, process.CheckCyclesWithoutFinds(&stats.FuzzerStats{CyclesWoFinds: 3}))
	assert.Equal(t, "Cycles without finds: 20",
		process.CheckCyclesWithoutFinds(&stats.FuzzerStats{CyclesWoFinds: 20}))
	assert.Equal(t, "Many cycles without finds: 99",
		process.CheckCyclesWithoutFinds(&stats.FuzzerStats{CyclesWoFinds: 99}))
}

func TestCheckStability(t *testing.T) {
	assert.Empty(t, process.CheckStability(&stats.FuzzerStats{Stability: 95}))
	assert.Empty(t, process.CheckStability(&stats.FuzzerStats{}))
	assert.Contains(t, process.CheckStability(&stats.FuzzerStats{Stability: 60}), "Low stability")
}

func TestWarningsCollectsAll(t *testing.T) {
	s := &stats.FuzzerStats{
		ExecsDone:     1000,
		TotalTimeouts: 200,
		ExecsPerSec:   50,
		CyclesWoFinds: 60,
		Stability:     70,
	}
	warnings := process.Warnings(s)
	assert.Len(t, warnings, 4)

	healthy := &stats.FuzzerStats{ExecsDone: 1000, ExecsPerSec: 800, Stability: 99}
	assert.Empty(t, process.Warnings(healthy))
}
