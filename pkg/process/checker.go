/*
File: checker.go
Description: Process detection and system resource monitoring for fuzzer
instances. Liveness uses signal 0 the way afl-whatsup does; CPU and memory
usage come from gopsutil, as does the host-level system snapshot shown in
summaries and on the dashboard.
*/

package process

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	gopsproc "github.com/shirou/gopsutil/v3/process"
	"github.com/sirupsen/logrus"

	"github.com/aflmon/aflmon/pkg/stats"
)

// sampleInterval is how long resource sampling blocks per process.
const sampleInterval = 100 * time.Millisecond

// startingWindow is how recently fuzzer_setup must have been touched for an
// instance with a dead PID to count as still starting up.
const startingWindow = time.Minute

// CheckStatus determines whether an instance's process is running and, if so,
// samples its resource usage. CPU and memory are percentages; both are -1 when
// the process exists but its stats are inaccessible.
func CheckStatus(pid int, fuzzerDir string) (stats.FuzzerStatus, float64, float64) {
	if pid <= 0 {
		return stats.StatusUnknown, 0, 0
	}

	if !IsAlive(pid) {
		if isStarting(fuzzerDir) {
			return stats.StatusStarting, 0, 0
		}
		return stats.StatusDead, 0, 0
	}

	cpuPct, memPct := resources(pid)
	return stats.StatusAlive, cpuPct, memPct
}

// IsAlive reports whether a process with the given PID exists. A permission
// error still means the process is there, just owned by someone else.
func IsAlive(pid int) bool {
	err := syscall.Kill(pid, 0)
	if err == nil {
		return true
	}
	if errors.Is(err, syscall.EPERM) {
		return true
	}
	return false
}

// isStarting applies the afl-whatsup heuristic: fuzzer_setup newer than
// fuzzer_stats and touched within the last minute means afl-fuzz is still
// calibrating and has not written fresh stats yet.
func isStarting(fuzzerDir string) bool {
	statsInfo, err := os.Stat(filepath.Join(fuzzerDir, stats.StatsFileName))
	if err != nil {
		return false
	}
	setupInfo, err := os.Stat(filepath.Join(fuzzerDir, "fuzzer_setup"))
	if err != nil {
		return false
	}
	if !setupInfo.ModTime().After(statsInfo.ModTime()) {
		return false
	}
	return time.Since(setupInfo.ModTime()) < startingWindow
}

// resources samples CPU and memory usage for a PID.
func resources(pid int) (float64, float64) {
	p, err := gopsproc.NewProcess(int32(pid))
	if err != nil {
		return 0, 0
	}

	cpuPct, err := p.Percent(sampleInterval)
	if err != nil {
		logrus.Debugf("cpu sample failed for pid %d: %v", pid, err)
		return -1, -1
	}
	memPct, err := p.MemoryPercent()
	if err != nil {
		logrus.Debugf("memory sample failed for pid %d: %v", pid, err)
		return cpuPct, -1
	}
	return cpuPct, float64(memPct)
}

// SystemInfo is a host-level resource snapshot.
type SystemInfo struct {
	CPUCount      int     `json:"cpu_count"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryTotalGB float64 `json:"memory_total_gb"`
	MemoryUsedGB  float64 `json:"memory_used_gb"`
	MemoryPercent float64 `json:"memory_percent"`
	DiskTotalGB   float64 `json:"disk_total_gb"`
	DiskUsedGB    float64 `json:"disk_used_gb"`
	DiskPercent   float64 `json:"disk_percent"`
}

// GetSystemInfo samples host CPU, memory, and root-filesystem usage. Partial
// failures degrade to zero values rather than failing the whole snapshot.
func GetSystemInfo() *SystemInfo {
	info := &SystemInfo{}

	if count, err := cpu.Counts(true); err == nil {
		info.CPUCount = count
	}
	if pcts, err := cpu.Percent(sampleInterval, false); err == nil && len(pcts) > 0 {
		info.CPUPercent = pcts[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemoryTotalGB = float64(vm.Total) / (1 << 30)
		info.MemoryUsedGB = float64(vm.Used) / (1 << 30)
		info.MemoryPercent = vm.UsedPercent
	}
	if du, err := disk.Usage("/"); err == nil {
		info.DiskTotalGB = float64(du.Total) / (1 << 30)
		info.DiskUsedGB = float64(du.Used) / (1 << 30)
		info.DiskPercent = du.UsedPercent
	}
	return info
}
