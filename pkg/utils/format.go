/*
File: format.go
Description: Formatting helpers shared by the terminal, HTML, and web outputs.
Covers human-readable durations, "time ago" stamps, grouped numbers, execution
counts, byte sizes, speeds, and ETA calculation.
*/

package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatDuration renders a second count as a short human string, showing at
// most two units ("2 days, 3 hours", "45 minutes, 12 seconds").
func FormatDuration(seconds int64) string {
	if seconds <= 0 {
		return "0 seconds"
	}

	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	var parts []string
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 && days == 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if secs > 0 && days == 0 && hours == 0 {
		parts = append(parts, plural(secs, "second"))
	}
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, ", ")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// FormatTimeAgo renders a Unix timestamp relative to now ("2 hours ago").
// Zero and negative timestamps mean the event never happened.
func FormatTimeAgo(timestamp int64) string {
	if timestamp <= 0 {
		return "never"
	}
	elapsed := time.Now().Unix() - timestamp
	if elapsed < 0 {
		return "in the future"
	}
	return FormatDuration(elapsed) + " ago"
}

// FormatNumber renders a number with thousands separators.
func FormatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, d := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatFloat renders a float with thousands separators on the integer part.
// Rounding happens before the split so fractions that carry into the integer
// part ("0.999" at 2 decimals) group correctly, and the sign survives.
func FormatFloat(f float64, decimals int) string {
	s := fmt.Sprintf("%.*f", decimals, f)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	n, _ := strconv.ParseInt(whole, 10, 64)
	out := sign + FormatNumber(n)
	if frac != "" {
		out += "." + frac
	}
	return out
}

// FormatExecs renders an execution count in millions/thousands, the way AFL
// status screens do.
func FormatExecs(total int64) string {
	millions := total / 1_000_000
	thousands := (total % 1_000_000) / 1_000

	switch {
	case millions > 9:
		return FormatNumber(millions) + " millions"
	case millions > 0:
		return fmt.Sprintf("%s millions, %s thousands", FormatNumber(millions), FormatNumber(thousands))
	case thousands > 0:
		return FormatNumber(thousands) + " thousands"
	default:
		return FormatNumber(total)
	}
}

// FormatBytes renders a byte count as a human-readable size.
func FormatBytes(n int64) string {
	value := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if value < 1024.0 {
			return fmt.Sprintf("%.2f %s", value, unit)
		}
		value /= 1024.0
	}
	return fmt.Sprintf("%.2f PB", value)
}

// FormatSpeed renders an execution speed with precision scaled to magnitude.
func FormatSpeed(execsPerSec float64) string {
	switch {
	case execsPerSec >= 1000:
		return FormatFloat(execsPerSec, 2) + " execs/sec"
	case execsPerSec >= 1:
		return fmt.Sprintf("%.2f execs/sec", execsPerSec)
	default:
		return fmt.Sprintf("%.4f execs/sec", execsPerSec)
	}
}

// FormatPercent renders a 0-100 percentage value.
func FormatPercent(value float64, decimals int) string {
	return fmt.Sprintf("%.*f%%", decimals, value)
}

// Percentage computes part/total as a percentage, safely handling zero totals.
func Percentage(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100
}

// CalculateETA estimates remaining time from linear progress. Returns "N/A"
// when progress cannot be extrapolated.
func CalculateETA(current, total, elapsedSeconds int64) string {
	if current <= 0 || total <= 0 || current >= total {
		return "N/A"
	}
	ratio := float64(current) / float64(total)
	totalTime := float64(elapsedSeconds) / ratio
	remaining := int64(totalTime) - elapsedSeconds
	return FormatDuration(remaining)
}

// Timestamp returns the current local time in the monitor's display format.
func Timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}
