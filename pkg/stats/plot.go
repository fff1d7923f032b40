/*
File: plot.go
Description: Parser for AFL plot_data history files. The format is a header
comment followed by comma-separated rows whose column count varies across AFL
versions, so rows are parsed positionally with a tolerant minimum-column rule
and down-sampled to a bounded point count for charting.
*/

package stats

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// plot_data columns in AFL++ 4.x order. Older versions emit fewer columns;
// rows shorter than the crash column are skipped.
const (
	colRelativeTime = 0
	colCyclesDone   = 1
	colCorpusCount  = 3
	colPendingTotal = 4
	colTotalEdges   = 6
	colSavedCrashes = 7
	colSavedHangs   = 8
	colExecsPerSec  = 10
	colTotalExecs   = 11
	colEdgesFound   = 12

	minPlotColumns = 9
)

// ParsePlotFile reads an instance's plot_data file and returns at most
// maxPoints samples, evenly strided across the history. A missing file yields
// an empty slice rather than an error, since plot_data only appears once the
// first queue cycle completes.
func ParsePlotFile(path string, maxPoints int) ([]PlotPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open plot_data: %w", err)
	}
	defer f.Close()

	var points []PlotPoint
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < minPlotColumns {
			continue
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		p := PlotPoint{
			RelativeTime: parseInt(fields[colRelativeTime]),
			CyclesDone:   parseInt(fields[colCyclesDone]),
			CorpusCount:  parseInt(fields[colCorpusCount]),
			PendingTotal: parseInt(fields[colPendingTotal]),
			SavedCrashes: parseInt(fields[colSavedCrashes]),
			SavedHangs:   parseInt(fields[colSavedHangs]),
		}
		if len(fields) > colExecsPerSec {
			p.ExecsPerSec = parseFloat(fields[colExecsPerSec])
		}
		if len(fields) > colTotalExecs {
			p.TotalExecs = parseInt(fields[colTotalExecs])
		}
		if len(fields) > colEdgesFound {
			p.EdgesFound = parseInt(fields[colEdgesFound])
		}
		points = append(points, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read plot_data: %w", err)
	}

	return downsample(points, maxPoints), nil
}

// downsample strides the history down to at most maxPoints samples, always
// keeping the final sample so the latest state is represented.
func downsample(points []PlotPoint, maxPoints int) []PlotPoint {
	if maxPoints <= 0 || len(points) <= maxPoints {
		return points
	}
	stride := len(points) / maxPoints
	if len(points)%maxPoints != 0 {
		stride++
	}
	sampled := make([]PlotPoint, 0, maxPoints)
	for i := 0; i < len(points); i += stride {
		sampled = append(sampled, points[i])
	}
	if last := points[len(points)-1]; len(sampled) == 0 || sampled[len(sampled)-1] != last {
		sampled = append(sampled, last)
	}
	return sampled
}
