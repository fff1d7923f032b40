/*
File: html.go
Description: Self-contained HTML report generation. Renders a snapshot into a
single dark-themed page with summary cards, a per-instance table, and health
warnings; no external assets, so the file can be mailed or archived as-is.
*/

package output

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aflmon/aflmon/pkg/monitor"
	"github.com/aflmon/aflmon/pkg/process"
	"github.com/aflmon/aflmon/pkg/stats"
	"github.com/aflmon/aflmon/pkg/utils"
)

// HTMLGenerator writes snapshot reports into an output directory.
type HTMLGenerator struct {
	outputDir string
	title     string
	log       *logrus.Logger
	tmpl      *template.Template
}

// HTMLData is the template context for one report page.
type HTMLData struct {
	Title       string
	Version     string
	GeneratedAt string
	FindingsDir string
	Summary     *stats.CampaignSummary
	Fuzzers     []*stats.FuzzerStats
	System      *process.SystemInfo
	Warnings    map[string][]string
}

// NewHTMLGenerator parses the report template and prepares the output
// directory.
func NewHTMLGenerator(outputDir, title string, log *logrus.Logger) (*HTMLGenerator, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if title == "" {
		title = "AFL Campaign Report"
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"number":  utils.FormatNumber,
		"execs":   utils.FormatExecs,
		"speed":   utils.FormatSpeed,
		"percent": func(v float64) string { return utils.FormatPercent(v, 2) },
		"ago":     utils.FormatTimeAgo,
	}).Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	return &HTMLGenerator{
		outputDir: outputDir,
		title:     title,
		log:       log,
		tmpl:      tmpl,
	}, nil
}

// Write renders a snapshot to index.html in the output directory and returns
// the written path.
func (g *HTMLGenerator) Write(snap *monitor.Snapshot, findingsDir string) (string, error) {
	warnings := make(map[string][]string)
	for _, f := range snap.Fuzzers {
		if w := process.Warnings(f); len(w) > 0 {
			warnings[f.Name] = w
		}
	}

	data := &HTMLData{
		Title:       g.title,
		Version:     monitor.Version,
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		FindingsDir: findingsDir,
		Summary:     snap.Summary,
		Fuzzers:     snap.Fuzzers,
		System:      snap.System,
		Warnings:    warnings,
	}

	path := filepath.Join(g.outputDir, "index.html")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := g.tmpl.Execute(f, data); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	g.log.WithField("path", path).Info("HTML report written")
	return path, nil
}
