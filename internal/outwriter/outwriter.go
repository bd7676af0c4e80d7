// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"os"
	"time"

	"github.com/leen324/locscope/internal/contract"
	"github.com/leen324/locscope/schema"
	"golang.org/x/term"
)

// DateTimeFormat is the timestamp layout used in tables and CSV.
const DateTimeFormat = "2006-01-02 15:04"

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteStats prints the global summary using the configured output format.
func (ow *OutWriter) WriteStats(stats schema.GlobalStats, cfg *contract.Config, duration time.Duration) error {
	return WriteStats(stats, cfg, duration)
}

// WriteCommits prints the visible commits using the configured output format.
func (ow *OutWriter) WriteCommits(commits []schema.Commit, sel schema.SelectionSummary, cfg *contract.Config, duration time.Duration) error {
	return WriteCommits(commits, sel, cfg, duration)
}

// WriteSelection prints the brushed commits and their breakdown using the configured output format.
func (ow *OutWriter) WriteSelection(selected []schema.Commit, sel schema.SelectionSummary, cfg *contract.Config, duration time.Duration) error {
	return WriteSelection(selected, sel, cfg, duration)
}

// WriteChart writes the static chart page.
func (ow *OutWriter) WriteChart(data schema.ChartData, cfg *contract.Config) error {
	return WriteChart(data, cfg)
}

// LogDatasetHeader prints a short description of the loaded dataset.
func LogDatasetHeader(source string, records, commits int, first, last time.Time) {
	fmt.Printf("🔎 Source: %s (%s lines in %s commits)\n", source, formatCount(records), formatCount(commits))
	if !first.IsZero() {
		fmt.Printf("📅 Range: %s → %s\n", first.Format(DateTimeFormat), last.Format(DateTimeFormat))
	}
}

// GetMaxTableURLWidth calculates the maximum width for commit links in table output
// based on terminal width.
func GetMaxTableURLWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + Commit + Author + Date + Hour + Lines + Period with borders/padding
	baseWidth := 85

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}
