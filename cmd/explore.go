package cmd

import (
	"github.com/leen324/locscope/core"
	"github.com/leen324/locscope/internal/contract"
	"github.com/spf13/cobra"
)

// statsCmd prints the global summary of a dataset.
var statsCmd = &cobra.Command{
	Use:   "stats [source]",
	Short: "Summarize a loc.csv dataset.",
	Long: `Load a loc.csv file (local path or http(s) URL) and print its summary:

- Total lines of code (one row per line)
- Number of distinct commits and files
- Longest file, by its highest line number
- The time of day most lines were written in

Examples:
  # Summarize the loc.csv in the current directory
  locscope stats

  # Summarize a remote export as JSON
  locscope stats https://example.com/loc.csv --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteStats(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot compute stats", err)
		}
	},
}

// commitsCmd lists the commits visible at a cutoff.
var commitsCmd = &cobra.Command{
	Use:   "commits [source]",
	Short: "List the commits made up to a point in time, largest first.",
	Long: `Move the time slider to --cutoff (0 = earliest commit, 100 = latest) and list
every commit authored at or before that instant, ordered by lines changed.

Examples:
  # Commits of the first half of the history
  locscope commits --cutoff 50

  # Export the full list to CSV
  locscope commits --output csv --output-file commits.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCommits(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot list commits", err)
		}
	},
}

// selectCmd brushes a region of the chart.
var selectCmd = &cobra.Command{
	Use:   "select [source]",
	Short: "Select the commits inside a rectangle of the chart.",
	Long: `Brush a rectangle on the 1000x600 scatter plot (time on x, hour of day on y)
and print the commits it covers with a breakdown of their lines by type.
When nothing is selected the breakdown covers every visible commit.

Examples:
  # Everything drawn in the left half of the chart
  locscope select --rect 0,0,500,600

  # Same region, at an earlier point in time
  locscope select --rect 0,0,500,600 --cutoff 25 --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSelect(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot select commits", err)
		}
	},
}

// chartCmd writes a static chart.
var chartCmd = &cobra.Command{
	Use:   "chart [source]",
	Short: "Render the commit chart as a standalone HTML page.",
	Long: `Render the scatter plot of commits by date and time of day, the breakdown pie
and the summary panels into a single HTML file.

Examples:
  locscope chart --output-file chart.html
  locscope chart --cutoff 80 --rect 100,0,900,300 --output-file chart.html`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteChart(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot render chart", err)
		}
	},
}

// exportCmd writes records and commits to Parquet.
var exportCmd = &cobra.Command{
	Use:   "export [source]",
	Short: "Export parsed records and commits to Parquet files.",
	Long: `Write <prefix>.records.parquet and <prefix>.commits.parquet for use in
pandas, DuckDB or any other Parquet reader.

Examples:
  locscope export --output-file snapshot`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteExport(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot export dataset", err)
		}
	},
}
