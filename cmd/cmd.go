// Package cmd defines the command-line interface for locscope.
package cmd

import (
	"github.com/leen324/locscope/internal/contract"
	"github.com/leen324/locscope/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(commitsCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("source", "", "Path or http(s) URL of the loc.csv file (default loc.csv)")
	rootCmd.PersistentFlags().String("commit-host", contract.DefaultCommitHost, "Base URL used for commit links")
	rootCmd.PersistentFlags().String("commit-owner", "", "Repository owner used for commit links")
	rootCmd.PersistentFlags().String("commit-repo", "", "Repository name used for commit links")
	rootCmd.PersistentFlags().String("timezone", "", "IANA timezone for hour-of-day and dates (default: each commit's own offset)")
	rootCmd.PersistentFlags().String("parse-policy", string(schema.StrictPolicy), "Malformed values: strict (fail) or lenient (coerce and warn)")
	rootCmd.PersistentFlags().Float64("radius-min", contract.DefaultRadiusMin, "Smallest point radius in pixels")
	rootCmd.PersistentFlags().Float64("radius-max", contract.DefaultRadiusMax, "Largest point radius in pixels")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or html or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("history-backend", "", "Load history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for load history (a SQLite file must differ from the cache file)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Selection flags are shared by several commands, so sharedSetup binds them
	// for the command that actually runs.
	for _, c := range []*cobra.Command{commitsCmd, selectCmd, chartCmd, mcpCmd} {
		c.Flags().Float64("cutoff", schema.SliderMax, "Time slider position from 0 (earliest commit) to 100 (latest)")
	}
	for _, c := range []*cobra.Command{selectCmd, chartCmd} {
		c.Flags().String("rect", "", "Brush rectangle in chart pixels: x0,y0,x1,y1")
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", contract.DefaultAddr, "Address to listen on")
	serveCmd.Flags().Bool("open", false, "Open the chart in the default browser")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
