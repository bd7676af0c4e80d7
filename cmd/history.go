package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/leen324/locscope/internal/contract"
	"github.com/leen324/locscope/internal/iocache"
	"github.com/leen324/locscope/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyConfig reads and validates the history backend settings.
func historyConfig() (schema.DatabaseBackend, string, error) {
	if err := readConfigFile(); err != nil {
		return "", "", err
	}
	backend, err := contract.ParseBackend(viper.GetString("history-backend"))
	if err != nil {
		return "", "", fmt.Errorf("history: %w", err)
	}
	connStr := viper.GetString("history-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
func historySetup() error {
	backend, connStr, err := historyConfig()
	if err != nil {
		return err
	}

	// No ingest caching for history commands
	if err := iocache.InitCaching("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup is like historySetup but does not open the store, so that
// migrations run against a database whose tables do not exist yet.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := historyConfig()
	if err != nil {
		return err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetHistoryDBFilePath()
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyCmd focused on load history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the record of past dataset loads",
	Long: `Manage the load history used for tracking how a dataset evolves.

When enabled with --history-backend, every load stores:
- Run metadata (source, timestamps, configuration, duration, counts)
- One summary row per commit (author, time, hour of day, lines)

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, the default)

Subcommands:
  status  - Show history statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all history
  migrate - Run database schema migrations`,
}

// historyClearCmd clears the load history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded loads",
	Long: `Delete every recorded load run and commit snapshot.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  locscope history export --output-file backup
  locscope history clear`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		iocache.CloseCaching()
		path := sqlitePath(cfg.HistoryDBConnect, contract.GetHistoryDBFilePath())
		if err := iocache.ClearHistory(cfg.HistoryBackend, path, cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display load history statistics and connection details",
	Long: `Show the backend, connection state, number of loads, newest and oldest
load and the row count of each history table.`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetHistoryStore()
		if store == nil {
			fmt.Println("History is disabled.")
			return
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyExportCmd exports the load history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export load history to Parquet files",
	Long: `Write <prefix>.load_runs.parquet and <prefix>.commit_snapshots.parquet.

Examples:
  locscope history export --output-file history`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		err := iocache.ExecuteHistoryExport(iocache.Manager.GetHistoryStore(), cfg.OutputFile)
		if errors.Is(err, iocache.ErrNoHistory) {
			fmt.Println("No load history to export.")
			return
		}
		if err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd runs schema migrations.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations for the history store",
	Long: `Apply or roll back the embedded schema migrations.

Examples:
  # Migrate to the latest version
  locscope history migrate --history-backend sqlite

  # Roll back everything
  locscope history migrate --history-backend sqlite --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		target := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, target); err != nil {
			contract.LogFatal("Failed to migrate history", err)
		}
		fmt.Println("Migrations completed successfully.")
	},
}
