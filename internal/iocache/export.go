package iocache

import (
	"errors"
	"fmt"

	"github.com/leen324/locscope/internal/contract"
	"github.com/leen324/locscope/internal/parquet"
)

// ErrNoHistory is returned when an export finds no recorded loads.
var ErrNoHistory = errors.New("no load history found to export")

// ExecuteHistoryExport writes the load runs and commit snapshots of store to Parquet files.
func ExecuteHistoryExport(store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return ErrNoHistory
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalLoads == 0 {
		return ErrNoHistory
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total loads: %d\n", status.TotalLoads)
	fmt.Printf("Total commit snapshots: %d\n", status.TableSizes[commitSnapshotsTable])

	runs, err := store.GetAllLoadRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve load runs: %w", err)
	}
	snapshots, err := store.GetAllCommitSnapshots()
	if err != nil {
		return fmt.Errorf("failed to retrieve commit snapshots: %w", err)
	}

	runsFile := outputFile + ".load_runs.parquet"
	if err := parquet.WriteLoadRunsParquet(parquet.ConvertLoadRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write load runs: %w", err)
	}
	fmt.Printf("Exported %d load runs to: %s\n", len(runs), runsFile)

	snapshotsFile := outputFile + ".commit_snapshots.parquet"
	if err := parquet.WriteCommitSnapshotsParquet(parquet.ConvertCommitSnapshotRecords(snapshots), snapshotsFile); err != nil {
		return fmt.Errorf("failed to write commit snapshots: %w", err)
	}
	fmt.Printf("Exported %d commit snapshots to: %s\n", len(snapshots), snapshotsFile)

	return nil
}
