// Package core has core logic for loading, projection, selection and rendering of commit data.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leen324/locscope/core/algo"
	"github.com/leen324/locscope/internal/contract"
	"github.com/leen324/locscope/internal/outwriter"
	"github.com/leen324/locscope/internal/parquet"
	"github.com/leen324/locscope/schema"
)

// ExecutorFunc defines the function signature for executing the different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteStats loads the source and prints the global summary.
// It serves as the main entry point for the 'stats' command.
func ExecuteStats(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	s, err := loadSession(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	frame, err := s.Dispatcher.Snapshot()
	if err != nil {
		return err
	}
	return outwriter.WriteStats(frame.Stats, cfg, time.Since(start))
}

// ExecuteCommits prints the commits visible at the configured cutoff, largest first.
// It serves as the main entry point for the 'commits' command.
func ExecuteCommits(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	s, err := loadSession(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	frame, err := s.Evaluate(cfg.Cutoff, nil)
	if err != nil {
		return err
	}
	st, err := s.Dispatcher.State()
	if err != nil {
		return err
	}
	return outwriter.WriteCommits(algo.DrawOrder(st.Visible), frame.Selection, cfg, time.Since(start))
}

// ExecuteSelect applies the configured cutoff and brush and prints the selection
// together with its category breakdown.
func ExecuteSelect(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	if cfg.Rect == nil {
		return errors.New("--rect is required for select")
	}
	start := time.Now()
	s, err := loadSession(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	frame, err := s.Evaluate(cfg.Cutoff, cfg.Rect)
	if err != nil {
		return err
	}
	st, err := s.Dispatcher.State()
	if err != nil {
		return err
	}
	return outwriter.WriteSelection(st.Selected, frame.Selection, cfg, time.Since(start))
}

// ExecuteChart writes a static HTML chart at the configured cutoff and brush.
func ExecuteChart(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	s, err := loadSession(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if _, err := s.Evaluate(cfg.Cutoff, cfg.Rect); err != nil {
		return err
	}
	data, err := BuildChartData(s.Source.Name(), s)
	if err != nil {
		return err
	}
	return outwriter.WriteChart(data, cfg)
}

// ExecuteExport writes the parsed records and aggregated commits to Parquet files
// named after the configured output prefix.
func ExecuteExport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	if cfg.OutputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	s, err := loadSession(withSuppressHeader(ctx), cfg, mgr)
	if err != nil {
		return err
	}
	data, err := s.Dispatcher.Dataset()
	if err != nil {
		return err
	}

	recordsFile := cfg.OutputFile + ".records.parquet"
	if err := parquet.WriteLineRecordsParquet(parquet.ConvertLineRecords(data.Records), recordsFile); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	fmt.Printf("Exported %d records to: %s\n", len(data.Records), recordsFile)

	commitsFile := cfg.OutputFile + ".commits.parquet"
	if err := parquet.WriteCommitsParquet(parquet.ConvertCommits(data.Commits), commitsFile); err != nil {
		return fmt.Errorf("failed to write commits: %w", err)
	}
	fmt.Printf("Exported %d commits to: %s\n", len(data.Commits), commitsFile)
	return nil
}

// OpenSession loads the configured source into a new session without printing
// the dataset header. Hosts that answer structured requests use it.
func OpenSession(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*Session, error) {
	return loadSession(withSuppressHeader(ctx), cfg, mgr)
}

// loadSession creates a session for cfg and performs the initial load.
func loadSession(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*Session, error) {
	s := NewSession(cfg, mgr, nil)
	if _, err := s.Reload(ctx); err != nil {
		return nil, err
	}
	if !shouldSuppressHeader(ctx) && cfg.Output == schema.TextOut {
		data, err := s.Dispatcher.Dataset()
		if err != nil {
			return nil, err
		}
		lo, hi, _ := NewCutoffScale(data.Commits).Domain()
		outwriter.LogDatasetHeader(s.Source.Name(), len(data.Records), len(data.Commits), lo, hi)
	}
	return s, nil
}
