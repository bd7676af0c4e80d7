// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/leen324/locscope/schema"
)

// DataSource fetches the raw loc.csv bytes.
// This allows the loading logic to be tested without touching disk or network.
type DataSource interface {
	// Name identifies the source in logs, cache keys and load history.
	Name() string

	// Fetch returns the raw CSV content.
	Fetch(ctx context.Context) ([]byte, error)
}

// CacheManager defines the interface for managing stores.
// This allows the persistence layer to be mocked for testing.
type CacheManager interface {
	GetIngestStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cached ingest data.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking dataset loads and their commits.
type HistoryStore interface {
	// BeginLoad creates a new load run and returns its unique ID
	BeginLoad(source string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndLoad updates the load run with completion data
	EndLoad(loadID int64, endTime time.Time, totalRecords, totalCommits int) error

	// RecordCommits stores per-commit summaries for a load
	RecordCommits(loadID int64, commits []schema.Commit) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllLoadRuns returns every load run, oldest first
	GetAllLoadRuns() ([]schema.LoadRunRecord, error)

	// GetAllCommitSnapshots returns every recorded commit summary
	GetAllCommitSnapshots() ([]schema.CommitSnapshotRecord, error)

	// Close closes the underlying connection
	Close() error
}
