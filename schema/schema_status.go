package schema

import "time"

// CacheStatus represents the status of the ingest cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// HistoryStatus represents the status of the load history store.
type HistoryStatus struct {
	Backend      string           `json:"backend"`
	Connected    bool             `json:"connected"`
	TotalLoads   int              `json:"total_loads"`
	LastLoadID   int64            `json:"last_load_id"`
	LastLoadTime time.Time        `json:"last_load_time"`
	OldestLoad   time.Time        `json:"oldest_load_time"`
	TotalCommits int              `json:"total_commits"`
	TableSizes   map[string]int64 `json:"table_sizes"`
}
