package schema

import "time"

// LoadRunRecord represents a row from the locscope_load_runs table.
type LoadRunRecord struct {
	LoadID       int64
	Source       string
	StartTime    time.Time
	EndTime      *time.Time
	DurationMs   *int32
	TotalRecords int32
	TotalCommits int32
	ConfigParams *string
}

// CommitSnapshotRecord represents a row from the locscope_commit_snapshots table.
type CommitSnapshotRecord struct {
	LoadID     int64
	CommitID   string
	Author     string
	CommitTime *time.Time
	HourFrac   *float64
	TotalLines int32
}
