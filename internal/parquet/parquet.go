// Package parquet provides data structures and functions for exporting locscope
// datasets and load history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/leen324/locscope/schema"
	"github.com/parquet-go/parquet-go"
)

// LineRecord is one parsed row of loc.csv.
type LineRecord struct {
	// CommitID is the hash of the commit that touched the line
	CommitID string `parquet:"commit_id,snappy"`

	// File is the path of the source file
	File string `parquet:"file,snappy"`

	// Line is the 1-based line number, 0 when absent
	Line int32 `parquet:"line,snappy"`

	// Type is the category tag of the line
	Type string `parquet:"type,snappy"`

	Depth  int32 `parquet:"depth,snappy"`
	Length int32 `parquet:"length,snappy"`

	Author string `parquet:"author,snappy"`

	// DateTime is the author timestamp (nullable when the row had none)
	DateTime *time.Time `parquet:"datetime,optional,snappy"`

	// Timezone is the raw offset as written in the source
	Timezone string `parquet:"timezone,snappy"`
}

// Commit is one aggregated commit.
type Commit struct {
	CommitID string `parquet:"commit_id,snappy"`
	URL      string `parquet:"url,snappy"`
	Author   string `parquet:"author,snappy"`

	// DateTime is the author timestamp (nullable)
	DateTime *time.Time `parquet:"datetime,optional,snappy"`

	// HourFrac is the time of day in fractional hours (nullable)
	HourFrac *float64 `parquet:"hour_frac,optional,snappy"`

	// TotalLines is the number of records belonging to the commit
	TotalLines int32 `parquet:"total_lines,snappy"`
}

// LoadRun represents one dataset load.
// This struct maps to the locscope_load_runs database table.
type LoadRun struct {
	// LoadID is the unique identifier for this load
	LoadID int64 `parquet:"load_id,snappy"`

	Source string `parquet:"source,snappy"`

	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the load completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// DurationMs is the duration of the load in milliseconds (nullable)
	DurationMs *int32 `parquet:"duration_ms,optional,snappy"`

	TotalRecords int32 `parquet:"total_records,snappy"`
	TotalCommits int32 `parquet:"total_commits,snappy"`

	// ConfigParams contains the JSON-encoded loader parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// CommitSnapshot is the summary of one commit as seen by one load.
// This struct maps to the locscope_commit_snapshots database table.
type CommitSnapshot struct {
	LoadID     int64      `parquet:"load_id,snappy"`
	CommitID   string     `parquet:"commit_id,snappy"`
	Author     string     `parquet:"author,snappy"`
	CommitTime *time.Time `parquet:"commit_time,optional,snappy"`
	HourFrac   *float64   `parquet:"hour_frac,optional,snappy"`
	TotalLines int32      `parquet:"total_lines,snappy"`
}

// writeParquet writes rows to a new file at outputPath, inferring the schema from T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteLineRecordsParquet writes parsed records to a Parquet file.
func WriteLineRecordsParquet(data []LineRecord, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteCommitsParquet writes aggregated commits to a Parquet file.
func WriteCommitsParquet(data []Commit, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteLoadRunsParquet writes load history runs to a Parquet file.
func WriteLoadRunsParquet(data []LoadRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteCommitSnapshotsParquet writes per-load commit summaries to a Parquet file.
func WriteCommitSnapshotsParquet(data []CommitSnapshot, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertLineRecords converts schema.LineRecord to LineRecord for Parquet export.
func ConvertLineRecords(records []schema.LineRecord) []LineRecord {
	result := make([]LineRecord, len(records))
	for i, r := range records {
		result[i] = LineRecord{
			CommitID: r.CommitID,
			File:     r.File,
			Line:     int32(r.Line),   //nolint:gosec // line numbers fit in int32
			Type:     r.Type,
			Depth:    int32(r.Depth),  //nolint:gosec
			Length:   int32(r.Length), //nolint:gosec
			Author:   r.Author,
			DateTime: r.DateTime,
			Timezone: r.Timezone,
		}
	}
	return result
}

// ConvertCommits converts schema.Commit to Commit for Parquet export.
func ConvertCommits(commits []schema.Commit) []Commit {
	result := make([]Commit, len(commits))
	for i, c := range commits {
		result[i] = Commit{
			CommitID:   c.ID,
			URL:        c.URL,
			Author:     c.Author,
			DateTime:   c.DateTime,
			HourFrac:   c.HourFrac,
			TotalLines: int32(c.TotalLines), //nolint:gosec
		}
	}
	return result
}

// ConvertLoadRunRecords converts schema.LoadRunRecord to LoadRun for Parquet export.
func ConvertLoadRunRecords(records []schema.LoadRunRecord) []LoadRun {
	result := make([]LoadRun, len(records))
	for i, r := range records {
		result[i] = LoadRun{
			LoadID:       r.LoadID,
			Source:       r.Source,
			StartTime:    r.StartTime,
			EndTime:      r.EndTime,
			DurationMs:   r.DurationMs,
			TotalRecords: r.TotalRecords,
			TotalCommits: r.TotalCommits,
			ConfigParams: r.ConfigParams,
		}
	}
	return result
}

// ConvertCommitSnapshotRecords converts schema.CommitSnapshotRecord to CommitSnapshot for Parquet export.
func ConvertCommitSnapshotRecords(records []schema.CommitSnapshotRecord) []CommitSnapshot {
	result := make([]CommitSnapshot, len(records))
	for i, r := range records {
		result[i] = CommitSnapshot{
			LoadID:     r.LoadID,
			CommitID:   r.CommitID,
			Author:     r.Author,
			CommitTime: r.CommitTime,
			HourFrac:   r.HourFrac,
			TotalLines: r.TotalLines,
		}
	}
	return result
}
