package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leen324/locscope/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{"LineRecord", new(LineRecord), []string{"commit_id", "file", "line", "type", "depth", "length", "author", "datetime", "timezone"}},
		{"Commit", new(Commit), []string{"commit_id", "url", "author", "datetime", "hour_frac", "total_lines"}},
		{"LoadRun", new(LoadRun), []string{"load_id", "source", "start_time", "end_time", "duration_ms", "total_records", "total_commits", "config_params"}},
		{"CommitSnapshot", new(CommitSnapshot), []string{"load_id", "commit_id", "author", "commit_time", "hour_frac", "total_lines"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			for _, col := range tt.columns {
				_, ok := s.Lookup(col)
				assert.True(t, ok, "column %s should exist", col)
			}
		})
	}
}

func TestWriteLineRecordsParquet(t *testing.T) {
	ts := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	records := []schema.LineRecord{
		{CommitID: "c1", File: "main.go", Line: 1, Type: "go", Depth: 0, Length: 12, Author: "Ada", DateTime: &ts, Timezone: "+00:00"},
		{CommitID: "c2", File: "README.md", Line: 3, Type: "md", Author: "Grace"},
	}
	path := filepath.Join(t.TempDir(), "records.parquet")

	require.NoError(t, WriteLineRecordsParquet(ConvertLineRecords(records), path))

	got := readAll[LineRecord](t, path)
	require.Len(t, got, 2)
	assert.Equal(t, "main.go", got[0].File)
	assert.Equal(t, int32(12), got[0].Length)
	require.NotNil(t, got[0].DateTime)
	assert.True(t, ts.Equal(*got[0].DateTime))
	assert.Nil(t, got[1].DateTime)
}

func TestWriteCommitsParquet(t *testing.T) {
	ts := time.Date(2024, 1, 3, 14, 15, 0, 0, time.UTC)
	hour := 14.25
	commits := []schema.Commit{
		{ID: "c1", URL: "https://github.com/o/r/commit/c1", Author: "Ada", DateTime: &ts, HourFrac: &hour, TotalLines: 7},
		{ID: "c2", Author: "Grace", TotalLines: 2},
	}
	path := filepath.Join(t.TempDir(), "commits.parquet")

	require.NoError(t, WriteCommitsParquet(ConvertCommits(commits), path))

	got := readAll[Commit](t, path)
	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].CommitID)
	assert.Equal(t, int32(7), got[0].TotalLines)
	require.NotNil(t, got[0].HourFrac)
	assert.InDelta(t, 14.25, *got[0].HourFrac, 1e-9)
	assert.Nil(t, got[1].HourFrac)
	assert.Nil(t, got[1].DateTime)
}

func TestWriteLoadRunsParquet(t *testing.T) {
	start := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	dur := int32(1500)
	params := `{"parse_policy":"strict"}`
	runs := []schema.LoadRunRecord{
		{LoadID: 1, Source: "loc.csv", StartTime: start, EndTime: &end, DurationMs: &dur, TotalRecords: 10, TotalCommits: 3, ConfigParams: &params},
		{LoadID: 2, Source: "loc.csv", StartTime: start.Add(time.Hour)},
	}
	path := filepath.Join(t.TempDir(), "runs.parquet")

	require.NoError(t, WriteLoadRunsParquet(ConvertLoadRunRecords(runs), path))

	got := readAll[LoadRun](t, path)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].DurationMs)
	assert.Equal(t, int32(1500), *got[0].DurationMs)
	require.NotNil(t, got[0].ConfigParams)
	assert.Equal(t, params, *got[0].ConfigParams)
	assert.Nil(t, got[1].EndTime)
	assert.Nil(t, got[1].ConfigParams)
}

func TestWriteCommitSnapshotsParquet(t *testing.T) {
	ts := time.Date(2024, 2, 1, 23, 45, 0, 0, time.UTC)
	hour := 23.75
	snaps := []schema.CommitSnapshotRecord{
		{LoadID: 1, CommitID: "c1", Author: "Ada", CommitTime: &ts, HourFrac: &hour, TotalLines: 4},
	}
	path := filepath.Join(t.TempDir(), "snapshots.parquet")

	require.NoError(t, WriteCommitSnapshotsParquet(ConvertCommitSnapshotRecords(snaps), path))

	got := readAll[CommitSnapshot](t, path)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].LoadID)
	assert.InDelta(t, 23.75, *got[0].HourFrac, 1e-9)
}

func TestWriteEmptyData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteCommitsParquet([]Commit{}, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
	assert.Empty(t, readAll[Commit](t, path))
}

func TestWriteInvalidPath(t *testing.T) {
	err := WriteCommitsParquet(nil, "/nonexistent/dir/commits.parquet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}
