package iocache

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/leen324/locscope/internal/contract"
	"github.com/leen324/locscope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshotCommits() []schema.Commit {
	ts := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	hour := 9.5
	return []schema.Commit{
		{ID: "c1", Author: "Ada", DateTime: &ts, HourFrac: &hour, TotalLines: 3},
		{ID: "c2", Author: "Grace", TotalLines: 1},
	}
}

func recordLoad(t *testing.T, store contract.HistoryStore, start time.Time) int64 {
	t.Helper()
	id, err := store.BeginLoad("loc.csv", start, map[string]any{"parse_policy": "strict"})
	require.NoError(t, err)
	require.NoError(t, store.RecordCommits(id, sampleSnapshotCommits()))
	require.NoError(t, store.EndLoad(id, start.Add(250*time.Millisecond), 4, 2))
	return id
}

func TestHistoryStoreLifecycle(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, tempDB(t, "history.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	first := recordLoad(t, store, start)
	second := recordLoad(t, store, start.Add(time.Hour))
	assert.Greater(t, second, first)

	runs, err := store.GetAllLoadRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "loc.csv", runs[0].Source)
	assert.True(t, start.Equal(runs[0].StartTime))
	require.NotNil(t, runs[0].EndTime)
	require.NotNil(t, runs[0].DurationMs)
	assert.Equal(t, int32(250), *runs[0].DurationMs)
	assert.Equal(t, int32(4), runs[0].TotalRecords)
	require.NotNil(t, runs[0].ConfigParams)
	assert.JSONEq(t, `{"parse_policy":"strict"}`, *runs[0].ConfigParams)

	snaps, err := store.GetAllCommitSnapshots()
	require.NoError(t, err)
	require.Len(t, snaps, 4)
	assert.Equal(t, "c1", snaps[0].CommitID)
	require.NotNil(t, snaps[0].CommitTime)
	assert.InDelta(t, 9.5, *snaps[0].HourFrac, 1e-9)
	assert.Nil(t, snaps[1].CommitTime)
	assert.Nil(t, snaps[1].HourFrac)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalLoads)
	assert.Equal(t, second, status.LastLoadID)
	assert.Equal(t, 4, status.TotalCommits)
	assert.True(t, start.Equal(status.OldestLoad))
	assert.Equal(t, int64(4), status.TableSizes[commitSnapshotsTable])
}

func TestHistoryStoreNoneBackend(t *testing.T) {
	store, err := NewHistoryStore(schema.NoneBackend, "")
	require.NoError(t, err)

	id, err := store.BeginLoad("loc.csv", time.Now(), nil)
	require.NoError(t, err)
	assert.Zero(t, id)
	assert.NoError(t, store.RecordCommits(id, sampleSnapshotCommits()))
	assert.NoError(t, store.EndLoad(id, time.Now(), 1, 1))

	runs, err := store.GetAllLoadRuns()
	require.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
}

func TestEndLoadUnknownID(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, tempDB(t, "history.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	assert.Error(t, store.EndLoad(42, time.Now(), 0, 0))
}

func TestMigrateHistory(t *testing.T) {
	path := tempDB(t, "history.db")

	require.NoError(t, MigrateHistory(schema.SQLiteBackend, path, -1))
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, path, -1), "second run is a no-op")

	store, err := NewHistoryStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	recordLoad(t, store, time.Now())
	require.NoError(t, store.Close())

	require.NoError(t, MigrateHistory(schema.SQLiteBackend, path, 1))
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, path, 0))

	assert.Error(t, MigrateHistory(schema.NoneBackend, "", -1))
}

func TestExecuteHistoryExport(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, tempDB(t, "history.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	prefix := tempDB(t, "history")
	assert.ErrorIs(t, ExecuteHistoryExport(store, prefix), ErrNoHistory)
	assert.ErrorContains(t, ExecuteHistoryExport(store, ""), "--output-file is required")

	recordLoad(t, store, time.Now())
	require.NoError(t, ExecuteHistoryExport(store, prefix))

	for _, suffix := range []string{".load_runs.parquet", ".commit_snapshots.parquet"} {
		info, err := os.Stat(prefix + suffix)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestPrintHistoryStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintHistoryStatus(&buf, schema.HistoryStatus{
		Backend:      "sqlite",
		Connected:    true,
		TotalLoads:   3,
		LastLoadID:   3,
		LastLoadTime: time.Now(),
		OldestLoad:   time.Now().Add(-time.Hour),
		TotalCommits: 12000,
		TableSizes:   map[string]int64{commitSnapshotsTable: 12000, loadRunsTable: 3},
	})
	out := buf.String()
	assert.Contains(t, out, "Total Commits Loaded: 12,000")
	assert.Contains(t, out, "  locscope_commit_snapshots: 12,000 rows\n  locscope_load_runs: 3 rows")
}
