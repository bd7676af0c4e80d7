package iocache

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/leen324/locscope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempDB(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

func TestCacheStoreRoundTrip(t *testing.T) {
	store, err := NewCacheStore(ingestTable, schema.SQLiteBackend, tempDB(t, "cache.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, _, _, err = store.Get("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, store.Set("k1", []byte("first"), 1, 100))
	require.NoError(t, store.Set("k1", []byte("second"), 2, 200))

	value, version, ts, err := store.Get("k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), value)
	assert.Equal(t, 2, version)
	assert.Equal(t, int64(200), ts)
}

func TestCacheStoreStatus(t *testing.T) {
	store, err := NewCacheStore(ingestTable, schema.SQLiteBackend, tempDB(t, "cache.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalEntries)

	now := time.Now().Unix()
	require.NoError(t, store.Set("a", []byte("x"), 1, now-60))
	require.NoError(t, store.Set("b", []byte("y"), 1, now))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, now, status.LastEntryTime.Unix())
	assert.Equal(t, now-60, status.OldestEntryTime.Unix())
	assert.Positive(t, status.TableSizeBytes)
}

func TestCacheStoreNoneBackend(t *testing.T) {
	store, err := NewCacheStore(ingestTable, schema.NoneBackend, "")
	require.NoError(t, err)

	require.NoError(t, store.Set("k", []byte("v"), 1, 1))
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestCacheStoreRejectsBadInput(t *testing.T) {
	_, err := NewCacheStore("bad-table; DROP", schema.SQLiteBackend, tempDB(t, "cache.db"))
	assert.ErrorContains(t, err, "invalid table name")

	_, err = NewCacheStore(ingestTable, schema.DatabaseBackend("oracle"), "")
	assert.ErrorContains(t, err, "unsupported backend")
}

func TestQuoteAndPlaceholders(t *testing.T) {
	assert.Equal(t, "`t`", quoteTableName("t", schema.MySQLBackend))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.PostgreSQLBackend))
	assert.Equal(t, []any{"$1", "$2"}, placeholders(schema.PostgreSQLBackend, 2))
	assert.Equal(t, []any{"?", "?"}, placeholders(schema.SQLiteBackend, 2))
}

func TestInitCachingAndClear(t *testing.T) {
	cachePath := tempDB(t, "cache.db")
	historyPath := tempDB(t, "history.db")
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	t.Cleanup(func() { Manager = &CacheStoreManager{} })

	require.NoError(t, InitCaching(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, historyPath))
	require.NoError(t, InitCaching(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, historyPath))
	assert.NotNil(t, Manager.GetIngestStore())
	assert.NotNil(t, Manager.GetHistoryStore())

	CloseCaching()
	CloseCaching()

	_, err := os.Stat(cachePath)
	require.NoError(t, err)
	require.NoError(t, ClearCache(schema.SQLiteBackend, cachePath, ""))
	_, err = os.Stat(cachePath)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, ClearHistory(schema.SQLiteBackend, historyPath, ""))
	require.NoError(t, ClearHistory(schema.SQLiteBackend, historyPath, ""), "clearing twice is fine")
	assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
}

func TestNewManagerWithoutBackends(t *testing.T) {
	mgr, err := NewManager("", "", "", "")
	require.NoError(t, err)
	assert.Nil(t, mgr.GetIngestStore())
	assert.Nil(t, mgr.GetHistoryStore())
	mgr.Close()
}

func TestPrintCacheStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintCacheStatus(&buf, schema.CacheStatus{
		Backend:         "sqlite",
		Connected:       true,
		TotalEntries:    1200,
		LastEntryTime:   time.Now(),
		OldestEntryTime: time.Now().Add(-48 * time.Hour),
		TableSizeBytes:  2048,
	})
	out := buf.String()
	assert.Contains(t, out, "Total Entries: 1,200")
	assert.Contains(t, out, "Table Size: 2.0 kB")
	assert.Contains(t, out, "2 days ago")

	buf.Reset()
	PrintCacheStatus(&buf, schema.CacheStatus{Backend: "none"})
	assert.NotContains(t, buf.String(), "Total Entries")
}
