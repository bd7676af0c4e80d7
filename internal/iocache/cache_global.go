package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/leen324/locscope/internal/contract"
	"github.com/leen324/locscope/schema"
)

// ingestTable is the name of the table for ingest caching.
const ingestTable = "locscope_ingest_cache"

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetDBFilePath returns the path to the SQLite DB file for cache storage.
func GetDBFilePath() string {
	return contract.GetCacheDBFilePath()
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for load history.
func GetHistoryDBFilePath() string {
	return contract.GetHistoryDBFilePath()
}

// InitCaching initializes the global cache manager with separate ingest and history stores.
// An empty backend leaves the corresponding store unset.
func InitCaching(cacheBackend schema.DatabaseBackend, cacheConnStr string, historyBackend schema.DatabaseBackend, historyConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		ingest, history, err := openStores(cacheBackend, cacheConnStr, historyBackend, historyConnStr)
		if err != nil {
			initErr = err
			return
		}
		Manager.Lock()
		defer Manager.Unlock()
		Manager.ingest = ingest
		Manager.history = history
	})

	return initErr
}

// NewManager opens a standalone manager, mainly for tests and tools that must not share the global one.
func NewManager(cacheBackend schema.DatabaseBackend, cacheConnStr string, historyBackend schema.DatabaseBackend, historyConnStr string) (*CacheStoreManager, error) {
	ingest, history, err := openStores(cacheBackend, cacheConnStr, historyBackend, historyConnStr)
	if err != nil {
		return nil, err
	}
	return &CacheStoreManager{ingest: ingest, history: history}, nil
}

func openStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, historyBackend schema.DatabaseBackend, historyConnStr string) (contract.CacheStore, contract.HistoryStore, error) {
	var ingest contract.CacheStore
	var err error
	if cacheBackend != "" {
		ingest, err = NewCacheStore(ingestTable, cacheBackend, cacheConnStr)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize ingest caching: %w", err)
		}
	}

	var history contract.HistoryStore
	if historyBackend != "" {
		history, err = NewHistoryStore(historyBackend, historyConnStr)
		if err != nil {
			if ingest != nil {
				_ = ingest.Close()
			}
			return nil, nil, fmt.Errorf("failed to initialize history store: %w", err)
		}
	}
	return ingest, history, nil
}

// Close releases both stores.
func (mgr *CacheStoreManager) Close() {
	mgr.Lock()
	defer mgr.Unlock()
	if mgr.ingest != nil {
		_ = mgr.ingest.Close()
	}
	if mgr.history != nil {
		_ = mgr.history.Close()
	}
}

// CloseCaching should be called on application shutdown.
func CloseCaching() { // called in main defer
	closeOnce.Do(Manager.Close)
}

// ClearCache clears the ingest cache for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, ingestTable)
}

// ClearHistory clears the load history for the specified backend.
func ClearHistory(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, loadRunsTable, commitSnapshotsTable, migrationsTable)
}

func clearBackend(backend schema.DatabaseBackend, dbFilePath, connStr string, tables ...string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		driverName, _ := driverFor(backend)
		for _, table := range tables {
			if err := clearSQLTable(driverName, connStr, quoteTableName(table, backend)); err != nil {
				return err
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(driverName, connStr, quotedTable string) error {
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", quotedTable)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", quotedTable, err)
	}
	return nil
}
