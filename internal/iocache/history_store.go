package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/leen324/locscope/internal/contract"
	"github.com/leen324/locscope/schema"
)

// Table names for load history.
const (
	loadRunsTable        = "locscope_load_runs"
	commitSnapshotsTable = "locscope_commit_snapshots"
)

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables creates the load history tables when migrations have not been run.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{loadRunsTable, getCreateLoadRunsQuery(backend)},
		{commitSnapshotsTable, getCreateCommitSnapshotsQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateLoadRunsQuery returns the CREATE TABLE query for locscope_load_runs.
func getCreateLoadRunsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(loadRunsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				load_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				source VARCHAR(1024) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				duration_ms INT,
				total_records INT NOT NULL DEFAULT 0,
				total_commits INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				load_id BIGSERIAL PRIMARY KEY,
				source TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				duration_ms INT,
				total_records INT NOT NULL DEFAULT 0,
				total_commits INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				load_id INTEGER PRIMARY KEY AUTOINCREMENT,
				source TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				duration_ms INTEGER,
				total_records INTEGER NOT NULL DEFAULT 0,
				total_commits INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)
	}
}

// getCreateCommitSnapshotsQuery returns the CREATE TABLE query for locscope_commit_snapshots.
func getCreateCommitSnapshotsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(commitSnapshotsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				load_id BIGINT NOT NULL,
				commit_id VARCHAR(64) NOT NULL,
				author VARCHAR(255) NOT NULL,
				commit_time DATETIME(6),
				hour_frac DOUBLE,
				total_lines INT NOT NULL,
				PRIMARY KEY (load_id, commit_id)
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				load_id BIGINT NOT NULL,
				commit_id TEXT NOT NULL,
				author TEXT NOT NULL,
				commit_time TIMESTAMPTZ,
				hour_frac DOUBLE PRECISION,
				total_lines INT NOT NULL,
				PRIMARY KEY (load_id, commit_id)
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				load_id INTEGER NOT NULL,
				commit_id TEXT NOT NULL,
				author TEXT NOT NULL,
				commit_time TEXT,
				hour_frac REAL,
				total_lines INTEGER NOT NULL,
				PRIMARY KEY (load_id, commit_id)
			);
		`, quoted)
	}
}

// BeginLoad creates a new load run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginLoad(source string, startTime time.Time, configParams map[string]any) (int64, error) {
	if hs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quoted := quoteTableName(loadRunsTable, hs.backend)
	ph := placeholders(hs.backend, 3)

	var loadID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (source, start_time, config_params) VALUES (%s, %s, %s) RETURNING load_id`, append([]any{quoted}, ph...)...)
		err = hs.db.QueryRow(query, source, startTime, string(configJSON)).Scan(&loadID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (source, start_time, config_params) VALUES (%s, %s, %s)`, append([]any{quoted}, ph...)...)
		var result sql.Result
		result, err = hs.db.Exec(query, source, formatTime(startTime, hs.backend), string(configJSON))
		if err == nil {
			loadID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert load run: %w", err)
	}
	return loadID, nil
}

// EndLoad updates the load run with completion data.
func (hs *HistoryStoreImpl) EndLoad(loadID int64, endTime time.Time, totalRecords, totalCommits int) error {
	if hs.db == nil {
		return nil
	}

	quoted := quoteTableName(loadRunsTable, hs.backend)
	ph := placeholders(hs.backend, 1)

	start := timeScanner{backend: hs.backend}
	row := hs.db.QueryRow(fmt.Sprintf(`SELECT start_time FROM %s WHERE load_id = %s`, quoted, ph[0]), loadID)
	if err := row.Scan(start.target()); err != nil {
		return fmt.Errorf("failed to get start_time for load %d: %w", loadID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}
	var durationMs int64
	if startTime != nil {
		durationMs = endTime.Sub(*startTime).Milliseconds()
	}

	ph = placeholders(hs.backend, 5)
	query := fmt.Sprintf(`UPDATE %s SET end_time = %s, duration_ms = %s, total_records = %s, total_commits = %s WHERE load_id = %s`,
		append([]any{quoted}, ph...)...)
	if _, err := hs.db.Exec(query, formatTime(endTime, hs.backend), durationMs, totalRecords, totalCommits, loadID); err != nil {
		return fmt.Errorf("failed to update load run: %w", err)
	}
	return nil
}

// RecordCommits stores the per-commit summaries of a load in one transaction.
func (hs *HistoryStoreImpl) RecordCommits(loadID int64, commits []schema.Commit) error {
	if hs.db == nil || len(commits) == 0 {
		return nil
	}

	tx, err := hs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`INSERT INTO %s (load_id, commit_id, author, commit_time, hour_frac, total_lines) VALUES (%s, %s, %s, %s, %s, %s)`,
		append([]any{quoteTableName(commitSnapshotsTable, hs.backend)}, placeholders(hs.backend, 6)...)...)
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare commit insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range commits {
		if _, err := stmt.Exec(loadID, c.ID, c.Author, nullableTime(c.DateTime, hs.backend), c.HourFrac, c.TotalLines); err != nil {
			return fmt.Errorf("failed to insert commit %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(loadRunsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalLoads); err != nil {
		return status, fmt.Errorf("failed to get total loads: %w", err)
	}

	if status.TotalLoads > 0 {
		last := timeScanner{backend: hs.backend}
		row := hs.db.QueryRow(fmt.Sprintf("SELECT load_id, start_time FROM %s ORDER BY load_id DESC LIMIT 1", quotedRuns))
		if err := row.Scan(&status.LastLoadID, last.target()); err != nil {
			return status, fmt.Errorf("failed to get last load info: %w", err)
		}
		if t, err := last.value(); err != nil {
			return status, err
		} else if t != nil {
			status.LastLoadTime = *t
		}

		oldest := timeScanner{backend: hs.backend}
		row = hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY load_id ASC LIMIT 1", quotedRuns))
		if err := row.Scan(oldest.target()); err != nil {
			return status, fmt.Errorf("failed to get oldest load time: %w", err)
		}
		if t, err := oldest.value(); err != nil {
			return status, err
		} else if t != nil {
			status.OldestLoad = *t
		}

		row = hs.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(total_commits), 0) FROM %s", quotedRuns))
		if err := row.Scan(&status.TotalCommits); err != nil {
			return status, fmt.Errorf("failed to get total commits: %w", err)
		}
	}

	for _, table := range []string{loadRunsTable, commitSnapshotsTable} {
		var count int64
		if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllLoadRuns retrieves all load runs, oldest first.
func (hs *HistoryStoreImpl) GetAllLoadRuns() ([]schema.LoadRunRecord, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT load_id, source, start_time, end_time, duration_ms, total_records, total_commits, config_params FROM %s ORDER BY load_id",
		quoteTableName(loadRunsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query load runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.LoadRunRecord
	for rows.Next() {
		var record schema.LoadRunRecord
		start := timeScanner{backend: hs.backend}
		end := timeScanner{backend: hs.backend}
		if err := rows.Scan(&record.LoadID, &record.Source, start.target(), end.target(),
			&record.DurationMs, &record.TotalRecords, &record.TotalCommits, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan load run: %w", err)
		}

		startTime, err := start.value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			record.StartTime = *startTime
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating load runs: %w", err)
	}
	return results, nil
}

// GetAllCommitSnapshots retrieves every recorded commit summary.
func (hs *HistoryStoreImpl) GetAllCommitSnapshots() ([]schema.CommitSnapshotRecord, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT load_id, commit_id, author, commit_time, hour_frac, total_lines FROM %s ORDER BY load_id, commit_id",
		quoteTableName(commitSnapshotsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query commit snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.CommitSnapshotRecord
	for rows.Next() {
		var record schema.CommitSnapshotRecord
		commitTime := timeScanner{backend: hs.backend}
		if err := rows.Scan(&record.LoadID, &record.CommitID, &record.Author, commitTime.target(),
			&record.HourFrac, &record.TotalLines); err != nil {
			return nil, fmt.Errorf("failed to scan commit snapshot: %w", err)
		}
		if record.CommitTime, err = commitTime.value(); err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commit snapshots: %w", err)
	}
	return results, nil
}
