// Package history stores a summary of every analysis run in a local SQLite
// database.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	database_name TEXT NOT NULL,
	schema_name   TEXT,
	adapter       TEXT,
	dbms          TEXT,
	started_at    DATETIME DEFAULT CURRENT_TIMESTAMP,
	duration_ms   INTEGER,
	tables        INTEGER,
	views         INTEGER,
	constraints   INTEGER,
	anomalies     INTEGER,
	error         TEXT
)`

const selectColumns = `id, database_name, schema_name, adapter, dbms, started_at,
	duration_ms, tables, views, constraints, anomalies, error`

// Run summarises one analysis.
type Run struct {
	ID          int64
	Database    string
	Schema      string
	Adapter     string
	Dbms        string
	StartedAt   time.Time
	DurationMS  int64
	Tables      int
	Views       int
	Constraints int
	Anomalies   int
	// Error is empty for a successful run.
	Error string
}

// Failed reports whether the run ended with an error.
func (r Run) Failed() bool { return r.Error != "" }

// History provides SQLite-backed run storage.
type History struct {
	db *sql.DB
}

// Open opens (or creates) the run database at path and ensures the schema
// exists.
func Open(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("history: create dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create table: %w", err)
	}

	return &History{db: db}, nil
}

// Add inserts r and returns its id.
func (h *History) Add(r Run) (int64, error) {
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	res, err := h.db.Exec(
		`INSERT INTO runs (database_name, schema_name, adapter, dbms, started_at,
			duration_ms, tables, views, constraints, anomalies, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Database, r.Schema, r.Adapter, r.Dbms, r.StartedAt.UTC(),
		r.DurationMS, r.Tables, r.Views, r.Constraints, r.Anomalies, r.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("history add: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns the most recent runs, newest first.
func (h *History) Recent(limit int) ([]Run, error) {
	rows, err := h.db.Query(
		`SELECT `+selectColumns+`
		 FROM runs
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history recent: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// ForDatabase returns the most recent runs against one database, newest first.
func (h *History) ForDatabase(name string, limit int) ([]Run, error) {
	rows, err := h.db.Query(
		`SELECT `+selectColumns+`
		 FROM runs
		 WHERE database_name = ?
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`,
		name, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history for database: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// Clear deletes all runs.
func (h *History) Clear() error {
	if _, err := h.db.Exec(`DELETE FROM runs`); err != nil {
		return fmt.Errorf("history clear: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (h *History) Close() error {
	return h.db.Close()
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var (
			r                         Run
			schemaName, adapter, dbms sql.NullString
			errText                   sql.NullString
		)
		if err := rows.Scan(
			&r.ID,
			&r.Database,
			&schemaName,
			&adapter,
			&dbms,
			&r.StartedAt,
			&r.DurationMS,
			&r.Tables,
			&r.Views,
			&r.Constraints,
			&r.Anomalies,
			&errText,
		); err != nil {
			return nil, fmt.Errorf("history scan: %w", err)
		}
		r.Schema = schemaName.String
		r.Adapter = adapter.String
		r.Dbms = dbms.String
		r.Error = errText.String
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history rows: %w", err)
	}
	return runs, nil
}
