// Package snapshot persists per-run aggregate summaries as an append-only
// log, so week-over-week deltas are a pure function of two stored runs.
package snapshot

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_ts TEXT NOT NULL,
    scope TEXT NOT NULL,
    key TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    payload TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_scope_ts ON snapshots(scope, run_ts);
`

// Scopes of stored aggregates.
const (
	ScopeManager = "manager"
	ScopeChannel = "channel"
)

// Row is one aggregate entry: a stable key (manager id or channel), a display
// name, and the numeric metrics of that run. A metric absent from the map is
// undefined for the run, not zero.
type Row struct {
	Key     string
	Name    string
	Metrics map[string]float64
}

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init snapshot schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Append writes one run's rows for a scope. Entries are never updated or
// deleted; every run adds a new generation.
func (s *Store) Append(runTS time.Time, scope string, rows []Row) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO snapshots (run_ts, scope, key, name, payload) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	ts := runTS.UTC().Format(time.RFC3339)
	for _, r := range rows {
		payload, err := json.Marshal(r.Metrics)
		if err != nil {
			return fmt.Errorf("encode snapshot row %q: %w", r.Key, err)
		}
		if _, err := stmt.Exec(ts, scope, r.Key, r.Name, string(payload)); err != nil {
			return fmt.Errorf("insert snapshot row %q: %w", r.Key, err)
		}
	}
	return tx.Commit()
}

// Prior returns the rows of the most recent run strictly earlier than runTS
// for a scope, keyed by row key. ok=false when no earlier run exists.
func (s *Store) Prior(runTS time.Time, scope string) (map[string]Row, bool, error) {
	ts := runTS.UTC().Format(time.RFC3339)

	var priorTS sql.NullString
	err := s.db.QueryRow(
		`SELECT MAX(run_ts) FROM snapshots WHERE scope = ? AND run_ts < ?`, scope, ts,
	).Scan(&priorTS)
	if err != nil {
		return nil, false, err
	}
	if !priorTS.Valid {
		return nil, false, nil
	}

	rows, err := s.db.Query(
		`SELECT key, name, payload FROM snapshots WHERE scope = ? AND run_ts = ?`, scope, priorTS.String,
	)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	out := map[string]Row{}
	for rows.Next() {
		var r Row
		var payload string
		if err := rows.Scan(&r.Key, &r.Name, &payload); err != nil {
			return nil, false, err
		}
		if err := json.Unmarshal([]byte(payload), &r.Metrics); err != nil {
			return nil, false, fmt.Errorf("decode snapshot row %q: %w", r.Key, err)
		}
		out[r.Key] = r
	}
	return out, true, rows.Err()
}
