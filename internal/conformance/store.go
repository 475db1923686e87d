package conformance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	dir         TEXT NOT NULL,
	started_at  INTEGER NOT NULL,
	finished_at INTEGER,
	passed      INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS results (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	path        TEXT NOT NULL,
	passed      INTEGER NOT NULL,
	message     TEXT NOT NULL,
	duration_ns INTEGER NOT NULL,
	PRIMARY KEY (run_id, path)
);
`

// Store keeps conformance runs and their results in SQLite so runs can be
// compared over time.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// BeginRun records the start of a run.
func (s *Store) BeginRun(ctx context.Context, run *Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, dir, started_at) VALUES (?, ?, ?)`,
		run.ID, run.Dir, run.StartedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("begin run %s: %w", run.ID, err)
	}
	return nil
}

// Record stores the outcome of one test.
func (s *Store) Record(ctx context.Context, runID string, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO results (run_id, path, passed, message, duration_ns) VALUES (?, ?, ?, ?, ?)`,
		runID, r.Path, r.Passed, r.Message, int64(r.Duration))
	if err != nil {
		return fmt.Errorf("record %s: %w", r.Path, err)
	}
	return nil
}

// FinishRun stores the totals of a completed run.
func (s *Store) FinishRun(ctx context.Context, run *Run) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, passed = ?, failed = ? WHERE id = ?`,
		run.FinishedAt.UnixNano(), run.Passed, run.Failed, run.ID)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", run.ID, err)
	}
	return nil
}

// Results lists the results of a run ordered by path.
func (s *Store) Results(ctx context.Context, runID string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, passed, message, duration_ns FROM results WHERE run_id = ? ORDER BY path`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var ns int64
		if err := rows.Scan(&r.Path, &r.Passed, &r.Message, &ns); err != nil {
			return nil, err
		}
		r.Duration = time.Duration(ns)
		results = append(results, r)
	}
	return results, rows.Err()
}

// PreviousRun returns the id of the latest finished run over dir that
// started before the run with the given id. ok is false if there is none.
func (s *Store) PreviousRun(ctx context.Context, dir, runID string) (id string, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT id FROM runs
		WHERE dir = ? AND finished_at IS NOT NULL AND id <> ?
		  AND started_at <= (SELECT started_at FROM runs WHERE id = ?)
		ORDER BY started_at DESC LIMIT 1`, dir, runID, runID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

// Regressions lists the tests that passed in base and fail in runID.
func (s *Store) Regressions(ctx context.Context, base, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cur.path FROM results cur
		JOIN results prev ON prev.path = cur.path AND prev.run_id = ?
		WHERE cur.run_id = ? AND prev.passed = 1 AND cur.passed = 0
		ORDER BY cur.path`, base, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
