package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hazz-dev/kbprobe/internal/probe"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS probe_results (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    probe       TEXT    NOT NULL,
    status      TEXT    NOT NULL CHECK(status IN ('pass', 'fail')),
    duration_ms INTEGER NOT NULL,
    detail      TEXT    NOT NULL DEFAULT '',
    error       TEXT    NOT NULL DEFAULT '',
    checked_at  TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_probe ON probe_results(probe);
CREATE INDEX IF NOT EXISTS idx_results_checked_at ON probe_results(checked_at DESC);
CREATE INDEX IF NOT EXISTS idx_results_probe_checked ON probe_results(probe, checked_at DESC);
`

// Result is a stored probe result.
type Result struct {
	ID         int64     `json:"id"`
	Probe      string    `json:"probe"`
	Status     string    `json:"status"`
	DurationMs int64     `json:"duration_ms"`
	Detail     string    `json:"detail"`
	Error      string    `json:"error"`
	CheckedAt  time.Time `json:"checked_at"`
}

// DB wraps a SQLite database.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and applies the schema.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite at %q: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// InsertResult persists a probe result.
func (d *DB) InsertResult(ctx context.Context, r probe.CheckResult) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO probe_results (probe, status, duration_ms, detail, error, checked_at) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ProbeName,
		string(r.Status),
		r.Duration.Milliseconds(),
		r.Detail,
		r.Error,
		r.CheckedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting result for %q: %w", r.ProbeName, err)
	}
	return nil
}

// LatestResult returns the most recent result for the given probe, or nil if none.
func (d *DB) LatestResult(ctx context.Context, probeName string) (*Result, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, probe, status, duration_ms, detail, error, checked_at FROM probe_results WHERE probe = ? ORDER BY checked_at DESC LIMIT 1`,
		probeName,
	)
	r, err := scanResult(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest result for %q: %w", probeName, err)
	}
	return r, nil
}

// History returns paginated result history for a probe plus the total count.
func (d *DB) History(ctx context.Context, probeName string, limit, offset int) ([]Result, int, error) {
	var total int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM probe_results WHERE probe = ?`, probeName,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting results for %q: %w", probeName, err)
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT id, probe, status, duration_ms, detail, error, checked_at FROM probe_results WHERE probe = ? ORDER BY checked_at DESC LIMIT ? OFFSET ?`,
		probeName, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("querying history for %q: %w", probeName, err)
	}
	defer rows.Close()

	results, err := scanResults(rows)
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// AllLatest returns the most recent result for each probe.
func (d *DB) AllLatest(ctx context.Context) ([]Result, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, probe, status, duration_ms, detail, error, checked_at
		FROM probe_results
		WHERE id IN (
			SELECT MAX(id) FROM probe_results GROUP BY probe
		)
		ORDER BY probe
	`)
	if err != nil {
		return nil, fmt.Errorf("querying all latest: %w", err)
	}
	defer rows.Close()
	return scanResults(rows)
}

// UptimePercent returns the percentage of passing results in the last N runs
// of a probe.
func (d *DB) UptimePercent(ctx context.Context, probeName string, last int) (float64, error) {
	var total int
	var passCount sql.NullInt64
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*), SUM(CASE WHEN status = 'pass' THEN 1 ELSE 0 END)
		FROM (
			SELECT status FROM probe_results WHERE probe = ? ORDER BY checked_at DESC LIMIT ?
		)
	`, probeName, last).Scan(&total, &passCount)
	if err != nil {
		return 0, fmt.Errorf("calculating uptime for %q: %w", probeName, err)
	}
	if total == 0 {
		return 0, nil
	}
	return float64(passCount.Int64) / float64(total) * 100, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (*Result, error) {
	var r Result
	var checkedAt string
	err := row.Scan(&r.ID, &r.Probe, &r.Status, &r.DurationMs, &r.Detail, &r.Error, &checkedAt)
	if err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, checkedAt)
	if err != nil {
		// Fallback to RFC3339 without sub-second precision.
		t, err = time.Parse(time.RFC3339, checkedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing checked_at %q: %w", checkedAt, err)
		}
	}
	r.CheckedAt = t
	return &r, nil
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		results = append(results, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating result rows: %w", err)
	}
	return results, nil
}
