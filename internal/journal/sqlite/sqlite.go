// Package sqlite is the SQLite journal backend (modernc.org/sqlite, no cgo).
//
// SQLite has no timestamp type; recorded_at is stored as RFC3339Nano text so
// it round-trips exactly and sorts lexically.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"lessonkit/internal/journal"
)

type Repo struct {
	db *sql.DB
}

func init() {
	journal.Register("sqlite", New)
}

// New opens the database named by cfg.DSN (a file path or "file:" URI).
func New(ctx context.Context, cfg journal.Config) (journal.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	// One writer at a time; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTableSQL()); err != nil {
		return fmt.Errorf("create table %s: %w", journal.Table, err)
	}
	if _, err := r.db.ExecContext(ctx, createIndexSQL()); err != nil {
		return fmt.Errorf("create index on %s: %w", journal.Table, err)
	}
	return nil
}

func createTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS ` + journal.Table + ` (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	tool TEXT NOT NULL,
	file TEXT NOT NULL,
	status TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	sha256_before TEXT NOT NULL DEFAULT '',
	sha256_after TEXT NOT NULL DEFAULT '',
	size_before INTEGER NOT NULL DEFAULT 0,
	size_after INTEGER NOT NULL DEFAULT 0,
	written INTEGER NOT NULL DEFAULT 0,
	recorded_at TEXT NOT NULL
)`
}

func createIndexSQL() string {
	return `CREATE INDEX IF NOT EXISTS ` + journal.Table + `_run_idx ON ` + journal.Table + ` (run_id)`
}

func insertSQL() string {
	ph := strings.TrimRight(strings.Repeat("?,", len(journal.Columns)), ",")
	return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, journal.Table, strings.Join(journal.Columns, ", "), ph)
}

// Append inserts entries in a single transaction.
func (r *Repo) Append(ctx context.Context, entries []journal.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertSQL())
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		args := e.Values()
		args[9] = boolInt(e.Written)
		args[10] = e.RecordedAt.UTC().Format(time.RFC3339Nano)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %s: %w", e.File, err)
		}
	}
	return tx.Commit()
}

// Recent returns up to limit entries, newest first.
func (r *Repo) Recent(ctx context.Context, limit int) ([]journal.Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	q := fmt.Sprintf(`SELECT id, %s FROM %s ORDER BY id DESC LIMIT ?`, strings.Join(journal.Columns, ", "), journal.Table)
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []journal.Entry
	for rows.Next() {
		var (
			e       journal.Entry
			written int64
			at      string
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.Tool, &e.File, &e.Status, &e.Detail,
			&e.SHA256Before, &e.SHA256After, &e.SizeBefore, &e.SizeAfter, &written, &at); err != nil {
			return nil, err
		}
		e.Written = written != 0
		if e.RecordedAt, err = parseSQLiteTime(at); err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// parseSQLiteTime accepts RFC3339 text and SQLite's own datetime formats.
// Values without a zone are taken as UTC.
func parseSQLiteTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time string")
	}

	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999Z07:00",
	} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	if ts, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.UTC); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %q", s)
}
