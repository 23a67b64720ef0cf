// Package postgres is the PostgreSQL journal backend built on a pgx pool.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lessonkit/internal/journal"
)

type Repo struct {
	pool *pgxpool.Pool
}

func init() {
	journal.Register("postgres", New)
}

// New creates the pool for cfg.DSN. Connectivity is verified with a ping.
func New(ctx context.Context, cfg journal.Config) (journal.Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Repo{pool: pool}, nil
}

// Close closes the connection pool.
func (r *Repo) Close() {
	r.pool.Close()
}

func (r *Repo) EnsureSchema(ctx context.Context) error {
	for _, stmt := range buildSchemaSQL() {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	return nil
}

func buildSchemaSQL() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS ` + journal.Table + ` (
	id BIGSERIAL PRIMARY KEY,
	run_id TEXT NOT NULL,
	tool TEXT NOT NULL,
	file TEXT NOT NULL,
	status TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	sha256_before TEXT NOT NULL DEFAULT '',
	sha256_after TEXT NOT NULL DEFAULT '',
	size_before BIGINT NOT NULL DEFAULT 0,
	size_after BIGINT NOT NULL DEFAULT 0,
	written BOOLEAN NOT NULL DEFAULT FALSE,
	recorded_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS ` + journal.Table + `_run_idx ON ` + journal.Table + ` (run_id)`,
	}
}

// Append streams entries with COPY.
func (r *Repo) Append(ctx context.Context, entries []journal.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	n, err := r.pool.CopyFrom(ctx, pgx.Identifier{journal.Table}, journal.Columns, copyRows(entries))
	if err != nil {
		return fmt.Errorf("postgres: copy into %s: %w", journal.Table, err)
	}
	if n != int64(len(entries)) {
		return fmt.Errorf("postgres: copied %d of %d entries", n, len(entries))
	}
	return nil
}

func copyRows(entries []journal.Entry) pgx.CopyFromSource {
	rows := make([][]any, len(entries))
	for i, e := range entries {
		rows[i] = e.Values()
	}
	return pgx.CopyFromRows(rows)
}

// Recent returns up to limit entries, newest first.
func (r *Repo) Recent(ctx context.Context, limit int) ([]journal.Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, buildRecentSQL(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []journal.Entry
	for rows.Next() {
		var e journal.Entry
		if err := rows.Scan(&e.ID, &e.RunID, &e.Tool, &e.File, &e.Status, &e.Detail,
			&e.SHA256Before, &e.SHA256After, &e.SizeBefore, &e.SizeAfter, &e.Written, &e.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func buildRecentSQL() string {
	return fmt.Sprintf(`SELECT id, %s FROM %s ORDER BY id DESC LIMIT $1`, strings.Join(journal.Columns, ", "), journal.Table)
}
