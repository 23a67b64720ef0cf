// Package mssql is the SQL Server journal backend.
//
// It uses database/sql with the "sqlserver" driver name; the driver itself is
// linked by lessonkit/internal/journal/all.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"lessonkit/internal/journal"
)

// maxParams stays under SQL Server's 2100 parameter limit per statement.
const maxParams = 2000

type Repo struct {
	db *sql.DB
}

func init() {
	journal.Register("mssql", New)
}

// New opens cfg.DSN with the "sqlserver" driver and pings it.
func New(ctx context.Context, cfg journal.Config) (journal.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() {
	if r == nil || r.db == nil {
		return
	}
	_ = r.db.Close()
}

func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, buildSchemaSQL()); err != nil {
		return fmt.Errorf("mssql: create %s: %w", journal.Table, err)
	}
	return nil
}

// buildSchemaSQL wraps CREATE TABLE in an OBJECT_ID guard, since SQL Server
// has no CREATE TABLE IF NOT EXISTS.
func buildSchemaSQL() string {
	defs := strings.Join([]string{
		"[id] BIGINT IDENTITY(1,1) PRIMARY KEY",
		"[run_id] UNIQUEIDENTIFIER NOT NULL",
		"[tool] NVARCHAR(64) NOT NULL",
		"[file] NVARCHAR(400) NOT NULL",
		"[status] NVARCHAR(32) NOT NULL",
		"[detail] NVARCHAR(MAX) NOT NULL DEFAULT N''",
		"[sha256_before] CHAR(64) NULL",
		"[sha256_after] CHAR(64) NULL",
		"[size_before] BIGINT NOT NULL DEFAULT 0",
		"[size_after] BIGINT NOT NULL DEFAULT 0",
		"[written] BIT NOT NULL DEFAULT 0",
		"[recorded_at] DATETIMEOFFSET NOT NULL",
	}, ", ")
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL BEGIN CREATE TABLE [%s] (%s); END;", journal.Table, journal.Table, defs)
}

// Append inserts entries with multi-row INSERT statements inside one
// transaction.
func (r *Repo) Append(ctx context.Context, entries []journal.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	per := maxParams / len(journal.Columns)
	for start := 0; start < len(entries); start += per {
		end := start + per
		if end > len(entries) {
			end = len(entries)
		}
		q, args := buildInsertSQL(entries[start:end])
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("mssql: insert into %s: %w", journal.Table, err)
		}
	}
	return tx.Commit()
}

func buildInsertSQL(entries []journal.Entry) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO [")
	b.WriteString(journal.Table)
	b.WriteString("] (")
	for i, c := range journal.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("[" + c + "]")
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(entries)*len(journal.Columns))
	p := 1
	for i, e := range entries {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j, v := range e.Values() {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "@p%d", p)
			p++
			args = append(args, nullIfEmpty(j, v))
		}
		b.WriteString(")")
	}
	return b.String(), args
}

// nullIfEmpty stores missing hashes as NULL; CHAR(64) would pad "" to blanks.
func nullIfEmpty(col int, v any) any {
	name := journal.Columns[col]
	if s, ok := v.(string); ok && s == "" && strings.HasPrefix(name, "sha256_") {
		return nil
	}
	return v
}

// Recent returns up to limit entries, newest first.
func (r *Repo) Recent(ctx context.Context, limit int) ([]journal.Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, buildRecentSQL(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []journal.Entry
	for rows.Next() {
		var (
			e             journal.Entry
			before, after sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.Tool, &e.File, &e.Status, &e.Detail,
			&before, &after, &e.SizeBefore, &e.SizeAfter, &e.Written, &e.RecordedAt); err != nil {
			return nil, err
		}
		e.SHA256Before = before.String
		e.SHA256After = after.String
		e.RunID = strings.ToLower(e.RunID)
		out = append(out, e)
	}
	return out, rows.Err()
}

func buildRecentSQL() string {
	cols := make([]string, 0, len(journal.Columns)+1)
	cols = append(cols, "[id]")
	for _, c := range journal.Columns {
		if c == "run_id" {
			cols = append(cols, "CONVERT(NVARCHAR(36), [run_id])")
			continue
		}
		cols = append(cols, "["+c+"]")
	}
	return fmt.Sprintf("SELECT TOP (@p1) %s FROM [%s] ORDER BY [id] DESC", strings.Join(cols, ", "), journal.Table)
}
