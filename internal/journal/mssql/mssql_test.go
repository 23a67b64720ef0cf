package mssql

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"lessonkit/internal/journal"
)

// TestBuildSchemaSQL verifies the OBJECT_ID guard keeps the DDL idempotent.
func TestBuildSchemaSQL(t *testing.T) {
	t.Parallel()

	q := buildSchemaSQL()
	if !strings.HasPrefix(q, "IF OBJECT_ID(N'lessonkit_journal', N'U') IS NULL BEGIN CREATE TABLE [lessonkit_journal] (") {
		t.Fatalf("unexpected prefix: %s", q)
	}
	for _, c := range journal.Columns {
		if !strings.Contains(q, "["+c+"] ") {
			t.Fatalf("DDL missing column %s", c)
		}
	}
	if !strings.HasSuffix(q, "); END;") {
		t.Fatalf("unexpected suffix: %s", q)
	}
}

// TestBuildInsertSQL verifies numbered placeholders across rows and NULL hashes.
func TestBuildInsertSQL(t *testing.T) {
	t.Parallel()

	at := time.Unix(1700000000, 0)
	q, args := buildInsertSQL([]journal.Entry{
		{RunID: "r", File: "a.html", SHA256Before: "x", RecordedAt: at},
		{RunID: "r", File: "b.html", RecordedAt: at},
	})

	n := len(journal.Columns)
	if len(args) != 2*n {
		t.Fatalf("args=%d, want %d", len(args), 2*n)
	}
	if !strings.Contains(q, "(@p1, @p2,") || !strings.Contains(q, "@p"+strconv.Itoa(2*n)+")") {
		t.Fatalf("unexpected placeholders: %s", q)
	}
	if strings.Contains(q, "@p"+strconv.Itoa(2*n+1)) {
		t.Fatalf("too many placeholders: %s", q)
	}
	if args[5] != "x" || args[6] != nil {
		t.Fatalf("hash args: before=%v after=%v", args[5], args[6])
	}
	if args[n+5] != nil {
		t.Fatalf("empty hash not NULL: %v", args[n+5])
	}
}

// TestBuildRecentSQL verifies TOP with a parameter and newest-first ordering.
func TestBuildRecentSQL(t *testing.T) {
	t.Parallel()

	q := buildRecentSQL()
	if !strings.HasPrefix(q, "SELECT TOP (@p1) [id], CONVERT(NVARCHAR(36), [run_id]), [tool]") {
		t.Fatalf("unexpected select: %s", q)
	}
	if !strings.HasSuffix(q, "FROM [lessonkit_journal] ORDER BY [id] DESC") {
		t.Fatalf("unexpected tail: %s", q)
	}
}
