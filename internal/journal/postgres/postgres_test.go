package postgres

import (
	"strings"
	"testing"
	"time"

	"lessonkit/internal/journal"
)

// TestBuildSchemaSQL verifies the DDL is idempotent and uses native types.
func TestBuildSchemaSQL(t *testing.T) {
	t.Parallel()

	stmts := buildSchemaSQL()
	if len(stmts) != 2 {
		t.Fatalf("statements=%d, want 2", len(stmts))
	}
	for _, s := range stmts {
		if !strings.Contains(s, "IF NOT EXISTS") {
			t.Fatalf("statement is not idempotent: %s", s)
		}
	}
	for _, want := range []string{"BIGSERIAL PRIMARY KEY", "recorded_at TIMESTAMPTZ", "written BOOLEAN"} {
		if !strings.Contains(stmts[0], want) {
			t.Fatalf("DDL missing %q:\n%s", want, stmts[0])
		}
	}
	for _, c := range journal.Columns {
		if !strings.Contains(stmts[0], "\t"+c+" ") {
			t.Fatalf("DDL missing column %s", c)
		}
	}
}

// TestBuildRecentSQL verifies the placeholder style and ordering.
func TestBuildRecentSQL(t *testing.T) {
	t.Parallel()

	q := buildRecentSQL()
	if !strings.HasPrefix(q, "SELECT id, run_id, tool,") {
		t.Fatalf("unexpected select list: %s", q)
	}
	if !strings.HasSuffix(q, "FROM lessonkit_journal ORDER BY id DESC LIMIT $1") {
		t.Fatalf("unexpected tail: %s", q)
	}
}

// TestCopyRows verifies rows are produced in Columns order.
func TestCopyRows(t *testing.T) {
	t.Parallel()

	at := time.Unix(1700000000, 0)
	src := copyRows([]journal.Entry{
		{RunID: "r1", File: "a.html", RecordedAt: at},
		{RunID: "r1", File: "b.html", RecordedAt: at},
	})

	var files []string
	for src.Next() {
		vals, err := src.Values()
		if err != nil {
			t.Fatalf("Values: %v", err)
		}
		if len(vals) != len(journal.Columns) {
			t.Fatalf("values=%d, want %d", len(vals), len(journal.Columns))
		}
		files = append(files, vals[2].(string))
	}
	if strings.Join(files, ",") != "a.html,b.html" {
		t.Fatalf("files=%v", files)
	}
}
