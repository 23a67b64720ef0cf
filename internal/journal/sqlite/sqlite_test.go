package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"lessonkit/internal/journal"
)

// TestRepo_RoundTrip verifies schema creation, append and newest-first reads
// against a real database file.
func TestRepo_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "journal.db")

	repo, err := journal.Open(ctx, journal.Config{Kind: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer repo.Close()

	// A second EnsureSchema must be a no-op.
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema again: %v", err)
	}

	at := time.Date(2026, 3, 1, 10, 0, 0, 123456789, time.UTC)
	entries := []journal.Entry{
		{RunID: "run-1", Tool: "enhance", File: "learn.html", Status: "enhanced",
			SHA256Before: "aa", SHA256After: "bb", SizeBefore: 100, SizeAfter: 250, Written: true, RecordedAt: at},
		{RunID: "run-1", Tool: "enhance", File: "learn2.html", Status: "not-found",
			Detail: "file does not exist", RecordedAt: at.Add(time.Second)},
	}
	if err := repo.Append(ctx, entries); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := repo.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len=%d, want 2", len(got))
	}
	if got[0].File != "learn2.html" || got[1].File != "learn.html" {
		t.Fatalf("not newest first: %q, %q", got[0].File, got[1].File)
	}
	first := got[1]
	if !first.Written || first.SizeAfter != 250 || first.SHA256After != "bb" || first.Status != "enhanced" {
		t.Fatalf("unexpected entry: %+v", first)
	}
	if !first.RecordedAt.Equal(at) {
		t.Fatalf("recorded_at=%v, want %v", first.RecordedAt, at)
	}
	if got[0].Written || got[0].Detail != "file does not exist" {
		t.Fatalf("unexpected entry: %+v", got[0])
	}

	limited, err := repo.Recent(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("Recent(1)=%d, %v", len(limited), err)
	}
}

// TestParseSQLiteTime covers the accepted layouts.
func TestParseSQLiteTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2026-01-27T12:17:08.123456789Z", want: "2026-01-27T12:17:08.123456789Z"},
		{in: "2026-01-27T13:17:08+01:00", want: "2026-01-27T12:17:08Z"},
		{in: "2026-01-27 12:17:08+00:00", want: "2026-01-27T12:17:08Z"},
		{in: "2026-01-27 12:17:08", want: "2026-01-27T12:17:08Z"},
		{in: "", wantErr: true},
		{in: "yesterday", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseSQLiteTime(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseSQLiteTime(%q) err=%v wantErr=%v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && got.Format(time.RFC3339Nano) != tt.want {
			t.Fatalf("parseSQLiteTime(%q)=%s, want %s", tt.in, got.Format(time.RFC3339Nano), tt.want)
		}
	}
}
