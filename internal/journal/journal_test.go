package journal

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRepo struct {
	ensured   bool
	ensureErr error
	closed    bool
}

func (f *fakeRepo) Close()                                       { f.closed = true }
func (f *fakeRepo) EnsureSchema(context.Context) error           { f.ensured = true; return f.ensureErr }
func (f *fakeRepo) Append(context.Context, []Entry) error        { return nil }
func (f *fakeRepo) Recent(context.Context, int) ([]Entry, error) { return nil, nil }

// TestOpen_EnsuresSchema verifies Open runs EnsureSchema on the new repository.
func TestOpen_EnsuresSchema(t *testing.T) {
	repo := &fakeRepo{}
	Register("fake-ok", func(context.Context, Config) (Repository, error) { return repo, nil })

	got, err := Open(context.Background(), Config{Kind: "fake-ok"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got != repo || !repo.ensured {
		t.Fatalf("schema not ensured")
	}
}

// TestOpen_SchemaErrorCloses verifies a failed EnsureSchema closes the repository.
func TestOpen_SchemaErrorCloses(t *testing.T) {
	repo := &fakeRepo{ensureErr: errors.New("denied")}
	Register("fake-schema", func(context.Context, Config) (Repository, error) { return repo, nil })

	if _, err := Open(context.Background(), Config{Kind: "fake-schema"}); err == nil {
		t.Fatalf("expected error")
	}
	if !repo.closed {
		t.Fatalf("repository left open")
	}
}

// TestOpen_Unsupported verifies unknown kinds map to ErrUnsupportedKind.
func TestOpen_Unsupported(t *testing.T) {
	_, err := Open(context.Background(), Config{Kind: "carrier-pigeon"})
	if !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("err=%v, want ErrUnsupportedKind", err)
	}
}

// TestRegister_Panics verifies the fail-fast registration rules.
func TestRegister_Panics(t *testing.T) {
	f := func(context.Context, Config) (Repository, error) { return &fakeRepo{}, nil }
	Register("fake-dup", f)

	cases := map[string]func(){
		"empty":     func() { Register("", f) },
		"nil":       func() { Register("fake-nil", nil) },
		"duplicate": func() { Register("fake-dup", f) },
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic")
				}
			}()
			fn()
		})
	}
}

// TestEntryValues verifies values line up with Columns.
func TestEntryValues(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	e := Entry{RunID: "r", Tool: "enhance", File: "learn.html", Status: "enhanced", SizeAfter: 10, Written: true, RecordedAt: at}
	v := e.Values()
	if len(v) != len(Columns) {
		t.Fatalf("values=%d columns=%d", len(v), len(Columns))
	}
	if v[2] != "learn.html" || v[8] != int64(10) || v[9] != true {
		t.Fatalf("unexpected values: %v", v)
	}
	if ts := v[10].(time.Time); ts.Location() != time.UTC || !ts.Equal(at) {
		t.Fatalf("recorded_at not normalized to UTC: %v", ts)
	}
}
