package site

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// DefaultLabels are the human-readable prefixes used by TextReporter.
var DefaultLabels = map[Status]string{
	StatusEnhanced:  "  ✅ Enhanced: %s",
	StatusPatched:   "Patched %s",
	StatusSkipped:   "  ⏭️  Already enhanced: %s",
	StatusUnchanged: "  · Unchanged: %s",
	StatusNotFound:  "  ⚠️  File not found: %s",
	StatusNoAnchor:  "  ❌ No injection point found: %s",
	StatusError:     "  ❌ Error: %s",
}

// TextReporter prints one line per Result.
type TextReporter struct {
	W io.Writer
	// Labels overrides DefaultLabels per status. Each value is a format with
	// a single %s for the file name.
	Labels map[Status]string
	// OnlyChanged suppresses files whose text did not change. Errors are
	// always printed.
	OnlyChanged bool
	// DryRun prefixes every line with "[dry-run] ".
	DryRun bool

	mu sync.Mutex
}

func (t *TextReporter) Observe(_ context.Context, r Result) error {
	if t.OnlyChanged && !r.Changed && r.Status != StatusError {
		return nil
	}

	format, ok := t.Labels[r.Status]
	if !ok {
		format, ok = DefaultLabels[r.Status]
	}
	if !ok {
		format = string(r.Status) + ": %s"
	}

	line := fmt.Sprintf(format, r.File)
	if r.Status == StatusError && r.Detail != "" {
		line += " (" + r.Detail + ")"
	}
	if t.DryRun {
		line = "[dry-run] " + line
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintln(t.W, line)
	return err
}
