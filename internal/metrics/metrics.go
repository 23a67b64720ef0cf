// Package metrics is a small backend-agnostic facade for counters and
// histograms. Callers record through the package-level helpers; the process
// wires a concrete backend once at startup with SetBackend.
//
// Until a backend is set every call is a no-op.
package metrics

import (
	"sync"
	"time"
)

// Metric names. Backends map these to their own naming scheme.
const (
	FilesTotal         = "lessonkit_files_total"
	RunDurationSeconds = "lessonkit_run_duration_seconds"
	JournalErrorsTotal = "lessonkit_journal_errors_total"
)

// Labels are metric dimensions.
type Labels map[string]string

// Backend receives recorded values.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
}

// flusher is implemented by backends that buffer.
type flusher interface {
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs b as the process-wide backend. A nil b restores the
// no-op backend.
func SetBackend(b Backend) {
	if b == nil {
		b = nopBackend{}
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// IncCounter adds delta to the named counter.
func IncCounter(name string, delta float64, labels Labels) {
	current().IncCounter(name, delta, labels)
}

// ObserveHistogram records one sample for the named histogram.
func ObserveHistogram(name string, value float64, labels Labels) {
	current().ObserveHistogram(name, value, labels)
}

// Flush asks the backend to submit buffered values. Backends that do not
// buffer return nil.
func Flush() error {
	if f, ok := current().(flusher); ok {
		return f.Flush()
	}
	return nil
}

// RecordFile counts one processed file for tool with its final status.
func RecordFile(tool, status string) {
	IncCounter(FilesTotal, 1, Labels{"tool": tool, "status": status})
}

// RecordRun observes the wall time of one tool run.
func RecordRun(tool string, d time.Duration) {
	ObserveHistogram(RunDurationSeconds, d.Seconds(), Labels{"tool": tool})
}

// RecordJournalError counts a failed journal write.
func RecordJournalError(tool string) {
	IncCounter(JournalErrorsTotal, 1, Labels{"tool": tool})
}
