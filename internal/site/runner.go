// Package site applies pure document transforms to the pages of a tutorial
// site, one file at a time, and reports a status per file.
//
// No per-file condition stops a batch: missing files, files without an anchor
// and I/O failures are all recorded as statuses and the runner moves on.
package site

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"lessonkit/internal/logger"
)

// Status is the outcome of one file.
type Status string

const (
	StatusEnhanced  Status = "enhanced"
	StatusPatched   Status = "patched"
	StatusSkipped   Status = "skipped"
	StatusUnchanged Status = "unchanged"
	StatusNotFound  Status = "not-found"
	StatusNoAnchor  Status = "no-anchor"
	StatusError     Status = "error"
)

// Outcome is what a transform reports for one document.
type Outcome struct {
	Status Status
	Detail string
}

// TransformFunc maps one document to its new text. It must not touch the
// filesystem; name is the file name relative to the site root.
type TransformFunc func(name, text string) (string, Outcome)

// Result is the record of one processed file.
type Result struct {
	File   string
	Status Status
	Detail string

	SHA256Before string
	SHA256After  string
	SizeBefore   int64
	SizeAfter    int64

	// Changed reports the transform produced different text.
	Changed bool
	// Written reports the new text was stored. False on dry runs.
	Written bool

	Err error
	At  time.Time
}

// Observer receives every Result as soon as it is known.
type Observer interface {
	Observe(ctx context.Context, r Result) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, r Result) error

func (f ObserverFunc) Observe(ctx context.Context, r Result) error { return f(ctx, r) }

// Options configures a Runner.
type Options struct {
	Root      string
	DryRun    bool
	Log       *logger.Logger
	Observers []Observer
	Now       func() time.Time
}

// Runner processes files under Root on an afero filesystem.
type Runner struct {
	fs        afero.Fs
	root      string
	dryRun    bool
	log       *logger.Logger
	observers []Observer
	now       func() time.Time
}

// NewRunner returns a Runner over fsys.
func NewRunner(fsys afero.Fs, opts Options) *Runner {
	r := &Runner{
		fs:        fsys,
		root:      opts.Root,
		dryRun:    opts.DryRun,
		log:       opts.Log,
		observers: opts.Observers,
		now:       opts.Now,
	}
	if r.root == "" {
		r.root = "."
	}
	if r.log == nil {
		r.log = logger.Nop()
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Run applies fn to each named file in order. It returns early only when ctx
// is cancelled, and then returns the results gathered so far with ctx.Err().
func (r *Runner) Run(ctx context.Context, files []string, fn TransformFunc) (Summary, error) {
	var sum Summary
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		res := r.processFile(name, fn)
		res.At = r.now()
		sum.add(res)

		r.log.Debug("file processed", "file", res.File, "status", string(res.Status), "written", res.Written)
		if res.Err != nil {
			r.log.Warn("file failed", "file", res.File, "error", res.Err)
		}

		for _, o := range r.observers {
			if err := o.Observe(ctx, res); err != nil {
				sum.ObserverErrors++
				r.log.Error("observer failed", "file", res.File, "error", err)
			}
		}
	}
	return sum, nil
}

func (r *Runner) processFile(name string, fn TransformFunc) Result {
	res := Result{File: name}
	path := filepath.Join(r.root, name)

	info, err := r.fs.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrNotExist) {
		res.Status = StatusNotFound
		res.Detail = path
		return res
	}
	if err != nil {
		return failed(res, fmt.Errorf("stat %s: %w", path, err))
	}
	if info.IsDir() {
		return failed(res, fmt.Errorf("%s is a directory", path))
	}

	b, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return failed(res, fmt.Errorf("read %s: %w", path, err))
	}
	before := string(b)
	res.SHA256Before, res.SizeBefore = digest(before)

	after, out := fn(name, before)
	res.Status, res.Detail = out.Status, out.Detail
	res.SHA256After, res.SizeAfter = digest(after)
	res.Changed = after != before

	if !res.Changed {
		if res.Status == StatusEnhanced || res.Status == StatusPatched || res.Status == "" {
			res.Status = StatusUnchanged
		}
		return res
	}
	if res.Status == "" {
		res.Status = StatusPatched
	}
	if r.dryRun {
		return res
	}

	if err := afero.WriteFile(r.fs, path, []byte(after), info.Mode().Perm()); err != nil {
		return failed(res, fmt.Errorf("write %s: %w", path, err))
	}
	res.Written = true
	return res
}

func failed(res Result, err error) Result {
	res.Status = StatusError
	res.Detail = err.Error()
	res.Err = err
	return res
}

func digest(s string) (string, int64) {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:]), int64(len(s))
}

// Summary tallies the results of one Run.
type Summary struct {
	Results        []Result
	ObserverErrors int
}

func (s *Summary) add(r Result) { s.Results = append(s.Results, r) }

// Count returns the number of results with status st.
func (s Summary) Count(st Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == st {
			n++
		}
	}
	return n
}

// Changed returns the number of files whose text changed.
func (s Summary) Changed() int {
	n := 0
	for _, r := range s.Results {
		if r.Changed {
			n++
		}
	}
	return n
}

// Failed reports whether any file errored or any observer failed.
func (s Summary) Failed() bool {
	return s.ObserverErrors > 0 || s.Count(StatusError) > 0
}
