package main

import (
	"context"
	"fmt"

	"lessonkit/internal/journal"
	"lessonkit/internal/metrics"
	"lessonkit/internal/site"
)

// runTool drives one site pass and wires the standard observers: the text
// reporter, per-file metrics and, when enabled, the journal.
func (a *app) runTool(ctx context.Context, tool string, files []string, fn site.TransformFunc, rep *site.TextReporter) (site.Summary, error) {
	observers := []site.Observer{rep, metricsObserver(tool)}
	if a.journal != nil {
		observers = append(observers, a.journalObserver(tool))
	}

	log := a.log.With("tool", tool)
	runner := site.NewRunner(a.deps.Fs, site.Options{
		Root:      a.cfg.SiteDir,
		DryRun:    a.dryRun,
		Log:       log,
		Observers: observers,
		Now:       a.deps.Now,
	})

	log.Info("run started", "site", a.cfg.SiteDir, "files", len(files), "dry_run", a.dryRun)
	start := a.deps.Now()
	sum, err := runner.Run(ctx, files, fn)
	metrics.RecordRun(tool, a.deps.Now().Sub(start))

	log.Info("run finished",
		"files", len(sum.Results),
		"changed", sum.Changed(),
		"errors", sum.Count(site.StatusError),
		"observer_errors", sum.ObserverErrors,
	)
	if err != nil {
		return sum, err
	}
	if sum.Failed() {
		a.code = 1
	}
	return sum, nil
}

func metricsObserver(tool string) site.Observer {
	return site.ObserverFunc(func(_ context.Context, r site.Result) error {
		metrics.RecordFile(tool, string(r.Status))
		return nil
	})
}

// journalObserver appends one entry per file. A failed append is counted and
// reported to the runner, which keeps going.
func (a *app) journalObserver(tool string) site.Observer {
	return site.ObserverFunc(func(ctx context.Context, r site.Result) error {
		e := journal.Entry{
			RunID:        a.runID,
			Tool:         tool,
			File:         r.File,
			Status:       string(r.Status),
			Detail:       r.Detail,
			SHA256Before: r.SHA256Before,
			SHA256After:  r.SHA256After,
			SizeBefore:   r.SizeBefore,
			SizeAfter:    r.SizeAfter,
			Written:      r.Written,
			RecordedAt:   r.At,
		}
		if err := a.journal.Append(ctx, []journal.Entry{e}); err != nil {
			metrics.RecordJournalError(tool)
			return fmt.Errorf("journal append: %w", err)
		}
		return nil
	})
}
