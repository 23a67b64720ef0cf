// Command lessonkit maintains the static WebSocket tutorial site: it injects
// beginner reference sections into lesson pages, adds navigation cards to the
// index, rewrites hard-coded endpoint URLs and audits the result.
//
// Usage:
//
//	lessonkit enhance [pages...]
//	lessonkit cards [--target index.html]
//	lessonkit rewrite-urls [--helper getWsUrl] [--port 8080] [files...]
//	lessonkit inspect [--selector S [--text]] [pages...]
//	lessonkit history [--limit 20]
//
// Every file is reported on stdout; logs go to stderr.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"lessonkit/internal/config"
	"lessonkit/internal/journal"
	_ "lessonkit/internal/journal/all"
	"lessonkit/internal/logger"
	"lessonkit/internal/metrics"
	"lessonkit/internal/metrics/datadog"
)

// metricsBackend is what run needs from a metrics backend: recording plus a
// final flush on shutdown.
type metricsBackend interface {
	metrics.Backend
	Close() error
}

// deps are the process resources run depends on. Tests swap them out.
type deps struct {
	Stdout     io.Writer
	Stderr     io.Writer
	Fs         afero.Fs
	Getenv     func(string) string
	DotEnvPath string
	Now        func() time.Time
	NewRunID   func() string

	NewMetricsBackend func(ctx context.Context, opts datadog.Options) (metricsBackend, error)
	OpenJournal       func(ctx context.Context, cfg journal.Config) (journal.Repository, error)
}

func defaultDeps() deps {
	return deps{
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Fs:         afero.NewOsFs(),
		Getenv:     os.Getenv,
		DotEnvPath: ".env",
		Now:        time.Now,
		NewRunID:   uuid.NewString,
		NewMetricsBackend: func(ctx context.Context, opts datadog.Options) (metricsBackend, error) {
			return datadog.NewBackend(ctx, opts)
		},
		OpenJournal: journal.Open,
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], defaultDeps())
	stop()
	os.Exit(code)
}

// exitError carries an exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageErrorf(format string, a ...any) error {
	return &exitError{code: 2, err: fmt.Errorf(format, a...)}
}

func runtimeError(err error) error {
	return &exitError{code: 1, err: err}
}

// run executes the command line and returns a Unix-style exit code:
//   - 0 for success, including skipped, missing and anchorless files
//   - 1 for I/O errors on any file or a failing journal/metrics backend
//   - 2 for usage and configuration errors
func run(ctx context.Context, args []string, d deps) int {
	cfg, err := config.Load(d.Fs, d.DotEnvPath, d.Getenv)
	if err != nil {
		fmt.Fprintf(d.Stderr, "lessonkit: config: %v\n", err)
		return 2
	}

	a := &app{deps: d, cfg: cfg, log: logger.Nop()}
	root := a.rootCommand()
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(d.Stdout)
	root.SetErr(d.Stderr)

	err = root.ExecuteContext(ctx)
	a.teardown()

	if err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			fmt.Fprintf(d.Stderr, "lessonkit: %v\n", ee.err)
			return ee.code
		}
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(d.Stderr, "lessonkit: interrupted")
			return 1
		}
		// Anything else comes from cobra's argument and flag parsing.
		fmt.Fprintf(d.Stderr, "lessonkit: %v\n", err)
		return 2
	}
	return a.code
}

// app is the state shared by every subcommand of one invocation.
type app struct {
	deps deps
	cfg  config.Config

	dryRun bool

	log     *logger.Logger
	logRoot *logger.Logger
	runID   string
	metrics metricsBackend
	journal journal.Repository

	// code is raised to 1 by failures that do not stop the command.
	code int
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "lessonkit",
		Short:         "Maintain the WebSocket tutorial site",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfg.SiteDir, "site", a.cfg.SiteDir, "site root directory ($"+config.EnvSiteDir+")")
	pf.StringVar(&a.cfg.LessonsFile, "lessons", a.cfg.LessonsFile, "lesson content YAML; embedded table when empty ($"+config.EnvLessonsFile+")")
	pf.StringVar(&a.cfg.CardsFile, "cards", a.cfg.CardsFile, "card deck YAML; embedded deck when empty ($"+config.EnvCardsFile+")")
	pf.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "debug, info, warn or error ($"+config.EnvLogLevel+")")
	pf.StringVar(&a.cfg.LogMode, "log-mode", a.cfg.LogMode, "dev or prod ($"+config.EnvLogMode+")")
	pf.StringVar(&a.cfg.LogFile, "log-file", a.cfg.LogFile, "also write JSON logs to this rotated file ($"+config.EnvLogFile+")")
	pf.StringVar(&a.cfg.MetricsBackend, "metrics-backend", a.cfg.MetricsBackend, "none or datadog ($"+config.EnvMetricsBackend+")")
	pf.StringVar(&a.cfg.MetricsTags, "metrics-tags", a.cfg.MetricsTags, "extra comma-separated metric tags ($"+config.EnvMetricsTags+")")
	pf.StringVar(&a.cfg.JournalKind, "journal", a.cfg.JournalKind, "none, sqlite, postgres or mssql ($"+config.EnvJournalKind+")")
	pf.StringVar(&a.cfg.JournalDSN, "journal-dsn", a.cfg.JournalDSN, "journal connection string ($"+config.EnvJournalDSN+")")
	pf.BoolVar(&a.dryRun, "dry-run", false, "report what would change without writing files")

	root.AddCommand(
		a.enhanceCommand(),
		a.cardsCommand(),
		a.rewriteCommand(),
		a.inspectCommand(),
		a.historyCommand(),
	)
	return root
}

// setup validates the configuration and wires logging, metrics and the
// journal. Metrics and journal failures degrade to disabled and raise the
// exit code; they never prevent the command from running.
func (a *app) setup(cmd *cobra.Command) error {
	if err := a.cfg.Validate(); err != nil {
		return &exitError{code: 2, err: err}
	}

	log, err := logger.New(logger.Options{
		Mode:   a.cfg.LogMode,
		Level:  a.cfg.LogLevel,
		Writer: a.deps.Stderr,
		File:   a.cfg.LogFile,
	})
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	a.logRoot = log
	a.runID = a.deps.NewRunID()
	a.log = log.With("run_id", a.runID, "command", cmd.Name())

	ctx := cmd.Context()

	if a.cfg.MetricsBackend == "datadog" {
		b, err := a.deps.NewMetricsBackend(ctx, datadog.Options{
			JobName: "lessonkit",
			Tags:    datadog.ParseTagsCSV(a.cfg.MetricsTags),
		})
		if err != nil {
			a.log.Warn("metrics disabled", "backend", a.cfg.MetricsBackend, "error", err)
			a.code = 1
		} else {
			a.metrics = b
			metrics.SetBackend(b)
			a.log.Debug("metrics enabled", "backend", a.cfg.MetricsBackend)
		}
	}

	if a.cfg.JournalKind != "none" {
		repo, err := a.deps.OpenJournal(ctx, journal.Config{Kind: a.cfg.JournalKind, DSN: a.cfg.JournalDSN})
		if err != nil {
			a.log.Error("journal disabled", "kind", a.cfg.JournalKind, "dsn", a.cfg.JournalDSN, "error", err)
			a.code = 1
		} else {
			a.journal = repo
			a.log.Debug("journal enabled", "kind", a.cfg.JournalKind)
		}
	}
	return nil
}

func (a *app) teardown() {
	if a.metrics != nil {
		if err := metrics.Flush(); err != nil {
			a.log.Warn("metrics flush failed", "error", err)
			a.code = 1
		}
		metrics.SetBackend(nil)
		if err := a.metrics.Close(); err != nil {
			a.log.Warn("metrics close failed", "error", err)
			a.code = 1
		}
		a.metrics = nil
	}
	if a.journal != nil {
		a.journal.Close()
		a.journal = nil
	}
	if a.logRoot != nil {
		a.logRoot.Sync()
	}
}
