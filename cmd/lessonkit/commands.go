package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"lessonkit/internal/content"
	"lessonkit/internal/htmlpatch"
	"lessonkit/internal/inspect"
	"lessonkit/internal/site"
)

func (a *app) enhanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "enhance [pages...]",
		Short: "Inject cheat sheets, takeaways and code examples into lesson pages",
		Long: "Enhance every lesson page named in the lesson table, or only the pages given.\n" +
			"Pages that already carry the sentinel comment are left alone.",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := content.LoadLessons(a.deps.Fs, a.cfg.LessonsFile)
			if err != nil {
				return usageErrorf("%w", err)
			}

			pages := args
			if len(pages) == 0 {
				pages = table.Pages()
			}

			transform := func(name, text string) (string, site.Outcome) {
				l, ok := table.Lookup(name)
				if !ok {
					return text, site.Outcome{Status: site.StatusUnchanged, Detail: "no lesson content"}
				}
				out, res := htmlpatch.Inject(text, l, table.Sentinel(), htmlpatch.DefaultAnchors)
				switch res.Status {
				case htmlpatch.Injected:
					return out, site.Outcome{Status: site.StatusEnhanced, Detail: res.Point.Anchor}
				case htmlpatch.AlreadyEnhanced:
					return out, site.Outcome{Status: site.StatusSkipped}
				default:
					return out, site.Outcome{Status: site.StatusNoAnchor}
				}
			}

			out := cmd.OutOrStdout()
			rep := &site.TextReporter{W: out, DryRun: a.dryRun}
			sum, err := a.runTool(cmd.Context(), "enhance", pages, transform, rep)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\n🏁 Done! Enhanced %d lesson files.\n", sum.Count(site.StatusEnhanced))
			return nil
		},
	}
}

func (a *app) cardsCommand() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Add the lesson cards to the index page and update its lesson count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deck, err := content.LoadCards(a.deps.Fs, a.cfg.CardsFile)
			if err != nil {
				return usageErrorf("%w", err)
			}
			if target == "" {
				target = deck.Target
			}

			transform := func(_ string, text string) (string, site.Outcome) {
				out, res := htmlpatch.PatchCards(text, deck)
				switch {
				case res.Status == htmlpatch.CardsInserted:
					return out, site.Outcome{Status: site.StatusPatched, Detail: res.Point.Anchor}
				case res.Status == htmlpatch.CardsMarkerMissing && res.CountUpdated:
					return out, site.Outcome{Status: site.StatusPatched, Detail: "lesson count only; end-of-cards marker not found"}
				case res.Status == htmlpatch.CardsMarkerMissing:
					return out, site.Outcome{Status: site.StatusNoAnchor}
				case res.CountUpdated:
					return out, site.Outcome{Status: site.StatusPatched, Detail: "lesson count only"}
				default:
					return out, site.Outcome{Status: site.StatusSkipped}
				}
			}

			out := cmd.OutOrStdout()
			rep := &site.TextReporter{
				W:      out,
				DryRun: a.dryRun,
				Labels: map[site.Status]string{
					site.StatusPatched:  "  ✅ Cards added: %s",
					site.StatusSkipped:  "  ⏭️  Cards already present: %s",
					site.StatusNoAnchor: "  ❌ End-of-cards marker not found: %s",
				},
			}
			sum, err := a.runTool(cmd.Context(), "cards", []string{target}, transform, rep)
			if err != nil {
				return err
			}
			if sum.Count(site.StatusPatched) > 0 {
				fmt.Fprintf(out, "Done! %s updated.\n", target)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "index page relative to the site root (default from the card deck)")
	return cmd
}

func (a *app) rewriteCommand() *cobra.Command {
	var (
		helper       string
		host         string
		ports        []int
		ensureScript string
	)

	cmd := &cobra.Command{
		Use:   "rewrite-urls [files...]",
		Short: "Replace hard-coded ws://host:port literals with helper calls",
		Long: "Rewrite quoted WebSocket endpoint literals in learn*.html and client.html, or in\n" +
			"the files given, and make sure each rewritten page loads the helper script.",
		RunE: func(cmd *cobra.Command, args []string) error {
			files := args
			if len(files) == 0 {
				var err error
				files, err = site.ListPages(a.deps.Fs, a.cfg.SiteDir, site.RewriteTargets)
				if err != nil {
					return runtimeError(fmt.Errorf("list pages: %w", err))
				}
			}

			rw := htmlpatch.NewRewriter(htmlpatch.RewriteOptions{Host: host, Ports: ports, Helper: helper})
			call := helper + "("
			if helper == "" {
				call = htmlpatch.DefaultHelper + "("
			}

			transform := func(_ string, text string) (string, site.Outcome) {
				out, n := rw.Rewrite(text)
				added := false
				if ensureScript != "" && strings.Contains(out, call) {
					out, added = htmlpatch.EnsureScript(out, ensureScript)
				}
				if n == 0 && !added {
					return out, site.Outcome{Status: site.StatusUnchanged}
				}
				detail := fmt.Sprintf("%d urls", n)
				if added {
					detail += ", script added"
				}
				return out, site.Outcome{Status: site.StatusPatched, Detail: detail}
			}

			out := cmd.OutOrStdout()
			rep := &site.TextReporter{W: out, DryRun: a.dryRun, OnlyChanged: true}
			sum, err := a.runTool(cmd.Context(), "rewrite-urls", files, transform, rep)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nTotal files patched: %d\n", sum.Count(site.StatusPatched))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&helper, "helper", htmlpatch.DefaultHelper, "client-side function that builds the endpoint URL")
	f.StringVar(&host, "host", htmlpatch.DefaultHost, "hard-coded endpoint host to replace")
	f.IntSliceVar(&ports, "port", nil, "only rewrite these ports (repeatable; default any)")
	f.StringVar(&ensureScript, "ensure-script", htmlpatch.DefaultHelperFile, "script src added to rewritten pages; empty disables")
	return cmd
}

func (a *app) inspectCommand() *cobra.Command {
	var (
		selector string
		textOnly bool
		host     string
	)

	cmd := &cobra.Command{
		Use:   "inspect [pages...]",
		Short: "Audit pages, or print the elements matching a CSS selector",
		RunE: func(cmd *cobra.Command, args []string) error {
			if textOnly && selector == "" {
				return usageErrorf("--text requires --selector")
			}

			pages := args
			if len(pages) == 0 {
				var err error
				pages, err = site.ListPages(a.deps.Fs, a.cfg.SiteDir, site.LessonPages)
				if err != nil {
					return runtimeError(fmt.Errorf("list pages: %w", err))
				}
			}

			opts := inspect.Options{HelperFile: htmlpatch.DefaultHelperFile, Host: host}
			if selector == "" {
				table, err := content.LoadLessons(a.deps.Fs, a.cfg.LessonsFile)
				if err != nil {
					return usageErrorf("%w", err)
				}
				opts.Sentinel = table.Sentinel()
			}

			out := cmd.OutOrStdout()
			for _, p := range pages {
				if err := cmd.Context().Err(); err != nil {
					return err
				}

				b, err := afero.ReadFile(a.deps.Fs, filepath.Join(a.cfg.SiteDir, p))
				if errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrNotExist) {
					fmt.Fprintf(out, "%s: not found\n", p)
					continue
				}
				if err != nil {
					a.log.Error("read failed", "file", p, "error", err)
					a.code = 1
					continue
				}

				if selector != "" {
					if len(pages) > 1 {
						fmt.Fprintf(out, "== %s ==\n", p)
					}
					if err := inspect.PrintSelector(out, string(b), selector, textOnly); err != nil {
						a.log.Error("select failed", "file", p, "selector", selector, "error", err)
						a.code = 1
					}
					continue
				}

				rep, err := inspect.Audit(string(b), opts)
				if err != nil {
					a.log.Error("audit failed", "file", p, "error", err)
					a.code = 1
					continue
				}
				fmt.Fprintf(out, "%s: %s\n", p, rep)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&selector, "selector", "", "print the elements matching this CSS selector instead of auditing")
	f.BoolVar(&textOnly, "text", false, "with --selector, print trimmed text instead of HTML")
	f.StringVar(&host, "host", htmlpatch.DefaultHost, "endpoint host counted as a hard-coded literal")
	return cmd
}

func (a *app) historyCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the most recent journal entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return usageErrorf("--limit must be positive, got %d", limit)
			}
			if a.journal == nil {
				if a.cfg.JournalKind == "none" {
					return usageErrorf("history needs a journal: set --journal and --journal-dsn")
				}
				return runtimeError(errors.New("journal unavailable"))
			}

			entries, err := a.journal.Recent(cmd.Context(), limit)
			if err != nil {
				return runtimeError(fmt.Errorf("journal recent: %w", err))
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RECORDED\tRUN\tTOOL\tFILE\tSTATUS\tWRITTEN\tDETAIL")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					e.RecordedAt.UTC().Format(time.RFC3339),
					shortRunID(e.RunID),
					e.Tool,
					e.File,
					e.Status,
					yesNo(e.Written),
					e.Detail,
				)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries to show")
	return cmd
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
