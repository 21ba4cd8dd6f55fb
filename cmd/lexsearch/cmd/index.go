package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/lexsearch/internal/async"
	"github.com/Aman-CERP/lexsearch/internal/extract"
	"github.com/Aman-CERP/lexsearch/internal/index"
	"github.com/Aman-CERP/lexsearch/internal/keywords"
	"github.com/Aman-CERP/lexsearch/internal/logging"
	"github.com/Aman-CERP/lexsearch/internal/output"
	"github.com/Aman-CERP/lexsearch/internal/partition"
	"github.com/Aman-CERP/lexsearch/internal/scanner"
	"github.com/Aman-CERP/lexsearch/internal/ui"
	"github.com/Aman-CERP/lexsearch/internal/watcher"
)

// indexOptions holds CLI flags for index.
type indexOptions struct {
	noTUI     bool
	watch     bool
	skipCheck bool
	enumerate string   // overrides enumeration.mode when set
	roots     []string // added to enumeration.roots
}

func newIndexCmd() *cobra.Command {
	var opts indexOptions

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the keyword index",
		Long: `Build the keyword index and the autocomplete vocabulary.

Stages:
  1. Enumerate documents into the partition files (script, builtin or none)
  2. Collect the partition files
  3. Extract keywords from every document, one worker per partition
  4. Keep each document's most frequent keywords
  5. Save the index
  6. Build and save the autocomplete vocabulary

Press q or Ctrl+C to cancel. Cancellation takes effect when the current
stage finishes; the previous index is kept.

With --watch the command keeps running and re-indexes from the partition
files whenever they change.`,
		Example: `  # Index using the configured enumeration script
  lexsearch index

  # Walk a directory instead of running the script
  lexsearch index --enumerate builtin --root ~/Documents

  # Re-index whenever the partition files change
  lexsearch index --watch --no-tui`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, err := openProject(".")
			if err != nil {
				return err
			}
			defer p.Close()

			return p.index(ctx, cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.noTUI, "no-tui", false, "Disable TUI mode, use plain text output")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Re-index when the partition files change")
	cmd.Flags().StringVar(&opts.enumerate, "enumerate", "", "Enumeration mode: script, builtin, none (default from config)")
	cmd.Flags().BoolVar(&opts.skipCheck, "skip-check", false, "Skip the checks run before indexing")
	cmd.Flags().StringSliceVar(&opts.roots, "root", nil, "Directory to walk in builtin mode (repeatable)")

	return cmd
}

// index runs one indexing pass and, with --watch, keeps re-indexing on
// partition file changes until ctx is done.
func (p *project) index(ctx context.Context, out io.Writer, opts indexOptions) error {
	mode := p.cfg.Enumeration.Mode
	if opts.enumerate != "" {
		mode = opts.enumerate
	}
	switch mode {
	case scanner.ModeScript, scanner.ModeBuiltin, scanner.ModeNone:
	default:
		return fmt.Errorf("invalid --enumerate %q: must be script, builtin or none", mode)
	}
	p.cfg.Enumeration.Mode = mode
	p.cfg.Enumeration.Roots = append(p.cfg.Enumeration.Roots, absPaths(opts.roots)...)

	if !opts.skipCheck {
		if err := p.preflight(ctx); err != nil {
			return err
		}
	}

	res := p.runIndex(ctx, out, mode, opts.noTUI)
	if !opts.watch {
		return resultError(res)
	}
	if ctx.Err() != nil {
		return nil
	}
	if res.Outcome == index.OutcomeFailed {
		p.logger.Warn("watch_initial_run_failed", slog.String("error", res.Err.Error()))
	}

	return p.watch(ctx, out, opts.noTUI)
}

// runIndex runs the pipeline in the background while the renderer consumes
// its events.
func (p *project) runIndex(ctx context.Context, out io.Writer, mode string, noTUI bool) *index.Result {
	st, err := p.store()
	if err != nil {
		return failedResult(err)
	}

	bg := async.NewBackgroundIndexer(async.IndexerConfig{DataDir: p.cfg.DataDir()})

	orch, err := index.New(index.Config{
		PartitionFolder:  p.cfg.Indexing.PartitionFolder,
		PartitionPattern: p.cfg.Indexing.PartitionPattern,
		PartitionCount:   p.cfg.Indexing.ProcessCount,
		TopKeywords:      p.cfg.Indexing.TopKeywordsPerDoc,
		AutocompleteSize: p.cfg.Autocomplete.Size,
		VocabularyPath:   p.cfg.Output.AutocompletePath,
		AtomicWrites:     p.cfg.Output.AtomicWrites,
		MaxBackups:       p.cfg.Output.Backups,
	}, index.Dependencies{
		Enumerator: p.enumerator(mode),
		Texts: extract.NewRegistry(p.cfg.Indexing.SupportedFormats,
			extract.WithLogger(logging.WithComponent(p.logger, "extract"))),
		Keywords: keywords.NewExtractor(),
		Store:    st,
		Reporter: bg.Reporter(),
		Metrics:  p.metrics,
		Logger:   logging.WithComponent(p.logger, "index"),
	})
	if err != nil {
		return failedResult(err)
	}

	renderer := ui.NewRenderer(ui.NewConfig(out,
		ui.WithForcePlain(noTUI),
		ui.WithNoColor(noColor || ui.DetectNoColor()),
		ui.WithTitle(p.cfg.Output.IndexPath),
		ui.WithOnCancel(bg.Cancel),
	))
	if err := renderer.Start(ctx); err != nil {
		p.logger.Warn("renderer_start_failed", slog.String("error", err.Error()))
	}
	defer func() { _ = renderer.Stop() }()

	if err := bg.Start(ctx, orch); err != nil {
		res := failedResult(err)
		renderer.Complete(ui.StatsFromResult(res))
		return res
	}

	ui.Consume(renderer, bg.Events())
	res := bg.Wait()
	renderer.Complete(ui.StatsFromResult(res))
	return res
}

// enumerator returns the enumerator for mode, or nil for ModeNone.
func (p *project) enumerator(mode string) scanner.Enumerator {
	logger := logging.WithComponent(p.logger, "scanner")
	switch mode {
	case scanner.ModeScript:
		e := scanner.NewScriptEnumerator(p.cfg.Enumeration.Script, p.cfg.EnumerationTimeout(), logger)
		e.Dir = p.root
		e.Env = []string{
			"LEXSEARCH_PARTITION_FOLDER=" + p.cfg.Indexing.PartitionFolder,
			"LEXSEARCH_PROCESS_COUNT=" + strconv.Itoa(p.cfg.Indexing.ProcessCount),
			"LEXSEARCH_SUPPORTED_FORMATS=" + strings.Join(p.cfg.Indexing.SupportedFormats, " "),
		}
		return e
	case scanner.ModeBuiltin:
		return &scanner.WalkEnumerator{
			Roots:   p.cfg.Enumeration.Roots,
			Formats: p.cfg.Indexing.SupportedFormats,
			Exclude: p.cfg.Enumeration.Exclude,
			Folder:  p.cfg.Indexing.PartitionFolder,
			Pattern: p.cfg.Indexing.PartitionPattern,
			Count:   p.cfg.Indexing.ProcessCount,
			Logger:  logger,
		}
	default:
		return nil
	}
}

// watch re-indexes from the existing partition files after every debounced
// batch of changes in the partition folder.
func (p *project) watch(ctx context.Context, out io.Writer, noTUI bool) error {
	folder := p.cfg.Indexing.PartitionFolder
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("failed to create partition folder: %w", err)
	}

	w := watcher.New(watcher.Options{
		DebounceWindow: p.cfg.WatchDebounce(),
		Match:          partition.Matcher(p.cfg.Indexing.PartitionPattern),
		Logger:         logging.WithComponent(p.logger, "watcher"),
	})

	watchErr := make(chan error, 1)
	go func() { watchErr <- w.Start(ctx, folder) }()

	msg := output.New(out)
	msg.Statusf("👀", "Watching %s for partition changes (Ctrl+C to stop)", folder)

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return nil
		case err := <-watchErr:
			return err
		case err := <-w.Errors():
			msg.Warningf("watch error: %v", err)
		case batch, ok := <-w.Events():
			if !ok {
				return nil
			}
			p.logger.Info("watch_reindex", slog.Int("changes", len(batch)))
			msg.Statusf("🔄", "%d partition file(s) changed, re-indexing", len(batch))
			res := p.runIndex(ctx, out, scanner.ModeNone, noTUI)
			if res.Outcome == index.OutcomeFailed {
				msg.Warningf("re-index failed: %v", res.Err)
			}
		}
	}
}

// resultError turns a failed run into the command's error. Cancellation is
// not an error: the previous index is kept.
func resultError(res *index.Result) error {
	if res.Outcome == index.OutcomeFailed {
		return res.Err
	}
	return nil
}

func failedResult(err error) *index.Result {
	return &index.Result{Outcome: index.OutcomeFailed, Stage: index.StageFailed, Err: err}
}

func absPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out = append(out, p)
	}
	return out
}
