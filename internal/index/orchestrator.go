// Package index runs the indexing pipeline as a cancellable state machine.
//
// A run moves through enumeration, partition collection, parallel batch
// processing, keyword refinement, index persistence and autocomplete
// generation. Cancellation is cooperative: it is checked only between
// stages, and a stage that has started always completes. The stores written
// before a failure or a late cancellation are rolled back to their pre-run
// content.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Aman-CERP/lexsearch/internal/autocomplete"
	"github.com/Aman-CERP/lexsearch/internal/batch"
	lexerrors "github.com/Aman-CERP/lexsearch/internal/errors"
	"github.com/Aman-CERP/lexsearch/internal/keywords"
	"github.com/Aman-CERP/lexsearch/internal/partition"
	"github.com/Aman-CERP/lexsearch/internal/scanner"
	"github.com/Aman-CERP/lexsearch/internal/store"
	"github.com/Aman-CERP/lexsearch/internal/telemetry"
)

// Config holds the run parameters.
type Config struct {
	// PartitionFolder holds the partition files.
	PartitionFolder string

	// PartitionPattern names partition files (default pdf_part_%d.txt).
	PartitionPattern string

	// PartitionCount is the number of partitions checked (default 8).
	PartitionCount int

	// TopKeywords bounds each document's keyword set (default 150).
	TopKeywords int

	// AutocompleteSize is the vocabulary size (default 100).
	AutocompleteSize int

	// VocabularyPath is the autocomplete output file.
	VocabularyPath string

	// AtomicWrites selects temp-file-and-rename for the vocabulary file.
	AtomicWrites bool

	// MaxBackups is the number of pre-run backups kept (default 3).
	MaxBackups int
}

func (c *Config) applyDefaults() {
	if c.PartitionPattern == "" {
		c.PartitionPattern = partition.DefaultPattern
	}
	if c.PartitionCount <= 0 {
		c.PartitionCount = 8
	}
	if c.TopKeywords <= 0 {
		c.TopKeywords = keywords.DefaultTopN
	}
	if c.AutocompleteSize <= 0 {
		c.AutocompleteSize = autocomplete.DefaultSize
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = store.DefaultMaxBackups
	}
}

// Dependencies are the components a run drives.
type Dependencies struct {
	// Enumerator writes the partition files. Nil skips enumeration.
	Enumerator scanner.Enumerator

	// Texts reads document text (required).
	Texts batch.TextSource

	// Keywords extracts keywords (default keywords.NewExtractor()).
	Keywords batch.KeywordExtractor

	// Store persists the index (required).
	Store store.IndexStore

	Reporter Reporter
	Metrics  *telemetry.Metrics
	Logger   *slog.Logger
}

// Result is the outcome of a run.
type Result struct {
	Outcome Outcome

	// Stage is the last working stage entered.
	Stage Stage

	// Raw is the merged, unrefined worker output, set once batch processing
	// has finished. A run cancelled during processing keeps it.
	Raw *store.Index

	// Index is the refined index, set once refinement has run.
	Index *store.Index

	// Vocabulary is set once autocomplete has been built.
	Vocabulary []string

	// Err is the failure cause for OutcomeFailed.
	Err error

	Documents         int
	Partitions        int
	SkippedPartitions int
	CrashedWorkers    int
	Warnings          int

	// Stages holds the duration of every stage that ran.
	Stages   map[Stage]time.Duration
	Duration time.Duration
}

// Orchestrator runs one indexing pipeline. It is single-use: Cancel before
// Run cancels the run at its first check.
type Orchestrator struct {
	cfg      Config
	deps     Dependencies
	logger   *slog.Logger
	reporter Reporter

	cancelled atomic.Bool
	stage     atomic.Int32
	running   atomic.Bool
	reportMu  sync.Mutex
}

// New creates an orchestrator.
func New(cfg Config, deps Dependencies) (*Orchestrator, error) {
	if deps.Texts == nil {
		return nil, fmt.Errorf("text source is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("index store is required")
	}
	if deps.Keywords == nil {
		deps.Keywords = keywords.NewExtractor()
	}
	cfg.applyDefaults()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reporter := deps.Reporter
	if reporter == nil {
		reporter = NopReporter
	}

	return &Orchestrator{
		cfg:      cfg,
		deps:     deps,
		logger:   logger,
		reporter: reporter,
	}, nil
}

// Cancel requests cancellation. It takes effect at the next stage boundary.
func (o *Orchestrator) Cancel() {
	if o.cancelled.CompareAndSwap(false, true) {
		o.logger.Info("index_cancel_requested", slog.String("stage", o.Stage().String()))
	}
}

// Stage returns the current stage.
func (o *Orchestrator) Stage() Stage {
	return Stage(o.stage.Load())
}

// run carries the state of one Run call between stages.
type run struct {
	result     *Result
	partitions []partition.Partition
	raw        *store.Index
	backup     *store.Backup
	saved      bool
}

type stageStep struct {
	stage   Stage
	message string
	fn      func(ctx context.Context, r *run) error
}

// Run executes the pipeline and returns its result. It never returns nil.
func (o *Orchestrator) Run(ctx context.Context) *Result {
	start := time.Now()
	r := &run{result: &Result{Stages: make(map[Stage]time.Duration)}}

	if !o.running.CompareAndSwap(false, true) {
		r.result.Outcome = OutcomeFailed
		r.result.Stage = StageFailed
		r.result.Err = lexerrors.InternalError("indexing run already in progress", nil)
		return r.result
	}
	defer o.running.Store(false)

	o.logger.Info("index_run_started",
		slog.String("partition_folder", o.cfg.PartitionFolder),
		slog.Int("partition_count", o.cfg.PartitionCount),
		slog.String("store", o.deps.Store.Path()))
	o.emit(Event{Type: EventInfo, Stage: StageIdle, Message: "Starting indexing process..."})

	steps := []stageStep{
		{StagePreparing, o.preparingMessage(), o.prepare},
		{StageCollectingPartitions, "Collecting batch files...", o.collect},
		{StageProcessingBatches, "", o.process},
		{StageRefining, "Refining keywords...", o.refine},
		{StageSavingIndex, "Saving index to disk...", o.saveIndex},
		{StageBuildingAutocomplete, "Generating autocomplete data...", o.buildAutocomplete},
		{StageSavingAutocomplete, "Saving autocomplete data...", o.saveAutocomplete},
	}

	for _, step := range steps {
		if o.cancelRequested(ctx) {
			return o.finishCancelled(r, start)
		}

		o.stage.Store(int32(step.stage))
		r.result.Stage = step.stage

		msg := step.message
		if step.stage == StageProcessingBatches {
			msg = fmt.Sprintf("Processing %d batch(es) in parallel...", len(r.partitions))
		}
		o.emit(Event{Type: EventStageStarted, Stage: step.stage, Message: msg})
		o.logger.Debug("index_stage_started", slog.String("stage", step.stage.String()))

		t0 := time.Now()
		err := step.fn(ctx, r)
		d := time.Since(t0)
		r.result.Stages[step.stage] = d
		o.deps.Metrics.RecordStage(step.stage.String(), d)

		if err != nil {
			return o.finishFailed(r, err, start)
		}
		o.emit(Event{Type: EventStageFinished, Stage: step.stage, Message: step.stage.Label() + " done"})
		o.logger.Debug("index_stage_finished",
			slog.String("stage", step.stage.String()),
			slog.Duration("duration", d))
	}

	return o.finishCompleted(r, start)
}

// cancelRequested reports whether Cancel was called or ctx is done.
func (o *Orchestrator) cancelRequested(ctx context.Context) bool {
	return o.cancelled.Load() || ctx.Err() != nil
}

func (o *Orchestrator) preparingMessage() string {
	switch o.deps.Enumerator.(type) {
	case nil:
		return "Using existing batch files..."
	case *scanner.WalkEnumerator:
		return "Scanning document folders to collect file paths..."
	default:
		return "Running batch script to collect file paths..."
	}
}

// prepare runs enumeration. Enumeration errors are warnings: the run goes on
// with whatever partition files exist.
func (o *Orchestrator) prepare(ctx context.Context, r *run) error {
	if o.deps.Enumerator == nil {
		return nil
	}

	res, err := o.deps.Enumerator.Enumerate(ctx)
	if err != nil {
		o.warn(r, StagePreparing, "", err)
		return nil
	}

	msg := "Batch script completed"
	if res != nil && res.Files > 0 {
		msg = fmt.Sprintf("Collected %d file path(s)", res.Files)
	}
	o.emit(Event{Type: EventInfo, Stage: StagePreparing, Message: msg})
	return nil
}

func (o *Orchestrator) collect(_ context.Context, r *run) error {
	valid, warnings := partition.Collect(o.cfg.PartitionFolder, o.cfg.PartitionCount, o.cfg.PartitionPattern)
	for _, w := range warnings {
		o.warn(r, StageCollectingPartitions, "", w)
	}

	r.partitions = valid
	r.result.Partitions = len(valid)
	r.result.SkippedPartitions = len(warnings)

	if len(valid) == 0 {
		return lexerrors.EmptyCorpusError("No batch files found after script execution").
			WithDetail("partition_folder", o.cfg.PartitionFolder)
	}

	o.emit(Event{
		Type:    EventInfo,
		Stage:   StageCollectingPartitions,
		Message: fmt.Sprintf("Found %d valid batch file(s)", len(valid)),
		Current: len(valid),
		Total:   o.cfg.PartitionCount,
	})
	return nil
}

func (o *Orchestrator) process(ctx context.Context, r *run) error {
	total := 0
	for _, p := range r.partitions {
		total += len(p.Paths)
	}

	var done atomic.Int64
	pool := batch.NewPool(o.deps.Texts, o.deps.Keywords,
		batch.WithLogger(o.logger),
		batch.WithFileCallback(func(ev batch.FileEvent) {
			n := int(done.Add(1))
			o.deps.Metrics.RecordFile(ev.Status.String())
			o.emit(Event{
				Type:    EventProgress,
				Stage:   StageProcessingBatches,
				Message: ev.Status.String(),
				Path:    ev.Path,
				Current: n,
				Total:   total,
			})
		}))

	outcome, err := pool.Run(ctx, r.partitions)
	if err != nil {
		return err
	}

	r.raw = outcome.Raw
	r.result.Raw = outcome.Raw
	r.result.Documents = outcome.Documents()
	r.result.CrashedWorkers = outcome.CrashedWorkers
	for _, res := range outcome.Results {
		if res.Err != nil {
			o.warn(r, StageProcessingBatches, "", res.Err)
		}
	}
	o.deps.Metrics.RecordPartitions(r.result.SkippedPartitions, outcome.CrashedWorkers)

	if outcome.Documents() == 0 {
		return lexerrors.EmptyCorpusError("No data indexed. Check if PDF files exist in specified directories.")
	}
	return nil
}

func (o *Orchestrator) refine(_ context.Context, r *run) error {
	r.result.Index = keywords.RefineIndex(r.raw, o.cfg.TopKeywords)
	r.result.Documents = r.result.Index.Len()
	return nil
}

func (o *Orchestrator) saveIndex(_ context.Context, r *run) error {
	indexPath := o.deps.Store.Path()
	b, err := store.CreateBackup(store.BackupDir(indexPath), o.cfg.MaxBackups, indexPath, o.cfg.VocabularyPath)
	if err != nil {
		// An index that cannot be rolled back is never written
		return lexerrors.IndexIOError("could not back up the current index", err).
			WithDetail("backup_dir", store.BackupDir(indexPath))
	}
	r.backup = b

	// Past this point the store may differ from its pre-run content
	r.saved = true
	if err := o.deps.Store.Save(r.result.Index); err != nil {
		return err
	}

	o.emit(Event{
		Type:    EventInfo,
		Stage:   StageSavingIndex,
		Message: fmt.Sprintf("Index saved with %d entries", r.result.Index.Len()),
		Current: r.result.Index.Len(),
	})
	return nil
}

func (o *Orchestrator) buildAutocomplete(_ context.Context, r *run) error {
	r.result.Vocabulary = autocomplete.Build(r.result.Index, o.cfg.AutocompleteSize)
	return nil
}

func (o *Orchestrator) saveAutocomplete(_ context.Context, r *run) error {
	if err := store.SaveVocabulary(o.cfg.VocabularyPath, r.result.Vocabulary,
		store.WithAtomicWrites(o.cfg.AtomicWrites), store.WithLogger(o.logger)); err != nil {
		return err
	}
	o.emit(Event{
		Type:    EventInfo,
		Stage:   StageSavingAutocomplete,
		Message: fmt.Sprintf("Autocomplete saved with %d words", len(r.result.Vocabulary)),
		Current: len(r.result.Vocabulary),
	})
	return nil
}

func (o *Orchestrator) finishCompleted(r *run, start time.Time) *Result {
	r.result.Outcome = OutcomeCompleted
	r.result.Duration = time.Since(start)
	o.stage.Store(int32(StageCompleted))

	o.deps.Metrics.RecordRun(OutcomeCompleted.String(), r.result.Documents, r.result.Duration)
	o.logger.Info("index_run_completed",
		slog.Int("documents", r.result.Documents),
		slog.Int("vocabulary", len(r.result.Vocabulary)),
		slog.Int("partitions", r.result.Partitions),
		slog.Int("crashed_workers", r.result.CrashedWorkers),
		slog.Duration("duration", r.result.Duration))
	o.emit(Event{
		Type:    EventCompleted,
		Stage:   StageCompleted,
		Message: "Indexing completed successfully!",
		Current: r.result.Documents,
	})
	return r.result
}

func (o *Orchestrator) finishCancelled(r *run, start time.Time) *Result {
	o.rollback(r)

	r.result.Outcome = OutcomeCancelled
	r.result.Duration = time.Since(start)
	o.stage.Store(int32(StageCancelled))

	o.deps.Metrics.RecordRun(OutcomeCancelled.String(), r.result.Documents, r.result.Duration)
	o.logger.Info("index_run_cancelled",
		slog.String("after_stage", r.result.Stage.String()),
		slog.Duration("duration", r.result.Duration))
	o.emit(Event{Type: EventCancelled, Stage: StageCancelled, Message: "Indexing cancelled"})
	return r.result
}

func (o *Orchestrator) finishFailed(r *run, err error, start time.Time) *Result {
	o.rollback(r)

	var le *lexerrors.LexError
	if !errors.As(err, &le) {
		err = lexerrors.New(lexerrors.ErrCodeIndexFailed, "indexing failed: "+err.Error(), err)
	}

	r.result.Outcome = OutcomeFailed
	r.result.Err = err
	r.result.Duration = time.Since(start)
	o.stage.Store(int32(StageFailed))

	o.deps.Metrics.RecordRun(OutcomeFailed.String(), r.result.Documents, r.result.Duration)
	o.logger.Error("index_run_failed",
		append([]any{slog.String("stage", r.result.Stage.String())}, lexerrors.LogAttrs(err)...)...)
	o.emit(Event{Type: EventFailed, Stage: StageFailed, Message: errorMessage(err), Err: err})
	return r.result
}

// rollback restores the pre-run stores once saving has begun.
func (o *Orchestrator) rollback(r *run) {
	if !r.saved || r.backup == nil {
		return
	}
	if err := r.backup.Restore(); err != nil {
		o.logger.Error("index_rollback_failed",
			slog.String("backup", r.backup.Dir),
			slog.String("error", err.Error()))
		return
	}
	o.logger.Info("index_rolled_back", slog.String("backup", r.backup.Dir))
	o.emit(Event{Type: EventInfo, Stage: r.result.Stage, Message: "Previous index restored"})
}

func (o *Orchestrator) warn(r *run, stage Stage, path string, err error) {
	r.result.Warnings++
	o.logger.Warn("index_warning",
		append([]any{slog.String("stage", stage.String())}, lexerrors.LogAttrs(err)...)...)
	o.emit(Event{Type: EventWarning, Stage: stage, Message: errorMessage(err), Path: path, Err: err})
}

// emit stamps and delivers an event. Delivery is serialized so reporters
// need not be safe for concurrent use.
func (o *Orchestrator) emit(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	o.reportMu.Lock()
	defer o.reportMu.Unlock()
	o.reporter.Report(e)
}

func errorMessage(err error) string {
	var le *lexerrors.LexError
	if errors.As(err, &le) {
		return le.Message
	}
	return err.Error()
}
