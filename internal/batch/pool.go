// Package batch runs one worker per partition and merges their results.
//
// Workers share no mutable state: each builds its own entry list and reports
// it on its own result channel. Results are merged only after every worker
// has returned, in partition order, so later partitions win on duplicate
// paths.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/panjf2000/ants/v2"

	lexerrors "github.com/Aman-CERP/lexsearch/internal/errors"
	"github.com/Aman-CERP/lexsearch/internal/partition"
	"github.com/Aman-CERP/lexsearch/internal/store"
)

// TextSource returns the text of a document, or "" when it cannot be read.
type TextSource interface {
	ExtractText(ctx context.Context, path string) string
}

// KeywordExtractor turns text into keyword tokens.
type KeywordExtractor interface {
	Extract(text string) []string
}

// FileStatus is the outcome of processing one path.
type FileStatus int

const (
	// FileIndexed means keywords were recorded for the path.
	FileIndexed FileStatus = iota
	// FileEmpty means the path was read but yielded no keywords.
	FileEmpty
	// FileMissing means the path no longer exists.
	FileMissing
	// FileFailed means processing panicked and the file was skipped.
	FileFailed
)

// String returns the status name.
func (s FileStatus) String() string {
	switch s {
	case FileIndexed:
		return "indexed"
	case FileEmpty:
		return "empty"
	case FileMissing:
		return "missing"
	case FileFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FileEvent describes one processed path.
type FileEvent struct {
	Partition int
	Path      string
	Status    FileStatus
	Keywords  int
}

// Entry is one document's raw keywords.
type Entry struct {
	Path     string
	Keywords []string
}

// WorkerResult is what one worker reports for its partition.
type WorkerResult struct {
	Partition int
	Entries   []Entry
	Processed int // paths that existed and were read
	Skipped   int // paths that no longer exist
	Failed    int // paths whose processing panicked
	Err       error
}

// Outcome is the merged result of a pool run.
type Outcome struct {
	// Raw maps each document to its unrefined keywords.
	Raw *store.Index

	// Results holds one entry per dispatched partition, in partition order.
	Results []WorkerResult

	// CrashedWorkers counts partitions whose worker failed as a whole.
	CrashedWorkers int
}

// Documents returns the number of merged documents.
func (o *Outcome) Documents() int {
	return o.Raw.Len()
}

// Pool processes partitions in parallel.
type Pool struct {
	texts    TextSource
	keywords KeywordExtractor
	logger   *slog.Logger
	onFile   func(FileEvent)
}

// Option configures a Pool.
type Option func(*Pool)

// WithLogger sets the pool logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithFileCallback registers fn to be called after each path is processed.
// It is called from worker goroutines concurrently.
func WithFileCallback(fn func(FileEvent)) Option {
	return func(p *Pool) {
		p.onFile = fn
	}
}

// NewPool creates a pool that reads documents through texts and extracts
// keywords with keywords.
func NewPool(texts TextSource, keywords KeywordExtractor, opts ...Option) *Pool {
	p := &Pool{
		texts:    texts,
		keywords: keywords,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run dispatches exactly one worker per partition on an ants pool sized to
// the number of partitions, waits for all of them, and merges their entries
// in partition order. A crashed worker contributes nothing; the others
// still merge. The returned error is only set when the pool itself cannot
// be created.
func (p *Pool) Run(ctx context.Context, parts []partition.Partition) (*Outcome, error) {
	outcome := &Outcome{Raw: store.NewIndex()}
	if len(parts) == 0 {
		return outcome, nil
	}

	pool, err := ants.NewPool(len(parts))
	if err != nil {
		return nil, lexerrors.InternalError("failed to create worker pool", err)
	}
	defer pool.Release()

	channels := make([]chan WorkerResult, len(parts))
	for i, part := range parts {
		ch := make(chan WorkerResult, 1)
		channels[i] = ch

		if err := pool.Submit(func() {
			ch <- p.work(ctx, part)
		}); err != nil {
			ch <- WorkerResult{
				Partition: part.Index,
				Err:       lexerrors.New(lexerrors.ErrCodeWorkerCrash, fmt.Sprintf("worker %d not started", part.Index), err),
			}
		}
	}

	for _, ch := range channels {
		res := <-ch
		outcome.Results = append(outcome.Results, res)
		if res.Err != nil {
			outcome.CrashedWorkers++
			p.logger.Error("worker_crashed",
				append([]any{slog.Int("partition", res.Partition)}, lexerrors.LogAttrs(res.Err)...)...)
			continue
		}
		for _, e := range res.Entries {
			outcome.Raw.Set(e.Path, e.Keywords)
		}
	}

	return outcome, nil
}

// work processes one partition. Panics while handling a single file skip
// that file; any other panic fails the whole worker.
func (p *Pool) work(ctx context.Context, part partition.Partition) (res WorkerResult) {
	res.Partition = part.Index

	defer func() {
		if rec := recover(); rec != nil {
			res.Entries = nil
			res.Err = lexerrors.New(lexerrors.ErrCodeWorkerCrash,
				fmt.Sprintf("worker for partition %d crashed: %v", part.Index, rec), nil).
				WithDetail("partition", part.Path)
		}
	}()

	p.logger.Debug("worker_started",
		slog.Int("partition", part.Index),
		slog.Int("paths", len(part.Paths)))

	for _, path := range part.Paths {
		ev := FileEvent{Partition: part.Index, Path: path}

		if _, err := os.Stat(path); err != nil {
			res.Skipped++
			ev.Status = FileMissing
			p.notify(ev)
			continue
		}

		keywords, ok := p.processFile(ctx, path)
		switch {
		case !ok:
			res.Failed++
			ev.Status = FileFailed
		case len(keywords) == 0:
			res.Processed++
			ev.Status = FileEmpty
		default:
			res.Processed++
			res.Entries = append(res.Entries, Entry{Path: path, Keywords: keywords})
			ev.Status = FileIndexed
			ev.Keywords = len(keywords)
		}
		p.notify(ev)
	}

	p.logger.Debug("worker_finished",
		slog.Int("partition", part.Index),
		slog.Int("entries", len(res.Entries)),
		slog.Int("skipped", res.Skipped),
		slog.Int("failed", res.Failed))
	return res
}

// processFile extracts keywords for path. ok is false if processing panicked.
func (p *Pool) processFile(ctx context.Context, path string) (keywords []string, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			err := lexerrors.DocumentReadError(path, fmt.Errorf("panic: %v", rec))
			p.logger.Warn("document_processing_failed", lexerrors.LogAttrs(err)...)
			keywords, ok = nil, false
		}
	}()

	text := p.texts.ExtractText(ctx, path)
	if text == "" {
		return nil, true
	}
	return p.keywords.Extract(text), true
}

func (p *Pool) notify(ev FileEvent) {
	if p.onFile != nil {
		p.onFile(ev)
	}
}
