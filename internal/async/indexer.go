package async

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	lexerrors "github.com/Aman-CERP/lexsearch/internal/errors"
	"github.com/Aman-CERP/lexsearch/internal/index"
	"github.com/Aman-CERP/lexsearch/internal/store"
)

// LockFileName is the marker present in the data directory while a run is
// in progress.
const LockFileName = "indexing.lock"

// DefaultEventBuffer is the default capacity of the events channel.
const DefaultEventBuffer = 256

// Runner is an indexing run that can be cancelled. *index.Orchestrator
// implements it.
type Runner interface {
	Run(ctx context.Context) *index.Result
	Cancel()
}

// IndexerConfig configures the BackgroundIndexer.
type IndexerConfig struct {
	DataDir     string
	EventBuffer int
}

// BackgroundIndexer runs one indexing run on its own goroutine. Events are
// delivered on Events, which must be drained until it is closed.
type BackgroundIndexer struct {
	config   IndexerConfig
	progress *IndexProgress
	events   *index.ChannelReporter
	lock     *store.FileLock

	doneCh chan struct{}

	mu      sync.Mutex
	runner  Runner
	running bool
	started bool
	result  *index.Result
}

// NewBackgroundIndexer creates a new background indexer.
func NewBackgroundIndexer(cfg IndexerConfig) *BackgroundIndexer {
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = DefaultEventBuffer
	}
	return &BackgroundIndexer{
		config:   cfg,
		progress: NewIndexProgress(),
		events:   index.NewChannelReporter(cfg.EventBuffer),
		lock:     store.NewFileLock(lockBase(cfg.DataDir)),
		doneCh:   make(chan struct{}),
	}
}

// Reporter returns the reporter to give the runner: it updates Progress and
// feeds Events.
func (b *BackgroundIndexer) Reporter() index.Reporter {
	return index.Reporters(b.progress, b.events)
}

// Progress returns the progress tracker for this indexer.
func (b *BackgroundIndexer) Progress() *IndexProgress {
	return b.progress
}

// Events returns the event channel. It is closed when the run ends.
func (b *BackgroundIndexer) Events() <-chan index.Event {
	return b.events.Events()
}

// IsRunning returns true if the indexer is currently running.
func (b *BackgroundIndexer) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// Start takes the indexing lock and runs r in a background goroutine. It
// fails if another run, in this or another process, holds the lock, or if
// this indexer was already started.
func (b *BackgroundIndexer) Start(ctx context.Context, r Runner) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return lexerrors.New(lexerrors.ErrCodeIndexLocked, "indexer already started", nil)
	}

	if err := os.MkdirAll(b.config.DataDir, 0755); err != nil {
		return lexerrors.IndexIOError("failed to create data directory", err)
	}
	acquired, err := b.lock.TryLock()
	if err != nil {
		return lexerrors.IndexIOError("failed to take indexing lock", err)
	}
	if !acquired {
		return lexerrors.New(lexerrors.ErrCodeIndexLocked, "another indexing run is in progress", nil).
			WithDetail("lock", b.lock.Path()).
			WithSuggestion("Wait for it to finish, or remove the lock file if no lexsearch process is running")
	}
	_ = os.WriteFile(b.lock.Path(), []byte(time.Now().Format(time.RFC3339)), 0644)

	b.runner = r
	b.started = true
	b.running = true
	go b.run(ctx)
	return nil
}

// run executes the indexing in the background.
func (b *BackgroundIndexer) run(ctx context.Context) {
	defer close(b.doneCh)

	var res *index.Result
	defer func() {
		if rec := recover(); rec != nil {
			err := lexerrors.InternalError("indexing run panicked", nil).WithDetail("panic", toString(rec))
			b.progress.SetError(err.Message)
			res = &index.Result{Outcome: index.OutcomeFailed, Stage: index.StageFailed, Err: err}
		}

		b.events.Close()
		_ = os.Remove(b.lock.Path())
		_ = b.lock.Unlock()

		b.mu.Lock()
		b.result = res
		b.running = false
		b.mu.Unlock()
	}()

	res = b.runner.Run(ctx)
}

// Cancel asks the run to stop at its next stage boundary.
func (b *BackgroundIndexer) Cancel() {
	b.mu.Lock()
	r := b.runner
	b.mu.Unlock()
	if r != nil {
		r.Cancel()
	}
}

// Wait blocks until the run completes and returns its result. It returns nil
// if the indexer was never started.
func (b *BackgroundIndexer) Wait() *index.Result {
	b.mu.Lock()
	started := b.started
	b.mu.Unlock()
	if !started {
		return nil
	}

	<-b.doneCh
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.result
}

// IsIndexing reports whether a run currently holds the lock in dataDir.
func IsIndexing(dataDir string) bool {
	lockPath := filepath.Join(dataDir, LockFileName)
	if _, err := os.Stat(lockPath); err != nil {
		return false
	}
	l := store.NewFileLock(lockBase(dataDir))
	acquired, err := l.TryLock()
	if err != nil {
		return false
	}
	if acquired {
		_ = l.Unlock()
		return false
	}
	return true
}

// HasIncompleteLock reports whether a lock marker exists in dataDir, which
// after a crash means the last run never finished.
func HasIncompleteLock(dataDir string) bool {
	_, err := os.Stat(filepath.Join(dataDir, LockFileName))
	return err == nil
}

// lockBase is the path whose lock file is dataDir/indexing.lock.
func lockBase(dataDir string) string {
	return filepath.Join(dataDir, "indexing")
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return "unknown panic"
}
