package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	ModeFsnotify = "fsnotify"
	ModePolling  = "polling"
)

// FolderWatcher watches the files directly inside one folder.
type FolderWatcher struct {
	opts      Options
	debouncer *Debouncer
	errors    chan error
	stopCh    chan struct{}
	stopOnce  sync.Once

	mu   sync.RWMutex
	mode string
}

// New creates a folder watcher.
func New(opts Options) *FolderWatcher {
	opts = opts.WithDefaults()
	return &FolderWatcher{
		opts:      opts,
		debouncer: NewDebouncer(opts.DebounceWindow, opts.EventBufferSize, opts.Logger),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
	}
}

// Events returns debounced batches. The channel is closed by Stop.
func (w *FolderWatcher) Events() <-chan []FileEvent {
	return w.debouncer.Output()
}

// Errors returns non-fatal watch errors. Errors that do not fit the buffer
// are only logged.
func (w *FolderWatcher) Errors() <-chan error {
	return w.errors
}

// Mode reports ModeFsnotify or ModePolling once Start has begun.
func (w *FolderWatcher) Mode() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.mode
}

// Start watches dir until ctx is done or Stop is called. It blocks.
func (w *FolderWatcher) Start(ctx context.Context, dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}
	if info, err := os.Stat(absDir); err != nil {
		return fmt.Errorf("watch folder: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("watch folder: %s is not a directory", absDir)
	}
	defer func() { _ = w.Stop() }()

	if !w.opts.ForcePolling {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			if err = fsw.Add(absDir); err == nil {
				w.setMode(ModeFsnotify)
				w.opts.Logger.Info("watch_started", slog.String("dir", absDir), slog.String("mode", ModeFsnotify))
				defer func() { _ = fsw.Close() }()
				w.runFsnotify(ctx, fsw)
				return nil
			}
			_ = fsw.Close()
		}
		w.opts.Logger.Warn("watch_fsnotify_unavailable", slog.String("dir", absDir), slog.String("error", err.Error()))
	}

	p, err := newPoller(absDir, w.opts)
	if err != nil {
		return fmt.Errorf("perform initial scan: %w", err)
	}
	w.setMode(ModePolling)
	w.opts.Logger.Info("watch_started", slog.String("dir", absDir), slog.String("mode", ModePolling),
		slog.Duration("interval", w.opts.PollInterval))
	p.run(ctx, w.stopCh, w.debouncer.Add, w.emitError)
	return nil
}

func (w *FolderWatcher) runFsnotify(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if fe, ok := w.convert(event); ok {
				w.debouncer.Add(fe)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.emitError(err)
		}
	}
}

// convert maps an fsnotify event to a FileEvent, dropping directories,
// unmatched names and chmod-only events.
func (w *FolderWatcher) convert(event fsnotify.Event) (FileEvent, bool) {
	name := filepath.Base(event.Name)
	if !w.opts.matches(name) {
		return FileEvent{}, false
	}

	var op Operation
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		op = OpDelete
	default:
		return FileEvent{}, false
	}

	if op != OpDelete {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			return FileEvent{}, false
		}
	}
	return FileEvent{Path: name, Operation: op, Timestamp: time.Now()}, true
}

func (w *FolderWatcher) emitError(err error) {
	w.opts.Logger.Warn("watch_error", slog.String("error", err.Error()))
	select {
	case w.errors <- err:
	default:
	}
}

func (w *FolderWatcher) setMode(mode string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.mode = mode
}

// Stop stops watching and closes Events. Safe to call multiple times.
func (w *FolderWatcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.debouncer.Stop()
	})
	return nil
}
