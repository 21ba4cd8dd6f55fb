// Package ui renders indexing progress in the terminal.
package ui

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/Aman-CERP/lexsearch/internal/index"
)

// stageIcon returns the short stage tag for plain text output.
func stageIcon(s index.Stage) string {
	switch s {
	case index.StageIdle:
		return "START"
	case index.StagePreparing:
		return "PREP"
	case index.StageCollectingPartitions:
		return "COLLECT"
	case index.StageProcessingBatches:
		return "PROCESS"
	case index.StageRefining:
		return "REFINE"
	case index.StageSavingIndex:
		return "SAVE"
	case index.StageBuildingAutocomplete, index.StageSavingAutocomplete:
		return "VOCAB"
	case index.StageCompleted:
		return "DONE"
	case index.StageCancelled:
		return "CANCEL"
	case index.StageFailed:
		return "FAIL"
	default:
		return "???"
	}
}

// ProgressEvent represents a progress update.
type ProgressEvent struct {
	Stage       index.Stage
	Current     int
	Total       int
	CurrentFile string
	Message     string
}

// ErrorEvent represents a warning or error during a run.
type ErrorEvent struct {
	File   string
	Err    error
	IsWarn bool
}

// CompletionStats contains the final run summary.
type CompletionStats struct {
	Outcome           index.Outcome
	Documents         int
	Vocabulary        int
	Partitions        int
	SkippedPartitions int
	CrashedWorkers    int
	Duration          time.Duration
	Errors            int
	Warnings          int
	Stages            map[index.Stage]time.Duration
	Err               error
}

// StatsFromResult builds the summary for a finished run.
func StatsFromResult(res *index.Result) CompletionStats {
	if res == nil {
		return CompletionStats{Outcome: index.OutcomeFailed}
	}
	stats := CompletionStats{
		Outcome:           res.Outcome,
		Documents:         res.Documents,
		Vocabulary:        len(res.Vocabulary),
		Partitions:        res.Partitions,
		SkippedPartitions: res.SkippedPartitions,
		CrashedWorkers:    res.CrashedWorkers,
		Duration:          res.Duration,
		Warnings:          res.Warnings,
		Stages:            res.Stages,
		Err:               res.Err,
	}
	if res.Err != nil {
		stats.Errors = 1
	}
	return stats
}

// Renderer defines the interface for progress display.
type Renderer interface {
	// Start initializes the renderer.
	Start(ctx context.Context) error

	// UpdateProgress updates progress display.
	UpdateProgress(event ProgressEvent)

	// AddError adds an error to display.
	AddError(event ErrorEvent)

	// Complete marks rendering as complete with summary.
	Complete(stats CompletionStats)

	// Stop stops the renderer and cleans up.
	Stop() error
}

// Consume feeds index events to r until events is closed.
func Consume(r Renderer, events <-chan index.Event) {
	for e := range events {
		Forward(r, e)
	}
}

// Forward translates one index event into renderer calls. Terminal events
// are left to Complete, which needs the run result.
func Forward(r Renderer, e index.Event) {
	switch e.Type {
	case index.EventStageStarted, index.EventInfo:
		r.UpdateProgress(ProgressEvent{Stage: e.Stage, Message: e.Message})
	case index.EventProgress:
		r.UpdateProgress(ProgressEvent{
			Stage:       e.Stage,
			Current:     e.Current,
			Total:       e.Total,
			CurrentFile: e.Path,
		})
	case index.EventWarning:
		err := e.Err
		if err == nil {
			err = errors.New(e.Message)
		}
		r.AddError(ErrorEvent{File: e.Path, Err: err, IsWarn: true})
	}
}

// Config configures the UI renderer.
type Config struct {
	Output     io.Writer
	ForcePlain bool
	NoColor    bool
	Title      string // Shown in the TUI header, usually the index path

	// OnCancel is called when the user presses q or ctrl+c in the TUI.
	OnCancel func()
}

// ConfigOption is a function that modifies Config.
type ConfigOption func(*Config)

// WithForcePlain forces plain text output.
func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) {
		c.ForcePlain = force
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) {
		c.NoColor = noColor
	}
}

// WithTitle sets the header text.
func WithTitle(title string) ConfigOption {
	return func(c *Config) {
		c.Title = title
	}
}

// WithOnCancel sets the cancel callback.
func WithOnCancel(fn func()) ConfigOption {
	return func(c *Config) {
		c.OnCancel = fn
	}
}

// NewConfig creates a new Config with the given output and options.
func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{Output: output}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NewRenderer returns a TUI renderer for interactive terminals, and a plain
// text renderer for CI environments, pipes, or when --no-tui is specified.
func NewRenderer(cfg Config) Renderer {
	if cfg.ForcePlain || !IsTTY(cfg.Output) || DetectCI() {
		return NewPlainRenderer(cfg)
	}

	tui, err := NewTUIRenderer(cfg)
	if err != nil {
		return NewPlainRenderer(cfg)
	}
	return tui
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
