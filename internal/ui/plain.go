package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Aman-CERP/lexsearch/internal/index"
)

// PlainRenderer outputs plain text progress (for CI/pipes).
type PlainRenderer struct {
	mu     sync.Mutex
	out    io.Writer
	stage  index.Stage
	errors []ErrorEvent
}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{out: cfg.Output}
}

// Start implements Renderer.
func (r *PlainRenderer) Start(ctx context.Context) error {
	return nil
}

// UpdateProgress implements Renderer.
func (r *PlainRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stage = event.Stage

	// Format: [STAGE] current/total - message or file
	msg := event.Message
	if msg == "" {
		msg = event.CurrentFile
	}

	if event.Total > 0 {
		_, _ = fmt.Fprintf(r.out, "[%s] %d/%d - %s\n", stageIcon(event.Stage), event.Current, event.Total, msg)
	} else if msg != "" {
		_, _ = fmt.Fprintf(r.out, "[%s] %s\n", stageIcon(event.Stage), msg)
	}
}

// AddError implements Renderer.
func (r *PlainRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errors = append(r.errors, event)

	prefix := "ERROR"
	if event.IsWarn {
		prefix = "WARN"
	}

	if event.File != "" {
		_, _ = fmt.Fprintf(r.out, "%s: %s: %v\n", prefix, event.File, event.Err)
	} else {
		_, _ = fmt.Fprintf(r.out, "%s: %v\n", prefix, event.Err)
	}
}

// Complete implements Renderer.
func (r *PlainRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch stats.Outcome {
	case index.OutcomeCompleted:
		_, _ = fmt.Fprintf(r.out, "Complete: %d documents indexed, %d autocomplete words in %s",
			stats.Documents, stats.Vocabulary, stats.Duration.Round(100*time.Millisecond))
	case index.OutcomeCancelled:
		_, _ = fmt.Fprintf(r.out, "Cancelled after %s, previous index kept",
			stats.Duration.Round(100*time.Millisecond))
	default:
		_, _ = fmt.Fprintf(r.out, "Failed: %v", stats.Err)
	}

	if stats.Errors > 0 || stats.Warnings > 0 {
		_, _ = fmt.Fprintf(r.out, " (%d errors, %d warnings)", stats.Errors, stats.Warnings)
	}
	_, _ = fmt.Fprintln(r.out)

	if stats.Outcome == index.OutcomeCompleted && len(stats.Stages) > 0 {
		_, _ = fmt.Fprintln(r.out)
		_, _ = fmt.Fprintln(r.out, "Stage Breakdown:")
		for _, s := range index.PipelineStages() {
			d, ok := stats.Stages[s]
			if !ok {
				continue
			}
			_, _ = fmt.Fprintf(r.out, "  %-24s %s\n", s.Label()+":", d.Round(time.Millisecond))
		}
		if stats.SkippedPartitions > 0 || stats.CrashedWorkers > 0 {
			_, _ = fmt.Fprintf(r.out, "Partitions: %d used, %d skipped, %d crashed\n",
				stats.Partitions, stats.SkippedPartitions, stats.CrashedWorkers)
		}
	}
}

// Stop implements Renderer.
func (r *PlainRenderer) Stop() error {
	return nil
}
