// Package async runs indexing on a background goroutine and tracks its
// progress for display.
package async

import (
	"sync"
	"time"

	"github.com/Aman-CERP/lexsearch/internal/index"
)

// IndexingStatus represents the overall indexing state.
type IndexingStatus string

const (
	// StatusIndexing indicates indexing is in progress.
	StatusIndexing IndexingStatus = "indexing"
	// StatusReady indicates indexing completed and search is available.
	StatusReady IndexingStatus = "ready"
	// StatusCancelled indicates the run was cancelled; the previous index stays.
	StatusCancelled IndexingStatus = "cancelled"
	// StatusError indicates indexing failed with an error.
	StatusError IndexingStatus = "error"
)

// IndexProgressSnapshot is an immutable snapshot of indexing progress.
type IndexProgressSnapshot struct {
	Status         string  `json:"status"`
	Stage          string  `json:"stage"`
	Message        string  `json:"message,omitempty"`
	FilesTotal     int     `json:"files_total"`
	FilesProcessed int     `json:"files_processed"`
	Documents      int     `json:"documents"`
	Warnings       int     `json:"warnings"`
	ProgressPct    float64 `json:"progress_pct"`
	ElapsedSeconds int     `json:"elapsed_seconds"`
	ErrorMessage   string  `json:"error_message,omitempty"`
}

// IndexProgress tracks a run from its events. It implements index.Reporter
// and is safe for concurrent use.
type IndexProgress struct {
	mu sync.RWMutex

	status         IndexingStatus
	stage          index.Stage
	message        string
	filesTotal     int
	filesProcessed int
	documents      int
	warnings       int
	startTime      time.Time
	errorMessage   string
}

// NewIndexProgress creates a progress tracker initialized for indexing.
func NewIndexProgress() *IndexProgress {
	return &IndexProgress{
		status:    StatusIndexing,
		stage:     index.StageIdle,
		startTime: time.Now(),
	}
}

// Report implements index.Reporter.
func (p *IndexProgress) Report(e index.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e.Message != "" && e.Type != index.EventProgress {
		p.message = e.Message
	}

	switch e.Type {
	case index.EventStageStarted:
		p.stage = e.Stage
	case index.EventProgress:
		p.filesProcessed = e.Current
		p.filesTotal = e.Total
	case index.EventWarning:
		p.warnings++
	case index.EventInfo:
		if e.Stage == index.StageSavingIndex {
			p.documents = e.Current
		}
	case index.EventCompleted:
		p.stage = index.StageCompleted
		p.status = StatusReady
		p.documents = e.Current
	case index.EventCancelled:
		p.stage = index.StageCancelled
		p.status = StatusCancelled
	case index.EventFailed:
		p.stage = index.StageFailed
		p.status = StatusError
		p.errorMessage = e.Message
	}
}

// SetError marks the indexing as failed with an error message.
func (p *IndexProgress) SetError(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status = StatusError
	p.errorMessage = message
}

// Stage returns the current stage.
func (p *IndexProgress) Stage() index.Stage {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stage
}

// IsIndexing returns true if indexing is still in progress.
func (p *IndexProgress) IsIndexing() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.status == StatusIndexing
}

// Snapshot returns an immutable copy of the current progress state.
func (p *IndexProgress) Snapshot() IndexProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var progressPct float64
	if p.filesTotal > 0 {
		progressPct = float64(p.filesProcessed) / float64(p.filesTotal) * 100.0
	}

	return IndexProgressSnapshot{
		Status:         string(p.status),
		Stage:          p.stage.String(),
		Message:        p.message,
		FilesTotal:     p.filesTotal,
		FilesProcessed: p.filesProcessed,
		Documents:      p.documents,
		Warnings:       p.warnings,
		ProgressPct:    progressPct,
		ElapsedSeconds: int(time.Since(p.startTime).Seconds()),
		ErrorMessage:   p.errorMessage,
	}
}
