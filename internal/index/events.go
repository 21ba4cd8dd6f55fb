package index

import (
	"sync"
	"time"
)

// EventType classifies progress events.
type EventType int

const (
	EventStageStarted EventType = iota
	EventStageFinished
	EventInfo
	EventWarning
	EventProgress
	EventCompleted
	EventCancelled
	EventFailed
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventStageStarted:
		return "stage_started"
	case EventStageFinished:
		return "stage_finished"
	case EventInfo:
		return "info"
	case EventWarning:
		return "warning"
	case EventProgress:
		return "progress"
	case EventCompleted:
		return "completed"
	case EventCancelled:
		return "cancelled"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the event ends a run.
func (t EventType) Terminal() bool {
	return t == EventCompleted || t == EventCancelled || t == EventFailed
}

// Event is one progress notification from a run.
type Event struct {
	Type    EventType
	Stage   Stage
	Message string

	// Current and Total count progress within the stage, e.g. files processed
	// out of files listed. Zero when not applicable.
	Current int
	Total   int

	// Path is the file an EventProgress or EventWarning refers to, if any.
	Path string

	// Err is set on EventWarning and EventFailed.
	Err error

	Time time.Time
}

// Reporter receives events. Report may be called from several goroutines
// during batch processing.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

// Report implements Reporter.
func (f ReporterFunc) Report(e Event) {
	f(e)
}

// NopReporter discards events.
var NopReporter Reporter = ReporterFunc(func(Event) {})

// ChannelReporter delivers events on a channel. Report blocks while the
// channel is full, so a reader must drain Events until it is closed.
type ChannelReporter struct {
	ch     chan Event
	mu     sync.RWMutex
	closed bool
}

// NewChannelReporter creates a reporter with the given channel buffer.
func NewChannelReporter(buffer int) *ChannelReporter {
	return &ChannelReporter{ch: make(chan Event, buffer)}
}

// Report implements Reporter. Events after Close are dropped.
func (r *ChannelReporter) Report(e Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	r.ch <- e
}

// Events returns the event channel.
func (r *ChannelReporter) Events() <-chan Event {
	return r.ch
}

// Close closes the channel. It is safe to call more than once.
func (r *ChannelReporter) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.closed = true
		close(r.ch)
	}
}

// Reporters fans events out to every non-nil reporter, in order.
func Reporters(rs ...Reporter) Reporter {
	var out []Reporter
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return ReporterFunc(func(e Event) {
		for _, r := range out {
			r.Report(e)
		}
	})
}
