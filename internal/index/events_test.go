package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelReporter_DeliversAndCloses(t *testing.T) {
	r := NewChannelReporter(4)

	r.Report(Event{Type: EventInfo, Message: "one"})
	r.Report(Event{Type: EventCompleted, Message: "two"})
	r.Close()
	r.Close()
	r.Report(Event{Type: EventInfo, Message: "dropped"})

	var got []string
	for e := range r.Events() {
		got = append(got, e.Message)
	}
	assert.Equal(t, []string{"one", "two"}, got)
}

func TestReporters_FanOut(t *testing.T) {
	var a, b []EventType
	rep := Reporters(
		ReporterFunc(func(e Event) { a = append(a, e.Type) }),
		nil,
		ReporterFunc(func(e Event) { b = append(b, e.Type) }),
	)

	rep.Report(Event{Type: EventWarning})

	assert.Equal(t, []EventType{EventWarning}, a)
	assert.Equal(t, []EventType{EventWarning}, b)
}

func TestEventType_Terminal(t *testing.T) {
	assert.True(t, EventCancelled.Terminal())
	assert.False(t, EventProgress.Terminal())
	assert.Equal(t, "stage_started", EventStageStarted.String())
}
