package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/lexsearch/internal/index"
)

func TestStageIcon(t *testing.T) {
	tests := []struct {
		stage index.Stage
		want  string
	}{
		{index.StagePreparing, "PREP"},
		{index.StageCollectingPartitions, "COLLECT"},
		{index.StageProcessingBatches, "PROCESS"},
		{index.StageSavingIndex, "SAVE"},
		{index.StageSavingAutocomplete, "VOCAB"},
		{index.StageCompleted, "DONE"},
		{index.Stage(99), "???"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, stageIcon(tt.stage))
		})
	}
}

func TestForward_TranslatesEvents(t *testing.T) {
	// Given: a plain renderer
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf))

	// When: forwarding a run's events through a closed channel
	events := make(chan index.Event, 8)
	events <- index.Event{Type: index.EventInfo, Stage: index.StageIdle, Message: "Starting indexing process..."}
	events <- index.Event{Type: index.EventStageStarted, Stage: index.StageProcessingBatches, Message: "Processing 1 batch(es) in parallel..."}
	events <- index.Event{Type: index.EventProgress, Stage: index.StageProcessingBatches, Current: 1, Total: 1, Path: "a.pdf"}
	events <- index.Event{Type: index.EventWarning, Stage: index.StagePreparing, Message: "script missing"}
	events <- index.Event{Type: index.EventStageFinished, Stage: index.StageProcessingBatches}
	events <- index.Event{Type: index.EventCompleted, Stage: index.StageCompleted}
	close(events)
	Consume(r, events)

	// Then: progress and warnings are printed; finished and terminal events are not
	assert.Equal(t,
		"[START] Starting indexing process...\n"+
			"[PROCESS] Processing 1 batch(es) in parallel...\n"+
			"[PROCESS] 1/1 - a.pdf\n"+
			"WARN: script missing\n",
		buf.String())
}

func TestStatsFromResult(t *testing.T) {
	res := &index.Result{
		Outcome:    index.OutcomeFailed,
		Err:        errors.New("disk full"),
		Documents:  0,
		Vocabulary: []string{"a", "b"},
		Warnings:   3,
	}

	stats := StatsFromResult(res)

	assert.Equal(t, index.OutcomeFailed, stats.Outcome)
	assert.Equal(t, 2, stats.Vocabulary)
	assert.Equal(t, 3, stats.Warnings)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, index.OutcomeFailed, StatsFromResult(nil).Outcome)
}

func TestIsTTY(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
	assert.False(t, IsTTY(nil))
}

func TestNewConfig_Options(t *testing.T) {
	buf := &bytes.Buffer{}
	called := false

	cfg := NewConfig(buf, WithForcePlain(true), WithNoColor(true), WithTitle("output.json"),
		WithOnCancel(func() { called = true }))

	assert.True(t, cfg.ForcePlain)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, "output.json", cfg.Title)
	require.NotNil(t, cfg.OnCancel)
	cfg.OnCancel()
	assert.True(t, called)
}

func TestNewRenderer_PlainForNonTTY(t *testing.T) {
	r := NewRenderer(NewConfig(&bytes.Buffer{}))
	_, ok := r.(*PlainRenderer)
	assert.True(t, ok)
}

func TestNewRenderer_ForcePlain(t *testing.T) {
	r := NewRenderer(NewConfig(&bytes.Buffer{}, WithForcePlain(true)))
	_, ok := r.(*PlainRenderer)
	assert.True(t, ok)
}

func TestDetectCI(t *testing.T) {
	t.Setenv("CI", "true")
	assert.True(t, DetectCI())
}

func TestDetectNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.True(t, DetectNoColor())
}
