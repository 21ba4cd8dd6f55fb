package ui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/lexsearch/internal/index"
)

func TestNewTUIRenderer_ReturnsErrorForNonTTY(t *testing.T) {
	r, err := NewTUIRenderer(NewConfig(&bytes.Buffer{}))

	assert.Error(t, err)
	assert.Nil(t, r)
}

func TestIndexingModel_StageIndicators(t *testing.T) {
	// Given: a model in the processing stage
	tracker := NewProgressTracker()
	tracker.SetStage(index.StageProcessingBatches, 0)
	model := newIndexingModel(tracker, "", nil)

	// When: rendering
	view := model.View()

	// Then: every pipeline stage is listed
	for _, name := range []string{"Prepare", "Collect", "Process", "Refine", "Save", "Vocab", "Finish"} {
		assert.Contains(t, view, name)
	}
	assert.Contains(t, view, "Processing batches...")
}

func TestIndexingModel_ProgressDisplay(t *testing.T) {
	// Given: a model with file progress
	tracker := NewProgressTracker()
	tracker.SetStage(index.StageProcessingBatches, 20)
	tracker.Update(7, 20, "/corpus/papers/consensus.pdf")
	tracker.SetMessage("Processing 2 batch(es) in parallel...")
	model := newIndexingModel(tracker, "output.json", nil)

	// When: rendering
	view := model.View()

	// Then: counts, message, file and title are shown
	assert.Contains(t, view, "7 / 20 files")
	assert.Contains(t, view, "Processing 2 batch(es) in parallel...")
	assert.Contains(t, view, "consensus.pdf")
	assert.Contains(t, view, "output.json")
}

func TestIndexingModel_CancelKey(t *testing.T) {
	// Given: a model with a cancel callback
	cancelled := 0
	model := newIndexingModel(NewProgressTracker(), "", func() { cancelled++ })

	// When: pressing q twice
	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	// Then: the run is cancelled once and the program keeps running
	assert.Equal(t, 1, cancelled)
	assert.Nil(t, cmd)
	assert.Contains(t, model.View(), "cancelling after the current stage")
}

func TestIndexingModel_Complete(t *testing.T) {
	tests := []struct {
		name  string
		stats CompletionStats
		want  string
	}{
		{"completed", CompletionStats{Outcome: index.OutcomeCompleted, Documents: 42}, "Indexing Complete"},
		{"cancelled", CompletionStats{Outcome: index.OutcomeCancelled}, "previous index was kept"},
		{"failed", CompletionStats{Outcome: index.OutcomeFailed, Err: errors.New("disk full")}, "disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := newIndexingModel(NewProgressTracker(), "", nil)

			_, cmd := model.Update(completeMsg(tt.stats))

			require.NotNil(t, cmd, "completion quits the program")
			assert.Contains(t, model.View(), tt.want)
		})
	}
}

func TestIndexingModel_WindowResize(t *testing.T) {
	model := newIndexingModel(NewProgressTracker(), "", nil)

	model.Update(tea.WindowSizeMsg{Width: 30, Height: 10})

	assert.Equal(t, 20, model.progressBar.Width)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"250ms", "250ms"},
		{"45s", "45s"},
		{"2m", "2m"},
		{"2m30s", "2m 30s"},
		{"1h5m", "1h 5m"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := time.ParseDuration(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, formatDuration(d))
		})
	}
}

func TestTruncateFilePath(t *testing.T) {
	assert.Equal(t, "/a/b.pdf", truncateFilePath("/a/b.pdf", 40))

	got := truncateFilePath("/very/long/directory/structure/file.pdf", 20)
	assert.LessOrEqual(t, len(got), 20)
	assert.Contains(t, got, "file.pdf")
	assert.True(t, len(got) > 3 && got[:3] == "...")
}
