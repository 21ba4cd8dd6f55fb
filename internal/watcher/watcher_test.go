package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperation_String(t *testing.T) {
	assert.Equal(t, "CREATE", OpCreate.String())
	assert.Equal(t, "MODIFY", OpModify.String())
	assert.Equal(t, "DELETE", OpDelete.String())
	assert.Equal(t, "UNKNOWN", Operation(42).String())
}

func TestOptions_WithDefaults(t *testing.T) {
	opts := Options{PollInterval: time.Second}.WithDefaults()

	assert.Equal(t, 500*time.Millisecond, opts.DebounceWindow)
	assert.Equal(t, time.Second, opts.PollInterval)
	assert.Equal(t, 16, opts.EventBufferSize)
	assert.NotNil(t, opts.Logger)
	assert.True(t, opts.matches("anything"))
}

func TestPoller_Diff(t *testing.T) {
	// Given: a folder with one partition and one unrelated file
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "part_1.txt"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0644))

	opts := Options{Match: func(n string) bool { return strings.HasPrefix(n, "part_") }}.WithDefaults()
	p, err := newPoller(dir, opts)
	require.NoError(t, err)

	// When: one partition changes size, one is added, one is removed
	require.NoError(t, os.WriteFile(filepath.Join(dir, "part_1.txt"), []byte("a\nb"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "part_2.txt"), []byte("c"), 0644))
	current, err := p.scan()
	require.NoError(t, err)
	events := p.diff(current)

	// Then: the changes are reported and the unrelated file is not
	ops := map[string]Operation{}
	for _, e := range events {
		ops[e.Path] = e.Operation
	}
	assert.Equal(t, map[string]Operation{"part_1.txt": OpModify, "part_2.txt": OpCreate}, ops)

	require.NoError(t, os.Remove(filepath.Join(dir, "part_2.txt")))
	current, err = p.scan()
	require.NoError(t, err)
	events = p.diff(current)
	require.Len(t, events, 1)
	assert.Equal(t, OpDelete, events[0].Operation)
}

func startWatcher(t *testing.T, opts Options, dir string) *FolderWatcher {
	t.Helper()
	w := New(opts)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx, dir) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, func() bool { return w.Mode() != "" }, 2*time.Second, 5*time.Millisecond)
	return w
}

func TestFolderWatcher_Polling(t *testing.T) {
	// Given: a polling watcher on an empty folder
	dir := t.TempDir()
	w := startWatcher(t, Options{
		ForcePolling:   true,
		PollInterval:   20 * time.Millisecond,
		DebounceWindow: 20 * time.Millisecond,
		Match:          func(n string) bool { return strings.HasSuffix(n, ".txt") },
	}, dir)
	assert.Equal(t, ModePolling, w.Mode())

	// When: a partition file appears
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pdf_part_1.txt"), []byte("/a.pdf\n"), 0644))

	// Then: one batch reports it
	events := receive(t, w.Events())
	require.Len(t, events, 1)
	assert.Equal(t, "pdf_part_1.txt", events[0].Path)
	assert.Equal(t, OpCreate, events[0].Operation)
}

func TestFolderWatcher_Fsnotify(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, Options{DebounceWindow: 30 * time.Millisecond}, dir)
	if w.Mode() != ModeFsnotify {
		t.Skip("fsnotify unavailable")
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "pdf_part_1.txt"), []byte("/a.pdf\n"), 0644))

	events := receive(t, w.Events())
	require.NotEmpty(t, events)
	assert.Equal(t, "pdf_part_1.txt", events[0].Path)
}

func TestFolderWatcher_StopClosesEvents(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, Options{ForcePolling: true, PollInterval: 10 * time.Millisecond}, dir)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	_, ok := <-w.Events()
	assert.False(t, ok)
}

func TestFolderWatcher_Start_MissingFolder(t *testing.T) {
	w := New(Options{})
	err := w.Start(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
