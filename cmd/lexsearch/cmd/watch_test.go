package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestIndexCmd_WatchReindexesOnPartitionChange(t *testing.T) {
	// Given: an indexed project watched with a short debounce
	dir := isolate(t)
	a, _ := corpus(t, dir)
	f, err := os.OpenFile(filepath.Join(dir, ".lexsearch.yaml"), os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString("watch:\n  debounce: 100ms\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	cmd := NewRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"index", "--no-tui", "--watch"})

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Watching")
	}, 10*time.Second, 20*time.Millisecond)

	// The watch is registered asynchronously after the message
	time.Sleep(300 * time.Millisecond)

	// When: a partition file is rewritten to list one document
	part := filepath.Join(dir, "all", "pdf_part_1.txt")
	require.NoError(t, os.WriteFile(part, []byte(a+"\n"), 0o644))
	require.NoError(t, os.Remove(filepath.Join(dir, "all", "pdf_part_2.txt")))

	// Then: the index is rebuilt from the partition files alone
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Complete: 1 documents indexed")
	}, 10*time.Second, 20*time.Millisecond)
	assert.Contains(t, out.String(), "re-indexing")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}
