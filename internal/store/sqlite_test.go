package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lexerrors "github.com/Aman-CERP/lexsearch/internal/errors"
)

func TestSQLiteStore_RoundTrip(t *testing.T) {
	// Given: an index including a document with no keywords
	idx := sampleIndex()
	idx.Set("/docs/blank.txt", []string{})
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "index.db"))

	// When: saving and loading
	require.NoError(t, s.Save(idx))
	loaded, err := s.Load()

	// Then: document and keyword order survive
	require.NoError(t, err)
	assert.Equal(t, idx.Paths(), loaded.Paths())
	kw, _ := loaded.Get("/docs/zeta.pdf")
	assert.Equal(t, []string{"consensus", "raft"}, kw)
	kw, ok := loaded.Get("/docs/blank.txt")
	require.True(t, ok)
	assert.Empty(t, kw)
}

func TestSQLiteStore_SaveReplacesPreviousContent(t *testing.T) {
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, s.Save(sampleIndex()))

	next := NewIndex()
	next.Set("/docs/new.pdf", []string{"fresh"})
	require.NoError(t, s.Save(next))

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"/docs/new.pdf"}, loaded.Paths())
}

func TestSQLiteStore_LoadMissing(t *testing.T) {
	_, err := NewSQLiteStore(filepath.Join(t.TempDir(), "none.db")).Load()
	assert.Equal(t, lexerrors.ErrCodeIndexIO, lexerrors.GetCode(err))
}
