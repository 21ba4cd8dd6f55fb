package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lexerrors "github.com/Aman-CERP/lexsearch/internal/errors"
	"github.com/Aman-CERP/lexsearch/internal/store"
)

func TestIndexCmd_BuiltinWalkerBuildsIndex(t *testing.T) {
	// Given: a project with two documents
	dir := isolate(t)
	a, b := corpus(t, dir)

	// When: indexing with plain output
	out, err := execute(t, "index", "--no-tui")

	// Then: both documents are indexed and the files are written
	require.NoError(t, err, out)
	assert.Contains(t, out, "Complete: 2 documents indexed")
	assert.NotContains(t, out, "\x1b[", "plain output must not contain ANSI codes")

	idx, err := store.NewJSONStore(filepath.Join(dir, "output.json")).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, idx.Paths())

	words, err := store.LoadVocabulary(filepath.Join(dir, "autocomplete_words.json"))
	require.NoError(t, err)
	assert.Equal(t, "consensus", words[0])

	assert.NoFileExists(t, filepath.Join(dir, "indexing.lock"))
}

func TestIndexCmd_RootFlagAddsRoots(t *testing.T) {
	// Given: documents outside the configured roots
	dir := isolate(t)
	corpus(t, dir)
	extra := filepath.Join(dir, "extra")
	require.NoError(t, os.MkdirAll(extra, 0o755))
	c := filepath.Join(extra, "c.txt")
	require.NoError(t, os.WriteFile(c, []byte("Quarterly revenue forecast."), 0o644))

	// When: indexing with --root
	out, err := execute(t, "index", "--no-tui", "--root", "extra")

	// Then: the extra document is indexed too
	require.NoError(t, err, out)
	idx, err := store.NewJSONStore(filepath.Join(dir, "output.json")).Load()
	require.NoError(t, err)
	_, ok := idx.Get(c)
	assert.True(t, ok)
	assert.Equal(t, 3, idx.Len())
}

func TestIndexCmd_EnumerateNoneUsesExistingPartitions(t *testing.T) {
	// Given: a partition file written by hand
	dir := isolate(t)
	a, _ := corpus(t, dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "all"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "all", "pdf_part_1.txt"), []byte(a+"\n"), 0o644))

	// When: indexing without enumeration
	out, err := execute(t, "index", "--no-tui", "--enumerate", "none")

	// Then: only the listed document is indexed
	require.NoError(t, err, out)
	assert.Contains(t, out, "Complete: 1 documents indexed")
}

func TestIndexCmd_EmptyCorpusFails(t *testing.T) {
	// Given: a project with nothing to index and no enumeration
	isolate(t)

	// When: indexing
	out, err := execute(t, "index", "--no-tui", "--enumerate", "none")

	// Then: the run fails with the empty corpus error
	require.Error(t, err)
	assert.Equal(t, lexerrors.ErrCodeEmptyCorpus, lexerrors.GetCode(err))
	assert.Contains(t, out, "Failed:")
}

func TestIndexCmd_InvalidEnumerateMode(t *testing.T) {
	isolate(t)

	_, err := execute(t, "index", "--no-tui", "--enumerate", "magic")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --enumerate")
}

func TestIndexCmd_WritesMetricsFile(t *testing.T) {
	// Given: a metrics file configured through the environment
	dir := isolate(t)
	corpus(t, dir)
	metrics := filepath.Join(dir, "metrics", "lexsearch.prom")
	t.Setenv("LEXSEARCH_METRICS_FILE", metrics)

	// When: indexing
	out, err := execute(t, "index", "--no-tui")

	// Then: the metrics are exported in the text format
	require.NoError(t, err, out)
	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "lexsearch_")
}

func TestIndexCmd_DotEnvOverridesConfig(t *testing.T) {
	// Given: a .env file that moves the index
	dir := isolate(t)
	corpus(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LEXSEARCH_INDEX_PATH=custom.json\n"), 0o644))

	// When: indexing
	out, err := execute(t, "index", "--no-tui")

	// Then: the index is written where .env says
	require.NoError(t, err, out)
	assert.FileExists(t, filepath.Join(dir, "custom.json"))
	assert.NoFileExists(t, filepath.Join(dir, "output.json"))
}

func TestIndexCmd_SQLiteBackend(t *testing.T) {
	dir := isolate(t)
	corpus(t, dir)
	t.Setenv("LEXSEARCH_BACKEND", "sqlite")
	t.Setenv("LEXSEARCH_INDEX_PATH", "index.db")

	out, err := execute(t, "index", "--no-tui")
	require.NoError(t, err, out)

	out, err = execute(t, "search", "raft")
	require.NoError(t, err)
	assert.Contains(t, out, "a.txt")
}
