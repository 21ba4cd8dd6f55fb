package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var lexsearchEnv = []string{
	"LEXSEARCH_PROCESS_COUNT",
	"LEXSEARCH_TOP_KEYWORDS",
	"LEXSEARCH_AUTOCOMPLETE_SIZE",
	"LEXSEARCH_PARTITION_FOLDER",
	"LEXSEARCH_INDEX_PATH",
	"LEXSEARCH_AUTOCOMPLETE_PATH",
	"LEXSEARCH_ENUMERATION_MODE",
	"LEXSEARCH_ENUMERATION_SCRIPT",
	"LEXSEARCH_BACKEND",
	"LEXSEARCH_LOG_LEVEL",
	"LEXSEARCH_METRICS_FILE",
}

// isolate points HOME and the user config at temp dirs, unsets LEXSEARCH_*
// variables for the test, and changes into a fresh project directory.
func isolate(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, key := range lexsearchEnv {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	t.Chdir(dir)

	debugMode = false
	noColor = true
	return dir
}

// corpus writes two text documents under dir/docs and a project config that
// indexes them with the builtin walker.
func corpus(t *testing.T, dir string) (string, string) {
	t.Helper()

	docs := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(docs, 0o755))
	a := filepath.Join(docs, "a.txt")
	b := filepath.Join(docs, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("Distributed consensus protocols. Raft consensus."), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("Keyword search engines rank documents."), 0o644))

	cfg := `indexing:
  process_count: 2
  supported_formats: [".txt"]
enumeration:
  mode: builtin
  roots: [docs]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".lexsearch.yaml"), []byte(cfg), 0o644))
	return a, b
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}
