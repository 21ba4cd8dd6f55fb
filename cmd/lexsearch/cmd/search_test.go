package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lexerrors "github.com/Aman-CERP/lexsearch/internal/errors"
)

func indexedProject(t *testing.T) (string, string) {
	t.Helper()
	dir := isolate(t)
	a, b := corpus(t, dir)
	out, err := execute(t, "index", "--no-tui")
	require.NoError(t, err, out)
	return a, b
}

func TestSearchCmd_Text(t *testing.T) {
	// Given: an indexed project
	a, b := indexedProject(t)

	// When: searching for a keyword of the first document
	out, err := execute(t, "search", "raft", "consensus")

	// Then: only that document is listed
	require.NoError(t, err)
	assert.Contains(t, out, a)
	assert.NotContains(t, out, b)
	assert.Contains(t, out, "Found 1 result(s) for 'raft consensus'")
}

func TestSearchCmd_NoResults(t *testing.T) {
	indexedProject(t)

	out, err := execute(t, "search", "zebra")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found for 'zebra'")
}

func TestSearchCmd_JSONWithScores(t *testing.T) {
	a, _ := indexedProject(t)

	out, err := execute(t, "search", "consensus raft", "--format", "json", "--scores")
	require.NoError(t, err)

	var parsed struct {
		Query   string `json:"query"`
		Count   int    `json:"count"`
		Results []struct {
			Path  string `json:"path"`
			Score int    `json:"score"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, "consensus raft", parsed.Query)
	require.Equal(t, 1, parsed.Count)
	assert.Equal(t, a, parsed.Results[0].Path)
	assert.Equal(t, 2, parsed.Results[0].Score)
}

func TestSearchCmd_Limit(t *testing.T) {
	indexedProject(t)

	out, err := execute(t, "search", "consensus search", "--limit", "1")

	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 result(s)")
}

func TestSearchCmd_NoIndex(t *testing.T) {
	isolate(t)

	_, err := execute(t, "search", "anything")

	require.Error(t, err)
	assert.Equal(t, lexerrors.ErrCodeIndexIO, lexerrors.GetCode(err))
}

func TestSearchCmd_InvalidFormat(t *testing.T) {
	indexedProject(t)

	_, err := execute(t, "search", "raft", "--format", "xml")

	assert.Error(t, err)
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	isolate(t)

	_, err := execute(t, "search")

	assert.Error(t, err)
}
