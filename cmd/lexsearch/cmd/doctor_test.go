package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lexerrors "github.com/Aman-CERP/lexsearch/internal/errors"
	"github.com/Aman-CERP/lexsearch/internal/store"
)

func TestDoctorCmd_ReadyProject(t *testing.T) {
	// Given: a project with documents
	dir := isolate(t)
	corpus(t, dir)

	// When: running doctor
	out, err := execute(t, "doctor", "--verbose")

	// Then: every required check passes
	require.NoError(t, err, out)
	assert.Contains(t, out, "lexsearch System Check")
	assert.Regexp(t, `PASS\s+write_permissions\s+OK`, out)
	assert.Regexp(t, `PASS\s+enumeration\s+1 root\(s\)`, out)
	assert.Regexp(t, `PASS\s+formats\s+\.txt`, out)
	assert.Regexp(t, `Status: READY`, out)
}

func TestDoctorCmd_JSON(t *testing.T) {
	dir := isolate(t)
	corpus(t, dir)

	out, err := execute(t, "doctor", "--json")
	require.NoError(t, err, out)

	var report struct {
		Status string `json:"status"`
		Checks []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Contains(t, []string{"ready", "ready_with_warnings"}, report.Status)
	require.Len(t, report.Checks, 6)
	assert.Equal(t, "write_permissions", report.Checks[0].Name)
	assert.Equal(t, "pass", report.Checks[0].Status)
}

func TestDoctorCmd_MissingScriptWarns(t *testing.T) {
	// Given: a project using the default script, which does not exist
	isolate(t)

	// When: running doctor
	out, err := execute(t, "doctor")

	// Then: the check warns without failing
	require.NoError(t, err, out)
	assert.Regexp(t, `WARN\s+enumeration\s+script`, out)
	assert.Contains(t, out, "Status: READY_WITH_WARNINGS")
}

func TestDoctorCmd_UnsupportedFormatsFail(t *testing.T) {
	// Given: a project whose formats have no extractor
	dir := isolate(t)
	cfg := "indexing:\n  supported_formats: [\".odt\"]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".lexsearch.yaml"), []byte(cfg), 0o644))

	// When: running doctor
	out, err := execute(t, "doctor")

	// Then: the run is reported as failed
	require.Error(t, err)
	assert.Regexp(t, `FAIL\s+formats`, out)
	assert.Contains(t, out, "Status: FAILED")
	assert.Equal(t, lexerrors.ErrCodeInvalidInput, lexerrors.GetCode(err))
}

func TestIndexCmd_PreflightFailureStopsRun(t *testing.T) {
	// Given: a project whose formats have no extractor
	dir := isolate(t)
	cfg := "indexing:\n  supported_formats: [\".odt\"]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".lexsearch.yaml"), []byte(cfg), 0o644))

	// When: indexing
	_, err := execute(t, "index", "--no-tui", "--enumerate", "none")

	// Then: the run never starts
	require.Error(t, err)
	assert.Equal(t, lexerrors.ErrCodeConfigInvalid, lexerrors.GetCode(err))
	assert.NoFileExists(t, filepath.Join(dir, "output.json"))
}

func TestIndexCmd_HeldLockFailsPreflight(t *testing.T) {
	// Given: another run holding the indexing lock
	dir := isolate(t)
	corpus(t, dir)
	lock := store.NewFileLock(filepath.Join(dir, "indexing"))
	require.NoError(t, lock.Lock())
	t.Cleanup(func() { _ = lock.Unlock() })

	// When: indexing
	_, err := execute(t, "index", "--no-tui")

	// Then: the run is rejected as locked
	require.Error(t, err)
	assert.Equal(t, lexerrors.ErrCodeIndexLocked, lexerrors.GetCode(err))
}
