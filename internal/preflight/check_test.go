package preflight

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/lexsearch/internal/config"
	"github.com/Aman-CERP/lexsearch/internal/scanner"
	"github.com/Aman-CERP/lexsearch/internal/store"
)

// projectConfig returns a config rooted in a fresh temp dir.
func projectConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.Output.IndexPath = filepath.Join(dir, "output.json")
	cfg.Indexing.PartitionFolder = filepath.Join(dir, "all")
	cfg.Enumeration.Script = filepath.Join(dir, "scripts", "pdf_search.sh")
	return cfg
}

func TestCheckStatus_String(t *testing.T) {
	tests := []struct {
		status CheckStatus
		want   string
	}{
		{StatusPass, "PASS"},
		{StatusWarn, "WARN"},
		{StatusFail, "FAIL"},
		{CheckStatus(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.String())
		})
	}
}

func TestCheckResult_IsCritical(t *testing.T) {
	tests := []struct {
		name     string
		result   CheckResult
		expected bool
	}{
		{
			name:     "required pass is not critical",
			result:   CheckResult{Status: StatusPass, Required: true},
			expected: false,
		},
		{
			name:     "required fail is critical",
			result:   CheckResult{Status: StatusFail, Required: true},
			expected: true,
		},
		{
			name:     "optional fail is not critical",
			result:   CheckResult{Status: StatusFail, Required: false},
			expected: false,
		},
		{
			name:     "required warn is not critical",
			result:   CheckResult{Status: StatusWarn, Required: true},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.result.IsCritical())
		})
	}
}

func TestCheckResult_JSONStatusIsLowercaseName(t *testing.T) {
	data, err := json.Marshal(CheckResult{Name: "formats", Status: StatusWarn})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"warn"`)
}

func TestChecker_SummaryStatus(t *testing.T) {
	c := New(projectConfig(t))

	assert.Equal(t, "ready", c.SummaryStatus([]CheckResult{
		{Status: StatusPass, Required: true},
	}))
	assert.Equal(t, "ready_with_warnings", c.SummaryStatus([]CheckResult{
		{Status: StatusPass, Required: true},
		{Status: StatusWarn},
	}))
	assert.Equal(t, "ready_with_warnings", c.SummaryStatus([]CheckResult{
		{Status: StatusFail, Required: false},
	}))
	assert.Equal(t, "failed", c.SummaryStatus([]CheckResult{
		{Status: StatusWarn},
		{Status: StatusFail, Required: true},
	}))
}

func TestChecker_CheckWritePermissions_CreatesDir(t *testing.T) {
	// Given: a data dir that does not exist yet
	dir := filepath.Join(t.TempDir(), "nested", "data")
	c := New(projectConfig(t))

	// When: checking write permissions
	result := c.CheckWritePermissions(dir)

	// Then: the dir is created and no probe file is left behind
	assert.Equal(t, StatusPass, result.Status)
	assert.True(t, result.Required)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestChecker_CheckWritePermissions_ReadOnlyDir(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	result := New(projectConfig(t)).CheckWritePermissions(dir)

	assert.Equal(t, StatusFail, result.Status)
	assert.True(t, result.IsCritical())
}

func TestChecker_CheckDiskSpace(t *testing.T) {
	result := New(projectConfig(t)).CheckDiskSpace(t.TempDir())

	assert.Equal(t, "disk_space", result.Name)
	assert.NotEmpty(t, result.Message)
}

func TestChecker_CheckFileDescriptors(t *testing.T) {
	result := New(projectConfig(t)).CheckFileDescriptors()

	assert.Equal(t, "file_descriptors", result.Name)
	assert.NotEmpty(t, result.Message)
}

func TestChecker_CheckIndexLock(t *testing.T) {
	t.Run("idle", func(t *testing.T) {
		result := New(projectConfig(t)).CheckIndexLock()
		assert.Equal(t, StatusPass, result.Status)
	})

	t.Run("stale lock warns", func(t *testing.T) {
		cfg := projectConfig(t)
		lockPath := filepath.Join(cfg.DataDir(), "indexing.lock")
		require.NoError(t, os.WriteFile(lockPath, []byte("2026-01-01T00:00:00Z"), 0o644))

		result := New(cfg).CheckIndexLock()

		assert.Equal(t, StatusWarn, result.Status)
		assert.Equal(t, "previous run was interrupted", result.Message)
	})

	t.Run("held lock fails", func(t *testing.T) {
		cfg := projectConfig(t)
		lock := store.NewFileLock(filepath.Join(cfg.DataDir(), "indexing"))
		require.NoError(t, lock.Lock())
		t.Cleanup(func() { _ = lock.Unlock() })

		result := New(cfg).CheckIndexLock()

		assert.Equal(t, StatusFail, result.Status)
		assert.True(t, result.IsCritical())
	})
}

func TestChecker_CheckEnumeration(t *testing.T) {
	t.Run("missing script warns", func(t *testing.T) {
		cfg := projectConfig(t)

		result := New(cfg).CheckEnumeration()

		assert.Equal(t, StatusWarn, result.Status)
		assert.False(t, result.Required)
		assert.Contains(t, result.Message, "not found")
	})

	t.Run("script present", func(t *testing.T) {
		cfg := projectConfig(t)
		require.NoError(t, os.MkdirAll(filepath.Dir(cfg.Enumeration.Script), 0o755))
		require.NoError(t, os.WriteFile(cfg.Enumeration.Script, []byte("#!/bin/sh\n"), 0o755))

		result := New(cfg).CheckEnumeration()

		assert.Equal(t, StatusPass, result.Status)
	})

	t.Run("builtin with one missing root", func(t *testing.T) {
		cfg := projectConfig(t)
		cfg.Enumeration.Mode = scanner.ModeBuiltin
		cfg.Enumeration.Roots = []string{t.TempDir(), filepath.Join(t.TempDir(), "gone")}

		result := New(cfg).CheckEnumeration()

		assert.Equal(t, StatusWarn, result.Status)
		assert.Equal(t, "1 root(s)", result.Message)
		assert.Contains(t, result.Details, "gone")
	})

	t.Run("builtin without roots", func(t *testing.T) {
		cfg := projectConfig(t)
		cfg.Enumeration.Mode = scanner.ModeBuiltin

		result := New(cfg).CheckEnumeration()

		assert.Equal(t, StatusWarn, result.Status)
		assert.Equal(t, "no document roots exist", result.Message)
	})

	t.Run("none needs the partition folder", func(t *testing.T) {
		cfg := projectConfig(t)
		cfg.Enumeration.Mode = scanner.ModeNone

		assert.Equal(t, StatusWarn, New(cfg).CheckEnumeration().Status)

		require.NoError(t, os.MkdirAll(cfg.Indexing.PartitionFolder, 0o755))
		assert.Equal(t, StatusPass, New(cfg).CheckEnumeration().Status)
	})
}

func TestChecker_CheckFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		want    CheckStatus
	}{
		{"all served", []string{".pdf", ".docx"}, StatusPass},
		{"some unserved", []string{".pdf", ".odt"}, StatusWarn},
		{"none served", []string{".odt"}, StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := projectConfig(t)
			cfg.Indexing.SupportedFormats = tt.formats

			result := New(cfg).CheckFormats()

			assert.Equal(t, tt.want, result.Status)
		})
	}
}

func TestChecker_RunAll(t *testing.T) {
	cfg := projectConfig(t)
	c := New(cfg)

	results := c.RunAll(context.Background())

	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{
		"write_permissions", "disk_space", "file_descriptors",
		"index_lock", "enumeration", "formats",
	}, names)
}

func TestChecker_PrintResults(t *testing.T) {
	var buf bytes.Buffer
	c := New(projectConfig(t), WithOutput(&buf), WithVerbose(true))

	c.PrintResults([]CheckResult{
		{Name: "write_permissions", Status: StatusPass, Message: "OK", Details: "/data", Required: true},
		{Name: "enumeration", Status: StatusWarn, Message: "script missing"},
		{Name: "formats", Status: StatusFail, Message: "none", Required: true},
	})

	out := buf.String()
	assert.Contains(t, out, "lexsearch System Check")
	assert.Regexp(t, `PASS\s+write_permissions\s+OK`, out)
	assert.Regexp(t, `\n\s+/data\n`, out)
	assert.Regexp(t, `WARN\s+enumeration\s+script missing`, out)
	assert.Regexp(t, `FAIL\s+formats\s+none`, out)
	assert.Contains(t, out, "1 passed, 1 warning(s), 1 failed")
	assert.Contains(t, out, "Status: FAILED")
}

func TestChecker_PrintResults_HidesDetailsUnlessVerbose(t *testing.T) {
	var buf bytes.Buffer
	c := New(projectConfig(t), WithOutput(&buf))

	c.PrintResults([]CheckResult{
		{Name: "write_permissions", Status: StatusPass, Message: "OK", Details: "/data", Required: true},
	})

	assert.NotContains(t, buf.String(), "/data")
	assert.Contains(t, buf.String(), "Status: READY")
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.0 KB", formatBytes(1024))
	assert.Equal(t, "100.0 MB", formatBytes(MinDiskSpaceBytes))
}
