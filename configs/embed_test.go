package configs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/lexsearch/configs"
	"github.com/Aman-CERP/lexsearch/internal/config"
)

func TestProjectConfigTemplate_LoadsAsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".lexsearch.yaml"), []byte(configs.ProjectConfigTemplate), 0o644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	defaults := config.NewConfig()
	assert.Equal(t, defaults.Indexing, withFolder(cfg.Indexing, defaults.Indexing.PartitionFolder))
	assert.Equal(t, defaults.Autocomplete, cfg.Autocomplete)
	assert.Equal(t, defaults.Search, cfg.Search)
	assert.Equal(t, defaults.Output.Backend, cfg.Output.Backend)
	assert.True(t, cfg.Output.AtomicWrites)
	assert.Equal(t, filepath.Join(dir, "all"), cfg.Indexing.PartitionFolder)
}

func TestUserConfigTemplate_Loads(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	path := config.GetUserConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(configs.UserConfigTemplate), 0o644))

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Telemetry.MetricsFile)
}

func withFolder(ic config.IndexingConfig, folder string) config.IndexingConfig {
	ic.PartitionFolder = folder
	return ic
}
