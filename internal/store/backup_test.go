package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackup_RestoreRevertsOverwrite(t *testing.T) {
	// Given: an existing index and vocabulary
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "output.json")
	vocabPath := filepath.Join(dir, "autocomplete_words.json")
	require.NoError(t, os.WriteFile(indexPath, []byte(`{"old": ["data"]}`), 0644))
	require.NoError(t, os.WriteFile(vocabPath, []byte(`["data"]`), 0644))

	b, err := CreateBackup(BackupDir(indexPath), 3, indexPath, vocabPath)
	require.NoError(t, err)

	// When: the files are overwritten and the backup restored
	require.NoError(t, os.WriteFile(indexPath, []byte(`{"new": []}`), 0644))
	require.NoError(t, os.WriteFile(vocabPath, []byte(`[]`), 0644))
	require.NoError(t, b.Restore())

	// Then: the pre-run content is back
	data, err := os.ReadFile(indexPath)
	require.NoError(t, err)
	assert.Equal(t, `{"old": ["data"]}`, string(data))
	data, err = os.ReadFile(vocabPath)
	require.NoError(t, err)
	assert.Equal(t, `["data"]`, string(data))
}

func TestBackup_RestoreRemovesFilesThatDidNotExist(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "output.json")

	b, err := CreateBackup(BackupDir(indexPath), 3, indexPath)
	require.NoError(t, err)
	assert.Equal(t, "", b.Files[indexPath])

	require.NoError(t, os.WriteFile(indexPath, []byte(`{}`), 0644))
	require.NoError(t, b.Restore())

	_, err = os.Stat(indexPath)
	assert.True(t, os.IsNotExist(err))
}

func TestBackup_KeepsNewestSets(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "output.json")
	require.NoError(t, os.WriteFile(indexPath, []byte(`{}`), 0644))
	backups := BackupDir(indexPath)

	var last *Backup
	for i := 0; i < 5; i++ {
		b, err := CreateBackup(backups, 2, indexPath)
		require.NoError(t, err)
		last = b
		time.Sleep(2 * time.Millisecond)
	}

	sets, err := ListBackups(backups)
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, last.Dir, sets[0])
}

func TestListBackups_MissingDir(t *testing.T) {
	sets, err := ListBackups(filepath.Join(t.TempDir(), "backups"))
	assert.NoError(t, err)
	assert.Empty(t, sets)
}
