package partition

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lexerrors "github.com/Aman-CERP/lexsearch/internal/errors"
)

func writePart(t *testing.T, dir string, i int, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName(DefaultPattern, i)), []byte(content), 0o644))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "pdf_part_3.txt", FileName("", 3))
	assert.Equal(t, "batch-7.lst", FileName("batch-%d.lst", 7))
}

func TestCollect_SkipsMissingAndEmpty(t *testing.T) {
	// Given: partitions 1 and 3 exist, 2 is missing, 4 is empty, 5 is blank lines only
	dir := t.TempDir()
	writePart(t, dir, 1, "/docs/a.pdf\n/docs/b.pdf\n")
	writePart(t, dir, 3, "  /docs/c.docx  \r\n\n")
	writePart(t, dir, 4, "")
	writePart(t, dir, 5, "\n   \n")

	// When: collecting 5 partitions
	valid, warnings := Collect(dir, 5, DefaultPattern)

	// Then: only 1 and 3 are valid, in order, with trimmed lines
	require.Len(t, valid, 2)
	assert.Equal(t, 1, valid[0].Index)
	assert.Equal(t, []string{"/docs/a.pdf", "/docs/b.pdf"}, valid[0].Paths)
	assert.Equal(t, 3, valid[1].Index)
	assert.Equal(t, []string{"/docs/c.docx"}, valid[1].Paths)

	require.Len(t, warnings, 3)
	for _, w := range warnings {
		assert.Equal(t, lexerrors.ErrCodePartitionInvalid, lexerrors.GetCode(w))
		assert.False(t, lexerrors.IsFatal(w))
	}
	assert.Contains(t, warnings[0].Error(), "pdf_part_2.txt")
	assert.Contains(t, warnings[0].Error(), "missing")
}

func TestCollect_MissingFolder(t *testing.T) {
	valid, warnings := Collect(filepath.Join(t.TempDir(), "nope"), 3, DefaultPattern)

	assert.Empty(t, valid)
	assert.Len(t, warnings, 3)
}

func TestCollect_ZeroCount(t *testing.T) {
	valid, warnings := Collect(t.TempDir(), 0, DefaultPattern)

	assert.Empty(t, valid)
	assert.Empty(t, warnings)
}

func TestWrite_RoundRobin(t *testing.T) {
	// Given: five paths and three partitions
	dir := filepath.Join(t.TempDir(), "all")
	paths := []string{"a", "b", "c", "d", "e"}

	// When: writing
	files, err := Write(dir, DefaultPattern, 3, paths)

	// Then: paths are dealt round-robin and read back unchanged
	require.NoError(t, err)
	require.Len(t, files, 3)

	valid, warnings := Collect(dir, 3, DefaultPattern)
	assert.Empty(t, warnings)
	require.Len(t, valid, 3)
	assert.Equal(t, []string{"a", "d"}, valid[0].Paths)
	assert.Equal(t, []string{"b", "e"}, valid[1].Paths)
	assert.Equal(t, []string{"c"}, valid[2].Paths)
}

func TestWrite_TruncatesStalePartitions(t *testing.T) {
	dir := t.TempDir()
	writePart(t, dir, 2, "/old/stale.pdf\n")

	_, err := Write(dir, DefaultPattern, 2, []string{"/new/only.pdf"})
	require.NoError(t, err)

	valid, warnings := Collect(dir, 2, DefaultPattern)
	require.Len(t, valid, 1)
	assert.Equal(t, []string{"/new/only.pdf"}, valid[0].Paths)
	assert.Len(t, warnings, 1)
}

func TestWrite_InvalidCount(t *testing.T) {
	_, err := Write(t.TempDir(), DefaultPattern, 0, []string{"a"})
	assert.Error(t, err)
}

func TestMatcher(t *testing.T) {
	match := Matcher(DefaultPattern)

	assert.True(t, match("pdf_part_1.txt"))
	assert.True(t, match("pdf_part_12.txt"))
	assert.False(t, match("pdf_part_.txt"))
	assert.False(t, match("pdf_part_x.txt"))
	assert.False(t, match("pdf_part_1.txt.tmp"))
	assert.False(t, match("other.txt"))

	fixed := Matcher("files.txt")
	assert.True(t, fixed("files.txt"))
	assert.False(t, fixed("files1.txt"))
}
