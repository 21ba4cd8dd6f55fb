// Package partition reads and writes the partition files that split the
// document list between workers.
//
// A partition file holds one document path per line. Files are named by a
// printf pattern with a 1-based index, e.g. pdf_part_1.txt.
package partition

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lexerrors "github.com/Aman-CERP/lexsearch/internal/errors"
)

// DefaultPattern is the partition file name pattern.
const DefaultPattern = "pdf_part_%d.txt"

// Partition is one validated partition file.
type Partition struct {
	Index int      // 1-based position
	Path  string   // partition file path
	Paths []string // document paths, in file order
}

// FileName returns the partition file name for index i.
func FileName(pattern string, i int) string {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return fmt.Sprintf(pattern, i)
}

// Matcher reports whether a file name is a partition file for pattern,
// for any index. A pattern without %d matches only itself.
func Matcher(pattern string) func(name string) bool {
	if pattern == "" {
		pattern = DefaultPattern
	}
	prefix, suffix, found := strings.Cut(pattern, "%d")
	if !found {
		return func(name string) bool { return name == pattern }
	}
	return func(name string) bool {
		if len(name) <= len(prefix)+len(suffix) ||
			!strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			return false
		}
		for _, r := range name[len(prefix) : len(name)-len(suffix)] {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	}
}

// Collect checks partitions 1..count in folder and returns the usable ones
// in index order. Each missing, unreadable or empty partition yields a
// PartitionWarning instead.
func Collect(folder string, count int, pattern string) ([]Partition, []error) {
	var (
		valid    []Partition
		warnings []error
	)

	for i := 1; i <= count; i++ {
		path := filepath.Join(folder, FileName(pattern, i))

		info, err := os.Stat(path)
		if err != nil {
			warnings = append(warnings, lexerrors.PartitionWarning(path, "missing"))
			continue
		}
		if info.IsDir() {
			warnings = append(warnings, lexerrors.PartitionWarning(path, "not a file"))
			continue
		}
		if info.Size() == 0 {
			warnings = append(warnings, lexerrors.PartitionWarning(path, "empty"))
			continue
		}

		paths, err := ReadPaths(path)
		if err != nil {
			warnings = append(warnings, lexerrors.PartitionWarning(path, err.Error()))
			continue
		}
		if len(paths) == 0 {
			warnings = append(warnings, lexerrors.PartitionWarning(path, "empty"))
			continue
		}

		valid = append(valid, Partition{Index: i, Path: path, Paths: paths})
	}

	return valid, warnings
}

// ReadPaths returns the trimmed, non-blank lines of a partition file.
func ReadPaths(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var paths []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		paths = append(paths, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read partition: %w", err)
	}
	return paths, nil
}

// Write distributes paths round-robin over count partition files in folder,
// creating the folder if needed. Every partition file is rewritten, so
// partitions left over from a previous run are emptied. It returns the
// written file paths.
func Write(folder, pattern string, count int, paths []string) ([]string, error) {
	if count < 1 {
		return nil, fmt.Errorf("partition count must be positive, got %d", count)
	}
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("create partition folder: %w", err)
	}

	buckets := make([][]string, count)
	for i, p := range paths {
		buckets[i%count] = append(buckets[i%count], p)
	}

	files := make([]string, 0, count)
	for i, bucket := range buckets {
		path := filepath.Join(folder, FileName(pattern, i+1))

		var sb strings.Builder
		for _, p := range bucket {
			sb.WriteString(p)
			sb.WriteByte('\n')
		}
		if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
			return files, fmt.Errorf("write partition %d: %w", i+1, err)
		}
		files = append(files, path)
	}
	return files, nil
}
