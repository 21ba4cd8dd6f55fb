package scanner

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	lexerrors "github.com/Aman-CERP/lexsearch/internal/errors"
	"github.com/Aman-CERP/lexsearch/internal/partition"
)

// DefaultExclude lists directory names skipped by the walker.
var DefaultExclude = []string{".git", "node_modules"}

// WalkEnumerator finds documents under Roots and writes them round-robin
// into Count partition files in Folder.
type WalkEnumerator struct {
	Roots   []string
	Formats []string // extensions such as ".pdf"
	Exclude []string // glob patterns matched against file and directory names
	Folder  string
	Pattern string
	Count   int
	Logger  *slog.Logger
}

// Enumerate walks every root. Unreadable roots and directories are logged and
// skipped. It fails only when no root is configured or the partition files
// cannot be written.
func (w *WalkEnumerator) Enumerate(_ context.Context) (*Result, error) {
	start := time.Now()
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if len(w.Roots) == 0 {
		return nil, lexerrors.EnumerationError("no document roots configured", nil).
			WithSuggestion("Set enumeration.roots or pass --root")
	}

	formats := make(map[string]struct{}, len(w.Formats))
	for _, f := range w.Formats {
		formats[strings.ToLower(f)] = struct{}{}
	}

	var (
		paths []string
		seen  = make(map[string]struct{})
	)
	for _, root := range w.Roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			logger.Warn("enumeration_root_invalid", slog.String("root", root), slog.String("error", err.Error()))
			continue
		}

		err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warn("enumeration_walk_error",
					slog.String("path", path),
					slog.String("error", err.Error()))
				if d != nil && d.IsDir() && path != absRoot {
					return filepath.SkipDir
				}
				return nil
			}

			if w.excluded(d.Name()) && path != absRoot {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if _, ok := formats[strings.ToLower(filepath.Ext(path))]; !ok {
				return nil
			}
			if _, dup := seen[path]; dup {
				return nil
			}
			seen[path] = struct{}{}
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			logger.Warn("enumeration_root_failed", slog.String("root", root), slog.String("error", err.Error()))
		}
	}

	if _, err := partition.Write(w.Folder, w.Pattern, w.Count, paths); err != nil {
		return nil, lexerrors.EnumerationError("failed to write partition files", err)
	}

	res := &Result{Files: len(paths), Duration: time.Since(start)}
	logger.Info("enumeration_walk_finished",
		slog.Int("files", res.Files),
		slog.Int("partitions", w.Count),
		slog.Duration("duration", res.Duration))
	return res, nil
}

func (w *WalkEnumerator) excluded(name string) bool {
	for _, pattern := range w.Exclude {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
