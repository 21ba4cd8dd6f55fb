package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	// DefaultMaxBackups is the number of backup sets kept.
	DefaultMaxBackups = 3

	// BackupDirName is the directory, next to the index, holding backup sets.
	BackupDirName = "backups"
)

// Backup is one set of copied store files, taken before a run overwrites them.
type Backup struct {
	// Dir holds the copies.
	Dir string

	// Files maps each original path to its copy. Originals that did not
	// exist when the backup was taken map to "".
	Files map[string]string
}

// BackupDir returns the backup directory for a store file.
func BackupDir(storePath string) string {
	return filepath.Join(filepath.Dir(storePath), BackupDirName)
}

// CreateBackup copies each of files into a new timestamped set under dir and
// prunes sets beyond keep, newest first. Missing files are recorded so that
// Restore removes whatever a later write created in their place.
func CreateBackup(dir string, keep int, files ...string) (*Backup, error) {
	if keep < 1 {
		keep = DefaultMaxBackups
	}

	setDir := filepath.Join(dir, time.Now().Format("20060102-150405.000000000"))
	if err := os.MkdirAll(setDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	b := &Backup{Dir: setDir, Files: make(map[string]string, len(files))}
	for i, f := range files {
		// Nothing to copy; Restore removes whatever is written there later
		if _, err := os.Stat(f); err != nil {
			b.Files[f] = ""
			continue
		}

		// Prefix with the position so two files sharing a base name stay apart
		dst := filepath.Join(setDir, fmt.Sprintf("%d-%s", i, filepath.Base(f)))
		if err := copyFile(f, dst); err != nil {
			return nil, fmt.Errorf("failed to back up %s: %w", f, err)
		}
		b.Files[f] = dst
	}

	// Best effort: the backup itself succeeded
	_ = pruneBackups(dir, keep)

	return b, nil
}

// Restore puts every backed up file back in place and removes files that
// did not exist when the backup was taken.
func (b *Backup) Restore() error {
	var errs []error
	for orig, copyPath := range b.Files {
		if copyPath == "" {
			if err := os.Remove(orig); err != nil && !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, fmt.Errorf("remove %s: %w", orig, err))
			}
			continue
		}
		if err := copyFile(copyPath, orig); err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", orig, err))
		}
	}
	return errors.Join(errs...)
}

// ListBackups returns the backup set directories under dir, newest first.
func ListBackups(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list backup directory: %w", err)
	}

	var sets []string
	for _, entry := range entries {
		if entry.IsDir() {
			sets = append(sets, filepath.Join(dir, entry.Name()))
		}
	}

	// Timestamped names sort chronologically
	sort.Sort(sort.Reverse(sort.StringSlice(sets)))
	return sets, nil
}

// pruneBackups removes backup sets beyond keep, keeping the newest.
func pruneBackups(dir string, keep int) error {
	sets, err := ListBackups(dir)
	if err != nil {
		return err
	}
	if len(sets) <= keep {
		return nil
	}
	for _, set := range sets[keep:] {
		// Best effort - continue removing others
		_ = os.RemoveAll(set)
	}
	return nil
}
