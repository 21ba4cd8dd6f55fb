package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	lexerrors "github.com/Aman-CERP/lexsearch/internal/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	position INTEGER PRIMARY KEY,
	path     TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS keywords (
	document INTEGER NOT NULL REFERENCES documents(position) ON DELETE CASCADE,
	ordinal  INTEGER NOT NULL,
	keyword  TEXT NOT NULL,
	PRIMARY KEY (document, ordinal)
);
CREATE INDEX IF NOT EXISTS idx_keywords_keyword ON keywords(keyword);
`

// SQLiteStore keeps the index in a SQLite database. Document order is the
// position column; keyword order within a document is the ordinal column.
type SQLiteStore struct {
	path string
	opts options
}

var _ IndexStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates a SQLite store at path.
func NewSQLiteStore(path string, opts ...Option) *SQLiteStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &SQLiteStore{path: path, opts: o}
}

// Path returns the database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) open() (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Single writer to prevent lock contention
	db.SetMaxOpenConns(1)

	// DSN params may be ignored by modernc.org/sqlite, so set pragmas directly
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return db, nil
}

// Save replaces every stored document with idx in a single transaction.
func (s *SQLiteStore) Save(idx *Index) error {
	if idx == nil {
		idx = NewIndex()
	}

	lock := NewFileLock(s.path)
	if err := lock.Lock(); err != nil {
		return lexerrors.IndexIOError("failed to lock index "+s.path, err)
	}
	defer lock.Unlock()

	db, err := s.open()
	if err != nil {
		return lexerrors.IndexIOError("failed to open index "+s.path, err)
	}
	defer db.Close()

	if err := replaceAll(db, idx); err != nil {
		return lexerrors.IndexIOError("failed to write index "+s.path, err)
	}

	s.opts.logger.Debug("index_saved",
		"path", s.path,
		"documents", idx.Len(),
		"backend", BackendSQLite)
	return nil
}

func replaceAll(db *sql.DB, idx *Index) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM keywords"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM documents"); err != nil {
		return err
	}

	docStmt, err := tx.Prepare("INSERT INTO documents (position, path) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer docStmt.Close()

	kwStmt, err := tx.Prepare("INSERT INTO keywords (document, ordinal, keyword) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer kwStmt.Close()

	var insertErr error
	position := 0
	idx.Range(func(path string, keywords []string) bool {
		position++
		if _, insertErr = docStmt.Exec(position, path); insertErr != nil {
			return false
		}
		for i, kw := range keywords {
			if _, insertErr = kwStmt.Exec(position, i, kw); insertErr != nil {
				return false
			}
		}
		return true
	})
	if insertErr != nil {
		return insertErr
	}

	return tx.Commit()
}

// Load reads every document in stored order.
func (s *SQLiteStore) Load() (*Index, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, lexerrors.IndexIOError("failed to read index "+s.path, err).
			WithSuggestion("Run 'lexsearch index' to build the index")
	}

	lock := NewFileLock(s.path)
	if err := lock.RLock(); err != nil {
		return nil, lexerrors.IndexIOError("failed to lock index "+s.path, err)
	}
	defer lock.Unlock()

	db, err := s.open()
	if err != nil {
		return nil, lexerrors.IndexIOError("failed to open index "+s.path, err)
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT d.path, k.keyword
		FROM documents d
		LEFT JOIN keywords k ON k.document = d.position
		ORDER BY d.position, k.ordinal`)
	if err != nil {
		return nil, lexerrors.IndexIOError("failed to query index "+s.path, err)
	}
	defer rows.Close()

	idx := NewIndex()
	for rows.Next() {
		var (
			path    string
			keyword sql.NullString
		)
		if err := rows.Scan(&path, &keyword); err != nil {
			return nil, lexerrors.IndexIOError("failed to scan index row", err)
		}
		kw, _ := idx.Get(path)
		if kw == nil {
			kw = []string{}
		}
		if keyword.Valid {
			kw = append(kw, keyword.String)
		}
		idx.Set(path, kw)
	}
	if err := rows.Err(); err != nil {
		return nil, lexerrors.IndexIOError("failed to read index rows", err)
	}
	return idx, nil
}
