package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	lexerrors "github.com/Aman-CERP/lexsearch/internal/errors"
)

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// IndexStore saves and loads a complete Index. Save replaces whatever was
// stored before.
type IndexStore interface {
	Save(idx *Index) error
	Load() (*Index, error)
	Path() string
}

// Option configures a store.
type Option func(*options)

type options struct {
	atomic bool
	logger *slog.Logger
}

func defaultOptions() options {
	return options{atomic: true, logger: slog.Default()}
}

// WithAtomicWrites selects temp-file-and-rename writes (default true).
// With false the target file is overwritten in place.
func WithAtomicWrites(atomic bool) Option {
	return func(o *options) {
		o.atomic = atomic
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Open returns the IndexStore for backend at path.
func Open(backend, path string, opts ...Option) (IndexStore, error) {
	switch backend {
	case "", BackendJSON:
		return NewJSONStore(path, opts...), nil
	case BackendSQLite:
		return NewSQLiteStore(path, opts...), nil
	default:
		return nil, lexerrors.ConfigError(fmt.Sprintf("unknown index backend %q", backend), nil)
	}
}

// JSONStore keeps the index as a pretty-printed JSON object.
type JSONStore struct {
	path string
	opts options
}

var _ IndexStore = (*JSONStore)(nil)

// NewJSONStore creates a JSON store at path.
func NewJSONStore(path string, opts ...Option) *JSONStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &JSONStore{path: path, opts: o}
}

// Path returns the index file path.
func (s *JSONStore) Path() string {
	return s.path
}

// Save writes idx with two-space indentation, keys in insertion order.
func (s *JSONStore) Save(idx *Index) error {
	if idx == nil {
		idx = NewIndex()
	}

	data, err := encodeJSON(idx)
	if err != nil {
		return lexerrors.IndexIOError("failed to encode index", err)
	}

	lock := NewFileLock(s.path)
	if err := lock.Lock(); err != nil {
		return lexerrors.IndexIOError("failed to lock index "+s.path, err)
	}
	defer lock.Unlock()

	if err := writeFile(s.path, data, s.opts.atomic); err != nil {
		return lexerrors.IndexIOError("failed to write index "+s.path, err)
	}

	s.opts.logger.Debug("index_saved",
		slog.String("path", s.path),
		slog.Int("documents", idx.Len()),
		slog.Bool("atomic", s.opts.atomic))
	return nil
}

// Load reads the index. A missing or malformed file is an IndexIOError.
func (s *JSONStore) Load() (*Index, error) {
	data, err := readLocked(s.path)
	if err != nil {
		return nil, lexerrors.IndexIOError("failed to read index "+s.path, err).
			WithSuggestion("Run 'lexsearch index' to build the index")
	}

	idx := NewIndex()
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, lexerrors.IndexIOError("malformed index "+s.path, err).
			WithSuggestion("Run 'lexsearch index' to rebuild the index")
	}
	return idx, nil
}

// readLocked reads path under a shared lock. The lock file is only created
// when path exists, so a missing store does not leave a stray lock behind.
func readLocked(path string) ([]byte, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	lock := NewFileLock(path)
	if err := lock.RLock(); err != nil {
		return nil, err
	}
	defer lock.Unlock()

	return os.ReadFile(path)
}

// encodeJSON encodes v indented by two spaces without HTML escaping.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
