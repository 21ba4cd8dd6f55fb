package store

import (
	"encoding/json"

	lexerrors "github.com/Aman-CERP/lexsearch/internal/errors"
)

// SaveVocabulary writes the autocomplete vocabulary as a JSON array.
func SaveVocabulary(path string, words []string, opts ...Option) error {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if words == nil {
		words = []string{}
	}

	data, err := encodeJSON(words)
	if err != nil {
		return lexerrors.IndexIOError("failed to encode autocomplete vocabulary", err)
	}

	lock := NewFileLock(path)
	if err := lock.Lock(); err != nil {
		return lexerrors.IndexIOError("failed to lock "+path, err)
	}
	defer lock.Unlock()

	if err := writeFile(path, data, o.atomic); err != nil {
		return lexerrors.IndexIOError("failed to write autocomplete vocabulary "+path, err)
	}
	o.logger.Debug("vocabulary_saved", "path", path, "words", len(words))
	return nil
}

// LoadVocabulary reads the autocomplete vocabulary.
func LoadVocabulary(path string) ([]string, error) {
	data, err := readLocked(path)
	if err != nil {
		return nil, lexerrors.IndexIOError("failed to read autocomplete vocabulary "+path, err)
	}

	var words []string
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, lexerrors.IndexIOError("malformed autocomplete vocabulary "+path, err)
	}
	if words == nil {
		words = []string{}
	}
	return words, nil
}
