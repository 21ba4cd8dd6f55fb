// Package store persists the keyword index and the autocomplete vocabulary.
//
// The index is an ordered map from document path to its keyword set. Two
// backends are provided: a pretty-printed JSON file (the default) and a
// SQLite database. Writers take an exclusive file lock and readers a shared
// one, so a reader never observes a partially written store.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Index maps document paths to keyword sets, iterating in insertion order.
// It is not safe for concurrent mutation.
type Index struct {
	keys []string
	docs map[string][]string
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{docs: make(map[string][]string)}
}

// Set stores keywords for path. A path that is already present keeps its
// position and takes the new keywords.
func (x *Index) Set(path string, keywords []string) {
	if x.docs == nil {
		x.docs = make(map[string][]string)
	}
	if _, ok := x.docs[path]; !ok {
		x.keys = append(x.keys, path)
	}
	x.docs[path] = keywords
}

// Get returns the keywords stored for path.
func (x *Index) Get(path string) ([]string, bool) {
	if x == nil {
		return nil, false
	}
	kw, ok := x.docs[path]
	return kw, ok
}

// Len returns the number of documents.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.keys)
}

// Paths returns the document paths in insertion order.
func (x *Index) Paths() []string {
	if x == nil {
		return nil
	}
	out := make([]string, len(x.keys))
	copy(out, x.keys)
	return out
}

// Range calls fn for each document in insertion order until fn returns false.
func (x *Index) Range(fn func(path string, keywords []string) bool) {
	if x == nil {
		return
	}
	for _, k := range x.keys {
		if !fn(k, x.docs[k]) {
			return
		}
	}
}

// Merge sets every document of other into x, in other's order.
func (x *Index) Merge(other *Index) {
	other.Range(func(path string, keywords []string) bool {
		x.Set(path, keywords)
		return true
	})
}

// MarshalJSON encodes the index as an object whose keys follow insertion order.
func (x *Index) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, k := range x.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(k); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1) // Encode appends a newline
		buf.WriteByte(':')

		kw := x.docs[k]
		if kw == nil {
			kw = []string{}
		}
		if err := enc.Encode(kw); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of path to keyword array, keeping the
// order of keys as they appear in the input.
func (x *Index) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("index must be a JSON object")
	}

	out := NewIndex()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected index key %v", tok)
		}
		var kw []string
		if err := dec.Decode(&kw); err != nil {
			return fmt.Errorf("keywords for %q: %w", key, err)
		}
		if kw == nil {
			kw = []string{}
		}
		out.Set(key, kw)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*x = *out
	return nil
}
