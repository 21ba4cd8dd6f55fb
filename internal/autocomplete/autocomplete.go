// Package autocomplete builds the completion vocabulary from an index and
// completes the last word of a partial query against it.
package autocomplete

import (
	"sort"
	"strings"

	"github.com/Aman-CERP/lexsearch/internal/store"
)

const (
	// DefaultSize is the default vocabulary size.
	DefaultSize = 100

	// DefaultSuggestions is the default number of completions returned.
	DefaultSuggestions = 10
)

// Build returns up to n distinct keywords of idx by descending frequency
// across all documents. Keywords with equal frequency keep the order in
// which they were first encountered, walking documents in index order.
func Build(idx *store.Index, n int) []string {
	if n <= 0 {
		return []string{}
	}

	freq := make(map[string]int)
	var order []string
	idx.Range(func(_ string, keywords []string) bool {
		for _, kw := range keywords {
			if freq[kw] == 0 {
				order = append(order, kw)
			}
			freq[kw]++
		}
		return true
	})

	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})

	if len(order) > n {
		order = order[:n]
	}
	if order == nil {
		return []string{}
	}
	return order
}

// Completer suggests vocabulary words for the word being typed.
type Completer struct {
	words []string // sorted, unique
	lower []string // lowercased words, same order
}

// NewCompleter creates a completer over vocabulary.
func NewCompleter(vocabulary []string) *Completer {
	seen := make(map[string]struct{}, len(vocabulary))
	words := make([]string, 0, len(vocabulary))
	for _, w := range vocabulary {
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	sort.Strings(words)

	lower := make([]string, len(words))
	for i, w := range words {
		lower[i] = strings.ToLower(w)
	}
	return &Completer{words: words, lower: lower}
}

// Len returns the vocabulary size.
func (c *Completer) Len() int {
	return len(c.words)
}

// Complete returns up to limit words that start with the last word of
// input, compared case-insensitively. limit <= 0 uses DefaultSuggestions.
// Input with no words has nothing to complete.
func (c *Completer) Complete(input string, limit int) []string {
	if limit <= 0 {
		limit = DefaultSuggestions
	}

	prefix := strings.ToLower(lastWord(input))
	if prefix == "" {
		return []string{}
	}

	out := make([]string, 0, limit)
	for i, w := range c.lower {
		if strings.HasPrefix(w, prefix) {
			out = append(out, c.words[i])
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// Apply replaces the last word of input, and anything after it, with
// completion followed by a single space ready for the next word.
func Apply(input, completion string) string {
	word := lastWord(input)
	if word == "" {
		return completion + " "
	}
	start := strings.LastIndex(input, word)
	return input[:start] + completion + " "
}

func lastWord(input string) string {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
