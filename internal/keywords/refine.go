package keywords

import (
	"sort"

	"github.com/Aman-CERP/lexsearch/internal/store"
)

// DefaultTopN is the default bound on keywords kept per document.
const DefaultTopN = 150

// Refine reduces a document's raw keyword stream to its topN most frequent
// distinct keywords, returned sorted ascending. Keywords with equal frequency
// are selected in lexicographic order. topN <= 0 keeps every keyword.
func Refine(raw []string, topN int) []string {
	if len(raw) == 0 {
		return []string{}
	}

	freq := make(map[string]int, len(raw))
	unique := make([]string, 0, len(raw))
	for _, kw := range raw {
		if freq[kw] == 0 {
			unique = append(unique, kw)
		}
		freq[kw]++
	}

	sort.Slice(unique, func(i, j int) bool {
		fi, fj := freq[unique[i]], freq[unique[j]]
		if fi != fj {
			return fi > fj
		}
		return unique[i] < unique[j]
	})

	if topN > 0 && len(unique) > topN {
		unique = unique[:topN]
	}
	sort.Strings(unique)
	return unique
}

// RefineIndex applies Refine to every document of raw, keeping document order.
func RefineIndex(raw *store.Index, topN int) *store.Index {
	refined := store.NewIndex()
	raw.Range(func(path string, kws []string) bool {
		refined.Set(path, Refine(kws, topN))
		return true
	})
	return refined
}
