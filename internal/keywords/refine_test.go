package keywords

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/lexsearch/internal/store"
)

func TestRefine_TopNByFrequency(t *testing.T) {
	raw := []string{"model", "data", "data", "graph", "graph", "graph"}

	assert.Equal(t, []string{"data", "graph"}, Refine(raw, 2))
}

func TestRefine_LexicographicTieBreak(t *testing.T) {
	raw := []string{"zeta", "alpha", "beta"}

	assert.Equal(t, []string{"alpha", "beta"}, Refine(raw, 2))
}

func TestRefine_UnboundedWhenTopNNotPositive(t *testing.T) {
	raw := []string{"beta", "alpha", "beta"}

	assert.Equal(t, []string{"alpha", "beta"}, Refine(raw, 0))
	assert.Equal(t, []string{"alpha", "beta"}, Refine(raw, -1))
}

func TestRefine_Empty(t *testing.T) {
	got := Refine(nil, DefaultTopN)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRefine_BoundedAndUnique(t *testing.T) {
	// Given: 400 distinct keywords with varied multiplicity
	var raw []string
	for i := 0; i < 400; i++ {
		word := fmt.Sprintf("kw%c%c", 'a'+i%26, 'a'+i/26)
		for j := 0; j <= i%4; j++ {
			raw = append(raw, word)
		}
	}

	// When: refining with the default bound
	got := Refine(raw, DefaultTopN)

	// Then: at most topN, no duplicates, sorted
	assert.LessOrEqual(t, len(got), DefaultTopN)
	seen := make(map[string]bool)
	for i, kw := range got {
		assert.False(t, seen[kw], "duplicate %q", kw)
		seen[kw] = true
		if i > 0 {
			assert.Less(t, got[i-1], kw)
		}
	}
}

func TestRefine_PrefersMostFrequent(t *testing.T) {
	raw := []string{"rare", "common", "common", "common", "medium", "medium"}

	got := Refine(raw, 2)

	assert.ElementsMatch(t, []string{"common", "medium"}, got)
	assert.NotContains(t, got, "rare")
}

func TestRefineIndex_PreservesOrder(t *testing.T) {
	raw := store.NewIndex()
	raw.Set("/z.pdf", []string{"beta", "alpha", "beta", "gamma"})
	raw.Set("/a.pdf", []string{"delta"})

	refined := RefineIndex(raw, 2)

	assert.Equal(t, []string{"/z.pdf", "/a.pdf"}, refined.Paths())
	kw, _ := refined.Get("/z.pdf")
	assert.Equal(t, []string{"alpha", "beta"}, kw)
	kw, _ = refined.Get("/a.pdf")
	assert.Equal(t, []string{"delta"}, kw)
}
