// Package search ranks indexed documents by keyword overlap with a query.
//
// A document scores one point for every query keyword occurrence found in
// its keyword set. Only documents scoring above zero are returned, ordered
// by score descending and then by path ascending.
package search

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/lexsearch/internal/keywords"
	"github.com/Aman-CERP/lexsearch/internal/store"
	"github.com/Aman-CERP/lexsearch/internal/telemetry"
)

// DefaultCacheSize is the default number of cached query results.
const DefaultCacheSize = 256

// QueryExtractor turns a query into keyword tokens.
type QueryExtractor interface {
	Extract(text string) []string
}

// Hit is one ranked document.
type Hit struct {
	Path  string `json:"path"`
	Score int    `json:"score"`
}

// Engine answers queries against one loaded index. It is safe for
// concurrent use; Swap installs a new index.
type Engine struct {
	extractor QueryExtractor
	metrics   *telemetry.Metrics
	logger    *slog.Logger
	cacheSize int

	mu       sync.RWMutex
	docs     int
	paths    []string         // document position -> path
	postings map[string][]int // keyword -> positions of documents containing it
	cache    *lru.Cache[string, []Hit]
}

// Option configures the engine.
type Option func(*Engine)

// WithExtractor sets the query keyword extractor. The default is the same
// extractor used at indexing time.
func WithExtractor(x QueryExtractor) Option {
	return func(e *Engine) {
		if x != nil {
			e.extractor = x
		}
	}
}

// WithCacheSize sets the number of cached query results. Zero or less
// disables the cache.
func WithCacheSize(n int) Option {
	return func(e *Engine) {
		e.cacheSize = n
	}
}

// WithMetrics records query telemetry.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an engine over idx.
func New(idx *store.Index, opts ...Option) *Engine {
	e := &Engine{
		extractor: keywords.NewExtractor(),
		logger:    slog.Default(),
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Swap(idx)
	return e
}

// Swap installs idx, rebuilding the inverted index and clearing cached results.
func (e *Engine) Swap(idx *store.Index) {
	paths, postings := invert(idx)

	var cache *lru.Cache[string, []Hit]
	if e.cacheSize > 0 {
		cache, _ = lru.New[string, []Hit](e.cacheSize)
	}

	e.mu.Lock()
	e.docs = len(paths)
	e.paths = paths
	e.postings = postings
	e.cache = cache
	e.mu.Unlock()

	e.logger.Debug("search_index_installed",
		slog.Int("documents", len(paths)),
		slog.Int("keywords", len(postings)))
}

// Len returns the number of indexed documents.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.docs
}

// Search returns the paths of matching documents, best first.
// An empty or whitespace-only query matches nothing.
func (e *Engine) Search(query string) []string {
	hits := e.Hits(query, 0)
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Path
	}
	return out
}

// Hits returns matching documents with their scores, best first. limit <= 0
// returns every match.
func (e *Engine) Hits(query string, limit int) []Hit {
	start := time.Now()

	key := normalize(query)
	if key == "" {
		e.metrics.RecordSearch("empty_query", 0, false, time.Since(start))
		return []Hit{}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	hits, cached := e.lookup(key)
	if !cached {
		hits = e.rank(e.extractor.Extract(query))
		if e.cache != nil {
			e.cache.Add(key, hits)
		}
	}

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]Hit, len(hits))
	copy(out, hits)

	resultType := "hit"
	if len(out) == 0 {
		resultType = "zero_result"
	}
	e.metrics.RecordSearch(resultType, len(out), cached, time.Since(start))
	e.logger.Debug("search_completed",
		slog.String("query", query),
		slog.Int("results", len(out)),
		slog.Bool("cached", cached))
	return out
}

func (e *Engine) lookup(key string) ([]Hit, bool) {
	if e.cache == nil {
		return nil, false
	}
	return e.cache.Get(key)
}

// rank scores every document against the query tokens. Each token
// occurrence adds one point to each document containing it.
func (e *Engine) rank(tokens []string) []Hit {
	if len(tokens) == 0 {
		return []Hit{}
	}

	scores := make(map[int]int)
	for _, tok := range tokens {
		for _, pos := range e.postings[tok] {
			scores[pos]++
		}
	}

	hits := make([]Hit, 0, len(scores))
	for pos, score := range scores {
		hits = append(hits, Hit{Path: e.paths[pos], Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Path < hits[j].Path
	})
	return hits
}

// invert builds keyword -> document positions. A keyword listed twice for
// one document is counted once.
func invert(idx *store.Index) ([]string, map[string][]int) {
	paths := make([]string, 0, idx.Len())
	postings := make(map[string][]int)

	idx.Range(func(path string, kws []string) bool {
		pos := len(paths)
		paths = append(paths, path)

		seen := make(map[string]struct{}, len(kws))
		for _, kw := range kws {
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			postings[kw] = append(postings[kw], pos)
		}
		return true
	})
	return paths, postings
}

// normalize produces the cache key for query. Queries that differ only in
// case or whitespace extract to the same tokens.
func normalize(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
