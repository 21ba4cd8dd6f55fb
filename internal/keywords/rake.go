package keywords

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// forbiddenChars are characters that disqualify a ranked phrase.
const forbiddenChars = `*&!()?/><.,:;"][}{`

// minWordLen is the length a word must exceed to be emitted.
const minWordLen = 2

// Phrase is a ranked candidate phrase.
type Phrase struct {
	Words []string
	Score float64
}

// Text returns the phrase words joined by single spaces.
func (p Phrase) Text() string {
	return strings.Join(p.Words, " ")
}

// Extractor extracts keywords from text. It is safe for concurrent use.
type Extractor struct {
	stopWords map[string]struct{}
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithStopWords replaces the default English stopword list.
func WithStopWords(words []string) Option {
	return func(e *Extractor) {
		e.stopWords = BuildStopWordMap(words)
	}
}

// NewExtractor creates an Extractor using the English stopword list unless
// overridden.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{stopWords: BuildStopWordMap(EnglishStopWords)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the keyword stream for text: every word longer than two
// characters of every ranked phrase that survives filtering, in rank order.
// Duplicates are kept. Empty or whitespace-only text yields an empty slice.
func (e *Extractor) Extract(text string) []string {
	out := []string{}
	for _, p := range e.RankedPhrases(text) {
		if !keepPhrase(p.Words) {
			continue
		}
		for _, w := range p.Words {
			if utf8.RuneCountInString(w) > minWordLen {
				out = append(out, w)
			}
		}
	}
	return out
}

// RankedPhrases returns all candidate phrases of text, highest score first.
// Repeated phrases appear once per occurrence. Equal scores are ordered by
// phrase text, descending.
func (e *Extractor) RankedPhrases(text string) []Phrase {
	phrases := e.candidatePhrases(text)
	if len(phrases) == 0 {
		return nil
	}

	freq := make(map[string]int)
	degree := make(map[string]int)
	for _, words := range phrases {
		for _, w := range words {
			freq[w]++
			degree[w] += len(words)
		}
	}

	ranked := make([]Phrase, len(phrases))
	for i, words := range phrases {
		var score float64
		for _, w := range words {
			score += float64(degree[w]) / float64(freq[w])
		}
		ranked[i] = Phrase{Words: words, Score: score}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Text() > ranked[j].Text()
	})
	return ranked
}

// candidatePhrases splits text into maximal runs of lowercased non-stopword
// words. Stopwords and punctuation end the current phrase.
func (e *Extractor) candidatePhrases(text string) [][]string {
	var (
		phrases [][]string
		current []string
	)
	flush := func() {
		if len(current) > 0 {
			phrases = append(phrases, current)
			current = nil
		}
	}

	for _, tok := range tokenize(text) {
		if !tok.word {
			flush()
			continue
		}
		w := strings.ToLower(tok.text)
		if _, stop := e.stopWords[w]; stop {
			flush()
			continue
		}
		current = append(current, w)
	}
	flush()

	return phrases
}

// keepPhrase reports whether a ranked phrase passes the post-filter: no
// single-character word, no digit, no forbidden punctuation.
func keepPhrase(words []string) bool {
	for _, w := range words {
		if utf8.RuneCountInString(w) == 1 {
			return false
		}
		if strings.ContainsAny(w, forbiddenChars) {
			return false
		}
		for _, r := range w {
			if unicode.IsDigit(r) {
				return false
			}
		}
	}
	return true
}

type token struct {
	text string
	word bool
}

// tokenize splits text into word runs and punctuation runs, dropping
// whitespace.
func tokenize(text string) []token {
	var tokens []token
	start := -1
	startWord := false

	emit := func(end int) {
		if start >= 0 {
			tokens = append(tokens, token{text: text[start:end], word: startWord})
			start = -1
		}
	}

	for i, r := range text {
		switch {
		case unicode.IsSpace(r):
			emit(i)
		case isWordRune(r):
			if start >= 0 && !startWord {
				emit(i)
			}
			if start < 0 {
				start, startWord = i, true
			}
		default:
			if start >= 0 && startWord {
				emit(i)
			}
			if start < 0 {
				start, startWord = i, false
			}
		}
	}
	emit(len(text))

	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r)
}
