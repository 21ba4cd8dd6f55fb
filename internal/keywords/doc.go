// Package keywords turns free text into a normalized keyword stream and
// reduces per-document keyword lists to bounded sets.
//
// Extraction is RAKE-style: the text is cut into candidate phrases at
// stopwords and punctuation, every word is scored by degree/frequency over
// the co-occurrence graph of those phrases, and phrases are ranked by the sum
// of their word scores. Only individual words leave the package; phrase
// structure is discarded after ranking.
//
// The same Extractor is used for documents and for queries so both sides of
// a search share one normalization.
package keywords
