package store

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"
)

// Snapshot is a loaded index together with its autocomplete vocabulary.
type Snapshot struct {
	Index      *Index
	Vocabulary []string

	// VocabularyMissing is set when the vocabulary file did not exist.
	VocabularyMissing bool
}

// LoadSnapshot loads the index from s and the vocabulary from vocabPath
// concurrently. A missing vocabulary is not an error; callers rebuild it from
// the index when VocabularyMissing is set.
func LoadSnapshot(ctx context.Context, s IndexStore, vocabPath string) (*Snapshot, error) {
	snap := &Snapshot{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		idx, err := s.Load()
		if err != nil {
			return err
		}
		snap.Index = idx
		return ctx.Err()
	})

	g.Go(func() error {
		words, err := LoadVocabulary(vocabPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				snap.VocabularyMissing = true
				return nil
			}
			return err
		}
		snap.Vocabulary = words
		return ctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
