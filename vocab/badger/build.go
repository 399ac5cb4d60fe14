package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/helixion/conceptmap/core"
	"github.com/helixion/conceptmap/vocab"
)

// Reset drops all vocabulary data, including the build marker, so the
// store can be rebuilt from scratch.
func (s *Store) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.backend.IsClosed() {
		return vocab.ErrStoreClosed
	}

	s.built.Store(false)
	return s.backend.DropPrefix(
		[]byte(conceptPrefix+":"),
		[]byte(entryPrefix+":"),
		[]byte(exactIndexPrefix+":"),
		[]byte(edgePrefix+":"),
		[]byte(metaPrefix+":"),
	)
}

// PutConcepts stores catalog entries keyed by concept ID.
func (s *Store) PutConcepts(ctx context.Context, concepts ...*core.Concept) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, concept := range concepts {
			if err := core.ValidateConcept(concept); err != nil {
				return err
			}
			if err := tx.Set(makeConceptKey(concept.ID), vocab.MarshalConcept(concept)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// PutSearchEntries stores entries and indexes them by normalized text.
func (s *Store) PutSearchEntries(ctx context.Context, entries ...*core.SearchEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			if err := tx.Set(makeEntryKey(entry.ID), vocab.MarshalSearchEntry(entry)); err != nil {
				return err
			}
			if err := tx.Set(makeExactIndexKey(entry.NormalizedText, entry.ID), nil); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// PutMapsToEdges stores canonicalization edges keyed by source concept.
// An edge already present for a source is kept; later ones are ignored.
func (s *Store) PutMapsToEdges(ctx context.Context, edges ...*core.MapsToEdge) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, edge := range edges {
			if err := core.ValidateMapsToEdge(edge); err != nil {
				return err
			}

			key := makeEdgeKey(edge.SourceID)
			_, err := tx.Get(key)
			if err == nil {
				continue
			}
			if err != badger.ErrKeyNotFound {
				return err
			}
			if err := tx.Set(key, vocab.MarshalMapsToEdge(edge)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Publish records the final counts and writes the build marker. The
// marker and counts commit in one transaction, so readers either see a
// complete build or ErrNotInitialized.
func (s *Store) Publish(ctx context.Context, stats *vocab.Stats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if stats == nil {
		stats = &vocab.Stats{}
	}

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		counts := []struct {
			key   string
			value int64
		}{
			{statConceptsKey, stats.Concepts},
			{statSynonymsKey, stats.Synonyms},
			{statEntriesKey, stats.SearchEntries},
			{statEdgesKey, stats.MapsToEdges},
		}
		for _, c := range counts {
			if err := tx.Set([]byte(c.key), vocab.MarshalInt64(c.value)); err != nil {
				return err
			}
		}
		if err := tx.Set([]byte(builtMarkerKey), []byte{1}); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	s.built.Store(true)
	return nil
}
