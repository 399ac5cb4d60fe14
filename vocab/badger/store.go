package badger

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/helixion/conceptmap/core"
	"github.com/helixion/conceptmap/vocab"
)

// Store implements vocab.BuildableStore on top of BadgerDB.
type Store struct {
	backend *Backend
	built   atomic.Bool
}

var _ vocab.BuildableStore = (*Store)(nil)

// NewStore creates a vocabulary store over the given backend.
// The store takes ownership of the backend and closes it on Close.
func NewStore(backend *Backend) (*Store, error) {
	if backend == nil {
		return nil, vocab.ErrStoreClosed
	}
	return &Store{backend: backend}, nil
}

// Close closes the store and the underlying database.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Initialized reports whether a build has been published.
func (s *Store) Initialized(ctx context.Context) (bool, error) {
	if s.backend.IsClosed() {
		return false, vocab.ErrStoreClosed
	}
	if s.built.Load() {
		return true, nil
	}

	var found bool
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get([]byte(builtMarkerKey))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	}, false)
	if err != nil {
		return false, err
	}

	if found {
		s.built.Store(true)
	}
	return found, nil
}

// checkReady guards query methods against closed or unbuilt stores.
func (s *Store) checkReady(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	initialized, err := s.Initialized(ctx)
	if err != nil {
		return err
	}
	if !initialized {
		return vocab.ErrNotInitialized
	}
	return nil
}

// ExactMatch returns entries whose normalized text equals the query.
// The index stores an 8-byte hash of the text, so each hit is verified
// against the fetched entry before it is returned.
func (s *Store) ExactMatch(ctx context.Context, normalizedQuery, domainFilter string, limit int) ([]*core.SearchEntry, error) {
	if normalizedQuery == "" {
		return nil, vocab.ErrInvalidQuery
	}
	if err := s.checkReady(ctx); err != nil {
		return nil, err
	}

	var results []*core.SearchEntry
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialExactIndexKey(normalizedQuery)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			id := entryIDFromExactIndexKey(iter.Item().Key())
			entry, err := readEntry(tx, makeEntryKey(id))
			if err != nil {
				return err
			}
			if entry == nil || entry.NormalizedText != normalizedQuery {
				continue
			}
			if domainFilter != "" && entry.Domain != domainFilter {
				continue
			}
			results = append(results, entry)
			if limit > 0 && len(results) >= limit {
				return nil
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// CandidatesByTokenOverlap scans entries and keeps those whose
// normalized text contains at least minOverlap of the query tokens as
// substrings. The scan stops once limit candidates are collected.
func (s *Store) CandidatesByTokenOverlap(ctx context.Context, tokens []string, domainFilter string, minOverlap, limit int) ([]*core.SearchEntry, error) {
	if len(tokens) == 0 {
		return nil, vocab.ErrInvalidQuery
	}
	if minOverlap < 1 {
		minOverlap = 1
	}
	if err := s.checkReady(ctx); err != nil {
		return nil, err
	}

	var results []*core.SearchEntry
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var entry *core.SearchEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = vocab.UnmarshalSearchEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if domainFilter != "" && entry.Domain != domainFilter {
				continue
			}

			overlap := 0
			for _, token := range tokens {
				if strings.Contains(entry.NormalizedText, token) {
					overlap++
				}
			}
			if overlap < minOverlap {
				continue
			}

			results = append(results, entry)
			if limit > 0 && len(results) >= limit {
				return nil
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// SearchEntries iterates all entries, optionally filtered by domain,
// until fn returns false.
func (s *Store) SearchEntries(ctx context.Context, domainFilter string, fn func(*core.SearchEntry) bool) error {
	if err := s.checkReady(ctx); err != nil {
		return err
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var entry *core.SearchEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = vocab.UnmarshalSearchEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if domainFilter != "" && entry.Domain != domainFilter {
				continue
			}
			if !fn(entry) {
				return nil
			}
		}
		return nil
	}, false)
}

// EntryByID returns a single search entry, or nil when it does not exist.
func (s *Store) EntryByID(ctx context.Context, id core.EntryID) (*core.SearchEntry, error) {
	if err := s.checkReady(ctx); err != nil {
		return nil, err
	}

	var entry *core.SearchEntry
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		entry, err = readEntry(tx, makeEntryKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// MapsTo returns the canonicalization edge for a source concept, or nil
// when the concept has no valid edge.
func (s *Store) MapsTo(ctx context.Context, id core.ConceptID) (*core.MapsToEdge, error) {
	if err := s.checkReady(ctx); err != nil {
		return nil, err
	}

	var edge *core.MapsToEdge
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEdgeKey(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			edge, err = vocab.UnmarshalMapsToEdge(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return edge, nil
}

// ConceptByID returns the concept, or nil when it does not exist.
func (s *Store) ConceptByID(ctx context.Context, id core.ConceptID) (*core.Concept, error) {
	if err := s.checkReady(ctx); err != nil {
		return nil, err
	}

	var concept *core.Concept
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeConceptKey(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			concept, err = vocab.UnmarshalConcept(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return concept, nil
}

// Stats returns the row counts recorded at publish time.
func (s *Store) Stats(ctx context.Context) (*vocab.Stats, error) {
	if err := s.checkReady(ctx); err != nil {
		return nil, err
	}

	stats := &vocab.Stats{}
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		counts := []struct {
			key  string
			dest *int64
		}{
			{statConceptsKey, &stats.Concepts},
			{statSynonymsKey, &stats.Synonyms},
			{statEntriesKey, &stats.SearchEntries},
			{statEdgesKey, &stats.MapsToEdges},
		}
		for _, c := range counts {
			item, err := tx.Get([]byte(c.key))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				v, err := vocab.UnmarshalInt64(val)
				if err != nil {
					return err
				}
				*c.dest = v
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// readEntry reads a search entry by key within a transaction.
// Returns nil without error when the key does not exist.
func readEntry(tx *badger.Txn, key []byte) (*core.SearchEntry, error) {
	item, err := tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entry *core.SearchEntry
	err = item.Value(func(val []byte) error {
		var err error
		entry, err = vocab.UnmarshalSearchEntry(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
