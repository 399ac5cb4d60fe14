package vocab

import (
	"context"

	"github.com/helixion/conceptmap/core"
)

// Store provides read access to a built vocabulary: the search-entry index,
// the canonicalization (Maps-To) table, and the concept catalog.
// Implementations must be thread-safe; all query methods may be called
// concurrently once the store is built.
//
// Every query method returns ErrNotInitialized when the store has not been
// fully built. A partially built store is indistinguishable from an unbuilt
// one: the build marker is only published after the last row is committed.
type Store interface {
	// ExactMatch returns search entries whose normalized text equals the
	// normalized query, optionally filtered by domain. Homonyms across
	// vocabularies make multiple results possible; the caller disambiguates.
	ExactMatch(ctx context.Context, normalizedQuery, domainFilter string, limit int) ([]*core.SearchEntry, error)

	// CandidatesByTokenOverlap returns entries whose normalized text
	// contains at least minOverlap of the query tokens as substrings,
	// capped at limit. This is a recall-oriented prefilter that
	// intentionally overgenerates; it is never a final answer.
	CandidatesByTokenOverlap(ctx context.Context, tokens []string, domainFilter string, minOverlap, limit int) ([]*core.SearchEntry, error)

	// EntryByID returns a single search entry, or nil when it does not
	// exist. Semantic search resolves its index hits through this.
	EntryByID(ctx context.Context, id core.EntryID) (*core.SearchEntry, error)

	// MapsTo returns the canonicalization edge for the source concept,
	// or nil when the concept has no valid edge.
	MapsTo(ctx context.Context, id core.ConceptID) (*core.MapsToEdge, error)

	// ConceptByID returns the full concept, or nil when it does not exist.
	ConceptByID(ctx context.Context, id core.ConceptID) (*core.Concept, error)

	// SearchEntries iterates all search entries, invoking fn for each.
	// Iteration stops when fn returns false. Used by the semantic index
	// builder to embed the full vocabulary.
	SearchEntries(ctx context.Context, domainFilter string, fn func(*core.SearchEntry) bool) error

	// Stats returns per-table row counts for health checks.
	Stats(ctx context.Context) (*Stats, error)

	// Initialized reports whether the store has been fully built.
	Initialized(ctx context.Context) (bool, error)

	// Close closes the store and releases resources.
	Close() error
}

// Builder receives rows during the one-time vocabulary build. Builds are
// not concurrent with queries; Publish atomically exposes the finished
// store by writing the build marker last.
type Builder interface {
	// Reset drops any previously built data so the store can be rebuilt.
	Reset(ctx context.Context) error

	// PutConcepts stores catalog entries.
	PutConcepts(ctx context.Context, concepts ...*core.Concept) error

	// PutSearchEntries stores denormalized search entries and indexes them
	// by normalized text.
	PutSearchEntries(ctx context.Context, entries ...*core.SearchEntry) error

	// PutMapsToEdges stores canonicalization edges indexed by source id.
	// At most one edge per source is kept; later duplicates are ignored.
	PutMapsToEdges(ctx context.Context, edges ...*core.MapsToEdge) error

	// Publish records final table counts and writes the build marker.
	// Until Publish succeeds the store reports ErrNotInitialized.
	Publish(ctx context.Context, stats *Stats) error
}

// BuildableStore is a store that can also be (re)built in place.
type BuildableStore interface {
	Store
	Builder
}
