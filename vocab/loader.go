package vocab

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/helixion/conceptmap/core"
	"github.com/helixion/conceptmap/normalize"
)

const defaultBatchSize = 5000

// Loader parses vocabulary dump files and drives a Builder to produce
// a queryable store. Loading replaces any previously published data.
type Loader struct {
	builder   Builder
	batchSize int
	logger    *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader) error

// WithBatchSize sets how many records are written per builder call.
// Default is 5000.
func WithBatchSize(size int) LoaderOption {
	return func(l *Loader) error {
		if size < 1 {
			size = 1
		}
		l.batchSize = size
		return nil
	}
}

// WithLoaderLogger sets a custom logger.
// Default is slog.Default().
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewLoader creates a loader writing through the given builder.
func NewLoader(builder Builder, opts ...LoaderOption) (*Loader, error) {
	if builder == nil {
		return nil, ErrBuilderRequired
	}

	l := &Loader{
		builder:   builder,
		batchSize: defaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	l.logger = l.logger.With("component", "vocab.loader")
	return l, nil
}

// Load parses the source files and publishes a fresh store. Any data
// from a previous load is discarded first, and nothing becomes visible
// to readers until the final publish succeeds.
func (l *Loader) Load(ctx context.Context, src Source) (*Stats, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	l.logger.Info("loading vocabulary", "concepts", src.Concepts,
		"synonyms", src.Synonyms, "relationships", src.Relationships)

	if err := l.builder.Reset(ctx); err != nil {
		return nil, err
	}

	concepts, stats, err := l.loadConcepts(ctx, src.Concepts)
	if err != nil {
		return nil, err
	}

	if src.Synonyms != "" {
		if err := l.loadSynonyms(ctx, src.Synonyms, concepts, stats); err != nil {
			return nil, err
		}
	}

	if src.Relationships != "" {
		if err := l.loadRelationships(ctx, src.Relationships, concepts, stats); err != nil {
			return nil, err
		}
	}

	if err := l.builder.Publish(ctx, stats); err != nil {
		return nil, err
	}

	l.logger.Info("vocabulary loaded",
		"concepts", stats.Concepts,
		"synonyms", stats.Synonyms,
		"search_entries", stats.SearchEntries,
		"maps_to_edges", stats.MapsToEdges,
		"elapsed", time.Since(start))
	return stats, nil
}

// loadConcepts streams the concept dump, writing concept records and one
// search entry per valid concept name. The returned map keeps every
// concept in memory so synonym and relationship rows can be resolved.
func (l *Loader) loadConcepts(ctx context.Context, path string) (map[core.ConceptID]*core.Concept, *Stats, error) {
	concepts := make(map[core.ConceptID]*core.Concept)
	stats := &Stats{}

	conceptBatch := make([]*core.Concept, 0, l.batchSize)
	entryBatch := make([]*core.SearchEntry, 0, l.batchSize)

	flush := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(conceptBatch) > 0 {
			if err := l.builder.PutConcepts(ctx, conceptBatch...); err != nil {
				return err
			}
			conceptBatch = conceptBatch[:0]
		}
		if len(entryBatch) > 0 {
			if err := l.builder.PutSearchEntries(ctx, entryBatch...); err != nil {
				return err
			}
			entryBatch = entryBatch[:0]
		}
		return nil
	}

	err := readConcepts(path, func(c *core.Concept) error {
		if err := core.ValidateConcept(c); err != nil {
			l.logger.Warn("skipping concept row", "concept_id", c.ID, "err", err)
			return nil
		}

		concepts[c.ID] = c
		conceptBatch = append(conceptBatch, c)
		stats.Concepts++

		if c.Valid() {
			entryBatch = append(entryBatch, newSearchEntry(c, c.Name, core.TextOriginName))
			stats.SearchEntries++
		}

		if len(conceptBatch) >= l.batchSize || len(entryBatch) >= l.batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if err := flush(); err != nil {
		return nil, nil, err
	}
	return concepts, stats, nil
}

// loadSynonyms streams the synonym dump, writing one search entry per
// synonym of a known valid concept. Synonyms of unknown or invalidated
// concepts are skipped.
func (l *Loader) loadSynonyms(ctx context.Context, path string, concepts map[core.ConceptID]*core.Concept, stats *Stats) error {
	entryBatch := make([]*core.SearchEntry, 0, l.batchSize)

	flush := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(entryBatch) == 0 {
			return nil
		}
		if err := l.builder.PutSearchEntries(ctx, entryBatch...); err != nil {
			return err
		}
		entryBatch = entryBatch[:0]
		return nil
	}

	err := readSynonyms(path, func(row synonymRow) error {
		concept, ok := concepts[row.ConceptID]
		if !ok || !concept.Valid() {
			return nil
		}

		entryBatch = append(entryBatch, newSearchEntry(concept, row.Name, core.TextOriginSynonym))
		stats.Synonyms++
		stats.SearchEntries++

		if len(entryBatch) >= l.batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return err
	}
	return flush()
}

// loadRelationships streams the relationship dump, keeping Maps-To
// edges whose target is a known standard valid concept. The first edge
// seen for a source wins; self edges are dropped since a standard
// concept needs no remapping.
func (l *Loader) loadRelationships(ctx context.Context, path string, concepts map[core.ConceptID]*core.Concept, stats *Stats) error {
	edgeBatch := make([]*core.MapsToEdge, 0, l.batchSize)
	seen := make(map[core.ConceptID]bool)

	flush := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(edgeBatch) == 0 {
			return nil
		}
		if err := l.builder.PutMapsToEdges(ctx, edgeBatch...); err != nil {
			return err
		}
		edgeBatch = edgeBatch[:0]
		return nil
	}

	err := readRelationships(path, func(row relationshipRow) error {
		if row.RelationshipID != "Maps to" || row.InvalidReason != "" {
			return nil
		}
		if row.SourceID == row.TargetID || seen[row.SourceID] {
			return nil
		}

		target, ok := concepts[row.TargetID]
		if !ok || target.Standard != core.StandardFlagStandard || !target.Valid() {
			return nil
		}

		seen[row.SourceID] = true
		edgeBatch = append(edgeBatch, &core.MapsToEdge{
			SourceID:       row.SourceID,
			StandardID:     target.ID,
			StandardName:   target.Name,
			StandardDomain: target.Domain,
			StandardVocab:  target.Vocabulary,
		})
		stats.MapsToEdges++

		if len(edgeBatch) >= l.batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return err
	}
	return flush()
}

// newSearchEntry builds the search entry for one text variant of a
// concept. The entry id is content-derived so repeated loads produce
// identical ids.
func newSearchEntry(c *core.Concept, text string, origin core.TextOrigin) *core.SearchEntry {
	return &core.SearchEntry{
		ID:             core.EntryIDFromContent(string(origin) + "\x00" + text + "\x00" + strconv.FormatInt(int64(c.ID), 10)),
		ConceptID:      c.ID,
		Text:           text,
		NormalizedText: normalize.Normalize(text),
		Origin:         origin,
		ConceptName:    c.Name,
		Domain:         c.Domain,
		Vocabulary:     c.Vocabulary,
		Class:          c.Class,
		Standard:       c.Standard,
		Code:           c.Code,
	}
}
