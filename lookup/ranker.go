package lookup

import (
	"context"
	"slices"

	"github.com/helixion/conceptmap/core"
	"github.com/helixion/conceptmap/fuzzy"
	"github.com/helixion/conceptmap/vocab"
)

// semanticCandidate pairs a search entry with its cosine similarity.
type semanticCandidate struct {
	entry *core.SearchEntry
	score float32
}

// scored carries one concept's signals through fusion. The entry is the
// best-matching text for the concept (fuzzy text when both channels hit).
type scored struct {
	entry        *core.SearchEntry
	fuzzyNorm    float64
	semanticNorm float64
	hasFuzzy     bool
	hasSemantic  bool
	confidence   float64
}

// ranker fuses fuzzy and semantic signals, applies preference weighting,
// and resolves each ranked candidate to its standard concept.
type ranker struct {
	cfg   *Config
	store vocab.Store
}

func newRanker(cfg *Config, store vocab.Store) *ranker {
	return &ranker{cfg: cfg, store: store}
}

// weight is the multiplicative preference factor for an entry:
// vocabulary preference x origin boost x standardness boost.
func (r *ranker) weight(e *core.SearchEntry) float64 {
	return r.cfg.vocabularyWeight(e.Domain, e.Vocabulary) *
		r.cfg.originBoost(string(e.Origin)) *
		r.cfg.standardBoost(e.Standard == core.StandardFlagStandard)
}

// fuse merges fuzzy candidates and semantic hits into one scored set,
// one entry per concept. A concept seen in both channels keeps its best
// score from each; the fuzzy entry's text wins as the representative
// matched text.
func (r *ranker) fuse(fuzzyCands []fuzzy.Candidate, semCands []semanticCandidate) []*scored {
	byConcept := make(map[core.ConceptID]*scored)
	var order []core.ConceptID

	for _, c := range fuzzyCands {
		norm := c.Score / 100.0
		s, ok := byConcept[c.Entry.ConceptID]
		if !ok {
			s = &scored{entry: c.Entry}
			byConcept[c.Entry.ConceptID] = s
			order = append(order, c.Entry.ConceptID)
		}
		if !s.hasFuzzy || norm > s.fuzzyNorm {
			s.fuzzyNorm = norm
			s.entry = c.Entry
		}
		s.hasFuzzy = true
	}

	for _, c := range semCands {
		norm := float64(c.score)
		s, ok := byConcept[c.entry.ConceptID]
		if !ok {
			s = &scored{entry: c.entry}
			byConcept[c.entry.ConceptID] = s
			order = append(order, c.entry.ConceptID)
		}
		if !s.hasSemantic || norm > s.semanticNorm {
			s.semanticNorm = norm
			if !s.hasFuzzy {
				s.entry = c.entry
			}
		}
		s.hasSemantic = true
	}

	fused := make([]*scored, 0, len(order))
	for _, id := range order {
		s := byConcept[id]
		blend := r.cfg.FuzzyWeight*s.fuzzyNorm + r.cfg.SemanticWeight*s.semanticNorm
		base := max(blend, s.fuzzyNorm, s.semanticNorm)

		s.confidence = base * r.weight(s.entry)
		if s.confidence > 1.0 {
			s.confidence = 1.0
		}
		fused = append(fused, s)
	}
	return fused
}

// rank orders fused candidates and resolves the top ones. Ties break on
// the same preference factors used for weighting, applied one at a time,
// then on concept id so the order is never arbitrary.
func (r *ranker) rank(ctx context.Context, fused []*scored, topK int) ([]*core.ConceptMatch, error) {
	slices.SortFunc(fused, func(a, b *scored) int {
		if c := compareDesc(a.confidence, b.confidence); c != 0 {
			return c
		}
		if c := compareDesc(
			r.cfg.vocabularyWeight(a.entry.Domain, a.entry.Vocabulary),
			r.cfg.vocabularyWeight(b.entry.Domain, b.entry.Vocabulary),
		); c != 0 {
			return c
		}
		if c := compareDesc(
			r.cfg.originBoost(string(a.entry.Origin)),
			r.cfg.originBoost(string(b.entry.Origin)),
		); c != 0 {
			return c
		}
		if c := compareDesc(
			r.cfg.standardBoost(a.entry.Standard == core.StandardFlagStandard),
			r.cfg.standardBoost(b.entry.Standard == core.StandardFlagStandard),
		); c != 0 {
			return c
		}
		return compareAsc(int64(a.entry.ConceptID), int64(b.entry.ConceptID))
	})

	if topK > 0 && len(fused) > topK {
		fused = fused[:topK]
	}

	matches := make([]*core.ConceptMatch, 0, len(fused))
	for _, s := range fused {
		matchType := core.MatchTypeSemantic
		if s.hasFuzzy {
			matchType = core.MatchTypeFuzzyName
			if s.entry.Origin == core.TextOriginSynonym {
				matchType = core.MatchTypeFuzzySynonym
			}
		}

		match, err := r.buildMatch(ctx, s.entry, s.confidence, matchType)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// rankExact turns exact hits into matches with confidence fixed at 1.0,
// ordered by preference weight.
func (r *ranker) rankExact(ctx context.Context, entries []*core.SearchEntry, topK int) ([]*core.ConceptMatch, error) {
	sorted := slices.Clone(entries)
	slices.SortFunc(sorted, func(a, b *core.SearchEntry) int {
		if c := compareDesc(r.weight(a), r.weight(b)); c != 0 {
			return c
		}
		return compareAsc(int64(a.ConceptID), int64(b.ConceptID))
	})

	if topK > 0 && len(sorted) > topK {
		sorted = sorted[:topK]
	}

	seen := make(map[core.ConceptID]bool, len(sorted))
	matches := make([]*core.ConceptMatch, 0, len(sorted))
	for _, entry := range sorted {
		if seen[entry.ConceptID] {
			continue
		}
		seen[entry.ConceptID] = true

		matchType := core.MatchTypeExactName
		if entry.Origin == core.TextOriginSynonym {
			matchType = core.MatchTypeExactSynonym
		}

		match, err := r.buildMatch(ctx, entry, 1.0, matchType)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// rankFuzzy turns a fuzzy-only candidate list into matches with
// confidence score/100, preserving the matcher's ordering. Used by the
// fuzzy early-exit path where no fusion runs.
func (r *ranker) rankFuzzy(ctx context.Context, candidates []fuzzy.Candidate, topK int) ([]*core.ConceptMatch, error) {
	seen := make(map[core.ConceptID]bool, len(candidates))
	matches := make([]*core.ConceptMatch, 0, len(candidates))
	for _, c := range candidates {
		if seen[c.Entry.ConceptID] {
			continue
		}
		seen[c.Entry.ConceptID] = true

		matchType := core.MatchTypeFuzzyName
		if c.Entry.Origin == core.TextOriginSynonym {
			matchType = core.MatchTypeFuzzySynonym
		}

		match, err := r.buildMatch(ctx, c.Entry, c.Score/100.0, matchType)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
		if topK > 0 && len(matches) >= topK {
			break
		}
	}
	return matches, nil
}

// buildMatch assembles a ConceptMatch from an entry and resolves its
// canonicalization status.
func (r *ranker) buildMatch(ctx context.Context, entry *core.SearchEntry, confidence float64, matchType core.MatchType) (*core.ConceptMatch, error) {
	match := &core.ConceptMatch{
		ConceptID:   entry.ConceptID,
		Name:        entry.ConceptName,
		Domain:      entry.Domain,
		Vocabulary:  entry.Vocabulary,
		Class:       entry.Class,
		Standard:    entry.Standard,
		Code:        entry.Code,
		Confidence:  confidence,
		MatchType:   matchType,
		MatchedText: entry.Text,
	}
	if err := r.resolve(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

// resolve determines the canonicalization status. Standard concepts need
// no edge lookup; everything else consults the Maps-To table.
func (r *ranker) resolve(ctx context.Context, match *core.ConceptMatch) error {
	if match.Standard == core.StandardFlagStandard {
		match.ResolutionStatus = core.ResolutionAlreadyStandard
		return nil
	}

	edge, err := r.store.MapsTo(ctx, match.ConceptID)
	if err != nil {
		return err
	}
	if edge == nil {
		match.ResolutionStatus = core.ResolutionNoMappingAvailable
		return nil
	}

	match.ResolutionStatus = core.ResolutionMappedToStandard
	match.StandardID = edge.StandardID
	match.StandardName = edge.StandardName
	return nil
}

func compareDesc(a, b float64) int {
	if a > b {
		return -1
	}
	if a < b {
		return 1
	}
	return 0
}

func compareAsc(a, b int64) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
