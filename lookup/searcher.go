// Copyright 2025 Helixion Health
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/helixion/conceptmap/core"
	"github.com/helixion/conceptmap/fuzzy"
	"github.com/helixion/conceptmap/normalize"
	"github.com/helixion/conceptmap/semantic"
	"github.com/helixion/conceptmap/vocab"
)

// SemanticSearcher finds the entries nearest to a query text in embedding
// space. Implementations return semantic.ErrUnavailable when the model or
// index cannot serve, which the lookup treats as a degradation rather
// than a failure.
type SemanticSearcher interface {
	Nearest(ctx context.Context, text string, k int, minSimilarity float32) ([]semantic.Result, error)
}

// Searcher resolves free-text clinical terms against a built vocabulary
// store using tiered matching: exact, fuzzy, then semantic, with the
// fuzzy and semantic channels fused when neither settles the query alone.
// It is safe for concurrent use.
type Searcher struct {
	store    vocab.Store
	matcher  *fuzzy.Matcher
	semantic SemanticSearcher
	ranker   *ranker
	cfg      *Config
	logger   *slog.Logger
}

// Option configures a Searcher during construction.
type Option func(*Searcher) error

// WithConfig replaces the default thresholds and ranking weights.
func WithConfig(cfg *Config) Option {
	return func(s *Searcher) error {
		if cfg == nil {
			return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
		}
		s.cfg = cfg
		return nil
	}
}

// WithSemanticSearcher enables the semantic tier. Without one, lookups
// run fuzzy-only and attach a warning when semantic search would have
// been consulted.
func WithSemanticSearcher(sem SemanticSearcher) Option {
	return func(s *Searcher) error {
		s.semantic = sem
		return nil
	}
}

// WithLogger sets the logger used for per-query diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a searcher over a built vocabulary store.
func NewSearcher(store vocab.Store, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	s := &Searcher{
		store:  store,
		cfg:    DefaultConfig(),
		logger: slog.Default().With("component", "lookup"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	s.matcher = fuzzy.NewMatcher(
		fuzzy.WithMinScore(s.cfg.FuzzyMinScore),
		fuzzy.WithMaxCandidates(s.cfg.MaxFuzzyCandidates),
	)
	s.ranker = newRanker(s.cfg, store)
	return s, nil
}

// queryOptions carry the per-query knobs.
type queryOptions struct {
	domain      string
	topK        int
	useSemantic bool
}

// QueryOption adjusts a single lookup.
type QueryOption func(*queryOptions)

// WithDomain restricts the lookup to one clinical domain, e.g.
// "Condition" or "Drug".
func WithDomain(domain string) QueryOption {
	return func(o *queryOptions) {
		o.domain = domain
	}
}

// WithTopK overrides the configured candidate count for one query.
func WithTopK(k int) QueryOption {
	return func(o *queryOptions) {
		if k > 0 {
			o.topK = k
		}
	}
}

// WithoutSemantic disables the semantic tier for one query. No
// degradation warning is attached; the caller opted out.
func WithoutSemantic() QueryOption {
	return func(o *queryOptions) {
		o.useSemantic = false
	}
}

// Lookup resolves a single free-text term to ranked concept candidates.
// It always returns a result for ordinary no-match and low-confidence
// outcomes; errors are reserved for store and infrastructure failures.
func (s *Searcher) Lookup(ctx context.Context, query string, opts ...QueryOption) (*core.LookupResult, error) {
	return s.LookupWithMonitor(ctx, query, &noopMonitor{}, opts...)
}

// LookupWithMonitor is Lookup with per-stage callbacks for diagnostics.
func (s *Searcher) LookupWithMonitor(ctx context.Context, query string, monitor LookupMonitor, opts ...QueryOption) (*core.LookupResult, error) {
	options := queryOptions{topK: s.cfg.TopK, useSemantic: true}
	for _, opt := range opts {
		opt(&options)
	}

	start := time.Now()
	normalized := normalize.Normalize(query)
	monitor.Start(query, normalized)

	result := &core.LookupResult{
		Query:           query,
		NormalizedQuery: normalized,
		DomainFilter:    options.domain,
	}

	if normalized == "" {
		return s.finish(result, nil, start, monitor), nil
	}

	variants := normalize.Variants(query)

	// Exact tier. The first variant with hits wins; homonyms surface as
	// multiple candidates ordered by vocabulary preference.
	for _, variant := range variants {
		entries, err := s.store.ExactMatch(ctx, variant, options.domain, options.topK)
		if err != nil {
			return nil, fmt.Errorf("exact match: %w", err)
		}
		if len(entries) == 0 {
			continue
		}
		monitor.AfterExactMatch(entries)

		matches, err := s.ranker.rankExact(ctx, entries, options.topK)
		if err != nil {
			return nil, fmt.Errorf("ranking exact matches: %w", err)
		}
		return s.finish(result, matches, start, monitor), nil
	}
	monitor.AfterExactMatch(nil)

	// Candidate retrieval for the fuzzy tier: entries sharing at least
	// one query token with any variant.
	candidates, err := s.store.CandidatesByTokenOverlap(ctx, variantTokens(variants), options.domain, 1, s.cfg.MaxFuzzyCandidates)
	if err != nil {
		return nil, fmt.Errorf("candidate retrieval: %w", err)
	}
	monitor.AfterCandidateRetrieval(len(candidates))

	fuzzyCands := s.rankVariants(variants, candidates)
	topScore := 0.0
	if len(fuzzyCands) > 0 {
		topScore = fuzzyCands[0].Score
	}
	monitor.AfterFuzzyScoring(topScore, len(fuzzyCands))

	// Fuzzy early exit: a near-verbatim hit settles the query without
	// paying for an embedding call.
	if topScore >= s.cfg.FuzzyHighConfidence {
		monitor.FuzzyEarlyExit(topScore)
		matches, err := s.ranker.rankFuzzy(ctx, fuzzyCands, options.topK)
		if err != nil {
			return nil, fmt.Errorf("ranking fuzzy matches: %w", err)
		}
		return s.finish(result, matches, start, monitor), nil
	}

	var semCands []semanticCandidate
	if options.useSemantic {
		semCands, err = s.searchSemantic(ctx, normalized, options)
		if err != nil {
			// Capability gap, not a query failure. Degrade to the
			// fuzzy channel alone.
			s.logger.Warn("semantic search unavailable",
				"query", query,
				"error", err)
			monitor.SemanticUnavailable(err.Error())
			result.Warnings = append(result.Warnings, "semantic search unavailable")
		} else {
			monitor.AfterSemanticSearch(len(semCands))
		}
	}

	fused := s.ranker.fuse(fuzzyCands, semCands)
	matches, err := s.ranker.rank(ctx, fused, options.topK)
	if err != nil {
		return nil, fmt.Errorf("ranking fused matches: %w", err)
	}
	return s.finish(result, matches, start, monitor), nil
}

// rankVariants scores candidates against every query variant and keeps
// each entry's best score, so an abbreviation expansion can only improve
// a match.
func (s *Searcher) rankVariants(variants []string, candidates []*core.SearchEntry) []fuzzy.Candidate {
	best := make(map[core.EntryID]fuzzy.Candidate)
	for _, variant := range variants {
		for _, c := range s.matcher.Rank(variant, candidates) {
			prev, ok := best[c.Entry.ID]
			if !ok || c.Score > prev.Score {
				best[c.Entry.ID] = c
			}
		}
	}

	merged := make([]fuzzy.Candidate, 0, len(best))
	for _, c := range best {
		merged = append(merged, c)
	}
	slices.SortFunc(merged, func(a, b fuzzy.Candidate) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		if c := compareAsc(int64(a.Entry.ConceptID), int64(b.Entry.ConceptID)); c != 0 {
			return c
		}
		// Tied entries of the same concept happen when a synonym's text
		// equals the concept name. The name entry goes first so fusion
		// and dedup pick the same representative every run.
		if a.Entry.Origin != b.Entry.Origin {
			if a.Entry.Origin == core.TextOriginName {
				return -1
			}
			return 1
		}
		if a.Entry.ID < b.Entry.ID {
			return -1
		}
		if a.Entry.ID > b.Entry.ID {
			return 1
		}
		return 0
	})
	return merged
}

// searchSemantic runs the semantic tier and resolves index hits back to
// search entries. A nil searcher is reported the same way as a failing
// one so callers see a single degradation path.
func (s *Searcher) searchSemantic(ctx context.Context, normalized string, options queryOptions) ([]semanticCandidate, error) {
	if s.semantic == nil {
		return nil, semantic.ErrUnavailable
	}

	// Fetch twice the requested candidates: domain filtering, stale-hit
	// skipping, and per-concept dedup during fusion all shrink the set.
	hits, err := s.semantic.Nearest(ctx, normalized, options.topK*2, s.cfg.SemanticMinSimilarity)
	if err != nil {
		return nil, err
	}

	cands := make([]semanticCandidate, 0, len(hits))
	for _, hit := range hits {
		entry, err := s.store.EntryByID(ctx, hit.EntryID)
		if err != nil {
			return nil, fmt.Errorf("resolving semantic hit: %w", err)
		}
		if entry == nil {
			// Stale index entry, e.g. the vocabulary was rebuilt after
			// the index was. Skip it.
			continue
		}
		if options.domain != "" && entry.Domain != options.domain {
			continue
		}
		cands = append(cands, semanticCandidate{entry: entry, score: hit.Score})
	}
	return cands, nil
}

// finish applies success semantics and timing to an assembled result.
func (s *Searcher) finish(result *core.LookupResult, matches []*core.ConceptMatch, start time.Time, monitor LookupMonitor) *core.LookupResult {
	if len(matches) == 0 {
		result.Warnings = append(result.Warnings, "no matches found")
	} else {
		result.BestMatch = matches[0]
		result.Candidates = matches[1:]
		if result.BestMatch.Confidence >= s.cfg.ConfidenceThreshold {
			result.Success = true
		} else {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("best match confidence %.2f below threshold %.2f",
					result.BestMatch.Confidence, s.cfg.ConfidenceThreshold))
		}
	}

	result.SearchTimeMs = float64(time.Since(start).Microseconds()) / 1000.0
	monitor.Finish(result)
	return result
}

// variantTokens collects the distinct tokens across all query variants,
// preserving first-seen order.
func variantTokens(variants []string) []string {
	seen := make(map[string]bool)
	var tokens []string
	for _, v := range variants {
		for _, tok := range normalize.Tokenize(v) {
			if !seen[tok] {
				seen[tok] = true
				tokens = append(tokens, tok)
			}
		}
	}
	return tokens
}
