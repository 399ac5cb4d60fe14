package fuzzy

import (
	"slices"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/helixion/conceptmap/core"
)

const (
	defaultMinScore      = 70.0
	defaultMaxCandidates = 1000

	tokenSetWeight = 0.9
)

// Candidate pairs a search entry with its fuzzy score on a 0-100 scale.
type Candidate struct {
	Entry *core.SearchEntry
	Score float64
}

// Matcher scores normalized query text against search entries using
// edit-distance similarity. Scores are on a 0-100 scale where 100 is an
// exact string match.
type Matcher struct {
	minScore      float64
	maxCandidates int
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithMinScore sets the score below which candidates are discarded.
// Default is 70.
func WithMinScore(score float64) Option {
	return func(m *Matcher) {
		m.minScore = score
	}
}

// WithMaxCandidates caps how many ranked candidates are returned.
// Default is 1000.
func WithMaxCandidates(n int) Option {
	return func(m *Matcher) {
		if n < 1 {
			n = 1
		}
		m.maxCandidates = n
	}
}

// NewMatcher creates a fuzzy matcher.
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{
		minScore:      defaultMinScore,
		maxCandidates: defaultMaxCandidates,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Score compares two normalized strings on a 0-100 scale. The score is
// the best of a plain ratio, a token-sort ratio that ignores word order,
// and a token-set ratio that tolerates extra words on one side.
func Score(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}

	best := ratio(a, b)
	if s := ratio(sortTokens(a), sortTokens(b)); s > best {
		best = s
	}
	// Token-set matches are discounted so a bare subset never outranks a
	// near-verbatim match.
	if s := tokenSetRatio(a, b) * tokenSetWeight; s > best {
		best = s
	}
	return best * 100
}

// Rank scores the query against each entry's normalized text, drops
// candidates below the minimum score, and returns the rest ordered by
// score. Ordering is deterministic: ties break on concept id, then
// entry id.
func (m *Matcher) Rank(normalizedQuery string, entries []*core.SearchEntry) []Candidate {
	candidates := make([]Candidate, 0, len(entries))
	for _, entry := range entries {
		score := Score(normalizedQuery, entry.NormalizedText)
		if score < m.minScore {
			continue
		}
		candidates = append(candidates, Candidate{Entry: entry, Score: score})
	}

	slices.SortFunc(candidates, func(a, b Candidate) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		if a.Entry.ConceptID != b.Entry.ConceptID {
			if a.Entry.ConceptID < b.Entry.ConceptID {
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

	if len(candidates) > m.maxCandidates {
		candidates = candidates[:m.maxCandidates]
	}
	return candidates
}

// ratio is edit-distance similarity on a 0-1 scale.
func ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	similarity, err := edlib.StringsSimilarity(a, b, edlib.Levenshtein)
	if err != nil {
		return 0
	}
	return float64(similarity)
}

// sortTokens rebuilds a string with its tokens in sorted order.
func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// tokenSetRatio compares the shared-token core of both strings against
// each full token set, so a query matching a subset of a longer entry
// still scores high.
func tokenSetRatio(a, b string) float64 {
	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)

	setA := make(map[string]bool, len(tokensA))
	for _, t := range tokensA {
		setA[t] = true
	}
	setB := make(map[string]bool, len(tokensB))
	for _, t := range tokensB {
		setB[t] = true
	}

	var shared, onlyA, onlyB []string
	for t := range setA {
		if setB[t] {
			shared = append(shared, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range setB {
		if !setA[t] {
			onlyB = append(onlyB, t)
		}
	}
	if len(shared) == 0 {
		return 0
	}

	sort.Strings(shared)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(shared, " ")
	full1 := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	full2 := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	best := ratio(base, full1)
	if s := ratio(base, full2); s > best {
		best = s
	}
	if s := ratio(full1, full2); s > best {
		best = s
	}
	return best
}
