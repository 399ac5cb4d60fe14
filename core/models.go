package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ConceptID identifies a vocabulary concept. IDs are assigned by the
// source vocabulary and are stable across loads.
type ConceptID int64

// EntryID is a deterministic identifier for a search entry, derived from
// its content so that reloading the same vocabulary produces identical IDs.
type EntryID uint64

// EntryIDFromContent generates a deterministic EntryID using BLAKE2b hashing.
func EntryIDFromContent(text string) EntryID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return EntryID(binary.LittleEndian.Uint64(sum))
}

// StandardFlag is the tri-state standardness designation of a concept.
type StandardFlag string

const (
	// StandardFlagStandard marks a concept as the canonical analytics target.
	StandardFlagStandard StandardFlag = "S"
	// StandardFlagClassification marks a classification concept.
	StandardFlagClassification StandardFlag = "C"
	// StandardFlagNone marks a non-standard source-vocabulary concept.
	StandardFlagNone StandardFlag = ""
)

// TextOrigin identifies whether a search entry came from a concept's
// display name or from one of its synonyms.
type TextOrigin string

const (
	TextOriginName    TextOrigin = "name"
	TextOriginSynonym TextOrigin = "synonym"
)

// Concept is an immutable catalog entry in a controlled medical vocabulary.
// Concepts are loaded once from the source dataset and treated as read-only.
type Concept struct {
	ID            ConceptID    `json:"concept_id"`
	Name          string       `json:"concept_name"`
	Domain        string       `json:"domain_id"`
	Vocabulary    string       `json:"vocabulary_id"`
	Class         string       `json:"concept_class_id"`
	Standard      StandardFlag `json:"standard_concept"`
	Code          string       `json:"concept_code"`
	InvalidReason string       `json:"invalid_reason,omitempty"`
}

// Valid reports whether the concept is currently valid in its source
// vocabulary. Invalidated concepts are excluded from search entries.
func (c *Concept) Valid() bool {
	return c.InvalidReason == ""
}

// Synonym is an alternative text for a concept. A concept may carry many
// synonyms; synonym text is not unique across concepts.
type Synonym struct {
	ConceptID ConceptID
	Text      string
}

// MapsToEdge is a canonicalization edge from a non-standard concept to its
// standard equivalent. Edges are only materialized when the target is a
// valid standard concept, so following an edge never requires chaining.
type MapsToEdge struct {
	SourceID       ConceptID
	StandardID     ConceptID
	StandardName   string
	StandardDomain string
	StandardVocab  string
}

// SearchEntry is the denormalized unit of matchable text: one row per
// concept name and per synonym, carrying a copy of the parent concept's
// filter fields so matching never needs a join.
type SearchEntry struct {
	ID             EntryID
	ConceptID      ConceptID
	Text           string
	NormalizedText string
	Origin         TextOrigin
	ConceptName    string
	Domain         string
	Vocabulary     string
	Class          string
	Standard       StandardFlag
	Code           string
}

// MatchType tags how a concept was matched.
type MatchType string

const (
	MatchTypeExactName    MatchType = "exact_name"
	MatchTypeExactSynonym MatchType = "exact_synonym"
	MatchTypeFuzzyName    MatchType = "fuzzy_name"
	MatchTypeFuzzySynonym MatchType = "fuzzy_synonym"
	MatchTypeSemantic     MatchType = "semantic"
)

// ResolutionStatus describes the outcome of standard-concept resolution.
type ResolutionStatus string

const (
	ResolutionAlreadyStandard    ResolutionStatus = "already_standard"
	ResolutionMappedToStandard   ResolutionStatus = "mapped_to_standard"
	ResolutionNoMappingAvailable ResolutionStatus = "no_mapping_available"
)

// ConceptMatch is a single scored match with full metadata. Callers should
// check Confidence and ResolutionStatus to decide whether to trust the
// match or route it to review.
type ConceptMatch struct {
	ConceptID  ConceptID    `json:"concept_id"`
	Name       string       `json:"concept_name"`
	Domain     string       `json:"domain_id"`
	Vocabulary string       `json:"vocabulary_id"`
	Class      string       `json:"concept_class_id"`
	Standard   StandardFlag `json:"standard_concept"`
	Code       string       `json:"concept_code,omitempty"`

	Confidence  float64   `json:"confidence"`
	MatchType   MatchType `json:"match_type"`
	MatchedText string    `json:"matched_text"`

	ResolutionStatus ResolutionStatus `json:"resolution_status"`
	StandardID       ConceptID        `json:"standard_concept_id,omitempty"`
	StandardName     string           `json:"standard_concept_name,omitempty"`
}

// AnalyticsID returns the concept id to use for downstream analytics:
// the concept's own id if already standard, the mapped standard id if
// resolved via Maps-To. The boolean is false when no standard mapping exists.
func (m *ConceptMatch) AnalyticsID() (ConceptID, bool) {
	switch m.ResolutionStatus {
	case ResolutionAlreadyStandard:
		return m.ConceptID, true
	case ResolutionMappedToStandard:
		return m.StandardID, true
	}
	return 0, false
}

// UsableForAnalytics reports whether the match resolves to a standard
// concept, either directly or via a Maps-To edge.
func (m *ConceptMatch) UsableForAnalytics() bool {
	_, ok := m.AnalyticsID()
	return ok
}

// HighConfidence reports whether the match meets the given confidence threshold.
func (m *ConceptMatch) HighConfidence(threshold float64) bool {
	return m.Confidence >= threshold
}

// LookupResult is the complete outcome of one query.
//
// If Success is true the BestMatch met the confidence threshold. If false,
// BestMatch and Candidates are still populated on a best-effort basis so a
// human or second-stage process can review them.
type LookupResult struct {
	Query           string          `json:"query"`
	NormalizedQuery string          `json:"normalized_query"`
	DomainFilter    string          `json:"domain_filter,omitempty"`
	Success         bool            `json:"success"`
	BestMatch       *ConceptMatch   `json:"best_match"`
	Candidates      []*ConceptMatch `json:"candidates"`
	SearchTimeMs    float64         `json:"search_time_ms"`
	Warnings        []string        `json:"warnings"`
}

// BatchResult aggregates the results of a multi-query lookup.
type BatchResult struct {
	Results    []*LookupResult `json:"results"`
	Total      int             `json:"total_queries"`
	Successful int             `json:"successful_queries"`
	TimeMs     float64         `json:"total_time_ms"`
}

// SuccessRate returns the fraction of successful queries in the batch.
func (b *BatchResult) SuccessRate() float64 {
	if b.Total == 0 {
		return 0
	}
	return float64(b.Successful) / float64(b.Total)
}
