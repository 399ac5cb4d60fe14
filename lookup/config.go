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

// Config holds the thresholds and ranking weights for the tiered lookup.
type Config struct {
	// TopK is the default number of candidates returned per query.
	TopK int

	// ConfidenceThreshold is the minimum best-match confidence for a
	// lookup to be flagged successful.
	ConfidenceThreshold float64

	// FuzzyHighConfidence is the fuzzy score (0-100) at which the fuzzy
	// tier returns immediately without consulting semantic search.
	FuzzyHighConfidence float64

	// FuzzyMinScore is the fuzzy score floor below which candidates are
	// discarded.
	FuzzyMinScore float64

	// MaxFuzzyCandidates caps the token-overlap prefilter.
	MaxFuzzyCandidates int

	// SemanticMinSimilarity is the cosine similarity floor for semantic
	// hits.
	SemanticMinSimilarity float32

	// FuzzyWeight and SemanticWeight blend the two channels during
	// fusion. The fused base score also never drops below either channel
	// alone.
	FuzzyWeight    float64
	SemanticWeight float64

	// NameBoost and SynonymBoost weight matches by text origin.
	NameBoost    float64
	SynonymBoost float64

	// StandardBoost and NonStandardBoost weight matches by the matched
	// concept's standardness.
	StandardBoost    float64
	NonStandardBoost float64

	// DefaultVocabWeight applies to vocabularies absent from the
	// preference table of the query's domain.
	DefaultVocabWeight float64

	// VocabPreferences maps domain -> vocabulary -> weight in (0,1].
	// Domains absent from the map fall back to the "default" table.
	VocabPreferences map[string]map[string]float64
}

// DefaultConfig returns the standard thresholds and the vocabulary
// preference tables for the common clinical domains.
func DefaultConfig() *Config {
	return &Config{
		TopK:                  10,
		ConfidenceThreshold:   0.75,
		FuzzyHighConfidence:   95.0,
		FuzzyMinScore:         70.0,
		MaxFuzzyCandidates:    1000,
		SemanticMinSimilarity: 0.60,
		FuzzyWeight:           0.7,
		SemanticWeight:        0.3,
		NameBoost:             1.0,
		SynonymBoost:          0.98,
		StandardBoost:         1.0,
		NonStandardBoost:      0.95,
		DefaultVocabWeight:    0.5,
		VocabPreferences: map[string]map[string]float64{
			"Condition": {
				"SNOMED":  1.0,
				"ICD10CM": 0.8,
				"MedDRA":  0.7,
				"ICD9CM":  0.6,
			},
			"Procedure": {
				"SNOMED":   1.0,
				"CPT4":     0.95,
				"HCPCS":    0.85,
				"ICD10PCS": 0.8,
				"ICD9Proc": 0.6,
			},
			"Drug": {
				"RxNorm":           1.0,
				"RxNorm Extension": 0.95,
				"NDC":              0.7,
				"ATC":              0.6,
			},
			"Measurement": {
				"LOINC":  1.0,
				"SNOMED": 0.8,
			},
			"Observation": {
				"SNOMED": 1.0,
				"LOINC":  0.9,
			},
			"Device": {
				"SNOMED": 1.0,
				"HCPCS":  0.8,
			},
			"Specimen": {
				"SNOMED": 1.0,
			},
			"default": {
				"SNOMED": 1.0,
				"RxNorm": 0.9,
				"LOINC":  0.9,
			},
		},
	}
}

// Validate checks threshold sanity.
func (c *Config) Validate() error {
	if c.TopK < 1 {
		return ErrInvalidConfig
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return ErrInvalidConfig
	}
	if c.FuzzyMinScore < 0 || c.FuzzyMinScore > 100 ||
		c.FuzzyHighConfidence < c.FuzzyMinScore || c.FuzzyHighConfidence > 100 {
		return ErrInvalidConfig
	}
	if c.MaxFuzzyCandidates < 1 {
		return ErrInvalidConfig
	}
	if c.FuzzyWeight < 0 || c.SemanticWeight < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// vocabularyWeight returns the preference weight for a vocabulary in the
// context of a domain. Unknown domains use the default table; unknown
// vocabularies use the fallback weight.
func (c *Config) vocabularyWeight(domain, vocabulary string) float64 {
	table, ok := c.VocabPreferences[domain]
	if !ok {
		table = c.VocabPreferences["default"]
	}
	if weight, ok := table[vocabulary]; ok {
		return weight
	}
	return c.DefaultVocabWeight
}

// originBoost returns the weight for a match's text origin.
func (c *Config) originBoost(origin string) float64 {
	if origin == "synonym" {
		return c.SynonymBoost
	}
	return c.NameBoost
}

// standardBoost returns the weight for a match's standardness.
func (c *Config) standardBoost(standard bool) float64 {
	if standard {
		return c.StandardBoost
	}
	return c.NonStandardBoost
}
