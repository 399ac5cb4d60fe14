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


package core

import "fmt"

// ValidateConcept validates a Concept according to domain rules.
//
// Validation rules:
//   - ID must be positive
//   - Name must not be empty
//   - Standard flag must be one of S, C, or empty
//
// NOT validated (vocabulary-specific):
//   - Domain, Vocabulary, Class, Code (free-form source fields)
func ValidateConcept(concept *Concept) error {
	if concept == nil {
		return fmt.Errorf("%w: concept is nil", ErrInvalidConcept)
	}

	if concept.ID <= 0 {
		return fmt.Errorf("%w: non-positive id %d", ErrInvalidConcept, concept.ID)
	}

	if concept.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConcept, ErrEmptyConceptName)
	}

	if err := ValidateStandardFlag(concept.Standard); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConcept, err)
	}

	return nil
}

// ValidateSynonym validates a Synonym according to domain rules.
func ValidateSynonym(synonym *Synonym) error {
	if synonym == nil {
		return fmt.Errorf("%w: synonym is nil", ErrInvalidSynonym)
	}

	if synonym.ConceptID <= 0 {
		return fmt.Errorf("%w: non-positive concept id %d", ErrInvalidSynonym, synonym.ConceptID)
	}

	if synonym.Text == "" {
		return fmt.Errorf("%w: empty synonym text", ErrInvalidSynonym)
	}

	return nil
}

// ValidateMapsToEdge validates a canonicalization edge. The standard-target
// requirement is enforced here rather than at query time so an edge that
// reaches storage is always safe to follow without chaining.
func ValidateMapsToEdge(edge *MapsToEdge) error {
	if edge == nil {
		return fmt.Errorf("%w: edge is nil", ErrInvalidMapsToEdge)
	}

	if edge.SourceID <= 0 || edge.StandardID <= 0 {
		return fmt.Errorf("%w: non-positive concept id", ErrInvalidMapsToEdge)
	}

	if edge.StandardName == "" {
		return fmt.Errorf("%w: empty standard concept name", ErrInvalidMapsToEdge)
	}

	return nil
}

// ValidateStandardFlag validates that a StandardFlag has a recognized value.
func ValidateStandardFlag(flag StandardFlag) error {
	switch flag {
	case StandardFlagStandard, StandardFlagClassification, StandardFlagNone:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidStandardFlag, flag)
}
