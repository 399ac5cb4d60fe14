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

import "errors"

// Domain validation errors
var (
	// ErrInvalidConcept indicates a Concept failed validation.
	ErrInvalidConcept = errors.New("invalid concept")

	// ErrInvalidSynonym indicates a Synonym failed validation.
	ErrInvalidSynonym = errors.New("invalid synonym")

	// ErrInvalidMapsToEdge indicates a MapsToEdge failed validation.
	ErrInvalidMapsToEdge = errors.New("invalid maps-to edge")

	// ErrEmptyConceptName indicates the concept Name field is empty.
	ErrEmptyConceptName = errors.New("concept name cannot be empty")

	// ErrInvalidStandardFlag indicates an unrecognized StandardFlag value.
	ErrInvalidStandardFlag = errors.New("invalid standard concept flag")

	// ErrNonStandardTarget indicates a maps-to edge pointing at a
	// non-standard concept.
	ErrNonStandardTarget = errors.New("maps-to target must be a standard concept")
)
