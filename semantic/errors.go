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

package semantic

import "errors"

var (
	// ErrUnavailable indicates semantic search cannot run because no
	// index has been built or no embedder is configured. Callers degrade
	// to the other search tiers rather than failing the lookup.
	ErrUnavailable = errors.New("semantic search unavailable")

	// ErrDimensionMismatch indicates a vector's dimensionality does not
	// match the index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrCorruptArtifact indicates a persisted index file could not be
	// decoded.
	ErrCorruptArtifact = errors.New("corrupt semantic index artifact")

	// ErrEmbedderRequired indicates a builder was created without an
	// embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrInvalidMaxAttempts indicates an invalid retry configuration.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
