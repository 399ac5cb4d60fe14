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


package vocab

import "errors"

var (
	// ErrNotInitialized indicates a query against a store whose build has
	// not completed. Partial builds fail loudly instead of returning
	// empty results.
	ErrNotInitialized = errors.New("vocabulary store not initialized")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("vocabulary store is closed")

	// ErrInvalidQuery indicates invalid query parameters.
	ErrInvalidQuery = errors.New("invalid query parameters")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrMissingSource indicates a vocabulary source file is absent or
	// unreadable. Fatal to the build step.
	ErrMissingSource = errors.New("vocabulary source file missing")

	// ErrBuilderRequired indicates a loader was created without a builder.
	ErrBuilderRequired = errors.New("builder is required")

	// ErrMalformedSource indicates a source file could not be parsed.
	// Fatal to the build step.
	ErrMalformedSource = errors.New("malformed vocabulary source file")
)
