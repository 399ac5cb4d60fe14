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

import "errors"

var (
	// ErrStoreRequired indicates a searcher was created without a
	// vocabulary store.
	ErrStoreRequired = errors.New("vocabulary store is required")

	// ErrInvalidConfig indicates out-of-range thresholds or weights.
	ErrInvalidConfig = errors.New("invalid lookup configuration")
)
