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

// Package semantic provides embedding-based similarity search over
// vocabulary entries.
//
// The Builder embeds every search entry on a worker pool and produces a
// flat inner-product Index. Vectors are unit-normalized so the inner
// product equals cosine similarity. The index persists to a single file
// artifact, written atomically, and loads back with LoadIndex.
//
// Semantic search is optional: when no index or embedder is available,
// ErrUnavailable tells callers to degrade to exact and fuzzy matching.
package semantic
