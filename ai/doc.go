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

// Package ai provides the embedding abstraction behind semantic search.
//
// The Embedder interface decouples the semantic index and the lookup
// pipeline from any particular embedding backend. Two implementations
// ship with the module:
//
//   - ai/openai: production implementation for OpenAI-compatible APIs
//   - ai/mock: deterministic test double with no external dependency
//
// Public constructors (openai.NewEmbedder) return the INTERFACE type to
// enforce abstraction; the mock constructor returns the CONCRETE type so
// tests can inject behavior and assert on call counts.
//
// Semantic search is an optional capability. Code that consumes an
// Embedder must tolerate it being absent and degrade to the exact and
// fuzzy tiers.
package ai
