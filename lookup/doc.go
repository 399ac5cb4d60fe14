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

// Package lookup implements tiered concept resolution over a built
// vocabulary store.
//
// A query passes through up to three tiers. An exact match on normalized
// text (or an abbreviation-expanded variant) answers immediately with
// full confidence. Otherwise fuzzy string matching scores a
// token-overlap candidate set, and a near-verbatim fuzzy hit also
// answers immediately. Remaining queries consult semantic search when an
// embedding index is available, and the fuzzy and semantic channels are
// fused into a single ranking weighted by vocabulary preference, text
// origin, and standardness.
//
// Every ranked candidate is resolved to its standard concept through the
// store's Maps-To table. Ordinary no-match and low-confidence outcomes
// are reported in the result rather than as errors; a missing semantic
// index degrades the query to fuzzy-only with a warning.
package lookup
