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

// Package vocab defines the vocabulary persistence contracts and the
// loader that turns tab-separated vocabulary dumps into a queryable store.
//
// A Store answers lookup-time questions: exact matches on normalized text,
// token-overlap candidate retrieval for fuzzy scoring, Maps-To edge
// resolution, and concept retrieval by identifier. A Builder populates a
// store from parsed source rows and publishes the result atomically, so a
// partially built store is never visible to readers.
//
// The concrete badger-backed implementation lives in the badger
// subpackage.
package vocab
