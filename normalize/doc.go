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


// Package normalize canonicalizes free-text medical terms for matching.
//
// Normalization lowercases, strips diacritics, and collapses punctuation
// and whitespace so that "Myocardial Infarction (Heart Attack)" and
// "myocardial infarction heart attack" compare equal. The same function is
// applied to stored vocabulary text at load time and to queries at lookup
// time, which is what makes the exact-match tier a single index lookup.
package normalize
