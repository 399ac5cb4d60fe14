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

import (
	"context"
	"fmt"

	"github.com/helixion/conceptmap/ai"
)

// Searcher embeds a query and searches a prebuilt index for the nearest
// entries. It is safe for concurrent use once constructed.
type Searcher struct {
	index    *Index
	embedder ai.Embedder
}

// NewSearcher wires an index to an embedder. Both are required.
func NewSearcher(index *Index, embedder ai.Embedder) (*Searcher, error) {
	if index == nil {
		return nil, fmt.Errorf("%w: index is nil", ErrUnavailable)
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	return &Searcher{index: index, embedder: embedder}, nil
}

// Nearest embeds text and returns up to k entries with similarity at or
// above minSimilarity, best first. Embedding failures surface as
// ErrUnavailable so callers can degrade instead of failing the query.
func (s *Searcher) Nearest(ctx context.Context, text string, k int, minSimilarity float32) ([]Result, error) {
	vector, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", ErrUnavailable, err)
	}
	return s.index.Search(NormalizeVector(vector), k, minSimilarity)
}

// Len reports how many entries the underlying index holds.
func (s *Searcher) Len() int {
	return s.index.Len()
}
