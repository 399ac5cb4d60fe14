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

package conceptmap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/helixion/conceptmap/ai"
	"github.com/helixion/conceptmap/ai/openai"
	"github.com/helixion/conceptmap/core"
	"github.com/helixion/conceptmap/lookup"
	"github.com/helixion/conceptmap/semantic"
	"github.com/helixion/conceptmap/vocab"
	vocabbadger "github.com/helixion/conceptmap/vocab/badger"
)

// Engine assembles the vocabulary store, the embedding provider, and the
// tiered searcher into one handle. Construct it once at startup; queries
// are safe to run concurrently. LoadVocabulary and BuildSemanticIndex
// are offline build steps and must not run concurrently with queries.
type Engine struct {
	backend  *vocabbadger.Backend
	store    *vocabbadger.Store
	embedder ai.Embedder
	searcher *lookup.Searcher
	semantic *swappableSemantic

	indexPath string
	logger    *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig     *ai.Config
	lookupConfig *lookup.Config
	embedder     ai.Embedder
	indexPath    string
	inMemory     bool
}

// WithAIConfig sets the embedding provider configuration.
func WithAIConfig(cfg *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = cfg
	}
}

// WithLookupConfig replaces the default search thresholds and weights.
func WithLookupConfig(cfg *lookup.Config) EngineOption {
	return func(o *engineOptions) {
		o.lookupConfig = cfg
	}
}

// WithEmbedder injects an embedder, bypassing the OpenAI-compatible
// client. Used by tests and by callers with their own inference stack.
func WithEmbedder(embedder ai.Embedder) EngineOption {
	return func(o *engineOptions) {
		o.embedder = embedder
	}
}

// WithIndexPath sets where the semantic index artifact is loaded from
// and saved to. Defaults to the store path with a ".semantic" suffix.
func WithIndexPath(path string) EngineOption {
	return func(o *engineOptions) {
		o.indexPath = path
	}
}

// WithInMemory keeps the store and index entirely in memory. Nothing is
// persisted; mainly useful for tests.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// New opens (or creates) the vocabulary store at filePath and wires up
// the searcher. A missing or unreadable semantic index is not an error;
// the engine runs fuzzy-only until BuildSemanticIndex is called.
func New(filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := vocabbadger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	store, err := vocabbadger.NewStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	indexPath := options.indexPath
	if indexPath == "" && !options.inMemory {
		indexPath = filePath + ".semantic"
	}

	e := &Engine{
		backend:   backend,
		store:     store,
		embedder:  embedder,
		semantic:  &swappableSemantic{},
		indexPath: indexPath,
		logger:    slog.Default().With("component", "engine"),
	}

	lookupOpts := []lookup.Option{
		lookup.WithSemanticSearcher(e.semantic),
	}
	if options.lookupConfig != nil {
		lookupOpts = append(lookupOpts, lookup.WithConfig(options.lookupConfig))
	}
	e.searcher, err = lookup.NewSearcher(store, lookupOpts...)
	if err != nil {
		backend.Close()
		return nil, err
	}

	e.loadSemanticIndex()
	return e, nil
}

// loadSemanticIndex tries to bring up the semantic tier from a persisted
// artifact. Absence is normal before the first index build.
func (e *Engine) loadSemanticIndex() {
	if e.indexPath == "" {
		return
	}
	index, err := semantic.LoadIndex(e.indexPath)
	if err != nil {
		if errors.Is(err, semantic.ErrUnavailable) {
			e.logger.Info("no semantic index artifact, running fuzzy-only", "path", e.indexPath)
		} else {
			e.logger.Warn("failed to load semantic index, running fuzzy-only", "path", e.indexPath, "error", err)
		}
		return
	}

	searcher, err := semantic.NewSearcher(index, e.embedder)
	if err != nil {
		e.logger.Warn("failed to wire semantic searcher", "error", err)
		return
	}
	e.semantic.swap(searcher)
	e.logger.Info("semantic index loaded", "path", e.indexPath, "entries", index.Len())
}

// Lookup resolves a single free-text term.
func (e *Engine) Lookup(ctx context.Context, query string, opts ...lookup.QueryOption) (*core.LookupResult, error) {
	return e.searcher.Lookup(ctx, query, opts...)
}

// LookupMany resolves multiple terms, preserving input order.
func (e *Engine) LookupMany(ctx context.Context, queries []string, opts ...lookup.QueryOption) (*core.BatchResult, error) {
	return e.searcher.LookupMany(ctx, queries, opts...)
}

// LoadVocabulary builds the store from tabular source dumps. Loading is
// idempotent: an already-built store is left untouched unless force is
// set, in which case it is dropped and rebuilt.
func (e *Engine) LoadVocabulary(ctx context.Context, src vocab.Source, force bool) (*vocab.Stats, error) {
	built, err := e.store.Initialized(ctx)
	if err != nil {
		return nil, err
	}
	if built && !force {
		e.logger.Info("vocabulary already loaded, skipping")
		return e.store.Stats(ctx)
	}

	loader, err := vocab.NewLoader(e.store)
	if err != nil {
		return nil, err
	}
	return loader.Load(ctx, src)
}

// BuildSemanticIndex embeds every search entry (optionally restricted to
// one domain), builds a fresh index, persists it, and swaps it into the
// live searcher. Hours-scale on full vocabularies.
func (e *Engine) BuildSemanticIndex(ctx context.Context, domainFilter string, opts ...semantic.BuilderOption) error {
	builder, err := semantic.NewBuilder(e.embedder, opts...)
	if err != nil {
		return err
	}

	index, err := builder.Build(ctx, e.store, domainFilter)
	if err != nil {
		return err
	}

	if e.indexPath != "" {
		if err := index.Save(e.indexPath); err != nil {
			return fmt.Errorf("saving semantic index: %w", err)
		}
	}

	searcher, err := semantic.NewSearcher(index, e.embedder)
	if err != nil {
		return err
	}
	e.semantic.swap(searcher)
	e.logger.Info("semantic index ready", "entries", index.Len(), "path", e.indexPath)
	return nil
}

// SemanticIndexReady reports whether the semantic tier can serve queries.
func (e *Engine) SemanticIndexReady() bool {
	return e.semantic.current() != nil
}

// Stats returns per-table row counts for health checks.
func (e *Engine) Stats(ctx context.Context) (*vocab.Stats, error) {
	return e.store.Stats(ctx)
}

// Store exposes the underlying vocabulary store for read access.
func (e *Engine) Store() vocab.Store {
	return e.store
}

// Searcher exposes the assembled tiered searcher.
func (e *Engine) Searcher() *lookup.Searcher {
	return e.searcher
}

// Close releases the store. The engine must not be used afterwards.
func (e *Engine) Close() error {
	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing vocabulary store", "err", err)
		return err
	}
	return nil
}

// swappableSemantic lets a freshly built index replace the live one
// without rebuilding the searcher. An empty slot reports the typed
// unavailability that the lookup tier degrades on.
type swappableSemantic struct {
	ptr atomic.Pointer[semantic.Searcher]
}

func (s *swappableSemantic) swap(searcher *semantic.Searcher) {
	s.ptr.Store(searcher)
}

func (s *swappableSemantic) current() *semantic.Searcher {
	return s.ptr.Load()
}

func (s *swappableSemantic) Nearest(ctx context.Context, text string, k int, minSimilarity float32) ([]semantic.Result, error) {
	searcher := s.ptr.Load()
	if searcher == nil {
		return nil, semantic.ErrUnavailable
	}
	return searcher.Nearest(ctx, text, k, minSimilarity)
}
