package semantic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/helixion/conceptmap/ai/mock"
	"github.com/helixion/conceptmap/core"
	"github.com/helixion/conceptmap/vocab"
	vocabbadger "github.com/helixion/conceptmap/vocab/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T, texts []string) vocab.BuildableStore {
	t.Helper()

	store, err := vocabbadger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	entries := make([]*core.SearchEntry, len(texts))
	for i, text := range texts {
		entries[i] = &core.SearchEntry{
			ID:             core.EntryIDFromContent(text),
			ConceptID:      core.ConceptID(i + 1),
			Text:           text,
			NormalizedText: text,
			Origin:         core.TextOriginName,
			ConceptName:    text,
			Domain:         "Condition",
			Vocabulary:     "SNOMED",
			Standard:       core.StandardFlagStandard,
		}
	}
	require.NoError(t, store.PutSearchEntries(ctx, entries...))
	require.NoError(t, store.Publish(ctx, &vocab.Stats{SearchEntries: int64(len(texts))}))
	return store
}

func TestBuilder_Build(t *testing.T) {
	store := setupTestStore(t, []string{
		"acute myocardial infarction",
		"heart attack",
		"aspirin",
	})

	embedder := mock.NewMockEmbedder()
	builder, err := NewBuilder(embedder, WithBatchSize(2), WithPoolSize(2))
	require.NoError(t, err)

	index, err := builder.Build(context.Background(), store, "")
	require.NoError(t, err)
	assert.Equal(t, 3, index.Len())
	assert.Equal(t, 384, index.Dim())

	// A text embeds to the same vector at query time, so searching for
	// it returns its own entry first with similarity ~1.
	query, err := embedder.EmbedText(context.Background(), "heart attack")
	require.NoError(t, err)

	results, err := index.Search(query, 1, 0.9)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, core.EntryIDFromContent("heart attack"), results[0].EntryID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-4)
}

func TestBuilder_Build_EmbedsNormalizedText(t *testing.T) {
	store, err := vocabbadger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	entries := []*core.SearchEntry{
		{
			ID:             core.EntryIDFromContent("Myocardial Infarction (Heart Attack)"),
			ConceptID:      1,
			Text:           "Myocardial Infarction (Heart Attack)",
			NormalizedText: "myocardial infarction heart attack",
			Origin:         core.TextOriginName,
			ConceptName:    "Myocardial Infarction (Heart Attack)",
			Domain:         "Condition",
			Vocabulary:     "SNOMED",
			Standard:       core.StandardFlagStandard,
		},
		{
			ID:          core.EntryIDFromContent("aspirin"),
			ConceptID:   2,
			Text:        "aspirin",
			Origin:      core.TextOriginName,
			ConceptName: "aspirin",
			Domain:      "Drug",
			Vocabulary:  "RxNorm",
			Standard:    core.StandardFlagStandard,
		},
	}
	require.NoError(t, store.PutSearchEntries(ctx, entries...))
	require.NoError(t, store.Publish(ctx, &vocab.Stats{SearchEntries: 2}))

	var got []string
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		got = append(got, texts...)
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1, 0, 0}
		}
		return out, nil
	}

	builder, err := NewBuilder(embedder)
	require.NoError(t, err)

	_, err = builder.Build(ctx, store, "")
	require.NoError(t, err)

	// Stored vectors come from the normalized text, the same form the
	// query side embeds. Entries without one fall back to the raw text.
	assert.ElementsMatch(t, []string{"myocardial infarction heart attack", "aspirin"}, got)
}

func TestBuilder_Build_EmptyStore(t *testing.T) {
	store, err := vocabbadger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Publish(context.Background(), &vocab.Stats{}))

	builder, err := NewBuilder(mock.NewMockEmbedder())
	require.NoError(t, err)

	_, err = builder.Build(context.Background(), store, "")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestBuilder_Build_EmbeddingFailure(t *testing.T) {
	store := setupTestStore(t, []string{"aspirin", "heart attack"})

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("service down")
	}

	builder, err := NewBuilder(embedder, WithRetry(2, time.Millisecond))
	require.NoError(t, err)

	_, err = builder.Build(context.Background(), store, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service down")
}

func TestBuilder_Build_Retry(t *testing.T) {
	store := setupTestStore(t, []string{"aspirin"})

	attempts := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		attempts++
		if attempts < 2 {
			return nil, errors.New("temporary error")
		}
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1, 0, 0}
		}
		return out, nil
	}

	builder, err := NewBuilder(embedder, WithRetry(3, time.Millisecond))
	require.NoError(t, err)

	index, err := builder.Build(context.Background(), store, "")
	require.NoError(t, err)
	assert.Equal(t, 1, index.Len())
	assert.Equal(t, 2, attempts)
}

func TestNewBuilder_NilEmbedder(t *testing.T) {
	_, err := NewBuilder(nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}
