package conceptmap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/helixion/conceptmap/ai/mock"
	"github.com/helixion/conceptmap/core"
	"github.com/helixion/conceptmap/semantic"
	"github.com/helixion/conceptmap/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testSource(t *testing.T) vocab.Source {
	t.Helper()
	dir := t.TempDir()

	concepts := "concept_id\tconcept_name\tdomain_id\tvocabulary_id\tconcept_class_id\tstandard_concept\tconcept_code\tinvalid_reason\n" +
		"312327\tMyocardial infarction\tCondition\tSNOMED\tClinical Finding\tS\t22298006\t\n" +
		"45766051\tAcute myocardial infarction\tCondition\tICD10CM\t3-char billing code\t\tI21\t\n" +
		"1112807\taspirin\tDrug\tRxNorm\tIngredient\tS\t1191\t\n"

	synonyms := "concept_id\tconcept_synonym_name\tlanguage_concept_id\n" +
		"312327\tHeart attack\t4180186\n"

	relationships := "concept_id_1\tconcept_id_2\trelationship_id\tvalid_start_date\tvalid_end_date\tinvalid_reason\n" +
		"45766051\t312327\tMaps to\t20100101\t20991231\t\n"

	return vocab.Source{
		Concepts:      writeTestFile(t, dir, "CONCEPT.csv", concepts),
		Synonyms:      writeTestFile(t, dir, "CONCEPT_SYNONYM.csv", synonyms),
		Relationships: writeTestFile(t, dir, "CONCEPT_RELATIONSHIP.csv", relationships),
	}
}

func newTestEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()

	opts = append([]EngineOption{WithInMemory(), WithEmbedder(mock.NewMockEmbedder())}, opts...)
	engine, err := New("", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })
	return engine
}

func TestNew(t *testing.T) {
	t.Run("create engine", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "concepts_db")
		engine, err := New(tmpDir, WithEmbedder(mock.NewMockEmbedder()))
		require.NoError(t, err)
		require.NotNil(t, engine)
		defer engine.Close()

		assert.NotNil(t, engine.Store())
		assert.NotNil(t, engine.Searcher())
		assert.False(t, engine.SemanticIndexReady())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0o644))

		engine, err := New(tmpFile, WithEmbedder(mock.NewMockEmbedder()))
		assert.Error(t, err)
		assert.Nil(t, engine)
	})
}

func TestEngine_LoadVocabulary(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	stats, err := engine.LoadVocabulary(ctx, testSource(t), false)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Concepts)
	assert.Equal(t, int64(1), stats.Synonyms)
	assert.Equal(t, int64(4), stats.SearchEntries)
	assert.Equal(t, int64(1), stats.MapsToEdges)

	// A second load without force is a no-op.
	again, err := engine.LoadVocabulary(ctx, vocab.Source{Concepts: "/nonexistent"}, false)
	require.NoError(t, err)
	assert.Equal(t, stats.SearchEntries, again.SearchEntries)

	// A forced reload reads the source again.
	_, err = engine.LoadVocabulary(ctx, vocab.Source{Concepts: "/nonexistent"}, true)
	assert.ErrorIs(t, err, vocab.ErrMissingSource)
}

func TestEngine_Lookup(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.LoadVocabulary(ctx, testSource(t), false)
	require.NoError(t, err)

	result, err := engine.Lookup(ctx, "Heart attack")
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, core.ConceptID(312327), result.BestMatch.ConceptID)
	assert.Equal(t, 1.0, result.BestMatch.Confidence)

	batch, err := engine.LookupMany(ctx, []string{"heart attack", "aspirin"})
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Successful)
}

func TestEngine_Lookup_NotInitialized(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.Lookup(context.Background(), "heart attack")
	require.Error(t, err)
	assert.ErrorIs(t, err, vocab.ErrNotInitialized)
}

func TestEngine_BuildSemanticIndex(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.LoadVocabulary(ctx, testSource(t), false)
	require.NoError(t, err)
	require.False(t, engine.SemanticIndexReady())

	require.NoError(t, engine.BuildSemanticIndex(ctx, "", semantic.WithPoolSize(2)))
	assert.True(t, engine.SemanticIndexReady())

	// Queries still answer after the swap.
	result, err := engine.Lookup(ctx, "heart attack")
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestEngine_IndexPersistence(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "concepts_db")
	embedder := mock.NewMockEmbedder()
	ctx := context.Background()

	engine, err := New(tmpDir, WithEmbedder(embedder))
	require.NoError(t, err)

	_, err = engine.LoadVocabulary(ctx, testSource(t), false)
	require.NoError(t, err)
	require.NoError(t, engine.BuildSemanticIndex(ctx, ""))
	require.NoError(t, engine.Close())

	// Reopening picks the artifact back up.
	engine, err = New(tmpDir, WithEmbedder(embedder))
	require.NoError(t, err)
	defer engine.Close()
	assert.True(t, engine.SemanticIndexReady())
}

func TestEngine_Stats(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.LoadVocabulary(ctx, testSource(t), false)
	require.NoError(t, err)

	stats, err := engine.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Concepts)
}
