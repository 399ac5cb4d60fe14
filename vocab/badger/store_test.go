package badger

import (
	"context"
	"strconv"
	"testing"

	"github.com/helixion/conceptmap/core"
	"github.com/helixion/conceptmap/normalize"
	"github.com/helixion/conceptmap/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConcepts() []*core.Concept {
	return []*core.Concept{
		{
			ID:         312327,
			Name:       "Acute myocardial infarction",
			Domain:     "Condition",
			Vocabulary: "SNOMED",
			Class:      "Clinical Finding",
			Standard:   core.StandardFlagStandard,
			Code:       "57054005",
		},
		{
			ID:         45766051,
			Name:       "Acute myocardial infarction of anterior wall",
			Domain:     "Condition",
			Vocabulary: "ICD10CM",
			Class:      "4-char billing code",
			Code:       "I21.0",
		},
		{
			ID:         1112807,
			Name:       "aspirin",
			Domain:     "Drug",
			Vocabulary: "RxNorm",
			Class:      "Ingredient",
			Standard:   core.StandardFlagStandard,
			Code:       "1191",
		},
	}
}

func makeEntry(c *core.Concept, text string, origin core.TextOrigin) *core.SearchEntry {
	return &core.SearchEntry{
		ID:             core.EntryIDFromContent(string(origin) + "\x00" + text + "\x00" + strconv.FormatInt(int64(c.ID), 10)),
		ConceptID:      c.ID,
		Text:           text,
		NormalizedText: normalize.Normalize(text),
		Origin:         origin,
		ConceptName:    c.Name,
		Domain:         c.Domain,
		Vocabulary:     c.Vocabulary,
		Class:          c.Class,
		Standard:       c.Standard,
		Code:           c.Code,
	}
}

// newTestStore builds and publishes a small vocabulary.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	concepts := testConcepts()
	require.NoError(t, store.PutConcepts(ctx, concepts...))

	entries := []*core.SearchEntry{
		makeEntry(concepts[0], concepts[0].Name, core.TextOriginName),
		makeEntry(concepts[0], "MI", core.TextOriginSynonym),
		makeEntry(concepts[0], "Heart attack", core.TextOriginSynonym),
		makeEntry(concepts[1], concepts[1].Name, core.TextOriginName),
		makeEntry(concepts[2], concepts[2].Name, core.TextOriginName),
		makeEntry(concepts[2], "Acetylsalicylic acid", core.TextOriginSynonym),
	}
	require.NoError(t, store.PutSearchEntries(ctx, entries...))

	edges := []*core.MapsToEdge{
		{
			SourceID:       45766051,
			StandardID:     312327,
			StandardName:   "Acute myocardial infarction",
			StandardDomain: "Condition",
			StandardVocab:  "SNOMED",
		},
	}
	require.NoError(t, store.PutMapsToEdges(ctx, edges...))

	require.NoError(t, store.Publish(ctx, &vocab.Stats{
		Concepts:      3,
		Synonyms:      3,
		SearchEntries: 6,
		MapsToEdges:   1,
	}))
	return store
}

func TestStore_NotInitialized(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	initialized, err := store.Initialized(ctx)
	require.NoError(t, err)
	assert.False(t, initialized)

	_, err = store.ExactMatch(ctx, "aspirin", "", 10)
	assert.ErrorIs(t, err, vocab.ErrNotInitialized)

	_, err = store.MapsTo(ctx, 45766051)
	assert.ErrorIs(t, err, vocab.ErrNotInitialized)

	// Written but unpublished data stays invisible.
	require.NoError(t, store.PutConcepts(ctx, testConcepts()...))
	_, err = store.ConceptByID(ctx, 312327)
	assert.ErrorIs(t, err, vocab.ErrNotInitialized)
}

func TestStore_ExactMatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name         string
		query        string
		domainFilter string
		wantConcepts []core.ConceptID
	}{
		{"name match", "acute myocardial infarction", "", []core.ConceptID{312327}},
		{"synonym match", "heart attack", "", []core.ConceptID{312327}},
		{"case folded at load", "acetylsalicylic acid", "", []core.ConceptID{1112807}},
		{"domain filter hit", "aspirin", "Drug", []core.ConceptID{1112807}},
		{"domain filter miss", "aspirin", "Condition", nil},
		{"no match", "completely unknown term", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := store.ExactMatch(ctx, tt.query, tt.domainFilter, 10)
			require.NoError(t, err)

			var ids []core.ConceptID
			for _, e := range results {
				ids = append(ids, e.ConceptID)
				assert.Equal(t, tt.query, e.NormalizedText)
			}
			assert.Equal(t, tt.wantConcepts, ids)
		})
	}
}

func TestStore_ExactMatch_EmptyQuery(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ExactMatch(context.Background(), "", "", 10)
	assert.ErrorIs(t, err, vocab.ErrInvalidQuery)
}

func TestStore_CandidatesByTokenOverlap(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Both infarction entries contain "myocardial" and "infarction".
	results, err := store.CandidatesByTokenOverlap(ctx, []string{"myocardial", "infarction"}, "", 2, 100)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	// A single shared token with minOverlap 1 still recalls both.
	results, err = store.CandidatesByTokenOverlap(ctx, []string{"infarction", "zzz"}, "", 1, 100)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	// Domain filter drops the condition entries entirely.
	results, err = store.CandidatesByTokenOverlap(ctx, []string{"infarction"}, "Drug", 1, 100)
	require.NoError(t, err)
	assert.Empty(t, results)

	// Limit caps the scan.
	results, err = store.CandidatesByTokenOverlap(ctx, []string{"a"}, "", 1, 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	_, err = store.CandidatesByTokenOverlap(ctx, nil, "", 1, 10)
	assert.ErrorIs(t, err, vocab.ErrInvalidQuery)
}

func TestStore_SearchEntries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	count := 0
	err := store.SearchEntries(ctx, "", func(e *core.SearchEntry) bool {
		count++
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	// Domain filter narrows iteration.
	count = 0
	err = store.SearchEntries(ctx, "Drug", func(e *core.SearchEntry) bool {
		assert.Equal(t, "Drug", e.Domain)
		count++
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Returning false stops early.
	count = 0
	err = store.SearchEntries(ctx, "", func(e *core.SearchEntry) bool {
		count++
		return false
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_MapsTo(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	edge, err := store.MapsTo(ctx, 45766051)
	require.NoError(t, err)
	require.NotNil(t, edge)
	assert.Equal(t, core.ConceptID(312327), edge.StandardID)
	assert.Equal(t, "Acute myocardial infarction", edge.StandardName)

	// Standard concepts carry no edge.
	edge, err = store.MapsTo(ctx, 312327)
	require.NoError(t, err)
	assert.Nil(t, edge)
}

func TestStore_PutMapsToEdges_FirstWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// A second edge for the same source is ignored.
	err := store.PutMapsToEdges(ctx, &core.MapsToEdge{
		SourceID:       45766051,
		StandardID:     1112807,
		StandardName:   "aspirin",
		StandardDomain: "Drug",
		StandardVocab:  "RxNorm",
	})
	require.NoError(t, err)

	edge, err := store.MapsTo(ctx, 45766051)
	require.NoError(t, err)
	require.NotNil(t, edge)
	assert.Equal(t, core.ConceptID(312327), edge.StandardID)
}

func TestStore_ConceptByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	concept, err := store.ConceptByID(ctx, 1112807)
	require.NoError(t, err)
	require.NotNil(t, concept)
	assert.Equal(t, "aspirin", concept.Name)
	assert.Equal(t, core.StandardFlagStandard, concept.Standard)

	concept, err = store.ConceptByID(ctx, 999999)
	require.NoError(t, err)
	assert.Nil(t, concept)
}

func TestStore_Stats(t *testing.T) {
	store := newTestStore(t)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Concepts)
	assert.Equal(t, int64(3), stats.Synonyms)
	assert.Equal(t, int64(6), stats.SearchEntries)
	assert.Equal(t, int64(1), stats.MapsToEdges)
}

func TestStore_Reset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Reset(ctx))

	initialized, err := store.Initialized(ctx)
	require.NoError(t, err)
	assert.False(t, initialized)

	_, err = store.ExactMatch(ctx, "aspirin", "", 10)
	assert.ErrorIs(t, err, vocab.ErrNotInitialized)
}
