package semantic

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/helixion/conceptmap/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVector(t *testing.T) {
	t.Run("normalizes to unit length", func(t *testing.T) {
		v := NormalizeVector([]float32{3, 4})
		assert.InDelta(t, 0.6, v[0], 1e-6)
		assert.InDelta(t, 0.8, v[1], 1e-6)
	})

	t.Run("zero vector stays zero", func(t *testing.T) {
		v := NormalizeVector([]float32{0, 0, 0})
		assert.Equal(t, []float32{0, 0, 0}, v)
	})

	t.Run("empty vector", func(t *testing.T) {
		assert.Empty(t, NormalizeVector(nil))
	})

	t.Run("does not mutate input", func(t *testing.T) {
		in := []float32{3, 4}
		NormalizeVector(in)
		assert.Equal(t, []float32{3, 4}, in)
	})
}

func TestIndex_Search(t *testing.T) {
	idx, err := NewIndex(3)
	require.NoError(t, err)

	require.NoError(t, idx.Add(1, []float32{1, 0, 0}))
	require.NoError(t, idx.Add(2, []float32{0, 1, 0}))
	require.NoError(t, idx.Add(3, []float32{2, 2, 0})) // normalized to (0.707, 0.707, 0)
	require.Equal(t, 3, idx.Len())

	results, err := idx.Search([]float32{1, 0, 0}, 10, 0.5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, core.EntryID(1), results[0].EntryID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-5)
	assert.Equal(t, core.EntryID(3), results[1].EntryID)
	assert.InDelta(t, 1.0/math.Sqrt2, float64(results[1].Score), 1e-5)
}

func TestIndex_Search_TopK(t *testing.T) {
	idx, err := NewIndex(2)
	require.NoError(t, err)
	for i := 1; i <= 5; i++ {
		require.NoError(t, idx.Add(core.EntryID(i), []float32{1, float32(i) * 0.1}))
	}

	results, err := idx.Search([]float32{1, 0}, 2, 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, core.EntryID(1), results[0].EntryID)
}

func TestIndex_Search_Deterministic(t *testing.T) {
	idx, err := NewIndex(2)
	require.NoError(t, err)

	// Identical vectors, distinct ids: ties order by id.
	require.NoError(t, idx.Add(9, []float32{1, 0}))
	require.NoError(t, idx.Add(4, []float32{1, 0}))
	require.NoError(t, idx.Add(7, []float32{1, 0}))

	results, err := idx.Search([]float32{1, 0}, 10, 0.9)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, core.EntryID(4), results[0].EntryID)
	assert.Equal(t, core.EntryID(7), results[1].EntryID)
	assert.Equal(t, core.EntryID(9), results[2].EntryID)
}

func TestIndex_DimensionMismatch(t *testing.T) {
	idx, err := NewIndex(3)
	require.NoError(t, err)

	assert.ErrorIs(t, idx.Add(1, []float32{1, 0}), ErrDimensionMismatch)

	_, err = idx.Search([]float32{1, 0}, 10, 0)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = NewIndex(0)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestIndex_SaveLoad(t *testing.T) {
	idx, err := NewIndex(3)
	require.NoError(t, err)
	require.NoError(t, idx.Add(10, []float32{1, 0, 0}))
	require.NoError(t, idx.Add(20, []float32{0, 3, 4}))

	path := filepath.Join(t.TempDir(), "vocab.idx")
	require.NoError(t, idx.Save(path))

	loaded, err := LoadIndex(path)
	require.NoError(t, err)
	assert.Equal(t, idx.Dim(), loaded.Dim())
	assert.Equal(t, idx.Len(), loaded.Len())

	want, err := idx.Search([]float32{0, 3, 4}, 10, 0)
	require.NoError(t, err)
	got, err := loaded.Search([]float32{0, 3, 4}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadIndex_Missing(t *testing.T) {
	_, err := LoadIndex(filepath.Join(t.TempDir(), "missing.idx"))
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestLoadIndex_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.idx")
	require.NoError(t, os.WriteFile(path, []byte("not an index"), 0o644))

	_, err := LoadIndex(path)
	assert.ErrorIs(t, err, ErrCorruptArtifact)
}
