package semantic

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/helixion/conceptmap/core"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// artifactMagic identifies a persisted index file.
var artifactMagic = []byte("CMIDX1")

// Result is one semantic search hit. Score is cosine similarity in
// [-1, 1]; entries are stored unit-normalized so the inner product is
// the cosine.
type Result struct {
	EntryID core.EntryID
	Score   float32
}

// Index is a flat inner-product index over vocabulary entry embeddings.
// It is immutable once built: Add during construction, then share freely
// across goroutines for Search.
type Index struct {
	dim     int
	ids     []core.EntryID
	vectors []float32 // row-major, len = dim * len(ids)
}

// NewIndex creates an empty index for vectors of the given dimension.
func NewIndex(dim int) (*Index, error) {
	if dim < 1 {
		return nil, fmt.Errorf("%w: dimension %d", ErrDimensionMismatch, dim)
	}
	return &Index{dim: dim}, nil
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int {
	return len(idx.ids)
}

// Dim returns the vector dimensionality.
func (idx *Index) Dim() int {
	return idx.dim
}

// Add appends an entry vector. The vector is normalized to unit length
// before storage.
func (idx *Index) Add(id core.EntryID, vector []float32) error {
	if len(vector) != idx.dim {
		return fmt.Errorf("%w: got %d, index has %d", ErrDimensionMismatch, len(vector), idx.dim)
	}
	idx.ids = append(idx.ids, id)
	idx.vectors = append(idx.vectors, NormalizeVector(vector)...)
	return nil
}

// Search returns up to topK entries with similarity at least minScore,
// ordered by descending score. Ties break on entry id so results are
// deterministic.
func (idx *Index) Search(query []float32, topK int, minScore float32) ([]Result, error) {
	if len(query) != idx.dim {
		return nil, fmt.Errorf("%w: query has %d, index has %d", ErrDimensionMismatch, len(query), idx.dim)
	}

	normalized := NormalizeVector(query)

	var results []Result
	for i, id := range idx.ids {
		row := idx.vectors[i*idx.dim : (i+1)*idx.dim]
		score := dot(normalized, row)
		if score >= minScore {
			results = append(results, Result{EntryID: id, Score: score})
		}
	}

	slices.SortFunc(results, func(a, b Result) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		if a.EntryID < b.EntryID {
			return -1
		}
		if a.EntryID > b.EntryID {
			return 1
		}
		return 0
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Save writes the index to path atomically: the artifact is written to a
// temp file in the same directory and renamed into place, so a reader
// never observes a half-written index.
func (idx *Index) Save(path string) error {
	size := len(artifactMagic) +
		varint.PositiveInt.Size(idx.dim) +
		varint.PositiveInt.Size(len(idx.ids))
	for _, id := range idx.ids {
		size += varint.Uint64.Size(uint64(id))
	}
	size += len(idx.vectors) * raw.Float32.Size(0)

	buf := make([]byte, size)
	n := copy(buf, artifactMagic)
	n += varint.PositiveInt.Marshal(idx.dim, buf[n:])
	n += varint.PositiveInt.Marshal(len(idx.ids), buf[n:])
	for _, id := range idx.ids {
		n += varint.Uint64.Marshal(uint64(id), buf[n:])
	}
	for _, v := range idx.vectors {
		n += raw.Float32.Marshal(v, buf[n:])
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".index-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// LoadIndex reads a persisted index from path. Returns ErrUnavailable
// when no artifact exists at the path.
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no index at %s", ErrUnavailable, path)
		}
		return nil, err
	}

	if !bytes.HasPrefix(data, artifactMagic) {
		return nil, fmt.Errorf("%w: bad magic", ErrCorruptArtifact)
	}
	off := len(artifactMagic)

	dim, n, err := varint.PositiveInt.Unmarshal(data[off:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArtifact, err)
	}
	off += n

	count, n, err := varint.PositiveInt.Unmarshal(data[off:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArtifact, err)
	}
	off += n

	if dim < 1 || count < 0 {
		return nil, fmt.Errorf("%w: dim %d count %d", ErrCorruptArtifact, dim, count)
	}

	idx := &Index{
		dim:     dim,
		ids:     make([]core.EntryID, count),
		vectors: make([]float32, 0, dim*count),
	}
	for i := 0; i < count; i++ {
		id, n, err := varint.Uint64.Unmarshal(data[off:])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptArtifact, err)
		}
		idx.ids[i] = core.EntryID(id)
		off += n
	}
	for i := 0; i < dim*count; i++ {
		v, n, err := raw.Float32.Unmarshal(data[off:])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptArtifact, err)
		}
		idx.vectors = append(idx.vectors, v)
		off += n
	}
	return idx, nil
}
