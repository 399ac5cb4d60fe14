package badger

import (
	"encoding/binary"

	"github.com/helixion/conceptmap/core"
	"github.com/go-crypt/x/blake2b"
)

// Key prefixes for different data types
const (
	conceptPrefix    = "voccon"
	entryPrefix      = "vocent"
	exactIndexPrefix = "vocexa"
	edgePrefix       = "vocmap"
	metaPrefix       = "vocmeta"

	builtMarkerKey  = metaPrefix + ":built"
	statConceptsKey = metaPrefix + ":concepts"
	statSynonymsKey = metaPrefix + ":synonyms"
	statEntriesKey  = metaPrefix + ":entries"
	statEdgesKey    = metaPrefix + ":edges"
)

// makeConceptKey generates a key for a concept by ID.
func makeConceptKey(id core.ConceptID) []byte {
	prefix := conceptPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// BigEndian so lexicographic sort matches numeric order
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeEntryKey generates a key for a search entry by ID.
func makeEntryKey(id core.EntryID) []byte {
	prefix := entryPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeExactIndexKey generates a composite key for the normalized-text index.
// Format: prefix:texthash:entryID. Multiple entries can share the same
// normalized text, and distinct texts can collide on the hash, so readers
// verify the stored text after fetching the entry.
func makeExactIndexKey(normalizedText string, id core.EntryID) []byte {
	prefix := exactIndexPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	offset += copy(buf[offset:], normalizedTextHash(normalizedText))
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialExactIndexKey generates the iteration prefix for all entries
// sharing a normalized text hash.
func makePartialExactIndexKey(normalizedText string) []byte {
	prefix := exactIndexPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	copy(buf[offset:], normalizedTextHash(normalizedText))
	return buf
}

// makeEdgeKey generates a key for a Maps-To edge by source concept ID.
func makeEdgeKey(source core.ConceptID) []byte {
	prefix := edgePrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(source))
	return buf
}

// entryIDFromExactIndexKey extracts the entry ID from an index key tail.
func entryIDFromExactIndexKey(key []byte) core.EntryID {
	return core.EntryID(binary.BigEndian.Uint64(key[len(key)-8:]))
}

// normalizedTextHash returns the 8-byte digest used in exact index keys.
func normalizedTextHash(normalizedText string) []byte {
	h, _ := blake2b.New(8, nil)
	h.Write([]byte(normalizedText))
	return h.Sum(nil)
}
