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

package vocab

import (
	"github.com/helixion/conceptmap/core"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MarshalConceptID serializes a ConceptID to bytes.
func MarshalConceptID(id core.ConceptID) []byte {
	buf := make([]byte, varint.Int64.Size(int64(id)))
	varint.Int64.Marshal(int64(id), buf)
	return buf
}

// UnmarshalConceptID deserializes a ConceptID from bytes.
func UnmarshalConceptID(data []byte) (core.ConceptID, error) {
	v, _, err := varint.Int64.Unmarshal(data)
	return core.ConceptID(v), err
}

// MarshalInt64 serializes a count value to bytes.
func MarshalInt64(v int64) []byte {
	buf := make([]byte, varint.Int64.Size(v))
	varint.Int64.Marshal(v, buf)
	return buf
}

// UnmarshalInt64 deserializes a count value from bytes.
func UnmarshalInt64(data []byte) (int64, error) {
	v, _, err := varint.Int64.Unmarshal(data)
	return v, err
}

// MarshalConcept serializes a Concept to bytes.
func MarshalConcept(c *core.Concept) []byte {
	size := varint.Int64.Size(int64(c.ID)) +
		ord.String.Size(c.Name) +
		ord.String.Size(c.Domain) +
		ord.String.Size(c.Vocabulary) +
		ord.String.Size(c.Class) +
		ord.String.Size(string(c.Standard)) +
		ord.String.Size(c.Code) +
		ord.String.Size(c.InvalidReason)
	buf := make([]byte, size)
	n := varint.Int64.Marshal(int64(c.ID), buf)
	n += ord.String.Marshal(c.Name, buf[n:])
	n += ord.String.Marshal(c.Domain, buf[n:])
	n += ord.String.Marshal(c.Vocabulary, buf[n:])
	n += ord.String.Marshal(c.Class, buf[n:])
	n += ord.String.Marshal(string(c.Standard), buf[n:])
	n += ord.String.Marshal(c.Code, buf[n:])
	ord.String.Marshal(c.InvalidReason, buf[n:])
	return buf
}

// UnmarshalConcept deserializes a Concept from bytes.
func UnmarshalConcept(data []byte) (*core.Concept, error) {
	var (
		c   core.Concept
		n   int
		off int
		err error
	)
	id, n, err := varint.Int64.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	c.ID = core.ConceptID(id)
	off = n

	for _, field := range []*string{&c.Name, &c.Domain, &c.Vocabulary, &c.Class} {
		*field, n, err = ord.String.Unmarshal(data[off:])
		if err != nil {
			return nil, err
		}
		off += n
	}

	standard, n, err := ord.String.Unmarshal(data[off:])
	if err != nil {
		return nil, err
	}
	c.Standard = core.StandardFlag(standard)
	off += n

	for _, field := range []*string{&c.Code, &c.InvalidReason} {
		*field, n, err = ord.String.Unmarshal(data[off:])
		if err != nil {
			return nil, err
		}
		off += n
	}
	return &c, nil
}

// MarshalSearchEntry serializes a SearchEntry to bytes.
func MarshalSearchEntry(e *core.SearchEntry) []byte {
	size := varint.Uint64.Size(uint64(e.ID)) +
		varint.Int64.Size(int64(e.ConceptID)) +
		ord.String.Size(e.Text) +
		ord.String.Size(e.NormalizedText) +
		ord.String.Size(string(e.Origin)) +
		ord.String.Size(e.ConceptName) +
		ord.String.Size(e.Domain) +
		ord.String.Size(e.Vocabulary) +
		ord.String.Size(e.Class) +
		ord.String.Size(string(e.Standard)) +
		ord.String.Size(e.Code)
	buf := make([]byte, size)
	n := varint.Uint64.Marshal(uint64(e.ID), buf)
	n += varint.Int64.Marshal(int64(e.ConceptID), buf[n:])
	n += ord.String.Marshal(e.Text, buf[n:])
	n += ord.String.Marshal(e.NormalizedText, buf[n:])
	n += ord.String.Marshal(string(e.Origin), buf[n:])
	n += ord.String.Marshal(e.ConceptName, buf[n:])
	n += ord.String.Marshal(e.Domain, buf[n:])
	n += ord.String.Marshal(e.Vocabulary, buf[n:])
	n += ord.String.Marshal(e.Class, buf[n:])
	n += ord.String.Marshal(string(e.Standard), buf[n:])
	ord.String.Marshal(e.Code, buf[n:])
	return buf
}

// UnmarshalSearchEntry deserializes a SearchEntry from bytes.
func UnmarshalSearchEntry(data []byte) (*core.SearchEntry, error) {
	var (
		e   core.SearchEntry
		n   int
		off int
		err error
	)
	id, n, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	e.ID = core.EntryID(id)
	off = n

	conceptID, n, err := varint.Int64.Unmarshal(data[off:])
	if err != nil {
		return nil, err
	}
	e.ConceptID = core.ConceptID(conceptID)
	off += n

	for _, field := range []*string{&e.Text, &e.NormalizedText} {
		*field, n, err = ord.String.Unmarshal(data[off:])
		if err != nil {
			return nil, err
		}
		off += n
	}

	origin, n, err := ord.String.Unmarshal(data[off:])
	if err != nil {
		return nil, err
	}
	e.Origin = core.TextOrigin(origin)
	off += n

	for _, field := range []*string{&e.ConceptName, &e.Domain, &e.Vocabulary, &e.Class} {
		*field, n, err = ord.String.Unmarshal(data[off:])
		if err != nil {
			return nil, err
		}
		off += n
	}

	standard, n, err := ord.String.Unmarshal(data[off:])
	if err != nil {
		return nil, err
	}
	e.Standard = core.StandardFlag(standard)
	off += n

	e.Code, _, err = ord.String.Unmarshal(data[off:])
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// MarshalMapsToEdge serializes a MapsToEdge to bytes.
func MarshalMapsToEdge(edge *core.MapsToEdge) []byte {
	size := varint.Int64.Size(int64(edge.SourceID)) +
		varint.Int64.Size(int64(edge.StandardID)) +
		ord.String.Size(edge.StandardName) +
		ord.String.Size(edge.StandardDomain) +
		ord.String.Size(edge.StandardVocab)
	buf := make([]byte, size)
	n := varint.Int64.Marshal(int64(edge.SourceID), buf)
	n += varint.Int64.Marshal(int64(edge.StandardID), buf[n:])
	n += ord.String.Marshal(edge.StandardName, buf[n:])
	n += ord.String.Marshal(edge.StandardDomain, buf[n:])
	ord.String.Marshal(edge.StandardVocab, buf[n:])
	return buf
}

// UnmarshalMapsToEdge deserializes a MapsToEdge from bytes.
func UnmarshalMapsToEdge(data []byte) (*core.MapsToEdge, error) {
	var (
		edge core.MapsToEdge
		n    int
		off  int
		err  error
	)
	source, n, err := varint.Int64.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	edge.SourceID = core.ConceptID(source)
	off = n

	standard, n, err := varint.Int64.Unmarshal(data[off:])
	if err != nil {
		return nil, err
	}
	edge.StandardID = core.ConceptID(standard)
	off += n

	for _, field := range []*string{&edge.StandardName, &edge.StandardDomain, &edge.StandardVocab} {
		*field, n, err = ord.String.Unmarshal(data[off:])
		if err != nil {
			return nil, err
		}
		off += n
	}
	return &edge, nil
}
