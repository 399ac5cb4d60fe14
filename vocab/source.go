package vocab

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/helixion/conceptmap/core"
)

// Source names the tab-separated vocabulary dump files to load.
// Concepts is required; Synonyms and Relationships may be empty, in
// which case the corresponding data is skipped.
type Source struct {
	Concepts      string
	Synonyms      string
	Relationships string
}

// Validate checks that the source names a readable concepts file and
// that any optional files named actually exist.
func (s Source) Validate() error {
	if s.Concepts == "" {
		return fmt.Errorf("%w: concepts file not set", ErrMissingSource)
	}
	for _, path := range []string{s.Concepts, s.Synonyms, s.Relationships} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: %s", ErrMissingSource, path)
		}
	}
	return nil
}

// synonymRow is one parsed synonym record.
type synonymRow struct {
	ConceptID core.ConceptID
	Name      string
}

// relationshipRow is one parsed concept relationship record.
type relationshipRow struct {
	SourceID       core.ConceptID
	TargetID       core.ConceptID
	RelationshipID string
	InvalidReason  string
}

// tsvReader wraps a tab-separated file with header-name column access.
type tsvReader struct {
	path    string
	file    *os.File
	reader  *csv.Reader
	columns map[string]int
	line    int
}

func openTSV(path string, required ...string) (*tsvReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingSource, path)
	}

	reader := csv.NewReader(file)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: %s: cannot read header: %v", ErrMalformedSource, path, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			file.Close()
			return nil, fmt.Errorf("%w: %s: missing column %q", ErrMalformedSource, path, name)
		}
	}

	return &tsvReader{path: path, file: file, reader: reader, columns: columns, line: 1}, nil
}

// next reads the next data row, returning io.EOF when exhausted.
func (t *tsvReader) next() ([]string, error) {
	row, err := t.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s:%d: %v", ErrMalformedSource, t.path, t.line+1, err)
	}
	t.line++
	return row, nil
}

// field returns the named column's value for a row, empty when the row
// is short or the column is absent. OMOP dumps use empty strings for
// NULL; some exports use a literal backslash-N.
func (t *tsvReader) field(row []string, name string) string {
	idx, ok := t.columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	v := strings.TrimSpace(row[idx])
	if v == `\N` {
		return ""
	}
	return v
}

func (t *tsvReader) intField(row []string, name string) (int64, error) {
	v := t.field(row, name)
	if v == "" {
		return 0, fmt.Errorf("%w: %s:%d: empty %s", ErrMalformedSource, t.path, t.line, name)
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s:%d: bad %s %q", ErrMalformedSource, t.path, t.line, name, v)
	}
	return id, nil
}

func (t *tsvReader) Close() error {
	return t.file.Close()
}

// readConcepts streams concept rows from a CONCEPT dump.
func readConcepts(path string, fn func(*core.Concept) error) error {
	tsv, err := openTSV(path, "concept_id", "concept_name")
	if err != nil {
		return err
	}
	defer tsv.Close()

	for {
		row, err := tsv.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		id, err := tsv.intField(row, "concept_id")
		if err != nil {
			return err
		}

		concept := &core.Concept{
			ID:            core.ConceptID(id),
			Name:          tsv.field(row, "concept_name"),
			Domain:        tsv.field(row, "domain_id"),
			Vocabulary:    tsv.field(row, "vocabulary_id"),
			Class:         tsv.field(row, "concept_class_id"),
			Standard:      core.StandardFlag(tsv.field(row, "standard_concept")),
			Code:          tsv.field(row, "concept_code"),
			InvalidReason: tsv.field(row, "invalid_reason"),
		}
		if err := fn(concept); err != nil {
			return err
		}
	}
}

// readSynonyms streams synonym rows from a CONCEPT_SYNONYM dump.
func readSynonyms(path string, fn func(synonymRow) error) error {
	tsv, err := openTSV(path, "concept_id", "concept_synonym_name")
	if err != nil {
		return err
	}
	defer tsv.Close()

	for {
		row, err := tsv.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		id, err := tsv.intField(row, "concept_id")
		if err != nil {
			return err
		}
		name := tsv.field(row, "concept_synonym_name")
		if name == "" {
			continue
		}
		if err := fn(synonymRow{ConceptID: core.ConceptID(id), Name: name}); err != nil {
			return err
		}
	}
}

// readRelationships streams rows from a CONCEPT_RELATIONSHIP dump.
func readRelationships(path string, fn func(relationshipRow) error) error {
	tsv, err := openTSV(path, "concept_id_1", "concept_id_2", "relationship_id")
	if err != nil {
		return err
	}
	defer tsv.Close()

	for {
		row, err := tsv.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		source, err := tsv.intField(row, "concept_id_1")
		if err != nil {
			return err
		}
		target, err := tsv.intField(row, "concept_id_2")
		if err != nil {
			return err
		}

		rel := relationshipRow{
			SourceID:       core.ConceptID(source),
			TargetID:       core.ConceptID(target),
			RelationshipID: tsv.field(row, "relationship_id"),
			InvalidReason:  tsv.field(row, "invalid_reason"),
		}
		if err := fn(rel); err != nil {
			return err
		}
	}
}
