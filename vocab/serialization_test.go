package vocab

import (
	"testing"

	"github.com/helixion/conceptmap/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalConceptID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ConceptID
	}{
		{"zero", core.ConceptID(0)},
		{"snomed concept", core.ConceptID(312327)},
		{"large id", core.ConceptID(4329847)},
		{"negative id", core.ConceptID(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalConceptID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalConceptID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalConceptID_Invalid(t *testing.T) {
	_, err := UnmarshalConceptID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalConcept(t *testing.T) {
	tests := []struct {
		name    string
		concept *core.Concept
	}{
		{
			name: "standard condition",
			concept: &core.Concept{
				ID:         312327,
				Name:       "Acute myocardial infarction",
				Domain:     "Condition",
				Vocabulary: "SNOMED",
				Class:      "Clinical Finding",
				Standard:   core.StandardFlagStandard,
				Code:       "57054005",
			},
		},
		{
			name: "invalidated non-standard concept",
			concept: &core.Concept{
				ID:            45766051,
				Name:          "Old myocardial infarction",
				Domain:        "Condition",
				Vocabulary:    "ICD10CM",
				Class:         "4-char billing code",
				Code:          "I25.2",
				InvalidReason: "D",
			},
		},
		{
			name: "unicode concept name",
			concept: &core.Concept{
				ID:         4182210,
				Name:       "Sjögren's syndrome",
				Domain:     "Condition",
				Vocabulary: "SNOMED",
				Standard:   core.StandardFlagStandard,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalConcept(tt.concept)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalConcept(data)
			require.NoError(t, err)
			assert.Equal(t, tt.concept, decoded)
		})
	}
}

func TestUnmarshalConcept_Truncated(t *testing.T) {
	full := MarshalConcept(&core.Concept{
		ID:   312327,
		Name: "Acute myocardial infarction",
	})
	_, err := UnmarshalConcept(full[:len(full)/2])
	assert.Error(t, err)
}

func TestMarshalUnmarshalSearchEntry(t *testing.T) {
	entry := &core.SearchEntry{
		ID:             core.EntryIDFromContent("synonym\x00MI\x00312327"),
		ConceptID:      312327,
		Text:           "MI",
		NormalizedText: "mi",
		Origin:         core.TextOriginSynonym,
		ConceptName:    "Acute myocardial infarction",
		Domain:         "Condition",
		Vocabulary:     "SNOMED",
		Class:          "Clinical Finding",
		Standard:       core.StandardFlagStandard,
		Code:           "57054005",
	}

	data := MarshalSearchEntry(entry)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalSearchEntry(data)
	require.NoError(t, err)
	assert.Equal(t, entry, decoded)
}

func TestMarshalUnmarshalMapsToEdge(t *testing.T) {
	edge := &core.MapsToEdge{
		SourceID:       45766051,
		StandardID:     312327,
		StandardName:   "Acute myocardial infarction",
		StandardDomain: "Condition",
		StandardVocab:  "SNOMED",
	}

	data := MarshalMapsToEdge(edge)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalMapsToEdge(data)
	require.NoError(t, err)
	assert.Equal(t, edge, decoded)
}
