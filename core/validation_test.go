package core

import (
	"errors"
	"testing"
)

func TestValidateConcept(t *testing.T) {
	tests := []struct {
		name    string
		concept *Concept
		wantErr error
	}{
		{
			name:    "valid standard concept",
			concept: &Concept{ID: 312327, Name: "Myocardial infarction", Standard: StandardFlagStandard},
			wantErr: nil,
		},
		{
			name:    "valid non-standard concept",
			concept: &Concept{ID: 1, Name: "Heart attack NOS", Standard: StandardFlagNone},
			wantErr: nil,
		},
		{
			name:    "nil concept",
			concept: nil,
			wantErr: ErrInvalidConcept,
		},
		{
			name:    "zero id",
			concept: &Concept{Name: "x"},
			wantErr: ErrInvalidConcept,
		},
		{
			name:    "empty name",
			concept: &Concept{ID: 1},
			wantErr: ErrEmptyConceptName,
		},
		{
			name:    "unknown standard flag",
			concept: &Concept{ID: 1, Name: "x", Standard: StandardFlag("X")},
			wantErr: ErrInvalidStandardFlag,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConcept(tt.concept)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateConcept() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateConcept() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSynonym(t *testing.T) {
	if err := ValidateSynonym(&Synonym{ConceptID: 312327, Text: "Heart attack"}); err != nil {
		t.Errorf("ValidateSynonym() error = %v, want nil", err)
	}
	if err := ValidateSynonym(&Synonym{Text: "orphan"}); !errors.Is(err, ErrInvalidSynonym) {
		t.Errorf("ValidateSynonym() error = %v, want ErrInvalidSynonym", err)
	}
	if err := ValidateSynonym(&Synonym{ConceptID: 1}); !errors.Is(err, ErrInvalidSynonym) {
		t.Errorf("ValidateSynonym() error = %v, want ErrInvalidSynonym", err)
	}
	if err := ValidateSynonym(nil); !errors.Is(err, ErrInvalidSynonym) {
		t.Errorf("ValidateSynonym(nil) error = %v, want ErrInvalidSynonym", err)
	}
}

func TestValidateMapsToEdge(t *testing.T) {
	edge := &MapsToEdge{
		SourceID:     45576876,
		StandardID:   312327,
		StandardName: "Myocardial infarction",
	}
	if err := ValidateMapsToEdge(edge); err != nil {
		t.Errorf("ValidateMapsToEdge() error = %v, want nil", err)
	}

	if err := ValidateMapsToEdge(nil); !errors.Is(err, ErrInvalidMapsToEdge) {
		t.Errorf("ValidateMapsToEdge(nil) error = %v, want ErrInvalidMapsToEdge", err)
	}

	bad := &MapsToEdge{SourceID: 1, StandardID: 2}
	if err := ValidateMapsToEdge(bad); !errors.Is(err, ErrInvalidMapsToEdge) {
		t.Errorf("ValidateMapsToEdge() error = %v, want ErrInvalidMapsToEdge", err)
	}
}
