package normalize

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "lowercase and punctuation",
			in:   "Myocardial Infarction (Heart Attack)",
			want: "myocardial infarction heart attack",
		},
		{
			name: "diacritics stripped",
			in:   "Sjögren's syndrome",
			want: "sjogren s syndrome",
		},
		{
			name: "numeric tokens preserved",
			in:   "Type 2 Diabetes",
			want: "type 2 diabetes",
		},
		{
			name: "whitespace collapsed",
			in:   "  chronic \t kidney\n disease ",
			want: "chronic kidney disease",
		},
		{
			name: "comma reordering form",
			in:   "Infarction, myocardial",
			want: "infarction myocardial",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
		{
			name: "only punctuation",
			in:   "...!?",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Myocardial Infarction (Heart Attack)",
		"Sjögren's syndrome",
		"Type 2 Diabetes",
		"ACUTE KIDNEY INJURY",
		"",
		"already normalized text",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("acute myocardial infarction")
	want := []string{"acute", "myocardial", "infarction"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}

	if got := Tokenize(""); len(got) != 0 {
		t.Errorf("Tokenize(\"\") = %v, want empty", got)
	}
}

func TestTokenSet(t *testing.T) {
	set := TokenSet("Heart attack, heart failure")
	want := map[string]bool{"heart": true, "attack": true, "failure": true}
	if !reflect.DeepEqual(set, want) {
		t.Errorf("TokenSet() = %v, want %v", set, want)
	}
}

func TestTokenOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "heart attack", b: "heart attack", want: 1.0},
		{name: "disjoint", a: "heart attack", b: "knee surgery", want: 0.0},
		{name: "one shared of four", a: "heart attack", b: "myocardial infarction heart", want: 0.25},
		{name: "empty query", a: "", b: "heart attack", want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TokenOverlap(tt.a, tt.b); got != tt.want {
				t.Errorf("TokenOverlap(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestExpandAbbreviations(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "whole query is an abbreviation",
			in:   "MI",
			want: "myocardial infarction",
		},
		{
			name: "token-level expansion",
			in:   "acute mi",
			want: "acute myocardial infarction",
		},
		{
			name: "no abbreviations",
			in:   "knee replacement",
			want: "knee replacement",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandAbbreviations(tt.in); got != tt.want {
				t.Errorf("ExpandAbbreviations(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestVariants(t *testing.T) {
	variants := Variants("CHF")
	if len(variants) != 2 {
		t.Fatalf("Variants() = %v, want 2 variants", variants)
	}
	if variants[0] != "chf" {
		t.Errorf("first variant must be the canonical normalized form, got %q", variants[0])
	}
	if variants[1] != "congestive heart failure" {
		t.Errorf("second variant = %q, want expanded form", variants[1])
	}

	// Expansion must never replace the canonical form.
	if Normalize("CHF") != "chf" {
		t.Errorf("Normalize must not expand abbreviations")
	}

	plain := Variants("knee replacement")
	if len(plain) != 1 {
		t.Errorf("Variants() for non-abbreviated query = %v, want single variant", plain)
	}
}
