package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes free text into its matchable form:
// Unicode-decompose, lowercase, strip combining marks, replace every
// non-alphanumeric rune with a space, collapse runs of whitespace, trim.
//
// Normalize is idempotent: applying it to already-normalized text returns
// the text unchanged.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	// Chain is stateful, so build it per call rather than sharing.
	stripper := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	decomposed, _, err := transform.String(stripper, text)
	if err != nil {
		decomposed = text
	}

	var b strings.Builder
	b.Grow(len(decomposed))
	pendingSpace := false
	for _, r := range decomposed {
		r = unicode.ToLower(r)
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
			pendingSpace = false
		} else {
			pendingSpace = true
		}
	}
	return b.String()
}

// Tokenize splits normalized text into an ordered token sequence.
func Tokenize(normalized string) []string {
	return strings.Fields(normalized)
}

// TokenSet returns the deduplicated token set of the text. The input is
// normalized first, so raw text is accepted.
func TokenSet(text string) map[string]bool {
	tokens := Tokenize(Normalize(text))
	set := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		set[token] = true
	}
	return set
}

// TokenOverlap computes the Jaccard similarity between the token sets of
// two texts. Used for cheap prefiltering before fuzzy or semantic matching.
func TokenOverlap(a, b string) float64 {
	setA := TokenSet(a)
	setB := TokenSet(b)

	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for token := range setA {
		if setB[token] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}
