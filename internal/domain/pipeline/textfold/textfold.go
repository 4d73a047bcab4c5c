// Package textfold lowercases and strips diacritics so that OCR output,
// alias keys and canonical names compare on equal footing. OCR frequently
// drops or mangles accents ("emissão" vs "emissao"), so every fuzzy or
// substring comparison in the pipeline goes through Fold first.
package textfold

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold returns s lowercased with combining marks removed.
func Fold(s string) string {
	folded, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}

// Contains reports whether haystack contains needle after folding both.
func Contains(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}
