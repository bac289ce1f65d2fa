// Package tokenizer provides text tokenisation for the index builder. It
// lower-cases input and splits it into maximal runs of word characters
// (Unicode letters, digits, and underscore). There is no stemming and no
// stop-word removal: every extracted word becomes an index term.
package tokenizer

import (
	"strings"
	"unicode"
)

// Tokenize breaks text into lower-cased terms. Punctuation and whitespace
// act purely as separators. Empty or separator-only input yields an empty
// slice.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

// NormalizeTerm reduces a raw query string to a single index term: the
// first token of its tokenisation, or "" when the input contains no word
// characters.
func NormalizeTerm(raw string) string {
	tokens := Tokenize(raw)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}
