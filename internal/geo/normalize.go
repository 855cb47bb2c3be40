// Package geo provides the in-memory geographic name index used to validate
// Atlas moves. The index is built once at startup from the corpus store and is
// read-only afterwards, so concurrent lookups from any number of sessions are
// safe without locking.
package geo

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes characters and drops combining marks, turning e.g.
// "São Tomé" into "Sao Tome". Equivalent to the unidecode step used when the
// corpus was seeded, so lookups and seed data agree on spelling.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize folds a raw place name to its comparison form: diacritics
// stripped, lower-cased, and every non-letter character removed. Two raw
// strings that normalize identically are the same name.
func Normalize(raw string) string {
	folded, _, err := transform.String(stripMarks, raw)
	if err != nil {
		folded = raw
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FirstLetter returns the leading letter of the normalized form of name, or 0
// if the name normalizes to nothing.
func FirstLetter(name string) rune {
	n := Normalize(name)
	if n == "" {
		return 0
	}
	return []rune(n)[0]
}

// TerminalLetter returns the last letter of the normalized form of name, used
// to compute the next required letter. Trailing punctuation and whitespace
// never count because normalization removes them.
func TerminalLetter(name string) rune {
	n := Normalize(name)
	if n == "" {
		return 0
	}
	rs := []rune(n)
	return rs[len(rs)-1]
}
