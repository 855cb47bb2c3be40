package geo

import (
	"errors"
	"sort"
)

// ErrEmptyCorpus is returned by Build when no usable names were supplied.
// The process must not serve games without a populated index.
var ErrEmptyCorpus = errors.New("geo: empty corpus")

// Index answers membership and starts-with-letter queries against the full
// geographic corpus. Immutable after Build.
type Index struct {
	names    map[string]string
	byLetter map[rune][]string
}

// Build constructs an index from raw corpus names. Names are deduplicated by
// normalized form; the first display spelling seen wins.
func Build(corpus []string) (*Index, error) {
	idx := &Index{
		names:    make(map[string]string, len(corpus)),
		byLetter: make(map[rune][]string),
	}
	for _, raw := range corpus {
		idx.add(raw)
	}
	if len(idx.names) == 0 {
		return nil, ErrEmptyCorpus
	}
	for letter := range idx.byLetter {
		sort.Strings(idx.byLetter[letter])
	}
	return idx, nil
}

func (idx *Index) add(raw string) {
	n := Normalize(raw)
	if n == "" {
		return
	}
	if _, exists := idx.names[n]; exists {
		return
	}
	idx.names[n] = raw
	first := []rune(n)[0]
	idx.byLetter[first] = append(idx.byLetter[first], n)
}

// Len returns the number of distinct names in the index.
func (idx *Index) Len() int {
	return len(idx.names)
}

// Contains reports whether the normalized name exists in the corpus.
func (idx *Index) Contains(normalized string) bool {
	_, ok := idx.names[normalized]
	return ok
}

// Display returns the canonical display spelling for a normalized name.
func (idx *Index) Display(normalized string) (string, bool) {
	d, ok := idx.names[normalized]
	return d, ok
}

// IsValidName reports whether the candidate exists in the corpus and starts
// with the required letter. A zero required letter means any letter is
// accepted. Session-level reuse is not checked here; used names are
// per-session state owned by the session, never by the shared index.
func (idx *Index) IsValidName(candidate string, required rune) bool {
	n := Normalize(candidate)
	if n == "" {
		return false
	}
	if !idx.Contains(n) {
		return false
	}
	if required == 0 {
		return true
	}
	return []rune(n)[0] == normalizeLetter(required)
}

// NamesByLetter returns the normalized names starting with the given letter,
// sorted. The returned slice is shared and must not be mutated.
func (idx *Index) NamesByLetter(letter rune) []string {
	return idx.byLetter[normalizeLetter(letter)]
}

// CountByLetter returns how many names start with the given letter.
func (idx *Index) CountByLetter(letter rune) int {
	return len(idx.byLetter[normalizeLetter(letter)])
}

// HasContinuation reports whether at least one name starting with the letter
// is not excluded by the used predicate. Sessions use this for dead-letter
// checks against their own used-name sets.
func (idx *Index) HasContinuation(letter rune, used func(string) bool) bool {
	for _, n := range idx.byLetter[normalizeLetter(letter)] {
		if used == nil || !used(n) {
			return true
		}
	}
	return false
}

// normalizeLetter folds a single letter to its comparison form.
func normalizeLetter(letter rune) rune {
	n := Normalize(string(letter))
	if n == "" {
		return letter
	}
	return []rune(n)[0]
}
