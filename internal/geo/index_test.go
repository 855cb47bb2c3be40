package geo

import (
	"errors"
	"testing"
)

func buildTestIndex(t *testing.T, names ...string) *Index {
	t.Helper()
	idx, err := Build(names)
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	return idx
}

func TestBuildEmptyCorpus(t *testing.T) {
	if _, err := Build(nil); !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("err = %v, want ErrEmptyCorpus", err)
	}
	// Names that normalize to nothing do not count either.
	if _, err := Build([]string{"123", "..."}); !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("err = %v, want ErrEmptyCorpus", err)
	}
}

func TestBuildDeduplicatesByNormalizedForm(t *testing.T) {
	idx := buildTestIndex(t, "Delhi", "DELHI", "delhi ", "Agra")
	if idx.Len() != 2 {
		t.Fatalf("len = %d, want 2", idx.Len())
	}
	display, ok := idx.Display("delhi")
	if !ok || display != "Delhi" {
		t.Fatalf("display = %q ok=%v, want first spelling Delhi", display, ok)
	}
}

func TestIsValidName(t *testing.T) {
	idx := buildTestIndex(t, "India", "Delhi", "Agra")

	if !idx.IsValidName("india", 0) {
		t.Fatalf("unconstrained lookup should accept india")
	}
	if !idx.IsValidName("Agra", 'A') {
		t.Fatalf("required letter should be case-insensitive")
	}
	if !idx.IsValidName("  agra ", 'a') {
		t.Fatalf("candidate should be normalized before lookup")
	}
	if idx.IsValidName("Delhi", 'a') {
		t.Fatalf("wrong starting letter should be rejected")
	}
	if idx.IsValidName("Atlantis", 0) {
		t.Fatalf("unknown name should be rejected")
	}
	if idx.IsValidName("", 0) {
		t.Fatalf("empty candidate should be rejected")
	}
}

func TestNamesByLetter(t *testing.T) {
	idx := buildTestIndex(t, "Agra", "Ahmedabad", "Delhi", "Indore")

	as := idx.NamesByLetter('A')
	if len(as) != 2 || as[0] != "agra" || as[1] != "ahmedabad" {
		t.Fatalf("names by 'A' = %v, want sorted [agra ahmedabad]", as)
	}
	if idx.CountByLetter('d') != 1 {
		t.Fatalf("count by 'd' = %d, want 1", idx.CountByLetter('d'))
	}
	if idx.CountByLetter('z') != 0 {
		t.Fatalf("count by 'z' = %d, want 0", idx.CountByLetter('z'))
	}
}

func TestHasContinuation(t *testing.T) {
	idx := buildTestIndex(t, "Agra", "Ahmedabad", "Delhi")

	used := map[string]bool{"agra": true}
	if !idx.HasContinuation('a', func(n string) bool { return used[n] }) {
		t.Fatalf("ahmedabad is still unused, expected continuation")
	}
	used["ahmedabad"] = true
	if idx.HasContinuation('a', func(n string) bool { return used[n] }) {
		t.Fatalf("all 'a' names used, expected no continuation")
	}
	if idx.HasContinuation('z', nil) {
		t.Fatalf("letter with no names should have no continuation")
	}
}
