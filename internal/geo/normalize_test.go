package geo

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"Delhi", "delhi"},
		{"  New York  ", "newyork"},
		{"São Tomé", "saotome"},
		{"Port-au-Prince", "portauprince"},
		{"KUALA LUMPUR", "kualalumpur"},
		{"Águeda", "agueda"},
		{"'s-Hertogenbosch", "shertogenbosch"},
		{"123", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.raw); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestNormalizeIdentifiesSameName(t *testing.T) {
	if Normalize("Sao Tome") != Normalize("São Tomé") {
		t.Fatalf("diacritic variants should normalize identically")
	}
	if Normalize("new york") != Normalize("New York") {
		t.Fatalf("case variants should normalize identically")
	}
}

func TestFirstAndTerminalLetter(t *testing.T) {
	if got := FirstLetter("Águeda"); got != 'a' {
		t.Fatalf("FirstLetter = %q, want a", got)
	}
	if got := TerminalLetter("India"); got != 'a' {
		t.Fatalf("TerminalLetter(India) = %q, want a", got)
	}
	if got := TerminalLetter("Chişinău!"); got != 'u' {
		t.Fatalf("TerminalLetter(Chişinău!) = %q, want u", got)
	}
	if got := TerminalLetter("..."); got != 0 {
		t.Fatalf("TerminalLetter(...) = %q, want 0", got)
	}
}
