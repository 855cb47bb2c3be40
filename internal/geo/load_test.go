package geo

import (
	"strings"
	"testing"
)

func TestParseNames(t *testing.T) {
	input := strings.Join([]string{
		"# comment",
		"",
		"Delhi",
		"1261481\tNew Delhi\tNew Delhi\tND",
		"São Paulo\textra column ignored",
		"   ",
	}, "\n")

	names, err := ParseNames(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseNames: %v", err)
	}
	want := []string{"Delhi", "New Delhi", "São Paulo"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
