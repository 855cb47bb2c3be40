package geo

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseNames reads place names from a line-oriented source. Blank lines and
// "#" comments are skipped. Tab-separated lines follow the GeoNames layout
// when the first column is a numeric id (the name is the second column);
// otherwise the first column is the name.
func ParseNames(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		name := fields[0]
		if len(fields) >= 2 && isDigits(fields[0]) {
			name = fields[1]
		}
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("geo: scan names: %w", err)
	}
	return names, nil
}

// LoadNamesFile reads place names from the file at path via ParseNames.
func LoadNamesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geo: open corpus file: %w", err)
	}
	defer f.Close()
	return ParseNames(f)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
