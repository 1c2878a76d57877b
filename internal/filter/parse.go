package filter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadFile appends the rules in the filter file at path.
func (c *Chain) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open filter file: %w", err)
	}
	defer f.Close()
	return c.Load(f, path)
}

// Load appends rules read from r, one per line:
//
//	+ PATTERN       include
//	- PATTERN       exclude
//	include PATTERN
//	exclude PATTERN
//	PATTERN         exclude
//
// Blank lines and lines starting with '#' or ';' are ignored. name is
// used in error messages.
func (c *Chain) Load(r io.Reader, name string) error {
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}

		include, pattern := parseRule(line)
		var err error
		if include {
			err = c.Include(pattern)
		} else {
			err = c.Exclude(pattern)
		}
		if err != nil {
			return fmt.Errorf("%s:%d: %w", name, n, err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	return nil
}

var rulePrefixes = []struct {
	prefix  string
	include bool
}{
	{"+ ", true},
	{"- ", false},
	{"include ", true},
	{"exclude ", false},
}

func parseRule(line string) (include bool, pattern string) {
	for _, p := range rulePrefixes {
		if rest, ok := strings.CutPrefix(line, p.prefix); ok {
			return p.include, strings.TrimSpace(rest)
		}
	}
	return false, line
}
