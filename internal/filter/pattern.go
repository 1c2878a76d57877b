package filter

import (
	"errors"
	"regexp"
	"strings"
)

// glob is one compiled rsync-style pattern.
type glob struct {
	re      *regexp.Regexp
	dirOnly bool
}

func compileGlob(pattern string) (*glob, error) {
	if strings.Trim(pattern, "/") == "" {
		return nil, errors.New("empty pattern")
	}
	g := &glob{}

	p := pattern
	if strings.HasSuffix(p, "/") {
		g.dirOnly = true
		p = strings.TrimSuffix(p, "/")
	}

	// Any slash left in the pattern ties it to the root; otherwise it
	// may match the final path components at any depth.
	anchored := strings.Contains(p, "/")
	p = strings.TrimPrefix(p, "/")

	expr, err := translate(p)
	if err != nil {
		return nil, err
	}
	if anchored {
		expr = "^" + expr + "$"
	} else {
		expr = "(^|/)" + expr + "$"
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	g.re = re
	return g, nil
}

func (g *glob) match(relPath string, isDir bool) bool {
	if g.dirOnly && !isDir {
		return false
	}
	return g.re.MatchString(relPath)
}

// translate rewrites glob syntax as a regular expression body.
func translate(p string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(p); i++ {
		switch c := p[i]; c {
		case '*':
			if !strings.HasPrefix(p[i:], "**") {
				b.WriteString("[^/]*")
				continue
			}
			i++
			if strings.HasPrefix(p[i+1:], "/") {
				// "**/" also matches zero directories.
				b.WriteString("(.*/)?")
				i++
				continue
			}
			b.WriteString(".*")
		case '?':
			b.WriteString("[^/]")
		case '[':
			end := classEnd(p, i)
			if end < 0 {
				return "", errors.New("unterminated character class")
			}
			class := p[i+1 : end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteString("[" + strings.ReplaceAll(class, `\`, `\\`) + "]")
			i = end
		case '\\':
			if i+1 < len(p) {
				i++
			}
			b.WriteString(regexp.QuoteMeta(p[i : i+1]))
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return b.String(), nil
}

// classEnd returns the index of the ']' closing the class opened at
// p[start], or -1. A ']' right after "[" or "[!" is literal.
func classEnd(p string, start int) int {
	j := start + 1
	if j < len(p) && p[j] == '!' {
		j++
	}
	if j < len(p) && p[j] == ']' {
		j++
	}
	for ; j < len(p); j++ {
		if p[j] == ']' {
			return j
		}
	}
	return -1
}
