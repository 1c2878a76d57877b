package report

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/bamsammich/twins/internal/dupes"
)

// writeShow prints each original on its own line followed by its copies
// indented by two spaces, with a blank line between groups.
func writeShow(w io.Writer, g *dupes.Graph) error {
	bw := bufio.NewWriter(w)
	for i, grp := range g.Groups() {
		if i > 0 {
			bw.WriteByte('\n')
		}
		bw.WriteString(grp.Original)
		bw.WriteByte('\n')
		for _, c := range grp.Copies {
			bw.WriteString("  ")
			bw.WriteString(c)
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}

func writeJSON(w io.Writer, g *dupes.Graph) error {
	for _, p := range invalidUTF8(g) {
		slog.Warn("path is not valid UTF-8, JSON output replaces the bad bytes with U+FFFD", "path", p)
	}
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// invalidUTF8 returns every path in g that JSON cannot represent exactly.
func invalidUTF8(g *dupes.Graph) []string {
	var bad []string
	for _, grp := range g.Groups() {
		if !utf8.ValidString(grp.Original) {
			bad = append(bad, grp.Original)
		}
		for _, c := range grp.Copies {
			if !utf8.ValidString(c) {
				bad = append(bad, c)
			}
		}
	}
	return bad
}
