package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/shlex"

	"github.com/bamsammich/twins/internal/dupes"
)

// DefaultDeleteCommand is the command prefix printed in Command mode.
const DefaultDeleteCommand = "rm -f --"

// ErrBadCommand is returned for a delete command that splits into no words.
var ErrBadCommand = errors.New("bad delete command")

// ParseCommand splits a delete command into words with shell quoting
// rules. Empty input yields DefaultDeleteCommand.
func ParseCommand(cmd string) ([]string, error) {
	if strings.TrimSpace(cmd) == "" {
		cmd = DefaultDeleteCommand
	}
	words, err := shlex.Split(cmd)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrBadCommand, cmd, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("%w %q: no words", ErrBadCommand, cmd)
	}
	return words, nil
}

// writeCommands prints one line per original: the delete command
// followed by each of its copies.
func writeCommands(w io.Writer, cmd string, g *dupes.Graph) error {
	words, err := ParseCommand(cmd)
	if err != nil {
		return err
	}
	prefix := make([]string, len(words))
	for i, word := range words {
		prefix[i] = quoteWord(word)
	}
	head := strings.Join(prefix, " ")

	bw := bufio.NewWriter(w)
	for _, grp := range g.Groups() {
		bw.WriteString(head)
		for _, c := range grp.Copies {
			bw.WriteByte(' ')
			bw.WriteString(quote(c))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// quote single-quotes s for a POSIX shell. An embedded quote closes the
// string, adds an escaped quote and reopens it.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// quoteWord quotes s only when the shell would otherwise alter it.
func quoteWord(s string) string {
	if s == "" {
		return "''"
	}
	for _, r := range s {
		if !isSafe(r) {
			return quote(s)
		}
	}
	return s
}

func isSafe(r rune) bool {
	switch {
	case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
		return true
	}
	return strings.ContainsRune("@%+=:,./-_", r)
}
