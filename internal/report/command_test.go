package report

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/twins/internal/dupes"
)

func TestWriteCommandDefault(t *testing.T) {
	var buf bytes.Buffer
	_, err := Write(context.Background(), Options{Out: &buf, Mode: Command}, sampleGraph(t))
	require.NoError(t, err)

	want := `rm -f -- '/backup/a.jpg' '/old/a copy.jpg'` + "\n" +
		`rm -f -- '/docs/it'\''s (1).txt'` + "\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCommandCustom(t *testing.T) {
	tests := []struct {
		cmd  string
		want string
	}{
		{"trash-put --", "trash-put -- '/x/b'\n"},
		{`"my rm" -v`, "'my rm' -v '/x/b'\n"},
		{"  ", "rm -f -- '/x/b'\n"},
		{"echo $HOME", "echo '$HOME' '/x/b'\n"},
	}
	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			g := dupes.NewGraph()
			require.NoError(t, g.Add("/x/a", "/x/b", 1))

			var buf bytes.Buffer
			_, err := Write(context.Background(), Options{Out: &buf, Mode: Command, DeleteCommand: tt.cmd}, g)
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestParseCommand(t *testing.T) {
	words, err := ParseCommand("")
	require.NoError(t, err)
	assert.Equal(t, []string{"rm", "-f", "--"}, words)

	words, err = ParseCommand(`gio trash 'a b'`)
	require.NoError(t, err)
	assert.Equal(t, []string{"gio", "trash", "a b"}, words)

	_, err = ParseCommand(`rm "unterminated`)
	assert.ErrorIs(t, err, ErrBadCommand)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `'plain'`, quote("plain"))
	assert.Equal(t, `''`, quote(""))
	assert.Equal(t, `'a'\''b'`, quote("a'b"))
	assert.Equal(t, `'$(rm -rf /)'`, quote("$(rm -rf /)"))
	assert.Equal(t, "'line\nbreak'", quote("line\nbreak"))

	assert.Equal(t, "-f", quoteWord("-f"))
	assert.Equal(t, "''", quoteWord(""))
	assert.Equal(t, "'a b'", quoteWord("a b"))
}
