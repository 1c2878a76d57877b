package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobMatch(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		isDir   bool
		want    bool
	}{
		{"*.log", "app.log", false, true},
		{"*.log", "dir/app.log", false, true},
		{"*.log", "app.log.bak", false, false},
		{"*.log", "app.txt", false, false},

		{"**/*.go", "main.go", false, true},
		{"**/*.go", "cmd/twins/main.go", false, true},
		{"**/*.go", "main.txt", false, false},
		{"docs/**", "docs/a/b/c.md", false, true},
		{"docs/**", "src/docs/a.md", false, false},

		{"/root.txt", "root.txt", false, true},
		{"/root.txt", "sub/root.txt", false, false},
		{"sub/dir/*.txt", "sub/dir/file.txt", false, true},
		{"sub/dir/*.txt", "other/sub/dir/file.txt", false, false},
		{"sub/dir/*.txt", "sub/dir/deeper/file.txt", false, false},

		{"build/", "build", true, true},
		{"build/", "sub/build", true, true},
		{"build/", "build", false, false},

		{"file?.txt", "file1.txt", false, true},
		{"file?.txt", "file12.txt", false, false},
		{"file?.txt", "file/.txt", false, false},

		{"[ab].bin", "a.bin", false, true},
		{"[ab].bin", "c.bin", false, false},
		{"[!ab].bin", "c.bin", false, true},
		{"[!ab].bin", "a.bin", false, false},
		{"[]x].bin", "].bin", false, true},

		{`\*.txt`, "*.txt", false, true},
		{`\*.txt`, "a.txt", false, false},
		{"a+b(1).txt", "a+b(1).txt", false, true},
		{"a+b(1).txt", "aab1.txt", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			g, err := compileGlob(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.match(tt.path, tt.isDir))
		})
	}
}

func TestGlobUnterminatedClass(t *testing.T) {
	_, err := compileGlob("file[0-9")
	assert.Error(t, err)
}
