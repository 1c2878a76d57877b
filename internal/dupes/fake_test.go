package dupes

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"

	"github.com/bamsammich/twins/internal/digest"
	"github.com/bamsammich/twins/internal/sample"
)

// memReader serves file contents from memory and counts every access.
type memReader struct {
	files   map[string][]byte
	broken  map[string]bool // paths whose reads fail
	samples map[string]int
	digests map[string]int
	equals  int
}

func newMemReader() *memReader {
	return &memReader{
		files:   make(map[string][]byte),
		broken:  make(map[string]bool),
		samples: make(map[string]int),
		digests: make(map[string]int),
	}
}

func (m *memReader) Sample(path string, size int64, window int) ([]byte, error) {
	m.samples[path]++
	if m.broken[path] {
		return nil, fmt.Errorf("open %s: %w", path, fs.ErrPermission)
	}
	return sample.Take(bytes.NewReader(m.files[path]), size, window)
}

func (m *memReader) Digest(_ context.Context, path string, _ int64) (digest.Sum, error) {
	m.digests[path]++
	if m.broken[path] {
		return digest.Sum{}, fmt.Errorf("open %s: %w", path, fs.ErrPermission)
	}
	return digest.Sum256(m.files[path]), nil
}

func (m *memReader) Equal(a, b string) (bool, error) {
	m.equals++
	return bytes.Equal(m.files[a], m.files[b]), nil
}

func (m *memReader) totalIO() int {
	n := m.equals
	for _, c := range m.samples {
		n += c
	}
	for _, c := range m.digests {
		n += c
	}
	return n
}

// groupsOf adds every path, in order, to a fresh SizeGroups.
func (m *memReader) groupsOf(paths ...string) *SizeGroups {
	g := NewSizeGroups()
	for _, p := range paths {
		g.Add(NewRecord(p, int64(len(m.files[p]))))
	}
	return g
}
