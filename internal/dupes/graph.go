package dupes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrConflict is returned by Graph.Add when an edge would attribute a
// path twice or make a copy an original.
var ErrConflict = errors.New("duplicate graph conflict")

// Group is one original with the copies proven identical to it.
type Group struct {
	Original string
	Copies   []string
	Size     int64 // size of each file in the group
}

// Graph maps each original path to its copies, preserving insertion order.
// A path appears at most once as an original and at most once as a copy,
// and never as both.
type Graph struct {
	index  map[string]int  // original -> position in groups
	copies map[string]bool // every path recorded as a copy
	groups []Group
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		index:  make(map[string]int),
		copies: make(map[string]bool),
	}
}

// Add records dup as a copy of original.
func (g *Graph) Add(original, dup string, size int64) error {
	switch {
	case original == dup:
		return fmt.Errorf("%w: %s cannot duplicate itself", ErrConflict, dup)
	case g.copies[dup]:
		return fmt.Errorf("%w: %s is already a copy", ErrConflict, dup)
	case g.copies[original]:
		return fmt.Errorf("%w: %s is a copy and cannot be an original", ErrConflict, original)
	}
	if _, ok := g.index[dup]; ok {
		return fmt.Errorf("%w: %s is an original and cannot be a copy", ErrConflict, dup)
	}

	i, ok := g.index[original]
	if !ok {
		i = len(g.groups)
		g.index[original] = i
		g.groups = append(g.groups, Group{Original: original, Size: size})
	}
	g.groups[i].Copies = append(g.groups[i].Copies, dup)
	g.copies[dup] = true
	return nil
}

// Groups returns the groups in the order their originals were first added.
func (g *Graph) Groups() []Group {
	return g.groups
}

// Originals returns the original paths in insertion order.
func (g *Graph) Originals() []string {
	out := make([]string, len(g.groups))
	for i, grp := range g.groups {
		out[i] = grp.Original
	}
	return out
}

// Copies returns the copies of original, or nil if it is not an original.
func (g *Graph) Copies(original string) []string {
	if i, ok := g.index[original]; ok {
		return g.groups[i].Copies
	}
	return nil
}

// Len returns the number of originals.
func (g *Graph) Len() int {
	return len(g.groups)
}

// DuplicateCount returns the number of copies across all groups.
func (g *Graph) DuplicateCount() int {
	return len(g.copies)
}

// ReclaimableBytes returns the bytes freed by removing every copy.
func (g *Graph) ReclaimableBytes() int64 {
	var n int64
	for _, grp := range g.groups {
		n += grp.Size * int64(len(grp.Copies))
	}
	return n
}

// MarshalJSON encodes the graph as one object mapping each original to
// the array of its copies, keys in insertion order. Invalid UTF-8 in a
// path is replaced with U+FFFD, so such paths are not round-trippable.
func (g *Graph) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, grp := range g.groups {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(grp.Original)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(grp.Copies)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
