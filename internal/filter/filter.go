// Package filter selects which scanned paths become duplicate candidates.
//
// Patterns follow rsync glob rules: "*" stops at a slash, "**" does not,
// a leading slash anchors to the scan root and a trailing slash matches
// directories only. Rules are tried in the order they were added and the
// first one that matches decides; a path no rule matches is kept.
package filter

import "fmt"

type rule struct {
	glob    *glob
	include bool
}

// Chain is an ordered list of include/exclude rules plus a file size
// range. A nil *Chain keeps everything.
type Chain struct {
	rules   []rule
	minSize int64
	maxSize int64 // 0 means no upper bound
}

// NewChain creates an empty chain.
func NewChain() *Chain {
	return &Chain{}
}

// Exclude appends a rule dropping paths that match pattern.
func (c *Chain) Exclude(pattern string) error {
	return c.add(pattern, false)
}

// Include appends a rule keeping paths that match pattern.
func (c *Chain) Include(pattern string) error {
	return c.add(pattern, true)
}

func (c *Chain) add(pattern string, include bool) error {
	g, err := compileGlob(pattern)
	if err != nil {
		return fmt.Errorf("pattern %q: %w", pattern, err)
	}
	c.rules = append(c.rules, rule{glob: g, include: include})
	return nil
}

// SizeRange keeps only files whose size lies in [minSize, maxSize].
// A maxSize of 0 leaves the range open above.
func (c *Chain) SizeRange(minSize, maxSize int64) error {
	switch {
	case minSize < 0 || maxSize < 0:
		return fmt.Errorf("size limits must not be negative")
	case maxSize > 0 && maxSize < minSize:
		return fmt.Errorf("max size %d is below min size %d", maxSize, minSize)
	}
	c.minSize, c.maxSize = minSize, maxSize
	return nil
}

// Len returns the number of pattern rules.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.rules)
}

// Empty reports whether the chain keeps everything.
func (c *Chain) Empty() bool {
	return c == nil || (len(c.rules) == 0 && c.minSize == 0 && c.maxSize == 0)
}

// Dir reports whether the scanner should descend into the directory at
// relPath, which is relative to the scan root with forward slashes.
func (c *Chain) Dir(relPath string) bool {
	return c.decide(relPath, true)
}

// File reports whether the regular file at relPath with the given size
// is a candidate.
func (c *Chain) File(relPath string, size int64) bool {
	if c == nil {
		return true
	}
	if size < c.minSize || (c.maxSize > 0 && size > c.maxSize) {
		return false
	}
	return c.decide(relPath, false)
}

func (c *Chain) decide(relPath string, isDir bool) bool {
	if c == nil {
		return true
	}
	for _, r := range c.rules {
		if r.glob.match(relPath, isDir) {
			return r.include
		}
	}
	return true
}
