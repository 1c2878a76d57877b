package dupes

// SizeGroups buckets records by file size. Sizes iterate in the order
// they were first seen and records within a size keep insertion order,
// so a deterministic scan yields a deterministic comparison order.
type SizeGroups struct {
	bySize map[int64][]*Record
	order  []int64
}

// NewSizeGroups returns an empty SizeGroups.
func NewSizeGroups() *SizeGroups {
	return &SizeGroups{bySize: make(map[int64][]*Record)}
}

// Add appends r to the group for its size.
func (g *SizeGroups) Add(r *Record) {
	if _, ok := g.bySize[r.Size]; !ok {
		g.order = append(g.order, r.Size)
	}
	g.bySize[r.Size] = append(g.bySize[r.Size], r)
}

// Prune drops every group with fewer than two members and returns how
// many records were dropped. A lone file of its size cannot have a
// duplicate, so dropped records never cost any I/O.
func (g *SizeGroups) Prune() int {
	dropped := 0
	kept := g.order[:0]
	for _, size := range g.order {
		if len(g.bySize[size]) < 2 {
			dropped += len(g.bySize[size])
			delete(g.bySize, size)
			continue
		}
		kept = append(kept, size)
	}
	g.order = kept
	return dropped
}

// Sizes returns the group sizes in first-seen order.
func (g *SizeGroups) Sizes() []int64 {
	return g.order
}

// Group returns the records of the given size in insertion order.
func (g *SizeGroups) Group(size int64) []*Record {
	return g.bySize[size]
}

// Len returns the number of groups.
func (g *SizeGroups) Len() int {
	return len(g.order)
}

// Records returns the number of records across all groups.
func (g *SizeGroups) Records() int {
	n := 0
	for _, recs := range g.bySize {
		n += len(recs)
	}
	return n
}

// Bytes returns the summed size of all records.
func (g *SizeGroups) Bytes() int64 {
	var n int64
	for size, recs := range g.bySize {
		n += size * int64(len(recs))
	}
	return n
}
