package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const ringSize = 60

// Collector tracks run statistics using lock-free atomic counters.
type Collector struct {
	filesScanned     atomic.Int64
	bytesScanned     atomic.Int64
	groups           atomic.Int64
	candidates       atomic.Int64
	candidateBytes   atomic.Int64
	samplesTaken     atomic.Int64
	filesHashed      atomic.Int64
	bytesHashed      atomic.Int64
	duplicates       atomic.Int64
	bytesReclaimable atomic.Int64
	filesSkipped     atomic.Int64
	filesDeleted     atomic.Int64
	deleteFailed     atomic.Int64
	startTime        time.Time

	// Ring buffer, written only by the presenter's Tick.
	mu         sync.Mutex
	throughput [ringSize]int64 // hashed bytes delta per second
	ringIdx    int
	ringCount  int
	lastBytes  int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	FilesScanned     int64
	BytesScanned     int64
	Groups           int64 // size groups with two or more members
	Candidates       int64 // files inside those groups
	CandidateBytes   int64
	SamplesTaken     int64
	FilesHashed      int64
	BytesHashed      int64
	Duplicates       int64
	BytesReclaimable int64
	FilesSkipped     int64
	FilesDeleted     int64
	DeleteFailed     int64
	Elapsed          time.Duration
}

func (c *Collector) AddFilesScanned(n int64)     { c.filesScanned.Add(n) }
func (c *Collector) AddBytesScanned(n int64)     { c.bytesScanned.Add(n) }
func (c *Collector) AddGroups(n int64)           { c.groups.Add(n) }
func (c *Collector) AddCandidates(n int64)       { c.candidates.Add(n) }
func (c *Collector) AddCandidateBytes(n int64)   { c.candidateBytes.Add(n) }
func (c *Collector) AddSamplesTaken(n int64)     { c.samplesTaken.Add(n) }
func (c *Collector) AddFilesHashed(n int64)      { c.filesHashed.Add(n) }
func (c *Collector) AddBytesHashed(n int64)      { c.bytesHashed.Add(n) }
func (c *Collector) AddDuplicates(n int64)       { c.duplicates.Add(n) }
func (c *Collector) AddBytesReclaimable(n int64) { c.bytesReclaimable.Add(n) }
func (c *Collector) AddFilesSkipped(n int64)     { c.filesSkipped.Add(n) }
func (c *Collector) AddFilesDeleted(n int64)     { c.filesDeleted.Add(n) }
func (c *Collector) AddDeleteFailed(n int64)     { c.deleteFailed.Add(n) }

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesScanned:     c.filesScanned.Load(),
		BytesScanned:     c.bytesScanned.Load(),
		Groups:           c.groups.Load(),
		Candidates:       c.candidates.Load(),
		CandidateBytes:   c.candidateBytes.Load(),
		SamplesTaken:     c.samplesTaken.Load(),
		FilesHashed:      c.filesHashed.Load(),
		BytesHashed:      c.bytesHashed.Load(),
		Duplicates:       c.duplicates.Load(),
		BytesReclaimable: c.bytesReclaimable.Load(),
		FilesSkipped:     c.filesSkipped.Load(),
		FilesDeleted:     c.filesDeleted.Load(),
		DeleteFailed:     c.deleteFailed.Load(),
		Elapsed:          c.Elapsed(),
	}
}

// Tick snapshots the hashed-bytes delta into the ring buffer. Called 1/sec
// by the presenter.
func (c *Collector) Tick() {
	current := c.bytesHashed.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.throughput[c.ringIdx] = current - c.lastBytes
	c.lastBytes = current
	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingSpeed returns average hashed bytes/sec over the last n seconds.
func (c *Collector) RollingSpeed(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := min(seconds, c.ringCount)
	if count <= 0 {
		return 0
	}
	var sum int64
	for i := range count {
		idx := (c.ringIdx - 1 - i + ringSize) % ringSize
		sum += c.throughput[idx]
	}
	return float64(sum) / float64(count)
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"scanned=%d groups=%d sampled=%d hashed=%d duplicates=%d reclaimable=%d skipped=%d deleted=%d",
		s.FilesScanned, s.Groups, s.SamplesTaken, s.FilesHashed,
		s.Duplicates, s.BytesReclaimable, s.FilesSkipped, s.FilesDeleted,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

// Reader is the read-only view presenters use.
type Reader interface {
	Snapshot() Snapshot
}

// ReadTicker is a Reader that also owns the throughput ring.
type ReadTicker interface {
	Reader
	Tick()
	RollingSpeed(seconds int) float64
}
