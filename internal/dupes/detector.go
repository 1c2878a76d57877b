// Package dupes decides which scanned files are byte-identical.
//
// Files are bucketed by size, pre-filtered by a small head/middle/tail
// sample and confirmed by a full SHA-256 digest, so most files are never
// read in full.
package dupes

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	"github.com/bamsammich/twins/internal/digest"
	"github.com/bamsammich/twins/internal/event"
	"github.com/bamsammich/twins/internal/sample"
	"github.com/bamsammich/twins/internal/stats"
)

// Policy selects what happens when a file cannot be read.
type Policy int

const (
	// SkipUnreadable excludes the file, records it in Result.Skipped and
	// keeps going.
	SkipUnreadable Policy = iota
	// AbortOnError fails the whole run on the first unreadable file.
	AbortOnError
)

// Config controls a Detector.
type Config struct {
	Reader   FileReader // defaults to DiskReader{}
	Events   chan<- event.Event
	Stats    *stats.Collector
	Window   int // sample window; defaults to sample.DefaultWindow
	Policy   Policy
	Paranoid bool // confirm digest matches byte for byte
}

// Skipped is a file excluded from comparison because it could not be read.
type Skipped struct {
	Err  error
	Path string
}

// Result is the outcome of a detection pass.
type Result struct {
	Graph   *Graph
	Skipped []Skipped
}

// Detector finds duplicates within size groups.
//
// Within a group, records are visited in insertion order. Each record not
// yet flagged is compared against every later unflagged record; a match
// flags the later one as a copy of the earlier one. The "original" of a
// duplicate set is therefore whichever member came first in scan order.
// That choice is deterministic for a given scan but carries no meaning:
// it is not the oldest file, nor the shortest or lexically smallest path.
type Detector struct {
	cfg    Config
	reader FileReader
}

// NewDetector creates a Detector.
func NewDetector(cfg Config) *Detector {
	if cfg.Reader == nil {
		cfg.Reader = DiskReader{}
	}
	if cfg.Window <= 0 {
		cfg.Window = sample.DefaultWindow
	}
	var r FileReader = cfg.Reader
	if cfg.Stats != nil {
		r = &countingReader{FileReader: cfg.Reader, stats: cfg.Stats}
	}
	return &Detector{cfg: cfg, reader: r}
}

// Run compares every group in groups. Groups with fewer than two members
// are skipped without any I/O. With AbortOnError the first I/O error is
// returned; otherwise unreadable files are listed in the result.
// A partial result accompanies a context error.
func (d *Detector) Run(ctx context.Context, groups *SizeGroups) (Result, error) {
	res := Result{Graph: NewGraph()}

	for _, size := range groups.Sizes() {
		recs := groups.Group(size)
		if len(recs) < 2 {
			continue
		}
		event.Emit(d.cfg.Events, event.Event{
			Type:  event.GroupStarted,
			Size:  size,
			Total: int64(len(recs)),
		})
		if err := d.runGroup(ctx, recs, &res); err != nil {
			return res, err
		}
	}

	event.Emit(d.cfg.Events, event.Event{
		Type:  event.CompareComplete,
		Total: int64(res.Graph.DuplicateCount()),
		Size:  res.Graph.ReclaimableBytes(),
	})
	return res, nil
}

func (d *Detector) runGroup(ctx context.Context, recs []*Record, res *Result) error {
	for i, a := range recs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if a.excluded() {
			continue
		}
		for _, b := range recs[i+1:] {
			if b.excluded() {
				continue
			}
			same, err := d.same(ctx, a, b)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if d.cfg.Policy == AbortOnError {
					return err
				}
				d.skip(res, d.blame(err, a, b), err)
				if a.excluded() {
					break
				}
				continue
			}
			if !same {
				continue
			}

			b.Duplicate = true
			if err := res.Graph.Add(a.Path, b.Path, b.Size); err != nil {
				return err
			}
			if d.cfg.Stats != nil {
				d.cfg.Stats.AddDuplicates(1)
				d.cfg.Stats.AddBytesReclaimable(b.Size)
			}
			slog.Debug("duplicate found", "path", b.Path, "original", a.Path, "size", b.Size)
			event.Emit(d.cfg.Events, event.Event{
				Type:     event.DuplicateFound,
				Path:     b.Path,
				Original: a.Path,
				Size:     b.Size,
			})
		}
	}
	return nil
}

// same reports whether a and b have identical content. Cheap checks
// run first: sample, then digest, then the optional full comparison.
func (d *Detector) same(ctx context.Context, a, b *Record) (bool, error) {
	sa, err := a.Sample(d.reader, d.cfg.Window)
	if err != nil {
		return false, err
	}
	sb, err := b.Sample(d.reader, d.cfg.Window)
	if err != nil {
		return false, err
	}
	if !bytes.Equal(sa, sb) {
		return false, nil
	}

	da, err := a.Digest(ctx, d.reader)
	if err != nil {
		return false, err
	}
	db, err := b.Digest(ctx, d.reader)
	if err != nil {
		return false, err
	}
	if da != db {
		return false, nil
	}

	if !d.cfg.Paranoid {
		return true, nil
	}
	ok, err := d.reader.Equal(a.Path, b.Path)
	if err != nil {
		return false, err
	}
	if !ok {
		slog.Warn("digest collision: contents differ", "path", b.Path, "other", a.Path)
	}
	return ok, nil
}

// blame picks the record err belongs to. Errors that name neither
// record are charged to b so the source record stays usable.
func (*Detector) blame(err error, a, b *Record) *Record {
	var fe *FileError
	if errors.As(err, &fe) && fe.Path == a.Path {
		return a
	}
	return b
}

func (d *Detector) skip(res *Result, r *Record, err error) {
	if !errors.Is(err, ErrIO) {
		err = &FileError{Op: "compare", Path: r.Path, Err: err}
	}
	r.fail(err)
	res.Skipped = append(res.Skipped, Skipped{Path: r.Path, Err: err})
	if d.cfg.Stats != nil {
		d.cfg.Stats.AddFilesSkipped(1)
	}
	slog.Warn("skipping unreadable file", "path", r.Path, "error", err)
	event.Emit(d.cfg.Events, event.Event{Type: event.FileSkipped, Path: r.Path, Size: r.Size, Error: err})
}

// countingReader feeds the per-file I/O into the stats collector.
type countingReader struct {
	FileReader
	stats *stats.Collector
}

func (c *countingReader) Sample(path string, size int64, window int) ([]byte, error) {
	s, err := c.FileReader.Sample(path, size, window)
	if err == nil {
		c.stats.AddSamplesTaken(1)
	}
	return s, err
}

func (c *countingReader) Digest(ctx context.Context, path string, size int64) (digest.Sum, error) {
	s, err := c.FileReader.Digest(ctx, path, size)
	if err == nil {
		c.stats.AddFilesHashed(1)
		c.stats.AddBytesHashed(size)
	}
	return s, err
}
