// Package engine runs a duplicate search: scan the roots, bucket files
// by size, hand the candidate groups to the detector.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bamsammich/twins/internal/digest"
	"github.com/bamsammich/twins/internal/dupes"
	"github.com/bamsammich/twins/internal/event"
	"github.com/bamsammich/twins/internal/filter"
	"github.com/bamsammich/twins/internal/stats"
	"github.com/bamsammich/twins/internal/throttle"
)

// ErrConfig marks a configuration that cannot start a run.
var ErrConfig = errors.New("invalid configuration")

// Config describes a duplicate search.
type Config struct {
	Events chan<- event.Event
	Stats  *stats.Collector // created when nil
	Filter *filter.Chain

	// Reader overrides the disk reader; BWLimit is ignored when set.
	Reader dupes.FileReader

	Roots          []string
	Window         int   // sample window, 0 for the default
	BWLimit        int64 // full-hash read limit in bytes/s, 0 for none
	Policy         dupes.Policy
	FollowSymlinks bool
	Paranoid       bool
}

// Validate reports configuration errors. Every error wraps ErrConfig.
func (c Config) Validate() error {
	switch {
	case len(c.Roots) == 0:
		return fmt.Errorf("%w: no paths given", ErrConfig)
	case c.Window < 0:
		return fmt.Errorf("%w: sample window must not be negative, got %d", ErrConfig, c.Window)
	case c.BWLimit < 0:
		return fmt.Errorf("%w: bandwidth limit must not be negative", ErrConfig)
	}
	for _, r := range c.Roots {
		if r == "" {
			return fmt.Errorf("%w: empty path", ErrConfig)
		}
	}
	return nil
}

// Result is the outcome of a search.
type Result struct {
	Graph *dupes.Graph
	Err   error

	// Skipped lists every path left out because it could not be read,
	// both during the scan and during comparison.
	Skipped []dupes.Skipped
	Stats   stats.Snapshot
}

// Partial reports whether some paths were skipped.
func (r Result) Partial() bool {
	return len(r.Skipped) > 0
}

// Run executes a search, blocking until complete. A non-nil Result.Err
// means the run was aborted; Graph then holds what was found so far.
func Run(ctx context.Context, cfg Config) Result {
	if err := cfg.Validate(); err != nil {
		return Result{Graph: dupes.NewGraph(), Err: err}
	}

	collector := cfg.Stats
	if collector == nil {
		collector = stats.NewCollector()
	}

	groups, skipped, err := scan(ctx, cfg, collector)
	if err != nil {
		return Result{Graph: dupes.NewGraph(), Skipped: skipped, Stats: collector.Snapshot(), Err: err}
	}

	reader := cfg.Reader
	if reader == nil {
		var opts digest.FileOptions
		if cfg.BWLimit > 0 {
			opts.Limiter = throttle.NewBWLimiter(cfg.BWLimit)
		}
		reader = dupes.DiskReader{Hash: opts}
	}

	det := dupes.NewDetector(dupes.Config{
		Reader:   reader,
		Events:   cfg.Events,
		Stats:    collector,
		Window:   cfg.Window,
		Policy:   cfg.Policy,
		Paranoid: cfg.Paranoid,
	})
	res, err := det.Run(ctx, groups)
	skipped = append(skipped, res.Skipped...)

	return Result{
		Graph:   res.Graph,
		Skipped: skipped,
		Stats:   collector.Snapshot(),
		Err:     err,
	}
}

// scan walks the roots into size groups and drops the groups that
// cannot hold a duplicate.
func scan(ctx context.Context, cfg Config, collector *stats.Collector) (*dupes.SizeGroups, []dupes.Skipped, error) {
	event.Emit(cfg.Events, event.Event{Type: event.ScanStarted, Total: int64(len(cfg.Roots))})

	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	scanner := NewScanner(ScannerConfig{
		Roots:          cfg.Roots,
		FollowSymlinks: cfg.FollowSymlinks,
		Filter:         cfg.Filter,
	})
	entries, errs := scanner.Scan(scanCtx)

	groups := dupes.NewSizeGroups()
	var skipped []dupes.Skipped
	var fatal error
	var scannedFiles, scannedBytes int64

	for entries != nil || errs != nil {
		select {
		case e, ok := <-entries:
			if !ok {
				entries = nil
				continue
			}
			groups.Add(dupes.NewRecord(e.Path, e.Size))
			collector.AddFilesScanned(1)
			collector.AddBytesScanned(e.Size)
			scannedFiles++
			scannedBytes += e.Size
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if cfg.Policy == dupes.AbortOnError {
				if fatal == nil {
					fatal = err
					cancel()
				}
				continue
			}
			path := err.Error()
			var se *ScanError
			if errors.As(err, &se) {
				path = se.Path
			}
			skipped = append(skipped, dupes.Skipped{Path: path, Err: err})
			collector.AddFilesSkipped(1)
			slog.Warn("skipping unreadable path", "path", path, "error", err)
			event.Emit(cfg.Events, event.Event{Type: event.FileSkipped, Path: path, Error: err})
		}
	}
	if fatal != nil {
		return nil, skipped, fatal
	}
	if err := ctx.Err(); err != nil {
		return nil, skipped, err
	}

	groups.Prune()
	collector.AddGroups(int64(groups.Len()))
	collector.AddCandidates(int64(groups.Records()))
	collector.AddCandidateBytes(groups.Bytes())

	slog.Debug("scan complete", "files", scannedFiles, "candidates", groups.Records(), "groups", groups.Len())
	event.Emit(cfg.Events, event.Event{
		Type:      event.ScanComplete,
		Total:     scannedFiles,
		TotalSize: scannedBytes,
	})
	return groups, skipped, nil
}
