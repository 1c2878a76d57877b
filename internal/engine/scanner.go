package engine

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bamsammich/twins/internal/filter"
)

// ScannerConfig controls scanner behavior.
type ScannerConfig struct {
	Filter         *filter.Chain
	Roots          []string
	FollowSymlinks bool
}

// Entry is one regular file found under a root.
type Entry struct {
	Path    string // canonical absolute path
	RelPath string // slash-separated, relative to Root
	Root    string
	Size    int64
}

// ScanError reports a path the scanner could not read. The walk goes on.
type ScanError struct {
	Err  error
	Path string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// Scanner walks the roots depth-first on a single goroutine. Roots are
// taken in order and directory entries in lexical order, so the same
// tree always produces the same entry sequence.
type Scanner struct {
	cfg     ScannerConfig
	entries chan Entry
	errs    chan error

	seen    map[string]bool // canonical files already emitted
	visited map[string]bool // canonical directories already walked
}

// NewScanner creates a scanner with the given config.
func NewScanner(cfg ScannerConfig) *Scanner {
	return &Scanner{
		cfg:     cfg,
		entries: make(chan Entry, 64),
		errs:    make(chan error, 16),
		seen:    make(map[string]bool),
		visited: make(map[string]bool),
	}
}

// Scan starts the walk and returns channels for entries and errors.
// The caller must consume from both channels until they close.
func (s *Scanner) Scan(ctx context.Context) (<-chan Entry, <-chan error) {
	go func() {
		defer close(s.entries)
		defer close(s.errs)
		for _, root := range s.cfg.Roots {
			if ctx.Err() != nil {
				return
			}
			s.scanRoot(ctx, root)
		}
	}()
	return s.entries, s.errs
}

func (s *Scanner) scanRoot(ctx context.Context, root string) {
	abs, err := filepath.Abs(root)
	if err != nil {
		s.sendErr(ctx, &ScanError{Path: root, Err: err})
		return
	}
	canon, err := filepath.EvalSymlinks(abs)
	if err != nil {
		s.sendErr(ctx, &ScanError{Path: root, Err: err})
		return
	}
	info, err := os.Stat(canon)
	if err != nil {
		s.sendErr(ctx, &ScanError{Path: root, Err: err})
		return
	}

	switch {
	case info.IsDir():
		s.scanDir(ctx, abs, abs, canon)
	case info.Mode().IsRegular():
		// A file root is matched by its base name.
		rel := filepath.Base(abs)
		if !s.cfg.Filter.File(rel, info.Size()) {
			slog.Debug("file root filtered out", "path", root)
			return
		}
		s.emit(ctx, Entry{Path: canon, RelPath: rel, Root: abs, Size: info.Size()})
	default:
		slog.Debug("ignoring non-regular root", "path", root, "mode", info.Mode().Type())
	}
}

// scanDir walks dir, whose symlink-free location is canon. Relative
// paths are computed from the logical path so filters see the tree as
// the user named it.
func (s *Scanner) scanDir(ctx context.Context, root, dir, canon string) {
	if s.visited[canon] {
		return
	}
	s.visited[canon] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.sendErr(ctx, &ScanError{Path: dir, Err: err})
		// ReadDir may still return the entries read before the failure.
	}

	for _, de := range entries {
		if ctx.Err() != nil {
			return
		}
		path := filepath.Join(dir, de.Name())
		rel := relPath(root, path)

		switch mode := de.Type(); {
		case mode&fs.ModeSymlink != 0:
			s.scanLink(ctx, root, path, rel)
		case mode.IsDir():
			if s.cfg.Filter.Dir(rel) {
				s.scanDir(ctx, root, path, filepath.Join(canon, de.Name()))
			}
		case mode.IsRegular():
			info, err := de.Info()
			if err != nil {
				s.sendErr(ctx, &ScanError{Path: path, Err: err})
				continue
			}
			if s.cfg.Filter.File(rel, info.Size()) {
				s.emit(ctx, Entry{Path: filepath.Join(canon, de.Name()), RelPath: rel, Root: root, Size: info.Size()})
			}
		}
	}
}

func (s *Scanner) scanLink(ctx context.Context, root, path, rel string) {
	if !s.cfg.FollowSymlinks {
		slog.Debug("ignoring symlink", "path", path)
		return
	}
	canon, err := filepath.EvalSymlinks(path)
	if err != nil {
		s.sendErr(ctx, &ScanError{Path: path, Err: err})
		return
	}
	info, err := os.Stat(canon)
	if err != nil {
		s.sendErr(ctx, &ScanError{Path: path, Err: err})
		return
	}

	switch {
	case info.IsDir():
		if s.cfg.Filter.Dir(rel) {
			s.scanDir(ctx, root, path, canon)
		}
	case info.Mode().IsRegular():
		if s.cfg.Filter.File(rel, info.Size()) {
			s.emit(ctx, Entry{Path: canon, RelPath: rel, Root: root, Size: info.Size()})
		}
	}
}

// emit sends e unless its canonical path was already sent.
func (s *Scanner) emit(ctx context.Context, e Entry) {
	if s.seen[e.Path] {
		slog.Debug("file reached twice", "path", e.Path, "via", filepath.Join(e.Root, e.RelPath))
		return
	}
	s.seen[e.Path] = true
	select {
	case s.entries <- e:
	case <-ctx.Done():
	}
}

func (s *Scanner) sendErr(ctx context.Context, err error) {
	select {
	case s.errs <- err:
	case <-ctx.Done():
	}
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
