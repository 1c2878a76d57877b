// Package sample extracts a cheap fixed-width fingerprint from a file:
// three equal windows taken from its head, middle and tail.
//
// A sample is only ever a pre-filter. Equal samples say nothing about the
// bytes outside the windows; callers confirm with a full digest.
package sample

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bamsammich/twins/internal/platform"
)

// DefaultWindow is the width of each of the three windows in bytes.
const DefaultWindow = 5

// Width returns the total sample width for the given window size.
func Width(window int) int {
	return 3 * window
}

// Take reads the sample of a size-byte file from r. The result always
// has Width(window) bytes.
//
// Files shorter than the full width are read whole; the unread tail of
// the buffer stays zero. Otherwise the windows start at 0,
// (size-window)/2 and size-window.
func Take(r io.ReaderAt, size int64, window int) ([]byte, error) {
	if window <= 0 {
		return nil, fmt.Errorf("sample window must be positive, got %d", window)
	}
	width := Width(window)
	buf := make([]byte, width)

	if size < int64(width) {
		if err := readAt(r, buf[:size], 0); err != nil {
			return nil, err
		}
		return buf, nil
	}

	w := int64(window)
	offsets := [3]int64{0, (size - w) / 2, size - w}
	for i, off := range offsets {
		if err := readAt(r, buf[i*window:(i+1)*window], off); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// File opens the file at path and takes its sample.
func File(path string, size int64, window int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	platform.AdviseRandom(f)

	s, err := Take(f, size, window)
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w", path, err)
	}
	return s, nil
}

// readAt fills p from offset off. A file that shrank since it was sized
// surfaces as io.ErrUnexpectedEOF.
func readAt(r io.ReaderAt, p []byte, off int64) error {
	if len(p) == 0 {
		return nil
	}
	n, err := r.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return fmt.Errorf("read %d bytes at offset %d: %w", len(p), off, io.ErrUnexpectedEOF)
	}
	return fmt.Errorf("read at offset %d: %w", off, err)
}
