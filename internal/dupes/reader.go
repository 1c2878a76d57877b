package dupes

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/stevegt/readercomp"

	"github.com/bamsammich/twins/internal/digest"
	"github.com/bamsammich/twins/internal/sample"
)

// FileReader performs the per-file I/O behind a Record.
type FileReader interface {
	// Sample returns the fixed-width sample of a size-byte file.
	Sample(path string, size int64, window int) ([]byte, error)
	// Digest returns the digest of the entire content of a size-byte file.
	Digest(ctx context.Context, path string, size int64) (digest.Sum, error)
	// Equal compares two files byte for byte.
	Equal(a, b string) (bool, error)
}

// compareBufferSize is the read size for byte-for-byte comparison.
const compareBufferSize = 64 * 1024

// DiskReader reads files from the local filesystem.
type DiskReader struct {
	Hash digest.FileOptions
}

func (DiskReader) Sample(path string, size int64, window int) ([]byte, error) {
	return sample.File(path, size, window)
}

func (d DiskReader) Digest(ctx context.Context, path string, _ int64) (digest.Sum, error) {
	return digest.File(ctx, path, d.Hash)
}

// Equal returns a *FileError naming the file that could not be opened;
// errors after both files are open cannot be attributed and are returned
// as-is.
func (DiskReader) Equal(a, b string) (bool, error) {
	fa, err := os.Open(a)
	if err != nil {
		return false, &FileError{Op: "compare", Path: a, Err: err}
	}
	defer fa.Close()

	fb, err := os.Open(b)
	if err != nil {
		return false, &FileError{Op: "compare", Path: b, Err: err}
	}
	defer fb.Close()

	ok, err := readercomp.Equal(fa, fb, compareBufferSize)
	// A size or content mismatch is reported as an error carrying both buffers.
	var mismatch *readercomp.ReaderCompError
	if errors.As(err, &mismatch) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("compare %s with %s: %w", a, b, err)
	}
	return ok, nil
}
