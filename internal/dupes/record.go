package dupes

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bamsammich/twins/internal/digest"
)

// ErrIO marks a failure to open, read, seek or remove a file.
// Test with errors.Is.
var ErrIO = errors.New("i/o error")

// FileError reports an I/O failure on one file.
type FileError struct {
	Err  error
	Path string
	Op   string // sample, hash, compare or delete
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}

// Record is one regular file found by the scan.
//
// Sample and Digest are computed on first use and cached, errors
// included, so each file is sampled at most once and read in full at
// most once no matter how many comparisons reference it.
type Record struct {
	Path string // canonical absolute path
	Size int64

	// Duplicate is set once the record has been matched as a copy of an
	// earlier record. Flagged records take no further part in comparison.
	Duplicate bool

	mu        sync.Mutex
	sample    []byte
	sampleErr error
	sampled   bool
	sum       digest.Sum
	sumErr    error
	hashed    bool
	failErr   error
}

// NewRecord creates a record for a file of the given size.
func NewRecord(path string, size int64) *Record {
	return &Record{Path: path, Size: size}
}

// Sample returns the cached sample, taking it through fr on first call.
// The window only matters on that first call.
func (r *Record) Sample(fr FileReader, window int) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.sampled {
		r.sample, r.sampleErr = fr.Sample(r.Path, r.Size, window)
		if r.sampleErr != nil {
			r.sampleErr = &FileError{Op: "sample", Path: r.Path, Err: r.sampleErr}
			r.failErr = r.sampleErr
		}
		r.sampled = true
	}
	return r.sample, r.sampleErr
}

// Digest returns the cached full-content digest, hashing through fr on
// first call. A context error is returned but not cached.
func (r *Record) Digest(ctx context.Context, fr FileReader) (digest.Sum, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hashed {
		sum, err := fr.Digest(ctx, r.Path, r.Size)
		if err != nil && ctx.Err() != nil {
			return digest.Sum{}, ctx.Err()
		}
		r.sum = sum
		if err != nil {
			r.sumErr = &FileError{Op: "hash", Path: r.Path, Err: err}
			r.failErr = r.sumErr
		}
		r.hashed = true
	}
	return r.sum, r.sumErr
}

// Failed reports the error that excluded this record, if any.
func (r *Record) Failed() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failErr
}

func (r *Record) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr == nil {
		r.failErr = err
	}
}

// excluded reports whether the record can no longer be compared.
func (r *Record) excluded() bool {
	return r.Duplicate || r.Failed() != nil
}
