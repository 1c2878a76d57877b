package digest

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/time/rate"

	"github.com/bamsammich/twins/internal/platform"
	"github.com/bamsammich/twins/internal/throttle"
)

// DefaultBufferSize is the read size used by File when none is configured.
const DefaultBufferSize = 64 * 1024

// FileOptions tunes File. The zero value is ready to use.
type FileOptions struct {
	Limiter    *rate.Limiter // optional shared bandwidth cap
	BufferSize int
}

// File computes the digest of the file at path, streaming fixed-size reads
// through a Digest so the file is never held in memory. The context is
// checked between reads.
func File(ctx context.Context, path string, opts FileOptions) (Sum, error) {
	f, err := os.Open(path)
	if err != nil {
		return Sum{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	platform.AdviseSequential(f)

	sum, err := Reader(ctx, throttle.NewReader(ctx, f, opts.Limiter), opts.BufferSize)
	if err != nil {
		return Sum{}, fmt.Errorf("hash %s: %w", path, err)
	}
	return sum, nil
}

// Reader computes the digest of everything r yields until io.EOF.
// bufSize <= 0 selects DefaultBufferSize.
func Reader(ctx context.Context, r io.Reader, bufSize int) (Sum, error) {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	d := New()
	buf := make([]byte, bufSize)
	for {
		select {
		case <-ctx.Done():
			return Sum{}, ctx.Err()
		default:
		}

		n, err := r.Read(buf)
		if n > 0 {
			_, _ = d.Write(buf[:n]) //nolint:errcheck // Write never fails
		}
		if err == io.EOF {
			return d.Sum256(), nil
		}
		if err != nil {
			return Sum{}, err
		}
	}
}
