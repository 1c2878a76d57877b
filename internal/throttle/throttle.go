// Package throttle caps aggregate read bandwidth across every file the
// hashing stage touches.
package throttle

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// NewBWLimiter creates a rate.Limiter that caps aggregate throughput to
// bytesPerSec. The burst is 1 MB so ordinary read sizes pass without
// blocking on every small read.
func NewBWLimiter(bytesPerSec int64) *rate.Limiter {
	burst := 1 << 20 // 1 MB
	if bytesPerSec < int64(burst) {
		burst = int(bytesPerSec)
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

// Reader wraps an io.Reader and enforces a shared rate limit.
type Reader struct {
	r       io.Reader
	limiter *rate.Limiter
	ctx     context.Context //nolint:containedctx // reads have no ctx parameter
}

// NewReader wraps r so that reads are throttled by limiter.
// A nil limiter returns r unchanged.
func NewReader(ctx context.Context, r io.Reader, limiter *rate.Limiter) io.Reader {
	if limiter == nil {
		return r
	}
	return &Reader{r: r, limiter: limiter, ctx: ctx}
}

func (rl *Reader) Read(p []byte) (int, error) {
	// Never ask for more than one burst; WaitN rejects n > burst.
	if b := rl.limiter.Burst(); b > 0 && len(p) > b {
		p = p[:b]
	}
	n, err := rl.r.Read(p)
	if n > 0 {
		if waitErr := rl.limiter.WaitN(rl.ctx, n); waitErr != nil {
			return n, waitErr
		}
	}
	return n, err
}
