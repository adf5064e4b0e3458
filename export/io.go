package export

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// countingWriter tracks the number of bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.n += int64(n)
	return n, err
}

// minBurst keeps the limiter burst above the merge copy buffer size so a
// single Write never exceeds it.
const minBurst = 1 << 16

// rateLimitedWriter throttles writes to a configured byte rate.
type rateLimitedWriter struct {
	ctx     context.Context
	w       io.Writer
	limiter *rate.Limiter
}

func newRateLimitedWriter(ctx context.Context, w io.Writer, bytesPerSec int64) *rateLimitedWriter {
	burst := int(bytesPerSec)
	if burst < minBurst {
		burst = minBurst
	}
	return &rateLimitedWriter{
		ctx:     ctx,
		w:       w,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSec), burst),
	}
}

func (w *rateLimitedWriter) Write(p []byte) (int, error) {
	if err := w.limiter.WaitN(w.ctx, len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}
