// Package ratelimit adapts golang.org/x/time/rate's token bucket to the
// io.Reader/io.Writer shapes FTP transfer streams need, in chunks of at
// most 32KB (or the limiter's burst, if smaller) so a single large
// Read/Write can't starve the bucket for a long stretch before the caller
// gets any bytes.
package ratelimit

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

const maxChunk = 32 * 1024

// Reader wraps an io.Reader, waiting on the limiter before each chunk.
type Reader struct {
	r       io.Reader
	limiter *rate.Limiter
}

// NewReader wraps r; with a nil limiter the returned Reader passes every
// Read straight through to r.
func NewReader(r io.Reader, limiter *rate.Limiter) *Reader {
	return &Reader{r: r, limiter: limiter}
}

func (r *Reader) Read(p []byte) (int, error) {
	if r.limiter == nil || len(p) == 0 {
		return r.r.Read(p)
	}
	chunk := maxChunk
	if b := r.limiter.Burst(); b > 0 && b < chunk {
		chunk = b
	}
	if len(p) > chunk {
		p = p[:chunk]
	}
	if err := r.limiter.WaitN(context.Background(), len(p)); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Writer wraps an io.Writer, waiting on the limiter before each chunk.
type Writer struct {
	w       io.Writer
	limiter *rate.Limiter
}

// NewWriter wraps w; with a nil limiter the returned Writer passes every
// Write straight through to w.
func NewWriter(w io.Writer, limiter *rate.Limiter) *Writer {
	return &Writer{w: w, limiter: limiter}
}

func (w *Writer) Write(p []byte) (int, error) {
	if w.limiter == nil {
		return w.w.Write(p)
	}
	chunk := maxChunk
	if b := w.limiter.Burst(); b > 0 && b < chunk {
		chunk = b
	}
	total := 0
	for total < len(p) {
		end := total + chunk
		if end > len(p) {
			end = len(p)
		}
		if err := w.limiter.WaitN(context.Background(), end-total); err != nil {
			return total, err
		}
		n, err := w.w.Write(p[total:end])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
