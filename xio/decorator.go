package xio

import (
	"io"

	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	"golang.org/x/time/rate"
)

var (
	// ErrRateLimitExceeded is returned by a decorated io.Writer when more
	// datagrams are written per second than allowed.
	ErrRateLimitExceeded = errors.New("rate of written datagrams exceeded")
	// ErrSizeLimitExceeded is returned by a decorated io.Writer when a single
	// datagram is larger than allowed.
	ErrSizeLimitExceeded = errors.New("datagram size limit exceeded")
)

// WriterDecorator wraps an io.Writer with additional behaviour.
type WriterDecorator func(io.Writer) io.Writer

// WriterFunc type is an adapter to allow the use of ordinary functions as
// io.Writers. If f is a function with the appropriate signature, WriterFunc(f)
// is a Writer that calls f.
type WriterFunc func([]byte) (int, error)

func (w WriterFunc) Write(p []byte) (int, error) {
	return w(p)
}

// DecorateWriter returns writer wrapped by decorators. The last decorator is
// the outermost one and sees every write first.
func DecorateWriter(writer io.Writer, decorators ...WriterDecorator) io.Writer {
	for _, decorator := range decorators {
		writer = decorator(writer)
	}
	return writer
}

// RateLimit allows at most limit writes per second, with bursts of up to
// limit writes. Writes over the limit are rejected with ErrRateLimitExceeded.
func RateLimit(limit int) WriterDecorator {
	limiter := rate.NewLimiter(rate.Limit(limit), limit)
	return func(writer io.Writer) io.Writer {
		return WriterFunc(func(p []byte) (int, error) {
			if !limiter.Allow() {
				return 0, ErrRateLimitExceeded
			}
			return writer.Write(p)
		})
	}
}

// SizeLimit rejects writes larger than size bytes with ErrSizeLimitExceeded.
func SizeLimit(size int) WriterDecorator {
	return func(writer io.Writer) io.Writer {
		return WriterFunc(func(p []byte) (int, error) {
			if len(p) > size {
				return 0, ErrSizeLimitExceeded
			}
			return writer.Write(p)
		})
	}
}

// Timed records the duration of every write in timer.
func Timed(timer metrics.Timer) WriterDecorator {
	return func(writer io.Writer) io.Writer {
		return WriterFunc(func(p []byte) (n int, err error) {
			timer.Time(func() { n, err = writer.Write(p) })
			return n, err
		})
	}
}
