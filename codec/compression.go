package codec

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

// Compression names the algorithm used for large messages.
type Compression string

const (
	// Deflate produces zlib framed deflate data (starts with 0x78).
	Deflate Compression = "deflate"
	// Gzip produces gzip data (starts with 0x1f 0x8b).
	Gzip Compression = "gzip"
)

// ErrCompression is returned when a message could not be compressed.
var ErrCompression = errors.New("unable to compress message")

// ErrUnknownCompression is returned for compression names other than gzip
// and deflate.
var ErrUnknownCompression = errors.New("unknown compression")

// ParseCompression returns the compression for name. An empty name means
// Deflate.
func ParseCompression(name string) (Compression, error) {
	switch Compression(name) {
	case "", Deflate:
		return Deflate, nil
	case Gzip:
		return Gzip, nil
	}
	return "", errors.Wrapf(ErrUnknownCompression, "%q, use %q or %q", name, Gzip, Deflate)
}

func compress(c Compression, payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	var w io.WriteCloser
	switch c {
	case Gzip:
		w = gzip.NewWriter(&buf)
	default:
		w = zlib.NewWriter(&buf)
	}
	if _, err := w.Write(payload); err != nil {
		return nil, err
	}
	// close flushes the remaining compressed bytes and the trailer
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
