package codec

import (
	"crypto/rand"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/GiG/graygelf/gelf"
)

// sorted map keys keep the serialized form of equal documents identical
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrMessageID is returned when no random chunk message id could be read.
var ErrMessageID = errors.New("unable to generate chunk message id")

// Encoder turns documents into the datagrams that carry them.
type Encoder struct {
	// ChunkSize is the largest payload sent unchunked, and the payload size
	// of each chunk.
	ChunkSize int
	// Compression is used for messages that do not fit into ChunkSize.
	Compression Compression
	// AlwaysCompress compresses even messages that would fit uncompressed.
	AlwaysCompress bool
	// Random is the source of chunk message ids.
	Random io.Reader

	compress func(Compression, []byte) ([]byte, error)
}

// NewEncoder returns an encoder. A non-positive chunkSize means WAN and an
// empty compression means Deflate.
func NewEncoder(chunkSize int, compression Compression, alwaysCompress bool) *Encoder {
	if chunkSize <= 0 {
		chunkSize = WAN
	}
	if compression == "" {
		compression = Deflate
	}
	return &Encoder{
		ChunkSize:      chunkSize,
		Compression:    compression,
		AlwaysCompress: alwaysCompress,
		Random:         rand.Reader,
		compress:       compress,
	}
}

// Encode serializes doc and returns the datagrams to send, in order. Small
// messages are sent as plain JSON. Others are compressed and, when still too
// large, split into chunks sharing a fresh random id. On error nothing is
// returned, so a message is never partially sent.
func (e *Encoder) Encode(doc gelf.Document) ([][]byte, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "unable to marshal document")
	}
	if len(payload) < e.ChunkSize && !e.AlwaysCompress {
		return [][]byte{payload}, nil
	}

	compressFunc := e.compress
	if compressFunc == nil {
		compressFunc = compress
	}
	compressed, err := compressFunc(e.Compression, payload)
	if err != nil {
		return nil, errors.Wrapf(ErrCompression, "%s: %s", e.Compression, err)
	}
	if len(compressed) <= e.ChunkSize {
		return [][]byte{compressed}, nil
	}

	if NumChunks(len(compressed), e.ChunkSize) > MaxChunks {
		return nil, errors.Wrapf(ErrTooManyChunks, "%d compressed bytes in %d byte chunks", len(compressed), e.ChunkSize)
	}
	random := e.Random
	if random == nil {
		random = rand.Reader
	}
	var id [IDLen]byte
	if _, err := io.ReadFull(random, id[:]); err != nil {
		return nil, errors.Wrapf(ErrMessageID, "%s", err)
	}
	chunks, err := Split(compressed, e.ChunkSize, id)
	if err != nil {
		return nil, err
	}
	datagrams := make([][]byte, len(chunks))
	for i, chunk := range chunks {
		datagrams[i] = chunk.Bytes()
	}
	return datagrams, nil
}
