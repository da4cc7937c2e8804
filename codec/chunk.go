package codec

import "github.com/pkg/errors"

// Chunk size presets. Both are the number of payload bytes carried by one
// chunk; the 12 byte header comes on top.
const (
	// WAN is safely below a typical internet path MTU.
	WAN = 1240
	// LAN suits local networks with jumbo-ish frames.
	LAN = 8154
)

const (
	// HeaderLen is the size of the chunk header: magic, message id, sequence
	// number and sequence count.
	HeaderLen = 12
	// MaxChunks is the protocol limit of chunks per message.
	MaxChunks = 128
	// IDLen is the size of the message id shared by all chunks of a message.
	IDLen = 8
)

// Magic marks a datagram as a GELF chunk.
var Magic = [2]byte{0x1e, 0x0f}

// ErrTooManyChunks is returned when a compressed message would need more
// chunks than the protocol allows.
var ErrTooManyChunks = errors.New("message needs more than 128 chunks")

// Chunk is one fragment of an over-size compressed message.
type Chunk struct {
	ID    [IDLen]byte
	Seq   uint8
	Total uint8
	Data  []byte
}

// Bytes returns the framed chunk ready to be sent as one datagram.
func (c Chunk) Bytes() []byte {
	b := make([]byte, HeaderLen+len(c.Data))
	copy(b, Magic[:])
	copy(b[2:], c.ID[:])
	b[10] = c.Seq
	b[11] = c.Total
	copy(b[HeaderLen:], c.Data)
	return b
}

// NumChunks returns the number of chunks needed for size payload bytes.
func NumChunks(size, chunkSize int) int {
	return (size + chunkSize - 1) / chunkSize
}

// Split cuts payload into chunkSize fragments sharing id, in sequence order.
func Split(payload []byte, chunkSize int, id [IDLen]byte) ([]Chunk, error) {
	if chunkSize <= 0 {
		return nil, errors.Errorf("invalid chunk size %d", chunkSize)
	}
	total := NumChunks(len(payload), chunkSize)
	if total > MaxChunks {
		return nil, errors.Wrapf(ErrTooManyChunks, "%d bytes in %d byte chunks need %d", len(payload), chunkSize, total)
	}
	chunks := make([]Chunk, 0, total)
	for seq := 0; seq < total; seq++ {
		end := (seq + 1) * chunkSize
		if end > len(payload) {
			end = len(payload)
		}
		chunks = append(chunks, Chunk{
			ID:    id,
			Seq:   uint8(seq),
			Total: uint8(total),
			Data:  payload[seq*chunkSize : end],
		})
	}
	return chunks, nil
}
