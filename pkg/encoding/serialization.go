package encoding

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Serializable is implemented by wire messages that encode themselves to a
// byte slice and reconstitute in place.
type Serializable interface {
	Serialize() ([]byte, error)
	Deserialize([]byte) error
}

// WriteLengthPrefixed writes data to w behind a 4-byte big-endian length
// prefix.
func WriteLengthPrefixed(w io.Writer, data []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("write length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return nil
}

// ReadLengthPrefixed reads one length-prefixed payload from r, rejecting
// lengths above max.
func ReadLengthPrefixed(r io.Reader, max uint32) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("read length: %w", err)
	}
	length := binary.BigEndian.Uint32(lenBuf[:])
	if length > max {
		return nil, fmt.Errorf("payload size %d exceeds limit %d", length, max)
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return data, nil
}
