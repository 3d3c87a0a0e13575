package peripheral

import (
	"encoding/binary"
	"fmt"
)

// ValueSize is the wire size of one encoded sensor value.
const ValueSize = 4

// EncodeValue encodes a sensor reading as a 4-byte little-endian signed
// integer. The value is truncated to an integer first; fractional sensor
// precision is not transmitted.
func EncodeValue(v float64) []byte {
	buf := make([]byte, ValueSize)
	binary.LittleEndian.PutUint32(buf, uint32(int32(v)))
	return buf
}

// DecodeValue decodes a 4-byte little-endian signed integer.
func DecodeValue(b []byte) (int32, error) {
	if len(b) != ValueSize {
		return 0, fmt.Errorf("value is %d bytes, want %d", len(b), ValueSize)
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// ClearValue returns the command channel's cleared state: a 4-byte
// little-endian zero.
func ClearValue() []byte {
	return make([]byte, ValueSize)
}
