package runtime

import (
	"encoding/binary"
	"fmt"
)

// EncodeWire implements the cosim bridge's wire format: a port's value
// is u32-packed little-endian, prefixed with an int(bitwidth) word, the
// same little-endian uint32 payload shape used to carry a port value
// across an akita connection, generalised here to an arbitrary bitwidth
// value split across as many u32 words as needed.
func EncodeWire(bitwidth int, value []uint32) []byte {
	out := make([]byte, 4+4*len(value))
	binary.LittleEndian.PutUint32(out[:4], uint32(bitwidth))
	for i, w := range value {
		binary.LittleEndian.PutUint32(out[4+4*i:8+4*i], w)
	}
	return out
}

// DecodeWire reverses EncodeWire: it reads the leading bitwidth word,
// then splits the remainder into little-endian uint32 words.
func DecodeWire(data []byte) (bitwidth int, value []uint32, err error) {
	if len(data) < 4 {
		return 0, nil, fmt.Errorf("runtime: wire data too short: %d bytes", len(data))
	}
	bitwidth = int(binary.LittleEndian.Uint32(data[:4]))
	rest := data[4:]
	if len(rest)%4 != 0 {
		return 0, nil, fmt.Errorf("runtime: wire payload length %d not a multiple of 4", len(rest))
	}
	value = make([]uint32, len(rest)/4)
	for i := range value {
		value[i] = binary.LittleEndian.Uint32(rest[4*i : 4*i+4])
	}
	return bitwidth, value, nil
}

// WordsForBitwidth returns how many u32 words are needed to carry a
// value of the given bitwidth.
func WordsForBitwidth(bitwidth int) int {
	if bitwidth <= 0 {
		return 0
	}
	return (bitwidth + 31) / 32
}
