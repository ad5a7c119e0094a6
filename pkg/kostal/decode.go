package kostal

import (
	"fmt"
	"math"
	"strings"
)

// The Plenticore encodes registers big-endian within each 16-bit word, but
// 32-bit quantities carry the low word first.

// DecodeU16 decodes a single-register unsigned value.
func DecodeU16(words []uint16) uint16 {
	return words[0]
}

// DecodeS16 decodes a single-register signed value.
func DecodeS16(words []uint16) int16 {
	return int16(words[0])
}

// DecodeU32 decodes two registers as an unsigned 32-bit value, low word first.
func DecodeU32(words []uint16) uint32 {
	return uint32(words[1])<<16 | uint32(words[0])
}

// DecodeFloat32 decodes two registers as an IEEE-754 float, low word first.
func DecodeFloat32(words []uint16) float32 {
	return math.Float32frombits(DecodeU32(words))
}

// DecodeString decodes N registers as ASCII, two characters per word. NUL
// padding bytes are dropped wherever they occur, as the device pads both
// between and after characters depending on firmware.
func DecodeString(words []uint16) string {
	raw := make([]byte, 0, len(words)*2)
	for _, w := range words {
		hi, lo := byte(w>>8), byte(w)
		if hi != 0 {
			raw = append(raw, hi)
		}
		if lo != 0 {
			raw = append(raw, lo)
		}
	}
	return strings.TrimSpace(string(raw))
}

// EncodeU32 is the inverse of DecodeU32.
func EncodeU32(value uint32) []uint16 {
	return []uint16{uint16(value), uint16(value >> 16)}
}

// EncodeFloat32 is the inverse of DecodeFloat32.
func EncodeFloat32(value float32) []uint16 {
	return EncodeU32(math.Float32bits(value))
}

// Decode converts raw register words into a typed value according to t.
// The word count must match exactly what t spans on the wire.
func Decode(t RegisterType, words []uint16) (any, error) {
	if len(words) != int(t.Count()) {
		return nil, fmt.Errorf("decode %s: got %d words, want %d", t, len(words), t.Count())
	}
	switch t {
	case U8, U16:
		return DecodeU16(words), nil
	case S16:
		return DecodeS16(words), nil
	case U32:
		return DecodeU32(words), nil
	case Float32:
		return DecodeFloat32(words), nil
	case String8, String32:
		return DecodeString(words), nil
	default:
		return nil, fmt.Errorf("decode: data type not known: %s", t)
	}
}
