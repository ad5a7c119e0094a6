package kostal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// golden vectors: word sequences as the Plenticore puts them on the wire
// (big-endian bytes, low word first for 32-bit values)

func TestDecodeU16(t *testing.T) {
	assert.Equal(t, uint16(0), DecodeU16([]uint16{0}))
	assert.Equal(t, uint16(6), DecodeU16([]uint16{6}))
	assert.Equal(t, uint16(65535), DecodeU16([]uint16{0xFFFF}))
}

func TestDecodeS16(t *testing.T) {
	assert.Equal(t, int16(0), DecodeS16([]uint16{0}))
	assert.Equal(t, int16(4470), DecodeS16([]uint16{4470}))
	assert.Equal(t, int16(-1), DecodeS16([]uint16{0xFFFF}))
	assert.Equal(t, int16(-312), DecodeS16([]uint16{0xFEC8}))
}

func TestDecodeU32(t *testing.T) {
	// 0x00012345 arrives as [0x2345, 0x0001]
	assert.Equal(t, uint32(0x00012345), DecodeU32([]uint16{0x2345, 0x0001}))
	assert.Equal(t, uint32(0), DecodeU32([]uint16{0, 0}))
	assert.Equal(t, uint32(0xFFFFFFFF), DecodeU32([]uint16{0xFFFF, 0xFFFF}))
}

func TestDecodeFloat32(t *testing.T) {
	// 100.0 = 0x42C80000, low word first
	assert.Equal(t, float32(100.0), DecodeFloat32([]uint16{0x0000, 0x42C8}))
	// 50.02 Hz-ish value
	assert.InDelta(t, 50.02, DecodeFloat32([]uint16{0x147B, 0x4248}), 0.001)
	// -1.5 = 0xBFC00000
	assert.Equal(t, float32(-1.5), DecodeFloat32([]uint16{0x0000, 0xBFC0}))
	assert.Equal(t, float32(0), DecodeFloat32([]uint16{0, 0}))
}

func TestDecodeString(t *testing.T) {
	// "PLENTICORE" padded with NULs over 8 registers
	words := []uint16{0x504C, 0x454E, 0x5449, 0x434F, 0x5245, 0x0000, 0x0000, 0x0000}
	assert.Equal(t, "PLENTICORE", DecodeString(words))

	// NUL between characters is dropped too
	assert.Equal(t, "BYD", DecodeString([]uint16{0x4259, 0x0044}))

	// surrounding whitespace is trimmed
	assert.Equal(t, "10", DecodeString([]uint16{0x2031, 0x3020}))

	assert.Equal(t, "", DecodeString([]uint16{0, 0, 0, 0}))
}

func TestFloat32RoundTrip(t *testing.T) {
	for _, v := range []float32{0, 1, -1, 100, 4507.3, -572.45, 0.001, math.MaxFloat32} {
		assert.Equal(t, v, DecodeFloat32(EncodeFloat32(v)), "value %f", v)
	}
}

func TestU32RoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 0xFFFF, 0x10000, 0xDEADBEEF, 0xFFFFFFFF} {
		assert.Equal(t, v, DecodeU32(EncodeU32(v)), "value %d", v)
	}
}

func TestEncodeWordOrder(t *testing.T) {
	// low word must come first
	assert.Equal(t, []uint16{0x0000, 0x42C8}, EncodeFloat32(100.0))
	assert.Equal(t, []uint16{0x2345, 0x0001}, EncodeU32(0x00012345))
}

func TestDecodeDispatch(t *testing.T) {
	require := require.New(t)

	v, err := Decode(U16, []uint16{56})
	require.NoError(err)
	require.Equal(uint16(56), v)

	v, err = Decode(S16, []uint16{0xFFFF})
	require.NoError(err)
	require.Equal(int16(-1), v)

	v, err = Decode(Float32, []uint16{0x0000, 0x42C8})
	require.NoError(err)
	require.Equal(float32(100.0), v)

	v, err = Decode(String8, []uint16{0x504C, 0, 0, 0, 0, 0, 0, 0})
	require.NoError(err)
	require.Equal("PL", v)
}

func TestDecodeWordCountMismatch(t *testing.T) {
	_, err := Decode(Float32, []uint16{0x42C8})
	assert.Error(t, err)

	_, err = Decode(U16, []uint16{1, 2})
	assert.Error(t, err)

	_, err = Decode(String8, []uint16{1, 2, 3})
	assert.Error(t, err)
}
