package binary

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReader(data []byte) *SafeReader {
	return NewSafeReader(bytes.NewReader(data), int64(len(data)), "test.db")
}

func TestRead_LittleEndian(t *testing.T) {
	sr := newReader([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08})

	v8, err := Read[uint8](sr, 0, "u8")
	require.NoError(t, err)
	assert.Equal(t, uint8(0x01), v8)

	v16, err := Read[uint16](sr, 0, "u16")
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0201), v16)

	v32, err := Read[uint32](sr, 4, "u32")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x08070605), v32)

	v64, err := Read[uint64](sr, 0, "u64")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0807060504030201), v64)
}

func TestRead_OutOfBounds(t *testing.T) {
	sr := newReader([]byte{0x01, 0x02, 0x03})

	_, err := Read[uint32](sr, 0, "track count")
	require.Error(t, err)

	var oob *OutOfBoundsError
	require.True(t, errors.As(err, &oob))
	assert.Equal(t, "test.db", oob.Path)
	assert.Equal(t, "track count", oob.What)
	assert.Contains(t, err.Error(), "would exceed file size 3")

	_, err = Read[uint8](sr, 10, "past end")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offset 10 out of bounds")

	_, err = Read[uint8](sr, -1, "negative")
	assert.Error(t, err)
}

func TestReadUpTo_ClampsToFileEnd(t *testing.T) {
	sr := newReader([]byte("abcdef"))

	buf, err := sr.ReadUpTo(2, 100, "payload")
	require.NoError(t, err)
	assert.Equal(t, []byte("cdef"), buf)

	buf, err = sr.ReadUpTo(0, 0, "empty")
	require.NoError(t, err)
	assert.Nil(t, buf)

	_, err = sr.ReadUpTo(6, 4, "at end")
	assert.Error(t, err)
}

func TestField(t *testing.T) {
	buf := []byte{0xAA, 0x10, 0x00, 0x00, 0x00, 0x20}

	assert.Equal(t, uint8(0xAA), Field[uint8](buf, 0))
	assert.Equal(t, uint32(0x10), Field[uint32](buf, 1))
	assert.Equal(t, uint16(0x2000), Field[uint16](buf, 4))

	// Fields that run past the buffer stay zero.
	assert.Equal(t, uint32(0), Field[uint32](buf, 4))
	assert.Equal(t, uint16(0), Field[uint16](buf, 5))
	assert.Equal(t, uint8(0), Field[uint8](buf, -1))
}

func TestClamp(t *testing.T) {
	sr := newReader(make([]byte, 10))
	assert.Equal(t, int64(0), sr.Clamp(-5))
	assert.Equal(t, int64(7), sr.Clamp(7))
	assert.Equal(t, int64(10), sr.Clamp(99))
	assert.Equal(t, int64(10), sr.Size())
	assert.Equal(t, "test.db", sr.Path())
}
