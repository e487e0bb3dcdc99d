package freeset

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func encode(acquired []uint64) []byte {
	maxOrdinal := uint64(0)
	for _, o := range acquired {
		if o > maxOrdinal {
			maxOrdinal = o
		}
	}
	words := make([]uint64, maxOrdinal/64+1)
	for _, o := range acquired {
		words[o/64] |= 1 << (o % 64)
	}
	buf := make([]byte, len(words)*8)
	for i, w := range words {
		binary.LittleEndian.PutUint64(buf[i*8:i*8+8], w)
	}
	return buf
}

func TestDecodeThenEachYieldsAscendingOrdinals(t *testing.T) {
	fs := New(1024)
	err := fs.Decode(encode([]uint64{3, 1, 65, 0}))
	assert.NoError(t, err)

	var got []uint64
	fs.Each(func(ordinal uint64) {
		got = append(got, ordinal)
	})
	assert.Equal(t, []uint64{0, 1, 3, 65}, got)
}

func TestEmptyTrailerYieldsEmptyFreeSet(t *testing.T) {
	fs := New(1024)
	err := fs.Decode([]byte{})
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), fs.Count())
}

func TestResetReturnsToInitState(t *testing.T) {
	fs := New(128)
	err := fs.Decode(encode([]uint64{1, 2, 3}))
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), fs.Count())

	fs.Reset()
	assert.Equal(t, uint64(0), fs.Count())

	var got []uint64
	fs.Each(func(ordinal uint64) { got = append(got, ordinal) })
	assert.Empty(t, got)
}

func TestDecodeRejectsOverCapacityTrailer(t *testing.T) {
	fs := New(8) // one 64-bit word of backing storage
	err := fs.Decode(encode([]uint64{0, 70})) // needs a second word
	assert.ErrorIs(t, err, ErrCapacity)
}

func TestAddressIsOrdinalPlusOne(t *testing.T) {
	assert.Equal(t, uint64(1), Address(0))
	assert.Equal(t, uint64(43), Address(42))
}
