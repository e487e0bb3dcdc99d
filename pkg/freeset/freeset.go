// Package freeset reconstructs the bitmap of acquired grid-block
// addresses from a serialized superblock free-set trailer.
package freeset

import (
	"encoding/binary"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/xerrors"
)

var ErrCapacity = xerrors.New("freeset: trailer exceeds grid_blocks_max capacity")

// FreeSet is a dense bitmap indexed by grid-block ordinal (zero-based).
// Bit i set means block address i+1 is acquired.
type FreeSet struct {
	bits     *bitset.BitSet
	capacity uint64
}

func New(gridBlocksMax uint64) *FreeSet {
	return &FreeSet{
		bits:     bitset.New(uint(gridBlocksMax)),
		capacity: gridBlocksMax,
	}
}

func (f *FreeSet) Capacity() uint64 {
	return f.capacity
}

// Decode writes directly into the FreeSet's owned word storage; it
// never allocates a new underlying array, so repeated Decode/Reset
// cycles stay allocation free.
func (f *FreeSet) Decode(trailer []byte) error {
	words := f.bits.Bytes()
	needed := (len(trailer) + 7) / 8
	if uint64(needed) > uint64(len(words)) {
		return xerrors.Errorf("%w: trailer needs %d words, capacity is %d", ErrCapacity, needed, len(words))
	}
	for i := range words {
		words[i] = 0
	}
	for i := 0; i < needed; i++ {
		start := i * 8
		end := start + 8
		var buf [8]byte
		if end <= len(trailer) {
			copy(buf[:], trailer[start:end])
		} else {
			copy(buf[:], trailer[start:])
		}
		words[i] = binary.LittleEndian.Uint64(buf[:])
	}
	return nil
}

func (f *FreeSet) Reset() {
	f.bits.ClearAll()
}

func (f *FreeSet) Test(i uint64) bool {
	return f.bits.Test(uint(i))
}

func (f *FreeSet) Count() uint64 {
	return uint64(f.bits.Count())
}

// Each visits set bits in ascending ordinal order, the iteration order
// the grid checksum relies on for reproducibility across replicas.
func (f *FreeSet) Each(fn func(ordinal uint64)) {
	for i, ok := f.bits.NextSet(0); ok; i, ok = f.bits.NextSet(i + 1) {
		fn(uint64(i))
	}
}

// Address converts a bitmap ordinal to its grid block address. Block
// address 0 is reserved; ordinal 0 corresponds to address 1.
func Address(ordinal uint64) uint64 {
	return ordinal + 1
}

func (f *FreeSet) String() string {
	return fmt.Sprintf("FreeSet{capacity=%d, acquired=%d}", f.capacity, f.Count())
}
