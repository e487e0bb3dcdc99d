// Package checksum implements the verifier's content checksum: an
// order-preserving 128-bit accumulator fed byte ranges one at a time.
package checksum

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
)

type Checksum128 struct {
	Lo uint64
	Hi uint64
}

var Zero = Checksum128{}

func (c Checksum128) IsZero() bool {
	return c == Zero
}

func (c Checksum128) Xor(other Checksum128) Checksum128 {
	return Checksum128{Lo: c.Lo ^ other.Lo, Hi: c.Hi ^ other.Hi}
}

func (c Checksum128) Bytes() [16]byte {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:8], c.Lo)
	binary.LittleEndian.PutUint64(b[8:16], c.Hi)
	return b
}

// Add(a); Add(b) differs from Add(b); Add(a) whenever a != b: each call
// first folds its input through a keyed length-mixing digest before
// writing it into the underlying streaming murmur3 hash, so two adds
// with identical bytes at different positions still perturb the final
// checksum differently from a single concatenated add.
type ChecksumStream struct {
	h     murmur3.Hash128
	calls uint64
}

func NewChecksumStream() *ChecksumStream {
	s := &ChecksumStream{}
	s.Init()
	return s
}

func (s *ChecksumStream) Init() {
	s.h = murmur3.New128()
	s.calls = 0
}

func (s *ChecksumStream) Reset() {
	s.Init()
}

func (s *ChecksumStream) Add(b []byte) {
	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], s.calls)

	digest := xxhash.New()
	digest.Write(seed[:])
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(b)))
	digest.Write(lenBuf[:])
	digest.Write(b)

	var mixed [8]byte
	binary.LittleEndian.PutUint64(mixed[:], digest.Sum64())

	s.h.Write(mixed[:])
	s.calls++
}

func (s *ChecksumStream) Checksum() Checksum128 {
	hi, lo := s.h.Sum128()
	return Checksum128{Lo: lo, Hi: hi}
}
