// Package simfake provides minimal, deterministic in-memory fakes of
// the verifier's external collaborators for this module's own tests.
// It is not a production storage engine.
package simfake

import (
	"encoding/binary"

	"github.com/matklad/tigerbeetle-filter-repo/pkg/areacheck"
	"github.com/matklad/tigerbeetle-filter-repo/pkg/checksum"
	"github.com/matklad/tigerbeetle-filter-repo/pkg/storagesim"
)

const blockSize = 8192

type Storage struct {
	memory  []byte
	blocks  map[uint64][]byte
	replies map[uint32][]byte
}

func NewStorage(memorySize int) *Storage {
	return &Storage{
		memory:  make([]byte, memorySize),
		blocks:  make(map[uint64][]byte),
		replies: make(map[uint32][]byte),
	}
}

func (s *Storage) Memory(offset, length uint64) []byte {
	return s.memory[offset : offset+length]
}

func (s *Storage) GridBlock(address uint64) ([]byte, bool) {
	b, ok := s.blocks[address]
	return b, ok
}

func (s *Storage) ClientReplySlot(slot uint32) []byte {
	return s.replies[slot]
}

// PutBlock encodes a minimal header compatible with Schema.HeaderFromBlock
// below: an 8-byte little-endian op followed by a 4-byte little-endian
// size, padding the rest of the block with zero up to blockSize.
func (s *Storage) PutBlock(address uint64, payload []byte) {
	block := make([]byte, blockSize)
	binary.LittleEndian.PutUint64(block[0:8], address)
	binary.LittleEndian.PutUint32(block[8:12], uint32(len(payload)+headerSize))
	copy(block[headerSize:], payload)
	s.blocks[address] = block
}

func (s *Storage) RemoveBlock(address uint64) {
	delete(s.blocks, address)
}

func (s *Storage) PutClientReply(slot uint32, payload []byte) {
	buf := make([]byte, areacheck.SectorCeil(uint64(len(payload))))
	copy(buf, payload)
	s.replies[slot] = buf
}

func (s *Storage) WriteMemory(offset uint64, data []byte) {
	copy(s.memory[offset:], data)
}

const headerSize = 12

type Schema struct{}

func (Schema) HeaderFromBlock(block []byte) (storagesim.BlockHeader, error) {
	op := binary.LittleEndian.Uint64(block[0:8])
	size := binary.LittleEndian.Uint32(block[8:12])
	return storagesim.BlockHeader{Op: op, Size: size}, nil
}

type Superblock struct {
	commitMin  uint64
	syncOpMax  uint64
	copies     int
	trailers   map[storagesim.TrailerArea]trailerMeta
	freeSetOff uint64
	freeSetSz  uint32
	freeSetSum checksum.Checksum128
	sessions   []storagesim.ClientSessionSlot
}

type trailerMeta struct {
	size    uint32
	sum     checksum.Checksum128
	offsets []uint64
}

func NewSuperblock(copies int) *Superblock {
	return &Superblock{
		copies:   copies,
		trailers: make(map[storagesim.TrailerArea]trailerMeta),
	}
}

func (s *Superblock) SetCommitMin(op uint64) { s.commitMin = op }
func (s *Superblock) SetSyncOpMax(op uint64) { s.syncOpMax = op }
func (s *Superblock) CommitMin() uint64      { return s.commitMin }
func (s *Superblock) SyncOpMax() uint64      { return s.syncOpMax }
func (s *Superblock) SuperblockCopies() int  { return s.copies }

func (s *Superblock) SetTrailer(area storagesim.TrailerArea, size uint32, sum checksum.Checksum128, offsets []uint64) {
	s.trailers[area] = trailerMeta{size: size, sum: sum, offsets: offsets}
}

func (s *Superblock) TrailerSize(area storagesim.TrailerArea) uint32 {
	return s.trailers[area].size
}

func (s *Superblock) TrailerChecksum(area storagesim.TrailerArea) checksum.Checksum128 {
	return s.trailers[area].sum
}

func (s *Superblock) TrailerOffset(area storagesim.TrailerArea, copy int) uint64 {
	return s.trailers[area].offsets[copy]
}

func (s *Superblock) SetFreeSet(offset uint64, size uint32, sum checksum.Checksum128) {
	s.freeSetOff, s.freeSetSz, s.freeSetSum = offset, size, sum
}

func (s *Superblock) FreeSetSize() uint32 { return s.freeSetSz }

func (s *Superblock) FreeSetChecksum() checksum.Checksum128 { return s.freeSetSum }

func (s *Superblock) FreeSetOffset() uint64 { return s.freeSetOff }

func (s *Superblock) SetClientSessionSlots(slots []storagesim.ClientSessionSlot) {
	s.sessions = slots
}

func (s *Superblock) ClientSessionSlots() []storagesim.ClientSessionSlot {
	return s.sessions
}

// EncodeFreeSet serializes a set of acquired ordinals into the
// little-endian word trailer format pkg/freeset.FreeSet.Decode expects.
func EncodeFreeSet(acquiredOrdinals []uint64) []byte {
	maxOrdinal := uint64(0)
	for _, o := range acquiredOrdinals {
		if o > maxOrdinal {
			maxOrdinal = o
		}
	}
	words := make([]uint64, maxOrdinal/64+1)
	for _, o := range acquiredOrdinals {
		words[o/64] |= 1 << (o % 64)
	}
	buf := make([]byte, len(words)*8)
	for i, w := range words {
		binary.LittleEndian.PutUint64(buf[i*8:i*8+8], w)
	}
	return buf
}

func HashBytes(b []byte) checksum.Checksum128 {
	s := checksum.NewChecksumStream()
	s.Add(b)
	return s.Checksum()
}
