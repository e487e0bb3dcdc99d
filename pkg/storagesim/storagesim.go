// Package storagesim declares the read-only contracts the verifier
// consumes from its external collaborators: the simulated block
// device, the superblock, and the LSM schema module. None of these are
// implemented here. See pkg/simfake for the in-memory fakes used by
// this module's own tests.
package storagesim

import "github.com/matklad/tigerbeetle-filter-repo/pkg/checksum"

type TrailerArea int

const (
	TrailerManifest TrailerArea = iota
	TrailerFreeSet
	TrailerClientSessions
)

func (a TrailerArea) String() string {
	switch a {
	case TrailerManifest:
		return "superblock_manifest"
	case TrailerFreeSet:
		return "superblock_free_set"
	case TrailerClientSessions:
		return "superblock_client_sessions"
	default:
		return "unknown_trailer_area"
	}
}

type ClientSessionSlot struct {
	SessionID uint64
	// HeaderSize is the reply header's declared size; equal to
	// HeaderOnlySize when the slot has no materialized payload.
	HeaderSize uint32
	// HeaderCommand must be CommandReply whenever SessionID != 0.
	HeaderCommand Command
}

type Command int

const (
	CommandReply Command = iota
	CommandOther
)

// HeaderOnlySize is the wire size of a reply header with no payload.
const HeaderOnlySize = 128

type BlockHeader struct {
	Op   uint64
	Size uint32
}

type Storage interface {
	Memory(offset, length uint64) []byte
	GridBlock(address uint64) (block []byte, ok bool)
	ClientReplySlot(slot uint32) []byte
}

type Superblock interface {
	CommitMin() uint64
	SyncOpMax() uint64
	SuperblockCopies() int
	TrailerSize(area TrailerArea) uint32
	TrailerChecksum(area TrailerArea) checksum.Checksum128
	// TrailerOffset returns the byte offset of area's copy-th
	// redundant on-device replica.
	TrailerOffset(area TrailerArea, copy int) uint64
	FreeSetSize() uint32
	FreeSetChecksum() checksum.Checksum128
	FreeSetOffset() uint64
	ClientSessionSlots() []ClientSessionSlot
}

type Schema interface {
	HeaderFromBlock(block []byte) (BlockHeader, error)
}
