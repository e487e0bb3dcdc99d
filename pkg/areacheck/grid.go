package areacheck

import (
	"github.com/rs/zerolog/log"

	"github.com/matklad/tigerbeetle-filter-repo/pkg/checksum"
	"github.com/matklad/tigerbeetle-filter-repo/pkg/freeset"
	"github.com/matklad/tigerbeetle-filter-repo/pkg/storagesim"
)

// ManifestLogPolicy selects how Grid handles blocks the free-set marks
// acquired but whose on-disk header has not settled yet: the
// manifest-log subsystem may acquire a block several beats before the
// block itself is written. ManifestLogSkipUnwritten is the only policy
// this module supports; a block that fails to round-trip its header
// (op equal to its address, sector-rounded size within the block) is
// excluded from the checksum rather than raising a missing-block
// assertion.
type ManifestLogPolicy int

const (
	ManifestLogSkipUnwritten ManifestLogPolicy = iota
)

// Grid computes the checksum of every grid block the free-set trailer
// marks acquired, feeding the blocks into one order-sensitive
// ChecksumStream in ascending address order. fs is the verifier's owned, reusable
// FreeSet buffer; Grid decodes into it, iterates it in ascending
// ordinal order, and resets it before returning.
func Grid(
	storage storagesim.Storage,
	sb storagesim.Superblock,
	schema storagesim.Schema,
	fs *freeset.FreeSet,
	policy ManifestLogPolicy,
	assertf AssertFunc,
) checksum.Checksum128 {
	trailer := storage.Memory(sb.FreeSetOffset(), uint64(sb.FreeSetSize()))
	trailerSum := hashBytes(trailer)
	assertf(trailerSum == sb.FreeSetChecksum(),
		"free-set trailer checksum mismatch within one replica: expected=%v actual=%v",
		sb.FreeSetChecksum(), trailerSum)

	err := fs.Decode(trailer)
	assertf(err == nil, "free-set decode failed: %v", err)

	stream := checksum.NewChecksumStream()
	blocksMissing := 0

	fs.Each(func(ordinal uint64) {
		address := freeset.Address(ordinal)
		block, ok := storage.GridBlock(address)
		if !ok {
			log.Warn().Uint64("address", address).Msg("grid block acquired but missing from storage")
			blocksMissing++
			return
		}

		header, err := schema.HeaderFromBlock(block)
		if err != nil || header.Op != address || SectorCeil(uint64(header.Size)) > uint64(len(block)) {
			return
		}

		size := uint64(header.Size)
		stream.Add(block[:size])

		var addrBuf [8]byte
		for i := 0; i < 8; i++ {
			addrBuf[i] = byte(address >> (8 * i))
		}
		stream.Add(addrBuf[:])

		padded := SectorCeil(size)
		assertf(allZero(block[size:padded]),
			"grid block padding not zero: address=%d size=%d", address, size)
	})

	assertf(blocksMissing == 0, "%d acquired grid blocks missing from storage", blocksMissing)

	fs.Reset()
	return stream.Checksum()
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
