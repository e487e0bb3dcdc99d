// Package areacheck implements the verifier's area checksum functions:
// superblock trailers, client replies, and the acquired grid-block set
// (shared by both checkpoints and compaction half-measures).
package areacheck

import (
	"github.com/matklad/tigerbeetle-filter-repo/pkg/checksum"
	"github.com/matklad/tigerbeetle-filter-repo/pkg/storagesim"
)

// AssertFunc mirrors pkg/verifier's internal-assertion panic. It is
// injected rather than imported directly so this package stays free
// of a dependency on pkg/verifier.
type AssertFunc func(cond bool, format string, args ...interface{})

// A mismatching copy is an internal assertion failure, never a
// returned error: by the time the verifier runs, the superblock has
// already validated itself.
func Trailer(storage storagesim.Storage, sb storagesim.Superblock, area storagesim.TrailerArea, assertf AssertFunc) checksum.Checksum128 {
	size := sb.TrailerSize(area)
	expected := sb.TrailerChecksum(area)
	for copy := 0; copy < sb.SuperblockCopies(); copy++ {
		offset := sb.TrailerOffset(area, copy)
		bytes := storage.Memory(offset, uint64(size))
		actual := hashBytes(bytes)
		assertf(actual == expected,
			"trailer checksum mismatch within one replica: area=%s copy=%d expected=%v actual=%v",
			area, copy, expected, actual)
	}
	return expected
}

func hashBytes(b []byte) checksum.Checksum128 {
	s := checksum.NewChecksumStream()
	s.Add(b)
	return s.Checksum()
}
