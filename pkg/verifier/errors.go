package verifier

import (
	"fmt"
	"strings"

	"golang.org/x/xerrors"

	"github.com/matklad/tigerbeetle-filter-repo/pkg/checksum"
)

var ErrInvalidCapacity = xerrors.New("verifier: grid_blocks_max must be positive")

type AreaMismatch struct {
	Area     CheckpointArea
	Expected checksum.Checksum128
	Actual   checksum.Checksum128
}

// StorageMismatch is the typed divergence error surfaced to the
// replica runtime. Its presence means two replicas reaching the same
// op (or the same compaction half-measure) computed different
// deterministic storage, and the simulation run must be treated as a
// failed test.
type StorageMismatch struct {
	Op         uint64
	Mismatches []AreaMismatch
}

func (e *StorageMismatch) Error() string {
	parts := make([]string, 0, len(e.Mismatches))
	for _, m := range e.Mismatches {
		parts = append(parts, fmt.Sprintf("%s(expected=%v actual=%v)", m.Area, m.Expected, m.Actual))
	}
	return fmt.Sprintf("storage mismatch at op=%d: %s", e.Op, strings.Join(parts, ", "))
}
