package verifier

import (
	"github.com/rs/zerolog/log"

	"github.com/matklad/tigerbeetle-filter-repo/pkg/checksum"
)

// CompactionLog is first-writer-wins, keyed by half-measure index
// instead of checkpoint op, functionally equivalent to a
// positionally-indexed append-only slice under the simulator's
// deterministic scheduler.
type CompactionLog struct {
	entries map[uint64]checksum.Checksum128
}

func NewCompactionLog() *CompactionLog {
	return &CompactionLog{entries: make(map[uint64]checksum.Checksum128)}
}

func (l *CompactionLog) Observe(index uint64, observed checksum.Checksum128) *AreaMismatch {
	recorded, present := l.entries[index]
	if !present {
		l.entries[index] = observed
		return nil
	}
	if recorded == observed {
		return nil
	}
	log.Warn().
		Uint64("half_measure", index).
		Str("expected", fmtChecksum(recorded)).
		Str("actual", fmtChecksum(observed)).
		Msg("compaction half-measure grid checksum mismatch")
	return &AreaMismatch{Area: AreaGrid, Expected: recorded, Actual: observed}
}

func (l *CompactionLog) Len() int {
	return len(l.entries)
}
