// Package verifier is the deterministic storage verifier's public
// facade: two entry points invoked by the replica runtime at
// compaction half-measure boundaries and at checkpoint events.
package verifier

import (
	"github.com/matklad/tigerbeetle-filter-repo/pkg/areacheck"
	"github.com/matklad/tigerbeetle-filter-repo/pkg/freeset"
	"github.com/matklad/tigerbeetle-filter-repo/pkg/storagesim"
)

// Verifier is owned by exactly one simulation, not one replica. It is
// not internally synchronized; correct use requires the simulator to
// invoke its entry points from a single goroutine. Adding a mutex here
// would hide concurrent-access bugs rather than prevent them.
type Verifier struct {
	compactions *CompactionLog
	checkpoints *CheckpointLog
	freeSet     *freeset.FreeSet
	policy      areacheck.ManifestLogPolicy
}

func New(gridBlocksMax uint64) (*Verifier, error) {
	if gridBlocksMax == 0 {
		return nil, ErrInvalidCapacity
	}
	return &Verifier{
		compactions: NewCompactionLog(),
		checkpoints: NewCheckpointLog(),
		freeSet:     freeset.New(gridBlocksMax),
		policy:      areacheck.ManifestLogSkipUnwritten,
	}, nil
}

func (v *Verifier) Close() {
	v.compactions = nil
	v.checkpoints = nil
	v.freeSet = nil
}

// index is caller-supplied (the replica's own half-measure counter) so
// the same index names the same logical point across every replica.
func (v *Verifier) OnCompactionHalfMeasure(
	index uint64,
	storage storagesim.Storage,
	sb storagesim.Superblock,
	schema storagesim.Schema,
) error {
	observed := areacheck.Grid(storage, sb, schema, v.freeSet, v.policy, assertf)
	if mismatch := v.compactions.Observe(index, observed); mismatch != nil {
		return &StorageMismatch{Op: index, Mismatches: []AreaMismatch{*mismatch}}
	}
	return nil
}

func (v *Verifier) OnCheckpoint(
	storage storagesim.Storage,
	sb storagesim.Superblock,
	schema storagesim.Schema,
) error {
	op := sb.CommitMin()
	syncing := sb.SyncOpMax() != 0

	var record CheckpointRecord
	record.set(AreaSuperblockManifest, areacheck.Trailer(storage, sb, storagesim.TrailerManifest, assertf))
	record.set(AreaSuperblockFreeSet, areacheck.Trailer(storage, sb, storagesim.TrailerFreeSet, assertf))
	record.set(AreaSuperblockClientSessions, areacheck.Trailer(storage, sb, storagesim.TrailerClientSessions, assertf))

	if !syncing {
		record.set(AreaClientReplies, areacheck.ClientReplies(storage, sb, assertf))
		record.set(AreaGrid, areacheck.Grid(storage, sb, schema, v.freeSet, v.policy, assertf))
	}

	mismatches := v.checkpoints.Observe(op, record, !syncing)
	if len(mismatches) > 0 {
		return &StorageMismatch{Op: op, Mismatches: mismatches}
	}
	return nil
}
