package verifier

import (
	"encoding/binary"
	"encoding/hex"

	"4d63.com/optional"
	"github.com/rs/zerolog/log"

	"github.com/matklad/tigerbeetle-filter-repo/pkg/checksum"
)

// CheckpointArea is the closed, five-member set of areas a checkpoint
// record can carry a checksum for. Adding a sixth area is a local
// change to this enum and String; forEachArea and CheckpointRecord
// size themselves from numCheckpointAreas.
type CheckpointArea int

const (
	AreaSuperblockManifest CheckpointArea = iota
	AreaSuperblockFreeSet
	AreaSuperblockClientSessions
	AreaClientReplies
	AreaGrid
	numCheckpointAreas
)

func (a CheckpointArea) String() string {
	switch a {
	case AreaSuperblockManifest:
		return "superblock_manifest"
	case AreaSuperblockFreeSet:
		return "superblock_free_set"
	case AreaSuperblockClientSessions:
		return "superblock_client_sessions"
	case AreaClientReplies:
		return "client_replies"
	case AreaGrid:
		return "grid"
	default:
		return "unknown_checkpoint_area"
	}
}

// superblock_manifest, superblock_free_set and superblock_client_sessions
// are always present; client_replies and grid are present only when the
// observing replica was not mid-sync.
type CheckpointRecord struct {
	areas [numCheckpointAreas]optional.Optional[checksum.Checksum128]
}

func (r CheckpointRecord) Get(area CheckpointArea) optional.Optional[checksum.Checksum128] {
	return r.areas[area]
}

func (r *CheckpointRecord) set(area CheckpointArea, v checksum.Checksum128) {
	r.areas[area] = optional.Of(v)
}

func forEachArea(fn func(CheckpointArea)) {
	for a := CheckpointArea(0); a < numCheckpointAreas; a++ {
		fn(a)
	}
}

// CheckpointLog is first-writer-wins: an op is inserted at most once;
// subsequent observations at the same op are compared against the
// recorded record, never overwritten.
type CheckpointLog struct {
	records map[uint64]CheckpointRecord
}

func NewCheckpointLog() *CheckpointLog {
	return &CheckpointLog{records: make(map[uint64]CheckpointRecord)}
}

// If op is absent from the log, the observation is inserted only when
// complete (every area has a value, i.e. the observing replica was not
// mid-sync). A syncing replica's observation is simply dropped
// otherwise, since it has no deterministic claim on any area yet.
func (l *CheckpointLog) Observe(op uint64, observation CheckpointRecord, complete bool) []AreaMismatch {
	record, present := l.records[op]
	if !present {
		if complete {
			l.records[op] = observation
		}
		return nil
	}

	var mismatches []AreaMismatch
	forEachArea(func(area CheckpointArea) {
		recorded, recordedOk := record.Get(area).Get()
		observed, observedOk := observation.Get(area).Get()
		if !recordedOk || !observedOk {
			return
		}
		if recorded != observed {
			log.Warn().
				Uint64("op", op).
				Stringer("area", area).
				Str("expected", fmtChecksum(recorded)).
				Str("actual", fmtChecksum(observed)).
				Msg("checkpoint area mismatch")
			mismatches = append(mismatches, AreaMismatch{
				Area:     area,
				Expected: recorded,
				Actual:   observed,
			})
		}
	})
	return mismatches
}

func fmtChecksum(c checksum.Checksum128) string {
	return hex.EncodeToString(append(bytesOf(c.Hi), bytesOf(c.Lo)...))
}

func bytesOf(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}
