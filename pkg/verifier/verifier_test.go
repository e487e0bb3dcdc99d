package verifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matklad/tigerbeetle-filter-repo/pkg/simfake"
	"github.com/matklad/tigerbeetle-filter-repo/pkg/storagesim"
	"github.com/matklad/tigerbeetle-filter-repo/pkg/verifier"
)

type replica struct {
	storage *simfake.Storage
	sb      *simfake.Superblock
	schema  simfake.Schema
}

func newReplica(op uint64, syncOpMax uint64) *replica {
	storage := simfake.NewStorage(1 << 20)
	sb := simfake.NewSuperblock(3)
	sb.SetCommitMin(op)
	sb.SetSyncOpMax(syncOpMax)

	manifest := []byte("manifest-bytes-for-this-checkpoint")
	sessions := []byte("client-sessions-bytes")
	for _, off := range []uint64{0, 4096, 8192} {
		storage.WriteMemory(off, manifest)
	}
	sb.SetTrailer(storagesim.TrailerManifest, uint32(len(manifest)), simfake.HashBytes(manifest), []uint64{0, 4096, 8192})
	for _, off := range []uint64{16384, 20480, 24576} {
		storage.WriteMemory(off, sessions)
	}
	sb.SetTrailer(storagesim.TrailerClientSessions, uint32(len(sessions)), simfake.HashBytes(sessions), []uint64{16384, 20480, 24576})

	freeSetOffsets := []uint64{32768, 36864, 40960}
	trailer := simfake.EncodeFreeSet([]uint64{0, 1})
	for _, off := range freeSetOffsets {
		storage.WriteMemory(off, trailer)
	}
	sb.SetTrailer(storagesim.TrailerFreeSet, uint32(len(trailer)), simfake.HashBytes(trailer), freeSetOffsets)
	sb.SetFreeSet(freeSetOffsets[0], uint32(len(trailer)), simfake.HashBytes(trailer))

	storage.PutBlock(1, []byte("grid-block-one"))
	storage.PutBlock(2, []byte("grid-block-two"))

	storage.PutClientReply(0, []byte("a-reply"))
	sb.SetClientSessionSlots([]storagesim.ClientSessionSlot{
		{SessionID: 7, HeaderSize: storagesim.HeaderOnlySize + 7, HeaderCommand: storagesim.CommandReply},
	})

	return &replica{storage: storage, sb: sb, schema: simfake.Schema{}}
}

func TestTwoReplicasMatchingCheckpoints(t *testing.T) {
	v, err := verifier.New(1024)
	assert.NoError(t, err)

	a := newReplica(1024, 0)
	b := newReplica(1024, 0)

	assert.NoError(t, v.OnCheckpoint(a.storage, a.sb, a.schema))
	assert.NoError(t, v.OnCheckpoint(b.storage, b.sb, b.schema))
}

func TestDivergentManifestTrailerReported(t *testing.T) {
	v, err := verifier.New(1024)
	assert.NoError(t, err)

	a := newReplica(1024, 0)
	b := newReplica(1024, 0)
	differentManifest := []byte("manifest-bytes-for-this-checkpoinT")
	for _, off := range []uint64{0, 4096, 8192} {
		b.storage.WriteMemory(off, differentManifest)
	}
	b.sb.SetTrailer(storagesim.TrailerManifest, uint32(len(differentManifest)), simfake.HashBytes(differentManifest), []uint64{0, 4096, 8192})

	assert.NoError(t, v.OnCheckpoint(a.storage, a.sb, a.schema))

	err = v.OnCheckpoint(b.storage, b.sb, b.schema)
	assert.Error(t, err)
	mismatch, ok := err.(*verifier.StorageMismatch)
	assert.True(t, ok)
	assert.Len(t, mismatch.Mismatches, 1)
	assert.Equal(t, "superblock_manifest", mismatch.Mismatches[0].Area.String())
}

// A syncing replica's checkpoint observation creates no log entry; a
// later non-syncing replica at the same op successfully inserts it.
func TestSyncingReplicaObservedFirst(t *testing.T) {
	v, err := verifier.New(1024)
	assert.NoError(t, err)

	b := newReplica(2048, 1500)
	assert.NoError(t, v.OnCheckpoint(b.storage, b.sb, b.schema))

	a := newReplica(2048, 0)
	assert.NoError(t, v.OnCheckpoint(a.storage, a.sb, a.schema))
}

// A grid block the free-set marks acquired but storage cannot resolve
// aborts with an internal assertion, not a divergence error.
func TestMissingGridBlockPanics(t *testing.T) {
	v, err := verifier.New(1024)
	assert.NoError(t, err)

	a := newReplica(1024, 0)
	a.storage.RemoveBlock(2)

	assert.Panics(t, func() {
		_ = v.OnCheckpoint(a.storage, a.sb, a.schema)
	})
}

// Three replicas match at half-measure 0, then one diverges at
// half-measure 1.
func TestCompactionHalfMeasureMatchThenMismatch(t *testing.T) {
	v, err := verifier.New(1024)
	assert.NoError(t, err)

	repA := newReplica(0, 0)
	repB := newReplica(0, 0)
	repC := newReplica(0, 0)

	assert.NoError(t, v.OnCompactionHalfMeasure(0, repA.storage, repA.sb, repA.schema))
	assert.NoError(t, v.OnCompactionHalfMeasure(0, repB.storage, repB.sb, repB.schema))
	assert.NoError(t, v.OnCompactionHalfMeasure(0, repC.storage, repC.sb, repC.schema))

	repC.storage.PutBlock(1, []byte("grid-block-one-but-different"))

	assert.NoError(t, v.OnCompactionHalfMeasure(1, repA.storage, repA.sb, repA.schema))
	assert.NoError(t, v.OnCompactionHalfMeasure(1, repB.storage, repB.sb, repB.schema))
	err = v.OnCompactionHalfMeasure(1, repC.storage, repC.sb, repC.schema)
	assert.Error(t, err)
	_, ok := err.(*verifier.StorageMismatch)
	assert.True(t, ok)
}

// Empty client-replies on both replicas. The XOR checksum is zero and
// the checkpoint comparison passes trivially.
func TestEmptyClientReplies(t *testing.T) {
	v, err := verifier.New(1024)
	assert.NoError(t, err)

	a := newReplica(4096, 0)
	a.sb.SetClientSessionSlots(nil)
	b := newReplica(4096, 0)
	b.sb.SetClientSessionSlots(nil)

	assert.NoError(t, v.OnCheckpoint(a.storage, a.sb, a.schema))
	assert.NoError(t, v.OnCheckpoint(b.storage, b.sb, b.schema))
}

func TestNewRejectsZeroCapacity(t *testing.T) {
	_, err := verifier.New(0)
	assert.ErrorIs(t, err, verifier.ErrInvalidCapacity)
}
