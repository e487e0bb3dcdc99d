package areacheck

import (
	"github.com/matklad/tigerbeetle-filter-repo/pkg/checksum"
	"github.com/matklad/tigerbeetle-filter-repo/pkg/storagesim"
)

// Precondition: the replica is not mid-sync (sb.SyncOpMax() == 0).
// Callers must check this before calling, as the checksum is only
// deterministic across replicas under that precondition.
func ClientReplies(storage storagesim.Storage, sb storagesim.Superblock, assertf AssertFunc) checksum.Checksum128 {
	acc := checksum.Zero
	for slot, session := range sb.ClientSessionSlots() {
		if session.SessionID == 0 {
			continue
		}
		assertf(session.HeaderCommand == storagesim.CommandReply,
			"client-session slot %d has non-reply header for session %d", slot, session.SessionID)
		if session.HeaderSize == storagesim.HeaderOnlySize {
			continue
		}
		size := SectorCeil(uint64(session.HeaderSize))
		bytes := storage.ClientReplySlot(uint32(slot))
		acc = acc.Xor(hashBytes(bytes[:size]))
	}
	return acc
}
