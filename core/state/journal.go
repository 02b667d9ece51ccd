package state

import (
	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/core/types"
)

// journalEntry is one reversible mutation. Reverting replays entries LIFO
// so a partial rollback undoes exactly what it applied, in reverse order.
type journalEntry interface {
	revert(s *StateDB)
}

// journal is the checkpointed write-ahead log backing StateDB's
// Snapshot/RevertToSnapshot pair: a log of (address-or-slot,
// previous-value) entries, with snapshot/revertTo operating on journal
// offsets.
type journal struct {
	entries []journalEntry
}

func newJournal() *journal { return &journal{} }

func (j *journal) append(e journalEntry) { j.entries = append(j.entries, e) }

// snapshot returns an offset into the journal that revertTo can rewind to.
func (j *journal) snapshot() int { return len(j.entries) }

func (j *journal) revertTo(s *StateDB, id int) {
	for i := len(j.entries) - 1; i >= id; i-- {
		j.entries[i].revert(s)
	}
	j.entries = j.entries[:id]
}

func (j *journal) length() int { return len(j.entries) }

type createObjectChange struct {
	addr types.Address
}

func (c createObjectChange) revert(s *StateDB) { delete(s.objects, c.addr) }

type resetObjectChange struct {
	addr types.Address
	prev *stateObject
}

func (c resetObjectChange) revert(s *StateDB) {
	if c.prev == nil {
		delete(s.objects, c.addr)
	} else {
		s.objects[c.addr] = c.prev
	}
}

type balanceChange struct {
	addr types.Address
	prev *uint256.Int
}

func (c balanceChange) revert(s *StateDB) { s.mustObject(c.addr).account.Balance = c.prev }

type nonceChange struct {
	addr types.Address
	prev uint64
}

func (c nonceChange) revert(s *StateDB) { s.mustObject(c.addr).account.Nonce = c.prev }

type codeChange struct {
	addr     types.Address
	prevCode []byte
	prevHash []byte
}

func (c codeChange) revert(s *StateDB) {
	obj := s.mustObject(c.addr)
	obj.code = c.prevCode
	obj.account.CodeHash = c.prevHash
}

type storageChange struct {
	addr       types.Address
	key        types.Hash
	prev       types.Hash
	prevExists bool
}

func (c storageChange) revert(s *StateDB) {
	obj := s.mustObject(c.addr)
	if c.prevExists {
		obj.dirtyStorage[c.key] = c.prev
	} else {
		delete(obj.dirtyStorage, c.key)
	}
}

type transientStorageChange struct {
	addr types.Address
	key  types.Hash
	prev types.Hash
}

func (c transientStorageChange) revert(s *StateDB) {
	if c.prev.IsZero() {
		delete(s.transientStorage[c.addr], c.key)
	} else {
		if s.transientStorage[c.addr] == nil {
			s.transientStorage[c.addr] = make(map[types.Hash]types.Hash)
		}
		s.transientStorage[c.addr][c.key] = c.prev
	}
}

type selfDestructChange struct {
	addr         types.Address
	prevDestruct bool
	prevBalance  *uint256.Int
}

func (c selfDestructChange) revert(s *StateDB) {
	obj := s.mustObject(c.addr)
	obj.selfDestructed = c.prevDestruct
	obj.account.Balance = c.prevBalance
}

type touchChange struct {
	addr      types.Address
	prevTouch bool
}

func (c touchChange) revert(s *StateDB) { s.mustObject(c.addr).touched = c.prevTouch }

type refundChange struct {
	prev uint64
}

func (c refundChange) revert(s *StateDB) { s.refund = c.prev }

type accessListAddressChange struct {
	addr types.Address
}

func (c accessListAddressChange) revert(s *StateDB) { s.accessList.DeleteAddress(c.addr) }

type accessListSlotChange struct {
	addr types.Address
	slot types.Hash
}

func (c accessListSlotChange) revert(s *StateDB) { s.accessList.DeleteSlot(c.addr, c.slot) }

type logChange struct {
	txHash  types.Hash
	prevLen int
}

func (c logChange) revert(s *StateDB) {
	logs := s.logs[c.txHash]
	s.logs[c.txHash] = logs[:c.prevLen]
}
