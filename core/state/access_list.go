package state

import "github.com/execlayer/evmcore/core/types"

// accessList is the per-transaction EIP-2929/2930 warm-address/warm-slot
// set. Membership, not a boolean cost, is the source of truth; the caller
// translates "already present" into the warm/cold gas charge.
type accessList struct {
	addresses map[types.Address]struct{}
	slots     map[types.Address]map[types.Hash]struct{}
}

func newAccessList() *accessList {
	return &accessList{
		addresses: make(map[types.Address]struct{}),
		slots:     make(map[types.Address]map[types.Hash]struct{}),
	}
}

// AddAddress adds addr to the warm set, returning whether it was already
// present.
func (al *accessList) AddAddress(addr types.Address) bool {
	if _, ok := al.addresses[addr]; ok {
		return true
	}
	al.addresses[addr] = struct{}{}
	return false
}

// AddSlot adds (addr, slot) to the warm set. It also implicitly warms addr
// itself, matching EIP-2930's semantics that a storage-key tuple pre-warms
// its address too.
func (al *accessList) AddSlot(addr types.Address, slot types.Hash) (addrPresent, slotPresent bool) {
	addrPresent = al.AddAddress(addr)
	slots, ok := al.slots[addr]
	if !ok {
		slots = make(map[types.Hash]struct{})
		al.slots[addr] = slots
	}
	if _, ok := slots[slot]; ok {
		return addrPresent, true
	}
	slots[slot] = struct{}{}
	return addrPresent, false
}

func (al *accessList) ContainsAddress(addr types.Address) bool {
	_, ok := al.addresses[addr]
	return ok
}

func (al *accessList) ContainsSlot(addr types.Address, slot types.Hash) (addrOk, slotOk bool) {
	if _, addrOk = al.addresses[addr]; !addrOk {
		return false, false
	}
	if slots, ok := al.slots[addr]; ok {
		_, slotOk = slots[slot]
	}
	return addrOk, slotOk
}

func (al *accessList) DeleteSlot(addr types.Address, slot types.Hash) {
	slots, ok := al.slots[addr]
	if !ok {
		return
	}
	delete(slots, slot)
	if len(slots) == 0 {
		delete(al.slots, addr)
	}
}

func (al *accessList) DeleteAddress(addr types.Address) {
	delete(al.addresses, addr)
}
