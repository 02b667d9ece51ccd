package core

import (
	"github.com/execlayer/evmcore/core/state"
	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/crypto"
)

// Request type bytes, EIP-7685.
const (
	DepositRequestType       byte = 0x00
	WithdrawalRequestType    byte = 0x01
	ConsolidationRequestType byte = 0x02
)

// Request is one EIP-7685 execution-layer request: a type byte plus its
// opaque encoded payload, collected from system contracts after a block's
// transactions have run and hashed into the header's RequestsHash.
type Request struct {
	Type byte
	Data []byte
}

// System contract addresses introduced by Prague for request collection.
// The addresses themselves are deployment-specific in real networks; these
// follow the well-known mainnet assignments.
var (
	DepositContractAddress      = types.HexToAddress("0x00000000219ab540356cbb839cbe05303d7705fa")
	WithdrawalRequestAddress    = types.HexToAddress("0x00000961Ef480Eb55e80D19ad83579A64c007002")
	ConsolidationRequestAddress = types.HexToAddress("0x0000BBdDc7CE488642fb579F8B00f3a590007251")
)

// requestCountSlot is the well-known storage slot (slot 0) a request
// system contract uses to publish how many requests it produced this
// block; requestDataSlotBase (slot 1) is where the requests themselves
// begin, one 32-byte word each.
var (
	requestCountSlot    = types.Hash{}
	requestDataSlotBase = types.BytesToHash([]byte{0x01})
)

// CollectRequests gathers deposit, withdrawal, and consolidation requests
// from their respective system contracts, in EIP-7685's fixed type order, and clears each contract's
// pending count so the next block starts from zero.
func CollectRequests(statedb *state.StateDB) []Request {
	var requests []Request
	requests = append(requests, readRequests(statedb, DepositContractAddress, DepositRequestType)...)
	requests = append(requests, readRequests(statedb, WithdrawalRequestAddress, WithdrawalRequestType)...)
	requests = append(requests, readRequests(statedb, ConsolidationRequestAddress, ConsolidationRequestType)...)
	return requests
}

func readRequests(statedb *state.StateDB, addr types.Address, typ byte) []Request {
	if !statedb.Exist(addr) {
		return nil
	}
	count := hashToUint64(statedb.GetState(addr, requestCountSlot))
	if count == 0 {
		return nil
	}
	requests := make([]Request, 0, count)
	for i := uint64(0); i < count; i++ {
		slot := incrementSlot(requestDataSlotBase, i)
		word := statedb.GetState(addr, slot)
		requests = append(requests, Request{Type: typ, Data: trimLeadingZeros(word[:])})
	}
	statedb.SetState(addr, requestCountSlot, types.Hash{})
	return requests
}

func hashToUint64(h types.Hash) uint64 {
	var v uint64
	for i := 24; i < 32; i++ {
		v = v<<8 | uint64(h[i])
	}
	return v
}

// incrementSlot adds offset to base, treating both as big-endian 256-bit
// integers, to derive the sequential storage slot of the offset'th request
// a system contract published starting at base.
func incrementSlot(base types.Hash, offset uint64) types.Hash {
	result := base
	carry := offset
	for i := 31; i >= 0 && carry > 0; i-- {
		sum := uint64(result[i]) + carry&0xFF
		result[i] = byte(sum & 0xFF)
		carry = carry>>8 + sum>>8
	}
	return result
}

func trimLeadingZeros(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	if i == len(b) {
		return nil
	}
	out := make([]byte, len(b)-i)
	copy(out, b[i:])
	return out
}

// RequestsHash computes the EIP-7685 requests hash: keccak256 of the
// concatenation of keccak256(type || data) for each request, in the fixed
// type order deposits/withdrawals/consolidations.
func RequestsHash(requests []Request) types.Hash {
	var buf []byte
	for _, r := range requests {
		item := append([]byte{r.Type}, r.Data...)
		buf = append(buf, crypto.Keccak256(item)...)
	}
	return types.BytesToHash(crypto.Keccak256(buf))
}
