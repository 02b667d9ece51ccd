package core

import (
	"encoding/binary"

	"github.com/execlayer/evmcore/core/state"
	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/params"
)

// BeaconRootsAddress is the EIP-4788 beacon-roots system contract address.
var BeaconRootsAddress = types.HexToAddress("0x000F3df6D732807Ef1319fB7B8bB8522d0Beac02")

// HistoryStorageAddress is the EIP-2935 historical-block-hash system
// contract address.
var HistoryStorageAddress = types.HexToAddress("0x0000F90827F1C53a10cb7A02335B175320002935")

// ProcessBeaconBlockRoot stores the parent beacon block root into the
// EIP-4788 system contract's ring buffer, run once before a block's first
// transaction. No-op before Cancun or on a
// header that carries no beacon root.
func ProcessBeaconBlockRoot(statedb *state.StateDB, header *types.Header) {
	if header.ParentBeaconBlockRoot == nil {
		return
	}
	timestampIdx := header.Time % params.BeaconRootsHistoryBufferLength
	rootIdx := timestampIdx + params.BeaconRootsHistoryBufferLength

	statedb.SetState(BeaconRootsAddress, uint64ToHash(timestampIdx), uint64ToHash(header.Time))
	statedb.SetState(BeaconRootsAddress, uint64ToHash(rootIdx), *header.ParentBeaconBlockRoot)
}

// ProcessHistoryStorage records the parent block's hash into the EIP-2935
// history contract's ring buffer, run once before a block's first
// transaction. No-op before Prague or at the
// genesis block (which has no parent hash worth recording).
func ProcessHistoryStorage(statedb *state.StateDB, parentNumber uint64, parentHash types.Hash) {
	if !statedb.Exist(HistoryStorageAddress) {
		statedb.CreateAccount(HistoryStorageAddress)
	}
	slot := uint64ToHash(parentNumber % params.HistoryServeWindow)
	statedb.SetState(HistoryStorageAddress, slot, parentHash)
}

// HistoricalBlockHash reads a block hash recorded by ProcessHistoryStorage.
// runBlock uses it as the EVM context's GetHash, so it answers every
// BLOCKHASH lookup; opBlockhash itself returns zero for blocks more than
// 256 back.
func HistoricalBlockHash(statedb *state.StateDB, blockNumber uint64) types.Hash {
	if !statedb.Exist(HistoryStorageAddress) {
		return types.Hash{}
	}
	return statedb.GetState(HistoryStorageAddress, uint64ToHash(blockNumber%params.HistoryServeWindow))
}

func uint64ToHash(v uint64) types.Hash {
	var h types.Hash
	binary.BigEndian.PutUint64(h[24:], v)
	return h
}
