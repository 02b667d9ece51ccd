package core

import (
	"testing"

	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/params"
)

func TestProcessBeaconBlockRootNoop(t *testing.T) {
	db := newTestStateDB(t)
	header := &types.Header{Time: 100}
	ProcessBeaconBlockRoot(db, header)
	if db.Exist(BeaconRootsAddress) {
		t.Error("ProcessBeaconBlockRoot must not touch the contract when the header carries no beacon root")
	}
}

func TestProcessBeaconBlockRootStoresTimestampAndRoot(t *testing.T) {
	db := newTestStateDB(t)
	root := types.Hash{0xaa}
	header := &types.Header{Time: 100, ParentBeaconBlockRoot: &root}
	ProcessBeaconBlockRoot(db, header)

	timestampIdx := uint64ToHash(100 % params.BeaconRootsHistoryBufferLength)
	if got := db.GetState(BeaconRootsAddress, timestampIdx); got != uint64ToHash(100) {
		t.Errorf("beacon timestamp slot = %x, want %x", got, uint64ToHash(100))
	}
	rootIdx := uint64ToHash(100%params.BeaconRootsHistoryBufferLength + params.BeaconRootsHistoryBufferLength)
	if got := db.GetState(BeaconRootsAddress, rootIdx); got != root {
		t.Errorf("beacon root slot = %x, want %x", got, root)
	}
}

func TestProcessHistoryStorageRecordsParentHash(t *testing.T) {
	db := newTestStateDB(t)
	parentHash := types.Hash{0xbb}
	ProcessHistoryStorage(db, 41, parentHash)

	if !db.Exist(HistoryStorageAddress) {
		t.Fatal("ProcessHistoryStorage must deploy the history contract on first use")
	}
	got := HistoricalBlockHash(db, 41)
	if got != parentHash {
		t.Errorf("HistoricalBlockHash(41) = %x, want %x", got, parentHash)
	}
}

func TestHistoricalBlockHashUnknownContract(t *testing.T) {
	db := newTestStateDB(t)
	if got := HistoricalBlockHash(db, 5); got != (types.Hash{}) {
		t.Errorf("HistoricalBlockHash before any ProcessHistoryStorage call = %x, want zero", got)
	}
}

func TestHistoricalBlockHashWraparound(t *testing.T) {
	db := newTestStateDB(t)
	h1 := types.Hash{0x01}
	h2 := types.Hash{0x02}
	ProcessHistoryStorage(db, 0, h1)
	ProcessHistoryStorage(db, params.HistoryServeWindow, h2)

	// Both blocks map to the same ring-buffer slot; the second overwrites the first.
	got := HistoricalBlockHash(db, 0)
	if got != h2 {
		t.Errorf("HistoricalBlockHash after wraparound = %x, want %x", got, h2)
	}
}
