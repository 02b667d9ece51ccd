package core

import (
	"testing"

	"github.com/execlayer/evmcore/core/types"
)

func TestCollectRequestsNoContracts(t *testing.T) {
	db := newTestStateDB(t)
	if got := CollectRequests(db); got != nil {
		t.Errorf("CollectRequests with no deployed request contracts = %v, want nil", got)
	}
}

func TestCollectRequestsReadsAndClearsCount(t *testing.T) {
	db := newTestStateDB(t)
	db.CreateAccount(DepositContractAddress)
	db.SetState(DepositContractAddress, requestCountSlot, uint64ToHash(2))
	db.SetState(DepositContractAddress, incrementSlot(requestDataSlotBase, 0), types.BytesToHash([]byte{0xaa}))
	db.SetState(DepositContractAddress, incrementSlot(requestDataSlotBase, 1), types.BytesToHash([]byte{0xbb}))

	got := CollectRequests(db)
	if len(got) != 2 {
		t.Fatalf("CollectRequests returned %d requests, want 2", len(got))
	}
	if got[0].Type != DepositRequestType || got[1].Type != DepositRequestType {
		t.Error("deposit requests must carry DepositRequestType")
	}
	if len(got[0].Data) != 1 || got[0].Data[0] != 0xaa {
		t.Errorf("request[0].Data = %x, want [aa]", got[0].Data)
	}

	// The count slot must be cleared so a later block starts from zero.
	if cleared := db.GetState(DepositContractAddress, requestCountSlot); cleared != (types.Hash{}) {
		t.Error("CollectRequests must clear the request count slot")
	}
}

func TestCollectRequestsFixedTypeOrder(t *testing.T) {
	db := newTestStateDB(t)
	for _, addr := range []types.Address{DepositContractAddress, WithdrawalRequestAddress, ConsolidationRequestAddress} {
		db.CreateAccount(addr)
		db.SetState(addr, requestCountSlot, uint64ToHash(1))
		db.SetState(addr, incrementSlot(requestDataSlotBase, 0), types.BytesToHash([]byte{0x01}))
	}
	got := CollectRequests(db)
	if len(got) != 3 {
		t.Fatalf("CollectRequests returned %d requests, want 3", len(got))
	}
	wantOrder := []byte{DepositRequestType, WithdrawalRequestType, ConsolidationRequestType}
	for i, want := range wantOrder {
		if got[i].Type != want {
			t.Errorf("request[%d].Type = %#x, want %#x", i, got[i].Type, want)
		}
	}
}

func TestIncrementSlotCarries(t *testing.T) {
	base := types.Hash{}
	base[31] = 0xff
	got := incrementSlot(base, 1)
	want := types.Hash{}
	want[30] = 0x01
	if got != want {
		t.Errorf("incrementSlot carry = %x, want %x", got, want)
	}
}

func TestTrimLeadingZeros(t *testing.T) {
	got := trimLeadingZeros([]byte{0, 0, 1, 2})
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("trimLeadingZeros = %v, want [1 2]", got)
	}
	if got := trimLeadingZeros(make([]byte, 4)); got != nil {
		t.Errorf("trimLeadingZeros(all zero) = %v, want nil", got)
	}
}

func TestRequestsHashEmpty(t *testing.T) {
	h1 := RequestsHash(nil)
	h2 := RequestsHash([]Request{})
	if h1 != h2 {
		t.Error("RequestsHash(nil) and RequestsHash([]Request{}) must agree")
	}
}

func TestRequestsHashChangesWithContent(t *testing.T) {
	a := RequestsHash([]Request{{Type: DepositRequestType, Data: []byte{1}}})
	b := RequestsHash([]Request{{Type: DepositRequestType, Data: []byte{2}}})
	if a == b {
		t.Error("RequestsHash must differ for different request data")
	}
}
