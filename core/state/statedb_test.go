package state

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/trie"
)

func newTestStateDB(t *testing.T) *StateDB {
	t.Helper()
	s, err := New(types.Hash{}, trie.NewDatabase())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestStateDBSnapshotRevertBalance(t *testing.T) {
	s := newTestStateDB(t)
	addr := types.HexToAddress("0xabc")
	s.CreateAccount(addr)
	s.AddBalance(addr, uint256.NewInt(1000))

	snap := s.Snapshot()
	s.AddBalance(addr, uint256.NewInt(500))
	if got := s.GetBalance(addr); got.Cmp(uint256.NewInt(1500)) != 0 {
		t.Fatalf("balance before revert = %s, want 1500", got)
	}

	s.RevertToSnapshot(snap)
	if got := s.GetBalance(addr); got.Cmp(uint256.NewInt(1000)) != 0 {
		t.Fatalf("balance after revert = %s, want 1000", got)
	}
}

func TestStateDBSnapshotRevertNonce(t *testing.T) {
	s := newTestStateDB(t)
	addr := types.HexToAddress("0xabc")
	s.CreateAccount(addr)
	s.SetNonce(addr, 5)

	snap := s.Snapshot()
	s.SetNonce(addr, 10)
	s.RevertToSnapshot(snap)

	if got := s.GetNonce(addr); got != 5 {
		t.Fatalf("nonce after revert = %d, want 5", got)
	}
}

func TestStateDBSnapshotRevertStorage(t *testing.T) {
	s := newTestStateDB(t)
	addr := types.HexToAddress("0xabc")
	s.CreateAccount(addr)
	key := types.HexToHash("0x01")

	s.SetState(addr, key, types.HexToHash("0xaa"))
	snap := s.Snapshot()
	s.SetState(addr, key, types.HexToHash("0xbb"))

	if got := s.GetState(addr, key); got != types.HexToHash("0xbb") {
		t.Fatalf("storage before revert = %s, want 0xbb", got)
	}

	s.RevertToSnapshot(snap)
	if got := s.GetState(addr, key); got != types.HexToHash("0xaa") {
		t.Fatalf("storage after revert = %s, want 0xaa", got)
	}
}

func TestStateDBSnapshotRevertAccountCreation(t *testing.T) {
	s := newTestStateDB(t)
	addr := types.HexToAddress("0xabc")

	snap := s.Snapshot()
	s.CreateAccount(addr)
	s.AddBalance(addr, uint256.NewInt(1))

	if !s.Exist(addr) {
		t.Fatal("account should exist after CreateAccount")
	}

	s.RevertToSnapshot(snap)
	if s.Exist(addr) {
		t.Fatal("account creation should be undone by RevertToSnapshot")
	}
}

func TestStateDBSnapshotRevertSelfDestruct(t *testing.T) {
	s := newTestStateDB(t)
	addr := types.HexToAddress("0xabc")
	s.CreateAccount(addr)

	snap := s.Snapshot()
	s.SelfDestruct(addr)
	if !s.HasSelfDestructed(addr) {
		t.Fatal("HasSelfDestructed should be true immediately after SelfDestruct")
	}

	s.RevertToSnapshot(snap)
	if s.HasSelfDestructed(addr) {
		t.Fatal("self-destruct should be undone by RevertToSnapshot")
	}
}

func TestStateDBNestedSnapshots(t *testing.T) {
	s := newTestStateDB(t)
	addr := types.HexToAddress("0xabc")
	s.CreateAccount(addr)
	s.AddBalance(addr, uint256.NewInt(100))

	outer := s.Snapshot()
	s.AddBalance(addr, uint256.NewInt(10))
	inner := s.Snapshot()
	s.AddBalance(addr, uint256.NewInt(1))

	if got := s.GetBalance(addr); got.Cmp(uint256.NewInt(111)) != 0 {
		t.Fatalf("balance at innermost state = %s, want 111", got)
	}

	s.RevertToSnapshot(inner)
	if got := s.GetBalance(addr); got.Cmp(uint256.NewInt(110)) != 0 {
		t.Fatalf("balance after reverting inner snapshot = %s, want 110", got)
	}

	s.RevertToSnapshot(outer)
	if got := s.GetBalance(addr); got.Cmp(uint256.NewInt(100)) != 0 {
		t.Fatalf("balance after reverting outer snapshot = %s, want 100", got)
	}
}

func TestStateDBRefundCounter(t *testing.T) {
	s := newTestStateDB(t)
	s.AddRefund(100)
	s.AddRefund(50)
	if got := s.GetRefund(); got != 150 {
		t.Fatalf("refund = %d, want 150", got)
	}

	s.SubRefund(60)
	if got := s.GetRefund(); got != 90 {
		t.Fatalf("refund after SubRefund = %d, want 90", got)
	}
}

func TestStateDBRefundCounterRevert(t *testing.T) {
	s := newTestStateDB(t)
	s.AddRefund(100)

	snap := s.Snapshot()
	s.AddRefund(50)
	s.RevertToSnapshot(snap)

	if got := s.GetRefund(); got != 100 {
		t.Fatalf("refund after revert = %d, want 100", got)
	}
}

func TestStateDBRefundCounterPanicsBelowZero(t *testing.T) {
	s := newTestStateDB(t)
	s.AddRefund(10)

	defer func() {
		if recover() == nil {
			t.Fatal("SubRefund below zero should panic")
		}
	}()
	s.SubRefund(20)
}

func TestStateDBCodeSetAndGet(t *testing.T) {
	s := newTestStateDB(t)
	addr := types.HexToAddress("0xabc")
	s.CreateAccount(addr)

	code := []byte{0x60, 0x00, 0x60, 0x00}
	s.SetCode(addr, code)

	if got := s.GetCode(addr); string(got) != string(code) {
		t.Fatalf("GetCode = %x, want %x", got, code)
	}
	if got := s.GetCodeSize(addr); got != len(code) {
		t.Fatalf("GetCodeSize = %d, want %d", got, len(code))
	}
}

func TestStateDBEmptyAccountIsEmpty(t *testing.T) {
	s := newTestStateDB(t)
	addr := types.HexToAddress("0xabc")
	s.CreateAccount(addr)

	if !s.Empty(addr) {
		t.Fatal("freshly created account with no balance, nonce, or code should be Empty")
	}

	s.AddBalance(addr, uint256.NewInt(1))
	if s.Empty(addr) {
		t.Fatal("account with a nonzero balance should not be Empty")
	}
}
