package core

import (
	"testing"

	"github.com/execlayer/evmcore/core/state"
	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/trie"
)

func newTestStateDB(t *testing.T) *state.StateDB {
	t.Helper()
	db, err := state.New(types.Hash{}, trie.NewDatabase())
	if err != nil {
		t.Fatalf("state.New: %v", err)
	}
	return db
}

func TestProcessWithdrawalsCreditsBalance(t *testing.T) {
	db := newTestStateDB(t)
	addr := types.Address{0x42}
	w := &types.Withdrawal{Index: 0, Validator: 1, Address: addr, Amount: 3}
	ProcessWithdrawals(db, types.Withdrawals{w})

	got := db.GetBalance(addr)
	want := uint64(3) * weiPerGwei
	if got.Uint64() != want {
		t.Errorf("balance after withdrawal = %s, want %d wei", got, want)
	}
}

func TestProcessWithdrawalsAccumulates(t *testing.T) {
	db := newTestStateDB(t)
	addr := types.Address{0x42}
	ws := types.Withdrawals{
		{Index: 0, Validator: 1, Address: addr, Amount: 1},
		{Index: 1, Validator: 2, Address: addr, Amount: 2},
	}
	ProcessWithdrawals(db, ws)

	got := db.GetBalance(addr)
	want := uint64(3) * weiPerGwei
	if got.Uint64() != want {
		t.Errorf("balance after two withdrawals = %s, want %d wei", got, want)
	}
}

func TestProcessWithdrawalsSkipsNil(t *testing.T) {
	db := newTestStateDB(t)
	addr := types.Address{0x01}
	ProcessWithdrawals(db, types.Withdrawals{nil, {Address: addr, Amount: 0}})
	if !db.GetBalance(addr).IsZero() {
		t.Error("a zero-amount withdrawal must not change balance")
	}
}

func TestProcessWithdrawalsEmpty(t *testing.T) {
	db := newTestStateDB(t)
	ProcessWithdrawals(db, nil)
}
