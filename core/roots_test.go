package core

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/core/types"
)

func TestDeriveTransactionsRootEmpty(t *testing.T) {
	root, err := DeriveTransactionsRoot(nil)
	if err != nil {
		t.Fatal(err)
	}
	if root != types.EmptyTxsHash {
		t.Errorf("DeriveTransactionsRoot(nil) = %s, want EmptyTxsHash", root)
	}
}

func TestDeriveTransactionsRootNonEmptyDiffersFromEmpty(t *testing.T) {
	tx := types.NewTx(&types.LegacyTx{
		Nonce: 0, GasPrice: uint256.NewInt(1), Gas: 21000, To: &types.Address{1}, Value: uint256.NewInt(0),
	})
	root, err := DeriveTransactionsRoot([]*types.Transaction{tx})
	if err != nil {
		t.Fatal(err)
	}
	if root == types.EmptyTxsHash {
		t.Error("a block with a transaction must not hash to the empty transactions root")
	}
}

func TestDeriveReceiptsRootEmpty(t *testing.T) {
	root, err := DeriveReceiptsRoot(nil)
	if err != nil {
		t.Fatal(err)
	}
	if root != types.EmptyReceiptsHash {
		t.Errorf("DeriveReceiptsRoot(nil) = %s, want the empty trie root", root)
	}
}

func TestDeriveReceiptsRootNonEmpty(t *testing.T) {
	r := types.NewReceipt(false, 21000)
	r.TxHash = types.Hash{1}
	r.SetBloom()
	root, err := DeriveReceiptsRoot(types.Receipts{r})
	if err != nil {
		t.Fatal(err)
	}
	if root == types.EmptyReceiptsHash {
		t.Error("a block with a receipt must not hash to the empty trie root")
	}
}

func TestDeriveUncleHashEmpty(t *testing.T) {
	got := DeriveUncleHash(nil)
	if got != types.EmptyUncleHash {
		t.Errorf("DeriveUncleHash(nil) = %s, want EmptyUncleHash", got)
	}
}

func TestDeriveUncleHashNonEmpty(t *testing.T) {
	got := DeriveUncleHash([]*types.Header{{Number: 1}})
	if got == types.EmptyUncleHash {
		t.Error("a block with an uncle must not hash to EmptyUncleHash")
	}
}

func TestDeriveWithdrawalsRootEmpty(t *testing.T) {
	root, err := DeriveWithdrawalsRoot(nil)
	if err != nil {
		t.Fatal(err)
	}
	if root != types.EmptyWithdrawalsHash {
		t.Errorf("DeriveWithdrawalsRoot(nil) = %s, want EmptyWithdrawalsHash", root)
	}
}

func TestDeriveWithdrawalsRootNonEmpty(t *testing.T) {
	w := &types.Withdrawal{Index: 0, Validator: 1, Address: types.Address{1}, Amount: 1000}
	root, err := DeriveWithdrawalsRoot(types.Withdrawals{w})
	if err != nil {
		t.Fatal(err)
	}
	if root == types.EmptyWithdrawalsHash {
		t.Error("a block with a withdrawal must not hash to EmptyWithdrawalsHash")
	}
}
