package core

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/params"
)

// noForksConfig activates nothing: every Rules field is false, letting a
// build/apply round trip exercise the plain pre-Homestead code path without
// system calls, withdrawals, or requests in the way.
func noForksConfig() *params.ChainConfig {
	return &params.ChainConfig{}
}

func TestBuildBlockThenApplyBlockRoundTrip(t *testing.T) {
	db := newTestStateDB(t)
	cfg := noForksConfig()

	to := types.Address{0x02}
	tx, from := makeSignedLegacyTx(t, 0, &to, uint256.NewInt(1000), uint256.NewInt(1), 21000, nil)
	db.CreateAccount(from)
	db.AddBalance(from, uint256.NewInt(1_000_000))

	tmpl := &types.Header{Number: 1, GasLimit: 10_000_000, Coinbase: types.Address{0xc0}, ParentHash: types.Hash{0x01}}
	block, blockHash, err := BuildBlock(tmpl, []*types.Transaction{tx}, nil, nil, cfg, db)
	if err != nil {
		t.Fatalf("BuildBlock: %v", err)
	}
	if blockHash != block.Hash() {
		t.Error("BuildBlock's returned hash must match block.Hash()")
	}
	if block.Header().GasUsed != 21000 {
		t.Errorf("built header GasUsed = %d, want 21000", block.Header().GasUsed)
	}
	if block.Header().TxHash == types.EmptyTxsHash {
		t.Error("a block with a transaction must not have the empty transactions root")
	}

	// Applying the same block against a state rebuilt from the same
	// pre-state must reproduce every derived field BuildBlock populated.
	verifyDB := newTestStateDB(t)
	verifyDB.CreateAccount(from)
	verifyDB.AddBalance(from, uint256.NewInt(1_000_000))

	parent := &types.Header{Number: 0}
	gotHeader, receipts, err := ApplyBlock(verifyDB, cfg, parent, block)
	if err != nil {
		t.Fatalf("ApplyBlock: %v", err)
	}
	if gotHeader.GasUsed != block.Header().GasUsed {
		t.Errorf("ApplyBlock header GasUsed = %d, want %d", gotHeader.GasUsed, block.Header().GasUsed)
	}
	if len(receipts) != 1 {
		t.Fatalf("ApplyBlock returned %d receipts, want 1", len(receipts))
	}
	if receipts[0].BlockHash != block.Hash() {
		t.Error("ApplyBlock must stamp each receipt's BlockHash with the validated block's hash")
	}
	if got := verifyDB.GetBalance(to).Uint64(); got != 1000 {
		t.Errorf("recipient balance after ApplyBlock = %d, want 1000", got)
	}
}

func TestApplyBlockRejectsGasUsedMismatch(t *testing.T) {
	db := newTestStateDB(t)
	cfg := noForksConfig()
	to := types.Address{0x02}
	tx, from := makeSignedLegacyTx(t, 0, &to, uint256.NewInt(0), uint256.NewInt(1), 21000, nil)
	db.CreateAccount(from)
	db.AddBalance(from, uint256.NewInt(1_000_000))

	header := &types.Header{Number: 1, GasLimit: 10_000_000, GasUsed: 99999, TxHash: types.EmptyTxsHash}
	block := types.NewBlockWithHeader(header).WithBody(types.Body{Transactions: []*types.Transaction{tx}})
	parent := &types.Header{Number: 0}

	_, _, err := ApplyBlock(db, cfg, parent, block)
	bve, ok := err.(*BlockValidationError)
	if !ok {
		t.Fatalf("ApplyBlock with wrong declared GasUsed returned %v (%T), want *BlockValidationError", err, err)
	}
	if bve.Field != "GasUsed" {
		t.Errorf("BlockValidationError.Field = %q, want GasUsed", bve.Field)
	}
}

func TestBuildBlockEmptyBlockRewardsCoinbase(t *testing.T) {
	db := newTestStateDB(t)
	cfg := noForksConfig()
	coinbase := types.Address{0xc0}
	tmpl := &types.Header{Number: 1, GasLimit: 10_000_000, Coinbase: coinbase}

	block, _, err := BuildBlock(tmpl, nil, nil, nil, cfg, db)
	if err != nil {
		t.Fatalf("BuildBlock: %v", err)
	}
	if block.Header().TxHash != types.EmptyTxsHash {
		t.Error("an empty block must have the empty transactions root")
	}
	if block.Header().UncleHash != types.EmptyUncleHash {
		t.Error("a block with no uncles must have EmptyUncleHash")
	}
	if got := db.GetBalance(coinbase).Uint64(); got != params.FrontierBlockReward {
		t.Errorf("coinbase balance after an empty block = %d, want the Frontier block reward %d", got, params.FrontierBlockReward)
	}
}

func TestTransitionSimpleTransfer(t *testing.T) {
	cfg := noForksConfig()
	to := types.Address{0x02}
	tx, from := makeSignedLegacyTx(t, 0, &to, uint256.NewInt(1000), uint256.NewInt(1), 21000, nil)

	alloc := GenesisAlloc{
		from: GenesisAccount{Balance: uint256.NewInt(1_000_000)},
	}
	env := Env{Coinbase: types.Address{0xc0}, GasLimit: 10_000_000, Number: 1}

	result, err := Transition(alloc, env, []*types.Transaction{tx}, cfg)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if result.GasUsed != 21000 {
		t.Errorf("Transition GasUsed = %d, want 21000", result.GasUsed)
	}
	if len(result.Receipts) != 1 {
		t.Fatalf("Transition returned %d receipts, want 1", len(result.Receipts))
	}
	if result.StateRoot == (types.Hash{}) {
		t.Error("Transition must produce a non-zero state root")
	}
}

func TestTransitionGenesisSkipsParentHashLookup(t *testing.T) {
	cfg := noForksConfig()
	alloc := GenesisAlloc{}
	env := Env{GasLimit: 10_000_000, Number: 0}

	if _, err := Transition(alloc, env, nil, cfg); err != nil {
		t.Fatalf("Transition at genesis: %v", err)
	}
}

func TestRunStateTestPass(t *testing.T) {
	to := types.Address{0x02}
	tx, from := makeSignedLegacyTx(t, 0, &to, uint256.NewInt(1000), uint256.NewInt(1), 21000, nil)

	alloc := GenesisAlloc{from: GenesisAccount{Balance: uint256.NewInt(1_000_000)}}
	env := Env{GasLimit: 10_000_000}

	// First pass: discover the post-state root Transition/RunStateTest
	// would actually produce, so the fixture's expectation is self-consistent.
	probe := &StateTestCase{Alloc: alloc, Env: env, Tx: tx, Fork: noForksConfig()}
	probeResult, err := RunStateTest(probe)
	if err != nil {
		t.Fatalf("RunStateTest (probe): %v", err)
	}

	tc := &StateTestCase{
		Alloc: alloc, Env: env, Tx: tx, Fork: noForksConfig(),
		PostHash: probeResult.StateRoot, PostLogHash: probeResult.LogHash,
	}
	result, err := RunStateTest(tc)
	if err != nil {
		t.Fatalf("RunStateTest: %v", err)
	}
	if !result.Pass {
		t.Errorf("RunStateTest.Pass = false, err=%v, want true", result.Err)
	}
}

func TestRunStateTestFailsOnWrongPostState(t *testing.T) {
	to := types.Address{0x02}
	tx, from := makeSignedLegacyTx(t, 0, &to, uint256.NewInt(1000), uint256.NewInt(1), 21000, nil)
	alloc := GenesisAlloc{from: GenesisAccount{Balance: uint256.NewInt(1_000_000)}}
	env := Env{GasLimit: 10_000_000}

	tc := &StateTestCase{
		Alloc: alloc, Env: env, Tx: tx, Fork: noForksConfig(),
		PostHash: types.Hash{0xde, 0xad},
	}
	result, err := RunStateTest(tc)
	if err != nil {
		t.Fatalf("RunStateTest: %v", err)
	}
	if result.Pass {
		t.Error("RunStateTest must fail a fixture whose expected post-state root does not match")
	}
}
