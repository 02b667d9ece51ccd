package core

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/params"
)

func testDAOConfig() *params.ChainConfig {
	return &params.ChainConfig{
		DAOForkBlock:       big.NewInt(100),
		DAOForkSupport:     true,
		DAORefundContract:  [20]byte{0xff},
		DAODrainedAccounts: []params.DAODrainAccount{{0x01}, {0x02}},
	}
}

func TestApplyDAOHardForkMovesBalances(t *testing.T) {
	db := newTestStateDB(t)
	cfg := testDAOConfig()
	for _, drained := range cfg.DAODrainedAccounts {
		db.AddBalance(types.Address(drained), uint256.NewInt(10))
	}

	ApplyDAOHardFork(db, cfg, 100)

	refund := types.Address(cfg.DAORefundContract)
	if got := db.GetBalance(refund).Uint64(); got != 20 {
		t.Errorf("refund contract balance = %d, want 20", got)
	}
	for _, drained := range cfg.DAODrainedAccounts {
		if !db.GetBalance(types.Address(drained)).IsZero() {
			t.Errorf("drained account %x still holds balance", drained)
		}
	}
}

func TestApplyDAOHardForkWrongBlockIsNoop(t *testing.T) {
	db := newTestStateDB(t)
	cfg := testDAOConfig()
	addr := types.Address(cfg.DAODrainedAccounts[0])
	db.AddBalance(addr, uint256.NewInt(10))

	ApplyDAOHardFork(db, cfg, 101)

	if got := db.GetBalance(addr).Uint64(); got != 10 {
		t.Errorf("balance changed on non-fork block: got %d, want unchanged 10", got)
	}
}

func TestApplyDAOHardForkUnsupportedConfigIsNoop(t *testing.T) {
	db := newTestStateDB(t)
	addr := types.Address{0x01}
	db.AddBalance(addr, uint256.NewInt(10))

	ApplyDAOHardFork(db, &params.ChainConfig{}, 0)

	if got := db.GetBalance(addr).Uint64(); got != 10 {
		t.Errorf("balance changed on a config without DAOForkSupport: got %d, want unchanged 10", got)
	}
}

func TestApplyDAOHardForkNilConfigIsNoop(t *testing.T) {
	db := newTestStateDB(t)
	ApplyDAOHardFork(db, nil, 0)
}
