package core

import (
	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/core/state"
	"github.com/execlayer/evmcore/core/types"
)

// weiPerGwei converts a withdrawal's Gwei-denominated amount to wei.
const weiPerGwei = 1_000_000_000

// ProcessWithdrawals credits each withdrawal's amount (Gwei, converted to
// wei) to its address. Withdrawals consume no gas and never fail; they run
// after every transaction in the block has been applied, as part of
// per-block finalization.
func ProcessWithdrawals(statedb *state.StateDB, withdrawals types.Withdrawals) {
	for _, w := range withdrawals {
		if w == nil {
			continue
		}
		amount := new(uint256.Int).Mul(new(uint256.Int).SetUint64(w.Amount), uint256.NewInt(weiPerGwei))
		statedb.AddBalance(w.Address, amount)
	}
}
