package core

import (
	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/core/state"
	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/params"
)

// ApplyDAOHardFork performs the one-shot irregular state change at the DAO
// fork block: every drained account's balance moves to the refund
// contract, independent of any transaction. It is a no-op for configs that do
// not carry DAOForkSupport, or on any block other than DAOForkBlock.
func ApplyDAOHardFork(statedb *state.StateDB, config *params.ChainConfig, blockNumber uint64) {
	if config == nil || !config.DAOForkSupport || config.DAOForkBlock == nil {
		return
	}
	if config.DAOForkBlock.Uint64() != blockNumber {
		return
	}

	refund := types.Address(config.DAORefundContract)
	if !statedb.Exist(refund) {
		statedb.CreateAccount(refund)
	}
	for _, drained := range config.DAODrainedAccounts {
		addr := types.Address(drained)
		balance := statedb.GetBalance(addr)
		if balance.IsZero() {
			continue
		}
		statedb.SubBalance(addr, balance)
		statedb.AddBalance(refund, new(uint256.Int).Set(balance))
	}
}
