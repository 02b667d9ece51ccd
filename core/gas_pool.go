package core

import "errors"

// ErrGasPoolExhausted is returned when a transaction's gas limit exceeds
// the gas remaining in the block.
var ErrGasPoolExhausted = errors.New("core: gas limit exceeds block remaining gas")

// GasPool tracks the gas remaining for a block being processed. It is not
// safe for concurrent use; the state transition driver owns exactly one
// instance per block, mirroring the single-threaded execution model
// transactions run under.
type GasPool uint64

// AddGas increases the pool by amount, returning the pool for chaining.
func (gp *GasPool) AddGas(amount uint64) *GasPool {
	*gp += GasPool(amount)
	return gp
}

// SubGas deducts amount from the pool, failing if the pool holds less.
func (gp *GasPool) SubGas(amount uint64) error {
	if uint64(*gp) < amount {
		return ErrGasPoolExhausted
	}
	*gp -= GasPool(amount)
	return nil
}

// Gas reports the gas remaining in the pool.
func (gp *GasPool) Gas() uint64 { return uint64(*gp) }
