package core

import (
	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/params"
)

// IntrinsicGas computes the gas a transaction owes before a single EVM
// instruction executes: the flat per-transaction base, per-byte calldata cost, EIP-2930
// access-list cost, EIP-3860 init-code word cost, and EIP-7702
// authorization-list cost.
func IntrinsicGas(data []byte, accessList types.AccessList, authList []types.SetCodeAuthorization, isCreate bool, rules params.Rules) (uint64, error) {
	gas := params.TxGas
	if isCreate {
		gas = params.TxGasContractCreation
	}

	nz := uint64(0)
	for _, b := range data {
		if b != 0 {
			nz++
		}
	}
	z := uint64(len(data)) - nz

	nonZeroGas := params.TxDataNonZeroGasFrontier
	if rules.IsIstanbul {
		nonZeroGas = params.TxDataNonZeroGasEIP2028
	}
	gas, overflow := addGas(gas, nz*nonZeroGas)
	if overflow {
		return 0, ErrGasUintOverflow
	}
	gas, overflow = addGas(gas, z*params.TxDataZeroGas)
	if overflow {
		return 0, ErrGasUintOverflow
	}

	if isCreate && rules.IsShanghai {
		words := (uint64(len(data)) + 31) / 32
		gas, overflow = addGas(gas, words*params.InitCodeWordGas)
		if overflow {
			return 0, ErrGasUintOverflow
		}
	}

	if rules.IsBerlin {
		for _, tuple := range accessList {
			gas, overflow = addGas(gas, params.TxAccessListAddressGas)
			if overflow {
				return 0, ErrGasUintOverflow
			}
			gas, overflow = addGas(gas, uint64(len(tuple.StorageKeys))*params.TxAccessListStorageKeyGas)
			if overflow {
				return 0, ErrGasUintOverflow
			}
		}
	}

	if rules.IsPrague {
		gas, overflow = addGas(gas, uint64(len(authList))*params.TxAuthTupleGas)
		if overflow {
			return 0, ErrGasUintOverflow
		}
	}

	return gas, nil
}

func addGas(a, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum < a
}
