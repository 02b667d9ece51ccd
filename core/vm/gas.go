package vm

import (
	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/params"
)

// CallGas applies EIP-150's 63/64 forwarding rule: the caller retains at
// least 1/64th of its remaining gas, however much the callee requested.
func CallGas(available, requested uint64) uint64 {
	capped := available - available/params.QuadDivisorCall
	if requested > capped {
		return capped
	}
	return requested
}

func expGas(exp *uint256.Int, gasPerByte uint64) (uint64, error) {
	byteLen := uint64((exp.BitLen() + 7) / 8)
	return params.ExpGas + byteLen*gasPerByte, nil
}

// gasExpFrontier charges ExpByteFrontier per byte of the exponent.
func gasExpFrontier(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return expGas(stack.Back(1), params.ExpByteFrontier)
}

// gasExpEIP158 is EXP's Spurious-Dragon repricing (50 gas/byte).
func gasExpEIP158(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return expGas(stack.Back(1), params.ExpByteEIP158)
}

func wordGas(size *uint256.Int, perWord uint64) (uint64, error) {
	if size.IsZero() {
		return 0, nil
	}
	if !size.IsUint64() {
		return 0, ErrGasUintOverflow
	}
	words := (size.Uint64() + 31) / 32
	return words * perWord, nil
}

// gasKeccak256 charges Keccak256WordGas per 32-byte word hashed.
func gasKeccak256(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return wordGas(stack.Back(1), params.Keccak256WordGas)
}

// gasCopy charges CopyGas per word copied: CALLDATACOPY/CODECOPY (size at
// Back(2)) and RETURNDATACOPY (size at Back(2)).
func gasCopy(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return wordGas(stack.Back(2), params.CopyGas)
}

// gasCopyWords is MCOPY's per-word cost; its size operand is also Back(2).
func gasCopyWords(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return wordGas(stack.Back(2), params.CopyGas)
}

// gasCreate2 charges Keccak256WordGas per word of init code hashed for
// address derivation, on top of CREATE2's flat constant gas.
func gasCreate2(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return wordGas(stack.Back(2), params.Keccak256WordGas)
}

// gasLog returns a dynamicGasFunc charging LogDataGas per byte of log data
// for a LOGn (the per-topic cost is already in constantGas).
func gasLog(n int) dynamicGasFunc {
	return func(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
		size := stack.Back(1)
		if !size.IsUint64() {
			return 0, ErrGasUintOverflow
		}
		return size.Uint64() * params.LogDataGas, nil
	}
}

func coldAccountSurcharge(evm *EVM, addr types.Address) uint64 {
	if evm.StateDB == nil || evm.StateDB.AddressInAccessList(addr) {
		return 0
	}
	evm.StateDB.AddAddressToAccessList(addr)
	return params.ColdAccountAccessCostEIP2929 - params.WarmStorageReadCostEIP2929
}

// gasEIP2929AccountAccess returns the cold-access surcharge for
// EXTCODESIZE/EXTCODEHASH/BALANCE (their address argument is Back(0)); the
// opcode already charged WarmStorageReadCost as constant gas.
func gasEIP2929AccountAccess(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return coldAccountSurcharge(evm, types.BytesToAddress(stack.Back(0).Bytes())), nil
}

// gasExtCodeCopyEIP2929 adds the cold-access surcharge on top of EXTCODECOPY's
// per-word copy cost.
func gasExtCodeCopyEIP2929(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	copyCost, err := wordGas(stack.Back(3), params.CopyGas)
	if err != nil {
		return 0, err
	}
	return copyCost + coldAccountSurcharge(evm, types.BytesToAddress(stack.Back(0).Bytes())), nil
}

// gasSloadEIP2929 returns SLOAD's cold-slot surcharge, warming the slot.
func gasSloadEIP2929(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	key := types.Hash(stack.Back(0).Bytes32())
	if evm.StateDB == nil {
		return 0, nil
	}
	if _, slotWarm := evm.StateDB.SlotInAccessList(contract.Address, key); slotWarm {
		return 0, nil
	}
	evm.StateDB.AddSlotToAccessList(contract.Address, key)
	return params.ColdSloadCostEIP2929 - params.WarmStorageReadCostEIP2929, nil
}

// gasSstoreFrontier is the flat pre-EIP-2200 SSTORE pricing.
func gasSstoreFrontier(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	key := types.Hash(stack.Back(0).Bytes32())
	newZero := stack.Back(1).IsZero()
	current := evm.StateDB.GetState(contract.Address, key)
	currentZero := current.IsZero()
	switch {
	case currentZero && !newZero:
		return params.SstoreSetGas, nil
	case !currentZero && newZero:
		evm.StateDB.AddRefund(params.SstoreRefundGas)
		return params.SstoreResetGas, nil
	default:
		return params.SstoreResetGas, nil
	}
}

// gasSstoreEIP2200 implements EIP-2200's net-metered SSTORE (Istanbul..Berlin).
func gasSstoreEIP2200(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	if contract.Gas <= params.SstoreSentryGasEIP2200 {
		return 0, ErrOutOfGas
	}
	key := types.Hash(stack.Back(0).Bytes32())
	newHash := types.Hash(stack.Back(1).Bytes32())
	current := evm.StateDB.GetState(contract.Address, key)
	if current == newHash {
		return params.SstoreNoopGasEIP2200, nil
	}
	original := evm.StateDB.GetCommittedState(contract.Address, key)
	if original == current {
		if original.IsZero() {
			return params.SstoreInitGasEIP2200, nil
		}
		if newHash.IsZero() {
			evm.StateDB.AddRefund(params.SstoreClearRefundEIP2200)
		}
		return params.SstoreCleanGasEIP2200, nil
	}
	applyDirtyRefunds(evm, original, current, newHash, params.SstoreClearRefundEIP2200, params.SstoreInitRefundEIP2200, params.SstoreCleanRefundEIP2200)
	return params.SstoreDirtyGasEIP2200, nil
}

// gasSstoreEIP2929 is EIP-2200 net metering plus EIP-2929 cold-slot
// surcharges and EIP-3529's reduced clear refund post-London.
func gasSstoreEIP2929(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	if contract.Gas <= params.SstoreSentryGasEIP2200 {
		return 0, ErrOutOfGas
	}
	key := types.Hash(stack.Back(0).Bytes32())
	newHash := types.Hash(stack.Back(1).Bytes32())

	clearRefund := params.SstoreClearRefundEIP2200
	if evm.rules.IsLondon {
		clearRefund = params.SstoreClearRefundEIP3529
	}

	var coldSurcharge uint64
	if _, slotWarm := evm.StateDB.SlotInAccessList(contract.Address, key); !slotWarm {
		evm.StateDB.AddSlotToAccessList(contract.Address, key)
		coldSurcharge = params.ColdSloadCostEIP2929
	}

	current := evm.StateDB.GetState(contract.Address, key)
	if current == newHash {
		return params.SstoreNoopGasEIP2929 + coldSurcharge, nil
	}
	original := evm.StateDB.GetCommittedState(contract.Address, key)
	if original == current {
		if original.IsZero() {
			return params.SstoreInitGasEIP2929 + coldSurcharge, nil
		}
		if newHash.IsZero() {
			evm.StateDB.AddRefund(clearRefund)
		}
		return params.SstoreCleanGasEIP2929 + coldSurcharge, nil
	}
	applyDirtyRefunds(evm, original, current, newHash, clearRefund, params.SstoreInitRefundEIP2929, params.SstoreCleanRefundEIP2929)
	return params.SstoreNoopGasEIP2929 + coldSurcharge, nil
}

// applyDirtyRefunds implements EIP-2200's refund bookkeeping for the case
// where the slot has already been written once this transaction.
func applyDirtyRefunds(evm *EVM, original, current, newVal types.Hash, clearRefund, initRefund, cleanRefund uint64) {
	if !original.IsZero() {
		if current.IsZero() {
			evm.StateDB.SubRefund(clearRefund)
		} else if newVal.IsZero() {
			evm.StateDB.AddRefund(clearRefund)
		}
	}
	if original == newVal {
		if original.IsZero() {
			evm.StateDB.AddRefund(initRefund)
		} else {
			evm.StateDB.AddRefund(cleanRefund)
		}
	}
}

// gasSelfdestructEIP2929 adds the cold-account surcharge for SELFDESTRUCT's
// beneficiary, plus new-account gas if it sends nonzero balance to an
// address that doesn't yet exist. The pre-London first-time-destruct refund
// is granted here too; EIP-3529 (London+) removes it entirely.
func gasSelfdestructEIP2929(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	beneficiary := types.BytesToAddress(stack.Back(0).Bytes())
	cost := coldAccountSurcharge(evm, beneficiary)
	if evm.StateDB != nil && !evm.StateDB.Exist(beneficiary) && !evm.StateDB.GetBalance(contract.Address).IsZero() {
		cost += params.CallNewAccountGas
	}
	if !evm.rules.IsLondon && evm.StateDB != nil && !evm.StateDB.HasSelfDestructed(contract.Address) && !evm.StateDB.GetBalance(contract.Address).IsZero() {
		evm.StateDB.AddRefund(params.SelfdestructRefundGas)
	}
	return cost, nil
}

// callValueAndNewAccountGas returns the value-transfer and new-account
// surcharges shared by CALL/CALLCODE (CALLCODE never charges new-account gas
// since it cannot create an account other than the caller's own).
func callValueAndNewAccountGas(evm *EVM, addr types.Address, value *uint256.Int, chargeNewAccount bool) uint64 {
	if value.IsZero() {
		return 0
	}
	gas := params.CallValueTransferGas
	if chargeNewAccount && evm.StateDB != nil && !evm.StateDB.Exist(addr) {
		gas += params.CallNewAccountGas
	}
	return gas
}

// gasCallFrontier/gasCallCodeFrontier are CALL/CALLCODE dynamic gas
// pre-Berlin: value-transfer/new-account surcharges only, the cold/warm
// bookkeeping introduced by EIP-2929 does not yet exist.
func gasCallFrontier(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	addr := types.BytesToAddress(stack.Back(1).Bytes())
	return callValueAndNewAccountGas(evm, addr, stack.Back(2), true), nil
}

func gasCallCodeFrontier(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	addr := types.BytesToAddress(stack.Back(1).Bytes())
	return callValueAndNewAccountGas(evm, addr, stack.Back(2), false), nil
}

// gasCallEIP2929/gasCallCodeEIP2929/gasDelegateCallEIP2929/gasStaticCallEIP2929
// add the EIP-2929 cold-access surcharge for the callee address on top of
// the pre-Berlin value-transfer/new-account surcharges.
func gasCallEIP2929(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	addr := types.BytesToAddress(stack.Back(1).Bytes())
	return coldAccountSurcharge(evm, addr) + callValueAndNewAccountGas(evm, addr, stack.Back(2), true), nil
}

func gasCallCodeEIP2929(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	addr := types.BytesToAddress(stack.Back(1).Bytes())
	return coldAccountSurcharge(evm, addr) + callValueAndNewAccountGas(evm, addr, stack.Back(2), false), nil
}

func gasDelegateCallEIP2929(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return coldAccountSurcharge(evm, types.BytesToAddress(stack.Back(1).Bytes())), nil
}

func gasStaticCallEIP2929(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return coldAccountSurcharge(evm, types.BytesToAddress(stack.Back(1).Bytes())), nil
}

// gasCreateEIP3860 charges InitCodeWordGas per word of init code (EIP-3860,
// Shanghai+), on top of CREATE's flat constant gas.
func gasCreateEIP3860(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return wordGas(stack.Back(2), params.InitCodeWordGas)
}

// gasCreate2EIP3860 is gasCreate2 plus the EIP-3860 init-code word gas.
func gasCreate2EIP3860(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	hashCost, err := wordGas(stack.Back(2), params.Keccak256WordGas)
	if err != nil {
		return 0, err
	}
	initCost, err := wordGas(stack.Back(2), params.InitCodeWordGas)
	if err != nil {
		return 0, err
	}
	return hashCost + initCost, nil
}
