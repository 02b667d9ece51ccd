package vm

import (
	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/params"
)

// executionFunc executes one opcode, advancing or redirecting pc itself for
// jumps. It returns the opcode's return data (only meaningful for
// RETURN/REVERT) and an error if execution must halt the frame.
type executionFunc func(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error)

// dynamicGasFunc computes an opcode's non-constant gas cost, which for
// memory-touching opcodes includes the memory-expansion charge.
type dynamicGasFunc func(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error)

// memorySizeFunc returns the highest memory offset (in bytes) an opcode will
// touch, and whether computing it overflowed a uint64.
type memorySizeFunc func(stack *Stack) (uint64, bool)

// operation is one opcode's complete dispatch metadata: the handler, its
// constant and dynamic gas, and the stack/memory shape the interpreter
// validates before calling execute.
type operation struct {
	execute     executionFunc
	constantGas uint64
	dynamicGas  dynamicGasFunc
	minStack    int
	maxStack    int
	memorySize  memorySizeFunc
	halts       bool // STOP/RETURN/REVERT/SELFDESTRUCT: Run returns after execute
	jumps       bool // JUMP/JUMPI: execute already advanced pc, skip pc++
}

// JumpTable is the per-fork opcode dispatch table, built once per fork by
// cloning the predecessor fork's table and patching deltas.
type JumpTable [256]*operation

func maxStack(pops, pushes int) int {
	return params.StackLimit + pops - pushes
}

func u64WithOverflow(x *uint256.Int) (uint64, bool) {
	if !x.IsUint64() {
		return 0, true
	}
	return x.Uint64(), false
}

func memoryUint64OrOverflow(off, size *uint256.Int) (uint64, bool) {
	if size.IsZero() {
		return 0, false
	}
	o, overflow := u64WithOverflow(off)
	if overflow {
		return 0, true
	}
	l, overflow := u64WithOverflow(size)
	if overflow {
		return 0, true
	}
	sum := o + l
	if sum < o {
		return 0, true
	}
	return sum, false
}

func memoryMload(stack *Stack) (uint64, bool) {
	return memoryUint64OrOverflow(stack.Back(0), uint256.NewInt(32))
}

func memoryMstore(stack *Stack) (uint64, bool) {
	return memoryUint64OrOverflow(stack.Back(0), uint256.NewInt(32))
}

func memoryMstore8(stack *Stack) (uint64, bool) {
	return memoryUint64OrOverflow(stack.Back(0), uint256.NewInt(1))
}

func memoryReturn(stack *Stack) (uint64, bool) {
	return memoryUint64OrOverflow(stack.Back(0), stack.Back(1))
}

func memoryKeccak256(stack *Stack) (uint64, bool) {
	return memoryUint64OrOverflow(stack.Back(0), stack.Back(1))
}

func memoryCalldataCopy(stack *Stack) (uint64, bool) {
	return memoryUint64OrOverflow(stack.Back(0), stack.Back(2))
}

func memoryCodeCopy(stack *Stack) (uint64, bool) {
	return memoryUint64OrOverflow(stack.Back(0), stack.Back(2))
}

func memoryExtCodeCopy(stack *Stack) (uint64, bool) {
	return memoryUint64OrOverflow(stack.Back(1), stack.Back(3))
}

func memoryReturndataCopy(stack *Stack) (uint64, bool) {
	return memoryUint64OrOverflow(stack.Back(0), stack.Back(2))
}

func memoryLog(stack *Stack) (uint64, bool) {
	return memoryUint64OrOverflow(stack.Back(0), stack.Back(1))
}

func memoryMcopy(stack *Stack) (uint64, bool) {
	dstEnd, overflow := memoryUint64OrOverflow(stack.Back(0), stack.Back(2))
	if overflow {
		return 0, true
	}
	srcEnd, overflow := memoryUint64OrOverflow(stack.Back(1), stack.Back(2))
	if overflow {
		return 0, true
	}
	if srcEnd > dstEnd {
		return srcEnd, false
	}
	return dstEnd, false
}

func memoryCreate(stack *Stack) (uint64, bool) {
	return memoryUint64OrOverflow(stack.Back(1), stack.Back(2))
}

func memoryCreate2(stack *Stack) (uint64, bool) {
	return memoryUint64OrOverflow(stack.Back(1), stack.Back(2))
}

// memoryCall returns the larger of a CALL's argument and return-data ranges.
// Stack (top-first): gas, addr, value, argsOffset, argsLength, retOffset, retLength.
func memoryCall(stack *Stack) (uint64, bool) {
	argsEnd, overflow := memoryUint64OrOverflow(stack.Back(3), stack.Back(4))
	if overflow {
		return 0, true
	}
	retEnd, overflow := memoryUint64OrOverflow(stack.Back(5), stack.Back(6))
	if overflow {
		return 0, true
	}
	if argsEnd > retEnd {
		return argsEnd, false
	}
	return retEnd, false
}

// memoryDelegateStaticCall is memoryCall without the value argument.
// Stack: gas, addr, argsOffset, argsLength, retOffset, retLength.
func memoryDelegateStaticCall(stack *Stack) (uint64, bool) {
	argsEnd, overflow := memoryUint64OrOverflow(stack.Back(2), stack.Back(3))
	if overflow {
		return 0, true
	}
	retEnd, overflow := memoryUint64OrOverflow(stack.Back(4), stack.Back(5))
	if overflow {
		return 0, true
	}
	if argsEnd > retEnd {
		return argsEnd, false
	}
	return retEnd, false
}

// gasMemExpansion implements the memory-expansion formula,
// 3(b-a) + (b^2-a^2)/512, expressed word-wise as go-ethereum does: the
// quadratic term is charged on total words, not on the delta.
func gasMemExpansion(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	if memorySize == 0 {
		return 0, nil
	}
	words := (memorySize + 31) / 32
	newCost := words*params.MemoryGas + (words*words)/params.QuadCoeffDiv
	oldLen := uint64(mem.Len())
	if oldLen == 0 {
		return newCost, nil
	}
	oldWords := (oldLen + 31) / 32
	oldCost := oldWords*params.MemoryGas + (oldWords*oldWords)/params.QuadCoeffDiv
	if newCost > oldCost {
		return newCost - oldCost, nil
	}
	return 0, nil
}

// composeDynamicGas chains gasMemExpansion with an opcode-specific dynamic
// gas function, the way go-ethereum's gasTable wraps "memory + extra" costs.
func composeDynamicGas(extra dynamicGasFunc) dynamicGasFunc {
	return func(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
		memCost, err := gasMemExpansion(evm, contract, stack, mem, memorySize)
		if err != nil {
			return 0, err
		}
		if extra == nil {
			return memCost, nil
		}
		extraCost, err := extra(evm, contract, stack, mem, memorySize)
		if err != nil {
			return 0, err
		}
		total := memCost + extraCost
		if total < memCost {
			return 0, ErrGasUintOverflow
		}
		return total, nil
	}
}

// NewFrontierJumpTable returns the genesis fork's dispatch table.
func NewFrontierJumpTable() JumpTable {
	var tbl JumpTable

	tbl[STOP] = &operation{execute: opStop, minStack: 0, maxStack: maxStack(0, 0), halts: true}
	tbl[ADD] = &operation{execute: opAdd, constantGas: params.GasFastestStep, minStack: 2, maxStack: maxStack(2, 1)}
	tbl[MUL] = &operation{execute: opMul, constantGas: params.GasFastStep, minStack: 2, maxStack: maxStack(2, 1)}
	tbl[SUB] = &operation{execute: opSub, constantGas: params.GasFastestStep, minStack: 2, maxStack: maxStack(2, 1)}
	tbl[DIV] = &operation{execute: opDiv, constantGas: params.GasFastStep, minStack: 2, maxStack: maxStack(2, 1)}
	tbl[SDIV] = &operation{execute: opSdiv, constantGas: params.GasFastStep, minStack: 2, maxStack: maxStack(2, 1)}
	tbl[MOD] = &operation{execute: opMod, constantGas: params.GasFastStep, minStack: 2, maxStack: maxStack(2, 1)}
	tbl[SMOD] = &operation{execute: opSmod, constantGas: params.GasFastStep, minStack: 2, maxStack: maxStack(2, 1)}
	tbl[ADDMOD] = &operation{execute: opAddmod, constantGas: params.GasMidStep, minStack: 3, maxStack: maxStack(3, 1)}
	tbl[MULMOD] = &operation{execute: opMulmod, constantGas: params.GasMidStep, minStack: 3, maxStack: maxStack(3, 1)}
	tbl[EXP] = &operation{execute: opExp, dynamicGas: gasExpFrontier, minStack: 2, maxStack: maxStack(2, 1)}
	tbl[SIGNEXTEND] = &operation{execute: opSignExtend, constantGas: params.GasFastStep, minStack: 2, maxStack: maxStack(2, 1)}

	tbl[LT] = &operation{execute: opLt, constantGas: params.GasFastestStep, minStack: 2, maxStack: maxStack(2, 1)}
	tbl[GT] = &operation{execute: opGt, constantGas: params.GasFastestStep, minStack: 2, maxStack: maxStack(2, 1)}
	tbl[SLT] = &operation{execute: opSlt, constantGas: params.GasFastestStep, minStack: 2, maxStack: maxStack(2, 1)}
	tbl[SGT] = &operation{execute: opSgt, constantGas: params.GasFastestStep, minStack: 2, maxStack: maxStack(2, 1)}
	tbl[EQ] = &operation{execute: opEq, constantGas: params.GasFastestStep, minStack: 2, maxStack: maxStack(2, 1)}
	tbl[ISZERO] = &operation{execute: opIszero, constantGas: params.GasFastestStep, minStack: 1, maxStack: maxStack(1, 1)}
	tbl[AND] = &operation{execute: opAnd, constantGas: params.GasFastestStep, minStack: 2, maxStack: maxStack(2, 1)}
	tbl[OR] = &operation{execute: opOr, constantGas: params.GasFastestStep, minStack: 2, maxStack: maxStack(2, 1)}
	tbl[XOR] = &operation{execute: opXor, constantGas: params.GasFastestStep, minStack: 2, maxStack: maxStack(2, 1)}
	tbl[NOT] = &operation{execute: opNot, constantGas: params.GasFastestStep, minStack: 1, maxStack: maxStack(1, 1)}
	tbl[BYTE] = &operation{execute: opByte, constantGas: params.GasFastestStep, minStack: 2, maxStack: maxStack(2, 1)}

	tbl[KECCAK256] = &operation{execute: opKeccak256, constantGas: params.Keccak256Gas, dynamicGas: composeDynamicGas(gasKeccak256), memorySize: memoryKeccak256, minStack: 2, maxStack: maxStack(2, 1)}

	tbl[ADDRESS] = &operation{execute: opAddress, constantGas: params.GasQuickStep, minStack: 0, maxStack: maxStack(0, 1)}
	tbl[BALANCE] = &operation{execute: opBalance, constantGas: 20, minStack: 1, maxStack: maxStack(1, 1)}
	tbl[ORIGIN] = &operation{execute: opOrigin, constantGas: params.GasQuickStep, minStack: 0, maxStack: maxStack(0, 1)}
	tbl[CALLER] = &operation{execute: opCaller, constantGas: params.GasQuickStep, minStack: 0, maxStack: maxStack(0, 1)}
	tbl[CALLVALUE] = &operation{execute: opCallValue, constantGas: params.GasQuickStep, minStack: 0, maxStack: maxStack(0, 1)}
	tbl[CALLDATALOAD] = &operation{execute: opCallDataLoad, constantGas: params.GasFastestStep, minStack: 1, maxStack: maxStack(1, 1)}
	tbl[CALLDATASIZE] = &operation{execute: opCallDataSize, constantGas: params.GasQuickStep, minStack: 0, maxStack: maxStack(0, 1)}
	tbl[CALLDATACOPY] = &operation{execute: opCallDataCopy, constantGas: params.GasFastestStep, dynamicGas: composeDynamicGas(gasCopy), memorySize: memoryCalldataCopy, minStack: 3, maxStack: maxStack(3, 0)}
	tbl[CODESIZE] = &operation{execute: opCodeSize, constantGas: params.GasQuickStep, minStack: 0, maxStack: maxStack(0, 1)}
	tbl[CODECOPY] = &operation{execute: opCodeCopy, constantGas: params.GasFastestStep, dynamicGas: composeDynamicGas(gasCopy), memorySize: memoryCodeCopy, minStack: 3, maxStack: maxStack(3, 0)}
	tbl[GASPRICE] = &operation{execute: opGasprice, constantGas: params.GasQuickStep, minStack: 0, maxStack: maxStack(0, 1)}

	tbl[EXTCODESIZE] = &operation{execute: opExtCodeSize, constantGas: 20, minStack: 1, maxStack: maxStack(1, 1)}
	tbl[EXTCODECOPY] = &operation{execute: opExtCodeCopy, constantGas: 20, dynamicGas: composeDynamicGas(gasCopy), memorySize: memoryExtCodeCopy, minStack: 4, maxStack: maxStack(4, 0)}

	tbl[BLOCKHASH] = &operation{execute: opBlockhash, constantGas: params.GasExtStep, minStack: 1, maxStack: maxStack(1, 1)}
	tbl[COINBASE] = &operation{execute: opCoinbase, constantGas: params.GasQuickStep, minStack: 0, maxStack: maxStack(0, 1)}
	tbl[TIMESTAMP] = &operation{execute: opTimestamp, constantGas: params.GasQuickStep, minStack: 0, maxStack: maxStack(0, 1)}
	tbl[NUMBER] = &operation{execute: opNumber, constantGas: params.GasQuickStep, minStack: 0, maxStack: maxStack(0, 1)}
	tbl[PREVRANDAO] = &operation{execute: opDifficulty, constantGas: params.GasQuickStep, minStack: 0, maxStack: maxStack(0, 1)}
	tbl[GASLIMIT] = &operation{execute: opGasLimit, constantGas: params.GasQuickStep, minStack: 0, maxStack: maxStack(0, 1)}

	tbl[POP] = &operation{execute: opPop, constantGas: params.GasQuickStep, minStack: 1, maxStack: maxStack(1, 0)}
	tbl[MLOAD] = &operation{execute: opMload, constantGas: params.GasFastestStep, dynamicGas: composeDynamicGas(nil), memorySize: memoryMload, minStack: 1, maxStack: maxStack(1, 1)}
	tbl[MSTORE] = &operation{execute: opMstore, constantGas: params.GasFastestStep, dynamicGas: composeDynamicGas(nil), memorySize: memoryMstore, minStack: 2, maxStack: maxStack(2, 0)}
	tbl[MSTORE8] = &operation{execute: opMstore8, constantGas: params.GasFastestStep, dynamicGas: composeDynamicGas(nil), memorySize: memoryMstore8, minStack: 2, maxStack: maxStack(2, 0)}
	tbl[SLOAD] = &operation{execute: opSload, constantGas: 50, minStack: 1, maxStack: maxStack(1, 1)}
	tbl[SSTORE] = &operation{execute: opSstore, dynamicGas: gasSstoreFrontier, minStack: 2, maxStack: maxStack(2, 0)}
	tbl[JUMP] = &operation{execute: opJump, constantGas: params.GasMidStep, minStack: 1, maxStack: maxStack(1, 0), jumps: true}
	tbl[JUMPI] = &operation{execute: opJumpi, constantGas: 10, minStack: 2, maxStack: maxStack(2, 0), jumps: true}
	tbl[PC] = &operation{execute: opPc, constantGas: params.GasQuickStep, minStack: 0, maxStack: maxStack(0, 1)}
	tbl[MSIZE] = &operation{execute: opMsize, constantGas: params.GasQuickStep, minStack: 0, maxStack: maxStack(0, 1)}
	tbl[GAS] = &operation{execute: opGas, constantGas: params.GasQuickStep, minStack: 0, maxStack: maxStack(0, 1)}
	tbl[JUMPDEST] = &operation{execute: opJumpdest, constantGas: params.JumpdestGas, minStack: 0, maxStack: maxStack(0, 0)}

	for i := 0; i < 32; i++ {
		tbl[PUSH1+OpCode(i)] = &operation{execute: makePush(uint(i + 1)), constantGas: params.GasFastestStep, minStack: 0, maxStack: maxStack(0, 1)}
	}
	tbl[PUSH0] = nil // introduced in Shanghai; left unset pre-Shanghai

	for i := 0; i < 16; i++ {
		tbl[DUP1+OpCode(i)] = &operation{execute: makeDup(i + 1), constantGas: params.GasFastestStep, minStack: i + 1, maxStack: maxStack(i+1, i+2)}
		tbl[SWAP1+OpCode(i)] = &operation{execute: makeSwap(i + 1), constantGas: params.GasFastestStep, minStack: i + 2, maxStack: maxStack(i+2, i+2)}
	}

	for i := 0; i < 4; i++ {
		n := i
		tbl[LOG0+OpCode(i)] = &operation{
			execute:     makeLog(n),
			constantGas: params.LogGas + uint64(n)*params.LogTopicGas,
			dynamicGas:  composeDynamicGas(gasLog(n)),
			memorySize:  memoryLog,
			minStack:    2 + n,
			maxStack:    maxStack(2+n, 0),
		}
	}

	tbl[CREATE] = &operation{execute: opCreate, constantGas: params.CreateGas, dynamicGas: composeDynamicGas(nil), memorySize: memoryCreate, minStack: 3, maxStack: maxStack(3, 1)}
	tbl[CALL] = &operation{execute: opCall, constantGas: params.CallGasFrontier, dynamicGas: composeDynamicGas(gasCallFrontier), memorySize: memoryCall, minStack: 7, maxStack: maxStack(7, 1)}
	tbl[CALLCODE] = &operation{execute: opCallCode, constantGas: params.CallGasFrontier, dynamicGas: composeDynamicGas(gasCallCodeFrontier), memorySize: memoryCall, minStack: 7, maxStack: maxStack(7, 1)}
	tbl[RETURN] = &operation{execute: opReturn, dynamicGas: composeDynamicGas(nil), memorySize: memoryReturn, minStack: 2, maxStack: maxStack(2, 0), halts: true}
	tbl[INVALID] = &operation{execute: opInvalid, minStack: 0, maxStack: maxStack(0, 0), halts: true}
	tbl[SELFDESTRUCT] = &operation{execute: opSelfdestruct, constantGas: 0, minStack: 1, maxStack: maxStack(1, 0), halts: true}

	return tbl
}

// NewHomesteadJumpTable adds DELEGATECALL (EIP-7).
func NewHomesteadJumpTable() JumpTable {
	tbl := NewFrontierJumpTable()
	tbl[DELEGATECALL] = &operation{execute: opDelegateCall, constantGas: params.CallGasFrontier, dynamicGas: composeDynamicGas(nil), memorySize: memoryDelegateStaticCall, minStack: 6, maxStack: maxStack(6, 1)}
	return tbl
}

// NewByzantiumJumpTable adds REVERT, RETURNDATASIZE/COPY and STATICCALL, and
// EIP-150's repriced CALL-family constant gas (the dynamic-gas formula is
// unchanged from Frontier/Homestead).
func NewByzantiumJumpTable() JumpTable {
	tbl := NewHomesteadJumpTable()
	tbl[REVERT] = &operation{execute: opRevert, dynamicGas: composeDynamicGas(nil), memorySize: memoryReturn, minStack: 2, maxStack: maxStack(2, 0), halts: true}
	tbl[RETURNDATASIZE] = &operation{execute: opReturnDataSize, constantGas: params.GasQuickStep, minStack: 0, maxStack: maxStack(0, 1)}
	tbl[RETURNDATACOPY] = &operation{execute: opReturnDataCopy, constantGas: params.GasFastestStep, dynamicGas: composeDynamicGas(gasCopy), memorySize: memoryReturndataCopy, minStack: 3, maxStack: maxStack(3, 0)}
	tbl[STATICCALL] = &operation{execute: opStaticCall, constantGas: params.CallGasEIP150, dynamicGas: composeDynamicGas(nil), memorySize: memoryDelegateStaticCall, minStack: 6, maxStack: maxStack(6, 1)}
	tbl[CALL].constantGas = params.CallGasEIP150
	tbl[CALLCODE].constantGas = params.CallGasEIP150
	tbl[DELEGATECALL].constantGas = params.CallGasEIP150
	tbl[EXP].dynamicGas = gasExpEIP158
	return tbl
}

// NewConstantinopleJumpTable adds CREATE2, SHL/SHR/SAR and EXTCODEHASH.
func NewConstantinopleJumpTable() JumpTable {
	tbl := NewByzantiumJumpTable()
	tbl[CREATE2] = &operation{execute: opCreate2, constantGas: params.Create2Gas, dynamicGas: composeDynamicGas(gasCreate2), memorySize: memoryCreate2, minStack: 4, maxStack: maxStack(4, 1)}
	tbl[SHL] = &operation{execute: opShl, constantGas: params.GasFastestStep, minStack: 2, maxStack: maxStack(2, 1)}
	tbl[SHR] = &operation{execute: opShr, constantGas: params.GasFastestStep, minStack: 2, maxStack: maxStack(2, 1)}
	tbl[SAR] = &operation{execute: opSar, constantGas: params.GasFastestStep, minStack: 2, maxStack: maxStack(2, 1)}
	tbl[EXTCODEHASH] = &operation{execute: opExtCodeHash, constantGas: 400, minStack: 1, maxStack: maxStack(1, 1)}
	return tbl
}

// NewPetersburgJumpTable is Constantinople with EIP-1283 (net SSTORE gas
// metering) reverted, matching the fork's actual mainnet activation.
func NewPetersburgJumpTable() JumpTable {
	return NewConstantinopleJumpTable()
}

// NewIstanbulJumpTable reprics SLOAD/BALANCE/EXTCODEHASH (EIP-1884), adds
// CHAINID and SELFBALANCE (EIP-1344/1884), and switches SSTORE to net gas
// metering (EIP-2200).
func NewIstanbulJumpTable() JumpTable {
	tbl := NewPetersburgJumpTable()
	tbl[SLOAD].constantGas = 800
	tbl[EXTCODEHASH].constantGas = 700
	tbl[BALANCE].constantGas = 700
	tbl[CHAINID] = &operation{execute: opChainID, constantGas: params.GasQuickStep, minStack: 0, maxStack: maxStack(0, 1)}
	tbl[SELFBALANCE] = &operation{execute: opSelfBalance, constantGas: params.GasFastStep, minStack: 0, maxStack: maxStack(0, 1)}
	tbl[SSTORE] = &operation{execute: opSstore, dynamicGas: gasSstoreEIP2200, minStack: 2, maxStack: maxStack(2, 0)}
	return tbl
}

// NewBerlinJumpTable wires EIP-2929/2930 cold/warm access-list accounting.
func NewBerlinJumpTable() JumpTable {
	tbl := NewIstanbulJumpTable()
	tbl[SLOAD] = &operation{execute: opSload, constantGas: params.WarmStorageReadCostEIP2929, dynamicGas: gasSloadEIP2929, minStack: 1, maxStack: maxStack(1, 1)}
	tbl[SSTORE] = &operation{execute: opSstore, dynamicGas: gasSstoreEIP2929, minStack: 2, maxStack: maxStack(2, 0)}
	tbl[EXTCODESIZE] = &operation{execute: opExtCodeSize, constantGas: params.WarmStorageReadCostEIP2929, dynamicGas: gasEIP2929AccountAccess, minStack: 1, maxStack: maxStack(1, 1)}
	tbl[EXTCODEHASH] = &operation{execute: opExtCodeHash, constantGas: params.WarmStorageReadCostEIP2929, dynamicGas: gasEIP2929AccountAccess, minStack: 1, maxStack: maxStack(1, 1)}
	tbl[EXTCODECOPY] = &operation{execute: opExtCodeCopy, constantGas: params.WarmStorageReadCostEIP2929, dynamicGas: composeDynamicGas(gasExtCodeCopyEIP2929), memorySize: memoryExtCodeCopy, minStack: 4, maxStack: maxStack(4, 0)}
	tbl[BALANCE] = &operation{execute: opBalance, constantGas: params.WarmStorageReadCostEIP2929, dynamicGas: gasEIP2929AccountAccess, minStack: 1, maxStack: maxStack(1, 1)}
	tbl[CALL] = &operation{execute: opCall, constantGas: params.WarmStorageReadCostEIP2929, dynamicGas: composeDynamicGas(gasCallEIP2929), memorySize: memoryCall, minStack: 7, maxStack: maxStack(7, 1)}
	tbl[CALLCODE] = &operation{execute: opCallCode, constantGas: params.WarmStorageReadCostEIP2929, dynamicGas: composeDynamicGas(gasCallCodeEIP2929), memorySize: memoryCall, minStack: 7, maxStack: maxStack(7, 1)}
	tbl[DELEGATECALL] = &operation{execute: opDelegateCall, constantGas: params.WarmStorageReadCostEIP2929, dynamicGas: composeDynamicGas(gasDelegateCallEIP2929), memorySize: memoryDelegateStaticCall, minStack: 6, maxStack: maxStack(6, 1)}
	tbl[STATICCALL] = &operation{execute: opStaticCall, constantGas: params.WarmStorageReadCostEIP2929, dynamicGas: composeDynamicGas(gasStaticCallEIP2929), memorySize: memoryDelegateStaticCall, minStack: 6, maxStack: maxStack(6, 1)}
	tbl[SELFDESTRUCT] = &operation{execute: opSelfdestruct, dynamicGas: gasSelfdestructEIP2929, minStack: 1, maxStack: maxStack(1, 0), halts: true}
	return tbl
}

// NewLondonJumpTable adds BASEFEE (EIP-3198) and applies EIP-3529's reduced
// SELFDESTRUCT/SSTORE refunds (handled inside the gas/refund functions via
// Rules, not the table itself).
func NewLondonJumpTable() JumpTable {
	tbl := NewBerlinJumpTable()
	tbl[BASEFEE] = &operation{execute: opBaseFee, constantGas: params.GasQuickStep, minStack: 0, maxStack: maxStack(0, 1)}
	return tbl
}

// NewMergeJumpTable replaces DIFFICULTY's meaning with PREVRANDAO (EIP-4399);
// the opcode byte is unchanged, and its handler switches from opDifficulty
// to opRandom.
func NewMergeJumpTable() JumpTable {
	tbl := NewLondonJumpTable()
	tbl[PREVRANDAO] = &operation{execute: opRandom, constantGas: params.GasQuickStep, minStack: 0, maxStack: maxStack(0, 1)}
	return tbl
}

// NewShanghaiJumpTable adds PUSH0 (EIP-3855).
func NewShanghaiJumpTable() JumpTable {
	tbl := NewMergeJumpTable()
	tbl[PUSH0] = &operation{execute: opPush0, constantGas: params.GasQuickStep, minStack: 0, maxStack: maxStack(0, 1)}
	tbl[CREATE].dynamicGas = composeDynamicGas(gasCreateEIP3860)
	tbl[CREATE2].dynamicGas = composeDynamicGas(gasCreate2EIP3860)
	return tbl
}

// NewCancunJumpTable adds TLOAD/TSTORE (EIP-1153), MCOPY (EIP-5656) and
// BLOBHASH/BLOBBASEFEE (EIP-4844/7516).
func NewCancunJumpTable() JumpTable {
	tbl := NewShanghaiJumpTable()
	tbl[TLOAD] = &operation{execute: opTload, constantGas: params.WarmStorageReadCostEIP2929, minStack: 1, maxStack: maxStack(1, 1)}
	tbl[TSTORE] = &operation{execute: opTstore, constantGas: params.WarmStorageReadCostEIP2929, minStack: 2, maxStack: maxStack(2, 0)}
	tbl[MCOPY] = &operation{execute: opMcopy, constantGas: params.GasFastestStep, dynamicGas: composeDynamicGas(gasCopyWords), memorySize: memoryMcopy, minStack: 3, maxStack: maxStack(3, 0)}
	tbl[BLOBHASH] = &operation{execute: opBlobHash, constantGas: params.BlobHashOpGas, minStack: 1, maxStack: maxStack(1, 1)}
	tbl[BLOBBASEFEE] = &operation{execute: opBlobBaseFee, constantGas: params.BlobBaseFeeOpGas, minStack: 0, maxStack: maxStack(0, 1)}
	return tbl
}

// NewPragueJumpTable currently carries no new opcodes over Cancun; EIP-7702
// (set-code transactions) and EIP-7623 (calldata floor) are transaction- and
// intrinsic-gas-level changes handled in the state transition, not the
// interpreter's dispatch table.
func NewPragueJumpTable() JumpTable {
	return NewCancunJumpTable()
}

// SelectJumpTable returns the correct dispatch table for the active fork
// rules.
func SelectJumpTable(r params.Rules) JumpTable {
	switch {
	case r.IsPrague:
		return NewPragueJumpTable()
	case r.IsCancun:
		return NewCancunJumpTable()
	case r.IsShanghai:
		return NewShanghaiJumpTable()
	case r.IsMerge:
		return NewMergeJumpTable()
	case r.IsLondon:
		return NewLondonJumpTable()
	case r.IsBerlin:
		return NewBerlinJumpTable()
	case r.IsIstanbul:
		return NewIstanbulJumpTable()
	case r.IsPetersburg:
		return NewPetersburgJumpTable()
	case r.IsConstantinople:
		return NewConstantinopleJumpTable()
	case r.IsByzantium:
		return NewByzantiumJumpTable()
	case r.IsHomestead:
		return NewHomesteadJumpTable()
	default:
		return NewFrontierJumpTable()
	}
}
