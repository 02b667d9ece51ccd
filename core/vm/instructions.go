package vm

import (
	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/crypto"
	"github.com/execlayer/evmcore/params"
)

// isNeg256 reports whether x's top bit is set, i.e. x is negative under
// 256-bit two's-complement interpretation.
func isNeg256(x *uint256.Int) bool {
	b := x.Bytes32()
	return b[0]&0x80 != 0
}

// --- Arithmetic ---

func opAdd(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	y.Add(x, y)
	return nil, nil
}

func opSub(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	y.Sub(x, y)
	return nil, nil
}

func opMul(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	y.Mul(x, y)
	return nil, nil
}

func opDiv(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	y.Div(x, y)
	return nil, nil
}

func opSdiv(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	y.SDiv(x, y)
	return nil, nil
}

func opMod(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	y.Mod(x, y)
	return nil, nil
}

func opSmod(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	y.SMod(x, y)
	return nil, nil
}

func opAddmod(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y, z := stack.Pop(), stack.Pop(), stack.Peek()
	if z.IsZero() {
		z.Clear()
	} else {
		z.AddMod(x, y, z)
	}
	return nil, nil
}

func opMulmod(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y, z := stack.Pop(), stack.Pop(), stack.Peek()
	if z.IsZero() {
		z.Clear()
	} else {
		z.MulMod(x, y, z)
	}
	return nil, nil
}

func opExp(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	base, exponent := stack.Pop(), stack.Peek()
	exponent.Exp(base, exponent)
	return nil, nil
}

func opSignExtend(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	back, num := stack.Pop(), stack.Peek()
	if back.LtUint64(31) {
		b := num.Bytes32()
		idx := 31 - int(back.Uint64())
		var fill byte
		if b[idx]&0x80 != 0 {
			fill = 0xff
		}
		for i := 0; i < idx; i++ {
			b[i] = fill
		}
		num.SetBytes32(b[:])
	}
	return nil, nil
}

// --- Comparison & bitwise ---

func opLt(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	if x.Lt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opGt(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	if x.Gt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opSlt(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	if x.Slt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opSgt(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	if x.Sgt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opEq(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	if x.Eq(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opIszero(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x := stack.Peek()
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	return nil, nil
}

func opAnd(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	y.And(x, y)
	return nil, nil
}

func opOr(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	y.Or(x, y)
	return nil, nil
}

func opXor(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	y.Xor(x, y)
	return nil, nil
}

func opNot(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x := stack.Peek()
	x.Not(x)
	return nil, nil
}

func opByte(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	th, val := stack.Pop(), stack.Peek()
	if th.LtUint64(32) {
		b := val.Bytes32()
		val.SetUint64(uint64(b[th.Uint64()]))
	} else {
		val.Clear()
	}
	return nil, nil
}

func opShl(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	shift, value := stack.Pop(), stack.Peek()
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

func opShr(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	shift, value := stack.Pop(), stack.Peek()
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

func opSar(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	shift, value := stack.Pop(), stack.Peek()
	neg := isNeg256(value)
	if !shift.LtUint64(256) {
		if neg {
			value.SetAllOne()
		} else {
			value.Clear()
		}
		return nil, nil
	}
	value.SRsh(value, uint(shift.Uint64()))
	return nil, nil
}

// --- KECCAK256 ---

func opKeccak256(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	offset, size := stack.Pop(), stack.Pop()
	data := memory.GetPtr(offset.Uint64(), size.Uint64())
	hash := crypto.Keccak256(data)
	v := new(uint256.Int)
	v.SetBytes(hash)
	stack.Push(v)
	return nil, nil
}

// --- Environmental information ---

func opAddress(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.Push(addressToUint256(contract.Address))
	return nil, nil
}

func opBalance(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	addrWord := stack.Peek()
	addr := types.BytesToAddress(addrWord.Bytes())
	addrWord.Set(evm.StateDB.GetBalance(addr))
	return nil, nil
}

func opOrigin(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.Push(addressToUint256(evm.TxContext.Origin))
	return nil, nil
}

func opCaller(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.Push(addressToUint256(contract.CallerAddress))
	return nil, nil
}

func opCallValue(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	v := new(uint256.Int)
	if contract.Value != nil {
		v.Set(contract.Value)
	}
	stack.Push(v)
	return nil, nil
}

func opCallDataLoad(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	offset := stack.Peek()
	var buf [32]byte
	if offset.LtUint64(uint64(len(contract.Input))) {
		off := offset.Uint64()
		copy(buf[:], contract.Input[off:])
	}
	offset.SetBytes32(buf[:])
	return nil, nil
}

func opCallDataSize(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.Push(uint256.NewInt(uint64(len(contract.Input))))
	return nil, nil
}

func opCallDataCopy(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	destOffset, offset, size := stack.Pop(), stack.Pop(), stack.Pop()
	data := getDataSlice(contract.Input, offset.Uint64(), size.Uint64())
	memory.Set(destOffset.Uint64(), size.Uint64(), data)
	return nil, nil
}

func opCodeSize(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.Push(uint256.NewInt(uint64(len(contract.Code))))
	return nil, nil
}

func opCodeCopy(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	destOffset, offset, size := stack.Pop(), stack.Pop(), stack.Pop()
	data := getDataSlice(contract.Code, offset.Uint64(), size.Uint64())
	memory.Set(destOffset.Uint64(), size.Uint64(), data)
	return nil, nil
}

func opGasprice(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	v := new(uint256.Int)
	if evm.TxContext.GasPrice != nil {
		v.Set(evm.TxContext.GasPrice)
	}
	stack.Push(v)
	return nil, nil
}

func opExtCodeSize(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	addrWord := stack.Peek()
	addr := types.BytesToAddress(addrWord.Bytes())
	addrWord.SetUint64(uint64(evm.StateDB.GetCodeSize(addr)))
	return nil, nil
}

func opExtCodeCopy(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	addrWord, destOffset, offset, size := stack.Pop(), stack.Pop(), stack.Pop(), stack.Pop()
	addr := types.BytesToAddress(addrWord.Bytes())
	code := evm.StateDB.GetCode(addr)
	data := getDataSlice(code, offset.Uint64(), size.Uint64())
	memory.Set(destOffset.Uint64(), size.Uint64(), data)
	return nil, nil
}

func opExtCodeHash(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	addrWord := stack.Peek()
	addr := types.BytesToAddress(addrWord.Bytes())
	if !evm.StateDB.Exist(addr) || evm.StateDB.Empty(addr) {
		addrWord.Clear()
		return nil, nil
	}
	addrWord.SetBytes32(evm.StateDB.GetCodeHash(addr).Bytes())
	return nil, nil
}

func opReturnDataSize(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.Push(uint256.NewInt(uint64(len(evm.returnData))))
	return nil, nil
}

func opReturnDataCopy(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	destOffset, offset, size := stack.Pop(), stack.Pop(), stack.Pop()
	end := new(uint256.Int).Add(offset, size)
	if !end.IsUint64() || end.Uint64() > uint64(len(evm.returnData)) {
		return nil, ErrReturnDataOutOfBounds
	}
	memory.Set(destOffset.Uint64(), size.Uint64(), evm.returnData[offset.Uint64():end.Uint64()])
	return nil, nil
}

// --- Block information ---

func opBlockhash(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	num := stack.Peek()
	if !num.IsUint64() {
		num.Clear()
		return nil, nil
	}
	n := num.Uint64()
	cur := evm.Context.BlockNumber
	if n >= cur || cur-n > 256 || evm.Context.GetHash == nil {
		num.Clear()
		return nil, nil
	}
	num.SetBytes32(evm.Context.GetHash(n).Bytes())
	return nil, nil
}

func opCoinbase(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.Push(addressToUint256(evm.Context.Coinbase))
	return nil, nil
}

func opTimestamp(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.Push(uint256.NewInt(evm.Context.Time))
	return nil, nil
}

func opNumber(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.Push(uint256.NewInt(evm.Context.BlockNumber))
	return nil, nil
}

func opDifficulty(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	v := new(uint256.Int)
	if evm.Context.Difficulty != nil {
		v.Set(evm.Context.Difficulty)
	}
	stack.Push(v)
	return nil, nil
}

// opRandom implements DIFFICULTY's post-Merge meaning, PREVRANDAO (EIP-4399).
func opRandom(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	v := new(uint256.Int)
	if evm.Context.Random != nil {
		v.SetBytes32(evm.Context.Random.Bytes())
	}
	stack.Push(v)
	return nil, nil
}

func opGasLimit(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.Push(uint256.NewInt(evm.Context.GasLimit))
	return nil, nil
}

func opChainID(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	v := new(uint256.Int)
	if evm.rules.ChainID != nil {
		v.SetFromBig(evm.rules.ChainID)
	}
	stack.Push(v)
	return nil, nil
}

func opSelfBalance(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.Push(new(uint256.Int).Set(evm.StateDB.GetBalance(contract.Address)))
	return nil, nil
}

func opBaseFee(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	v := new(uint256.Int)
	if evm.Context.BaseFee != nil {
		v.Set(evm.Context.BaseFee)
	}
	stack.Push(v)
	return nil, nil
}

func opBlobHash(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	idx := stack.Peek()
	if idx.IsUint64() && idx.Uint64() < uint64(len(evm.TxContext.BlobHashes)) {
		idx.SetBytes32(evm.TxContext.BlobHashes[idx.Uint64()].Bytes())
	} else {
		idx.Clear()
	}
	return nil, nil
}

func opBlobBaseFee(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	v := new(uint256.Int)
	if evm.Context.BlobBaseFee != nil {
		v.Set(evm.Context.BlobBaseFee)
	}
	stack.Push(v)
	return nil, nil
}

// --- Stack, memory, storage, flow ---

func opPop(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.Pop()
	return nil, nil
}

func opMload(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	offset := stack.Peek()
	offset.SetBytes32(memory.GetPtr(offset.Uint64(), 32))
	return nil, nil
}

func opMstore(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	offset, val := stack.Pop(), stack.Pop()
	memory.Set32(offset.Uint64(), val)
	return nil, nil
}

func opMstore8(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	offset, val := stack.Pop(), stack.Pop()
	memory.Set(offset.Uint64(), 1, []byte{byte(val.Uint64())})
	return nil, nil
}

func opSload(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	loc := stack.Peek()
	key := types.Hash(loc.Bytes32())
	loc.SetBytes32(evm.StateDB.GetState(contract.Address, key).Bytes())
	return nil, nil
}

func opSstore(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	if evm.readOnly {
		return nil, ErrWriteProtection
	}
	key, val := stack.Pop(), stack.Pop()
	evm.StateDB.SetState(contract.Address, types.Hash(key.Bytes32()), types.Hash(val.Bytes32()))
	return nil, nil
}

func opJump(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	dest := stack.Pop()
	if !contract.ValidJumpdest(dest) {
		return nil, ErrInvalidJump
	}
	*pc = dest.Uint64()
	return nil, nil
}

func opJumpi(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	dest, cond := stack.Pop(), stack.Pop()
	if !cond.IsZero() {
		if !contract.ValidJumpdest(dest) {
			return nil, ErrInvalidJump
		}
		*pc = dest.Uint64()
	} else {
		*pc++
	}
	return nil, nil
}

func opPc(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.Push(uint256.NewInt(*pc))
	return nil, nil
}

func opMsize(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.Push(uint256.NewInt(uint64(memory.Len())))
	return nil, nil
}

func opGas(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.Push(uint256.NewInt(contract.Gas))
	return nil, nil
}

func opJumpdest(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	return nil, nil
}

func opTload(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	loc := stack.Peek()
	key := types.Hash(loc.Bytes32())
	loc.SetBytes32(evm.StateDB.GetTransientState(contract.Address, key).Bytes())
	return nil, nil
}

func opTstore(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	if evm.readOnly {
		return nil, ErrWriteProtection
	}
	key, val := stack.Pop(), stack.Pop()
	evm.StateDB.SetTransientState(contract.Address, types.Hash(key.Bytes32()), types.Hash(val.Bytes32()))
	return nil, nil
}

func opMcopy(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	dst, src, size := stack.Pop(), stack.Pop(), stack.Pop()
	memory.Copy(dst.Uint64(), src.Uint64(), size.Uint64())
	return nil, nil
}

// --- PUSH/DUP/SWAP/LOG generators ---

func opPush0(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.Push(new(uint256.Int))
	return nil, nil
}

func makePush(size uint) executionFunc {
	return func(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
		codeLen := uint64(len(contract.Code))
		start := *pc + 1
		var buf [32]byte
		if start < codeLen {
			end := start + uint64(size)
			if end > codeLen {
				end = codeLen
			}
			copy(buf[32-size:], contract.Code[start:end])
		}
		v := new(uint256.Int)
		v.SetBytes32(buf[:])
		stack.Push(v)
		*pc += uint64(size)
		return nil, nil
	}
}

func makeDup(n int) executionFunc {
	return func(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
		stack.Dup(n)
		return nil, nil
	}
}

func makeSwap(n int) executionFunc {
	return func(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
		stack.Swap(n)
		return nil, nil
	}
}

func makeLog(n int) executionFunc {
	return func(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
		if evm.readOnly {
			return nil, ErrWriteProtection
		}
		offset, size := stack.Pop(), stack.Pop()
		topics := make([]types.Hash, n)
		for i := 0; i < n; i++ {
			topics[i] = types.Hash(stack.Pop().Bytes32())
		}
		data := memory.Get(offset.Uint64(), size.Uint64())
		evm.StateDB.AddLog(&types.Log{
			Address: contract.Address,
			Topics:  topics,
			Data:    data,
		})
		return nil, nil
	}
}

// --- Halting and system opcodes (deferred to the message executor, evm.go) ---

func opStop(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	return nil, nil
}

func opReturn(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	offset, size := stack.Pop(), stack.Pop()
	return memory.GetPtr(offset.Uint64(), size.Uint64()), nil
}

func opRevert(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	offset, size := stack.Pop(), stack.Pop()
	ret := memory.GetPtr(offset.Uint64(), size.Uint64())
	return ret, ErrExecutionReverted
}

func opInvalid(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	return nil, ErrInvalidOpCode
}

func opSelfdestruct(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	if evm.readOnly {
		return nil, ErrWriteProtection
	}
	beneficiary := types.BytesToAddress(stack.Pop().Bytes())
	balance := evm.StateDB.GetBalance(contract.Address)
	evm.StateDB.AddBalance(beneficiary, balance)
	evm.StateDB.SelfDestruct(contract.Address)
	return nil, nil
}

func opCreate(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	if evm.readOnly {
		return nil, ErrWriteProtection
	}
	value, offset, size := stack.Pop(), stack.Pop(), stack.Pop()
	initCode := memory.Get(offset.Uint64(), size.Uint64())
	gas := contract.Gas - contract.Gas/params.QuadDivisorCall
	contract.Gas -= gas
	ret, addr, returnGas, err := evm.Create(contract.Address, initCode, gas, value)
	contract.Gas += returnGas
	evm.returnData = ret
	pushCreateResult(stack, addr, err)
	if err != nil && err != ErrExecutionReverted {
		return nil, nil
	}
	return ret, nil
}

func opCreate2(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	if evm.readOnly {
		return nil, ErrWriteProtection
	}
	value, offset, size, salt := stack.Pop(), stack.Pop(), stack.Pop(), stack.Pop()
	initCode := memory.Get(offset.Uint64(), size.Uint64())
	gas := contract.Gas - contract.Gas/params.QuadDivisorCall
	contract.Gas -= gas
	ret, addr, returnGas, err := evm.Create2(contract.Address, initCode, gas, value, salt)
	contract.Gas += returnGas
	evm.returnData = ret
	pushCreateResult(stack, addr, err)
	if err != nil && err != ErrExecutionReverted {
		return nil, nil
	}
	return ret, nil
}

func pushCreateResult(stack *Stack, addr types.Address, err error) {
	if err != nil {
		stack.Push(new(uint256.Int))
		return
	}
	stack.Push(addressToUint256(addr))
}

func opCall(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	gasReq, addrWord, value := stack.Pop(), stack.Pop(), stack.Pop()
	inOffset, inSize, retOffset, retSize := stack.Pop(), stack.Pop(), stack.Pop(), stack.Pop()
	if evm.readOnly && !value.IsZero() {
		return nil, ErrWriteProtection
	}
	addr := types.BytesToAddress(addrWord.Bytes())
	args := memory.GetPtr(inOffset.Uint64(), inSize.Uint64())
	gas := CallGas(contract.Gas, gasReq.Uint64())
	contract.Gas -= gas
	ret, returnGas, err := evm.Call(contract.Address, addr, args, gas, value)
	contract.Gas += returnGas
	finishCall(evm, stack, memory, ret, retOffset.Uint64(), retSize.Uint64(), err)
	return nil, nil
}

func opCallCode(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	gasReq, addrWord, value := stack.Pop(), stack.Pop(), stack.Pop()
	inOffset, inSize, retOffset, retSize := stack.Pop(), stack.Pop(), stack.Pop(), stack.Pop()
	addr := types.BytesToAddress(addrWord.Bytes())
	args := memory.GetPtr(inOffset.Uint64(), inSize.Uint64())
	gas := CallGas(contract.Gas, gasReq.Uint64())
	contract.Gas -= gas
	ret, returnGas, err := evm.CallCode(contract.Address, addr, args, gas, value)
	contract.Gas += returnGas
	finishCall(evm, stack, memory, ret, retOffset.Uint64(), retSize.Uint64(), err)
	return nil, nil
}

func opDelegateCall(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	gasReq, addrWord := stack.Pop(), stack.Pop()
	inOffset, inSize, retOffset, retSize := stack.Pop(), stack.Pop(), stack.Pop(), stack.Pop()
	addr := types.BytesToAddress(addrWord.Bytes())
	args := memory.GetPtr(inOffset.Uint64(), inSize.Uint64())
	gas := CallGas(contract.Gas, gasReq.Uint64())
	contract.Gas -= gas
	ret, returnGas, err := evm.DelegateCall(contract, addr, args, gas)
	contract.Gas += returnGas
	finishCall(evm, stack, memory, ret, retOffset.Uint64(), retSize.Uint64(), err)
	return nil, nil
}

func opStaticCall(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	gasReq, addrWord := stack.Pop(), stack.Pop()
	inOffset, inSize, retOffset, retSize := stack.Pop(), stack.Pop(), stack.Pop(), stack.Pop()
	addr := types.BytesToAddress(addrWord.Bytes())
	args := memory.GetPtr(inOffset.Uint64(), inSize.Uint64())
	gas := CallGas(contract.Gas, gasReq.Uint64())
	contract.Gas -= gas
	ret, returnGas, err := evm.StaticCall(contract.Address, addr, args, gas)
	contract.Gas += returnGas
	finishCall(evm, stack, memory, ret, retOffset.Uint64(), retSize.Uint64(), err)
	return nil, nil
}

func finishCall(evm *EVM, stack *Stack, memory *Memory, ret []byte, retOffset, retSize uint64, err error) {
	evm.returnData = ret
	if retSize > 0 && len(ret) > 0 {
		n := retSize
		if uint64(len(ret)) < n {
			n = uint64(len(ret))
		}
		memory.Set(retOffset, n, ret[:n])
	}
	if err != nil {
		stack.Push(new(uint256.Int))
	} else {
		stack.Push(uint256.NewInt(1))
	}
}

func addressToUint256(a types.Address) *uint256.Int {
	v := new(uint256.Int)
	v.SetBytes(a.Bytes())
	return v
}

func getDataSlice(data []byte, offset, size uint64) []byte {
	out := make([]byte, size)
	if offset >= uint64(len(data)) || size == 0 {
		return out
	}
	end := offset + size
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	copy(out, data[offset:end])
	return out
}
