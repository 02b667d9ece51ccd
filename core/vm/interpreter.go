package vm

// Interpreter drives one frame's fetch-decode-execute loop against a fork's
// jump table: for each step it validates the
// stack depth, charges constant gas, computes the memory-expansion
// requirement without resizing, charges dynamic gas (which folds in memory
// expansion), resizes memory, then dispatches to the opcode handler.
type Interpreter struct {
	evm *EVM
}

// NewInterpreter returns an Interpreter bound to evm's jump table and state.
func NewInterpreter(evm *EVM) *Interpreter {
	return &Interpreter{evm: evm}
}

// Run executes contract.Code against contract.Input until the frame halts,
// jumps out of bounds, or raises an exception.
func (in *Interpreter) Run(contract *Contract) ([]byte, error) {
	evm := in.evm

	var pc uint64
	stack := NewStack()
	defer ReturnStack(stack)
	mem := NewMemory()

	for {
		op := contract.GetOp(pc)
		operation := evm.jumpTable[op]
		if operation == nil || operation.execute == nil {
			return nil, ErrInvalidOpCode
		}

		sLen := stack.Len()
		if sLen < operation.minStack {
			return nil, ErrStackUnderflow
		}
		if sLen > operation.maxStack {
			return nil, ErrStackOverflow
		}

		if operation.constantGas > 0 {
			if !contract.UseGas(operation.constantGas) {
				return nil, ErrOutOfGas
			}
		}

		var memorySize uint64
		if operation.memorySize != nil {
			size, overflow := operation.memorySize(stack)
			if overflow {
				return nil, ErrGasUintOverflow
			}
			if size > 0 {
				memorySize = (size + 31) / 32 * 32
			}
		}

		if operation.dynamicGas != nil {
			cost, err := operation.dynamicGas(evm, contract, stack, mem, memorySize)
			if err != nil {
				return nil, err
			}
			if !contract.UseGas(cost) {
				return nil, ErrOutOfGas
			}
		}

		if memorySize > 0 && uint64(mem.Len()) < memorySize {
			mem.Resize(memorySize)
		}

		ret, err := operation.execute(&pc, evm, contract, mem, stack)
		if err != nil {
			return ret, err
		}

		if operation.halts {
			return ret, nil
		}
		if operation.jumps {
			continue
		}
		pc++
	}
}
