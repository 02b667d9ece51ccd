package vm

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/core/types"
)

// pushN pushes values onto st in the given order (first argument pushed first).
func pushN(t *testing.T, st *Stack, values ...uint64) {
	t.Helper()
	for _, v := range values {
		if err := st.Push(uint256.NewInt(v)); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}
}

func TestStaticWriteProtectionSSTORE(t *testing.T) {
	evm := &EVM{readOnly: true}
	contract := NewContract(types.Address{}, types.Address{}, new(uint256.Int), 1000)
	stack := NewStack()
	defer ReturnStack(stack)

	var pc uint64
	if _, err := opSstore(&pc, evm, contract, NewMemory(), stack); err != ErrWriteProtection {
		t.Errorf("SSTORE in a static context = %v, want ErrWriteProtection", err)
	}
}

func TestStaticWriteProtectionTSTORE(t *testing.T) {
	evm := &EVM{readOnly: true}
	contract := NewContract(types.Address{}, types.Address{}, new(uint256.Int), 1000)
	stack := NewStack()
	defer ReturnStack(stack)

	var pc uint64
	if _, err := opTstore(&pc, evm, contract, NewMemory(), stack); err != ErrWriteProtection {
		t.Errorf("TSTORE in a static context = %v, want ErrWriteProtection", err)
	}
}

func TestStaticWriteProtectionLOG(t *testing.T) {
	evm := &EVM{readOnly: true}
	contract := NewContract(types.Address{}, types.Address{}, new(uint256.Int), 1000)
	stack := NewStack()
	defer ReturnStack(stack)

	var pc uint64
	log0 := makeLog(0)
	if _, err := log0(&pc, evm, contract, NewMemory(), stack); err != ErrWriteProtection {
		t.Errorf("LOG0 in a static context = %v, want ErrWriteProtection", err)
	}
}

func TestStaticWriteProtectionSELFDESTRUCT(t *testing.T) {
	evm := &EVM{readOnly: true}
	contract := NewContract(types.Address{}, types.Address{}, new(uint256.Int), 1000)
	stack := NewStack()
	defer ReturnStack(stack)

	var pc uint64
	if _, err := opSelfdestruct(&pc, evm, contract, NewMemory(), stack); err != ErrWriteProtection {
		t.Errorf("SELFDESTRUCT in a static context = %v, want ErrWriteProtection", err)
	}
}

func TestStaticWriteProtectionCREATE(t *testing.T) {
	evm := &EVM{readOnly: true}
	contract := NewContract(types.Address{}, types.Address{}, new(uint256.Int), 1000)
	stack := NewStack()
	defer ReturnStack(stack)

	var pc uint64
	if _, err := opCreate(&pc, evm, contract, NewMemory(), stack); err != ErrWriteProtection {
		t.Errorf("CREATE in a static context = %v, want ErrWriteProtection", err)
	}
}

func TestStaticWriteProtectionCREATE2(t *testing.T) {
	evm := &EVM{readOnly: true}
	contract := NewContract(types.Address{}, types.Address{}, new(uint256.Int), 1000)
	stack := NewStack()
	defer ReturnStack(stack)

	var pc uint64
	if _, err := opCreate2(&pc, evm, contract, NewMemory(), stack); err != ErrWriteProtection {
		t.Errorf("CREATE2 in a static context = %v, want ErrWriteProtection", err)
	}
}

// opCall pops its full operand set before checking the static-context rule,
// so the stack must carry seven well-formed items: a non-zero value (the
// third item popped) is what trips the write-protection check.
func TestStaticWriteProtectionCALLWithValue(t *testing.T) {
	evm := &EVM{readOnly: true}
	contract := NewContract(types.Address{}, types.Address{}, new(uint256.Int), 1000)
	stack := NewStack()
	defer ReturnStack(stack)

	// push order reversed relative to pop order: gasReq, addrWord, value,
	// inOffset, inSize, retOffset, retSize.
	pushN(t, stack, 0, 0, 0, 0, 1, 0, 100)
	var pc uint64
	if _, err := opCall(&pc, evm, contract, NewMemory(), stack); err != ErrWriteProtection {
		t.Errorf("CALL with nonzero value in a static context = %v, want ErrWriteProtection", err)
	}
}
