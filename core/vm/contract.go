package vm

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/core/types"
)

// Contract is the code-and-context view of one executing frame: the code
// being run, its caller/callee addresses, the value attached to the call,
// and the gas budget available to it.
type Contract struct {
	CallerAddress types.Address
	Address       types.Address // the account whose storage this frame mutates
	CodeAddr      types.Address // the account the running code was loaded from (differs from Address under DELEGATECALL/CALLCODE)
	Code          []byte
	CodeHash      types.Hash
	Input         []byte
	Gas           uint64
	Value         *uint256.Int

	jumpdests *bitset.BitSet // lazily computed valid-JUMPDEST bitmap, cached per code
}

// NewContract builds a frame's Contract for code running at addr on behalf
// of caller, carrying value and an initial gas budget.
func NewContract(caller, addr types.Address, value *uint256.Int, gas uint64) *Contract {
	return &Contract{
		CallerAddress: caller,
		Address:       addr,
		CodeAddr:      addr,
		Value:         value,
		Gas:           gas,
	}
}

// GetOp returns the opcode at position n, or STOP past the end of code,
// so the dispatch loop halts cleanly when pc runs off the end.
func (c *Contract) GetOp(n uint64) OpCode {
	if n < uint64(len(c.Code)) {
		return OpCode(c.Code[n])
	}
	return STOP
}

// UseGas attempts to deduct gas from the contract's remaining budget,
// reporting false (without mutating Gas) if the budget is insufficient.
func (c *Contract) UseGas(gas uint64) bool {
	if c.Gas < gas {
		return false
	}
	c.Gas -= gas
	return true
}

// SetCallCode installs code (and its hash) as the bytes this frame
// executes, used when a CALL/DELEGATECALL/CALLCODE/STATICCALL's callee
// resolves to an account with code.
func (c *Contract) SetCallCode(codeAddr types.Address, hash types.Hash, code []byte) {
	c.Code = code
	c.CodeHash = hash
	c.CodeAddr = codeAddr
	c.jumpdests = nil
}

// ValidJumpdest reports whether dest is a JUMPDEST opcode position that is
// not itself inside a PUSHn's immediate-data region.
func (c *Contract) ValidJumpdest(dest *uint256.Int) bool {
	if !dest.IsUint64() {
		return false
	}
	udest := dest.Uint64()
	if udest >= uint64(len(c.Code)) {
		return false
	}
	if OpCode(c.Code[udest]) != JUMPDEST {
		return false
	}
	return c.jumpdestBitmap().Test(uint(udest))
}

// jumpdestBitmap returns the cached per-code bitmap of valid JUMPDEST
// positions, computing it once on first use.
func (c *Contract) jumpdestBitmap() *bitset.BitSet {
	if c.jumpdests != nil {
		return c.jumpdests
	}
	bs := bitset.New(uint(len(c.Code)))
	for i := uint64(0); i < uint64(len(c.Code)); i++ {
		op := OpCode(c.Code[i])
		if op == JUMPDEST {
			bs.Set(uint(i))
		}
		if op.IsPush() {
			i += uint64(op - PUSH1 + 1)
		}
	}
	c.jumpdests = bs
	return bs
}
