package vm

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/crypto"
	"github.com/execlayer/evmcore/params"
	"github.com/execlayer/evmcore/rlp"
)

// MaxCallDepth is the maximum nesting depth of CALL/CREATE frames.
const MaxCallDepth = 1024

// CallStipend is the free gas granted to a value-transferring CALL's
// callee, on top of whatever the caller explicitly forwards.
const CallStipend = 2300

var ErrMaxCallDepthExceeded = ErrDepth

// StateDB is the account/storage view the interpreter reads and mutates.
// Its method set matches core/state.StateDB structurally so a *state.StateDB
// satisfies it without an adapter.
type StateDB interface {
	CreateAccount(addr types.Address)

	SubBalance(addr types.Address, amount *uint256.Int)
	AddBalance(addr types.Address, amount *uint256.Int)
	GetBalance(addr types.Address) *uint256.Int

	GetNonce(addr types.Address) uint64
	SetNonce(addr types.Address, nonce uint64)

	GetCode(addr types.Address) []byte
	SetCode(addr types.Address, code []byte)
	GetCodeHash(addr types.Address) types.Hash
	GetCodeSize(addr types.Address) int

	SelfDestruct(addr types.Address)
	HasSelfDestructed(addr types.Address) bool

	GetState(addr types.Address, key types.Hash) types.Hash
	GetCommittedState(addr types.Address, key types.Hash) types.Hash
	SetState(addr types.Address, key, value types.Hash)
	GetStorageRoot(addr types.Address) types.Hash

	Exist(addr types.Address) bool
	Empty(addr types.Address) bool

	Snapshot() int
	RevertToSnapshot(id int)

	AddLog(log *types.Log)

	AddRefund(gas uint64)
	SubRefund(gas uint64)
	GetRefund() uint64

	AddAddressToAccessList(addr types.Address)
	AddSlotToAccessList(addr types.Address, slot types.Hash)
	AddressInAccessList(addr types.Address) bool
	SlotInAccessList(addr types.Address, slot types.Hash) (addrOk, slotOk bool)

	GetTransientState(addr types.Address, key types.Hash) types.Hash
	SetTransientState(addr types.Address, key, value types.Hash)
}

// BlockContext carries the block-scoped values opcodes read: header fields,
// the ancestor-hash oracle for BLOCKHASH, and the post-Merge randomness word.
type BlockContext struct {
	GetHash func(blockNumber uint64) types.Hash

	Coinbase    types.Address
	GasLimit    uint64
	BlockNumber uint64
	Time        uint64
	Difficulty  *uint256.Int
	Random      *types.Hash
	BaseFee     *uint256.Int
	BlobBaseFee *uint256.Int
}

// TxContext carries the transaction-scoped values opcodes read.
type TxContext struct {
	Origin     types.Address
	GasPrice   *uint256.Int
	BlobHashes []types.Hash
}

// Config holds EVM behavioral knobs independent of fork rules: currently
// only the NoBaseFee flag.
type Config struct {
	NoBaseFee bool
}

// EVM ties together one block/transaction's context, a StateDB, and the
// fork-selected jump table and precompile roster, and exposes the
// message-executor entry points CALL/CALLCODE/DELEGATECALL/STATICCALL/
// CREATE/CREATE2.
type EVM struct {
	Context   BlockContext
	TxContext TxContext
	StateDB   StateDB
	Config    Config

	rules       params.Rules
	jumpTable   JumpTable
	precompiles map[types.Address]PrecompiledContract

	depth      int
	readOnly   bool
	returnData []byte
}

// NewEVM constructs an EVM for one transaction's execution, selecting the
// jump table and precompile roster for the given fork rules.
func NewEVM(blockCtx BlockContext, txCtx TxContext, statedb StateDB, rules params.Rules, cfg Config) *EVM {
	return &EVM{
		Context:     blockCtx,
		TxContext:   txCtx,
		StateDB:     statedb,
		Config:      cfg,
		rules:       rules,
		jumpTable:   SelectJumpTable(rules),
		precompiles: ActivePrecompiles(rules),
	}
}

func (evm *EVM) precompile(addr types.Address) (PrecompiledContract, bool) {
	p, ok := evm.precompiles[addr]
	return p, ok
}

// Run drives contract's code to completion or exception, delegating the
// fetch-decode-execute loop to the Interpreter (interpreter.go).
func (evm *EVM) Run(contract *Contract, input []byte) ([]byte, error) {
	contract.Input = input
	return NewInterpreter(evm).Run(contract)
}

func hasCode(evm *EVM, addr types.Address) bool {
	hash := evm.StateDB.GetCodeHash(addr)
	return hash != types.EmptyCodeHash && hash != (types.Hash{})
}

// runFrame spawns a child contract frame sharing evm's jump table/rules,
// wrapping the call in a StateDB snapshot that is rolled back on any
// non-revert exception and rolled back (but gas kept) on ErrExecutionReverted.
func (evm *EVM) runFrame(contract *Contract, input []byte, snapshot int) ([]byte, uint64, error) {
	ret, err := evm.Run(contract, input)
	gasLeft := contract.Gas
	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			gasLeft = 0
		}
	}
	return ret, gasLeft, err
}

// Call executes the code at addr as a fresh frame, transferring value from
// caller to addr first.
func (evm *EVM) Call(caller, addr types.Address, input []byte, gas uint64, value *uint256.Int) ([]byte, uint64, error) {
	if evm.depth > MaxCallDepth {
		return nil, gas, ErrDepth
	}
	transfersValue := value != nil && !value.IsZero()
	if transfersValue && evm.readOnly {
		return nil, gas, ErrWriteProtection
	}
	if transfersValue && evm.StateDB.GetBalance(caller).Lt(value) {
		return nil, gas, ErrInsufficientBalance
	}

	snapshot := evm.StateDB.Snapshot()
	if !evm.StateDB.Exist(addr) {
		evm.StateDB.CreateAccount(addr)
	}
	if transfersValue {
		evm.StateDB.SubBalance(caller, value)
		evm.StateDB.AddBalance(addr, value)
	}

	if p, ok := evm.precompile(addr); ok {
		ret, gasLeft, err := evm.runPrecompile(p, input, gas)
		if err != nil {
			evm.StateDB.RevertToSnapshot(snapshot)
		}
		return ret, gasLeft, err
	}

	code := evm.StateDB.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}
	contract := NewContract(caller, addr, cloneU256(value), addCallStipend(gas, transfersValue))
	contract.SetCallCode(addr, evm.StateDB.GetCodeHash(addr), code)

	evm.depth++
	ret, gasLeft, err := evm.runFrame(contract, input, snapshot)
	evm.depth--
	return ret, subCallStipend(gasLeft, transfersValue), err
}

// CallCode executes addr's code in the caller's own storage context;
// value is notionally transferred caller->caller.
func (evm *EVM) CallCode(caller, addr types.Address, input []byte, gas uint64, value *uint256.Int) ([]byte, uint64, error) {
	if evm.depth > MaxCallDepth {
		return nil, gas, ErrDepth
	}
	transfersValue := value != nil && !value.IsZero()
	if transfersValue && evm.StateDB.GetBalance(caller).Lt(value) {
		return nil, gas, ErrInsufficientBalance
	}

	if p, ok := evm.precompile(addr); ok {
		return evm.runPrecompile(p, input, gas)
	}

	snapshot := evm.StateDB.Snapshot()
	code := evm.StateDB.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}
	contract := NewContract(caller, caller, cloneU256(value), addCallStipend(gas, transfersValue))
	contract.SetCallCode(addr, evm.StateDB.GetCodeHash(addr), code)

	evm.depth++
	ret, gasLeft, err := evm.runFrame(contract, input, snapshot)
	evm.depth--
	return ret, subCallStipend(gasLeft, transfersValue), err
}

// addCallStipend grants a value-transferring call's child frame the free
// 2300 gas stipend (EIP-150/EIP-2046's CallStipend), never charged to the
// caller.
func addCallStipend(gas uint64, transfersValue bool) uint64 {
	if !transfersValue {
		return gas
	}
	sum := gas + CallStipend
	if sum < gas {
		return ^uint64(0)
	}
	return sum
}

// subCallStipend undoes addCallStipend on the gas a child frame returns, so
// the stipend itself is never refunded to the caller.
func subCallStipend(gasLeft uint64, transfersValue bool) uint64 {
	if !transfersValue {
		return gasLeft
	}
	if gasLeft < CallStipend {
		return 0
	}
	return gasLeft - CallStipend
}

// DelegateCall executes addr's code with the parent frame's caller, address,
// and value all preserved.
func (evm *EVM) DelegateCall(parent *Contract, addr types.Address, input []byte, gas uint64) ([]byte, uint64, error) {
	if evm.depth > MaxCallDepth {
		return nil, gas, ErrDepth
	}
	if p, ok := evm.precompile(addr); ok {
		return evm.runPrecompile(p, input, gas)
	}

	snapshot := evm.StateDB.Snapshot()
	code := evm.StateDB.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}
	contract := NewContract(parent.CallerAddress, parent.Address, parent.Value, gas)
	contract.SetCallCode(addr, evm.StateDB.GetCodeHash(addr), code)

	evm.depth++
	ret, gasLeft, err := evm.runFrame(contract, input, snapshot)
	evm.depth--
	return ret, gasLeft, err
}

// StaticCall executes addr's code with all state-modifying opcodes rejected
// for the duration of the child frame.
func (evm *EVM) StaticCall(caller, addr types.Address, input []byte, gas uint64) ([]byte, uint64, error) {
	if evm.depth > MaxCallDepth {
		return nil, gas, ErrDepth
	}
	if p, ok := evm.precompile(addr); ok {
		return evm.runPrecompile(p, input, gas)
	}

	snapshot := evm.StateDB.Snapshot()
	code := evm.StateDB.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}
	contract := NewContract(caller, addr, new(uint256.Int), gas)
	contract.SetCallCode(addr, evm.StateDB.GetCodeHash(addr), code)

	prevReadOnly := evm.readOnly
	evm.readOnly = true
	evm.depth++
	ret, gasLeft, err := evm.runFrame(contract, input, snapshot)
	evm.depth--
	evm.readOnly = prevReadOnly
	return ret, gasLeft, err
}

func (evm *EVM) runPrecompile(p PrecompiledContract, input []byte, gas uint64) ([]byte, uint64, error) {
	cost := p.RequiredGas(input)
	if gas < cost {
		return nil, 0, ErrOutOfGas
	}
	ret, err := p.Run(input)
	return ret, gas - cost, err
}

// Create deploys initCode as a new contract owned by caller, at the
// classic CREATE address derived from RLP(sender, nonce).
func (evm *EVM) Create(caller types.Address, initCode []byte, gas uint64, value *uint256.Int) ([]byte, types.Address, uint64, error) {
	nonce := evm.StateDB.GetNonce(caller)
	addr := createAddress(caller, nonce)
	return evm.create(caller, initCode, gas, value, addr)
}

// Create2 deploys initCode at the deterministic CREATE2 address
// keccak256(0xff ++ sender ++ salt ++ keccak256(initCode)) (EIP-1014).
func (evm *EVM) Create2(caller types.Address, initCode []byte, gas uint64, value, salt *uint256.Int) ([]byte, types.Address, uint64, error) {
	codeHash := crypto.Keccak256(initCode)
	addr := create2Address(caller, salt, codeHash)
	return evm.create(caller, initCode, gas, value, addr)
}

func (evm *EVM) create(caller types.Address, initCode []byte, gas uint64, value *uint256.Int, addr types.Address) ([]byte, types.Address, uint64, error) {
	if evm.depth > MaxCallDepth {
		return nil, types.Address{}, gas, ErrDepth
	}
	if evm.rules.IsShanghai && len(initCode) > params.MaxInitCodeSize {
		return nil, types.Address{}, gas, ErrMaxInitCodeSizeExceeded
	}
	if value != nil && !value.IsZero() && evm.StateDB.GetBalance(caller).Lt(value) {
		return nil, types.Address{}, gas, ErrInsufficientBalance
	}
	if evm.StateDB.GetNonce(caller)+1 == 0 {
		return nil, types.Address{}, gas, ErrNonceUintOverflow
	}

	if evm.StateDB.GetNonce(addr) != 0 || hasCode(evm, addr) {
		return nil, types.Address{}, gas, ErrContractAddressCollision
	}

	snapshot := evm.StateDB.Snapshot()
	evm.StateDB.CreateAccount(addr)
	evm.StateDB.SetNonce(addr, 1)
	if value != nil && !value.IsZero() {
		evm.StateDB.SubBalance(caller, value)
		evm.StateDB.AddBalance(addr, value)
	}

	contract := NewContract(caller, addr, cloneU256(value), gas)
	contract.Code = initCode

	evm.depth++
	ret, err := evm.Run(contract, nil)
	evm.depth--

	gasLeft := contract.Gas
	if err == nil {
		if len(ret) > params.MaxCodeSize {
			err = ErrMaxCodeSizeExceeded
		} else if len(ret) > 0 && ret[0] == 0xef {
			err = ErrInvalidCodeEntry
		} else {
			depositGas := uint64(len(ret)) * params.CreateDataGas
			if gasLeft < depositGas {
				err = ErrOutOfGas
			} else {
				gasLeft -= depositGas
				evm.StateDB.SetCode(addr, ret)
			}
		}
	}

	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			gasLeft = 0
		}
		return ret, addr, gasLeft, err
	}
	return nil, addr, gasLeft, nil
}

func cloneU256(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(v)
}

// createAddress derives the classic CREATE address: the low 20 bytes of
// keccak256(rlp([sender, nonce])).
func createAddress(sender types.Address, nonce uint64) types.Address {
	enc, err := rlp.EncodeToBytes([]interface{}{sender.Bytes(), nonce})
	if err != nil {
		panic(errors.New("vm: rlp encode of create address failed: " + err.Error()))
	}
	return types.BytesToAddress(crypto.Keccak256(enc))
}

// create2Address derives the CREATE2 address per EIP-1014.
func create2Address(sender types.Address, salt *uint256.Int, initCodeHash []byte) types.Address {
	saltBytes := salt.Bytes32()
	buf := make([]byte, 0, 1+20+32+32)
	buf = append(buf, 0xff)
	buf = append(buf, sender.Bytes()...)
	buf = append(buf, saltBytes[:]...)
	buf = append(buf, initCodeHash...)
	return types.BytesToAddress(crypto.Keccak256(buf))
}
