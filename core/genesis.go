package core

import (
	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/params"
)

// GenesisAccount is one entry of a GenesisAlloc: the initial balance,
// nonce, code, and storage of an account before any transaction runs.
type GenesisAccount struct {
	Balance *uint256.Int
	Nonce   uint64
	Code    []byte
	Storage map[types.Hash]types.Hash
}

// GenesisAlloc is a flat pre-allocation map, the `pre` input of a
// transition run.
type GenesisAlloc map[types.Address]GenesisAccount

// Env is the block environment a transition runs against: everything
// about the block other than the transactions themselves.
type Env struct {
	Coinbase              types.Address
	Difficulty            *uint256.Int
	Random                *types.Hash // PREVRANDAO, post-Merge
	GasLimit              uint64
	Number                uint64
	Timestamp             uint64
	BaseFee               *uint64
	ExcessBlobGas         *uint64
	BlockHashes           map[uint64]types.Hash
	Withdrawals           []*types.Withdrawal
	ParentBeaconBlockRoot *types.Hash
}

// TransitionResult is the output of Transition: the post-allocation
// effects are committed into the fresh StateDB that Transition seeds from
// alloc, and this struct carries the derived values a t8n harness reports
// back.
type TransitionResult struct {
	Receipts    types.Receipts
	GasUsed     uint64
	BlobGasUsed uint64
	StateRoot   types.Hash
	TxRoot      types.Hash
	ReceiptRoot types.Hash
	LogsBloom   types.Bloom
	Requests    []Request
}

// StateTestCase is one parameterized transaction to run against a
// chosen fork configuration, asserting an expected post-state.
type StateTestCase struct {
	Alloc       GenesisAlloc
	Env         Env
	Tx          *types.Transaction
	Fork        *params.ChainConfig
	PostHash    types.Hash
	PostLogHash types.Hash
}

// StateTestResult reports whether a StateTestCase's committed post-state
// and logs matched the fixture's expectations.
type StateTestResult struct {
	Pass      bool
	StateRoot types.Hash
	LogHash   types.Hash
	Err       error
}
