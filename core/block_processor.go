package core

import (
	"fmt"

	"github.com/execlayer/evmcore/core/state"
	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/crypto"
	"github.com/execlayer/evmcore/params"
	"github.com/execlayer/evmcore/rlp"
	"github.com/execlayer/evmcore/trie"
)

// blockResult is the shared output of running a block's transactions and
// block-level finalization steps against a StateDB, before root derivation
// and header comparison/population diverge between ApplyBlock and
// BuildBlock.
type blockResult struct {
	receipts types.Receipts
	gasUsed  uint64
	requests []Request
}

// runBlock executes header's transactions against statedb and performs
// every block-level finalization step, in order: pre-block system calls,
// transactions, post-block system calls, withdrawals, block/uncle rewards,
// the DAO irregular state change, and the EIP-158 sweep. It does not touch
// header's root/hash fields or compare against anything — that is the
// caller's job, since ApplyBlock validates against a given header and
// BuildBlock populates one.
func runBlock(statedb *state.StateDB, cfg *params.ChainConfig, header *types.Header, parentNumber uint64, parentHash types.Hash, txs []*types.Transaction, uncles []*types.Header, withdrawals types.Withdrawals) (*blockResult, error) {
	rules := cfg.Rules(header.Number, header.Time)

	if rules.IsCancun {
		ProcessBeaconBlockRoot(statedb, header)
	}
	if rules.IsPrague && header.Number > 0 {
		ProcessHistoryStorage(statedb, parentNumber, parentHash)
	}

	getHash := func(n uint64) types.Hash { return HistoricalBlockHash(statedb, n) }
	gp := new(GasPool).AddGas(header.GasLimit)

	var (
		receipts          types.Receipts
		cumulativeGasUsed uint64
		logIndex          uint
	)
	for i, tx := range txs {
		statedb.SetTxContext(tx.Hash(), i)
		receipt, err := ApplyTransaction(cfg, getHash, statedb, header, tx, gp)
		if err != nil {
			return nil, fmt.Errorf("core: tx %d: %w", i, err)
		}
		cumulativeGasUsed += receipt.GasUsed
		receipt.CumulativeGasUsed = cumulativeGasUsed
		receipt.TransactionIndex = uint(i)
		receipt.BlockNumber = header.Number
		for _, log := range receipt.Logs {
			log.Index = logIndex
			logIndex++
		}
		receipts = append(receipts, receipt)
	}

	var requests []Request
	if rules.IsPrague {
		requests = CollectRequests(statedb)
	}

	if rules.IsShanghai {
		ProcessWithdrawals(statedb, withdrawals)
	}

	AccumulateRewards(statedb, rules, header, uncles)
	ApplyDAOHardFork(statedb, cfg, header.Number)

	statedb.DeleteEmptyTouchedAccounts()

	return &blockResult{receipts: receipts, gasUsed: cumulativeGasUsed, requests: requests}, nil
}

// ApplyBlock executes block against db (rooted at parent's post-state) and
// verifies that every field block's header derives from execution —
// GasUsed, TxHash, ReceiptHash, Bloom, UncleHash, Root, WithdrawalsHash,
// RequestsHash —
// matches what was declared. On success it returns
// the now-validated header and the receipts produced.
func ApplyBlock(db *state.StateDB, cfg *params.ChainConfig, parent *types.Header, block *types.Block) (*types.Header, types.Receipts, error) {
	header := block.Header()
	result, err := runBlock(db, cfg, header, parent.Number, parent.Hash(), block.Transactions(), block.Uncles(), block.Withdrawals())
	if err != nil {
		return nil, nil, err
	}

	if result.gasUsed != header.GasUsed {
		return nil, nil, &BlockValidationError{Field: "GasUsed", Want: fmt.Sprint(header.GasUsed), Got: fmt.Sprint(result.gasUsed)}
	}
	txRoot, err := DeriveTransactionsRoot(block.Transactions())
	if err != nil {
		return nil, nil, err
	}
	if txRoot != header.TxHash {
		return nil, nil, &BlockValidationError{Field: "TxHash", Want: header.TxHash.Hex(), Got: txRoot.Hex()}
	}
	receiptRoot, err := DeriveReceiptsRoot(result.receipts)
	if err != nil {
		return nil, nil, err
	}
	if receiptRoot != header.ReceiptHash {
		return nil, nil, &BlockValidationError{Field: "ReceiptHash", Want: header.ReceiptHash.Hex(), Got: receiptRoot.Hex()}
	}
	if bloom := types.CreateBloom(result.receipts); bloom != header.Bloom {
		return nil, nil, &BlockValidationError{Field: "Bloom", Want: fmt.Sprintf("%x", header.Bloom), Got: fmt.Sprintf("%x", bloom)}
	}
	uncleHash := DeriveUncleHash(block.Uncles())
	if uncleHash != header.UncleHash {
		return nil, nil, &BlockValidationError{Field: "UncleHash", Want: header.UncleHash.Hex(), Got: uncleHash.Hex()}
	}

	rules := cfg.Rules(header.Number, header.Time)
	if rules.IsShanghai {
		wr, err := DeriveWithdrawalsRoot(block.Withdrawals())
		if err != nil {
			return nil, nil, err
		}
		if header.WithdrawalsHash == nil || wr != *header.WithdrawalsHash {
			return nil, nil, &BlockValidationError{Field: "WithdrawalsHash", Want: fmt.Sprint(header.WithdrawalsHash), Got: wr.Hex()}
		}
	}
	if rules.IsPrague {
		rh := RequestsHash(result.requests)
		if header.RequestsHash == nil || rh != *header.RequestsHash {
			return nil, nil, &BlockValidationError{Field: "RequestsHash", Want: fmt.Sprint(header.RequestsHash), Got: rh.Hex()}
		}
	}

	stateRoot, err := db.Commit()
	if err != nil {
		return nil, nil, err
	}
	if stateRoot != header.Root {
		return nil, nil, &BlockValidationError{Field: "Root", Want: header.Root.Hex(), Got: stateRoot.Hex()}
	}

	blockHash := block.Hash()
	for _, receipt := range result.receipts {
		receipt.BlockHash = blockHash
	}

	return header, result.receipts, nil
}

// BuildBlock executes txs/uncles/withdrawals against db starting from
// tmpl's caller-supplied fields (Number, Time, Coinbase, GasLimit, BaseFee,
// and so on) and fills in every field execution derives, the inverse of
// ApplyBlock's validation.
func BuildBlock(tmpl *types.Header, txs []*types.Transaction, uncles []*types.Header, withdrawals []*types.Withdrawal, cfg *params.ChainConfig, db *state.StateDB) (*types.Block, types.Hash, error) {
	header := tmpl.Copy()

	var parentNumber uint64
	if header.Number > 0 {
		parentNumber = header.Number - 1
	}
	result, err := runBlock(db, cfg, header, parentNumber, header.ParentHash, txs, uncles, withdrawals)
	if err != nil {
		return nil, types.Hash{}, err
	}

	header.GasUsed = result.gasUsed
	txRoot, err := DeriveTransactionsRoot(txs)
	if err != nil {
		return nil, types.Hash{}, err
	}
	header.TxHash = txRoot
	receiptRoot, err := DeriveReceiptsRoot(result.receipts)
	if err != nil {
		return nil, types.Hash{}, err
	}
	header.ReceiptHash = receiptRoot
	header.Bloom = types.CreateBloom(result.receipts)
	header.UncleHash = DeriveUncleHash(uncles)

	rules := cfg.Rules(header.Number, header.Time)
	if rules.IsShanghai {
		wr, err := DeriveWithdrawalsRoot(withdrawals)
		if err != nil {
			return nil, types.Hash{}, err
		}
		header.WithdrawalsHash = &wr
	}
	if rules.IsPrague {
		rh := RequestsHash(result.requests)
		header.RequestsHash = &rh
	}

	stateRoot, err := db.Commit()
	if err != nil {
		return nil, types.Hash{}, err
	}
	header.Root = stateRoot

	block := types.NewBlockWithHeader(header).WithBody(types.Body{
		Transactions: txs,
		Uncles:       uncles,
		Withdrawals:  withdrawals,
	})
	return block, block.Hash(), nil
}

// Transition runs txs against a fresh StateDB seeded from alloc, within the
// block environment env, and reports the derived roots and receipts — the
// Go shape of the `t8n` ("transition") tool's pre_alloc/env/txs interface.
func Transition(alloc GenesisAlloc, env Env, txs []*types.Transaction, cfg *params.ChainConfig) (TransitionResult, error) {
	statedb, err := newAllocStateDB(alloc)
	if err != nil {
		return TransitionResult{}, err
	}

	header := headerFromEnv(env)
	getHash := func(n uint64) types.Hash {
		if h, ok := env.BlockHashes[n]; ok {
			return h
		}
		return types.Hash{}
	}

	var parentHash types.Hash
	if header.Number > 0 {
		parentHash = getHash(header.Number - 1)
	}
	result, err := runBlockWithHash(statedb, cfg, header, parentHash, txs, nil, env.Withdrawals, getHash)
	if err != nil {
		return TransitionResult{}, err
	}

	var blobGasUsed uint64
	for _, tx := range txs {
		blobGasUsed += uint64(len(tx.BlobHashes())) * params.BlobTxBlobGasPerBlob
	}

	stateRoot, err := statedb.Commit()
	if err != nil {
		return TransitionResult{}, err
	}
	txRoot, err := DeriveTransactionsRoot(txs)
	if err != nil {
		return TransitionResult{}, err
	}
	receiptRoot, err := DeriveReceiptsRoot(result.receipts)
	if err != nil {
		return TransitionResult{}, err
	}

	return TransitionResult{
		Receipts:    result.receipts,
		GasUsed:     result.gasUsed,
		BlobGasUsed: blobGasUsed,
		StateRoot:   stateRoot,
		TxRoot:      txRoot,
		ReceiptRoot: receiptRoot,
		LogsBloom:   types.CreateBloom(result.receipts),
		Requests:    result.requests,
	}, nil
}

// RunStateTest runs t's single transaction against a fresh StateDB seeded
// from t.Alloc under t.Fork's rules, then compares the resulting state root
// and log hash against the fixture's expectations.
func RunStateTest(t *StateTestCase) (*StateTestResult, error) {
	statedb, err := newAllocStateDB(t.Alloc)
	if err != nil {
		return nil, err
	}

	header := headerFromEnv(t.Env)
	getHash := func(n uint64) types.Hash {
		if h, ok := t.Env.BlockHashes[n]; ok {
			return h
		}
		return types.Hash{}
	}

	rules := t.Fork.Rules(header.Number, header.Time)
	if rules.IsCancun {
		ProcessBeaconBlockRoot(statedb, header)
	}

	gp := new(GasPool).AddGas(header.GasLimit)
	statedb.SetTxContext(t.Tx.Hash(), 0)
	receipt, applyErr := ApplyTransaction(t.Fork, getHash, statedb, header, t.Tx, gp)

	stateRoot, err := statedb.Commit()
	if err != nil {
		return nil, err
	}

	var logs []*types.Log
	if receipt != nil {
		logs = receipt.Logs
	}
	logHash := logsHash(logs)

	result := &StateTestResult{
		StateRoot: stateRoot,
		LogHash:   logHash,
		Err:       applyErr,
	}
	result.Pass = applyErr == nil && stateRoot == t.PostHash && logHash == t.PostLogHash
	return result, nil
}

// runBlockWithHash is runBlock generalized over a caller-supplied getHash,
// the form Transition needs since it has no parent chain to query
// BLOCKHASH lookups against beyond env.BlockHashes.
func runBlockWithHash(statedb *state.StateDB, cfg *params.ChainConfig, header *types.Header, parentHash types.Hash, txs []*types.Transaction, uncles []*types.Header, withdrawals types.Withdrawals, getHash func(uint64) types.Hash) (*blockResult, error) {
	rules := cfg.Rules(header.Number, header.Time)

	if rules.IsCancun {
		ProcessBeaconBlockRoot(statedb, header)
	}
	if rules.IsPrague && header.Number > 0 {
		ProcessHistoryStorage(statedb, header.Number-1, parentHash)
	}

	gp := new(GasPool).AddGas(header.GasLimit)
	var (
		receipts          types.Receipts
		cumulativeGasUsed uint64
		logIndex          uint
	)
	for i, tx := range txs {
		statedb.SetTxContext(tx.Hash(), i)
		receipt, err := ApplyTransaction(cfg, getHash, statedb, header, tx, gp)
		if err != nil {
			return nil, fmt.Errorf("core: tx %d: %w", i, err)
		}
		cumulativeGasUsed += receipt.GasUsed
		receipt.CumulativeGasUsed = cumulativeGasUsed
		receipt.TransactionIndex = uint(i)
		for _, log := range receipt.Logs {
			log.Index = logIndex
			logIndex++
		}
		receipts = append(receipts, receipt)
	}

	var requests []Request
	if rules.IsPrague {
		requests = CollectRequests(statedb)
	}
	if rules.IsShanghai {
		ProcessWithdrawals(statedb, withdrawals)
	}
	AccumulateRewards(statedb, rules, header, uncles)
	ApplyDAOHardFork(statedb, cfg, header.Number)
	statedb.DeleteEmptyTouchedAccounts()

	return &blockResult{receipts: receipts, gasUsed: cumulativeGasUsed, requests: requests}, nil
}

// newAllocStateDB builds a fresh, empty-rooted StateDB and applies alloc to
// it, the pre-state every Transition/RunStateTest run starts from.
func newAllocStateDB(alloc GenesisAlloc) (*state.StateDB, error) {
	statedb, err := state.New(types.Hash{}, trie.NewDatabase())
	if err != nil {
		return nil, err
	}
	for addr, acc := range alloc {
		statedb.CreateAccount(addr)
		if acc.Balance != nil {
			statedb.AddBalance(addr, acc.Balance)
		}
		statedb.SetNonce(addr, acc.Nonce)
		if len(acc.Code) > 0 {
			statedb.SetCode(addr, acc.Code)
		}
		for k, v := range acc.Storage {
			statedb.SetState(addr, k, v)
		}
	}
	return statedb, nil
}

// headerFromEnv reduces a t8n-style Env to the Header fields the state
// transition and system-call hooks read.
func headerFromEnv(env Env) *types.Header {
	header := &types.Header{
		Coinbase:      env.Coinbase,
		GasLimit:      env.GasLimit,
		Number:        env.Number,
		Time:          env.Timestamp,
		BaseFee:       env.BaseFee,
		ExcessBlobGas: env.ExcessBlobGas,
	}
	if env.Difficulty != nil {
		header.Difficulty = env.Difficulty.Uint64()
	}
	if env.Random != nil {
		header.MixDigest = *env.Random
	}
	if env.ParentBeaconBlockRoot != nil {
		root := *env.ParentBeaconBlockRoot
		header.ParentBeaconBlockRoot = &root
	}
	return header
}

// logsHash hashes a transaction's logs the way state-test fixtures record
// their expected post-execution log hash: keccak256 of the RLP encoding of
// the log list.
func logsHash(logs []*types.Log) types.Hash {
	enc, err := rlp.EncodeToBytes(logs)
	if err != nil {
		return types.Hash{}
	}
	return types.BytesToHash(keccak(enc))
}

func keccak(b []byte) []byte { return crypto.Keccak256(b) }
