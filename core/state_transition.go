package core

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/core/state"
	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/core/vm"
	"github.com/execlayer/evmcore/params"
)

// Message is a transaction's envelope reduced to exactly the fields the
// EVM needs to execute it, with the sender already recovered. It exists so
// the state-transition driver never has to special-case the five
// TxData variants past this one conversion.
type Message struct {
	From          types.Address
	To            *types.Address
	Nonce         uint64
	Value         *uint256.Int
	GasLimit      uint64
	GasPrice      *uint256.Int
	GasFeeCap     *uint256.Int
	GasTipCap     *uint256.Int
	Data          []byte
	AccessList    types.AccessList
	BlobHashes    []types.Hash
	BlobGasFeeCap *uint256.Int
	AuthList      []types.SetCodeAuthorization
	TxType        byte
}

// TransactionToMessage recovers tx's sender via signer and reduces it to a
// Message, the form applyMessage consumes.
func TransactionToMessage(tx *types.Transaction, signer types.Signer) (*Message, error) {
	from, err := signer.Sender(tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSender, err)
	}
	return &Message{
		From:          from,
		To:            tx.To(),
		Nonce:         tx.Nonce(),
		Value:         tx.Value(),
		GasLimit:      tx.Gas(),
		GasPrice:      tx.GasPrice(),
		GasFeeCap:     tx.GasFeeCap(),
		GasTipCap:     tx.GasTipCap(),
		Data:          tx.Data(),
		AccessList:    tx.AccessList(),
		BlobHashes:    tx.BlobHashes(),
		BlobGasFeeCap: tx.BlobGasFeeCap(),
		AuthList:      tx.AuthorizationList(),
		TxType:        tx.Type(),
	}, nil
}

// isCreate reports whether msg deploys a new contract.
func (msg *Message) isCreate() bool { return msg.To == nil }

// ExecutionResult is the outcome of running one message's root frame: the
// gas it consumed, any exception the outermost frame raised, and (for a
// creation) the address that was deployed.
type ExecutionResult struct {
	UsedGas         uint64
	Err             error
	ReturnData      []byte
	ContractAddress types.Address
}

// Failed reports whether the outermost frame raised an exception —
// including REVERT, which counts as failure with receipt status 0.
func (r *ExecutionResult) Failed() bool { return r.Err != nil }

// ValidateTransaction performs the checks that do not require executing
// any EVM code: envelope-type acceptance for the active
// fork, nonce agreement, gas-limit bounds, and (for fee-market envelopes)
// the tip/fee-cap/base-fee ordering. It does not touch gp or statedb
// balances; ApplyTransaction does that once validation has passed.
func ValidateTransaction(msg *Message, statedb *state.StateDB, header *types.Header, rules params.Rules) error {
	switch msg.TxType {
	case types.AccessListTxType:
		if !rules.IsBerlin {
			return ErrUnsupportedTxType
		}
	case types.DynamicFeeTxType:
		if !rules.IsLondon {
			return ErrUnsupportedTxType
		}
	case types.BlobTxType:
		if !rules.IsCancun {
			return ErrUnsupportedTxType
		}
	case types.SetCodeTxType:
		if !rules.IsPrague {
			return ErrUnsupportedTxType
		}
	}

	stateNonce := statedb.GetNonce(msg.From)
	if msg.Nonce < stateNonce {
		return fmt.Errorf("%w: tx %d, state %d", ErrNonceTooLow, msg.Nonce, stateNonce)
	}
	if msg.Nonce > stateNonce {
		return fmt.Errorf("%w: tx %d, state %d", ErrNonceTooHigh, msg.Nonce, stateNonce)
	}
	if stateNonce+1 < stateNonce {
		return ErrNonceMax
	}

	if msg.GasLimit > header.GasLimit {
		return fmt.Errorf("%w: tx %d, block %d", ErrGasLimitExceedsBlock, msg.GasLimit, header.GasLimit)
	}

	if codeHash := statedb.GetCodeHash(msg.From); codeHash != types.EmptyCodeHash && codeHash != (types.Hash{}) {
		if !IsDelegated(statedb.GetCode(msg.From)) {
			return ErrSenderNoEOA
		}
	}

	if header.BaseFee != nil {
		baseFee := new(uint256.Int).SetUint64(*header.BaseFee)
		if msg.GasFeeCap != nil && msg.GasTipCap != nil {
			if msg.GasFeeCap.Lt(msg.GasTipCap) {
				return fmt.Errorf("%w: tip %s, cap %s", ErrTipAboveFeeCap, msg.GasTipCap, msg.GasFeeCap)
			}
			if msg.GasFeeCap.Lt(baseFee) {
				return fmt.Errorf("%w: cap %s, base %s", ErrFeeCapTooLow, msg.GasFeeCap, baseFee)
			}
		}
	}

	if msg.TxType == types.BlobTxType {
		if len(msg.BlobHashes) == 0 {
			return ErrMissingBlobHashes
		}
		if msg.To == nil {
			return ErrBlobCreate
		}
		if header.ExcessBlobGas != nil && msg.BlobGasFeeCap != nil {
			blobBaseFee := CalcBlobBaseFee(*header.ExcessBlobGas)
			if msg.BlobGasFeeCap.Lt(blobBaseFee) {
				return fmt.Errorf("%w: cap %s, base %s", ErrBlobFeeCapTooLow, msg.BlobGasFeeCap, blobBaseFee)
			}
		}
	}

	igas, err := IntrinsicGas(msg.Data, msg.AccessList, msg.AuthList, msg.isCreate(), rules)
	if err != nil {
		return err
	}
	if msg.GasLimit < igas {
		return fmt.Errorf("%w: have %d, want %d", ErrIntrinsicGasTooLow, msg.GasLimit, igas)
	}
	return nil
}

// effectiveGasPrice computes the price actually paid per unit of gas,
// min(feeCap, baseFee+tipCap) for fee-market envelopes, or GasPrice as-is
// for legacy/access-list envelopes.
func effectiveGasPrice(msg *Message, baseFee *uint64) *uint256.Int {
	if baseFee == nil || msg.GasFeeCap == nil {
		if msg.GasPrice != nil {
			return new(uint256.Int).Set(msg.GasPrice)
		}
		return new(uint256.Int)
	}
	bf := new(uint256.Int).SetUint64(*baseFee)
	tip := new(uint256.Int)
	if msg.GasTipCap != nil {
		tip.Set(msg.GasTipCap)
	}
	price := new(uint256.Int).Add(bf, tip)
	if price.Gt(msg.GasFeeCap) {
		price.Set(msg.GasFeeCap)
	}
	return price
}

// ApplyTransaction executes tx's message against statedb within the block
// described by header, charges its gas against gp, and returns the
// resulting receipt.
// A validation failure leaves statedb and gp untouched and is returned as
// the error; runBlock then fails the whole block.
func ApplyTransaction(config *params.ChainConfig, getHash func(uint64) types.Hash, statedb *state.StateDB, header *types.Header, tx *types.Transaction, gp *GasPool) (*types.Receipt, error) {
	signer := types.NewSigner(config.ChainIDU256())
	msg, err := TransactionToMessage(tx, signer)
	if err != nil {
		return nil, err
	}

	rules := config.Rules(header.Number, header.Time)
	if err := ValidateTransaction(msg, statedb, header, rules); err != nil {
		return nil, err
	}
	if err := gp.SubGas(msg.GasLimit); err != nil {
		return nil, err
	}

	snapshot := statedb.Snapshot()
	result, err := applyMessage(config, getHash, statedb, header, msg, rules)
	if err != nil {
		statedb.RevertToSnapshot(snapshot)
		gp.AddGas(msg.GasLimit)
		return nil, err
	}

	receipt := types.NewReceipt(result.Failed(), result.UsedGas)
	receipt.TxHash = tx.Hash()
	receipt.GasUsed = result.UsedGas
	receipt.Type = tx.Type()
	if msg.isCreate() && !result.Failed() {
		receipt.ContractAddress = result.ContractAddress
	}
	receipt.Logs = statedb.GetLogs(tx.Hash())
	receipt.SetBloom()

	statedb.DeleteEmptyTouchedAccounts()

	return receipt, nil
}

// applyMessage runs the per-transaction sequence: deduct upfront cost,
// increment the nonce, pre-warm access-list
// entries, spawn and run the root frame, then settle gas (refund the
// sender, pay the priority fee to the coinbase).
func applyMessage(config *params.ChainConfig, getHash func(uint64) types.Hash, statedb *state.StateDB, header *types.Header, msg *Message, rules params.Rules) (*ExecutionResult, error) {
	gasPrice := effectiveGasPrice(msg, header.BaseFee)

	upfrontGasCost := new(uint256.Int).Mul(gasPrice, new(uint256.Int).SetUint64(msg.GasLimit))
	totalCost := new(uint256.Int).Add(upfrontGasCost, msg.Value)
	var blobFee *uint256.Int
	if len(msg.BlobHashes) > 0 && msg.BlobGasFeeCap != nil {
		blobGas := uint64(len(msg.BlobHashes)) * params.BlobTxBlobGasPerBlob
		blobFee = new(uint256.Int).Mul(msg.BlobGasFeeCap, new(uint256.Int).SetUint64(blobGas))
		totalCost.Add(totalCost, blobFee)
	}

	balance := statedb.GetBalance(msg.From)
	if balance.Lt(totalCost) {
		return nil, fmt.Errorf("%w: address %s have %s want %s", ErrInsufficientBalance, msg.From, balance, totalCost)
	}
	statedb.SubBalance(msg.From, totalCost)
	statedb.SetNonce(msg.From, msg.Nonce+1)

	precompiles := vm.ActivePrecompiles(rules)
	precompileAddrs := make([]types.Address, 0, len(precompiles))
	for addr := range precompiles {
		precompileAddrs = append(precompileAddrs, addr)
	}
	var coinbase *types.Address
	if rules.IsShanghai {
		cb := header.Coinbase
		coinbase = &cb
	}
	statedb.PrepareAccessList(msg.From, msg.To, precompileAddrs, msg.AccessList, coinbase)

	igas, _ := IntrinsicGas(msg.Data, msg.AccessList, msg.AuthList, msg.isCreate(), rules)
	gasLeft := msg.GasLimit - igas

	blockCtx := vm.BlockContext{
		GetHash:     getHash,
		Coinbase:    header.Coinbase,
		GasLimit:    header.GasLimit,
		BlockNumber: header.Number,
		Time:        header.Time,
		Difficulty:  new(uint256.Int).SetUint64(header.Difficulty),
	}
	if header.BaseFee != nil {
		blockCtx.BaseFee = new(uint256.Int).SetUint64(*header.BaseFee)
	}
	if rules.IsMerge {
		random := header.MixDigest
		blockCtx.Random = &random
	}
	if header.ExcessBlobGas != nil {
		blockCtx.BlobBaseFee = CalcBlobBaseFee(*header.ExcessBlobGas)
	}
	txCtx := vm.TxContext{
		Origin:     msg.From,
		GasPrice:   gasPrice,
		BlobHashes: msg.BlobHashes,
	}
	evm := vm.NewEVM(blockCtx, txCtx, statedb, rules, vm.Config{})

	if msg.TxType == types.SetCodeTxType && len(msg.AuthList) > 0 {
		ApplyAuthorizations(statedb, msg.AuthList, config.ChainIDU256())
	}

	var (
		execErr      error
		returnData   []byte
		gasRemaining uint64
		contractAddr types.Address
	)
	if msg.isCreate() {
		returnData, contractAddr, gasRemaining, execErr = evm.Create(msg.From, msg.Data, gasLeft, msg.Value)
	} else {
		returnData, gasRemaining, execErr = evm.Call(msg.From, *msg.To, msg.Data, gasLeft, msg.Value)
	}

	gasUsed := igas + (gasLeft - gasRemaining)

	refund := statedb.GetRefund()
	maxRefundDivisor := params.MaxRefundQuotient
	if rules.IsLondon {
		maxRefundDivisor = params.MaxRefundQuotientLondon
	}
	maxRefund := gasUsed / maxRefundDivisor
	if refund > maxRefund {
		refund = maxRefund
	}
	gasUsed -= refund

	remaining := msg.GasLimit - gasUsed
	if remaining > 0 {
		refundAmount := new(uint256.Int).Mul(gasPrice, new(uint256.Int).SetUint64(remaining))
		statedb.AddBalance(msg.From, refundAmount)
	}

	var priorityFee *uint256.Int
	if header.BaseFee != nil {
		baseFee := new(uint256.Int).SetUint64(*header.BaseFee)
		priorityFee = new(uint256.Int)
		if gasPrice.Gt(baseFee) {
			priorityFee.Sub(gasPrice, baseFee)
		}
	} else {
		priorityFee = gasPrice
	}
	coinbasePayment := new(uint256.Int).Mul(priorityFee, new(uint256.Int).SetUint64(gasUsed))
	statedb.AddBalance(header.Coinbase, coinbasePayment)

	return &ExecutionResult{
		UsedGas:         gasUsed,
		Err:             execErr,
		ReturnData:      returnData,
		ContractAddress: contractAddr,
	}, nil
}
