package core

import (
	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/crypto"
	"github.com/execlayer/evmcore/rlp"
	"github.com/execlayer/evmcore/trie"
)

// DeriveTransactionsRoot builds the per-block transactions trie, keyed by
// the RLP-encoded transaction index, and returns its root.
func DeriveTransactionsRoot(txs []*types.Transaction) (types.Hash, error) {
	tr, err := trie.New(types.Hash{}, trie.NewDatabase())
	if err != nil {
		return types.Hash{}, err
	}
	for i, tx := range txs {
		enc, err := tx.MarshalBinary()
		if err != nil {
			return types.Hash{}, err
		}
		if err := tr.Update(rlp.AppendUint64(nil, uint64(i)), enc); err != nil {
			return types.Hash{}, err
		}
	}
	return tr.Hash(), nil
}

// DeriveReceiptsRoot builds the per-block receipts trie, keyed the same way
// as the transactions trie, and returns its root.
func DeriveReceiptsRoot(receipts types.Receipts) (types.Hash, error) {
	tr, err := trie.New(types.Hash{}, trie.NewDatabase())
	if err != nil {
		return types.Hash{}, err
	}
	for i, r := range receipts {
		enc, err := r.MarshalBinary()
		if err != nil {
			return types.Hash{}, err
		}
		if err := tr.Update(rlp.AppendUint64(nil, uint64(i)), enc); err != nil {
			return types.Hash{}, err
		}
	}
	return tr.Hash(), nil
}

// DeriveUncleHash hashes the RLP encoding of a block's ommer headers, the
// header's UncleHash commitment. An empty list hashes to EmptyUncleHash.
func DeriveUncleHash(uncles []*types.Header) types.Hash {
	enc, err := rlp.EncodeToBytes(uncles)
	if err != nil {
		return types.EmptyUncleHash
	}
	return types.BytesToHash(crypto.Keccak256(enc))
}

// DeriveWithdrawalsRoot builds the EIP-4895 withdrawals trie and returns its
// root, or the empty root for a block with no withdrawals.
func DeriveWithdrawalsRoot(withdrawals types.Withdrawals) (types.Hash, error) {
	if len(withdrawals) == 0 {
		return types.EmptyWithdrawalsHash, nil
	}
	tr, err := trie.New(types.Hash{}, trie.NewDatabase())
	if err != nil {
		return types.Hash{}, err
	}
	for i, w := range withdrawals {
		enc, err := rlp.EncodeToBytes(w)
		if err != nil {
			return types.Hash{}, err
		}
		if err := tr.Update(rlp.AppendUint64(nil, uint64(i)), enc); err != nil {
			return types.Hash{}, err
		}
	}
	return tr.Hash(), nil
}
