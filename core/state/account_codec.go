package state

import (
	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/rlp"
)

// rlpAccount is the canonical 4-tuple (nonce, balance, storageRoot,
// codeHash) an Account RLP-encodes to, the value stored at the account
// trie's leaves.
type rlpAccount struct {
	Nonce    uint64
	Balance  *uint256.Int
	Root     types.Hash
	CodeHash []byte
}

func encodeAccount(a *types.Account) []byte {
	enc, _ := rlp.EncodeToBytes(&rlpAccount{
		Nonce:    a.Nonce,
		Balance:  a.Balance,
		Root:     a.Root,
		CodeHash: a.CodeHash,
	})
	return enc
}

func decodeAccount(enc []byte) (*types.Account, error) {
	var raw rlpAccount
	if err := rlp.DecodeBytes(enc, &raw); err != nil {
		return nil, err
	}
	return &types.Account{
		Nonce:    raw.Nonce,
		Balance:  raw.Balance,
		Root:     raw.Root,
		CodeHash: raw.CodeHash,
	}, nil
}

// encodeStorageValue RLP-encodes a storage slot's value as the minimal
// big-endian byte string, matching the real protocol's storage-trie
// leaves. The zero value is never stored (spec I5) - callers delete
// instead of calling this with a zero value.
func encodeStorageValue(v types.Hash) []byte {
	trimmed := v.Bytes()
	i := 0
	for i < len(trimmed) && trimmed[i] == 0 {
		i++
	}
	enc, _ := rlp.EncodeToBytes(trimmed[i:])
	return enc
}

func decodeRLPBytes(enc []byte, out *[]byte) bool {
	var raw []byte
	if err := rlp.DecodeBytes(enc, &raw); err != nil {
		return false
	}
	*out = raw
	return true
}
