package types

import "github.com/holiman/uint256"

// Account is the state-trie value associated with an Address: nonce, balance,
// the root of its storage trie, and the hash of its code. Storage slots holding
// the zero value are absent from the trie rather than stored as zero (spec I5).
type Account struct {
	Nonce    uint64
	Balance  *uint256.Int
	Root     Hash   // storage trie root; EmptyRootHash if the account has no storage
	CodeHash []byte // Keccak256 of the account's code; EmptyCodeHash for EOAs
}

// NewEmptyAccount returns the canonical representation of a never-touched
// account: zero nonce/balance, empty storage, empty code.
func NewEmptyAccount() *Account {
	return &Account{
		Balance:  new(uint256.Int),
		Root:     EmptyRootHash,
		CodeHash: append([]byte(nil), EmptyCodeHash.Bytes()...),
	}
}

// Copy returns a deep copy of the account, safe to mutate independently.
func (a *Account) Copy() *Account {
	cp := &Account{
		Nonce: a.Nonce,
		Root:  a.Root,
	}
	if a.Balance != nil {
		cp.Balance = new(uint256.Int).Set(a.Balance)
	} else {
		cp.Balance = new(uint256.Int)
	}
	cp.CodeHash = append([]byte(nil), a.CodeHash...)
	return cp
}

// IsEmpty implements the EIP-161 "empty account" predicate: zero nonce, zero
// balance, and no code. Used at the end of every touched transaction to decide
// which accounts must be swept (spec I3).
func (a *Account) IsEmpty() bool {
	return a.Nonce == 0 && (a.Balance == nil || a.Balance.IsZero()) && codeHashIsEmpty(a.CodeHash)
}

func codeHashIsEmpty(h []byte) bool {
	if len(h) == 0 {
		return true
	}
	return Hash(BytesToHash(h)) == EmptyCodeHash
}
