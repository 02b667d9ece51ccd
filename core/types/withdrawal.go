package types

// Withdrawal is a validator withdrawal pushed from the consensus layer into
// the execution layer's state, per EIP-4895.
type Withdrawal struct {
	Index     uint64
	Validator uint64
	Address   Address
	Amount    uint64 // in Gwei
}

// Withdrawals is a list of withdrawals, the type the block body and the
// withdrawals-root trie are built over.
type Withdrawals []*Withdrawal
