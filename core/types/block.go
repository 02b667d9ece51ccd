package types

// Body holds a block's content distinct from its header: the transaction
// list, uncle headers (pre-Merge), and withdrawals (Shanghai+).
type Body struct {
	Transactions []*Transaction
	Uncles       []*Header
	Withdrawals  Withdrawals `rlp:"optional"`
}

// Block ties a header to its body and caches derived values (hash, size)
// the way a header alone cannot, since the body is needed to validate the
// header's root commitments.
type Block struct {
	header       *Header
	transactions []*Transaction
	uncles       []*Header
	withdrawals  Withdrawals

	hash Hash
	size uint64
}

// NewBlockWithHeader constructs a block wrapping a copy of the given header,
// with no body; callers populate transactions/uncles/withdrawals afterward
// via WithBody.
func NewBlockWithHeader(header *Header) *Block {
	return &Block{header: header.Copy()}
}

// WithBody returns a copy of the block with the given body attached.
func (b *Block) WithBody(body Body) *Block {
	cpy := *b
	cpy.transactions = append([]*Transaction(nil), body.Transactions...)
	cpy.uncles = make([]*Header, len(body.Uncles))
	for i, u := range body.Uncles {
		cpy.uncles[i] = u.Copy()
	}
	cpy.withdrawals = append(Withdrawals(nil), body.Withdrawals...)
	return &cpy
}

func (b *Block) Header() *Header              { return b.header }
func (b *Block) Transactions() []*Transaction { return b.transactions }
func (b *Block) Uncles() []*Header            { return b.uncles }
func (b *Block) Withdrawals() Withdrawals     { return b.withdrawals }

func (b *Block) Number() uint64    { return b.header.Number }
func (b *Block) GasLimit() uint64  { return b.header.GasLimit }
func (b *Block) GasUsed() uint64   { return b.header.GasUsed }
func (b *Block) Time() uint64      { return b.header.Time }
func (b *Block) Coinbase() Address { return b.header.Coinbase }
func (b *Block) Root() Hash        { return b.header.Root }
func (b *Block) ParentHash() Hash  { return b.header.ParentHash }
func (b *Block) TxHash() Hash      { return b.header.TxHash }
func (b *Block) ReceiptHash() Hash { return b.header.ReceiptHash }
func (b *Block) Bloom() Bloom      { return b.header.Bloom }
func (b *Block) BaseFee() *uint64  { return b.header.BaseFee }

// Hash returns the block's header hash, memoizing the computation.
func (b *Block) Hash() Hash {
	if b.hash.IsZero() {
		b.hash = b.header.Hash()
	}
	return b.hash
}

// Body returns the transaction/uncle/withdrawal content as a Body value,
// the shape used for RLP encoding of the body trie and wire messages.
func (b *Block) Body() *Body {
	return &Body{Transactions: b.transactions, Uncles: b.uncles, Withdrawals: b.withdrawals}
}
