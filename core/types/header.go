package types

import (
	"github.com/execlayer/evmcore/crypto"
	"github.com/execlayer/evmcore/rlp"
)

// BlockNonce is the 64-bit proof-of-work solution, retained on header shape
// for pre-Merge blocks and fixed to zero afterward.
type BlockNonce [8]byte

// Header is the block header, whose fields accrete one EIP per fork: the
// pointer fields are nil on forks that predate the feature, letting a
// single struct represent every fork's header shape.
type Header struct {
	ParentHash  Hash
	UncleHash   Hash
	Coinbase    Address
	Root        Hash
	TxHash      Hash
	ReceiptHash Hash
	Bloom       Bloom
	Difficulty  uint64
	Number      uint64
	GasLimit    uint64
	GasUsed     uint64
	Time        uint64
	Extra       []byte
	MixDigest   Hash
	Nonce       BlockNonce

	BaseFee *uint64 `rlp:"optional"` // EIP-1559, London+

	WithdrawalsHash *Hash `rlp:"optional"` // EIP-4895, Shanghai+

	BlobGasUsed   *uint64 `rlp:"optional"` // EIP-4844, Cancun+
	ExcessBlobGas *uint64 `rlp:"optional"`

	ParentBeaconBlockRoot *Hash `rlp:"optional"` // EIP-4788, Cancun+

	RequestsHash *Hash `rlp:"optional"` // EIP-7685, Prague+
}

// Hash returns the Keccak256 hash of the header's RLP encoding, the block
// hash used everywhere a block is referenced by identity.
func (h *Header) Hash() Hash {
	enc, err := rlp.EncodeToBytes(h)
	if err != nil {
		return Hash{}
	}
	return BytesToHash(crypto.Keccak256(enc))
}

// Copy returns a deep copy of the header, safe to mutate independently.
func (h *Header) Copy() *Header {
	cpy := *h
	cpy.Extra = append([]byte(nil), h.Extra...)
	if h.BaseFee != nil {
		v := *h.BaseFee
		cpy.BaseFee = &v
	}
	if h.WithdrawalsHash != nil {
		v := *h.WithdrawalsHash
		cpy.WithdrawalsHash = &v
	}
	if h.BlobGasUsed != nil {
		v := *h.BlobGasUsed
		cpy.BlobGasUsed = &v
	}
	if h.ExcessBlobGas != nil {
		v := *h.ExcessBlobGas
		cpy.ExcessBlobGas = &v
	}
	if h.ParentBeaconBlockRoot != nil {
		v := *h.ParentBeaconBlockRoot
		cpy.ParentBeaconBlockRoot = &v
	}
	if h.RequestsHash != nil {
		v := *h.RequestsHash
		cpy.RequestsHash = &v
	}
	return &cpy
}

// EmptyBody reports whether a block with this header necessarily has no
// transactions or uncles, used by light-client and header-only paths to
// avoid fetching a body that is known to be empty.
func (h *Header) EmptyBody() bool {
	return h.TxHash == EmptyTxsHash && h.UncleHash == EmptyUncleHash
}

// EmptyReceipts reports whether the header's receipt root is the empty root,
// i.e. the block carries no transactions at all.
func (h *Header) EmptyReceipts() bool {
	return h.ReceiptHash == EmptyReceiptsHash
}
