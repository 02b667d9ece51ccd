package types

import (
	"errors"
	"sync/atomic"

	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/crypto"
	"github.com/execlayer/evmcore/rlp"
)

// Transaction type identifiers, assigned in EIP-2718 envelope order.
const (
	LegacyTxType = iota
	AccessListTxType
	DynamicFeeTxType
	BlobTxType
	SetCodeTxType
)

var (
	ErrInvalidTxType       = errors.New("types: unsupported transaction type")
	ErrTxTypeNotSupported  = ErrInvalidTxType
	ErrFeeCapTooLow        = errors.New("types: max fee per gas lower than max priority fee per gas")
	ErrEmptyBlobHashes     = errors.New("types: blob transaction must carry at least one blob hash")
	ErrEmptyAuthorizations = errors.New("types: set-code transaction must carry at least one authorization")
)

// TxData is the type-specific payload of a Transaction, mirroring the
// envelope variants introduced by EIP-2718/2930/1559/4844/7702.
type TxData interface {
	txType() byte
	copy() TxData

	chainID() *uint256.Int
	accessList() AccessList
	gas() uint64
	gasPrice() *uint256.Int
	gasTipCap() *uint256.Int
	gasFeeCap() *uint256.Int
	value() *uint256.Int
	nonce() uint64
	to() *Address
	data() []byte
	blobGas() uint64
	blobGasFeeCap() *uint256.Int
	blobHashes() []Hash
	authorizationList() []SetCodeAuthorization

	rawSignatureValues() (v, r, s *uint256.Int)
	setSignatureValues(chainID, v, r, s *uint256.Int)
}

// LegacyTx is the pre-EIP-2718 transaction format, still valid in every fork.
type LegacyTx struct {
	Nonce    uint64
	GasPrice *uint256.Int
	Gas      uint64
	To       *Address
	Value    *uint256.Int
	Data     []byte
	V, R, S  *uint256.Int
}

func (tx *LegacyTx) txType() byte { return LegacyTxType }
func (tx *LegacyTx) copy() TxData {
	cpy := *tx
	cpy.GasPrice = copyU256(tx.GasPrice)
	cpy.Value = copyU256(tx.Value)
	cpy.Data = append([]byte(nil), tx.Data...)
	cpy.V, cpy.R, cpy.S = copyU256(tx.V), copyU256(tx.R), copyU256(tx.S)
	return &cpy
}
func (tx *LegacyTx) chainID() *uint256.Int                      { return nil }
func (tx *LegacyTx) accessList() AccessList                     { return nil }
func (tx *LegacyTx) gas() uint64                                { return tx.Gas }
func (tx *LegacyTx) gasPrice() *uint256.Int                     { return tx.GasPrice }
func (tx *LegacyTx) gasTipCap() *uint256.Int                    { return tx.GasPrice }
func (tx *LegacyTx) gasFeeCap() *uint256.Int                    { return tx.GasPrice }
func (tx *LegacyTx) value() *uint256.Int                        { return tx.Value }
func (tx *LegacyTx) nonce() uint64                              { return tx.Nonce }
func (tx *LegacyTx) to() *Address                               { return tx.To }
func (tx *LegacyTx) data() []byte                               { return tx.Data }
func (tx *LegacyTx) blobGas() uint64                            { return 0 }
func (tx *LegacyTx) blobGasFeeCap() *uint256.Int                { return nil }
func (tx *LegacyTx) blobHashes() []Hash                         { return nil }
func (tx *LegacyTx) authorizationList() []SetCodeAuthorization  { return nil }
func (tx *LegacyTx) rawSignatureValues() (v, r, s *uint256.Int) { return tx.V, tx.R, tx.S }
func (tx *LegacyTx) setSignatureValues(_, v, r, s *uint256.Int) { tx.V, tx.R, tx.S = v, r, s }

// AccessListTx implements EIP-2930: a legacy-priced transaction that also
// carries a storage access list to pre-warm state access.
type AccessListTx struct {
	ChainID    *uint256.Int
	Nonce      uint64
	GasPrice   *uint256.Int
	Gas        uint64
	To         *Address
	Value      *uint256.Int
	Data       []byte
	AccessList AccessList
	V, R, S    *uint256.Int
}

func (tx *AccessListTx) txType() byte { return AccessListTxType }
func (tx *AccessListTx) copy() TxData {
	cpy := *tx
	cpy.ChainID = copyU256(tx.ChainID)
	cpy.GasPrice = copyU256(tx.GasPrice)
	cpy.Value = copyU256(tx.Value)
	cpy.Data = append([]byte(nil), tx.Data...)
	cpy.AccessList = append(AccessList(nil), tx.AccessList...)
	cpy.V, cpy.R, cpy.S = copyU256(tx.V), copyU256(tx.R), copyU256(tx.S)
	return &cpy
}
func (tx *AccessListTx) chainID() *uint256.Int                      { return tx.ChainID }
func (tx *AccessListTx) accessList() AccessList                     { return tx.AccessList }
func (tx *AccessListTx) gas() uint64                                { return tx.Gas }
func (tx *AccessListTx) gasPrice() *uint256.Int                     { return tx.GasPrice }
func (tx *AccessListTx) gasTipCap() *uint256.Int                    { return tx.GasPrice }
func (tx *AccessListTx) gasFeeCap() *uint256.Int                    { return tx.GasPrice }
func (tx *AccessListTx) value() *uint256.Int                        { return tx.Value }
func (tx *AccessListTx) nonce() uint64                              { return tx.Nonce }
func (tx *AccessListTx) to() *Address                               { return tx.To }
func (tx *AccessListTx) data() []byte                               { return tx.Data }
func (tx *AccessListTx) blobGas() uint64                            { return 0 }
func (tx *AccessListTx) blobGasFeeCap() *uint256.Int                { return nil }
func (tx *AccessListTx) blobHashes() []Hash                         { return nil }
func (tx *AccessListTx) authorizationList() []SetCodeAuthorization  { return nil }
func (tx *AccessListTx) rawSignatureValues() (v, r, s *uint256.Int) { return tx.V, tx.R, tx.S }
func (tx *AccessListTx) setSignatureValues(chainID, v, r, s *uint256.Int) {
	tx.ChainID, tx.V, tx.R, tx.S = chainID, v, r, s
}

// DynamicFeeTx implements EIP-1559: fee-market pricing with separate tip and
// fee caps, replacing a single gas price.
type DynamicFeeTx struct {
	ChainID    *uint256.Int
	Nonce      uint64
	GasTipCap  *uint256.Int
	GasFeeCap  *uint256.Int
	Gas        uint64
	To         *Address
	Value      *uint256.Int
	Data       []byte
	AccessList AccessList
	V, R, S    *uint256.Int
}

func (tx *DynamicFeeTx) txType() byte { return DynamicFeeTxType }
func (tx *DynamicFeeTx) copy() TxData {
	cpy := *tx
	cpy.ChainID = copyU256(tx.ChainID)
	cpy.GasTipCap = copyU256(tx.GasTipCap)
	cpy.GasFeeCap = copyU256(tx.GasFeeCap)
	cpy.Value = copyU256(tx.Value)
	cpy.Data = append([]byte(nil), tx.Data...)
	cpy.AccessList = append(AccessList(nil), tx.AccessList...)
	cpy.V, cpy.R, cpy.S = copyU256(tx.V), copyU256(tx.R), copyU256(tx.S)
	return &cpy
}
func (tx *DynamicFeeTx) chainID() *uint256.Int                      { return tx.ChainID }
func (tx *DynamicFeeTx) accessList() AccessList                     { return tx.AccessList }
func (tx *DynamicFeeTx) gas() uint64                                { return tx.Gas }
func (tx *DynamicFeeTx) gasPrice() *uint256.Int                     { return tx.GasFeeCap }
func (tx *DynamicFeeTx) gasTipCap() *uint256.Int                    { return tx.GasTipCap }
func (tx *DynamicFeeTx) gasFeeCap() *uint256.Int                    { return tx.GasFeeCap }
func (tx *DynamicFeeTx) value() *uint256.Int                        { return tx.Value }
func (tx *DynamicFeeTx) nonce() uint64                              { return tx.Nonce }
func (tx *DynamicFeeTx) to() *Address                               { return tx.To }
func (tx *DynamicFeeTx) data() []byte                               { return tx.Data }
func (tx *DynamicFeeTx) blobGas() uint64                            { return 0 }
func (tx *DynamicFeeTx) blobGasFeeCap() *uint256.Int                { return nil }
func (tx *DynamicFeeTx) blobHashes() []Hash                         { return nil }
func (tx *DynamicFeeTx) authorizationList() []SetCodeAuthorization  { return nil }
func (tx *DynamicFeeTx) rawSignatureValues() (v, r, s *uint256.Int) { return tx.V, tx.R, tx.S }
func (tx *DynamicFeeTx) setSignatureValues(chainID, v, r, s *uint256.Int) {
	tx.ChainID, tx.V, tx.R, tx.S = chainID, v, r, s
}

// BlobTx implements EIP-4844: a fee-market transaction that also carries
// versioned hashes of KZG-committed blobs kept outside the execution payload.
type BlobTx struct {
	ChainID    *uint256.Int
	Nonce      uint64
	GasTipCap  *uint256.Int
	GasFeeCap  *uint256.Int
	Gas        uint64
	To         Address // blob txs cannot be contract creations
	Value      *uint256.Int
	Data       []byte
	AccessList AccessList
	BlobFeeCap *uint256.Int
	BlobHashes []Hash
	V, R, S    *uint256.Int
}

func (tx *BlobTx) txType() byte { return BlobTxType }
func (tx *BlobTx) copy() TxData {
	cpy := *tx
	cpy.ChainID = copyU256(tx.ChainID)
	cpy.GasTipCap = copyU256(tx.GasTipCap)
	cpy.GasFeeCap = copyU256(tx.GasFeeCap)
	cpy.Value = copyU256(tx.Value)
	cpy.Data = append([]byte(nil), tx.Data...)
	cpy.AccessList = append(AccessList(nil), tx.AccessList...)
	cpy.BlobFeeCap = copyU256(tx.BlobFeeCap)
	cpy.BlobHashes = append([]Hash(nil), tx.BlobHashes...)
	cpy.V, cpy.R, cpy.S = copyU256(tx.V), copyU256(tx.R), copyU256(tx.S)
	return &cpy
}
func (tx *BlobTx) chainID() *uint256.Int                      { return tx.ChainID }
func (tx *BlobTx) accessList() AccessList                     { return tx.AccessList }
func (tx *BlobTx) gas() uint64                                { return tx.Gas }
func (tx *BlobTx) gasPrice() *uint256.Int                     { return tx.GasFeeCap }
func (tx *BlobTx) gasTipCap() *uint256.Int                    { return tx.GasTipCap }
func (tx *BlobTx) gasFeeCap() *uint256.Int                    { return tx.GasFeeCap }
func (tx *BlobTx) value() *uint256.Int                        { return tx.Value }
func (tx *BlobTx) nonce() uint64                              { return tx.Nonce }
func (tx *BlobTx) to() *Address                               { to := tx.To; return &to }
func (tx *BlobTx) data() []byte                               { return tx.Data }
func (tx *BlobTx) blobGas() uint64                            { return uint64(len(tx.BlobHashes)) * 131072 }
func (tx *BlobTx) blobGasFeeCap() *uint256.Int                { return tx.BlobFeeCap }
func (tx *BlobTx) blobHashes() []Hash                         { return tx.BlobHashes }
func (tx *BlobTx) authorizationList() []SetCodeAuthorization  { return nil }
func (tx *BlobTx) rawSignatureValues() (v, r, s *uint256.Int) { return tx.V, tx.R, tx.S }
func (tx *BlobTx) setSignatureValues(chainID, v, r, s *uint256.Int) {
	tx.ChainID, tx.V, tx.R, tx.S = chainID, v, r, s
}

// SetCodeAuthorization is one entry of an EIP-7702 authorization list: a
// signed statement that an EOA's code should delegate to the given address.
type SetCodeAuthorization struct {
	ChainID *uint256.Int
	Address Address
	Nonce   uint64
	V       uint8
	R, S    *uint256.Int
}

// SetCodeTx implements EIP-7702: a fee-market transaction that can also
// install delegation designations on EOAs; an installed designation stays
// in the account's code after the transaction.
type SetCodeTx struct {
	ChainID    *uint256.Int
	Nonce      uint64
	GasTipCap  *uint256.Int
	GasFeeCap  *uint256.Int
	Gas        uint64
	To         Address
	Value      *uint256.Int
	Data       []byte
	AccessList AccessList
	AuthList   []SetCodeAuthorization
	V, R, S    *uint256.Int
}

func (tx *SetCodeTx) txType() byte { return SetCodeTxType }
func (tx *SetCodeTx) copy() TxData {
	cpy := *tx
	cpy.ChainID = copyU256(tx.ChainID)
	cpy.GasTipCap = copyU256(tx.GasTipCap)
	cpy.GasFeeCap = copyU256(tx.GasFeeCap)
	cpy.Value = copyU256(tx.Value)
	cpy.Data = append([]byte(nil), tx.Data...)
	cpy.AccessList = append(AccessList(nil), tx.AccessList...)
	cpy.AuthList = append([]SetCodeAuthorization(nil), tx.AuthList...)
	cpy.V, cpy.R, cpy.S = copyU256(tx.V), copyU256(tx.R), copyU256(tx.S)
	return &cpy
}
func (tx *SetCodeTx) chainID() *uint256.Int                      { return tx.ChainID }
func (tx *SetCodeTx) accessList() AccessList                     { return tx.AccessList }
func (tx *SetCodeTx) gas() uint64                                { return tx.Gas }
func (tx *SetCodeTx) gasPrice() *uint256.Int                     { return tx.GasFeeCap }
func (tx *SetCodeTx) gasTipCap() *uint256.Int                    { return tx.GasTipCap }
func (tx *SetCodeTx) gasFeeCap() *uint256.Int                    { return tx.GasFeeCap }
func (tx *SetCodeTx) value() *uint256.Int                        { return tx.Value }
func (tx *SetCodeTx) nonce() uint64                              { return tx.Nonce }
func (tx *SetCodeTx) to() *Address                               { to := tx.To; return &to }
func (tx *SetCodeTx) data() []byte                               { return tx.Data }
func (tx *SetCodeTx) blobGas() uint64                            { return 0 }
func (tx *SetCodeTx) blobGasFeeCap() *uint256.Int                { return nil }
func (tx *SetCodeTx) blobHashes() []Hash                         { return nil }
func (tx *SetCodeTx) authorizationList() []SetCodeAuthorization  { return tx.AuthList }
func (tx *SetCodeTx) rawSignatureValues() (v, r, s *uint256.Int) { return tx.V, tx.R, tx.S }
func (tx *SetCodeTx) setSignatureValues(chainID, v, r, s *uint256.Int) {
	tx.ChainID, tx.V, tx.R, tx.S = chainID, v, r, s
}

func copyU256(i *uint256.Int) *uint256.Int {
	if i == nil {
		return nil
	}
	return new(uint256.Int).Set(i)
}

// Transaction is the envelope around one of the TxData variants, caching its
// hash and sender once computed.
type Transaction struct {
	inner TxData

	hash atomic.Value
	size atomic.Value
	from atomic.Value
}

// NewTx wraps the given type-specific payload into a Transaction envelope.
func NewTx(inner TxData) *Transaction {
	return &Transaction{inner: inner.copy()}
}

func (tx *Transaction) Type() byte                  { return tx.inner.txType() }
func (tx *Transaction) ChainID() *uint256.Int       { return tx.inner.chainID() }
func (tx *Transaction) AccessList() AccessList      { return tx.inner.accessList() }
func (tx *Transaction) Gas() uint64                 { return tx.inner.gas() }
func (tx *Transaction) GasPrice() *uint256.Int      { return tx.inner.gasPrice() }
func (tx *Transaction) GasTipCap() *uint256.Int     { return tx.inner.gasTipCap() }
func (tx *Transaction) GasFeeCap() *uint256.Int     { return tx.inner.gasFeeCap() }
func (tx *Transaction) Value() *uint256.Int         { return tx.inner.value() }
func (tx *Transaction) Nonce() uint64               { return tx.inner.nonce() }
func (tx *Transaction) To() *Address                { return tx.inner.to() }
func (tx *Transaction) Data() []byte                { return tx.inner.data() }
func (tx *Transaction) BlobGas() uint64             { return tx.inner.blobGas() }
func (tx *Transaction) BlobGasFeeCap() *uint256.Int { return tx.inner.blobGasFeeCap() }
func (tx *Transaction) BlobHashes() []Hash          { return tx.inner.blobHashes() }
func (tx *Transaction) AuthorizationList() []SetCodeAuthorization {
	return tx.inner.authorizationList()
}
func (tx *Transaction) RawSignatureValues() (v, r, s *uint256.Int) {
	return tx.inner.rawSignatureValues()
}

// Size returns the true encoded byte size of the transaction, caching the
// result since callers (gas estimation, mempool eviction) ask repeatedly.
func (tx *Transaction) Size() uint64 {
	if s := tx.size.Load(); s != nil {
		return s.(uint64)
	}
	data, err := tx.MarshalBinary()
	if err != nil {
		return 0
	}
	size := uint64(len(data))
	tx.size.Store(size)
	return size
}

// IsContractCreation reports whether this transaction has no recipient.
func (tx *Transaction) IsContractCreation() bool { return tx.inner.to() == nil }

// EffectiveGasTip returns the actual per-gas tip the proposer collects given
// the block's base fee, per EIP-1559's min(tipCap, feeCap-baseFee) rule.
func (tx *Transaction) EffectiveGasTip(baseFee *uint256.Int) *uint256.Int {
	tip := tx.GasTipCap()
	if baseFee == nil {
		return tip
	}
	feeCap := tx.GasFeeCap()
	headroom := new(uint256.Int).Sub(feeCap, baseFee)
	if headroom.Cmp(tip) < 0 {
		return headroom
	}
	return new(uint256.Int).Set(tip)
}

// EncodeRLP implements the EIP-2718 typed-envelope encoding: legacy
// transactions encode as a bare RLP list, typed transactions encode as
// `type || RLP(payload fields)`, itself wrapped as an RLP string for
// inclusion inside a block's transaction list.
func (tx *Transaction) EncodeRLP(w interface{ Write([]byte) (int, error) }) error {
	payload, err := tx.MarshalBinary()
	if err != nil {
		return err
	}
	if tx.Type() == LegacyTxType {
		_, err := w.Write(payload)
		return err
	}
	wrapped, err := rlp.EncodeToBytes(rlp.RawValue(payload))
	if err != nil {
		return err
	}
	_, err = w.Write(wrapped)
	return err
}

// MarshalBinary returns the canonical EIP-2718 byte encoding: for legacy
// transactions this is plain RLP, for typed transactions it is the type
// byte followed by the RLP of the type's field list.
func (tx *Transaction) MarshalBinary() ([]byte, error) {
	switch t := tx.inner.(type) {
	case *LegacyTx:
		return rlp.EncodeToBytes(t)
	default:
		body, err := rlp.EncodeToBytes(t)
		if err != nil {
			return nil, err
		}
		return append([]byte{tx.Type()}, body...), nil
	}
}

// UnmarshalBinary decodes an EIP-2718 typed or legacy transaction envelope.
func (tx *Transaction) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		return errors.New("types: empty transaction data")
	}
	if data[0] > 0x7f {
		var inner LegacyTx
		if err := rlp.DecodeBytes(data, &inner); err != nil {
			return err
		}
		tx.setDecoded(&inner)
		return nil
	}
	payload := data[1:]
	var inner TxData
	switch data[0] {
	case AccessListTxType:
		inner = new(AccessListTx)
	case DynamicFeeTxType:
		inner = new(DynamicFeeTx)
	case BlobTxType:
		inner = new(BlobTx)
	case SetCodeTxType:
		inner = new(SetCodeTx)
	default:
		return ErrInvalidTxType
	}
	if err := rlp.DecodeBytes(payload, inner); err != nil {
		return err
	}
	tx.setDecoded(inner)
	return nil
}

func (tx *Transaction) setDecoded(inner TxData) {
	tx.inner = inner
	tx.hash = atomic.Value{}
	tx.from = atomic.Value{}
}

// Hash returns the Keccak256 hash of the transaction's canonical RLP/typed
// encoding, the identifier used to reference it in receipts and the trie.
func (tx *Transaction) Hash() Hash {
	if h := tx.hash.Load(); h != nil {
		return h.(Hash)
	}
	data, err := tx.MarshalBinary()
	if err != nil {
		return Hash{}
	}
	h := BytesToHash(crypto.Keccak256(data))
	tx.hash.Store(h)
	return h
}

// SigningHash returns the hash signed by the sender, which for typed
// transactions omits the signature fields and for legacy pre-EIP-155
// transactions omits the chain ID as well.
func (tx *Transaction) SigningHash(chainID *uint256.Int) Hash {
	var buf []byte
	switch t := tx.inner.(type) {
	case *LegacyTx:
		unsigned := &LegacyTx{Nonce: t.Nonce, GasPrice: t.GasPrice, Gas: t.Gas, To: t.To, Value: t.Value, Data: t.Data}
		if chainID != nil && !chainID.IsZero() {
			b, _ := rlp.EncodeToBytes([]interface{}{
				unsigned.Nonce, unsigned.GasPrice, unsigned.Gas, toBytesOrNil(unsigned.To), unsigned.Value, unsigned.Data,
				chainID, uint64(0), uint64(0),
			})
			buf = b
		} else {
			b, _ := rlp.EncodeToBytes(unsigned)
			buf = b
		}
	default:
		cpy := tx.inner.copy()
		cpy.setSignatureValues(chainID, new(uint256.Int), new(uint256.Int), new(uint256.Int))
		body, _ := rlp.EncodeToBytes(cpy)
		buf = append([]byte{tx.Type()}, body...)
	}
	return BytesToHash(crypto.Keccak256(buf))
}

func toBytesOrNil(a *Address) []byte {
	if a == nil {
		return nil
	}
	return a.Bytes()
}
