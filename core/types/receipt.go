package types

import (
	"errors"

	"github.com/execlayer/evmcore/rlp"
)

// Receipt status codes, post-Byzantium (EIP-658).
const (
	ReceiptStatusFailed     = uint64(0)
	ReceiptStatusSuccessful = uint64(1)
)

// Receipt records the outcome of executing one transaction: status, gas
// used, logs, and the bloom filter summarizing those logs.
type Receipt struct {
	Type              byte
	PostState         []byte // pre-Byzantium intermediate state root, mutually exclusive with Status
	Status            uint64
	CumulativeGasUsed uint64
	Bloom             Bloom
	Logs              []*Log

	TxHash          Hash
	ContractAddress Address
	GasUsed         uint64

	BlockHash        Hash
	BlockNumber      uint64
	TransactionIndex uint
}

// NewReceipt builds a post-Byzantium receipt from execution outcome fields;
// Bloom is computed by the caller once all of a block's receipts are known,
// or immediately via SetBloom for a single receipt.
func NewReceipt(failed bool, cumulativeGasUsed uint64) *Receipt {
	r := &Receipt{CumulativeGasUsed: cumulativeGasUsed}
	if failed {
		r.Status = ReceiptStatusFailed
	} else {
		r.Status = ReceiptStatusSuccessful
	}
	return r
}

// SetBloom derives the receipt's own bloom filter from its logs.
func (r *Receipt) SetBloom() {
	r.Bloom = LogsBloom(r.Logs)
}

// rlpReceipt is the wire-format projection of Receipt: pre-Byzantium
// receipts carry PostState where post-Byzantium ones carry Status, so the
// two are encoded through the same byte-string slot.
type rlpReceipt struct {
	PostStateOrStatus []byte
	CumulativeGasUsed uint64
	Bloom             Bloom
	Logs              []*Log
}

func (r *Receipt) statusEncoding() []byte {
	if len(r.PostState) > 0 {
		return r.PostState
	}
	if r.Status == ReceiptStatusFailed {
		return nil
	}
	return []byte{1}
}

// Receipts is a list of receipts, the type a block's receipts trie and
// cumulative gas accounting are built over.
type Receipts []*Receipt

// ReceiptForStorage additionally carries the derived fields used by
// consensus-layer consumers (explorers, proof circuits) that are not part
// of the canonical receipt RLP itself.
type ReceiptForStorage Receipt

// MarshalBinary returns the EIP-2718 envelope encoding used in the receipts
// trie and in block bodies: legacy receipts are a bare RLP list, typed
// receipts are `type || RLP(fields)`.
func (r *Receipt) MarshalBinary() ([]byte, error) {
	body, err := rlp.EncodeToBytes(&rlpReceipt{
		PostStateOrStatus: r.statusEncoding(),
		CumulativeGasUsed: r.CumulativeGasUsed,
		Bloom:             r.Bloom,
		Logs:              r.Logs,
	})
	if err != nil {
		return nil, err
	}
	if r.Type == LegacyTxType {
		return body, nil
	}
	return append([]byte{r.Type}, body...), nil
}

// UnmarshalBinary decodes an EIP-2718 receipt envelope.
func (r *Receipt) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		return errors.New("types: empty receipt data")
	}
	var (
		raw rlpReceipt
		typ byte
	)
	if data[0] > 0x7f {
		typ = LegacyTxType
		if err := rlp.DecodeBytes(data, &raw); err != nil {
			return err
		}
	} else {
		typ = data[0]
		if err := rlp.DecodeBytes(data[1:], &raw); err != nil {
			return err
		}
	}
	r.Type = typ
	r.CumulativeGasUsed = raw.CumulativeGasUsed
	r.Bloom = raw.Bloom
	r.Logs = raw.Logs
	switch {
	case len(raw.PostStateOrStatus) == 32:
		r.PostState = raw.PostStateOrStatus
	case len(raw.PostStateOrStatus) == 0:
		r.Status = ReceiptStatusFailed
	default:
		r.Status = ReceiptStatusSuccessful
	}
	return nil
}
