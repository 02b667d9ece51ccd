package types

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/crypto"
)

var (
	ErrInvalidChainID = errors.New("types: transaction chain ID mismatch")
	ErrInvalidSig     = errors.New("types: invalid transaction signature")
)

// Signer recovers the sender of a transaction and computes the hash it
// signed, abstracting over the legacy/EIP-155/typed-transaction differences.
type Signer struct {
	chainID *uint256.Int
}

// NewSigner returns a Signer bound to chainID. A nil chainID accepts only
// pre-EIP-155 legacy transactions, the pre-Spurious-Dragon signer behavior.
func NewSigner(chainID *uint256.Int) Signer {
	return Signer{chainID: chainID}
}

// Sender recovers the address that signed tx.
func (s Signer) Sender(tx *Transaction) (Address, error) {
	if cached := tx.from.Load(); cached != nil {
		return cached.(Address), nil
	}
	v, r, s_ := tx.RawSignatureValues()
	if r == nil || s_ == nil {
		return Address{}, ErrInvalidSig
	}

	var (
		sigHash Hash
		recid   byte
	)
	switch tx.Type() {
	case LegacyTxType:
		vBig := v.ToBig()
		if isProtectedV(vBig) {
			chainID := deriveChainID(vBig)
			if s.chainID == nil || chainID.Cmp(s.chainID.ToBig()) != 0 {
				return Address{}, ErrInvalidChainID
			}
			recid = byte(new(big.Int).Sub(vBig, new(big.Int).Add(new(big.Int).Mul(chainID, big.NewInt(2)), big.NewInt(35))).Uint64())
			sigHash = tx.SigningHash(uint256FromBig(chainID))
		} else {
			recid = byte(vBig.Uint64() - 27)
			sigHash = tx.SigningHash(nil)
		}
	default:
		if s.chainID == nil {
			return Address{}, ErrInvalidChainID
		}
		recid = byte(v.Uint64())
		sigHash = tx.SigningHash(tx.ChainID())
	}

	if !crypto.ValidateSignatureValues(recid, r.ToBig(), s_.ToBig(), true) {
		return Address{}, ErrInvalidSig
	}

	sig := make([]byte, 65)
	rBytes, sBytes := r.Bytes32(), s_.Bytes32()
	copy(sig[:32], rBytes[:])
	copy(sig[32:64], sBytes[:])
	sig[64] = recid

	pub, err := crypto.Ecrecover(sigHash.Bytes(), sig)
	if err != nil {
		return Address{}, err
	}
	pubAddr := crypto.PubkeyToAddress(pub)
	addr := BytesToAddress(pubAddr[:])
	tx.from.Store(addr)
	return addr, nil
}

func isProtectedV(v *big.Int) bool {
	if v.BitLen() <= 8 {
		vv := v.Uint64()
		return vv != 27 && vv != 28
	}
	return true
}

func deriveChainID(v *big.Int) *big.Int {
	if v.BitLen() <= 64 {
		vv := v.Uint64()
		if vv == 27 || vv == 28 {
			return new(big.Int)
		}
		return new(big.Int).SetUint64((vv - 35) / 2)
	}
	chainID := new(big.Int).Sub(v, big.NewInt(35))
	return chainID.Rsh(chainID, 1)
}

func uint256FromBig(b *big.Int) *uint256.Int {
	u, _ := uint256.FromBig(b)
	return u
}
