package types

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
)

func legacyTxWithSig(v, r, s uint64) *Transaction {
	return NewTx(&LegacyTx{
		Nonce:    0,
		GasPrice: uint256.NewInt(1),
		Gas:      21000,
		To:       &Address{},
		Value:    uint256.NewInt(0),
		V:        uint256.NewInt(v),
		R:        uint256.NewInt(r),
		S:        uint256.NewInt(s),
	})
}

func TestSenderRejectsZeroR(t *testing.T) {
	s := NewSigner(nil)
	tx := legacyTxWithSig(27, 0, 1)

	if _, err := s.Sender(tx); err != ErrInvalidSig {
		t.Errorf("Sender with r=0 error = %v, want ErrInvalidSig", err)
	}
}

func TestSenderRejectsZeroS(t *testing.T) {
	s := NewSigner(nil)
	tx := legacyTxWithSig(27, 1, 0)

	if _, err := s.Sender(tx); err != ErrInvalidSig {
		t.Errorf("Sender with s=0 error = %v, want ErrInvalidSig", err)
	}
}

func TestSenderRejectsHighS(t *testing.T) {
	s := NewSigner(nil)
	n, _ := new(big.Int).SetString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)
	halfN := new(big.Int).Rsh(n, 1)
	highS, _ := uint256.FromBig(new(big.Int).Add(halfN, big.NewInt(1)))

	tx := NewTx(&LegacyTx{
		Nonce:    0,
		GasPrice: uint256.NewInt(1),
		Gas:      21000,
		To:       &Address{},
		Value:    uint256.NewInt(0),
		V:        uint256.NewInt(27),
		R:        uint256.NewInt(1),
		S:        highS,
	})

	if _, err := s.Sender(tx); err != ErrInvalidSig {
		t.Errorf("Sender with malformed high s error = %v, want ErrInvalidSig", err)
	}
}

func TestSenderRejectsROutOfRange(t *testing.T) {
	s := NewSigner(nil)
	n, _ := new(big.Int).SetString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)
	outOfRangeR, _ := uint256.FromBig(n)

	tx := NewTx(&LegacyTx{
		Nonce:    0,
		GasPrice: uint256.NewInt(1),
		Gas:      21000,
		To:       &Address{},
		Value:    uint256.NewInt(0),
		V:        uint256.NewInt(27),
		R:        outOfRangeR,
		S:        uint256.NewInt(1),
	})

	if _, err := s.Sender(tx); err != ErrInvalidSig {
		t.Errorf("Sender with r>=N error = %v, want ErrInvalidSig", err)
	}
}

func TestSenderRejectsMissingSignature(t *testing.T) {
	s := NewSigner(nil)
	tx := NewTx(&LegacyTx{
		Nonce:    0,
		GasPrice: uint256.NewInt(1),
		Gas:      21000,
		To:       &Address{},
		Value:    uint256.NewInt(0),
	})

	if _, err := s.Sender(tx); err != ErrInvalidSig {
		t.Errorf("Sender with nil r/s error = %v, want ErrInvalidSig", err)
	}
}

func TestSenderDoesNotCacheFailedRecovery(t *testing.T) {
	// Even a transaction that will fail validation must not populate the
	// from cache, so a cached lookup never bypasses the signature check.
	s := NewSigner(nil)
	tx := legacyTxWithSig(27, 0, 1)

	if _, err := s.Sender(tx); err == nil {
		t.Fatal("expected an error for a malformed signature")
	}
	if cached := tx.from.Load(); cached != nil {
		t.Errorf("from cache should remain unset after a failed Sender call, got %v", cached)
	}
}
