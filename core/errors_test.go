package core

import (
	"errors"
	"testing"
)

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNonceTooLow, ErrNonceTooHigh, ErrNonceMax, ErrSenderNoEOA,
		ErrInsufficientBalance, ErrGasLimitExceedsBlock, ErrIntrinsicGasTooLow,
		ErrFeeCapTooLow, ErrTipAboveFeeCap, ErrUnsupportedTxType,
		ErrMissingBlobHashes, ErrBlobFeeCapTooLow, ErrBlobCreate,
		ErrInvalidSender, ErrGasUintOverflow,
	}
	seen := make(map[string]bool, len(sentinels))
	for _, err := range sentinels {
		msg := err.Error()
		if seen[msg] {
			t.Errorf("duplicate sentinel error message %q", msg)
		}
		seen[msg] = true
	}
}

func TestValidationErrorUnwrap(t *testing.T) {
	ve := &ValidationError{TxIndex: 3, Err: ErrNonceTooLow}
	if !errors.Is(ve, ErrNonceTooLow) {
		t.Error("ValidationError should unwrap to its underlying error")
	}
	want := "core: tx 3: core: nonce too low"
	if ve.Error() != want {
		t.Errorf("ValidationError.Error() = %q, want %q", ve.Error(), want)
	}
}

func TestBlockValidationErrorMessage(t *testing.T) {
	bve := &BlockValidationError{Field: "GasUsed", Want: "21000", Got: "21001"}
	got := bve.Error()
	if got == "" {
		t.Fatal("BlockValidationError.Error() returned empty string")
	}
	for _, want := range []string{"GasUsed", "21000", "21001"} {
		if !containsSubstring(got, want) {
			t.Errorf("BlockValidationError message %q missing %q", got, want)
		}
	}
}

func containsSubstring(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
