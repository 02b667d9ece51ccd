package vm

import (
	"math/big"
	"testing"
)

func ecrecoverInput(v byte, r, s *big.Int) []byte {
	in := make([]byte, 128) // hash bytes left zero; irrelevant for these rejection cases
	in[63] = v
	rBytes := r.Bytes()
	copy(in[64+32-len(rBytes):96], rBytes)
	sBytes := s.Bytes()
	copy(in[96+32-len(sBytes):128], sBytes)
	return in
}

func TestEcrecoverRejectsInvalidRecoveryID(t *testing.T) {
	c := &ecrecoverPrecompile{}
	for _, v := range []byte{0, 1, 26, 29, 255} {
		out, err := c.Run(ecrecoverInput(v, big.NewInt(1), big.NewInt(1)))
		if err != nil {
			t.Fatalf("Run with v=%d returned error %v, want nil error with empty output", v, err)
		}
		if len(out) != 0 {
			t.Errorf("Run with v=%d = %x, want empty output", v, out)
		}
	}
}

func TestEcrecoverRejectsHighS(t *testing.T) {
	c := &ecrecoverPrecompile{}
	// secp256k1's order N; any s > N/2 fails the post-Homestead low-S check.
	n, _ := new(big.Int).SetString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)
	halfN := new(big.Int).Rsh(n, 1)
	highS := new(big.Int).Add(halfN, big.NewInt(1))

	out, err := c.Run(ecrecoverInput(27, big.NewInt(1), highS))
	if err != nil {
		t.Fatalf("Run with malformed high s returned error %v, want nil error with empty output", err)
	}
	if len(out) != 0 {
		t.Errorf("Run with malformed high s = %x, want empty output", out)
	}
}

func TestEcrecoverRejectsZeroR(t *testing.T) {
	c := &ecrecoverPrecompile{}
	out, err := c.Run(ecrecoverInput(27, big.NewInt(0), big.NewInt(1)))
	if err != nil {
		t.Fatalf("Run with r=0 returned error %v, want nil error with empty output", err)
	}
	if len(out) != 0 {
		t.Errorf("Run with r=0 = %x, want empty output", out)
	}
}

func TestEcrecoverRejectsROutOfRange(t *testing.T) {
	c := &ecrecoverPrecompile{}
	n, _ := new(big.Int).SetString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)
	out, err := c.Run(ecrecoverInput(27, n, big.NewInt(1)))
	if err != nil {
		t.Fatalf("Run with r>=N returned error %v, want nil error with empty output", err)
	}
	if len(out) != 0 {
		t.Errorf("Run with r>=N = %x, want empty output", out)
	}
}

func TestEcrecoverRequiredGasIsConstant(t *testing.T) {
	c := &ecrecoverPrecompile{}
	if got := c.RequiredGas(nil); got != 3000 {
		t.Errorf("RequiredGas(nil) = %d, want 3000", got)
	}
	if got := c.RequiredGas(make([]byte, 128)); got != 3000 {
		t.Errorf("RequiredGas(128 bytes) = %d, want 3000", got)
	}
}
