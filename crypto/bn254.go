package crypto

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
)

// BN254FieldSize is the byte length of a BN254 base-field element as encoded
// in precompile input/output (big-endian, zero-padded).
const BN254FieldSize = 32

var errBN254InvalidPoint = errors.New("bn254: invalid point encoding")

// bn254DecodeG1 decodes a 64-byte (x, y) pair into an affine G1 point. The
// all-zero encoding is the point at infinity, matching EIP-196.
func bn254DecodeG1(buf []byte) (bn254.G1Affine, error) {
	var p bn254.G1Affine
	if len(buf) != 64 {
		return p, errBN254InvalidPoint
	}
	var x, y fp.Element
	x.SetBytes(buf[:32])
	y.SetBytes(buf[32:64])
	p.X, p.Y = x, y
	if p.X.IsZero() && p.Y.IsZero() {
		return p, nil
	}
	if !p.IsOnCurve() {
		return p, errBN254InvalidPoint
	}
	return p, nil
}

func bn254EncodeG1(p bn254.G1Affine) []byte {
	out := make([]byte, 64)
	xb := p.X.Bytes()
	yb := p.Y.Bytes()
	copy(out[32-len(xb):32], xb[:])
	copy(out[64-len(yb):64], yb[:])
	return out
}

// BN254Add implements the ECADD precompile: point addition on the alt_bn128 curve.
func BN254Add(input []byte) ([]byte, error) {
	input = rightPad(input, 128)
	p1, err := bn254DecodeG1(input[:64])
	if err != nil {
		return nil, err
	}
	p2, err := bn254DecodeG1(input[64:128])
	if err != nil {
		return nil, err
	}
	var res bn254.G1Jac
	res.FromAffine(&p1)
	var p2j bn254.G1Jac
	p2j.FromAffine(&p2)
	res.AddAssign(&p2j)
	var out bn254.G1Affine
	out.FromJacobian(&res)
	return bn254EncodeG1(out), nil
}

// BN254ScalarMul implements the ECMUL precompile: scalar multiplication on
// alt_bn128.
func BN254ScalarMul(input []byte) ([]byte, error) {
	input = rightPad(input, 96)
	p, err := bn254DecodeG1(input[:64])
	if err != nil {
		return nil, err
	}
	scalar := new(big.Int).SetBytes(input[64:96])
	var pj bn254.G1Jac
	pj.FromAffine(&p)
	pj.ScalarMultiplication(&pj, scalar)
	var out bn254.G1Affine
	out.FromJacobian(&pj)
	return bn254EncodeG1(out), nil
}

// BN254Pairing implements the ECPAIRING check: input is a sequence of
// 192-byte (G1||G2) pairs; it reports true if the product of pairings
// equals the identity in GT, false otherwise (the precompile returns this
// as a 32-byte word, 1 or 0). An empty input is defined to pair to true
// (the empty product).
func BN254Pairing(input []byte) (bool, error) {
	if len(input)%192 != 0 {
		return false, errBN254InvalidPoint
	}
	n := len(input) / 192
	g1s := make([]bn254.G1Affine, 0, n)
	g2s := make([]bn254.G2Affine, 0, n)
	for i := 0; i < n; i++ {
		chunk := input[i*192 : (i+1)*192]
		g1, err := bn254DecodeG1(chunk[:64])
		if err != nil {
			return false, err
		}
		g2, err := bn254DecodeG2(chunk[64:192])
		if err != nil {
			return false, err
		}
		// Skip terms where either operand is the identity; they contribute 1.
		if (g1.X.IsZero() && g1.Y.IsZero()) || (g2.X.IsZero() && g2.Y.IsZero()) {
			continue
		}
		g1s = append(g1s, g1)
		g2s = append(g2s, g2)
	}
	if len(g1s) == 0 {
		return true, nil
	}
	ok, err := bn254.PairingCheck(g1s, g2s)
	if err != nil {
		return false, err
	}
	return ok, nil
}

func bn254DecodeG2(buf []byte) (bn254.G2Affine, error) {
	var p bn254.G2Affine
	if len(buf) != 128 {
		return p, errBN254InvalidPoint
	}
	// EIP-197 encodes each Fp2 coordinate as (imaginary, real), 64 bytes each.
	var x0, x1, y0, y1 fp.Element
	x1.SetBytes(buf[0:32])
	x0.SetBytes(buf[32:64])
	y1.SetBytes(buf[64:96])
	y0.SetBytes(buf[96:128])
	p.X.A0, p.X.A1 = x0, x1
	p.Y.A0, p.Y.A1 = y0, y1
	if p.X.IsZero() && p.Y.IsZero() {
		return p, nil
	}
	if !p.IsOnCurve() {
		return p, errBN254InvalidPoint
	}
	return p, nil
}

func rightPad(b []byte, n int) []byte {
	if len(b) >= n {
		return b[:n]
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}
