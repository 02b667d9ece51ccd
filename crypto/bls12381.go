package crypto

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"
)

// EIP-2537 zero-pads every 48-byte base-field element out to 64 bytes.
const bls381FieldSize = 64
const bls381RealFieldSize = 48

var errBLSInvalidPoint = errors.New("bls12381: invalid point encoding")
var errBLSInvalidFieldElement = errors.New("bls12381: field element exceeds modulus or has nonzero padding")

func bls381DecodeFp(buf []byte) (fp.Element, error) {
	var e fp.Element
	if len(buf) != bls381FieldSize {
		return e, errBLSInvalidFieldElement
	}
	for _, b := range buf[:bls381FieldSize-bls381RealFieldSize] {
		if b != 0 {
			return e, errBLSInvalidFieldElement
		}
	}
	e.SetBytes(buf[bls381FieldSize-bls381RealFieldSize:])
	return e, nil
}

func bls381EncodeFp(e fp.Element) []byte {
	out := make([]byte, bls381FieldSize)
	b := e.Bytes()
	copy(out[bls381FieldSize-bls381RealFieldSize:], b[:])
	return out
}

// BLS12381G1Add implements the BLS12_G1ADD precompile.
func BLS12381G1Add(input []byte) ([]byte, error) {
	if len(input) != 256 {
		return nil, errBLSInvalidPoint
	}
	p1, err := decodeG1(input[:128])
	if err != nil {
		return nil, err
	}
	p2, err := decodeG1(input[128:])
	if err != nil {
		return nil, err
	}
	var j1, j2 bls12381.G1Jac
	j1.FromAffine(&p1)
	j2.FromAffine(&p2)
	j1.AddAssign(&j2)
	var out bls12381.G1Affine
	out.FromJacobian(&j1)
	return encodeG1(out), nil
}

// BLS12381G1MultiExp implements BLS12_G1MSM: a sequence of (point, scalar) pairs.
func BLS12381G1MultiExp(input []byte) ([]byte, error) {
	const chunk = 160 // 128-byte point + 32-byte scalar
	if len(input) == 0 || len(input)%chunk != 0 {
		return nil, errBLSInvalidPoint
	}
	n := len(input) / chunk
	var acc bls12381.G1Jac
	for i := 0; i < n; i++ {
		c := input[i*chunk : (i+1)*chunk]
		p, err := decodeG1(c[:128])
		if err != nil {
			return nil, err
		}
		s := new(big.Int).SetBytes(c[128:160])
		var pj bls12381.G1Jac
		pj.FromAffine(&p)
		pj.ScalarMultiplication(&pj, s)
		acc.AddAssign(&pj)
	}
	var out bls12381.G1Affine
	out.FromJacobian(&acc)
	return encodeG1(out), nil
}

// BLS12381Pairing implements BLS12_PAIRING_CHECK: a sequence of (G1, G2) pairs;
// returns true if their product pairs to the GT identity.
func BLS12381Pairing(input []byte) (bool, error) {
	const chunk = 384 // 128-byte G1 + 256-byte G2
	if len(input) == 0 || len(input)%chunk != 0 {
		return false, errBLSInvalidPoint
	}
	n := len(input) / chunk
	g1s := make([]bls12381.G1Affine, 0, n)
	g2s := make([]bls12381.G2Affine, 0, n)
	for i := 0; i < n; i++ {
		c := input[i*chunk : (i+1)*chunk]
		g1, err := decodeG1(c[:128])
		if err != nil {
			return false, err
		}
		g2, err := decodeG2(c[128:384])
		if err != nil {
			return false, err
		}
		g1s = append(g1s, g1)
		g2s = append(g2s, g2)
	}
	ok, err := bls12381.PairingCheck(g1s, g2s)
	if err != nil {
		return false, err
	}
	return ok, nil
}

func decodeG1(buf []byte) (bls12381.G1Affine, error) {
	var p bls12381.G1Affine
	x, err := bls381DecodeFp(buf[:64])
	if err != nil {
		return p, err
	}
	y, err := bls381DecodeFp(buf[64:128])
	if err != nil {
		return p, err
	}
	p.X, p.Y = x, y
	if p.X.IsZero() && p.Y.IsZero() {
		return p, nil
	}
	if !p.IsOnCurve() {
		return p, errBLSInvalidPoint
	}
	return p, nil
}

func encodeG1(p bls12381.G1Affine) []byte {
	out := make([]byte, 128)
	copy(out[:64], bls381EncodeFp(p.X))
	copy(out[64:], bls381EncodeFp(p.Y))
	return out
}

// BLS12381G2Add implements the BLS12_G2ADD precompile.
func BLS12381G2Add(input []byte) ([]byte, error) {
	if len(input) != 512 {
		return nil, errBLSInvalidPoint
	}
	p1, err := decodeG2(input[:256])
	if err != nil {
		return nil, err
	}
	p2, err := decodeG2(input[256:])
	if err != nil {
		return nil, err
	}
	var j1, j2 bls12381.G2Jac
	j1.FromAffine(&p1)
	j2.FromAffine(&p2)
	j1.AddAssign(&j2)
	var out bls12381.G2Affine
	out.FromJacobian(&j1)
	return encodeG2(out), nil
}

// BLS12381G2MultiExp implements BLS12_G2MSM: a sequence of (point, scalar) pairs.
func BLS12381G2MultiExp(input []byte) ([]byte, error) {
	const chunk = 288 // 256-byte point + 32-byte scalar
	if len(input) == 0 || len(input)%chunk != 0 {
		return nil, errBLSInvalidPoint
	}
	n := len(input) / chunk
	var acc bls12381.G2Jac
	for i := 0; i < n; i++ {
		c := input[i*chunk : (i+1)*chunk]
		p, err := decodeG2(c[:256])
		if err != nil {
			return nil, err
		}
		s := new(big.Int).SetBytes(c[256:288])
		var pj bls12381.G2Jac
		pj.FromAffine(&p)
		pj.ScalarMultiplication(&pj, s)
		acc.AddAssign(&pj)
	}
	var out bls12381.G2Affine
	out.FromJacobian(&acc)
	return encodeG2(out), nil
}

// BLS12381MapFpToG1 implements BLS12_MAP_FP_TO_G1: maps a base-field element
// onto the curve via the simplified SWU map.
func BLS12381MapFpToG1(input []byte) ([]byte, error) {
	e, err := bls381DecodeFp(input)
	if err != nil {
		return nil, err
	}
	p := bls12381.MapToG1(e)
	return encodeG1(p), nil
}

// BLS12381MapFp2ToG2 implements BLS12_MAP_FP2_TO_G2: maps an Fp2 element onto
// the twist via the simplified SWU map.
func BLS12381MapFp2ToG2(input []byte) ([]byte, error) {
	if len(input) != 128 {
		return nil, errBLSInvalidFieldElement
	}
	a0, err := bls381DecodeFp(input[:64])
	if err != nil {
		return nil, err
	}
	a1, err := bls381DecodeFp(input[64:128])
	if err != nil {
		return nil, err
	}
	var e bls12381.E2
	e.A0, e.A1 = a0, a1
	p := bls12381.MapToG2(e)
	return encodeG2(p), nil
}

func encodeG2(p bls12381.G2Affine) []byte {
	out := make([]byte, 256)
	copy(out[:64], bls381EncodeFp(p.X.A0))
	copy(out[64:128], bls381EncodeFp(p.X.A1))
	copy(out[128:192], bls381EncodeFp(p.Y.A0))
	copy(out[192:256], bls381EncodeFp(p.Y.A1))
	return out
}

func decodeG2(buf []byte) (bls12381.G2Affine, error) {
	var p bls12381.G2Affine
	x0, err := bls381DecodeFp(buf[0:64])
	if err != nil {
		return p, err
	}
	x1, err := bls381DecodeFp(buf[64:128])
	if err != nil {
		return p, err
	}
	y0, err := bls381DecodeFp(buf[128:192])
	if err != nil {
		return p, err
	}
	y1, err := bls381DecodeFp(buf[192:256])
	if err != nil {
		return p, err
	}
	p.X.A0, p.X.A1 = x0, x1
	p.Y.A0, p.Y.A1 = y0, y1
	if p.X.IsZero() && p.Y.IsZero() {
		return p, nil
	}
	if !p.IsOnCurve() {
		return p, errBLSInvalidPoint
	}
	return p, nil
}
