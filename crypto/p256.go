package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"math/big"
)

// P256Verify implements the EIP-7212 precompile: verifies a secp256r1
// (P-256) signature over hash with public key (x, y). Stdlib crypto/elliptic
// + crypto/ecdsa: P-256 is a NIST curve with first-class standard-library
// support, unlike secp256k1/BN254/BLS12-381 which the stdlib doesn't
// implement at all — there is no pack library offering more than stdlib
// already does for this one curve.
func P256Verify(hash, r, s, x, y []byte) bool {
	curve := elliptic.P256()
	pub := &ecdsa.PublicKey{
		Curve: curve,
		X:     new(big.Int).SetBytes(x),
		Y:     new(big.Int).SetBytes(y),
	}
	if !curve.IsOnCurve(pub.X, pub.Y) {
		return false
	}
	rInt := new(big.Int).SetBytes(r)
	sInt := new(big.Int).SetBytes(s)
	return ecdsa.Verify(pub, hash, rInt, sInt)
}
