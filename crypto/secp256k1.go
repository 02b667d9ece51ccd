package crypto

import (
	"errors"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

var (
	// secp256k1N is the order of the secp256k1 base point.
	secp256k1N = secp256k1.S256().N
	// secp256k1HalfN is half the curve order, used for the Homestead low-S check.
	secp256k1HalfN = new(big.Int).Rsh(secp256k1N, 1)
)

var (
	ErrInvalidSignatureLen = errors.New("invalid signature length")
	ErrInvalidRecoveryID   = errors.New("invalid signature recovery id")
	ErrInvalidSignature    = errors.New("invalid signature")
)

// ValidateSignatureValues reports whether (r, s, v) are a well-formed
// secp256k1 signature. homestead enables the low-S malleability check that
// activated at the Homestead fork.
func ValidateSignatureValues(v byte, r, s *big.Int, homestead bool) bool {
	if r.Sign() <= 0 || s.Sign() <= 0 {
		return false
	}
	if r.Cmp(secp256k1N) >= 0 || s.Cmp(secp256k1N) >= 0 {
		return false
	}
	if v != 0 && v != 1 {
		return false
	}
	if homestead && s.Cmp(secp256k1HalfN) > 0 {
		return false
	}
	return true
}

// Ecrecover recovers the 65-byte uncompressed public key that produced sig
// (64 bytes R||S plus a 1-byte recovery id) over hash.
func Ecrecover(hash, sig []byte) ([]byte, error) {
	pub, err := SigToPub(hash, sig)
	if err != nil {
		return nil, err
	}
	return pub.SerializeUncompressed(), nil
}

// SigToPub recovers the public key that produced sig over hash.
func SigToPub(hash, sig []byte) (*secp256k1.PublicKey, error) {
	if len(sig) != 65 {
		return nil, ErrInvalidSignatureLen
	}
	if sig[64] >= 4 {
		return nil, ErrInvalidRecoveryID
	}
	// dcrd's RecoverCompact expects a 65-byte [recid+27 || R || S] buffer.
	compact := make([]byte, 65)
	compact[0] = sig[64] + 27
	copy(compact[1:], sig[:64])
	pub, _, err := ecdsa.RecoverCompact(compact, hash)
	if err != nil {
		return nil, ErrInvalidSignature
	}
	return pub, nil
}

// PubkeyToAddress derives the 20-byte address from an uncompressed
// (0x04||X||Y) public key: the rightmost 20 bytes of Keccak256(X||Y).
func PubkeyToAddress(pub []byte) [20]byte {
	if len(pub) == 65 && pub[0] == 4 {
		pub = pub[1:]
	}
	h := Keccak256(pub)
	var addr [20]byte
	copy(addr[:], h[12:])
	return addr
}
