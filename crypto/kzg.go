package crypto

import (
	"errors"
	"sync"

	ckzg "github.com/crate-crypto/go-kzg-4844"
)

var (
	kzgCtx     *ckzg.Context
	kzgCtxOnce sync.Once
)

func kzgContext() *ckzg.Context {
	kzgCtxOnce.Do(func() {
		ctx, err := ckzg.NewContext4096Insecure1337()
		if err != nil {
			panic("crypto: failed to load KZG trusted setup: " + err.Error())
		}
		kzgCtx = ctx
	})
	return kzgCtx
}

var errKZGVerificationFailed = errors.New("kzg: proof verification failed")

// KZGVersionedHash computes the EIP-4844 "versioned hash" that commits a blob
// transaction to a KZG commitment: 0x01 prefix followed by the last 31 bytes
// of Keccak256(commitment).
func KZGVersionedHash(commitment []byte) [32]byte {
	h := Keccak256(commitment)
	var out [32]byte
	out[0] = 0x01
	copy(out[1:], h[1:])
	return out
}

// KZGVerifyProofBytes verifies a KZG point-evaluation proof as used by the
// POINT_EVALUATION precompile (EIP-4844): 48-byte commitment, 32-byte z,
// 32-byte y, 48-byte proof, all big-endian / BLS12-381-encoded.
func KZGVerifyProofBytes(commitment, z, y, proof []byte) error {
	if len(commitment) != 48 || len(z) != 32 || len(y) != 32 || len(proof) != 48 {
		return errors.New("kzg: malformed proof input lengths")
	}
	var c ckzg.KZGCommitment
	var zz, yy ckzg.Scalar
	var p ckzg.KZGProof
	copy(c[:], commitment)
	copy(zz[:], z)
	copy(yy[:], y)
	copy(p[:], proof)

	if err := kzgContext().VerifyKZGProof(c, zz, yy, p); err != nil {
		return errKZGVerificationFailed
	}
	return nil
}

// KZGBlobToCommitment computes the KZG commitment of a full 4096-element blob,
// used by block builders (b11r) when constructing blob-carrying transactions.
func KZGBlobToCommitment(blob []byte) ([]byte, error) {
	var b ckzg.Blob
	if len(blob) != len(b) {
		return nil, errors.New("kzg: blob has wrong size")
	}
	copy(b[:], blob)
	c, err := kzgContext().BlobToKZGCommitment(b, 0)
	if err != nil {
		return nil, err
	}
	return c[:], nil
}
