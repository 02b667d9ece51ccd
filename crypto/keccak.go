// Package crypto implements the cryptographic primitives the execution layer
// depends on: Keccak-256, secp256k1 signature recovery, and the elliptic-curve
// and pairing operations backing the precompiled contracts.
package crypto

import (
	"golang.org/x/crypto/sha3"
)

// Keccak256 returns the Keccak-256 digest of the concatenation of data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Hasher returns a reusable hash.Hash for streaming Keccak-256,
// avoiding repeated allocation in hot paths like trie node hashing.
func Keccak256Hasher() *KeccakState {
	return &KeccakState{sha3.NewLegacyKeccak256()}
}

// KeccakState wraps a running Keccak-256 sponge.
type KeccakState struct {
	hash interface {
		Write([]byte) (int, error)
		Sum([]byte) []byte
		Reset()
	}
}

func (k *KeccakState) Write(p []byte) (int, error) { return k.hash.Write(p) }
func (k *KeccakState) Sum(b []byte) []byte         { return k.hash.Sum(b) }
func (k *KeccakState) Reset()                      { k.hash.Reset() }
