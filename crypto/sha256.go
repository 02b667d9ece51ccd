package crypto

import "crypto/sha256"

// SHA256 computes SHA-256(data) for the SHA256 precompile (address 0x02).
// Stdlib crypto/sha256: SHA-256 is a fixed NIST primitive with no domain
// twist the way the elliptic-curve precompiles have, so the stdlib
// implementation is the natural fit here rather than a third-party one.
func SHA256(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:]
}
