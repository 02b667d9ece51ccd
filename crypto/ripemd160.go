package crypto

import "golang.org/x/crypto/ripemd160" //lint:ignore SA1019 required for the RIPEMD160 precompile

// RIPEMD160 computes RIPEMD-160(data), left-padded to 32 bytes the way the
// RIPEMD160 precompile (address 0x03) returns its output.
func RIPEMD160(data []byte) []byte {
	h := ripemd160.New()
	h.Write(data)
	sum := h.Sum(nil)
	out := make([]byte, 32)
	copy(out[32-len(sum):], sum)
	return out
}
