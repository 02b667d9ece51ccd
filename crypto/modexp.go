package crypto

import "math/big"

// ModExp computes base^exponent mod modulus for the MODEXP precompile
// (address 0x05). Stdlib math/big: big.Int.Exp already performs modular
// exponentiation directly and go-ethereum's own MODEXP precompile is
// likewise math/big-based; no pack library wraps arbitrary-precision
// modexp.
func ModExp(base, exponent, modulus *big.Int) []byte {
	if modulus.Sign() == 0 {
		return []byte{}
	}
	return new(big.Int).Exp(base, exponent, modulus).Bytes()
}
