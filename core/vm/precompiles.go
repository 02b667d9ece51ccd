package vm

import (
	"errors"
	"math/big"

	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/crypto"
	"github.com/execlayer/evmcore/params"
)

// PrecompiledContract is a native contract living at a fixed low address;
// RequiredGas prices input before Run ever executes, matching the
// interpreter's charge-then-execute discipline.
type PrecompiledContract interface {
	RequiredGas(input []byte) uint64
	Run(input []byte) ([]byte, error)
}

// ActivePrecompiles returns the precompile roster for the given fork rules.
func ActivePrecompiles(r params.Rules) map[types.Address]PrecompiledContract {
	switch {
	case r.IsPrague:
		return precompilesPrague
	case r.IsCancun:
		return precompilesCancun
	case r.IsBerlin:
		return precompilesBerlin
	case r.IsIstanbul:
		return precompilesIstanbul
	case r.IsByzantium:
		return precompilesByzantium
	default:
		return precompilesFrontier
	}
}

var precompilesFrontier = map[types.Address]PrecompiledContract{
	addr(params.EcrecoverAddr): &ecrecoverPrecompile{},
	addr(params.Sha256Addr):    &sha256Precompile{},
	addr(params.Ripemd160Addr): &ripemd160Precompile{},
	addr(params.IdentityAddr):  &identityPrecompile{},
}

var precompilesByzantium = withAll(precompilesFrontier, map[types.Address]PrecompiledContract{
	addr(params.ModExpAddr):         &modExpPrecompile{eip2565: false},
	addr(params.Bn254AddAddr):       &bn254AddPrecompile{eip1108: false},
	addr(params.Bn254ScalarMulAddr): &bn254MulPrecompile{eip1108: false},
	addr(params.Bn254PairingAddr):   &bn254PairingPrecompile{eip1108: false},
})

var precompilesIstanbul = withAll(precompilesFrontier, map[types.Address]PrecompiledContract{
	addr(params.ModExpAddr):         &modExpPrecompile{eip2565: false},
	addr(params.Bn254AddAddr):       &bn254AddPrecompile{eip1108: true},
	addr(params.Bn254ScalarMulAddr): &bn254MulPrecompile{eip1108: true},
	addr(params.Bn254PairingAddr):   &bn254PairingPrecompile{eip1108: true},
	addr(params.Blake2FAddr):        &blake2FPrecompile{},
})

var precompilesBerlin = withAll(precompilesFrontier, map[types.Address]PrecompiledContract{
	addr(params.ModExpAddr):         &modExpPrecompile{eip2565: true},
	addr(params.Bn254AddAddr):       &bn254AddPrecompile{eip1108: true},
	addr(params.Bn254ScalarMulAddr): &bn254MulPrecompile{eip1108: true},
	addr(params.Bn254PairingAddr):   &bn254PairingPrecompile{eip1108: true},
	addr(params.Blake2FAddr):        &blake2FPrecompile{},
})

var precompilesCancun = withAll(precompilesBerlin, map[types.Address]PrecompiledContract{
	addr(params.KZGPointEvalAddr): &kzgPointEvalPrecompile{},
})

var precompilesPrague = withAll(precompilesCancun, map[types.Address]PrecompiledContract{
	addr(params.Bls12381G1AddAddr):      &blsG1AddPrecompile{},
	addr(params.Bls12381G1MSMAddr):      &blsG1MSMPrecompile{},
	addr(params.Bls12381G2AddAddr):      &blsG2AddPrecompile{},
	addr(params.Bls12381G2MSMAddr):      &blsG2MSMPrecompile{},
	addr(params.Bls12381PairingAddr):    &blsPairingPrecompile{},
	addr(params.Bls12381MapFpToG1Addr):  &blsMapFpToG1Precompile{},
	addr(params.Bls12381MapFp2ToG2Addr): &blsMapFp2ToG2Precompile{},
	addr(params.P256VerifyAddr):         &p256VerifyPrecompile{},
})

func addr(a int) types.Address {
	return types.BytesToAddress(big.NewInt(int64(a)).Bytes())
}

func withAll(base map[types.Address]PrecompiledContract, extra map[types.Address]PrecompiledContract) map[types.Address]PrecompiledContract {
	m := make(map[types.Address]PrecompiledContract, len(base)+len(extra))
	for k, v := range base {
		m[k] = v
	}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

func padRight(b []byte, n int) []byte {
	if len(b) >= n {
		return b[:n]
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// --- ECRECOVER (0x01) ---

type ecrecoverPrecompile struct{}

func (c *ecrecoverPrecompile) RequiredGas(input []byte) uint64 { return 3000 }

func (c *ecrecoverPrecompile) Run(input []byte) ([]byte, error) {
	input = padRight(input, 128)
	hash := input[0:32]
	v := input[63]
	if v != 27 && v != 28 {
		return nil, nil
	}
	r := new(big.Int).SetBytes(input[64:96])
	s := new(big.Int).SetBytes(input[96:128])
	if !crypto.ValidateSignatureValues(v-27, r, s, true) {
		return nil, nil
	}
	sig := make([]byte, 65)
	copy(sig[0:32], input[64:96])
	copy(sig[32:64], input[96:128])
	sig[64] = v - 27
	pub, err := crypto.Ecrecover(hash, sig)
	if err != nil {
		return nil, nil
	}
	a := crypto.PubkeyToAddress(pub)
	return padRight(a[:], 32), nil
}

// --- SHA256 (0x02) ---

type sha256Precompile struct{}

func (c *sha256Precompile) RequiredGas(input []byte) uint64 {
	return 60 + 12*wordsOf(len(input))
}

func (c *sha256Precompile) Run(input []byte) ([]byte, error) { return crypto.SHA256(input), nil }

// --- RIPEMD160 (0x03) ---

type ripemd160Precompile struct{}

func (c *ripemd160Precompile) RequiredGas(input []byte) uint64 {
	return 600 + 120*wordsOf(len(input))
}

func (c *ripemd160Precompile) Run(input []byte) ([]byte, error) {
	return padRight(crypto.RIPEMD160(input), 32), nil
}

// --- IDENTITY (0x04) ---

type identityPrecompile struct{}

func (c *identityPrecompile) RequiredGas(input []byte) uint64 {
	return 15 + 3*wordsOf(len(input))
}

func (c *identityPrecompile) Run(input []byte) ([]byte, error) {
	out := make([]byte, len(input))
	copy(out, input)
	return out, nil
}

func wordsOf(n int) uint64 { return uint64((n + 31) / 32) }

// --- MODEXP (0x05) ---

type modExpPrecompile struct{ eip2565 bool }

func (c *modExpPrecompile) RequiredGas(input []byte) uint64 {
	input = padRight(input, 96)
	baseLen := new(big.Int).SetBytes(input[0:32]).Uint64()
	expLen := new(big.Int).SetBytes(input[32:64]).Uint64()
	modLen := new(big.Int).SetBytes(input[64:96]).Uint64()

	maxLen := baseLen
	if modLen > maxLen {
		maxLen = modLen
	}
	multComplexity := modExpComplexity(maxLen, c.eip2565)

	expStart := 96 + baseLen
	var expHead *big.Int
	if uint64(len(input)) > expStart {
		head := input[expStart:]
		if uint64(len(head)) > 32 {
			head = head[:32]
		}
		if uint64(len(head)) > expLen {
			head = head[:expLen]
		}
		expHead = new(big.Int).SetBytes(head)
	} else {
		expHead = new(big.Int)
	}
	iterCount := adjustedExpLen(expLen, expHead)

	if c.eip2565 {
		gas := multComplexity * iterCount / 3
		if gas < 200 {
			return 200
		}
		return gas
	}
	return multComplexity * iterCount / 20
}

// modExpComplexity implements EIP-198's original multiplication-complexity
// formula pre-Berlin, and EIP-2565's simplified words^2 formula from Berlin
// on.
func modExpComplexity(maxLen uint64, eip2565 bool) uint64 {
	words := (maxLen + 7) / 8
	if eip2565 {
		return words * words
	}
	switch {
	case maxLen <= 64:
		return maxLen * maxLen
	case maxLen <= 1024:
		return maxLen*maxLen/4 + 96*maxLen - 3072
	default:
		return maxLen*maxLen/16 + 480*maxLen - 199680
	}
}

func adjustedExpLen(expLen uint64, expHead *big.Int) uint64 {
	var it uint64
	bitLen := expHead.BitLen()
	if expLen <= 32 {
		if bitLen == 0 {
			return 0
		}
		return uint64(bitLen - 1)
	}
	if bitLen > 0 {
		it = uint64(bitLen - 1)
	}
	return 8*(expLen-32) + it
}

func (c *modExpPrecompile) Run(input []byte) ([]byte, error) {
	input = padRight(input, 96)
	baseLen := new(big.Int).SetBytes(input[0:32]).Uint64()
	expLen := new(big.Int).SetBytes(input[32:64]).Uint64()
	modLen := new(big.Int).SetBytes(input[64:96]).Uint64()

	body := input[96:]
	base := bigFromSlice(body, 0, baseLen)
	exp := bigFromSlice(body, baseLen, expLen)
	mod := bigFromSlice(body, baseLen+expLen, modLen)

	out := crypto.ModExp(base, exp, mod)
	return padRight(leftPadBig(out, int(modLen)), int(modLen)), nil
}

func bigFromSlice(b []byte, offset, length uint64) *big.Int {
	end := offset + length
	if offset > uint64(len(b)) {
		return new(big.Int)
	}
	if end > uint64(len(b)) {
		end = uint64(len(b))
	}
	return new(big.Int).SetBytes(b[offset:end])
}

func leftPadBig(b []byte, n int) []byte {
	if len(b) >= n {
		return b[len(b)-n:]
	}
	out := make([]byte, n)
	copy(out[n-len(b):], b)
	return out
}

// --- BN254 (0x06-0x08) ---

type bn254AddPrecompile struct{ eip1108 bool }

func (c *bn254AddPrecompile) RequiredGas(input []byte) uint64 {
	if c.eip1108 {
		return 150
	}
	return 500
}

func (c *bn254AddPrecompile) Run(input []byte) ([]byte, error) { return crypto.BN254Add(input) }

type bn254MulPrecompile struct{ eip1108 bool }

func (c *bn254MulPrecompile) RequiredGas(input []byte) uint64 {
	if c.eip1108 {
		return 6000
	}
	return 40000
}

func (c *bn254MulPrecompile) Run(input []byte) ([]byte, error) { return crypto.BN254ScalarMul(input) }

type bn254PairingPrecompile struct{ eip1108 bool }

func (c *bn254PairingPrecompile) RequiredGas(input []byte) uint64 {
	k := uint64(len(input) / 192)
	if c.eip1108 {
		return 45000 + k*34000
	}
	return 100000 + k*80000
}

func (c *bn254PairingPrecompile) Run(input []byte) ([]byte, error) {
	ok, err := crypto.BN254Pairing(input)
	if err != nil {
		return nil, err
	}
	return leftPadBig(boolWord(ok), 32), nil
}

func boolWord(ok bool) []byte {
	if ok {
		return []byte{1}
	}
	return []byte{0}
}

// --- BLAKE2F (0x09) ---

type blake2FPrecompile struct{}

var errBlake2FInvalidInputLength = errors.New("blake2f: invalid input length, expect 213 bytes")
var errBlake2FInvalidFinalFlag = errors.New("blake2f: invalid final flag, expect 0 or 1")

func (c *blake2FPrecompile) RequiredGas(input []byte) uint64 {
	if len(input) != 213 {
		return 0
	}
	return uint64(beUint32(input[0:4]))
}

func (c *blake2FPrecompile) Run(input []byte) ([]byte, error) {
	if len(input) != 213 {
		return nil, errBlake2FInvalidInputLength
	}
	if input[212] != 0 && input[212] != 1 {
		return nil, errBlake2FInvalidFinalFlag
	}
	rounds := beUint32(input[0:4])
	var h [8]uint64
	for i := 0; i < 8; i++ {
		h[i] = leUint64(input[4+i*8:])
	}
	var m [16]uint64
	for i := 0; i < 16; i++ {
		m[i] = leUint64(input[68+i*8:])
	}
	t := [2]uint64{leUint64(input[196:204]), leUint64(input[204:212])}
	out := crypto.Blake2FCompress(rounds, h, m, t, input[212] == 1)
	result := make([]byte, 64)
	for i, w := range out {
		putLeUint64(result[i*8:], w)
	}
	return result, nil
}

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func leUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}

func putLeUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// --- KZG point evaluation (0x0a, EIP-4844) ---

type kzgPointEvalPrecompile struct{}

func (c *kzgPointEvalPrecompile) RequiredGas(input []byte) uint64 { return 50000 }

func (c *kzgPointEvalPrecompile) Run(input []byte) ([]byte, error) {
	if len(input) != 192 {
		return nil, errors.New("kzg point evaluation: invalid input length")
	}
	versionedHash := input[0:32]
	z := input[32:64]
	y := input[64:96]
	commitment := input[96:144]
	proof := input[144:192]

	got := crypto.KZGVersionedHash(commitment)
	if !equalBytes(got[:], versionedHash) {
		return nil, ErrKZGProofInvalid
	}
	if err := crypto.KZGVerifyProofBytes(commitment, z, y, proof); err != nil {
		return nil, ErrKZGProofInvalid
	}
	out := make([]byte, 64)
	copy(out[0:32], fieldElementsPerBlobBytes())
	copy(out[32:64], blsModulusBytes())
	return out, nil
}

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func fieldElementsPerBlobBytes() []byte {
	return leftPadBig(big.NewInt(params.BlobTxFieldElementsPerBlob).Bytes(), 32)
}

var blsModulusValue, _ = new(big.Int).SetString("52435875175126190479447740508185965837690552500527637822603658699938581184513", 10)

func blsModulusBytes() []byte { return leftPadBig(blsModulusValue.Bytes(), 32) }

// --- BLS12-381 (0x0b-0x11, EIP-2537) ---

type blsG1AddPrecompile struct{}

func (c *blsG1AddPrecompile) RequiredGas(input []byte) uint64 { return 375 }
func (c *blsG1AddPrecompile) Run(input []byte) ([]byte, error) {
	return crypto.BLS12381G1Add(input)
}

type blsG1MSMPrecompile struct{}

func (c *blsG1MSMPrecompile) RequiredGas(input []byte) uint64 {
	k := uint64(len(input) / 160)
	return k * 12000 / blsMSMDiscount(k)
}
func (c *blsG1MSMPrecompile) Run(input []byte) ([]byte, error) {
	return crypto.BLS12381G1MultiExp(input)
}

type blsG2AddPrecompile struct{}

func (c *blsG2AddPrecompile) RequiredGas(input []byte) uint64 { return 600 }
func (c *blsG2AddPrecompile) Run(input []byte) ([]byte, error) {
	return crypto.BLS12381G2Add(input)
}

type blsG2MSMPrecompile struct{}

func (c *blsG2MSMPrecompile) RequiredGas(input []byte) uint64 {
	k := uint64(len(input) / 288)
	return k * 22500 / blsMSMDiscount(k)
}
func (c *blsG2MSMPrecompile) Run(input []byte) ([]byte, error) {
	return crypto.BLS12381G2MultiExp(input)
}

// blsMSMDiscount returns the divisor the MSM RequiredGas functions apply to
// k times the per-pair cost: 1 (no discount) for k <= 128 and 17 for
// k > 128. It does not reproduce EIP-2537's per-k discount table.
func blsMSMDiscount(k uint64) uint64 {
	if k == 0 {
		return 1
	}
	if k > 128 {
		return 17 // RequiredGas divides by this, a 17x reduction
	}
	return 1
}

type blsPairingPrecompile struct{}

func (c *blsPairingPrecompile) RequiredGas(input []byte) uint64 {
	k := uint64(len(input) / 384)
	return 32600*k + 37700
}
func (c *blsPairingPrecompile) Run(input []byte) ([]byte, error) {
	ok, err := crypto.BLS12381Pairing(input)
	if err != nil {
		return nil, err
	}
	return padRight(boolWord(ok), 32), nil
}

type blsMapFpToG1Precompile struct{}

func (c *blsMapFpToG1Precompile) RequiredGas(input []byte) uint64 { return 5500 }
func (c *blsMapFpToG1Precompile) Run(input []byte) ([]byte, error) {
	return crypto.BLS12381MapFpToG1(input)
}

type blsMapFp2ToG2Precompile struct{}

func (c *blsMapFp2ToG2Precompile) RequiredGas(input []byte) uint64 { return 23800 }
func (c *blsMapFp2ToG2Precompile) Run(input []byte) ([]byte, error) {
	return crypto.BLS12381MapFp2ToG2(input)
}

// --- P256VERIFY (0x100, EIP-7212) ---

type p256VerifyPrecompile struct{}

func (c *p256VerifyPrecompile) RequiredGas(input []byte) uint64 { return 3450 }

func (c *p256VerifyPrecompile) Run(input []byte) ([]byte, error) {
	if len(input) != 160 {
		return nil, nil
	}
	hash, r, s, x, y := input[0:32], input[32:64], input[64:96], input[96:128], input[128:160]
	if crypto.P256Verify(hash, r, s, x, y) {
		return padRight([]byte{1}, 32), nil
	}
	return nil, nil
}
