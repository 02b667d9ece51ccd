package core

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/core/state"
	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/crypto"
	"github.com/execlayer/evmcore/rlp"
)

const (
	// delegationPrefixLen is the length of the EIP-7702 delegation
	// designator prefix (0xef0100).
	delegationPrefixLen = 3

	// delegationCodeLen is a full delegation designator: the 3-byte prefix
	// plus a 20-byte target address.
	delegationCodeLen = delegationPrefixLen + types.AddressLength

	// authMagic prefixes the EIP-7702 authorization signing payload:
	// keccak256(MAGIC || rlp([chain_id, address, nonce])).
	authMagic = 0x05
)

var delegationPrefixBytes = [delegationPrefixLen]byte{0xef, 0x01, 0x00}

var (
	ErrAuthChainID    = errors.New("core: authorization chain ID mismatch")
	ErrAuthNonce      = errors.New("core: authorization nonce mismatch")
	ErrAuthSignature  = errors.New("core: authorization signature recovery failed")
	ErrAuthInvalidSig = errors.New("core: authorization signature values invalid")
)

// authTuple is the RLP-encoded payload an EIP-7702 authorization signs over.
type authTuple struct {
	ChainID *uint256.Int
	Address types.Address
	Nonce   uint64
}

// ApplyAuthorizations processes the authorization list of an EIP-7702
// SetCodeTx: each entry is
// independently verified and, on success, installs a delegation designator
// on the authorizing account and bumps its nonce. Per EIP-7702, an invalid
// authorization is skipped rather than failing the transaction.
func ApplyAuthorizations(statedb *state.StateDB, authList []types.SetCodeAuthorization, chainID *uint256.Int) error {
	for i := range authList {
		applyOneAuthorization(statedb, &authList[i], chainID)
	}
	return nil
}

func applyOneAuthorization(statedb *state.StateDB, auth *types.SetCodeAuthorization, chainID *uint256.Int) error {
	if auth.ChainID != nil && !auth.ChainID.IsZero() {
		if chainID == nil || !auth.ChainID.Eq(chainID) {
			return ErrAuthChainID
		}
	}

	if auth.V > 1 {
		return ErrAuthInvalidSig
	}
	r, s := u256ToBig(auth.R), u256ToBig(auth.S)
	if !crypto.ValidateSignatureValues(auth.V, r, s, true) {
		return ErrAuthInvalidSig
	}

	authHash := authorizationSigningHash(auth)

	sig := make([]byte, 65)
	rBytes, sBytes := auth.R.Bytes32(), auth.S.Bytes32()
	copy(sig[:32], rBytes[:])
	copy(sig[32:64], sBytes[:])
	sig[64] = auth.V

	pub, err := crypto.Ecrecover(authHash, sig)
	if err != nil {
		return ErrAuthSignature
	}
	pubAddr := crypto.PubkeyToAddress(pub)
	signer := types.BytesToAddress(pubAddr[:])

	currentNonce := statedb.GetNonce(signer)
	if auth.Nonce != currentNonce {
		return ErrAuthNonce
	}

	statedb.SetCode(signer, makeDelegationCode(auth.Address))
	statedb.SetNonce(signer, currentNonce+1)
	return nil
}

// authorizationSigningHash computes keccak256(MAGIC || rlp([chain_id,
// address, nonce])), the message an EIP-7702 authorization signs.
func authorizationSigningHash(auth *types.SetCodeAuthorization) []byte {
	chainID := auth.ChainID
	if chainID == nil {
		chainID = new(uint256.Int)
	}
	body, err := rlp.EncodeToBytes(authTuple{ChainID: chainID, Address: auth.Address, Nonce: auth.Nonce})
	if err != nil {
		// Every field is fixed-shape and always encodable.
		panic(err)
	}
	msg := make([]byte, 0, 1+len(body))
	msg = append(msg, authMagic)
	msg = append(msg, body...)
	return crypto.Keccak256(msg)
}

// makeDelegationCode builds the delegation designator 0xef0100 || addr.
func makeDelegationCode(addr types.Address) []byte {
	code := make([]byte, delegationCodeLen)
	copy(code, delegationPrefixBytes[:])
	copy(code[delegationPrefixLen:], addr[:])
	return code
}

// IsDelegated reports whether code carries the EIP-7702 delegation
// designator prefix.
func IsDelegated(code []byte) bool {
	return len(code) == delegationCodeLen && code[0] == delegationPrefixBytes[0] &&
		code[1] == delegationPrefixBytes[1] && code[2] == delegationPrefixBytes[2]
}

// ResolveDelegation extracts the target address from delegation code,
// reporting false if code is not a well-formed delegation designator.
func ResolveDelegation(code []byte) (types.Address, bool) {
	if !IsDelegated(code) {
		return types.Address{}, false
	}
	var addr types.Address
	copy(addr[:], code[delegationPrefixLen:])
	return addr, true
}

func u256ToBig(u *uint256.Int) *big.Int {
	if u == nil {
		return new(big.Int)
	}
	return u.ToBig()
}
