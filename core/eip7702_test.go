package core

import (
	"testing"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/crypto"
)

// signTestHash produces a valid, low-S secp256k1 recoverable signature over
// hash with a freshly generated key, returning the signature's (v, r, s)
// and the address it recovers to.
func signTestHash(t *testing.T, hash []byte) (v uint8, r, s *uint256.Int, addr types.Address) {
	t.Helper()
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	compact := ecdsa.SignCompact(priv, hash, false)
	v = compact[0] - 27
	r = new(uint256.Int).SetBytes(compact[1:33])
	s = new(uint256.Int).SetBytes(compact[33:65])
	pubAddr := crypto.PubkeyToAddress(priv.PubKey().SerializeUncompressed())
	addr = types.BytesToAddress(pubAddr[:])
	return v, r, s, addr
}

func TestApplyAuthorizationsInstallsDelegation(t *testing.T) {
	db := newTestStateDB(t)
	chainID := uint256.NewInt(1)
	target := types.Address{0xaa}

	// Sign with a throwaway key, then recover the signer address so we know
	// whose state the authorization should mutate.
	auth := &types.SetCodeAuthorization{ChainID: chainID, Address: target, Nonce: 0}
	hash := authorizationSigningHash(auth)
	v, r, s, signer := signTestHash(t, hash)
	auth.V, auth.R, auth.S = v, r, s

	if err := ApplyAuthorizations(db, []types.SetCodeAuthorization{*auth}, chainID); err != nil {
		t.Fatalf("ApplyAuthorizations: %v", err)
	}

	code := db.GetCode(signer)
	resolved, ok := ResolveDelegation(code)
	if !ok {
		t.Fatalf("signer code %x is not a delegation designator", code)
	}
	if resolved != target {
		t.Errorf("delegation target = %x, want %x", resolved, target)
	}
	if got := db.GetNonce(signer); got != 1 {
		t.Errorf("signer nonce after authorization = %d, want 1", got)
	}
}

func TestApplyAuthorizationsWildcardChainID(t *testing.T) {
	db := newTestStateDB(t)
	target := types.Address{0xbb}
	auth := &types.SetCodeAuthorization{ChainID: new(uint256.Int), Address: target, Nonce: 0}
	hash := authorizationSigningHash(auth)
	v, r, s, signer := signTestHash(t, hash)
	auth.V, auth.R, auth.S = v, r, s

	// Chain ID 0 in the authorization means "any chain"; it must apply even
	// though the actual chain ID differs.
	if err := ApplyAuthorizations(db, []types.SetCodeAuthorization{*auth}, uint256.NewInt(999)); err != nil {
		t.Fatalf("ApplyAuthorizations: %v", err)
	}
	if !IsDelegated(db.GetCode(signer)) {
		t.Error("wildcard chain ID authorization was not applied")
	}
}

func TestApplyAuthorizationsChainIDMismatchSkipped(t *testing.T) {
	db := newTestStateDB(t)
	target := types.Address{0xcc}
	auth := &types.SetCodeAuthorization{ChainID: uint256.NewInt(1), Address: target, Nonce: 0}
	hash := authorizationSigningHash(auth)
	v, r, s, signer := signTestHash(t, hash)
	auth.V, auth.R, auth.S = v, r, s

	if err := ApplyAuthorizations(db, []types.SetCodeAuthorization{*auth}, uint256.NewInt(2)); err != nil {
		t.Fatalf("ApplyAuthorizations should not fail the tx: %v", err)
	}
	if IsDelegated(db.GetCode(signer)) {
		t.Error("authorization with mismatched chain ID must be skipped, not applied")
	}
}

func TestApplyAuthorizationsNonceMismatchSkipped(t *testing.T) {
	db := newTestStateDB(t)
	target := types.Address{0xdd}
	auth := &types.SetCodeAuthorization{ChainID: uint256.NewInt(1), Address: target, Nonce: 5}
	hash := authorizationSigningHash(auth)
	v, r, s, signer := signTestHash(t, hash)
	auth.V, auth.R, auth.S = v, r, s
	// signer's actual nonce (0, the default) does not match the authorized nonce (5).

	if err := ApplyAuthorizations(db, []types.SetCodeAuthorization{*auth}, uint256.NewInt(1)); err != nil {
		t.Fatalf("ApplyAuthorizations should not fail the tx: %v", err)
	}
	if IsDelegated(db.GetCode(signer)) {
		t.Error("authorization with mismatched nonce must be skipped, not applied")
	}
}

func TestApplyAuthorizationsInvalidSigSkipped(t *testing.T) {
	db := newTestStateDB(t)
	auth := types.SetCodeAuthorization{
		ChainID: uint256.NewInt(1), Address: types.Address{0xee}, Nonce: 0,
		V: 2, R: uint256.NewInt(1), S: uint256.NewInt(1),
	}
	if err := ApplyAuthorizations(db, []types.SetCodeAuthorization{auth}, uint256.NewInt(1)); err != nil {
		t.Fatalf("ApplyAuthorizations should not fail the tx: %v", err)
	}
}

func TestMakeDelegationCodeAndIsDelegated(t *testing.T) {
	target := types.Address{0x01, 0x02}
	code := makeDelegationCode(target)
	if !IsDelegated(code) {
		t.Fatal("makeDelegationCode output must be recognized by IsDelegated")
	}
	resolved, ok := ResolveDelegation(code)
	if !ok || resolved != target {
		t.Errorf("ResolveDelegation = %x, %v, want %x, true", resolved, ok, target)
	}
}

func TestIsDelegatedRejectsOrdinaryCode(t *testing.T) {
	if IsDelegated([]byte{0x60, 0x00, 0x60, 0x00}) {
		t.Error("ordinary bytecode must not be classified as a delegation designator")
	}
	if IsDelegated(nil) {
		t.Error("nil code must not be classified as a delegation designator")
	}
}
