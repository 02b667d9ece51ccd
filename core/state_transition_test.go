package core

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/params"
)

// makeSignedLegacyTx builds a pre-EIP-155 legacy transaction signed by a
// freshly generated key, returning the transaction and its sender address.
func makeSignedLegacyTx(t *testing.T, nonce uint64, to *types.Address, value, gasPrice *uint256.Int, gas uint64, data []byte) (*types.Transaction, types.Address) {
	t.Helper()
	unsigned := types.NewTx(&types.LegacyTx{Nonce: nonce, GasPrice: gasPrice, Gas: gas, To: to, Value: value, Data: data})
	hash := unsigned.SigningHash(nil)
	v, r, s, addr := signTestHash(t, hash.Bytes())

	vu := uint256.NewInt(uint64(v) + 27)
	signed := types.NewTx(&types.LegacyTx{Nonce: nonce, GasPrice: gasPrice, Gas: gas, To: to, Value: value, Data: data, V: vu, R: r, S: s})
	return signed, addr
}

func legacyChainConfig() *params.ChainConfig {
	return &params.ChainConfig{ChainID: nil}
}

func TestTransactionToMessageRecoversSender(t *testing.T) {
	to := types.Address{0x02}
	tx, wantAddr := makeSignedLegacyTx(t, 0, &to, uint256.NewInt(100), uint256.NewInt(1), 21000, nil)

	msg, err := TransactionToMessage(tx, types.NewSigner(nil))
	if err != nil {
		t.Fatalf("TransactionToMessage: %v", err)
	}
	if msg.From != wantAddr {
		t.Errorf("recovered sender = %x, want %x", msg.From, wantAddr)
	}
	if msg.Nonce != 0 || msg.GasLimit != 21000 {
		t.Errorf("message fields = nonce %d gas %d, want 0 21000", msg.Nonce, msg.GasLimit)
	}
}

func TestTransactionToMessageInvalidSignature(t *testing.T) {
	to := types.Address{0x02}
	tx := types.NewTx(&types.LegacyTx{Nonce: 0, GasPrice: uint256.NewInt(1), Gas: 21000, To: &to, Value: uint256.NewInt(0)})
	if _, err := TransactionToMessage(tx, types.NewSigner(nil)); err == nil {
		t.Error("TransactionToMessage on an unsigned transaction should fail")
	}
}

func TestValidateTransactionSuccess(t *testing.T) {
	db := newTestStateDB(t)
	to := types.Address{0x02}
	tx, from := makeSignedLegacyTx(t, 0, &to, uint256.NewInt(0), uint256.NewInt(1), 21000, nil)
	db.CreateAccount(from)

	msg, err := TransactionToMessage(tx, types.NewSigner(nil))
	if err != nil {
		t.Fatal(err)
	}
	header := &types.Header{GasLimit: 10_000_000}
	if err := ValidateTransaction(msg, db, header, params.Rules{}); err != nil {
		t.Errorf("ValidateTransaction: %v", err)
	}
}

func TestValidateTransactionNonceTooLow(t *testing.T) {
	db := newTestStateDB(t)
	to := types.Address{0x02}
	tx, from := makeSignedLegacyTx(t, 0, &to, uint256.NewInt(0), uint256.NewInt(1), 21000, nil)
	db.CreateAccount(from)
	db.SetNonce(from, 5)

	msg, _ := TransactionToMessage(tx, types.NewSigner(nil))
	header := &types.Header{GasLimit: 10_000_000}
	if err := ValidateTransaction(msg, db, header, params.Rules{}); err != ErrNonceTooLow && !errors.Is(err, ErrNonceTooLow) {
		t.Errorf("ValidateTransaction nonce mismatch = %v, want ErrNonceTooLow", err)
	}
}

func TestValidateTransactionGasLimitExceedsBlock(t *testing.T) {
	db := newTestStateDB(t)
	to := types.Address{0x02}
	tx, from := makeSignedLegacyTx(t, 0, &to, uint256.NewInt(0), uint256.NewInt(1), 21000, nil)
	db.CreateAccount(from)

	msg, _ := TransactionToMessage(tx, types.NewSigner(nil))
	header := &types.Header{GasLimit: 10000}
	if err := ValidateTransaction(msg, db, header, params.Rules{}); !errors.Is(err, ErrGasLimitExceedsBlock) {
		t.Errorf("ValidateTransaction over-limit tx = %v, want ErrGasLimitExceedsBlock", err)
	}
}

func TestValidateTransactionUnsupportedTxType(t *testing.T) {
	db := newTestStateDB(t)
	to := types.Address{0x02}
	tx, from := makeSignedLegacyTx(t, 0, &to, uint256.NewInt(0), uint256.NewInt(1), 21000, nil)
	db.CreateAccount(from)

	msg, _ := TransactionToMessage(tx, types.NewSigner(nil))
	msg.TxType = types.DynamicFeeTxType
	header := &types.Header{GasLimit: 10_000_000}
	if err := ValidateTransaction(msg, db, header, params.Rules{IsLondon: false}); err != ErrUnsupportedTxType {
		t.Errorf("ValidateTransaction pre-London dynamic fee tx = %v, want ErrUnsupportedTxType", err)
	}
}

func TestValidateTransactionSenderNotEOA(t *testing.T) {
	db := newTestStateDB(t)
	to := types.Address{0x02}
	tx, from := makeSignedLegacyTx(t, 0, &to, uint256.NewInt(0), uint256.NewInt(1), 21000, nil)
	db.CreateAccount(from)
	db.SetCode(from, []byte{0x60, 0x00})

	msg, _ := TransactionToMessage(tx, types.NewSigner(nil))
	header := &types.Header{GasLimit: 10_000_000}
	if err := ValidateTransaction(msg, db, header, params.Rules{}); err != ErrSenderNoEOA {
		t.Errorf("ValidateTransaction from a contract account = %v, want ErrSenderNoEOA", err)
	}
}

func TestValidateTransactionDelegatedSenderIsEOA(t *testing.T) {
	db := newTestStateDB(t)
	to := types.Address{0x02}
	tx, from := makeSignedLegacyTx(t, 0, &to, uint256.NewInt(0), uint256.NewInt(1), 21000, nil)
	db.CreateAccount(from)
	db.SetCode(from, makeDelegationCode(types.Address{0x09}))

	msg, _ := TransactionToMessage(tx, types.NewSigner(nil))
	header := &types.Header{GasLimit: 10_000_000}
	if err := ValidateTransaction(msg, db, header, params.Rules{}); err != nil {
		t.Errorf("ValidateTransaction from an EIP-7702-delegated account should pass: %v", err)
	}
}

func TestEffectiveGasPriceLegacy(t *testing.T) {
	msg := &Message{GasPrice: uint256.NewInt(7)}
	got := effectiveGasPrice(msg, nil)
	if got.Uint64() != 7 {
		t.Errorf("effectiveGasPrice(legacy) = %d, want 7", got.Uint64())
	}
}

func TestEffectiveGasPriceEIP1559(t *testing.T) {
	base := uint64(100)
	msg := &Message{GasFeeCap: uint256.NewInt(150), GasTipCap: uint256.NewInt(20)}
	got := effectiveGasPrice(msg, &base)
	if got.Uint64() != 120 {
		t.Errorf("effectiveGasPrice(base+tip) = %d, want 120", got.Uint64())
	}
}

func TestEffectiveGasPriceCappedByFeeCap(t *testing.T) {
	base := uint64(100)
	msg := &Message{GasFeeCap: uint256.NewInt(110), GasTipCap: uint256.NewInt(50)}
	got := effectiveGasPrice(msg, &base)
	if got.Uint64() != 110 {
		t.Errorf("effectiveGasPrice(tip over cap) = %d, want capped at 110", got.Uint64())
	}
}

func TestApplyTransactionSimpleTransfer(t *testing.T) {
	db := newTestStateDB(t)
	to := types.Address{0x02}
	tx, from := makeSignedLegacyTx(t, 0, &to, uint256.NewInt(1000), uint256.NewInt(1), 21000, nil)
	db.CreateAccount(from)
	db.AddBalance(from, uint256.NewInt(1_000_000))

	header := &types.Header{GasLimit: 10_000_000, Coinbase: types.Address{0xc0}}
	gp := new(GasPool).AddGas(header.GasLimit)
	cfg := legacyChainConfig()

	receipt, err := ApplyTransaction(cfg, nil, db, header, tx, gp)
	if err != nil {
		t.Fatalf("ApplyTransaction: %v", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		t.Errorf("receipt status = %d, want success", receipt.Status)
	}
	if got := db.GetBalance(to).Uint64(); got != 1000 {
		t.Errorf("recipient balance = %d, want 1000", got)
	}
	if gp.Gas() == header.GasLimit {
		t.Error("ApplyTransaction must have deducted gas from the pool")
	}
}

func TestApplyTransactionInsufficientBalance(t *testing.T) {
	db := newTestStateDB(t)
	to := types.Address{0x02}
	tx, from := makeSignedLegacyTx(t, 0, &to, uint256.NewInt(1_000_000), uint256.NewInt(1), 21000, nil)
	db.CreateAccount(from)
	// No balance funded: the transfer must fail and leave state untouched.

	header := &types.Header{GasLimit: 10_000_000}
	gp := new(GasPool).AddGas(header.GasLimit)
	cfg := legacyChainConfig()

	if _, err := ApplyTransaction(cfg, nil, db, header, tx, gp); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("ApplyTransaction without balance = %v, want ErrInsufficientBalance", err)
	}
	if gp.Gas() != header.GasLimit {
		t.Error("a transaction that fails execution must still refund its gas to the pool")
	}
}
