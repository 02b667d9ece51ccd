package core

import (
	"testing"

	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/params"
)

func TestIntrinsicGasSimpleTransfer(t *testing.T) {
	gas, err := IntrinsicGas(nil, nil, nil, false, params.Rules{})
	if err != nil {
		t.Fatal(err)
	}
	if gas != params.TxGas {
		t.Errorf("IntrinsicGas(nil transfer) = %d, want %d", gas, params.TxGas)
	}
}

func TestIntrinsicGasContractCreation(t *testing.T) {
	gas, err := IntrinsicGas(nil, nil, nil, true, params.Rules{})
	if err != nil {
		t.Fatal(err)
	}
	if gas != params.TxGasContractCreation {
		t.Errorf("IntrinsicGas(create) = %d, want %d", gas, params.TxGasContractCreation)
	}
}

func TestIntrinsicGasCalldataPreIstanbul(t *testing.T) {
	data := []byte{0x00, 0x01, 0x02, 0x00}
	gas, err := IntrinsicGas(data, nil, nil, false, params.Rules{})
	if err != nil {
		t.Fatal(err)
	}
	want := params.TxGas + 2*params.TxDataNonZeroGasFrontier + 2*params.TxDataZeroGas
	if gas != want {
		t.Errorf("IntrinsicGas(calldata, pre-Istanbul) = %d, want %d", gas, want)
	}
}

func TestIntrinsicGasCalldataIstanbulRepricing(t *testing.T) {
	data := []byte{0x00, 0x01, 0x02, 0x00}
	gas, err := IntrinsicGas(data, nil, nil, false, params.Rules{IsIstanbul: true})
	if err != nil {
		t.Fatal(err)
	}
	want := params.TxGas + 2*params.TxDataNonZeroGasEIP2028 + 2*params.TxDataZeroGas
	if gas != want {
		t.Errorf("IntrinsicGas(calldata, Istanbul) = %d, want %d", gas, want)
	}
}

func TestIntrinsicGasAccessListBerlin(t *testing.T) {
	al := types.AccessList{
		{Address: types.Address{1}, StorageKeys: []types.Hash{{1}, {2}}},
	}
	gas, err := IntrinsicGas(nil, al, nil, false, params.Rules{IsBerlin: true})
	if err != nil {
		t.Fatal(err)
	}
	want := params.TxGas + params.TxAccessListAddressGas + 2*params.TxAccessListStorageKeyGas
	if gas != want {
		t.Errorf("IntrinsicGas(access list) = %d, want %d", gas, want)
	}
	// Pre-Berlin, the same access list costs nothing extra.
	gas, err = IntrinsicGas(nil, al, nil, false, params.Rules{})
	if err != nil {
		t.Fatal(err)
	}
	if gas != params.TxGas {
		t.Errorf("IntrinsicGas(access list, pre-Berlin) = %d, want %d", gas, params.TxGas)
	}
}

func TestIntrinsicGasInitCodeWordsShanghai(t *testing.T) {
	data := make([]byte, 33) // 2 words, rounded up
	gas, err := IntrinsicGas(data, nil, nil, true, params.Rules{IsShanghai: true})
	if err != nil {
		t.Fatal(err)
	}
	want := params.TxGasContractCreation + 33*params.TxDataZeroGas + 2*params.InitCodeWordGas
	if gas != want {
		t.Errorf("IntrinsicGas(init code, Shanghai) = %d, want %d", gas, want)
	}
}

func TestIntrinsicGasAuthListPrague(t *testing.T) {
	authList := make([]types.SetCodeAuthorization, 3)
	gas, err := IntrinsicGas(nil, nil, authList, false, params.Rules{IsPrague: true})
	if err != nil {
		t.Fatal(err)
	}
	want := params.TxGas + 3*params.TxAuthTupleGas
	if gas != want {
		t.Errorf("IntrinsicGas(auth list) = %d, want %d", gas, want)
	}
}

func TestAddGasOverflow(t *testing.T) {
	_, overflow := addGas(^uint64(0), 1)
	if !overflow {
		t.Error("addGas(maxUint64, 1) should overflow")
	}
	sum, overflow := addGas(10, 20)
	if overflow || sum != 30 {
		t.Errorf("addGas(10, 20) = %d, overflow %v, want 30, false", sum, overflow)
	}
}
