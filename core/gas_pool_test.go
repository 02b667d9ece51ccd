package core

import "testing"

func TestGasPoolAddSub(t *testing.T) {
	gp := new(GasPool).AddGas(100000)
	if gp.Gas() != 100000 {
		t.Fatalf("Gas() = %d, want 100000", gp.Gas())
	}
	if err := gp.SubGas(21000); err != nil {
		t.Fatalf("SubGas(21000): %v", err)
	}
	if gp.Gas() != 79000 {
		t.Fatalf("Gas() after SubGas = %d, want 79000", gp.Gas())
	}
}

func TestGasPoolSubGasExhausted(t *testing.T) {
	gp := new(GasPool).AddGas(21000)
	if err := gp.SubGas(21001); err != ErrGasPoolExhausted {
		t.Fatalf("SubGas over pool: got %v, want ErrGasPoolExhausted", err)
	}
	// A failed SubGas must not mutate the pool.
	if gp.Gas() != 21000 {
		t.Fatalf("Gas() after failed SubGas = %d, want 21000 unchanged", gp.Gas())
	}
}

func TestGasPoolRefund(t *testing.T) {
	gp := new(GasPool).AddGas(21000)
	if err := gp.SubGas(21000); err != nil {
		t.Fatal(err)
	}
	if gp.Gas() != 0 {
		t.Fatalf("Gas() = %d, want 0", gp.Gas())
	}
	gp.AddGas(5000)
	if gp.Gas() != 5000 {
		t.Fatalf("Gas() after refund = %d, want 5000", gp.Gas())
	}
}
