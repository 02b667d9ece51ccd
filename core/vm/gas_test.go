package vm

import "testing"

// EIP-150's 63/64 forwarding rule: forwarded = min(available - available/64, requested).
func TestCallGas6364Rule(t *testing.T) {
	tests := []struct {
		name      string
		available uint64
		requested uint64
		want      uint64
	}{
		{"requested exceeds cap", 6400, 10000, 6300},
		{"requested under cap", 6400, 5000, 5000},
		{"requested exactly at cap", 6400, 6300, 6300},
		{"zero available", 0, 1000, 0},
		{"zero requested", 6400, 0, 0},
		{"small available", 64, 10000, 63},
		{"one gas available", 1, 10000, 1},
		{"large available", 10_000_000, 20_000_000, 9_843_750},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CallGas(tt.available, tt.requested); got != tt.want {
				t.Errorf("CallGas(%d, %d) = %d, want %d", tt.available, tt.requested, got, tt.want)
			}
		})
	}
}

func TestCallGasNeverExceedsAvailable(t *testing.T) {
	if got := CallGas(1000, 1000); got > 1000 {
		t.Errorf("CallGas must never forward more than available: got %d", got)
	}
}
