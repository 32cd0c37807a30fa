package rent

import (
	"math"
	"testing"
)

func TestMinimumBalance(t *testing.T) {
	r := Default()
	tests := []struct {
		size uint64
		want uint64
	}{
		{0, 128 * 3480 * 2},
		{1, 129 * 3480 * 2},
		{43, (128 + 43) * 3480 * 2},
		{10 * 1024 * 1024, (128 + 10*1024*1024) * 3480 * 2},
	}
	for _, tt := range tests {
		if have := r.MinimumBalance(tt.size); have != tt.want {
			t.Fatalf("MinimumBalance(%d) = %d, want %d", tt.size, have, tt.want)
		}
	}
}

func TestMinimumBalanceSaturates(t *testing.T) {
	r := Default()
	if have := r.MinimumBalance(math.MaxUint64); have != math.MaxUint64 {
		t.Fatalf("expected saturation, have %d", have)
	}
}

func TestFractionalThreshold(t *testing.T) {
	r := &Rent{LamportsPerByteYear: 3, ExemptionThresholdBps: 5000, StorageOverhead: 0}
	// 3 * 3 * 0.5 = 4.5, rounded down.
	if have := r.MinimumBalance(3); have != 4 {
		t.Fatalf("MinimumBalance(3) = %d, want 4", have)
	}
}

func TestIsExempt(t *testing.T) {
	r := Default()
	min := r.MinimumBalance(43)
	if !r.IsExempt(min, 43) {
		t.Fatalf("minimum balance is not exempt")
	}
	if r.IsExempt(min-1, 43) {
		t.Fatalf("balance below minimum is exempt")
	}
	if err := (&Rent{}).Validate(); err == nil {
		t.Fatalf("expected zero-rate schedule to be invalid")
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("default schedule invalid: %v", err)
	}
}
