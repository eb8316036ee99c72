package domain

import (
	"errors"
	"testing"
)

func TestValidateHoldings(t *testing.T) {
	tests := []struct {
		name     string
		holdings []Holding
		wantErr  bool
	}{
		{
			name:     "valid two symbol portfolio",
			holdings: []Holding{{Symbol: "SPY", Allocation: 0.6}, {Symbol: "AGG", Allocation: 0.4}},
		},
		{
			name:     "valid single symbol",
			holdings: []Holding{{Symbol: "SPY", Allocation: 1.0}},
		},
		{
			name:     "sum within tolerance",
			holdings: []Holding{{Symbol: "SPY", Allocation: 0.33334}, {Symbol: "AGG", Allocation: 0.33333}, {Symbol: "GLD", Allocation: 0.33333}},
		},
		{
			name:    "empty holdings",
			wantErr: true,
		},
		{
			name:     "duplicate symbol",
			holdings: []Holding{{Symbol: "SPY", Allocation: 0.5}, {Symbol: "SPY", Allocation: 0.5}},
			wantErr:  true,
		},
		{
			name:     "zero allocation",
			holdings: []Holding{{Symbol: "SPY", Allocation: 0}, {Symbol: "AGG", Allocation: 1.0}},
			wantErr:  true,
		},
		{
			name:     "negative allocation",
			holdings: []Holding{{Symbol: "SPY", Allocation: -0.2}, {Symbol: "AGG", Allocation: 1.2}},
			wantErr:  true,
		},
		{
			name:     "allocation above one",
			holdings: []Holding{{Symbol: "SPY", Allocation: 1.5}},
			wantErr:  true,
		},
		{
			name:     "sum far from one",
			holdings: []Holding{{Symbol: "SPY", Allocation: 0.5}, {Symbol: "AGG", Allocation: 0.3}},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHoldings(tt.holdings)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("error should wrap ErrInvalidConfig, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestTargetAllocations(t *testing.T) {
	holdings := []Holding{{Symbol: "SPY", Allocation: 0.6}, {Symbol: "AGG", Allocation: 0.4}}
	targets := TargetAllocations(holdings)

	if targets["SPY"] != 0.6 || targets["AGG"] != 0.4 {
		t.Errorf("unexpected targets: %v", targets)
	}
}

func TestHoldingSymbols_PreservesOrder(t *testing.T) {
	holdings := []Holding{
		{Symbol: "GLD", Allocation: 0.2},
		{Symbol: "SPY", Allocation: 0.5},
		{Symbol: "AGG", Allocation: 0.3},
	}
	symbols := HoldingSymbols(holdings)

	want := []string{"GLD", "SPY", "AGG"}
	for i, sym := range want {
		if symbols[i] != sym {
			t.Fatalf("symbols[%d] = %s, want %s", i, symbols[i], sym)
		}
	}
}
