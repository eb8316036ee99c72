package domain

import (
	"fmt"
	"math"
)

// AllocationTolerance is the maximum deviation from 1.0 tolerated for the
// sum of target allocations.
const AllocationTolerance = 1e-4

// Holding is one portfolio position: a symbol and its target allocation
// fraction. Immutable for the duration of a simulation run.
type Holding struct {
	Symbol     string  `json:"symbol"`
	Allocation float64 `json:"allocation"`
}

// ValidateHoldings rejects empty portfolios, duplicate symbols, allocations
// outside (0, 1], and allocation sums away from 1.0.
func ValidateHoldings(holdings []Holding) error {
	if len(holdings) == 0 {
		return fmt.Errorf("%w: portfolio must have at least one holding", ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(holdings))
	total := 0.0
	for i, h := range holdings {
		if h.Symbol == "" {
			return fmt.Errorf("%w: holding %d has empty symbol", ErrInvalidConfig, i)
		}
		if seen[h.Symbol] {
			return fmt.Errorf("%w: duplicate symbol %s", ErrInvalidConfig, h.Symbol)
		}
		seen[h.Symbol] = true

		if h.Allocation <= 0 || h.Allocation > 1 {
			return fmt.Errorf("%w: allocation for %s is %g, must be in (0, 1]",
				ErrInvalidConfig, h.Symbol, h.Allocation)
		}
		total += h.Allocation
	}

	if math.Abs(total-1.0) > AllocationTolerance {
		return fmt.Errorf("%w: allocations sum to %g, expected 1.0", ErrInvalidConfig, total)
	}
	return nil
}

// TargetAllocations returns the holdings as a symbol-keyed map.
func TargetAllocations(holdings []Holding) map[string]float64 {
	targets := make(map[string]float64, len(holdings))
	for _, h := range holdings {
		targets[h.Symbol] = h.Allocation
	}
	return targets
}

// HoldingSymbols returns the symbols in portfolio order.
func HoldingSymbols(holdings []Holding) []string {
	symbols := make([]string, len(holdings))
	for i, h := range holdings {
		symbols[i] = h.Symbol
	}
	return symbols
}
