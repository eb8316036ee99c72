// Package strategy holds the allocation policies consulted by the simulation
// engine at rebalance dates, plus the factory that builds them from a
// domain.StrategyConfig.
package strategy

import (
	"fmt"

	"portfolio-backtest-lab/internal/domain"
)

// Strategy selects target weights from market history. Implementations are
// stateless beyond their own parameters and fully deterministic.
type Strategy interface {
	// SelectWeights returns target weights for the portfolio symbols given
	// history up to and including input.T. Weights are non-negative and sum
	// to 1.0; an all-zero map means "hold cash". The engine renormalizes
	// minor floating drift.
	SelectWeights(input *Input) (map[string]float64, error)

	// ID returns the strategy identifier including parameters.
	ID() string
}

// Input is the market view handed to a strategy at a rebalance date.
// Strategies must only read rows [0, T] of the matrix.
type Input struct {
	Matrix *domain.AlignedPriceMatrix

	// T is the index of the current date on the aligned axis.
	T int

	// Symbols is the portfolio's holding order; strategies iterate it so
	// output is deterministic.
	Symbols []string

	// Targets holds the portfolio's original target allocations.
	Targets map[string]float64

	// CurrentWeights holds the drifted weights just before rebalancing.
	CurrentWeights map[string]float64
}

// Validate checks the input at the package boundary.
func (in *Input) Validate() error {
	if in.Matrix == nil || in.Matrix.Len() == 0 {
		return fmt.Errorf("%w: strategy input has no price matrix", domain.ErrInsufficientData)
	}
	if in.T < 0 || in.T >= in.Matrix.Len() {
		return fmt.Errorf("%w: date index %d outside aligned axis of length %d",
			domain.ErrInsufficientData, in.T, in.Matrix.Len())
	}
	if len(in.Symbols) == 0 {
		return fmt.Errorf("%w: strategy input has no symbols", domain.ErrInvalidConfig)
	}
	for _, sym := range in.Symbols {
		if in.Matrix.Column(sym) == nil {
			return fmt.Errorf("%w: no aligned prices for %s", domain.ErrInsufficientData, sym)
		}
	}
	return nil
}
