package strategy

import (
	"fmt"

	"portfolio-backtest-lab/internal/domain"
)

// MomentumStrategy ranks symbols by trailing total return over the lookback
// window and equal-weights the top N.
type MomentumStrategy struct {
	LookbackPeriod      int
	TopN                int
	PositiveReturnsOnly bool
}

// NewMomentumStrategy creates a MomentumStrategy.
func NewMomentumStrategy(lookback, topN int, positiveOnly bool) *MomentumStrategy {
	return &MomentumStrategy{
		LookbackPeriod:      lookback,
		TopN:                topN,
		PositiveReturnsOnly: positiveOnly,
	}
}

// ID returns the strategy identifier including parameters.
func (s *MomentumStrategy) ID() string {
	return fmt.Sprintf("%s_lb%d_top%d", domain.StrategyTypeMomentum, s.LookbackPeriod, s.TopN)
}

// SelectWeights ranks by trailing return and equal-weights the top N.
// Before the lookback window is filled the original target allocations are
// held. With the positive-only filter active and nothing positive to select,
// the portfolio moves to cash.
func (s *MomentumStrategy) SelectWeights(input *Input) (map[string]float64, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if input.T < s.LookbackPeriod {
		return copyTargets(input.Symbols, input.Targets), nil
	}

	scores := make([]scoredSymbol, 0, len(input.Symbols))
	for _, sym := range input.Symbols {
		ret := trailingReturn(input.Matrix.Column(sym), input.T, s.LookbackPeriod)
		if s.PositiveReturnsOnly && ret <= 0 {
			continue
		}
		scores = append(scores, scoredSymbol{symbol: sym, score: ret})
	}
	rankDescending(scores)

	return selectTop(input.Symbols, scores, s.TopN), nil
}
