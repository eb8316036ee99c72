package strategy

import (
	"fmt"

	"portfolio-backtest-lab/internal/domain"
)

// RotationStrategy periodically re-selects a fixed-size subset of symbols
// using one of three selection models and equal-weights the selection.
type RotationStrategy struct {
	RotationModel   string
	NumberOfSectors int
	LookbackPeriod  int
}

// NewRotationStrategy creates a RotationStrategy.
func NewRotationStrategy(model string, sectors, lookback int) *RotationStrategy {
	return &RotationStrategy{
		RotationModel:   model,
		NumberOfSectors: sectors,
		LookbackPeriod:  lookback,
	}
}

// ID returns the strategy identifier including parameters.
func (s *RotationStrategy) ID() string {
	return fmt.Sprintf("%s_%s_n%d_lb%d",
		domain.StrategyTypeRotation, s.RotationModel, s.NumberOfSectors, s.LookbackPeriod)
}

// SelectWeights scores symbols per the rotation model over the lookback
// window, then equal-weights the best NumberOfSectors of them. Target
// allocations are held during warmup.
func (s *RotationStrategy) SelectWeights(input *Input) (map[string]float64, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if input.T < s.LookbackPeriod {
		return copyTargets(input.Symbols, input.Targets), nil
	}

	scores := make([]scoredSymbol, 0, len(input.Symbols))
	switch s.RotationModel {
	case domain.RotationMeanReversion:
		// Most depressed relative to its moving average wins.
		for _, sym := range input.Symbols {
			col := input.Matrix.Column(sym)
			ma := movingAverage(col, input.T, s.LookbackPeriod)
			if ma == 0 {
				continue
			}
			scores = append(scores, scoredSymbol{symbol: sym, score: (col[input.T] - ma) / ma})
		}
		rankAscending(scores)
	case domain.RotationRelativeStrength:
		avg := 0.0
		for _, sym := range input.Symbols {
			avg += trailingReturn(input.Matrix.Column(sym), input.T, s.LookbackPeriod)
		}
		avg /= float64(len(input.Symbols))
		for _, sym := range input.Symbols {
			ret := trailingReturn(input.Matrix.Column(sym), input.T, s.LookbackPeriod)
			scores = append(scores, scoredSymbol{symbol: sym, score: ret - avg})
		}
		rankDescending(scores)
	default: // momentum_based
		for _, sym := range input.Symbols {
			ret := trailingReturn(input.Matrix.Column(sym), input.T, s.LookbackPeriod)
			scores = append(scores, scoredSymbol{symbol: sym, score: ret})
		}
		rankDescending(scores)
	}

	return selectTop(input.Symbols, scores, s.NumberOfSectors), nil
}
