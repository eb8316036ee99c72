package strategy

import (
	"fmt"
	"math"

	"portfolio-backtest-lab/internal/domain"
)

// MeanReversionStrategy overweights symbols trading below their moving
// average by more than the deviation threshold. Weight on an undervalued
// symbol is proportional to the magnitude of its deviation; symbols at or
// above their average get zero. When nothing is undervalued the portfolio
// holds equal weights.
type MeanReversionStrategy struct {
	MAPeriod           int
	DeviationThreshold float64
}

// NewMeanReversionStrategy creates a MeanReversionStrategy.
func NewMeanReversionStrategy(maPeriod int, deviationThreshold float64) *MeanReversionStrategy {
	return &MeanReversionStrategy{
		MAPeriod:           maPeriod,
		DeviationThreshold: deviationThreshold,
	}
}

// ID returns the strategy identifier including parameters.
func (s *MeanReversionStrategy) ID() string {
	return fmt.Sprintf("%s_ma%d_dev%g", domain.StrategyTypeMeanReversion, s.MAPeriod, s.DeviationThreshold)
}

// SelectWeights weights undervalued symbols by relative deviation below
// their moving average. Equal weight during warmup.
func (s *MeanReversionStrategy) SelectWeights(input *Input) (map[string]float64, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if input.T < s.MAPeriod {
		return equalWeights(input.Symbols), nil
	}

	type deviation struct {
		symbol string
		below  float64 // |deviation| for undervalued symbols
	}
	var undervalued []deviation
	totalBelow := 0.0

	for _, sym := range input.Symbols {
		col := input.Matrix.Column(sym)
		ma := movingAverage(col, input.T, s.MAPeriod)
		if ma == 0 {
			continue
		}
		dev := (col[input.T] - ma) / ma
		if dev < -s.DeviationThreshold {
			below := math.Abs(dev)
			undervalued = append(undervalued, deviation{symbol: sym, below: below})
			totalBelow += below
		}
	}

	if len(undervalued) == 0 || totalBelow == 0 {
		return equalWeights(input.Symbols), nil
	}

	w := zeroWeights(input.Symbols)
	for _, d := range undervalued {
		w[d.symbol] = d.below / totalBelow
	}
	return w, nil
}
