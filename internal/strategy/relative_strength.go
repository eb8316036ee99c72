package strategy

import (
	"fmt"

	"portfolio-backtest-lab/internal/domain"
)

// RelativeStrengthStrategy ranks symbols by trailing return relative to a
// benchmark and equal-weights the top N. When the benchmark symbol is not in
// the aligned matrix, the cross-sectional average return of the portfolio
// symbols serves as the benchmark proxy.
type RelativeStrengthStrategy struct {
	LookbackPeriod      int
	TopN                int
	BenchmarkSymbol     string
	PositiveReturnsOnly bool
}

// NewRelativeStrengthStrategy creates a RelativeStrengthStrategy.
func NewRelativeStrengthStrategy(lookback, topN int, benchmark string, positiveOnly bool) *RelativeStrengthStrategy {
	return &RelativeStrengthStrategy{
		LookbackPeriod:      lookback,
		TopN:                topN,
		BenchmarkSymbol:     benchmark,
		PositiveReturnsOnly: positiveOnly,
	}
}

// ID returns the strategy identifier including parameters.
func (s *RelativeStrengthStrategy) ID() string {
	return fmt.Sprintf("%s_lb%d_top%d_vs_%s",
		domain.StrategyTypeRelativeStrength, s.LookbackPeriod, s.TopN, s.BenchmarkSymbol)
}

// SelectWeights scores each symbol by its trailing return minus the
// benchmark's, then equal-weights the top N. Equal weight during warmup.
func (s *RelativeStrengthStrategy) SelectWeights(input *Input) (map[string]float64, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if input.T < s.LookbackPeriod {
		return equalWeights(input.Symbols), nil
	}

	benchReturn := s.benchmarkReturn(input)

	scores := make([]scoredSymbol, 0, len(input.Symbols))
	for _, sym := range input.Symbols {
		ret := trailingReturn(input.Matrix.Column(sym), input.T, s.LookbackPeriod)
		if s.PositiveReturnsOnly && ret <= 0 {
			continue
		}
		scores = append(scores, scoredSymbol{symbol: sym, score: ret - benchReturn})
	}
	rankDescending(scores)

	return selectTop(input.Symbols, scores, s.TopN), nil
}

func (s *RelativeStrengthStrategy) benchmarkReturn(input *Input) float64 {
	if col := input.Matrix.Column(s.BenchmarkSymbol); col != nil {
		return trailingReturn(col, input.T, s.LookbackPeriod)
	}

	// Benchmark not aligned: fall back to the portfolio average.
	sum := 0.0
	for _, sym := range input.Symbols {
		sum += trailingReturn(input.Matrix.Column(sym), input.T, s.LookbackPeriod)
	}
	return sum / float64(len(input.Symbols))
}
