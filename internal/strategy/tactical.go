package strategy

import (
	"fmt"

	"portfolio-backtest-lab/internal/domain"
)

// TacticalAllocationStrategy switches the aggregate split between a growth
// bucket (first half of the holdings) and a defensive bucket (second half)
// based on a market regime indicator computed on the first symbol. Relative
// target weights within each bucket stay fixed.
type TacticalAllocationStrategy struct {
	Indicator         string
	MAPeriod          int
	RiskOnAllocation  float64
	RiskOffAllocation float64
}

// NewTacticalAllocationStrategy creates a TacticalAllocationStrategy.
func NewTacticalAllocationStrategy(indicator string, maPeriod int, riskOn, riskOff float64) *TacticalAllocationStrategy {
	return &TacticalAllocationStrategy{
		Indicator:         indicator,
		MAPeriod:          maPeriod,
		RiskOnAllocation:  riskOn,
		RiskOffAllocation: riskOff,
	}
}

// ID returns the strategy identifier including parameters.
func (s *TacticalAllocationStrategy) ID() string {
	return fmt.Sprintf("%s_%s_ma%d_on%g",
		domain.StrategyTypeTacticalAllocation, s.Indicator, s.MAPeriod, s.RiskOnAllocation)
}

// SelectWeights assigns the risk-on share to the growth bucket when the
// regime indicator says risk-on, and the inverse otherwise. Equal weight
// during warmup.
func (s *TacticalAllocationStrategy) SelectWeights(input *Input) (map[string]float64, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if input.T < s.MAPeriod {
		return equalWeights(input.Symbols), nil
	}

	growthShare := s.RiskOffAllocation
	defensiveShare := s.RiskOnAllocation
	if s.riskOn(input) {
		growthShare, defensiveShare = s.RiskOnAllocation, s.RiskOffAllocation
	}

	nGrowth := len(input.Symbols) / 2
	growth := input.Symbols[:nGrowth]
	defensive := input.Symbols[nGrowth:]

	w := zeroWeights(input.Symbols)
	spreadBucket(w, growth, growthShare, input.Targets)
	spreadBucket(w, defensive, defensiveShare, input.Targets)
	return w, nil
}

// riskOn evaluates the regime indicator on the first symbol's history.
func (s *TacticalAllocationStrategy) riskOn(input *Input) bool {
	col := input.Matrix.Column(input.Symbols[0])
	t := input.T

	switch s.Indicator {
	case domain.IndicatorVolatility:
		// Elevated recent volatility versus the full history is risk-off.
		recent := trailingVolatility(col, t, s.MAPeriod)
		longRun := trailingVolatility(col, t, t)
		return recent <= longRun
	case domain.IndicatorMomentum:
		return trailingReturn(col, t, s.MAPeriod) > 0
	default: // moving_average
		return col[t] > movingAverage(col, t, s.MAPeriod)
	}
}

// spreadBucket distributes the bucket share across its symbols proportional
// to their target allocations; equal split when the bucket targets sum to 0.
func spreadBucket(w map[string]float64, bucket []string, share float64, targets map[string]float64) {
	if len(bucket) == 0 || share == 0 {
		return
	}
	total := 0.0
	for _, sym := range bucket {
		total += targets[sym]
	}
	if total <= 0 {
		for _, sym := range bucket {
			w[sym] = share / float64(len(bucket))
		}
		return
	}
	for _, sym := range bucket {
		w[sym] = share * targets[sym] / total
	}
}
