package strategy

import (
	"fmt"

	"portfolio-backtest-lab/internal/domain"
)

// RiskParityStrategy weights symbols inversely proportional to their
// trailing volatility, clipped to [MinWeight, MaxWeight].
type RiskParityStrategy struct {
	VolatilityWindow int
	MinWeight        float64
	MaxWeight        float64
}

// NewRiskParityStrategy creates a RiskParityStrategy.
func NewRiskParityStrategy(window int, minWeight, maxWeight float64) *RiskParityStrategy {
	return &RiskParityStrategy{
		VolatilityWindow: window,
		MinWeight:        minWeight,
		MaxWeight:        maxWeight,
	}
}

// ID returns the strategy identifier including parameters.
func (s *RiskParityStrategy) ID() string {
	return fmt.Sprintf("%s_w%d_min%g_max%g",
		domain.StrategyTypeRiskParity, s.VolatilityWindow, s.MinWeight, s.MaxWeight)
}

// SelectWeights computes inverse-volatility weights, then enforces the
// weight bounds: a symbol pushed past a bound is pinned there and the
// remaining mass is redistributed among the unpinned symbols. Equal weight
// during warmup. Zero-volatility symbols get zero raw weight.
func (s *RiskParityStrategy) SelectWeights(input *Input) (map[string]float64, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if input.T < s.VolatilityWindow {
		return equalWeights(input.Symbols), nil
	}

	raw := make(map[string]float64, len(input.Symbols))
	rawSum := 0.0
	for _, sym := range input.Symbols {
		vol := trailingVolatility(input.Matrix.Column(sym), input.T, s.VolatilityWindow)
		if vol > 0 {
			raw[sym] = 1.0 / vol
			rawSum += raw[sym]
		}
	}
	if rawSum == 0 {
		return equalWeights(input.Symbols), nil
	}

	return s.clampAndRedistribute(input.Symbols, raw, rawSum), nil
}

// clampAndRedistribute pins bound violations and re-spreads the free mass
// proportionally to the raw inverse-volatility weights. Terminates after at
// most one pass per symbol.
func (s *RiskParityStrategy) clampAndRedistribute(symbols []string, raw map[string]float64, rawSum float64) map[string]float64 {
	weights := make(map[string]float64, len(symbols))
	pinned := make(map[string]bool, len(symbols))
	pinnedMass := 0.0

	for iter := 0; iter < len(symbols); iter++ {
		freeMass := 1.0 - pinnedMass
		freeRaw := 0.0
		for _, sym := range symbols {
			if !pinned[sym] {
				freeRaw += raw[sym]
			}
		}
		if freeRaw <= 0 || freeMass <= 0 {
			break
		}

		violated := false
		for _, sym := range symbols {
			if pinned[sym] {
				continue
			}
			w := raw[sym] / freeRaw * freeMass
			switch {
			case w > s.MaxWeight:
				weights[sym] = s.MaxWeight
				pinned[sym] = true
				pinnedMass += s.MaxWeight
				violated = true
			case w < s.MinWeight:
				weights[sym] = s.MinWeight
				pinned[sym] = true
				pinnedMass += s.MinWeight
				violated = true
			default:
				weights[sym] = w
			}
			if violated {
				break // re-split the remaining mass without this symbol
			}
		}
		if !violated {
			return weights
		}
	}

	return weights
}
