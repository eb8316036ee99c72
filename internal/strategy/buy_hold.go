package strategy

import "portfolio-backtest-lab/internal/domain"

// BuyAndHoldStrategy returns the portfolio's target allocations at every
// call. With rebalancing frequency "none" it is consulted only on the first
// day; with a periodic frequency it resets drifted weights back to target.
type BuyAndHoldStrategy struct{}

// NewBuyAndHoldStrategy creates a BuyAndHoldStrategy.
func NewBuyAndHoldStrategy() *BuyAndHoldStrategy {
	return &BuyAndHoldStrategy{}
}

// ID returns the strategy identifier.
func (s *BuyAndHoldStrategy) ID() string {
	return domain.StrategyTypeBuyAndHold
}

// SelectWeights returns the original target allocations unchanged.
func (s *BuyAndHoldStrategy) SelectWeights(input *Input) (map[string]float64, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return copyTargets(input.Symbols, input.Targets), nil
}
