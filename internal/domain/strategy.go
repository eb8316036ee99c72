package domain

// Strategy type constants.
const (
	StrategyTypeBuyAndHold         = "buy_and_hold"
	StrategyTypeMomentum           = "momentum"
	StrategyTypeRelativeStrength   = "relative_strength"
	StrategyTypeMeanReversion      = "mean_reversion"
	StrategyTypeRiskParity         = "risk_parity"
	StrategyTypeTacticalAllocation = "tactical_allocation"
	StrategyTypeRotation           = "rotation"
)

// Tactical allocation regime indicators.
const (
	IndicatorMovingAverage = "moving_average"
	IndicatorVolatility    = "volatility"
	IndicatorMomentum      = "momentum"
)

// Rotation selection models.
const (
	RotationMomentumBased    = "momentum_based"
	RotationMeanReversion    = "mean_reversion"
	RotationRelativeStrength = "relative_strength"
)

// StrategyConfig is the tagged strategy variant plus its parameter set.
// Optional parameters are pointers; the factory applies documented defaults
// and rejects out-of-bounds values.
type StrategyConfig struct {
	Type string `json:"type"`

	// momentum, relative_strength, rotation
	LookbackPeriod *int `json:"lookback_period,omitempty"`
	TopN           *int `json:"top_n,omitempty"`

	// relative_strength
	BenchmarkSymbol *string `json:"benchmark_symbol,omitempty"`

	// momentum, relative_strength
	PositiveReturnsOnly *bool `json:"positive_returns_only,omitempty"`

	// mean_reversion, tactical_allocation
	MAPeriod           *int     `json:"ma_period,omitempty"`
	DeviationThreshold *float64 `json:"deviation_threshold,omitempty"`

	// risk_parity
	VolatilityWindow *int     `json:"volatility_window,omitempty"`
	MinWeight        *float64 `json:"min_weight,omitempty"`
	MaxWeight        *float64 `json:"max_weight,omitempty"`

	// tactical_allocation
	Indicator         *string  `json:"indicator,omitempty"`
	RiskOnAllocation  *float64 `json:"risk_on_allocation,omitempty"`
	RiskOffAllocation *float64 `json:"risk_off_allocation,omitempty"`

	// rotation
	RotationModel   *string `json:"rotation_model,omitempty"`
	NumberOfSectors *int    `json:"number_of_sectors,omitempty"`
}

// RebalanceFrequency is the cadence at which the strategy is consulted.
type RebalanceFrequency string

// Supported rebalancing frequencies. FrequencyNone means the strategy is
// consulted only on the first trading day.
const (
	FrequencyDaily     RebalanceFrequency = "daily"
	FrequencyWeekly    RebalanceFrequency = "weekly"
	FrequencyMonthly   RebalanceFrequency = "monthly"
	FrequencyQuarterly RebalanceFrequency = "quarterly"
	FrequencyYearly    RebalanceFrequency = "yearly"
	FrequencyNone      RebalanceFrequency = "none"
)

// ValidFrequency reports whether f is a supported rebalancing frequency.
func ValidFrequency(f RebalanceFrequency) bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly,
		FrequencyQuarterly, FrequencyYearly, FrequencyNone:
		return true
	}
	return false
}
