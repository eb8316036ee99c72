package strategy

import (
	"fmt"
	"math"

	"portfolio-backtest-lab/internal/domain"
)

// Documented parameter bounds and defaults.
const (
	MinLookbackPeriod = 1
	MaxLookbackPeriod = 500

	DefaultLookbackPeriod   = 60
	DefaultTopN             = 3
	DefaultRSLookbackPeriod = 126
	DefaultRSTopN           = 2
	DefaultBenchmarkSymbol  = "SPY"
	DefaultMAPeriod         = 50
	DefaultDeviation        = 0.1
	DefaultVolatilityWindow = 60
	DefaultMinWeight        = 0.05
	DefaultMaxWeight        = 0.5
	DefaultTacticalMAPeriod = 200
	DefaultRiskOn           = 0.8
	DefaultRiskOff          = 0.2
	DefaultSectors          = 3
	DefaultRotationLookback = 90
)

// FromConfig builds a Strategy from a domain.StrategyConfig, applying
// defaults and validating every parameter against its documented bounds.
// All validation failures wrap domain.ErrInvalidConfig and name the
// offending parameter.
func FromConfig(cfg domain.StrategyConfig) (Strategy, error) {
	switch cfg.Type {
	case domain.StrategyTypeBuyAndHold:
		return NewBuyAndHoldStrategy(), nil
	case domain.StrategyTypeMomentum:
		return fromMomentumConfig(cfg)
	case domain.StrategyTypeRelativeStrength:
		return fromRelativeStrengthConfig(cfg)
	case domain.StrategyTypeMeanReversion:
		return fromMeanReversionConfig(cfg)
	case domain.StrategyTypeRiskParity:
		return fromRiskParityConfig(cfg)
	case domain.StrategyTypeTacticalAllocation:
		return fromTacticalConfig(cfg)
	case domain.StrategyTypeRotation:
		return fromRotationConfig(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown strategy type %q", domain.ErrInvalidConfig, cfg.Type)
	}
}

func fromMomentumConfig(cfg domain.StrategyConfig) (*MomentumStrategy, error) {
	lookback, err := intParam("lookback_period", cfg.LookbackPeriod, DefaultLookbackPeriod, MinLookbackPeriod, MaxLookbackPeriod)
	if err != nil {
		return nil, err
	}
	topN, err := intParam("top_n", cfg.TopN, DefaultTopN, 1, math.MaxInt)
	if err != nil {
		return nil, err
	}
	return NewMomentumStrategy(lookback, topN, boolParam(cfg.PositiveReturnsOnly)), nil
}

func fromRelativeStrengthConfig(cfg domain.StrategyConfig) (*RelativeStrengthStrategy, error) {
	lookback, err := intParam("lookback_period", cfg.LookbackPeriod, DefaultRSLookbackPeriod, MinLookbackPeriod, MaxLookbackPeriod)
	if err != nil {
		return nil, err
	}
	topN, err := intParam("top_n", cfg.TopN, DefaultRSTopN, 1, math.MaxInt)
	if err != nil {
		return nil, err
	}
	benchmark := DefaultBenchmarkSymbol
	if cfg.BenchmarkSymbol != nil {
		if *cfg.BenchmarkSymbol == "" {
			return nil, fmt.Errorf("%w: benchmark_symbol must not be empty", domain.ErrInvalidConfig)
		}
		benchmark = *cfg.BenchmarkSymbol
	}
	return NewRelativeStrengthStrategy(lookback, topN, benchmark, boolParam(cfg.PositiveReturnsOnly)), nil
}

func fromMeanReversionConfig(cfg domain.StrategyConfig) (*MeanReversionStrategy, error) {
	maPeriod, err := intParam("ma_period", cfg.MAPeriod, DefaultMAPeriod, MinLookbackPeriod, MaxLookbackPeriod)
	if err != nil {
		return nil, err
	}
	deviation := DefaultDeviation
	if cfg.DeviationThreshold != nil {
		deviation = *cfg.DeviationThreshold
		if deviation <= 0 {
			return nil, fmt.Errorf("%w: deviation_threshold is %g, must be positive",
				domain.ErrInvalidConfig, deviation)
		}
	}
	return NewMeanReversionStrategy(maPeriod, deviation), nil
}

func fromRiskParityConfig(cfg domain.StrategyConfig) (*RiskParityStrategy, error) {
	window, err := intParam("volatility_window", cfg.VolatilityWindow, DefaultVolatilityWindow, 2, MaxLookbackPeriod)
	if err != nil {
		return nil, err
	}
	minWeight, err := fractionParam("min_weight", cfg.MinWeight, DefaultMinWeight)
	if err != nil {
		return nil, err
	}
	maxWeight, err := fractionParam("max_weight", cfg.MaxWeight, DefaultMaxWeight)
	if err != nil {
		return nil, err
	}
	if minWeight >= maxWeight {
		return nil, fmt.Errorf("%w: min_weight %g must be less than max_weight %g",
			domain.ErrInvalidConfig, minWeight, maxWeight)
	}
	return NewRiskParityStrategy(window, minWeight, maxWeight), nil
}

func fromTacticalConfig(cfg domain.StrategyConfig) (*TacticalAllocationStrategy, error) {
	indicator := domain.IndicatorMovingAverage
	if cfg.Indicator != nil {
		indicator = *cfg.Indicator
		switch indicator {
		case domain.IndicatorMovingAverage, domain.IndicatorVolatility, domain.IndicatorMomentum:
		default:
			return nil, fmt.Errorf("%w: unknown indicator %q", domain.ErrInvalidConfig, indicator)
		}
	}
	maPeriod, err := intParam("ma_period", cfg.MAPeriod, DefaultTacticalMAPeriod, MinLookbackPeriod, MaxLookbackPeriod)
	if err != nil {
		return nil, err
	}
	riskOn, err := fractionParam("risk_on_allocation", cfg.RiskOnAllocation, DefaultRiskOn)
	if err != nil {
		return nil, err
	}
	riskOff, err := fractionParam("risk_off_allocation", cfg.RiskOffAllocation, DefaultRiskOff)
	if err != nil {
		return nil, err
	}
	if math.Abs(riskOn+riskOff-1.0) > 0.01 {
		return nil, fmt.Errorf("%w: risk_on_allocation %g + risk_off_allocation %g must sum to 1.0",
			domain.ErrInvalidConfig, riskOn, riskOff)
	}
	return NewTacticalAllocationStrategy(indicator, maPeriod, riskOn, riskOff), nil
}

func fromRotationConfig(cfg domain.StrategyConfig) (*RotationStrategy, error) {
	model := domain.RotationMomentumBased
	if cfg.RotationModel != nil {
		model = *cfg.RotationModel
		switch model {
		case domain.RotationMomentumBased, domain.RotationMeanReversion, domain.RotationRelativeStrength:
		default:
			return nil, fmt.Errorf("%w: unknown rotation_model %q", domain.ErrInvalidConfig, model)
		}
	}
	sectors, err := intParam("number_of_sectors", cfg.NumberOfSectors, DefaultSectors, 1, math.MaxInt)
	if err != nil {
		return nil, err
	}
	lookback, err := intParam("lookback_period", cfg.LookbackPeriod, DefaultRotationLookback, MinLookbackPeriod, MaxLookbackPeriod)
	if err != nil {
		return nil, err
	}
	return NewRotationStrategy(model, sectors, lookback), nil
}

// intParam applies the default when p is nil and enforces [min, max].
func intParam(name string, p *int, def, min, max int) (int, error) {
	v := def
	if p != nil {
		v = *p
	}
	if v < min || v > max {
		if max == math.MaxInt {
			return 0, fmt.Errorf("%w: %s is %d, must be at least %d", domain.ErrInvalidConfig, name, v, min)
		}
		return 0, fmt.Errorf("%w: %s is %d, outside [%d, %d]", domain.ErrInvalidConfig, name, v, min, max)
	}
	return v, nil
}

// fractionParam applies the default when p is nil and enforces [0, 1].
func fractionParam(name string, p *float64, def float64) (float64, error) {
	v := def
	if p != nil {
		v = *p
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("%w: %s is %g, outside [0, 1]", domain.ErrInvalidConfig, name, v)
	}
	return v, nil
}

func boolParam(p *bool) bool {
	return p != nil && *p
}
