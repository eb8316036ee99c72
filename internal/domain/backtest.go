package domain

import (
	"fmt"
	"time"
)

// BacktestConfig is the full input set for one simulation run.
type BacktestConfig struct {
	Holdings       []Holding          `json:"holdings"`
	Strategy       StrategyConfig     `json:"strategy"`
	StartDate      time.Time          `json:"start_date"`
	EndDate        time.Time          `json:"end_date"`
	InitialCapital float64            `json:"initial_capital"`
	Frequency      RebalanceFrequency `json:"rebalancing_frequency"`

	// BenchmarkSymbol enables the benchmark comparison when non-empty.
	BenchmarkSymbol string `json:"benchmark_symbol,omitempty"`
}

// Validate checks everything that can be checked without price data.
// Strategy parameters are validated separately by the strategy factory.
func (c *BacktestConfig) Validate() error {
	if err := ValidateHoldings(c.Holdings); err != nil {
		return err
	}
	if c.InitialCapital <= 0 {
		return fmt.Errorf("%w: initial_capital is %g, must be positive",
			ErrInvalidConfig, c.InitialCapital)
	}
	if !ValidFrequency(c.Frequency) {
		return fmt.Errorf("%w: unknown rebalancing_frequency %q", ErrInvalidConfig, c.Frequency)
	}
	if !c.EndDate.IsZero() && !c.StartDate.IsZero() && c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("%w: end_date %s before start_date %s", ErrInvalidConfig,
			c.EndDate.Format("2006-01-02"), c.StartDate.Format("2006-01-02"))
	}
	return nil
}

// PerformanceMetrics is the flat record of scalar risk/return statistics
// derived from a value and return series. Recomputable from BacktestResult;
// never mutated in place.
type PerformanceMetrics struct {
	TotalReturn         float64 `json:"total_return"`
	AnnualizedReturn    float64 `json:"annualized_return"`
	Volatility          float64 `json:"volatility"`
	SharpeRatio         float64 `json:"sharpe_ratio"`
	MaxDrawdown         float64 `json:"max_drawdown"`
	MaxDrawdownDuration int     `json:"max_drawdown_duration"`
	SortinoRatio        float64 `json:"sortino_ratio"`
	CalmarRatio         float64 `json:"calmar_ratio"`
	VaR95               float64 `json:"var_95"`
	CVaR95              float64 `json:"cvar_95"`
	WinRate             float64 `json:"win_rate"`
	ProfitFactor        float64 `json:"profit_factor"`

	// Clamped lists metric names whose value was non-finite and was
	// clamped to 0, so callers can detect degenerate inputs.
	Clamped []string `json:"clamped,omitempty"`
}

// BenchmarkComparison holds the benchmark's own statistics plus the relative
// statistics of the portfolio against it.
type BenchmarkComparison struct {
	Symbol           string  `json:"symbol"`
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	Volatility       float64 `json:"volatility"`
	SharpeRatio      float64 `json:"sharpe_ratio"`

	Beta             float64 `json:"beta"`
	Alpha            float64 `json:"alpha"`
	Correlation      float64 `json:"correlation"`
	TrackingError    float64 `json:"tracking_error"`
	InformationRatio float64 `json:"information_ratio"`
	UpCapture        float64 `json:"up_capture"`
	DownCapture      float64 `json:"down_capture"`
}

// AssetPerformance holds per-symbol statistics over a finished run.
// ContributionEstimate back-solves an implied contribution from average
// weight and asset return; it is an approximation, not an exact attribution.
type AssetPerformance struct {
	Symbol           string  `json:"symbol"`
	Allocation       float64 `json:"allocation"`
	InitialWeight    float64 `json:"initial_weight"`
	FinalWeight      float64 `json:"final_weight"`
	AverageWeight    float64 `json:"average_weight"`
	TimeInvested     float64 `json:"time_invested"`
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	Volatility       float64 `json:"volatility"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	MaxDrawdown      float64 `json:"max_drawdown"`

	// ContributionEstimate = average weight x asset total return.
	ContributionEstimate float64 `json:"contribution_estimate"`
}

// BacktestResult is the engine's sole output: the day-by-day trajectory plus
// derived statistics. Produced once at the end of a run, immutable after.
// All series share the length of Dates.
type BacktestResult struct {
	Dates           []time.Time          `json:"dates"`
	PortfolioValues []float64            `json:"portfolio_values"`
	Returns         []float64            `json:"returns"`
	Drawdown        []float64            `json:"drawdown"`
	Weights         map[string][]float64 `json:"weights"`
	RebalanceDates  []time.Time          `json:"rebalance_dates"`
	Metrics         PerformanceMetrics   `json:"metrics"`

	// Optional sections.
	Benchmark        *BenchmarkComparison `json:"benchmark,omitempty"`
	AssetPerformance []AssetPerformance   `json:"asset_performance,omitempty"`

	// Warnings records non-fatal recoveries: weight renormalization,
	// bad-tick fallbacks, clamped metrics, skipped comparisons.
	Warnings []string `json:"warnings,omitempty"`
}

// BacktestRecord is the persistence shape of a finished run: identity,
// configuration echo, and headline metrics. Time series stay with the caller.
type BacktestRecord struct {
	ID             string             `json:"id"`
	StrategyID     string             `json:"strategy_id"`
	Symbols        []string           `json:"symbols"`
	StartDate      time.Time          `json:"start_date"`
	EndDate        time.Time          `json:"end_date"`
	InitialCapital float64            `json:"initial_capital"`
	Frequency      RebalanceFrequency `json:"rebalancing_frequency"`
	FinalValue     float64            `json:"final_value"`
	Metrics        PerformanceMetrics `json:"metrics"`
	CreatedAt      time.Time          `json:"created_at"`
}
