// Package backtest advances a portfolio day by day over an aligned price
// matrix, applying a strategy at rebalance points and accumulating weight
// drift in between. One Engine serves one run; independent runs share no
// state.
package backtest

import (
	"fmt"
	"math"
	"time"

	"portfolio-backtest-lab/internal/domain"
	"portfolio-backtest-lab/internal/metrics"
	"portfolio-backtest-lab/internal/strategy"
)

// WeightTolerance is the drift tolerated in a strategy's weight sum before
// the engine renormalizes and records a warning.
const WeightTolerance = 1e-6

// Logf receives non-fatal engine warnings. Optional.
type Logf func(format string, args ...any)

// Engine simulates one backtest run.
type Engine struct {
	strategy strategy.Strategy
	config   domain.BacktestConfig
	logf     Logf
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogf routes engine warnings to the given sink.
func WithLogf(logf Logf) Option {
	return func(e *Engine) { e.logf = logf }
}

// NewEngine creates an Engine for one run of the given strategy.
func NewEngine(strat strategy.Strategy, cfg domain.BacktestConfig, opts ...Option) *Engine {
	e := &Engine{strategy: strat, config: cfg}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the simulation over the aligned matrix and assembles the
// immutable BacktestResult. The matrix is read-only to the engine; per-run
// state lives on the stack of this call and is discarded afterwards.
func (e *Engine) Run(matrix *domain.AlignedPriceMatrix) (*domain.BacktestResult, error) {
	if err := e.config.Validate(); err != nil {
		return nil, err
	}

	symbols := domain.HoldingSymbols(e.config.Holdings)
	n := matrix.Len()
	if n < 2 {
		return nil, fmt.Errorf("%w: %d aligned trading dates, need at least 2",
			domain.ErrInsufficientData, n)
	}
	for _, sym := range symbols {
		if matrix.Column(sym) == nil {
			return nil, fmt.Errorf("%w: no aligned prices for %s", domain.ErrInsufficientData, sym)
		}
	}

	var warnings []string
	clean, err := sanitizePrices(matrix, symbols, &warnings)
	if err != nil {
		return nil, err
	}

	targets := domain.TargetAllocations(e.config.Holdings)
	schedule := strategy.RebalanceSchedule(clean.Dates, e.config.Frequency)

	// Per-run state: share counts in portfolio order plus uninvested cash.
	shares := make([]float64, len(symbols))
	cash := 0.0

	result := &domain.BacktestResult{
		Dates:           append([]time.Time(nil), clean.Dates...),
		PortfolioValues: make([]float64, n),
		Returns:         make([]float64, n),
		Drawdown:        make([]float64, n),
		Weights:         make(map[string][]float64, len(symbols)),
	}
	for _, sym := range symbols {
		result.Weights[sym] = make([]float64, n)
	}

	currentWeights := func(t int, value float64) map[string]float64 {
		w := make(map[string]float64, len(symbols))
		for i, sym := range symbols {
			if value > 0 {
				w[sym] = shares[i] * clean.Prices[sym][t] / value
			}
		}
		return w
	}

	allocate := func(t int, value float64, targetWeights map[string]float64) {
		normalized := e.normalizeWeights(targetWeights, clean.Dates[t], &warnings)
		invested := 0.0
		for i, sym := range symbols {
			w := normalized[sym]
			shares[i] = value * w / clean.Prices[sym][t]
			invested += w
		}
		cash = value * (1 - invested)
	}

	record := func(t int, value float64) {
		result.PortfolioValues[t] = value
		for i, sym := range symbols {
			if value > 0 {
				result.Weights[sym][t] = shares[i] * clean.Prices[sym][t] / value
			}
		}
	}

	// Day 0: allocate all capital per the strategy's first call.
	value := e.config.InitialCapital
	initial, err := e.strategy.SelectWeights(&strategy.Input{
		Matrix:         clean,
		T:              0,
		Symbols:        symbols,
		Targets:        targets,
		CurrentWeights: targets,
	})
	if err != nil {
		return nil, fmt.Errorf("select initial weights: %w", err)
	}
	allocate(0, value, initial)
	record(0, value)

	peak := value
	for t := 1; t < n; t++ {
		prev := value

		// 1. Price movement on fixed share counts.
		value = cash
		for i, sym := range symbols {
			value += shares[i] * clean.Prices[sym][t]
		}

		// 2. Scheduled rebalance at day-t closing prices.
		if schedule[t] {
			target, err := e.strategy.SelectWeights(&strategy.Input{
				Matrix:         clean,
				T:              t,
				Symbols:        symbols,
				Targets:        targets,
				CurrentWeights: currentWeights(t, value),
			})
			if err != nil {
				return nil, fmt.Errorf("select weights at %s: %w",
					clean.Dates[t].Format("2006-01-02"), err)
			}
			allocate(t, value, target)
			result.RebalanceDates = append(result.RebalanceDates, clean.Dates[t])
		}

		// 3. Record value, weights, and the day's simple return.
		record(t, value)
		if prev > 0 {
			result.Returns[t] = value/prev - 1
		}

		// 4. Running peak and drawdown.
		if value > peak {
			peak = value
		}
		result.Drawdown[t] = (value - peak) / peak
	}

	result.Metrics = metrics.Compute(result.Returns, result.PortfolioValues)
	result.AssetPerformance = metrics.ComputeAssetPerformance(
		clean, result.Weights, e.config.Holdings, metrics.DefaultRiskFreeRate)
	result.Warnings = warnings
	return result, nil
}

// normalizeWeights enforces non-negative weights summing to 1.0. Negative
// weights are clamped to 0, an out-of-tolerance sum is renormalized with a
// warning, and an all-zero selection means the portfolio moves to cash.
func (e *Engine) normalizeWeights(weights map[string]float64, date time.Time, warnings *[]string) map[string]float64 {
	normalized := make(map[string]float64, len(weights))
	sum := 0.0
	clampedNegative := false
	for sym, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			clampedNegative = true
			w = 0
		}
		normalized[sym] = w
		sum += w
	}

	if clampedNegative {
		e.warn(warnings, "%s: strategy %s returned invalid weights, clamped to 0",
			date.Format("2006-01-02"), e.strategy.ID())
	}

	if sum == 0 {
		e.warn(warnings, "%s: strategy %s selected no assets, holding cash",
			date.Format("2006-01-02"), e.strategy.ID())
		return normalized
	}

	if math.Abs(sum-1.0) > WeightTolerance {
		e.warn(warnings, "%s: strategy %s weights sum to %.8f, renormalized",
			date.Format("2006-01-02"), e.strategy.ID(), sum)
		for sym := range normalized {
			normalized[sym] /= sum
		}
	}
	return normalized
}

func (e *Engine) warn(warnings *[]string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	*warnings = append(*warnings, msg)
	if e.logf != nil {
		e.logf("%s", msg)
	}
}

// sanitizePrices copies the portfolio columns with bad ticks repaired: a
// non-positive or non-finite price falls back to the symbol's previous valid
// price, and leading bad ticks take the first valid price. A date on which
// every portfolio symbol has a bad raw price fails the run, as does a symbol
// with no valid price at all. Non-portfolio columns pass through untouched.
func sanitizePrices(matrix *domain.AlignedPriceMatrix, symbols []string, warnings *[]string) (*domain.AlignedPriceMatrix, error) {
	n := matrix.Len()

	// Corruption check first: all symbols bad on one date is unrecoverable.
	for t := 0; t < n; t++ {
		bad := 0
		for _, sym := range symbols {
			if !validPrice(matrix.Prices[sym][t]) {
				bad++
			}
		}
		if bad == len(symbols) {
			return nil, fmt.Errorf("%w: all symbols have non-positive prices on %s",
				domain.ErrInvalidPrice, matrix.Dates[t].Format("2006-01-02"))
		}
	}

	clean := &domain.AlignedPriceMatrix{
		Dates:   matrix.Dates,
		Symbols: matrix.Symbols,
		Prices:  make(map[string][]float64, len(matrix.Prices)),
	}
	for sym, col := range matrix.Prices {
		clean.Prices[sym] = col
	}

	for _, sym := range symbols {
		raw := matrix.Prices[sym]

		firstValid := -1
		for t := 0; t < n; t++ {
			if validPrice(raw[t]) {
				firstValid = t
				break
			}
		}
		if firstValid < 0 {
			return nil, fmt.Errorf("%w: %s has no valid prices", domain.ErrInvalidPrice, sym)
		}

		repaired := 0
		col := make([]float64, n)
		last := raw[firstValid]
		for t := 0; t < n; t++ {
			if validPrice(raw[t]) {
				last = raw[t]
			} else {
				repaired++
			}
			col[t] = last
		}
		if repaired > 0 {
			*warnings = append(*warnings, fmt.Sprintf(
				"%s: %d bad ticks replaced with previous valid price", sym, repaired))
		}
		clean.Prices[sym] = col
	}

	return clean, nil
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}
