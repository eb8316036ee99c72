package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portfolio-backtest-lab/internal/align"
	"portfolio-backtest-lab/internal/domain"
	"portfolio-backtest-lab/internal/idhash"
	"portfolio-backtest-lab/internal/metrics"
	"portfolio-backtest-lab/internal/storage"
	"portfolio-backtest-lab/internal/strategy"
)

// Runner executes backtests against stored price data.
type Runner struct {
	priceBarStore storage.PriceBarStore
	backtestStore storage.BacktestStore
	logf          Logf
	now           func() time.Time
}

// RunnerOptions contains configuration for creating a Runner.
// BacktestStore is optional; a nil store skips persistence.
type RunnerOptions struct {
	PriceBarStore storage.PriceBarStore
	BacktestStore storage.BacktestStore
	Logf          Logf
}

// NewRunner creates a backtest runner.
func NewRunner(opts RunnerOptions) *Runner {
	return &Runner{
		priceBarStore: opts.PriceBarStore,
		backtestStore: opts.BacktestStore,
		logf:          opts.Logf,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Run executes a backtest for one configuration.
// Steps:
//  1. Build strategy via strategy.FromConfig(cfg.Strategy)
//  2. Load per-symbol price bars for the requested date range
//  3. Align onto a shared trading-date axis
//  4. Simulate via Engine.Run
//  5. Compare against the benchmark when one is configured
//  6. Persist a BacktestRecord
func (r *Runner) Run(ctx context.Context, cfg domain.BacktestConfig) (*domain.BacktestResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	strat, err := strategy.FromConfig(cfg.Strategy)
	if err != nil {
		return nil, err
	}

	symbols := domain.HoldingSymbols(cfg.Holdings)
	loadSymbols := symbols
	if cfg.BenchmarkSymbol != "" && !contains(symbols, cfg.BenchmarkSymbol) {
		loadSymbols = append(append([]string(nil), symbols...), cfg.BenchmarkSymbol)
	}

	series := make([]*domain.PriceSeries, 0, len(loadSymbols))
	for _, sym := range loadSymbols {
		s, err := r.loadSeries(ctx, sym, cfg.StartDate, cfg.EndDate)
		if err != nil {
			return nil, err
		}
		series = append(series, s)
	}

	matrix, err := align.Align(series)
	if err != nil {
		return nil, err
	}

	engine := NewEngine(strat, cfg, WithLogf(r.logf))
	result, err := engine.Run(matrix)
	if err != nil {
		return nil, err
	}

	// Benchmark failure degrades to a warning; the run itself stands.
	if cfg.BenchmarkSymbol != "" {
		comparison, err := compareToColumn(result.Returns, matrix, cfg.BenchmarkSymbol)
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("benchmark comparison against %s skipped: %v", cfg.BenchmarkSymbol, err))
		} else {
			result.Benchmark = comparison
		}
	}

	if r.backtestStore != nil {
		record := r.buildRecord(cfg, strat.ID(), symbols, result)
		if err := r.backtestStore.Insert(ctx, record); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("run %s already stored, skipping persistence", record.ID))
			} else {
				return nil, fmt.Errorf("persist run record: %w", err)
			}
		}
	}

	return result, nil
}

func (r *Runner) loadSeries(ctx context.Context, symbol string, start, end time.Time) (*domain.PriceSeries, error) {
	var (
		bars []*domain.PriceBar
		err  error
	)
	if start.IsZero() && end.IsZero() {
		bars, err = r.priceBarStore.GetBySymbol(ctx, symbol)
	} else {
		bars, err = r.priceBarStore.GetByDateRange(ctx, symbol, start, end)
	}
	if err != nil {
		return nil, fmt.Errorf("load bars for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s has no price points for the requested period",
			domain.ErrInsufficientData, symbol)
	}

	s := &domain.PriceSeries{Symbol: symbol, Points: make([]domain.PricePoint, len(bars))}
	for i, b := range bars {
		s.Points[i] = domain.PricePoint{Date: b.Date, Close: b.Close}
	}
	return s, nil
}

func (r *Runner) buildRecord(cfg domain.BacktestConfig, strategyID string, symbols []string, result *domain.BacktestResult) *domain.BacktestRecord {
	n := len(result.Dates)
	return &domain.BacktestRecord{
		ID: idhash.ComputeRunID(strategyID, symbols,
			result.Dates[0], result.Dates[n-1], string(cfg.Frequency), cfg.InitialCapital),
		StrategyID:     strategyID,
		Symbols:        symbols,
		StartDate:      result.Dates[0],
		EndDate:        result.Dates[n-1],
		InitialCapital: cfg.InitialCapital,
		Frequency:      cfg.Frequency,
		FinalValue:     result.PortfolioValues[n-1],
		Metrics:        result.Metrics,
		CreatedAt:      r.now(),
	}
}

// compareToColumn derives the benchmark's simple return series from its
// aligned price column and runs the relative comparison.
func compareToColumn(portfolioReturns []float64, matrix *domain.AlignedPriceMatrix, symbol string) (*domain.BenchmarkComparison, error) {
	prices := matrix.Column(symbol)
	if prices == nil {
		return nil, fmt.Errorf("%w: no aligned prices for %s", domain.ErrInsufficientData, symbol)
	}

	benchReturns := make([]float64, len(prices))
	for t := 1; t < len(prices); t++ {
		if prices[t-1] > 0 {
			benchReturns[t] = prices[t]/prices[t-1] - 1
		}
	}

	return metrics.CompareToBenchmark(portfolioReturns, benchReturns, symbol)
}

func contains(symbols []string, symbol string) bool {
	for _, s := range symbols {
		if s == symbol {
			return true
		}
	}
	return false
}
