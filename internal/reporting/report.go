// Package reporting renders finished backtest results as CSV, Markdown, and
// PNG equity charts. Renderers are pure functions of the report; nothing here
// touches storage.
package reporting

import (
	"time"

	"portfolio-backtest-lab/internal/domain"
)

// Report bundles one finished run with the labels a reader needs.
type Report struct {
	GeneratedAt    time.Time
	StrategyID     string
	Symbols        []string
	Frequency      domain.RebalanceFrequency
	InitialCapital float64
	Result         *domain.BacktestResult
}

// NewReport builds a report for a finished run.
func NewReport(strategyID string, cfg domain.BacktestConfig, result *domain.BacktestResult) *Report {
	return &Report{
		GeneratedAt:    time.Now().UTC(),
		StrategyID:     strategyID,
		Symbols:        domain.HoldingSymbols(cfg.Holdings),
		Frequency:      cfg.Frequency,
		InitialCapital: cfg.InitialCapital,
		Result:         result,
	}
}

// WithClock overrides the generation timestamp for deterministic output.
func (r *Report) WithClock(now func() time.Time) *Report {
	r.GeneratedAt = now()
	return r
}

// FinalValue is the portfolio value on the last trading date.
func (r *Report) FinalValue() float64 {
	n := len(r.Result.PortfolioValues)
	if n == 0 {
		return 0
	}
	return r.Result.PortfolioValues[n-1]
}
