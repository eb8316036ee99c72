// Package metrics derives risk/return statistics from simulated value and
// return series. All functions are pure; numeric degeneracies are clamped to
// 0 and recorded rather than propagated.
package metrics

import (
	"math"
	"sort"

	"portfolio-backtest-lab/internal/domain"
)

// Annualization and defaults.
const (
	TradingDaysPerYear  = 252
	DefaultRiskFreeRate = 0.02

	// profitFactorNoLosses is reported when there are gains and no losing
	// periods. A sentinel, not a division result; finite by construction.
	profitFactorNoLosses = 1e9
)

// Compute derives the full statistic set from a daily return series and the
// matching portfolio value series, using the default risk-free rate.
func Compute(returns, values []float64) domain.PerformanceMetrics {
	return ComputeWithRiskFree(returns, values, DefaultRiskFreeRate)
}

// ComputeWithRiskFree is Compute with an explicit annual risk-free rate.
// Ratios whose denominator is 0 are 0 by definition; any other non-finite
// intermediate is clamped to 0 and the metric name recorded in Clamped.
func ComputeWithRiskFree(returns, values []float64, riskFree float64) domain.PerformanceMetrics {
	var m domain.PerformanceMetrics
	if len(returns) == 0 || len(values) == 0 {
		return m
	}

	clamped := &m.Clamped

	totalReturn := 0.0
	if values[0] != 0 {
		totalReturn = values[len(values)-1]/values[0] - 1
	}
	m.TotalReturn = sanitize("total_return", totalReturn, clamped)

	annualized := annualizedReturn(m.TotalReturn, len(returns))
	m.AnnualizedReturn = sanitize("annualized_return", annualized, clamped)

	m.Volatility = sanitize("volatility",
		computeSampleStddev(returns)*math.Sqrt(TradingDaysPerYear), clamped)

	if m.Volatility == 0 {
		m.SharpeRatio = 0
	} else {
		m.SharpeRatio = sanitize("sharpe_ratio",
			(m.AnnualizedReturn-riskFree)/m.Volatility, clamped)
	}

	drawdown := drawdownFromValues(values)
	m.MaxDrawdown = sanitize("max_drawdown", minOf(drawdown), clamped)
	m.MaxDrawdownDuration = maxDrawdownDuration(drawdown)

	m.SortinoRatio = sanitize("sortino_ratio",
		sortinoRatio(returns, m.AnnualizedReturn, riskFree), clamped)

	if m.MaxDrawdown == 0 {
		m.CalmarRatio = 0
	} else {
		m.CalmarRatio = sanitize("calmar_ratio",
			m.AnnualizedReturn/math.Abs(m.MaxDrawdown), clamped)
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	var95 := computePercentile(sorted, 0.05)
	m.VaR95 = sanitize("var_95", var95, clamped)
	m.CVaR95 = sanitize("cvar_95", cvar(sorted, var95), clamped)

	m.WinRate = sanitize("win_rate", winRate(returns), clamped)
	m.ProfitFactor = sanitize("profit_factor", profitFactor(returns), clamped)

	return m
}

// annualizedReturn converts a total return over numPeriods trading days to
// an annual rate.
func annualizedReturn(totalReturn float64, numPeriods int) float64 {
	if numPeriods == 0 {
		return 0
	}
	return math.Pow(1+totalReturn, TradingDaysPerYear/float64(numPeriods)) - 1
}

// sortinoRatio penalizes only downside deviation. 0 when there are no
// negative returns or the downside deviation is 0.
func sortinoRatio(returns []float64, annualized, riskFree float64) float64 {
	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) == 0 {
		return 0
	}
	dev := computeSampleStddev(downside)
	if dev == 0 {
		return 0
	}
	return (annualized - riskFree) / (dev * math.Sqrt(TradingDaysPerYear))
}

// drawdownFromValues rebuilds the drawdown series from a value series.
// drawdown[t] = (value[t] - peak) / peak, always <= 0.
func drawdownFromValues(values []float64) []float64 {
	drawdown := make([]float64, len(values))
	peak := math.Inf(-1)
	for i, v := range values {
		if v > peak {
			peak = v
		}
		if peak != 0 {
			drawdown[i] = (v - peak) / peak
		}
	}
	return drawdown
}

// maxDrawdownDuration is the longest run of trading days spent below the
// prior peak. 0 for a monotonically non-decreasing value series.
func maxDrawdownDuration(drawdown []float64) int {
	longest := 0
	current := 0
	for _, d := range drawdown {
		if d < 0 {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return longest
}

// cvar is the mean of returns at or below the VaR threshold; the threshold
// itself when no returns fall under it.
func cvar(sorted []float64, var95 float64) float64 {
	sum := 0.0
	count := 0
	for _, r := range sorted {
		if r <= var95 {
			sum += r
			count++
		}
	}
	if count == 0 {
		return var95
	}
	return sum / float64(count)
}

func winRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(returns))
}

// profitFactor is sum(gains)/|sum(losses)|. With gains and no losses it is
// the profitFactorNoLosses sentinel rather than a division by zero.
func profitFactor(returns []float64) float64 {
	gains := 0.0
	losses := 0.0
	for _, r := range returns {
		if r > 0 {
			gains += r
		} else if r < 0 {
			losses += -r
		}
	}
	if losses == 0 {
		if gains > 0 {
			return profitFactorNoLosses
		}
		return 0
	}
	return gains / losses
}

// computeMean is the arithmetic mean.
func computeMean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// computeSampleStddev is the sample standard deviation (n-1 denominator).
func computeSampleStddev(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	mean := computeMean(xs)
	sumSq := 0.0
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// computePercentile uses linear interpolation over a pre-sorted slice.
func computePercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

func minOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	min := xs[0]
	for _, x := range xs[1:] {
		if x < min {
			min = x
		}
	}
	return min
}

// sanitize clamps NaN/Inf to 0 and records the metric name.
func sanitize(name string, v float64, clamped *[]string) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		*clamped = append(*clamped, name)
		return 0
	}
	return v
}
