package metrics

import (
	"fmt"
	"math"

	"portfolio-backtest-lab/internal/domain"
)

// MinComparisonPeriods is the fewest overlapping return periods accepted for
// a meaningful benchmark comparison.
const MinComparisonPeriods = 10

// CompareToBenchmark computes the relative statistic set of a portfolio
// return series against a benchmark return series over the same dates.
// When the series lengths differ, the overlapping tail is used. Returns
// domain.ErrInsufficientData when fewer than MinComparisonPeriods overlap.
// Non-finite intermediates are clamped to 0 so every field stays finite.
func CompareToBenchmark(portfolioReturns, benchmarkReturns []float64, symbol string) (*domain.BenchmarkComparison, error) {
	n := len(portfolioReturns)
	if len(benchmarkReturns) < n {
		n = len(benchmarkReturns)
	}
	if n < MinComparisonPeriods {
		return nil, fmt.Errorf("%w: only %d overlapping periods with benchmark %s, need %d",
			domain.ErrInsufficientData, n, symbol, MinComparisonPeriods)
	}

	portfolio := portfolioReturns[len(portfolioReturns)-n:]
	benchmark := benchmarkReturns[len(benchmarkReturns)-n:]

	benchTotal := compoundReturn(benchmark)
	benchAnnualized := annualizedReturn(benchTotal, n)
	benchVolatility := computeSampleStddev(benchmark) * math.Sqrt(TradingDaysPerYear)
	benchSharpe := 0.0
	if benchVolatility != 0 {
		benchSharpe = (benchAnnualized - DefaultRiskFreeRate) / benchVolatility
	}

	portAnnualized := annualizedReturn(compoundReturn(portfolio), n)

	covariance := sampleCovariance(portfolio, benchmark)
	benchVariance := sampleVariance(benchmark)
	beta := 0.0
	if benchVariance != 0 {
		beta = covariance / benchVariance
	}

	alpha := portAnnualized - beta*benchAnnualized

	correlation := 0.0
	portStddev := computeSampleStddev(portfolio)
	benchStddev := computeSampleStddev(benchmark)
	if portStddev != 0 && benchStddev != 0 {
		correlation = covariance / (portStddev * benchStddev)
	}

	diffs := make([]float64, n)
	for i := range diffs {
		diffs[i] = portfolio[i] - benchmark[i]
	}
	trackingError := computeSampleStddev(diffs) * math.Sqrt(TradingDaysPerYear)

	informationRatio := 0.0
	if trackingError != 0 {
		informationRatio = alpha / trackingError
	}

	upCapture, downCapture := captureRatios(portfolio, benchmark)

	return &domain.BenchmarkComparison{
		Symbol:           symbol,
		TotalReturn:      finite(benchTotal),
		AnnualizedReturn: finite(benchAnnualized),
		Volatility:       finite(benchVolatility),
		SharpeRatio:      finite(benchSharpe),
		Beta:             finite(beta),
		Alpha:            finite(alpha),
		Correlation:      finite(correlation),
		TrackingError:    finite(trackingError),
		InformationRatio: finite(informationRatio),
		UpCapture:        finite(upCapture),
		DownCapture:      finite(downCapture),
	}, nil
}

// captureRatios compares average portfolio returns on benchmark-up and
// benchmark-down days against the benchmark's own averages on those days.
func captureRatios(portfolio, benchmark []float64) (up, down float64) {
	var upPort, upBench, downPort, downBench []float64
	for i, b := range benchmark {
		switch {
		case b > 0:
			upPort = append(upPort, portfolio[i])
			upBench = append(upBench, b)
		case b < 0:
			downPort = append(downPort, portfolio[i])
			downBench = append(downBench, b)
		}
	}
	if len(upBench) > 0 {
		if m := computeMean(upBench); m != 0 {
			up = computeMean(upPort) / m
		}
	}
	if len(downBench) > 0 {
		if m := computeMean(downBench); m != 0 {
			down = computeMean(downPort) / m
		}
	}
	return up, down
}

// compoundReturn is the total return from compounding per-period returns.
func compoundReturn(returns []float64) float64 {
	product := 1.0
	for _, r := range returns {
		product *= 1 + r
	}
	return product - 1
}

// sampleCovariance uses the n-1 denominator, matching computeSampleStddev
// so that a series compared against itself yields beta and correlation of
// exactly 1.
func sampleCovariance(xs, ys []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	meanX := computeMean(xs)
	meanY := computeMean(ys)
	sum := 0.0
	for i := range xs {
		sum += (xs[i] - meanX) * (ys[i] - meanY)
	}
	return sum / float64(n-1)
}

func sampleVariance(xs []float64) float64 {
	return sampleCovariance(xs, xs)
}

// finite clamps NaN/Inf to 0.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
