package metrics

import (
	"math"

	"portfolio-backtest-lab/internal/domain"
)

// investedThreshold separates genuinely held weight from rounding residue.
const investedThreshold = 0.001

// ComputeAssetPerformance derives per-symbol statistics for a finished run:
// weight trajectory summary, the asset's own return/risk figures, and a
// contribution figure.
//
// ContributionEstimate back-solves average weight x asset total return. It
// is an approximation of the asset's contribution to portfolio return, not
// an exact attribution, and is labeled accordingly.
func ComputeAssetPerformance(matrix *domain.AlignedPriceMatrix, weights map[string][]float64, holdings []domain.Holding, riskFree float64) []domain.AssetPerformance {
	results := make([]domain.AssetPerformance, 0, len(holdings))

	for _, h := range holdings {
		trajectory := weights[h.Symbol]
		prices := matrix.Column(h.Symbol)
		if len(trajectory) == 0 || len(prices) < 2 {
			results = append(results, domain.AssetPerformance{
				Symbol:     h.Symbol,
				Allocation: h.Allocation,
			})
			continue
		}

		perf := domain.AssetPerformance{
			Symbol:        h.Symbol,
			Allocation:    h.Allocation,
			InitialWeight: trajectory[0],
			FinalWeight:   trajectory[len(trajectory)-1],
			AverageWeight: computeMean(trajectory),
			TimeInvested:  timeInvested(trajectory),
		}

		returns := returnsFromPrices(prices)
		perf.TotalReturn = finite(compoundReturn(returns))
		perf.AnnualizedReturn = finite(annualizedReturn(perf.TotalReturn, len(returns)))
		perf.Volatility = finite(computeSampleStddev(returns) * math.Sqrt(TradingDaysPerYear))
		if perf.Volatility != 0 {
			perf.SharpeRatio = finite((perf.AnnualizedReturn - riskFree) / perf.Volatility)
		}
		perf.MaxDrawdown = finite(minOf(drawdownFromValues(prices)))
		perf.ContributionEstimate = finite(perf.AverageWeight * perf.TotalReturn)

		results = append(results, perf)
	}

	return results
}

// timeInvested is the fraction of periods with weight above the threshold.
func timeInvested(weights []float64) float64 {
	if len(weights) == 0 {
		return 0
	}
	invested := 0
	for _, w := range weights {
		if w > investedThreshold {
			invested++
		}
	}
	return float64(invested) / float64(len(weights))
}

// returnsFromPrices converts a price column into daily simple returns.
func returnsFromPrices(prices []float64) []float64 {
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, prices[i]/prices[i-1]-1)
	}
	return returns
}
