package strategy

import (
	"math"
	"sort"
)

// equalWeights assigns 1/n to every symbol.
func equalWeights(symbols []string) map[string]float64 {
	w := make(map[string]float64, len(symbols))
	if len(symbols) == 0 {
		return w
	}
	share := 1.0 / float64(len(symbols))
	for _, sym := range symbols {
		w[sym] = share
	}
	return w
}

// zeroWeights assigns 0 to every symbol (hold cash).
func zeroWeights(symbols []string) map[string]float64 {
	w := make(map[string]float64, len(symbols))
	for _, sym := range symbols {
		w[sym] = 0
	}
	return w
}

// copyTargets returns the target allocations limited to the given symbols.
func copyTargets(symbols []string, targets map[string]float64) map[string]float64 {
	w := make(map[string]float64, len(symbols))
	for _, sym := range symbols {
		w[sym] = targets[sym]
	}
	return w
}

// trailingReturn is the total return of prices over the lookback window
// ending at t: prices[t]/prices[t-lookback] - 1. Requires t >= lookback.
func trailingReturn(prices []float64, t, lookback int) float64 {
	base := prices[t-lookback]
	if base == 0 {
		return 0
	}
	return prices[t]/base - 1
}

// movingAverage is the mean of prices over the window of the given period
// ending at t. Requires t >= period-1.
func movingAverage(prices []float64, t, period int) float64 {
	sum := 0.0
	for i := t - period + 1; i <= t; i++ {
		sum += prices[i]
	}
	return sum / float64(period)
}

// trailingVolatility is the sample standard deviation of the daily simple
// returns over the window of the given length ending at t. Requires
// t >= window.
func trailingVolatility(prices []float64, t, window int) float64 {
	returns := make([]float64, 0, window)
	for i := t - window + 1; i <= t; i++ {
		if prices[i-1] != 0 {
			returns = append(returns, prices[i]/prices[i-1]-1)
		}
	}
	n := len(returns)
	if n < 2 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(n)
	sumSq := 0.0
	for _, r := range returns {
		d := r - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// scoredSymbol pairs a symbol with its ranking score.
type scoredSymbol struct {
	symbol string
	score  float64
}

// rankDescending sorts scores high-to-low. SliceStable keeps portfolio order
// on ties so ranking stays deterministic.
func rankDescending(scores []scoredSymbol) {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})
}

// rankAscending sorts scores low-to-high, stable on ties.
func rankAscending(scores []scoredSymbol) {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score < scores[j].score
	})
}

// selectTop equal-weights the first n scored symbols across all symbols.
// When fewer candidates than n are available it selects what is there; an
// empty candidate list yields all-zero weights.
func selectTop(symbols []string, scores []scoredSymbol, n int) map[string]float64 {
	if n > len(scores) {
		n = len(scores)
	}
	if n == 0 {
		return zeroWeights(symbols)
	}
	w := zeroWeights(symbols)
	share := 1.0 / float64(n)
	for _, s := range scores[:n] {
		w[s.symbol] = share
	}
	return w
}
