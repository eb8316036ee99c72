package metrics

import (
	"testing"
	"time"

	"portfolio-backtest-lab/internal/domain"
)

func assetMatrix(cols map[string][]float64) *domain.AlignedPriceMatrix {
	n := 0
	symbols := make([]string, 0, len(cols))
	for sym, col := range cols {
		symbols = append(symbols, sym)
		n = len(col)
	}
	dates := make([]time.Time, n)
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return &domain.AlignedPriceMatrix{Dates: dates, Symbols: symbols, Prices: cols}
}

func TestComputeAssetPerformance(t *testing.T) {
	m := assetMatrix(map[string][]float64{
		"A": {100, 110, 121},
		"B": {50, 45, 49.5},
	})
	weights := map[string][]float64{
		"A": {0.6, 0.6, 0.6},
		"B": {0.4, 0.4, 0.4},
	}
	holdings := []domain.Holding{
		{Symbol: "A", Allocation: 0.6},
		{Symbol: "B", Allocation: 0.4},
	}

	perfs := ComputeAssetPerformance(m, weights, holdings, DefaultRiskFreeRate)
	if len(perfs) != 2 {
		t.Fatalf("expected 2 asset entries, got %d", len(perfs))
	}

	a := perfs[0]
	if a.Symbol != "A" {
		t.Fatalf("expected holdings order preserved, got %s first", a.Symbol)
	}
	if !almostEqual(a.TotalReturn, 0.21, 1e-9) {
		t.Errorf("A total return = %g, expected 0.21", a.TotalReturn)
	}
	if !almostEqual(a.AverageWeight, 0.6, 1e-12) {
		t.Errorf("A average weight = %g, expected 0.6", a.AverageWeight)
	}
	if !almostEqual(a.ContributionEstimate, 0.6*0.21, 1e-9) {
		t.Errorf("A contribution = %g, expected %g", a.ContributionEstimate, 0.6*0.21)
	}
	if !almostEqual(a.TimeInvested, 1, 1e-12) {
		t.Errorf("A time invested = %g, expected 1", a.TimeInvested)
	}
	if a.MaxDrawdown != 0 {
		t.Errorf("A max drawdown = %g, expected 0 for a rising price", a.MaxDrawdown)
	}

	b := perfs[1]
	if !almostEqual(b.TotalReturn, -0.01, 1e-9) {
		t.Errorf("B total return = %g, expected -0.01", b.TotalReturn)
	}
	if !almostEqual(b.MaxDrawdown, -0.1, 1e-9) {
		t.Errorf("B max drawdown = %g, expected -0.1", b.MaxDrawdown)
	}
}

func TestComputeAssetPerformance_TimeInvested(t *testing.T) {
	m := assetMatrix(map[string][]float64{"A": {100, 101, 102, 103}})
	weights := map[string][]float64{"A": {0.5, 0, 0, 0.5}}
	holdings := []domain.Holding{{Symbol: "A", Allocation: 0.5}}

	perfs := ComputeAssetPerformance(m, weights, holdings, DefaultRiskFreeRate)
	if !almostEqual(perfs[0].TimeInvested, 0.5, 1e-12) {
		t.Errorf("time invested = %g, expected 0.5", perfs[0].TimeInvested)
	}
	if !almostEqual(perfs[0].InitialWeight, 0.5, 1e-12) || !almostEqual(perfs[0].FinalWeight, 0.5, 1e-12) {
		t.Errorf("initial/final weight = %g/%g, expected 0.5/0.5",
			perfs[0].InitialWeight, perfs[0].FinalWeight)
	}
}

func TestComputeAssetPerformance_MissingTrajectory(t *testing.T) {
	m := assetMatrix(map[string][]float64{"A": {100, 110}})
	holdings := []domain.Holding{{Symbol: "A", Allocation: 1}}

	perfs := ComputeAssetPerformance(m, map[string][]float64{}, holdings, DefaultRiskFreeRate)
	if len(perfs) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(perfs))
	}
	if perfs[0].Symbol != "A" || perfs[0].Allocation != 1 {
		t.Errorf("identity fields not carried: %+v", perfs[0])
	}
	if perfs[0].TotalReturn != 0 || perfs[0].TimeInvested != 0 {
		t.Errorf("expected zeroed statistics without a weight trajectory: %+v", perfs[0])
	}
}
