package backtest

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"portfolio-backtest-lab/internal/domain"
	"portfolio-backtest-lab/internal/strategy"
)

func engineMatrix(symbols []string, cols map[string][]float64) *domain.AlignedPriceMatrix {
	n := 0
	for _, col := range cols {
		n = len(col)
		break
	}
	dates := make([]time.Time, n)
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return &domain.AlignedPriceMatrix{Dates: dates, Symbols: symbols, Prices: cols}
}

func twoAssetConfig(freq domain.RebalanceFrequency, strat domain.StrategyConfig) domain.BacktestConfig {
	return domain.BacktestConfig{
		Holdings: []domain.Holding{
			{Symbol: "A", Allocation: 0.6},
			{Symbol: "B", Allocation: 0.4},
		},
		Strategy:       strat,
		InitialCapital: 10000,
		Frequency:      freq,
	}
}

func mustRun(t *testing.T, cfg domain.BacktestConfig, matrix *domain.AlignedPriceMatrix) *domain.BacktestResult {
	t.Helper()
	strat, err := strategy.FromConfig(cfg.Strategy)
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	result, err := NewEngine(strat, cfg).Run(matrix)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return result
}

func hasWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestEngine_BuyAndHoldTwoAssets(t *testing.T) {
	matrix := engineMatrix([]string{"A", "B"}, map[string][]float64{
		"A": {100, 110, 121},
		"B": {50, 45, 49.5},
	})
	cfg := twoAssetConfig(domain.FrequencyNone,
		domain.StrategyConfig{Type: domain.StrategyTypeBuyAndHold})

	result := mustRun(t, cfg, matrix)

	// 60 shares of A and 80 of B from the initial 6000/4000 split.
	wantValues := []float64{10000, 10200, 11220}
	for i, want := range wantValues {
		if math.Abs(result.PortfolioValues[i]-want) > 1e-9 {
			t.Errorf("value[%d] = %g, expected %g", i, result.PortfolioValues[i], want)
		}
	}

	if result.Returns[0] != 0 {
		t.Errorf("returns[0] = %g, expected 0", result.Returns[0])
	}
	if math.Abs(result.Returns[1]-0.02) > 1e-12 {
		t.Errorf("returns[1] = %g, expected 0.02", result.Returns[1])
	}
	if math.Abs(result.Returns[2]-0.1) > 1e-12 {
		t.Errorf("returns[2] = %g, expected 0.1", result.Returns[2])
	}

	if len(result.RebalanceDates) != 0 {
		t.Errorf("expected no rebalance dates under frequency none, got %v", result.RebalanceDates)
	}
	if math.Abs(result.Metrics.TotalReturn-0.122) > 1e-12 {
		t.Errorf("total return = %g, expected 0.122", result.Metrics.TotalReturn)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
}

func TestEngine_MomentumRebalancesToWinner(t *testing.T) {
	matrix := engineMatrix([]string{"A", "B"}, map[string][]float64{
		"A": {100, 110, 121},
		"B": {100, 100, 100},
	})
	lookback, topN := 1, 1
	cfg := twoAssetConfig(domain.FrequencyDaily, domain.StrategyConfig{
		Type:           domain.StrategyTypeMomentum,
		LookbackPeriod: &lookback,
		TopN:           &topN,
	})

	result := mustRun(t, cfg, matrix)

	// From the first rebalance on, the whole portfolio rides the winner.
	if math.Abs(result.Weights["A"][1]-1.0) > 1e-9 {
		t.Errorf("weight A after rebalance = %g, expected 1.0", result.Weights["A"][1])
	}
	if result.Weights["B"][1] != 0 {
		t.Errorf("weight B after rebalance = %g, expected 0", result.Weights["B"][1])
	}
	if len(result.RebalanceDates) != 2 {
		t.Errorf("expected 2 rebalance dates under daily frequency, got %d", len(result.RebalanceDates))
	}
}

func TestEngine_DrawdownConventions(t *testing.T) {
	matrix := engineMatrix([]string{"A", "B"}, map[string][]float64{
		"A": {100, 90, 95, 105},
		"B": {100, 90, 95, 105},
	})
	cfg := twoAssetConfig(domain.FrequencyNone,
		domain.StrategyConfig{Type: domain.StrategyTypeBuyAndHold})

	result := mustRun(t, cfg, matrix)

	if result.Drawdown[0] != 0 {
		t.Errorf("drawdown[0] = %g, expected 0", result.Drawdown[0])
	}
	for i, d := range result.Drawdown {
		if d > 0 {
			t.Errorf("drawdown[%d] = %g, must never be positive", i, d)
		}
	}
	if math.Abs(result.Drawdown[1]-(-0.1)) > 1e-12 {
		t.Errorf("drawdown[1] = %g, expected -0.1", result.Drawdown[1])
	}
	if result.Drawdown[3] != 0 {
		t.Errorf("drawdown[3] = %g, expected 0 at a new peak", result.Drawdown[3])
	}
}

func TestEngine_Deterministic(t *testing.T) {
	matrix := engineMatrix([]string{"A", "B"}, map[string][]float64{
		"A": {100, 104, 99, 108, 112, 110},
		"B": {50, 51, 52, 50, 53, 54},
	})
	lookback := 2
	cfg := twoAssetConfig(domain.FrequencyDaily, domain.StrategyConfig{
		Type:           domain.StrategyTypeMomentum,
		LookbackPeriod: &lookback,
	})

	first := mustRun(t, cfg, matrix)
	second := mustRun(t, cfg, matrix)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical configurations produced different results")
	}
}

func TestEngine_RepairsBadTick(t *testing.T) {
	matrix := engineMatrix([]string{"A", "B"}, map[string][]float64{
		"A": {100, 110, 121},
		"B": {50, -1, 49.5},
	})
	cfg := twoAssetConfig(domain.FrequencyNone,
		domain.StrategyConfig{Type: domain.StrategyTypeBuyAndHold})

	result := mustRun(t, cfg, matrix)

	// B's bad day-1 tick carries the day-0 price forward.
	want := 60*110 + 80*50.0
	if math.Abs(result.PortfolioValues[1]-want) > 1e-9 {
		t.Errorf("value[1] = %g, expected %g", result.PortfolioValues[1], want)
	}
	if !hasWarning(result.Warnings, "bad ticks replaced") {
		t.Errorf("expected a repair warning, got %v", result.Warnings)
	}
}

func TestEngine_AllSymbolsBadOnOneDate(t *testing.T) {
	matrix := engineMatrix([]string{"A", "B"}, map[string][]float64{
		"A": {100, 0, 121},
		"B": {50, -1, 49.5},
	})
	cfg := twoAssetConfig(domain.FrequencyNone,
		domain.StrategyConfig{Type: domain.StrategyTypeBuyAndHold})
	strat, _ := strategy.FromConfig(cfg.Strategy)

	_, err := NewEngine(strat, cfg).Run(matrix)
	if !errors.Is(err, domain.ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
}

func TestEngine_SymbolWithNoValidPrices(t *testing.T) {
	matrix := engineMatrix([]string{"A", "B"}, map[string][]float64{
		"A": {100, 110, 121},
		"B": {0, 0, 0},
	})
	cfg := twoAssetConfig(domain.FrequencyNone,
		domain.StrategyConfig{Type: domain.StrategyTypeBuyAndHold})
	strat, _ := strategy.FromConfig(cfg.Strategy)

	_, err := NewEngine(strat, cfg).Run(matrix)
	if !errors.Is(err, domain.ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
}

func TestEngine_AllZeroWeightsHoldsCash(t *testing.T) {
	matrix := engineMatrix([]string{"A", "B"}, map[string][]float64{
		"A": {100, 90, 80},
		"B": {100, 95, 90},
	})
	lookback, topN, positive := 1, 1, true
	cfg := twoAssetConfig(domain.FrequencyDaily, domain.StrategyConfig{
		Type:                domain.StrategyTypeMomentum,
		LookbackPeriod:      &lookback,
		TopN:                &topN,
		PositiveReturnsOnly: &positive,
	})

	result := mustRun(t, cfg, matrix)

	// Day 1: both symbols negative, the portfolio moves to cash and holds.
	if math.Abs(result.PortfolioValues[1]-9200) > 1e-9 {
		t.Errorf("value[1] = %g, expected 9200", result.PortfolioValues[1])
	}
	if math.Abs(result.PortfolioValues[2]-9200) > 1e-9 {
		t.Errorf("value[2] = %g, expected 9200 while in cash", result.PortfolioValues[2])
	}
	if !hasWarning(result.Warnings, "holding cash") {
		t.Errorf("expected a holding-cash warning, got %v", result.Warnings)
	}
}

// fixedWeightsStrategy returns the same raw weights at every call, letting
// tests exercise the engine's normalization directly.
type fixedWeightsStrategy struct {
	weights map[string]float64
}

func (s *fixedWeightsStrategy) ID() string { return "fixed_weights" }

func (s *fixedWeightsStrategy) SelectWeights(input *strategy.Input) (map[string]float64, error) {
	w := make(map[string]float64, len(s.weights))
	for sym, v := range s.weights {
		w[sym] = v
	}
	return w, nil
}

func TestEngine_RenormalizesDriftedWeightSum(t *testing.T) {
	matrix := engineMatrix([]string{"A", "B"}, map[string][]float64{
		"A": {100, 110},
		"B": {50, 45},
	})
	cfg := twoAssetConfig(domain.FrequencyNone, domain.StrategyConfig{Type: domain.StrategyTypeBuyAndHold})

	strat := &fixedWeightsStrategy{weights: map[string]float64{"A": 0.5, "B": 0.3}}
	result, err := NewEngine(strat, cfg).Run(matrix)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !hasWarning(result.Warnings, "renormalized") {
		t.Fatalf("expected renormalization warning, got %v", result.Warnings)
	}
	if math.Abs(result.Weights["A"][0]-0.625) > 1e-9 {
		t.Errorf("weight A = %g, expected 0.625 after renormalization", result.Weights["A"][0])
	}
}

func TestEngine_ClampsNegativeWeights(t *testing.T) {
	matrix := engineMatrix([]string{"A", "B"}, map[string][]float64{
		"A": {100, 110},
		"B": {50, 45},
	})
	cfg := twoAssetConfig(domain.FrequencyNone, domain.StrategyConfig{Type: domain.StrategyTypeBuyAndHold})

	strat := &fixedWeightsStrategy{weights: map[string]float64{"A": -0.5, "B": 0.5}}
	result, err := NewEngine(strat, cfg).Run(matrix)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !hasWarning(result.Warnings, "clamped") {
		t.Fatalf("expected clamp warning, got %v", result.Warnings)
	}
	if result.Weights["A"][0] != 0 {
		t.Errorf("weight A = %g, expected 0 after clamping", result.Weights["A"][0])
	}
	if math.Abs(result.Weights["B"][0]-1.0) > 1e-9 {
		t.Errorf("weight B = %g, expected 1.0", result.Weights["B"][0])
	}
}

func TestEngine_RejectsDegenerateInputs(t *testing.T) {
	cfg := twoAssetConfig(domain.FrequencyNone,
		domain.StrategyConfig{Type: domain.StrategyTypeBuyAndHold})
	strat, _ := strategy.FromConfig(cfg.Strategy)

	one := engineMatrix([]string{"A", "B"}, map[string][]float64{"A": {100}, "B": {50}})
	if _, err := NewEngine(strat, cfg).Run(one); !errors.Is(err, domain.ErrInsufficientData) {
		t.Errorf("single date: expected ErrInsufficientData, got %v", err)
	}

	missing := engineMatrix([]string{"A"}, map[string][]float64{"A": {100, 110}})
	if _, err := NewEngine(strat, cfg).Run(missing); !errors.Is(err, domain.ErrInsufficientData) {
		t.Errorf("missing column: expected ErrInsufficientData, got %v", err)
	}

	bad := cfg
	bad.Frequency = "fortnightly"
	full := engineMatrix([]string{"A", "B"}, map[string][]float64{"A": {100, 110}, "B": {50, 45}})
	if _, err := NewEngine(strat, bad).Run(full); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("bad frequency: expected ErrInvalidConfig, got %v", err)
	}
}
