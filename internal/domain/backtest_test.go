package domain

import (
	"errors"
	"testing"
	"time"
)

func validConfig() BacktestConfig {
	return BacktestConfig{
		Holdings:       []Holding{{Symbol: "SPY", Allocation: 0.6}, {Symbol: "AGG", Allocation: 0.4}},
		Strategy:       StrategyConfig{Type: StrategyTypeBuyAndHold},
		InitialCapital: 10000,
		Frequency:      FrequencyMonthly,
	}
}

func TestBacktestConfigValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := validConfig()
		if err := cfg.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("zero capital", func(t *testing.T) {
		cfg := validConfig()
		cfg.InitialCapital = 0
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("want ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("negative capital", func(t *testing.T) {
		cfg := validConfig()
		cfg.InitialCapital = -100
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("want ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("unknown frequency", func(t *testing.T) {
		cfg := validConfig()
		cfg.Frequency = "fortnightly"
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("want ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("end before start", func(t *testing.T) {
		cfg := validConfig()
		cfg.StartDate = time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
		cfg.EndDate = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("want ErrInvalidConfig, got %v", err)
		}
	})
}

func TestPriceSeriesValidate(t *testing.T) {
	day := func(n int) time.Time {
		return time.Date(2023, 1, n, 0, 0, 0, 0, time.UTC)
	}

	t.Run("ascending dates", func(t *testing.T) {
		s := &PriceSeries{Symbol: "SPY", Points: []PricePoint{
			{Date: day(1), Close: 100},
			{Date: day(2), Close: 101},
		}}
		if err := s.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("duplicate date", func(t *testing.T) {
		s := &PriceSeries{Symbol: "SPY", Points: []PricePoint{
			{Date: day(1), Close: 100},
			{Date: day(1), Close: 101},
		}}
		if err := s.Validate(); err == nil {
			t.Fatal("expected error for duplicate date")
		}
	})

	t.Run("out of order", func(t *testing.T) {
		s := &PriceSeries{Symbol: "SPY", Points: []PricePoint{
			{Date: day(2), Close: 100},
			{Date: day(1), Close: 101},
		}}
		if err := s.Validate(); err == nil {
			t.Fatal("expected error for out-of-order dates")
		}
	})
}
