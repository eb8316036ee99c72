package csvdata

import (
	"errors"
	"strings"
	"testing"
	"time"

	"portfolio-backtest-lab/internal/domain"
)

func TestReadSeries_WithHeader(t *testing.T) {
	input := "date,close\n2024-01-02,400.5\n2024-01-03,402.25\n"

	series, err := ReadSeries("SPY", strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadSeries failed: %v", err)
	}
	if series.Symbol != "SPY" {
		t.Errorf("symbol = %s", series.Symbol)
	}
	if len(series.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(series.Points))
	}
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if !series.Points[0].Date.Equal(want) {
		t.Errorf("first date = %s, expected %s", series.Points[0].Date, want)
	}
	if series.Points[0].Close != 400.5 {
		t.Errorf("first close = %g, expected 400.5", series.Points[0].Close)
	}
}

func TestReadSeries_WithoutHeader(t *testing.T) {
	input := "2024-01-02,400.5\n2024-01-03,402.25\n"

	series, err := ReadSeries("SPY", strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadSeries failed: %v", err)
	}
	if len(series.Points) != 2 {
		t.Errorf("header detection swallowed a data row: %d points", len(series.Points))
	}
}

func TestReadSeries_ParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad date", "2024-13-45,400.5\n"},
		{"bad close", "2024-01-02,abc\n"},
		{"wrong column count", "2024-01-02,400.5,extra\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadSeries("SPY", strings.NewReader(tt.input)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestReadSeries_Empty(t *testing.T) {
	_, err := ReadSeries("SPY", strings.NewReader("date,close\n"))
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestReadSeries_RejectsOutOfOrderDates(t *testing.T) {
	input := "2024-01-03,402.25\n2024-01-02,400.5\n"
	_, err := ReadSeries("SPY", strings.NewReader(input))
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestToBars(t *testing.T) {
	series := &domain.PriceSeries{
		Symbol: "SPY",
		Points: []domain.PricePoint{
			{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 400.5},
			{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Close: 402.25},
		},
	}

	bars := ToBars(series)
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Symbol != "SPY" || bars[0].Close != 400.5 {
		t.Errorf("unexpected first bar: %+v", bars[0])
	}
	if !bars[1].Date.Equal(series.Points[1].Date) {
		t.Errorf("dates not carried over: %s", bars[1].Date)
	}
}
