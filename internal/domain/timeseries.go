package domain

import (
	"fmt"
	"time"
)

// PricePoint is one daily observation of an adjusted closing price.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries holds the ordered daily price history for one symbol.
// Dates are strictly increasing with no duplicates. Immutable once built.
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// Validate checks the series ordering invariant.
func (s *PriceSeries) Validate() error {
	if s.Symbol == "" {
		return fmt.Errorf("%w: price series has empty symbol", ErrInvalidConfig)
	}
	for i := 1; i < len(s.Points); i++ {
		if !s.Points[i].Date.After(s.Points[i-1].Date) {
			return fmt.Errorf("%w: %s dates not strictly increasing at %s",
				ErrInvalidConfig, s.Symbol, s.Points[i].Date.Format("2006-01-02"))
		}
	}
	return nil
}

// AlignedPriceMatrix holds per-symbol price columns over a shared trading-date
// axis. Every column has the same length as Dates. Symbols preserves the
// caller's ordering so that downstream iteration is deterministic.
type AlignedPriceMatrix struct {
	Dates   []time.Time
	Symbols []string
	Prices  map[string][]float64
}

// Len returns the number of aligned trading dates.
func (m *AlignedPriceMatrix) Len() int {
	return len(m.Dates)
}

// Column returns the price column for a symbol, or nil if absent.
func (m *AlignedPriceMatrix) Column(symbol string) []float64 {
	return m.Prices[symbol]
}

// PriceBar is a stored daily bar, the persistence shape of one PricePoint.
type PriceBar struct {
	Symbol string
	Date   time.Time
	Close  float64
}
