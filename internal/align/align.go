// Package align merges per-symbol price series onto a common trading-date
// axis. The axis is the union of all observed dates: interior gaps are
// forward filled with the most recent known price, leading gaps carry the
// first available price backward.
package align

import (
	"fmt"
	"sort"
	"time"

	"portfolio-backtest-lab/internal/domain"
)

// MinAlignedDates is the smallest usable axis; anything shorter cannot
// produce a return series.
const MinAlignedDates = 2

// Align builds an AlignedPriceMatrix from the given series. Pure function of
// its inputs. Returns domain.ErrInsufficientData when any series is empty or
// when fewer than MinAlignedDates dates remain.
func Align(series []*domain.PriceSeries) (*domain.AlignedPriceMatrix, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no price series supplied", domain.ErrInsufficientData)
	}

	for _, s := range series {
		if len(s.Points) == 0 {
			return nil, fmt.Errorf("%w: %s has no price points for the requested period",
				domain.ErrInsufficientData, s.Symbol)
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}

	dates := unionDates(series)
	if len(dates) < MinAlignedDates {
		return nil, fmt.Errorf("%w: only %d aligned trading dates, need at least %d",
			domain.ErrInsufficientData, len(dates), MinAlignedDates)
	}

	matrix := &domain.AlignedPriceMatrix{
		Dates:   dates,
		Symbols: make([]string, 0, len(series)),
		Prices:  make(map[string][]float64, len(series)),
	}

	for _, s := range series {
		matrix.Symbols = append(matrix.Symbols, s.Symbol)
		matrix.Prices[s.Symbol] = fillColumn(s, dates)
	}

	return matrix, nil
}

// unionDates collects the sorted union of all per-series dates.
func unionDates(series []*domain.PriceSeries) []time.Time {
	seen := make(map[int64]time.Time)
	for _, s := range series {
		for _, p := range s.Points {
			d := p.Date.UTC().Truncate(24 * time.Hour)
			seen[d.Unix()] = d
		}
	}

	keys := make([]int64, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	dates := make([]time.Time, len(keys))
	for i, k := range keys {
		dates[i] = seen[k]
	}
	return dates
}

// fillColumn maps one series onto the shared date axis. Interior gaps take
// the most recent known price; leading gaps take the first observed price.
func fillColumn(s *domain.PriceSeries, dates []time.Time) []float64 {
	column := make([]float64, len(dates))

	next := 0
	last := s.Points[0].Close // backward carry for leading gaps
	for i, d := range dates {
		for next < len(s.Points) && !s.Points[next].Date.UTC().Truncate(24*time.Hour).After(d) {
			last = s.Points[next].Close
			next++
		}
		column[i] = last
	}
	return column
}
