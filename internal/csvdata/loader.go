// Package csvdata loads daily price history from CSV files. One file per
// symbol, two columns: date (2006-01-02) and close. A header row is detected
// and skipped.
package csvdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"portfolio-backtest-lab/internal/domain"
)

// LoadSeries reads one symbol's price series from a CSV file.
func LoadSeries(symbol, path string) (*domain.PriceSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	series, err := ReadSeries(symbol, f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return series, nil
}

// LoadDir reads one CSV file per symbol from dir, named <symbol>.csv.
func LoadDir(dir string, symbols []string) ([]*domain.PriceSeries, error) {
	series := make([]*domain.PriceSeries, 0, len(symbols))
	for _, sym := range symbols {
		s, err := LoadSeries(sym, filepath.Join(dir, sym+".csv"))
		if err != nil {
			return nil, err
		}
		series = append(series, s)
	}
	return series, nil
}

// ReadSeries parses date,close rows from r. Rows must be in ascending date
// order; the series is validated before returning.
func ReadSeries(symbol string, r io.Reader) (*domain.PriceSeries, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	series := &domain.PriceSeries{Symbol: symbol}
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		line++

		// Skip a header row like "date,close".
		if line == 1 && !dateLike(record[0]) {
			continue
		}

		date, err := time.Parse("2006-01-02", strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: parse date %q: %w", line, record[0], err)
		}
		close, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse close %q: %w", line, record[1], err)
		}

		series.Points = append(series.Points, domain.PricePoint{Date: date.UTC(), Close: close})
	}

	if len(series.Points) == 0 {
		return nil, fmt.Errorf("%w: %s has no price points", domain.ErrInsufficientData, symbol)
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}

// ToBars converts a series to persistence bars for bulk loading.
func ToBars(series *domain.PriceSeries) []*domain.PriceBar {
	bars := make([]*domain.PriceBar, len(series.Points))
	for i, p := range series.Points {
		bars[i] = &domain.PriceBar{Symbol: series.Symbol, Date: p.Date, Close: p.Close}
	}
	return bars
}

func dateLike(s string) bool {
	_, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	return err == nil
}
