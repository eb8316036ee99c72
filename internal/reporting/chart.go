package reporting

import (
	"fmt"

	charts "github.com/vicanso/go-charts/v2"
)

// RenderEquityChart renders the equity curve as a PNG image.
func RenderEquityChart(r *Report) ([]byte, error) {
	result := r.Result
	if len(result.Dates) == 0 {
		return nil, fmt.Errorf("empty result, nothing to chart")
	}

	xLabels := make([]string, len(result.Dates))
	for i, d := range result.Dates {
		if len(result.Dates) <= 60 {
			xLabels[i] = d.Format("Jan 02")
		} else {
			xLabels[i] = d.Format("Jan '06")
		}
	}

	values := result.PortfolioValues

	// Y-axis range with padding
	minVal, maxVal := values[0], values[0]
	for _, v := range values {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	padding := (maxVal - minVal) * 0.05
	if padding == 0 {
		padding = maxVal * 0.05
	}
	yMin := minVal - padding
	yMax := maxVal + padding

	m := result.Metrics
	title := fmt.Sprintf("%s (%s rebalancing)", r.StrategyID, r.Frequency)
	subtitle := fmt.Sprintf("Return: %.2f%% | Sharpe: %.2f | Vol: %.2f%% | MaxDD: %.2f%%",
		m.TotalReturn*100, m.SharpeRatio, m.Volatility*100, m.MaxDrawdown*100)

	splitNum := 6
	if len(xLabels) <= 30 {
		splitNum = len(xLabels) / 3
		if splitNum < 3 {
			splitNum = 3
		}
	}

	p, err := charts.LineRender(
		[][]float64{values},
		charts.TitleTextOptionFunc(title+"\n"+subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        xLabels,
			SplitNumber: splitNum,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("render equity chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encode equity chart: %w", err)
	}

	return buf, nil
}
