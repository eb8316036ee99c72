package reporting

import (
	"fmt"
	"strings"
)

// RenderEquityCSV renders the day-by-day trajectory as CSV: one row per
// trading date with value, daily return, drawdown, and per-symbol weights.
// Weight columns follow the report's symbol order.
func RenderEquityCSV(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("date,portfolio_value,daily_return,drawdown")
	for _, sym := range r.Symbols {
		sb.WriteString(",weight_" + sym)
	}
	sb.WriteString("\n")

	// Rows
	result := r.Result
	for i, date := range result.Dates {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.8f,%.8f",
			date.Format("2006-01-02"),
			result.PortfolioValues[i],
			result.Returns[i],
			result.Drawdown[i],
		))
		for _, sym := range r.Symbols {
			sb.WriteString(fmt.Sprintf(",%.6f", result.Weights[sym][i]))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// RenderAssetCSV renders per-asset statistics as CSV.
func RenderAssetCSV(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("symbol,allocation,initial_weight,final_weight,average_weight,time_invested,")
	sb.WriteString("total_return,annualized_return,volatility,sharpe_ratio,max_drawdown,contribution_estimate\n")

	// Rows
	for _, a := range r.Result.AssetPerformance {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f\n",
			a.Symbol,
			a.Allocation,
			a.InitialWeight,
			a.FinalWeight,
			a.AverageWeight,
			a.TimeInvested,
			a.TotalReturn,
			a.AnnualizedReturn,
			a.Volatility,
			a.SharpeRatio,
			a.MaxDrawdown,
			a.ContributionEstimate,
		))
	}

	return sb.String()
}
