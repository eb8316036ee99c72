package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder
	result := r.Result
	m := result.Metrics

	// Header
	sb.WriteString("# Backtest Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Strategy: %s | Symbols: %s | Rebalancing: %s\n\n",
		r.StrategyID, strings.Join(r.Symbols, ", "), r.Frequency))
	if len(result.Dates) > 0 {
		sb.WriteString(fmt.Sprintf("Period: %s to %s (%d trading dates, %d rebalances)\n\n",
			result.Dates[0].Format("2006-01-02"),
			result.Dates[len(result.Dates)-1].Format("2006-01-02"),
			len(result.Dates), len(result.RebalanceDates)))
	}
	sb.WriteString(fmt.Sprintf("Initial Capital: %.2f | Final Value: %.2f\n\n",
		r.InitialCapital, r.FinalValue()))

	// Performance Metrics
	sb.WriteString("## Performance Metrics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Return | %.2f%% |\n", m.TotalReturn*100))
	sb.WriteString(fmt.Sprintf("| Annualized Return | %.2f%% |\n", m.AnnualizedReturn*100))
	sb.WriteString(fmt.Sprintf("| Volatility | %.2f%% |\n", m.Volatility*100))
	sb.WriteString(fmt.Sprintf("| Sharpe Ratio | %.4f |\n", m.SharpeRatio))
	sb.WriteString(fmt.Sprintf("| Sortino Ratio | %.4f |\n", m.SortinoRatio))
	sb.WriteString(fmt.Sprintf("| Calmar Ratio | %.4f |\n", m.CalmarRatio))
	sb.WriteString(fmt.Sprintf("| Max Drawdown | %.2f%% |\n", m.MaxDrawdown*100))
	sb.WriteString(fmt.Sprintf("| Max Drawdown Duration | %d days |\n", m.MaxDrawdownDuration))
	sb.WriteString(fmt.Sprintf("| VaR 95%% | %.4f |\n", m.VaR95))
	sb.WriteString(fmt.Sprintf("| CVaR 95%% | %.4f |\n", m.CVaR95))
	sb.WriteString(fmt.Sprintf("| Win Rate | %.2f%% |\n", m.WinRate*100))
	sb.WriteString(fmt.Sprintf("| Profit Factor | %.4f |\n", m.ProfitFactor))
	sb.WriteString("\n")

	if len(m.Clamped) > 0 {
		sb.WriteString(fmt.Sprintf("Clamped metrics (degenerate inputs): %s\n\n",
			strings.Join(m.Clamped, ", ")))
	}

	// Benchmark Comparison
	if b := result.Benchmark; b != nil {
		sb.WriteString(fmt.Sprintf("## Benchmark Comparison (%s)\n\n", b.Symbol))
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Benchmark Total Return | %.2f%% |\n", b.TotalReturn*100))
		sb.WriteString(fmt.Sprintf("| Benchmark Annualized Return | %.2f%% |\n", b.AnnualizedReturn*100))
		sb.WriteString(fmt.Sprintf("| Benchmark Volatility | %.2f%% |\n", b.Volatility*100))
		sb.WriteString(fmt.Sprintf("| Benchmark Sharpe Ratio | %.4f |\n", b.SharpeRatio))
		sb.WriteString(fmt.Sprintf("| Beta | %.4f |\n", b.Beta))
		sb.WriteString(fmt.Sprintf("| Alpha | %.4f |\n", b.Alpha))
		sb.WriteString(fmt.Sprintf("| Correlation | %.4f |\n", b.Correlation))
		sb.WriteString(fmt.Sprintf("| Tracking Error | %.4f |\n", b.TrackingError))
		sb.WriteString(fmt.Sprintf("| Information Ratio | %.4f |\n", b.InformationRatio))
		sb.WriteString(fmt.Sprintf("| Up Capture | %.4f |\n", b.UpCapture))
		sb.WriteString(fmt.Sprintf("| Down Capture | %.4f |\n", b.DownCapture))
		sb.WriteString("\n")
	}

	// Asset Performance
	sb.WriteString("## Asset Performance\n\n")
	if len(result.AssetPerformance) > 0 {
		sb.WriteString("| Symbol | Target | Avg Weight | Time Invested | Return | Ann. Return | Volatility | Sharpe | MaxDD | Contribution* |\n")
		sb.WriteString("|--------|--------|------------|---------------|--------|-------------|------------|--------|-------|---------------|\n")
		for _, a := range result.AssetPerformance {
			sb.WriteString(fmt.Sprintf("| %s | %.1f%% | %.1f%% | %.1f%% | %.2f%% | %.2f%% | %.2f%% | %.4f | %.2f%% | %.2f%% |\n",
				a.Symbol, a.Allocation*100, a.AverageWeight*100, a.TimeInvested*100,
				a.TotalReturn*100, a.AnnualizedReturn*100, a.Volatility*100,
				a.SharpeRatio, a.MaxDrawdown*100, a.ContributionEstimate*100))
		}
		sb.WriteString("\n*Contribution is an estimate: average weight x asset total return.\n\n")
	} else {
		sb.WriteString("No asset performance available.\n\n")
	}

	// Warnings
	if len(result.Warnings) > 0 {
		sb.WriteString("## Warnings\n\n")
		for _, w := range result.Warnings {
			sb.WriteString(fmt.Sprintf("- %s\n", w))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
