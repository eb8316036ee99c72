package strategy

import (
	"time"

	"portfolio-backtest-lab/internal/domain"
)

// RebalanceSchedule marks the indices of the aligned date axis on which the
// engine consults the strategy. Index 0 is never marked: initial allocation
// is handled separately by the engine. For calendar frequencies the first
// trading day of each new week/month/quarter/year is a rebalance date.
func RebalanceSchedule(dates []time.Time, freq domain.RebalanceFrequency) []bool {
	marks := make([]bool, len(dates))
	if freq == domain.FrequencyNone || len(dates) < 2 {
		return marks
	}

	for t := 1; t < len(dates); t++ {
		prev, cur := dates[t-1], dates[t]
		switch freq {
		case domain.FrequencyDaily:
			marks[t] = true
		case domain.FrequencyWeekly:
			py, pw := prev.ISOWeek()
			cy, cw := cur.ISOWeek()
			marks[t] = py != cy || pw != cw
		case domain.FrequencyMonthly:
			marks[t] = prev.Month() != cur.Month() || prev.Year() != cur.Year()
		case domain.FrequencyQuarterly:
			marks[t] = quarter(prev) != quarter(cur) || prev.Year() != cur.Year()
		case domain.FrequencyYearly:
			marks[t] = prev.Year() != cur.Year()
		}
	}
	return marks
}

func quarter(d time.Time) int {
	return (int(d.Month()) - 1) / 3
}
