package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/rimjhimsingh/smart-financial-coach/internal/model"
)

// largeAmountThreshold is the naive KPI anomaly cutoff. It is intentionally
// independent of the cadence-aware anomaly engine: the dashboard counter only
// needs a cheap headline number.
const largeAmountThreshold = 500.0

// SpendDriver names the category whose expense total grew most versus the
// previous month. Category is nil when fewer than two months exist.
type SpendDriver struct {
	Category *string `json:"category"`
	Delta    float64 `json:"delta"`
}

// Summary holds the month-to-date KPI aggregates for the dashboard.
type Summary struct {
	MTDTotalSpend      float64     `json:"mtd_total_spend"`
	MTDNetCashflow     float64     `json:"mtd_net_cashflow"`
	MTDRecurringTotal  float64     `json:"mtd_recurring_total"`
	SubscriptionsCount int         `json:"subscriptions_count"`
	AnomaliesCount30d  int         `json:"anomalies_count_30d"`
	BiggestSpendDriver SpendDriver `json:"biggest_spend_driver"`
}

// Summarize computes the KPI summary over the dataset. "Today" is the max
// posted date in the data. An empty dataset returns the all-zero summary,
// never an error, so the dashboard renders gracefully with no data.
func Summarize(txs []model.Transaction) Summary {
	if len(txs) == 0 {
		return Summary{}
	}

	today := todayFromData(txs)
	mtdStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	last30 := today.AddDate(0, 0, -30)

	var mtdSpend, mtdNet, mtdRecurring float64
	subscriptionMerchants := make(map[string]bool)
	anomalies30 := 0

	for _, tx := range txs {
		if !tx.PostedDate.Before(mtdStart) {
			mtdNet += tx.Amount
			if tx.Amount < 0 {
				mtdSpend += -tx.Amount
				if tx.Category == model.CategorySubscriptions {
					mtdRecurring += -tx.Amount
				}
			}
		}
		if tx.Category == model.CategorySubscriptions && tx.Amount < 0 {
			subscriptionMerchants[tx.Merchant] = true
		}
		if !tx.PostedDate.Before(last30) && math.Abs(tx.Amount) > largeAmountThreshold {
			anomalies30++
		}
	}

	return Summary{
		MTDTotalSpend:      round2(mtdSpend),
		MTDNetCashflow:     round2(mtdNet),
		MTDRecurringTotal:  round2(mtdRecurring),
		SubscriptionsCount: len(subscriptionMerchants),
		AnomaliesCount30d:  anomalies30,
		BiggestSpendDriver: biggestSpendDriver(txs),
	}
}

// biggestSpendDriver compares the two most recent months' expense totals per
// category. A category absent from the previous month contributes its full
// current total as the delta.
func biggestSpendDriver(txs []model.Transaction) SpendDriver {
	months := AvailableMonths(txs)
	if len(months) < 2 {
		return SpendDriver{}
	}
	curMonth, prevMonth := months[len(months)-1], months[len(months)-2]

	cur := expenseTotalsByCategory(txs, curMonth)
	prev := expenseTotalsByCategory(txs, prevMonth)

	type catDelta struct {
		category string
		delta    float64
	}
	var deltas []catDelta
	for cat, amount := range cur {
		deltas = append(deltas, catDelta{cat, amount - prev[cat]})
	}
	if len(deltas) == 0 {
		return SpendDriver{}
	}
	sort.Slice(deltas, func(i, j int) bool {
		if deltas[i].delta != deltas[j].delta {
			return deltas[i].delta > deltas[j].delta
		}
		return deltas[i].category < deltas[j].category
	})

	top := deltas[0]
	return SpendDriver{Category: &top.category, Delta: round2(top.delta)}
}

// expenseTotalsByCategory sums absolute expense amounts per category for one month.
func expenseTotalsByCategory(txs []model.Transaction, month string) map[string]float64 {
	totals := make(map[string]float64)
	for _, tx := range txs {
		if tx.Amount < 0 && monthKey(tx.PostedDate) == month {
			totals[tx.Category] += -tx.Amount
		}
	}
	return totals
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
