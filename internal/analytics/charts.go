package analytics

import (
	"sort"

	"github.com/rimjhimsingh/smart-financial-coach/internal/model"
)

// CategoryValue is one slice of the spend-by-category chart.
type CategoryValue struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// MonthFlow is one bar of the money-in vs money-out chart.
type MonthFlow struct {
	Month    string  `json:"month"`
	MoneyIn  float64 `json:"money_in"`
	MoneyOut float64 `json:"money_out"`
	Net      float64 `json:"net"`
}

// DaySpend is one point of the daily spend trend.
type DaySpend struct {
	Day   string  `json:"day"`
	Spend float64 `json:"spend"`
}

// Charts bundles the three dashboard chart series. Month is nil and all
// series are empty for an empty dataset.
type Charts struct {
	Month                *string         `json:"month"`
	AvailableMonths      []string        `json:"available_months"`
	SpendByCategoryMonth []CategoryValue `json:"spend_by_category_month"`
	InVsOutMonth         []MonthFlow     `json:"in_vs_out_month"`
	DailySpendTrend      []DaySpend      `json:"daily_spend_trend"`
}

// BuildCharts computes the chart series. The category and daily series cover
// the resolved month; the in-vs-out series always spans every available month.
func BuildCharts(txs []model.Transaction, month string) (Charts, error) {
	if len(txs) == 0 {
		return Charts{
			AvailableMonths:      []string{},
			SpendByCategoryMonth: []CategoryValue{},
			InVsOutMonth:         []MonthFlow{},
			DailySpendTrend:      []DaySpend{},
		}, nil
	}

	resolved, err := ResolveMonth(txs, month)
	if err != nil {
		return Charts{}, err
	}
	months := AvailableMonths(txs)

	// Spend by category for the resolved month, expenses only.
	catTotals := expenseTotalsByCategory(txs, resolved)
	spendByCategory := make([]CategoryValue, 0, len(catTotals))
	for cat, v := range catTotals {
		spendByCategory = append(spendByCategory, CategoryValue{Category: cat, Value: v})
	}
	sort.Slice(spendByCategory, func(i, j int) bool {
		if spendByCategory[i].Value != spendByCategory[j].Value {
			return spendByCategory[i].Value > spendByCategory[j].Value
		}
		return spendByCategory[i].Category < spendByCategory[j].Category
	})

	// Money in vs money out per month across the whole history.
	income := make(map[string]float64)
	out := make(map[string]float64)
	for _, tx := range txs {
		key := monthKey(tx.PostedDate)
		if tx.Amount > 0 {
			income[key] += tx.Amount
		} else if tx.Amount < 0 {
			out[key] += -tx.Amount
		}
	}
	inVsOut := make([]MonthFlow, 0, len(months))
	for _, m := range months {
		inc, exp := income[m], out[m]
		inVsOut = append(inVsOut, MonthFlow{
			Month:    m,
			MoneyIn:  round2(inc),
			MoneyOut: round2(exp),
			Net:      round2(inc - exp),
		})
	}

	// Daily spend within the resolved month, ascending by day.
	daily := make(map[string]float64)
	for _, tx := range txs {
		if tx.Amount < 0 && monthKey(tx.PostedDate) == resolved {
			daily[tx.PostedDate.Format(model.DateFormat)] += -tx.Amount
		}
	}
	days := make([]string, 0, len(daily))
	for d := range daily {
		days = append(days, d)
	}
	sort.Strings(days)
	trend := make([]DaySpend, 0, len(days))
	for _, d := range days {
		trend = append(trend, DaySpend{Day: d, Spend: daily[d]})
	}

	return Charts{
		Month:                &resolved,
		AvailableMonths:      months,
		SpendByCategoryMonth: spendByCategory,
		InVsOutMonth:         inVsOut,
		DailySpendTrend:      trend,
	}, nil
}
