package analytics

import (
	"sort"

	"github.com/rimjhimsingh/smart-financial-coach/internal/model"
)

// MerchantDelta is one merchant's contribution to a category's month-over-month increase.
type MerchantDelta struct {
	Merchant string  `json:"merchant"`
	Delta    float64 `json:"delta"`
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
}

// CategoryDelta is a category's expense increase versus the previous month,
// with the merchants driving it.
type CategoryDelta struct {
	Category     string          `json:"category"`
	Delta        float64         `json:"delta"`
	Current      float64         `json:"current"`
	Previous     float64         `json:"previous"`
	TopMerchants []MerchantDelta `json:"top_merchants"`
}

// Deltas is the month-over-month comparison result.
type Deltas struct {
	Month                *string         `json:"month"`
	PreviousMonth        *string         `json:"previous_month"`
	TopCategoryIncreases []CategoryDelta `json:"top_category_increases"`
}

// MonthlyDeltas ranks the topK categories whose expense total increased most
// from the previous month to the resolved month, and for each the merchants
// driving the increase. Categories missing from the previous month contribute
// their full current total as the delta. Only categories with a strictly
// positive delta are reported. Resolving the earliest available month fails
// with ErrNoPreviousMonth.
func MonthlyDeltas(txs []model.Transaction, month string, topK, merchantsPerCategory int) (Deltas, error) {
	if len(txs) == 0 {
		return Deltas{TopCategoryIncreases: []CategoryDelta{}}, nil
	}

	resolved, err := ResolveMonth(txs, month)
	if err != nil {
		return Deltas{}, err
	}

	months := AvailableMonths(txs)
	idx := 0
	for i, m := range months {
		if m == resolved {
			idx = i
			break
		}
	}
	if idx == 0 {
		return Deltas{}, ErrNoPreviousMonth
	}
	prevMonth := months[idx-1]

	curCat := expenseTotalsByCategory(txs, resolved)
	prevCat := expenseTotalsByCategory(txs, prevMonth)

	type catDelta struct {
		category string
		delta    float64
	}
	var ranked []catDelta
	for cat, cur := range curCat {
		if d := cur - prevCat[cat]; d > 0 {
			ranked = append(ranked, catDelta{cat, d})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].delta != ranked[j].delta {
			return ranked[i].delta > ranked[j].delta
		}
		return ranked[i].category < ranked[j].category
	})
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	results := make([]CategoryDelta, 0, len(ranked))
	for _, cd := range ranked {
		curM := merchantExpenseTotals(txs, resolved, cd.category)
		prevM := merchantExpenseTotals(txs, prevMonth, cd.category)

		var merchants []MerchantDelta
		for m, cur := range curM {
			merchants = append(merchants, MerchantDelta{
				Merchant: m,
				Delta:    round2(cur - prevM[m]),
				Current:  round2(cur),
				Previous: round2(prevM[m]),
			})
		}
		sort.Slice(merchants, func(i, j int) bool {
			if merchants[i].Delta != merchants[j].Delta {
				return merchants[i].Delta > merchants[j].Delta
			}
			return merchants[i].Merchant < merchants[j].Merchant
		})
		if len(merchants) > merchantsPerCategory {
			merchants = merchants[:merchantsPerCategory]
		}

		results = append(results, CategoryDelta{
			Category:     cd.category,
			Delta:        round2(cd.delta),
			Current:      round2(curCat[cd.category]),
			Previous:     round2(prevCat[cd.category]),
			TopMerchants: merchants,
		})
	}

	return Deltas{
		Month:                &resolved,
		PreviousMonth:        &prevMonth,
		TopCategoryIncreases: results,
	}, nil
}

// merchantExpenseTotals sums absolute expense amounts per merchant for one
// (month, category) pair.
func merchantExpenseTotals(txs []model.Transaction, month, category string) map[string]float64 {
	totals := make(map[string]float64)
	for _, tx := range txs {
		if tx.Amount < 0 && tx.Category == category && monthKey(tx.PostedDate) == month {
			totals[tx.Merchant] += -tx.Amount
		}
	}
	return totals
}
