package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/rimjhimsingh/smart-financial-coach/internal/model"
)

// MerchantSpend is a merchant's absolute expense total within a drilldown.
type MerchantSpend struct {
	Merchant   string  `json:"merchant"`
	TotalSpend float64 `json:"total_spend"`
}

// Breakdown is the (month, category) drilldown result. An empty intersection
// yields empty lists with month and category echoed back; it is not an error.
type Breakdown struct {
	Month           *string             `json:"month"`
	Category        string              `json:"category"`
	TopMerchants    []MerchantSpend     `json:"top_merchants"`
	TopTransactions []model.Transaction `json:"top_transactions"`
}

// CategoryBreakdown returns the top merchants by expense total and the top
// transactions by absolute amount for the given month and category.
// Merchant ranking is expense-only; the transaction ranking includes income
// rows (refunds) as well.
func CategoryBreakdown(txs []model.Transaction, month, category string, merchantLimit, txLimit int) (Breakdown, error) {
	if len(txs) == 0 {
		return Breakdown{
			Category:        category,
			TopMerchants:    []MerchantSpend{},
			TopTransactions: []model.Transaction{},
		}, nil
	}

	category = strings.TrimSpace(category)
	if category == "" {
		return Breakdown{}, ErrMissingCategory
	}

	resolved, err := ResolveMonth(txs, month)
	if err != nil {
		return Breakdown{}, err
	}

	var rows []model.Transaction
	for _, tx := range txs {
		if monthKey(tx.PostedDate) == resolved && tx.Category == category {
			rows = append(rows, tx)
		}
	}

	result := Breakdown{
		Month:           &resolved,
		Category:        category,
		TopMerchants:    []MerchantSpend{},
		TopTransactions: []model.Transaction{},
	}
	if len(rows) == 0 {
		return result, nil
	}

	spendByMerchant := make(map[string]float64)
	for _, tx := range rows {
		if tx.Amount < 0 {
			spendByMerchant[tx.Merchant] += -tx.Amount
		}
	}
	merchants := make([]MerchantSpend, 0, len(spendByMerchant))
	for m, v := range spendByMerchant {
		merchants = append(merchants, MerchantSpend{Merchant: m, TotalSpend: round2(v)})
	}
	sort.Slice(merchants, func(i, j int) bool {
		if merchants[i].TotalSpend != merchants[j].TotalSpend {
			return merchants[i].TotalSpend > merchants[j].TotalSpend
		}
		return merchants[i].Merchant < merchants[j].Merchant
	})
	if len(merchants) > merchantLimit {
		merchants = merchants[:merchantLimit]
	}
	result.TopMerchants = merchants

	sort.SliceStable(rows, func(i, j int) bool {
		return math.Abs(rows[i].Amount) > math.Abs(rows[j].Amount)
	})
	if len(rows) > txLimit {
		rows = rows[:txLimit]
	}
	result.TopTransactions = rows

	return result, nil
}
