// Package insights builds the deterministic, non-AI insight cards shown when
// the AI copilot backend is unavailable or no model output has been cached
// yet. Cards are computed straight from the transaction dataset so the
// dashboard always has something sensible to render.
package insights

import (
	"fmt"
	"math"
	"strings"

	"github.com/rimjhimsingh/smart-financial-coach/internal/model"
)

// CardCount is the fixed number of insight cards the dashboard renders.
const CardCount = 5

// Drilldown tells the UI where a card should link to.
type Drilldown struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Card is one insight: a headline metric with a short rationale and a
// suggested action.
type Card struct {
	Title     string    `json:"title"`
	Metric    string    `json:"metric"`
	Why       string    `json:"why"`
	Action    string    `json:"action"`
	Drilldown Drilldown `json:"drilldown"`
}

// FallbackCards returns exactly CardCount deterministic cards for the given
// month. A blank month means the full dataset (labeled by its latest month).
// An empty dataset yields placeholder cards, never an error.
func FallbackCards(txs []model.Transaction, month string) []Card {
	if len(txs) == 0 {
		empty := Card{
			Title:     "Load transactions to unlock insights",
			Metric:    "No data",
			Why:       "No transactions are loaded yet, so insights cannot be computed.",
			Action:    "Load your bank exports, then reopen insights.",
			Drilldown: Drilldown{Type: "none"},
		}
		cards := make([]Card, CardCount)
		for i := range cards {
			cards[i] = empty
		}
		return cards
	}

	// Scope to the requested month when it has data; otherwise fall back to
	// the whole dataset rather than returning empty cards.
	scoped := txs
	if month = strings.TrimSpace(month); month != "" {
		var inMonth []model.Transaction
		for _, tx := range txs {
			if tx.PostedDate.Format("2006-01") == month {
				inMonth = append(inMonth, tx)
			}
		}
		if len(inMonth) > 0 {
			scoped = inMonth
		}
	}
	resolvedMonth := month
	if resolvedMonth == "" {
		var max model.Transaction
		for _, tx := range scoped {
			if tx.PostedDate.After(max.PostedDate) {
				max = tx
			}
		}
		resolvedMonth = max.PostedDate.Format("2006-01")
	}

	topCat, topCatAmount := topSpendCategory(scoped)
	subsCount, subsTotal := subscriptionStats(scoped)
	spikeText := largestTransaction(scoped)

	topCatMetric := "$0.00"
	topCatName := "No category"
	if topCat != "" {
		topCatMetric = fmt.Sprintf("$%.2f", topCatAmount)
		topCatName = topCat
	}
	subsMetric := "No subscriptions"
	if subsCount > 0 {
		subsMetric = fmt.Sprintf("%d merchants", subsCount)
	}

	return []Card{
		{
			Title:     "Top spend category",
			Metric:    topCatMetric,
			Why:       fmt.Sprintf("%s is currently the largest spend area for %s.", topCatName, resolvedMonth),
			Action:    "Open the category drilldown and target the top merchant first.",
			Drilldown: Drilldown{Type: "category", Value: topCat},
		},
		{
			Title:     "Subscriptions overview",
			Metric:    subsMetric,
			Why:       fmt.Sprintf("Subscriptions spending for %s is $%.2f.", resolvedMonth, subsTotal),
			Action:    "Review recurring charges and cancel the least valuable item.",
			Drilldown: Drilldown{Type: "subscriptions"},
		},
		{
			Title:     "Largest transaction check",
			Metric:    spikeText,
			Why:       "Large one time charges can distort your month and indicate unusual activity.",
			Action:    "Verify the transaction and confirm it is expected.",
			Drilldown: Drilldown{Type: "none"},
		},
		{
			Title:     "Dining and coffee nudge",
			Metric:    "Opportunity",
			Why:       "Small frequent purchases compound quickly across the month.",
			Action:    "Cap dining or coffee once per week and track the monthly difference.",
			Drilldown: Drilldown{Type: "category", Value: "Dining"},
		},
		{
			Title:     "Quick win",
			Metric:    "1 change",
			Why:       "One cancellation or one category cap can produce a noticeable improvement.",
			Action:    "Cancel one subscription or set a hard cap on your top category for the next 7 days.",
			Drilldown: Drilldown{Type: "subscriptions"},
		},
	}
}

func topSpendCategory(txs []model.Transaction) (string, float64) {
	totals := make(map[string]float64)
	for _, tx := range txs {
		if tx.Amount < 0 {
			totals[tx.Category] += -tx.Amount
		}
	}
	var topCat string
	var topAmount float64
	for cat, v := range totals {
		if v > topAmount || (v == topAmount && topCat != "" && cat < topCat) {
			topCat, topAmount = cat, v
		}
	}
	return topCat, topAmount
}

func subscriptionStats(txs []model.Transaction) (int, float64) {
	merchants := make(map[string]bool)
	total := 0.0
	for _, tx := range txs {
		if tx.Category == model.CategorySubscriptions && tx.Amount < 0 {
			merchants[tx.Merchant] = true
			total += -tx.Amount
		}
	}
	return len(merchants), total
}

func largestTransaction(txs []model.Transaction) string {
	var spike *model.Transaction
	for i, tx := range txs {
		if spike == nil || math.Abs(tx.Amount) > math.Abs(spike.Amount) {
			spike = &txs[i]
		}
	}
	if spike == nil {
		return "None"
	}
	return strings.TrimSpace(fmt.Sprintf("%s $%.2f", spike.Merchant, math.Abs(spike.Amount)))
}
