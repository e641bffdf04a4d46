package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/rimjhimsingh/smart-financial-coach/internal/model"
)

// MonthFormat is the grouping key for all monthly aggregation: YYYY-MM.
const MonthFormat = "2006-01"

func monthKey(t time.Time) string {
	return t.Format(MonthFormat)
}

// AvailableMonths returns the sorted (ascending) distinct month keys present
// in the dataset. Empty dataset yields an empty slice.
func AvailableMonths(txs []model.Transaction) []string {
	seen := make(map[string]bool)
	var months []string
	for _, tx := range txs {
		key := monthKey(tx.PostedDate)
		if !seen[key] {
			seen[key] = true
			months = append(months, key)
		}
	}
	sort.Strings(months)
	return months
}

// ResolveMonth resolves the analysis month. A blank request resolves to the
// latest available month. A non-blank request must match an available month
// exactly, otherwise an *InvalidMonthError enumerating up to the last 6
// available months is returned. An empty dataset always yields ErrNoData.
func ResolveMonth(txs []model.Transaction, requested string) (string, error) {
	months := AvailableMonths(txs)
	if len(months) == 0 {
		return "", ErrNoData
	}

	requested = strings.TrimSpace(requested)
	if requested == "" {
		return months[len(months)-1], nil
	}

	for _, m := range months {
		if m == requested {
			return m, nil
		}
	}

	tail := months
	if len(tail) > 6 {
		tail = tail[len(tail)-6:]
	}
	return "", &InvalidMonthError{Requested: requested, Available: tail}
}

// todayFromData anchors "today" to the maximum posted date in the dataset so
// month-to-date and trailing-window computations are reproducible against a
// fixed snapshot. Zero time for an empty dataset.
func todayFromData(txs []model.Transaction) time.Time {
	var max time.Time
	for _, tx := range txs {
		if tx.PostedDate.After(max) {
			max = tx.PostedDate
		}
	}
	return max
}
