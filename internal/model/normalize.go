package model

import (
	"fmt"
	"math"
	"strings"
)

// Defaults applied during normalization when a source leaves a field blank.
const (
	DefaultCurrency = "USD"
	DefaultCategory = "Uncategorized"
)

// NormalizeMerchant trims and collapses internal whitespace to single spaces.
func NormalizeMerchant(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Normalize validates raw parsed rows and fills in the canonical schema for
// the given account: merchant whitespace collapsed, currency/category
// defaults, direction derived from the amount sign. It returns an error when
// a row is missing a valid date or amount, since every downstream engine
// assumes those invariants.
func Normalize(rows []Transaction, accountID string) ([]Transaction, error) {
	out := make([]Transaction, 0, len(rows))
	for i, r := range rows {
		if r.PostedDate.IsZero() {
			return nil, fmt.Errorf("row %d: invalid posted_date", i)
		}
		if math.IsNaN(r.Amount) || math.IsInf(r.Amount, 0) {
			return nil, fmt.Errorf("row %d: invalid amount", i)
		}

		r.Merchant = NormalizeMerchant(r.Merchant)
		if strings.TrimSpace(r.Currency) == "" {
			r.Currency = DefaultCurrency
		}
		if strings.TrimSpace(r.Category) == "" {
			r.Category = DefaultCategory
		}
		r.AccountID = accountID
		if r.Amount < 0 {
			r.Direction = DirectionExpense
		} else {
			r.Direction = DirectionIncome
		}
		out = append(out, r)
	}
	return out, nil
}

// DedupeByID removes duplicate transaction IDs, keeping the last occurrence.
// Rows without an ID are never treated as duplicates of each other.
func DedupeByID(rows []Transaction) []Transaction {
	lastIdx := make(map[string]int, len(rows))
	for i, r := range rows {
		if r.ID != "" {
			lastIdx[r.ID] = i
		}
	}
	out := make([]Transaction, 0, len(rows))
	for i, r := range rows {
		if r.ID != "" && lastIdx[r.ID] != i {
			continue
		}
		out = append(out, r)
	}
	return out
}
