package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rimjhimsingh/smart-financial-coach/internal/model"
)

// Canonical CSV export, the format the demo bank files ship in. Required
// columns: transaction_id, posted_date, merchant, amount, currency, category.
// Currency and category may be blank; normalization fills the defaults.
var csvRequiredColumns = []string{
	"transaction_id",
	"posted_date",
	"merchant",
	"amount",
	"currency",
	"category",
}

// ParseCanonicalCSV reads a canonical CSV export.
func ParseCanonicalCSV(path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	headers, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	col := columnIndex(headers)
	for _, name := range csvRequiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing required column: %s", name)
		}
	}

	var rows []model.Transaction
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", line, err)
		}
		line++

		date, err := parseDateFlexible(rec[col["posted_date"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing posted_date: %w", line, err)
		}
		amount, err := parseAmount(rec[col["amount"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount: %w", line, err)
		}

		rows = append(rows, model.Transaction{
			ID:         strings.TrimSpace(rec[col["transaction_id"]]),
			PostedDate: date,
			Merchant:   rec[col["merchant"]],
			Amount:     amount,
			Currency:   strings.TrimSpace(rec[col["currency"]]),
			Category:   strings.TrimSpace(rec[col["category"]]),
		})
	}
	return rows, nil
}

func columnIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

// parseDateFlexible accepts the date shapes seen across bank exports:
// plain dates, datetimes, and US-style slashed dates.
func parseDateFlexible(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	formats := []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		time.RFC3339,
		"01/02/2006",
		"1/2/2006",
	}
	var lastErr error
	for _, f := range formats {
		t, err := time.Parse(f, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q: %w", s, lastErr)
}

// parseAmount handles plain decimals plus the usual export noise: currency
// symbols, thousands separators, and parenthesized negatives.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unrecognized amount %q", s)
	}
	if neg {
		v = -v
	}
	return v, nil
}

func init() {
	Register("coach-csv", ParserFunc(ParseCanonicalCSV))
}
