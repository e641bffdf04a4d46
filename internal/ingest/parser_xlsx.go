package ingest

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rimjhimsingh/smart-financial-coach/internal/model"
)

// ParseBankXLSX reads transactions from a bank Excel export. The sheet layout
// varies between banks, so the parser scans for a header row by column name
// rather than assuming fixed positions. Recognized headers (case-insensitive):
//
//	date:     "Date", "Posted Date", "Transaction Date"
//	merchant: "Description", "Merchant", "Payee", "Text"
//	amount:   "Amount", "Belopp"
//	category: "Category" (optional)
func ParseBankXLSX(path string) ([]model.Transaction, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet: %w", err)
	}

	dateCol, merchantCol, amountCol, categoryCol := -1, -1, -1, -1
	dataStartRow := -1

	for i, row := range rows {
		for j, cell := range row {
			switch strings.ToLower(strings.TrimSpace(cell)) {
			case "date", "posted date", "transaction date":
				if dateCol == -1 {
					dateCol = j
					dataStartRow = i + 1
				}
			case "description", "merchant", "payee", "text":
				if merchantCol == -1 {
					merchantCol = j
				}
			case "amount", "belopp":
				if amountCol == -1 {
					amountCol = j
				}
			case "category":
				if categoryCol == -1 {
					categoryCol = j
				}
			}
		}
		if dateCol >= 0 && merchantCol >= 0 && amountCol >= 0 {
			break
		}
	}
	if dateCol < 0 || merchantCol < 0 || amountCol < 0 {
		return nil, fmt.Errorf("could not find date, merchant and amount columns in %s", path)
	}

	var out []model.Transaction
	for i := dataStartRow; i < len(rows); i++ {
		row := rows[i]
		if len(row) <= dateCol || len(row) <= merchantCol || len(row) <= amountCol {
			continue
		}
		dateStr := strings.TrimSpace(row[dateCol])
		if dateStr == "" {
			continue
		}
		date, err := parseDateFlexible(dateStr)
		if err != nil {
			// Trailing summary rows are common in bank exports; skip
			// anything that does not parse as a date.
			continue
		}
		amount, err := parseAmount(row[amountCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		category := ""
		if categoryCol >= 0 && len(row) > categoryCol {
			category = strings.TrimSpace(row[categoryCol])
		}
		out = append(out, model.Transaction{
			PostedDate: date,
			Merchant:   row[merchantCol],
			Amount:     amount,
			Category:   category,
		})
	}
	return out, nil
}

func init() {
	Register("bank-xlsx", ParserFunc(ParseBankXLSX))
}
