package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rimjhimsingh/smart-financial-coach/internal/model"
)

// simpleJSONFile is a minimal JSON import format, easy to produce from any
// bank export or budgeting tool:
//
//	{
//	  "transactions": [
//	    {"date": "2025-01-15", "merchant": "Netflix", "amount": -15.99, "category": "Subscriptions"}
//	  ]
//	}
type simpleJSONFile struct {
	Transactions []simpleJSONTransaction `json:"transactions"`
}

type simpleJSONTransaction struct {
	Date     string  `json:"date"`
	Merchant string  `json:"merchant"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
	Category string  `json:"category,omitempty"`
}

// ParseSimpleJSON parses a file in the simple JSON format.
func ParseSimpleJSON(path string) ([]model.Transaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var file simpleJSONFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	var rows []model.Transaction
	for _, tx := range file.Transactions {
		date, err := time.Parse(model.DateFormat, tx.Date)
		if err != nil {
			return nil, fmt.Errorf("parsing date %q: %w", tx.Date, err)
		}
		rows = append(rows, model.Transaction{
			PostedDate: date,
			Merchant:   tx.Merchant,
			Amount:     tx.Amount,
			Currency:   tx.Currency,
			Category:   tx.Category,
		})
	}
	return rows, nil
}

func init() {
	Register("simple-json", ParserFunc(ParseSimpleJSON))
}
