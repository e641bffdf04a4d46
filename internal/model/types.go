package model

import (
	"encoding/json"
	"time"
)

// Direction classifies a transaction by the sign of its amount.
type Direction string

const (
	DirectionExpense Direction = "expense"
	DirectionIncome  Direction = "income"
)

// DateFormat is the wire format for all transaction dates.
const DateFormat = "2006-01-02"

// Transaction is a single normalized ledger row. The amount sign is the sole
// source of truth for direction: negative is outgoing, positive is incoming.
type Transaction struct {
	ID         string
	PostedDate time.Time
	Merchant   string
	Amount     float64
	Currency   string
	Category   string
	AccountID  string
	Direction  Direction
}

type jsonTransaction struct {
	ID         string    `json:"transaction_id"`
	PostedDate string    `json:"posted_date"`
	Merchant   string    `json:"merchant"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	Category   string    `json:"category"`
	AccountID  string    `json:"account_id"`
	Direction  Direction `json:"direction"`
}

// MarshalJSON serializes the posted date as a plain YYYY-MM-DD string.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonTransaction{
		ID:         t.ID,
		PostedDate: t.PostedDate.Format(DateFormat),
		Merchant:   t.Merchant,
		Amount:     t.Amount,
		Currency:   t.Currency,
		Category:   t.Category,
		AccountID:  t.AccountID,
		Direction:  t.Direction,
	})
}

// UnmarshalJSON accepts the same shape MarshalJSON emits.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var jt jsonTransaction
	if err := json.Unmarshal(data, &jt); err != nil {
		return err
	}
	d, err := time.Parse(DateFormat, jt.PostedDate)
	if err != nil {
		return err
	}
	*t = Transaction{
		ID:         jt.ID,
		PostedDate: d,
		Merchant:   jt.Merchant,
		Amount:     jt.Amount,
		Currency:   jt.Currency,
		Category:   jt.Category,
		AccountID:  jt.AccountID,
		Direction:  jt.Direction,
	}
	return nil
}

// CategorySubscriptions is the sentinel category recognized by the summary
// and anomaly logic as recurring subscription spend.
const CategorySubscriptions = "Subscriptions"
