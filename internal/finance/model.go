package finance

import (
	"time"

	"github.com/google/uuid"
)

// Kind selects the side of the ledger an operation applies to.
type Kind string

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// Valid reports whether the kind is one of the two ledger sides.
func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

// Currency is a reference currency row.
type Currency struct {
	Code   string `json:"currency_code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Record is a single income or expense entry.
type Record struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	CurrencyCode string    `json:"currency_code"`
	Category     string    `json:"category"`
	Comment      string    `json:"comment"`
	Value        float64   `json:"value"`
	CreatedAt    time.Time `json:"created_at"`
}

// RecordInput is the payload for creating a record.
type RecordInput struct {
	CurrencyCode string  `json:"currency_code"`
	Category     string  `json:"category"`
	Comment      string  `json:"comment"`
	Value        float64 `json:"value"`
}
