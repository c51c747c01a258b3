package models

import (
	"time"
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type TransactionType string

const (
	Credit TransactionType = "credit"
	Debit  TransactionType = "debit"
)

// Transaction is a persisted ledger row. Amount is already sign-adjusted:
// positive for credits, negative for debits.
type Transaction struct {
	ID        string          `json:"id" db:"id"`
	Title     string          `json:"title" db:"title"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	SessionID string          `json:"session_id" db:"session_id"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// CreateTransactionRequest is the body accepted by POST /transactions.
type CreateTransactionRequest struct {
	Title  string          `json:"title" binding:"required"`
	Amount *float64        `json:"amount" binding:"required"`
	Type   TransactionType `json:"type" binding:"required,oneof=credit debit"`
}

// SignedAmount returns the amount as it is stored: unchanged for credits,
// negated for debits.
func SignedAmount(amount decimal.Decimal, typ TransactionType) decimal.Decimal {
	if typ == Debit {
		return amount.Neg()
	}
	return amount
}
