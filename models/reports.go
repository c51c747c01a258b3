package models

import "github.com/shopspring/decimal"

// Summary is the net balance of a session.
type Summary struct {
	Amount decimal.Decimal `json:"amount"`
}
