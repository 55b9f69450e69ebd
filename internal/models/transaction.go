package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the serialized representation of one ledger entry in the
// backing store.
type Transaction struct {
	TransactionID    string          `json:"transactionID"`
	CardNumber       string          `json:"cardNumber"`
	Timestamp        time.Time       `json:"timestamp"`
	Type             string          `json:"type"`
	Amount           decimal.Decimal `json:"amount"`
	BalanceAfter     decimal.Decimal `json:"balanceAfter"`
	Description      string          `json:"description"`
	CounterpartyCard string          `json:"counterpartyCard,omitempty"`
}
