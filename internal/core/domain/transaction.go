package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger event.
type TransactionType string

const (
	Deposit        TransactionType = "DEPOSIT"
	Withdrawal     TransactionType = "WITHDRAWAL"
	BalanceInquiry TransactionType = "BALANCE_INQUIRY"
	Transfer       TransactionType = "TRANSFER"
	Other          TransactionType = "OTHER"
)

// Transaction is an immutable record of one ledger event. A transaction is
// created exactly once per committed operation and is never mutated; the only
// removal path is a bulk purge when its owning account is deleted.
type Transaction struct {
	TransactionID    string          `json:"transactionID"`
	CardNumber       string          `json:"cardNumber"`
	Timestamp        time.Time       `json:"timestamp"`
	Type             TransactionType `json:"type"`
	Amount           decimal.Decimal `json:"amount"`
	BalanceAfter     decimal.Decimal `json:"balanceAfter"`
	Description      string          `json:"description"`
	CounterpartyCard string          `json:"counterpartyCard,omitempty"` // transfers only
}
