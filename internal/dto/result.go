package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationResult is the uniform success/failure shape every facade method
// returns to the presentation layer. Errors never cross the facade boundary.
type OperationResult struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// OK returns a successful result.
func OK() OperationResult {
	return OperationResult{Success: true}
}

// Fail returns a failed result carrying a human-readable reason.
func Fail(message string) OperationResult {
	return OperationResult{Success: false, ErrorMessage: message}
}

// LoginResult carries the outcome of a login attempt plus the account
// snapshot the presentation layer shows after a successful login.
type LoginResult struct {
	OperationResult
	IsAdmin       bool            `json:"isAdmin"`
	HolderName    string          `json:"holderName"`
	Balance       decimal.Decimal `json:"balance"`
	WithdrawLimit decimal.Decimal `json:"withdrawLimit"`
}

// Receipt bundles the fields the external printing collaborator needs after
// a successful money-movement operation. The engine fills it; rendering is
// entirely the collaborator's concern.
type Receipt struct {
	BankLabel          string          `json:"bankLabel"`
	CardNumber         string          `json:"cardNumber"`
	HolderName         string          `json:"holderName"`
	TransactionType    string          `json:"transactionType"`
	Amount             decimal.Decimal `json:"amount"`
	BalanceAfter       decimal.Decimal `json:"balanceAfter"`
	CounterpartyCard   string          `json:"counterpartyCard,omitempty"`
	CounterpartyName   string          `json:"counterpartyName,omitempty"`
	Timestamp          time.Time       `json:"timestamp"`
	TransactionID      string          `json:"transactionID"`
}
