package dto

import (
	"time"

	"github.com/atmsim/bankcore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
// Format constraints are enforced by struct tags; value bounds (balance,
// limit) are checked by the validation chains.
type CreateAccountRequest struct {
	CardNumber    string          `json:"cardNumber" validate:"required,len=16,numeric"`
	PIN           string          `json:"pin" validate:"required,min=4,max=6,numeric"`
	HolderName    string          `json:"holderName" validate:"required"`
	Balance       decimal.Decimal `json:"balance"`
	WithdrawLimit decimal.Decimal `json:"withdrawLimit"`
	IsAdmin       bool            `json:"isAdmin"`
}

// UpdateAccountRequest defines the mutable fields an administrator may
// overwrite. PIN and the admin flag are deliberately absent.
type UpdateAccountRequest struct {
	HolderName    string          `json:"holderName" validate:"required"`
	Balance       decimal.Decimal `json:"balance"`
	WithdrawLimit decimal.Decimal `json:"withdrawLimit"`
	IsLocked      bool            `json:"isLocked"`
}

// AccountResponse defines the data returned for an account. Credential
// material is never exposed.
type AccountResponse struct {
	CardNumber          string          `json:"cardNumber"`
	HolderName          string          `json:"holderName"`
	Balance             decimal.Decimal `json:"balance"`
	WithdrawLimit       decimal.Decimal `json:"withdrawLimit"`
	IsLocked            bool            `json:"isLocked"`
	IsAdmin             bool            `json:"isAdmin"`
	FailedLoginAttempts int             `json:"failedLoginAttempts"`
	TemporaryLockUntil  time.Time       `json:"temporaryLockUntil,omitzero"`
}

// ToAccountResponse converts a domain.Account to an AccountResponse DTO.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		CardNumber:          a.CardNumber,
		HolderName:          a.HolderName,
		Balance:             a.Balance,
		WithdrawLimit:       a.WithdrawLimit,
		IsLocked:            a.IsLocked,
		IsAdmin:             a.IsAdmin,
		FailedLoginAttempts: a.FailedLoginAttempts,
		TemporaryLockUntil:  a.TemporaryLockUntil,
	}
}

// ToListAccountResponse converts a slice of domain accounts.
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}
