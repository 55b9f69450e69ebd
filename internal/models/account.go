package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the serialized representation of an account record in the
// backing store. Field names are part of the on-disk format.
type Account struct {
	CardNumber    string          `json:"cardNumber"`
	PINHash       []byte          `json:"pinHash,omitempty"`
	Salt          []byte          `json:"salt,omitempty"`
	HolderName    string          `json:"holderName"`
	Balance       decimal.Decimal `json:"balance"`
	WithdrawLimit decimal.Decimal `json:"withdrawLimit"`
	IsLocked      bool            `json:"isLocked"`
	IsAdmin       bool            `json:"isAdmin"`

	FailedLoginAttempts int       `json:"failedLoginAttempts,omitempty"`
	LastFailedLoginAt   time.Time `json:"lastFailedLoginAt,omitzero"`
	TemporaryLockUntil  time.Time `json:"temporaryLockUntil,omitzero"`

	// LegacyPIN carries the cleartext PIN of records written by early store
	// revisions. It is migrated to a salted hash on load and never written back.
	LegacyPIN string `json:"pin,omitempty"`
}
