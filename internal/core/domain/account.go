package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/pbkdf2"
)

// Default lockout policy applied after repeated failed logins. The effective
// policy is configurable; these are the values used when nothing overrides them.
const (
	MaxFailedAttempts = 3
	TempLockDuration  = 15 * time.Minute
)

// PIN hashing parameters. Illustrative work factor, not a production KDF setup.
const (
	pinSaltLen  = 16
	pinHashIter = 4096
	pinHashLen  = 32
)

// Account represents a cardholder's financial record and security state.
// This is the primary representation used by services. All mutation here is
// in-memory only; persisting a changed account is the caller's responsibility.
type Account struct {
	CardNumber    string          `json:"cardNumber"` // 16-digit identifier, immutable after creation
	PINHash       []byte          `json:"pinHash"`
	Salt          []byte          `json:"salt"`
	HolderName    string          `json:"holderName"`
	Balance       decimal.Decimal `json:"balance"`
	WithdrawLimit decimal.Decimal `json:"withdrawLimit"` // per-operation cap, strictly positive
	IsLocked      bool            `json:"isLocked"`      // administrator-imposed lock
	IsAdmin       bool            `json:"isAdmin"`

	// Transient security state driven by the lockout policy.
	FailedLoginAttempts int       `json:"failedLoginAttempts"`
	LastFailedLoginAt   time.Time `json:"lastFailedLoginAt"`
	TemporaryLockUntil  time.Time `json:"temporaryLockUntil"`
}

// NewAccount constructs an account with a freshly salted PIN hash.
func NewAccount(cardNumber, pin, holderName string, balance, withdrawLimit decimal.Decimal, isAdmin bool) (*Account, error) {
	a := &Account{
		CardNumber:    cardNumber,
		HolderName:    holderName,
		Balance:       balance,
		WithdrawLimit: withdrawLimit,
		IsAdmin:       isAdmin,
	}
	if err := a.SetPIN(pin); err != nil {
		return nil, err
	}
	return a, nil
}

// ValidCardNumber reports whether s is a well-formed card number: exactly 16 digits.
func ValidCardNumber(s string) bool {
	if len(s) != 16 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ValidPIN reports whether s is a well-formed PIN: 4 to 6 digits.
func ValidPIN(s string) bool {
	if len(s) < 4 || len(s) > 6 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// IsValidCardNumber reports whether the account's own card number is well formed.
func (a *Account) IsValidCardNumber() bool {
	return ValidCardNumber(a.CardNumber)
}

// SetPIN regenerates the salt and recomputes the PIN hash. The cleartext PIN
// is never retained.
func (a *Account) SetPIN(pin string) error {
	if !ValidPIN(pin) {
		return fmt.Errorf("pin must be 4 to 6 digits")
	}
	salt := make([]byte, pinSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	a.Salt = salt
	a.PINHash = hashPIN(pin, salt)
	return nil
}

// VerifyPIN compares the candidate against the stored hash in constant shape.
func (a *Account) VerifyPIN(candidate string) bool {
	if len(a.PINHash) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(hashPIN(candidate, a.Salt), a.PINHash) == 1
}

// RecordFailedLogin increments the failure counter and stamps the failure
// time under the default lockout policy. The return value reports whether
// this call triggered the temporary lock.
func (a *Account) RecordFailedLogin(now time.Time) bool {
	return a.RecordFailedLoginWithPolicy(now, MaxFailedAttempts, TempLockDuration)
}

// RecordFailedLoginWithPolicy is RecordFailedLogin with an explicit policy:
// once the counter reaches maxAttempts the account is locked for lockFor.
func (a *Account) RecordFailedLoginWithPolicy(now time.Time, maxAttempts int, lockFor time.Duration) bool {
	a.FailedLoginAttempts++
	a.LastFailedLoginAt = now
	if a.FailedLoginAttempts >= maxAttempts {
		a.TemporaryLockUntil = now.Add(lockFor)
		return true
	}
	return false
}

// ResetFailedLoginAttempts clears the failure counter and any temporary lock.
func (a *Account) ResetFailedLoginAttempts() {
	a.FailedLoginAttempts = 0
	a.LastFailedLoginAt = time.Time{}
	a.TemporaryLockUntil = time.Time{}
}

// IsTemporarilyLocked reports whether the lockout window is still open.
func (a *Account) IsTemporarilyLocked(now time.Time) bool {
	return now.Before(a.TemporaryLockUntil)
}

// IsUsable reports whether the account is neither permanently nor temporarily locked.
func (a *Account) IsUsable(now time.Time) bool {
	return !a.IsLocked && !a.IsTemporarilyLocked(now)
}

func hashPIN(pin string, salt []byte) []byte {
	return pbkdf2.Key([]byte(pin), salt, pinHashIter, pinHashLen, sha256.New)
}
