package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/atmsim/bankcore/internal/apperrors"
	"github.com/atmsim/bankcore/internal/core/domain"
	portsrepo "github.com/atmsim/bankcore/internal/core/ports/repositories"
	"github.com/atmsim/bankcore/internal/dto"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Per-operation caps on money movement.
var (
	maxSingleDeposit  = decimal.NewFromInt(1_000_000)
	maxSingleTransfer = decimal.NewFromInt(1_000_000)
)

// Rule is one named validation step. A nil return means the rule passed.
type Rule func() error

// runChain evaluates rules in order and returns the first failure, or nil
// when every rule passes.
func runChain(rules ...Rule) error {
	for _, rule := range rules {
		if err := rule(); err != nil {
			return err
		}
	}
	return nil
}

// ValidationService centralizes every rule the account and admin services
// need, so a given check has identical semantics wherever it appears in a
// chain. All chains are read-only, with one documented exception: credential
// validation persists failed-login state (see ValidateCredentials).
type ValidationService struct {
	BaseService
	accountRepo portsrepo.AccountRepository
	validate    *validator.Validate
	now         func() time.Time

	maxAttempts int
	lockFor     time.Duration
}

// ValidationOption configures a ValidationService.
type ValidationOption func(*ValidationService)

// WithValidationClock overrides the time source. Tests use it to step
// through lockout windows.
func WithValidationClock(now func() time.Time) ValidationOption {
	return func(s *ValidationService) {
		s.now = now
	}
}

// WithLockoutPolicy overrides the failed-login lockout policy.
func WithLockoutPolicy(maxAttempts int, lockFor time.Duration) ValidationOption {
	return func(s *ValidationService) {
		if maxAttempts > 0 {
			s.maxAttempts = maxAttempts
		}
		if lockFor > 0 {
			s.lockFor = lockFor
		}
	}
}

// NewValidationService creates a validation service bound to the account store.
func NewValidationService(accountRepo portsrepo.AccountRepository, options ...ValidationOption) *ValidationService {
	s := &ValidationService{
		accountRepo: accountRepo,
		validate:    validator.New(),
		now:         time.Now,
		maxAttempts: domain.MaxFailedAttempts,
		lockFor:     domain.TempLockDuration,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// --- shared sub-rules ---

func (s *ValidationService) cardFormat(cardNumber string) Rule {
	return func() error {
		if !domain.ValidCardNumber(cardNumber) {
			return fmt.Errorf("card number must be exactly 16 digits: %w", apperrors.ErrValidation)
		}
		return nil
	}
}

func (s *ValidationService) pinFormat(pin string) Rule {
	return func() error {
		if !domain.ValidPIN(pin) {
			return fmt.Errorf("PIN must be 4 to 6 digits: %w", apperrors.ErrValidation)
		}
		return nil
	}
}

func (s *ValidationService) accountExists(ctx context.Context, cardNumber string) Rule {
	return func() error {
		exists, err := s.accountRepo.AccountExists(ctx, cardNumber)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.ErrNotFound
		}
		return nil
	}
}

// accountNotLocked checks both the administrator-imposed lock and the
// failed-login lockout window, synthesizing the message for each case.
func (s *ValidationService) accountNotLocked(ctx context.Context, cardNumber string) Rule {
	return func() error {
		account, err := s.accountRepo.FindByCardNumber(ctx, cardNumber)
		if err != nil {
			return err
		}
		if account.IsLocked {
			return fmt.Errorf("account is locked, contact an administrator: %w", apperrors.ErrLocked)
		}
		now := s.now()
		if account.IsTemporarilyLocked(now) {
			return fmt.Errorf("account temporarily locked after repeated failed logins, try again in %d minutes: %w",
				remainingMinutes(account.TemporaryLockUntil, now), apperrors.ErrTemporarilyLocked)
		}
		return nil
	}
}

func (s *ValidationService) amountPositive(amount decimal.Decimal, operation string) Rule {
	return func() error {
		if !amount.IsPositive() {
			return fmt.Errorf("%s amount must be positive: %w", operation, apperrors.ErrValidation)
		}
		return nil
	}
}

func (s *ValidationService) sufficientBalance(ctx context.Context, cardNumber string, amount decimal.Decimal) Rule {
	return func() error {
		account, err := s.accountRepo.FindByCardNumber(ctx, cardNumber)
		if err != nil {
			return err
		}
		if amount.GreaterThan(account.Balance) {
			return apperrors.ErrInsufficientFunds
		}
		return nil
	}
}

func (s *ValidationService) withinWithdrawLimit(ctx context.Context, cardNumber string, amount decimal.Decimal) Rule {
	return func() error {
		account, err := s.accountRepo.FindByCardNumber(ctx, cardNumber)
		if err != nil {
			return err
		}
		if amount.GreaterThan(account.WithdrawLimit) {
			return fmt.Errorf("amount exceeds the per-operation limit of %s: %w",
				account.WithdrawLimit.String(), apperrors.ErrLimitExceeded)
		}
		return nil
	}
}

// --- chains ---

// ValidateCredentials runs the login chain: card format, account lookup,
// lock state, PIN verification, lockout bookkeeping.
//
// This chain deliberately deviates from validate-then-mutate: a PIN mismatch
// records the failed attempt on the account and persists it before the
// failure is returned, so attempts accumulate durably across sessions. A
// successful match after earlier failures resets the counter, also durably.
func (s *ValidationService) ValidateCredentials(ctx context.Context, cardNumber, pin string) error {
	if err := runChain(
		s.cardFormat(cardNumber),
		s.pinFormat(pin),
		s.accountExists(ctx, cardNumber),
		s.accountNotLocked(ctx, cardNumber),
	); err != nil {
		return err
	}

	account, err := s.accountRepo.FindByCardNumber(ctx, cardNumber)
	if err != nil {
		return err
	}

	if !account.VerifyPIN(pin) {
		lockedNow := account.RecordFailedLoginWithPolicy(s.now(), s.maxAttempts, s.lockFor)
		if saveErr := s.accountRepo.SaveAccount(ctx, *account); saveErr != nil {
			s.LogError(ctx, saveErr, "Failed to persist failed-login state",
				slog.String("card_number", cardNumber))
		}
		if lockedNow {
			return fmt.Errorf("incorrect PIN, account temporarily locked for %d minutes after repeated failures: %w",
				int(s.lockFor.Minutes()), apperrors.ErrTemporarilyLocked)
		}
		return fmt.Errorf("card number or PIN is incorrect, attempts remaining: %d: %w",
			s.maxAttempts-account.FailedLoginAttempts, apperrors.ErrValidation)
	}

	if account.FailedLoginAttempts > 0 {
		account.ResetFailedLoginAttempts()
		if err := s.accountRepo.SaveAccount(ctx, *account); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAdminLogin runs the credential chain and additionally requires the
// admin flag.
func (s *ValidationService) ValidateAdminLogin(ctx context.Context, cardNumber, pin string) error {
	if err := s.ValidateCredentials(ctx, cardNumber, pin); err != nil {
		return err
	}
	account, err := s.accountRepo.FindByCardNumber(ctx, cardNumber)
	if err != nil {
		return err
	}
	if !account.IsAdmin {
		return fmt.Errorf("this account has no administrative privileges: %w", apperrors.ErrPermission)
	}
	return nil
}

// ValidateWithdrawal checks a withdrawal before any mutation happens.
func (s *ValidationService) ValidateWithdrawal(ctx context.Context, cardNumber string, amount decimal.Decimal) error {
	return runChain(
		s.amountPositive(amount, "withdrawal"),
		s.accountExists(ctx, cardNumber),
		s.accountNotLocked(ctx, cardNumber),
		s.withinWithdrawLimit(ctx, cardNumber, amount),
		s.sufficientBalance(ctx, cardNumber, amount),
	)
}

// ValidateDeposit checks a deposit before any mutation happens.
func (s *ValidationService) ValidateDeposit(ctx context.Context, cardNumber string, amount decimal.Decimal) error {
	return runChain(
		s.amountPositive(amount, "deposit"),
		s.accountExists(ctx, cardNumber),
		s.accountNotLocked(ctx, cardNumber),
		func() error {
			if amount.GreaterThan(maxSingleDeposit) {
				return fmt.Errorf("a single deposit cannot exceed %s: %w", maxSingleDeposit.String(), apperrors.ErrValidation)
			}
			return nil
		},
	)
}

// ValidateTransfer checks both sides of a transfer before any mutation happens.
func (s *ValidationService) ValidateTransfer(ctx context.Context, fromCard, toCard string, amount decimal.Decimal) error {
	return runChain(
		s.amountPositive(amount, "transfer"),
		func() error {
			if fromCard == toCard {
				return fmt.Errorf("source and target card numbers must differ: %w", apperrors.ErrValidation)
			}
			return nil
		},
		s.accountExists(ctx, fromCard),
		s.accountNotLocked(ctx, fromCard),
		s.accountExists(ctx, toCard),
		s.accountNotLocked(ctx, toCard),
		s.sufficientBalance(ctx, fromCard, amount),
		func() error {
			if amount.GreaterThan(maxSingleTransfer) {
				return fmt.Errorf("a single transfer cannot exceed %s: %w", maxSingleTransfer.String(), apperrors.ErrValidation)
			}
			return nil
		},
	)
}

// ValidatePINChange checks current credentials, the new PIN's format, the
// confirmation match, and that the new PIN differs from the old one.
func (s *ValidationService) ValidatePINChange(ctx context.Context, cardNumber, currentPIN, newPIN, confirmPIN string) error {
	return runChain(
		func() error {
			return s.ValidateCredentials(ctx, cardNumber, currentPIN)
		},
		s.pinFormat(newPIN),
		func() error {
			if newPIN != confirmPIN {
				return fmt.Errorf("the new PIN and its confirmation do not match: %w", apperrors.ErrValidation)
			}
			return nil
		},
		func() error {
			account, err := s.accountRepo.FindByCardNumber(ctx, cardNumber)
			if err != nil {
				return err
			}
			if account.VerifyPIN(newPIN) {
				return fmt.Errorf("the new PIN must differ from the current one: %w", apperrors.ErrValidation)
			}
			return nil
		},
	)
}

// ValidateCreateAccount checks a create request: struct-tag formats first,
// then uniqueness and value bounds.
func (s *ValidationService) ValidateCreateAccount(ctx context.Context, req dto.CreateAccountRequest) error {
	return runChain(
		func() error {
			if err := s.validate.Struct(req); err != nil {
				return fmt.Errorf("%v: %w", err, apperrors.ErrValidation)
			}
			return nil
		},
		func() error {
			exists, err := s.accountRepo.AccountExists(ctx, req.CardNumber)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("card number %s is already in use: %w", req.CardNumber, apperrors.ErrDuplicate)
			}
			return nil
		},
		func() error {
			if req.Balance.IsNegative() {
				return fmt.Errorf("initial balance must not be negative: %w", apperrors.ErrValidation)
			}
			if !req.WithdrawLimit.IsPositive() {
				return fmt.Errorf("withdraw limit must be positive: %w", apperrors.ErrValidation)
			}
			return nil
		},
	)
}

// ValidateUpdateAccount checks an update request against an existing account.
func (s *ValidationService) ValidateUpdateAccount(ctx context.Context, cardNumber string, req dto.UpdateAccountRequest) error {
	return runChain(
		s.accountExists(ctx, cardNumber),
		func() error {
			if err := s.validate.Struct(req); err != nil {
				return fmt.Errorf("%v: %w", err, apperrors.ErrValidation)
			}
			return nil
		},
		func() error {
			if req.Balance.IsNegative() {
				return fmt.Errorf("balance must not be negative: %w", apperrors.ErrValidation)
			}
			if !req.WithdrawLimit.IsPositive() {
				return fmt.Errorf("withdraw limit must be positive: %w", apperrors.ErrValidation)
			}
			return nil
		},
	)
}

// ValidateAdminOperation gates every privileged operation: the acting card
// must exist, carry the admin flag, and not be locked.
func (s *ValidationService) ValidateAdminOperation(ctx context.Context, actingCard string) error {
	account, err := s.accountRepo.FindByCardNumber(ctx, actingCard)
	if err != nil {
		return fmt.Errorf("admin account lookup failed: %w", err)
	}
	if !account.IsAdmin {
		return fmt.Errorf("this account has no administrative privileges: %w", apperrors.ErrPermission)
	}
	if account.IsLocked {
		return fmt.Errorf("admin account is locked: %w", apperrors.ErrLocked)
	}
	return nil
}

func remainingMinutes(until, now time.Time) int {
	return int(math.Ceil(until.Sub(now).Minutes()))
}
