package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/atmsim/bankcore/internal/apperrors"
	"github.com/atmsim/bankcore/internal/core/domain"
	portsrepo "github.com/atmsim/bankcore/internal/core/ports/repositories"
	"github.com/atmsim/bankcore/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdminService implements the privileged account-lifecycle operations. Every
// operation is gated on the acting card holding the admin flag, and every
// lifecycle change leaves an audit entry on both the affected card's ledger
// and the acting admin's. Login, logout and PIN events are not audited.
type AdminService struct {
	BaseService
	accountRepo portsrepo.AccountRepository
	txnRepo     portsrepo.TransactionRepository
	validator   *ValidationService
	now         func() time.Time
}

// NewAdminService creates the privileged operations service.
func NewAdminService(accountRepo portsrepo.AccountRepository, txnRepo portsrepo.TransactionRepository, validator *ValidationService) *AdminService {
	return &AdminService{
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		validator:   validator,
		now:         time.Now,
	}
}

// AdminLogin authenticates an administrator. The credential chain is the same
// one cardholders go through, with the admin flag required on top.
func (s *AdminService) AdminLogin(ctx context.Context, cardNumber, pin string) (*domain.Account, error) {
	if err := s.validator.ValidateAdminLogin(ctx, cardNumber, pin); err != nil {
		return nil, err
	}
	account, err := s.accountRepo.FindByCardNumber(ctx, cardNumber)
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Admin login succeeded", slog.String("card_number", cardNumber))
	return account, nil
}

// CreateAccount provisions a new cardholder account with a hashed PIN.
func (s *AdminService) CreateAccount(ctx context.Context, actingCard string, req dto.CreateAccountRequest) (*dto.AccountResponse, error) {
	if err := s.validator.ValidateAdminOperation(ctx, actingCard); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateCreateAccount(ctx, req); err != nil {
		return nil, err
	}

	account, err := domain.NewAccount(req.CardNumber, req.PIN, req.HolderName, req.Balance, req.WithdrawLimit, req.IsAdmin)
	if err != nil {
		return nil, err
	}
	if err := s.accountRepo.SaveAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to persist new account", slog.String("card_number", req.CardNumber))
		return nil, err
	}

	s.audit(ctx, actingCard, account.CardNumber, account.Balance,
		fmt.Sprintf("account created for %s", account.HolderName))
	s.LogInfo(ctx, "Account created",
		slog.String("card_number", account.CardNumber),
		slog.String("acting_admin", actingCard))
	resp := dto.ToAccountResponse(account)
	return &resp, nil
}

// UpdateAccount applies an administrator edit. The PIN and the admin flag are
// never writable through this path.
func (s *AdminService) UpdateAccount(ctx context.Context, actingCard, cardNumber string, req dto.UpdateAccountRequest) (*dto.AccountResponse, error) {
	if err := s.validator.ValidateAdminOperation(ctx, actingCard); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateUpdateAccount(ctx, cardNumber, req); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindByCardNumber(ctx, cardNumber)
	if err != nil {
		return nil, err
	}
	account.HolderName = req.HolderName
	account.Balance = req.Balance
	account.WithdrawLimit = req.WithdrawLimit
	account.IsLocked = req.IsLocked
	if err := s.accountRepo.SaveAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to persist account update", slog.String("card_number", cardNumber))
		return nil, err
	}

	s.audit(ctx, actingCard, cardNumber, account.Balance, "account details updated")
	s.LogInfo(ctx, "Account updated",
		slog.String("card_number", cardNumber),
		slog.String("acting_admin", actingCard))
	resp := dto.ToAccountResponse(account)
	return &resp, nil
}

// DeleteAccount removes an account and purges its ledger. The last admin
// account can never be deleted; at least one must remain so the system stays
// administrable.
func (s *AdminService) DeleteAccount(ctx context.Context, actingCard, cardNumber string) error {
	if err := s.validator.ValidateAdminOperation(ctx, actingCard); err != nil {
		return err
	}

	account, err := s.accountRepo.FindByCardNumber(ctx, cardNumber)
	if err != nil {
		return err
	}
	if account.IsAdmin {
		last, err := s.isLastAdmin(ctx, cardNumber)
		if err != nil {
			return err
		}
		if last {
			return fmt.Errorf("cannot delete the last administrator account: %w", apperrors.ErrInvariant)
		}
	}

	if err := s.accountRepo.DeleteAccount(ctx, cardNumber); err != nil {
		s.LogError(ctx, err, "Failed to delete account", slog.String("card_number", cardNumber))
		return err
	}
	if err := s.txnRepo.PurgeCard(ctx, cardNumber); err != nil {
		s.LogError(ctx, err, "Failed to purge ledger for deleted account",
			slog.String("card_number", cardNumber))
	}

	// The affected card's ledger is gone, so the audit entry lands on the
	// acting admin's ledger only.
	s.appendAudit(ctx, actingCard, decimal.Zero,
		fmt.Sprintf("account %s deleted", cardNumber))
	s.LogInfo(ctx, "Account deleted",
		slog.String("card_number", cardNumber),
		slog.String("acting_admin", actingCard))
	return nil
}

// SetAccountLockStatus locks or unlocks an account. Admin accounts cannot be
// locked through this path. Unlocking also clears any accumulated failed-login
// state so the holder gets a clean slate.
func (s *AdminService) SetAccountLockStatus(ctx context.Context, actingCard, cardNumber string, locked bool) error {
	if err := s.validator.ValidateAdminOperation(ctx, actingCard); err != nil {
		return err
	}

	account, err := s.accountRepo.FindByCardNumber(ctx, cardNumber)
	if err != nil {
		return err
	}
	if locked && account.IsAdmin {
		return fmt.Errorf("administrator accounts cannot be locked: %w", apperrors.ErrPermission)
	}

	account.IsLocked = locked
	if !locked {
		account.ResetFailedLoginAttempts()
	}
	if err := s.accountRepo.SaveAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to persist lock change", slog.String("card_number", cardNumber))
		return err
	}

	action := "account unlocked"
	if locked {
		action = "account locked"
	}
	s.audit(ctx, actingCard, cardNumber, account.Balance, action)
	s.LogInfo(ctx, "Account lock status changed",
		slog.String("card_number", cardNumber),
		slog.Bool("locked", locked),
		slog.String("acting_admin", actingCard))
	return nil
}

// ResetPin replaces an account's PIN without requiring the old one. This is a
// PIN event, so it is not part of the audit trail.
func (s *AdminService) ResetPin(ctx context.Context, actingCard, cardNumber, newPIN string) error {
	if err := s.validator.ValidateAdminOperation(ctx, actingCard); err != nil {
		return err
	}
	if !domain.ValidPIN(newPIN) {
		return fmt.Errorf("PIN must be 4 to 6 digits: %w", apperrors.ErrValidation)
	}

	account, err := s.accountRepo.FindByCardNumber(ctx, cardNumber)
	if err != nil {
		return err
	}
	if err := account.SetPIN(newPIN); err != nil {
		return err
	}
	account.ResetFailedLoginAttempts()
	if err := s.accountRepo.SaveAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to persist PIN reset", slog.String("card_number", cardNumber))
		return err
	}

	s.LogInfo(ctx, "PIN reset",
		slog.String("card_number", cardNumber),
		slog.String("acting_admin", actingCard))
	return nil
}

// SetWithdrawLimit changes the per-operation withdrawal cap.
func (s *AdminService) SetWithdrawLimit(ctx context.Context, actingCard, cardNumber string, limit decimal.Decimal) error {
	if err := s.validator.ValidateAdminOperation(ctx, actingCard); err != nil {
		return err
	}
	if !limit.IsPositive() {
		return fmt.Errorf("withdraw limit must be positive: %w", apperrors.ErrValidation)
	}

	account, err := s.accountRepo.FindByCardNumber(ctx, cardNumber)
	if err != nil {
		return err
	}
	account.WithdrawLimit = limit
	if err := s.accountRepo.SaveAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to persist limit change", slog.String("card_number", cardNumber))
		return err
	}

	s.audit(ctx, actingCard, cardNumber, account.Balance,
		fmt.Sprintf("withdraw limit set to %s", limit.String()))
	s.LogInfo(ctx, "Withdraw limit changed",
		slog.String("card_number", cardNumber),
		slog.String("limit", limit.String()),
		slog.String("acting_admin", actingCard))
	return nil
}

// ListAccounts returns every account, credential material excluded.
func (s *AdminService) ListAccounts(ctx context.Context, actingCard string) ([]dto.AccountResponse, error) {
	if err := s.validator.ValidateAdminOperation(ctx, actingCard); err != nil {
		return nil, err
	}
	accounts, err := s.accountRepo.GetAllAccounts(ctx)
	if err != nil {
		return nil, err
	}
	return dto.ToListAccountResponse(accounts), nil
}

// GetAccount returns one account by card number, credential material excluded.
func (s *AdminService) GetAccount(ctx context.Context, actingCard, cardNumber string) (*dto.AccountResponse, error) {
	if err := s.validator.ValidateAdminOperation(ctx, actingCard); err != nil {
		return nil, err
	}
	account, err := s.accountRepo.FindByCardNumber(ctx, cardNumber)
	if err != nil {
		return nil, err
	}
	resp := dto.ToAccountResponse(account)
	return &resp, nil
}

// isLastAdmin reports whether cardNumber is the only admin account left.
func (s *AdminService) isLastAdmin(ctx context.Context, cardNumber string) (bool, error) {
	accounts, err := s.accountRepo.GetAllAccounts(ctx)
	if err != nil {
		return false, err
	}
	for _, account := range accounts {
		if account.IsAdmin && account.CardNumber != cardNumber {
			return false, nil
		}
	}
	return true, nil
}

// audit records one lifecycle event on the affected card's ledger and mirrors
// it on the acting admin's.
func (s *AdminService) audit(ctx context.Context, actingCard, affectedCard string, balanceAfter decimal.Decimal, description string) {
	s.appendAudit(ctx, affectedCard, balanceAfter, description)
	if actingCard != affectedCard {
		s.appendAudit(ctx, actingCard, decimal.Zero,
			fmt.Sprintf("%s (card %s)", description, affectedCard))
	}
}

func (s *AdminService) appendAudit(ctx context.Context, cardNumber string, balanceAfter decimal.Decimal, description string) {
	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		CardNumber:    cardNumber,
		Timestamp:     s.now(),
		Type:          domain.Other,
		Amount:        decimal.Zero,
		BalanceAfter:  balanceAfter,
		Description:   description,
	}
	if err := s.txnRepo.Append(ctx, txn); err != nil {
		s.LogError(ctx, err, "Failed to append audit entry",
			slog.String("card_number", cardNumber))
	}
}
