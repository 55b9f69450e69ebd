package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/atmsim/bankcore/internal/core/domain"
	portsrepo "github.com/atmsim/bankcore/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountService orchestrates the cardholder-facing operations: login,
// withdraw, deposit, transfer, PIN change. Every operation validates through
// the ValidationService, mutates through the repository, and appends to the
// ledger.
type AccountService struct {
	BaseService
	accountRepo portsrepo.AccountRepository
	txnRepo     portsrepo.TransactionRepository
	validator   *ValidationService
	now         func() time.Time
}

// NewAccountService creates the cardholder operations service.
func NewAccountService(accountRepo portsrepo.AccountRepository, txnRepo portsrepo.TransactionRepository, validator *ValidationService) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		validator:   validator,
		now:         time.Now,
	}
}

// Login authenticates a cardholder. The credential chain owns the lockout
// policy; on success the account snapshot is returned and a login event is
// appended to the ledger.
func (s *AccountService) Login(ctx context.Context, cardNumber, pin string) (*domain.Account, error) {
	if err := s.validator.ValidateCredentials(ctx, cardNumber, pin); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindByCardNumber(ctx, cardNumber)
	if err != nil {
		return nil, err
	}

	s.recordTransaction(ctx, cardNumber, domain.Other, decimal.Zero, account.Balance, "login", "")
	s.LogInfo(ctx, "Login succeeded",
		slog.String("card_number", cardNumber),
		slog.Bool("is_admin", account.IsAdmin))
	return account, nil
}

// Withdraw debits the account and records a Withdrawal ledger entry carrying
// the post-operation balance. A persistence failure aborts before the entry
// is recorded.
func (s *AccountService) Withdraw(ctx context.Context, cardNumber string, amount decimal.Decimal) (*domain.Transaction, error) {
	if err := s.validator.ValidateWithdrawal(ctx, cardNumber, amount); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindByCardNumber(ctx, cardNumber)
	if err != nil {
		return nil, err
	}

	account.Balance = account.Balance.Sub(amount)
	if err := s.accountRepo.SaveAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to persist withdrawal", slog.String("card_number", cardNumber))
		return nil, err
	}

	txn := s.recordTransaction(ctx, cardNumber, domain.Withdrawal, amount, account.Balance, "withdrawal", "")
	s.LogInfo(ctx, "Withdrawal committed",
		slog.String("card_number", cardNumber),
		slog.String("amount", amount.String()),
		slog.String("balance_after", account.Balance.String()))
	return txn, nil
}

// Deposit credits the account and records a Deposit ledger entry.
func (s *AccountService) Deposit(ctx context.Context, cardNumber string, amount decimal.Decimal) (*domain.Transaction, error) {
	if err := s.validator.ValidateDeposit(ctx, cardNumber, amount); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindByCardNumber(ctx, cardNumber)
	if err != nil {
		return nil, err
	}

	account.Balance = account.Balance.Add(amount)
	if err := s.accountRepo.SaveAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to persist deposit", slog.String("card_number", cardNumber))
		return nil, err
	}

	txn := s.recordTransaction(ctx, cardNumber, domain.Deposit, amount, account.Balance, "deposit", "")
	s.LogInfo(ctx, "Deposit committed",
		slog.String("card_number", cardNumber),
		slog.String("amount", amount.String()),
		slog.String("balance_after", account.Balance.String()))
	return txn, nil
}

// Transfer moves amount between two accounts as two sequential single-account
// writes. The source is persisted first; if persisting the target fails, the
// source debit is rolled back and re-persisted before the failure is
// returned, so the transfer is all-or-nothing from the caller's perspective.
// On success two ledger entries are recorded: a Transfer debit on the source
// and a Deposit credit on the target, each carrying the counterparty's card.
func (s *AccountService) Transfer(ctx context.Context, fromCard, toCard string, amount decimal.Decimal) (debit, credit *domain.Transaction, err error) {
	if err := s.validator.ValidateTransfer(ctx, fromCard, toCard, amount); err != nil {
		return nil, nil, err
	}

	fromAccount, err := s.accountRepo.FindByCardNumber(ctx, fromCard)
	if err != nil {
		return nil, nil, err
	}
	toAccount, err := s.accountRepo.FindByCardNumber(ctx, toCard)
	if err != nil {
		return nil, nil, err
	}

	fromAccount.Balance = fromAccount.Balance.Sub(amount)
	toAccount.Balance = toAccount.Balance.Add(amount)

	if err := s.accountRepo.SaveAccount(ctx, *fromAccount); err != nil {
		s.LogError(ctx, err, "Failed to persist transfer source", slog.String("card_number", fromCard))
		return nil, nil, err
	}
	if err := s.accountRepo.SaveAccount(ctx, *toAccount); err != nil {
		// Roll the source debit back so the transfer stays all-or-nothing.
		fromAccount.Balance = fromAccount.Balance.Add(amount)
		if rbErr := s.accountRepo.SaveAccount(ctx, *fromAccount); rbErr != nil {
			s.LogError(ctx, rbErr, "Failed to roll back transfer source debit",
				slog.String("card_number", fromCard))
		}
		s.LogError(ctx, err, "Failed to persist transfer target", slog.String("card_number", toCard))
		return nil, nil, err
	}

	debit = s.recordTransaction(ctx, fromCard, domain.Transfer, amount, fromAccount.Balance,
		fmt.Sprintf("transfer to %s", toAccount.HolderName), toCard)
	credit = s.recordTransaction(ctx, toCard, domain.Deposit, amount, toAccount.Balance,
		fmt.Sprintf("transfer from %s", fromAccount.HolderName), fromCard)

	s.LogInfo(ctx, "Transfer committed",
		slog.String("from", fromCard),
		slog.String("to", toCard),
		slog.String("amount", amount.String()))
	return debit, credit, nil
}

// ChangePin validates the current credentials plus the new PIN and persists
// the rehashed credential. A PIN change is not part of the audit trail; it is
// recorded as a plain ledger event on the cardholder only.
func (s *AccountService) ChangePin(ctx context.Context, cardNumber, currentPIN, newPIN, confirmPIN string) error {
	if err := s.validator.ValidatePINChange(ctx, cardNumber, currentPIN, newPIN, confirmPIN); err != nil {
		return err
	}

	account, err := s.accountRepo.FindByCardNumber(ctx, cardNumber)
	if err != nil {
		return err
	}
	if err := account.SetPIN(newPIN); err != nil {
		return err
	}
	if err := s.accountRepo.SaveAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to persist PIN change", slog.String("card_number", cardNumber))
		return err
	}

	s.recordTransaction(ctx, cardNumber, domain.Other, decimal.Zero, account.Balance, "PIN changed", "")
	s.LogInfo(ctx, "PIN changed", slog.String("card_number", cardNumber))
	return nil
}

// BalanceInquiry returns the current balance and records the inquiry in the
// ledger.
func (s *AccountService) BalanceInquiry(ctx context.Context, cardNumber string) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindByCardNumber(ctx, cardNumber)
	if err != nil {
		return decimal.Zero, err
	}
	s.recordTransaction(ctx, cardNumber, domain.BalanceInquiry, decimal.Zero, account.Balance, "balance inquiry", "")
	return account.Balance, nil
}

// GetBalance returns the account balance without touching the ledger.
func (s *AccountService) GetBalance(ctx context.Context, cardNumber string) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindByCardNumber(ctx, cardNumber)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// GetHolderName returns the display name on the account.
func (s *AccountService) GetHolderName(ctx context.Context, cardNumber string) (string, error) {
	account, err := s.accountRepo.FindByCardNumber(ctx, cardNumber)
	if err != nil {
		return "", err
	}
	return account.HolderName, nil
}

// GetWithdrawLimit returns the per-operation withdrawal cap.
func (s *AccountService) GetWithdrawLimit(ctx context.Context, cardNumber string) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindByCardNumber(ctx, cardNumber)
	if err != nil {
		return decimal.Zero, err
	}
	return account.WithdrawLimit, nil
}

// IsAccountLocked reports the administrator-imposed lock flag.
func (s *AccountService) IsAccountLocked(ctx context.Context, cardNumber string) (bool, error) {
	account, err := s.accountRepo.FindByCardNumber(ctx, cardNumber)
	if err != nil {
		return false, err
	}
	return account.IsLocked, nil
}

// GetRecentTransactions returns up to count ledger entries for the card,
// newest first.
func (s *AccountService) GetRecentTransactions(ctx context.Context, cardNumber string, count int) ([]domain.Transaction, error) {
	txns, err := s.txnRepo.FindByCard(ctx, cardNumber)
	if err != nil {
		return nil, err
	}
	// entries are stored in append order; walk backward
	out := make([]domain.Transaction, 0, count)
	for i := len(txns) - 1; i >= 0 && len(out) < count; i-- {
		out = append(out, txns[i])
	}
	return out, nil
}

// recordTransaction appends one ledger entry for an already-committed
// operation. The account mutation is durable by the time this runs, so an
// append failure is logged rather than unwinding the operation.
func (s *AccountService) recordTransaction(ctx context.Context, cardNumber string, txnType domain.TransactionType,
	amount, balanceAfter decimal.Decimal, description, counterparty string) *domain.Transaction {
	txn := domain.Transaction{
		TransactionID:    uuid.NewString(),
		CardNumber:       cardNumber,
		Timestamp:        s.now(),
		Type:             txnType,
		Amount:           amount,
		BalanceAfter:     balanceAfter,
		Description:      description,
		CounterpartyCard: counterparty,
	}
	if err := s.txnRepo.Append(ctx, txn); err != nil {
		s.LogError(ctx, err, "Failed to append ledger entry",
			slog.String("card_number", cardNumber),
			slog.String("type", string(txnType)))
	}
	return &txn
}
