// Package facade aggregates the account, admin and analytics services behind
// one entry surface for the presentation layer. It holds no state of its own
// and performs no business logic; it translates service errors into result
// objects and assembles receipts from data the services already produced.
package facade

import (
	"context"

	"github.com/atmsim/bankcore/internal/core/domain"
	"github.com/atmsim/bankcore/internal/core/services"
	"github.com/atmsim/bankcore/internal/dto"
	"github.com/shopspring/decimal"
)

// BankFacade is the single entry point the presentation layer talks to.
type BankFacade struct {
	accountService   *services.AccountService
	adminService     *services.AdminService
	analyticsService *services.AnalyticsService
	bankLabel        string
}

// New creates a facade over the three services.
func New(accountService *services.AccountService, adminService *services.AdminService, analyticsService *services.AnalyticsService, bankLabel string) *BankFacade {
	return &BankFacade{
		accountService:   accountService,
		adminService:     adminService,
		analyticsService: analyticsService,
		bankLabel:        bankLabel,
	}
}

// Login authenticates a cardholder and returns the account snapshot the
// presentation layer shows after a successful login.
func (f *BankFacade) Login(ctx context.Context, cardNumber, pin string) dto.LoginResult {
	account, err := f.accountService.Login(ctx, cardNumber, pin)
	if err != nil {
		return dto.LoginResult{OperationResult: dto.Fail(err.Error())}
	}
	return dto.LoginResult{
		OperationResult: dto.OK(),
		IsAdmin:         account.IsAdmin,
		HolderName:      account.HolderName,
		Balance:         account.Balance,
		WithdrawLimit:   account.WithdrawLimit,
	}
}

// Withdraw debits the account and returns a receipt on success.
func (f *BankFacade) Withdraw(ctx context.Context, cardNumber string, amount decimal.Decimal) (dto.OperationResult, *dto.Receipt) {
	txn, err := f.accountService.Withdraw(ctx, cardNumber, amount)
	if err != nil {
		return dto.Fail(err.Error()), nil
	}
	return dto.OK(), f.receipt(ctx, txn)
}

// Deposit credits the account and returns a receipt on success.
func (f *BankFacade) Deposit(ctx context.Context, cardNumber string, amount decimal.Decimal) (dto.OperationResult, *dto.Receipt) {
	txn, err := f.accountService.Deposit(ctx, cardNumber, amount)
	if err != nil {
		return dto.Fail(err.Error()), nil
	}
	return dto.OK(), f.receipt(ctx, txn)
}

// Transfer moves funds between two accounts and returns the source-side
// receipt on success.
func (f *BankFacade) Transfer(ctx context.Context, fromCard, toCard string, amount decimal.Decimal) (dto.OperationResult, *dto.Receipt) {
	debit, _, err := f.accountService.Transfer(ctx, fromCard, toCard, amount)
	if err != nil {
		return dto.Fail(err.Error()), nil
	}
	return dto.OK(), f.receipt(ctx, debit)
}

// ChangePin replaces the cardholder's PIN.
func (f *BankFacade) ChangePin(ctx context.Context, cardNumber, currentPIN, newPIN, confirmPIN string) dto.OperationResult {
	if err := f.accountService.ChangePin(ctx, cardNumber, currentPIN, newPIN, confirmPIN); err != nil {
		return dto.Fail(err.Error())
	}
	return dto.OK()
}

// GetBalance records a balance inquiry and returns the balance.
func (f *BankFacade) GetBalance(ctx context.Context, cardNumber string) (dto.OperationResult, decimal.Decimal) {
	balance, err := f.accountService.BalanceInquiry(ctx, cardNumber)
	if err != nil {
		return dto.Fail(err.Error()), decimal.Zero
	}
	return dto.OK(), balance
}

// GetRecentTransactions returns up to count ledger entries, newest first.
func (f *BankFacade) GetRecentTransactions(ctx context.Context, cardNumber string, count int) (dto.OperationResult, []domain.Transaction) {
	txns, err := f.accountService.GetRecentTransactions(ctx, cardNumber, count)
	if err != nil {
		return dto.Fail(err.Error()), nil
	}
	return dto.OK(), txns
}

// AdminLogin authenticates an administrator.
func (f *BankFacade) AdminLogin(ctx context.Context, cardNumber, pin string) dto.LoginResult {
	account, err := f.adminService.AdminLogin(ctx, cardNumber, pin)
	if err != nil {
		return dto.LoginResult{OperationResult: dto.Fail(err.Error())}
	}
	return dto.LoginResult{
		OperationResult: dto.OK(),
		IsAdmin:         true,
		HolderName:      account.HolderName,
		Balance:         account.Balance,
		WithdrawLimit:   account.WithdrawLimit,
	}
}

// CreateAccount provisions a new account.
func (f *BankFacade) CreateAccount(ctx context.Context, actingCard string, req dto.CreateAccountRequest) (dto.OperationResult, *dto.AccountResponse) {
	resp, err := f.adminService.CreateAccount(ctx, actingCard, req)
	if err != nil {
		return dto.Fail(err.Error()), nil
	}
	return dto.OK(), resp
}

// UpdateAccount overwrites an account's mutable fields.
func (f *BankFacade) UpdateAccount(ctx context.Context, actingCard, cardNumber string, req dto.UpdateAccountRequest) (dto.OperationResult, *dto.AccountResponse) {
	resp, err := f.adminService.UpdateAccount(ctx, actingCard, cardNumber, req)
	if err != nil {
		return dto.Fail(err.Error()), nil
	}
	return dto.OK(), resp
}

// DeleteAccount removes an account and its ledger history.
func (f *BankFacade) DeleteAccount(ctx context.Context, actingCard, cardNumber string) dto.OperationResult {
	if err := f.adminService.DeleteAccount(ctx, actingCard, cardNumber); err != nil {
		return dto.Fail(err.Error())
	}
	return dto.OK()
}

// SetAccountLockStatus locks or unlocks an account.
func (f *BankFacade) SetAccountLockStatus(ctx context.Context, actingCard, cardNumber string, locked bool) dto.OperationResult {
	if err := f.adminService.SetAccountLockStatus(ctx, actingCard, cardNumber, locked); err != nil {
		return dto.Fail(err.Error())
	}
	return dto.OK()
}

// ResetPin replaces an account's PIN without the old one.
func (f *BankFacade) ResetPin(ctx context.Context, actingCard, cardNumber, newPIN string) dto.OperationResult {
	if err := f.adminService.ResetPin(ctx, actingCard, cardNumber, newPIN); err != nil {
		return dto.Fail(err.Error())
	}
	return dto.OK()
}

// SetWithdrawLimit changes the per-operation withdrawal cap.
func (f *BankFacade) SetWithdrawLimit(ctx context.Context, actingCard, cardNumber string, limit decimal.Decimal) dto.OperationResult {
	if err := f.adminService.SetWithdrawLimit(ctx, actingCard, cardNumber, limit); err != nil {
		return dto.Fail(err.Error())
	}
	return dto.OK()
}

// ListAccounts returns every account.
func (f *BankFacade) ListAccounts(ctx context.Context, actingCard string) (dto.OperationResult, []dto.AccountResponse) {
	accounts, err := f.adminService.ListAccounts(ctx, actingCard)
	if err != nil {
		return dto.Fail(err.Error()), nil
	}
	return dto.OK(), accounts
}

// GetAccount returns one account by card number.
func (f *BankFacade) GetAccount(ctx context.Context, actingCard, cardNumber string) (dto.OperationResult, *dto.AccountResponse) {
	resp, err := f.adminService.GetAccount(ctx, actingCard, cardNumber)
	if err != nil {
		return dto.Fail(err.Error()), nil
	}
	return dto.OK(), resp
}

// PredictBalance forecasts the balance daysAhead days out.
func (f *BankFacade) PredictBalance(ctx context.Context, cardNumber string, daysAhead int) (dto.OperationResult, *dto.ForecastResponse) {
	resp, err := f.analyticsService.PredictBalance(ctx, cardNumber, daysAhead)
	if err != nil {
		return dto.Fail(err.Error()), nil
	}
	return dto.OK(), resp
}

// GetAccountTrend buckets income and expense per calendar day.
func (f *BankFacade) GetAccountTrend(ctx context.Context, cardNumber string, days int) (dto.OperationResult, *dto.TrendResponse) {
	resp, err := f.analyticsService.GetAccountTrend(ctx, cardNumber, days)
	if err != nil {
		return dto.Fail(err.Error()), nil
	}
	return dto.OK(), resp
}

// GetTransactionFrequency returns transactions per day over the window.
func (f *BankFacade) GetTransactionFrequency(ctx context.Context, cardNumber string, days int) (dto.OperationResult, float64) {
	freq, err := f.analyticsService.GetTransactionFrequency(ctx, cardNumber, days)
	if err != nil {
		return dto.Fail(err.Error()), 0
	}
	return dto.OK(), freq
}

// receipt assembles the printing collaborator's input from a committed
// transaction. Counterparty name lookup is best-effort.
func (f *BankFacade) receipt(ctx context.Context, txn *domain.Transaction) *dto.Receipt {
	r := &dto.Receipt{
		BankLabel:        f.bankLabel,
		CardNumber:       txn.CardNumber,
		TransactionType:  string(txn.Type),
		Amount:           txn.Amount,
		BalanceAfter:     txn.BalanceAfter,
		CounterpartyCard: txn.CounterpartyCard,
		Timestamp:        txn.Timestamp,
		TransactionID:    txn.TransactionID,
	}
	if name, err := f.accountService.GetHolderName(ctx, txn.CardNumber); err == nil {
		r.HolderName = name
	}
	if txn.CounterpartyCard != "" {
		if name, err := f.accountService.GetHolderName(ctx, txn.CounterpartyCard); err == nil {
			r.CounterpartyName = name
		}
	}
	return r
}
