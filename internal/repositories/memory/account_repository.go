// Package memory provides map-backed repository implementations with no I/O.
// They serve service tests and stand as the second, swappable backend behind
// the repository ports.
package memory

import (
	"context"

	"github.com/atmsim/bankcore/internal/apperrors"
	"github.com/atmsim/bankcore/internal/core/domain"
	portsrepo "github.com/atmsim/bankcore/internal/core/ports/repositories"
)

// AccountRepository is an in-memory account store.
type AccountRepository struct {
	accounts map[string]domain.Account

	// FailSaves makes every mutating call fail with ErrPersistence.
	// Tests use it to exercise abort and rollback paths.
	FailSaves bool

	// FailSaveCard makes SaveAccount fail for this card only, so tests can
	// break one side of a multi-account write.
	FailSaveCard string
}

var _ portsrepo.AccountRepository = (*AccountRepository)(nil)

// NewAccountRepository creates an empty in-memory account store.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[string]domain.Account)}
}

// Put inserts an account directly, bypassing persistence semantics. Test setup only.
func (r *AccountRepository) Put(account domain.Account) {
	r.accounts[account.CardNumber] = account
}

func (r *AccountRepository) FindByCardNumber(ctx context.Context, cardNumber string) (*domain.Account, error) {
	a, ok := r.accounts[cardNumber]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := a
	return &cp, nil
}

func (r *AccountRepository) GetAllAccounts(ctx context.Context) ([]domain.Account, error) {
	out := make([]domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (r *AccountRepository) AccountExists(ctx context.Context, cardNumber string) (bool, error) {
	_, ok := r.accounts[cardNumber]
	return ok, nil
}

func (r *AccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	if r.FailSaves || (r.FailSaveCard != "" && account.CardNumber == r.FailSaveCard) {
		return apperrors.ErrPersistence
	}
	r.accounts[account.CardNumber] = account
	return nil
}

func (r *AccountRepository) DeleteAccount(ctx context.Context, cardNumber string) error {
	if r.FailSaves {
		return apperrors.ErrPersistence
	}
	if _, ok := r.accounts[cardNumber]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.accounts, cardNumber)
	return nil
}

func (r *AccountRepository) LoadAll(ctx context.Context) error { return nil }

func (r *AccountRepository) SaveAll(ctx context.Context) error {
	if r.FailSaves {
		return apperrors.ErrPersistence
	}
	return nil
}
