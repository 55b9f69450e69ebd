package jsonstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/atmsim/bankcore/internal/apperrors"
	"github.com/atmsim/bankcore/internal/core/domain"
	portsrepo "github.com/atmsim/bankcore/internal/core/ports/repositories"
	"github.com/atmsim/bankcore/internal/models"
)

// JSONAccountRepository is the file-backed account store. The in-memory map
// keyed by card number is the source of truth for reads; every mutating call
// writes the full snapshot back to the backing file before returning success.
type JSONAccountRepository struct {
	path     string
	logger   *slog.Logger
	accounts map[string]domain.Account
}

// Ensure JSONAccountRepository implements portsrepo.AccountRepository
var _ portsrepo.AccountRepository = (*JSONAccountRepository)(nil)

// NewAccountRepository opens the account store at path. On first run with no
// backing file it seeds the given demonstration accounts and persists them;
// a later run with an existing file never re-seeds. Legacy records carrying a
// cleartext PIN are migrated to salted-hash form during load.
func NewAccountRepository(path string, seeds []domain.Account, logger *slog.Logger) (*JSONAccountRepository, error) {
	r := &JSONAccountRepository{
		path:     path,
		logger:   logger,
		accounts: make(map[string]domain.Account),
	}

	err := r.LoadAll(context.Background())
	switch {
	case err == nil:
		// An existing store must stay administrable. If every admin record
		// is gone, restore the seeded admin accounts.
		if !r.hasAdmin() {
			restored := 0
			for _, a := range seeds {
				if a.IsAdmin {
					r.accounts[a.CardNumber] = a
					restored++
				}
			}
			if restored > 0 {
				logger.Warn("No admin account in store, restoring seeded admins",
					slog.String("path", path), slog.Int("count", restored))
				if err := r.SaveAll(context.Background()); err != nil {
					return nil, err
				}
			}
		}
	case os.IsNotExist(err):
		logger.Info("No account store found, seeding demonstration accounts",
			slog.String("path", path), slog.Int("count", len(seeds)))
		for _, a := range seeds {
			r.accounts[a.CardNumber] = a
		}
		if err := r.SaveAll(context.Background()); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return r, nil
}

func (r *JSONAccountRepository) hasAdmin() bool {
	for _, a := range r.accounts {
		if a.IsAdmin {
			return true
		}
	}
	return false
}

// helper to convert domain.Account to models.Account for storage
func toModelAccount(d domain.Account) models.Account {
	return models.Account{
		CardNumber:          d.CardNumber,
		PINHash:             d.PINHash,
		Salt:                d.Salt,
		HolderName:          d.HolderName,
		Balance:             d.Balance,
		WithdrawLimit:       d.WithdrawLimit,
		IsLocked:            d.IsLocked,
		IsAdmin:             d.IsAdmin,
		FailedLoginAttempts: d.FailedLoginAttempts,
		LastFailedLoginAt:   d.LastFailedLoginAt,
		TemporaryLockUntil:  d.TemporaryLockUntil,
	}
}

// helper to convert models.Account from storage to domain.Account.
// Records written by early store revisions hold a cleartext PIN instead of a
// hash; those are migrated here and the caller persists the result.
func toDomainAccount(m models.Account) (domain.Account, bool, error) {
	d := domain.Account{
		CardNumber:          m.CardNumber,
		PINHash:             m.PINHash,
		Salt:                m.Salt,
		HolderName:          m.HolderName,
		Balance:             m.Balance,
		WithdrawLimit:       m.WithdrawLimit,
		IsLocked:            m.IsLocked,
		IsAdmin:             m.IsAdmin,
		FailedLoginAttempts: m.FailedLoginAttempts,
		LastFailedLoginAt:   m.LastFailedLoginAt,
		TemporaryLockUntil:  m.TemporaryLockUntil,
	}
	if len(m.PINHash) == 0 && m.LegacyPIN != "" {
		if err := d.SetPIN(m.LegacyPIN); err != nil {
			return d, false, fmt.Errorf("failed to migrate legacy PIN for %s: %w", m.CardNumber, err)
		}
		return d, true, nil
	}
	return d, false, nil
}

// FindByCardNumber retrieves an account from the in-memory index.
func (r *JSONAccountRepository) FindByCardNumber(ctx context.Context, cardNumber string) (*domain.Account, error) {
	a, ok := r.accounts[cardNumber]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := a
	return &cp, nil
}

// GetAllAccounts returns a snapshot of every account.
func (r *JSONAccountRepository) GetAllAccounts(ctx context.Context) ([]domain.Account, error) {
	out := make([]domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, a)
	}
	return out, nil
}

// AccountExists reports whether the card number is present in the index.
func (r *JSONAccountRepository) AccountExists(ctx context.Context, cardNumber string) (bool, error) {
	_, ok := r.accounts[cardNumber]
	return ok, nil
}

// SaveAccount inserts or replaces the account and writes the snapshot through
// to disk before reporting success.
func (r *JSONAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	if !account.IsValidCardNumber() {
		return fmt.Errorf("invalid card number %q: %w", account.CardNumber, apperrors.ErrValidation)
	}
	if account.HolderName == "" {
		return fmt.Errorf("holder name must not be empty: %w", apperrors.ErrValidation)
	}
	if account.Balance.IsNegative() {
		return fmt.Errorf("balance must not be negative: %w", apperrors.ErrValidation)
	}

	prev, existed := r.accounts[account.CardNumber]
	r.accounts[account.CardNumber] = account
	if err := r.SaveAll(ctx); err != nil {
		// keep the index consistent with the last durable snapshot
		if existed {
			r.accounts[account.CardNumber] = prev
		} else {
			delete(r.accounts, account.CardNumber)
		}
		return err
	}
	return nil
}

// DeleteAccount removes the account and writes the snapshot through to disk.
func (r *JSONAccountRepository) DeleteAccount(ctx context.Context, cardNumber string) error {
	prev, ok := r.accounts[cardNumber]
	if !ok {
		return apperrors.ErrNotFound
	}
	delete(r.accounts, cardNumber)
	if err := r.SaveAll(ctx); err != nil {
		r.accounts[cardNumber] = prev
		return err
	}
	return nil
}

// LoadAll replaces the in-memory index with the backing file's contents.
// Legacy cleartext-PIN records are migrated and the migrated snapshot is
// persisted immediately so the cleartext never survives a load.
func (r *JSONAccountRepository) LoadAll(ctx context.Context) error {
	var stored []models.Account
	if err := readSnapshot(r.path, &stored); err != nil {
		return err
	}

	accounts := make(map[string]domain.Account, len(stored))
	migrated := false
	for _, m := range stored {
		d, didMigrate, err := toDomainAccount(m)
		if err != nil {
			return err
		}
		if didMigrate {
			r.logger.Info("Migrated legacy cleartext PIN to salted hash",
				slog.String("card_number", d.CardNumber))
			migrated = true
		}
		accounts[d.CardNumber] = d
	}
	r.accounts = accounts

	if migrated {
		return r.SaveAll(ctx)
	}
	return nil
}

// SaveAll writes the full in-memory index to the backing file.
func (r *JSONAccountRepository) SaveAll(ctx context.Context) error {
	stored := make([]models.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		stored = append(stored, toModelAccount(a))
	}
	if err := writeSnapshot(r.path, stored); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}
	r.logger.Debug("Account snapshot written", slog.String("path", r.path), slog.Int("count", len(stored)))
	return nil
}
