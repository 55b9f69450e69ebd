package repositories

import (
	"context"

	"github.com/atmsim/bankcore/internal/core/domain"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindByCardNumber retrieves a specific account by its card number.
	FindByCardNumber(ctx context.Context, cardNumber string) (*domain.Account, error)

	// GetAllAccounts retrieves every account in the store.
	GetAllAccounts(ctx context.Context) ([]domain.Account, error)

	// AccountExists reports whether an account with the given card number exists.
	AccountExists(ctx context.Context, cardNumber string) (bool, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount inserts or replaces an account and persists the full snapshot.
	SaveAccount(ctx context.Context, account domain.Account) error

	// DeleteAccount removes an account and persists the full snapshot.
	DeleteAccount(ctx context.Context, cardNumber string) error

	// LoadAll reloads the in-memory index from the backing store.
	LoadAll(ctx context.Context) error

	// SaveAll writes the full in-memory index to the backing store.
	SaveAll(ctx context.Context) error
}

// AccountRepository combines all account-related repository interfaces.
// The persistent implementation owns the authoritative in-memory index;
// services hold only transient copies and write back through this interface.
type AccountRepository interface {
	AccountReader
	AccountWriter
}
