package repositories

import (
	"context"

	"github.com/atmsim/bankcore/internal/core/domain"
)

// TransactionReader defines read operations over the ledger.
type TransactionReader interface {
	// FindByCard retrieves all transactions recorded against a card number.
	FindByCard(ctx context.Context, cardNumber string) ([]domain.Transaction, error)
}

// TransactionWriter defines append and purge operations over the ledger.
type TransactionWriter interface {
	// Append records one transaction and persists the full snapshot.
	Append(ctx context.Context, txn domain.Transaction) error

	// PurgeCard removes every transaction owned by the given card number.
	// Used only when the owning account is deleted.
	PurgeCard(ctx context.Context, cardNumber string) error
}

// TransactionRepository combines ledger access. The ledger is append-only;
// no component mutates past entries.
type TransactionRepository interface {
	TransactionReader
	TransactionWriter
}
