package memory

import (
	"context"

	"github.com/atmsim/bankcore/internal/apperrors"
	"github.com/atmsim/bankcore/internal/core/domain"
	portsrepo "github.com/atmsim/bankcore/internal/core/ports/repositories"
)

// TransactionRepository is an in-memory ledger.
type TransactionRepository struct {
	ledger []domain.Transaction

	// FailAppends makes Append fail with ErrPersistence.
	FailAppends bool
}

var _ portsrepo.TransactionRepository = (*TransactionRepository)(nil)

// NewTransactionRepository creates an empty in-memory ledger.
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{}
}

// All returns the full ledger in append order. Test assertions only.
func (r *TransactionRepository) All() []domain.Transaction {
	return r.ledger
}

func (r *TransactionRepository) FindByCard(ctx context.Context, cardNumber string) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, t := range r.ledger {
		if t.CardNumber == cardNumber {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *TransactionRepository) Append(ctx context.Context, txn domain.Transaction) error {
	if r.FailAppends {
		return apperrors.ErrPersistence
	}
	r.ledger = append(r.ledger, txn)
	return nil
}

func (r *TransactionRepository) PurgeCard(ctx context.Context, cardNumber string) error {
	kept := r.ledger[:0:0]
	for _, t := range r.ledger {
		if t.CardNumber != cardNumber {
			kept = append(kept, t)
		}
	}
	r.ledger = kept
	return nil
}
