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

// JSONTransactionRepository is the file-backed transaction ledger. Entries
// are held in append order; the full snapshot is rewritten on every append
// or purge.
type JSONTransactionRepository struct {
	path   string
	logger *slog.Logger
	ledger []domain.Transaction
}

// Ensure JSONTransactionRepository implements portsrepo.TransactionRepository
var _ portsrepo.TransactionRepository = (*JSONTransactionRepository)(nil)

// NewTransactionRepository opens the ledger at path. A missing file is not an
// error; the ledger starts empty and the file is created on first append.
func NewTransactionRepository(path string, logger *slog.Logger) (*JSONTransactionRepository, error) {
	r := &JSONTransactionRepository{path: path, logger: logger}

	var stored []models.Transaction
	if err := readSnapshot(path, &stored); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		return r, nil
	}

	r.ledger = make([]domain.Transaction, 0, len(stored))
	for _, m := range stored {
		r.ledger = append(r.ledger, toDomainTransaction(m))
	}
	return r, nil
}

func toModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:    d.TransactionID,
		CardNumber:       d.CardNumber,
		Timestamp:        d.Timestamp,
		Type:             string(d.Type),
		Amount:           d.Amount,
		BalanceAfter:     d.BalanceAfter,
		Description:      d.Description,
		CounterpartyCard: d.CounterpartyCard,
	}
}

func toDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:    m.TransactionID,
		CardNumber:       m.CardNumber,
		Timestamp:        m.Timestamp,
		Type:             domain.TransactionType(m.Type),
		Amount:           m.Amount,
		BalanceAfter:     m.BalanceAfter,
		Description:      m.Description,
		CounterpartyCard: m.CounterpartyCard,
	}
}

// FindByCard returns the transactions recorded against cardNumber in append order.
func (r *JSONTransactionRepository) FindByCard(ctx context.Context, cardNumber string) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, t := range r.ledger {
		if t.CardNumber == cardNumber {
			out = append(out, t)
		}
	}
	return out, nil
}

// Append records one transaction and writes the snapshot through to disk.
func (r *JSONTransactionRepository) Append(ctx context.Context, txn domain.Transaction) error {
	r.ledger = append(r.ledger, txn)
	if err := r.save(); err != nil {
		r.ledger = r.ledger[:len(r.ledger)-1]
		return err
	}
	return nil
}

// PurgeCard removes every transaction owned by cardNumber and persists the result.
func (r *JSONTransactionRepository) PurgeCard(ctx context.Context, cardNumber string) error {
	kept := r.ledger[:0:0]
	removed := 0
	for _, t := range r.ledger {
		if t.CardNumber == cardNumber {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	if removed == 0 {
		return nil
	}
	prev := r.ledger
	r.ledger = kept
	if err := r.save(); err != nil {
		r.ledger = prev
		return err
	}
	r.logger.Info("Purged ledger history", slog.String("card_number", cardNumber), slog.Int("removed", removed))
	return nil
}

func (r *JSONTransactionRepository) save() error {
	stored := make([]models.Transaction, 0, len(r.ledger))
	for _, t := range r.ledger {
		stored = append(stored, toModelTransaction(t))
	}
	if err := writeSnapshot(r.path, stored); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}
	return nil
}
