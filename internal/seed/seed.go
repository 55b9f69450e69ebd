// Package seed turns configured demonstration accounts into domain accounts
// ready for first-run store initialization.
package seed

import (
	"fmt"

	"github.com/atmsim/bankcore/internal/core/domain"
	"github.com/atmsim/bankcore/internal/platform/config"
	"github.com/shopspring/decimal"
)

// Accounts builds domain accounts from the configured seed set. PINs are
// salted and hashed here; the cleartext never reaches the store.
func Accounts(seeds []config.SeedAccount) ([]domain.Account, error) {
	out := make([]domain.Account, 0, len(seeds))
	for _, s := range seeds {
		a, err := domain.NewAccount(
			s.CardNumber,
			s.PIN,
			s.HolderName,
			decimal.NewFromFloat(s.Balance),
			decimal.NewFromFloat(s.WithdrawLimit),
			s.IsAdmin,
		)
		if err != nil {
			return nil, fmt.Errorf("invalid seed account %s: %w", s.CardNumber, err)
		}
		if !a.IsValidCardNumber() {
			return nil, fmt.Errorf("invalid seed card number %q", s.CardNumber)
		}
		a.IsLocked = s.IsLocked
		out = append(out, *a)
	}
	return out, nil
}
