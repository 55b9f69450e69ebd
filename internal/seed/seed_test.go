package seed_test

import (
	"testing"

	"github.com/atmsim/bankcore/internal/platform/config"
	"github.com/atmsim/bankcore/internal/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccounts_DefaultSeedSet(t *testing.T) {
	accounts, err := seed.Accounts(config.DefaultSeedAccounts())
	require.NoError(t, err)
	require.Len(t, accounts, 4)

	admins := 0
	for _, a := range accounts {
		assert.True(t, a.IsValidCardNumber())
		assert.NotEmpty(t, a.PINHash)
		assert.NotEmpty(t, a.Salt)
		if a.IsAdmin {
			admins++
		}
	}
	assert.Equal(t, 1, admins)
}

func TestAccounts_HashesPINAndCarriesLockFlag(t *testing.T) {
	accounts, err := seed.Accounts([]config.SeedAccount{
		{CardNumber: "1234567890123456", PIN: "1234", HolderName: "Alice Zhang",
			Balance: 50000, WithdrawLimit: 20000, IsLocked: true},
	})
	require.NoError(t, err)
	require.Len(t, accounts, 1)

	assert.True(t, accounts[0].VerifyPIN("1234"))
	assert.True(t, accounts[0].IsLocked)
}

func TestAccounts_RejectsBadSeeds(t *testing.T) {
	_, err := seed.Accounts([]config.SeedAccount{
		{CardNumber: "123", PIN: "1234", HolderName: "X", Balance: 1, WithdrawLimit: 1},
	})
	assert.Error(t, err)

	_, err = seed.Accounts([]config.SeedAccount{
		{CardNumber: "1234567890123456", PIN: "12", HolderName: "X", Balance: 1, WithdrawLimit: 1},
	})
	assert.Error(t, err)
}
