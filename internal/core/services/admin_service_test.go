package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/atmsim/bankcore/internal/apperrors"
	"github.com/atmsim/bankcore/internal/core/domain"
	"github.com/atmsim/bankcore/internal/core/services"
	"github.com/atmsim/bankcore/internal/dto"
	"github.com/atmsim/bankcore/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type AdminServiceTestSuite struct {
	suite.Suite
	accountRepo *memory.AccountRepository
	txnRepo     *memory.TransactionRepository
	service     *services.AdminService
}

func (suite *AdminServiceTestSuite) SetupTest() {
	suite.accountRepo = memory.NewAccountRepository()
	suite.txnRepo = memory.NewTransactionRepository()

	validation := services.NewValidationService(suite.accountRepo)
	suite.service = services.NewAdminService(suite.accountRepo, suite.txnRepo, validation)

	suite.accountRepo.Put(mustAccount(suite.T(), cardAdmin, "8888", "Administrator", 500000, 100000, true))
	suite.accountRepo.Put(mustAccount(suite.T(), cardAlice, "1234", "Alice Zhang", 50000, 20000, false))
}

func (suite *AdminServiceTestSuite) storedAccount(card string) domain.Account {
	account, err := suite.accountRepo.FindByCardNumber(context.Background(), card)
	suite.Require().NoError(err)
	return *account
}

// --- Permission gate ---

func (suite *AdminServiceTestSuite) TestNonAdminIsRefusedEverywhere() {
	ctx := context.Background()

	_, err := suite.service.ListAccounts(ctx, cardAlice)
	suite.Require().ErrorIs(err, apperrors.ErrPermission)

	err = suite.service.SetAccountLockStatus(ctx, cardAlice, cardAdmin, true)
	suite.Require().ErrorIs(err, apperrors.ErrPermission)

	err = suite.service.DeleteAccount(ctx, cardAlice, cardAdmin)
	suite.Require().ErrorIs(err, apperrors.ErrPermission)
}

func (suite *AdminServiceTestSuite) TestAdminLogin() {
	ctx := context.Background()

	account, err := suite.service.AdminLogin(ctx, cardAdmin, "8888")
	suite.Require().NoError(err)
	suite.True(account.IsAdmin)

	_, err = suite.service.AdminLogin(ctx, cardAlice, "1234")
	suite.Require().ErrorIs(err, apperrors.ErrPermission)
}

// --- Create ---

func (suite *AdminServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		CardNumber:    "5555666677778888",
		PIN:           "4321",
		HolderName:    "Dana Ortiz",
		Balance:       decimal.NewFromInt(1000),
		WithdrawLimit: decimal.NewFromInt(500),
	}

	resp, err := suite.service.CreateAccount(ctx, cardAdmin, req)
	suite.Require().NoError(err)
	suite.Equal("Dana Ortiz", resp.HolderName)
	suite.False(resp.IsLocked)
	suite.False(resp.IsAdmin)

	stored := suite.storedAccount(req.CardNumber)
	suite.True(stored.VerifyPIN("4321"))
	suite.Empty(stored.FailedLoginAttempts)

	// lifecycle change is audited on both ledgers
	affected, err := suite.txnRepo.FindByCard(ctx, req.CardNumber)
	suite.Require().NoError(err)
	suite.Require().Len(affected, 1)
	suite.Equal(domain.Other, affected[0].Type)

	acting, err := suite.txnRepo.FindByCard(ctx, cardAdmin)
	suite.Require().NoError(err)
	suite.Len(acting, 1)
}

func (suite *AdminServiceTestSuite) TestCreateAccount_DuplicateCard() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		CardNumber:    cardAlice,
		PIN:           "4321",
		HolderName:    "Impostor",
		Balance:       decimal.NewFromInt(1000),
		WithdrawLimit: decimal.NewFromInt(500),
	}

	_, err := suite.service.CreateAccount(ctx, cardAdmin, req)
	suite.Require().ErrorIs(err, apperrors.ErrDuplicate)

	// the existing record is untouched
	suite.Equal("Alice Zhang", suite.storedAccount(cardAlice).HolderName)
	suite.Empty(suite.txnRepo.All())
}

func (suite *AdminServiceTestSuite) TestCreateAccount_BadFormats() {
	ctx := context.Background()

	_, err := suite.service.CreateAccount(ctx, cardAdmin, dto.CreateAccountRequest{
		CardNumber: "123", PIN: "4321", HolderName: "X",
		Balance: decimal.NewFromInt(1), WithdrawLimit: decimal.NewFromInt(1),
	})
	suite.Require().ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.CreateAccount(ctx, cardAdmin, dto.CreateAccountRequest{
		CardNumber: "5555666677778888", PIN: "12", HolderName: "X",
		Balance: decimal.NewFromInt(1), WithdrawLimit: decimal.NewFromInt(1),
	})
	suite.Require().ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.CreateAccount(ctx, cardAdmin, dto.CreateAccountRequest{
		CardNumber: "5555666677778888", PIN: "4321", HolderName: "X",
		Balance: decimal.NewFromInt(-1), WithdrawLimit: decimal.NewFromInt(1),
	})
	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

// --- Update ---

func (suite *AdminServiceTestSuite) TestUpdateAccount_NeverTouchesPINOrAdminFlag() {
	ctx := context.Background()
	before := suite.storedAccount(cardAlice)

	resp, err := suite.service.UpdateAccount(ctx, cardAdmin, cardAlice, dto.UpdateAccountRequest{
		HolderName:    "Alice Q. Zhang",
		Balance:       decimal.NewFromInt(60000),
		WithdrawLimit: decimal.NewFromInt(25000),
		IsLocked:      true,
	})
	suite.Require().NoError(err)
	suite.Equal("Alice Q. Zhang", resp.HolderName)
	suite.True(resp.IsLocked)

	after := suite.storedAccount(cardAlice)
	suite.Equal(before.PINHash, after.PINHash)
	suite.Equal(before.Salt, after.Salt)
	suite.Equal(before.IsAdmin, after.IsAdmin)
	suite.True(after.Balance.Equal(decimal.NewFromInt(60000)))
}

// --- Delete ---

func (suite *AdminServiceTestSuite) TestDeleteAccount_PurgesLedger() {
	ctx := context.Background()
	suite.txnRepo.Append(ctx, domain.Transaction{TransactionID: "t1", CardNumber: cardAlice, Type: domain.Deposit})
	suite.txnRepo.Append(ctx, domain.Transaction{TransactionID: "t2", CardNumber: cardAdmin, Type: domain.Deposit})

	err := suite.service.DeleteAccount(ctx, cardAdmin, cardAlice)
	suite.Require().NoError(err)

	_, err = suite.accountRepo.FindByCardNumber(ctx, cardAlice)
	suite.Require().ErrorIs(err, apperrors.ErrNotFound)

	remaining, err := suite.txnRepo.FindByCard(ctx, cardAlice)
	suite.Require().NoError(err)
	suite.Empty(remaining)

	// the admin keeps their own history plus the audit entry
	adminLedger, err := suite.txnRepo.FindByCard(ctx, cardAdmin)
	suite.Require().NoError(err)
	suite.Len(adminLedger, 2)
}

func (suite *AdminServiceTestSuite) TestDeleteAccount_LastAdminRefused() {
	ctx := context.Background()

	err := suite.service.DeleteAccount(ctx, cardAdmin, cardAdmin)
	suite.Require().ErrorIs(err, apperrors.ErrInvariant)
	suite.Equal("Administrator", suite.storedAccount(cardAdmin).HolderName)
}

func (suite *AdminServiceTestSuite) TestDeleteAccount_SecondAdminPermitsDeletion() {
	ctx := context.Background()
	suite.accountRepo.Put(mustAccount(suite.T(), "7777666655554444", "2222", "Second Admin", 1000, 1000, true))

	err := suite.service.DeleteAccount(ctx, "7777666655554444", cardAdmin)
	suite.Require().NoError(err)

	_, err = suite.accountRepo.FindByCardNumber(ctx, cardAdmin)
	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
}

// --- Lock / unlock ---

func (suite *AdminServiceTestSuite) TestSetAccountLockStatus_RefusesLockingAdmins() {
	ctx := context.Background()
	suite.accountRepo.Put(mustAccount(suite.T(), "7777666655554444", "2222", "Second Admin", 1000, 1000, true))

	err := suite.service.SetAccountLockStatus(ctx, cardAdmin, "7777666655554444", true)
	suite.Require().ErrorIs(err, apperrors.ErrPermission)
	suite.False(suite.storedAccount("7777666655554444").IsLocked)
}

func (suite *AdminServiceTestSuite) TestSetAccountLockStatus_UnlockClearsFailureState() {
	ctx := context.Background()
	account := suite.storedAccount(cardAlice)
	now := time.Now()
	account.RecordFailedLogin(now)
	account.RecordFailedLogin(now)
	account.RecordFailedLogin(now)
	account.IsLocked = true
	suite.accountRepo.Put(account)

	err := suite.service.SetAccountLockStatus(ctx, cardAdmin, cardAlice, false)
	suite.Require().NoError(err)

	after := suite.storedAccount(cardAlice)
	suite.False(after.IsLocked)
	suite.Zero(after.FailedLoginAttempts)
	suite.True(after.TemporaryLockUntil.IsZero())
}

// --- PIN reset and limits ---

func (suite *AdminServiceTestSuite) TestResetPin() {
	ctx := context.Background()

	err := suite.service.ResetPin(ctx, cardAdmin, cardAlice, "9876")
	suite.Require().NoError(err)
	stored := suite.storedAccount(cardAlice)
	suite.True(stored.VerifyPIN("9876"))

	// PIN events never reach the audit trail
	suite.Empty(suite.txnRepo.All())

	err = suite.service.ResetPin(ctx, cardAdmin, cardAlice, "12")
	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AdminServiceTestSuite) TestSetWithdrawLimit() {
	ctx := context.Background()

	err := suite.service.SetWithdrawLimit(ctx, cardAdmin, cardAlice, decimal.NewFromInt(30000))
	suite.Require().NoError(err)
	suite.True(suite.storedAccount(cardAlice).WithdrawLimit.Equal(decimal.NewFromInt(30000)))

	err = suite.service.SetWithdrawLimit(ctx, cardAdmin, cardAlice, decimal.Zero)
	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

// --- Listing ---

func (suite *AdminServiceTestSuite) TestListAccounts_NoCredentialMaterial() {
	ctx := context.Background()

	accounts, err := suite.service.ListAccounts(ctx, cardAdmin)
	suite.Require().NoError(err)
	suite.Len(accounts, 2)
	for _, a := range accounts {
		suite.NotEmpty(a.CardNumber)
		suite.NotEmpty(a.HolderName)
	}
}

func TestAdminServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceTestSuite))
}
