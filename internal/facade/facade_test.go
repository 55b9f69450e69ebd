package facade_test

import (
	"context"
	"testing"

	"github.com/atmsim/bankcore/internal/core/domain"
	"github.com/atmsim/bankcore/internal/core/services"
	"github.com/atmsim/bankcore/internal/dto"
	"github.com/atmsim/bankcore/internal/facade"
	"github.com/atmsim/bankcore/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	cardAlice = "1234567890123456"
	cardBrian = "2345678901234567"
	cardAdmin = "9999888877776666"
)

type FacadeTestSuite struct {
	suite.Suite
	accountRepo *memory.AccountRepository
	txnRepo     *memory.TransactionRepository
	bank        *facade.BankFacade
}

func (suite *FacadeTestSuite) SetupTest() {
	suite.accountRepo = memory.NewAccountRepository()
	suite.txnRepo = memory.NewTransactionRepository()

	validation := services.NewValidationService(suite.accountRepo)
	accountService := services.NewAccountService(suite.accountRepo, suite.txnRepo, validation)
	adminService := services.NewAdminService(suite.accountRepo, suite.txnRepo, validation)
	analyticsService := services.NewAnalyticsService(suite.accountRepo, suite.txnRepo)
	suite.bank = facade.New(accountService, adminService, analyticsService, "BankCore")

	suite.putAccount(cardAlice, "1234", "Alice Zhang", 5000, 2000, false)
	suite.putAccount(cardBrian, "2345", "Brian Lee", 10000, 3000, false)
	suite.putAccount(cardAdmin, "8888", "Administrator", 500000, 100000, true)
}

func (suite *FacadeTestSuite) putAccount(card, pin, holder string, balance, limit int64, isAdmin bool) {
	account, err := domain.NewAccount(card, pin, holder,
		decimal.NewFromInt(balance), decimal.NewFromInt(limit), isAdmin)
	require.NoError(suite.T(), err)
	suite.accountRepo.Put(*account)
}

func (suite *FacadeTestSuite) TestLogin() {
	ctx := context.Background()

	result := suite.bank.Login(ctx, cardAlice, "1234")
	suite.True(result.Success)
	suite.Empty(result.ErrorMessage)
	suite.Equal("Alice Zhang", result.HolderName)
	suite.False(result.IsAdmin)
	suite.True(result.Balance.Equal(decimal.NewFromInt(5000)))

	result = suite.bank.Login(ctx, cardAlice, "0000")
	suite.False(result.Success)
	suite.NotEmpty(result.ErrorMessage)
}

func (suite *FacadeTestSuite) TestWithdraw_ReceiptFields() {
	ctx := context.Background()

	result, receipt := suite.bank.Withdraw(ctx, cardAlice, decimal.NewFromInt(1500))
	suite.Require().True(result.Success)
	suite.Require().NotNil(receipt)
	suite.Equal("BankCore", receipt.BankLabel)
	suite.Equal(cardAlice, receipt.CardNumber)
	suite.Equal("Alice Zhang", receipt.HolderName)
	suite.Equal(string(domain.Withdrawal), receipt.TransactionType)
	suite.True(receipt.Amount.Equal(decimal.NewFromInt(1500)))
	suite.True(receipt.BalanceAfter.Equal(decimal.NewFromInt(3500)))
	suite.NotEmpty(receipt.TransactionID)
	suite.False(receipt.Timestamp.IsZero())
}

func (suite *FacadeTestSuite) TestWithdraw_FailureHasNoReceipt() {
	ctx := context.Background()

	result, receipt := suite.bank.Withdraw(ctx, cardAlice, decimal.NewFromInt(2500))
	suite.False(result.Success)
	suite.Contains(result.ErrorMessage, "limit")
	suite.Nil(receipt)
}

func (suite *FacadeTestSuite) TestTransfer_ReceiptNamesCounterparty() {
	ctx := context.Background()

	result, receipt := suite.bank.Transfer(ctx, cardAlice, cardBrian, decimal.NewFromInt(1000))
	suite.Require().True(result.Success)
	suite.Require().NotNil(receipt)
	suite.Equal(cardBrian, receipt.CounterpartyCard)
	suite.Equal("Brian Lee", receipt.CounterpartyName)
	suite.True(receipt.BalanceAfter.Equal(decimal.NewFromInt(4000)))
}

func (suite *FacadeTestSuite) TestAdminFlow() {
	ctx := context.Background()

	login := suite.bank.AdminLogin(ctx, cardAdmin, "8888")
	suite.Require().True(login.Success)
	suite.True(login.IsAdmin)

	result, created := suite.bank.CreateAccount(ctx, cardAdmin, dto.CreateAccountRequest{
		CardNumber:    "5555666677778888",
		PIN:           "4321",
		HolderName:    "Dana Ortiz",
		Balance:       decimal.NewFromInt(100),
		WithdrawLimit: decimal.NewFromInt(50),
	})
	suite.Require().True(result.Success)
	suite.Equal("Dana Ortiz", created.HolderName)

	result, accounts := suite.bank.ListAccounts(ctx, cardAdmin)
	suite.Require().True(result.Success)
	suite.Len(accounts, 4)

	result = suite.bank.DeleteAccount(ctx, cardAdmin, "5555666677778888")
	suite.True(result.Success)
}

func (suite *FacadeTestSuite) TestAnalytics() {
	ctx := context.Background()

	result, forecast := suite.bank.PredictBalance(ctx, cardAlice, 30)
	suite.Require().True(result.Success)
	suite.True(forecast.PredictedBalance.Equal(decimal.NewFromInt(5000)))

	result, trend := suite.bank.GetAccountTrend(ctx, cardAlice, 7)
	suite.Require().True(result.Success)
	suite.Len(trend.Income, 7)

	result, _ = suite.bank.PredictBalance(ctx, "0000111122223333", 30)
	suite.False(result.Success)
}

func (suite *FacadeTestSuite) TestGetBalance_RecordsInquiry() {
	ctx := context.Background()

	result, balance := suite.bank.GetBalance(ctx, cardAlice)
	suite.Require().True(result.Success)
	suite.True(balance.Equal(decimal.NewFromInt(5000)))

	txns, err := suite.txnRepo.FindByCard(ctx, cardAlice)
	suite.Require().NoError(err)
	suite.Require().Len(txns, 1)
	suite.Equal(domain.BalanceInquiry, txns[0].Type)
}

func TestFacadeTestSuite(t *testing.T) {
	suite.Run(t, new(FacadeTestSuite))
}
