package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/atmsim/bankcore/internal/apperrors"
	"github.com/atmsim/bankcore/internal/core/domain"
	"github.com/atmsim/bankcore/internal/core/services"
	"github.com/atmsim/bankcore/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type AnalyticsServiceTestSuite struct {
	suite.Suite
	accountRepo *memory.AccountRepository
	txnRepo     *memory.TransactionRepository
	now         time.Time
}

func (suite *AnalyticsServiceTestSuite) SetupTest() {
	suite.accountRepo = memory.NewAccountRepository()
	suite.txnRepo = memory.NewTransactionRepository()
	suite.now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	suite.accountRepo.Put(mustAccount(suite.T(), cardAlice, "1234", "Alice Zhang", 5000, 2000, false))
}

func (suite *AnalyticsServiceTestSuite) newService(options ...services.AnalyticsOption) *services.AnalyticsService {
	options = append(options,
		services.WithAnalyticsClock(func() time.Time { return suite.now }))
	return services.NewAnalyticsService(suite.accountRepo, suite.txnRepo, options...)
}

func (suite *AnalyticsServiceTestSuite) appendTxn(daysAgo int, txnType domain.TransactionType, amount int64) {
	err := suite.txnRepo.Append(context.Background(), domain.Transaction{
		TransactionID: time.Now().String(),
		CardNumber:    cardAlice,
		Timestamp:     suite.now.AddDate(0, 0, -daysAgo),
		Type:          txnType,
		Amount:        decimal.NewFromInt(amount),
	})
	suite.Require().NoError(err)
}

func (suite *AnalyticsServiceTestSuite) TestPredictBalance_FewTransactionsReturnsCurrentBalance() {
	ctx := context.Background()
	suite.appendTxn(3, domain.Deposit, 100)

	resp, err := suite.newService().PredictBalance(ctx, cardAlice, 30)
	suite.Require().NoError(err)
	suite.True(resp.PredictedBalance.Equal(decimal.NewFromInt(5000)))
	suite.Equal(services.StrategyWeighted, resp.Strategy)
}

func (suite *AnalyticsServiceTestSuite) TestPredictBalance_ZeroDaysAheadMatchesCurrentBalance() {
	ctx := context.Background()
	suite.appendTxn(5, domain.Deposit, 1000)
	suite.appendTxn(2, domain.Withdrawal, 400)

	resp, err := suite.newService().PredictBalance(ctx, cardAlice, 0)
	suite.Require().NoError(err)

	predicted, _ := resp.PredictedBalance.Float64()
	suite.InDelta(5000, predicted, 0.01)
}

func (suite *AnalyticsServiceTestSuite) TestPredictBalance_NeverNegative() {
	ctx := context.Background()
	suite.appendTxn(1, domain.Withdrawal, 900)
	suite.appendTxn(2, domain.Withdrawal, 900)
	suite.appendTxn(3, domain.Transfer, 900)

	resp, err := suite.newService().PredictBalance(ctx, cardAlice, 10000)
	suite.Require().NoError(err)
	suite.False(resp.PredictedBalance.IsNegative())
}

func (suite *AnalyticsServiceTestSuite) TestPredictBalance_SteadyIncomeGrowsForecast() {
	ctx := context.Background()
	for day := 1; day <= 10; day++ {
		suite.appendTxn(day, domain.Deposit, 500)
	}

	resp, err := suite.newService().PredictBalance(ctx, cardAlice, 30)
	suite.Require().NoError(err)
	suite.True(resp.PredictedBalance.GreaterThan(decimal.NewFromInt(5000)))
}

func (suite *AnalyticsServiceTestSuite) TestPredictBalance_RegressionStrategy() {
	ctx := context.Background()
	for day := 1; day <= 6; day++ {
		suite.appendTxn(day, domain.Deposit, 500)
	}

	service := suite.newService(services.WithForecastStrategy(services.StrategyRegression))
	resp, err := service.PredictBalance(ctx, cardAlice, 7)
	suite.Require().NoError(err)
	suite.Equal(services.StrategyRegression, resp.Strategy)
	suite.False(resp.PredictedBalance.IsNegative())
}

func (suite *AnalyticsServiceTestSuite) TestPredictBalance_RegressionFallsBackOnSparseHistory() {
	ctx := context.Background()
	// two transactions on the same day reconstruct too few daily points
	suite.appendTxn(3, domain.Deposit, 500)
	suite.appendTxn(3, domain.Withdrawal, 200)

	service := suite.newService(services.WithForecastStrategy(services.StrategyRegression))
	resp, err := service.PredictBalance(ctx, cardAlice, 7)
	suite.Require().NoError(err)
	suite.Equal(services.StrategyWeighted, resp.Strategy)
}

func (suite *AnalyticsServiceTestSuite) TestPredictBalance_IgnoresTransactionsOutsideWindow() {
	ctx := context.Background()
	suite.appendTxn(200, domain.Deposit, 900000)
	suite.appendTxn(210, domain.Deposit, 900000)

	resp, err := suite.newService(services.WithForecastWindow(90)).PredictBalance(ctx, cardAlice, 30)
	suite.Require().NoError(err)
	// only out-of-window history exists, so the forecast is the current balance
	suite.True(resp.PredictedBalance.Equal(decimal.NewFromInt(5000)))
}

func (suite *AnalyticsServiceTestSuite) TestPredictBalance_UnknownCard() {
	_, err := suite.newService().PredictBalance(context.Background(), "0000111122223333", 30)
	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AnalyticsServiceTestSuite) TestGetAccountTrend_BucketsPerDay() {
	ctx := context.Background()
	suite.appendTxn(0, domain.Deposit, 300)
	suite.appendTxn(0, domain.Deposit, 200)
	suite.appendTxn(1, domain.Withdrawal, 150)
	suite.appendTxn(2, domain.Transfer, 50)

	resp, err := suite.newService().GetAccountTrend(ctx, cardAlice, 7)
	suite.Require().NoError(err)
	suite.Len(resp.Income, 7)
	suite.Len(resp.Expense, 7)

	today := suite.now.Format("2006-01-02")
	yesterday := suite.now.AddDate(0, 0, -1).Format("2006-01-02")
	twoDaysAgo := suite.now.AddDate(0, 0, -2).Format("2006-01-02")

	suite.True(resp.Income[today].Equal(decimal.NewFromInt(500)))
	suite.True(resp.Expense[yesterday].Equal(decimal.NewFromInt(150)))
	suite.True(resp.Expense[twoDaysAgo].Equal(decimal.NewFromInt(50)))

	// untouched days are present and zero, not missing
	threeDaysAgo := suite.now.AddDate(0, 0, -3).Format("2006-01-02")
	suite.True(resp.Income[threeDaysAgo].IsZero())
	suite.True(resp.Expense[threeDaysAgo].IsZero())
}

func (suite *AnalyticsServiceTestSuite) TestGetTransactionFrequency() {
	ctx := context.Background()
	suite.appendTxn(1, domain.Deposit, 100)
	suite.appendTxn(5, domain.Withdrawal, 100)
	suite.appendTxn(40, domain.Deposit, 100) // outside a 30-day window

	freq, err := suite.newService().GetTransactionFrequency(ctx, cardAlice, 30)
	suite.Require().NoError(err)
	suite.InDelta(2.0/30.0, freq, 1e-9)
}

func TestAnalyticsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AnalyticsServiceTestSuite))
}
