package services

import (
	"context"
	"math"
	"time"

	"github.com/atmsim/bankcore/internal/core/domain"
	portsrepo "github.com/atmsim/bankcore/internal/core/ports/repositories"
	"github.com/atmsim/bankcore/internal/dto"
	"github.com/shopspring/decimal"
)

// Forecast strategies.
const (
	StrategyWeighted   = "weighted"
	StrategyRegression = "regression"
)

const (
	defaultForecastWindow = 90
	recencyDecay          = 0.05
	minRegressionPoints   = 5
)

// AnalyticsService is read-only: it replays the ledger to reconstruct balance
// history and produce forecasts. It never mutates an account or the ledger.
type AnalyticsService struct {
	BaseService
	accountRepo portsrepo.AccountReader
	txnRepo     portsrepo.TransactionReader
	strategy    string
	windowDays  int
	now         func() time.Time
}

// AnalyticsOption configures an AnalyticsService.
type AnalyticsOption func(*AnalyticsService)

// WithForecastStrategy selects the forecasting algorithm. Unknown values fall
// back to the weighted-average strategy.
func WithForecastStrategy(strategy string) AnalyticsOption {
	return func(s *AnalyticsService) {
		if strategy == StrategyRegression {
			s.strategy = StrategyRegression
		}
	}
}

// WithForecastWindow bounds how many trailing days of ledger history the
// forecasts consider.
func WithForecastWindow(days int) AnalyticsOption {
	return func(s *AnalyticsService) {
		if days > 0 {
			s.windowDays = days
		}
	}
}

// WithAnalyticsClock overrides the time source for deterministic tests.
func WithAnalyticsClock(now func() time.Time) AnalyticsOption {
	return func(s *AnalyticsService) {
		s.now = now
	}
}

// NewAnalyticsService creates the forecasting service.
func NewAnalyticsService(accountRepo portsrepo.AccountReader, txnRepo portsrepo.TransactionReader, options ...AnalyticsOption) *AnalyticsService {
	s := &AnalyticsService{
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		strategy:    StrategyWeighted,
		windowDays:  defaultForecastWindow,
		now:         time.Now,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// PredictBalance projects the account balance daysAhead days into the future
// from the trailing-window transaction history. With fewer than 2 in-window
// transactions the current balance is returned unchanged. The regression
// strategy needs at least 5 reconstructed data points and otherwise falls
// back to the weighted-average method. The prediction is never negative.
func (s *AnalyticsService) PredictBalance(ctx context.Context, cardNumber string, daysAhead int) (*dto.ForecastResponse, error) {
	account, err := s.accountRepo.FindByCardNumber(ctx, cardNumber)
	if err != nil {
		return nil, err
	}

	currentBalance, _ := account.Balance.Float64()
	txns := s.windowTransactions(ctx, cardNumber)

	resp := &dto.ForecastResponse{
		CardNumber: cardNumber,
		DaysAhead:  daysAhead,
		Strategy:   StrategyWeighted,
	}

	if len(txns) < 2 {
		resp.PredictedBalance = account.Balance
		return resp, nil
	}

	predicted := 0.0
	if s.strategy == StrategyRegression {
		if points := s.balanceSeries(txns, currentBalance); len(points) >= minRegressionPoints {
			predicted = regressionForecast(points, daysAhead)
			resp.Strategy = StrategyRegression
		} else {
			predicted = s.weightedForecast(txns, currentBalance, daysAhead)
		}
	} else {
		predicted = s.weightedForecast(txns, currentBalance, daysAhead)
	}

	resp.PredictedBalance = decimal.NewFromFloat(math.Max(0, predicted)).Round(2)
	return resp, nil
}

// GetAccountTrend buckets income and expense per calendar day over the
// requested window. Both maps are zero-initialized for every day in the
// window so the caller sees gaps, not missing keys.
func (s *AnalyticsService) GetAccountTrend(ctx context.Context, cardNumber string, days int) (*dto.TrendResponse, error) {
	if _, err := s.accountRepo.FindByCardNumber(ctx, cardNumber); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = s.windowDays
	}

	now := s.now()
	income := make(map[string]decimal.Decimal, days)
	expense := make(map[string]decimal.Decimal, days)
	for i := 0; i < days; i++ {
		day := now.AddDate(0, 0, -i).Format("2006-01-02")
		income[day] = decimal.Zero
		expense[day] = decimal.Zero
	}

	txns, err := s.txnRepo.FindByCard(ctx, cardNumber)
	if err != nil {
		return nil, err
	}
	cutoff := now.AddDate(0, 0, -days)
	for _, txn := range txns {
		if txn.Timestamp.Before(cutoff) {
			continue
		}
		day := txn.Timestamp.Format("2006-01-02")
		switch txn.Type {
		case domain.Deposit:
			income[day] = income[day].Add(txn.Amount)
		case domain.Withdrawal, domain.Transfer:
			expense[day] = expense[day].Add(txn.Amount)
		}
	}

	return &dto.TrendResponse{
		CardNumber: cardNumber,
		Days:       days,
		Income:     income,
		Expense:    expense,
	}, nil
}

// GetTransactionFrequency returns transactions per day over the window.
func (s *AnalyticsService) GetTransactionFrequency(ctx context.Context, cardNumber string, days int) (float64, error) {
	if days <= 0 {
		days = s.windowDays
	}
	txns, err := s.txnRepo.FindByCard(ctx, cardNumber)
	if err != nil {
		return 0, err
	}
	cutoff := s.now().AddDate(0, 0, -days)
	count := 0
	for _, txn := range txns {
		if !txn.Timestamp.Before(cutoff) {
			count++
		}
	}
	return float64(count) / float64(days), nil
}

// windowTransactions returns the card's money-movement transactions inside
// the trailing window, oldest first. A ledger read failure yields an empty
// slice so forecasts degrade to the current balance instead of erroring.
func (s *AnalyticsService) windowTransactions(ctx context.Context, cardNumber string) []domain.Transaction {
	txns, err := s.txnRepo.FindByCard(ctx, cardNumber)
	if err != nil {
		s.LogDebug(ctx, "Ledger unavailable for forecast, using current balance")
		return nil
	}
	cutoff := s.now().AddDate(0, 0, -s.windowDays)
	out := make([]domain.Transaction, 0, len(txns))
	for _, txn := range txns {
		if txn.Timestamp.Before(cutoff) {
			continue
		}
		switch txn.Type {
		case domain.Deposit, domain.Withdrawal, domain.Transfer:
			out = append(out, txn)
		}
	}
	return out
}

// weightedForecast projects the balance with recency-weighted daily income
// and expense rates, damped by how often the account actually transacts.
func (s *AnalyticsService) weightedForecast(txns []domain.Transaction, currentBalance float64, daysAhead int) float64 {
	now := s.now()
	var incomeSum, incomeWeight, expenseSum, expenseWeight float64
	for _, txn := range txns {
		daysAgo := now.Sub(txn.Timestamp).Hours() / 24
		weight := 1 / (1 + daysAgo*recencyDecay)
		amount, _ := txn.Amount.Float64()
		if txn.Type == domain.Deposit {
			incomeSum += amount * weight
			incomeWeight += weight
		} else {
			expenseSum += amount * weight
			expenseWeight += weight
		}
	}

	dailyIncome := 0.0
	if incomeWeight > 0 {
		dailyIncome = incomeSum / incomeWeight / float64(s.windowDays)
	}
	dailyExpense := 0.0
	if expenseWeight > 0 {
		dailyExpense = expenseSum / expenseWeight / float64(s.windowDays)
	}

	frequency := float64(len(txns)) / float64(s.windowDays)
	activity := math.Min(frequency, 1.0)
	dailyIncome *= activity
	dailyExpense *= activity

	return currentBalance + (dailyIncome-dailyExpense)*float64(daysAhead)
}

// balancePoint is one reconstructed end-of-day balance, x days ago.
type balancePoint struct {
	daysAgo float64
	balance float64
}

// balanceSeries rebuilds the daily balance history by walking the ledger
// backward from the current balance and inverting each transaction's effect.
func (s *AnalyticsService) balanceSeries(txns []domain.Transaction, currentBalance float64) []balancePoint {
	now := s.now()
	today := now.Truncate(24 * time.Hour)

	// end-of-day balances, keyed by whole days ago
	endOfDay := map[int]float64{0: currentBalance}
	balance := currentBalance
	for i := len(txns) - 1; i >= 0; i-- {
		txn := txns[i]
		amount, _ := txn.Amount.Float64()
		if txn.Type == domain.Deposit {
			balance -= amount
		} else {
			balance += amount
		}
		day := int(today.Sub(txn.Timestamp.Truncate(24*time.Hour)).Hours() / 24)
		if day < 0 {
			day = 0
		}
		// balance as it stood at the end of the day before this transaction's day
		endOfDay[day+1] = balance
	}

	points := make([]balancePoint, 0, len(endOfDay))
	for day, bal := range endOfDay {
		points = append(points, balancePoint{daysAgo: float64(day), balance: bal})
	}
	return points
}

// regressionForecast fits balance = slope×daysAgo + intercept by least
// squares and evaluates the line at −daysAhead.
func regressionForecast(points []balancePoint, daysAhead int) float64 {
	n := float64(len(points))
	var sumX, sumY, sumXY, sumXX float64
	for _, p := range points {
		sumX += p.daysAgo
		sumY += p.balance
		sumXY += p.daysAgo * p.balance
		sumXX += p.daysAgo * p.daysAgo
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return sumY / n
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n
	return slope*float64(-daysAhead) + intercept
}
