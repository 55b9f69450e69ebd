package dto

import "github.com/shopspring/decimal"

// ForecastResponse carries a balance forecast.
type ForecastResponse struct {
	CardNumber       string          `json:"cardNumber"`
	DaysAhead        int             `json:"daysAhead"`
	PredictedBalance decimal.Decimal `json:"predictedBalance"`
	Strategy         string          `json:"strategy"`
}

// TrendResponse buckets income and expense per calendar day over the
// requested window. Keys are dates in YYYY-MM-DD form; every day in the
// window is present, zero-initialized.
type TrendResponse struct {
	CardNumber string                     `json:"cardNumber"`
	Days       int                        `json:"days"`
	Income     map[string]decimal.Decimal `json:"income"`
	Expense    map[string]decimal.Decimal `json:"expense"`
}
