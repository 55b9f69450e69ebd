package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ForecastStrategy selects the balance-forecasting algorithm.
type ForecastStrategy string

const (
	ForecastWeighted   ForecastStrategy = "weighted"
	ForecastRegression ForecastStrategy = "regression"
)

// SeedAccount describes one demonstration account created on first run when
// no backing store exists. The PIN is hashed before it is ever persisted.
type SeedAccount struct {
	CardNumber    string  `json:"cardNumber"`
	PIN           string  `json:"pin"`
	HolderName    string  `json:"holderName"`
	Balance       float64 `json:"balance"`
	WithdrawLimit float64 `json:"withdrawLimit"`
	IsLocked      bool    `json:"isLocked"`
	IsAdmin       bool    `json:"isAdmin"`
}

// Config holds application configuration.
type Config struct {
	DataDir          string
	AccountsFile     string
	TransactionsFile string
	BankLabel        string

	MaxFailedAttempts int
	TempLockDuration  time.Duration

	ForecastStrategy ForecastStrategy
	ForecastWindow   int // trailing days of ledger history used by forecasts

	SeedAccounts []SeedAccount
}

// DefaultSeedAccounts is the demonstration account set used when no seed file
// is configured. Exactly one admin account.
func DefaultSeedAccounts() []SeedAccount {
	return []SeedAccount{
		{CardNumber: "1234567890123456", PIN: "1234", HolderName: "Alice Zhang", Balance: 50000, WithdrawLimit: 20000},
		{CardNumber: "2345678901234567", PIN: "2345", HolderName: "Brian Lee", Balance: 100000, WithdrawLimit: 30000},
		{CardNumber: "3456789012345678", PIN: "3456", HolderName: "Carla Wong", Balance: 75000, WithdrawLimit: 25000, IsLocked: true},
		{CardNumber: "9999888877776666", PIN: "8888", HolderName: "Administrator", Balance: 500000, WithdrawLimit: 100000, IsAdmin: true},
	}
}

// LoadConfig loads configuration from environment variables and a .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("DATA_DIR", "./data")
	viper.SetDefault("ACCOUNTS_FILE", "accounts.json")
	viper.SetDefault("TRANSACTIONS_FILE", "transactions.json")
	viper.SetDefault("BANK_LABEL", "BankCore")
	viper.SetDefault("MAX_FAILED_ATTEMPTS", 3)
	viper.SetDefault("TEMP_LOCK_DURATION", "15m")
	viper.SetDefault("FORECAST_STRATEGY", string(ForecastWeighted))
	viper.SetDefault("FORECAST_WINDOW_DAYS", 90)
	viper.SetDefault("SEED_FILE", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DataDir = viper.GetString("DATA_DIR")
	cfg.AccountsFile = viper.GetString("ACCOUNTS_FILE")
	cfg.TransactionsFile = viper.GetString("TRANSACTIONS_FILE")
	cfg.BankLabel = viper.GetString("BANK_LABEL")
	cfg.MaxFailedAttempts = viper.GetInt("MAX_FAILED_ATTEMPTS")
	cfg.ForecastWindow = viper.GetInt("FORECAST_WINDOW_DAYS")

	lockDurStr := viper.GetString("TEMP_LOCK_DURATION")
	lockDur, err := time.ParseDuration(lockDurStr)
	if err != nil {
		lockDur = 15 * time.Minute
		if lockDurStr != "" {
			log.Printf("Warning: Invalid value for TEMP_LOCK_DURATION ('%s'). Defaulting to %s.\n", lockDurStr, lockDur)
		}
	}
	cfg.TempLockDuration = lockDur

	strategy := ForecastStrategy(viper.GetString("FORECAST_STRATEGY"))
	switch strategy {
	case ForecastWeighted, ForecastRegression:
		cfg.ForecastStrategy = strategy
	default:
		log.Printf("Warning: Unknown FORECAST_STRATEGY ('%s'). Defaulting to %s.\n", strategy, ForecastWeighted)
		cfg.ForecastStrategy = ForecastWeighted
	}

	seedFile := viper.GetString("SEED_FILE")
	if seedFile != "" {
		seeds, err := loadSeedFile(seedFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load seed file %s: %w", seedFile, err)
		}
		cfg.SeedAccounts = seeds
	} else {
		cfg.SeedAccounts = DefaultSeedAccounts()
	}

	if err := validateSeeds(cfg.SeedAccounts); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadSeedFile(path string) ([]SeedAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var seeds []SeedAccount
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, err
	}
	return seeds, nil
}

// validateSeeds enforces the bootstrap invariant: the seed set must contain
// at least one admin account, so a freshly seeded store always satisfies the
// at-least-one-admin rule.
func validateSeeds(seeds []SeedAccount) error {
	for _, s := range seeds {
		if s.IsAdmin {
			return nil
		}
	}
	return fmt.Errorf("seed account set must contain at least one admin account")
}
