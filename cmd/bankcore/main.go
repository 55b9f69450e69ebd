package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/atmsim/bankcore/internal/core/services"
	"github.com/atmsim/bankcore/internal/facade"
	"github.com/atmsim/bankcore/internal/platform/config"
	"github.com/atmsim/bankcore/internal/platform/logging"
	"github.com/atmsim/bankcore/internal/repositories/jsonstore"
	"github.com/atmsim/bankcore/internal/seed"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := logging.WithLogger(context.Background(), logger)

	seedAccounts, err := seed.Accounts(cfg.SeedAccounts)
	if err != nil {
		logger.Error("Failed to build seed accounts", slog.String("error", err.Error()))
		os.Exit(1)
	}

	accountRepo, err := jsonstore.NewAccountRepository(
		filepath.Join(cfg.DataDir, cfg.AccountsFile), seedAccounts, logger)
	if err != nil {
		logger.Error("Failed to open account store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	txnRepo, err := jsonstore.NewTransactionRepository(
		filepath.Join(cfg.DataDir, cfg.TransactionsFile), logger)
	if err != nil {
		logger.Error("Failed to open transaction ledger", slog.String("error", err.Error()))
		os.Exit(1)
	}

	validationService := services.NewValidationService(accountRepo,
		services.WithLockoutPolicy(cfg.MaxFailedAttempts, cfg.TempLockDuration))
	accountService := services.NewAccountService(accountRepo, txnRepo, validationService)
	adminService := services.NewAdminService(accountRepo, txnRepo, validationService)
	analyticsService := services.NewAnalyticsService(accountRepo, txnRepo,
		services.WithForecastStrategy(string(cfg.ForecastStrategy)),
		services.WithForecastWindow(cfg.ForecastWindow))

	bank := facade.New(accountService, adminService, analyticsService, cfg.BankLabel)

	// The interactive front end attaches to the facade; without one the
	// engine just reports the accounts it serves.
	result, accounts := bank.ListAccounts(ctx, adminCard(cfg))
	if !result.Success {
		logger.Warn("Startup account listing failed", slog.String("error", result.ErrorMessage))
	}

	logger.InfoContext(ctx, "Bank engine ready",
		slog.Int("accounts", len(accounts)),
		slog.String("data_dir", cfg.DataDir),
		slog.String("forecast_strategy", string(cfg.ForecastStrategy)),
		slog.Int("forecast_window_days", cfg.ForecastWindow))
}

// adminCard picks the first admin in the seed set. Seed validation guarantees
// one exists.
func adminCard(cfg *config.Config) string {
	for _, s := range cfg.SeedAccounts {
		if s.IsAdmin {
			return s.CardNumber
		}
	}
	return ""
}
