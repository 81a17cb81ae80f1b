package currency

import (
	"context"
	"log/slog"
	"time"

	"tariff/internal/database"
	"tariff/internal/exchange"
	"tariff/internal/model"
)

// SeedCurrencies creates a CurrencyRate for every canonical currency the
// store does not already hold, fetching the initial base rate from source.
// Existing records are never touched, so re-running the seed is safe. New
// records start active with zero markup.
func SeedCurrencies(ctx context.Context, logger *slog.Logger, repo database.Repository, source exchange.RateSource, fetchTimeout time.Duration) (RefreshReport, error) {
	var report RefreshReport
	for _, cc := range model.CanonicalCurrencies {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if _, err := repo.GetRate(ctx, cc.Code); err == nil {
			continue
		}

		fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
		rate, err := source.FetchRate(fetchCtx, cc.Code)
		cancel()
		if err != nil {
			logger.Warn("seed fetch failed", "code", cc.Code, "error", err)
			report.Failures = append(report.Failures, RefreshFailure{Code: cc.Code, Err: err})
			continue
		}

		err = repo.CreateRate(ctx, model.CurrencyRate{
			Code:          cc.Code,
			Symbol:        cc.Symbol,
			RateToUSD:     rate,
			MarkupPercent: 0,
			IsActive:      true,
			UpdatedAt:     time.Now().UTC(),
		})
		if err != nil {
			report.Failures = append(report.Failures, RefreshFailure{Code: cc.Code, Err: err})
			continue
		}
		logger.Info("currency seeded", "code", cc.Code, "rate", rate)
		report.Updated++
	}
	return report, nil
}
