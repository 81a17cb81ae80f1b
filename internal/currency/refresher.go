package currency

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"tariff/internal/exchange"
	"tariff/internal/model"
)

// RateStore is the store surface the refresher needs: enumerate configured
// currencies and atomically replace a base rate.
type RateStore interface {
	RateReader
	ListRates(ctx context.Context) ([]model.CurrencyRate, error)
	UpdateBaseRate(ctx context.Context, code string, rateToUSD float64) error
}

// RefreshFailure records one currency that could not be refreshed.
type RefreshFailure struct {
	Code string
	Err  error
}

// RefreshReport is the outcome of a RefreshAll batch.
type RefreshReport struct {
	Updated  int
	Failures []RefreshFailure
}

// Refresher pulls market rates from an external source and overwrites the
// stored base rates, leaving markup and active flag untouched.
type Refresher struct {
	logger        *slog.Logger
	store         RateStore
	source        exchange.RateSource
	fetchTimeout  time.Duration
	maxConcurrent int
}

// NewRefresher creates a Refresher. fetchTimeout bounds each individual
// fetch; maxConcurrent bounds the per-currency parallelism of RefreshAll.
func NewRefresher(logger *slog.Logger, store RateStore, source exchange.RateSource, fetchTimeout time.Duration, maxConcurrent int) *Refresher {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Refresher{
		logger:        logger.With("component", "refresher"),
		store:         store,
		source:        source,
		fetchTimeout:  fetchTimeout,
		maxConcurrent: maxConcurrent,
	}
}

// RefreshOne fetches and stores the base rate for a single currency,
// returning the new rate. Markup and active flag are preserved; an inactive
// currency may be refreshed explicitly so its rate can be re-validated before
// re-activation.
func (r *Refresher) RefreshOne(ctx context.Context, code string) (float64, error) {
	if _, err := r.store.GetRate(ctx, code); err != nil {
		return 0, err
	}
	rate, err := r.fetch(ctx, code)
	if err != nil {
		return 0, err
	}
	if err := r.store.UpdateBaseRate(ctx, code, rate); err != nil {
		return 0, err
	}
	r.logger.Info("rate refreshed", "code", code, "rate", rate)
	return rate, nil
}

// RefreshAll refreshes every active currency with bounded concurrency. A
// failed or timed-out fetch skips that currency and is recorded in the
// report; the rest of the batch continues. Cancelling ctx aborts the
// remaining batch and returns the context error alongside what completed.
func (r *Refresher) RefreshAll(ctx context.Context) (RefreshReport, error) {
	rates, err := r.store.ListRates(ctx)
	if err != nil {
		return RefreshReport{}, err
	}

	var (
		mu     sync.Mutex
		report RefreshReport
	)
	g := &errgroup.Group{}
	g.SetLimit(r.maxConcurrent)

	for _, rate := range rates {
		if !rate.IsActive {
			continue
		}
		code := rate.Code
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			fetched, err := r.fetch(ctx, code)
			if err == nil {
				err = r.store.UpdateBaseRate(ctx, code, fetched)
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.logger.Warn("rate refresh failed", "code", code, "error", err)
				report.Failures = append(report.Failures, RefreshFailure{Code: code, Err: err})
				return nil
			}
			report.Updated++
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return report, err
	}
	r.logger.Info("rate refresh batch done", "updated", report.Updated, "failed", len(report.Failures))
	return report, nil
}

// fetch runs one bounded fetch and validates the result.
func (r *Refresher) fetch(ctx context.Context, code string) (float64, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	rate, err := r.source.FetchRate(fetchCtx, code)
	if err != nil {
		if fetchCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return 0, fmt.Errorf("fetch %s: %w", code, model.ErrSourceTimeout)
		}
		return 0, err
	}
	if rate <= 0 {
		return 0, fmt.Errorf("fetch %s: rate %v: %w", code, rate, model.ErrInvalidRateValue)
	}
	return rate, nil
}

// Watch consumes a streaming source and applies each update through the same
// base-rate path as RefreshOne. Updates for codes that are not configured or
// not active are dropped. Watch returns when ctx is cancelled.
func (r *Refresher) Watch(ctx context.Context, stream exchange.StreamSource, codes []string) error {
	updates := make(chan exchange.RateUpdate, 64)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(updates)
		return stream.StartStream(ctx, updates, codes)
	})
	g.Go(func() error {
		for update := range updates {
			rate, err := r.store.GetRate(ctx, update.Code)
			if err != nil || !rate.IsActive {
				continue
			}
			if err := r.store.UpdateBaseRate(ctx, update.Code, update.RateToUSD); err != nil {
				r.logger.Warn("stream update rejected", "code", update.Code, "error", err)
			}
		}
		return nil
	})
	return g.Wait()
}
