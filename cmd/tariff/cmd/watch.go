package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tariff/internal/currency"
	"tariff/internal/exchange"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run scheduled rate refresh and the live crypto stream until interrupted",
	RunE: func(c *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(c.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		repo, closeRepo, err := openRepository(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeRepo()

		source, err := exchange.NewSource(cfg.Rates.Source, logger, cfg.Rates.SourceURL)
		if err != nil {
			return err
		}
		refresher := currency.NewRefresher(logger, repo, source, cfg.Rates.FetchTimeout, cfg.Rates.MaxConcurrent)

		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			ticker := time.NewTicker(cfg.Rates.RefreshInterval)
			defer ticker.Stop()
			for {
				if _, err := refresher.RefreshAll(ctx); err != nil && ctx.Err() == nil {
					logger.Error("scheduled refresh failed", "error", err)
				}
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		})

		if len(cfg.Rates.StreamCodes) > 0 {
			g.Go(func() error {
				return refresher.Watch(ctx, exchange.NewBinanceStream(logger), cfg.Rates.StreamCodes)
			})
		}

		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
