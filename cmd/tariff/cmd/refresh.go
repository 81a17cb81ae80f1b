package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tariff/internal/currency"
	"tariff/internal/exchange"
)

var refreshCode string

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh base market rates from the configured source",
	RunE: func(c *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		ctx := c.Context()

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

		if refreshCode != "" {
			rate, err := refresher.RefreshOne(ctx, refreshCode)
			if err != nil {
				return err
			}
			fmt.Printf("%s refreshed: %v\n", refreshCode, rate)
			return nil
		}

		report, err := refresher.RefreshAll(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("updated %d currencies, %d failed\n", report.Updated, len(report.Failures))
		for _, f := range report.Failures {
			fmt.Printf("  %s: %v\n", f.Code, f.Err)
		}
		return nil
	},
}

func init() {
	refreshCmd.Flags().StringVar(&refreshCode, "code", "", "refresh a single currency code")
	rootCmd.AddCommand(refreshCmd)
}
