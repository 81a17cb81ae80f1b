package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tariff/internal/currency"
	"tariff/internal/exchange"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create currency rates for the canonical currency list",
	Long: `Seed creates a currency rate record for every canonical currency not
already configured, fetching the initial base rate from the configured
source. Existing records are never modified.`,
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

		report, err := currency.SeedCurrencies(ctx, logger, repo, source, cfg.Rates.FetchTimeout)
		if err != nil {
			return err
		}
		fmt.Printf("seeded %d currencies, %d failed\n", report.Updated, len(report.Failures))
		for _, f := range report.Failures {
			fmt.Printf("  %s: %v\n", f.Code, f.Err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
