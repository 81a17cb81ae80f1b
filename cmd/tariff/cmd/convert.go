package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tariff/internal/currency"
)

var convertFlags struct {
	amount float64
	code   string
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Quote a USD amount in a configured currency",
	RunE: func(c *cobra.Command, args []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		ctx := c.Context()

		repo, closeRepo, err := openRepository(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeRepo()

		conv, err := currency.NewConverter(repo).Convert(ctx, convertFlags.amount, strings.ToUpper(convertFlags.code))
		if err != nil {
			return err
		}
		fmt.Printf("%v USD = %s %s (effective rate %s)\n",
			convertFlags.amount, conv.Amount.StringFixed(2), conv.Code, conv.EffectiveRate.String())
		return nil
	},
}

func init() {
	convertCmd.Flags().Float64Var(&convertFlags.amount, "amount", 0, "amount in USD")
	convertCmd.Flags().StringVar(&convertFlags.code, "currency", "", "currency code")
	_ = convertCmd.MarkFlagRequired("currency")
	rootCmd.AddCommand(convertCmd)
}
