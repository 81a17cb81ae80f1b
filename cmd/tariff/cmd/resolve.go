package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tariff/internal/engine"
	"tariff/internal/model"
)

var resolveFlags struct {
	kind       string
	user       string
	account    string
	segment    string
	instrument string
	side       string
	event      string
	lots       float64
	notional   float64
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the effective charge rule for a trade context",
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

		kind := model.ChargeKind(strings.ToUpper(resolveFlags.kind))
		tc := model.TradeContext{
			UserID:           resolveFlags.user,
			AccountTypeID:    resolveFlags.account,
			Segment:          model.Segment(strings.ToUpper(resolveFlags.segment)),
			InstrumentSymbol: resolveFlags.instrument,
			Side:             model.Side(strings.ToUpper(resolveFlags.side)),
			Event:            model.EventType(strings.ToUpper(resolveFlags.event)),
			Lots:             resolveFlags.lots,
			NotionalValue:    resolveFlags.notional,
		}

		charge, err := engine.New(logger, repo).EffectiveCharge(ctx, kind, tc)
		if err != nil {
			return err
		}
		if charge == nil {
			fmt.Printf("no %s charge configured for this context\n", kind)
			return nil
		}
		fmt.Printf("rule %s (%s) applies: amount %v\n", charge.Rule.ID, charge.Rule.Scope, charge.Amount)
		return nil
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveFlags.kind, "kind", "COMMISSION", "charge kind: COMMISSION, SPREAD or SWAP")
	resolveCmd.Flags().StringVar(&resolveFlags.user, "user", "", "user ID")
	resolveCmd.Flags().StringVar(&resolveFlags.account, "account-type", "", "account type ID")
	resolveCmd.Flags().StringVar(&resolveFlags.segment, "segment", "", "segment: FOREX, METALS, CRYPTO or INDICES")
	resolveCmd.Flags().StringVar(&resolveFlags.instrument, "instrument", "", "instrument symbol")
	resolveCmd.Flags().StringVar(&resolveFlags.side, "side", "BUY", "trade side: BUY or SELL")
	resolveCmd.Flags().StringVar(&resolveFlags.event, "event", "OPEN", "event type: OPEN or CLOSE")
	resolveCmd.Flags().Float64Var(&resolveFlags.lots, "lots", 1, "lot size")
	resolveCmd.Flags().Float64Var(&resolveFlags.notional, "notional", 0, "notional value in USD")
	rootCmd.AddCommand(resolveCmd)
}
