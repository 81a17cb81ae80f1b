package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tariff/internal/model"
)

var ruleCmd = &cobra.Command{
	Use:   "rule",
	Short: "Manage charge rules",
}

var ruleAddFlags struct {
	kind           string
	user           string
	account        string
	segment        string
	instrument     string
	commissionType string
	spreadType     string
	value          float64
	swapLong       float64
	swapShort      float64
	onBuy          bool
	onSell         bool
	onClose        bool
}

var ruleAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a charge rule",
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

		rule := model.ChargeRule{
			ID:             uuid.NewString(),
			Kind:           model.ChargeKind(strings.ToUpper(ruleAddFlags.kind)),
			CommissionType: model.CommissionType(strings.ToUpper(ruleAddFlags.commissionType)),
			SpreadType:     model.SpreadType(strings.ToUpper(ruleAddFlags.spreadType)),
			Value:          ruleAddFlags.value,
			SwapLong:       ruleAddFlags.swapLong,
			SwapShort:      ruleAddFlags.swapShort,
			ChargeOnBuy:    ruleAddFlags.onBuy,
			ChargeOnSell:   ruleAddFlags.onSell,
			ChargeOnClose:  ruleAddFlags.onClose,
			UpdatedAt:      time.Now().UTC(),
		}
		if ruleAddFlags.user != "" {
			rule.Scope.UserID = &ruleAddFlags.user
		}
		if ruleAddFlags.account != "" {
			rule.Scope.AccountTypeID = &ruleAddFlags.account
		}
		if ruleAddFlags.instrument != "" {
			rule.Scope.InstrumentSymbol = &ruleAddFlags.instrument
		}
		if ruleAddFlags.segment != "" {
			segment := model.Segment(strings.ToUpper(ruleAddFlags.segment))
			rule.Scope.Segment = &segment
		}

		if err := repo.CreateRule(ctx, rule); err != nil {
			return err
		}
		fmt.Printf("created rule %s (%s, %s)\n", rule.ID, rule.Kind, rule.Scope)
		return nil
	},
}

var ruleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured charge rules",
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

		for _, kind := range []model.ChargeKind{model.KindCommission, model.KindSpread, model.KindSwap} {
			rules, err := repo.ListRules(ctx, kind)
			if err != nil {
				return err
			}
			for _, r := range rules {
				switch kind {
				case model.KindSwap:
					fmt.Printf("%s  %-10s %-40s long=%v short=%v\n", r.ID, r.Kind, r.Scope, r.SwapLong, r.SwapShort)
				case model.KindCommission:
					fmt.Printf("%s  %-10s %-40s %s value=%v\n", r.ID, r.Kind, r.Scope, r.CommissionType, r.Value)
				default:
					fmt.Printf("%s  %-10s %-40s %s value=%v\n", r.ID, r.Kind, r.Scope, r.SpreadType, r.Value)
				}
			}
		}
		return nil
	},
}

var ruleDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a charge rule",
	Args:  cobra.ExactArgs(1),
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

		if err := repo.DeleteRule(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted rule %s\n", args[0])
		return nil
	},
}

func init() {
	ruleAddCmd.Flags().StringVar(&ruleAddFlags.kind, "kind", "", "charge kind: COMMISSION, SPREAD or SWAP")
	ruleAddCmd.Flags().StringVar(&ruleAddFlags.user, "user", "", "scope: user ID")
	ruleAddCmd.Flags().StringVar(&ruleAddFlags.account, "account-type", "", "scope: account type ID")
	ruleAddCmd.Flags().StringVar(&ruleAddFlags.segment, "segment", "", "scope: segment")
	ruleAddCmd.Flags().StringVar(&ruleAddFlags.instrument, "instrument", "", "scope: instrument symbol")
	ruleAddCmd.Flags().StringVar(&ruleAddFlags.commissionType, "commission-type", "", "PER_LOT, PER_TRADE or PERCENTAGE")
	ruleAddCmd.Flags().StringVar(&ruleAddFlags.spreadType, "spread-type", "", "FIXED or PERCENTAGE")
	ruleAddCmd.Flags().Float64Var(&ruleAddFlags.value, "value", 0, "commission or spread value")
	ruleAddCmd.Flags().Float64Var(&ruleAddFlags.swapLong, "swap-long", 0, "swap value for long positions")
	ruleAddCmd.Flags().Float64Var(&ruleAddFlags.swapShort, "swap-short", 0, "swap value for short positions")
	ruleAddCmd.Flags().BoolVar(&ruleAddFlags.onBuy, "on-buy", false, "charge commission on buy")
	ruleAddCmd.Flags().BoolVar(&ruleAddFlags.onSell, "on-sell", false, "charge commission on sell")
	ruleAddCmd.Flags().BoolVar(&ruleAddFlags.onClose, "on-close", false, "charge commission on close")
	_ = ruleAddCmd.MarkFlagRequired("kind")

	ruleCmd.AddCommand(ruleAddCmd, ruleListCmd, ruleDeleteCmd)
	rootCmd.AddCommand(ruleCmd)
}
