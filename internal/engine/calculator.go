package engine

import "tariff/internal/model"

// Compute turns a resolved rule and trade parameters into a monetary amount.
// It is a pure function: no state, deterministic, safe to call concurrently.
//
// Commission rules only apply when their charge-on flags cover the event:
// ChargeOnClose gates CLOSE events, ChargeOnBuy/ChargeOnSell gate the side on
// OPEN events. Spread FIXED values are returned in the instrument's native
// pip/point unit; converting to account currency is the caller's concern.
// Swap values are signed per rollover: negative debits, positive credits.
func Compute(kind model.ChargeKind, rule model.ChargeRule, tc model.TradeContext) float64 {
	switch kind {
	case model.KindCommission:
		if !commissionApplies(rule, tc) {
			return 0
		}
		switch rule.CommissionType {
		case model.CommissionPerLot:
			return rule.Value * tc.Lots
		case model.CommissionPerTrade:
			return rule.Value
		case model.CommissionPercentage:
			return rule.Value / 100 * tc.NotionalValue
		}
	case model.KindSpread:
		switch rule.SpreadType {
		case model.SpreadFixed:
			return rule.Value
		case model.SpreadPercentage:
			return rule.Value / 100 * tc.NotionalValue
		}
	case model.KindSwap:
		if tc.Side == model.SideBuy {
			return rule.SwapLong
		}
		return rule.SwapShort
	}
	return 0
}

func commissionApplies(rule model.ChargeRule, tc model.TradeContext) bool {
	if tc.Event == model.EventClose {
		return rule.ChargeOnClose
	}
	if tc.Side == model.SideBuy {
		return rule.ChargeOnBuy
	}
	return rule.ChargeOnSell
}
