package engine

import "tariff/internal/model"

// Dimension weights. Each weight exceeds the sum of all lower weights, so a
// user-scoped rule outranks any combination of instrument, segment and
// account-type dimensions, an instrument rule outranks segment+accountType,
// and so on down to the global default at score 0.
const (
	weightUser        = 8
	weightInstrument  = 4
	weightSegment     = 2
	weightAccountType = 1
)

// Score reports whether rule matches ctx and, if so, the specificity of the
// match. A set dimension that disagrees with the context disqualifies the
// rule; an unset dimension is a wildcard.
func Score(rule model.ChargeRule, ctx model.TradeContext) (bool, int) {
	score := 0
	if rule.Scope.UserID != nil {
		if *rule.Scope.UserID != ctx.UserID {
			return false, 0
		}
		score += weightUser
	}
	if rule.Scope.InstrumentSymbol != nil {
		if *rule.Scope.InstrumentSymbol != ctx.InstrumentSymbol {
			return false, 0
		}
		score += weightInstrument
	}
	if rule.Scope.Segment != nil {
		if *rule.Scope.Segment != ctx.Segment {
			return false, 0
		}
		score += weightSegment
	}
	if rule.Scope.AccountTypeID != nil {
		if *rule.Scope.AccountTypeID != ctx.AccountTypeID {
			return false, 0
		}
		score += weightAccountType
	}
	return true, score
}
