// Package engine resolves which administrator-configured charge rule applies
// to a trade context and computes the resulting amount.
package engine

import (
	"context"
	"log/slog"

	"tariff/internal/model"
)

// Charge is the outcome of resolving and computing one charge kind for a
// trade context.
type Charge struct {
	Kind   model.ChargeKind
	Rule   model.ChargeRule
	Amount float64
}

// Engine bundles the resolver and calculator behind one call for the trade
// execution path.
type Engine struct {
	logger   *slog.Logger
	resolver *Resolver
}

// New creates an Engine over the given rule source.
func New(logger *slog.Logger, source RuleSource) *Engine {
	return &Engine{
		logger:   logger.With("component", "engine"),
		resolver: NewResolver(source),
	}
}

// EffectiveCharge resolves the rule for kind and computes the amount. A nil
// Charge with nil error means no rule is configured for this kind and
// context.
func (e *Engine) EffectiveCharge(ctx context.Context, kind model.ChargeKind, tc model.TradeContext) (*Charge, error) {
	rule, err := e.resolver.Resolve(ctx, kind, tc)
	if err != nil {
		e.logger.Error("charge resolution failed", "kind", kind, "error", err)
		return nil, err
	}
	if rule == nil {
		return nil, nil
	}
	return &Charge{
		Kind:   kind,
		Rule:   *rule,
		Amount: Compute(kind, *rule, tc),
	}, nil
}
