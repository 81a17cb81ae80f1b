package engine

import (
	"context"

	"tariff/internal/model"
)

// RuleSource is the read-side of the rule store the resolver scans.
type RuleSource interface {
	ListRules(ctx context.Context, kind model.ChargeKind) ([]model.ChargeRule, error)
}

// Resolver selects the effective charge rule for a trade context.
type Resolver struct {
	source RuleSource
}

// NewResolver creates a Resolver over the given rule source.
func NewResolver(source RuleSource) *Resolver {
	return &Resolver{source: source}
}

// Resolve returns the matching rule of the given kind with the highest
// specificity score, or nil if no rule matches. A nil rule means "no charge
// configured", which callers must not conflate with a configured zero value.
//
// Equal scores are possible only when two rules share an identical dimension
// set, which the store's uniqueness invariant prevents; it is still handled
// here: the later UpdatedAt wins, then the greater ID, so resolution stays
// deterministic over any rule set.
func (r *Resolver) Resolve(ctx context.Context, kind model.ChargeKind, tc model.TradeContext) (*model.ChargeRule, error) {
	rules, err := r.source.ListRules(ctx, kind)
	if err != nil {
		return nil, err
	}

	var (
		best      *model.ChargeRule
		bestScore int
	)
	for i := range rules {
		rule := rules[i]
		matched, score := Score(rule, tc)
		if !matched {
			continue
		}
		if best == nil || score > bestScore || (score == bestScore && laterRule(rule, *best)) {
			best = &rule
			bestScore = score
		}
	}
	return best, nil
}

func laterRule(a, b model.ChargeRule) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.ID > b.ID
}
