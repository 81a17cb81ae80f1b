package database

import (
	"context"

	"tariff/internal/model"
)

// Repository defines the standard interface for charge rule and currency
// rate storage. Rule and rate mutations validate their input and reject
// duplicate (kind, scope) pairs and duplicate currency codes synchronously.
type Repository interface {
	// Charge rules.
	CreateRule(ctx context.Context, rule model.ChargeRule) error
	UpdateRule(ctx context.Context, rule model.ChargeRule) error
	DeleteRule(ctx context.Context, id string) error
	GetRule(ctx context.Context, id string) (model.ChargeRule, error)
	ListRules(ctx context.Context, kind model.ChargeKind) ([]model.ChargeRule, error)

	// Currency rates.
	CreateRate(ctx context.Context, rate model.CurrencyRate) error
	UpdateRate(ctx context.Context, rate model.CurrencyRate) error
	DeleteRate(ctx context.Context, code string) error
	GetRate(ctx context.Context, code string) (model.CurrencyRate, error)
	ListRates(ctx context.Context) ([]model.CurrencyRate, error)

	// UpdateBaseRate overwrites only RateToUSD for the given code, preserving
	// markup and active flag. Used by the live rate refresher.
	UpdateBaseRate(ctx context.Context, code string, rateToUSD float64) error
}
