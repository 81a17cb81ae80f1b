package database

import (
	"context"
	"fmt"

	"tariff/internal/model"
)

// CachedRepository composes the durable Postgres repository with the
// in-memory snapshot store. Writes go to Postgres first and are mirrored into
// the snapshot on success; reads are served from the snapshot so the trade hot
// path never touches the database.
type CachedRepository struct {
	db  Repository
	mem *MemoryStore
}

// NewCachedRepository wraps db with an empty snapshot. Call Warm to populate
// it before serving reads.
func NewCachedRepository(db Repository) *CachedRepository {
	return &CachedRepository{db: db, mem: NewMemoryStore()}
}

// Warm loads all rules and rates from the durable store into the snapshot.
func (c *CachedRepository) Warm(ctx context.Context) error {
	for _, kind := range []model.ChargeKind{model.KindCommission, model.KindSpread, model.KindSwap} {
		rules, err := c.db.ListRules(ctx, kind)
		if err != nil {
			return fmt.Errorf("warm rules: %w", err)
		}
		for _, rule := range rules {
			if err := c.mem.CreateRule(ctx, rule); err != nil {
				return fmt.Errorf("warm rule %s: %w", rule.ID, err)
			}
		}
	}
	rates, err := c.db.ListRates(ctx)
	if err != nil {
		return fmt.Errorf("warm rates: %w", err)
	}
	for _, rate := range rates {
		if err := c.mem.CreateRate(ctx, rate); err != nil {
			return fmt.Errorf("warm rate %s: %w", rate.Code, err)
		}
	}
	return nil
}

func (c *CachedRepository) CreateRule(ctx context.Context, rule model.ChargeRule) error {
	if err := c.db.CreateRule(ctx, rule); err != nil {
		return err
	}
	return c.mem.CreateRule(ctx, rule)
}

func (c *CachedRepository) UpdateRule(ctx context.Context, rule model.ChargeRule) error {
	if err := c.db.UpdateRule(ctx, rule); err != nil {
		return err
	}
	return c.mem.UpdateRule(ctx, rule)
}

func (c *CachedRepository) DeleteRule(ctx context.Context, id string) error {
	if err := c.db.DeleteRule(ctx, id); err != nil {
		return err
	}
	return c.mem.DeleteRule(ctx, id)
}

func (c *CachedRepository) GetRule(ctx context.Context, id string) (model.ChargeRule, error) {
	return c.mem.GetRule(ctx, id)
}

func (c *CachedRepository) ListRules(ctx context.Context, kind model.ChargeKind) ([]model.ChargeRule, error) {
	return c.mem.ListRules(ctx, kind)
}

func (c *CachedRepository) CreateRate(ctx context.Context, rate model.CurrencyRate) error {
	if err := c.db.CreateRate(ctx, rate); err != nil {
		return err
	}
	return c.mem.CreateRate(ctx, rate)
}

func (c *CachedRepository) UpdateRate(ctx context.Context, rate model.CurrencyRate) error {
	if err := c.db.UpdateRate(ctx, rate); err != nil {
		return err
	}
	return c.mem.UpdateRate(ctx, rate)
}

func (c *CachedRepository) DeleteRate(ctx context.Context, code string) error {
	if err := c.db.DeleteRate(ctx, code); err != nil {
		return err
	}
	return c.mem.DeleteRate(ctx, code)
}

func (c *CachedRepository) GetRate(ctx context.Context, code string) (model.CurrencyRate, error) {
	return c.mem.GetRate(ctx, code)
}

func (c *CachedRepository) ListRates(ctx context.Context) ([]model.CurrencyRate, error) {
	return c.mem.ListRates(ctx)
}

func (c *CachedRepository) UpdateBaseRate(ctx context.Context, code string, rateToUSD float64) error {
	if err := c.db.UpdateBaseRate(ctx, code, rateToUSD); err != nil {
		return err
	}
	return c.mem.UpdateBaseRate(ctx, code, rateToUSD)
}

var _ Repository = (*CachedRepository)(nil)
