package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tariff/internal/model"
)

func strPtr(s string) *string { return &s }

func segPtr(s model.Segment) *model.Segment { return &s }

func commissionRule(id string, scope model.RuleScope) model.ChargeRule {
	return model.ChargeRule{
		ID:             id,
		Kind:           model.KindCommission,
		Scope:          scope,
		CommissionType: model.CommissionPerLot,
		Value:          5,
		ChargeOnBuy:    true,
		UpdatedAt:      time.Now().UTC(),
	}
}

func TestMemoryStore_Rules(t *testing.T) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		store := NewMemoryStore()
		rule := commissionRule("r1", model.RuleScope{UserID: strPtr("U1")})
		require.NoError(t, store.CreateRule(ctx, rule))

		got, err := store.GetRule(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, rule, got)
	})

	t.Run("duplicate scope for same kind is rejected", func(t *testing.T) {
		store := NewMemoryStore()
		scope := model.RuleScope{Segment: segPtr(model.SegmentForex)}
		require.NoError(t, store.CreateRule(ctx, commissionRule("r1", scope)))

		err := store.CreateRule(ctx, commissionRule("r2", scope))
		assert.ErrorIs(t, err, model.ErrDuplicateScope)
	})

	t.Run("same scope is allowed across kinds", func(t *testing.T) {
		store := NewMemoryStore()
		scope := model.RuleScope{Segment: segPtr(model.SegmentForex)}
		require.NoError(t, store.CreateRule(ctx, commissionRule("r1", scope)))

		swap := model.ChargeRule{ID: "r2", Kind: model.KindSwap, Scope: scope, SwapLong: -1, SwapShort: 0.5}
		assert.NoError(t, store.CreateRule(ctx, swap))
	})

	t.Run("two global rules of one kind collide", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.CreateRule(ctx, commissionRule("r1", model.RuleScope{})))
		err := store.CreateRule(ctx, commissionRule("r2", model.RuleScope{}))
		assert.ErrorIs(t, err, model.ErrDuplicateScope)
	})

	t.Run("update frees the old scope and claims the new one", func(t *testing.T) {
		store := NewMemoryStore()
		rule := commissionRule("r1", model.RuleScope{UserID: strPtr("U1")})
		require.NoError(t, store.CreateRule(ctx, rule))

		rule.Scope = model.RuleScope{UserID: strPtr("U2")}
		require.NoError(t, store.UpdateRule(ctx, rule))

		// Old scope is reusable again.
		assert.NoError(t, store.CreateRule(ctx, commissionRule("r3", model.RuleScope{UserID: strPtr("U1")})))
		// New scope is taken.
		err := store.CreateRule(ctx, commissionRule("r4", model.RuleScope{UserID: strPtr("U2")}))
		assert.ErrorIs(t, err, model.ErrDuplicateScope)
	})

	t.Run("update may not steal another rule's scope", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.CreateRule(ctx, commissionRule("r1", model.RuleScope{UserID: strPtr("U1")})))
		require.NoError(t, store.CreateRule(ctx, commissionRule("r2", model.RuleScope{UserID: strPtr("U2")})))

		moved := commissionRule("r2", model.RuleScope{UserID: strPtr("U1")})
		err := store.UpdateRule(ctx, moved)
		assert.ErrorIs(t, err, model.ErrDuplicateScope)
	})

	t.Run("delete frees the scope", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.CreateRule(ctx, commissionRule("r1", model.RuleScope{})))
		require.NoError(t, store.DeleteRule(ctx, "r1"))
		assert.NoError(t, store.CreateRule(ctx, commissionRule("r2", model.RuleScope{})))

		err := store.DeleteRule(ctx, "r1")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("negative commission value is rejected", func(t *testing.T) {
		store := NewMemoryStore()
		rule := commissionRule("r1", model.RuleScope{})
		rule.Value = -1
		err := store.CreateRule(ctx, rule)
		assert.ErrorIs(t, err, model.ErrInvalidRule)
	})

	t.Run("negative swap values are accepted", func(t *testing.T) {
		store := NewMemoryStore()
		swap := model.ChargeRule{ID: "s1", Kind: model.KindSwap, SwapLong: -3.2, SwapShort: -0.1}
		assert.NoError(t, store.CreateRule(ctx, swap))
	})

	t.Run("list filters by kind", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.CreateRule(ctx, commissionRule("c1", model.RuleScope{})))
		require.NoError(t, store.CreateRule(ctx, model.ChargeRule{
			ID: "s1", Kind: model.KindSpread, SpreadType: model.SpreadFixed, Value: 1,
		}))

		commissions, err := store.ListRules(ctx, model.KindCommission)
		require.NoError(t, err)
		require.Len(t, commissions, 1)
		assert.Equal(t, "c1", commissions[0].ID)
	})
}

func TestMemoryStore_Rates(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate code is rejected", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.CreateRate(ctx, model.CurrencyRate{Code: "INR", RateToUSD: 83, IsActive: true}))
		err := store.CreateRate(ctx, model.CurrencyRate{Code: "INR", RateToUSD: 84, IsActive: true})
		assert.ErrorIs(t, err, model.ErrDuplicateCode)
	})

	t.Run("non-positive rate is rejected", func(t *testing.T) {
		store := NewMemoryStore()
		err := store.CreateRate(ctx, model.CurrencyRate{Code: "INR", RateToUSD: 0, IsActive: true})
		assert.ErrorIs(t, err, model.ErrInvalidRateValue)
	})

	t.Run("update base rate preserves markup and active flag", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.CreateRate(ctx, model.CurrencyRate{
			Code: "INR", Symbol: "₹", RateToUSD: 83, MarkupPercent: 2.5, IsActive: false,
		}))
		require.NoError(t, store.UpdateBaseRate(ctx, "INR", 88))

		got, err := store.GetRate(ctx, "INR")
		require.NoError(t, err)
		assert.Equal(t, 88.0, got.RateToUSD)
		assert.Equal(t, 2.5, got.MarkupPercent)
		assert.False(t, got.IsActive)
	})

	t.Run("update base rate rejects non-positive values", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.CreateRate(ctx, model.CurrencyRate{Code: "INR", RateToUSD: 83, IsActive: true}))
		err := store.UpdateBaseRate(ctx, "INR", -5)
		assert.ErrorIs(t, err, model.ErrInvalidRateValue)
	})
}

// Readers racing concurrent writers must always observe complete records:
// either the pre-update or post-update snapshot, never a mix.
func TestMemoryStore_ConcurrentReadsDuringWrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.CreateRate(ctx, model.CurrencyRate{
		Code: "INR", RateToUSD: 1, MarkupPercent: 1, IsActive: true,
	}))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 2; i < 500; i++ {
			_ = store.UpdateBaseRate(ctx, "INR", float64(i))
		}
		close(stop)
	}()

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				rate, err := store.GetRate(ctx, "INR")
				assert.NoError(t, err)
				assert.Equal(t, 1.0, rate.MarkupPercent, "markup must never tear")
				assert.True(t, rate.IsActive)
				assert.GreaterOrEqual(t, rate.RateToUSD, 1.0)
			}
		}()
	}
	wg.Wait()
}
