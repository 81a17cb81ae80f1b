package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tariff/internal/model"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type MockRuleSource struct {
	mock.Mock
}

func (m *MockRuleSource) ListRules(ctx context.Context, kind model.ChargeKind) ([]model.ChargeRule, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).([]model.ChargeRule), args.Error(1)
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("no matching rule returns nil", func(t *testing.T) {
		source := new(MockRuleSource)
		source.On("ListRules", mock.Anything, model.KindCommission).Return([]model.ChargeRule{
			{ID: "r1", Kind: model.KindCommission, Scope: model.RuleScope{UserID: strPtr("someone-else")}},
		}, nil)

		rule, err := NewResolver(source).Resolve(ctx, model.KindCommission, model.TradeContext{UserID: "U1"})
		require.NoError(t, err)
		assert.Nil(t, rule)
	})

	t.Run("user rule outranks segment rule", func(t *testing.T) {
		source := new(MockRuleSource)
		source.On("ListRules", mock.Anything, model.KindCommission).Return([]model.ChargeRule{
			{
				ID: "segment-rule", Kind: model.KindCommission, Value: 5,
				CommissionType: model.CommissionPerLot,
				Scope:          model.RuleScope{Segment: segPtr(model.SegmentForex)},
			},
			{
				ID: "user-rule", Kind: model.KindCommission, Value: 2,
				CommissionType: model.CommissionPerLot,
				Scope:          model.RuleScope{UserID: strPtr("U1")},
			},
		}, nil)

		tc := model.TradeContext{UserID: "U1", Segment: model.SegmentForex}
		rule, err := NewResolver(source).Resolve(ctx, model.KindCommission, tc)
		require.NoError(t, err)
		require.NotNil(t, rule)
		assert.Equal(t, "user-rule", rule.ID)
		assert.Equal(t, 2.0, rule.Value)
	})

	t.Run("global rule applies when nothing narrower matches", func(t *testing.T) {
		source := new(MockRuleSource)
		source.On("ListRules", mock.Anything, model.KindSpread).Return([]model.ChargeRule{
			{ID: "global", Kind: model.KindSpread, SpreadType: model.SpreadFixed, Value: 1.5},
			{
				ID: "crypto", Kind: model.KindSpread, SpreadType: model.SpreadFixed, Value: 3,
				Scope: model.RuleScope{Segment: segPtr(model.SegmentCrypto)},
			},
		}, nil)

		tc := model.TradeContext{Segment: model.SegmentForex}
		rule, err := NewResolver(source).Resolve(ctx, model.KindSpread, tc)
		require.NoError(t, err)
		require.NotNil(t, rule)
		assert.Equal(t, "global", rule.ID)
	})

	t.Run("combined scope beats each dimension alone", func(t *testing.T) {
		source := new(MockRuleSource)
		source.On("ListRules", mock.Anything, model.KindCommission).Return([]model.ChargeRule{
			{ID: "user-only", Kind: model.KindCommission, Scope: model.RuleScope{UserID: strPtr("U1")}},
			{
				ID: "user-and-instrument", Kind: model.KindCommission,
				Scope: model.RuleScope{UserID: strPtr("U1"), InstrumentSymbol: strPtr("EURUSD")},
			},
		}, nil)

		tc := model.TradeContext{UserID: "U1", InstrumentSymbol: "EURUSD"}
		rule, err := NewResolver(source).Resolve(ctx, model.KindCommission, tc)
		require.NoError(t, err)
		require.NotNil(t, rule)
		assert.Equal(t, "user-and-instrument", rule.ID)
	})

	t.Run("equal score tie-break prefers later UpdatedAt", func(t *testing.T) {
		older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		newer := older.Add(24 * time.Hour)
		source := new(MockRuleSource)
		source.On("ListRules", mock.Anything, model.KindSwap).Return([]model.ChargeRule{
			{ID: "old", Kind: model.KindSwap, Scope: model.RuleScope{UserID: strPtr("U1")}, UpdatedAt: older},
			{ID: "new", Kind: model.KindSwap, Scope: model.RuleScope{UserID: strPtr("U1")}, UpdatedAt: newer},
		}, nil)

		rule, err := NewResolver(source).Resolve(ctx, model.KindSwap, model.TradeContext{UserID: "U1"})
		require.NoError(t, err)
		require.NotNil(t, rule)
		assert.Equal(t, "new", rule.ID)
	})

	t.Run("tie-break is order independent", func(t *testing.T) {
		older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		newer := older.Add(time.Minute)
		source := new(MockRuleSource)
		source.On("ListRules", mock.Anything, model.KindSwap).Return([]model.ChargeRule{
			{ID: "new", Kind: model.KindSwap, Scope: model.RuleScope{UserID: strPtr("U1")}, UpdatedAt: newer},
			{ID: "old", Kind: model.KindSwap, Scope: model.RuleScope{UserID: strPtr("U1")}, UpdatedAt: older},
		}, nil)

		rule, err := NewResolver(source).Resolve(ctx, model.KindSwap, model.TradeContext{UserID: "U1"})
		require.NoError(t, err)
		require.NotNil(t, rule)
		assert.Equal(t, "new", rule.ID)
	})

	t.Run("identical timestamps fall back to greater ID", func(t *testing.T) {
		at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		source := new(MockRuleSource)
		source.On("ListRules", mock.Anything, model.KindSwap).Return([]model.ChargeRule{
			{ID: "aaa", Kind: model.KindSwap, UpdatedAt: at},
			{ID: "bbb", Kind: model.KindSwap, UpdatedAt: at},
		}, nil)

		rule, err := NewResolver(source).Resolve(ctx, model.KindSwap, model.TradeContext{})
		require.NoError(t, err)
		require.NotNil(t, rule)
		assert.Equal(t, "bbb", rule.ID)
	})
}

func TestEngine_EffectiveCharge(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	t.Run("resolves and computes in one call", func(t *testing.T) {
		source := new(MockRuleSource)
		source.On("ListRules", mock.Anything, model.KindCommission).Return([]model.ChargeRule{
			{
				ID: "global", Kind: model.KindCommission, Value: 5,
				CommissionType: model.CommissionPerLot,
				ChargeOnBuy:    true,
			},
		}, nil)

		tc := model.TradeContext{Side: model.SideBuy, Event: model.EventOpen, Lots: 2}
		charge, err := New(logger, source).EffectiveCharge(ctx, model.KindCommission, tc)
		require.NoError(t, err)
		require.NotNil(t, charge)
		assert.Equal(t, 10.0, charge.Amount)
	})

	t.Run("nil charge when nothing configured", func(t *testing.T) {
		source := new(MockRuleSource)
		source.On("ListRules", mock.Anything, model.KindSwap).Return([]model.ChargeRule{}, nil)

		charge, err := New(logger, source).EffectiveCharge(ctx, model.KindSwap, model.TradeContext{})
		require.NoError(t, err)
		assert.Nil(t, charge)
	})
}
