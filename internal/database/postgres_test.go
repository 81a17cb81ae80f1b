package database

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"tariff/internal/model"
)

var (
	pool *pgxpool.Pool
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	// Define the PostgreSQL container request
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpassword",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp"),
	}

	// Create and start the PostgreSQL container
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		log.Fatalf("could not start postgres container: %s", err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			log.Fatalf("could not stop postgres container: %s", err)
		}
	}()

	// Get the container's mapped port and host
	host, err := pgContainer.Host(ctx)
	if err != nil {
		log.Fatalf("could not get container host: %s", err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		log.Fatalf("could not get mapped port: %s", err)
	}

	connStr := "postgres://testuser:testpassword@" + host + ":" + port.Port() + "/testdb"

	pool, err = pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("could not connect to database: %s", err)
	}
	defer pool.Close()

	if err := NewPostgresRepository(pool).Migrate(ctx); err != nil {
		log.Fatalf("could not migrate: %s", err)
	}

	code := m.Run()

	os.Exit(code)
}

func TestPostgresRepository_Rules(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresRepository(pool)

	segment := model.SegmentForex
	user := "U1"
	rule := model.ChargeRule{
		ID:   "pg-rule-1",
		Kind: model.KindCommission,
		Scope: model.RuleScope{
			Segment: &segment,
			UserID:  &user,
		},
		CommissionType: model.CommissionPerLot,
		Value:          5,
		ChargeOnBuy:    true,
		ChargeOnClose:  true,
		UpdatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}

	require.NoError(t, repo.CreateRule(ctx, rule))

	got, err := repo.GetRule(ctx, "pg-rule-1")
	require.NoError(t, err)
	assert.Equal(t, rule.Kind, got.Kind)
	assert.Equal(t, rule.Value, got.Value)
	assert.Equal(t, rule.ChargeOnBuy, got.ChargeOnBuy)
	assert.Equal(t, rule.ChargeOnClose, got.ChargeOnClose)
	require.NotNil(t, got.Scope.Segment)
	assert.Equal(t, model.SegmentForex, *got.Scope.Segment)
	require.NotNil(t, got.Scope.UserID)
	assert.Equal(t, "U1", *got.Scope.UserID)
	assert.Nil(t, got.Scope.InstrumentSymbol)
	assert.True(t, rule.UpdatedAt.Equal(got.UpdatedAt))

	t.Run("duplicate kind and scope is rejected by the unique index", func(t *testing.T) {
		dup := rule
		dup.ID = "pg-rule-2"
		err := repo.CreateRule(ctx, dup)
		assert.ErrorIs(t, err, model.ErrDuplicateScope)
	})

	t.Run("same scope is allowed for another kind", func(t *testing.T) {
		swap := model.ChargeRule{
			ID:        "pg-rule-3",
			Kind:      model.KindSwap,
			Scope:     rule.Scope,
			SwapLong:  -2,
			SwapShort: 1,
			UpdatedAt: time.Now().UTC(),
		}
		assert.NoError(t, repo.CreateRule(ctx, swap))
	})

	t.Run("list filters by kind", func(t *testing.T) {
		rules, err := repo.ListRules(ctx, model.KindCommission)
		require.NoError(t, err)
		require.Len(t, rules, 1)
		assert.Equal(t, "pg-rule-1", rules[0].ID)
	})

	t.Run("update and delete", func(t *testing.T) {
		updated := rule
		updated.Value = 7
		updated.UpdatedAt = time.Now().UTC()
		require.NoError(t, repo.UpdateRule(ctx, updated))

		got, err := repo.GetRule(ctx, "pg-rule-1")
		require.NoError(t, err)
		assert.Equal(t, 7.0, got.Value)

		require.NoError(t, repo.DeleteRule(ctx, "pg-rule-1"))
		_, err = repo.GetRule(ctx, "pg-rule-1")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestPostgresRepository_Rates(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresRepository(pool)

	rate := model.CurrencyRate{
		Code:          "INR",
		Symbol:        "₹",
		RateToUSD:     83,
		MarkupPercent: 2,
		IsActive:      true,
		UpdatedAt:     time.Now().UTC(),
	}
	require.NoError(t, repo.CreateRate(ctx, rate))

	t.Run("duplicate code is rejected", func(t *testing.T) {
		err := repo.CreateRate(ctx, rate)
		assert.ErrorIs(t, err, model.ErrDuplicateCode)
	})

	t.Run("base rate update preserves markup and active flag", func(t *testing.T) {
		require.NoError(t, repo.UpdateBaseRate(ctx, "INR", 88.5))

		got, err := repo.GetRate(ctx, "INR")
		require.NoError(t, err)
		assert.Equal(t, 88.5, got.RateToUSD)
		assert.Equal(t, 2.0, got.MarkupPercent)
		assert.True(t, got.IsActive)
	})

	t.Run("unknown code on base rate update", func(t *testing.T) {
		err := repo.UpdateBaseRate(ctx, "XYZ", 1)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("non-positive base rate is rejected", func(t *testing.T) {
		err := repo.UpdateBaseRate(ctx, "INR", 0)
		assert.ErrorIs(t, err, model.ErrInvalidRateValue)
	})
}
