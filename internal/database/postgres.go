package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tariff/internal/model"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	Pool *pgxpool.Pool
}

// NewPostgresRepository creates a repository backed by the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{Pool: pool}
}

// Migrate creates the engine's tables and uniqueness indexes if they do not
// exist. The unique index on (kind, scope_key) backs the duplicate-scope
// rejection at write time.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS charge_rules (
		id                TEXT PRIMARY KEY,
		kind              VARCHAR(20) NOT NULL,
		scope_key         TEXT NOT NULL,
		account_type_id   TEXT,
		segment           VARCHAR(20),
		instrument_symbol TEXT,
		user_id           TEXT,
		commission_type   VARCHAR(20),
		value             DOUBLE PRECISION NOT NULL DEFAULT 0,
		charge_on_buy     BOOLEAN NOT NULL DEFAULT FALSE,
		charge_on_sell    BOOLEAN NOT NULL DEFAULT FALSE,
		charge_on_close   BOOLEAN NOT NULL DEFAULT FALSE,
		spread_type       VARCHAR(20),
		swap_long         DOUBLE PRECISION NOT NULL DEFAULT 0,
		swap_short        DOUBLE PRECISION NOT NULL DEFAULT 0,
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE UNIQUE INDEX IF NOT EXISTS charge_rules_kind_scope_uniq
		ON charge_rules (kind, scope_key);

	CREATE TABLE IF NOT EXISTS currency_rates (
		code           VARCHAR(10) PRIMARY KEY,
		symbol         VARCHAR(10) NOT NULL DEFAULT '',
		rate_to_usd    DOUBLE PRECISION NOT NULL CHECK (rate_to_usd > 0),
		markup_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
		is_active      BOOLEAN NOT NULL DEFAULT TRUE,
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`
	if _, err := r.Pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

const ruleColumns = `id, kind, scope_key, account_type_id, segment, instrument_symbol, user_id,
	commission_type, value, charge_on_buy, charge_on_sell, charge_on_close,
	spread_type, swap_long, swap_short, updated_at`

func (r *PostgresRepository) CreateRule(ctx context.Context, rule model.ChargeRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	const query = `
		INSERT INTO charge_rules (` + ruleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.Pool.Exec(ctx, query, ruleArgs(rule)...)
	if isUniqueViolation(err) {
		return fmt.Errorf("rule %s %s: %w", rule.Kind, rule.Scope, model.ErrDuplicateScope)
	}
	if err != nil {
		return fmt.Errorf("postgres: create rule %s: %w", rule.ID, err)
	}
	return nil
}

func (r *PostgresRepository) UpdateRule(ctx context.Context, rule model.ChargeRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	const query = `
		UPDATE charge_rules SET
			kind = $2, scope_key = $3, account_type_id = $4, segment = $5,
			instrument_symbol = $6, user_id = $7, commission_type = $8, value = $9,
			charge_on_buy = $10, charge_on_sell = $11, charge_on_close = $12,
			spread_type = $13, swap_long = $14, swap_short = $15, updated_at = $16
		WHERE id = $1`
	tag, err := r.Pool.Exec(ctx, query, ruleArgs(rule)...)
	if isUniqueViolation(err) {
		return fmt.Errorf("rule %s %s: %w", rule.Kind, rule.Scope, model.ErrDuplicateScope)
	}
	if err != nil {
		return fmt.Errorf("postgres: update rule %s: %w", rule.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rule %s: %w", rule.ID, model.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) DeleteRule(ctx context.Context, id string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM charge_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete rule %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rule %s: %w", id, model.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) GetRule(ctx context.Context, id string) (model.ChargeRule, error) {
	row := r.Pool.QueryRow(ctx, `SELECT `+ruleColumns+` FROM charge_rules WHERE id = $1`, id)
	rule, err := scanRule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ChargeRule{}, fmt.Errorf("rule %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.ChargeRule{}, fmt.Errorf("postgres: get rule %s: %w", id, err)
	}
	return rule, nil
}

func (r *PostgresRepository) ListRules(ctx context.Context, kind model.ChargeKind) ([]model.ChargeRule, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+ruleColumns+` FROM charge_rules WHERE kind = $1`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("postgres: list rules %s: %w", kind, err)
	}
	defer rows.Close()

	var out []model.ChargeRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan rule: %w", err)
		}
		out = append(out, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list rules %s: %w", kind, err)
	}
	return out, nil
}

func (r *PostgresRepository) CreateRate(ctx context.Context, rate model.CurrencyRate) error {
	if err := rate.Validate(); err != nil {
		return err
	}
	const query = `
		INSERT INTO currency_rates (code, symbol, rate_to_usd, markup_percent, is_active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.Pool.Exec(ctx, query,
		rate.Code, rate.Symbol, rate.RateToUSD, rate.MarkupPercent, rate.IsActive, rate.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("currency %s: %w", rate.Code, model.ErrDuplicateCode)
	}
	if err != nil {
		return fmt.Errorf("postgres: create rate %s: %w", rate.Code, err)
	}
	return nil
}

func (r *PostgresRepository) UpdateRate(ctx context.Context, rate model.CurrencyRate) error {
	if err := rate.Validate(); err != nil {
		return err
	}
	const query = `
		UPDATE currency_rates SET
			symbol = $2, rate_to_usd = $3, markup_percent = $4, is_active = $5, updated_at = $6
		WHERE code = $1`
	tag, err := r.Pool.Exec(ctx, query,
		rate.Code, rate.Symbol, rate.RateToUSD, rate.MarkupPercent, rate.IsActive, rate.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: update rate %s: %w", rate.Code, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("currency %s: %w", rate.Code, model.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) DeleteRate(ctx context.Context, code string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM currency_rates WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("postgres: delete rate %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("currency %s: %w", code, model.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) GetRate(ctx context.Context, code string) (model.CurrencyRate, error) {
	var rate model.CurrencyRate
	err := r.Pool.QueryRow(ctx, `
		SELECT code, symbol, rate_to_usd, markup_percent, is_active, updated_at
		FROM currency_rates WHERE code = $1`, code).
		Scan(&rate.Code, &rate.Symbol, &rate.RateToUSD, &rate.MarkupPercent, &rate.IsActive, &rate.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.CurrencyRate{}, fmt.Errorf("currency %s: %w", code, model.ErrNotFound)
	}
	if err != nil {
		return model.CurrencyRate{}, fmt.Errorf("postgres: get rate %s: %w", code, err)
	}
	return rate, nil
}

func (r *PostgresRepository) ListRates(ctx context.Context) ([]model.CurrencyRate, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT code, symbol, rate_to_usd, markup_percent, is_active, updated_at
		FROM currency_rates ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list rates: %w", err)
	}
	defer rows.Close()

	var out []model.CurrencyRate
	for rows.Next() {
		var rate model.CurrencyRate
		if err := rows.Scan(&rate.Code, &rate.Symbol, &rate.RateToUSD, &rate.MarkupPercent, &rate.IsActive, &rate.UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan rate: %w", err)
		}
		out = append(out, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list rates: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) UpdateBaseRate(ctx context.Context, code string, rateToUSD float64) error {
	if rateToUSD <= 0 {
		return fmt.Errorf("currency %s: rate %v: %w", code, rateToUSD, model.ErrInvalidRateValue)
	}
	tag, err := r.Pool.Exec(ctx, `
		UPDATE currency_rates SET rate_to_usd = $2, updated_at = NOW() WHERE code = $1`,
		code, rateToUSD)
	if err != nil {
		return fmt.Errorf("postgres: update base rate %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("currency %s: %w", code, model.ErrNotFound)
	}
	return nil
}

func ruleArgs(rule model.ChargeRule) []any {
	var segment *string
	if rule.Scope.Segment != nil {
		s := string(*rule.Scope.Segment)
		segment = &s
	}
	return []any{
		rule.ID, string(rule.Kind), rule.Scope.Key(),
		rule.Scope.AccountTypeID, segment, rule.Scope.InstrumentSymbol, rule.Scope.UserID,
		nullableString(string(rule.CommissionType)), rule.Value,
		rule.ChargeOnBuy, rule.ChargeOnSell, rule.ChargeOnClose,
		nullableString(string(rule.SpreadType)), rule.SwapLong, rule.SwapShort,
		rule.UpdatedAt,
	}
}

func scanRule(row pgx.Row) (model.ChargeRule, error) {
	var (
		rule           model.ChargeRule
		scopeKey       string
		segment        *string
		commissionType *string
		spreadType     *string
	)
	err := row.Scan(
		&rule.ID, &rule.Kind, &scopeKey,
		&rule.Scope.AccountTypeID, &segment, &rule.Scope.InstrumentSymbol, &rule.Scope.UserID,
		&commissionType, &rule.Value,
		&rule.ChargeOnBuy, &rule.ChargeOnSell, &rule.ChargeOnClose,
		&spreadType, &rule.SwapLong, &rule.SwapShort,
		&rule.UpdatedAt,
	)
	if err != nil {
		return model.ChargeRule{}, err
	}
	if segment != nil {
		s := model.Segment(*segment)
		rule.Scope.Segment = &s
	}
	if commissionType != nil {
		rule.CommissionType = model.CommissionType(*commissionType)
	}
	if spreadType != nil {
		rule.SpreadType = model.SpreadType(*spreadType)
	}
	return rule, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ Repository = (*PostgresRepository)(nil)
