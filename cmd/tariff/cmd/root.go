package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"tariff/internal/config"
	"tariff/internal/database"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "tariff",
	Short: "Charge resolution engine for trading commissions, spreads, swaps and currency markups",
	Long: `Tariff resolves which commission, spread, swap and currency-conversion
terms apply to a trade or deposit, out of the administrator-configured
override rules, and keeps the currency markup table fresh from external
market-rate sources.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "directory containing config.yaml")
}

// setup loads the config and builds the root logger.
func setup() (config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("cannot load config: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return cfg, logger, nil
}

// openRepository connects to Postgres, migrates, and warms the in-memory
// snapshot. The returned func releases the pool.
func openRepository(ctx context.Context, cfg config.Config) (*database.CachedRepository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("cannot connect to database: %w", err)
	}
	pg := database.NewPostgresRepository(pool)
	if err := pg.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	repo := database.NewCachedRepository(pg)
	if err := repo.Warm(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return repo, pool.Close, nil
}
