// Package cli implements the badgectl operator commands using Cobra.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/N1femi/Thriva/internal/config"
	"github.com/N1femi/Thriva/services"
)

var rootCmd = &cobra.Command{
	Use:           "badgectl",
	Short:         "Recompute and inspect Thriva badges",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// engine bundles what a recompute needs; Close releases the pool.
type engine struct {
	pool   *pgxpool.Pool
	store  *services.PgDatastore
	badges *services.BadgeService
}

func openEngine(ctx context.Context) (*engine, error) {
	cfg, err := config.LoadDB()
	if err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	poolConfig.MaxConns = cfg.DBMaxConns
	poolConfig.MinConns = 0

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := services.NewPgDatastore(pool)
	return &engine{
		pool:   pool,
		store:  store,
		badges: services.NewBadgeService(store, services.SystemClock{}, cfg.Location, cfg.CatalogRefresh),
	}, nil
}

func (e *engine) Close() {
	e.pool.Close()
}
