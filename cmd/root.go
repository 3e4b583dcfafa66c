/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"context"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/jacobarthurs/schemabench/internal/cache"
	"github.com/jacobarthurs/schemabench/internal/config"
	"github.com/jacobarthurs/schemabench/internal/orders"
	"github.com/jacobarthurs/schemabench/internal/simulation"
	"github.com/jacobarthurs/schemabench/internal/store"

	"github.com/spf13/cobra"
)

var Version = "dev"

func init() {
	if Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "(devel)" {
			Version = info.Main.Version
		}
	}
	rootCmd.Version = Version

	rootCmd.PersistentFlags().StringP("db", "d", "", "PostgreSQL connection string")
	rootCmd.PersistentFlags().StringP("profile", "p", "", "Use named profile from config")
}

var rootCmd = &cobra.Command{
	Use:          "schemabench",
	SilenceUsage: true,
	Short:        "Compare normalized and denormalized PostgreSQL schemas",
	Long: `schemabench times the same business operation against a normalized (3NF)
schema and a single denormalized table, and reports which layout won.

OLTP places an order; OLAP aggregates sales by store. Results are available
from the CLI and from a small web dashboard.`,
	Example: `  # Create both schemas and load sample data
  schemabench setup --seed

  # Compare order placement once
  schemabench simulate oltp

  # Benchmark the aggregation 50 times
  schemabench simulate olap --runs 50

  # Serve the dashboard
  schemabench serve`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig returns the config file and the connection string selected by
// the persistent --db and --profile flags.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	db, _ := cmd.Flags().GetString("db")
	profileName, _ := cmd.Flags().GetString("profile")

	cfg, err := config.Load()
	if err != nil {
		return nil, "", err
	}
	connStr, err := config.ResolveConnStr(db, profileName)
	if err != nil {
		return nil, "", err
	}
	return cfg, connStr, nil
}

func openPool(ctx context.Context, cfg *config.Config, connStr string) (*store.Pool, error) {
	return store.Open(ctx, connStr, store.Options{MaxConns: cfg.Pool.MaxConns})
}

// openCache connects to the configured Redis cache. It returns nil when no
// cache is configured.
func openCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*cache.SampleCache, error) {
	if cfg.Cache.RedisURL == "" {
		return nil, nil
	}
	ttl, err := cfg.CacheTTL()
	if err != nil {
		return nil, err
	}
	return cache.Open(ctx, cfg.Cache.RedisURL, ttl, cache.WithLogger(logger))
}

// newEngine builds the simulation engine over pool, serving sample data from
// the Redis cache when one is configured. The returned func releases the cache.
func newEngine(ctx context.Context, cfg *config.Config, pool *store.Pool, windowDays int, logger *slog.Logger, opts ...simulation.Option) (*simulation.Engine, func(), error) {
	sc, err := openCache(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	release := func() {}
	if sc != nil {
		load := func(ctx context.Context) (orders.SampleData, error) {
			return orders.LoadSampleData(ctx, pool)
		}
		opts = append(opts, simulation.WithSampleLoader(sc.Wrap(load)))
		release = func() { sc.Close() }
	}

	engine, err := simulation.NewFromDB(pool, []orders.Option{orders.WithWindowDays(windowDays)}, opts...)
	if err != nil {
		release()
		return nil, nil, err
	}
	return engine, release, nil
}
