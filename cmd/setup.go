/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/jacobarthurs/schemabench/internal/orders"
	"github.com/jacobarthurs/schemabench/internal/store"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create both schemas and optionally seed data",
	Long: `Create the normalized tables and the denormalized table.

With --seed, all data is replaced by generated stores, staff, customers and
menu items plus a purchase history written identically to both layouts, so
the aggregations have something to compare.`,
	Example: `  # Create tables only
  schemabench setup

  # Recreate everything with 2000 historical orders
  schemabench setup --reset --seed --orders 2000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reset, _ := cmd.Flags().GetBool("reset")
		seed, _ := cmd.Flags().GetBool("seed")

		opts := orders.DefaultSeedOptions()
		opts.Orders, _ = cmd.Flags().GetInt("orders")
		opts.Customers, _ = cmd.Flags().GetInt("customers")
		opts.HistoryDays, _ = cmd.Flags().GetInt("history-days")
		opts.Seed, _ = cmd.Flags().GetUint64("rand-seed")

		cfg, connStr, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		pool, err := openPool(ctx, cfg, connStr)
		if err != nil {
			return err
		}
		defer pool.Close()

		if reset {
			if err := store.DropSchema(ctx, pool); err != nil {
				return err
			}
			fmt.Println("Dropped existing tables.")
		}
		if err := store.CreateSchema(ctx, pool); err != nil {
			return err
		}
		fmt.Println("Schemas ready.")

		if !seed {
			return nil
		}

		summary, err := orders.Seed(ctx, pool, opts)
		if err != nil {
			return err
		}
		fmt.Printf("Seeded %d stores, %d employees, %d customers, %d menu items and %d orders.\n",
			summary.Stores, summary.Employees, summary.Customers, summary.MenuItems, summary.Orders)

		sc, err := openCache(ctx, cfg, slog.Default())
		if err != nil {
			return err
		}
		if sc != nil {
			defer sc.Close()
			if err := sc.Invalidate(ctx); err != nil {
				return err
			}
			fmt.Println("Cleared cached sample data.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
	defaults := orders.DefaultSeedOptions()
	setupCmd.Flags().Bool("reset", false, "Drop existing tables first")
	setupCmd.Flags().Bool("seed", false, "Replace all data with generated sample data")
	setupCmd.Flags().Int("orders", defaults.Orders, "Historical orders to generate")
	setupCmd.Flags().Int("customers", defaults.Customers, "Customers to generate")
	setupCmd.Flags().Int("history-days", defaults.HistoryDays, "Spread historical orders over this many days")
	setupCmd.Flags().Uint64("rand-seed", defaults.Seed, "Random seed for generated data")
}
