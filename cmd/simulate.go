/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jacobarthurs/schemabench/internal/comparator"
	"github.com/jacobarthurs/schemabench/internal/orders"
	"github.com/jacobarthurs/schemabench/internal/output"

	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:       "simulate <oltp|olap>",
	Short:     "Run a workload against both schemas and compare",
	ValidArgs: []string{string(comparator.OLTP), string(comparator.OLAP)},
	Long: `Run the same workload against the normalized and denormalized schemas
concurrently, time both, and report the winner.

oltp places a random order built from the sample data. olap aggregates sales
by store over the configured window. With --runs greater than one the
workload is repeated and latency statistics are reported.`,
	Example: `  # One side-by-side order placement
  schemabench simulate oltp

  # Aggregation with captured plans
  schemabench simulate olap --explain

  # 100 runs exported as CSV
  schemabench simulate olap --runs 100 --format csv > olap.csv`,
	Args: cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		workload, _ := comparator.ParseWorkload(args[0])
		format, _ := cmd.Flags().GetString("format")
		explain, _ := cmd.Flags().GetBool("explain")

		if format != "text" && format != "json" && format != "csv" {
			return fmt.Errorf("invalid output format %q: must be \"text\", \"json\" or \"csv\"", format)
		}
		if explain && workload != comparator.OLAP {
			return fmt.Errorf("--explain only applies to olap")
		}

		cfg, connStr, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		runs := cfg.Runs()
		if cmd.Flags().Changed("runs") {
			runs, _ = cmd.Flags().GetInt("runs")
		}
		if runs < 1 {
			return fmt.Errorf("--runs must be at least 1")
		}
		windowDays := cfg.WindowDays()
		if cmd.Flags().Changed("window-days") {
			windowDays, _ = cmd.Flags().GetInt("window-days")
		}

		ctx := cmd.Context()
		pool, err := openPool(ctx, cfg, connStr)
		if err != nil {
			return err
		}
		defer pool.Close()

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		engine, release, err := newEngine(ctx, cfg, pool, windowDays, logger)
		if err != nil {
			return err
		}
		defer release()

		if runs > 1 {
			report, err := engine.Benchmark(ctx, workload, runs)
			if err != nil {
				return err
			}
			switch format {
			case "json":
				return output.RenderJSON(os.Stdout, report)
			case "csv":
				return output.RenderBenchmarkCSV(os.Stdout, report)
			}
			return output.RenderBenchmarkText(os.Stdout, report)
		}

		if workload == comparator.OLTP {
			report, err := engine.SimulateOLTP(ctx, nil)
			if err != nil {
				return err
			}
			switch format {
			case "json":
				return output.RenderJSON(os.Stdout, report)
			case "csv":
				return output.RenderReportCSV(os.Stdout, report)
			}
			return output.RenderOLTPText(os.Stdout, report)
		}

		report, err := engine.SimulateOLAP(ctx, explain)
		if err != nil {
			return err
		}
		switch format {
		case "json":
			return output.RenderJSON(os.Stdout, report)
		case "csv":
			return output.RenderReportCSV(os.Stdout, report)
		}
		return output.RenderOLAPText(os.Stdout, report)
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().IntP("runs", "n", 1, "Number of repetitions (default from config)")
	simulateCmd.Flags().Int("window-days", orders.DefaultWindowDays, "Aggregation window in days (default from config)")
	simulateCmd.Flags().StringP("format", "f", "text", "Output format: text, json, csv")
	simulateCmd.Flags().Bool("explain", false, "Capture EXPLAIN ANALYZE plans for olap")
}
