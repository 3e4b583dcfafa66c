/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacobarthurs/schemabench/internal/metrics"
	"github.com/jacobarthurs/schemabench/internal/server"
	"github.com/jacobarthurs/schemabench/internal/simulation"
	"github.com/jacobarthurs/schemabench/internal/telemetry"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API and dashboard",
	Long: `Serve the schemabench HTTP API and the dashboard page.

Endpoints place orders and run aggregations against either schema, run
side-by-side simulations, and expose /healthz and Prometheus /metrics.`,
	Example: `  # Serve on the configured address
  schemabench serve

  # Serve on another port with a saved profile
  schemabench serve --addr :8080 --profile bench`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, connStr, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		addr := cfg.Addr()
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}
		timeout, err := cfg.RequestTimeout()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("timeout") {
			timeout, _ = cmd.Flags().GetDuration("timeout")
		}
		origins, _ := cmd.Flags().GetStringSlice("cors-origin")
		exporter := cfg.Telemetry.Exporter
		if cmd.Flags().Changed("trace") {
			exporter, _ = cmd.Flags().GetString("trace")
		}
		verbose, _ := cmd.Flags().GetBool("verbose")

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		shutdown, err := telemetry.Setup(ctx, telemetry.Options{
			Exporter: exporter,
			Endpoint: cfg.Telemetry.Endpoint,
			Version:  Version,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("flushing traces", "err", err)
			}
		}()

		pool, err := openPool(ctx, cfg, connStr)
		if err != nil {
			return err
		}
		defer pool.Close()

		reg := metrics.NewRegistry()
		engine, release, err := newEngine(ctx, cfg, pool, cfg.WindowDays(), logger, simulation.WithObserver(reg))
		if err != nil {
			return err
		}
		defer release()

		srv := server.New(engine, pool, server.Options{
			RequestTimeout: timeout,
			Logger:         logger,
			Metrics:        reg.Handler(),
			Observer:       reg,
			AllowedOrigins: origins,
		})
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":3000", "Listen address")
	serveCmd.Flags().Duration("timeout", 0, "Per-request timeout (default from config, 30s)")
	serveCmd.Flags().StringSlice("cors-origin", nil, "Allowed CORS origin, repeatable; \"*\" allows any")
	serveCmd.Flags().BoolP("verbose", "v", false, "Enable debug logging")
	serveCmd.Flags().String("trace", "", "Trace exporter: none, stdout, otlp (default from config)")
}
