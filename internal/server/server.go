// Package server exposes the simulation engine over HTTP and serves the
// dashboard page.
package server

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jacobarthurs/schemabench/internal/comparator"
	"github.com/jacobarthurs/schemabench/internal/orders"
	"github.com/jacobarthurs/schemabench/internal/simulation"
	"github.com/jacobarthurs/schemabench/internal/timing"
)

//go:embed static
var staticFiles embed.FS

const (
	serviceName     = "schemabench"
	shutdownTimeout = 10 * time.Second

	// MaxBenchmarkRuns caps ?runs= so one request cannot monopolize the pool.
	MaxBenchmarkRuns = 200
)

// Simulator is the engine surface the handlers use.
type Simulator interface {
	PlaceOrder(ctx context.Context, schema orders.Schema, req orders.OrderRequest) (timing.Result[orders.Placement], error)
	SalesByStore(ctx context.Context, schema orders.Schema) (timing.Result[[]orders.StoreSales], error)
	BestSellingItems(ctx context.Context, schema orders.Schema, limit int) (timing.Result[[]orders.ItemSales], error)
	SampleData(ctx context.Context) (orders.SampleData, error)
	SimulateOLTP(ctx context.Context, req *orders.OrderRequest) (simulation.OLTPReport, error)
	SimulateOLAP(ctx context.Context, explain bool) (simulation.OLAPReport, error)
	Benchmark(ctx context.Context, workload comparator.Workload, runs int) (simulation.BenchmarkReport, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// HTTPObserver counts finished requests by route pattern and status.
type HTTPObserver interface {
	ObserveHTTP(route string, status int)
}

type Options struct {
	RequestTimeout time.Duration
	Logger         *slog.Logger
	// Metrics, when set, is mounted at /metrics.
	Metrics  http.Handler
	Observer HTTPObserver
	// AllowedOrigins lists CORS origins; "*" allows any. Empty disables CORS.
	AllowedOrigins []string
}

type Server struct {
	sim    Simulator
	health Pinger
	opts   Options
	logger *slog.Logger
}

func New(sim Simulator, health Pinger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{sim: sim, health: health, opts: opts, logger: logger}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/oltp/{schema}/place-order", s.handlePlaceOrder)
	mux.HandleFunc("GET /api/olap/{schema}/sales-by-store", s.handleSalesByStore)
	mux.HandleFunc("GET /api/olap/{schema}/best-selling-items", s.handleBestSellingItems)
	mux.HandleFunc("GET /api/sample-data", s.handleSampleData)
	mux.HandleFunc("POST /api/simulate/{workload}", s.handleSimulate)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	if s.opts.Metrics != nil {
		mux.Handle("GET /metrics", s.opts.Metrics)
	}

	static, _ := fs.Sub(staticFiles, "static")
	mux.Handle("GET /", http.FileServerFS(static))

	return mux
}

// Handler returns the fully wrapped handler: tracing, the per-request
// timeout, CORS, then logging. Logging sits next to the mux so it sees the
// matched route pattern.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.routes()
	h = loggingMiddleware(s.logger, s.opts.Observer)(h)
	h = corsMiddleware(s.opts.AllowedOrigins)(h)
	h = timeoutMiddleware(s.opts.RequestTimeout)(h)
	return otelhttp.NewHandler(h, serviceName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "HTTP " + r.Method + " " + r.URL.Path
		}),
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
		}),
	)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
