package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jacobarthurs/schemabench/internal/comparator"
	"github.com/jacobarthurs/schemabench/internal/orders"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
	winnerNone     = "none"
)

// Registry owns the process metrics. It satisfies simulation.Observer.
type Registry struct {
	reg *prometheus.Registry

	RunLatencySec *prometheus.HistogramVec
	Runs          *prometheus.CounterVec
	Comparisons   *prometheus.CounterVec
	LastMargin    *prometheus.GaugeVec
	HTTPRequests  *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schemabench_run_latency_seconds",
		Help:    "Measured time of one operation against one schema.",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"workload", "schema"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schemabench_runs_total",
		Help: "Measured operations by workload, schema and outcome.",
	}, []string{"workload", "schema", "outcome"})
	comparisons := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schemabench_comparisons_total",
		Help: "Side-by-side comparisons by winning schema.",
	}, []string{"workload", "winner"})
	lastMargin := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "schemabench_last_margin_percent",
		Help: "Margin of the most recent decided comparison.",
	}, []string{"workload"})
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schemabench_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})

	r.MustRegister(latency, runs, comparisons, lastMargin, httpRequests)
	return &Registry{
		reg:           r,
		RunLatencySec: latency,
		Runs:          runs,
		Comparisons:   comparisons,
		LastMargin:    lastMargin,
		HTTPRequests:  httpRequests,
	}
}

func (r *Registry) ObserveRun(workload comparator.Workload, schema orders.Schema, elapsedMs float64, succeeded bool) {
	outcome := outcomeSuccess
	if !succeeded {
		outcome = outcomeFailure
	}
	r.Runs.WithLabelValues(string(workload), string(schema), outcome).Inc()
	if succeeded {
		r.RunLatencySec.WithLabelValues(string(workload), string(schema)).Observe(elapsedMs / 1000)
	}
}

func (r *Registry) ObserveOutcome(o comparator.Outcome) {
	winner := winnerNone
	if o.Decided {
		winner = string(o.Winner)
		r.LastMargin.WithLabelValues(string(o.Workload)).Set(o.MarginPercent)
	}
	r.Comparisons.WithLabelValues(string(o.Workload), winner).Inc()
}

func (r *Registry) ObserveHTTP(route string, status int) {
	r.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
