package simulation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jacobarthurs/schemabench/internal/comparator"
	"github.com/jacobarthurs/schemabench/internal/orders"
	"github.com/jacobarthurs/schemabench/internal/statistics"
)

var ErrInvalidRuns = errors.New("runs must be at least 1")

type SchemaSummary struct {
	Latency  statistics.Stats `json:"latencyMs"`
	Failures int              `json:"failures"`
	Wins     int              `json:"wins"`
}

// BenchmarkReport aggregates repeated simulations of one workload. Comparison
// is decided on the median latencies of the successful runs.
type BenchmarkReport struct {
	Workload     comparator.Workload `json:"workload"`
	Runs         int                 `json:"runs"`
	Normalized   SchemaSummary       `json:"normalized"`
	Denormalized SchemaSummary       `json:"denormalized"`
	Undecided    int                 `json:"undecided"`
	Comparison   comparator.Outcome  `json:"comparison"`
}

type sample struct {
	normalizedMs   float64
	normalizedOK   bool
	denormalizedMs float64
	denormalizedOK bool
	outcome        comparator.Outcome
}

// Partial reports whether any run failed on either layout.
func (r BenchmarkReport) Partial() bool {
	return r.Normalized.Failures > 0 || r.Denormalized.Failures > 0
}

// Benchmark runs the workload runs times in sequence. OLTP runs each place a
// fresh random order.
func (e *Engine) Benchmark(ctx context.Context, workload comparator.Workload, runs int) (BenchmarkReport, error) {
	if runs < 1 {
		return BenchmarkReport{}, ErrInvalidRuns
	}

	next, err := e.runner(ctx, workload)
	if err != nil {
		return BenchmarkReport{}, err
	}

	samples := make([]sample, 0, runs)
	for i := range runs {
		if err := ctx.Err(); err != nil {
			return BenchmarkReport{}, fmt.Errorf("benchmark stopped after %d runs: %w", i, err)
		}
		s, err := next(ctx)
		if err != nil {
			return BenchmarkReport{}, fmt.Errorf("run %d: %w", i+1, err)
		}
		samples = append(samples, s)
	}

	return summarize(e.comparator, workload, samples), nil
}

func (e *Engine) runner(ctx context.Context, workload comparator.Workload) (func(context.Context) (sample, error), error) {
	switch workload {
	case comparator.OLTP:
		data, err := e.SampleData(ctx)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) (sample, error) {
			order, err := e.randomOrder(data)
			if err != nil {
				return sample{}, err
			}
			r := e.simulateOrder(ctx, order)
			return sampleOf(r.Normalized.ElapsedMs, r.Normalized.Succeeded, r.Denormalized.ElapsedMs, r.Denormalized.Succeeded, r.Comparison), nil
		}, nil
	case comparator.OLAP:
		return func(ctx context.Context) (sample, error) {
			r, err := e.SimulateOLAP(ctx, false)
			if err != nil {
				return sample{}, err
			}
			return sampleOf(r.Normalized.ElapsedMs, r.Normalized.Succeeded, r.Denormalized.ElapsedMs, r.Denormalized.Succeeded, r.Comparison), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown workload %q", workload)
	}
}

func sampleOf(nMs float64, nOK bool, dMs float64, dOK bool, outcome comparator.Outcome) sample {
	return sample{normalizedMs: nMs, normalizedOK: nOK, denormalizedMs: dMs, denormalizedOK: dOK, outcome: outcome}
}

func summarize(c *comparator.Comparator, workload comparator.Workload, samples []sample) BenchmarkReport {
	report := BenchmarkReport{Workload: workload, Runs: len(samples)}

	var nTimes, dTimes []float64
	for _, s := range samples {
		if s.normalizedOK {
			nTimes = append(nTimes, s.normalizedMs)
		} else {
			report.Normalized.Failures++
		}
		if s.denormalizedOK {
			dTimes = append(dTimes, s.denormalizedMs)
		} else {
			report.Denormalized.Failures++
		}

		switch {
		case !s.outcome.Decided:
			report.Undecided++
		case s.outcome.Winner == orders.Normalized:
			report.Normalized.Wins++
		default:
			report.Denormalized.Wins++
		}
	}

	report.Normalized.Latency = statistics.Calculate(nTimes)
	report.Denormalized.Latency = statistics.Calculate(dTimes)
	report.Comparison = c.CompareTimes(workload,
		report.Normalized.Latency.Median, len(nTimes) > 0,
		report.Denormalized.Latency.Median, len(dTimes) > 0,
	)
	return report
}
